package dto

import "encoding/json"

// RecordActivityRequest captures an explicit activity logging call.
type RecordActivityRequest struct {
	Action     string          `json:"action" validate:"required"`
	TargetType string          `json:"target_type" validate:"required"`
	TargetID   string          `json:"target_id"`
	TargetName string          `json:"target_name"`
	Department string          `json:"department"`
	Metadata   json.RawMessage `json:"metadata"`
}
