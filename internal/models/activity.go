package models

import (
	"encoding/json"
	"time"
)

// ActivityAction enumerates the recorded activity kinds.
const (
	ActivityActionUpload   = "upload"
	ActivityActionUpdate   = "update"
	ActivityActionDelete   = "delete"
	ActivityActionView     = "view"
	ActivityActionDownload = "download"
	ActivityActionOrganize = "organize"
	ActivityActionShare    = "share"
)

// ActivityEntry is an append-only activity log record. Entries are produced
// by explicit logging calls, read newest-first and streamed over the live
// feed; they are never mutated or deleted by this codebase. Metadata stays an
// opaque JSON bag so new activity kinds can attach details without schema
// changes.
type ActivityEntry struct {
	ID         string          `db:"id" json:"id"`
	ActorID    *string         `db:"actor_id" json:"actor_id,omitempty"`
	ActorName  string          `db:"actor_name" json:"actor_name"`
	Action     string          `db:"action" json:"action"`
	TargetType string          `db:"target_type" json:"target_type"`
	TargetID   *string         `db:"target_id" json:"target_id,omitempty"`
	TargetName string          `db:"target_name" json:"target_name"`
	Department string          `db:"department" json:"department"`
	Metadata   json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
