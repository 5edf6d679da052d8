// Package feed fans recent activity out to live dashboard clients.
package feed

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/studyshelf/studyshelf-api/internal/models"
)

// HubConfig tunes the feed buffer and its Redis channel.
type HubConfig struct {
	Channel  string
	Capacity int
}

// Hub holds the single process-wide subscription to the activity channel and
// fans entries out to connected clients. Keeping one subscription per process
// means client churn never touches Redis. The hub also keeps the last
// Capacity entries so a new client starts with history instead of silence.
type Hub struct {
	client *redis.Client
	logger *zap.Logger
	cfg    HubConfig

	mu      sync.RWMutex
	ring    []models.ActivityEntry
	clients map[chan models.ActivityEntry]struct{}
}

// NewHub constructs the hub.
func NewHub(client *redis.Client, logger *zap.Logger, cfg HubConfig) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Channel == "" {
		cfg.Channel = "studyshelf:activity"
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 50
	}
	return &Hub{
		client:  client,
		logger:  logger,
		cfg:     cfg,
		ring:    make([]models.ActivityEntry, 0, cfg.Capacity),
		clients: make(map[chan models.ActivityEntry]struct{}),
	}
}

// Seed preloads the buffer with persisted history, oldest first.
func (h *Hub) Seed(entries []models.ActivityEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(entries) - 1; i >= 0; i-- {
		h.appendLocked(entries[i])
	}
}

// Run consumes the Redis channel until the context is cancelled. It is the
// only subscriber this process opens.
func (h *Hub) Run(ctx context.Context) {
	if h.client == nil {
		h.logger.Warn("activity feed disabled, no redis client")
		<-ctx.Done()
		return
	}

	pubsub := h.client.Subscribe(ctx, h.cfg.Channel)
	defer pubsub.Close() //nolint:errcheck

	h.logger.Info("activity feed subscribed", zap.String("channel", h.cfg.Channel))
	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var entry models.ActivityEntry
			if err := json.Unmarshal([]byte(msg.Payload), &entry); err != nil {
				h.logger.Warn("malformed activity payload", zap.Error(err))
				continue
			}
			h.Broadcast(entry)
		}
	}
}

// Broadcast appends an entry to the buffer and delivers it to every
// connected client. Slow clients lose entries rather than block the hub.
func (h *Hub) Broadcast(entry models.ActivityEntry) {
	h.mu.Lock()
	h.appendLocked(entry)
	for ch := range h.clients {
		select {
		case ch <- entry:
		default:
			h.logger.Debug("feed client lagging, entry dropped", zap.String("id", entry.ID))
		}
	}
	h.mu.Unlock()
}

// Subscribe registers a client. The returned cancel function must be called
// when the client disconnects.
func (h *Hub) Subscribe() (<-chan models.ActivityEntry, func()) {
	ch := make(chan models.ActivityEntry, h.cfg.Capacity)

	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// Snapshot returns the buffered entries, newest first.
func (h *Hub) Snapshot() []models.ActivityEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.ActivityEntry, len(h.ring))
	for i, entry := range h.ring {
		out[len(h.ring)-1-i] = entry
	}
	return out
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) appendLocked(entry models.ActivityEntry) {
	if len(h.ring) == h.cfg.Capacity {
		copy(h.ring, h.ring[1:])
		h.ring = h.ring[:len(h.ring)-1]
	}
	h.ring = append(h.ring, entry)
}
