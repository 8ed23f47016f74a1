package cache

import (
	"crypto/sha256"
	"fmt"
	"time"

	"ChatPilot/internal/session"
)

// CachedResponse represents a cached backend reply
type CachedResponse struct {
	Response  string
	Timestamp time.Time
}

// Key derives a cache key from a transcript. Only roles and texts feed the
// hash, so identical conversations map to the same key regardless of timing.
func Key(messages []session.Message) string {
	h := sha256.New()
	for _, msg := range messages {
		h.Write([]byte(msg.Role))
		h.Write([]byte(msg.Text))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
