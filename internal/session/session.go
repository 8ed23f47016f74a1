package session

import "time"

// Roles a message in session history can carry.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Message represents a single chat message
type Message struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary is the caller-facing view of a session's metadata
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
