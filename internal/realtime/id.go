package realtime

import (
	"time"

	"github.com/JayRenji/chat-app/internal/identity/ids"
)

// NewConnectionID returns a ULID used as the registry key for one
// connection. Falls back to random hex if the ULID source fails.
func NewConnectionID(now time.Time) string {
	if id, err := ids.NewULID(now); err == nil {
		return id
	}
	return NewRandomHex(13)
}

// NewMessageID returns a ULID stamped onto every broadcast envelope.
// ULIDs keep message ids sortable in logs.
func NewMessageID(now time.Time) string {
	if id, err := ids.NewULID(now); err == nil {
		return id
	}
	return NewRandomHex(13)
}
