package realtime

import (
	"sync"

	v1 "github.com/JayRenji/chat-app/contracts/chat/v1"
)

// Client represents one open connection.
//
// Design notes:
// - Send is intentionally NOT closed by the server to avoid panics from
//   concurrent broadcasters.
// - done signals the connection's goroutines to stop.
// - Close is idempotent.
type Client struct {
	// ID is the registry key, assigned at registration time.
	ID string

	// UserID and Username are set when the handshake carried a valid
	// session; both empty for anonymous connections.
	UserID   string
	Username string

	Send chan v1.Envelope

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a Client with a bounded send queue.
func NewClient(sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 64
	}
	return &Client{
		Send: make(chan v1.Envelope, sendQueueSize),
		done: make(chan struct{}),
	}
}

// SenderTag is the name stamped onto broadcasts from this connection:
// the authenticated username, or the connection id when anonymous.
func (c *Client) SenderTag() string {
	if c == nil {
		return ""
	}
	if c.Username != "" {
		return c.Username
	}
	return c.ID
}

// Done returns a channel that is closed when the client is shutting down.
func (c *Client) Done() <-chan struct{} {
	if c == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.done
}

// Close signals the client goroutines to stop (idempotent).
// It does NOT close Send to keep broadcast safe under concurrency.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
