package realtime

import (
	"encoding/json"
	"log/slog"
	"time"

	v1 "github.com/JayRenji/chat-app/contracts/chat/v1"
)

// Hub is the broadcast engine: it fans one inbound message out to every
// registered connection, sender included.
//
// Concurrency guarantees:
//   - OnMessage is safe under concurrent Register/Unregister.
//   - A delivery never blocks: a full or closing recipient queue is a
//     logged drop, and never aborts delivery to the remaining recipients.
//   - Messages from one sender reach each recipient in send order,
//     because the sender's read loop calls OnMessage sequentially and
//     every recipient queue is FIFO.
type Hub struct {
	log     *slog.Logger
	reg     *Registry
	metrics *Metrics
}

// NewHub constructs a Hub over the given registry. metrics may be nil.
func NewHub(log *slog.Logger, reg *Registry, metrics *Metrics) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{log: log, reg: reg, metrics: metrics}
}

// OnMessage broadcasts text from the sender connection to every
// connection in the registry snapshot. The sender receives its own
// message back (echo). The payload is not retained after the pass.
func (h *Hub) OnMessage(sender *Client, text string) v1.Envelope {
	now := time.Now().UTC()
	msgID := NewMessageID(now)

	payload, _ := json.Marshal(v1.MessageNewPayload{
		MessageID: msgID,
		Sender:    sender.SenderTag(),
		Text:      text,
		ServerTS:  now,
	})
	env := v1.Envelope{
		V:       v1.Version,
		Type:    v1.TypeMessageNew,
		ID:      msgID,
		TS:      now,
		Payload: payload,
	}

	h.metrics.broadcast()

	for _, m := range h.reg.Snapshot() {
		if m == nil {
			continue
		}

		select {
		case <-m.Done():
			// Recipient is shutting down; skip it.
			continue
		default:
		}

		select {
		case m.Send <- env:
			h.metrics.delivered()
		default:
			// Drop rather than block the sender or the other recipients.
			h.metrics.dropped()
			h.log.Warn("broadcast.drop",
				"connection_id", m.ID,
				"sender", sender.SenderTag(),
			)
		}
	}

	return env
}
