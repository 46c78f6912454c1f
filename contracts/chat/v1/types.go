// Package v1 defines the chat wire protocol v1.
//
// This package is intentionally stable and dependency-light. It is the
// authoritative contract shared between server and clients.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Version is the protocol version identifier embedded into every envelope.
const Version = "v1"

// Type constants (wire-stable).
const (
	// TypeHello starts a session handshake (client -> server).
	TypeHello = "hello"
	// TypeHelloAck acknowledges the handshake (server -> client).
	TypeHelloAck = "hello.ack"

	// TypeMessageSend requests broadcasting a message (client -> server).
	TypeMessageSend = "message.send"
	// TypeMessageNew delivers a broadcast message (server -> every connection).
	TypeMessageNew = "message.new"

	// TypeError is a generic error envelope (server -> client).
	TypeError = "error"
)

// Envelope is the canonical wire wrapper.
type Envelope struct {
	V       string          `json:"v"`
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	TS      time.Time       `json:"ts,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate performs strict structural validation for an Envelope.
func (e Envelope) Validate() error {
	if strings.TrimSpace(e.V) == "" {
		return errors.New("missing field: v")
	}
	if e.V != Version {
		return fmt.Errorf("unsupported protocol version: %q", e.V)
	}
	if strings.TrimSpace(e.Type) == "" {
		return errors.New("missing field: type")
	}

	switch e.Type {
	case TypeHello, TypeHelloAck, TypeMessageSend, TypeMessageNew, TypeError:
		return nil
	default:
		return fmt.Errorf("unknown type: %q", e.Type)
	}
}

// ---- Payloads ----

// HelloPayload optionally presents a session token at handshake time.
type HelloPayload struct {
	Token string `json:"token,omitempty"`
}

// HelloAckPayload returns the server-assigned connection id and, when
// the handshake carried a valid session, the authenticated username.
type HelloAckPayload struct {
	ConnectionID string `json:"connection_id"`
	User         string `json:"user,omitempty"`
}

// MessageSendPayload carries one inbound text message.
type MessageSendPayload struct {
	Text string `json:"text"`
}

// MessageNewPayload is delivered to every connection, sender included.
// Sender is the authenticated username or, for anonymous connections,
// the connection id.
type MessageNewPayload struct {
	MessageID string    `json:"message_id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	ServerTS  time.Time `json:"server_ts"`
}

// ErrorPayload is a generic error response payload.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
