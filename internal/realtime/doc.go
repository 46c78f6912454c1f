// Package realtime implements the persistent-connection broadcast
// subsystem: the connection registry, the fan-out engine, and the
// WebSocket gateway that feeds them.
//
// The registry is the single source of truth for "who is currently
// reachable". Messages are consumed on receipt and never retained
// after the broadcast pass completes.
package realtime
