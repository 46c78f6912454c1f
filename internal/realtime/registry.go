package realtime

import (
	"log/slog"
	"sync"
	"time"
)

// Registry owns the live connection set. It is the sole source of
// truth for which connections are reachable; membership is guarded by
// one mutex and exposed only through Register/Unregister/Snapshot.
type Registry struct {
	log     *slog.Logger
	metrics *Metrics

	mu      sync.Mutex
	clients map[string]*Client
}

// NewRegistry constructs an empty Registry. metrics may be nil.
func NewRegistry(log *slog.Logger, metrics *Metrics) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:     log,
		metrics: metrics,
		clients: make(map[string]*Client),
	}
}

// Register adds a connection to the live set and returns its id.
// A client that already carries an id keeps it; no connection can
// appear twice.
func (r *Registry) Register(c *Client) string {
	if c == nil {
		return ""
	}

	r.mu.Lock()
	if c.ID == "" {
		c.ID = NewConnectionID(time.Now().UTC())
	}
	_, present := r.clients[c.ID]
	r.clients[c.ID] = c
	r.mu.Unlock()

	if !present {
		r.metrics.connInc()
	}

	r.log.Info("registry.register", "connection_id", c.ID, "user", c.Username)
	return c.ID
}

// Unregister removes a connection and signals its shutdown.
// Idempotent: unregistering an absent id is a no-op because disconnects
// can race with cleanup.
func (r *Registry) Unregister(id string) {
	if id == "" {
		return
	}

	r.mu.Lock()
	c, ok := r.clients[id]
	delete(r.clients, id)
	r.mu.Unlock()

	if !ok {
		return
	}

	// Signal shutdown after removal so a concurrent broadcaster never
	// enqueues to a client that is already gone from the snapshot.
	c.Close()
	r.metrics.connDec()

	r.log.Info("registry.unregister", "connection_id", id)
}

// Snapshot returns the current live set for one delivery pass.
// Order is unspecified.
func (r *Registry) Snapshot() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// Len reports the number of registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
