package engine

import (
	"context"
	"time"
)

// Health summarises the engine and its storage backend.
type Health struct {
	Status    string     `json:"status"` // "healthy" or "unhealthy"
	Instance  string     `json:"instance"`
	Backend   string     `json:"backend"`
	Storage   string     `json:"storage"` // "connected", "disconnected" or "local"
	Saving    bool       `json:"saving"`
	Dirty     bool       `json:"dirty"`
	LastSaved *time.Time `json:"last_saved,omitempty"`
	Columns   int        `json:"columns"`
	Cards     int        `json:"cards"`
	Error     string     `json:"error,omitempty"`
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Health checks backend connectivity and reports save state.
// Ping is bounded by a 2 second timeout.
func (e *Engine) Health(ctx context.Context) Health {
	b := e.store.Current()
	h := Health{
		Status:    "healthy",
		Instance:  e.cfg.Instance,
		Backend:   e.cfg.Storage.Backend,
		Storage:   "local",
		Saving:    e.adapter.Saving(),
		Dirty:     e.adapter.Dirty(),
		Columns:   len(b.Columns),
		Cards:     b.CardCount(),
	}
	if saved := e.adapter.LastSaved(); !saved.IsZero() {
		h.LastSaved = &saved
	}

	if p, ok := e.cache.(pinger); ok {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			h.Status = "unhealthy"
			h.Storage = "disconnected"
			h.Error = err.Error()
			return h
		}
		h.Storage = "connected"
	}

	if err := e.adapter.LastError(); err != nil {
		h.Status = "unhealthy"
		h.Error = err.Error()
	}
	return h
}
