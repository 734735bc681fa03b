package store

import (
	"context"
	"fmt"

	"github.com/roach88/prodsys/internal/ir"
)

// Recorder writes engine events into the log. It satisfies
// engine.Observer.
//
// Observers cannot return errors, so the first write error is kept and
// every later event is dropped. Callers check Err after the run.
type Recorder struct {
	ctx      context.Context
	store    *Store
	sessions map[string]bool
	err      error
}

// NewRecorder creates a Recorder that writes through s using ctx.
func NewRecorder(ctx context.Context, s *Store) *Recorder {
	return &Recorder{ctx: ctx, store: s, sessions: make(map[string]bool)}
}

// Observe records ev, writing its session row first if needed.
func (r *Recorder) Observe(ev ir.Event) {
	if r.err != nil {
		return
	}
	if !r.sessions[ev.Session] {
		if err := r.store.WriteSession(r.ctx, ev.Session); err != nil {
			r.err = err
			return
		}
		r.sessions[ev.Session] = true
	}
	if err := r.store.WriteEvent(r.ctx, ev); err != nil {
		r.err = fmt.Errorf("record session %s: %w", ev.Session, err)
	}
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	return r.err
}
