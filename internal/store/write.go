package store

import (
	"context"
	"fmt"

	"github.com/roach88/prodsys/internal/ir"
)

// WriteSession records a session. Duplicate ids are ignored.
func (s *Store) WriteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, engine_version, ir_version)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, ir.EngineVersion, ir.SchemaVersion)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteEvent appends ev to the log. The session must have been written
// first. A second write with the same (session, seq) is ignored.
//
// The canonical column holds the RFC 8785 encoding of the event so a trace
// can be compared byte for byte with a golden file.
func (s *Store) WriteEvent(ctx context.Context, ev ir.Event) error {
	canonical, err := ir.MarshalCanonical(ev.CanonicalMap())
	if err != nil {
		return fmt.Errorf("write event %d: %w", ev.Seq, err)
	}

	var factID, factType, subject, object any
	if ev.Fact != nil {
		factID = ev.Fact.ID()
		factType, subject, object = ev.Fact.Type, ev.Fact.Subject, ev.Fact.Object
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events
		(session, seq, kind, strategy, round, rule, fact_id, fact_type, fact_subject, fact_object, added, canonical)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session, seq) DO NOTHING
	`,
		ev.Session,
		ev.Seq,
		string(ev.Kind),
		string(ev.Strategy),
		ev.Round,
		ev.Rule,
		factID,
		factType,
		subject,
		object,
		ev.Added,
		string(canonical),
	)
	if err != nil {
		return fmt.Errorf("write event %d: %w", ev.Seq, err)
	}
	return nil
}
