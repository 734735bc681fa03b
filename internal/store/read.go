package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/prodsys/internal/ir"
)

// SessionInfo describes a logged session.
type SessionInfo struct {
	ID            string `json:"id"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
	Events        int    `json:"events"`
}

const eventColumns = `seq, session, kind, strategy, round, rule, fact_type, fact_subject, fact_object, added`

// ReadSession returns every event of a session in seq order.
// Returns an empty slice if the session is unknown.
func (s *Store) ReadSession(ctx context.Context, session string) ([]ir.Event, error) {
	events, err := s.ReadEvents(ctx, EventFilter{Session: session})
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", session, err)
	}
	return events, nil
}

// ReadDerivations returns the events that asserted or derived a fact from
// subject to object, in seq order.
func (s *Store) ReadDerivations(ctx context.Context, session, subject, object string) ([]ir.Event, error) {
	events, err := s.ReadEvents(ctx, EventFilter{Session: session, Subject: subject, Object: object})
	if err != nil {
		return nil, fmt.Errorf("read derivations %s: %w", session, err)
	}
	return events, nil
}

// ReadCanonical returns the canonical JSON of every event of a session,
// one line per event, in seq order.
func (s *Store) ReadCanonical(ctx context.Context, session string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT canonical FROM events WHERE session = ? ORDER BY seq ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("read canonical %s: %w", session, err)
	}
	defer rows.Close()

	lines := []string{}
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("scan canonical: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Sessions lists logged sessions ordered by id. UUIDv7 ids sort by
// creation time.
func (s *Store) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.engine_version, s.ir_version, COUNT(e.seq)
		FROM sessions s
		LEFT JOIN events e ON e.session = s.id
		GROUP BY s.id
		ORDER BY s.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionInfo{}
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.EngineVersion, &info.IRVersion, &info.Events); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, info)
	}
	return sessions, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]ir.Event, error) {
	defer rows.Close()

	events := []ir.Event{}
	for rows.Next() {
		var (
			ev                        ir.Event
			kind, strategy            string
			factType, subject, object sql.NullString
		)
		if err := rows.Scan(
			&ev.Seq, &ev.Session, &kind, &strategy, &ev.Round, &ev.Rule,
			&factType, &subject, &object, &ev.Added,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = ir.EventKind(kind)
		ev.Strategy = ir.Strategy(strategy)
		if factType.Valid {
			ev.Fact = &ir.Fact{Type: factType.String, Subject: subject.String, Object: object.String}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
