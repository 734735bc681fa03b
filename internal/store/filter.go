package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/prodsys/internal/ir"
)

// EventFilter selects logged events. Zero-valued fields match everything.
// Every set field becomes a parameterized equality; values are never
// interpolated into the SQL text.
type EventFilter struct {
	Session  string
	Kind     ir.EventKind
	Strategy ir.Strategy
	Rule     string
	FactID   string // ir.Fact.ID of the event's fact
	Type     string
	Subject  string
	Object   string
}

// compile renders the filter as a SELECT over events. Results are always
// ordered by (session, seq) so two reads of the same log agree.
func (f EventFilter) compile() (string, []any) {
	var (
		clauses []string
		params  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		clauses = append(clauses, column+" = ?")
		params = append(params, value)
	}
	add("session", f.Session)
	add("kind", string(f.Kind))
	add("strategy", string(f.Strategy))
	add("rule", f.Rule)
	add("fact_id", f.FactID)
	add("fact_type", f.Type)
	add("fact_subject", f.Subject)
	add("fact_object", f.Object)

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(eventColumns)
	b.WriteString(" FROM events")
	if len(clauses) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(clauses, " AND "))
	}
	b.WriteString(" ORDER BY session ASC COLLATE BINARY, seq ASC")
	return b.String(), params
}

// ReadFactHistory returns every event of a session that asserted or
// derived exactly f, using the fact_id index.
func (s *Store) ReadFactHistory(ctx context.Context, session string, f ir.Fact) ([]ir.Event, error) {
	events, err := s.ReadEvents(ctx, EventFilter{Session: session, FactID: f.ID()})
	if err != nil {
		return nil, fmt.Errorf("read history of %s: %w", f, err)
	}
	return events, nil
}

// ReadEvents returns the events matching f.
func (s *Store) ReadEvents(ctx context.Context, f EventFilter) ([]ir.Event, error) {
	query, params := f.compile()
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return scanEvents(rows)
}
