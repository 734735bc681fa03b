package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/prodsys/internal/ir"
	"github.com/roach88/prodsys/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Subject  string // optional - only events about facts from Subject
	Object   string // optional - only events about facts to Object
	Type     string // optional - only events about facts of this type
	Kind     string // optional - only events of this kind
	Rule     string // optional - only events of this rule
}

// TraceEvent represents a single event in the trace timeline.
type TraceEvent struct {
	Seq      int64  `json:"seq"`
	Kind     string `json:"kind"`
	Strategy string `json:"strategy,omitempty"`
	Round    int    `json:"round,omitempty"`
	Rule     string `json:"rule,omitempty"`
	Fact     string `json:"fact,omitempty"`
	Added    int    `json:"added,omitempty"`
}

// Derivation records which rule produced a fact, and when.
type Derivation struct {
	FactID string `json:"fact_id"`
	Fact   string `json:"fact"`
	Rule   string `json:"rule"`
	Round  int    `json:"round"`
	Seq    int64  `json:"seq"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session     string       `json:"session"`
	Timeline    []TraceEvent `json:"timeline"`
	Derivations []Derivation `json:"derivations"`
	Stats       TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int `json:"total_events"`
	Asserted    int `json:"asserted"`
	Derived     int `json:"derived"`
	Rounds      int `json:"rounds"`
	Firings     int `json:"firings"`
	Fixpoints   int `json:"fixpoints"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Read the derivation log of a session",
		Long: `Read back the events recorded with --db by query or list.

Without --session, lists every recorded session. With --session, shows
the session's timeline and, for every derived fact, the rule and round
that produced it. --subject and --object narrow the timeline to facts
between two entities; adding --type selects one exact fact.

Examples:
  prodsys trace --db ./prodsys.db
  prodsys trace --db ./prodsys.db --session 0190...
  prodsys trace --db ./prodsys.db --session 0190... --subject fork --object knife
  prodsys trace --db ./prodsys.db --session 0190... --type "left of" --subject fork --object knife
  prodsys trace --db ./prodsys.db --session 0190... --kind rule_fired --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to trace")
	cmd.Flags().StringVar(&opts.Subject, "subject", "", "filter to facts from this entity")
	cmd.Flags().StringVar(&opts.Object, "object", "", "filter to facts to this entity")
	cmd.Flags().StringVar(&opts.Type, "type", "", "filter to facts of this relation type")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one event kind")
	cmd.Flags().StringVar(&opts.Rule, "rule", "", "filter to one rule name")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.Session == "" {
		return runListSessions(ctx, opts, st, cmd)
	}

	filter := store.EventFilter{
		Session: opts.Session,
		Kind:    ir.EventKind(opts.Kind),
		Rule:    opts.Rule,
	}
	for _, f := range []struct {
		name string
		in   string
		out  *string
	}{
		{"type", opts.Type, &filter.Type},
		{"subject", opts.Subject, &filter.Subject},
		{"object", opts.Object, &filter.Object},
	} {
		if f.in == "" {
			continue
		}
		n, err := ir.NormalizeName(f.name, f.in)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --"+f.name, err)
		}
		*f.out = n
	}
	if filter.Type != "" && filter.Subject != "" && filter.Object != "" {
		// One exact fact: look it up by content address.
		fact := ir.Fact{Type: filter.Type, Subject: filter.Subject, Object: filter.Object}
		filter.FactID = fact.ID()
		filter.Type, filter.Subject, filter.Object = "", "", ""
	}
	events, err := st.ReadEvents(ctx, filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	result := buildTrace(opts.Session, events)
	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}
	if len(events) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No events found for session: %s\n", opts.Session)
		return nil
	}
	return outputTraceText(cmd, result)
}

func runListSessions(ctx context.Context, opts *TraceOptions, st *store.Store, cmd *cobra.Command) error {
	sessions, err := st.Sessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read sessions", err)
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: sessions})
	}

	w := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "%s  %d event(s)  engine %s\n", s.ID, s.Events, s.EngineVersion)
	}
	return nil
}

// buildTrace converts logged events into the timeline, derivations and
// stats of a session.
func buildTrace(session string, events []ir.Event) TraceResult {
	result := TraceResult{
		Session:     session,
		Timeline:    make([]TraceEvent, 0, len(events)),
		Derivations: []Derivation{},
	}

	for _, ev := range events {
		te := TraceEvent{
			Seq:      ev.Seq,
			Kind:     string(ev.Kind),
			Strategy: string(ev.Strategy),
			Round:    ev.Round,
			Rule:     ev.Rule,
			Added:    ev.Added,
		}
		if ev.Fact != nil {
			te.Fact = ev.Fact.String()
		}
		result.Timeline = append(result.Timeline, te)

		switch ev.Kind {
		case ir.EventFactAsserted:
			result.Stats.Asserted++
		case ir.EventFactDerived:
			result.Stats.Derived++
			result.Derivations = append(result.Derivations, Derivation{
				FactID: ev.Fact.ID(),
				Fact:   te.Fact,
				Rule:   ev.Rule,
				Round:  ev.Round,
				Seq:    ev.Seq,
			})
		case ir.EventRoundStarted:
			result.Stats.Rounds++
		case ir.EventRuleFired:
			result.Stats.Firings++
		case ir.EventFixpointReached:
			result.Stats.Fixpoints++
		}
	}
	result.Stats.TotalEvents = len(result.Timeline)
	return result
}

// outputTraceJSON outputs the trace result as JSON.
func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Trace for Session: %s\n", result.Session)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	for _, event := range result.Timeline {
		formatTimelineEvent(w, event)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Derivations ===")
	if len(result.Derivations) == 0 {
		fmt.Fprintln(w, "  (no derived facts)")
	} else {
		for _, d := range result.Derivations {
			fmt.Fprintf(w, "  %s <- %s (round %d)\n", d.Fact, d.Rule, d.Round)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	fmt.Fprintf(w, "  Asserted:     %d\n", result.Stats.Asserted)
	fmt.Fprintf(w, "  Derived:      %d\n", result.Stats.Derived)
	fmt.Fprintf(w, "  Rounds:       %d\n", result.Stats.Rounds)
	fmt.Fprintf(w, "  Rule Firings: %d\n", result.Stats.Firings)

	return nil
}

// formatTimelineEvent formats a single timeline event for text output.
func formatTimelineEvent(w io.Writer, event TraceEvent) {
	switch ir.EventKind(event.Kind) {
	case ir.EventFactAsserted:
		fmt.Fprintf(w, "  [%d] ASSERT %s\n", event.Seq, event.Fact)
	case ir.EventRoundStarted:
		fmt.Fprintf(w, "  [%d] ROUND %d (%s)\n", event.Seq, event.Round, event.Strategy)
	case ir.EventRuleFired:
		fmt.Fprintf(w, "  [%d] FIRE %s +%d\n", event.Seq, event.Rule, event.Added)
	case ir.EventFactDerived:
		fmt.Fprintf(w, "  [%d] DERIVE %s\n", event.Seq, event.Fact)
	case ir.EventFixpointReached:
		fmt.Fprintf(w, "  [%d] FIXPOINT after %d round(s), %d derived\n", event.Seq, event.Round, event.Added)
	default:
		fmt.Fprintf(w, "  [%d] %s\n", event.Seq, event.Kind)
	}
}
