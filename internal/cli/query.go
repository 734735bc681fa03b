package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/prodsys/internal/ir"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	SessionOptions
	Fast  bool
	Exact bool
}

// QueryResult is the JSON payload of the query command.
type QueryResult struct {
	Session  string    `json:"session"`
	Subject  string    `json:"subject"`
	Object   string    `json:"object"`
	Strategy string    `json:"strategy"`
	Facts    []ir.Fact `json:"facts"`
	Rounds   int       `json:"rounds"`
	Derived  int       `json:"derived"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{SessionOptions: SessionOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "query <vocab-dir> <subject> <object>",
		Short: "List every relation from subject to object",
		Long: `Load the vocabularies in a directory, run inference and list every
relation that holds from subject to object.

By default the full fixpoint is computed. --fast only fires rules
triggered by facts mentioning the two entities; --exact skips inference
and reads the asserted facts only.

Example:
  prodsys query ./testdata/vocab fork knife
  prodsys query ./testdata/vocab fork knife --fast --db ./prodsys.db`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Fast, "fast", false, "only fire rules relevant to the two entities")
	cmd.Flags().BoolVar(&opts.Exact, "exact", false, "skip inference and read asserted facts only")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the session to a SQLite database")
	cmd.MarkFlagsMutuallyExclusive("fast", "exact")

	return cmd
}

func runQuery(opts *QueryOptions, dir, subject, object string, cmd *cobra.Command) (err error) {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := openSession(context.Background(), &opts.SessionOptions, dir, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); err == nil {
			err = closeErr
		}
	}()
	formatter.VerboseLog("Loaded %d vocabularies from %s (session %s)", s.vocabularies, dir, s.engine.Session())

	result := QueryResult{
		Session: s.engine.Session(),
		Subject: subject,
		Object:  object,
	}
	switch {
	case opts.Exact:
		result.Strategy = "exact"
		result.Facts = s.engine.QueryExact(subject, object)
	case opts.Fast:
		stats := s.engine.RunRelevant(subject, object)
		result.Strategy = string(stats.Strategy)
		result.Rounds, result.Derived = stats.Rounds, stats.Derived
		result.Facts = s.engine.QueryExact(subject, object)
	default:
		stats := s.engine.RunFull()
		result.Strategy = string(stats.Strategy)
		result.Rounds, result.Derived = stats.Rounds, stats.Derived
		result.Facts = s.engine.QueryExact(subject, object)
	}
	formatter.VerboseLog("Strategy %s: %d round(s), %d fact(s) derived", result.Strategy, result.Rounds, result.Derived)

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputQueryText(cmd, result)
}

func outputQueryText(cmd *cobra.Command, result QueryResult) error {
	w := cmd.OutOrStdout()
	if len(result.Facts) == 0 {
		fmt.Fprintf(w, "No relation from %s to %s\n", result.Subject, result.Object)
		return nil
	}
	for _, f := range result.Facts {
		fmt.Fprintln(w, f.String())
	}
	return nil
}
