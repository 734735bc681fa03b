package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/prodsys/internal/ir"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	SessionOptions
	NoInfer bool
}

// ListResult is the JSON payload of the list command.
type ListResult struct {
	Session    string    `json:"session"`
	Conditions []ir.Fact `json:"conditions"`
	Derived    int       `json:"derived"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{SessionOptions: SessionOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "list <vocab-dir>",
		Short: "List every condition, grouped by relation type",
		Long: `Load the vocabularies in a directory, run inference to the full
fixpoint and list every condition, grouped by relation type in the order
types were first seen.

Example:
  prodsys list ./testdata/vocab
  prodsys list ./testdata/vocab --no-infer`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.NoInfer, "no-infer", false, "list asserted facts without running inference")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the session to a SQLite database")

	return cmd
}

func runList(opts *ListOptions, dir string, cmd *cobra.Command) (err error) {
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

	result := ListResult{Session: s.engine.Session()}
	if !opts.NoInfer {
		result.Derived = s.engine.RunFull().Derived
		formatter.VerboseLog("Derived %d fact(s)", result.Derived)
	}
	result.Conditions = s.engine.ListConditions()

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	writeConditions(cmd, result.Conditions)
	return nil
}

// writeConditions prints conditions one per line, with a header before
// each relation type.
func writeConditions(cmd *cobra.Command, conditions []ir.Fact) {
	w := cmd.OutOrStdout()
	if len(conditions) == 0 {
		fmt.Fprintln(w, "No conditions")
		return
	}
	current := ""
	for i, f := range conditions {
		if i == 0 || f.Type != current {
			current = f.Type
			fmt.Fprintf(w, "%s:\n", current)
		}
		fmt.Fprintf(w, "  %s\n", f.String())
	}
}
