package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/prodsys/internal/engine"
	"github.com/roach88/prodsys/internal/ir"
)

// DemoResult is the JSON payload of the demo command.
type DemoResult struct {
	Session string    `json:"session"`
	Before  []ir.Fact `json:"before"`
	After   []ir.Fact `json:"after"`
	Query   []ir.Fact `json:"query"`
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the tableware demo",
		Long: `Seed left of(fork, plate) and left of(plate, knife), register the
left of/right of pair, and print the conditions before and after the
fixpoint, then every relation from fork to knife.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(opts, cmd)
		},
	}

	return cmd
}

func runDemo(opts *SessionOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	engineOpts := []engine.Option{engine.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr()))}
	if opts.Sessions != nil {
		engineOpts = append(engineOpts, engine.WithSessionGenerator(opts.Sessions))
	}
	e := engine.New(engineOpts...)

	for _, seed := range [][2]string{{"fork", "plate"}, {"plate", "knife"}} {
		if _, err := e.InsertFact("left of", seed[0], seed[1]); err != nil {
			return WrapExitError(ExitCommandError, "failed to seed demo", err)
		}
	}
	result := DemoResult{Session: e.Session(), Before: e.ListConditions()}

	if err := e.RegisterRelationPair("left of", "right of"); err != nil {
		return WrapExitError(ExitCommandError, "failed to register rules", err)
	}
	stats := e.RunFull()
	formatter.VerboseLog("Fixpoint after %d round(s), %d fact(s) derived", stats.Rounds, stats.Derived)
	result.After = e.ListConditions()
	result.Query = e.QueryExact("fork", "knife")

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Before inference")
	writeConditions(cmd, result.Before)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "After inference")
	writeConditions(cmd, result.After)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Relations from fork to knife")
	for _, f := range result.Query {
		fmt.Fprintf(w, "  %s\n", f.String())
	}
	return nil
}
