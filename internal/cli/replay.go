package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/popdemes/demes/internal/store"
)

// NewReplayCommand builds `demes replay`: reads a previously recorded
// forward-engine trace back out of a SQLite trace database, porting the
// teacher's cli.NewReplayCommand's "read a persisted run back" shape.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	var traceDB string
	var runID string

	cmd := &cobra.Command{
		Use:           "replay",
		Short:         "Replay a recorded forward-engine trace from a trace database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, traceDB, runID, cmd)
		},
	}
	cmd.Flags().StringVar(&traceDB, "trace-db", "", "SQLite trace database to read from")
	cmd.Flags().StringVar(&runID, "run-id", "", "run ID to replay")
	cmd.MarkFlagRequired("trace-db")
	cmd.MarkFlagRequired("run-id")
	return cmd
}

func runReplay(opts *RootOptions, traceDB, runID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(traceDB)
	if err != nil {
		return outputCommandError(formatter, "StoreError", err.Error())
	}
	defer st.Close()

	records, err := st.ReadRun(runID)
	if err != nil {
		return outputCommandError(formatter, "StoreError", err.Error())
	}
	if len(records) == 0 {
		return outputCommandError(formatter, "NotFound", fmt.Sprintf("no recorded generations for run %q", runID))
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(formatter.Writer)
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(formatter.Writer, "t=%d parental=%v offspring=%v\n", rec.T, rec.Parental, rec.Offspring)
	}
	return nil
}
