package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/popdemes/demes"
	"github.com/popdemes/demes/forward"
	"github.com/popdemes/demes/internal/store"
	"github.com/popdemes/demes/treeio"
)

// GenerationOutput is one generation's engine output, printed as the
// streaming JSON/text body of `demes engine`.
type GenerationOutput struct {
	T         int64       `json:"t"`
	Parental  []float64   `json:"parental_deme_sizes"`
	Offspring []float64   `json:"offspring_deme_sizes,omitempty"`
}

// NewEngineCommand builds `demes engine <file>`: converts the resolved
// document to integer generations and forward-iterates it, optionally
// persisting every generation to a SQLite trace database for later replay.
func NewEngineCommand(rootOpts *RootOptions) *cobra.Command {
	var burnIn int64
	var traceDB string

	cmd := &cobra.Command{
		Use:           "engine <file>",
		Short:         "Forward-iterate a resolved document generation by generation",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(rootOpts, args[0], burnIn, traceDB, cmd)
		},
	}
	cmd.Flags().Int64Var(&burnIn, "burn-in", 0, "burn-in length in generations")
	cmd.Flags().StringVar(&traceDB, "trace-db", "", "optional SQLite database to persist the trace to")
	return cmd
}

func runEngine(opts *RootOptions, path string, burnIn int64, traceDB string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	codec, err := codecForPath(path)
	if err != nil {
		return outputCommandError(formatter, "BadFormat", err.Error())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return outputCommandError(formatter, "NotFound", fmt.Sprintf("reading %s: %v", path, err))
	}

	g, err := treeio.Load(codec, data)
	if err != nil {
		return outputResolutionError(formatter, err)
	}

	eng, err := forward.NewEngine(g, burnIn, demes.RoundHalfAwayFromZero)
	if err != nil {
		return outputResolutionError(formatter, err)
	}
	eng.InitializeTimeIteration()

	var st *store.Store
	var runID string
	if traceDB != "" {
		st, err = store.Open(traceDB)
		if err != nil {
			return outputCommandError(formatter, "StoreError", err.Error())
		}
		defer st.Close()

		canonical, err := g.Dumps()
		if err != nil {
			return outputResolutionError(formatter, err)
		}
		runID, err = st.BeginRun(demes.GraphHash(canonical), burnIn, eng.ModelEndTime(), eng.NumberOfDemes())
		if err != nil {
			return outputCommandError(formatter, "StoreError", err.Error())
		}
		formatter.VerboseLog("trace run id: %s", runID)
	}

	enc := json.NewEncoder(formatter.Writer)
	for {
		t, ok, err := eng.IterateTime()
		if err != nil {
			return outputResolutionError(formatter, err)
		}
		if !ok {
			break
		}
		if err := eng.UpdateState(t); err != nil {
			return outputResolutionError(formatter, err)
		}
		parental, err := eng.ParentalDemeSizes()
		if err != nil {
			return outputResolutionError(formatter, err)
		}
		offspring, err := eng.OffspringDemeSizes()
		if err != nil {
			return outputResolutionError(formatter, err)
		}

		if st != nil {
			if err := st.RecordGeneration(runID, t, parental, offspring); err != nil {
				return outputCommandError(formatter, "StoreError", err.Error())
			}
		}

		if opts.Format == "json" {
			if err := enc.Encode(GenerationOutput{T: t, Parental: parental, Offspring: offspring}); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(formatter.Writer, "t=%d parental=%v offspring=%v\n", t, parental, offspring)
		}
	}
	return nil
}
