package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/popdemes/demes"
	"github.com/popdemes/demes/treeio"
)

// NewConvertCommand builds `demes convert <file>`: resolves the document
// and converts it to generations (spec.md §4.5), optionally rounding to
// integer generations for use by the forward engine.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	var toInteger bool

	cmd := &cobra.Command{
		Use:           "convert <file>",
		Short:         "Convert a resolved document to generations time units",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(rootOpts, args[0], toInteger, cmd)
		},
	}
	cmd.Flags().BoolVar(&toInteger, "integer", false, "round to integer generations (half away from zero)")
	return cmd
}

func runConvert(opts *RootOptions, path string, toInteger bool, cmd *cobra.Command) error {
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

	var converted *demes.Graph
	if toInteger {
		converted, err = g.ToIntegerGenerations(demes.RoundHalfAwayFromZero)
	} else {
		converted, err = g.ToGenerations()
	}
	if err != nil {
		return outputResolutionError(formatter, err)
	}

	canonical, err := converted.Dumps()
	if err != nil {
		return outputResolutionError(formatter, err)
	}
	return formatter.Success(canonical)
}
