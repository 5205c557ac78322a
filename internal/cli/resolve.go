package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/popdemes/demes/treeio"
)

// NewResolveCommand builds `demes resolve <file>`: parses and resolves a
// document, printing the canonical MDM serialization (or its graph hash
// with --hash-only).
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	var hashOnly bool

	cmd := &cobra.Command{
		Use:           "resolve <file>",
		Short:         "Resolve a demographic model document to its canonical form",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args[0], hashOnly, cmd)
		},
	}
	cmd.Flags().BoolVar(&hashOnly, "hash-only", false, "print only the graph's canonical hash")
	return cmd
}

func runResolve(opts *RootOptions, path string, hashOnly bool, cmd *cobra.Command) error {
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
	formatter.VerboseLog("resolved %d deme(s)", g.NumDemes())

	if hashOnly {
		hash, err := g.Hash()
		if err != nil {
			return outputResolutionError(formatter, err)
		}
		return formatter.Success(hash)
	}

	canonical, err := g.Dumps()
	if err != nil {
		return outputResolutionError(formatter, err)
	}
	return formatter.Success(canonical)
}

func outputCommandError(f *OutputFormatter, kind, message string) error {
	_ = f.Error(kind, message, nil)
	return NewExitError(ExitCommandError, message)
}

func outputResolutionError(f *OutputFormatter, err error) error {
	_ = f.Error("ResolutionError", err.Error(), nil)
	return WrapExitError(ExitFailure, "resolution failed", err)
}
