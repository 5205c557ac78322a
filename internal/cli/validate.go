package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/popdemes/demes/internal/schema"
	"github.com/popdemes/demes/treeio"
)

// ValidationResult is the JSON payload for `demes validate`.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand builds `demes validate <file>`: stage R0 (CUE
// structural pre-validation, YAML only) followed by full parse+resolve.
// Every R0 violation is reported; parse+resolve runs only when R0 passes
// and reports the first error it meets — porting the teacher's
// cli.NewValidateCommand's "schema check before full compile" shape.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "validate <file>",
		Short:         "Validate a document without printing its resolved form",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return outputCommandError(formatter, "NotFound", fmt.Sprintf("reading %s: %v", path, err))
	}

	var errs []string

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		formatter.VerboseLog("running stage R0 structural pre-validation")
		for _, e := range schema.ValidateYAML(data) {
			errs = append(errs, e.Error())
		}
	}

	if len(errs) == 0 {
		codec, err := codecForPath(path)
		if err != nil {
			return outputCommandError(formatter, "BadFormat", err.Error())
		}
		if _, err := treeio.Load(codec, data); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}
	return outputValidationSuccess(formatter)
}

func outputValidationSuccess(f *OutputFormatter) error {
	if f.Format == "json" {
		return f.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintln(f.Writer, "document is valid")
	return nil
}

func outputValidationErrors(f *OutputFormatter, errs []string) error {
	if f.Format == "json" {
		_ = f.Success(ValidationResult{Valid: false, Errors: errs})
	} else {
		fmt.Fprintln(f.Writer, "document is invalid:")
		for _, e := range errs {
			fmt.Fprintf(f.Writer, "  - %s\n", e)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
