// Package schema is stage R0 of resolution: structural pre-validation of a
// raw HDM document against a CUE schema, before demes.Parse/demes.Resolve
// run the semantic stages. Ported from the teacher's cli.LoadSpecs /
// compiler.CompileConcept CUE-driven loading — same cuecontext.New +
// CompileString + LookupPath shape, repointed from concept/sync specs to
// the demographic-model document.
package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/encoding/yaml"
)

// hdmSchema constrains the shape a Tree must have before the resolver's
// semantic stages run: required top-level keys, value types, and the
// unknown-field rejection the resolver otherwise only catches per-entity.
// It intentionally stops short of semantic checks (ordering, existence
// windows, proportion sums) — those are demes.Resolve's job.
const hdmSchema = `
#Epoch: {
	end_time?:      number
	start_size?:    number
	end_size?:      number
	size_function?: string
	cloning_rate?:  number
	selfing_rate?:  number
}

#Deme: {
	name:          string
	description?:  string
	ancestors?:    [...string]
	proportions?:  [...number]
	start_time?:   number
	epochs:        [...#Epoch]
	defaults?:     {...}
}

#Migration: {
	demes?:      [...string]
	source?:     string
	dest?:       string
	rate?:       number
	start_time?: number
	end_time?:   number
}

#Pulse: {
	sources:      [...string]
	dest:         string
	time:         number
	proportions?: [...number]
}

time_units?:      string
generation_time?: number
description?:     string
doi?:             [...string]
metadata?:        {...}
defaults?:        {...}
demes:            [#Deme, ...#Deme]
migrations?:      [...#Migration]
pulses?:          [...#Pulse]
`

// ValidationError is one CUE schema violation, positioned when the
// underlying CUE error carries a source location.
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidateYAML structurally validates raw YAML bytes against the HDM
// schema, returning every violation found (CUE unifies strictly, so
// unknown fields and type mismatches are both reported this way).
func ValidateYAML(data []byte) []error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(hdmSchema)
	if err := schemaVal.Err(); err != nil {
		return []error{fmt.Errorf("schema: internal CUE schema is invalid: %w", err)}
	}

	expr, err := yaml.Extract("document.yaml", data)
	if err != nil {
		return []error{fmt.Errorf("schema: parsing YAML: %w", err)}
	}
	docVal := ctx.BuildFile(expr)
	if err := docVal.Err(); err != nil {
		return []error{fmt.Errorf("schema: building document: %w", err)}
	}

	unified := schemaVal.Unify(docVal)
	if err := unified.Validate(cue.Concrete(true), cue.All()); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []error {
	var out []error
	for _, e := range cueerrors.Errors(err) {
		path := ""
		if ps := e.Path(); len(ps) > 0 {
			for i, p := range ps {
				if i > 0 {
					path += "."
				}
				path += p
			}
		}
		out = append(out, ValidationError{Path: path, Message: e.Error()})
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Message: err.Error()})
	}
	return out
}
