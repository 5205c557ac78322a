package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateYAMLAcceptsWellFormedDocument(t *testing.T) {
	errs := ValidateYAML([]byte(`
time_units: generations
demes:
  - name: A
    epochs:
      - start_size: 100
`))
	assert.Empty(t, errs)
}

func TestValidateYAMLRejectsUnknownField(t *testing.T) {
	errs := ValidateYAML([]byte(`
time_units: generations
demes:
  - name: A
    bogus_field: 1
    epochs:
      - start_size: 100
`))
	require.NotEmpty(t, errs)
}

func TestValidateYAMLRejectsMissingDemes(t *testing.T) {
	errs := ValidateYAML([]byte(`
time_units: generations
`))
	require.NotEmpty(t, errs)
}

func TestValidateYAMLRejectsWrongType(t *testing.T) {
	errs := ValidateYAML([]byte(`
time_units: generations
demes:
  - name: A
    epochs:
      - start_size: "not a number"
`))
	require.NotEmpty(t, errs)
}
