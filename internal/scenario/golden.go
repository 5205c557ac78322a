package scenario

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden runs s and compares its trace against a stored fixture
// under testdata/golden, matching the teacher's RunWithGolden pattern
// (goldie.New with WithFixtureDir/WithNameSuffix), repointed from
// flow-trace snapshots to forward-engine generation traces. Update
// fixtures with `go test ./... -update`.
func RunWithGolden(t *testing.T, s Scenario) (*Result, error) {
	t.Helper()
	result, err := Run(s)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden.json"),
	)
	g.Assert(t, s.Name, body)
	return result, nil
}
