// Package scenario runs named demographic-model documents end to end —
// parse, resolve, forward-iterate — and records the resulting trace.
// Ported from the teacher's internal/harness (Scenario/Result shape),
// repointed from concept-action event flows to generation-by-generation
// forward engine output.
package scenario

import (
	"fmt"

	"github.com/popdemes/demes"
	"github.com/popdemes/demes/forward"
	"github.com/popdemes/demes/treeio"
)

// Scenario is one data-driven end-to-end test case.
type Scenario struct {
	Name     string
	YAML     string
	BurnIn   int64
	Rounding demes.RoundingFunc
}

// GenerationTrace is one model generation's recorded engine output.
type GenerationTrace struct {
	T         int64       `json:"t"`
	Parental  []float64   `json:"parental_deme_sizes"`
	Offspring []float64   `json:"offspring_deme_sizes,omitempty"`
	Ancestry  [][]float64 `json:"ancestry_proportions,omitempty"`
}

// Result is the full trace produced by running a Scenario to completion.
type Result struct {
	ScenarioName string            `json:"scenario_name"`
	DemeNames    []string          `json:"deme_names"`
	GraphHash    string            `json:"graph_hash"`
	Trace        []GenerationTrace `json:"trace"`
}

// Run parses, resolves, and forward-iterates a scenario's document,
// recording every generation's parental/offspring sizes and, for demes
// entering their next generation with positive size, their ancestry vector.
func Run(s Scenario) (*Result, error) {
	round := s.Rounding
	if round == nil {
		round = demes.RoundHalfAwayFromZero
	}

	g, err := treeio.Load(treeio.YAMLCodec{}, []byte(s.YAML))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: load: %w", s.Name, err)
	}

	canonical, err := g.Dumps()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: canonicalize: %w", s.Name, err)
	}

	eng, err := forward.NewEngine(g, s.BurnIn, round)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: new engine: %w", s.Name, err)
	}
	eng.InitializeTimeIteration()

	result := &Result{
		ScenarioName: s.Name,
		DemeNames:    g.DemeNames(),
		GraphHash:    demes.GraphHash(canonical),
	}

	for {
		t, ok, err := eng.IterateTime()
		if err != nil {
			return nil, fmt.Errorf("scenario %s: iterate: %w", s.Name, err)
		}
		if !ok {
			break
		}
		if err := eng.UpdateState(t); err != nil {
			return nil, fmt.Errorf("scenario %s: update state at t=%d: %w", s.Name, t, err)
		}

		parental, err := eng.ParentalDemeSizes()
		if err != nil {
			return nil, fmt.Errorf("scenario %s: parental sizes at t=%d: %w", s.Name, t, err)
		}
		offspring, err := eng.OffspringDemeSizes()
		if err != nil {
			return nil, fmt.Errorf("scenario %s: offspring sizes at t=%d: %w", s.Name, t, err)
		}

		gt := GenerationTrace{T: t, Parental: parental, Offspring: offspring}
		for child := range offspring {
			if offspring[child] <= 0 {
				continue
			}
			props, err := eng.AncestryProportions(child)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: ancestry for deme %d at t=%d: %w", s.Name, child, t, err)
			}
			gt.Ancestry = append(gt.Ancestry, props)
		}
		result.Trace = append(result.Trace, gt)
	}
	return result, nil
}
