package forward

import (
	"github.com/popdemes/demes"
)

// Engine is the forward traversal engine of spec.md §4.6: given a resolved
// graph converted to integer generations and a burn-in length, it iterates
// generation-by-generation producing parental/offspring deme sizes and
// ancestry-proportion vectors. Ported in spirit from the teacher's
// engine.Clock (monotonic counter) and engine.RuntimeError (sticky failure
// state) patterns, single-threaded per spec.md §5.
//
// An Engine is not safe for concurrent use; instantiate one per traversal.
type Engine struct {
	graph    *demes.Graph
	burnIn   int64
	span     int64
	endTime  int64
	numDemes int

	state State
	err   error
	t     int64 // current model time; meaningful only in StateIterating/StateAtEnd
}

// NewEngine converts graph to integer generations using round and constructs
// an engine with the given burn-in length. The engine starts Uninitialized;
// call InitializeTimeIteration before iterating.
func NewEngine(graph *demes.Graph, burnIn int64, round demes.RoundingFunc) (*Engine, error) {
	if burnIn < 0 {
		return nil, &RuntimeError{Code: ErrCodeBadBurnIn, Message: "burn-in must be >= 0"}
	}
	integral, err := graph.ToIntegerGenerations(round)
	if err != nil {
		return nil, err
	}
	if di, _, ok := integral.HasNonIntegerSizes(); ok {
		d := integral.Demes()[di]
		return nil, &demes.Error{
			Kind:    demes.KindSizeError,
			Entity:  "epoch",
			Name:    d.Name(),
			Message: "non-integer deme size where an integer is required for forward iteration",
		}
	}

	span := computeSpan(integral)
	return &Engine{
		graph:    integral,
		burnIn:   burnIn,
		span:     span,
		endTime:  burnIn + span,
		numDemes: integral.NumDemes(),
		state:    StateUninitialized,
		t:        -1,
	}, nil
}

// computeSpan returns the maximum finite deme start_time in the graph — the
// forward-time depth of the model excluding the eternal pre-origin period
// any infinite-start root deme occupies (spec.md §4.6's "span").
func computeSpan(g *demes.Graph) int64 {
	var max float64
	for _, d := range g.Demes() {
		st := d.StartTime()
		if st.IsInfinite() {
			continue
		}
		if f := st.Float64(); f > max {
			max = f
		}
	}
	return int64(max)
}

// backward converts a forward model time to the graph's backward time.
func (e *Engine) backward(t int64) demes.Time {
	return demes.Time(float64(e.endTime - t))
}

// sizeAtPresent evaluates d's size at backward time t, special-casing the
// present (t == 0): a deme's existence window is half-open (end_time,
// start_time] per spec.md §4.2, so a deme whose final epoch ends at 0 is,
// strictly, not "contained" at backward time 0 — that boundary belongs to
// no epoch. The forward engine still needs a parental/offspring size for
// every deme extant through the present, so at t == 0 it falls back to the
// deme's own end_time/end_size directly rather than the half-open window.
func sizeAtPresent(d demes.Deme, t demes.Time) (demes.DemeSize, bool, error) {
	size, extant, err := d.SizeAt(t)
	if err != nil || extant {
		return size, extant, err
	}
	if float64(t) == 0 && d.EndTime().Float64() == 0 {
		return d.EndSize(), true, nil
	}
	return size, extant, nil
}

// ModelEndTime returns end_time = burn_in + span.
func (e *Engine) ModelEndTime() int64 { return e.endTime }

// NumberOfDemes returns the number of demes in the underlying graph.
func (e *Engine) NumberOfDemes() int { return e.numDemes }

// IsErrorState reports whether the engine is stuck in ErrorState.
func (e *Engine) IsErrorState() bool { return e.state == StateErrorState }

// ErrorMessage returns the sticky error's message, or "" if not in ErrorState.
func (e *Engine) ErrorMessage() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

// fail transitions to ErrorState and records err; every accessor that calls
// this returns zero-valued results and the same error, matching spec.md §7's
// "further operations are no-ops returning an error code."
func (e *Engine) fail(err error) error {
	e.state = StateErrorState
	e.err = err
	return err
}

// InitializeTimeIteration resets the generation counter to 0, transitioning
// Uninitialized/AtEnd/ErrorState -> Iterating.
func (e *Engine) InitializeTimeIteration() {
	e.state = StateIterating
	e.err = nil
	e.t = -1
}

// IterateTime yields successive generations 0, 1, ..., end_time inclusive,
// then ok=false after the last. Calling it outside Iterating/AtEnd is a
// protocol error.
func (e *Engine) IterateTime() (t int64, ok bool, err error) {
	if e.state == StateErrorState {
		return 0, false, e.err
	}
	if e.state != StateIterating && e.state != StateAtEnd {
		return 0, false, e.fail(&RuntimeError{Code: ErrCodeNotIterating, Message: "IterateTime called before InitializeTimeIteration", Time: e.t})
	}
	if e.t >= e.endTime {
		e.state = StateAtEnd
		return 0, false, nil
	}
	e.t++
	e.state = StateIterating
	return e.t, true, nil
}

// UpdateState repositions internal buffers for generation t. t must be one
// already yielded by IterateTime (0 <= t <= end_time).
func (e *Engine) UpdateState(t int64) error {
	if e.state == StateErrorState {
		return e.err
	}
	if t < 0 || t > e.endTime {
		return e.fail(&demes.Error{Kind: demes.KindTimeError, Entity: "engine", Message: "model time out of range"})
	}
	e.t = t
	return nil
}

// ParentalDemeSizes returns, for each deme index, its size at the current
// model time (0 if not extant).
func (e *Engine) ParentalDemeSizes() ([]float64, error) {
	if e.state == StateErrorState {
		return nil, e.err
	}
	out := make([]float64, e.numDemes)
	bt := e.backward(e.t)
	for i, d := range e.graph.Demes() {
		size, extant, err := sizeAtPresent(d, bt)
		if err != nil {
			return nil, e.fail(err)
		}
		if extant {
			out[i] = size.Float64()
		}
	}
	return out, nil
}

// OffspringDemeSizes returns each deme's size at t+1, or nil if t ==
// end_time (no next generation).
func (e *Engine) OffspringDemeSizes() ([]float64, error) {
	if e.state == StateErrorState {
		return nil, e.err
	}
	if e.t == e.endTime {
		return nil, nil
	}
	out := make([]float64, e.numDemes)
	bt := e.backward(e.t + 1)
	for i, d := range e.graph.Demes() {
		size, extant, err := sizeAtPresent(d, bt)
		if err != nil {
			return nil, e.fail(err)
		}
		if extant {
			out[i] = size.Float64()
		}
	}
	return out, nil
}

// AncestryProportions returns the ancestry vector for the offspring deme at
// index child over the t -> t+1 transition, per spec.md §4.6.
func (e *Engine) AncestryProportions(child int) ([]float64, error) {
	if e.state == StateErrorState {
		return nil, e.err
	}
	if e.t == e.endTime {
		return nil, e.fail(&demes.Error{Kind: demes.KindTimeError, Entity: "engine", Message: "no next generation at end_time"})
	}
	if child < 0 || child >= e.numDemes {
		return nil, e.fail(&demes.Error{Kind: demes.KindNameError, Entity: "deme", Message: "deme index out of range"})
	}
	props, err := ancestryProportions(e.graph, child, e.t, e.backward)
	if err != nil {
		return nil, e.fail(err)
	}
	return props, nil
}
