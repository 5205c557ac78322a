package forward

import "fmt"

// RuntimeError is a misuse of the engine's protocol (a negative burn-in, or
// iterating before initialization), as opposed to a domain error, which the
// engine reports as *demes.Error. Ported from the teacher's
// engine.RuntimeError: a structured code plus the model time at which the
// failure occurred.
type RuntimeError struct {
	Code    RuntimeErrorCode
	Message string
	Time    int64
}

// RuntimeErrorCode categorizes forward-engine protocol errors. Domain
// failures such as AncestryInvariantViolated or SizeError are not coded here.
type RuntimeErrorCode string

const (
	// ErrCodeNotIterating: IterateTime was called before InitializeTimeIteration.
	ErrCodeNotIterating RuntimeErrorCode = "NOT_ITERATING"
	// ErrCodeBadBurnIn: burn-in length was negative.
	ErrCodeBadBurnIn RuntimeErrorCode = "BAD_BURN_IN"
)

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s at t=%d: %s", e.Code, e.Time, e.Message)
}
