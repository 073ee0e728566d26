// Package engine defines the boundary to the embedded algebra runtime and
// the backends that implement it. The runtime is an external collaborator:
// callers hand it a normalized expression and an action, and get back either
// a validated result pair or a converted error. Nothing beyond that contract
// is assumed about its internals.
package engine

import (
	"context"
	"errors"
)

// Op names an algebra action in the runtime's own vocabulary.
type Op string

const (
	OpSolve     Op = "solve"     // all roots of the expression in x
	OpNSolve    Op = "nsolve"    // roots forced to decimal approximations
	OpEvalf     Op = "evalf"     // numeric value of a closed expression
	OpFactor    Op = "factor"    // factor over the integers/rationals
	OpDiff      Op = "diff"      // first derivative with respect to x
	OpIntegrate Op = "integrate" // an antiderivative with respect to x
	OpSimplify  Op = "simplify"  // canonical simplification
	OpExpand    Op = "expand"    // full distribution/expansion
)

// Result is the pair of artifacts every symbolic action produces: a typeset
// rendering and a plain one.
type Result struct {
	LaTeX string
	Raw   string
}

// Error is a failure reported by, or on behalf of, the algebra runtime:
// parse failures, unsupported operations, malformed response frames. Raw
// runtime faults never cross the boundary unconverted.
type Error struct {
	Message string
}

func (e *Error) Error() string { return "engine: " + e.Message }

// ErrUnavailable means the runtime has not finished loading. It is distinct
// from a computation failure: the command was never dispatched.
var ErrUnavailable = errors.New("engine: not ready")

// Engine is the embedded algebra runtime. The free variable is always x;
// expressions with other free symbols are not pre-validated and surface as
// engine errors. Implementations serialize frames internally, and callers
// additionally guarantee at most one call in flight.
type Engine interface {
	// Ready reports whether the runtime has finished loading.
	Ready() bool
	// WaitReady blocks until the runtime is ready, the context is done, or
	// the implementation's fixed ceiling elapses; the latter two return
	// ErrUnavailable.
	WaitReady(ctx context.Context) error
	// Do runs a symbolic action on a normalized expression.
	Do(ctx context.Context, op Op, expr string) (*Result, error)
	// Sample evaluates expr as a numeric function of x at each point of xs.
	// Points with no finite real value are marked non-finite (NaN or ±Inf)
	// rather than failing the call; an error means the expression is not
	// evaluable as a function of x at all.
	Sample(ctx context.Context, expr string, xs []float64) ([]float64, error)
	// Close releases the runtime.
	Close() error
}
