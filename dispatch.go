// Package mathpad implements the expression pipeline behind a math pad: a
// raw user expression is normalized into the algebra engine's grammar, a
// command is dispatched to the engine or to the numeric sampler, and the
// result comes back as typeset text or as a sampled curve. All mathematics
// is delegated to the engine; this package contributes no algebra of its own.
package mathpad

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/njchilds90/mathpad/engine"
)

// ErrBusy is returned when a dispatch is attempted while a prior command is
// still outstanding. The engine is a shared singleton; one call in flight.
var ErrBusy = errors.New("mathpad: a command is already in flight")

// Domain is the closed interval a graph is sampled over.
type Domain struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// DefaultDomain is the interval graphed when no other is configured.
var DefaultDomain = Domain{Min: -10, Max: 10}

// DefaultSamples is the point count for a final render. Quick checks may use
// fewer.
const DefaultSamples = 600

// Dispatcher routes a command to the engine bridge or the sampler. It holds
// the engine handle explicitly; readiness is a property of that handle, not
// of ambient global state.
type Dispatcher struct {
	eng     engine.Engine
	domain  Domain
	samples int
	busy    atomic.Bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDomain sets the graph domain.
func WithDomain(d Domain) Option {
	return func(dp *Dispatcher) { dp.domain = d }
}

// WithSamples sets the graph point count.
func WithSamples(n int) Option {
	return func(dp *Dispatcher) { dp.samples = n }
}

// NewDispatcher wires a dispatcher to an engine handle.
func NewDispatcher(eng engine.Engine, opts ...Option) *Dispatcher {
	d := &Dispatcher{eng: eng, domain: DefaultDomain, samples: DefaultSamples}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Busy reports whether a command is currently outstanding.
func (d *Dispatcher) Busy() bool { return d.busy.Load() }

// Dispatch normalizes input and runs command against the engine. Symbolic
// commands yield a *TextResult, graph yields a *SampleResult.
//
// Failure cases are kept distinct: an identifier outside the command set is
// an *UnknownCommandError, a dispatch while another command is outstanding is
// ErrBusy, an engine that has not finished loading is engine.ErrUnavailable,
// and a rejected or failed computation is an *engine.Error. Every failure is
// terminal for this command only; the dispatcher stays usable.
func (d *Dispatcher) Dispatch(ctx context.Context, input string, command Command) (Result, error) {
	if _, err := ParseCommand(string(command)); err != nil {
		return nil, err
	}
	if !d.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer d.busy.Store(false)

	if !d.eng.Ready() {
		return nil, engine.ErrUnavailable
	}

	normalized := Normalize(input)
	if command == CmdGraph {
		return sample(ctx, d.eng, normalized, d.domain, d.samples)
	}
	op, _ := command.engineOp()
	res, err := d.eng.Do(ctx, op, normalized)
	if err != nil {
		return nil, err
	}
	return &TextResult{Markup: res.LaTeX, Raw: res.Raw}, nil
}
