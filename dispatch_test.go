package mathpad

import (
	"context"
	"errors"
	"testing"

	"github.com/njchilds90/mathpad/engine"
)

// fakeEngine records the last call and replays canned answers. block, when
// non-nil, holds Do open until the channel is closed.
type fakeEngine struct {
	notReady  bool
	lastOp    engine.Op
	lastExpr  string
	result    *engine.Result
	err       error
	ys        []float64
	sampleErr error

	entered chan struct{}
	block   chan struct{}
}

func (f *fakeEngine) Ready() bool                     { return !f.notReady }
func (f *fakeEngine) WaitReady(context.Context) error { return nil }
func (f *fakeEngine) Close() error                    { return nil }

func (f *fakeEngine) Do(ctx context.Context, op engine.Op, expr string) (*engine.Result, error) {
	f.lastOp = op
	f.lastExpr = expr
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &engine.Result{LaTeX: "ok", Raw: "ok"}, nil
}

func (f *fakeEngine) Sample(ctx context.Context, expr string, xs []float64) ([]float64, error) {
	f.lastExpr = expr
	if f.sampleErr != nil {
		return nil, f.sampleErr
	}
	if f.ys != nil {
		return f.ys, nil
	}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = x
	}
	return ys, nil
}

func TestDispatchUnknownCommand(t *testing.T) {
	d := NewDispatcher(&fakeEngine{})
	_, err := d.Dispatch(context.Background(), "x", Command("derive"))
	var unknown *UnknownCommandError
	if !errors.As(err, &unknown) {
		t.Fatalf("want *UnknownCommandError, got %v", err)
	}
}

func TestDispatchEngineUnavailable(t *testing.T) {
	d := NewDispatcher(&fakeEngine{notReady: true})
	_, err := d.Dispatch(context.Background(), "x", CmdSimplify)
	if !errors.Is(err, engine.ErrUnavailable) {
		t.Fatalf("want engine.ErrUnavailable, got %v", err)
	}
	if d.Busy() {
		t.Error("dispatcher still busy after failed dispatch")
	}
}

func TestDispatchNormalizesAndRoutes(t *testing.T) {
	fake := &fakeEngine{result: &engine.Result{LaTeX: "2 x", Raw: "2*x"}}
	d := NewDispatcher(fake)

	result, err := d.Dispatch(context.Background(), "x^2", CmdDifferentiate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.lastOp != engine.OpDiff {
		t.Errorf("want op diff, got %s", fake.lastOp)
	}
	if fake.lastExpr != "x**2" {
		t.Errorf("want normalized x**2, got %s", fake.lastExpr)
	}
	text, ok := result.(*TextResult)
	if !ok {
		t.Fatalf("want *TextResult, got %T", result)
	}
	if text.Markup != "2 x" || text.Raw != "2*x" {
		t.Errorf("want both artifacts carried through, got %+v", text)
	}
}

func TestDispatchRoutesEveryCommand(t *testing.T) {
	fake := &fakeEngine{}
	d := NewDispatcher(fake, WithSamples(5))
	for _, c := range Commands() {
		result, err := d.Dispatch(context.Background(), "x+1", c)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", c, err)
			continue
		}
		if c == CmdGraph {
			if _, ok := result.(*SampleResult); !ok {
				t.Errorf("%s: want *SampleResult, got %T", c, result)
			}
			continue
		}
		op, ok := c.engineOp()
		if !ok {
			t.Errorf("%s: no engine op", c)
			continue
		}
		if fake.lastOp != op {
			t.Errorf("%s: want op %s, got %s", c, op, fake.lastOp)
		}
		if _, ok := result.(*TextResult); !ok {
			t.Errorf("%s: want *TextResult, got %T", c, result)
		}
	}
}

func TestDispatchGraph(t *testing.T) {
	fake := &fakeEngine{}
	d := NewDispatcher(fake, WithDomain(Domain{Min: 0, Max: 4}), WithSamples(5))

	result, err := d.Dispatch(context.Background(), "x", CmdGraph)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	samples, ok := result.(*SampleResult)
	if !ok {
		t.Fatalf("want *SampleResult, got %T", result)
	}
	if len(samples.Xs) != 5 || len(samples.Ys) != 5 {
		t.Fatalf("want 5 points, got %d/%d", len(samples.Xs), len(samples.Ys))
	}
	if samples.Xs[0] != 0 || samples.Xs[4] != 4 {
		t.Errorf("want endpoints 0 and 4, got %g and %g", samples.Xs[0], samples.Xs[4])
	}
}

func TestDispatchBusy(t *testing.T) {
	fake := &fakeEngine{
		entered: make(chan struct{}),
		block:   make(chan struct{}),
	}
	d := NewDispatcher(fake)

	done := make(chan error, 1)
	go func() {
		_, err := d.Dispatch(context.Background(), "x", CmdSimplify)
		done <- err
	}()
	<-fake.entered

	if !d.Busy() {
		t.Error("want Busy while a command is in flight")
	}
	_, err := d.Dispatch(context.Background(), "x", CmdSimplify)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("want ErrBusy, got %v", err)
	}

	close(fake.block)
	if err := <-done; err != nil {
		t.Fatalf("first dispatch failed: %v", err)
	}
	if d.Busy() {
		t.Error("dispatcher still busy after completion")
	}

	// The guard releases; the next command goes through.
	fake.entered = nil
	fake.block = nil
	if _, err := d.Dispatch(context.Background(), "x", CmdSimplify); err != nil {
		t.Fatalf("dispatch after release: %v", err)
	}
}

func TestDispatchEngineErrorPassthrough(t *testing.T) {
	fake := &fakeEngine{err: &engine.Error{Message: "could not parse expression"}}
	d := NewDispatcher(fake)

	_, err := d.Dispatch(context.Background(), "x+*1", CmdSolve)
	var engineErr *engine.Error
	if !errors.As(err, &engineErr) {
		t.Fatalf("want *engine.Error, got %v", err)
	}
	if d.Busy() {
		t.Error("dispatcher still busy after engine error")
	}
}
