package mathpad_test

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/njchilds90/mathpad"
	"github.com/njchilds90/mathpad/engine"
)

func startDispatcher(t *testing.T) *mathpad.Dispatcher {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed")
	}
	if err := exec.Command("python3", "-c", "import sympy").Run(); err != nil {
		t.Skip("sympy not importable")
	}
	eng := engine.NewSymPy(engine.WithReadyCeiling(time.Minute))
	if err := eng.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = eng.Close() })
	if err := eng.WaitReady(context.Background()); err != nil {
		t.Fatal(err)
	}
	return mathpad.NewDispatcher(eng, mathpad.WithSamples(21))
}

func TestSolveEquationEndToEnd(t *testing.T) {
	d := startDispatcher(t)

	result, err := d.Dispatch(context.Background(), "x^2=4", mathpad.CmdSolve)
	if err != nil {
		t.Fatal(err)
	}
	text, ok := result.(*mathpad.TextResult)
	if !ok {
		t.Fatalf("want *TextResult, got %T", result)
	}
	if !strings.Contains(text.Raw, "-2") || !strings.Contains(text.Raw, "2") {
		t.Errorf("want both roots in %q", text.Raw)
	}
	if text.Markup == "" {
		t.Error("want typeset markup alongside the plain rendering")
	}
}

func TestDifferentiateEndToEnd(t *testing.T) {
	d := startDispatcher(t)

	result, err := d.Dispatch(context.Background(), "2x+1", mathpad.CmdDifferentiate)
	if err != nil {
		t.Fatal(err)
	}
	text, ok := result.(*mathpad.TextResult)
	if !ok {
		t.Fatalf("want *TextResult, got %T", result)
	}
	if text.Raw != "2" {
		t.Errorf("want derivative 2, got %q", text.Raw)
	}
}

func TestGraphEndToEnd(t *testing.T) {
	d := startDispatcher(t)

	// 21 points over [-10, 10] puts a sample exactly on the pole at x=0.
	result, err := d.Dispatch(context.Background(), "1/x", mathpad.CmdGraph)
	if err != nil {
		t.Fatal(err)
	}
	samples, ok := result.(*mathpad.SampleResult)
	if !ok {
		t.Fatalf("want *SampleResult, got %T", result)
	}
	if len(samples.Xs) != 21 {
		t.Fatalf("want 21 points, got %d", len(samples.Xs))
	}
	gaps := 0
	for i, y := range samples.Ys {
		if y == nil {
			gaps++
			if samples.Xs[i] != 0 {
				t.Errorf("gap away from the pole at x=%g", samples.Xs[i])
			}
		}
	}
	if gaps != 1 {
		t.Errorf("want exactly one gap, got %d", gaps)
	}
}
