package engine

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Numeric is a pure-Go backend that evaluates expressions numerically with
// the expr VM. It covers the evaluate action and curve sampling; symbolic
// actions need the SymPy bridge. It is always ready.
type Numeric struct{}

// NewNumeric builds the numeric backend.
func NewNumeric() *Numeric { return &Numeric{} }

func (*Numeric) Ready() bool                     { return true }
func (*Numeric) WaitReady(context.Context) error { return nil }
func (*Numeric) Close() error                    { return nil }

// numericEnv is the evaluation environment: the free variable x plus the
// real-valued functions and constants the engine grammar exposes.
func numericEnv(x float64, withX bool) map[string]any {
	env := map[string]any{
		"pi":    math.Pi,
		"e":     math.E,
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"asin":  math.Asin,
		"acos":  math.Acos,
		"atan":  math.Atan,
		"sinh":  math.Sinh,
		"cosh":  math.Cosh,
		"tanh":  math.Tanh,
		"exp":   math.Exp,
		"ln":    math.Log,
		"log":   math.Log10,
		"sqrt":  math.Sqrt,
		"abs":   math.Abs,
		"floor": math.Floor,
		"ceil":  math.Ceil,
	}
	if withX {
		env["x"] = x
	}
	return env
}

// compile builds a float64-typed program. withX controls whether the free
// variable is in scope: the evaluate action takes the literal expression
// with no free variable assumed, so a stray x is a compile error there.
func (*Numeric) compile(src string, withX bool) (*vm.Program, error) {
	prog, err := expr.Compile(src, expr.Env(numericEnv(0, withX)), expr.AsFloat64())
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	return prog, nil
}

// Do supports OpEvalf only.
func (n *Numeric) Do(ctx context.Context, op Op, src string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Message: "dispatch canceled: " + err.Error()}
	}
	if op != OpEvalf {
		return nil, &Error{Message: fmt.Sprintf("numeric backend cannot %s; symbolic operations need the sympy backend", op)}
	}
	prog, err := n.compile(src, false)
	if err != nil {
		return nil, err
	}
	out, err := expr.Run(prog, numericEnv(0, false))
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	v, ok := out.(float64)
	if !ok {
		return nil, &Error{Message: fmt.Sprintf("expression did not evaluate to a number: %v", out)}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &Error{Message: "expression has no finite value"}
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	return &Result{LaTeX: s, Raw: s}, nil
}

// Sample compiles once and evaluates per point. A point that fails to
// evaluate, or evaluates to something non-finite, is marked NaN.
func (n *Numeric) Sample(ctx context.Context, src string, xs []float64) ([]float64, error) {
	prog, err := n.compile(src, true)
	if err != nil {
		return nil, err
	}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Message: "dispatch canceled: " + err.Error()}
		}
		out, err := expr.Run(prog, numericEnv(x, true))
		if err != nil {
			ys[i] = math.NaN()
			continue
		}
		v, ok := out.(float64)
		if !ok {
			ys[i] = math.NaN()
			continue
		}
		ys[i] = v
	}
	return ys, nil
}
