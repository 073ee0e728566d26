package mathpad

import (
	"context"
	"fmt"
	"math"

	"github.com/njchilds90/mathpad/engine"
)

// sample evaluates normalized as a numeric function of x at count evenly
// spaced points across the closed domain, endpoints included. Points where
// the value is not a finite real number become nil gaps rather than failing
// the operation; the whole call fails only when the expression cannot be
// evaluated as a single-variable function at all.
func sample(ctx context.Context, eng engine.Engine, normalized string, domain Domain, count int) (*SampleResult, error) {
	if count < 2 {
		return nil, fmt.Errorf("mathpad: sample count must be at least 2, got %d", count)
	}
	if !(domain.Min < domain.Max) {
		return nil, fmt.Errorf("mathpad: invalid sample domain [%g, %g]", domain.Min, domain.Max)
	}
	xs := partition(domain, count)
	ys, err := eng.Sample(ctx, normalized, xs)
	if err != nil {
		return nil, err
	}
	if len(ys) != len(xs) {
		return nil, &engine.Error{Message: fmt.Sprintf("returned %d values for %d sample points", len(ys), len(xs))}
	}
	out := &SampleResult{Xs: xs, Ys: make([]*float64, count)}
	for i, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		v := y
		out.Ys[i] = &v
	}
	return out, nil
}

// partition returns count evenly spaced points over [min, max], inclusive of
// both endpoints and strictly increasing.
func partition(domain Domain, count int) []float64 {
	xs := make([]float64, count)
	step := (domain.Max - domain.Min) / float64(count-1)
	for i := range xs {
		xs[i] = domain.Min + float64(i)*step
	}
	xs[count-1] = domain.Max
	return xs
}
