package mathpad

// Result is the outcome of one dispatched command. Results are created per
// invocation and discarded after presentation; nothing outlives a command.
type Result interface {
	// Kind is "text" for symbolic results and "samples" for a graph.
	Kind() string
}

// TextResult carries both renderings of a symbolic result: Markup is the
// typeset (LaTeX) form, Raw the plain form. Both are always populated so a
// presenter can display or copy either independently.
type TextResult struct {
	Markup string `json:"markup"`
	Raw    string `json:"raw"`
}

func (*TextResult) Kind() string { return "text" }

// SampleResult is a curve sampled over a closed interval. Xs is strictly
// increasing and len(Xs) == len(Ys); a nil Y marks a point where the
// expression has no finite real value (a gap in the plot).
type SampleResult struct {
	Xs []float64  `json:"xs"`
	Ys []*float64 `json:"ys"`
}

func (*SampleResult) Kind() string { return "samples" }

// AllGaps reports whether no sample produced a real value, meaning the
// expression has no real-valued graph over the domain. Callers should treat
// this as an empty plot, not an error.
func (r *SampleResult) AllGaps() bool {
	for _, y := range r.Ys {
		if y != nil {
			return false
		}
	}
	return true
}
