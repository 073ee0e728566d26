package mathpad

import (
	"fmt"
	"io"
)

// Presenter is the boundary to the display surface. The core never renders,
// animates or touches the clipboard; it only hands over results and a busy
// signal, in the order the commands were issued.
type Presenter interface {
	Busy(busy bool)
	Show(result Result)
	ShowError(err error)
}

// ConsolePresenter writes results as plain text. A nil writer stands for a
// missing display surface: every call degrades to a no-op instead of
// failing.
type ConsolePresenter struct {
	W io.Writer
}

func (p *ConsolePresenter) Busy(busy bool) {
	if p.W == nil || !busy {
		return
	}
	fmt.Fprintln(p.W, "computing...")
}

func (p *ConsolePresenter) Show(result Result) {
	if p.W == nil {
		return
	}
	switch r := result.(type) {
	case *TextResult:
		fmt.Fprintln(p.W, r.Raw)
	case *SampleResult:
		if r.AllGaps() {
			fmt.Fprintln(p.W, "no real-valued graph over the sampled domain")
			return
		}
		for i, x := range r.Xs {
			if r.Ys[i] == nil {
				fmt.Fprintf(p.W, "%g\tundefined\n", x)
				continue
			}
			fmt.Fprintf(p.W, "%g\t%g\n", x, *r.Ys[i])
		}
	}
}

func (p *ConsolePresenter) ShowError(err error) {
	if p.W == nil || err == nil {
		return
	}
	fmt.Fprintln(p.W, "error:", err)
}
