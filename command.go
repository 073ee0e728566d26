package mathpad

import (
	"fmt"

	"github.com/njchilds90/mathpad/engine"
)

// Command identifies one of the fixed operations a user can request.
type Command string

const (
	CmdSolve         Command = "solve"
	CmdSolveNumeric  Command = "solve-numeric"
	CmdEvaluate      Command = "evaluate"
	CmdFactor        Command = "factor"
	CmdDifferentiate Command = "differentiate"
	CmdIntegrate     Command = "integrate"
	CmdSimplify      Command = "simplify"
	CmdExpand        Command = "expand"
	CmdGraph         Command = "graph"
)

// Commands returns every recognized command in a stable order.
func Commands() []Command {
	return []Command{
		CmdSolve, CmdSolveNumeric, CmdEvaluate, CmdFactor,
		CmdDifferentiate, CmdIntegrate, CmdSimplify, CmdExpand, CmdGraph,
	}
}

// UnknownCommandError reports a command identifier outside the fixed set.
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %q", e.Command)
}

// ParseCommand validates a command identifier. Unknown identifiers are a
// typed error, never a silent default.
func ParseCommand(s string) (Command, error) {
	switch c := Command(s); c {
	case CmdSolve, CmdSolveNumeric, CmdEvaluate, CmdFactor,
		CmdDifferentiate, CmdIntegrate, CmdSimplify, CmdExpand, CmdGraph:
		return c, nil
	}
	return "", &UnknownCommandError{Command: s}
}

// engineOp maps a symbolic command onto the engine action it requests.
// CmdGraph has no engine op; it takes the sampler path instead.
func (c Command) engineOp() (engine.Op, bool) {
	switch c {
	case CmdSolve:
		return engine.OpSolve, true
	case CmdSolveNumeric:
		return engine.OpNSolve, true
	case CmdEvaluate:
		return engine.OpEvalf, true
	case CmdFactor:
		return engine.OpFactor, true
	case CmdDifferentiate:
		return engine.OpDiff, true
	case CmdIntegrate:
		return engine.OpIntegrate, true
	case CmdSimplify:
		return engine.OpSimplify, true
	case CmdExpand:
		return engine.OpExpand, true
	}
	return "", false
}
