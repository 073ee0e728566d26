package mathpad_test

import (
	"errors"
	"testing"

	"github.com/njchilds90/mathpad"
)

func TestParseCommandRecognized(t *testing.T) {
	for _, c := range mathpad.Commands() {
		got, err := mathpad.ParseCommand(string(c))
		if err != nil {
			t.Errorf("ParseCommand(%q): unexpected error: %v", c, err)
			continue
		}
		if got != c {
			t.Errorf("ParseCommand(%q): want %s, got %s", c, c, got)
		}
	}
}

func TestParseCommandUnknown(t *testing.T) {
	for _, s := range []string{"derive", "", "Solve", "graph "} {
		_, err := mathpad.ParseCommand(s)
		if err == nil {
			t.Errorf("ParseCommand(%q): want error, got nil", s)
			continue
		}
		var unknown *mathpad.UnknownCommandError
		if !errors.As(err, &unknown) {
			t.Errorf("ParseCommand(%q): want *UnknownCommandError, got %T", s, err)
			continue
		}
		if unknown.Command != s {
			t.Errorf("ParseCommand(%q): error carries %q", s, unknown.Command)
		}
	}
}

func TestCommandsStable(t *testing.T) {
	if n := len(mathpad.Commands()); n != 9 {
		t.Errorf("want 9 commands, got %d", n)
	}
	seen := map[mathpad.Command]bool{}
	for _, c := range mathpad.Commands() {
		if seen[c] {
			t.Errorf("duplicate command %s", c)
		}
		seen[c] = true
	}
}
