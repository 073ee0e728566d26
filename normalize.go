package mathpad

import (
	"regexp"
	"strings"
)

// Rewrite passes run in a fixed order; later passes assume earlier ones have
// already removed ambiguity (e.g. implicit multiplication is inserted before
// whitespace is collapsed).
var (
	implicitCoeff = regexp.MustCompile(`(\d)([a-zA-Z])`)
	closeParenRun = regexp.MustCompile(`\)([a-zA-Z0-9])`)
	digitParen    = regexp.MustCompile(`(\d)\(`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Normalize rewrites a loosely typed expression into the strict grammar the
// algebra engine accepts: `^` becomes the `**` exponent token, implicit
// multiplication (`2x`, `3(x+1)`, `(x+1)(x-1)`) becomes explicit, and an
// equation `lhs=rhs` is moved to zero form `lhs-(rhs)`.
//
// Normalize is pure and total: it never fails. Input it cannot make sense of
// is passed through and rejected by the engine instead. Only the first `=` is
// consumed; any further `=` stays embedded and surfaces as an engine-side
// parse error. Multi-character operators such as `>=` are not handled.
func Normalize(input string) string {
	s := strings.TrimSpace(input)
	s = strings.ReplaceAll(s, "^", "**")
	s = implicitCoeff.ReplaceAllString(s, "$1*$2")
	s = closeParenRun.ReplaceAllString(s, ")*$1")
	s = digitParen.ReplaceAllString(s, "$1*(")
	s = strings.ReplaceAll(s, ")(", ")*(")
	s = whitespaceRun.ReplaceAllString(s, " ")
	if i := strings.IndexByte(s, '='); i >= 0 {
		lhs := strings.TrimSpace(s[:i])
		rhs := strings.TrimSpace(s[i+1:])
		s = lhs + "-(" + rhs + ")"
	}
	return s
}
