package ohm

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/xerrors"
)

// ParseFailure describes the expected negative outcome of a parse
// (spec.md §7): the rightmost position reached during the attempt,
// plus the set of expression descriptors that were expected there. A
// failed MatchResult reports the same two values in its FailurePos and
// Expected fields; Match neither constructs a ParseFailure nor returns
// one. It implements error so it can be logged or formatted.
type ParseFailure struct {
	Pos      int
	Expected []string
}

// Error renders the failure in the spirit of the teacher's farthest-
// failure-position type (vm/static_code.go's ϡffp.Error, "expected %q,
// got %#U"), adapted to this module's rightmost failure *set* (spec.md
// §8 property 8): ϡffp tracks one literal and the single rune it saw,
// but a position can have several expected descriptors outstanding at
// once, so this renders the sorted, joined set instead of a single %q.
func (f ParseFailure) Error() string {
	if len(f.Expected) == 0 {
		return fmt.Sprintf("parse failed at position %d", f.Pos)
	}
	sorted := append([]string(nil), f.Expected...)
	sort.Strings(sorted)
	return fmt.Sprintf("at position %d: expected %s", f.Pos, strings.Join(sorted, " or "))
}

// InvalidGrammarError signals a programmer error in the grammar
// itself: an unknown rule name, an arity mismatch, or a parameter
// index out of range. It is fatal to the current parse and is always
// returned as a genuine Go error (spec.md §7), never folded into a
// ParseFailure.
type InvalidGrammarError struct {
	Causes []error
}

func newInvalidGrammar(causes []error) *InvalidGrammarError {
	return &InvalidGrammarError{Causes: causes}
}

func (e *InvalidGrammarError) Error() string {
	msgs := make([]string, len(e.Causes))
	for i, c := range e.Causes {
		msgs[i] = c.Error()
	}
	return "invalid grammar: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the first cause so that errors.Is/errors.As chains
// started with xerrors keep working across the Apply recursion.
func (e *InvalidGrammarError) Unwrap() error {
	if len(e.Causes) == 0 {
		return nil
	}
	return e.Causes[0]
}

// wrapInvalidGrammar wraps a single cause with positional context
// using xerrors, mirroring the teacher's parserError prefixing of an
// inner error with the rule in which it occurred.
func wrapInvalidGrammar(format string, args ...any) *InvalidGrammarError {
	return newInvalidGrammar([]error{xerrors.Errorf(format, args...)})
}

// internalError marks an unreachable-absent-bugs invariant violation:
// bindings-stack underflow on restore, a memo collision on conflicting
// keys, or LR-frame underflow (spec.md §7). Match recovers from a
// panic of this type (or of type *InvalidGrammarError) at the top
// level and converts it to a returned error; any other panic
// propagates, matching the teacher's Recover
// option semantics (vm/static_code.go, ϡvm.dispatch).
type internalError struct {
	msg string
}

func (e internalError) Error() string { return "internal error: " + e.msg }

func panicInternal(format string, args ...any) {
	panic(internalError{msg: fmt.Sprintf(format, args...)})
}
