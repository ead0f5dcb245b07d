package ohm

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is the closed tagged family of parsing-expression
// variants the evaluator interprets. Arity is a pure static property:
// the number of bindings the expression contributes to its caller on
// success. Describe renders a canonical, human-readable descriptor,
// used both for the rightmost-failure "expected" set and, for Apply,
// as the basis of its packrat memo key.
type Expression interface {
	Arity() int
	Describe() string
}

// Anything consumes one atom if not at end. Arity 1.
type Anything struct{}

func (Anything) Arity() int      { return 1 }
func (Anything) Describe() string { return "any" }

// End succeeds iff the stream is at end; binds a TerminalNode
// carrying nil. Arity 1.
type End struct{}

func (End) Arity() int       { return 1 }
func (End) Describe() string { return "end" }

// Prim consumes one atom and succeeds iff it equals Value. Arity 1.
type Prim struct{ Value any }

func (Prim) Arity() int { return 1 }
func (p Prim) Describe() string { return fmt.Sprintf("%v", p.Value) }

// StringPrim consumes a run of atoms matching Value exactly. Arity 1.
type StringPrim struct{ Value string }

func (StringPrim) Arity() int { return 1 }
func (s StringPrim) Describe() string { return strconv.Quote(s.Value) }

// Range consumes one atom x of the same primitive domain as Lo,
// succeeding iff Lo <= x <= Hi. Arity 1.
type Range struct{ Lo, Hi any }

func (Range) Arity() int { return 1 }
func (r Range) Describe() string { return fmt.Sprintf("[%v-%v]", r.Lo, r.Hi) }

// UnicodeChar consumes one atom matching a named Unicode category,
// script or property predicate. Arity 1.
type UnicodeChar struct{ Pattern string }

func (UnicodeChar) Arity() int { return 1 }
func (u UnicodeChar) Describe() string { return `\p{` + u.Pattern + `}` }

// Param evaluates the Index-th actual argument of the current
// application. Its static arity is not meaningful in isolation: by
// the time an expression tree is evaluated, every Param reachable
// from a rule body is resolved against the enclosing application's
// actual arguments (see substitute in apply.go). Describe is only
// used pre-substitution, e.g. by Grammar.Validate diagnostics.
type Param struct{ Index int }

func (Param) Arity() int { return 0 }
func (p Param) Describe() string { return fmt.Sprintf("param(%d)", p.Index) }

// Lex enters lexical context (disabling implicit whitespace
// skipping), evaluates Expr, and restores context. Arity of Expr.
type Lex struct{ Expr Expression }

func (l Lex) Arity() int       { return l.Expr.Arity() }
func (l Lex) Describe() string { return "lex(" + l.Expr.Describe() + ")" }

// Alt is ordered choice: the first term that succeeds wins. Every
// term must share Arity's value; Arity reports the first term's
// arity (all others are required to match it).
type Alt struct{ Terms []Expression }

func (a Alt) Arity() int {
	if len(a.Terms) == 0 {
		return 0
	}
	return a.Terms[0].Arity()
}

func (a Alt) Describe() string {
	parts := make([]string, len(a.Terms))
	for i, t := range a.Terms {
		parts[i] = t.Describe()
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

// Seq is a left-to-right sequence of factors; its arity is the sum
// of its factors' arities.
type Seq struct{ Factors []Expression }

func (s Seq) Arity() int {
	n := 0
	for _, f := range s.Factors {
		n += f.Arity()
	}
	return n
}

func (s Seq) Describe() string {
	parts := make([]string, len(s.Factors))
	for i, f := range s.Factors {
		parts[i] = f.Describe()
	}
	return strings.Join(parts, " ")
}

// Iter repeats Expr while it succeeds and the match count is below
// Max (a negative Max means unbounded); fails if the count stays
// below Min. Arity equals Expr's arity: on success the accumulated
// bindings are spliced into one "_iter" list per original binding
// column (see evalIter in eval.go).
type Iter struct {
	Expr     Expression
	Min, Max int
}

func (it Iter) Arity() int { return it.Expr.Arity() }

func (it Iter) Describe() string {
	switch {
	case it.Min == 0 && it.Max < 0:
		return it.Expr.Describe() + "*"
	case it.Min == 1 && it.Max < 0:
		return it.Expr.Describe() + "+"
	case it.Min == 0 && it.Max == 1:
		return it.Expr.Describe() + "?"
	default:
		return fmt.Sprintf("%s{%d,%d}", it.Expr.Describe(), it.Min, it.Max)
	}
}

// Not inverts success: it fails if Expr succeeds, and succeeds
// (without consuming input or producing bindings) if Expr fails.
// Arity 0.
type Not struct{ Expr Expression }

func (Not) Arity() int       { return 0 }
func (n Not) Describe() string { return "~" + n.Expr.Describe() }

// Lookahead evaluates Expr and restores pos on success, without
// consuming input either way. Arity of Expr.
type Lookahead struct{ Expr Expression }

func (l Lookahead) Arity() int       { return l.Expr.Arity() }
func (l Lookahead) Describe() string { return "&" + l.Expr.Describe() }

// Arr requires the current atom to be an array, pushes a nested
// stream over it, evaluates Expr, then requires the nested stream be
// at end. Arity 0: Arr validates shape, it doesn't capture content, so
// Expr's own bindings are discarded regardless of its arity.
type Arr struct{ Expr Expression }

func (Arr) Arity() int       { return 0 }
func (a Arr) Describe() string { return "[" + a.Expr.Describe() + "]" }

// Str requires the current atom to be a string, matches Expr over
// its code-point stream followed by End, and pops the synthetic End
// binding. Arity 0.
type Str struct{ Expr Expression }

func (Str) Arity() int       { return 0 }
func (s Str) Describe() string { return "str(" + s.Expr.Describe() + ")" }

// ObjProp is one declared property of an Obj pattern: a required own
// property name and the pattern its value must match.
type ObjProp struct {
	Name    string
	Pattern Expression
}

// Obj requires the current atom to be object-like. Every declared
// property must be present as an own property and match its pattern.
// If Lenient, the match succeeds regardless of extra own properties
// and binds the leftover properties as an object (Arity 1); otherwise
// it only succeeds when the object has exactly len(Props) own
// properties (Arity 0).
type Obj struct {
	Props   []ObjProp
	Lenient bool
}

func (o Obj) Arity() int {
	if o.Lenient {
		return 1
	}
	return 0
}

func (o Obj) Describe() string {
	parts := make([]string, len(o.Props))
	for i, p := range o.Props {
		parts[i] = p.Name + ": " + p.Pattern.Describe()
	}
	body := strings.Join(parts, ", ")
	if o.Lenient {
		if body != "" {
			body += ", "
		}
		body += "..."
	}
	return "{" + body + "}"
}

// Apply is a rule application: RuleName plus the ordered actual
// argument expressions declared at the call site. Args may themselves
// reference the enclosing rule's formal parameters via Param; these
// are resolved against the caller's own resolved arguments each time
// the Apply is evaluated (see substitute in apply.go). Arity is
// always 1: a successful application contributes exactly one Node,
// the freshly built RuleNode (or a replayed memo value) for the rule.
type Apply struct {
	RuleName string
	Args     []Expression
}

func (Apply) Arity() int { return 1 }

// Describe renders the application's canonical memo key:
// "ruleName" with no arguments, or "ruleName<arg1,arg2,...>" with the
// canonical descriptors of its (already substituted) arguments. This
// string must be a total function of the substituted application, as
// required for it to serve as a stable packrat memo key.
func (a Apply) Describe() string {
	if len(a.Args) == 0 {
		return a.RuleName
	}
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.Describe()
	}
	return a.RuleName + "<" + strings.Join(parts, ",") + ">"
}
