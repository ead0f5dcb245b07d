package ohm

import (
	"fmt"
	"unicode"
)

// Rule is one named entry of a Grammar: its formal parameter count,
// its body expression, and an optional human-readable Description.
// When Description is non-empty, failures from inside the body are
// collapsed into a single synthetic failure labelled by Description
// instead of surfacing every internal alternative (spec.md §4.3).
type Rule struct {
	Params      int
	Body        Expression
	Description string
}

// Grammar is a compiled PEG: a name-to-rule dictionary, plus the name
// of the rule used to skip whitespace in syntactic context. Grammar
// source parsing and compilation to this shape are out of scope for
// this package; Grammar is the hand-off point from that front-end.
type Grammar struct {
	Rules            map[string]*Rule
	SpacesRule       string
	DefaultStartRule string
}

// lookup resolves a rule name to its definition, reporting whether it
// exists.
func (g *Grammar) lookup(name string) (*Rule, bool) {
	r, ok := g.Rules[name]
	return r, ok
}

// spacesApply returns the Apply expression used to skip whitespace in
// syntactic context, or nil if the grammar declares no spaces rule.
func (g *Grammar) spacesApply() *Apply {
	if g.SpacesRule == "" {
		return nil
	}
	if _, ok := g.Rules[g.SpacesRule]; !ok {
		return nil
	}
	return &Apply{RuleName: g.SpacesRule}
}

// isSyntacticName reports whether a rule name begins with an
// uppercase letter, per spec.md §3 "Syntactic rules".
func isSyntacticName(name string) bool {
	if name == "" {
		return false
	}
	r := []rune(name)[0]
	return unicode.IsUpper(r)
}

// Validate walks every rule body once and reports every Apply that
// references an undeclared rule or supplies the wrong number of
// arguments, and every Param index that exceeds its enclosing rule's
// declared parameter count. This is a mechanical pre-flight version
// of the InvalidGrammar checks spec.md §7 requires the evaluator to
// perform; running it eagerly turns a failure that would otherwise
// only surface mid-parse into a single upfront report.
func (g *Grammar) Validate() error {
	var errs []error
	for name, rule := range g.Rules {
		walkExpression(rule.Body, func(e Expression) {
			switch v := e.(type) {
			case *Apply:
				checkApply(g, name, *v, &errs)
			case Apply:
				checkApply(g, name, v, &errs)
			case *Param:
				checkParam(name, *v, rule.Params, &errs)
			case Param:
				checkParam(name, v, rule.Params, &errs)
			}
		})
	}
	if len(errs) == 0 {
		return nil
	}
	return newInvalidGrammar(errs)
}

func checkApply(g *Grammar, ruleName string, a Apply, errs *[]error) {
	target, ok := g.lookup(a.RuleName)
	if !ok {
		*errs = append(*errs, fmt.Errorf("rule %q: undefined rule %q", ruleName, a.RuleName))
		return
	}
	if len(a.Args) != target.Params {
		*errs = append(*errs, fmt.Errorf("rule %q: %q expects %d argument(s), got %d", ruleName, a.RuleName, target.Params, len(a.Args)))
	}
}

func checkParam(ruleName string, p Param, declared int, errs *[]error) {
	if p.Index < 0 || p.Index >= declared {
		*errs = append(*errs, fmt.Errorf("rule %q: parameter index %d out of range (rule declares %d)", ruleName, p.Index, declared))
	}
}

// walkExpression calls visit on e and recursively on every
// sub-expression reachable from e. Composite variants may appear
// either as values or as pointers in a grammar tree, so both forms are
// handled at each case.
func walkExpression(e Expression, visit func(Expression)) {
	visit(e)
	switch v := e.(type) {
	case *Lex:
		walkExpression(v.Expr, visit)
	case Lex:
		walkExpression(v.Expr, visit)
	case *Alt:
		for _, t := range v.Terms {
			walkExpression(t, visit)
		}
	case Alt:
		for _, t := range v.Terms {
			walkExpression(t, visit)
		}
	case *Seq:
		for _, f := range v.Factors {
			walkExpression(f, visit)
		}
	case Seq:
		for _, f := range v.Factors {
			walkExpression(f, visit)
		}
	case *Iter:
		walkExpression(v.Expr, visit)
	case Iter:
		walkExpression(v.Expr, visit)
	case *Not:
		walkExpression(v.Expr, visit)
	case Not:
		walkExpression(v.Expr, visit)
	case *Lookahead:
		walkExpression(v.Expr, visit)
	case Lookahead:
		walkExpression(v.Expr, visit)
	case *Arr:
		walkExpression(v.Expr, visit)
	case Arr:
		walkExpression(v.Expr, visit)
	case *Str:
		walkExpression(v.Expr, visit)
	case Str:
		walkExpression(v.Expr, visit)
	case *Obj:
		for _, p := range v.Props {
			walkExpression(p.Pattern, visit)
		}
	case Obj:
		for _, p := range v.Props {
			walkExpression(p.Pattern, visit)
		}
	case *Apply:
		for _, a := range v.Args {
			walkExpression(a, visit)
		}
	case Apply:
		for _, a := range v.Args {
			walkExpression(a, visit)
		}
	}
}
