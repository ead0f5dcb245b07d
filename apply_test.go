package ohm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatten renders a parse tree as a nested string for assertions that
// don't want to hand-build the full Node tree.
func flatten(n Node) string {
	switch v := n.(type) {
	case *RuleNode:
		s := v.RuleName + "("
		for i, c := range v.Children {
			if i > 0 {
				s += ","
			}
			s += flatten(c)
		}
		return s + ")"
	case *TerminalNode:
		if r, ok := v.Value.(rune); ok {
			return string(r)
		}
		if s, ok := v.Value.(string); ok {
			return s
		}
		return "?"
	}
	return "?"
}

// classicExprGrammar is spec.md §8's S2 grammar, desugared the way a
// compiled grammar would be: every Alt arm is a bare Apply (arity 1),
// so differently-shaped alternatives never trip the "Alt arms share
// arity" invariant (property 3). "Expr_sub" and "Expr_num" stand in
// for the two case arms of "Expr = Expr "-" Num | Num".
func classicExprGrammar() *Grammar {
	digit := Range{Lo: rune('0'), Hi: rune('9')}
	return &Grammar{
		Rules: map[string]*Rule{
			"Expr":     {Body: Alt{Terms: []Expression{ap("Expr_sub"), ap("Expr_num")}}},
			"Expr_sub": {Body: Seq{Factors: []Expression{ap("Expr"), lit("-"), ap("Num")}}},
			"Expr_num": {Body: ap("Num")},
			"Num":      {Body: digit},
		},
		DefaultStartRule: "Expr",
	}
}

// TestScenarioS2ClassicLeftRecursion is spec.md §8's S2: a
// left-associative expression grammar, parsed via Warth seed-growing.
func TestScenarioS2ClassicLeftRecursion(t *testing.T) {
	g := classicExprGrammar()

	res, err := Match(g, StringInput("1-2-3"), "Expr")
	require.NoError(t, err)
	require.True(t, res.Succeeded)

	root := res.Root.(*RuleNode)
	assert.Equal(t, "Expr", root.RuleName)
	require.Len(t, root.Children, 1)

	sub, ok := root.Children[0].(*RuleNode)
	require.True(t, ok, "the chosen Alt arm should be the Expr_sub case")
	assert.Equal(t, "Expr_sub", sub.RuleName)

	inner, ok := sub.Children[0].(*RuleNode)
	require.True(t, ok, "left child should itself be an Expr (left-associative)")
	assert.Equal(t, "Expr", inner.RuleName)

	assert.Equal(t,
		"Expr(Expr_sub(Expr(Expr_sub(Expr(Expr_num(Num(1))),-,Num(2))),-,Num(3)))",
		flatten(root))
}

// TestScenarioS3IndirectLeftRecursion is spec.md §8's S3.
func TestScenarioS3IndirectLeftRecursion(t *testing.T) {
	g := &Grammar{
		Rules: map[string]*Rule{
			"A":    {Body: Alt{Terms: []Expression{ap("A_bx"), lit("y")}}},
			"A_bx": {Body: Seq{Factors: []Expression{ap("B"), lit("x")}}},
			"B":    {Body: ap("A")},
		},
		DefaultStartRule: "A",
	}

	res, err := Match(g, StringInput("yxx"), "A")
	require.NoError(t, err)
	require.True(t, res.Succeeded)

	res, err = Match(g, StringInput("y"), "A")
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
}

// TestPackratIdempotence is spec.md §8 property 4: an Apply revisited
// at the same (position, memoKey) within one parse replays the exact
// same value as the first visit. A Lookahead re-enters the same
// position it started at, so the plain re-application right after it
// must hit the memo table and hand back the identical *RuleNode rather
// than building a fresh one.
func TestPackratIdempotence(t *testing.T) {
	g := &Grammar{
		Rules: map[string]*Rule{
			"Start":  {Body: Seq{Factors: []Expression{Lookahead{Expr: ap("Digits")}, ap("Digits")}}},
			"Digits": {Body: Lex{Expr: Iter{Expr: Range{Lo: rune('0'), Hi: rune('9')}, Min: 1, Max: -1}}},
		},
		DefaultStartRule: "Start",
	}

	res, err := Match(g, StringInput("123"), "Start")
	require.NoError(t, err)
	require.True(t, res.Succeeded)
	root := res.Root.(*RuleNode)
	require.Len(t, root.Children, 2)
	assert.Same(t, root.Children[0], root.Children[1], "memo replay must hand back the identical node")
}

// TestSeedGrowingMaxIterationsCap exercises Config.MaxSeedIterations
// as a defensive cap (SPEC_FULL.md SUPPLEMENTED FEATURES #3): a tiny
// cap still converges for a short input that needs only a few grows.
func TestSeedGrowingMaxIterationsCap(t *testing.T) {
	g := classicExprGrammar()

	res, err := Match(g, StringInput("1-2"), "Expr", WithMaxSeedIterations(3))
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
}

// TestLexSuppressesSpaceSkipForNestedApply guards spec.md §4.1's rule
// that implicit whitespace skipping never applies inside a Lex
// subtree, even when Lex wraps an Apply of a syntactic rule (apply.go's
// own skip-spaces check must also test st.lexical, not just
// st.syntactic, the way maybeSkipSpaces does for every other
// terminal). Modeled on a JSON-style Number rule: an optional "-"
// followed by a digit rule reached through Apply.
func TestLexSuppressesSpaceSkipForNestedApply(t *testing.T) {
	g := &Grammar{
		Rules: map[string]*Rule{
			"spaces": {Body: Iter{Expr: lit(" "), Min: 0, Max: -1}},
			"Number": {Body: Lex{Expr: Seq{Factors: []Expression{
				Iter{Expr: lit("-"), Min: 0, Max: 1},
				ap("NonZeroDigit"),
			}}}},
			"NonZeroDigit": {Body: Range{Lo: rune('1'), Hi: rune('9')}},
		},
		SpacesRule:       "spaces",
		DefaultStartRule: "Number",
	}

	res, err := Match(g, StringInput("-9"), "Number")
	require.NoError(t, err)
	assert.True(t, res.Succeeded, "a Lex body with no embedded whitespace must still match")

	res, err = Match(g, StringInput("- 9"), "Number")
	require.NoError(t, err)
	assert.False(t, res.Succeeded, "Lex must suppress the nested Apply's whitespace skip even though NonZeroDigit is syntactic")
}

func TestGrammarValidateRejectsUnknownStartRule(t *testing.T) {
	g := &Grammar{Rules: map[string]*Rule{"A": {Body: Anything{}}}}
	_, err := Match(g, StringInput("x"), "NoSuchRule")
	require.Error(t, err)
	var ige *InvalidGrammarError
	require.ErrorAs(t, err, &ige)
}
