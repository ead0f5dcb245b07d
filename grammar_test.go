package ohm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrammarValidate(t *testing.T) {
	cases := []struct {
		name    string
		grammar *Grammar
		wantErr bool
	}{
		{
			name: "valid grammar",
			grammar: &Grammar{Rules: map[string]*Rule{
				"A": {Body: Apply{RuleName: "B"}},
				"B": {Body: Anything{}},
			}},
			wantErr: false,
		},
		{
			name: "undefined rule reference",
			grammar: &Grammar{Rules: map[string]*Rule{
				"A": {Body: Apply{RuleName: "Missing"}},
			}},
			wantErr: true,
		},
		{
			name: "arity mismatch on apply",
			grammar: &Grammar{Rules: map[string]*Rule{
				"A": {Body: Apply{RuleName: "B", Args: []Expression{Anything{}}}},
				"B": {Params: 0, Body: Anything{}},
			}},
			wantErr: true,
		},
		{
			name: "param index out of range",
			grammar: &Grammar{Rules: map[string]*Rule{
				"A": {Params: 1, Body: Param{Index: 3}},
			}},
			wantErr: true,
		},
		{
			name: "param reachable through nested seq",
			grammar: &Grammar{Rules: map[string]*Rule{
				"A": {Params: 1, Body: Seq{Factors: []Expression{Anything{}, Param{Index: 0}}}},
			}},
			wantErr: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.grammar.Validate()
			if tc.wantErr {
				require.Error(t, err)
				var ige *InvalidGrammarError
				require.ErrorAs(t, err, &ige)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsSyntacticName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"Expr", true},
		{"expr", false},
		{"", false},
		{"_private", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isSyntacticName(tc.name))
		})
	}
}

func TestSpacesApply(t *testing.T) {
	g := &Grammar{Rules: map[string]*Rule{"sp": {Body: Anything{}}}, SpacesRule: "sp"}
	app := g.spacesApply()
	require.NotNil(t, app)
	assert.Equal(t, "sp", app.RuleName)

	none := &Grammar{Rules: map[string]*Rule{}}
	assert.Nil(t, none.spacesApply())
}
