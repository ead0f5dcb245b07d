package ohm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuneStream(t *testing.T) {
	cases := []struct {
		name  string
		input string
		ops   func(t *testing.T, r *runeStream)
	}{
		{
			name:  "MatchString consumes on success",
			input: "hello world",
			ops: func(t *testing.T, r *runeStream) {
				require.True(t, r.MatchString("hello"))
				assert.Equal(t, 5, r.Pos())
			},
		},
		{
			name:  "MatchString leaves pos untouched on failure",
			input: "hello world",
			ops: func(t *testing.T, r *runeStream) {
				require.False(t, r.MatchString("goodbye"))
				assert.Equal(t, 0, r.Pos())
			},
		},
		{
			name:  "Next reports ok=false at end",
			input: "a",
			ops: func(t *testing.T, r *runeStream) {
				_, ok := r.Next()
				require.True(t, ok)
				_, ok = r.Next()
				assert.False(t, ok)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.ops(t, newRuneStream(tc.input))
		})
	}
}

func TestDeepEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal scalars", 1, 1, true},
		{"unequal scalars", 1, 2, false},
		{"equal arrays", []any{1, "a"}, []any{1, "a"}, true},
		{"unequal array lengths", []any{1}, []any{1, 2}, false},
		{"equal maps", map[string]any{"a": 1}, map[string]any{"a": 1}, true},
		{"unequal maps", map[string]any{"a": 1}, map[string]any{"a": 2}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, deepEqual(tc.a, tc.b))
		})
	}
}

func TestSingletonStream(t *testing.T) {
	s := singletonStream(42)
	v, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, 42, v)
	assert.True(t, s.AtEnd())
}
