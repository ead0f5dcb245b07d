package ohm

import "fmt"

// Interval is a half-open [Start, End) span over an InputStream, used
// for node source spans.
type Interval struct {
	Start, End int
}

// String formats the interval as a half-open range.
func (iv Interval) String() string {
	return fmt.Sprintf("[%d, %d)", iv.Start, iv.End)
}

// InputStream is a positioned cursor over a sequence of atoms. For
// string inputs the atoms are code points; for array inputs they are
// arbitrary values. pos is monotone within a single successful match;
// callers are responsible for restoring pos on failure, which Eval
// does centrally for every Expression.
type InputStream interface {
	// Pos returns the current cursor position.
	Pos() int
	// SetPos rewinds or fast-forwards the cursor. Used by Eval's
	// save/restore wrapper and by seed-growing.
	SetPos(pos int)
	// Len returns the number of atoms in the stream.
	Len() int
	// AtEnd reports whether the cursor is at the end of the stream.
	AtEnd() bool
	// Next returns the atom at pos and advances the cursor, or
	// reports ok=false at end of stream.
	Next() (atom any, ok bool)
	// MatchExactly consumes the current atom if it equals v.
	MatchExactly(v any) bool
	// MatchString consumes a run of atoms equal to the runes of s.
	// Only meaningful for rune streams.
	MatchString(s string) bool
	// Interval builds an Interval from start to the current
	// position (or to end if given).
	Interval(start int, end ...int) Interval
}

// runeStream is an InputStream over the code points of a string.
type runeStream struct {
	runes []rune
	pos   int
}

// newRuneStream decomposes s into its code points for random access.
func newRuneStream(s string) *runeStream {
	return &runeStream{runes: []rune(s)}
}

func (r *runeStream) Pos() int      { return r.pos }
func (r *runeStream) SetPos(p int)  { r.pos = p }
func (r *runeStream) Len() int      { return len(r.runes) }
func (r *runeStream) AtEnd() bool   { return r.pos >= len(r.runes) }

func (r *runeStream) Next() (any, bool) {
	if r.AtEnd() {
		return nil, false
	}
	rn := r.runes[r.pos]
	r.pos++
	return rn, true
}

func (r *runeStream) MatchExactly(v any) bool {
	rn, ok := v.(rune)
	if !ok || r.AtEnd() || r.runes[r.pos] != rn {
		return false
	}
	r.pos++
	return true
}

func (r *runeStream) MatchString(s string) bool {
	want := []rune(s)
	if r.pos+len(want) > len(r.runes) {
		return false
	}
	for i, rn := range want {
		if r.runes[r.pos+i] != rn {
			return false
		}
	}
	r.pos += len(want)
	return true
}

func (r *runeStream) Interval(start int, end ...int) Interval {
	e := r.pos
	if len(end) > 0 {
		e = end[0]
	}
	return Interval{Start: start, End: e}
}

// sliceString returns the substring covered by iv.
func (r *runeStream) sliceString(iv Interval) string {
	return string(r.runes[iv.Start:iv.End])
}

// arrayStream is an InputStream over a slice of arbitrary values,
// used both for top-level array input and for the nested streams
// pushed by Arr and Obj (Str pushes a runeStream).
type arrayStream struct {
	items []any
	pos   int
}

func newArrayStream(items []any) *arrayStream {
	return &arrayStream{items: items}
}

func (a *arrayStream) Pos() int     { return a.pos }
func (a *arrayStream) SetPos(p int) { a.pos = p }
func (a *arrayStream) Len() int     { return len(a.items) }
func (a *arrayStream) AtEnd() bool  { return a.pos >= len(a.items) }

func (a *arrayStream) Next() (any, bool) {
	if a.AtEnd() {
		return nil, false
	}
	v := a.items[a.pos]
	a.pos++
	return v, true
}

func (a *arrayStream) MatchExactly(v any) bool {
	if a.AtEnd() || !deepEqual(a.items[a.pos], v) {
		return false
	}
	a.pos++
	return true
}

// MatchString has no useful meaning over heterogeneous atoms; an
// arrayStream never matches one.
func (a *arrayStream) MatchString(s string) bool { return false }

func (a *arrayStream) Interval(start int, end ...int) Interval {
	e := a.pos
	if len(end) > 0 {
		e = end[0]
	}
	return Interval{Start: start, End: e}
}

// singletonStream wraps exactly one atom, used to give the top-level
// Apply something to consume when Input is a structured value rather
// than a string: the grammar's start rule typically begins with Arr,
// Str or Obj, each of which consumes one atom off the enclosing
// stream before descending into it.
func singletonStream(v any) *arrayStream {
	return &arrayStream{items: []any{v}}
}

// deepEqual compares two atoms for MatchExactly. Structured values
// (arrays, maps) compare by recursive structural equality; everything
// else by ==.
func deepEqual(a, b any) bool {
	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !deepEqual(v, bvv) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
