package ohm

import "unicode"

// Eval is the uniform entry point for evaluating any Expression
// against state: on true, the binding stack grows by exactly
// e.Arity() and pos may have advanced; on false, the binding stack
// and pos are restored to their values on entry. This save/restore
// discipline, and trace nesting when tracing is enabled, are
// implemented exactly once here; individual expression variants
// (evalExpr below) only need to implement their success path.
//
// Apply is the one exception: it manages its own position/bindings
// bookkeeping and trace entries as part of its packrat/left-recursion
// machinery (see apply.go), so Eval delegates to it directly.
func Eval(e Expression, st *EvalState) bool {
	switch ap := e.(type) {
	case *Apply:
		return st.evalApply(ap, false)
	case Apply:
		return st.evalApply(&ap, false)
	}

	origPos := st.curPos()
	origBindings := len(st.bindings)

	if st.trace != nil {
		st.trace.open()
	}
	ok := evalExpr(e, st)
	if st.trace != nil {
		st.trace.close(origPos, e.Describe(), ok)
	}

	if !ok {
		st.setPos(origPos)
		st.bindings = st.bindings[:origBindings]
		return false
	}
	if got := len(st.bindings) - origBindings; got != e.Arity() {
		panicInternal("expression %q arity mismatch: declared %d, produced %d", e.Describe(), e.Arity(), got)
	}
	return true
}

// evalExpr dispatches on the closed expression family. Each case
// implements only its success path; Eval above handles save/restore.
func evalExpr(e Expression, st *EvalState) bool {
	switch v := e.(type) {
	case Anything:
		return evalAnything(st)
	case End:
		return evalEnd(st)
	case Prim:
		return evalPrim(v, st)
	case StringPrim:
		return evalStringPrim(v, st)
	case Range:
		return evalRange(v, st)
	case UnicodeChar:
		return evalUnicodeChar(v, st)
	case Param:
		return evalParam(v, st)
	case *Lex:
		return evalLex(*v, st)
	case Lex:
		return evalLex(v, st)
	case *Alt:
		return evalAlt(*v, st)
	case Alt:
		return evalAlt(v, st)
	case *Seq:
		return evalSeq(*v, st)
	case Seq:
		return evalSeq(v, st)
	case *Iter:
		return evalIter(*v, st)
	case Iter:
		return evalIter(v, st)
	case *Not:
		return evalNot(*v, st)
	case Not:
		return evalNot(v, st)
	case *Lookahead:
		return evalLookahead(*v, st)
	case Lookahead:
		return evalLookahead(v, st)
	case *Arr:
		return evalArr(*v, st)
	case Arr:
		return evalArr(v, st)
	case *Str:
		return evalStr(*v, st)
	case Str:
		return evalStr(v, st)
	case *Obj:
		return evalObj(*v, st)
	case Obj:
		return evalObj(v, st)
	default:
		panicInternal("unknown expression variant %T", e)
		return false
	}
}

func maybeSkipSpaces(st *EvalState) {
	if st.syntactic && !st.lexical {
		st.skipSpaces()
	}
}

func evalAnything(st *EvalState) bool {
	maybeSkipSpaces(st)
	origPos := st.curPos()
	atom, ok := st.stream().Next()
	if !ok {
		st.failures.record(origPos, "any")
		return false
	}
	st.pushBinding(&TerminalNode{Value: atom, Interval: st.interval(origPos, st.curPos())})
	return true
}

func evalEnd(st *EvalState) bool {
	maybeSkipSpaces(st)
	pos := st.curPos()
	if !st.stream().AtEnd() {
		st.failures.record(pos, "end")
		return false
	}
	st.pushBinding(&TerminalNode{Value: nil, Interval: st.interval(pos, pos)})
	return true
}

func evalPrim(p Prim, st *EvalState) bool {
	maybeSkipSpaces(st)
	origPos := st.curPos()
	if !st.stream().MatchExactly(p.Value) {
		st.failures.record(origPos, p.Describe())
		return false
	}
	st.pushBinding(&TerminalNode{Value: p.Value, Interval: st.interval(origPos, st.curPos())})
	return true
}

func evalStringPrim(s StringPrim, st *EvalState) bool {
	maybeSkipSpaces(st)
	origPos := st.curPos()
	if !st.stream().MatchString(s.Value) {
		st.failures.record(origPos, s.Describe())
		return false
	}
	st.pushBinding(&TerminalNode{Value: s.Value, Interval: st.interval(origPos, st.curPos())})
	return true
}

func evalRange(r Range, st *EvalState) bool {
	maybeSkipSpaces(st)
	origPos := st.curPos()
	atom, ok := st.stream().Next()
	if !ok {
		st.failures.record(origPos, r.Describe())
		return false
	}
	if !inRange(r.Lo, r.Hi, atom) {
		st.failures.record(origPos, r.Describe())
		return false
	}
	st.pushBinding(&TerminalNode{Value: atom, Interval: st.interval(origPos, st.curPos())})
	return true
}

// inRange compares an atom against [lo, hi] in lo's own primitive
// domain, per spec.md §4.1 Range.
func inRange(lo, hi, v any) bool {
	switch lo := lo.(type) {
	case rune:
		vv, ok := v.(rune)
		hh, hok := hi.(rune)
		return ok && hok && lo <= vv && vv <= hh
	case int:
		vv, ok := v.(int)
		hh, hok := hi.(int)
		return ok && hok && lo <= vv && vv <= hh
	case float64:
		vv, ok := v.(float64)
		hh, hok := hi.(float64)
		return ok && hok && lo <= vv && vv <= hh
	case string:
		vv, ok := v.(string)
		hh, hok := hi.(string)
		return ok && hok && lo <= vv && vv <= hh
	default:
		return false
	}
}

// rangeTableFor resolves a Unicode class name to its range table,
// grounded on the teacher's ϡrangeTable (vm/matchers.go): categories,
// then properties, then scripts.
func rangeTableFor(class string) *unicode.RangeTable {
	if rt, ok := unicode.Categories[class]; ok {
		return rt
	}
	if rt, ok := unicode.Properties[class]; ok {
		return rt
	}
	if rt, ok := unicode.Scripts[class]; ok {
		return rt
	}
	panicInternal("invalid Unicode class: %s", class)
	return nil
}

func evalUnicodeChar(u UnicodeChar, st *EvalState) bool {
	maybeSkipSpaces(st)
	origPos := st.curPos()
	atom, ok := st.stream().Next()
	if !ok {
		st.failures.record(origPos, u.Describe())
		return false
	}
	rn, ok := atom.(rune)
	if !ok || !unicode.Is(rangeTableFor(u.Pattern), rn) {
		st.failures.record(origPos, u.Describe())
		return false
	}
	st.pushBinding(&TerminalNode{Value: rn, Interval: st.interval(origPos, st.curPos())})
	return true
}

func evalParam(p Param, st *EvalState) bool {
	frame := st.currentFrame()
	if frame == nil || p.Index < 0 || p.Index >= len(frame.args) {
		panicInternal("parameter index %d out of range", p.Index)
	}
	return Eval(frame.args[p.Index], st)
}

func evalLex(l Lex, st *EvalState) bool {
	prev := st.lexical
	st.lexical = true
	ok := Eval(l.Expr, st)
	st.lexical = prev
	return ok
}

func evalAlt(a Alt, st *EvalState) bool {
	for _, t := range a.Terms {
		if Eval(t, st) {
			return true
		}
	}
	return false
}

func evalSeq(s Seq, st *EvalState) bool {
	for _, f := range s.Factors {
		if !Eval(f, st) {
			return false
		}
	}
	return true
}

// evalIter repeats Expr while it matches and splices the accumulated
// bindings into one "_iter" node per original binding column,
// spanning the whole repetition, per spec.md §4.1.
func evalIter(it Iter, st *EvalState) bool {
	cols := it.Expr.Arity()
	origPos := st.curPos()
	before := len(st.bindings)

	count := 0
	for it.Max < 0 || count < it.Max {
		if !Eval(it.Expr, st) {
			break
		}
		count++
	}
	if count < it.Min {
		return false
	}

	flat := append([]Node(nil), st.bindings[before:]...)
	st.bindings = st.bindings[:before]
	span := st.interval(origPos, st.curPos())

	for col := 0; col < cols; col++ {
		children := make([]Node, 0, count)
		for rep := 0; rep < count; rep++ {
			children = append(children, flat[rep*cols+col])
		}
		st.pushBinding(&RuleNode{RuleName: "_iter", Children: children, Interval: span})
	}
	return true
}

func evalNot(n Not, st *EvalState) bool {
	origPos := st.curPos()
	before := len(st.bindings)

	st.failures.doNotRecord()
	ok := Eval(n.Expr, st)
	st.failures.doRecord()

	if ok {
		st.bindings = st.bindings[:before]
		st.setPos(origPos)
		st.failures.record(origPos, n.Describe())
		return false
	}
	return true
}

func evalLookahead(l Lookahead, st *EvalState) bool {
	origPos := st.curPos()
	ok := Eval(l.Expr, st)
	if ok {
		st.setPos(origPos)
	}
	return ok
}

// evalArr and evalStr validate shape, not content: like evalObj's
// per-property matches, Expr's own bindings are discarded regardless
// of its arity, so Arr and Str always contribute exactly their
// declared Arity() of 0 to the caller.

func evalArr(a Arr, st *EvalState) bool {
	origPos := st.curPos()
	atom, ok := st.stream().Next()
	if !ok {
		st.failures.record(origPos, a.Describe())
		return false
	}
	items, ok := atom.([]any)
	if !ok {
		return false
	}

	before := len(st.bindings)
	st.pushStream(newArrayStream(items))
	ok = Eval(a.Expr, st)
	atEnd := st.stream().AtEnd()
	st.popStream()
	st.bindings = st.bindings[:before]

	return ok && atEnd
}

func evalStr(s Str, st *EvalState) bool {
	origPos := st.curPos()
	atom, ok := st.stream().Next()
	if !ok {
		st.failures.record(origPos, s.Describe())
		return false
	}
	text, ok := atom.(string)
	if !ok {
		return false
	}

	before := len(st.bindings)
	st.pushStream(newRuneStream(text))
	ok = Eval(s.Expr, st)
	if ok {
		ok = Eval(End{}, st)
	}
	st.popStream()
	st.bindings = st.bindings[:before] // discard Expr's and End's bindings alike
	return ok
}

func evalObj(o Obj, st *EvalState) bool {
	origPos := st.curPos()
	atom, ok := st.stream().Next()
	if !ok {
		st.failures.record(origPos, o.Describe())
		return false
	}
	obj, ok := atom.(map[string]any)
	if !ok {
		return false
	}

	before := len(st.bindings)
	matched := make(map[string]bool, len(o.Props))
	for _, prop := range o.Props {
		val, has := obj[prop.Name]
		if !has {
			return false
		}
		st.pushStream(singletonStream(val))
		ok1 := Eval(prop.Pattern, st)
		nestedEnd := st.stream().AtEnd()
		st.popStream()
		st.bindings = st.bindings[:before] // discard the property pattern's bindings
		if !ok1 || !nestedEnd {
			return false
		}
		matched[prop.Name] = true
	}

	if o.Lenient {
		remainder := make(map[string]any, len(obj)-len(matched))
		for k, v := range obj {
			if !matched[k] {
				remainder[k] = v
			}
		}
		st.pushBinding(&TerminalNode{Value: remainder, Interval: st.interval(origPos, st.curPos())})
		return true
	}
	return len(matched) == len(obj)
}
