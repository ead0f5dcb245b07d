package ohm

// endExpr is the shared End{} instance required after a top-level
// Apply to guarantee the whole input was consumed.
var endExpr = End{}

// substitute resolves every Param reachable from e against frame's
// actual arguments, returning a new expression tree with no bare
// Param nodes left. It is applied once per Apply evaluation, to the
// call site's declared argument expressions, against the caller's own
// (already-resolved) frame — see evalApply. Expressions with no
// sub-expressions are returned unchanged.
func substitute(e Expression, frame *appFrame) Expression {
	if frame == nil {
		return e
	}
	switch v := e.(type) {
	case Param:
		return paramArg(v, frame)
	case *Lex:
		return &Lex{Expr: substitute(v.Expr, frame)}
	case *Alt:
		return &Alt{Terms: substituteAll(v.Terms, frame)}
	case *Seq:
		return &Seq{Factors: substituteAll(v.Factors, frame)}
	case *Iter:
		return &Iter{Expr: substitute(v.Expr, frame), Min: v.Min, Max: v.Max}
	case *Not:
		return &Not{Expr: substitute(v.Expr, frame)}
	case *Lookahead:
		return &Lookahead{Expr: substitute(v.Expr, frame)}
	case *Arr:
		return &Arr{Expr: substitute(v.Expr, frame)}
	case *Str:
		return &Str{Expr: substitute(v.Expr, frame)}
	case *Obj:
		props := make([]ObjProp, len(v.Props))
		for i, p := range v.Props {
			props[i] = ObjProp{Name: p.Name, Pattern: substitute(p.Pattern, frame)}
		}
		return &Obj{Props: props, Lenient: v.Lenient}
	case *Apply:
		return &Apply{RuleName: v.RuleName, Args: substituteAll(v.Args, frame)}
	default:
		return e
	}
}

func substituteAll(es []Expression, frame *appFrame) []Expression {
	out := make([]Expression, len(es))
	for i, e := range es {
		out[i] = substitute(e, frame)
	}
	return out
}

func paramArg(p Param, frame *appFrame) Expression {
	if p.Index < 0 || p.Index >= len(frame.args) {
		panicInternal("parameter index %d out of range", p.Index)
	}
	return frame.args[p.Index]
}

// evalApply is the rule-application machinery: packrat memoization
// keyed by the fully-substituted application's memo key, and
// seed-growing left-recursion detection, per spec.md §4.3.
func (st *EvalState) evalApply(raw *Apply, isTopLevel bool) bool {
	entryPos := st.curPos()
	entryBindings := len(st.bindings)

	if st.evalApplyInner(raw, isTopLevel) {
		return true
	}
	st.setPos(entryPos)
	st.bindings = st.bindings[:entryBindings]
	return false
}

// evalApplyInner does the actual work; its caller, evalApply, is
// responsible for restoring pos and bindings to their values on entry
// when it reports failure, including any whitespace consumed by a
// leading skipSpaces that never yielded a successful match (spec.md
// §4.3's uniform Apply save/restore contract covers the implicit
// whitespace skip too, since it is not itself part of what the caller
// asked to match).
func (st *EvalState) evalApplyInner(raw *Apply, isTopLevel bool) bool {
	rule, ok := st.grammar.lookup(raw.RuleName)
	if !ok {
		panic(wrapInvalidGrammar("unknown rule %q", raw.RuleName))
	}
	if len(raw.Args) != rule.Params {
		panic(wrapInvalidGrammar("rule %q expects %d argument(s), got %d", raw.RuleName, rule.Params, len(raw.Args)))
	}

	resolved := substituteAll(raw.Args, st.currentFrame())
	app := &Apply{RuleName: raw.RuleName, Args: resolved}
	key := app.Describe()

	syntactic := isSyntacticName(raw.RuleName)
	if raw.RuleName != st.grammar.SpacesRule && (st.syntactic || syntactic) && !st.lexical {
		st.skipSpaces()
	}

	pos := st.curPos()
	pinfo := st.posInfo(pos)

	if rec, ok := pinfo.memo[key]; ok {
		st.setPos(rec.pos)
		if st.trace != nil && rec.trace != nil {
			st.trace.attach(rec.trace)
		}
		if rec.ok {
			st.logApply(key, pos, "memo-hit")
			st.pushBinding(rec.value)
			return true
		}
		st.logApply(key, pos, "memo-hit-fail")
		return false
	}

	if pinfo.isActive(key) {
		st.logApply(key, pos, "left-recursion-detected")
		rec := &MemoRec{pos: -1, ok: false}
		pinfo.startLeftRecursion(key, rec)
		pinfo.memo[key] = rec
		return false
	}

	st.logApply(key, pos, "miss")

	return st.reallyEval(rule, app, key, pos, pinfo, isTopLevel, syntactic)
}

// reallyEval evaluates the rule body once, splices its bindings into
// a RuleNode, and resolves the three left-recursion outcomes: this
// application is the head of a frame started beneath it (grow the
// seed), it is merely involved in one (don't memoize, the seed hasn't
// converged), or neither (memoize normally).
func (st *EvalState) reallyEval(rule *Rule, app *Apply, key string, origPos int, pinfo *PosInfo, isTopLevel, syntactic bool) bool {
	pinfo.enter(key)

	prevSyntactic := st.syntactic
	st.syntactic = prevSyntactic || syntactic

	hasDescription := rule.Description != ""
	if hasDescription {
		st.failures.doNotRecord()
	}

	if st.trace != nil {
		st.trace.open()
	}

	st.pushFrame(app.Args)
	value, ok := st.evalOnce(rule.Body, origPos, app.RuleName)
	st.popFrame()

	var memoized *MemoRec
	wasHead := false
	if lr := pinfo.currentFrame(); lr != nil && lr.headKey == key {
		wasHead = true
		value, ok = st.growSeed(rule.Body, origPos, app.RuleName, app.Args, pinfo, lr, value, ok)
		pinfo.endLeftRecursion()
		memoized = pinfo.memo[key] // the seed record itself, now converged
	} else if lr != nil && lr.isInvolved(key) {
		// a seed we depend on hasn't converged yet: must not memoize.
	} else {
		memoized = &MemoRec{pos: st.curPos(), ok: ok}
		if ok {
			memoized.value = value
		}
		pinfo.memo[key] = memoized
	}

	if st.trace != nil {
		entry := st.trace.close(origPos, app.Describe(), ok)
		entry.LeftRecursive = wasHead
		if memoized != nil {
			memoized.trace = entry
		}
	}

	if hasDescription {
		st.failures.doRecord()
		if !ok {
			st.failures.record(origPos, rule.Description)
		}
	}

	st.syntactic = prevSyntactic
	pinfo.exit()

	if !ok {
		return false
	}
	st.pushBinding(value)

	if isTopLevel {
		if syntactic {
			st.skipSpaces()
		}
		if !Eval(endExpr, st) {
			st.popBinding()
			return false
		}
		st.popBinding() // discard End's synthetic TerminalNode
	}
	return true
}

// evalOnce evaluates body once and splices its bindings into a fresh
// RuleNode spanning [origPos, curPos), or returns ok=false on
// failure (with state already restored by Eval).
func (st *EvalState) evalOnce(body Expression, origPos int, ruleName string) (Node, bool) {
	before := len(st.bindings)
	if !Eval(body, st) {
		return nil, false
	}
	kids := append([]Node(nil), st.bindings[before:]...)
	st.bindings = st.bindings[:before]
	return &RuleNode{RuleName: ruleName, Children: kids, Interval: st.interval(origPos, st.curPos())}, true
}

// growSeed implements the Warth-style seed-growing algorithm: the
// direct-left-recursion base case (a false seed) fails outright;
// otherwise the body is reparsed from origPos again and again,
// committing each strictly longer match, until a reparse fails to
// improve on the committed position.
func (st *EvalState) growSeed(body Expression, origPos int, ruleName string, args []Expression, pinfo *PosInfo, lr *LRFrame, seedValue Node, seedOK bool) (Node, bool) {
	rec := pinfo.memo[lr.headKey]
	if !seedOK {
		rec.pos = origPos
		rec.ok = false
		return nil, false
	}

	rec.pos = st.curPos()
	rec.value = seedValue
	rec.ok = true

	for i := 0; i < st.config.maxSeedIterations(); i++ {
		st.setPos(origPos)

		var checkpoint int
		if st.trace != nil {
			checkpoint = st.trace.childCount()
		}

		st.pushFrame(args)
		value, ok := st.evalOnce(body, origPos, ruleName)
		st.popFrame()

		if !ok || st.curPos() <= rec.pos {
			if st.trace != nil {
				st.trace.truncateTo(checkpoint)
			}
			break
		}
		rec.pos = st.curPos()
		rec.value = value
		rec.ok = true
	}

	st.setPos(rec.pos)
	return rec.value, rec.ok
}
