package ohm

// Input is an already-parsed value to match a grammar against: either
// a string (matched rune by rune) or a structured array/object value
// (matched atom by atom, for grammars built over Arr/Str/Obj
// expressions per spec.md §4.1). Construct one with StringInput,
// ArrayInput or ObjectInput.
type Input struct {
	stream InputStream
}

// StringInput wraps s for matching over its Unicode code points.
func StringInput(s string) Input {
	return Input{stream: newRuneStream(s)}
}

// ArrayInput wraps items for matching over its elements with Arr/Iter
// expressions.
func ArrayInput(items []any) Input {
	return Input{stream: newArrayStream(items)}
}

// ObjectInput wraps a single structured value (typically a
// map[string]any) so it can be matched against an Obj expression at
// the top level, the same way a nested Obj property value is matched
// against a singleton stream (see evalObj in eval.go).
func ObjectInput(value any) Input {
	return Input{stream: singletonStream(value)}
}

// MatchResult is the outcome of a Match call: either a successful
// parse tree rooted at Root, or the diagnostic position and expected
// set of the rightmost failure reached during the attempt (spec.md
// §7). Trace is non-nil only when the match was run with WithTrace.
type MatchResult struct {
	Succeeded bool
	Root      Node
	FailurePos int
	Expected  []string
	Trace     *TraceEntry
}

// Match runs grammar's startRule against input and reports whether it
// matches the whole input. It applies startRule with no arguments; use
// MatchWithArgs to supply actual arguments for a parameterized start
// rule.
//
// Match validates the grammar before evaluating it (Grammar.Validate),
// returning any InvalidGrammarError instead of attempting to parse.
// Any other invariant violation reached during evaluation (an
// internalError, per errors.go) is recovered here and also returned
// as an error, mirroring the teacher's Recover option semantics
// (vm/static_code.go, ϡvm.dispatch) rather than crashing the caller.
func Match(grammar *Grammar, input Input, startRule string, opts ...Option) (result MatchResult, err error) {
	return matchWithArgs(grammar, input, startRule, nil, opts...)
}

// MatchWithArgs is Match for a parameterized start rule.
func MatchWithArgs(grammar *Grammar, input Input, startRule string, startArgs []Expression, opts ...Option) (result MatchResult, err error) {
	return matchWithArgs(grammar, input, startRule, startArgs, opts...)
}

// MatchWithTrace runs Match with tracing forced on and returns the
// root TraceEntry alongside the usual result, regardless of whether
// WithTrace was already among opts.
func MatchWithTrace(grammar *Grammar, input Input, startRule string, opts ...Option) (result MatchResult, err error) {
	opts = append(append([]Option(nil), opts...), WithTrace(true))
	return matchWithArgs(grammar, input, startRule, nil, opts...)
}

func matchWithArgs(grammar *Grammar, input Input, startRule string, startArgs []Expression, opts ...Option) (result MatchResult, err error) {
	if startRule == "" {
		startRule = grammar.DefaultStartRule
	}

	if verr := grammar.Validate(); verr != nil {
		return MatchResult{}, verr
	}
	if _, ok := grammar.lookup(startRule); !ok {
		return MatchResult{}, wrapInvalidGrammar("unknown start rule %q", startRule)
	}

	cfg := Config{}.apply(opts)

	defer func() {
		if e := recover(); e != nil {
			switch e := e.(type) {
			case internalError:
				err = e
			case *InvalidGrammarError:
				err = e
			default:
				panic(e)
			}
		}
	}()

	st := newEvalState(grammar, input.stream, cfg)
	ok := st.evalApply(&Apply{RuleName: startRule, Args: startArgs}, true)

	result = MatchResult{Succeeded: ok}
	if ok {
		result.Root = st.popBinding()
	} else {
		result.FailurePos, result.Expected = st.failures.snapshot()
	}
	if cfg.Trace {
		result.Trace = st.trace.finish()
	}
	return result, nil
}
