/*
Package ohm implements the evaluation core of a parsing expression
grammar (PEG) interpreter with support for direct and indirect left
recursion via seed-growing, and packrat memoization per input
position.

The package accepts a compiled Grammar (a map of rule names to parsing
expressions) and an Input (a string or a structured array/object
value), and reports whether a top-level rule matches, producing a
parse tree of Node bindings.

Grammar source parsing and compilation to the expression tree, a
semantic-action/visitor layer over the resulting parse tree, and any
command-line tooling are the responsibility of separate front-ends;
this package only evaluates an already-built Grammar.

Expression evaluation

Every Expression exposes a uniform eval contract: on success it
contributes exactly Arity() bindings to the state's binding stack and
may have advanced the input position; on failure it leaves the state
exactly as it found it. The Eval function in eval.go is the single
place that implements this save/restore discipline; individual
expression variants only need to implement the success path.

Left recursion

Apply, in apply.go, is the rule-application machinery: it consults a
per-position memo table, detects left recursion by noticing that a
rule is being applied again at a position where it is already active,
and grows the recursive seed by repeatedly re-evaluating the rule body
until the match stops getting longer. This is the Warth-style
seed-growing algorithm for left recursion in PEGs.

Usage

	result, err := ohm.Match(grammar, ohm.StringInput("1-2-3"), "Expr")
	if err != nil {
		// grammar is invalid or the parse hit an internal error
	} else if result.Succeeded {
		// walk result.Root
	} else {
		// result.FailurePos, result.Expected
	}

See MatchWithTrace for the optional structured-trace variant.
*/
package ohm
