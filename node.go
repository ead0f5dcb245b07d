package ohm

// Node is a node of the parse tree produced by a successful match:
// either a RuleNode (rule-labeled, with ordered children) or a
// TerminalNode (a leaf carrying the matched value). Node is a closed
// interface; callers type-switch on the concrete type.
type Node interface {
	// Span returns the half-open interval of input the node covers.
	Span() Interval
	node()
}

// RuleNode is the result of a successful rule Apply: the rule name,
// its ordered children (one per binding the rule body contributed),
// and the interval of input it matched. Iter also builds RuleNodes,
// named "_iter", one per binding column of its repeated expression.
type RuleNode struct {
	RuleName string
	Children []Node
	Interval Interval
}

func (n *RuleNode) Span() Interval { return n.Interval }
func (*RuleNode) node()            {}

// TerminalNode is a leaf: a single matched value with no children,
// produced by Anything, End, Prim, StringPrim, Range and UnicodeChar,
// and by a lenient Obj, whose leaf carries the leftover properties.
type TerminalNode struct {
	Value    any
	Interval Interval
}

func (n *TerminalNode) Span() Interval { return n.Interval }
func (*TerminalNode) node()            {}
