package ohm

import "github.com/rs/zerolog"

// MemoRec is a single packrat memo entry: the end position after a
// successful match, the bound value (nil with ok=false for failure),
// and, when tracing, the replayed trace entry. An LR seed is the
// distinguished placeholder pos=-1, ok=false installed when left
// recursion is first detected.
type MemoRec struct {
	pos   int
	value Node
	ok    bool
	trace *TraceEntry
}

// LRFrame is a seed-growing frame overlaid onto the head application's
// memo record. Per spec.md §9's design note, it is stored in an
// owning slice on PosInfo with explicit indices rather than as a
// cyclic pointer structure: next is the index of the enclosing frame
// (-1 if none), mirroring nextLeftRecursion.
type LRFrame struct {
	headKey            string
	next               int
	firstInvolvedIndex int
	involved           map[string]bool
}

func (f *LRFrame) isInvolved(key string) bool { return f.involved[key] }

// updateInvolvedApplications appends any applications in stack at or
// beyond firstInvolvedIndex that aren't already tracked. Called every
// time an application is entered while this frame is active, so the
// involved set always reflects the live application stack.
func (f *LRFrame) updateInvolvedApplications(stack []string) {
	for _, k := range stack[f.firstInvolvedIndex:] {
		f.involved[k] = true
	}
}

// PosInfo holds everything the evaluator tracks at one input
// position touched by an Apply: which applications are currently
// active there (for left-recursion detection), the packrat memo
// table, and the stack of in-progress left-recursion frames.
type PosInfo struct {
	applicationStack []string
	memo             map[string]*MemoRec
	lrFrames         []LRFrame
	currentLR        int
}

func newPosInfo() *PosInfo {
	return &PosInfo{memo: make(map[string]*MemoRec), currentLR: -1}
}

func (p *PosInfo) isActive(key string) bool {
	for _, k := range p.applicationStack {
		if k == key {
			return true
		}
	}
	return false
}

func (p *PosInfo) enter(key string) {
	p.applicationStack = append(p.applicationStack, key)
	if p.currentLR >= 0 {
		p.lrFrames[p.currentLR].updateInvolvedApplications(p.applicationStack)
	}
}

func (p *PosInfo) exit() {
	if len(p.applicationStack) == 0 {
		panicInternal("application stack underflow")
	}
	p.applicationStack = p.applicationStack[:len(p.applicationStack)-1]
}

func (p *PosInfo) currentFrame() *LRFrame {
	if p.currentLR < 0 {
		return nil
	}
	return &p.lrFrames[p.currentLR]
}

// startLeftRecursion opens a new LR frame headed by headKey and makes
// it the current frame for this position. It does not touch rec: the
// caller (evalApplyInner) stores rec in the memo table as the head's
// seed. The involved-applications set is the suffix of
// applicationStack strictly inside the head.
func (p *PosInfo) startLeftRecursion(headKey string, rec *MemoRec) *LRFrame {
	headIdx := -1
	for i, k := range p.applicationStack {
		if k == headKey {
			headIdx = i
		}
	}
	frame := LRFrame{
		headKey:            headKey,
		next:               p.currentLR,
		firstInvolvedIndex: headIdx + 1,
		involved:           make(map[string]bool),
	}
	frame.updateInvolvedApplications(p.applicationStack)
	p.lrFrames = append(p.lrFrames, frame)
	idx := len(p.lrFrames) - 1
	p.currentLR = idx
	return &p.lrFrames[idx]
}

// endLeftRecursion pops the current frame, restoring the enclosing
// one (or none).
func (p *PosInfo) endLeftRecursion() {
	if p.currentLR < 0 {
		panicInternal("left-recursion frame underflow")
	}
	p.currentLR = p.lrFrames[p.currentLR].next
}

// failureSet tracks the rightmost position reached by any
// non-suppressed recordFailure call, and the set of expression
// descriptors expected there. Only the rightmost set is retained.
type failureSet struct {
	pos       int
	expected  map[string]bool
	suppress  int
}

func newFailureSet() *failureSet {
	return &failureSet{pos: -1, expected: make(map[string]bool)}
}

func (fs *failureSet) record(pos int, descr string) {
	if fs.suppress > 0 {
		return
	}
	if pos > fs.pos {
		fs.pos = pos
		fs.expected = make(map[string]bool)
	}
	if pos == fs.pos {
		fs.expected[descr] = true
	}
}

func (fs *failureSet) doNotRecord() { fs.suppress++ }

func (fs *failureSet) doRecord() {
	if fs.suppress == 0 {
		panicInternal("failure-recording suppression underflow")
	}
	fs.suppress--
}

func (fs *failureSet) snapshot() (int, []string) {
	out := make([]string, 0, len(fs.expected))
	for e := range fs.expected {
		out = append(out, e)
	}
	return fs.pos, out
}

// appFrame is the currently executing application's resolved actual
// arguments, used to resolve Param by index.
type appFrame struct {
	args []Expression
}

// EvalState is the top-level parse state: a stack of input streams
// (to support nested matching inside arrays/strings/objects), the
// bindings stack, a per-position metadata table per active stream,
// trace, failure recording, and the lexical/syntactic context flags.
type EvalState struct {
	grammar *Grammar
	config  Config

	streams  []InputStream
	posInfos []map[int]*PosInfo

	bindings []Node

	appFrames []*appFrame

	syntactic bool
	lexical   bool

	failures *failureSet
	trace    *traceBuilder
	logger   *zerolog.Logger
}

func newEvalState(g *Grammar, stream InputStream, cfg Config) *EvalState {
	st := &EvalState{
		grammar:  g,
		config:   cfg,
		streams:  []InputStream{stream},
		posInfos: []map[int]*PosInfo{make(map[int]*PosInfo)},
		failures: newFailureSet(),
	}
	if cfg.Trace {
		st.trace = newTraceBuilder()
	}
	if cfg.DebugLog {
		l := newLogger(newCorrelationID(cfg.LogIDPrefix))
		st.logger = &l
	}
	return st
}

func (st *EvalState) stream() InputStream { return st.streams[len(st.streams)-1] }

func (st *EvalState) pushStream(s InputStream) {
	st.streams = append(st.streams, s)
	st.posInfos = append(st.posInfos, make(map[int]*PosInfo))
}

func (st *EvalState) popStream() {
	st.streams = st.streams[:len(st.streams)-1]
	st.posInfos = st.posInfos[:len(st.posInfos)-1]
}

func (st *EvalState) curPos() int     { return st.stream().Pos() }
func (st *EvalState) setPos(p int)    { st.stream().SetPos(p) }
func (st *EvalState) interval(start int, end int) Interval {
	return st.stream().Interval(start, end)
}

func (st *EvalState) posInfo(pos int) *PosInfo {
	m := st.posInfos[len(st.posInfos)-1]
	p, ok := m[pos]
	if !ok {
		p = newPosInfo()
		m[pos] = p
	}
	return p
}

func (st *EvalState) pushBinding(n Node) { st.bindings = append(st.bindings, n) }

func (st *EvalState) popBinding() Node {
	if len(st.bindings) == 0 {
		panicInternal("binding stack underflow")
	}
	n := st.bindings[len(st.bindings)-1]
	st.bindings = st.bindings[:len(st.bindings)-1]
	return n
}

func (st *EvalState) pushFrame(args []Expression) {
	st.appFrames = append(st.appFrames, &appFrame{args: args})
}

func (st *EvalState) popFrame() {
	st.appFrames = st.appFrames[:len(st.appFrames)-1]
}

func (st *EvalState) currentFrame() *appFrame {
	if len(st.appFrames) == 0 {
		return nil
	}
	return st.appFrames[len(st.appFrames)-1]
}

// skipSpaces applies the grammar's spaces rule and discards whatever
// binding it produced, advancing pos past the matched whitespace.
func (st *EvalState) skipSpaces() {
	app := st.grammar.spacesApply()
	if app == nil {
		return
	}
	before := len(st.bindings)
	st.evalApply(app, false)
	st.bindings = st.bindings[:before]
}
