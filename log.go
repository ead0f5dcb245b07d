package ohm

import (
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// newCorrelationID mints a per-Match identifier so every structured
// log line emitted during one evaluation can be grepped out of a
// shared log stream. prefix, if non-empty, is prepended so a caller
// running several grammars side by side can tell them apart at a
// glance.
func newCorrelationID(prefix string) string {
	id := uuid.New().String()
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}

// newLogger builds the zerolog.Logger used for per-application debug
// events (evalApply's memo hit/miss and LR detection). It
// writes to stderr so it never interleaves with a caller that prints
// the parse result to stdout, and every event carries the match's
// correlation id.
func newLogger(correlationID string) zerolog.Logger {
	return zerolog.New(os.Stderr).
		With().
		Timestamp().
		Str("match_id", correlationID).
		Logger()
}

// logApply emits one structured debug event per Apply evaluation when
// Config.DebugLog is set. Disabled by default since it adds a
// zerolog.Event allocation per rule application.
func (st *EvalState) logApply(key string, pos int, outcome string) {
	if st.logger == nil {
		return
	}
	st.logger.Debug().
		Str("rule", key).
		Int("pos", pos).
		Str("outcome", outcome).
		Msg("apply")
}
