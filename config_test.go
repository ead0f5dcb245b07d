package ohm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOptionRestoresPreviousValue checks the teacher's Option contract:
// applying an Option returns another Option that, when applied, puts
// the field back to its value from before the first apply.
func TestOptionRestoresPreviousValue(t *testing.T) {
	c := Config{Trace: false, DebugLog: false, MaxSeedIterations: 5, LogIDPrefix: "orig"}

	undoTrace := WithTrace(true)(&c)
	assert.True(t, c.Trace)
	undoTrace(&c)
	assert.False(t, c.Trace)

	undoDebug := WithDebugLog(true)(&c)
	assert.True(t, c.DebugLog)
	undoDebug(&c)
	assert.False(t, c.DebugLog)

	undoMax := WithMaxSeedIterations(42)(&c)
	assert.Equal(t, 42, c.MaxSeedIterations)
	undoMax(&c)
	assert.Equal(t, 5, c.MaxSeedIterations)

	undoPrefix := WithLogIDPrefix("new")(&c)
	assert.Equal(t, "new", c.LogIDPrefix)
	undoPrefix(&c)
	assert.Equal(t, "orig", c.LogIDPrefix)
}

func TestConfigApply(t *testing.T) {
	c := Config{}.apply([]Option{WithTrace(true), WithMaxSeedIterations(7)})
	assert.True(t, c.Trace)
	assert.Equal(t, 7, c.MaxSeedIterations)
}

func TestMaxSeedIterationsDefault(t *testing.T) {
	assert.Equal(t, defaultMaxSeedIterations, Config{}.maxSeedIterations())
	assert.Equal(t, defaultMaxSeedIterations, Config{MaxSeedIterations: -1}.maxSeedIterations())
	assert.Equal(t, 3, Config{MaxSeedIterations: 3}.maxSeedIterations())
}

func TestLoadConfigMissingFileYieldsZeroConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadConfigDecodesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ohm.toml")
	contents := `
max_seed_iterations = 99
trace = true
debug_log = true
log_id_prefix = "req"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		MaxSeedIterations: 99,
		Trace:             true,
		DebugLog:          true,
		LogIDPrefix:       "req",
	}, cfg)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
