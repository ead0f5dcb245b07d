package ohm

import (
	"os"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"
)

// defaultMaxSeedIterations bounds the Warth-style seed-growing loop
// (apply.go's growSeed): a pathological grammar that never stops
// producing strictly longer matches would otherwise hang the parse.
const defaultMaxSeedIterations = 10000

// Config holds the tunables for a single Match call. The zero value is
// usable: maxSeedIterations falls back to defaultMaxSeedIterations,
// trace and debug logging are off, and the correlation id prefix is
// empty.
type Config struct {
	MaxSeedIterations int
	Trace             bool
	DebugLog          bool
	LogIDPrefix       string
}

func (c Config) maxSeedIterations() int {
	if c.MaxSeedIterations <= 0 {
		return defaultMaxSeedIterations
	}
	return c.MaxSeedIterations
}

// fileConfig is the TOML-decodable shape of an on-disk config file,
// loaded by LoadConfig. Field names follow the TOML convention of the
// rest of the Config struct's lowercased counterparts.
type fileConfig struct {
	MaxSeedIterations int    `toml:"max_seed_iterations"`
	Trace             bool   `toml:"trace"`
	DebugLog          bool   `toml:"debug_log"`
	LogIDPrefix       string `toml:"log_id_prefix"`
}

// LoadConfig reads a Config from a TOML file at path. A missing file
// is not an error: it yields the zero Config, so callers can point
// LoadConfig at an optional, user-supplied override file.
func LoadConfig(path string) (Config, error) {
	var fc fileConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Config{}, nil
	}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return Config{}, xerrors.Errorf("loading config %s: %w", path, err)
	}
	return Config{
		MaxSeedIterations: fc.MaxSeedIterations,
		Trace:             fc.Trace,
		DebugLog:          fc.DebugLog,
		LogIDPrefix:       fc.LogIDPrefix,
	}, nil
}

// Option is a function that sets one field of a Config and returns an
// Option that restores the previous value, mirroring the teacher's
// Debug/Memoize/Recover options (vm/static_code.go).
type Option func(*Config) Option

// WithTrace creates an Option to enable or disable structured trace
// recording (spec.md §4.5). The default is false: tracing adds
// overhead that most callers don't need.
func WithTrace(b bool) Option {
	return func(c *Config) Option {
		old := c.Trace
		c.Trace = b
		return WithTrace(old)
	}
}

// WithDebugLog creates an Option to enable or disable per-application
// structured logging (log.go). The default is false.
func WithDebugLog(b bool) Option {
	return func(c *Config) Option {
		old := c.DebugLog
		c.DebugLog = b
		return WithDebugLog(old)
	}
}

// WithMaxSeedIterations creates an Option overriding the seed-growing
// iteration cap. n <= 0 restores the default.
func WithMaxSeedIterations(n int) Option {
	return func(c *Config) Option {
		old := c.MaxSeedIterations
		c.MaxSeedIterations = n
		return WithMaxSeedIterations(old)
	}
}

// WithLogIDPrefix creates an Option setting the prefix applied to each
// generated correlation id (log.go's newCorrelationID).
func WithLogIDPrefix(prefix string) Option {
	return func(c *Config) Option {
		old := c.LogIDPrefix
		c.LogIDPrefix = prefix
		return WithLogIDPrefix(old)
	}
}

func (c Config) apply(opts []Option) Config {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
