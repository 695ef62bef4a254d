package config

import (
	"time"

	"github.com/rileyhilliard/check-haproxy/internal/stats"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Output formats.
const (
	FormatPlugin = "plugin"
	FormatJSON   = "json"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the complete .check-haproxy.yaml configuration file.
// Every field has a default, so the tool works without any file at all.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Socket is the stats socket path, used when none is given on the command line.
	Socket string `yaml:"socket,omitempty" mapstructure:"socket"`

	// Command is written to the socket verbatim.
	Command string `yaml:"command" mapstructure:"command"`

	// Timeout bounds connect, send and receive together. Zero disables it.
	Timeout time.Duration `yaml:"-" mapstructure:"timeout"`

	// Attempts is the number of reads allowed before giving up on the terminator.
	Attempts int `yaml:"attempts" mapstructure:"attempts"`

	// ChunkSize is the buffer size of a single read.
	ChunkSize int `yaml:"chunk_size" mapstructure:"chunk_size"`

	// Aggregate is "last" (each up server row overwrites) or "sum".
	Aggregate string `yaml:"aggregate" mapstructure:"aggregate"`

	// LegacyRedispatch reports econ under wredis like earlier releases did.
	LegacyRedispatch bool `yaml:"legacy_redispatch" mapstructure:"legacy_redispatch"`

	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// OutputConfig controls what ends up on stdout.
type OutputConfig struct {
	// Format is "plugin" (single status line) or "json".
	Format string `yaml:"format" mapstructure:"format"`

	// Color mode for the pools table: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns a Config holding every default.
func DefaultConfig() *Config {
	return &Config{
		Version:   CurrentConfigVersion,
		Command:   stats.DefaultCommand,
		Timeout:   stats.DefaultTimeout,
		Attempts:  stats.DefaultAttempts,
		ChunkSize: stats.DefaultChunkSize,
		Aggregate: string(stats.AggregateLast),
		Output: OutputConfig{
			Format: FormatPlugin,
			Color:  ColorAuto,
		},
	}
}

// Aggregation returns Aggregate as a typed mode.
func (c *Config) Aggregation() stats.Aggregation {
	return stats.Aggregation(c.Aggregate)
}

// MarshalYAML writes Timeout as a duration string ("10s") instead of
// nanoseconds, which is also what the loader expects back.
func (c Config) MarshalYAML() (interface{}, error) {
	type plain Config
	return struct {
		plain   `yaml:",inline"`
		Timeout string `yaml:"timeout"`
	}{plain(c), c.Timeout.String()}, nil
}
