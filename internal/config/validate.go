package config

import (
	"fmt"

	"github.com/rileyhilliard/check-haproxy/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but check-haproxy only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade check-haproxy or lower the 'version' key")
	}

	if cfg.Command == "" {
		return errors.New(errors.ErrConfig,
			"'command' can't be empty",
			`Remove the key to use the default 'show stat\;' plus a line feed`)
	}

	if cfg.Attempts <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'attempts' must be positive, got %d", cfg.Attempts),
			"The default is 10 reads")
	}

	if cfg.ChunkSize <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'chunk_size' must be positive, got %d", cfg.ChunkSize),
			"The default is 4096 bytes")
	}

	if cfg.Timeout < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'timeout' can't be negative, got %s", cfg.Timeout),
			"Use 0 to disable the timeout, or a duration like 5s")
	}

	if !cfg.Aggregation().Valid() {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown aggregate mode '%s'", cfg.Aggregate),
			"Use 'last' or 'sum'")
	}

	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'output' section in your config.")
	}

	return nil
}

func validateOutput(out OutputConfig) error {
	switch out.Format {
	case FormatPlugin, FormatJSON:
	default:
		return fmt.Errorf("unknown output format '%s' (use plugin or json)", out.Format)
	}

	switch out.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unknown color mode '%s' (use auto, always or never)", out.Color)
	}

	return nil
}
