package cli

import (
	"time"

	"github.com/rileyhilliard/check-haproxy/internal/config"
	"github.com/spf13/cobra"
)

// globalFlags holds the flags shared by the check and the subcommands.
type globalFlags struct {
	configPath       string
	timeout          time.Duration
	attempts         int
	chunkSize        int
	command          string
	aggregate        string
	legacyRedispatch bool
	json             bool
	verbose          bool
	noColor          bool
}

// register adds the flags as persistent flags of cmd.
func (f *globalFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default: ./.check-haproxy.yaml, then ~/.config/check-haproxy/config.yaml)")
	pf.DurationVar(&f.timeout, "timeout", 0, "wall-clock limit for connect, send and receive (0 disables)")
	pf.IntVar(&f.attempts, "attempts", 0, "reads allowed before giving up on the end of the reply")
	pf.IntVar(&f.chunkSize, "chunk-size", 0, "bytes per read")
	pf.StringVar(&f.command, "command", "", `query sent to the socket (default "show stat\;" and a line feed)`)
	pf.StringVar(&f.aggregate, "aggregate", "", "how several up servers of a pool combine: last or sum")
	pf.BoolVar(&f.legacyRedispatch, "legacy-redispatch", false, "report econ as wredis, like older versions of this check")
	pf.BoolVar(&f.json, "json", false, "print a JSON document instead of the plugin line")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging and detailed errors on stderr")
	pf.BoolVar(&f.noColor, "no-color", false, "disable colored output")
}

// loadConfig loads the config file (or defaults plus environment) and applies
// the flags the user actually set on top of it. Flags left at their zero
// value never clobber the config.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(flags.configPath)
	if err != nil {
		return nil, err
	}

	set := cmd.Flags().Changed
	if set("timeout") {
		cfg.Timeout = flags.timeout
	}
	if set("attempts") {
		cfg.Attempts = flags.attempts
	}
	if set("chunk-size") {
		cfg.ChunkSize = flags.chunkSize
	}
	if set("command") {
		cfg.Command = flags.command
	}
	if set("aggregate") {
		cfg.Aggregate = flags.aggregate
	}
	if set("legacy-redispatch") {
		cfg.LegacyRedispatch = flags.legacyRedispatch
	}
	if flags.json {
		cfg.Output.Format = config.FormatJSON
	}
	if flags.noColor {
		cfg.Output.Color = config.ColorNever
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// socketPath picks the positional argument over the configured socket.
// Having neither is a usage error.
func socketPath(args []string, cfg *config.Config) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if cfg.Socket != "" {
		return cfg.Socket, nil
	}
	return "", &usageError{msg: usageMessage}
}
