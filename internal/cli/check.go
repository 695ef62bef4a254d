package cli

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/check-haproxy/internal/config"
	"github.com/rileyhilliard/check-haproxy/internal/errors"
	"github.com/rileyhilliard/check-haproxy/internal/logger"
	"github.com/rileyhilliard/check-haproxy/internal/report"
	"github.com/rileyhilliard/check-haproxy/internal/stats"
	"github.com/rileyhilliard/check-haproxy/internal/stats/parsers"
	"github.com/spf13/cobra"
)

// checkCommand is the default action: one collect, parse and report cycle
// printed as a plugin line (or JSON). Its output is always written here, so it
// returns an ExitError rather than a printable error.
func checkCommand(cmd *cobra.Command, flags *globalFlags, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return checkFailed(cmd, flags, err, flags.json)
	}
	jsonOut := cfg.Output.Format == config.FormatJSON

	socket, err := socketPath(args, cfg)
	if err != nil {
		return err
	}

	rep, err := Check(cmd.Context(), socket, cfg)
	if err != nil {
		return checkFailed(cmd, flags, err, jsonOut)
	}

	if jsonOut {
		if err := WriteJSONSuccess(out, newCheckResult(rep, reportOptions(cfg))); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, rep.String())
	}

	if rep.ExitCode() != 0 {
		return errors.NewExitError(rep.ExitCode())
	}
	return nil
}

// checkFailed prints err as "<SEVERITY>: <message>" (or a JSON error) and
// returns the matching exit status.
func checkFailed(cmd *cobra.Command, flags *globalFlags, err error, jsonOut bool) error {
	status := statusFor(err)

	if jsonOut {
		jerr := ErrorToJSON(err)
		jerr.Details = map[string]interface{}{
			"status":    status.String(),
			"exit_code": status.ExitCode(),
		}
		_ = writeJSONEnvelope(cmd.OutOrStdout(), JSONEnvelope{Success: false, Error: jerr})
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", status, errors.MessageOf(err))
	}

	if flags.verbose {
		fmt.Fprint(cmd.ErrOrStderr(), err.Error())
	}
	return errors.NewExitError(status.ExitCode())
}

// Check collects the stats table from socket and renders the report.
func Check(ctx context.Context, socket string, cfg *config.Config) (report.Report, error) {
	set, err := CollectPools(ctx, socket, cfg)
	if err != nil {
		return report.Report{}, err
	}
	return report.Build(set, reportOptions(cfg)), nil
}

func reportOptions(cfg *config.Config) report.Options {
	return report.Options{LegacyRedispatch: cfg.LegacyRedispatch}
}

// CollectPools reads and parses the stats table, keeping incomplete pools.
func CollectPools(ctx context.Context, socket string, cfg *config.Config) (*stats.PoolSet, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	c := stats.NewCollector(socket)
	c.SetCommand(cfg.Command)
	c.SetAttempts(cfg.Attempts)
	c.SetChunkSize(cfg.ChunkSize)
	c.SetTimeout(cfg.Timeout)

	reply, err := c.Collect(ctx)
	if err != nil {
		return nil, err
	}
	logger.Default().Debug("received %d bytes from %s", len(reply), c.Socket())

	return parsers.ParseStats(reply, parsers.WithAggregation(cfg.Aggregation()))
}

// statusFor maps an error to the plugin status it is reported with. Failures
// before any data flows are UNKNOWN; a broken exchange or reply is CRITICAL.
func statusFor(err error) report.Status {
	if errors.IsCode(err, errors.ErrTransport) || errors.IsCode(err, errors.ErrParse) {
		return report.Critical
	}
	return report.Unknown
}
