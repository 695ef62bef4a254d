package cli

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/check-haproxy/internal/config"
	"github.com/rileyhilliard/check-haproxy/internal/errors"
	"github.com/rileyhilliard/check-haproxy/internal/report"
	"github.com/rileyhilliard/check-haproxy/internal/stats"
	"github.com/rileyhilliard/check-haproxy/internal/ui"
	"github.com/spf13/cobra"
)

func newPoolsCmd(flags *globalFlags) *cobra.Command {
	var showPerf bool

	cmd := &cobra.Command{
		Use:   "pools [flags] <socket-path>",
		Short: "Show every pool the stats socket reports",
		Long: `Print a table of all pools, including the ones the check skips because
they lack a BACKEND row or a server row.

Examples:
  check-haproxy pools /var/run/haproxy.sock
  check-haproxy pools --perf /var/run/haproxy.sock
  check-haproxy pools --json /var/run/haproxy.sock`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return poolsCommand(cmd, flags, args, showPerf)
		},
	}
	cmd.Flags().BoolVar(&showPerf, "perf", false, "also list the perf data of every reported pool")
	return cmd
}

func poolsCommand(cmd *cobra.Command, flags *globalFlags, args []string, showPerf bool) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	socket, err := socketPath(args, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	jsonOut := cfg.Output.Format == config.FormatJSON

	set, err := CollectPools(cmd.Context(), socket, cfg)
	if err != nil {
		if jsonOut {
			_ = WriteJSONFromError(out, err)
			return errors.NewExitError(statusFor(err).ExitCode())
		}
		return err
	}

	opts := reportOptions(cfg)
	if jsonOut {
		pools := make([]poolJSON, 0, set.Len())
		for _, p := range set.All() {
			pools = append(pools, newPoolJSON(p, opts))
		}
		return WriteJSONSuccess(out, map[string]interface{}{"pools": pools})
	}

	ui.ConfigureColor(cfg.Output.Color, out)

	fmt.Fprint(out, ui.RenderPoolTable(poolRows(set)))

	if showPerf {
		if table := ui.RenderSimpleTable(
			[]ui.TableColumn{{Title: "POOL"}, {Title: "METRIC"}, {Title: "VALUE"}},
			perfRows(set, opts),
		); table != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, table)
		}
	}
	return nil
}

func poolRows(set *stats.PoolSet) []ui.PoolTableRow {
	rows := make([]ui.PoolTableRow, 0, set.Len())
	for _, p := range set.All() {
		rows = append(rows, ui.PoolTableRow{
			Name:        p.Name,
			Complete:    p.Complete(),
			DownNodes:   p.DownNodes,
			Utilization: p.SessionUtilization,
			RequestRate: p.RequestRate,
			Errors5xx:   p.Responses5xx,
			BytesIn:     p.BytesIn,
			BytesOut:    p.BytesOut,
			RtimeMS:     p.ResponseTimeMS,
		})
	}
	return rows
}

// perfRows splits every perf token of the complete pools into pool, metric
// and value columns.
func perfRows(set *stats.PoolSet, opts report.Options) [][]string {
	var rows [][]string
	for _, p := range set.Complete() {
		for _, tok := range report.PerfTokens(p, opts) {
			key, value, _ := strings.Cut(tok, "=")
			rows = append(rows, []string{p.Name, strings.TrimPrefix(key, p.Name+"_"), value})
		}
	}
	return rows
}
