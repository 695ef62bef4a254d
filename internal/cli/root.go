package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/check-haproxy/internal/errors"
	"github.com/rileyhilliard/check-haproxy/internal/logger"
	"github.com/rileyhilliard/check-haproxy/internal/report"
	"github.com/spf13/cobra"
)

const usageMessage = "Invalid number of arguments."

// usageError is returned for argument and flag problems. run prints it as an
// UNKNOWN plugin line followed by the usage text.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// Execute runs the CLI with the process arguments and returns the exit status.
func Execute() int {
	return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}

	if code, ok := errors.ExitCode(err); ok {
		return code
	}

	var uerr *usageError
	if stderrors.As(err, &uerr) {
		fmt.Fprintf(stdout, "%s: %s\n", report.Unknown, uerr.msg)
		fmt.Fprint(stderr, cmd.UsageString())
		return report.Unknown.ExitCode()
	}

	fmt.Fprint(stderr, err.Error())
	if !strings.HasSuffix(err.Error(), "\n") {
		fmt.Fprintln(stderr)
	}
	return statusFor(err).ExitCode()
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "check-haproxy [flags] <socket-path>",
		Short: "Nagios-style health check for HAProxy pools",
		Long: `Query an HAProxy stats socket and report per-pool health.

Prints a single monitoring-plugin line and exits with its status:
  0 OK        every reported pool has all nodes up
  2 CRITICAL  a pool has nodes DOWN or NOLB, or the socket misbehaved
  3 UNKNOWN   bad arguments, no socket, or no connection

Examples:
  check-haproxy /var/run/haproxy.sock
  check-haproxy --timeout 5s /var/run/haproxy.sock
  CHECK_HAPROXY_SOCKET=/var/run/haproxy.sock check-haproxy`,
		Args:          maxArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.verbose {
				logger.EnableDebug(true)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkCommand(cmd, flags, args)
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	flags.register(root)

	root.AddCommand(newPoolsCmd(flags))
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())
	root.AddCommand(newCompletionCmd(root))

	return root
}

// maxArgs is cobra.MaximumNArgs reporting a usageError.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return &usageError{msg: usageMessage}
		}
		return nil
	}
}
