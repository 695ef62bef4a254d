package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/check-haproxy/internal/config"
	"github.com/rileyhilliard/check-haproxy/internal/errors"
	"github.com/rileyhilliard/check-haproxy/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configHeader = `# check-haproxy configuration.
# Every key is optional. CHECK_HAPROXY_<KEY> environment variables override
# it, e.g. CHECK_HAPROXY_SOCKET or CHECK_HAPROXY_OUTPUT_FORMAT.
`

// InitOptions holds options for the init command.
type InitOptions struct {
	Dir            string // Directory to write the config into
	Socket         string // Pre-filled socket path
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Never prompt
}

func newInitCmd() *cobra.Command {
	var opts InitOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .check-haproxy.yaml with the defaults",
		Long: `Write a .check-haproxy.yaml in the current directory holding every key
with its default value.

Examples:
  check-haproxy init
  check-haproxy init --socket /run/haproxy/admin.sock
  check-haproxy init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.NonInteractive = !ui.IsTerminal(os.Stdin)
			return Init(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.Overwrite, "force", "f", false, "overwrite existing config")
	cmd.Flags().StringVar(&opts.Socket, "socket", "", "stats socket path to store in the config")
	return cmd
}

// Init writes the default config file, asking before it replaces one.
func Init(out io.Writer, opts InitOptions) error {
	configPath := filepath.Join(opts.Dir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	cfg.Socket = opts.Socket

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode the default config",
			"")
	}

	if err := os.WriteFile(configPath, append([]byte(configHeader), data...), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't write %s", configPath),
			"Check that the directory exists and is writable")
	}

	fmt.Fprintln(out, ui.SuccessStyle().Render(ui.SymbolSuccess+" Created "+configPath))
	if opts.Socket != "" {
		if _, err := os.Stat(opts.Socket); err != nil {
			ui.PrintWarning(out, "No socket at '%s' yet. Check the 'stats socket' line in haproxy.cfg", opts.Socket)
		}
	}
	return nil
}
