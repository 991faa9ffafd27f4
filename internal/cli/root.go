// Package cli implements the bdt command line: the TUI plus non-interactive
// report, export and models commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/j-veylop/billing-dashboard-tui/internal/version"
)

// options holds the flags shared by every command.
type options struct {
	configFile string
	user       string
	period     string
	model      string
	file       string
	offline    bool
}

// NewRootCmd builds the bdt command tree. Running it without a subcommand
// starts the TUI.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           version.AppName,
		Short:         "Terminal usage and billing dashboard",
		Long:          "bdt fetches per-day usage for one user and shows KPIs, a usage chart, derived invoices and monthly budget status.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "C", "", "Path to a YAML, TOML or JSON configuration file")
	flags.StringVarP(&opts.user, "user", "u", "", "User id or email (the part before @ is used)")
	flags.StringVarP(&opts.period, "period", "p", "", "Reporting period: 7d, 30d, 90d or 1y")
	flags.StringVarP(&opts.model, "model", "m", "", "Model filter (default: all)")
	flags.StringVarP(&opts.file, "file", "f", "", "Read usage from a local JSON file instead of the API")
	flags.BoolVar(&opts.offline, "offline", false, "Read usage from the local cache")

	root.AddCommand(
		newReportCmd(opts),
		newExportCmd(opts),
		newModelsCmd(opts),
		newVersionCmd(),
	)

	return root
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version.Info())
		},
	}
}
