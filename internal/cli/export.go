package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/j-veylop/billing-dashboard-tui/internal/export"
)

// errNothingToExport is returned for tabular exports of an empty period.
var errNothingToExport = errors.New("nothing to export for this period")

func newExportCmd(opts *options) *cobra.Command {
	var (
		format string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export invoices as CSV or JSON, or the full report as PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			b, err := fetch(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if !b.report.HasData() && f != export.FormatPDF {
				return errNothingToExport
			}

			if dir == "" {
				dir = b.cfg.ExportDir
			}
			path, err := export.New(dir).Export(b.report, f)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d invoices to %s\n", len(b.report.Invoices), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(export.FormatCSV), "Export format: csv, json or pdf")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Output directory (default: EXPORT_DIR)")
	return cmd
}
