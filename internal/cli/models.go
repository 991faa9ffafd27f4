package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

func newModelsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the model filter values present in the usage data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The filter flag is irrelevant here and must not fail the fetch.
			o := *opts
			o.model = ""

			b, err := fetch(cmd.Context(), &o)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, models.FilterAll)
			for _, opt := range aggregator.ModelOptions(b.records) {
				fmt.Fprintf(out, "%s\t%s\n", opt.ModelID, opt.Provider)
			}
			return nil
		},
	}
}
