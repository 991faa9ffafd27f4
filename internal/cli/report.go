package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/ui/components"
)

const chartWidth = 60

func newReportCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print KPIs, daily usage and invoices for the period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := fetch(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if asJSON {
				return writeReportJSON(cmd.OutOrStdout(), b)
			}
			writeReportText(cmd.OutOrStdout(), b)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

// reportDocument is the JSON form of a report with the budget attached.
type reportDocument struct {
	*models.Report
	Budget *models.BudgetStatus `json:"budget,omitempty"`
}

func writeReportJSON(w io.Writer, b *batch) error {
	doc := reportDocument{Report: b.report}
	if b.budget.Enabled() {
		doc.Budget = &b.budget
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func writeReportText(w io.Writer, b *batch) {
	r := b.report
	title := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w, title.Render(fmt.Sprintf("Usage report: %s", r.Period.Label())))
	fmt.Fprintf(w, "Window: %s to %s  •  Model: %s\n\n",
		r.Window.Start.Format("2006-01-02"), r.Window.End.Format("2006-01-02"), r.ModelFilter)

	kpis := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Metric", "Value", "vs previous")
	for _, k := range r.KPIs {
		kpis.Row(k.Title, k.Value, k.Change)
	}
	fmt.Fprintln(w, kpis.String())

	if b.budget.Enabled() {
		fmt.Fprintf(w, "\nBudget %s: %s of %s spent (%s)\n",
			b.budget.Month.Format("Jan 2006"),
			aggregator.FormatCost(b.budget.Spent),
			aggregator.FormatCost(b.budget.Limit),
			b.budget.Level)
		fmt.Fprintln(w, components.SimpleBudgetBar(b.budget, chartWidth))
		if p := b.budget.Projection; p.Status != models.ProjectionUnknown {
			fmt.Fprintf(w, "Projected %s by month end (%s)", aggregator.FormatCost(p.Projected), p.VsLastMonth)
			if p.WillExceed {
				fmt.Fprintf(w, ", limit reached around %s", p.ExceedsOn.Format("Jan 2"))
			}
			fmt.Fprintln(w)
		}
	}

	if !r.HasData() {
		fmt.Fprintf(w, "\nNo usage in the last %s.\n", strings.ToLower(r.Period.Label()))
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, components.RenderUsageChart(r.Chart, models.ChartTokens, models.ChartLine, chartWidth, 8))

	daily := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Tokens", "Cost", "Requests")
	for _, p := range r.Chart {
		daily.Row(p.Date.Format("2006-01-02"), aggregator.FormatCount(p.Tokens), aggregator.FormatCost(p.Cost), aggregator.FormatCount(p.Requests))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, daily.String())

	invoices := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Invoice ID", "Date", "Amount", "Status", "Reference")
	for _, inv := range r.Invoices {
		ref := inv.TxRef
		if ref == "" {
			ref = "-"
		}
		invoices.Row(inv.ID, inv.DisplayDate, inv.Amount, string(inv.Status), ref)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, invoices.String())
}
