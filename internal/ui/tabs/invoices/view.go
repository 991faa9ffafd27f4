package invoices

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/ui/styles"
)

// View renders the invoices tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	m.sync()
	if len(m.report.Invoices) == 0 {
		return m.renderEmpty()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.table.View(),
		"",
		m.renderSelection(),
	)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading invoices..."))
}

func (m *Model) renderEmpty() string {
	lines := []string{
		styles.TitleStyle.Render("Invoices"),
		"",
		styles.HelpStyle.Render(fmt.Sprintf("No billable usage in the last %s.", m.report.Period.Label())),
		styles.HelpStyle.Render("Press p on the Overview tab to widen the period."),
	}
	if err := m.state.FetchError(); err != nil {
		lines = append(lines, "", fmt.Sprintf("%s %v", styles.ErrorTextStyle.Render("Error:"), err))
	}

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) renderHeader() string {
	r := m.report
	summary := fmt.Sprintf("%d invoices  •  %s  •  %s total",
		len(r.Invoices), r.Period.Label(), aggregator.FormatCost(r.Totals.Cost))

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Invoices"),
		styles.HelpStyle.Render(summary),
	)
}

func (m *Model) renderSelection() string {
	inv, ok := m.Selected()
	if !ok {
		return ""
	}

	status := styles.GetStatusStyle(string(inv.Status)).Render(string(inv.Status))
	ref := inv.TxRef
	if ref == "" {
		ref = "awaiting settlement"
	}

	return fmt.Sprintf("%s  %s  %s  %s",
		styles.HelpKeyStyle.Render(inv.ID),
		styles.HelpDescStyle.Render(inv.Date),
		status,
		styles.HelpStyle.Render(ref),
	)
}
