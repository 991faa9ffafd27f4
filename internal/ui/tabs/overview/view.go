package overview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/billing-dashboard-tui/internal/ui/styles"
)

// View renders the overview tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	report := m.state.Report(m.agg)
	cardWidth := max(m.width-6, 40)

	sections := []string{
		m.renderHeader(report),
		m.renderStatus(),
		components.RenderKPIRow(report.KPIs, cardWidth),
		m.renderBudget(cardWidth),
		m.renderChart(report, cardWidth),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderHeader shows the period selector, model filter and last update.
func (m *Model) renderHeader(report *models.Report) string {
	title := styles.TitleStyle.Render("Usage Overview")

	periods := make([]string, 0, len(models.Periods()))
	for _, p := range models.Periods() {
		if p == report.Period {
			periods = append(periods, styles.BadgeStyle.Render(p.Label()))
		} else {
			periods = append(periods, styles.BadgeMutedStyle.Render(p.Label()))
		}
	}

	filter := "All models"
	if report.ModelFilter != models.FilterAll {
		filter = report.ModelFilter
	}

	updated := "never"
	if t := m.state.GetLastUpdated(); !t.IsZero() {
		updated = humanize.Time(t)
	}

	window := fmt.Sprintf("%s - %s",
		report.Window.Start.Format("Jan 2, 2006"),
		report.Window.End.Format("Jan 2, 2006"))

	meta := styles.HelpStyle.Render(fmt.Sprintf("Model: %s  •  %s  •  Updated %s", filter, window, updated))

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, periods...),
		meta,
		"",
	)
}

// renderStatus shows the last fetch error, if any.
func (m *Model) renderStatus() string {
	err := m.state.FetchError()
	if err == nil {
		return ""
	}
	return styles.ErrorTextStyle.Render("✗ " + err.Error()) + "\n"
}

func (m *Model) renderBudget(width int) string {
	status := m.state.GetBudget()
	status.Percent = m.budgetAnim.CurrentPercent

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	title := fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Monthly Budget"))

	rows := []string{title, m.budgetBar.View(status, width-6)}
	if line := renderProjection(status); line != "" {
		rows = append(rows, line)
	}

	return styles.CardStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderProjection summarizes the month-end forecast.
func renderProjection(status models.BudgetStatus) string {
	p := status.Projection
	if !status.Enabled() || p.Status == models.ProjectionUnknown {
		return ""
	}

	line := styles.HelpStyle.Render(fmt.Sprintf("Projected %s by month end (%s confidence) • %s",
		aggregator.FormatCost(p.Projected), p.Confidence, p.VsLastMonth))
	if !p.WillExceed {
		return line
	}

	style := styles.WarningTextStyle
	if p.Status == models.ProjectionCritical {
		style = styles.ErrorTextStyle
	}
	return line + "\n" + style.Render("Limit reached around "+p.ExceedsOn.Format("Jan 2"))
}

func (m *Model) renderChart(report *models.Report, width int) string {
	metric := m.state.ChartMetric()
	style := m.state.ChartStyle()

	titleIcon := lipgloss.NewStyle().Foreground(components.MetricColor(metric)).Render("■")
	title := fmt.Sprintf("%s %s", titleIcon,
		styles.CardTitleStyle.Render(fmt.Sprintf("Daily %s (%s)", metric, strings.ToLower(style.String()))))

	chartHeight := max(m.height/4, 6)
	chart := components.RenderUsageChart(report.Chart, metric, style, width-16, chartHeight)

	return styles.CardStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, chart),
	)
}
