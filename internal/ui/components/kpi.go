package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/ui/styles"
)

// kpiIcons are shown ahead of each KPI title.
var kpiIcons = map[models.KPIKind]string{
	models.KPITokens:   "◆",
	models.KPICost:     "$",
	models.KPIRequests: "⇅",
	models.KPIAvgCost:  "≈",
}

// RenderKPICard renders one KPI with its change against the previous period.
func RenderKPICard(kpi models.KPI, width int) string {
	inner := width - 4
	if inner < 12 {
		inner = 12
	}

	title := styles.KPITitleStyle.Render(kpiIcons[kpi.Kind] + " " + kpi.Title)
	value := styles.KPIValueStyle.Render(kpi.Value)
	change := styles.GetTrendStyle(kpi.Trend()).Render(kpi.Change + " vs prev")

	body := lipgloss.JoinVertical(lipgloss.Left, title, value, change)
	return styles.KPICardStyle.Width(inner).Render(body)
}

// RenderKPIRow lays the KPI cards out side by side when they fit and in a
// two by two grid otherwise.
func RenderKPIRow(kpis []models.KPI, width int) string {
	if len(kpis) == 0 {
		return ""
	}

	perRow := len(kpis)
	if width/perRow < 22 && perRow > 2 {
		perRow = 2
	}
	cardWidth := width / perRow

	var rows []string
	for start := 0; start < len(kpis); start += perRow {
		end := min(start+perRow, len(kpis))
		cards := make([]string, 0, end-start)
		for _, k := range kpis[start:end] {
			cards = append(cards, RenderKPICard(k, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
