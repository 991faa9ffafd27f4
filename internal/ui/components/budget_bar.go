package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/logger"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/ui/styles"
)

// Gradient endpoints for spend bars. Spend runs from green to red.
const (
	budgetLowColor  = "#51cf66"
	budgetHighColor = "#ff6b6b"
)

// BudgetBar renders month-to-date spend against the monthly limit.
type BudgetBar struct {
	progress progress.Model
}

// NewBudgetBar creates a budget bar with a green to red gradient.
func NewBudgetBar() BudgetBar {
	return NewBudgetBarWithWidth(30)
}

// NewBudgetBarWithWidth creates a budget bar with a specific width.
func NewBudgetBarWithWidth(width int) BudgetBar {
	p := progress.New(
		progress.WithScaledGradient(budgetLowColor, budgetHighColor),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	return BudgetBar{progress: p}
}

// SetWidth sets the progress bar width.
func (b *BudgetBar) SetWidth(width int) {
	b.progress.Width = width
}

// Width returns the progress bar width.
func (b BudgetBar) Width() int {
	return b.progress.Width
}

// View renders the bar with a label, percentage and spend summary.
func (b BudgetBar) View(status models.BudgetStatus, width int) string {
	if !status.Enabled() {
		return styles.HelpStyle.Render("No monthly budget configured")
	}

	label := styles.ProgressLabelStyle.Width(15).Render(status.Month.Format("Jan 2006"))
	percent := styles.GetBudgetStyle(status.Percent).
		Width(7).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", status.Percent))

	barWidth := width - 24
	if barWidth < 10 {
		barWidth = 10
	}
	b.progress.Width = barWidth

	ratio := status.Percent / 100
	if ratio > 1 {
		ratio = 1
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, label, b.progress.ViewAs(ratio), " ", percent)
	summary := styles.HelpStyle.Render(fmt.Sprintf("%s of %s spent, %s remaining",
		aggregator.FormatCost(status.Spent),
		aggregator.FormatCost(status.Limit),
		aggregator.FormatCost(status.Remaining()),
	))

	return lipgloss.JoinVertical(lipgloss.Left, bar, summary)
}

// SimpleBudgetBar renders a compact ASCII spend bar with gradient colors.
func SimpleBudgetBar(status models.BudgetStatus, width int) string {
	if !status.Enabled() {
		return ""
	}

	percentWidth := 6
	barWidth := width - percentWidth - 3
	if barWidth < 5 {
		barWidth = 5
	}

	percentStr := styles.GetBudgetStyle(status.Percent).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", status.Percent))

	return fmt.Sprintf("[%s] %s", RenderGradientBar(status.Percent, barWidth), percentStr)
}

// RenderGradientBar renders just the bar part with gradient colors.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var sb strings.Builder
	empty := lipgloss.NewStyle().Foreground(styles.Subtle)
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(budgetLowColor, budgetHighColor, t)
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			sb.WriteString(empty.Render("░"))
		}
	}

	return sb.String()
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
