// Package styles defines the visual styling for the application.
package styles

import "github.com/charmbracelet/lipgloss"

// Color definitions for the billing theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("42")  // Green
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Chart series colors
	TokensColor   = lipgloss.Color("39")  // Blue
	CostColor     = lipgloss.Color("208") // Orange
	RequestsColor = lipgloss.Color("170") // Magenta

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// KPICardStyle is the compact card used for summary metrics.
var KPICardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 1)

// KPITitleStyle styles the metric name on a KPI card.
var KPITitleStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// KPIValueStyle styles the metric value on a KPI card.
var KPIValueStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(TextPrimary)

// TrendUpStyle marks a positive change.
var TrendUpStyle = lipgloss.NewStyle().
	Foreground(Success)

// TrendDownStyle marks a negative change.
var TrendDownStyle = lipgloss.NewStyle().
	Foreground(Error)

// TrendFlatStyle marks an unchanged or undefined change.
var TrendFlatStyle = lipgloss.NewStyle().
	Foreground(Subtle)

// BadgeStyle is the base for inline labels such as the period selector.
var BadgeStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("229")).
	Background(Secondary).
	Padding(0, 1).
	MarginRight(1)

// BadgeMutedStyle is an inactive badge.
var BadgeMutedStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Background(BgLight).
	Padding(0, 1).
	MarginRight(1)

// ProgressLabelStyle styles progress bar labels.
var ProgressLabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Width(20)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpDescStyle styles help descriptions.
var HelpDescStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Subtle)

// TableCellStyle styles table cells.
var TableCellStyle = lipgloss.NewStyle().
	Padding(0, 1)

// TableSelectedStyle styles selected table rows.
var TableSelectedStyle = lipgloss.NewStyle().
	Background(BgAccent).
	Foreground(TextPrimary).
	Bold(true)

// StatusPendingStyle styles pending invoices.
var StatusPendingStyle = lipgloss.NewStyle().
	Foreground(Warning).
	Bold(true)

// StatusCompletedStyle styles settled invoices.
var StatusCompletedStyle = lipgloss.NewStyle().
	Foreground(Success)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// GetTrendStyle returns the style for a KPI trend: 1 up, -1 down, 0 flat.
func GetTrendStyle(trend int) lipgloss.Style {
	switch {
	case trend > 0:
		return TrendUpStyle
	case trend < 0:
		return TrendDownStyle
	default:
		return TrendFlatStyle
	}
}

// GetBudgetStyle returns the style for month-to-date spend in percent of
// the budget. Higher spend is worse.
func GetBudgetStyle(percent float64) lipgloss.Style {
	switch {
	case percent >= 95:
		return ErrorTextStyle
	case percent >= 80:
		return WarningTextStyle
	default:
		return SuccessTextStyle
	}
}

// GetStatusStyle returns the style for an invoice status.
func GetStatusStyle(status string) lipgloss.Style {
	if status == "pending" {
		return StatusPendingStyle
	}
	return StatusCompletedStyle
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
