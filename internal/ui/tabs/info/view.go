package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/config"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/billing-dashboard-tui/internal/version"
)

const notSet = "(not set)"

// View renders the info tab.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderFetchesCard(),
		m.renderAboutCard(),
	)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, data source and fetch history")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

// renderConfigCard renders the effective configuration.
func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if m.config == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	} else {
		c := m.config
		rows = append(rows,
			m.renderConfigRow("User", orNotSet(m.userID())),
			m.renderConfigRow("Source", m.sourceLabel()),
			m.renderConfigRow("API Base URL", c.APIBaseURL),
			m.renderConfigRow("Usage File", orNotSet(c.UsageFile)),
			m.renderConfigRow("Database", c.DatabasePath),
			m.renderConfigRow("Refresh", refreshLabel(c)),
			m.renderConfigRow("Timezone", c.Location().String()),
			m.renderConfigRow("Monthly Budget", budgetLabel(c.MonthlyBudget)),
			m.renderConfigRow("Export Dir", c.ExportDir),
			m.renderConfigRow("Config File", orNotSet(c.ConfigFile)),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) userID() string {
	if id := m.state.UserID(); id != "" {
		return id
	}
	return m.config.UserID
}

func (m *Model) sourceLabel() string {
	if src := m.state.Source(); src != "" {
		return src
	}
	if m.config.Offline {
		return "cache (offline)"
	}
	if m.config.UsageFile != "" {
		return "file"
	}
	return "api"
}

func refreshLabel(c *config.Config) string {
	if c.Offline || c.RefreshInterval <= 0 {
		return "manual"
	}
	return "every " + c.RefreshInterval.String()
}

func budgetLabel(limit float64) string {
	if limit <= 0 {
		return "disabled"
	}
	return aggregator.FormatCost(limit)
}

func orNotSet(s string) string {
	if s == "" {
		return notSet
	}
	return s
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderFetchesCard lists the most recent fetch attempts.
func (m *Model) renderFetchesCard() string {
	rows := []string{styles.CardTitleStyle.Render("Recent Fetches"), ""}

	fetches := m.state.GetFetches()
	if len(fetches) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No fetches recorded yet"))
	}
	for _, f := range fetches {
		rows = append(rows, renderFetch(f))
	}

	rows = append(rows, "", styles.HelpStyle.Render("Press 'r' to refresh now"))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func renderFetch(f models.FetchLog) string {
	when := lipgloss.NewStyle().Width(16).Foreground(styles.TextMuted).Render(humanize.Time(f.FetchedAt))
	source := lipgloss.NewStyle().Width(7).Render(f.Source)

	if !f.Succeeded() {
		return when + source + styles.ErrorTextStyle.Render(f.Error)
	}
	return when + source + styles.SuccessTextStyle.Render(
		fmt.Sprintf("%s records", humanize.Comma(int64(f.RecordCount))),
	)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About " + version.AppName),
		"",
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
