package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/ui/styles"
)

// toastTop is the first screen row used by the notification stack.
const toastTop = 2

// Styles defines the application chrome styles.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Status      lipgloss.Style

	Notification map[NotificationType]lipgloss.Style
	Toast        lipgloss.Style

	Content   lipgloss.Style
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#04875F", Dark: "#04B575"}

	toast := lipgloss.NewStyle().Padding(0, 1)

	return Styles{
		TabBar: lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).BorderForeground(subtle),
		ActiveTab:   lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2),
		InactiveTab: lipgloss.NewStyle().Foreground(subtle).Padding(0, 2),
		Status:      lipgloss.NewStyle().Foreground(styles.TextMuted),

		Notification: map[NotificationType]lipgloss.Style{
			NotificationSuccess: toast.Foreground(styles.Success),
			NotificationError:   toast.Foreground(styles.Error).Bold(true),
			NotificationWarning: toast.Foreground(styles.Warning),
			NotificationInfo:    toast.Foreground(styles.Info),
			NotificationLoading: toast.Foreground(styles.Info),
		},
		Toast: styles.ToastStyle,

		Content:   lipgloss.NewStyle().Padding(1, 2),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(highlight),
		Subtle:    lipgloss.NewStyle().Foreground(subtle),
		Highlight: lipgloss.NewStyle().Foreground(highlight),
	}
}

var notificationPrefix = map[NotificationType]string{
	NotificationSuccess: "[OK]",
	NotificationError:   "[ERR]",
	NotificationWarning: "[WARN]",
	NotificationInfo:    "[INFO]",
}

// View renders the navbar, the active tab and any overlays.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if tab := m.activeTabModel(); tab != nil {
		b.WriteString(tab.View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	view := b.String()

	if m.showHelp {
		help := m.renderHelp()
		x := (m.width - lipgloss.Width(help)) / 2
		y := (m.height - lipgloss.Height(help)) / 2
		view = overlay(view, help, x, y)
	}

	if toasts := m.renderNotifications(); toasts != "" {
		x := m.width - lipgloss.Width(toasts) - 2
		view = overlay(view, toasts, x, toastTop)
	}

	return view
}

func (m *Model) activeTabModel() Tab {
	if int(m.activeTab) < len(m.tabs) {
		return m.tabs[m.activeTab]
	}
	return nil
}

// overlay draws top over base with its top-left corner at column x, row y.
// base is padded with blank lines when top extends past its end.
func overlay(base, top string, x, y int) string {
	x, y = max(x, 0), max(y, 0)

	baseLines := strings.Split(base, "\n")
	topLines := strings.Split(top, "\n")
	for len(baseLines) < y+len(topLines) {
		baseLines = append(baseLines, "")
	}

	width := lipgloss.Width(top)
	for i, line := range topLines {
		row := baseLines[y+i]

		left := ansi.Truncate(row, x, "")
		if w := lipgloss.Width(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		right := ansi.TruncateLeft(row, x+width, "")

		baseLines[y+i] = left + line + right
	}

	return strings.Join(baseLines, "\n")
}

// renderNavbar renders the tab bar with the data status right-aligned.
func (m *Model) renderNavbar() string {
	tabs := make([]string, 0, len(m.tabNames))
	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	status := m.styles.Status.Render(m.statusText())
	if gap := m.width - lipgloss.Width(bar) - lipgloss.Width(status) - 2; gap > 0 {
		bar += strings.Repeat(" ", gap) + status
	}

	return m.styles.TabBar.Width(m.width).Render(bar)
}

// statusText summarizes whose data is shown, where it came from and the period.
func (m *Model) statusText() string {
	var parts []string
	if id := m.state.UserID(); id != "" {
		parts = append(parts, id)
	}
	if src := m.state.Source(); src != "" {
		parts = append(parts, src)
	}
	parts = append(parts, string(m.state.Period()))

	if b := m.state.GetBudget(); b.Enabled() && b.Level != models.BudgetOK {
		parts = append(parts, styles.GetBudgetStyle(b.Percent).Render(fmt.Sprintf("budget %.0f%%", b.Percent)))
	}

	return strings.Join(parts, " · ")
}

// renderNotifications stacks the active notifications, right-aligned.
func (m *Model) renderNotifications() string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return ""
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		prefix := notificationPrefix[n.Type]
		if n.Type == NotificationLoading {
			prefix = m.spinner.View()
		}
		content := m.styles.Notification[n.Type].Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return lipgloss.JoinVertical(lipgloss.Right, toasts...)
}

// renderHelp renders the help modal from the global and active tab bindings.
func (m *Model) renderHelp() string {
	lines := []string{m.styles.Title.Render("Keyboard Shortcuts"), ""}

	section := func(title string, bindings []key.Binding) {
		lines = append(lines, m.styles.Highlight.Render(title))
		for _, b := range bindings {
			if !b.Enabled() {
				continue
			}
			lines = append(lines, fmt.Sprintf("  %-12s %s", b.Help().Key, b.Help().Desc))
		}
		lines = append(lines, "")
	}

	k := m.keymap
	section("Navigation", []key.Binding{k.Tab1, k.Tab2, k.Tab3, k.NextTab, k.PrevTab})
	section("Actions", []key.Binding{k.Refresh, k.Help, k.Quit})
	section("Lists", []key.Binding{k.Up, k.Down, k.Home, k.End})

	if tab := m.activeTabModel(); tab != nil {
		var bindings []key.Binding
		for _, group := range tab.FullHelp() {
			bindings = append(bindings, group...)
		}
		if len(bindings) > 0 {
			section(m.tabNames[m.activeTab]+" Tab", bindings)
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.tabNames[m.activeTab],
		m.styles.Subtle.Render("This tab is not yet implemented."),
	)
	return m.styles.Content.Render(content)
}
