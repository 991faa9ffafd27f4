package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/billing-dashboard-tui/internal/export"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// recentFetchLimit is how many fetch log entries the Info tab shows.
	recentFetchLimit = 8
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// startServicesCmd starts the usage source and its file watcher. Usage
// arrives afterwards as service events.
func startServicesCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.Start()
		return StartLoadingMsg{Resource: "usage"}
	}
}

// loadUsageCmd reads the manager's current usage snapshot.
func loadUsageCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		snap := mgr.Snapshot()
		return UsageLoadedMsg{
			UpdatedAt: snap.UpdatedAt,
			Error:     snap.Err,
			UserID:    snap.UserID,
			Source:    snap.Source,
			Records:   snap.Records,
			Budget:    mgr.Budget(),
		}
	}
}

// loadFetchesCmd reads the recent fetch log.
func loadFetchesCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		fetches, err := mgr.RecentFetches(recentFetchLimit)
		return FetchesLoadedMsg{Fetches: fetches, Error: err}
	}
}

// refreshUsageCmd asks the usage service for a new fetch.
func refreshUsageCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.Refresh()
		return StartLoadingMsg{Resource: "usage"}
	}
}

// exportCmd writes report in format.
func exportCmd(exp *export.Exporter, report *models.Report, format export.Format) tea.Cmd {
	return func() tea.Msg {
		path, err := exp.Export(report, format)
		return ExportResultMsg{Path: path, Format: format, Error: err}
	}
}

// ExportCmd returns a command that requests an export of the current report.
func ExportCmd(format export.Format) tea.Cmd {
	return func() tea.Msg {
		return ExportMsg{Format: format}
	}
}

// RefreshCmd returns a command that requests a usage refresh.
func RefreshCmd() tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, LongNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}
