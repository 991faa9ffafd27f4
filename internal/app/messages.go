package app

import (
	"time"

	"github.com/j-veylop/billing-dashboard-tui/internal/export"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/services"
)

// TickMsg is sent periodically to expire notifications.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// UsageLoadedMsg carries a usage snapshot read from the service manager.
type UsageLoadedMsg struct {
	UpdatedAt time.Time
	Error     error
	UserID    string
	Source    string
	Records   []models.UsageRecord
	Budget    models.BudgetStatus
}

// FetchesLoadedMsg carries the recent fetch log.
type FetchesLoadedMsg struct {
	Error   error
	Fetches []models.FetchLog
}

// RefreshMsg requests a refresh of usage data.
type RefreshMsg struct{}

// ExportMsg requests exporting the current report.
type ExportMsg struct {
	Format export.Format
}

// ExportResultMsg contains the result of an export.
type ExportResultMsg struct {
	Error  error
	Path   string
	Format export.Format
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg requests removal of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg carries the channel created by a subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
