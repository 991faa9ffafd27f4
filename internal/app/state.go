// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Usage   bool
	Fetches bool
}

// State is the view state shared by all tabs. Every tab reads it through
// accessors so the event loop and commands can update it concurrently.
type State struct {
	mu sync.RWMutex

	updatedAt time.Time
	fetchErr  error

	userID  string
	source  string
	records []models.UsageRecord
	fetches []models.FetchLog
	budget  models.BudgetStatus

	period models.Period
	filter string
	metric models.ChartMetric
	style  models.ChartStyle

	Loading LoadingState

	notifications   []Notification
	notificationSeq int

	// version increments on every change that affects the report.
	version int
}

// NewState creates the view state for the given starting period.
func NewState(period models.Period) *State {
	if _, err := models.ParsePeriod(string(period)); err != nil {
		period = models.DefaultPeriod
	}
	return &State{
		period:        period,
		filter:        models.FilterAll,
		records:       make([]models.UsageRecord, 0),
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "usage":
		s.Loading.Usage = loading
	case "fetches":
		s.Loading.Fetches = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial || s.Loading.Usage || s.Loading.Fetches
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, "initial")
	}
	if s.Loading.Usage {
		resources = append(resources, "usage")
	}
	if s.Loading.Fetches {
		resources = append(resources, "fetches")
	}
	return resources
}

// SetUsage replaces the records snapshot after a successful fetch. The model
// filter falls back to all models when it no longer matches an option.
func (s *State) SetUsage(userID, source string, records []models.UsageRecord, updatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = userID
	s.source = source
	s.records = cloneRecords(records)
	s.updatedAt = updatedAt
	s.fetchErr = nil
	s.filter = aggregator.ResolveFilter(aggregator.ModelOptions(s.records), s.filter)
	s.Loading.Initial = false
	s.Loading.Usage = false
	s.version++
}

// SetFetchError records a failed fetch. Records are cleared so stale data is
// never shown next to an error.
func (s *State) SetFetchError(userID, source string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = userID
	s.source = source
	s.records = make([]models.UsageRecord, 0)
	s.fetchErr = err
	s.filter = models.FilterAll
	s.Loading.Initial = false
	s.Loading.Usage = false
	s.version++
}

// GetRecords returns a copy of the records snapshot.
func (s *State) GetRecords() []models.UsageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.records)
}

// FetchError returns the last fetch error, if the last fetch failed.
func (s *State) FetchError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchErr
}

// UserID returns the user the snapshot belongs to.
func (s *State) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Source returns the name of the source that produced the snapshot.
func (s *State) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Period returns the selected period.
func (s *State) Period() models.Period {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.period
}

// SetPeriod selects a period. Unknown periods are ignored.
func (s *State) SetPeriod(p models.Period) {
	if _, err := models.ParsePeriod(string(p)); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.period != p {
		s.period = p
		s.version++
	}
}

// CyclePeriod advances to the next period and returns it.
func (s *State) CyclePeriod() models.Period {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.period = s.period.Next()
	s.version++
	return s.period
}

// ModelFilter returns the selected model filter.
func (s *State) ModelFilter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SetModelFilter selects a model filter, falling back to all models when it
// matches no option. Before any records arrive the filter is kept as given
// and resolved by the first SetUsage.
func (s *State) SetModelFilter(filter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resolved := filter
	if resolved == "" {
		resolved = models.FilterAll
	}
	if len(s.records) > 0 {
		resolved = aggregator.ResolveFilter(aggregator.ModelOptions(s.records), filter)
	}
	if s.filter != resolved {
		s.filter = resolved
		s.version++
	}
}

// CycleModelFilter advances to the next model option and returns it.
func (s *State) CycleModelFilter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = aggregator.NextFilter(aggregator.ModelOptions(s.records), s.filter)
	s.version++
	return s.filter
}

// ModelOptions returns the distinct models in the snapshot.
func (s *State) ModelOptions() []models.ModelOption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return aggregator.ModelOptions(s.records)
}

// ChartMetric returns the plotted metric.
func (s *State) ChartMetric() models.ChartMetric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metric
}

// CycleChartMetric advances to the next chart metric and returns it.
func (s *State) CycleChartMetric() models.ChartMetric {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metric = s.metric.Next()
	return s.metric
}

// ChartStyle returns the chart style.
func (s *State) ChartStyle() models.ChartStyle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style
}

// ToggleChartStyle switches between line and bar charts and returns the result.
func (s *State) ToggleChartStyle() models.ChartStyle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style = s.style.Next()
	return s.style
}

// Report aggregates the snapshot for the current period and filter. It is
// recomputed on every call.
func (s *State) Report(agg *aggregator.Aggregator) *models.Report {
	s.mu.RLock()
	records, period, filter := s.records, s.period, s.filter
	s.mu.RUnlock()

	if agg == nil {
		agg = aggregator.New()
	}
	return agg.Aggregate(records, period, filter)
}

// Version returns a counter that changes whenever the report inputs change.
func (s *State) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// SetBudget updates the month-to-date budget status.
func (s *State) SetBudget(b models.BudgetStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget = b
}

// GetBudget returns the month-to-date budget status.
func (s *State) GetBudget() models.BudgetStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budget
}

// SetFetches replaces the recent fetch log.
func (s *State) SetFetches(fetches []models.FetchLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches = append([]models.FetchLog(nil), fetches...)
	s.Loading.Fetches = false
}

// GetFetches returns a copy of the recent fetch log.
func (s *State) GetFetches() []models.FetchLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.FetchLog(nil), s.fetches...)
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// GetLastUpdated returns the time of the last successful fetch.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// TimeSinceUpdate returns the duration since the last successful fetch.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.updatedAt.IsZero() {
		return 0
	}
	return time.Since(s.updatedAt)
}

func cloneRecords(records []models.UsageRecord) []models.UsageRecord {
	out := make([]models.UsageRecord, len(records))
	copy(out, records)
	return out
}
