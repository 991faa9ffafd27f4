// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/billing-dashboard-tui/internal/config"
	"github.com/j-veylop/billing-dashboard-tui/internal/db"
	"github.com/j-veylop/billing-dashboard-tui/internal/logger"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/services/budget"
	"github.com/j-veylop/billing-dashboard-tui/internal/services/usage"
)

// fileUserID stands in for the user when records come from a local file
// and no user is configured.
const fileUserID = "local"

// notify sends a desktop notification.
var notify = func(title, body string) error {
	return beeep.Notify(title, body, "")
}

type (
	// UsageRefreshingEvent is emitted when a usage fetch starts.
	UsageRefreshingEvent struct {
		UserID string
		Source string
	}

	// UsageUpdatedEvent is emitted when a fetch replaced the usage records.
	UsageUpdatedEvent struct {
		UpdatedAt time.Time
		UserID    string
		Source    string
		Records   []models.UsageRecord
		Budget    models.BudgetStatus
	}

	// BudgetAlertEvent is emitted when month-to-date spend crosses a threshold.
	BudgetAlertEvent struct {
		Status    models.BudgetStatus
		Threshold float64
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (UsageRefreshingEvent) isServiceEvent() {}
func (UsageUpdatedEvent) isServiceEvent()    {}
func (BudgetAlertEvent) isServiceEvent()     {}
func (ErrorEvent) isServiceEvent()           {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	source      usage.Source
	usage       *usage.Service
	database    *db.DB
	tracker     *budget.Tracker
	budget      models.BudgetStatus
	now         func() time.Time
	watchCancel context.CancelFunc
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	routeDone   chan struct{}
	subscribers []chan<- ServiceEvent
	closeOnce   sync.Once
}

// NewManager creates a new service manager. Call Start to begin fetching.
func NewManager(cfg *config.Config) (*Manager, error) {
	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return newManager(cfg, SelectSource(cfg, database), database), nil
}

func newManager(cfg *config.Config, source usage.Source, database *db.DB) *Manager {
	m := &Manager{
		cfg:       cfg,
		source:    source,
		database:  database,
		tracker:   budget.NewTracker(),
		now:       time.Now,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
		routeDone: make(chan struct{}),
	}
	m.usage = usage.NewService(source, cfg.RefreshInterval)
	m.budget = budget.Evaluate(nil, cfg.MonthlyBudget, m.now(), cfg.Location())

	go m.routeEvents()

	return m
}

// SelectSource picks the usage source for cfg: a local file when one is
// configured, the cache in offline mode, the HTTP API otherwise.
func SelectSource(cfg *config.Config, database *db.DB) usage.Source {
	switch {
	case cfg.UsageFile != "":
		return usage.NewFileSource(cfg.UsageFile)
	case cfg.Offline && database != nil:
		return usage.NewCacheSource(database)
	default:
		return usage.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	}
}

// Start performs the initial refresh, begins polling and, for file
// sources, watches the file for changes.
func (m *Manager) Start() {
	if fs, ok := m.source.(*usage.FileSource); ok {
		ctx, cancel := context.WithCancel(context.Background())
		m.mu.Lock()
		m.watchCancel = cancel
		m.mu.Unlock()

		if err := fs.Watch(ctx, m.Refresh); err != nil {
			logger.Warn("failed to watch usage file", "path", fs.Path(), "error", err)
			m.broadcast(ErrorEvent{Service: "usage", Error: err})
		}
	}

	m.usage.Start(m.UserID())
}

// UserID returns the user whose usage is tracked.
func (m *Manager) UserID() string {
	if m.cfg.UserID == "" && m.source.Name() == usage.SourceFile {
		return fileUserID
	}
	return m.cfg.UserID
}

// Refresh re-fetches usage, superseding any fetch in flight.
func (m *Manager) Refresh() {
	m.usage.Refresh(m.UserID())
}

// Load fetches usage once, synchronously, applying the same cache and
// budget side effects as a background refresh.
func (m *Manager) Load(ctx context.Context) ([]models.UsageRecord, error) {
	userID := m.UserID()
	if userID == "" {
		return nil, config.ErrMissingUserID
	}

	records, err := m.source.Fetch(ctx, userID)
	if err != nil {
		m.logFetch(userID, 0, err)
		return nil, err
	}

	m.writeThrough(userID, records)
	m.evaluateBudget(records)
	return records, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	defer close(m.routeDone)

	for {
		select {
		case event := <-m.usage.Events():
			m.handleUsageEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleUsageEvent(event usage.Event) {
	switch event.Type {
	case usage.EventRefreshing:
		m.broadcast(UsageRefreshingEvent{
			UserID: event.UserID,
			Source: event.Source,
		})

	case usage.EventUpdated:
		m.writeThrough(event.UserID, event.Records)
		status := m.evaluateBudget(event.Records)

		m.broadcast(UsageUpdatedEvent{
			UpdatedAt: m.now(),
			UserID:    event.UserID,
			Source:    event.Source,
			Records:   event.Records,
			Budget:    status,
		})

	case usage.EventError:
		if event.UserID != "" {
			m.logFetch(event.UserID, 0, event.Error)
		}
		m.broadcast(ErrorEvent{
			Service: "usage",
			Error:   event.Error,
		})
	}
}

// writeThrough caches a successful fetch unless it came from the cache.
func (m *Manager) writeThrough(userID string, records []models.UsageRecord) {
	if m.database == nil {
		return
	}

	if m.source.Name() != usage.SourceCache {
		if err := m.database.ReplaceUsageRecords(userID, records); err != nil {
			logger.Error("failed to cache usage records", "user", userID, "error", err)
		}
	}
	m.logFetch(userID, len(records), nil)
}

func (m *Manager) logFetch(userID string, count int, fetchErr error) {
	if m.database == nil || errors.Is(fetchErr, context.Canceled) {
		return
	}

	entry := &models.FetchLog{
		UserID:      userID,
		Source:      m.source.Name(),
		FetchedAt:   m.now(),
		RecordCount: count,
	}
	if fetchErr != nil {
		entry.Error = fetchErr.Error()
	}
	if err := m.database.RecordFetch(entry); err != nil {
		logger.Error("failed to record fetch", "user", userID, "error", err)
	}
}

// evaluateBudget recomputes month-to-date spend and fires alerts for
// thresholds crossed since the last evaluation.
func (m *Manager) evaluateBudget(records []models.UsageRecord) models.BudgetStatus {
	status := budget.Evaluate(records, m.cfg.MonthlyBudget, m.now(), m.cfg.Location())

	m.mu.Lock()
	m.budget = status
	m.mu.Unlock()

	for _, threshold := range m.tracker.Observe(status) {
		logger.Warn("budget threshold crossed",
			"threshold", threshold, "spent", status.Spent, "limit", status.Limit)

		title := fmt.Sprintf("Usage budget at %.0f%%", threshold)
		body := fmt.Sprintf("$%.2f of $%.2f spent this month (%.1f%%)", status.Spent, status.Limit, status.Percent)
		if err := notify(title, body); err != nil {
			logger.Debug("desktop notification failed", "error", err)
		}

		m.broadcast(BudgetAlertEvent{Status: status, Threshold: threshold})
	}

	return status
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Snapshot returns the current usage state.
func (m *Manager) Snapshot() usage.Snapshot {
	return m.usage.Snapshot()
}

// Budget returns the latest budget evaluation.
func (m *Manager) Budget() models.BudgetStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.budget
}

// RecentFetches returns the newest fetch log entries for the current user.
func (m *Manager) RecentFetches(limit int) ([]models.FetchLog, error) {
	if m.database == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return m.database.GetRecentFetches(m.UserID(), limit)
}

// SourceName returns the name of the active usage source.
func (m *Manager) SourceName() string {
	return m.source.Name()
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error

	m.closeOnce.Do(func() {
		m.mu.Lock()
		if m.watchCancel != nil {
			m.watchCancel()
		}
		m.mu.Unlock()

		if err := m.usage.Close(); err != nil {
			errs = append(errs, err)
		}

		close(m.stopChan)
		<-m.routeDone

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})

	return errors.Join(errs...)
}
