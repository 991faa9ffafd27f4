package usage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/j-veylop/billing-dashboard-tui/internal/logger"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

// EventType defines the type of usage event.
type EventType int

const (
	// EventRefreshing indicates that a fetch has started.
	EventRefreshing EventType = iota
	// EventUpdated indicates that a fetch succeeded and records were replaced.
	EventUpdated
	// EventError indicates that a fetch failed and records were cleared.
	EventError
)

// Event represents a usage service event.
type Event struct {
	Error   error
	Records []models.UsageRecord
	UserID  string
	Source  string
	Type    EventType
}

// Snapshot is a point-in-time copy of the service state.
type Snapshot struct {
	UpdatedAt time.Time
	Err       error
	UserID    string
	Source    string
	Records   []models.UsageRecord
	Loading   bool
}

// Service keeps the records of the most recent fetch. Only the latest
// requested fetch may commit; older in-flight fetches are cancelled and
// their results discarded.
type Service struct {
	source       Source
	ctx          context.Context
	stop         context.CancelFunc
	cancel       context.CancelFunc
	eventChan    chan Event
	stopChan     chan struct{}
	updatedAt    time.Time
	err          error
	userID       string
	records      []models.UsageRecord
	generation   uint64
	pollInterval time.Duration
	wg           sync.WaitGroup
	mu           sync.RWMutex
	loading      bool
	closed       bool
}

// NewService creates a service reading from source. A positive pollInterval
// enables periodic refreshes once Start is called.
func NewService(source Source, pollInterval time.Duration) *Service {
	ctx, stop := context.WithCancel(context.Background())
	return &Service{
		source:       source,
		ctx:          ctx,
		stop:         stop,
		eventChan:    make(chan Event, 100),
		stopChan:     make(chan struct{}),
		records:      []models.UsageRecord{},
		pollInterval: pollInterval,
	}
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Source returns the configured source.
func (s *Service) Source() Source {
	return s.source
}

// Start performs the initial refresh and begins polling.
func (s *Service) Start(userID string) {
	s.Refresh(userID)

	if s.pollInterval <= 0 {
		return
	}
	s.wg.Add(1)
	go s.poll()
}

func (s *Service) poll() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.RLock()
			userID := s.userID
			s.mu.RUnlock()
			s.Refresh(userID)
		case <-s.stopChan:
			return
		}
	}
}

// Refresh starts a fetch for userID, cancelling any fetch still in flight.
// It returns immediately; the outcome is delivered as an event.
func (s *Service) Refresh(userID string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	gen := s.generation
	s.userID = userID

	if userID == "" {
		s.records = []models.UsageRecord{}
		s.err = ErrNoUserID
		s.loading = false
		s.mu.Unlock()

		s.sendEvent(Event{Type: EventError, Source: s.source.Name(), Error: ErrNoUserID})
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	s.loading = true
	s.wg.Add(1)
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventRefreshing, UserID: userID, Source: s.source.Name()})

	go s.fetch(ctx, cancel, gen, userID)
}

func (s *Service) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, userID string) {
	defer s.wg.Done()
	defer cancel()

	records, err := s.source.Fetch(ctx, userID)

	s.mu.Lock()
	if gen != s.generation || ctx.Err() != nil {
		s.mu.Unlock()
		logger.Debug("discarding superseded usage fetch", "user", userID, "generation", gen)
		return
	}
	s.cancel = nil
	s.loading = false

	event := Event{UserID: userID, Source: s.source.Name()}
	if err != nil {
		s.records = []models.UsageRecord{}
		s.err = err
		event.Type = EventError
		event.Error = err
	} else {
		if records == nil {
			records = []models.UsageRecord{}
		}
		s.records = records
		s.err = nil
		s.updatedAt = time.Now()
		event.Type = EventUpdated
		event.Records = cloneRecords(records)
	}
	s.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("usage fetch failed", "user", userID, "source", s.source.Name(), "error", err)
	}
	s.sendEvent(event)
}

// Snapshot returns a copy of the current state.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		UpdatedAt: s.updatedAt,
		Err:       s.err,
		UserID:    s.userID,
		Source:    s.source.Name(),
		Records:   cloneRecords(s.records),
		Loading:   s.loading,
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close cancels any in-flight fetch, stops polling and waits for
// background goroutines to exit.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.stop()
	close(s.stopChan)
	s.wg.Wait()
	return nil
}

func cloneRecords(records []models.UsageRecord) []models.UsageRecord {
	out := make([]models.UsageRecord, len(records))
	copy(out, records)
	return out
}
