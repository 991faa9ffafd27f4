package usage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

// gatedSource blocks each user's fetch until its gate is released. Fetches
// for users listed in ignoreCancel keep waiting even after cancellation.
type gatedSource struct {
	mu           sync.Mutex
	gates        map[string]chan struct{}
	results      map[string][]models.UsageRecord
	errs         map[string]error
	ignoreCancel map[string]bool
	calls        int
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		gates:        make(map[string]chan struct{}),
		results:      make(map[string][]models.UsageRecord),
		errs:         make(map[string]error),
		ignoreCancel: make(map[string]bool),
	}
}

func (g *gatedSource) gate(user string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[user]
	if !ok {
		ch = make(chan struct{})
		g.gates[user] = ch
	}
	return ch
}

func (g *gatedSource) release(user string) { close(g.gate(user)) }

func (g *gatedSource) Name() string { return "fake" }

func (g *gatedSource) Fetch(ctx context.Context, user string) ([]models.UsageRecord, error) {
	g.mu.Lock()
	g.calls++
	ignore := g.ignoreCancel[user]
	g.mu.Unlock()

	gate := g.gate(user)
	if ignore {
		<-gate
	} else {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.results[user], g.errs[user]
}

func waitEvent(t *testing.T, svc *Service, want EventType) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-svc.Events():
			if ev.Type == want {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for event %d", want)
			return Event{}
		}
	}
}

func TestService_Refresh(t *testing.T) {
	t.Run("Should replace records on success", func(t *testing.T) {
		src := newGatedSource()
		src.results["alice"] = []models.UsageRecord{{Date: "2024-01-15", ModelID: "m"}}
		svc := NewService(src, 0)
		defer svc.Close()

		svc.Refresh("alice")
		assert.True(t, svc.Snapshot().Loading)
		src.release("alice")

		ev := waitEvent(t, svc, EventUpdated)
		assert.Equal(t, "alice", ev.UserID)
		assert.Len(t, ev.Records, 1)

		snap := svc.Snapshot()
		assert.False(t, snap.Loading)
		assert.NoError(t, snap.Err)
		assert.Len(t, snap.Records, 1)
		assert.False(t, snap.UpdatedAt.IsZero())
	})

	t.Run("Should clear records on failure", func(t *testing.T) {
		src := newGatedSource()
		src.results["alice"] = []models.UsageRecord{{Date: "2024-01-15"}}
		svc := NewService(src, 0)
		defer svc.Close()

		svc.Refresh("alice")
		src.release("alice")
		waitEvent(t, svc, EventUpdated)

		boom := errors.New("HTTP 500")
		src.mu.Lock()
		src.errs["bob"] = boom
		src.mu.Unlock()
		svc.Refresh("bob")
		src.release("bob")

		ev := waitEvent(t, svc, EventError)
		assert.ErrorIs(t, ev.Error, boom)

		snap := svc.Snapshot()
		assert.ErrorIs(t, snap.Err, boom)
		assert.NotNil(t, snap.Records)
		assert.Empty(t, snap.Records)
	})

	t.Run("Should reject an empty user id", func(t *testing.T) {
		svc := NewService(newGatedSource(), 0)
		defer svc.Close()

		svc.Refresh("")
		ev := waitEvent(t, svc, EventError)
		assert.ErrorIs(t, ev.Error, ErrNoUserID)
		assert.ErrorIs(t, svc.Snapshot().Err, ErrNoUserID)
	})

	t.Run("Should let the latest request win", func(t *testing.T) {
		src := newGatedSource()
		src.ignoreCancel["slow"] = true
		src.results["slow"] = []models.UsageRecord{{Date: "2024-01-01", ModelID: "stale"}}
		src.results["fast"] = []models.UsageRecord{{Date: "2024-01-02", ModelID: "fresh"}}
		svc := NewService(src, 0)

		svc.Refresh("slow")
		svc.Refresh("fast")
		src.release("fast")
		waitEvent(t, svc, EventUpdated)

		// The superseded fetch completes after the newer one
		src.release("slow")
		require.NoError(t, svc.Close())

		snap := svc.Snapshot()
		assert.Equal(t, "fast", snap.UserID)
		require.Len(t, snap.Records, 1)
		assert.Equal(t, "fresh", snap.Records[0].ModelID)
	})

	t.Run("Should cancel the in-flight fetch", func(t *testing.T) {
		src := newGatedSource()
		svc := NewService(src, 0)
		defer svc.Close()

		svc.Refresh("first")
		svc.Refresh("second")
		src.release("second")
		waitEvent(t, svc, EventUpdated)

		// No error event is emitted for the cancelled fetch
		select {
		case ev := <-svc.Events():
			assert.NotEqual(t, EventError, ev.Type)
		case <-time.After(100 * time.Millisecond):
		}
	})
}

func TestService_SnapshotIsCopy(t *testing.T) {
	src := newGatedSource()
	src.results["alice"] = []models.UsageRecord{{Date: "2024-01-15", ModelID: "m"}}
	svc := NewService(src, 0)
	defer svc.Close()

	svc.Refresh("alice")
	src.release("alice")
	waitEvent(t, svc, EventUpdated)

	snap := svc.Snapshot()
	snap.Records[0].ModelID = "mutated"
	assert.Equal(t, "m", svc.Snapshot().Records[0].ModelID)
}

func TestService_StartPolls(t *testing.T) {
	src := newGatedSource()
	src.release("alice")
	svc := NewService(src, 20*time.Millisecond)
	defer svc.Close()

	svc.Start("alice")
	waitEvent(t, svc, EventUpdated)
	waitEvent(t, svc, EventUpdated)

	src.mu.Lock()
	calls := src.calls
	src.mu.Unlock()
	assert.GreaterOrEqual(t, calls, 2)
}

func TestService_CloseIsIdempotent(t *testing.T) {
	svc := NewService(newGatedSource(), time.Second)
	svc.Start("alice")
	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())

	// Refresh after close is a no-op
	svc.Refresh("alice")
	assert.Equal(t, "alice", svc.Snapshot().UserID)
}
