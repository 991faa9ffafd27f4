package usage

import (
	"context"
	"fmt"

	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

// RecordStore is the read side of the offline cache.
type RecordStore interface {
	GetUsageRecords(userID string) ([]models.UsageRecord, error)
}

// CacheSource serves the last successful fetch from the local cache.
type CacheSource struct {
	store RecordStore
}

// NewCacheSource creates a source backed by store.
func NewCacheSource(store RecordStore) *CacheSource {
	return &CacheSource{store: store}
}

// Name implements Source.
func (c *CacheSource) Name() string { return SourceCache }

// Fetch returns the cached records for userID.
func (c *CacheSource) Fetch(ctx context.Context, userID string) ([]models.UsageRecord, error) {
	if userID == "" {
		return nil, ErrNoUserID
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := c.store.GetUsageRecords(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached usage: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w %q", ErrCacheEmpty, userID)
	}
	return records, nil
}
