package usage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

type fakeStore struct {
	records map[string][]models.UsageRecord
	err     error
}

func (f *fakeStore) GetUsageRecords(userID string) ([]models.UsageRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[userID], nil
}

func TestCacheSource_Fetch(t *testing.T) {
	store := &fakeStore{records: map[string][]models.UsageRecord{
		"alice": {{Date: "2024-01-15", ModelID: "m", TotalTokens: 5}},
	}}
	src := NewCacheSource(store)

	t.Run("Should return cached records", func(t *testing.T) {
		records, err := src.Fetch(context.Background(), "alice")
		require.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, SourceCache, src.Name())
	})

	t.Run("Should report an empty cache", func(t *testing.T) {
		_, err := src.Fetch(context.Background(), "bob")
		assert.ErrorIs(t, err, ErrCacheEmpty)
	})

	t.Run("Should require a user id", func(t *testing.T) {
		_, err := src.Fetch(context.Background(), "")
		assert.ErrorIs(t, err, ErrNoUserID)
	})

	t.Run("Should wrap store errors", func(t *testing.T) {
		boom := errors.New("disk I/O error")
		_, err := NewCacheSource(&fakeStore{err: boom}).Fetch(context.Background(), "alice")
		assert.ErrorIs(t, err, boom)
	})
}
