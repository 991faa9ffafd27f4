package usage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
)

func TestFileSource_Fetch(t *testing.T) {
	t.Run("Should read records from the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "usage.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"date":"2024-01-15","model_id":"m","total_tokens":10}]`), 0o600))

		src := NewFileSource(path)
		records, err := src.Fetch(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, int64(10), records[0].TotalTokens)
		assert.Equal(t, SourceFile, src.Name())
		assert.Equal(t, path, src.Path())
	})

	t.Run("Should fail on a missing file", func(t *testing.T) {
		_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("Should fail on a non-array document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "usage.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"date":"2024-01-15"}`), 0o600))

		_, err := NewFileSource(path).Fetch(context.Background(), "")
		assert.ErrorIs(t, err, aggregator.ErrNotArray)
	})

	t.Run("Should honour a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewFileSource("unused").Fetch(ctx, "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFileSource_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "usage.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 10)
	src := NewFileSource(path)
	require.NoError(t, src.Watch(ctx, func() { changed <- struct{}{} }))

	// Unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`[]`), 0o600))
	select {
	case <-changed:
		t.Fatal("onChange fired for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}

	for n := 0; n < 3; n++ {
		require.NoError(t, os.WriteFile(path, []byte(`[{"date":"2024-01-15"}]`), 0o600))
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("onChange was not called after writing the file")
	}
}

func TestFileSource_WatchMissingDir(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope", "usage.json"))
	err := src.Watch(context.Background(), func() {})
	assert.Error(t, err)
}
