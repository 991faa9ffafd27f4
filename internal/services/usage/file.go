package usage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/logger"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

const debounceInterval = 100 * time.Millisecond

// FileSource reads usage records from a local JSON array file. The user id
// is ignored; the file is assumed to belong to the configured user.
type FileSource struct {
	path string
}

// NewFileSource creates a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name implements Source.
func (f *FileSource) Name() string { return SourceFile }

// Path returns the watched file.
func (f *FileSource) Path() string { return f.path }

// Fetch reads and decodes the file.
func (f *FileSource) Fetch(ctx context.Context, _ string) ([]models.UsageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage file: %w", err)
	}

	records, err := aggregator.DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode usage file %s: %w", f.path, err)
	}
	return records, nil
}

// Watch calls onChange whenever the file is written or created, debouncing
// bursts of events. It returns once the watcher is running; the watcher
// stops when ctx is done.
func (f *FileSource) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory to catch editors that replace the file
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return fmt.Errorf("failed to watch %s: %w", f.path, err)
	}

	go f.watchLoop(ctx, watcher, onChange)
	return nil
}

func (f *FileSource) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onChange func()) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
		_ = watcher.Close()
	}()

	base := filepath.Base(f.path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceInterval, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("usage file watcher error", "path", f.path, "error", err)

		case <-ctx.Done():
			return
		}
	}
}
