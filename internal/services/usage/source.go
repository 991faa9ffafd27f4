// Package usage fetches raw usage records and keeps the latest result.
package usage

import (
	"context"
	"errors"

	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

// Source names reported in events and the fetch log.
const (
	SourceAPI   = "api"
	SourceFile  = "file"
	SourceCache = "cache"
)

var (
	// ErrNoUserID is returned when a refresh is requested without a user id.
	ErrNoUserID = errors.New("no user id configured")
	// ErrCacheEmpty is returned by CacheSource when nothing is cached for a user.
	ErrCacheEmpty = errors.New("no cached usage for user")
)

// Source delivers the complete set of usage records for a user.
type Source interface {
	Fetch(ctx context.Context, userID string) ([]models.UsageRecord, error)
	Name() string
}
