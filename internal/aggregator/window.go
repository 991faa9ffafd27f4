package aggregator

import (
	"strings"
	"time"

	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

// dateLayouts are tried in order when parsing record dates. Layouts without a
// zone are interpreted in the aggregation location.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// startOfDay returns local midnight of t's calendar day in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseDay parses a record date into its calendar day in loc.
func ParseDay(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range dateLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, loc)
		}
		if err == nil {
			return startOfDay(t, loc), true
		}
	}
	return time.Time{}, false
}

// DateKey formats a calendar day as YYYY-MM-DD.
func DateKey(day time.Time) string {
	return day.Format("2006-01-02")
}

// CurrentWindow returns the inclusive window of days calendar days ending on
// the day containing now.
func CurrentWindow(now time.Time, days int, loc *time.Location) models.Window {
	if loc == nil {
		loc = time.Local
	}
	if days < 1 {
		days = 1
	}
	end := startOfDay(now, loc)
	return models.Window{
		Start: end.AddDate(0, 0, -(days - 1)),
		End:   end,
	}
}

// PreviousWindow returns the window of the same length ending the day before
// cur starts.
func PreviousWindow(cur models.Window) models.Window {
	days := max(cur.Days(), 1)
	end := cur.Start.AddDate(0, 0, -1)
	return models.Window{
		Start: end.AddDate(0, 0, -(days - 1)),
		End:   end,
	}
}
