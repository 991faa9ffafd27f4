// Package budget tracks month-to-date spend against a monthly limit.
package budget

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

// Thresholds are the alert levels in percent of the limit, ascending.
var Thresholds = []float64{models.BudgetWarningPercent, models.BudgetCriticalPercent}

// Evaluate sums cost across all models from the first of the current month
// up to and including today. Records dated in the future are ignored.
func Evaluate(records []models.UsageRecord, limit float64, now time.Time, loc *time.Location) models.BudgetStatus {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	month := models.Window{Start: monthStart, End: today}
	lastMonth := models.Window{Start: monthStart.AddDate(0, -1, 0), End: monthStart.AddDate(0, 0, -1)}

	spent, lastSpent := decimal.Zero, decimal.Zero
	for _, rec := range records {
		day, ok := aggregator.ParseDay(rec.Date, loc)
		if !ok || rec.TotalCost <= 0 {
			continue
		}
		cost := decimal.NewFromFloat(rec.TotalCost)
		switch {
		case month.Contains(day):
			spent = spent.Add(cost)
		case lastMonth.Contains(day):
			lastSpent = lastSpent.Add(cost)
		}
	}

	status := models.BudgetStatus{
		Month: monthStart,
		Limit: limit,
		Spent: spent.InexactFloat64(),
	}
	if limit > 0 {
		status.Percent = spent.Div(decimal.NewFromFloat(limit)).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	status.Level = levelFor(status)
	status.Projection = project(status.Spent, lastSpent.InexactFloat64(), limit, today)
	return status
}

func levelFor(s models.BudgetStatus) models.BudgetLevel {
	if !s.Enabled() {
		return models.BudgetOK
	}
	switch {
	case s.Percent >= models.BudgetCriticalPercent:
		return models.BudgetCritical
	case s.Percent >= models.BudgetWarningPercent:
		return models.BudgetWarning
	default:
		return models.BudgetOK
	}
}

// Tracker remembers which thresholds have already fired this month.
type Tracker struct {
	month   time.Time
	crossed map[float64]bool
	mu      sync.Mutex
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{crossed: make(map[float64]bool)}
}

// Observe returns the thresholds newly crossed upward by status since the
// last observation. A new month resets the tracker. Dropping back below a
// threshold re-arms it.
func (t *Tracker) Observe(status models.BudgetStatus) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !status.Month.Equal(t.month) {
		t.month = status.Month
		clear(t.crossed)
	}
	if !status.Enabled() {
		return nil
	}

	var fired []float64
	for _, th := range Thresholds {
		above := status.Percent >= th
		switch {
		case above && !t.crossed[th]:
			t.crossed[th] = true
			fired = append(fired, th)
		case !above:
			t.crossed[th] = false
		}
	}
	return fired
}

// Reset forgets all crossed thresholds.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.month = time.Time{}
	clear(t.crossed)
}
