package models

import "time"

// DefaultMonthlyBudget is the budget limit used when none is configured.
const DefaultMonthlyBudget = 1000.0

// Budget alert thresholds in percent of the monthly limit.
const (
	BudgetWarningPercent  = 80.0
	BudgetCriticalPercent = 95.0
)

// BudgetLevel classifies month-to-date spend against the limit.
type BudgetLevel int

const (
	// BudgetOK is below the warning threshold.
	BudgetOK BudgetLevel = iota
	// BudgetWarning is at or above 80%.
	BudgetWarning
	// BudgetCritical is at or above 95%.
	BudgetCritical
)

// String returns the display name for a budget level.
func (l BudgetLevel) String() string {
	switch l {
	case BudgetOK:
		return "ok"
	case BudgetWarning:
		return "warning"
	case BudgetCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// BudgetStatus is month-to-date spend against the monthly limit.
type BudgetStatus struct {
	Month   time.Time   `json:"month"`
	Limit   float64     `json:"limit"`
	Spent   float64     `json:"spent"`
	Percent float64     `json:"percent"`
	Level   BudgetLevel `json:"level"`

	Projection BudgetProjection `json:"projection"`
}

// Enabled reports whether a limit is set.
func (b BudgetStatus) Enabled() bool {
	return b.Limit > 0
}

// Remaining returns the unspent budget, never below zero.
func (b BudgetStatus) Remaining() float64 {
	if b.Spent >= b.Limit {
		return 0
	}
	return b.Limit - b.Spent
}

// ProjectionStatus indicates how urgent a month-end forecast is.
type ProjectionStatus string

const (
	ProjectionSafe     ProjectionStatus = "SAFE"
	ProjectionWarning  ProjectionStatus = "WARNING"
	ProjectionCritical ProjectionStatus = "CRITICAL"
	ProjectionUnknown  ProjectionStatus = "UNKNOWN"
)

// BudgetProjection forecasts month-end spend from the month-to-date run rate.
type BudgetProjection struct {
	DailyRate   float64          `json:"daily_rate"`
	Projected   float64          `json:"projected"`
	ExceedsOn   time.Time        `json:"exceeds_on,omitzero"` // Day the limit is reached at the current rate
	WillExceed  bool             `json:"will_exceed"`
	Status      ProjectionStatus `json:"status"`
	Confidence  string           `json:"confidence"` // "low", "medium", "high"
	VsLastMonth string           `json:"vs_last_month"`
}

// FetchLog records one completed fetch attempt.
type FetchLog struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Source      string    `json:"source"`
	FetchedAt   time.Time `json:"fetched_at"`
	RecordCount int       `json:"record_count"`
	Error       string    `json:"error,omitempty"`
}

// Succeeded reports whether the fetch returned data.
func (f FetchLog) Succeeded() bool {
	return f.Error == ""
}
