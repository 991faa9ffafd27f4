// Package models defines data structures and domain types.
package models

import "time"

// FilterAll selects every model.
const FilterAll = "all"

// UnknownProvider is shown for records that carry no provider.
const UnknownProvider = "unknown"

// UsageRecord is one day of usage for one model as delivered by the backend.
// Numeric fields are already coerced; Date is kept raw and parsed during
// aggregation.
type UsageRecord struct {
	Date         string  `json:"date"`
	ModelID      string  `json:"model_id,omitempty"`
	Provider     string  `json:"provider,omitempty"`
	TotalTokens  int64   `json:"total_tokens"`
	TotalCost    float64 `json:"total_cost"`
	RequestCount int64   `json:"request_count"`
}

// ModelOption is one selectable model filter value.
type ModelOption struct {
	ModelID  string `json:"model_id"`
	Provider string `json:"provider"`
}

// Window is an inclusive range of calendar dates. Start and End are local
// midnights in the aggregation location.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the calendar day t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days returns the number of calendar days in the window.
func (w Window) Days() int {
	if w.End.Before(w.Start) {
		return 0
	}
	s := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(w.End.Year(), w.End.Month(), w.End.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

// DayBucket is the per-calendar-day aggregate of one or more records.
type DayBucket struct {
	Date      time.Time `json:"-"`
	Key       string    `json:"date"`
	Tokens    int64     `json:"tokens"`
	Cost      float64   `json:"cost"`
	Requests  int64     `json:"requests"`
	Providers []string  `json:"providers"`
	Models    []string  `json:"models"`
}

// Totals sums tokens, cost and requests over a window.
type Totals struct {
	Tokens   int64   `json:"tokens"`
	Cost     float64 `json:"cost"`
	Requests int64   `json:"requests"`
}

// KPIKind identifies one of the summary metrics.
type KPIKind int

const (
	// KPITokens is total token usage.
	KPITokens KPIKind = iota
	// KPICost is total cost.
	KPICost
	// KPIRequests is total request count.
	KPIRequests
	// KPIAvgCost is average cost per request.
	KPIAvgCost
)

// String returns the title of the KPI.
func (k KPIKind) String() string {
	switch k {
	case KPITokens:
		return "Total Token Usage"
	case KPICost:
		return "Total Cost"
	case KPIRequests:
		return "Total Requests"
	case KPIAvgCost:
		return "Avg Cost / Request"
	default:
		return "Unknown"
	}
}

// KPI is a formatted summary metric with its change against the previous period.
type KPI struct {
	Kind   KPIKind `json:"-"`
	Title  string  `json:"title"`
	Value  string  `json:"value"`
	Change string  `json:"change"`
}

// Trend returns 1 for growth, -1 for decline and 0 when undefined or flat.
func (k KPI) Trend() int {
	if k.Change == "" || k.Change == "-" {
		return 0
	}
	switch k.Change[0] {
	case '+':
		if k.Change == "+0.0%" {
			return 0
		}
		return 1
	case '-':
		return -1
	}
	return 0
}

// ChartPoint is one plotted day.
type ChartPoint struct {
	Label    string    `json:"label"`
	Date     time.Time `json:"date"`
	Tokens   int64     `json:"tokens"`
	Cost     float64   `json:"cost"`
	Requests int64     `json:"requests"`
}

// Value returns the point's value for a chart metric.
func (p ChartPoint) Value(metric ChartMetric) float64 {
	switch metric {
	case ChartCost:
		return p.Cost
	case ChartRequests:
		return float64(p.Requests)
	default:
		return float64(p.Tokens)
	}
}

// InvoiceStatus is the settlement state of a derived invoice.
type InvoiceStatus string

const (
	// InvoicePending marks the most recent day.
	InvoicePending InvoiceStatus = "pending"
	// InvoiceCompleted marks every older day.
	InvoiceCompleted InvoiceStatus = "completed"
)

// Invoice is a read-only display record for one day's aggregated cost.
type Invoice struct {
	ID          string        `json:"id"`
	Date        string        `json:"date"`
	DisplayDate string        `json:"display_date"`
	Amount      string        `json:"amount"`
	Cost        float64       `json:"cost"`
	Status      InvoiceStatus `json:"status"`
	TxRef       string        `json:"tx_ref,omitempty"`
}

// Report is the full aggregation output for one set of view parameters.
type Report struct {
	Period              Period       `json:"period"`
	ModelFilter         string       `json:"model_filter"`
	Window              Window       `json:"window"`
	PreviousWindow      Window       `json:"previous_window"`
	Totals              Totals       `json:"totals"`
	PreviousTotals      Totals       `json:"previous_totals"`
	AverageCost         float64      `json:"average_cost"`
	PreviousAverageCost float64      `json:"previous_average_cost"`
	Buckets             []DayBucket  `json:"-"`
	KPIs                []KPI        `json:"kpis"`
	Chart               []ChartPoint `json:"chart"`
	Invoices            []Invoice    `json:"invoices"`
	GeneratedAt         time.Time    `json:"generated_at"`
}

// HasData reports whether any bucket fell inside the current window.
func (r *Report) HasData() bool {
	return r != nil && len(r.Buckets) > 0
}
