// Package models defines data structures and domain types.
package models

import "fmt"

// Period is a reporting period key. The string values are part of the
// external contract and must not change.
type Period string

const (
	// Period7Days covers the last 7 days including today.
	Period7Days Period = "7d"
	// Period30Days covers the last 30 days including today.
	Period30Days Period = "30d"
	// Period90Days covers the last 90 days including today.
	Period90Days Period = "90d"
	// Period1Year covers the last 365 days including today.
	Period1Year Period = "1y"
)

// DefaultPeriod is used when no period is configured.
const DefaultPeriod = Period30Days

// Periods returns all reporting periods in display order.
func Periods() []Period {
	return []Period{Period7Days, Period30Days, Period90Days, Period1Year}
}

// PeriodDays maps each period key to its length in days.
var PeriodDays = map[Period]int{
	Period7Days:  7,
	Period30Days: 30,
	Period90Days: 90,
	Period1Year:  365,
}

// ParsePeriod validates a period key.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if _, ok := PeriodDays[p]; !ok {
		return "", fmt.Errorf("unknown period %q (want one of 7d, 30d, 90d, 1y)", s)
	}
	return p, nil
}

// Days returns the number of days in the period. Unknown periods fall back to 30.
func (p Period) Days() int {
	if d, ok := PeriodDays[p]; ok {
		return d
	}
	return 30
}

// Label returns the display name for a period.
func (p Period) Label() string {
	switch p {
	case Period7Days:
		return "7 Days"
	case Period30Days:
		return "30 Days"
	case Period90Days:
		return "90 Days"
	case Period1Year:
		return "1 Year"
	default:
		return "Unknown"
	}
}

// String returns the period key.
func (p Period) String() string {
	return string(p)
}

// Next cycles to the next period.
func (p Period) Next() Period {
	all := Periods()
	for i, candidate := range all {
		if candidate == p {
			return all[(i+1)%len(all)]
		}
	}
	return DefaultPeriod
}

// ChartMetric selects which bucket value the chart plots.
type ChartMetric int

const (
	// ChartTokens plots token usage.
	ChartTokens ChartMetric = iota
	// ChartCost plots cost.
	ChartCost
	// ChartRequests plots request counts.
	ChartRequests
)

// String returns the display name for a chart metric.
func (c ChartMetric) String() string {
	switch c {
	case ChartTokens:
		return "Tokens"
	case ChartCost:
		return "Cost"
	case ChartRequests:
		return "Requests"
	default:
		return "Unknown"
	}
}

// Next cycles to the next chart metric.
func (c ChartMetric) Next() ChartMetric {
	return (c + 1) % 3
}

// ChartStyle selects how the chart is drawn.
type ChartStyle int

const (
	// ChartLine draws a line chart.
	ChartLine ChartStyle = iota
	// ChartBar draws a bar chart.
	ChartBar
)

// String returns the display name for a chart style.
func (c ChartStyle) String() string {
	if c == ChartBar {
		return "Bar"
	}
	return "Line"
}

// Next toggles between line and bar.
func (c ChartStyle) Next() ChartStyle {
	return (c + 1) % 2
}
