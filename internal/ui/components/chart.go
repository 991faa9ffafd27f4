// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/ui/styles"
)

// sparkChars are the sparkline levels, low to high.
var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// MetricColor returns the series color for a chart metric.
func MetricColor(metric models.ChartMetric) lipgloss.Color {
	switch metric {
	case models.ChartCost:
		return styles.CostColor
	case models.ChartRequests:
		return styles.RequestsColor
	default:
		return styles.TokensColor
	}
}

func metricSeriesColor(metric models.ChartMetric) asciigraph.AnsiColor {
	switch metric {
	case models.ChartCost:
		return asciigraph.Orange
	case models.ChartRequests:
		return asciigraph.Magenta
	default:
		return asciigraph.DodgerBlue
	}
}

// FormatMetric renders a value the way the KPI cards do for the metric.
func FormatMetric(metric models.ChartMetric, v float64) string {
	switch metric {
	case models.ChartCost:
		return aggregator.FormatCost(v)
	case models.ChartRequests:
		return aggregator.FormatCount(int64(v))
	default:
		return aggregator.FormatTokens(int64(v))
	}
}

// SeriesFor extracts one metric from the chart points.
func SeriesFor(points []models.ChartPoint, metric models.ChartMetric) []float64 {
	series := make([]float64, len(points))
	for i, p := range points {
		series[i] = p.Value(metric)
	}
	return series
}

// RenderUsageChart draws the chart points for a metric in the given style.
func RenderUsageChart(points []models.ChartPoint, metric models.ChartMetric, style models.ChartStyle, width, height int) string {
	if len(points) == 0 {
		return styles.HelpStyle.Render("No usage data for this period")
	}

	series := SeriesFor(points, metric)
	if style == models.ChartBar {
		labels := make([]string, len(points))
		for i, p := range points {
			labels[i] = p.Label
		}
		return RenderBarChart(series, labels, width, func(v float64) string {
			return FormatMetric(metric, v)
		})
	}

	first, last := points[0].Label, points[len(points)-1].Label
	caption := fmt.Sprintf("%s per day (%s - %s)", metric, first, last)
	return RenderLineChart(series, width, height, caption, metricSeriesColor(metric))
}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string, color asciigraph.AnsiColor) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	// A single point renders as a flat line.
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(color),
	)
}

// RenderBarChart creates a simple horizontal bar chart. format renders the
// trailing value of each bar and defaults to one decimal place.
func RenderBarChart(values []float64, labels []string, width int, format func(float64) string) string {
	if len(values) == 0 {
		return ""
	}
	if format == nil {
		format = func(v float64) string { return fmt.Sprintf("%.1f", v) }
	}

	// Find max value for scaling
	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		if len(l) > maxLabelLen {
			maxLabelLen = len(l)
		}
	}

	valueStrs := make([]string, len(values))
	maxValueLen := 0
	for i, v := range values {
		valueStrs[i] = format(v)
		if len(valueStrs[i]) > maxValueLen {
			maxValueLen = len(valueStrs[i])
		}
	}

	barWidth := width - maxLabelLen - maxValueLen - 3
	if barWidth < 10 {
		barWidth = 10
	}

	lines := make([]string, 0, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		barLen := int((v / maxVal) * float64(barWidth))
		if barLen < 0 {
			barLen = 0
		}

		line := fmt.Sprintf("%*s │%s %s", maxLabelLen, label, strings.Repeat("█", barLen), valueStrs[i])
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := float64(len(values)) / float64(width)
	if step < 1 {
		step = 1
	}

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		if normalized >= len(sparkChars) {
			normalized = len(sparkChars) - 1
		}
		if normalized < 0 {
			normalized = 0
		}
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
