package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

func TestEvaluate_Projection(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	records := []models.UsageRecord{
		{Date: "2024-03-01", ModelID: "a", TotalCost: 400},
		{Date: "2024-03-15", ModelID: "b", TotalCost: 450},
		{Date: "2024-02-29", ModelID: "a", TotalCost: 1000},
		{Date: "2024-01-31", ModelID: "a", TotalCost: 9999},
	}

	t.Run("Should forecast crossing the limit within days", func(t *testing.T) {
		p := Evaluate(records, 1000, now, time.UTC).Projection
		assert.InDelta(t, 850.0/15, p.DailyRate, 1e-9)
		assert.InDelta(t, 850.0/15*31, p.Projected, 1e-6)
		assert.True(t, p.WillExceed)
		assert.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), p.ExceedsOn)
		assert.Equal(t, models.ProjectionCritical, p.Status)
		assert.Equal(t, "high", p.Confidence)
		assert.Equal(t, "64% higher than last month", p.VsLastMonth)
	})

	t.Run("Should be safe when the limit is out of reach", func(t *testing.T) {
		p := Evaluate(records, 5000, now, time.UTC).Projection
		assert.False(t, p.WillExceed)
		assert.True(t, p.ExceedsOn.IsZero())
		assert.Equal(t, models.ProjectionSafe, p.Status)
	})

	t.Run("Should warn when the limit falls later in the month", func(t *testing.T) {
		p := Evaluate(records, 1300, now, time.UTC).Projection
		assert.True(t, p.WillExceed)
		assert.Equal(t, time.Date(2024, 3, 23, 0, 0, 0, 0, time.UTC), p.ExceedsOn)
		assert.Equal(t, models.ProjectionWarning, p.Status)
	})

	t.Run("Should mark an exhausted budget as exceeded today", func(t *testing.T) {
		p := Evaluate(records, 800, now, time.UTC).Projection
		assert.True(t, p.WillExceed)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), p.ExceedsOn)
		assert.Equal(t, models.ProjectionCritical, p.Status)
	})

	t.Run("Should stay unknown without a limit or spend", func(t *testing.T) {
		assert.Equal(t, models.ProjectionUnknown, Evaluate(records, 0, now, time.UTC).Projection.Status)
		assert.Equal(t, models.ProjectionUnknown, Evaluate(nil, 1000, now, time.UTC).Projection.Status)
	})
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, "low", confidence(3))
	assert.Equal(t, "medium", confidence(7))
	assert.Equal(t, "high", confidence(20))
}

func TestCompareRates(t *testing.T) {
	tests := []struct {
		want             string
		current, against float64
	}{
		{"No prior data", 10, 0},
		{"Similar to last month", 10.5, 10},
		{"50% higher than last month", 15, 10},
		{"50% lower than last month", 5, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compareRates(tt.current, tt.against))
	}
}
