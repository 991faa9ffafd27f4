package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

func TestModelOptions(t *testing.T) {
	records := []models.UsageRecord{
		{ModelID: "gpt-4o", Provider: "openai"},
		{ModelID: "claude-3"},
		{ModelID: "gpt-4o", Provider: "azure"},
		{ModelID: ""},
		{ModelID: "claude-3", Provider: "anthropic"},
	}

	got := ModelOptions(records)

	assert.Equal(t, []models.ModelOption{
		{ModelID: "gpt-4o", Provider: "openai"},
		{ModelID: "claude-3", Provider: models.UnknownProvider},
	}, got)
}

func TestModelOptions_Empty(t *testing.T) {
	got := ModelOptions(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestResolveFilter(t *testing.T) {
	opts := []models.ModelOption{{ModelID: "a"}, {ModelID: "b"}}

	assert.Equal(t, "a", ResolveFilter(opts, "a"))
	assert.Equal(t, models.FilterAll, ResolveFilter(opts, "gone"))
	assert.Equal(t, models.FilterAll, ResolveFilter(opts, ""))
	assert.Equal(t, models.FilterAll, ResolveFilter(nil, "a"))
}

func TestNextFilter(t *testing.T) {
	opts := []models.ModelOption{{ModelID: "a"}, {ModelID: "b"}}

	f := models.FilterAll
	var seen []string
	for n := 0; n < 3; n++ {
		f = NextFilter(opts, f)
		seen = append(seen, f)
	}
	assert.Equal(t, []string{"a", "b", models.FilterAll}, seen)
	assert.Equal(t, models.FilterAll, NextFilter(nil, "a"))
	assert.Equal(t, "a", NextFilter(opts, "stale"))
}
