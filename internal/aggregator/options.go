package aggregator

import "github.com/j-veylop/billing-dashboard-tui/internal/models"

// ModelOptions lists each distinct model once, in first-seen order. The
// first provider seen for a model wins.
func ModelOptions(records []models.UsageRecord) []models.ModelOption {
	seen := make(map[string]struct{})
	options := make([]models.ModelOption, 0)
	for _, rec := range records {
		if rec.ModelID == "" {
			continue
		}
		if _, ok := seen[rec.ModelID]; ok {
			continue
		}
		seen[rec.ModelID] = struct{}{}

		provider := rec.Provider
		if provider == "" {
			provider = models.UnknownProvider
		}
		options = append(options, models.ModelOption{ModelID: rec.ModelID, Provider: provider})
	}
	return options
}

// ResolveFilter returns filter if it names one of options, otherwise "all".
func ResolveFilter(options []models.ModelOption, filter string) string {
	if filter == "" || filter == models.FilterAll {
		return models.FilterAll
	}
	for _, opt := range options {
		if opt.ModelID == filter {
			return filter
		}
	}
	return models.FilterAll
}

// NextFilter cycles "all" through each option and back to "all".
func NextFilter(options []models.ModelOption, filter string) string {
	filter = ResolveFilter(options, filter)
	if len(options) == 0 {
		return models.FilterAll
	}
	if filter == models.FilterAll {
		return options[0].ModelID
	}
	for i, opt := range options {
		if opt.ModelID == filter {
			if i+1 < len(options) {
				return options[i+1].ModelID
			}
			return models.FilterAll
		}
	}
	return models.FilterAll
}
