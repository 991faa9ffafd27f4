package budget

import (
	"fmt"
	"math"
	"time"

	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

const (
	lowConfDays  = 7
	medConfDays  = 15
	criticalDays = 3
)

// project extrapolates month-to-date spend to the end of today's month.
// The limit is compared against cumulative spend at the current daily rate.
func project(spent, lastMonthSpent, limit float64, today time.Time) models.BudgetProjection {
	elapsed := today.Day()
	total := daysIn(today)

	proj := models.BudgetProjection{
		Status:     models.ProjectionUnknown,
		Confidence: confidence(elapsed),
	}

	rate := spent / float64(elapsed)
	proj.DailyRate = rate
	proj.Projected = rate * float64(total)

	prev := today.AddDate(0, 0, -elapsed)
	proj.VsLastMonth = compareRates(rate, lastMonthSpent/float64(daysIn(prev)))

	if limit <= 0 || rate <= 0 {
		return proj
	}

	if spent >= limit {
		proj.WillExceed = true
		proj.ExceedsOn = today
		proj.Status = models.ProjectionCritical
		return proj
	}

	daysLeft := int(math.Ceil((limit - spent) / rate))
	if daysLeft > total-elapsed {
		proj.Status = models.ProjectionSafe
		return proj
	}

	proj.WillExceed = true
	proj.ExceedsOn = today.AddDate(0, 0, daysLeft)
	if daysLeft <= criticalDays {
		proj.Status = models.ProjectionCritical
	} else {
		proj.Status = models.ProjectionWarning
	}
	return proj
}

func daysIn(day time.Time) int {
	return time.Date(day.Year(), day.Month()+1, 0, 0, 0, 0, 0, day.Location()).Day()
}

func confidence(days int) string {
	switch {
	case days < lowConfDays:
		return "low"
	case days < medConfDays:
		return "medium"
	default:
		return "high"
	}
}

func compareRates(current, reference float64) string {
	if reference <= 0 {
		return "No prior data"
	}
	diff := ((current - reference) / reference) * 100
	if math.Abs(diff) < 10 {
		return "Similar to last month"
	} else if diff > 0 {
		return fmt.Sprintf("%.0f%% higher than last month", diff)
	}
	return fmt.Sprintf("%.0f%% lower than last month", -diff)
}
