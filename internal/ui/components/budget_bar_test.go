package components

import (
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

func budgetStatus(spent, limit float64) models.BudgetStatus {
	s := models.BudgetStatus{
		Month: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Limit: limit,
		Spent: spent,
	}
	if limit > 0 {
		s.Percent = spent / limit * 100
	}
	return s
}

func TestNewBudgetBar(t *testing.T) {
	bar := NewBudgetBar()
	if bar.Width() != 30 {
		t.Errorf("Width() = %d, want 30", bar.Width())
	}
	bar.SetWidth(20)
	if bar.Width() != 20 {
		t.Errorf("Width() = %d, want 20", bar.Width())
	}
}

func TestBudgetBar_View(t *testing.T) {
	bar := NewBudgetBar()
	view := bar.View(budgetStatus(850, 1000), 60)

	for _, want := range []string{"Mar 2024", "85%", "$850.000000", "$150.000000 remaining"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestBudgetBar_ViewOverspent(t *testing.T) {
	bar := NewBudgetBar()
	view := bar.View(budgetStatus(1200, 1000), 60)
	if !strings.Contains(view, "120%") || !strings.Contains(view, "$0.000000 remaining") {
		t.Errorf("overspent view = %q", view)
	}
}

func TestBudgetBar_ViewDisabled(t *testing.T) {
	bar := NewBudgetBar()
	if view := bar.View(budgetStatus(10, 0), 60); !strings.Contains(view, "No monthly budget") {
		t.Errorf("disabled view = %q", view)
	}
}

func TestSimpleBudgetBar(t *testing.T) {
	if s := SimpleBudgetBar(budgetStatus(500, 1000), 30); !strings.Contains(s, "50%") {
		t.Errorf("SimpleBudgetBar = %q", s)
	}
	if SimpleBudgetBar(budgetStatus(5, 0), 30) != "" {
		t.Error("SimpleBudgetBar without a limit should be empty")
	}
}

func TestRenderGradientBar(t *testing.T) {
	if RenderGradientBar(50, 0) != "" {
		t.Error("zero width should render nothing")
	}
	if got := strings.Count(RenderGradientBar(50, 10), "█"); got != 5 {
		t.Errorf("filled = %d, want 5", got)
	}
	if got := strings.Count(RenderGradientBar(250, 10), "█"); got != 10 {
		t.Errorf("overfilled = %d, want 10", got)
	}
}

func TestInterpolateColor(t *testing.T) {
	if got := interpolateColor("#000000", "#ffffff", 0); got != "#000000" {
		t.Errorf("start = %s", got)
	}
	if got := interpolateColor("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("end = %s", got)
	}
	if got := hexToRGB("zz"); got != [3]int{0, 0, 0} {
		t.Errorf("invalid hex = %v", got)
	}
}
