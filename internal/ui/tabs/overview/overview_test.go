package overview

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/app"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func loadedState() *app.State {
	today := time.Now().Format("2006-01-02")
	state := app.NewState(models.Period7Days)
	state.SetUsage("alice", "api", []models.UsageRecord{
		{Date: today, ModelID: "gpt-4o", Provider: "openai", TotalTokens: 1200, TotalCost: 0.012, RequestCount: 3},
		{Date: today, ModelID: "claude-3", Provider: "anthropic", TotalTokens: 800, TotalCost: 0.02, RequestCount: 1},
	}, time.Now())
	state.SetBudget(models.BudgetStatus{Limit: 100, Spent: 85, Percent: 85, Level: models.BudgetWarning,
		Month: time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)})
	return state
}

func TestNew(t *testing.T) {
	m := New(app.NewState(models.DefaultPeriod), nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.agg == nil {
		t.Error("nil aggregator should be replaced by a default")
	}
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewState(models.DefaultPeriod), aggregator.New())
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_Update(t *testing.T) {
	m := New(app.NewState(models.DefaultPeriod), nil)
	updated, _ := m.Update(nil)
	if updated == nil {
		t.Error("Update returned nil model")
	}
}

func TestModel_ViewLoading(t *testing.T) {
	m := New(app.NewState(models.DefaultPeriod), nil)
	m.SetSize(80, 24)
	if !strings.Contains(m.View(), "Loading usage") {
		t.Error("View should show the spinner before the first load")
	}
}

func TestModel_View(t *testing.T) {
	m := New(loadedState(), nil)
	m.SetSize(140, 80)

	view := m.View()
	for _, want := range []string{
		"Usage Overview",
		"7 Days",
		"All models",
		"Total Token Usage",
		"Total Cost",
		"Total Requests",
		"Avg Cost / Request",
		"Monthly Budget",
		"Daily Tokens (line)",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestModel_ViewEmpty(t *testing.T) {
	state := app.NewState(models.DefaultPeriod)
	state.SetUsage("alice", "api", nil, time.Now())
	m := New(state, nil)
	m.SetSize(120, 60)

	view := m.View()
	if !strings.Contains(view, "No usage data") {
		t.Error("View should show the empty chart placeholder")
	}
	if !strings.Contains(view, "No monthly budget") {
		t.Error("View should show that no budget is configured")
	}
}

func TestModel_ViewFetchError(t *testing.T) {
	state := app.NewState(models.DefaultPeriod)
	state.SetFetchError("alice", "api", errors.New("unknown user"))
	m := New(state, nil)
	m.SetSize(120, 60)

	if !strings.Contains(m.View(), "unknown user") {
		t.Error("View should show the fetch error")
	}
}

func TestModel_KeyBindings(t *testing.T) {
	state := loadedState()
	m := New(state, nil)
	m.SetSize(120, 60)

	m.Update(runeKey('p'))
	if state.Period() != models.Period30Days {
		t.Errorf("period = %s, want 30d", state.Period())
	}

	m.Update(runeKey('m'))
	if state.ModelFilter() != "gpt-4o" {
		t.Errorf("filter = %s, want gpt-4o", state.ModelFilter())
	}
	if !strings.Contains(m.View(), "Model: gpt-4o") {
		t.Error("header should show the model filter")
	}

	m.Update(runeKey('v'))
	if state.ChartMetric() != models.ChartCost {
		t.Errorf("metric = %v, want cost", state.ChartMetric())
	}

	m.Update(runeKey('c'))
	if state.ChartStyle() != models.ChartBar {
		t.Errorf("style = %v, want bar", state.ChartStyle())
	}
	if !strings.Contains(m.View(), "Daily Cost (bar)") {
		t.Error("chart title should follow metric and style")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
}

func TestModel_BudgetAnimation(t *testing.T) {
	state := loadedState()
	m := New(state, nil)

	_, cmd := m.Update(nil)
	if cmd == nil {
		t.Fatal("a new budget target should start the animation")
	}
	if !m.animating {
		t.Error("model should be animating")
	}

	start := m.budgetAnim.StartTime
	m.Update(animationTickMsg(start.Add(500 * time.Millisecond)))
	mid := m.budgetAnim.CurrentPercent
	if mid <= 0 || mid >= 85 {
		t.Errorf("mid animation percent = %v, want between 0 and 85", mid)
	}

	m.Update(animationTickMsg(start.Add(2 * time.Second)))
	if m.budgetAnim.CurrentPercent != 85 {
		t.Errorf("final percent = %v, want 85", m.budgetAnim.CurrentPercent)
	}
	if m.animating {
		t.Error("animation should stop at the target")
	}
}

func TestAnimationState(t *testing.T) {
	now := time.Now()
	a := AnimationState{}
	if a.retarget(0, now) {
		t.Error("retargeting to the current value should not animate")
	}
	if !a.retarget(50, now) {
		t.Error("new target should animate")
	}
	if !a.step(now.Add(750 * time.Millisecond)) {
		t.Error("animation should still run halfway")
	}
	if a.step(now.Add(2 * time.Second)) {
		t.Error("animation should finish")
	}
	if a.CurrentPercent != 50 {
		t.Errorf("CurrentPercent = %v, want 50", a.CurrentPercent)
	}
}

func TestModel_SetSize(t *testing.T) {
	m := New(app.NewState(models.DefaultPeriod), nil)
	m.SetSize(100, 50)
	if m.width != 100 || m.height != 50 {
		t.Errorf("size = %dx%d", m.width, m.height)
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(models.DefaultPeriod), nil)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}

func TestRenderProjection(t *testing.T) {
	status := models.BudgetStatus{Limit: 100, Spent: 85, Percent: 85}
	if got := renderProjection(status); got != "" {
		t.Errorf("unknown projection should render nothing, got %q", got)
	}

	status.Projection = models.BudgetProjection{
		Projected:   120,
		Status:      models.ProjectionWarning,
		Confidence:  "high",
		VsLastMonth: "Similar to last month",
		WillExceed:  true,
		ExceedsOn:   time.Date(2024, 3, 23, 0, 0, 0, 0, time.UTC),
	}
	got := renderProjection(status)
	for _, want := range []string{"$120.000000", "high confidence", "Similar to last month", "Mar 23"} {
		if !strings.Contains(got, want) {
			t.Errorf("renderProjection missing %q in %q", want, got)
		}
	}

	status.Limit = 0
	if got := renderProjection(status); got != "" {
		t.Error("disabled budget should render nothing")
	}
}
