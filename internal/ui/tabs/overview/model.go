// Package overview provides the usage overview tab: KPIs, budget and chart.
package overview

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/app"
	"github.com/j-veylop/billing-dashboard-tui/internal/ui/components"
)

const budgetAnimationDuration = 1.5 // seconds

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the overview tab.
type keyMap struct {
	Period      key.Binding
	ModelFilter key.Binding
	Metric      key.Binding
	ChartStyle  key.Binding
	Refresh     key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the overview tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Period: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "cycle period"),
		),
		ModelFilter: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "cycle model"),
		),
		Metric: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "chart metric"),
		),
		ChartStyle: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "line/bar chart"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// AnimationState tracks an eased transition between two percentages.
type AnimationState struct {
	StartTime      time.Time
	CurrentPercent float64
	TargetPercent  float64
	StartPercent   float64
}

// step advances the animation to now and reports whether it is still running.
func (a *AnimationState) step(now time.Time) bool {
	if a.CurrentPercent == a.TargetPercent {
		return false
	}
	elapsed := now.Sub(a.StartTime).Seconds()
	if elapsed >= budgetAnimationDuration {
		a.CurrentPercent = a.TargetPercent
		return false
	}
	progress := elapsed / budgetAnimationDuration
	ease := 1.0 - (1.0-progress)*(1.0-progress)
	a.CurrentPercent = a.StartPercent + (a.TargetPercent-a.StartPercent)*ease
	return true
}

// retarget starts a new transition when target changed.
func (a *AnimationState) retarget(target float64, now time.Time) bool {
	if target != a.TargetPercent {
		a.StartPercent = a.CurrentPercent
		a.TargetPercent = target
		a.StartTime = now
	}
	return a.CurrentPercent != a.TargetPercent
}

// Model represents the overview tab state.
type Model struct {
	state      *app.State
	agg        *aggregator.Aggregator
	spinner    components.LoadingSpinner
	keys       keyMap
	viewport   viewport.Model
	budgetBar  components.BudgetBar
	budgetAnim AnimationState
	width      int
	height     int
	animating  bool
}

// New creates a new overview model. A nil aggregator uses the local clock and zone.
func New(state *app.State, agg *aggregator.Aggregator) *Model {
	if agg == nil {
		agg = aggregator.New()
	}
	return &Model{
		state:     state,
		agg:       agg,
		spinner:   components.NewSpinner("Loading usage..."),
		budgetBar: components.NewBudgetBar(),
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		m.animating = m.budgetAnim.step(time.Time(msg))
		if m.animating {
			cmds = append(cmds, animationTickCmd())
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if cmd := m.syncBudget(time.Now()); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// syncBudget retargets the budget animation and starts ticking if it is idle.
func (m *Model) syncBudget(now time.Time) tea.Cmd {
	if !m.budgetAnim.retarget(m.state.GetBudget().Percent, now) || m.animating {
		return nil
	}
	m.animating = true
	return animationTickCmd()
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Period):
		m.state.CyclePeriod()
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.ModelFilter):
		m.state.CycleModelFilter()
	case key.Matches(msg, m.keys.Metric):
		m.state.CycleChartMetric()
	case key.Matches(msg, m.keys.ChartStyle):
		m.state.ToggleChartStyle()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// SetSize sets the available size for the overview.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Period,
		m.keys.ModelFilter,
		m.keys.Metric,
		m.keys.ChartStyle,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Period, m.keys.ModelFilter},
		{m.keys.Metric, m.keys.ChartStyle},
		{m.keys.Up, m.keys.Down, m.keys.Refresh},
	}
}
