package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/billing-dashboard-tui/internal/export"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/services"
	"github.com/j-veylop/billing-dashboard-tui/internal/services/usage"
)

// stubTab records what the model forwards to it.
type stubTab struct {
	msgs          []tea.Msg
	width, height int
	initCalled    bool
}

func (s *stubTab) Init() tea.Cmd {
	s.initCalled = true
	return nil
}

func (s *stubTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	s.msgs = append(s.msgs, msg)
	return s, nil
}

func (s *stubTab) View() string { return "stub tab content\nline two\nline three\nline four" }

func (s *stubTab) SetSize(width, height int) {
	s.width, s.height = width, height
}

func (s *stubTab) ShortHelp() []key.Binding {
	return []key.Binding{key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stub action"))}
}

func (s *stubTab) FullHelp() [][]key.Binding { return [][]key.Binding{s.ShortHelp()} }

func readyModel() *Model {
	model := NewModel(nil)
	model.ready = true
	model.width = 100
	model.height = 30
	return model
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// notificationFrom runs cmd and feeds a resulting notification back into the model.
func notificationFrom(t *testing.T, model *Model, cmd tea.Cmd) Notification {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	raw := cmd()
	msg, ok := raw.(AddNotificationMsg)
	if !ok {
		t.Fatalf("command produced %T, want AddNotificationMsg", raw)
	}
	model.Update(msg)
	notifs := model.state.GetNotifications()
	return notifs[len(notifs)-1]
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.activeTab != TabOverview {
		t.Error("Default tab should be Overview")
	}
	if len(model.tabs) != 3 {
		t.Errorf("Should have 3 tabs placeholder, got %d", len(model.tabs))
	}
	if model.GetAggregator() == nil {
		t.Error("Aggregator should be initialized")
	}
	if model.state.Period() != models.DefaultPeriod {
		t.Errorf("Period = %s, want default", model.state.Period())
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(nil)
	tab := &stubTab{}
	model.SetTabs([]Tab{tab, nil, nil})

	if model.Init() == nil {
		t.Error("Init returned nil command")
	}
	if !tab.initCalled {
		t.Error("Init should initialize tabs")
	}
	notifs := model.state.GetNotifications()
	if len(notifs) != 1 || notifs[0].Type != NotificationLoading {
		t.Errorf("Init should show a loading notification, got %+v", notifs)
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := NewModel(nil)
	tab := &stubTab{}
	model.SetTabs([]Tab{tab, nil, nil})

	newModel, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	m, ok := newModel.(*Model)
	if !ok {
		t.Fatal("Update returned wrong model type")
	}

	if m.GetWidth() != 100 || m.GetHeight() != 50 {
		t.Errorf("size = %dx%d, want 100x50", m.GetWidth(), m.GetHeight())
	}
	if !m.IsReady() {
		t.Error("Model should be ready after WindowSizeMsg")
	}
	if tab.width != 100 || tab.height != 45 {
		t.Errorf("tab size = %dx%d, want 100x45", tab.width, tab.height)
	}
}

func TestModel_TabSwitching(t *testing.T) {
	model := readyModel()

	model.Update(TabSwitchMsg{Tab: TabInvoices})
	if model.GetActiveTab() != TabInvoices {
		t.Errorf("ActiveTab = %v, want Invoices", model.GetActiveTab())
	}

	model.Update(runeKey('3'))
	if model.GetActiveTab() != TabInfo {
		t.Errorf("ActiveTab = %v, want Info", model.GetActiveTab())
	}

	model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if model.GetActiveTab() != TabOverview {
		t.Errorf("ActiveTab = %v, want Overview after wrap", model.GetActiveTab())
	}

	model.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if model.GetActiveTab() != TabInfo {
		t.Errorf("ActiveTab = %v, want Info after reverse wrap", model.GetActiveTab())
	}

	model.Update(runeKey('1'))
	if model.GetActiveTab() != TabOverview {
		t.Errorf("ActiveTab = %v, want Overview", model.GetActiveTab())
	}
}

func TestModel_ForwardsToActiveTab(t *testing.T) {
	model := readyModel()
	overview, invoices := &stubTab{}, &stubTab{}
	model.SetTabs([]Tab{overview, invoices, &stubTab{}})

	model.Update(runeKey('p'))
	if len(overview.msgs) != 1 {
		t.Errorf("overview got %d msgs, want 1", len(overview.msgs))
	}
	if len(invoices.msgs) != 0 {
		t.Error("inactive tab should not receive messages")
	}
}

func TestModel_QuitKey(t *testing.T) {
	model := readyModel()
	cmd := model.handleKeyMsg(runeKey('q'))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_RefreshWithoutServices(t *testing.T) {
	model := readyModel()
	if cmd := model.handleKeyMsg(runeKey('r')); cmd != nil {
		t.Error("refresh without services should be a no-op")
	}
	if cmds := model.handleRefresh(); len(cmds) != 0 {
		t.Error("RefreshMsg without services should be a no-op")
	}
}

func TestModel_Update_Tick(t *testing.T) {
	model := NewModel(nil)
	_, cmd := model.Update(TickMsg{Time: time.Now()})
	if cmd == nil {
		t.Error("TickMsg should return a command (next tick)")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil)

	view := model.View()
	if !strings.Contains(view, "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	model.ready = true
	model.width = 80
	model.height = 24

	view = model.View()
	for _, name := range []string{"Overview", "Invoices", "Info"} {
		if !strings.Contains(view, name) {
			t.Errorf("View should show %s tab", name)
		}
	}
	if !strings.Contains(view, "not yet implemented") {
		t.Error("View should show placeholder text")
	}

	model.SetTabs([]Tab{&stubTab{}, nil, nil})
	if !strings.Contains(model.View(), "stub tab content") {
		t.Error("View should render the active tab")
	}
}

func TestModel_Help(t *testing.T) {
	model := readyModel()
	model.SetTabs([]Tab{&stubTab{}, nil, nil})

	model.Update(ToggleHelpMsg{})
	if !model.showHelp {
		t.Error("showHelp should be true")
	}

	view := model.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("View should show help modal")
	}
	if !strings.Contains(view, "stub action") {
		t.Error("help should list the active tab's bindings")
	}

	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	if model.showHelp {
		t.Error("Esc should close help")
	}
}

func TestModel_Notifications(t *testing.T) {
	model := readyModel()
	model.SetTabs([]Tab{&stubTab{}, nil, nil})

	model.Update(AddNotificationMsg{Message: "Test Note", Type: NotificationInfo})
	if len(model.state.GetNotifications()) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(model.state.GetNotifications()))
	}
	if !strings.Contains(model.View(), "Test Note") {
		t.Error("View should show notification")
	}

	id := model.state.GetNotifications()[0].ID
	model.Update(RemoveNotificationMsg{ID: id})
	if len(model.state.GetNotifications()) != 0 {
		t.Error("notification should be removed")
	}

	_, cmd := model.Update(AddNotificationMsg{Message: "timed", Type: NotificationInfo, Duration: time.Second})
	if cmd == nil {
		t.Error("timed notification should schedule its removal")
	}
	model.Update(ClearExpiredNotificationsMsg{})
}

func TestModel_LoadingMessages(t *testing.T) {
	model := NewModel(nil)
	model.state.SetLoading("initial", false)

	model.Update(StartLoadingMsg{Resource: "usage"})
	if !model.state.Loading.Usage {
		t.Error("Loading.Usage should be true")
	}

	model.Update(StopLoadingMsg{Resource: "usage"})
	if model.state.Loading.Usage {
		t.Error("Loading.Usage should be false")
	}
	for _, n := range model.state.GetNotifications() {
		if n.Type == NotificationLoading {
			t.Error("loading notification should be cleared")
		}
	}
}

func TestModel_UsageUpdatedEvent(t *testing.T) {
	model := NewModel(nil)
	model.Init()

	budget := models.BudgetStatus{Limit: 100, Spent: 10, Percent: 10}
	model.Update(ServiceEventMsg{Event: services.UsageRefreshingEvent{UserID: "alice", Source: usage.SourceAPI}})
	if !model.state.Loading.Usage {
		t.Error("refreshing event should mark usage as loading")
	}

	model.Update(ServiceEventMsg{Event: services.UsageUpdatedEvent{
		UpdatedAt: time.Now(),
		UserID:    "alice",
		Source:    usage.SourceAPI,
		Records:   sampleUsage(),
		Budget:    budget,
	}})

	if got := len(model.state.GetRecords()); got != 2 {
		t.Errorf("records = %d, want 2", got)
	}
	if model.state.GetBudget() != budget {
		t.Errorf("budget = %+v", model.state.GetBudget())
	}
	if model.state.AnyLoading() {
		t.Errorf("still loading: %v", model.state.GetLoadingResources())
	}
	if len(model.state.GetNotifications()) != 0 {
		t.Error("loading notification should be cleared after the update")
	}
}

func TestModel_UsageErrorEvent(t *testing.T) {
	model := NewModel(nil)
	model.state.SetUsage("alice", "api", sampleUsage(), time.Now())

	apiErr := &usage.APIError{Status: 404, Message: "unknown user"}
	cmd := model.handleServiceEvent(services.ErrorEvent{Service: "usage", Error: apiErr})

	if len(model.state.GetRecords()) != 0 {
		t.Error("records should be cleared on fetch error")
	}
	if !errors.Is(model.state.FetchError(), apiErr) {
		t.Errorf("FetchError = %v", model.state.FetchError())
	}

	n := notificationFrom(t, model, cmd)
	if n.Type != NotificationError || !strings.Contains(n.Message, "unknown user") {
		t.Errorf("notification = %+v", n)
	}
}

func TestModel_OtherServiceErrorEvent(t *testing.T) {
	model := NewModel(nil)
	model.state.SetUsage("alice", "api", sampleUsage(), time.Now())

	cmd := model.handleServiceEvent(services.ErrorEvent{Service: "watcher", Error: errors.New("gone")})
	n := notificationFrom(t, model, cmd)
	if n.Message != "[watcher] gone" {
		t.Errorf("message = %q", n.Message)
	}
	if len(model.state.GetRecords()) != 2 {
		t.Error("non-usage errors should keep records")
	}
}

func TestModel_BudgetAlertEvent(t *testing.T) {
	model := NewModel(nil)

	warn := model.handleServiceEvent(services.BudgetAlertEvent{
		Threshold: 80,
		Status:    models.BudgetStatus{Limit: 100, Spent: 85, Percent: 85, Level: models.BudgetWarning},
	})
	n := notificationFrom(t, model, warn)
	if n.Type != NotificationWarning || !strings.Contains(n.Message, "80%") {
		t.Errorf("warning notification = %+v", n)
	}

	crit := model.handleServiceEvent(services.BudgetAlertEvent{
		Threshold: 95,
		Status:    models.BudgetStatus{Limit: 100, Spent: 96, Percent: 96, Level: models.BudgetCritical},
	})
	n = notificationFrom(t, model, crit)
	if n.Type != NotificationError {
		t.Errorf("critical notification = %+v", n)
	}
}

func TestModel_UsageLoadedMsg(t *testing.T) {
	model := NewModel(nil)

	model.Update(UsageLoadedMsg{UserID: "alice", Source: "file", Records: sampleUsage(), UpdatedAt: time.Now()})
	if model.state.Source() != "file" || len(model.state.GetRecords()) != 2 {
		t.Error("usage should be applied")
	}

	cmds := model.handleUsageLoaded(UsageLoadedMsg{UserID: "alice", Error: usage.ErrNoUserID})
	if len(cmds) != 1 {
		t.Fatalf("cmds = %d, want 1", len(cmds))
	}
	n := notificationFrom(t, model, cmds[0])
	if !strings.Contains(n.Message, "No user configured") {
		t.Errorf("message = %q", n.Message)
	}
}

func TestModel_FetchesLoadedMsg(t *testing.T) {
	model := NewModel(nil)
	model.state.SetLoading("fetches", true)

	model.Update(FetchesLoadedMsg{Error: errors.New("db closed")})
	if model.state.Loading.Fetches {
		t.Error("failed fetch log load should stop loading")
	}

	model.Update(FetchesLoadedMsg{Fetches: []models.FetchLog{{ID: 1}}})
	if len(model.state.GetFetches()) != 1 {
		t.Error("fetches should be stored")
	}
}

func TestModel_Export(t *testing.T) {
	model := NewModel(nil)
	dir := t.TempDir()
	model.SetExporter(export.New(dir))
	model.state.SetUsage("alice", "api", sampleUsage(), time.Now())

	cmds := model.handleExport(ExportMsg{Format: export.FormatCSV})
	if len(cmds) != 2 {
		t.Fatalf("cmds = %d, want 2", len(cmds))
	}

	res, ok := cmds[1]().(ExportResultMsg)
	if !ok {
		t.Fatal("second command should export")
	}
	if res.Error != nil {
		t.Fatalf("export failed: %v", res.Error)
	}

	n := notificationFrom(t, model, model.handleExportResult(res))
	if n.Type != NotificationSuccess || !strings.Contains(n.Message, res.Path) {
		t.Errorf("notification = %+v", n)
	}

	failed := model.handleExportResult(ExportResultMsg{Format: export.FormatPDF, Error: errors.New("disk full")})
	n = notificationFrom(t, model, failed)
	if n.Type != NotificationError || !strings.Contains(n.Message, "disk full") {
		t.Errorf("notification = %+v", n)
	}
}

func TestModel_ExportWithoutData(t *testing.T) {
	model := NewModel(nil)
	model.SetExporter(export.New(t.TempDir()))

	cmds := model.handleExport(ExportMsg{Format: export.FormatCSV})
	if len(cmds) != 1 {
		t.Fatalf("cmds = %d, want 1", len(cmds))
	}
	n := notificationFrom(t, model, cmds[0])
	if n.Type != NotificationWarning {
		t.Errorf("notification = %+v", n)
	}

	// An empty PDF report is still a valid document.
	if got := len(model.handleExport(ExportMsg{Format: export.FormatPDF})); got != 2 {
		t.Errorf("pdf cmds = %d, want 2", got)
	}
}

func TestModel_ErrorMsg(t *testing.T) {
	model := NewModel(nil)
	cmds := model.handleAppMsg(ErrorMsg{Error: errors.New("boom"), Context: "export"})
	n := notificationFrom(t, model, cmds[0])
	if n.Message != "export: boom" {
		t.Errorf("message = %q", n.Message)
	}
}

func TestFetchErrorText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{usage.ErrNoUserID, "No user configured"},
		{&usage.APIError{Status: 500, Message: "HTTP 500"}, "Usage API error (500): HTTP 500"},
		{errors.New("dial tcp: refused"), "Failed to load usage: dial tcp: refused"},
	}
	for _, tt := range tests {
		if got := fetchErrorText(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("fetchErrorText(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestModel_HandleSpinnerTick(t *testing.T) {
	model := NewModel(nil)
	_, cmd := model.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Spinner tick should return command")
	}
}

func TestTabID_String(t *testing.T) {
	tests := []struct {
		want string
		id   TabID
	}{
		{"Overview", TabOverview},
		{"Invoices", TabInvoices},
		{"Info", TabInfo},
		{"Unknown", TabID(999)},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(km.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}

func TestOverlay(t *testing.T) {
	got := overlay("aaaa\nbbbb", "XY", 1, 1)
	if got != "aaaa\nbXYb" {
		t.Errorf("overlay = %q", got)
	}

	got = overlay("short", "top", 4, 2)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("overlay should pad base, got %d lines", len(lines))
	}
	if lines[2] != "    top" {
		t.Errorf("padded line = %q", lines[2])
	}
}

func TestModel_StatusText(t *testing.T) {
	model := readyModel()
	if got := model.statusText(); got != string(models.DefaultPeriod) {
		t.Errorf("statusText() = %q, want period only", got)
	}

	model.state.SetUsage("alice", "api", nil, time.Now())
	model.state.SetBudget(models.BudgetStatus{Limit: 100, Spent: 90, Percent: 90, Level: models.BudgetWarning})

	got := model.statusText()
	for _, want := range []string{"alice", "api", "budget 90%"} {
		if !strings.Contains(got, want) {
			t.Errorf("statusText() = %q, missing %q", got, want)
		}
	}
}
