package info

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/billing-dashboard-tui/internal/app"
	"github.com/j-veylop/billing-dashboard-tui/internal/config"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/version"
)

func testConfig() *config.Config {
	return &config.Config{
		APIBaseURL:      "https://billing.example.com",
		UserID:          "alice",
		DatabasePath:    "/tmp/bdt.db",
		RefreshInterval: 5 * time.Minute,
		Timezone:        "UTC",
		MonthlyBudget:   25,
		ExportDir:       "/tmp/exports",
	}
}

func TestNew(t *testing.T) {
	m := New(app.NewState(models.DefaultPeriod), testConfig())
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_Init(t *testing.T) {
	m := New(app.NewState(models.DefaultPeriod), testConfig())
	if cmd := m.Init(); cmd != nil {
		t.Error("Init should return nil")
	}
}

func TestModel_RefreshKey(t *testing.T) {
	m := New(app.NewState(models.DefaultPeriod), testConfig())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if cmd == nil {
		t.Fatal("refresh key returned no command")
	}
	if _, ok := cmd().(app.RefreshMsg); !ok {
		t.Error("refresh key should produce RefreshMsg")
	}
}

func TestModel_UpdateIgnoresOtherMessages(t *testing.T) {
	m := New(app.NewState(models.DefaultPeriod), testConfig())
	updated, cmd := m.Update(nil)
	if updated == nil {
		t.Error("Update returned nil model")
	}
	if cmd != nil {
		t.Error("non-key message should not produce a command")
	}
}

func TestModel_View(t *testing.T) {
	state := app.NewState(models.DefaultPeriod)
	state.SetUsage("alice", "api", nil, time.Now())
	state.SetFetches([]models.FetchLog{
		{Source: "api", FetchedAt: time.Now(), RecordCount: 1200},
		{Source: "api", FetchedAt: time.Now().Add(-time.Hour), Error: "usage API returned 500"},
	})

	m := New(state, testConfig())
	m.SetSize(100, 60)

	view := m.View()
	for _, want := range []string{
		"alice",
		"https://billing.example.com",
		"every 5m0s",
		"$25.000000",
		"Recent Fetches",
		"1,200 records",
		"usage API returned 500",
		version.AppName,
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestModel_ViewWithoutConfig(t *testing.T) {
	m := New(app.NewState(models.DefaultPeriod), nil)
	m.SetSize(100, 40)

	view := m.View()
	if !strings.Contains(view, "Configuration not loaded") {
		t.Error("View should note missing configuration")
	}
	if !strings.Contains(view, "No fetches recorded yet") {
		t.Error("View should note empty fetch history")
	}
}

func TestSourceLabel(t *testing.T) {
	state := app.NewState(models.DefaultPeriod)
	cfg := testConfig()
	m := New(state, cfg)

	if got := m.sourceLabel(); got != "api" {
		t.Errorf("sourceLabel() = %q, want api", got)
	}

	cfg.UsageFile = "usage.json"
	if got := m.sourceLabel(); got != "file" {
		t.Errorf("sourceLabel() = %q, want file", got)
	}

	cfg.Offline = true
	if got := m.sourceLabel(); got != "cache (offline)" {
		t.Errorf("sourceLabel() = %q, want cache (offline)", got)
	}

	state.SetFetchError("alice", "cache", errors.New("boom"))
	if got := m.sourceLabel(); got != "cache" {
		t.Errorf("sourceLabel() = %q, want state source", got)
	}
}

func TestLabels(t *testing.T) {
	if got := budgetLabel(0); got != "disabled" {
		t.Errorf("budgetLabel(0) = %q", got)
	}
	if got := refreshLabel(&config.Config{}); got != "manual" {
		t.Errorf("refreshLabel(zero) = %q", got)
	}
	if got := orNotSet(""); got != notSet {
		t.Errorf("orNotSet(\"\") = %q", got)
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(models.DefaultPeriod), testConfig())
	if len(m.ShortHelp()) != 1 {
		t.Error("ShortHelp should list refresh")
	}
	if len(m.FullHelp()) != 2 {
		t.Error("FullHelp should have two groups")
	}
}
