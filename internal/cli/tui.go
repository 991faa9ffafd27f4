package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/billing-dashboard-tui/internal/app"
	"github.com/j-veylop/billing-dashboard-tui/internal/logger"
	"github.com/j-veylop/billing-dashboard-tui/internal/services"
	"github.com/j-veylop/billing-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/billing-dashboard-tui/internal/ui/tabs/invoices"
	"github.com/j-veylop/billing-dashboard-tui/internal/ui/tabs/overview"
)

// runTUI starts the interactive dashboard and blocks until it exits.
func runTUI(opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	closer, err := logger.Init(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(mgr)
	state := model.GetState()
	if opts.model != "" {
		state.SetModelFilter(opts.model)
	}

	agg := model.GetAggregator()
	model.SetTabs([]app.Tab{
		overview.New(state, agg),
		invoices.New(state, agg),
		info.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
