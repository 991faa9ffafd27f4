// Package invoices provides the invoices tab: one derived invoice per day with exports.
package invoices

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/app"
	"github.com/j-veylop/billing-dashboard-tui/internal/export"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/ui/styles"
)

// noReference fills the reference column of pending invoices.
const noReference = "-"

// keyMap defines the key bindings specific to the invoices tab.
type keyMap struct {
	ExportCSV  key.Binding
	ExportPDF  key.Binding
	ExportJSON key.Binding
	Up         key.Binding
	Down       key.Binding
}

// defaultKeyMap returns the default key bindings for the invoices tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ExportCSV: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export csv"),
		),
		ExportPDF: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "export pdf"),
		),
		ExportJSON: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "export json"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// Model represents the invoices tab state.
type Model struct {
	state   *app.State
	agg     *aggregator.Aggregator
	report  *models.Report
	table   table.Model
	keys    keyMap
	width   int
	height  int
	version int
}

// New creates a new invoices model. A nil aggregator uses the local clock and zone.
func New(state *app.State, agg *aggregator.Aggregator) *Model {
	if agg == nil {
		agg = aggregator.New()
	}

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = styles.TableHeaderStyle.Padding(0, 1)
	s.Cell = styles.TableCellStyle
	s.Selected = styles.TableSelectedStyle
	t.SetStyles(s)

	return &Model{
		state:   state,
		agg:     agg,
		table:   t,
		keys:    defaultKeyMap(),
		version: -1,
	}
}

// columns sizes the table to width. The reference column takes the slack.
func columns(width int) []table.Column {
	cols := []table.Column{
		{Title: "Invoice ID", Width: 16},
		{Title: "Date", Width: 14},
		{Title: "Amount", Width: 14},
		{Title: "Status", Width: 11},
		{Title: "Reference", Width: 16},
	}
	used := 0
	for _, c := range cols {
		used += c.Width + 2
	}
	if extra := width - used - 8; extra > 0 {
		cols[len(cols)-1].Width += extra
	}
	return cols
}

// Init initializes the invoices tab.
func (m *Model) Init() tea.Cmd {
	m.sync()
	return nil
}

// Update handles messages for the invoices tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	m.sync()

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.ExportCSV):
		return m, app.ExportCmd(export.FormatCSV)
	case key.Matches(keyMsg, m.keys.ExportPDF):
		return m, app.ExportCmd(export.FormatPDF)
	case key.Matches(keyMsg, m.keys.ExportJSON):
		return m, app.ExportCmd(export.FormatJSON)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// sync rebuilds the rows when the state's report inputs changed.
func (m *Model) sync() {
	if v := m.state.Version(); v == m.version && m.report != nil {
		return
	}
	m.version = m.state.Version()
	m.report = m.state.Report(m.agg)

	rows := make([]table.Row, 0, len(m.report.Invoices))
	for _, inv := range m.report.Invoices {
		ref := inv.TxRef
		if ref == "" {
			ref = noReference
		}
		rows = append(rows, table.Row{inv.ID, inv.DisplayDate, inv.Amount, string(inv.Status), ref})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Selected returns the invoice under the cursor.
func (m *Model) Selected() (models.Invoice, bool) {
	m.sync()
	i := m.table.Cursor()
	if i < 0 || i >= len(m.report.Invoices) {
		return models.Invoice{}, false
	}
	return m.report.Invoices[i], true
}

// SetSize sets the available size for the invoices tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetHeight(max(height-10, 3))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ExportCSV,
		m.keys.ExportPDF,
		m.keys.ExportJSON,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ExportCSV, m.keys.ExportPDF, m.keys.ExportJSON},
		{m.keys.Up, m.keys.Down},
	}
}
