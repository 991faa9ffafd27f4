// Package export writes usage reports and invoices to disk.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/version"
)

// ErrUnsupportedFormat is returned for export formats other than csv, json and pdf.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Exporter writes files into a directory.
type Exporter struct {
	dir string
	now func() time.Time
}

// New creates an exporter writing into dir. An empty dir means the working directory.
func New(dir string) *Exporter {
	return &Exporter{dir: dir, now: time.Now}
}

// Dir returns the output directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// Export writes report in the given format and returns the absolute path.
func (e *Exporter) Export(report *models.Report, format Format) (string, error) {
	switch format {
	case FormatCSV:
		return e.InvoicesCSV(report)
	case FormatJSON:
		return e.InvoicesJSON(report)
	case FormatPDF:
		return e.ReportPDF(report)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// InvoicesCSV writes one row per invoice.
func (e *Exporter) InvoicesCSV(report *models.Report) (string, error) {
	outputFilename, err := e.generateFilename(report, FormatCSV)
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)

	headers := []string{"Invoice ID", "Date", "Amount", "Cost", "Status", "Reference"}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, inv := range report.Invoices {
		record := []string{
			inv.ID,
			inv.Date,
			inv.Amount,
			strings.TrimPrefix(inv.Amount, "$"),
			string(inv.Status),
			inv.TxRef,
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// InvoicesJSON writes the report summary, chart series and invoices.
func (e *Exporter) InvoicesJSON(report *models.Report) (string, error) {
	outputFilename, err := e.generateFilename(report, FormatJSON)
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("failed to encode JSON report: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ReportPDF writes a one-document summary with KPIs and the invoice table.
func (e *Exporter) ReportPDF(report *models.Report) (string, error) {
	outputFilename, err := e.generateFilename(report, FormatPDF)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	sectionTitle := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footer := fmt.Sprintf("Generated by %s %s | %s", version.AppName, version.GetVersion(), e.now().Format("2006-01-02 15:04"))
		pdf.CellFormat(0, 10, tr(footer), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	// Header
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Usage Report: "+report.Period.Label()), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	subtitle := fmt.Sprintf("  %s to %s  |  Model: %s",
		aggregator.DisplayDate(report.Window.Start),
		aggregator.DisplayDate(report.Window.End),
		report.ModelFilter)
	pdf.CellFormat(0, 8, tr(subtitle), "", 1, "L", true, 0, "")
	pdf.Ln(8)

	// KPIs
	sectionTitle("Summary")
	colWidth := 190.0 / 3
	for _, kpi := range report.KPIs {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(colWidth, 7, tr(kpi.Title), "B", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(colWidth, 7, tr(kpi.Value), "B", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(colWidth, 7, tr(changeLabel(kpi.Change)), "B", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	// Invoices
	sectionTitle("Invoices")
	widths := []float64{45, 35, 40, 25, 45}
	headers := []string{"Invoice ID", "Date", "Amount", "Status", "Reference"}
	pdf.SetFont("Arial", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	if len(report.Invoices) == 0 {
		pdf.CellFormat(0, 7, "No usage in this period.", "", 1, "L", false, 0, "")
	}
	for _, inv := range report.Invoices {
		row := []string{inv.ID, inv.DisplayDate, inv.Amount, string(inv.Status), inv.TxRef}
		for i, v := range row {
			pdf.CellFormat(widths[i], 6, tr(v), "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("failed to write PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func changeLabel(change string) string {
	if change == aggregator.NoChange {
		return "no previous data"
	}
	return change + " vs previous period"
}

// generateFilename builds usage-<period>-<timestamp>.<ext> in the output
// directory, creating it if needed.
func (e *Exporter) generateFilename(report *models.Report, format Format) (string, error) {
	if report == nil {
		return "", errors.New("no report to export")
	}

	dir := e.dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	period := report.Period.String()
	if period == "" {
		period = string(models.DefaultPeriod)
	}
	timestamp := e.now().Format("20060102_150405")
	filename := fmt.Sprintf("usage-%s-%s.%s", period, timestamp, format)
	return filepath.Join(dir, filename), nil
}
