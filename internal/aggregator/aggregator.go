// Package aggregator turns raw per-day usage records into billing reports:
// period windows, day buckets, KPIs with period-over-period change, chart
// series and derived invoices.
//
// Aggregation is a pure function of the records, the view parameters and the
// clock. Callers re-run it whenever any of those change.
package aggregator

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

// Aggregator computes reports relative to a clock and a location.
type Aggregator struct {
	now func() time.Time
	loc *time.Location
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock sets the clock used to anchor the reporting window.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLocation sets the location whose midnights bound calendar days.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// New creates an aggregator. It defaults to time.Now and time.Local.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Location returns the location used for day boundaries.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Now returns the current time according to the aggregator's clock.
func (a *Aggregator) Now() time.Time {
	return a.now()
}

// Aggregate builds a report with the default clock and location.
func Aggregate(records []models.UsageRecord, period models.Period, modelFilter string) *models.Report {
	return New().Aggregate(records, period, modelFilter)
}

type datedRecord struct {
	day time.Time
	key string
	rec models.UsageRecord
}

// bucketAcc accumulates one day. Cost is summed in decimal so bucket totals
// do not depend on float rounding order.
type bucketAcc struct {
	bucket models.DayBucket
	cost   decimal.Decimal
}

// Aggregate builds the report for period and modelFilter. It never fails:
// records with unparsable dates are dropped and a filter matching nothing
// yields an empty report.
func (a *Aggregator) Aggregate(records []models.UsageRecord, period models.Period, modelFilter string) *models.Report {
	now := a.now()
	if modelFilter == "" {
		modelFilter = models.FilterAll
	}

	dated := a.parseRecords(records)

	current := CurrentWindow(now, period.Days(), a.loc)
	previous := PreviousWindow(current)

	buckets := bucketize(dated, current, modelFilter)
	previousBuckets := bucketize(dated, previous, modelFilter)

	totals := sumBuckets(buckets)
	previousTotals := sumBuckets(previousBuckets)
	avg := averageCost(totals)
	previousAvg := averageCost(previousTotals)

	return &models.Report{
		Period:              period,
		ModelFilter:         modelFilter,
		Window:              current,
		PreviousWindow:      previous,
		Totals:              totals,
		PreviousTotals:      previousTotals,
		AverageCost:         avg,
		PreviousAverageCost: previousAvg,
		Buckets:             buckets,
		KPIs:                buildKPIs(totals, previousTotals, avg, previousAvg),
		Chart:               buildChart(buckets),
		Invoices:            BuildInvoices(buckets),
		GeneratedAt:         now,
	}
}

func (a *Aggregator) parseRecords(records []models.UsageRecord) []datedRecord {
	dated := make([]datedRecord, 0, len(records))
	for _, rec := range records {
		day, ok := ParseDay(rec.Date, a.loc)
		if !ok {
			continue
		}
		dated = append(dated, datedRecord{day: day, key: DateKey(day), rec: rec})
	}
	return dated
}

// bucketize groups records inside w, narrowed by filter, into ascending day
// buckets.
func bucketize(dated []datedRecord, w models.Window, filter string) []models.DayBucket {
	byKey := make(map[string]*bucketAcc)
	for _, d := range dated {
		if !w.Contains(d.day) {
			continue
		}
		if filter != models.FilterAll && d.rec.ModelID != filter {
			continue
		}

		acc, ok := byKey[d.key]
		if !ok {
			acc = &bucketAcc{
				bucket: models.DayBucket{
					Date:      d.day,
					Key:       d.key,
					Providers: []string{},
					Models:    []string{},
				},
			}
			byKey[d.key] = acc
		}

		acc.bucket.Tokens += d.rec.TotalTokens
		acc.bucket.Requests += d.rec.RequestCount
		acc.cost = acc.cost.Add(costDecimal(d.rec.TotalCost))
		if d.rec.Provider != "" && !slices.Contains(acc.bucket.Providers, d.rec.Provider) {
			acc.bucket.Providers = append(acc.bucket.Providers, d.rec.Provider)
		}
		if d.rec.ModelID != "" && !slices.Contains(acc.bucket.Models, d.rec.ModelID) {
			acc.bucket.Models = append(acc.bucket.Models, d.rec.ModelID)
		}
	}

	buckets := make([]models.DayBucket, 0, len(byKey))
	for _, acc := range byKey {
		acc.bucket.Cost = acc.cost.InexactFloat64()
		buckets = append(buckets, acc.bucket)
	}
	slices.SortFunc(buckets, func(x, y models.DayBucket) int {
		return x.Date.Compare(y.Date)
	})
	return buckets
}

func sumBuckets(buckets []models.DayBucket) models.Totals {
	var (
		totals models.Totals
		cost   decimal.Decimal
	)
	for _, b := range buckets {
		totals.Tokens += b.Tokens
		totals.Requests += b.Requests
		cost = cost.Add(costDecimal(b.Cost))
	}
	totals.Cost = cost.InexactFloat64()
	return totals
}

func averageCost(t models.Totals) float64 {
	if t.Requests <= 0 {
		return 0
	}
	return t.Cost / float64(t.Requests)
}

func buildKPIs(cur, prev models.Totals, avg, prevAvg float64) []models.KPI {
	kpi := func(kind models.KPIKind, value, change string) models.KPI {
		return models.KPI{Kind: kind, Title: kind.String(), Value: value, Change: change}
	}
	return []models.KPI{
		kpi(models.KPITokens, FormatTokens(cur.Tokens),
			FormatChange(float64(cur.Tokens), float64(prev.Tokens))),
		kpi(models.KPICost, FormatCost(cur.Cost),
			FormatChange(cur.Cost, prev.Cost)),
		kpi(models.KPIRequests, FormatCount(cur.Requests),
			FormatChange(float64(cur.Requests), float64(prev.Requests))),
		kpi(models.KPIAvgCost, FormatCost(avg),
			FormatChange(avg, prevAvg)),
	}
}

func buildChart(buckets []models.DayBucket) []models.ChartPoint {
	points := make([]models.ChartPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, models.ChartPoint{
			Label:    DayLabel(b.Date),
			Date:     b.Date,
			Tokens:   b.Tokens,
			Cost:     RoundCost(b.Cost),
			Requests: b.Requests,
		})
	}
	return points
}

// BuildInvoices derives invoices from ascending buckets, most recent first.
// Only the most recent invoice is pending, and pending invoices carry no
// transaction reference.
func BuildInvoices(buckets []models.DayBucket) []models.Invoice {
	invoices := make([]models.Invoice, 0, len(buckets))
	for i := len(buckets) - 1; i >= 0; i-- {
		b := buckets[i]
		inv := models.Invoice{
			ID:          InvoiceID(b.Key),
			Date:        b.Key,
			DisplayDate: DisplayDate(b.Date),
			Amount:      FormatCost(b.Cost),
			Cost:        b.Cost,
			Status:      models.InvoiceCompleted,
		}
		if len(invoices) == 0 {
			inv.Status = models.InvoicePending
		} else {
			inv.TxRef = TxReference(b.Key)
		}
		invoices = append(invoices, inv)
	}
	return invoices
}
