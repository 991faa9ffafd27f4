package aggregator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// NoChange is shown when a percentage change is undefined.
const NoChange = "-"

const costPrecision = 6

// FormatTokens renders a token count with a K/M suffix.
func FormatTokens(v int64) string {
	switch {
	case v == 0:
		return "0 tokens"
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM tokens", float64(v)/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK tokens", float64(v)/1_000)
	default:
		return humanize.Comma(v) + " tokens"
	}
}

// FormatCost renders a cost with six fixed decimals.
func FormatCost(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return "$" + decimal.NewFromFloat(v).StringFixed(costPrecision)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(v int64) string {
	return humanize.Comma(v)
}

// FormatChange renders (current-previous)/previous as a signed percentage
// with one decimal, or NoChange when previous is not positive or the result
// is not finite.
func FormatChange(current, previous float64) string {
	if math.IsNaN(previous) || previous <= 0 {
		return NoChange
	}
	delta := (current - previous) / previous * 100
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return NoChange
	}
	return fmt.Sprintf("%+.1f%%", delta)
}

// RoundCost rounds a cost to six decimals.
func RoundCost(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(costPrecision).InexactFloat64()
}

// DayLabel is the short chart label for a day.
func DayLabel(day time.Time) string {
	return day.Format("Jan 2")
}

// DisplayDate is the long display form of a day.
func DisplayDate(day time.Time) string {
	return day.Format("Jan 2, 2006")
}

// InvoiceID builds the invoice identifier for a YYYY-MM-DD key.
func InvoiceID(key string) string {
	return "USAGE-" + strings.ReplaceAll(key, "-", "")
}

// TxReference derives the display transaction reference for a date key. It is
// a string transform, not a hash: the same date always yields the same value.
func TxReference(key string) string {
	digits := strings.ReplaceAll(key, "-", "")
	if len(digits) < 12 {
		digits += strings.Repeat("0", 12-len(digits))
	}
	return "0x" + digits[len(digits)-12:]
}
