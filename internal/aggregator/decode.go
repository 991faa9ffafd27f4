package aggregator

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

var (
	// ErrInvalidJSON is returned when a payload is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON payload")
	// ErrNotArray is returned when a usage payload is valid JSON but not an array.
	ErrNotArray = errors.New("unexpected response format: expected a JSON array")
)

var maxInt64 = decimal.NewFromInt(math.MaxInt64)

// DecodeRecords parses a JSON array of usage records. Both snake_case and
// camelCase keys are accepted. Malformed numeric fields become 0 and
// non-object elements become records with no date, which aggregation drops.
func DecodeRecords(data []byte) ([]models.UsageRecord, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, ErrNotArray
	}

	elems := root.Array()
	records := make([]models.UsageRecord, 0, len(elems))
	for _, el := range elems {
		records = append(records, decodeRecord(el))
	}
	return records, nil
}

func decodeRecord(el gjson.Result) models.UsageRecord {
	if !el.IsObject() {
		return models.UsageRecord{}
	}
	return models.UsageRecord{
		Date:         stringField(el, "date"),
		ModelID:      stringField(el, "model_id", "modelId"),
		Provider:     stringField(el, "provider"),
		TotalTokens:  coerceInt(field(el, "total_tokens", "totalTokens")),
		TotalCost:    coerceDecimal(field(el, "total_cost", "totalCost")).InexactFloat64(),
		RequestCount: coerceInt(field(el, "request_count", "requestCount")),
	}
}

func field(el gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if r := el.Get(k); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

func stringField(el gjson.Result, keys ...string) string {
	r := field(el, keys...)
	switch r.Type {
	case gjson.String, gjson.Number:
		return strings.TrimSpace(r.String())
	default:
		return ""
	}
}

// coerceDecimal reads a non-negative number from a JSON number or numeric
// string. Anything else is 0.
func coerceDecimal(r gjson.Result) decimal.Decimal {
	var (
		d   decimal.Decimal
		err error
	)
	switch r.Type {
	case gjson.Number:
		d, err = decimal.NewFromString(r.Raw)
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if s == "" {
			return decimal.Zero
		}
		d, err = decimal.NewFromString(s)
	default:
		return decimal.Zero
	}
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func coerceInt(r gjson.Result) int64 {
	d := coerceDecimal(r)
	if d.GreaterThan(maxInt64) {
		return 0
	}
	return d.IntPart()
}

// costDecimal converts a cost for summing, treating invalid values as 0.
func costDecimal(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
