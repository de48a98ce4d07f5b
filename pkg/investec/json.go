package investec

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Readers for the loosely typed maps the API returns. Missing or
// type-mismatched fields never crash - they coerce or fall back to the
// documented default. Every model names its fields explicitly; unknown
// keys are simply ignored.

func readString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}

	return ""
}

func readStringPtr(data map[string]interface{}, key string) *string {
	if v, ok := data[key].(string); ok {
		return &v
	}

	return nil
}

// readBool accepts both a JSON boolean and the strings "true"/"false" -
// some endpoints are not consistent about which one they send.
func readBool(data map[string]interface{}, key string, def bool) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return def
	}
}

func readIntPtr(data map[string]interface{}, key string) *int {
	if v, ok := data[key].(float64); ok {
		i := int(v)
		return &i
	}

	return nil
}

// readDecimal parses an exact decimal out of a string or a JSON number.
// Defaults to zero when the field is absent or unparsable.
func readDecimal(data map[string]interface{}, key string) decimal.Decimal {
	switch v := data[key].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(v)
	default:
		return decimal.Zero
	}
}

func readDecimalPtr(data map[string]interface{}, key string) *decimal.Decimal {
	if _, ok := data[key]; !ok {
		return nil
	}
	if data[key] == nil {
		return nil
	}

	d := readDecimal(data, key)
	return &d
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateLayout,
}

// readTime parses an ISO timestamp or date. Returns nil when the field
// is absent, empty or not parsable.
func readTime(data map[string]interface{}, key string) *time.Time {
	v, ok := data[key].(string)
	if !ok || v == "" {
		return nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}

	return nil
}
