package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money decodes the backend's monetary fields, which arrive either as JSON
// numbers or as numeric strings ("19.99"). Null and empty strings decode to zero.
type Money struct {
	decimal.Decimal
}

// ParseMoney is the single conversion point for monetary wire values.
func ParseMoney(raw json.RawMessage) (decimal.Decimal, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return decimal.Zero, nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return decimal.Zero, fmt.Errorf("decoding money string: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid money value %q: %w", s, err)
		}
		return d, nil
	}

	d, err := decimal.NewFromString(string(trimmed))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid money value %s: %w", trimmed, err)
	}
	return d, nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	d, err := ParseMoney(data)
	if err != nil {
		return err
	}
	m.Decimal = d
	return nil
}

// FormatMoney renders an amount for display, rounding half away from zero to cents.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
