package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount parses a monetary value from JSON as either a number or a
// string ("100000", "100000.50") into COP minor units (centavos).
// Parsing goes through decimal so repeated subscribe/cancel cycles
// never accumulate float error. More than two decimal places is
// rejected.
type Amount struct{ minor int64 }

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return fmt.Errorf("amount is required")
	}
	if s[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		s = strings.TrimSpace(raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("amount must be a decimal number: %w", err)
	}
	if d.IsNegative() {
		return fmt.Errorf("amount must not be negative")
	}
	if d.Exponent() < -2 {
		return fmt.Errorf("amount supports at most two decimal places")
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return fmt.Errorf("amount supports at most two decimal places")
	}
	a.minor = minor.IntPart()
	return nil
}

// Minor returns the amount in minor units.
func (a Amount) Minor() int64 { return a.minor }

// FormatMinor renders minor units back as a decimal string for
// responses ("500000", "125000.5").
func FormatMinor(v int64) string {
	return decimal.New(v, -2).String()
}
