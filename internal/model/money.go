package model

import (
	"fmt"
	"math"
	"strconv"
)

// ParseCents converts decimal string amounts (dollars) to cents (int64).
// Use for values that arrive as strings in major currency units
// (e.g., "99.00" = $99.00). Handles edge cases: empty strings, missing
// decimals, large values.
// Examples: "99.00" → 9900, "1234.56" → 123456, "" → 0
func ParseCents(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	// math.Round handles both positive and negative numbers correctly
	return int64(math.Round(f * 100))
}

// CentsFromFloat converts a decimal dollar amount to cents.
// The backend catalog API returns prices as JSON numbers in dollars
// (e.g., 9.99); all internal arithmetic is done in cents.
// Examples: 9.99 → 999, 10 → 1000, -10.00 → -1000
func CentsFromFloat(f float64) int64 {
	return int64(math.Round(f * 100))
}

// CentsToDecimal converts cents back to a decimal dollar amount.
// Used when serializing order payloads, which carry prices as JSON
// numbers in dollars.
func CentsToDecimal(c int64) float64 {
	return float64(c) / 100
}

// FormatCents renders cents as a display string, e.g. 2500 → "$25.00".
func FormatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s$%d.%02d", sign, c/100, c%100)
}
