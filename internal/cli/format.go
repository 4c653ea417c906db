// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatAmount formats a currency amount with two decimals, no grouping.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatAmountGrouped formats an amount with two decimals and comma separators.
// e.g., 1234567.5 -> "1,234,567.50"
func FormatAmountGrouped(v float64) string {
	s := FormatAmount(v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return FormatAmount(v)
	}
	out := FormatNumber(n) + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatRatio formats used/limit as a percentage, or "-" when there is no limit.
func FormatRatio(used, limit float64) string {
	if limit <= 0 {
		return "-"
	}
	return FormatPercent(used / limit)
}
