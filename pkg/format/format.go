// Package format renders money and counts with Indian digit grouping (12,34,567.89).
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

const rupee = "₹"

// Number groups the integer part en-IN style and keeps at most three fraction
// digits, dropping trailing zeros. Zero renders as "0".
func Number(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	s := d.Round(3).String()
	return group(s)
}

// Money renders a rupee amount with exactly two decimals.
func Money(d decimal.Decimal) string {
	return rupee + group(d.StringFixed(2))
}

// Count renders an integer with en-IN grouping.
func Count(n int) string {
	return Number(decimal.NewFromInt(int64(n)))
}

func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	head, last3 := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	parts = append(parts, last3)
	return sign + strings.Join(parts, ",") + frac
}
