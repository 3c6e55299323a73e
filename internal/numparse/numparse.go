// Package numparse normalizes the numeric literals found in bank POS
// exports into decimals. The sources disagree on everything: Vakıfbank
// writes zero-padded signed fixed-width strings like
// "+00000000000005038.80", Garanti writes Turkish-locale numbers like
// "1.234.567,89", others write plain English-locale numbers.
package numparse

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Amount parses a source amount literal into a decimal. An empty or
// whitespace-only literal parses to zero; anything else that cannot be
// normalized is an error. Currency markers (₺, TL, TRY) are stripped.
func Amount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}

	for _, sym := range []string{"₺", "TRY", "TL"} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimLeft(s, "+-")
	if s == "" {
		return decimal.Zero, nil
	}

	// Fixed-width exports pad with leading zeros: 00005038.80 → 5038.80.
	if len(s) > 1 && s[0] == '0' && !strings.HasPrefix(s, "0.") && !strings.HasPrefix(s, "0,") {
		s = strings.TrimLeft(s, "0")
		if s == "" || s == "." || s == "," {
			return decimal.Zero, nil
		}
	}

	s = normalizeSeparators(s)
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable amount %q", s)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// normalizeSeparators rewrites Turkish or English thousands/decimal
// separators into the plain form decimal.NewFromString accepts.
func normalizeSeparators(s string) string {
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// Turkish: 1.234.567,89
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// English: 1,234,567.89
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas == 1:
		// Single comma is a Turkish decimal mark: 5038,80.
		s = strings.Replace(s, ",", ".", 1)
	case commas > 1:
		// Multiple commas are English thousands: 1,234,567.
		s = strings.ReplaceAll(s, ",", "")
	case dots >= 1:
		// Dots only. "1.234.567" and "4.000" are Turkish thousands
		// (every group after the first is 3 digits); "4.50" is a
		// decimal and is left alone.
		parts := strings.Split(s, ".")
		thousands := len(parts) > 1
		for _, p := range parts[1:] {
			if len(p) != 3 || !isDigits(p) {
				thousands = false
				break
			}
		}
		if thousands && isDigits(parts[0]) && len(parts) > 2 {
			s = strings.ReplaceAll(s, ".", "")
		} else if thousands && len(parts) == 2 && len(parts[0]) > 0 {
			// Ambiguous "4.000": three trailing digits mean thousands
			// in every source that uses this form.
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// Rate parses a commission-rate literal into fractional form. Banks
// disagree on whether rates are exported as percentages (23.95) or
// fractions (0.2395); percent forces the division, otherwise any value
// above 1 is assumed to be a percentage.
func Rate(s string, percent bool) (decimal.Decimal, error) {
	d, err := Amount(s)
	if err != nil {
		return decimal.Zero, err
	}
	return NormalizeRate(d, percent), nil
}

// NormalizeRate converts a rate to fractional form.
func NormalizeRate(d decimal.Decimal, percent bool) decimal.Decimal {
	if percent || d.Abs().GreaterThan(decimal.NewFromInt(1)) {
		return d.Div(hundred)
	}
	return d
}

// Installments parses an installment-count literal. Counts appear as
// plain integers, floats ("3.0"), or Yapı Kredi's "count/index" form
// ("6/2"). Empty and zero both mean a single immediate payment.
func Installments(s string) (count, index int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, 1, nil
	}

	index = 1
	if i := strings.IndexByte(s, '/'); i >= 0 {
		idxPart := strings.TrimSpace(s[i+1:])
		s = strings.TrimSpace(s[:i])
		if d, err := decimal.NewFromString(idxPart); err == nil {
			index = int(d.IntPart())
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, 0, fmt.Errorf("unparseable installment count %q", s)
	}
	count = int(d.IntPart())
	if count < 1 {
		count = 1
	}
	if index < 1 {
		index = 1
	}
	return count, index, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
