package statement

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errNoDigits = errors.New("no digits in amount")

// parseAmount reads a signed amount as printed on a bank statement.
// "1,234.500", "1.234,56", "-588.74", "(64.00)", "12.500 DR" and "OMR 300" are accepted.
// The right-most separator followed by other than exactly three digits, or the
// right-most of two different separators, is the decimal point.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	neg := false

	switch {
	case strings.HasSuffix(s, "DR"):
		neg = true
		s = strings.TrimSuffix(s, "DR")
	case strings.HasSuffix(s, "CR"):
		s = strings.TrimSuffix(s, "CR")
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}

	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			return r
		}

		return -1
	}, s)

	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = s[1:]
	}

	if s == "" {
		return decimal.Zero, errNoDigits
	}

	d, err := decimal.NewFromString(canonical(s))
	if err != nil {
		return decimal.Zero, err
	}

	if neg {
		return d.Neg(), nil
	}

	return d, nil
}

// canonical rewrites digits with grouping separators into "1234.56" form.
func canonical(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	decimalSep := byte(0)

	switch {
	case lastDot >= 0 && lastComma >= 0:
		decimalSep = s[max(lastDot, lastComma)]
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			decimalSep = ','
		}
	case lastDot >= 0:
		if strings.Count(s, ".") == 1 {
			decimalSep = '.'
		}
	}

	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == decimalSep:
			sb.WriteByte('.')
		case c == '.' || c == ',':
		default:
			sb.WriteByte(c)
		}
	}

	return sb.String()
}
