package market

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseTenor converts a tenor label to months: "6M" is 6, "1Y" is 12,
// "18M" is 18, "5Y" is 60. A label with no unit suffix falls back to
// reading its first run of digits as years, matching how spreadsheet
// tenor columns tend to be labeled ("10" means 10Y). Labels without any
// digits fail.
func ParseTenor(label string) (int, error) {
	t := strings.ToUpper(strings.TrimSpace(label))
	if t == "" {
		return 0, fmt.Errorf("ParseTenor: empty tenor label")
	}

	if n, ok := suffixNumber(t, 'M'); ok {
		return n, nil
	}
	if n, ok := suffixNumber(t, 'Y'); ok {
		return n * 12, nil
	}

	digits := firstDigits(t)
	if digits == "" {
		return 0, fmt.Errorf("ParseTenor: no digits in tenor label %q", label)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("ParseTenor: tenor label %q: %w", label, err)
	}
	return n * 12, nil
}

// TenorMonths is the sort key for tenor labels. It is ParseTenor with
// unparseable labels collapsing to 0 so they sort first instead of
// failing.
func TenorMonths(label string) int {
	n, err := ParseTenor(label)
	if err != nil {
		return 0
	}
	return n
}

// FormatTenor renders months back into the conventional label: whole
// years from 12 months up use the year form ("60" becomes "5Y"),
// everything else the month form ("18" stays "18M").
func FormatTenor(months int) string {
	if months >= 12 && months%12 == 0 {
		return strconv.Itoa(months/12) + "Y"
	}
	return strconv.Itoa(months) + "M"
}

func suffixNumber(t string, unit byte) (int, bool) {
	if len(t) < 2 || t[len(t)-1] != unit {
		return 0, false
	}
	n, err := strconv.Atoi(t[:len(t)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func firstDigits(t string) string {
	start := -1
	for i, r := range t {
		if unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return t[start:i]
		}
	}
	if start >= 0 {
		return t[start:]
	}
	return ""
}
