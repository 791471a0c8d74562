package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"
)

var (
	nonDigitRe = regexp.MustCompile(`\D`)

	// slash/dash dates printed on Aadhaar and PAN cards
	cardDateRe = regexp.MustCompile(`\b(\d{2}[/\-]\d{2}[/\-]\d{4})\b`)

	anyDateRe   = regexp.MustCompile(`\d{1,2}[-/:.\s]\d{1,2}[-/:.\s]\d{2,4}|\b\d{8}\b`)
	sepDateRe   = regexp.MustCompile(`\d{1,2}[-/:.\s]\d{1,2}[-/:.\s]\d{2,4}`)
	plainDateRe = regexp.MustCompile(`\b\d{8}\b`)
)

// NormalizeDate converts a date-like fragment to canonical dd-mm-yyyy. Only
// the digits are considered: eight digits read as ddmmyyyy, six as ddmmyy in
// the 2000s. It returns "" for any other shape or an impossible calendar date.
func NormalizeDate(s string) string {
	digits := nonDigitRe.ReplaceAllString(s, "")
	var d, m, y string
	switch len(digits) {
	case 8:
		d, m, y = digits[0:2], digits[2:4], digits[4:8]
	case 6:
		d, m, y = digits[0:2], digits[2:4], "20"+digits[4:6]
	default:
		return ""
	}
	day, _ := strconv.Atoi(d)
	month, _ := strconv.Atoi(m)
	year, _ := strconv.Atoi(y)
	if !validDate(year, month, day) {
		return ""
	}
	return fmt.Sprintf("%s-%s-%s", d, m, y)
}

func validDate(year, month, day int) bool {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

// ParseCanonicalDate parses a dd-mm-yyyy string produced by NormalizeDate.
func ParseCanonicalDate(s string) (time.Time, error) {
	return time.Parse("02-01-2006", s)
}

// dateKey orders canonical dates chronologically; unparsable values sort last.
func dateKey(ds string) int {
	t, err := ParseCanonicalDate(ds)
	if err != nil {
		return 9999*10000 + 12*100 + 31
	}
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// sortedUnique returns the distinct canonical dates in chronological order.
func sortedUnique(dates []string) []string {
	seen := make(map[string]struct{}, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return dateKey(out[i]) < dateKey(out[j]) })
	return out
}
