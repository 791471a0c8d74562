package similarity

import "regexp"

// DOBMaxDistance is returned when two dates cannot be compared digit by digit.
const DOBMaxDistance = 99

var nonDigitRe = regexp.MustCompile(`\D`)

// DOBDistance counts differing digit positions between two dates after
// stripping separators. Missing dates or dates with different digit counts
// are maximally distant.
func DOBDistance(a, b string) int {
	da := nonDigitRe.ReplaceAllString(a, "")
	db := nonDigitRe.ReplaceAllString(b, "")
	if da == "" || db == "" || len(da) != len(db) {
		return DOBMaxDistance
	}
	diff := 0
	for i := 0; i < len(da); i++ {
		if da[i] != db[i] {
			diff++
		}
	}
	return diff
}

// DOBNearEqual reports whether two dates differ by at most one digit, the
// signature of a single OCR misread.
func DOBNearEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return DOBDistance(a, b) <= 1
}
