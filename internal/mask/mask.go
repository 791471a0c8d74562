// Package mask produces the one-way display forms of identity numbers that are
// stored on records. Masks are never matched against raw numbers.
package mask

import (
	"regexp"
	"strings"
)

// Redacted replaces an identifier too short to mask.
const Redacted = "XXXX"

var (
	nonDigitRe   = regexp.MustCompile(`\D`)
	whitespaceRe = regexp.MustCompile(`\s`)
)

// Aadhaar masks a 12-digit national ID as "dddd-XXXX-dddd". Inputs with fewer
// than 8 digits become Redacted.
func Aadhaar(number string) string {
	if strings.TrimSpace(number) == "" {
		return ""
	}
	digits := nonDigitRe.ReplaceAllString(number, "")
	if len(digits) < 8 {
		return Redacted
	}
	return digits[:4] + "-XXXX-" + digits[len(digits)-4:]
}

// PAN masks a tax ID as the first five characters, "-XX" and the last two.
// Inputs shorter than 10 characters become Redacted.
func PAN(number string) string {
	if strings.TrimSpace(number) == "" {
		return ""
	}
	pn := whitespaceRe.ReplaceAllString(number, "")
	if len(number) < 10 || len(pn) < 7 {
		return Redacted
	}
	return pn[:5] + "-XX" + pn[len(pn)-2:]
}
