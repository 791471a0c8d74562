package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	nonNameCharRe = regexp.MustCompile(`[^A-Za-z\x{0900}-\x{097F}\s]`)
	multiSpaceRe  = regexp.MustCompile(`\s{2,}`)
	latinLetterRe = regexp.MustCompile(`^[A-Za-z]$`)
)

var (
	leadingNoise  = map[string]struct{}{"ane": {}, "ame": {}, "nam": {}, "name": {}}
	trailingNoise = map[string]struct{}{
		"holder": {}, "signature": {}, "sign": {}, "signatory": {}, "photo": {}, "card": {},
	}
)

// CleanPersonName normalizes a raw OCR name fragment. It keeps Latin and
// Devanagari letters, drops label residue at the head ("ane", "Nam" ...),
// stops at stray short fragments after two clean tokens and strips trailing
// words like "holder" or "signature". It returns "" when nothing survives.
func CleanPersonName(raw string) string {
	if raw == "" {
		return ""
	}
	s := nonNameCharRe.ReplaceAllString(raw, " ")
	s = strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}

	parts := strings.Fields(s)
	for len(parts) >= 3 {
		first := strings.ToLower(parts[0])
		if _, ok := leadingNoise[first]; ok || strings.HasPrefix(first, "nam") {
			parts = parts[1:]
			continue
		}
		if runeLen(parts[0]) <= 3 {
			parts = parts[1:]
			continue
		}
		break
	}

	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		if runeLen(p) <= 2 && len(clean) >= 2 {
			break
		}
		clean = append(clean, p)
	}

	for len(clean) > 3 && runeLen(clean[0]) <= 2 {
		clean = clean[1:]
	}

	for len(clean) > 1 {
		if _, ok := trailingNoise[strings.ToLower(clean[len(clean)-1])]; !ok {
			break
		}
		clean = clean[:len(clean)-1]
	}

	if len(clean) == 0 {
		return ""
	}
	return strings.Join(clean, " ")
}

// IsMostlyEnglish reports whether at least 70% of the letters in text are
// A-Z/a-z, rejecting lines dominated by Devanagari OCR noise.
func IsMostlyEnglish(text string) bool {
	return latinRatio(text) >= 0.7
}

func latinRatio(text string) float64 {
	letters, latin := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if latinLetterRe.MatchString(string(r)) {
			latin++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(latin) / float64(letters)
}

// plausibleName applies the shared acceptance rule for name candidates.
func plausibleName(cand string, minLen int) bool {
	if cand == "" {
		return false
	}
	if len(strings.Fields(cand)) < 2 {
		return false
	}
	if runeLen(cand) < minLen {
		return false
	}
	return IsMostlyEnglish(cand)
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// nonEmptyLines splits OCR text into trimmed, non-blank lines.
func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, ln := range raw {
		if ln = strings.TrimSpace(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

// nameCandidate is a scored name guess. Higher weight sources win; length
// breaks ties within a weight.
type nameCandidate struct {
	weight int
	line   int
	value  string
}

func bestName(cands []nameCandidate) string {
	best, bestScore := "", -1
	for _, c := range cands {
		score := c.weight*100 + runeLen(c.value)
		if score > bestScore {
			bestScore = score
			best = c.value
		}
	}
	return best
}
