package parser

import (
	"regexp"
	"strings"

	"securekyc/internal/models"
)

var (
	aadhaarNumberRe = regexp.MustCompile(`(\d{4}\s*\d{4}\s*\d{4})`)
	genderRe        = regexp.MustCompile(`(?i)\b(Male|Female|Transgender|OTHERS|OTHER)\b`)
	aadhaarSkipRe   = regexp.MustCompile(`(?i)\b(GOVERNMENT|INDIA|AADHAAR|UNIQUE|IDENTITY|ADDRESS|DOB|DATE|MOBILE|VID|MAAZE|MADHE|UNION)\b`)
	nameLabelRe     = regexp.MustCompile(`[Nn]ame[^:]*[:\-]\s*(.+)`)
	hindiNameRe     = regexp.MustCompile(`नाम[:\-]?\s*(.+)`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

const (
	weightLabel    = 3
	weightAboveDOB = 2
	weightFallback = 1
)

// ParseAadhaar extracts name, date of birth, gender and the 12-digit number
// from Aadhaar OCR text.
func ParseAadhaar(raw string) models.ParsedFields {
	out := models.ParsedFields{DocType: models.DocAadhaar, RawText: raw}
	if raw == "" {
		return out
	}
	lines := nonEmptyLines(raw)

	for _, ln := range lines {
		if m := aadhaarNumberRe.FindStringSubmatch(ln); m != nil {
			out.IDNumber = models.Str(whitespaceRe.ReplaceAllString(m[1], ""))
			break
		}
	}

	dobIdx := -1
	for i, ln := range lines {
		if m := cardDateRe.FindStringSubmatch(ln); m != nil {
			out.DOB = models.Str(m[1])
			dobIdx = i
			break
		}
	}

	for _, ln := range lines {
		if m := genderRe.FindString(ln); m != "" {
			out.Gender = models.Str(m)
			break
		}
	}

	out.Name = models.Str(aadhaarName(lines, dobIdx))
	return out
}

func aadhaarName(lines []string, dobIdx int) string {
	var cands []nameCandidate

	for i, ln := range lines {
		if aadhaarSkipRe.MatchString(ln) {
			continue
		}
		if !strings.Contains(strings.ToLower(ln), "name") && !strings.Contains(ln, "नाम") {
			continue
		}
		m := nameLabelRe.FindStringSubmatch(ln)
		if m == nil {
			m = hindiNameRe.FindStringSubmatch(ln)
		}
		if m == nil {
			continue
		}
		if cand := CleanPersonName(m[1]); plausibleName(cand, 5) {
			cands = append(cands, nameCandidate{weight: weightLabel, line: i, value: cand})
		}
	}

	if dobIdx >= 0 {
		for up := 1; up <= 3; up++ {
			i := dobIdx - up
			if i < 0 {
				break
			}
			ln := lines[i]
			if aadhaarSkipRe.MatchString(ln) || hasDigit(ln) {
				continue
			}
			if cand := CleanPersonName(ln); plausibleName(cand, 5) {
				cands = append(cands, nameCandidate{weight: weightAboveDOB, line: i, value: cand})
				break
			}
		}
	}

	if len(cands) == 0 {
		for i, ln := range lines {
			if aadhaarSkipRe.MatchString(ln) || hasDigit(ln) {
				continue
			}
			if cand := CleanPersonName(ln); plausibleName(cand, 5) {
				cands = append(cands, nameCandidate{weight: weightFallback, line: i, value: cand})
			}
		}
	}

	return bestName(cands)
}
