package parser

import (
	"regexp"
	"strings"

	"securekyc/internal/models"
)

var (
	panNumberRe    = regexp.MustCompile(`(?i)([A-Z]{5}\s*[0-9]{4}\s*[A-Z])`)
	panNoiseRe     = regexp.MustCompile(`(?i)\b(PAN|INCOME|TAX|GOVT|GOVERNMENT|PERMANENT|ACCOUNT|INDIA|DOB|DATE|PHOTO)\b`)
	upperRunRe     = regexp.MustCompile(`[A-Z]{2,}`)
	nonNameSpaceRe = regexp.MustCompile(`[^A-Za-z\x{0900}-\x{097F} ]`)
)

// ParsePAN extracts the PAN number, date of birth, holder name and father's
// name from PAN card OCR text.
func ParsePAN(raw string) models.ParsedFields {
	out := models.ParsedFields{DocType: models.DocPAN, RawText: raw}
	if raw == "" {
		return out
	}
	lines := nonEmptyLines(raw)

	panIdx := -1
	for i, ln := range lines {
		compact := whitespaceRe.ReplaceAllString(ln, "")
		if m := panNumberRe.FindStringSubmatch(compact); m != nil {
			out.IDNumber = models.Str(strings.ToUpper(strings.ReplaceAll(m[1], " ", "")))
			panIdx = i
			break
		}
	}

	for _, ln := range lines {
		if m := cardDateRe.FindStringSubmatch(ln); m != nil {
			out.DOB = models.Str(m[1])
			break
		}
	}

	nameLabel, fatherLabel := -1, -1
	for i, ln := range lines {
		low := strings.ToLower(ln)
		if (strings.Contains(low, "name") && !strings.Contains(low, "father")) ||
			(strings.Contains(ln, "नाम") && !strings.Contains(ln, "पिता")) {
			if nameLabel < 0 {
				nameLabel = i
			}
		}
		if strings.Contains(low, "father") || strings.Contains(ln, "पिता") {
			if fatherLabel < 0 {
				fatherLabel = i
			}
		}
	}

	var name, father string
	if nameLabel >= 0 && nameLabel+1 < len(lines) {
		if cand := CleanPersonName(lines[nameLabel+1]); runeLen(cand) >= 3 {
			name = cand
		}
	}
	if fatherLabel >= 0 && fatherLabel+1 < len(lines) {
		if cand := CleanPersonName(lines[fatherLabel+1]); runeLen(cand) >= 3 {
			father = cand
		}
	}

	if name == "" {
		if panIdx >= 0 {
			above := lines[max(0, panIdx-4):panIdx]
			below := lines[panIdx+1 : min(len(lines), panIdx+5)]
			name = firstNonEmpty(
				pickAlpha(reversed(above)),
				pickAlpha(above),
				pickAlpha(below),
			)
		} else {
			for _, ln := range lines {
				if upperRunRe.MatchString(ln) && runeLen(nonNameSpaceRe.ReplaceAllString(ln, "")) > 3 {
					name = CleanPersonName(ln)
					break
				}
			}
		}
	}

	if father == "" && panIdx >= 0 {
		above := lines[max(0, panIdx-6):panIdx]
		below := lines[panIdx+1 : min(len(lines), panIdx+6)]
		father = firstNonEmpty(pickAlpha(below), pickAlpha(above))
	}

	// the same line read under both labels is a mislabel, not a shared name
	if name != "" && father != "" && sameName(name, father) {
		father = ""
	}

	out.Name = models.Str(name)
	out.FatherName = models.Str(father)
	return out
}

// pickAlpha returns the longest boilerplate-free, alphabetic candidate.
func pickAlpha(cands []string) string {
	best := ""
	for _, s := range cands {
		if s == "" || panNoiseRe.MatchString(s) || letterCount(s) < 4 {
			continue
		}
		if c := CleanPersonName(s); runeLen(c) > runeLen(best) {
			best = c
		}
	}
	return best
}

func sameName(a, b string) bool {
	return strings.ToLower(strings.TrimSpace(a)) == strings.ToLower(strings.TrimSpace(b))
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
