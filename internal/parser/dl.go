package parser

import (
	"regexp"
	"strings"

	"securekyc/internal/models"
)

var (
	dlPrefixedRe  = regexp.MustCompile(`(?i)\bDL[^0-9A-Za-z]{0,3}\d{1,2}[^0-9A-Za-z]{0,3}\d{4,}\b`)
	longDigitsRe  = regexp.MustCompile(`\d{9,16}`)
	dlFullNameRe  = regexp.MustCompile(`[Nn]ame[^A-Za-z0-9]{0,5}([A-Za-z\x{0900}-\x{097F}][A-Za-z\x{0900}-\x{097F}\s]{3,50})`)
	dlNameNoiseRe = regexp.MustCompile(`(?i)\b(licen|licence|driving|union|india|issued|department|transport|blood|group|organ|donor|valid|date|issue|son|daughter|wife|s/o|d/o|w/o|address|signature|government|ministry|republic)\b`)
)

const (
	weightDLLabelSameLine = 4
	weightDLLabelNextLine = 3
	weightDLGlobal        = 1
)

// ParseDrivingLicence extracts licence number, name, date of birth, address,
// issue date and validity from driving licence OCR text. Layouts vary widely
// between issuing states, so every rule is permissive.
func ParseDrivingLicence(raw string) models.ParsedFields {
	out := models.ParsedFields{DocType: models.DocDrivingLicence, RawText: raw}
	if raw == "" {
		return out
	}
	lines := nonEmptyLines(raw)
	full := strings.Join(lines, " ")

	out.IDNumber = models.Str(licenceNumber(full))

	dob, issue, valid := licenceDates(lines)
	out.DOB = models.Str(dob)
	out.IssueDate = models.Str(issue)
	out.ValidTill = models.Str(valid)

	out.Name = models.Str(licenceName(lines, full))
	out.Address = models.Str(licenceAddress(lines))
	return out
}

func licenceNumber(full string) string {
	num := dlPrefixedRe.FindString(full)
	if num == "" {
		for _, cand := range longDigitsRe.FindAllString(whitespaceRe.ReplaceAllString(full, ""), -1) {
			if len(cand) == 8 {
				continue
			}
			if len(cand) > len(num) {
				num = cand
			}
		}
	}
	if num != "" {
		if digits := nonDigitRe.ReplaceAllString(num, ""); len(digits) >= 9 {
			num = digits
		}
	}
	return num
}

// licenceDates classifies dates by the keyword on their line, then fills any
// gaps positionally from all dates on the card: earliest is DOB, latest is
// validity and the second earliest is the issue date.
func licenceDates(lines []string) (dob, issue, valid string) {
	var issues, valids []string
	for _, ln := range lines {
		low := strings.ToLower(ln)
		for _, m := range anyDateRe.FindAllString(ln, -1) {
			norm := NormalizeDate(m)
			if norm == "" {
				continue
			}
			switch {
			case strings.Contains(low, "birth") || strings.Contains(low, "dob"):
				if dob == "" {
					dob = norm
				}
			case strings.Contains(low, "issue"):
				issues = append(issues, norm)
			case strings.Contains(low, "valid") || strings.Contains(low, "till"):
				valids = append(valids, norm)
			}
		}
	}
	if u := sortedUnique(issues); len(u) > 0 {
		issue = u[0]
	}
	if u := sortedUnique(valids); len(u) > 0 {
		valid = u[len(u)-1]
	}

	if dob != "" && issue != "" && valid != "" {
		return dob, issue, valid
	}

	var all []string
	for _, ln := range lines {
		for _, m := range sepDateRe.FindAllString(ln, -1) {
			if norm := NormalizeDate(m); norm != "" {
				all = append(all, norm)
			}
		}
		for _, m := range plainDateRe.FindAllString(ln, -1) {
			if norm := NormalizeDate(m); norm != "" {
				all = append(all, norm)
			}
		}
	}
	uniq := sortedUnique(all)
	switch {
	case len(uniq) == 0:
	case len(uniq) == 1:
		dob = firstNonEmpty(dob, uniq[0])
	case len(uniq) == 2:
		dob = firstNonEmpty(dob, uniq[0])
		valid = firstNonEmpty(valid, uniq[1])
	default:
		dob = firstNonEmpty(dob, uniq[0])
		issue = firstNonEmpty(issue, uniq[1])
		valid = firstNonEmpty(valid, uniq[len(uniq)-1])
	}
	return dob, issue, valid
}

func licenceName(lines []string, full string) string {
	if m := dlFullNameRe.FindStringSubmatch(full); m != nil {
		if cand := CleanPersonName(m[1]); plausibleName(cand, 5) {
			return cand
		}
	}

	var cands []nameCandidate
	for i, ln := range lines {
		if !strings.Contains(strings.ToLower(ln), "name") {
			continue
		}
		if m := nameLabelRe.FindStringSubmatch(ln); m != nil {
			if cand := CleanPersonName(m[1]); plausibleName(cand, 0) {
				cands = append(cands, nameCandidate{weight: weightDLLabelSameLine, line: i, value: cand})
			}
		}
	}

	if len(cands) == 0 {
		label := -1
		for i, ln := range lines {
			low := strings.ToLower(ln)
			if strings.Contains(low, "name") && !strings.Contains(low, "father") && !strings.Contains(low, "guardian") {
				label = i
				break
			}
		}
		if label >= 0 && label+1 < len(lines) {
			ln := lines[label+1]
			if !dlNameNoiseRe.MatchString(ln) {
				if cand := CleanPersonName(ln); plausibleName(cand, 0) {
					cands = append(cands, nameCandidate{weight: weightDLLabelNextLine, line: label + 1, value: cand})
				}
			}
		}
	}

	if len(cands) == 0 {
		for i, ln := range lines {
			if dlNameNoiseRe.MatchString(ln) || hasDigit(ln) || letterCount(ln) < 4 {
				continue
			}
			if cand := CleanPersonName(ln); plausibleName(cand, 0) {
				cands = append(cands, nameCandidate{weight: weightDLGlobal, line: i, value: cand})
			}
		}
	}

	return bestName(cands)
}

var addressStopWords = []string{"dob", "birth", "blood", "valid", "issue"}

func licenceAddress(lines []string) string {
	idx := -1
	for i, ln := range lines {
		if strings.Contains(strings.ToLower(ln), "address") {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(lines) {
		return ""
	}
	var parts []string
	for _, ln := range lines[idx+1 : min(len(lines), idx+6)] {
		if containsAny(strings.ToLower(ln), addressStopWords) {
			break
		}
		parts = append(parts, ln)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(strings.Join(parts, " "), " "))
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
