package fraud

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"securekyc/internal/models"
	"securekyc/internal/similarity"
)

// Decisions returned by Analyze.
const (
	DecisionApprove = "APPROVE"
	DecisionReview  = "REVIEW"
	DecisionReject  = "REJECT"
)

const (
	pointsDOBMismatch   = 20
	pointsPANMismatch   = 15
	pointsInvalidMobile = 10
	pointsMissingUpload = 10
)

var (
	mobileRe   = regexp.MustCompile(`^[6-9]\d{9}$`)
	dobSepRe   = regexp.MustCompile(`[/.]`)
	panSpaceRe = regexp.MustCompile(`\s+`)
)

// Submission is the input to a cross-document consistency check. A nil
// document means the file was not uploaded.
type Submission struct {
	UserName  string
	DOB       string
	Mobile    string
	PANNumber string

	Aadhaar *models.ParsedFields
	PAN     *models.ParsedFields
	DL      *models.ParsedFields
}

// Analysis is the outcome of Analyze.
type Analysis struct {
	FraudScore int      `json:"fraud_score"`
	RiskLevel  string   `json:"risk_level"`
	Decision   string   `json:"decision"`
	Reasons    []string `json:"reasons"`
}

type analysis struct {
	scorer  *similarity.Scorer
	score   int
	reasons []string
}

func (a *analysis) add(points int, reason string) {
	a.score += points
	a.reasons = append(a.reasons, reason)
}

// Analyze runs the cross-document consistency check used before a reviewer
// decision. The driving licence takes part in name checks but its date of
// birth is ignored.
func Analyze(scorer *similarity.Scorer, sub Submission) Analysis {
	a := &analysis{scorer: scorer, reasons: []string{}}

	aadhaarName := nameOf(sub.Aadhaar)
	panName := nameOf(sub.PAN)
	dlName := nameOf(sub.DL)
	user := strings.TrimSpace(sub.UserName)

	a.nameCheck("User vs Aadhaar", user, aadhaarName)
	a.nameCheck("User vs PAN", user, panName)
	a.nameCheck("Aadhaar vs PAN", aadhaarName, panName)
	a.nameCheck("User vs DL", user, dlName)
	a.nameCheck("Aadhaar vs DL", aadhaarName, dlName)
	a.nameCheck("PAN vs DL", panName, dlName)

	a.dobCheck([]dobSource{
		{"user", normalizeDOB(sub.DOB)},
		{"aadhaar", normalizeDOB(fieldOf(sub.Aadhaar, models.FieldDOB))},
		{"pan", normalizeDOB(fieldOf(sub.PAN, models.FieldDOB))},
	})

	formPAN := strings.TrimSpace(sub.PANNumber)
	ocrPAN := fieldOf(sub.PAN, models.FieldIDNumber)
	if formPAN != "" && ocrPAN != "" {
		if canonicalPAN(formPAN) != canonicalPAN(ocrPAN) {
			a.add(pointsPANMismatch, "PAN number from form does not match PAN card OCR")
		} else {
			a.add(0, "PAN number matches OCR")
		}
	}

	if mobile := strings.TrimSpace(sub.Mobile); mobile != "" && !mobileRe.MatchString(mobile) {
		a.add(pointsInvalidMobile, "Mobile number looks invalid for Indian format")
	}

	if sub.Aadhaar == nil {
		a.add(pointsMissingUpload, "Aadhaar not uploaded")
	}
	if sub.PAN == nil {
		a.add(pointsMissingUpload, "PAN not uploaded")
	}

	score := clamp(a.score)
	risk := RiskFor(score)
	return Analysis{
		FraudScore: score,
		RiskLevel:  risk,
		Decision:   DecisionFor(risk),
		Reasons:    a.reasons,
	}
}

// DecisionFor maps a risk level to the suggested reviewer decision.
func DecisionFor(risk string) string {
	switch risk {
	case models.RiskHigh:
		return DecisionReject
	case models.RiskMedium:
		return DecisionReview
	default:
		return DecisionApprove
	}
}

func (a *analysis) nameCheck(label, x, y string) {
	if x == "" || y == "" {
		return
	}
	m := a.scorer.CompareNames(x, y)
	sc := 0.0
	if m.Score != nil {
		sc = *m.Score
	}
	pct := strconv.FormatFloat(sc, 'f', -1, 64)
	switch m.Status {
	case similarity.StatusMismatch:
		a.add(pointsNameMismatch, fmt.Sprintf("%s: name mismatch (similarity %s%%)", label, pct))
	case similarity.StatusReview:
		a.add(pointsNameReview, fmt.Sprintf("%s: partial match (similarity %s%%)", label, pct))
	default:
		a.add(0, fmt.Sprintf("%s: names consistent (similarity %s%%)", label, pct))
	}
}

type dobSource struct {
	src string
	dob string
}

func (d dobSource) String() string { return d.src + ":" + d.dob }

// dobCheck compares every present date against the first present one.
// Single-digit differences are treated as OCR noise.
func (a *analysis) dobCheck(sources []dobSource) {
	var present []dobSource
	for _, s := range sources {
		if s.dob != "" {
			present = append(present, s)
		}
	}
	if len(present) == 0 {
		return
	}

	ref := present[0]
	var mismatches, near []dobSource
	for _, s := range present[1:] {
		switch {
		case s.dob == ref.dob:
		case similarity.DOBNearEqual(ref.dob, s.dob):
			near = append(near, s)
		default:
			mismatches = append(mismatches, s)
		}
	}

	switch {
	case len(mismatches) > 0:
		a.add(pointsDOBMismatch, fmt.Sprintf(
			"DOB mismatch across documents (excluding DL DOB): reference=%s, mismatches=%v, near_matches=%v",
			ref, mismatches, near))
	case len(near) > 0:
		a.add(0, fmt.Sprintf(
			"DOB consistent across Aadhaar/PAN/user (only minor OCR variations; DL DOB ignored): canonical=%s, near_matches=%v",
			ref.dob, near))
	default:
		a.add(0, "DOB consistent (Aadhaar/PAN/user): "+ref.dob)
	}
}

func normalizeDOB(d string) string {
	return dobSepRe.ReplaceAllString(strings.TrimSpace(d), "-")
}

func canonicalPAN(s string) string {
	return strings.ToUpper(panSpaceRe.ReplaceAllString(s, ""))
}

func nameOf(p *models.ParsedFields) string {
	return fieldOf(p, models.FieldName)
}

func fieldOf(p *models.ParsedFields, field string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(models.Deref(p.Get(field)))
}
