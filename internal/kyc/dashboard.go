package kyc

import (
	"context"
	"strings"
	"time"

	"securekyc/internal/models"
)

// ListItem is one row of the back-office KYC table.
type ListItem struct {
	ID            string    `json:"id"`
	UserName      string    `json:"user_name"`
	AadhaarNumber *string   `json:"aadhaar_number"`
	PANNumber     *string   `json:"pan_number"`
	Status        string    `json:"status"`
	FraudScore    int       `json:"fraud_score"`
	CreatedAt     time.Time `json:"created_at"`
}

// List returns table rows for every record, newest first. Identifiers are
// the masked forms.
func (s *Service) List(ctx context.Context) ([]ListItem, error) {
	recs, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]ListItem, 0, len(recs))
	for _, r := range recs {
		item := ListItem{
			ID:            r.ID,
			UserName:      r.UserName,
			AadhaarNumber: models.Str(r.AadhaarMasked),
			PANNumber:     models.Str(r.PANMasked),
			Status:        r.Status,
			FraudScore:    r.Fraud.FraudScore,
			CreatedAt:     r.CreatedAt,
		}
		if item.UserName == "" {
			item.UserName = "-"
		}
		if item.Status == "" {
			item.Status = models.StatusPending
		}
		items = append(items, item)
	}
	return items, nil
}

// RiskDistribution counts documents per risk band.
type RiskDistribution struct {
	Valid  int `json:"valid"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// Summary aggregates every stored record.
type Summary struct {
	TotalDocs        int              `json:"total_docs"`
	ValidDocs        int              `json:"valid_docs"`
	HighRisk         int              `json:"high_risk"`
	AvgFraudScore    float64          `json:"avg_fraud_score"`
	RiskDistribution RiskDistribution `json:"risk_distribution"`
	OverallRisk      string           `json:"overall_risk"`
}

// DocumentBlock describes the latest submission for one document type.
type DocumentBlock struct {
	Title      string   `json:"title"`
	Status     string   `json:"status"`
	FraudScore float64  `json:"fraud_score"`
	RiskLevel  string   `json:"risk_level"`
	Reasons    []string `json:"reasons"`
}

// Dashboard is the verification dashboard payload.
type Dashboard struct {
	Summary Summary       `json:"summary"`
	Aadhaar DocumentBlock `json:"aadhaar"`
	PAN     DocumentBlock `json:"pan"`
}

// Dashboard summarises all records and describes the latest one. Each
// record counts once per document it carries, and at least once.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	recs, err := s.store.ListRecords(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	if len(recs) == 0 {
		return Dashboard{
			Summary: Summary{OverallRisk: "No KYC submissions yet"},
			Aadhaar: DocumentBlock{Title: "Aadhaar Verification", Status: "No Aadhaar submitted", RiskLevel: "Unknown", Reasons: []string{}},
			PAN:     DocumentBlock{Title: "PAN Verification", Status: "No PAN submitted", RiskLevel: "Unknown", Reasons: []string{}},
		}, nil
	}

	var sum Summary
	total := 0.0
	for _, r := range recs {
		total += float64(r.Fraud.FraudScore)
		docs := 0
		if hasOCR(r.AadhaarOCR) {
			docs++
		}
		if hasOCR(r.PANOCR) {
			docs++
		}
		docs = max(docs, 1)
		sum.TotalDocs += docs

		switch strings.ToUpper(r.Fraud.RiskLevel) {
		case models.RiskLow:
			sum.ValidDocs += docs
			sum.RiskDistribution.Valid += docs
		case models.RiskHigh:
			sum.HighRisk += docs
			sum.RiskDistribution.High += docs
		default:
			sum.RiskDistribution.Medium += docs
		}
	}
	sum.AvgFraudScore = total / float64(len(recs))

	switch {
	case sum.RiskDistribution.High > 0:
		sum.OverallRisk = "High Risk – Immediate manual review required"
	case sum.RiskDistribution.Medium > 0:
		sum.OverallRisk = "Medium Risk – Manual review recommended"
	default:
		sum.OverallRisk = "Low Risk – Auto-approval possible"
	}

	latest := recs[0].Fraud
	risk := strings.ToUpper(latest.RiskLevel)
	if risk == "" {
		risk = models.RiskLow
	}
	status := "Invalid Document"
	if risk == models.RiskLow {
		status = "Valid Document"
	}

	block := func(title string) DocumentBlock {
		return DocumentBlock{
			Title:      title,
			Status:     status,
			FraudScore: float64(latest.FraudScore),
			RiskLevel:  humanRisk(risk),
			Reasons:    latestReasons(latest.Flags, risk),
		}
	}
	return Dashboard{
		Summary: sum,
		Aadhaar: block("Aadhaar Verification"),
		PAN:     block("PAN Verification"),
	}, nil
}

func hasOCR(p models.ParsedFields) bool {
	if p.DocType != "" || p.RawText != "" || p.Error != "" {
		return true
	}
	for _, f := range []string{models.FieldName, models.FieldDOB, models.FieldIDNumber, models.FieldGender, models.FieldFatherName} {
		if p.Has(f) {
			return true
		}
	}
	return false
}

func humanRisk(risk string) string {
	switch risk {
	case models.RiskLow:
		return "Low"
	case models.RiskMedium:
		return "Medium"
	case models.RiskHigh:
		return "High"
	}
	return "Unknown"
}

func latestReasons(flags []string, risk string) []string {
	reasons := make([]string, 0, len(flags))
	for _, f := range flags {
		if f != "" {
			reasons = append(reasons, f)
		}
	}
	if len(reasons) > 0 {
		return reasons
	}
	switch risk {
	case models.RiskLow:
		return []string{"No major anomalies detected in latest KYC submission."}
	case models.RiskMedium:
		return []string{"Some checks require manual review for the latest KYC."}
	case models.RiskHigh:
		return []string{"Multiple red flags detected in the latest KYC checks."}
	}
	return []string{}
}
