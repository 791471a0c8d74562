// Package kyc runs the KYC workflows: submission, cross-document analysis,
// identity verification and back-office review.
package kyc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"securekyc/internal/audit"
	"securekyc/internal/db"
	"securekyc/internal/extract"
	"securekyc/internal/fraud"
	"securekyc/internal/imageproc"
	"securekyc/internal/mask"
	"securekyc/internal/models"
	"securekyc/internal/similarity"
)

// Audit sources.
const (
	sourceKYC        = "KYC Engine"
	sourceFraud      = "Fraud Engine"
	sourceBackoffice = "Backoffice"
)

const identityVerifiedScore = 85

// Extractor reads fields from an uploaded document image.
type Extractor interface {
	Extract(ctx context.Context, doc models.DocType, data []byte) (extract.Result, error)
}

// InputError reports a request the caller must correct.
type InputError struct {
	Message string
	Missing []string
	Note    string
}

func (e *InputError) Error() string {
	if len(e.Missing) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Missing, ", "))
}

// Service coordinates extraction, scoring, persistence and the audit trail.
type Service struct {
	extractor Extractor
	store     db.Store
	audit     *audit.Emitter
	scorer    *similarity.Scorer
	log       *zap.Logger
	now       func() time.Time
}

// NewService wires a Service. A nil emitter records events in memory.
func NewService(ex Extractor, store db.Store, emitter *audit.Emitter, scorer *similarity.Scorer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if emitter == nil {
		emitter = audit.NewEmitter(audit.NewRingFeed(audit.Capacity), log)
	}
	if scorer == nil {
		scorer = similarity.NewScorer("")
	}
	return &Service{
		extractor: ex,
		store:     store,
		audit:     emitter,
		scorer:    scorer,
		log:       log.Named("kyc"),
		now:       time.Now,
	}
}

// Extract reads one document. A driving licence takes the full-text path.
func (s *Service) Extract(ctx context.Context, doc models.DocType, data []byte) (extract.Result, error) {
	res, err := s.extractor.Extract(ctx, doc, data)
	if err != nil {
		if errors.Is(err, imageproc.ErrEmptyImage) || errors.Is(err, imageproc.ErrUndecodable) {
			return extract.Result{}, &InputError{Message: fmt.Sprintf("%s: %v", doc, err)}
		}
		return extract.Result{}, err
	}
	if res.NoResult {
		s.log.Info("no usable ocr region", zap.String("doc_type", string(doc)))
	}
	return res, nil
}

func (s *Service) parse(ctx context.Context, doc models.DocType, data []byte) (*models.ParsedFields, error) {
	if len(data) == 0 {
		return nil, nil
	}
	res, err := s.Extract(ctx, doc, data)
	if err != nil {
		return nil, err
	}
	return &res.Fields, nil
}

// SubmitInput is a KYC submission. Form values override OCR.
type SubmitInput struct {
	UserName      string
	DOB           string
	Gender        string
	AadhaarNumber string
	PANNumber     string
	Aadhaar       []byte
	PAN           []byte
}

// Submit reads both documents, assesses fraud against stored records and
// saves a new Pending record with masked identifiers.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (models.IdentityRecord, error) {
	if len(in.Aadhaar) == 0 || len(in.PAN) == 0 {
		return models.IdentityRecord{}, &InputError{Message: "Missing file(s): aadhaar and pan files are required"}
	}

	aadhaar, err := s.parse(ctx, models.DocAadhaar, in.Aadhaar)
	if err != nil {
		return models.IdentityRecord{}, err
	}
	pan, err := s.parse(ctx, models.DocPAN, in.PAN)
	if err != nil {
		return models.IdentityRecord{}, err
	}

	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		userName = "unknown"
	}
	aadhaarNumber := firstNonEmpty(strings.TrimSpace(in.AadhaarNumber), models.Deref(aadhaar.IDNumber))
	panNumber := firstNonEmpty(strings.TrimSpace(in.PANNumber), models.Deref(pan.IDNumber))
	dob := firstNonEmpty(strings.TrimSpace(in.DOB), models.Deref(aadhaar.DOB), models.Deref(pan.DOB))
	gender := firstNonEmpty(strings.TrimSpace(in.Gender), models.Deref(aadhaar.Gender))

	var missing []string
	if dob == "" {
		missing = append(missing, "dob")
	}
	if gender == "" {
		missing = append(missing, "gender")
	}
	if len(missing) > 0 {
		return models.IdentityRecord{}, &InputError{
			Message: "Missing fields",
			Missing: missing,
			Note:    "DOB/gender not provided and not readable from uploaded images",
		}
	}

	var verification models.Verification
	if aadhaar.Has(models.FieldName) && pan.Has(models.FieldName) {
		m := s.scorer.CompareNames(*aadhaar.Name, *pan.Name)
		verification = models.Verification{SimilarityScore: m.Score, SimilarityStatus: m.Status}
	}

	rec := models.IdentityRecord{
		UserName:     userName,
		AadhaarOCR:   *aadhaar,
		PANOCR:       *pan,
		Verification: verification,
		DOB:          dob,
		Gender:       gender,
		Status:       models.StatusPending,
		CreatedAt:    s.now().UTC(),
	}
	if aadhaarNumber != "" {
		rec.AadhaarMasked = mask.Aadhaar(aadhaarNumber)
	}
	if panNumber != "" {
		rec.PANMasked = mask.PAN(panNumber)
	}

	existing, err := s.store.ListRecords(ctx)
	if err != nil {
		return models.IdentityRecord{}, fmt.Errorf("list records: %w", err)
	}
	rec.Fraud = fraud.AssessNewRecord(rec, existing, verification.SimilarityStatus)

	s.audit.Emit(ctx, models.EventTypeForRisk(rec.Fraud.RiskLevel), "KYC Submission",
		fmt.Sprintf("KYC saved for %s | Risk: %s | Fraud Score: %d", userName, rec.Fraud.RiskLevel, rec.Fraud.FraudScore),
		sourceKYC, map[string]any{
			"user_name":      userName,
			"risk_level":     rec.Fraud.RiskLevel,
			"fraud_score":    rec.Fraud.FraudScore,
			"aadhaar_masked": rec.AadhaarMasked,
			"pan_masked":     rec.PANMasked,
		})

	saved, err := s.store.InsertRecord(ctx, rec)
	if err != nil {
		return models.IdentityRecord{}, fmt.Errorf("insert record: %w", err)
	}
	s.log.Info("kyc record saved",
		zap.String("id", saved.ID),
		zap.String("risk_level", saved.Fraud.RiskLevel),
		zap.Int("fraud_score", saved.Fraud.FraudScore))
	return saved, nil
}

// AnalyzeInput is a "verify with AI" request. Documents are optional.
type AnalyzeInput struct {
	UserName   string
	DOB        string
	Gender     string
	Mobile     string
	PANNumber  string
	DeviceInfo string
	Aadhaar    []byte
	PAN        []byte
	DL         []byte
}

// AnalyzeOutcome is an Analysis with the parses it was computed from.
type AnalyzeOutcome struct {
	fraud.Analysis
	AadhaarParsed *models.ParsedFields `json:"aadhaar_parsed"`
	PANParsed     *models.ParsedFields `json:"pan_parsed"`
	DLParsed      *models.ParsedFields `json:"dl_parsed"`
}

// Analyze scores cross-document consistency, logs the outcome and raises an
// alert for HIGH risk.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (AnalyzeOutcome, error) {
	var out AnalyzeOutcome
	var err error
	if out.AadhaarParsed, err = s.parse(ctx, models.DocAadhaar, in.Aadhaar); err != nil {
		return AnalyzeOutcome{}, err
	}
	if out.PANParsed, err = s.parse(ctx, models.DocPAN, in.PAN); err != nil {
		return AnalyzeOutcome{}, err
	}
	if out.DLParsed, err = s.parse(ctx, models.DocDrivingLicence, in.DL); err != nil {
		return AnalyzeOutcome{}, err
	}

	userName := strings.TrimSpace(in.UserName)
	out.Analysis = fraud.Analyze(s.scorer, fraud.Submission{
		UserName:  userName,
		DOB:       strings.TrimSpace(in.DOB),
		Mobile:    strings.TrimSpace(in.Mobile),
		PANNumber: strings.TrimSpace(in.PANNumber),
		Aadhaar:   out.AadhaarParsed,
		PAN:       out.PANParsed,
		DL:        out.DLParsed,
	})

	now := s.now().UTC()
	score := out.FraudScore
	if err := s.store.InsertLog(ctx, models.VerificationLog{
		UserName:   userName,
		FraudScore: &score,
		RiskLevel:  out.RiskLevel,
		Decision:   out.Decision,
		DeviceInfo: in.DeviceInfo,
		CreatedAt:  now,
	}); err != nil {
		s.log.Warn("store verification log", zap.Error(err))
	}

	if out.RiskLevel == models.RiskHigh {
		if err := s.store.InsertAlert(ctx, models.FraudAlert{
			UserName:   userName,
			FraudScore: out.FraudScore,
			Reasons:    out.Reasons,
			CreatedAt:  now,
		}); err != nil {
			s.log.Warn("store fraud alert", zap.Error(err))
		}
	}

	s.audit.Emit(ctx, models.EventTypeForRisk(out.RiskLevel), "Fraud Verification",
		fmt.Sprintf("Fraud Score: %d%% | Risk: %s | Decision: %s", out.FraudScore, out.RiskLevel, out.Decision),
		sourceFraud, map[string]any{
			"user_name":   userName,
			"risk_level":  out.RiskLevel,
			"fraud_score": out.FraudScore,
		})
	return out, nil
}

// VerifyInput is an identity verification request.
type VerifyInput struct {
	UserName string
	Aadhaar  []byte
	PAN      []byte
	Selfie   []byte
}

// VerifyOutcome reports name checks and the placeholder face comparison.
type VerifyOutcome struct {
	UserName         string                          `json:"user_name"`
	AadhaarParsed    *models.ParsedFields            `json:"aadhaar_parsed"`
	PANParsed        *models.ParsedFields            `json:"pan_parsed"`
	NameChecks       map[string]similarity.NameMatch `json:"name_checks"`
	FaceMatch        imageproc.FaceMatch             `json:"face_match"`
	IdentityVerified bool                            `json:"identity_verified"`
	Debug            map[string][]extract.Candidate  `json:"debug"`
}

// VerifyIdentity compares the user's name with both documents and the
// documents with each other, and runs the placeholder face match between
// the selfie and the PAN image, or the Aadhaar image when no PAN was sent.
func (s *Service) VerifyIdentity(ctx context.Context, in VerifyInput) (VerifyOutcome, error) {
	out := VerifyOutcome{
		UserName:   strings.TrimSpace(in.UserName),
		NameChecks: map[string]similarity.NameMatch{},
		Debug:      map[string][]extract.Candidate{},
	}

	if len(in.Aadhaar) > 0 {
		res, err := s.Extract(ctx, models.DocAadhaar, in.Aadhaar)
		if err != nil {
			return VerifyOutcome{}, err
		}
		out.AadhaarParsed = &res.Fields
		out.Debug["aadhaar_debug"] = res.Debug
	}
	if len(in.PAN) > 0 {
		res, err := s.Extract(ctx, models.DocPAN, in.PAN)
		if err != nil {
			return VerifyOutcome{}, err
		}
		out.PANParsed = &res.Fields
		out.Debug["pan_debug"] = res.Debug
	}

	aadhaarName := nameOf(out.AadhaarParsed)
	panName := nameOf(out.PANParsed)
	if out.UserName != "" && aadhaarName != "" {
		out.NameChecks["user_vs_aadhaar"] = s.scorer.CompareNames(out.UserName, aadhaarName)
	}
	if out.UserName != "" && panName != "" {
		out.NameChecks["user_vs_pan"] = s.scorer.CompareNames(out.UserName, panName)
	}
	if aadhaarName != "" && panName != "" {
		out.NameChecks["aadhaar_vs_pan"] = s.scorer.CompareNames(aadhaarName, panName)
	}

	if len(in.Selfie) > 0 {
		idImage := in.PAN
		if len(idImage) == 0 {
			idImage = in.Aadhaar
		}
		if len(idImage) > 0 {
			out.FaceMatch = s.compareFaces(in.Selfie, idImage)
		}
	}

	for _, m := range out.NameChecks {
		if m.Score != nil && *m.Score >= identityVerifiedScore {
			out.IdentityVerified = true
			break
		}
	}

	verified := out.IdentityVerified
	checks := make(map[string]any, len(out.NameChecks))
	for k, v := range out.NameChecks {
		checks[k] = v
	}
	if err := s.store.InsertLog(ctx, models.VerificationLog{
		UserName:         out.UserName,
		IdentityVerified: &verified,
		NameChecks:       checks,
		FaceMatch:        map[string]any{"score": out.FaceMatch.Score, "matched": out.FaceMatch.Matched},
		CreatedAt:        s.now().UTC(),
	}); err != nil {
		s.log.Warn("store verification log", zap.Error(err))
	}
	return out, nil
}

func (s *Service) compareFaces(selfie, id []byte) imageproc.FaceMatch {
	a, err := imageproc.Decode(selfie)
	if err != nil {
		s.log.Warn("decode selfie", zap.Error(err))
		return imageproc.FaceMatch{}
	}
	b, err := imageproc.Decode(id)
	if err != nil {
		s.log.Warn("decode id image", zap.Error(err))
		return imageproc.FaceMatch{}
	}
	m, err := imageproc.CompareFaces(a, b)
	if err != nil {
		s.log.Warn("face match failed", zap.Error(err))
		return imageproc.FaceMatch{}
	}
	return m
}

// Records lists stored records, newest first.
func (s *Service) Records(ctx context.Context) ([]models.IdentityRecord, error) {
	return s.store.ListRecords(ctx)
}

// Record fetches one record.
func (s *Service) Record(ctx context.Context, id string) (models.IdentityRecord, error) {
	return s.store.GetRecord(ctx, id)
}

// Logs lists verification logs, newest first.
func (s *Service) Logs(ctx context.Context) ([]models.VerificationLog, error) {
	return s.store.ListLogs(ctx)
}

// Alerts lists fraud alerts, newest first.
func (s *Service) Alerts(ctx context.Context) ([]models.FraudAlert, error) {
	return s.store.ListAlerts(ctx)
}

// AuditTrail lists audit events, newest first.
func (s *Service) AuditTrail(ctx context.Context) ([]models.AuditEvent, error) {
	return s.audit.List(ctx)
}

// Approve marks a record Approved.
func (s *Service) Approve(ctx context.Context, id string) error {
	return s.decide(ctx, id, models.StatusApproved)
}

// Reject marks a record Rejected.
func (s *Service) Reject(ctx context.Context, id string) error {
	return s.decide(ctx, id, models.StatusRejected)
}

func (s *Service) decide(ctx context.Context, id, status string) error {
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	kind, title, verb := models.EventSuccess, "KYC Approved", "approved"
	if status == models.StatusRejected {
		kind, title, verb = models.EventError, "KYC Rejected", "rejected"
	}
	s.audit.Emit(ctx, kind, title, fmt.Sprintf("KYC %s %s", id, verb), sourceBackoffice,
		map[string]any{"record_id": id})
	return nil
}

func nameOf(p *models.ParsedFields) string {
	if p == nil {
		return ""
	}
	return models.Deref(p.Name)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
