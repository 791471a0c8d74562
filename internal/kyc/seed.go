package kyc

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"securekyc/internal/fraud"
	"securekyc/internal/models"
	"securekyc/internal/similarity"
)

// DemoRecord is the record seeded into an empty store.
func DemoRecord() models.IdentityRecord {
	score := 95.0
	rec := models.IdentityRecord{
		UserName:      "Demo User",
		AadhaarMasked: "1234-XXXX-5678",
		PANMasked:     "ABCDE-XX12Z",
		AadhaarOCR: models.ParsedFields{
			DocType:  models.DocAadhaar,
			Name:     models.Str("Demo User"),
			DOB:      models.Str("01/01/1980"),
			IDNumber: models.Str("123456785678"),
		},
		PANOCR: models.ParsedFields{
			DocType:    models.DocPAN,
			Name:       models.Str("DEMO USER"),
			FatherName: models.Str("FATHER NAME"),
			IDNumber:   models.Str("ABCDE1234Z"),
		},
		Verification: models.Verification{SimilarityScore: &score, SimilarityStatus: similarity.StatusVerified},
		DOB:          "01/01/1980",
		Gender:       "MALE",
		Status:       models.StatusPending,
	}
	rec.Fraud = fraud.AssessNewRecord(rec, nil, similarity.StatusVerified)
	return rec
}

// SeedDemo inserts DemoRecord when the store holds no records. It reports
// whether a record was written.
func (s *Service) SeedDemo(ctx context.Context) (bool, error) {
	recs, err := s.store.ListRecords(ctx)
	if err != nil {
		return false, fmt.Errorf("list records: %w", err)
	}
	if len(recs) > 0 {
		return false, nil
	}
	rec := DemoRecord()
	rec.CreatedAt = s.now().UTC()
	saved, err := s.store.InsertRecord(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("seed demo record: %w", err)
	}
	s.log.Info("seeded demo record", zap.String("id", saved.ID))
	return true, nil
}
