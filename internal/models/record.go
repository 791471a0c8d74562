package models

import "time"

// Record review states.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// Risk levels produced by the fraud scorer.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// Verification carries the Aadhaar-vs-PAN name comparison stored on a record.
type Verification struct {
	SimilarityScore  *float64 `json:"similarity_score"`
	SimilarityStatus string   `json:"similarity_status,omitempty"`
}

// FraudResult is the risk assessment attached to a record before persistence.
type FraudResult struct {
	FraudScore int      `json:"fraud_score"`
	RiskLevel  string   `json:"risk_level"`
	Flags      []string `json:"flags"`
	FlagsText  string   `json:"flags_text"`
	Confidence int      `json:"confidence"`
}

// IdentityRecord is a submitted KYC record. Identifiers are stored masked;
// after creation only Status changes.
type IdentityRecord struct {
	ID            string       `json:"_id" gorm:"primaryKey;size:64"`
	UserName      string       `json:"user_name" gorm:"size:255;index"`
	AadhaarMasked string       `json:"aadhaar_masked,omitempty" gorm:"size:32;index"`
	PANMasked     string       `json:"pan_masked,omitempty" gorm:"size:32;index"`
	AadhaarOCR    ParsedFields `json:"aadhaar_ocr" gorm:"serializer:json"`
	PANOCR        ParsedFields `json:"pan_ocr" gorm:"serializer:json"`
	Verification  Verification `json:"verification_result" gorm:"serializer:json"`
	Fraud         FraudResult  `json:"fraud_result" gorm:"serializer:json"`
	DOB           string       `json:"dob,omitempty" gorm:"size:32"`
	Gender        string       `json:"gender,omitempty" gorm:"size:32"`
	Status        string       `json:"status" gorm:"size:20;default:'Pending';index"`
	CreatedAt     time.Time    `json:"timestamp" gorm:"index"`
}

// TableName pins the collection name used by the original deployment.
func (IdentityRecord) TableName() string { return "kyc_records" }

// VerificationLog records one /verify_identity or /analyze outcome.
type VerificationLog struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	UserName         string         `json:"user_name" gorm:"size:255"`
	IdentityVerified *bool          `json:"identity_verified,omitempty"`
	NameChecks       map[string]any `json:"name_checks,omitempty" gorm:"serializer:json"`
	FaceMatch        map[string]any `json:"face_match,omitempty" gorm:"serializer:json"`
	FraudScore       *int           `json:"fraud_score,omitempty"`
	RiskLevel        string         `json:"risk_level,omitempty" gorm:"size:16"`
	Decision         string         `json:"decision,omitempty" gorm:"size:16"`
	DeviceInfo       string         `json:"device_info,omitempty" gorm:"type:text"`
	CreatedAt        time.Time      `json:"timestamp" gorm:"index"`
}

func (VerificationLog) TableName() string { return "verification_logs" }

// FraudAlert is written for every HIGH risk analysis.
type FraudAlert struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserName   string    `json:"user_name" gorm:"size:255"`
	FraudScore int       `json:"fraud_score"`
	Reasons    []string  `json:"reasons" gorm:"serializer:json"`
	CreatedAt  time.Time `json:"timestamp" gorm:"index"`
}

func (FraudAlert) TableName() string { return "fraud_alerts" }
