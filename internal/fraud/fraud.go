// Package fraud scores KYC submissions for duplicate and mismatch signals.
// Scores are additive heuristics capped to 0..100, not probabilities.
package fraud

import (
	"strings"

	"securekyc/internal/mask"
	"securekyc/internal/models"
	"securekyc/internal/similarity"
)

// Flag codes attached to a FraudResult.
const (
	FlagDuplicateSubmission = "duplicate_submission"
	FlagDuplicateAadhaar    = "duplicate_aadhaar"
	FlagDuplicatePAN        = "duplicate_pan"
	FlagIdentifierDuplicate = "aadhaar_pan_duplicate"
	FlagNameMismatch        = "name_mismatch"
	FlagNamePartialMatch    = "name_partial_match"
)

const (
	pointsDuplicateSubmission = 30
	pointsDuplicateID         = 20
	pointsNameMismatch        = 25
	pointsNameReview          = 10

	highThreshold   = 70
	mediumThreshold = 35

	noAnomaliesNote = "No anomalies detected for this KYC submission"
)

// AssessNewRecord scores a candidate record against the records already
// stored. Duplicates are detected on masked identifiers only.
func AssessNewRecord(candidate models.IdentityRecord, existing []models.IdentityRecord, similarityStatus string) models.FraudResult {
	var (
		score   int
		flags   []string
		reasons []string
	)

	user := normalizeUser(candidate.UserName)
	var dupSubmission, dupAadhaar, dupPAN bool
	for _, old := range existing {
		sameUser := user != "" && normalizeUser(old.UserName) == user
		if matchable(candidate.AadhaarMasked) && old.AadhaarMasked == candidate.AadhaarMasked {
			dupAadhaar = true
			if sameUser {
				dupSubmission = true
			}
		}
		if matchable(candidate.PANMasked) && old.PANMasked == candidate.PANMasked {
			dupPAN = true
			if sameUser {
				dupSubmission = true
			}
		}
	}

	if dupSubmission {
		score += pointsDuplicateSubmission
		flags = append(flags, FlagDuplicateSubmission)
		reasons = append(reasons, "Duplicate submission detected")
	}
	if dupAadhaar {
		score += pointsDuplicateID
		flags = append(flags, FlagDuplicateAadhaar)
		reasons = append(reasons, "Duplicate Aadhaar detected")
	}
	if dupPAN {
		score += pointsDuplicateID
		flags = append(flags, FlagDuplicatePAN)
		reasons = append(reasons, "Duplicate PAN detected")
	}
	if dupAadhaar || dupPAN {
		flags = append(flags, FlagIdentifierDuplicate)
		reasons = append(reasons, "Aadhaar/PAN matches an existing record (duplicate)")
	}

	switch strings.ToLower(similarityStatus) {
	case similarity.StatusMismatch:
		score += pointsNameMismatch
		flags = append(flags, FlagNameMismatch)
		reasons = append(reasons, "Name on document does not closely match user input")
	case similarity.StatusReview:
		score += pointsNameReview
		flags = append(flags, FlagNamePartialMatch)
		reasons = append(reasons, "Name partially matches, manual review recommended")
	case similarity.StatusVerified:
		reasons = append(reasons, "Name on Aadhaar and PAN consistent with user input")
	}

	score = clamp(score)
	risk := RiskFor(score)
	if len(reasons) == 0 && risk == models.RiskLow {
		reasons = append(reasons, noAnomaliesNote)
	}
	if flags == nil {
		flags = []string{}
	}

	return models.FraudResult{
		FraudScore: score,
		RiskLevel:  risk,
		Flags:      flags,
		FlagsText:  strings.Join(reasons, ", "),
		Confidence: ConfidenceFor(risk),
	}
}

// matchable reports whether a masked identifier still carries digits worth
// matching on.
func matchable(masked string) bool {
	return masked != "" && masked != mask.Redacted
}

// RiskFor maps a capped score to a risk level.
func RiskFor(score int) string {
	switch {
	case score >= highThreshold:
		return models.RiskHigh
	case score >= mediumThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// ConfidenceFor returns the fixed confidence attached to a risk level.
func ConfidenceFor(risk string) int {
	switch risk {
	case models.RiskHigh:
		return 90
	case models.RiskMedium:
		return 85
	default:
		return 80
	}
}

func normalizeUser(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp(score int) int {
	return max(0, min(100, score))
}
