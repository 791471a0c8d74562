// Package similarity compares names and dates of birth read from identity
// documents.
package similarity

import (
	"math"
	"regexp"
	"strings"
)

// Name match statuses.
const (
	StatusVerified = "verified"
	StatusReview   = "review"
	StatusMismatch = "mismatch"
	StatusUnknown  = "unknown"
)

const (
	verifiedThreshold = 85
	reviewThreshold   = 60
	oneSidedScore     = 40
)

var (
	nonNameCharRe = regexp.MustCompile(`[^A-Za-z\x{0900}-\x{097F}\s]`)
	spaceRunRe    = regexp.MustCompile(`\s+`)
)

// NameMatch is the outcome of comparing two names. Score is nil when neither
// name was available.
type NameMatch struct {
	Score  *float64 `json:"score"`
	Status string   `json:"status"`
}

// Algorithm scores two non-empty names on a 0..100 scale.
type Algorithm interface {
	Name() string
	Score(a, b string) float64
}

// Scorer compares names with an algorithm chosen once at construction.
type Scorer struct {
	alg Algorithm
}

// NewScorer builds a Scorer for the named algorithm ("fuzzy" or "exact").
// Unknown names fall back to fuzzy matching.
func NewScorer(algorithm string) *Scorer {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "exact":
		return &Scorer{alg: ExactAlgorithm{}}
	default:
		return &Scorer{alg: NewFuzzyAlgorithm()}
	}
}

// Algorithm reports the active algorithm name.
func (s *Scorer) Algorithm() string { return s.alg.Name() }

// CompareNames compares two names. Names equal after normalization always
// score 100 regardless of algorithm. A single missing name scores 40 and
// needs review; two missing names are unknown.
func (s *Scorer) CompareNames(a, b string) NameMatch {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" && b == "" {
		return NameMatch{Status: StatusUnknown}
	}
	if a == "" || b == "" {
		score := float64(oneSidedScore)
		return NameMatch{Score: &score, Status: StatusReview}
	}

	na, nb := NormalizeName(a), NormalizeName(b)
	if na != "" && na == nb {
		return newMatch(100)
	}

	return newMatch(round2(s.alg.Score(a, b)))
}

func newMatch(score float64) NameMatch {
	return NameMatch{Score: &score, Status: StatusFor(score)}
}

// StatusFor maps a 0..100 score to a match status.
func StatusFor(score float64) string {
	switch {
	case score >= verifiedThreshold:
		return StatusVerified
	case score >= reviewThreshold:
		return StatusReview
	default:
		return StatusMismatch
	}
}

// NormalizeName keeps letters and spaces, lower-cases and collapses
// whitespace.
func NormalizeName(s string) string {
	s = nonNameCharRe.ReplaceAllString(strings.TrimSpace(s), " ")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ExactAlgorithm is the fallback used when fuzzy matching is disabled:
// case-insensitive equality scores 100, anything else lands in review.
type ExactAlgorithm struct{}

func (ExactAlgorithm) Name() string { return "exact" }

func (ExactAlgorithm) Score(a, b string) float64 {
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return 100
	}
	return 60
}
