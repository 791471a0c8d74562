package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareNamesExactFastPath(t *testing.T) {
	for _, alg := range []string{"fuzzy", "exact"} {
		t.Run(alg, func(t *testing.T) {
			got := NewScorer(alg).CompareNames("Priya Sharma", "priya   sharma")
			require.NotNil(t, got.Score)
			assert.Equal(t, 100.0, *got.Score)
			assert.Equal(t, StatusVerified, got.Status)
		})
	}
}

func TestCompareNamesMismatch(t *testing.T) {
	got := NewScorer("fuzzy").CompareNames("Amit Kumar", "Rohit Verma")
	require.NotNil(t, got.Score)
	assert.Less(t, *got.Score, 60.0)
	assert.Equal(t, StatusMismatch, got.Status)
}

func TestCompareNamesExtraMiddleInitial(t *testing.T) {
	got := NewScorer("fuzzy").CompareNames("Priya Sharma", "Priya K Sharma")
	require.NotNil(t, got.Score)
	assert.InDelta(t, 86.67, *got.Score, 0.01)
	assert.Equal(t, StatusVerified, got.Status)
}

func TestCompareNamesReorderedTokensNeedsReview(t *testing.T) {
	got := NewScorer("fuzzy").CompareNames("Sharma Priya", "Priya Sharma")
	require.NotNil(t, got.Score)
	assert.Equal(t, StatusReview, got.Status)
}

func TestCompareNamesMissing(t *testing.T) {
	s := NewScorer("fuzzy")

	one := s.CompareNames("Priya Sharma", "")
	require.NotNil(t, one.Score)
	assert.Equal(t, 40.0, *one.Score)
	assert.Equal(t, StatusReview, one.Status)

	none := s.CompareNames("", "  ")
	assert.Nil(t, none.Score)
	assert.Equal(t, StatusUnknown, none.Status)
}

func TestCompareNamesOneSidedNeedsReviewForEveryAlgorithm(t *testing.T) {
	for _, alg := range []string{"fuzzy", "exact"} {
		t.Run(alg, func(t *testing.T) {
			s := NewScorer(alg)
			for _, pair := range [][2]string{{"Priya Sharma", ""}, {"", "Priya Sharma"}} {
				got := s.CompareNames(pair[0], pair[1])
				require.NotNil(t, got.Score)
				assert.Equal(t, 40.0, *got.Score)
				assert.Equal(t, StatusReview, got.Status)
			}
		})
	}
}

func TestCompareNamesRoundsToTwoDecimals(t *testing.T) {
	got := NewScorer("fuzzy").CompareNames("Priya Sharma", "Priya Sarma")
	require.NotNil(t, got.Score)
	assert.Equal(t, round2(*got.Score), *got.Score)
	assert.GreaterOrEqual(t, *got.Score, 60.0)
}

func TestExactAlgorithmFallback(t *testing.T) {
	s := NewScorer("exact")
	assert.Equal(t, "exact", s.Algorithm())

	got := s.CompareNames("Amit Kumar", "Rohit Verma")
	require.NotNil(t, got.Score)
	assert.Equal(t, 60.0, *got.Score)
	assert.Equal(t, StatusReview, got.Status)
}

func TestTokenSetRatioSubset(t *testing.T) {
	f := NewFuzzyAlgorithm()
	assert.Equal(t, 100.0, f.TokenSetRatio("Priya Sharma", "Priya Kumari Sharma"))
}

func TestPartialRatio(t *testing.T) {
	f := NewFuzzyAlgorithm()
	assert.Equal(t, 100.0, f.PartialRatio("Sharma", "Priya Sharma"))
	assert.Equal(t, 0.0, f.PartialRatio("", "Priya"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusVerified, StatusFor(85))
	assert.Equal(t, StatusReview, StatusFor(84.99))
	assert.Equal(t, StatusReview, StatusFor(60))
	assert.Equal(t, StatusMismatch, StatusFor(59.99))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "priya sharma", NormalizeName("  Priya.  SHARMA "))
	assert.Equal(t, NormalizeName("priya sharma"), NormalizeName(NormalizeName("priya sharma")))
}
