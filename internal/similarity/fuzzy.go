package similarity

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

const (
	tokenSetWeight = 0.6
	partialWeight  = 0.4
)

// FuzzyAlgorithm blends token-set similarity (word order and duplicates
// ignored) with best-window partial similarity, both built on Levenshtein.
type FuzzyAlgorithm struct {
	metric *metrics.Levenshtein
}

// NewFuzzyAlgorithm returns a case-insensitive fuzzy matcher.
func NewFuzzyAlgorithm() *FuzzyAlgorithm {
	m := metrics.NewLevenshtein()
	m.CaseSensitive = false
	return &FuzzyAlgorithm{metric: m}
}

func (f *FuzzyAlgorithm) Name() string { return "fuzzy" }

func (f *FuzzyAlgorithm) Score(a, b string) float64 {
	return tokenSetWeight*f.TokenSetRatio(a, b) + partialWeight*f.PartialRatio(a, b)
}

// Ratio is the plain Levenshtein similarity of a and b on 0..100.
func (f *FuzzyAlgorithm) Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return strutil.Similarity(a, b, f.metric) * 100
}

// TokenSetRatio compares the shared tokens of both names against each side's
// full token set. A name whose tokens are a subset of the other's scores 100.
func (f *FuzzyAlgorithm) TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tb {
		if _, ok := ta[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sect := strings.Join(common, " ")
	diffA := strings.Join(onlyA, " ")
	diffB := strings.Join(onlyB, " ")

	if sect == "" {
		return f.Ratio(diffA, diffB)
	}
	if diffA == "" || diffB == "" {
		return 100
	}

	withA := sect + " " + diffA
	withB := sect + " " + diffB
	return max(f.Ratio(sect, withA), f.Ratio(sect, withB), f.Ratio(withA, withB))
}

// PartialRatio slides the shorter name across the longer one and returns the
// best window similarity.
func (f *FuzzyAlgorithm) PartialRatio(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	s := string(short)
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		r := f.Ratio(s, string(long[i:i+len(short)]))
		if r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

func tokenSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		if utf8.RuneCountInString(tok) > 0 {
			out[tok] = struct{}{}
		}
	}
	return out
}
