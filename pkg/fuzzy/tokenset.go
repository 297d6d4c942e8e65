package fuzzy

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// TokenSet scores two strings on a 0-100 scale using a token-set ratio:
// word order is ignored and a string whose tokens are a subset of the
// other's scores as a full match on the shared portion. The base edit
// metric is pluggable via strutil.
type TokenSet struct {
	normalizer *Normalizer
	metric     strutil.StringMetric
}

func NewTokenSet() *TokenSet {
	return &TokenSet{
		normalizer: NewNormalizer(),
		metric:     metrics.NewLevenshtein(),
	}
}

// Score returns the token-set similarity between a and b in [0, 100].
// Comparison is case- and punctuation-insensitive.
func (ts *TokenSet) Score(a, b string) float64 {
	na := ts.normalizer.Normalize(a)
	nb := ts.normalizer.Normalize(b)

	if na == nb {
		if na == "" {
			return 0
		}
		return 100
	}
	if na == "" || nb == "" {
		return 0
	}

	common, onlyA, onlyB := partitionTokens(na, nb)

	base := strings.Join(common, " ")
	fullA := joinNonEmpty(base, strings.Join(onlyA, " "))
	fullB := joinNonEmpty(base, strings.Join(onlyB, " "))

	score := ts.ratio(fullA, fullB)
	if base != "" {
		if s := ts.ratio(base, fullA); s > score {
			score = s
		}
		if s := ts.ratio(base, fullB); s > score {
			score = s
		}
	}

	return 100 * score
}

func (ts *TokenSet) ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	return strutil.Similarity(a, b, ts.metric)
}

// partitionTokens splits the unique, sorted tokens of a and b into the
// shared set and the two one-sided remainders.
func partitionTokens(a, b string) (common, onlyA, onlyB []string) {
	setA := tokenSet(a)
	setB := tokenSet(b)

	for _, tok := range setA {
		if contains(setB, tok) {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for _, tok := range setB {
		if !contains(setA, tok) {
			onlyB = append(onlyB, tok)
		}
	}

	return common, onlyA, onlyB
}

func tokenSet(s string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, tok := range strings.Fields(s) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

func contains(tokens []string, tok string) bool {
	i := sort.SearchStrings(tokens, tok)
	return i < len(tokens) && tokens[i] == tok
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
