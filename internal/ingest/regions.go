package ingest

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/civicgrid/regionpulse/internal/domain"
)

// fuzzyCutoff is the minimum normalized similarity for a fuzzy region match.
const fuzzyCutoff = 0.6

// noiseTokens are labels observed in source feeds that look like region names
// but never are: summary rows and known garbage values.
var noiseTokens = map[string]bool{
	"puttenahalli": true,
	"darbhanga":    true,
	"total":        true,
	"grand total":  true,
}

// overrideRule maps recognizable substrings of historical or abbreviated
// spellings to a canonical region. These spellings are too far from the
// canonical name in raw edit distance for fuzzy matching to catch reliably,
// or close enough to a wrong neighbor that fuzzy matching would misfire.
type overrideRule struct {
	any    []string // match when the cleaned name contains any of these
	all    []string // when set, every one of these must be present too
	target string
}

// overrideRules are evaluated top to bottom; the first match wins.
var overrideRules = []overrideRule{
	{any: []string{"daman", "dadra"}, target: "dadra and nagar haveli and daman and diu"},
	{any: []string{"orissa"}, target: "odisha"},
	{all: []string{"beng", "west"}, target: "west bengal"},
	{any: []string{"chhat"}, target: "chhattisgarh"},
	{any: []string{"pondicherry"}, target: "puducherry"},
	{any: []string{"jammu"}, target: "jammu and kashmir"},
	{any: []string{"andaman"}, target: "andaman and nicobar islands"},
	{any: []string{"nct", "delhi"}, target: "delhi"},
}

// RegionMatcher resolves raw, possibly malformed region labels to canonical
// region names. It holds only read-only reference data and is safe for
// concurrent use.
type RegionMatcher struct {
	lev *metrics.Levenshtein
}

func NewRegionMatcher() *RegionMatcher {
	return &RegionMatcher{lev: metrics.NewLevenshtein()}
}

// Resolve returns the canonical region name for raw, or ("", false) when the
// label cannot be resolved. Rules are applied in strict order: cleanup,
// rejection, substring overrides, exact match, fuzzy match.
func (m *RegionMatcher) Resolve(raw string) (string, bool) {
	clean := cleanRegionName(raw)

	if len(clean) < 3 || isAllDigits(clean) || noiseTokens[clean] {
		return "", false
	}

	for _, rule := range overrideRules {
		if rule.matches(clean) {
			return rule.target, true
		}
	}

	if domain.IsCanonicalRegion(clean) {
		return clean, true
	}

	best, bestScore := "", 0.0
	for _, candidate := range domain.CanonicalRegions {
		score := strutil.Similarity(clean, candidate, m.lev)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	if bestScore >= fuzzyCutoff {
		return best, true
	}

	return "", false
}

func (r overrideRule) matches(clean string) bool {
	for _, sub := range r.all {
		if !strings.Contains(clean, sub) {
			return false
		}
	}
	if len(r.any) == 0 {
		return len(r.all) > 0
	}
	for _, sub := range r.any {
		if strings.Contains(clean, sub) {
			return true
		}
	}
	return false
}

// cleanRegionName lowercases, trims, collapses internal whitespace, and
// expands "&" so "Jammu & Kashmir" and "jammu and kashmir" compare equal.
func cleanRegionName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "&", "and")
	return strings.Join(strings.Fields(s), " ")
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
