package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/civicgrid/regionpulse/internal/domain"
)

// synthesisWindowDays is the window dateless uploads are spread across so
// they still populate a usable monthly trend instead of collapsing onto a
// single day.
const synthesisWindowDays = 180

// dateLayouts are tried in order when parsing an explicit date column.
// Source feeds use day-before-month conventions.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02/01/06",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	time.RFC3339,
}

// Normalizer turns raw tabular batches into normalized, category-filtered
// records. It is a pure transformation over its inputs and the injected
// clock; the clock is used only for date synthesis and fallback.
type Normalizer struct {
	regions *RegionMatcher
	now     func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{regions: NewRegionMatcher(), now: time.Now}
}

// Normalize processes one upload batch: header canonicalization, per-row
// region resolution (unresolved rows are dropped), date normalization or
// synthesis, composite update derivation, numeric coercion, and category
// filtering. It returns the surviving records and the dropped-row count.
func (n *Normalizer) Normalize(headers []string, rows [][]string, categoryLabel string) ([]domain.NormalizedRecord, int) {
	resolved := ResolveHeaders(headers)
	cat := domain.CategoryByLabel(categoryLabel)

	colIdx := make(map[string]int, len(resolved))
	for i, name := range resolved {
		if _, seen := colIdx[name]; !seen {
			colIdx[name] = i
		}
	}
	_, hasDate := colIdx["date"]

	now := n.now()
	records := make([]domain.NormalizedRecord, 0, len(rows))
	rejected := 0

	for _, raw := range rows {
		row := make(map[string]string, len(resolved))
		for name, i := range colIdx {
			if i < len(raw) {
				row[name] = strings.TrimSpace(raw[i])
			}
		}

		state, ok := n.regions.Resolve(row["state"])
		if !ok {
			rejected++
			continue
		}

		// Split age-bracket update columns are summed into the composite
		// totals before filtering so the derived values survive it.
		deriveComposite(row, "bio_updates", "bio_age_5_17", "bio_age_17_")
		deriveComposite(row, "demo_updates", "demo_age_5_17", "demo_age_17_")

		var date string
		if hasDate {
			date = parseDate(row["date"], now)
		} else {
			date = now.AddDate(0, 0, -(len(records) % synthesisWindowDays)).Format("2006-01-02")
		}

		filtered := FilterRow(row, cat)

		fields := make(map[string]int64, len(cat.Fields))
		for _, f := range cat.Fields {
			fields[f] = coerceNumber(filtered[f])
		}

		records = append(records, domain.NormalizedRecord{
			State:    state,
			District: filtered["district"],
			Date:     date,
			Category: cat.Label,
			Fields:   fields,
		})
	}

	return records, rejected
}

// deriveComposite sums the split source columns into dst when either split
// column is present in the row.
func deriveComposite(row map[string]string, dst string, parts ...string) {
	found := false
	var total int64
	for _, p := range parts {
		v, ok := row[p]
		if !ok {
			continue
		}
		found = true
		total += coerceNumber(v)
	}
	if found {
		row[dst] = strconv.FormatInt(total, 10)
	}
}

// parseDate parses an explicit date value using day-before-month layouts.
// Unparsable values fall back to now; output is always YYYY-MM-DD.
func parseDate(val string, now time.Time) string {
	val = strings.TrimSpace(val)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return now.Format("2006-01-02")
}

// coerceNumber converts a raw cell to a non-negative count. Non-numeric and
// missing values become 0.
func coerceNumber(val string) int64 {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(f + 0.5)
}
