package ingest

import "strings"

// fieldSynonyms maps each canonical field name to its known alternate header
// spellings, in priority order. Declaration order matters twice over: fields
// are resolved top to bottom, and within a field the first synonym present in
// the upload wins.
var fieldSynonyms = []struct {
	canonical string
	synonyms  []string
}{
	{"state", []string{"state", "st_name", "state_name", "province", "region", "state_code"}},
	{"district", []string{"district", "dist", "city", "city_dist", "district_name"}},
	{"date", []string{"date", "created_at", "timestamp", "enrolment_date", "update_date", "date_of_action"}},
	{"age_0_5", []string{"age_0_5", "0_5"}},
	{"age_5_18", []string{"age_5_18", "age_5_17", "5_18", "5_17"}},
	{"age_18_plus", []string{"age_18_plus", "age_18_greater", "18+", "18_greater"}},
	{"demo_updates", []string{"demo_updates", "demographic"}},
	{"bio_updates", []string{"bio_updates", "biometric"}},
	{"in_migration", []string{"in_migration", "migration_in"}},
	{"out_migration", []string{"out_migration", "migration_out"}},
}

// CleanHeader normalizes a single raw header: lowercase, trimmed, with spaces
// and hyphens turned into underscores.
func CleanHeader(h string) string {
	s := strings.ToLower(strings.TrimSpace(h))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// CanonicalizeHeaders returns the rename map (cleaned old name -> canonical
// name) for a header row. A field already present under its canonical name is
// never renamed, and only the first matching synonym per field is. Columns are
// never reordered or duplicated; headers not in any synonym list pass through.
func CanonicalizeHeaders(headers []string) map[string]string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[CleanHeader(h)] = true
	}

	renames := make(map[string]string)
	for _, f := range fieldSynonyms {
		if present[f.canonical] {
			continue
		}
		for _, syn := range f.synonyms {
			if present[syn] {
				renames[syn] = f.canonical
				break
			}
		}
	}
	return renames
}

// ResolveHeaders applies cleanup and synonym renaming to a header row,
// preserving column order.
func ResolveHeaders(headers []string) []string {
	renames := CanonicalizeHeaders(headers)
	resolved := make([]string, len(headers))
	for i, h := range headers {
		name := CleanHeader(h)
		if canonical, ok := renames[name]; ok {
			name = canonical
		}
		resolved[i] = name
	}
	return resolved
}
