package ingest

import (
	"testing"

	"github.com/civicgrid/regionpulse/internal/domain"
)

func TestFilterRowEnforcesAllowList(t *testing.T) {
	row := map[string]string{
		"state":         "kerala",
		"district":      "ernakulam",
		"date":          "2025-06-01",
		"category":      "Enrolment Density",
		"age_0_5":       "5",
		"age_5_18":      "3",
		"age_18_plus":   "2",
		"demo_updates":  "9", // legal for Update Activity, not here
		"bio_updates":   "4",
		"in_migration":  "7",
		"out_migration": "1",
		"pincode":       "682001",
	}

	for _, cat := range domain.Categories {
		allowed := make(map[string]bool)
		for _, f := range cat.Fields {
			allowed[f] = true
		}

		got := FilterRow(row, cat)
		for k := range got {
			if !identityColumns[k] && !allowed[k] {
				t.Errorf("%s: field %q leaked through filter", cat.Label, k)
			}
		}
		if _, ok := got["pincode"]; ok {
			t.Errorf("%s: pincode survived filtering", cat.Label)
		}
		for _, f := range cat.Fields {
			if _, ok := got[f]; !ok {
				t.Errorf("%s: allowed field %q dropped", cat.Label, f)
			}
		}
	}
}

func TestAllowedFieldsUnknownCategory(t *testing.T) {
	if fields := AllowedFields("Mystery Data"); len(fields) != 0 {
		t.Errorf("unknown category allows fields %v, want none", fields)
	}
	if table := domain.CategoryByLabel("Mystery Data").Table; table != "misc_data" {
		t.Errorf("unknown category table = %q, want misc_data", table)
	}
}
