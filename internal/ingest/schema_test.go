package ingest

import (
	"reflect"
	"testing"
)

func TestCleanHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"State Name", "state_name"},
		{" Age 0-5 ", "age_0_5"},
		{"IN_MIGRATION", "in_migration"},
		{"date", "date"},
	}
	for _, tt := range tests {
		if got := CleanHeader(tt.in); got != tt.want {
			t.Errorf("CleanHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalizeHeadersRenamesFirstSynonym(t *testing.T) {
	renames := CanonicalizeHeaders([]string{"st_name", "dist", "created_at", "0_5"})

	want := map[string]string{
		"st_name":    "state",
		"dist":       "district",
		"created_at": "date",
		"0_5":        "age_0_5",
	}
	if !reflect.DeepEqual(renames, want) {
		t.Errorf("renames = %v, want %v", renames, want)
	}
}

func TestCanonicalizeHeadersKeepsCanonicalUntouched(t *testing.T) {
	// "state" is already present; "province" must not be renamed onto it.
	renames := CanonicalizeHeaders([]string{"state", "province"})
	if _, ok := renames["province"]; ok {
		t.Errorf("province renamed despite canonical state present: %v", renames)
	}
	if _, ok := renames["state"]; ok {
		t.Errorf("canonical state renamed: %v", renames)
	}
}

func TestResolveHeadersPreservesOrder(t *testing.T) {
	got := ResolveHeaders([]string{"St Name", "District", "Enrolment Date", "pincode"})
	want := []string{"state", "district", "date", "pincode"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveHeaders = %v, want %v", got, want)
	}
}
