package domain

import "strings"

// DistributionDef describes one fixed breakdown bucket for a category:
// a display label backed by a single numeric field.
type DistributionDef struct {
	Label string
	Field string
}

// Category is the immutable definition of one dataset class: where its rows
// land, which numeric fields it is allowed to carry, and how it is broken
// down for the distribution chart.
type Category struct {
	Label        string            // upload label, e.g. "Enrolment Density"
	Key          string            // analytics query key, e.g. "enrolment"
	Table        string            // destination table name
	Fields       []string          // allowed numeric fields, in column order
	Distribution []DistributionDef // fixed breakdown; nil when none is defined
}

// SumExpr returns the category's defining field expression: the sum of all
// of its allowed numeric fields. Built only from reference data, never from
// user input, so it is safe to splice into query text.
func (c Category) SumExpr() string {
	return strings.Join(c.Fields, " + ")
}

// Categories is the fixed set of dataset classes, in display order.
var Categories = []Category{
	{
		Label:  "Enrolment Density",
		Key:    "enrolment",
		Table:  "enrolment_data",
		Fields: []string{"age_0_5", "age_5_18", "age_18_plus"},
		Distribution: []DistributionDef{
			{Label: "0-5 Yrs", Field: "age_0_5"},
			{Label: "5-18 Yrs", Field: "age_5_18"},
			{Label: "18+ Yrs", Field: "age_18_plus"},
		},
	},
	{
		Label:  "Update Activity",
		Key:    "updates",
		Table:  "update_data",
		Fields: []string{"demo_updates", "bio_updates"},
		Distribution: []DistributionDef{
			{Label: "Demographic", Field: "demo_updates"},
			{Label: "Biometric", Field: "bio_updates"},
		},
	},
	{
		Label:  "Migration Signals",
		Key:    "migration",
		Table:  "migration_data",
		Fields: []string{"in_migration", "out_migration"},
		Distribution: []DistributionDef{
			{Label: "In-Migration", Field: "in_migration"},
			{Label: "Out-Migration", Field: "out_migration"},
		},
	},
	{
		Label:  "Lifecycle Gaps",
		Key:    "lifecycle",
		Table:  "lifecycle_data",
		Fields: []string{"age_0_5"},
	},
}

// CategoryByLabel resolves an upload label to its category definition.
// Unknown labels fall back to a catch-all bucket with no numeric fields so
// that a mistyped dataset type never fails an upload or leaks columns into
// a real category's table.
func CategoryByLabel(label string) Category {
	for _, c := range Categories {
		if c.Label == label {
			return c
		}
	}
	return Category{Label: label, Key: "misc", Table: "misc_data"}
}

// CategoryByKey resolves an analytics query key ("enrolment", "updates", ...).
// Unknown keys fall back to the enrolment category so dashboard views always
// have something to render.
func CategoryByKey(key string) Category {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, c := range Categories {
		if c.Key == key {
			return c
		}
	}
	return Categories[0]
}
