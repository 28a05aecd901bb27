package ingest

import "github.com/civicgrid/regionpulse/internal/domain"

// identityColumns are the non-numeric columns every category keeps.
var identityColumns = map[string]bool{
	"state":    true,
	"district": true,
	"date":     true,
	"category": true,
}

// AllowedFields returns the numeric fields legal for a category label.
// Unknown categories fall back to the catch-all bucket, which allows none.
func AllowedFields(category string) []string {
	return domain.CategoryByLabel(category).Fields
}

// FilterRow retains only the columns legal for the category: the identity
// columns plus the category's allowed numeric fields. Everything else is
// dropped, including numeric fields that are legal for other categories, so
// one category's upload can never contribute a column to another's table.
func FilterRow(row map[string]string, cat domain.Category) map[string]string {
	allowed := make(map[string]bool, len(cat.Fields))
	for _, f := range cat.Fields {
		allowed[f] = true
	}

	out := make(map[string]string, len(cat.Fields)+len(identityColumns))
	for k, v := range row {
		if identityColumns[k] || allowed[k] {
			out[k] = v
		}
	}
	return out
}
