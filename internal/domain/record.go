package domain

import "time"

// NormalizedRecord is one cleaned, category-filtered row ready for storage.
// State always holds a canonical region name; Fields holds exactly the
// category's allowed numeric fields, with missing inputs defaulted to 0.
type NormalizedRecord struct {
	State    string           `json:"state"`
	District string           `json:"district,omitempty"`
	Date     string           `json:"date"` // YYYY-MM-DD
	Category string           `json:"category"`
	Fields   map[string]int64 `json:"fields"`
}

// TrendPoint is one aggregated value for one calendar month.
type TrendPoint struct {
	Period string `json:"name"` // YYYY-MM
	Value  int64  `json:"value"`
}

// DistributionBucket is one slice of a category's fixed breakdown.
type DistributionBucket struct {
	Label string `json:"range"`
	Count int64  `json:"count"`
}

// UploadResult summarizes one accepted upload batch.
type UploadResult struct {
	Accepted int    `json:"recordCount"`
	Rejected int    `json:"rejectedCount"`
	Table    string `json:"mergedInto"`
}

// UploadLog is one row of the upload audit history.
type UploadLog struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	Category    string    `json:"type"`
	SizeBytes   int64     `json:"sizeBytes"`
	RecordCount int       `json:"recordCount"`
	Status      string    `json:"status"`
	UploaderID  string    `json:"uploaderId"`
	CreatedAt   time.Time `json:"timestamp"`
}
