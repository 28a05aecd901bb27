package analytics

import (
	"testing"

	"github.com/civicgrid/regionpulse/internal/domain"
)

func TestForecastNext(t *testing.T) {
	tests := []struct {
		name   string
		values []int64
		want   int64
	}{
		{"linear series continues", []int64{10, 20, 30}, 40},
		{"empty series", nil, 0},
		{"single point", []int64{42}, 0},
		{"two points", []int64{5, 15}, 25},
		{"flat series", []int64{7, 7, 7, 7}, 7},
		{"declining series floors at zero", []int64{30, 10}, 0},
		{"six month window", []int64{100, 110, 120, 130, 140, 150}, 160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := make([]domain.TrendPoint, len(tt.values))
			for i, v := range tt.values {
				series[i] = domain.TrendPoint{Period: "2025-01", Value: v}
			}
			if got := ForecastNext(series); got != tt.want {
				t.Errorf("ForecastNext(%v) = %d, want %d", tt.values, got, tt.want)
			}
		})
	}
}
