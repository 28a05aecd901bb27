// Package analytics computes the aggregate views served to the dashboard:
// per-region totals, monthly trends, distribution breakdowns, and a one-step
// forecast.
//
// Read paths deliberately favor availability over strictness: a category that
// has never been uploaded, or a store that errors mid-query, degrades to
// zero/empty output instead of failing the dashboard.
package analytics

import (
	"context"
	"log"
	"time"

	"github.com/civicgrid/regionpulse/internal/domain"
)

// TrendWindow is the number of most recent monthly periods a trend covers.
const TrendWindow = 6

// Store is the query surface the engine needs from the persistence
// collaborator.
type Store interface {
	Exists(ctx context.Context, table string) (bool, error)
	SumGroupedByState(ctx context.Context, table, expr string) (map[string]int64, error)
	SumGroupedByMonth(ctx context.Context, table, expr string, limit int) ([]domain.TrendPoint, error)
	SumFields(ctx context.Context, table string, fields []string) ([]int64, error)
	CountUploadLogs(ctx context.Context) (int, error)
}

// Engine aggregates over the persisted normalized records.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// View is the combined analytics payload for one category.
type View struct {
	Trend        []domain.TrendPoint         `json:"trend"`
	Distribution []domain.DistributionBucket `json:"ageDistribution"`
	Forecast     int64                       `json:"forecast"`
}

// Stats is the headline summary across all data.
type Stats struct {
	TotalRecords  int64  `json:"totalRecords"`
	TotalDatasets int    `json:"totalDatasets"`
	LastUpdate    string `json:"lastUpdate"`
}

// RegionTotals sums the category's defining field expression per state.
// A category that was never uploaded yields an empty map.
func (e *Engine) RegionTotals(ctx context.Context, cat domain.Category) map[string]int64 {
	if !e.tableReady(ctx, cat) {
		return map[string]int64{}
	}
	totals, err := e.store.SumGroupedByState(ctx, cat.Table, cat.SumExpr())
	if err != nil {
		log.Printf("[analytics] region totals for %s unavailable: %v", cat.Table, err)
		return map[string]int64{}
	}
	return totals
}

// Trend returns the monthly series for the category, oldest period first,
// covering at most the given window of most recent periods.
func (e *Engine) Trend(ctx context.Context, cat domain.Category, window int) []domain.TrendPoint {
	if window <= 0 {
		window = TrendWindow
	}
	if !e.tableReady(ctx, cat) {
		return []domain.TrendPoint{}
	}
	recent, err := e.store.SumGroupedByMonth(ctx, cat.Table, cat.SumExpr(), window)
	if err != nil {
		log.Printf("[analytics] trend for %s unavailable: %v", cat.Table, err)
		return []domain.TrendPoint{}
	}

	// Store rows arrive most recent first; the chart wants ascending.
	points := make([]domain.TrendPoint, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		points = append(points, recent[i])
	}
	return points
}

// Distribution returns the category's fixed breakdown. Categories without a
// defined breakdown yield an empty slice.
func (e *Engine) Distribution(ctx context.Context, cat domain.Category) []domain.DistributionBucket {
	if len(cat.Distribution) == 0 || !e.tableReady(ctx, cat) {
		return []domain.DistributionBucket{}
	}

	fields := make([]string, len(cat.Distribution))
	for i, d := range cat.Distribution {
		fields[i] = d.Field
	}
	sums, err := e.store.SumFields(ctx, cat.Table, fields)
	if err != nil {
		log.Printf("[analytics] distribution for %s unavailable: %v", cat.Table, err)
		return []domain.DistributionBucket{}
	}

	buckets := make([]domain.DistributionBucket, len(cat.Distribution))
	for i, d := range cat.Distribution {
		buckets[i] = domain.DistributionBucket{Label: d.Label, Count: sums[i]}
	}
	return buckets
}

// Analytics assembles the combined view for an analytics key: trend series,
// distribution breakdown, and one-step forecast.
func (e *Engine) Analytics(ctx context.Context, categoryKey string) View {
	cat := domain.CategoryByKey(categoryKey)
	trend := e.Trend(ctx, cat, TrendWindow)
	return View{
		Trend:        trend,
		Distribution: e.Distribution(ctx, cat),
		Forecast:     ForecastNext(trend),
	}
}

// MapData returns, per state, the defining totals of every category. States
// appear as soon as any category has data for them; absent categories
// contribute zeros.
func (e *Engine) MapData(ctx context.Context) map[string]map[string]int64 {
	out := make(map[string]map[string]int64)
	for _, cat := range domain.Categories {
		for state, total := range e.RegionTotals(ctx, cat) {
			if _, ok := out[state]; !ok {
				row := make(map[string]int64, len(domain.Categories))
				for _, c := range domain.Categories {
					row[c.Key] = 0
				}
				out[state] = row
			}
			out[state][cat.Key] = total
		}
	}
	return out
}

// HeadlineStats sums enrolment and update volume plus the dataset count.
func (e *Engine) HeadlineStats(ctx context.Context) Stats {
	var total int64
	for _, key := range []string{"enrolment", "updates"} {
		cat := domain.CategoryByKey(key)
		if !e.tableReady(ctx, cat) {
			continue
		}
		sums, err := e.store.SumFields(ctx, cat.Table, cat.Fields)
		if err != nil {
			log.Printf("[analytics] stats for %s unavailable: %v", cat.Table, err)
			continue
		}
		for _, s := range sums {
			total += s
		}
	}

	datasets, err := e.store.CountUploadLogs(ctx)
	if err != nil {
		log.Printf("[analytics] upload log count unavailable: %v", err)
		datasets = 0
	}

	return Stats{
		TotalRecords:  total,
		TotalDatasets: datasets,
		LastUpdate:    time.Now().Format("02 Jan 2006"),
	}
}

func (e *Engine) tableReady(ctx context.Context, cat domain.Category) bool {
	ok, err := e.store.Exists(ctx, cat.Table)
	if err != nil {
		log.Printf("[analytics] existence check for %s failed: %v", cat.Table, err)
		return false
	}
	return ok
}
