package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/civicgrid/regionpulse/internal/analytics"
	"github.com/civicgrid/regionpulse/internal/cache"
	"github.com/civicgrid/regionpulse/internal/domain"
	"github.com/civicgrid/regionpulse/internal/ingest"
)

// maxUploadBytes bounds the multipart memory buffer for file uploads.
const maxUploadBytes = 32 << 20

// AdminStore is the slice of the persistence store the HTTP layer uses
// directly: upload history and the wholesale reset.
type AdminStore interface {
	RecentUploadLogs(ctx context.Context, limit int) ([]domain.UploadLog, error)
	Reset(ctx context.Context) error
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	importer *ingest.Importer
	engine   *analytics.Engine
	admin    AdminStore
	cache    *cache.Cache
}

// NewHandlers creates a new Handlers instance. cache may be nil.
func NewHandlers(importer *ingest.Importer, engine *analytics.Engine, admin AdminStore, c *cache.Cache) *Handlers {
	return &Handlers{importer: importer, engine: engine, admin: admin, cache: c}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleUpload ingests one tabular file under a dataset category.
// Expects multipart form fields: file, dataset_type, uploader_id.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	category := r.FormValue("dataset_type")
	uploader := r.FormValue("uploader_id")

	result, err := h.importer.Import(r.Context(), file, header.Filename, category, uploader)
	if err != nil {
		if errors.Is(err, ingest.ErrNoValidData) {
			respondError(w, http.StatusBadRequest, ingest.ErrNoValidData.Error())
			return
		}
		log.Printf("[api] upload %s failed: %v", header.Filename, err)
		respondError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	h.invalidateViews(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "Success",
		"recordCount":   result.Accepted,
		"rejectedCount": result.Rejected,
		"mergedInto":    result.Table,
	})
}

// HandleAnalytics serves trend, distribution, and forecast for one category
// key (enrolment, updates, migration, lifecycle).
func (h *Handlers) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("category")
	if key == "" {
		key = "enrolment"
	}
	cacheKey := "analytics:" + domain.CategoryByKey(key).Key

	var view analytics.View
	if !h.cache.Get(r.Context(), cacheKey, &view) {
		view = h.engine.Analytics(r.Context(), key)
		h.cache.Set(r.Context(), cacheKey, view)
	}
	respondJSON(w, http.StatusOK, view)
}

// HandleMapData serves the per-state totals for every category.
func (h *Handlers) HandleMapData(w http.ResponseWriter, r *http.Request) {
	var data map[string]map[string]int64
	if !h.cache.Get(r.Context(), "mapdata", &data) {
		data = h.engine.MapData(r.Context())
		h.cache.Set(r.Context(), "mapdata", data)
	}
	respondJSON(w, http.StatusOK, data)
}

// HandleStats serves the headline totals.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.HeadlineStats(r.Context()))
}

// HandleLogs serves the recent upload history.
func (h *Handlers) HandleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	logs, err := h.admin.RecentUploadLogs(r.Context(), limit)
	if err != nil {
		// Same availability stance as the read engine: history that can't
		// be fetched renders as empty, not as an error page.
		log.Printf("[api] upload logs unavailable: %v", err)
		logs = nil
	}
	if logs == nil {
		logs = []domain.UploadLog{}
	}
	respondJSON(w, http.StatusOK, logs)
}

// HandleReset drops all data tables and the upload history.
func (h *Handlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.Reset(r.Context()); err != nil {
		log.Printf("[api] reset failed: %v", err)
		respondError(w, http.StatusInternalServerError, "reset failed")
		return
	}
	h.invalidateViews(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "Database cleared. Upload new files to restart.",
	})
}

func (h *Handlers) invalidateViews(ctx context.Context) {
	keys := []string{"mapdata"}
	for _, c := range domain.Categories {
		keys = append(keys, "analytics:"+c.Key)
	}
	h.cache.Invalidate(ctx, keys...)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
