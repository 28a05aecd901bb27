package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/civicgrid/regionpulse/internal/domain"
)

// ErrNoValidData is returned when every row of an upload is dropped during
// normalization. Nothing is persisted in that case.
var ErrNoValidData = errors.New("file contained no valid data after cleaning")

// Store is the persistence surface the importer needs. AppendBatch must be
// atomic: either every record in the batch is persisted or none are.
type Store interface {
	AppendBatch(ctx context.Context, cat domain.Category, records []domain.NormalizedRecord) error
	InsertUploadLog(ctx context.Context, entry domain.UploadLog) error
}

// Importer reads one uploaded file, normalizes it, and appends the surviving
// records to the category's table.
type Importer struct {
	store      Store
	normalizer *Normalizer
}

func NewImporter(store Store) *Importer {
	return &Importer{store: store, normalizer: NewNormalizer()}
}

// Import ingests a complete upload. The reader must supply the whole file;
// partial uploads are the transport's problem, not ours. Returns the accepted
// and rejected row counts and the destination table.
func (imp *Importer) Import(ctx context.Context, r io.Reader, filename, categoryLabel, uploaderID string) (*domain.UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	headers, rows, err := parseTable(data, filename)
	if err != nil {
		return nil, err
	}

	cat := domain.CategoryByLabel(categoryLabel)
	records, rejected := imp.normalizer.Normalize(headers, rows, categoryLabel)
	if len(records) == 0 {
		return nil, ErrNoValidData
	}

	if err := imp.store.AppendBatch(ctx, cat, records); err != nil {
		return nil, fmt.Errorf("append batch to %s: %w", cat.Table, err)
	}

	entry := domain.UploadLog{
		ID:          "log-" + uuid.NewString(),
		FileName:    filename,
		Category:    categoryLabel,
		SizeBytes:   int64(len(data)),
		RecordCount: len(records),
		Status:      "Success",
		UploaderID:  uploaderID,
		CreatedAt:   time.Now(),
	}
	if err := imp.store.InsertUploadLog(ctx, entry); err != nil {
		// The batch is already committed; a lost log row is not worth
		// failing the upload over.
		log.Printf("[ingest] upload log write failed for %s: %v", filename, err)
	}

	log.Printf("[ingest] %s: %d accepted, %d rejected -> %s", filename, len(records), rejected, cat.Table)
	return &domain.UploadResult{Accepted: len(records), Rejected: rejected, Table: cat.Table}, nil
}

// parseTable extracts the header row and data rows from CSV or XLSX bytes,
// chosen by filename extension.
func parseTable(data []byte, filename string) ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return parseXLSX(data)
	default:
		return parseCSV(data)
	}
}

func parseCSV(data []byte) ([]string, [][]string, error) {
	reader := csv.NewReader(stripBOM(bytes.NewReader(data)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, ErrNoValidData
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func parseXLSX(data []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrNoValidData
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(all) == 0 {
		return nil, nil, ErrNoValidData
	}
	return all[0], all[1:], nil
}

// stripBOM wraps a reader to strip a UTF-8 BOM if present.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, err := r.Read(buf)
	if err != nil || n < 3 {
		return io.MultiReader(strings.NewReader(string(buf[:n])), r)
	}
	if buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}
