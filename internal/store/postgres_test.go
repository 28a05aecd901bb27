package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicgrid/regionpulse/internal/domain"
)

func setupStore(t *testing.T) (*Postgres, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return New(db), mock, func() { db.Close() }
}

func enrolmentRecords() []domain.NormalizedRecord {
	return []domain.NormalizedRecord{
		{
			State: "kerala", District: "ernakulam", Date: "2025-06-01", Category: "Enrolment Density",
			Fields: map[string]int64{"age_0_5": 5, "age_5_18": 3, "age_18_plus": 2},
		},
		{
			State: "bihar", Date: "2025-06-02", Category: "Enrolment Density",
			Fields: map[string]int64{"age_0_5": 1, "age_5_18": 0, "age_18_plus": 4},
		},
	}
}

func TestAppendBatchCommitsWholeBatch(t *testing.T) {
	s, mock, cleanup := setupStore(t)
	defer cleanup()

	cat := domain.CategoryByLabel("Enrolment Density")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "enrolment_data"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "enrolment_data"`)).
		WithArgs("kerala", "ernakulam", "2025-06-01", "Enrolment Density", int64(5), int64(3), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "enrolment_data"`)).
		WithArgs("bihar", "", "2025-06-02", "Enrolment Density", int64(1), int64(0), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.AppendBatch(context.Background(), cat, enrolmentRecords())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendBatchRollsBackOnInsertError(t *testing.T) {
	s, mock, cleanup := setupStore(t)
	defer cleanup()

	cat := domain.CategoryByLabel("Enrolment Density")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "enrolment_data"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "enrolment_data"`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.AppendBatch(context.Background(), cat, enrolmentRecords())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendBatchEmptyIsNoop(t *testing.T) {
	s, mock, cleanup := setupStore(t)
	defer cleanup()

	err := s.AppendBatch(context.Background(), domain.CategoryByLabel("Enrolment Density"), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExists(t *testing.T) {
	s, mock, cleanup := setupStore(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs("enrolment_data").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.Exists(context.Background(), "enrolment_data")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSumGroupedByState(t *testing.T) {
	s, mock, cleanup := setupStore(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT state, COALESCE(SUM(age_0_5 + age_5_18 + age_18_plus), 0) FROM "enrolment_data" GROUP BY state`)).
		WillReturnRows(sqlmock.NewRows([]string{"state", "sum"}).
			AddRow("kerala", 10).
			AddRow("bihar", 5).
			AddRow("", 99))

	totals, err := s.SumGroupedByState(context.Background(), "enrolment_data", "age_0_5 + age_5_18 + age_18_plus")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"kerala": 10, "bihar": 5}, totals, "blank states are skipped")
}

func TestSumGroupedByMonth(t *testing.T) {
	s, mock, cleanup := setupStore(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT substr(date, 1, 7) AS period`)).
		WithArgs(6).
		WillReturnRows(sqlmock.NewRows([]string{"period", "sum"}).
			AddRow("2025-06", 60).
			AddRow("2025-05", 50))

	points, err := s.SumGroupedByMonth(context.Background(), "enrolment_data", "age_0_5", 6)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2025-06", points[0].Period)
	assert.Equal(t, int64(50), points[1].Value)
}

func TestSumFields(t *testing.T) {
	s, mock, cleanup := setupStore(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM("demo_updates"), 0), COALESCE(SUM("bio_updates"), 0) FROM "update_data"`)).
		WillReturnRows(sqlmock.NewRows([]string{"a", "b"}).AddRow(12, 30))

	sums, err := s.SumFields(context.Background(), "update_data", []string{"demo_updates", "bio_updates"})
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 30}, sums)
}

func TestUploadLogRoundTrip(t *testing.T) {
	s, mock, cleanup := setupStore(t)
	defer cleanup()

	entry := domain.UploadLog{
		ID: "log-1", FileName: "a.csv", Category: "Enrolment Density",
		SizeBytes: 128, RecordCount: 3, Status: "Success", UploaderID: "u1",
		CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO upload_logs`)).
		WithArgs(entry.ID, entry.FileName, entry.Category, entry.SizeBytes,
			entry.RecordCount, entry.Status, entry.UploaderID, entry.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.InsertUploadLog(context.Background(), entry))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM upload_logs ORDER BY created_at DESC LIMIT $1`)).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "file_name", "category", "size_bytes", "record_count", "status", "uploader_id", "created_at",
		}).AddRow(entry.ID, entry.FileName, entry.Category, entry.SizeBytes,
			entry.RecordCount, entry.Status, entry.UploaderID, entry.CreatedAt))

	logs, err := s.RecentUploadLogs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entry, logs[0])

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM upload_logs`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	n, err := s.CountUploadLogs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestResetDropsEveryTable(t *testing.T) {
	s, mock, cleanup := setupStore(t)
	defer cleanup()

	for _, table := range []string{"enrolment_data", "update_data", "migration_data", "lifecycle_data", "misc_data", "upload_logs"} {
		mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "` + table + `"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS upload_logs`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Reset(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
