package postgres

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ip-inspection/internal/domain/ai"
	domain "github.com/bryanwahyu/ip-inspection/internal/domain/inspection"
)

var recordCols = []string{"id", "user_id", "ip_addresses", "location", "query_info", "ai_result", "snapshot_url", "created_at"}

func TestRecordRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	score := 7.5
	created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	rec := &domain.Record{
		ID:          "r-1",
		UserID:      "p-1",
		Addresses:   []string{"10.77.1.1"},
		Location:    "Changzhou",
		Snapshot:    json.RawMessage(`{"recordcount":0}`),
		Result:      ai.ScoreResult{Score: &score},
		SnapshotURL: "http://minio/b/snapshots/p-1/r-1.json",
		CreatedAt:   created,
	}

	mock.ExpectExec(regexp.QuoteMeta("VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)")).
		WithArgs("r-1", "p-1", `["10.77.1.1"]`, "Changzhou", `{"recordcount":0}`, `{"score":7.5}`,
			7.5, "http://minio/b/snapshots/p-1/r-1.json", created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewRecordRepository(db).Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_SaveDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO inspection_records")).
		WithArgs("r-2", "p-1", `null`, "-", `{}`, `{}`, 0.0, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewRecordRepository(db).Save(context.Background(), &domain.Record{ID: "r-2", UserID: "p-1"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_LatestByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id=$1")).
		WithArgs("p-1", 3).
		WillReturnRows(sqlmock.NewRows(recordCols).
			AddRow("r-2", "p-1", `["10.77.1.1"]`, "Changzhou", `{}`, `{"score":2}`, "", now).
			AddRow("r-1", "p-1", `["10.162.1.1","10.77.1.1"]`, "Shenzhen", `{"a":1}`, `{"analysis":"raw"}`, "", now.Add(-time.Minute)))

	list, err := NewRecordRepository(db).LatestByUser(context.Background(), "p-1", 3)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.RecordID("r-2"), list[0].ID)
	assert.Equal(t, 2.0, list[0].Result.ScoreValue())
	assert.Equal(t, []string{"10.162.1.1", "10.77.1.1"}, list[1].Addresses)
	assert.Nil(t, list[1].Result.Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_LatestByUser_BadJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM inspection_records").
		WillReturnRows(sqlmock.NewRows(recordCols).AddRow("r-9", "p-1", `not-json`, "-", `{}`, `{}`, "", time.Now()))

	_, err = NewRecordRepository(db).LatestByUser(context.Background(), "p-1", 0)

	assert.ErrorContains(t, err, "decode ip_addresses of r-9")
}
