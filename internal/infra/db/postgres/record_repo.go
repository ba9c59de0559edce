package postgres

import (
    "context"
    "database/sql"
    "encoding/json"
    "fmt"
    "time"

    domain "github.com/bryanwahyu/ip-inspection/internal/domain/inspection"
)

type RecordRepository struct {
    db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
    return &RecordRepository{db: db}
}

// Save inserts one inspection record
func (r *RecordRepository) Save(ctx context.Context, rec *domain.Record) error {
    const q = `
INSERT INTO inspection_records
  (id, user_id, ip_addresses, location, query_info, ai_result, score, snapshot_url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);
`
    addrs, err := json.Marshal(rec.Addresses)
    if err != nil { return fmt.Errorf("encode ip_addresses: %w", err) }
    result, err := json.Marshal(rec.Result)
    if err != nil { return fmt.Errorf("encode ai_result: %w", err) }
    snapshot := []byte(rec.Snapshot)
    if len(snapshot) == 0 { snapshot = []byte("{}") }
    created := rec.CreatedAt
    if created.IsZero() { created = time.Now() }

    _, err = r.db.ExecContext(ctx, q,
        rec.ID, rec.UserID, string(addrs), stringOrDash(rec.Location),
        string(snapshot), string(result), rec.Result.ScoreValue(), rec.SnapshotURL, created,
    )
    return err
}

// LatestByUser returns a user's records ordered by created_at desc
func (r *RecordRepository) LatestByUser(ctx context.Context, userID string, limit int) ([]*domain.Record, error) {
    if limit <= 0 { limit = 20 }
    const q = `
SELECT id, user_id, ip_addresses, location, query_info, ai_result, snapshot_url, created_at
FROM inspection_records
WHERE user_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2;
`
    rows, err := r.db.QueryContext(ctx, q, userID, limit)
    if err != nil { return nil, err }
    defer rows.Close()

    var out []*domain.Record
    for rows.Next() {
        var rec domain.Record
        var addrs, snapshot, result []byte
        if err := rows.Scan(&rec.ID, &rec.UserID, &addrs, &rec.Location, &snapshot, &result, &rec.SnapshotURL, &rec.CreatedAt); err != nil {
            return nil, err
        }
        if err := json.Unmarshal(addrs, &rec.Addresses); err != nil {
            return nil, fmt.Errorf("decode ip_addresses of %s: %w", rec.ID, err)
        }
        if err := json.Unmarshal(result, &rec.Result); err != nil {
            return nil, fmt.Errorf("decode ai_result of %s: %w", rec.ID, err)
        }
        rec.Snapshot = domain.Snapshot(snapshot)
        out = append(out, &rec)
    }
    return out, rows.Err()
}
