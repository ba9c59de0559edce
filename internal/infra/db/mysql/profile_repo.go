package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/ip-inspection/internal/domain/profile"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const selectProfile = `
SELECT id, open_id, email, name, created_at, updated_at
FROM profiles
`

func (r *ProfileRepository) FindByOpenID(ctx context.Context, openID string) (*domain.Profile, error) {
	return r.findOne(ctx, selectProfile+`WHERE open_id=? LIMIT 1;`, openID)
}

func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.findOne(ctx, selectProfile+`WHERE email=? LIMIT 1;`, email)
}

// InsertIfAbsent relies on the unique keys on email and open_id; a duplicate is a no-op.
func (r *ProfileRepository) InsertIfAbsent(ctx context.Context, p *domain.Profile) error {
	const q = `
INSERT INTO profiles (id, open_id, email, name, created_at, updated_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE id=id;
`
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	_, err := r.db.ExecContext(ctx, q, p.ID, nullIfEmpty(p.OpenID), p.Email, stringOrDash(p.Name), created, updated)
	return err
}

func (r *ProfileRepository) findOne(ctx context.Context, q string, arg any) (*domain.Profile, error) {
	var p domain.Profile
	var openID sql.NullString
	err := r.db.QueryRowContext(ctx, q, arg).Scan(&p.ID, &openID, &p.Email, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.OpenID = openID.String
	return &p, nil
}
