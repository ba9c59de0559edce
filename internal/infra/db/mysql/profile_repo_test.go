package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/ip-inspection/internal/domain/profile"
)

var profileCols = []string{"id", "open_id", "email", "name", "created_at", "updated_at"}

func TestProfileRepository_InsertIfAbsent_AnonymousKeepsOpenIDNull(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE id=id")).
		WithArgs("p-anon", nil, "anon@test", "Anonymous", now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewProfileRepository(db).InsertIfAbsent(context.Background(), &domain.Profile{
		ID: "p-anon", Email: "anon@test", Name: "Anonymous", CreatedAt: now,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_InsertIfAbsent_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// MySQL reports 0 affected rows when the duplicate update changes nothing
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
		WithArgs("p-2", "ou_1", "a@example.com", "-", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewProfileRepository(db).InsertIfAbsent(context.Background(), &domain.Profile{
		ID: "p-2", OpenID: "ou_1", Email: "a@example.com",
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_FindByOpenID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE open_id=? LIMIT 1")).
		WithArgs("ou_1").
		WillReturnRows(sqlmock.NewRows(profileCols).AddRow("p-1", "ou_1", "a@example.com", "Alice", now, now))

	p, err := NewProfileRepository(db).FindByOpenID(context.Background(), "ou_1")

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, domain.ID("p-1"), p.ID)
	assert.Equal(t, "Alice", p.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email=? LIMIT 1")).
		WithArgs("anon@test").
		WillReturnRows(sqlmock.NewRows(profileCols).AddRow("p-anon", nil, "anon@test", "Anonymous", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE email=? LIMIT 1")).
		WithArgs("missing@test").
		WillReturnRows(sqlmock.NewRows(profileCols))

	repo := NewProfileRepository(db)
	p, err := repo.FindByEmail(context.Background(), "anon@test")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Empty(t, p.OpenID)

	p, err = repo.FindByEmail(context.Background(), "missing@test")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM profiles").WillReturnError(errors.New("connection reset"))

	_, err = NewProfileRepository(db).FindByEmail(context.Background(), "anon@test")

	assert.EqualError(t, err, "connection reset")
}
