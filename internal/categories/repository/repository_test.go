package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonebook_backend/platform/apperr"
)

func setupRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(mock), mock
}

var categoryColumns = []string{"id", "name", "description", "phone_count", "created_at", "updated_at"}

func TestList(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()
	desc := "VIP customers"

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN phone_numbers p ON p.category_id = c.id")).
		WillReturnRows(mock.NewRows(categoryColumns).
			AddRow(int64(1), "Lead", (*string)(nil), 0, now, now).
			AddRow(int64(2), "Pelanggan VIP", &desc, 12, now, now))

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Nil(t, items[0].Description)
	assert.Equal(t, "VIP customers", *items[1].Description)
	assert.Equal(t, 12, items[1].PhoneCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.id = $1")).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExists(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)")).
		WithArgs(int64(3)).
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))

	found, err := repo.Exists(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateName(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO categories (name, description)")).
		WithArgs("Lead", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "categories_name_key"})

	_, err := repo.Create(context.Background(), CreateParams{Name: "Lead"})
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
	assert.Equal(t, apperr.CodeAlreadyExists, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO categories (name, description)")).
		WithArgs("Prospek", pgxmock.AnyArg()).
		WillReturnRows(mock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
			AddRow(int64(4), "Prospek", (*string)(nil), now, now))

	c, err := repo.Create(context.Background(), CreateParams{Name: "Prospek"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock pgxmock.PgxPoolIface)
		wantKind apperr.Kind
		wantCode string
		wantErr  bool
	}{
		{
			name: "deleted",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
					WithArgs(int64(1)).
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
		},
		{
			name: "missing",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
					WithArgs(int64(1)).
					WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
			wantErr:  true,
			wantKind: apperr.KindNotFound,
			wantCode: apperr.CodeCategoryNotFound,
		},
		{
			name: "in use",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
					WithArgs(int64(1)).
					WillReturnError(&pgconn.PgError{Code: "23503"})
			},
			wantErr:  true,
			wantKind: apperr.KindConflict,
			wantCode: apperr.CodeCategoryInUse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupRepo(t)
			tt.setup(mock)

			err := repo.Delete(context.Background(), 1)
			if !tt.wantErr {
				require.NoError(t, err)
			} else {
				appErr, ok := apperr.As(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantKind, appErr.Kind)
				assert.Equal(t, tt.wantCode, appErr.Code)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDeleteUnexpectedError(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories")).
		WithArgs(int64(1)).
		WillReturnError(errors.New("conn closed"))

	err := repo.Delete(context.Background(), 1)
	require.Error(t, err)
	_, typed := apperr.As(err)
	assert.False(t, typed)
	assert.ErrorContains(t, err, "conn closed")
}

func TestEnsureByNameExisting(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (name) DO NOTHING")).
		WithArgs("Lead", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE name = $1")).
		WithArgs("Lead").
		WillReturnRows(mock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
			AddRow(int64(5), "Lead", (*string)(nil), now, now))

	c, created, err := repo.EnsureByName(context.Background(), CreateParams{Name: "Lead"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(5), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
