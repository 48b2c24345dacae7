package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"phonebook_backend/platform/apperr"
	"phonebook_backend/platform/db"
)

const (
	phoneNumberNotFoundMessage = "phone number not found"
	phoneNumberExistsMessage   = "phone number already exists"
	categoryNotFoundMessage    = "category not found"
	codeCheckViolation         = "23514"
)

const selectColumns = `
	p.id, p.original_number, p.normalized_number, p.category_id, c.name, p.created_at, p.updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool db.Pool
}

// New creates a new phone numbers repository.
func New(pool db.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// List retrieves one page of phone numbers, newest first, and the total count.
func (r *Repo) List(ctx context.Context, params ListParams) ([]PhoneNumber, int, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}
	var categoryParam interface{}
	if params.CategoryID != nil {
		categoryParam = *params.CategoryID
	}
	args := []interface{}{categoryParam, searchParam}

	countQuery := `
		SELECT COUNT(*)
		FROM phone_numbers p
		WHERE ($1::bigint IS NULL OR p.category_id = $1)
			AND ($2::text IS NULL OR p.original_number ILIKE $2 OR p.normalized_number ILIKE $2)`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count phone numbers: %w", err)
	}

	query := `
		SELECT` + selectColumns + `
		FROM phone_numbers p
		JOIN categories c ON c.id = p.category_id
		WHERE ($1::bigint IS NULL OR p.category_id = $1)
			AND ($2::text IS NULL OR p.original_number ILIKE $2 OR p.normalized_number ILIKE $2)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list phone numbers: %w", err)
	}
	defer rows.Close()

	items, err := scanPhoneNumbers(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetByID retrieves a phone number by its ID.
func (r *Repo) GetByID(ctx context.Context, id int64) (PhoneNumber, error) {
	query := `
		SELECT` + selectColumns + `
		FROM phone_numbers p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`

	p, err := scanPhoneNumber(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PhoneNumber{}, apperr.NotFound(phoneNumberNotFoundMessage)
		}
		return PhoneNumber{}, fmt.Errorf("get phone number by id: %w", err)
	}
	return p, nil
}

// GetByNormalizedNumber retrieves a phone number by its canonical form.
func (r *Repo) GetByNormalizedNumber(ctx context.Context, normalized string) (PhoneNumber, error) {
	query := `
		SELECT` + selectColumns + `
		FROM phone_numbers p
		JOIN categories c ON c.id = p.category_id
		WHERE p.normalized_number = $1`

	p, err := scanPhoneNumber(r.pool.QueryRow(ctx, query, normalized))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PhoneNumber{}, apperr.NotFound(phoneNumberNotFoundMessage)
		}
		return PhoneNumber{}, fmt.Errorf("get phone number by normalized number: %w", err)
	}
	return p, nil
}

// ExistsByNormalizedNumber reports whether the canonical number is stored.
func (r *Repo) ExistsByNormalizedNumber(ctx context.Context, normalized string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM phone_numbers WHERE normalized_number = $1)`, normalized).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check phone number exists: %w", err)
	}
	return exists, nil
}

// CategoryExists reports whether the category is stored.
func (r *Repo) CategoryExists(ctx context.Context, categoryID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, categoryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category exists: %w", err)
	}
	return exists, nil
}

// Each streams matching numbers oldest first.
func (r *Repo) Each(ctx context.Context, categoryID *int64, fn func(PhoneNumber) error) error {
	var categoryParam interface{}
	if categoryID != nil {
		categoryParam = *categoryID
	}

	query := `
		SELECT` + selectColumns + `
		FROM phone_numbers p
		JOIN categories c ON c.id = p.category_id
		WHERE ($1::bigint IS NULL OR p.category_id = $1)
		ORDER BY p.id ASC`

	rows, err := r.pool.Query(ctx, query, categoryParam)
	if err != nil {
		return fmt.Errorf("stream phone numbers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPhoneNumber(rows)
		if err != nil {
			return fmt.Errorf("scan phone number: %w", err)
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return rows.Err()
}

// InsertPhoneNumber stores a validated number and returns it with its
// category. A taken number is a conflict with code AlreadyExists; an unknown
// category is not found with code CategoryNotFound.
func (r *Repo) InsertPhoneNumber(ctx context.Context, raw, normalized string, categoryID int64) (PhoneNumber, error) {
	query := `
		WITH p AS (
			INSERT INTO phone_numbers (original_number, normalized_number, category_id)
			VALUES ($1, $2, $3)
			RETURNING id, original_number, normalized_number, category_id, created_at, updated_at
		)
		SELECT` + selectColumns + `
		FROM p
		JOIN categories c ON c.id = p.category_id`

	p, err := scanPhoneNumber(r.pool.QueryRow(ctx, query, raw, normalized, categoryID))
	if err != nil {
		return PhoneNumber{}, mapWriteError("insert phone number", err)
	}
	return p, nil
}

// Update modifies a phone number.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (PhoneNumber, error) {
	query := `
		WITH p AS (
			UPDATE phone_numbers
			SET original_number = COALESCE($2, original_number),
				normalized_number = COALESCE($3, normalized_number),
				category_id = COALESCE($4, category_id),
				updated_at = now()
			WHERE id = $1
			RETURNING id, original_number, normalized_number, category_id, created_at, updated_at
		)
		SELECT` + selectColumns + `
		FROM p
		JOIN categories c ON c.id = p.category_id`

	p, err := scanPhoneNumber(r.pool.QueryRow(ctx, query, params.ID, params.OriginalNumber, params.NormalizedNumber, params.CategoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PhoneNumber{}, apperr.NotFound(phoneNumberNotFoundMessage)
		}
		return PhoneNumber{}, mapWriteError("update phone number", err)
	}
	return p, nil
}

// Delete removes a phone number.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM phone_numbers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete phone number: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(phoneNumberNotFoundMessage)
	}
	return nil
}

func mapWriteError(op string, err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return apperr.Conflict(phoneNumberExistsMessage).WithCode(apperr.CodeAlreadyExists).WithOp(op)
	case db.IsForeignKeyViolation(err):
		return apperr.NotFound(categoryNotFoundMessage).WithCode(apperr.CodeCategoryNotFound).WithOp(op)
	case db.Code(err) == codeCheckViolation:
		return apperr.Validation("invalid phone number format").WithCode(apperr.CodeInvalidFormat).WithOp(op)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func scanPhoneNumber(row pgx.Row) (PhoneNumber, error) {
	var p PhoneNumber
	err := row.Scan(
		&p.ID, &p.OriginalNumber, &p.NormalizedNumber, &p.Category.ID, &p.Category.Name,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanPhoneNumbers(rows pgx.Rows) ([]PhoneNumber, error) {
	items := make([]PhoneNumber, 0)
	for rows.Next() {
		p, err := scanPhoneNumber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan phone number: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate phone numbers: %w", err)
	}
	return items, nil
}
