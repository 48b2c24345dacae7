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
	categoryNotFoundMessage = "category not found"
	categoryExistsMessage   = "category name already exists"
	categoryInUseMessage    = "category still has phone numbers"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool db.Pool
}

// New creates a new categories repository.
func New(pool db.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// List retrieves all categories ordered by name, each with its phone count.
func (r *Repo) List(ctx context.Context) ([]Category, error) {
	query := `
		SELECT c.id, c.name, c.description, COUNT(p.id) AS phone_count, c.created_at, c.updated_at
		FROM categories c
		LEFT JOIN phone_numbers p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.PhoneCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return items, nil
}

// GetByID retrieves a category by its ID.
func (r *Repo) GetByID(ctx context.Context, id int64) (Category, error) {
	query := `
		SELECT c.id, c.name, c.description,
			(SELECT COUNT(*) FROM phone_numbers p WHERE p.category_id = c.id) AS phone_count,
			c.created_at, c.updated_at
		FROM categories c
		WHERE c.id = $1`

	var c Category
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.PhoneCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, apperr.NotFound(categoryNotFoundMessage).WithCode(apperr.CodeCategoryNotFound)
		}
		return Category{}, fmt.Errorf("get category by id: %w", err)
	}
	return c, nil
}

// Exists checks if a category exists by ID.
func (r *Repo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new category.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Category, error) {
	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at, updated_at`

	var c Category
	err := r.pool.QueryRow(ctx, query, params.Name, params.Description).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Category{}, apperr.Conflict(categoryExistsMessage).WithCode(apperr.CodeAlreadyExists)
		}
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Update modifies an existing category.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Category, error) {
	query := `
		UPDATE categories
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, description,
			(SELECT COUNT(*) FROM phone_numbers p WHERE p.category_id = categories.id),
			created_at, updated_at`

	var c Category
	err := r.pool.QueryRow(ctx, query, params.ID, params.Name, params.Description).
		Scan(&c.ID, &c.Name, &c.Description, &c.PhoneCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, apperr.NotFound(categoryNotFoundMessage).WithCode(apperr.CodeCategoryNotFound)
		}
		if db.IsUniqueViolation(err) {
			return Category{}, apperr.Conflict(categoryExistsMessage).WithCode(apperr.CodeAlreadyExists)
		}
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Delete removes a category. Categories still referenced by phone numbers
// are refused by the foreign key.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return apperr.Conflict(categoryInUseMessage).WithCode(apperr.CodeCategoryInUse)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(categoryNotFoundMessage).WithCode(apperr.CodeCategoryNotFound)
	}
	return nil
}

// EnsureByName inserts the category unless the name is taken. It reports
// whether a row was created.
func (r *Repo) EnsureByName(ctx context.Context, params CreateParams) (Category, bool, error) {
	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name, description, created_at, updated_at`

	var c Category
	err := r.pool.QueryRow(ctx, query, params.Name, params.Description).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err == nil {
		return c, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Category{}, false, fmt.Errorf("ensure category: %w", err)
	}

	err = r.pool.QueryRow(ctx, `SELECT id, name, description, created_at, updated_at FROM categories WHERE name = $1`, params.Name).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Category{}, false, fmt.Errorf("load existing category: %w", err)
	}
	return c, false, nil
}
