package repository

import (
	"context"
	"time"
)

// Category groups phone numbers.
type Category struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	PhoneCount  int       `db:"phone_count"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// CreateParams contains parameters for creating a category.
type CreateParams struct {
	Name        string
	Description *string
}

// UpdateParams contains parameters for updating a category.
// Nil fields are left unchanged.
type UpdateParams struct {
	ID          int64
	Name        *string
	Description *string
}

// CategoryReader provides read operations for categories.
type CategoryReader interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id int64) (Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// CategoryWriter provides write operations for categories.
type CategoryWriter interface {
	Create(ctx context.Context, params CreateParams) (Category, error)
	Update(ctx context.Context, params UpdateParams) (Category, error)
	Delete(ctx context.Context, id int64) error
	// EnsureByName inserts the category unless one with the same name exists.
	EnsureByName(ctx context.Context, params CreateParams) (Category, bool, error)
}

// Repository combines all category repository operations.
type Repository interface {
	CategoryReader
	CategoryWriter
}
