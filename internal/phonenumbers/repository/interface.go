package repository

import (
	"context"
	"time"
)

// CategoryRef is the category joined onto a phone number.
type CategoryRef struct {
	ID   int64  `db:"category_id"`
	Name string `db:"category_name"`
}

// PhoneNumber is a stored number with its category.
type PhoneNumber struct {
	ID               int64       `db:"id"`
	OriginalNumber   string      `db:"original_number"`
	NormalizedNumber string      `db:"normalized_number"`
	Category         CategoryRef `db:"-"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

// ListParams filters and pages a listing. Newest numbers come first.
type ListParams struct {
	CategoryID *int64
	Search     string
	Limit      int
	Offset     int
}

// UpdateParams contains parameters for updating a phone number.
// Nil fields are left unchanged; OriginalNumber and NormalizedNumber change
// together.
type UpdateParams struct {
	ID               int64
	OriginalNumber   *string
	NormalizedNumber *string
	CategoryID       *int64
}

// PhoneNumberReader provides read operations for phone numbers.
type PhoneNumberReader interface {
	List(ctx context.Context, params ListParams) ([]PhoneNumber, int, error)
	GetByID(ctx context.Context, id int64) (PhoneNumber, error)
	GetByNormalizedNumber(ctx context.Context, normalized string) (PhoneNumber, error)
	ExistsByNormalizedNumber(ctx context.Context, normalized string) (bool, error)
	CategoryExists(ctx context.Context, categoryID int64) (bool, error)
	// Each streams every number matching categoryID (nil for all) oldest
	// first, stopping at the first error returned by fn.
	Each(ctx context.Context, categoryID *int64, fn func(PhoneNumber) error) error
}

// PhoneNumberWriter provides write operations for phone numbers.
type PhoneNumberWriter interface {
	InsertPhoneNumber(ctx context.Context, raw, normalized string, categoryID int64) (PhoneNumber, error)
	Update(ctx context.Context, params UpdateParams) (PhoneNumber, error)
	Delete(ctx context.Context, id int64) error
}

// Repository combines all phone number repository operations.
type Repository interface {
	PhoneNumberReader
	PhoneNumberWriter
}
