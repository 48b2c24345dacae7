package transport

import "time"

// CreateCategoryRequest contains data for creating a new category.
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// UpdateCategoryRequest contains data for updating an existing category.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	PhoneCount  int       `json:"phone_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SeedCategory is one entry of a category seed file.
type SeedCategory struct {
	Name        string  `yaml:"name" validate:"required,max=100"`
	Description *string `yaml:"description,omitempty" validate:"omitempty,max=500"`
}

// SeedFile is the YAML document read by the seed command.
type SeedFile struct {
	Categories []SeedCategory `yaml:"categories" validate:"dive"`
}

// SeedResult reports what a seed run changed.
type SeedResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}
