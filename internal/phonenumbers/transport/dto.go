package transport

import (
	"strings"
	"time"

	"phonebook_backend/internal/phonenumbers/importer"
	"phonebook_backend/internal/scheduler"
	"phonebook_backend/platform/phone"
)

// CategorySummary is the category joined onto a phone number response.
type CategorySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PhoneNumberResponse represents a phone number in API responses.
type PhoneNumberResponse struct {
	ID               int64           `json:"id"`
	OriginalNumber   string          `json:"original_number"`
	NormalizedNumber string          `json:"normalized_number"`
	FormattedNumber  string          `json:"formatted_number"`
	Region           string          `json:"region,omitempty"`
	WhatsAppURL      string          `json:"whatsapp_url,omitempty"`
	CategoryID       int64           `json:"category_id"`
	Category         CategorySummary `json:"category"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ListPhoneNumbersRequest holds the listing query parameters.
type ListPhoneNumbersRequest struct {
	CategoryID *int64 `form:"category_id" validate:"omitempty,gt=0"`
	Search     string `form:"search" validate:"max=50"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// PhoneNumberListResponse is one page of phone numbers.
type PhoneNumberListResponse struct {
	Items      []PhoneNumberResponse `json:"items"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// CreatePhoneNumberRequest adds a single number by hand.
type CreatePhoneNumberRequest struct {
	OriginalNumber string `json:"original_number" validate:"required,max=50"`
	CategoryID     int64  `json:"category_id" validate:"required,gt=0"`
}

// UpdatePhoneNumberRequest changes the number, the category, or both.
type UpdatePhoneNumberRequest struct {
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,max=50"`
	CategoryID  *int64  `json:"category_id,omitempty" validate:"omitempty,gt=0"`
}

// CheckRequest asks whether a number is stored. phone_number is the
// canonical field; number is accepted as an alias.
type CheckRequest struct {
	PhoneNumber string `json:"phone_number" validate:"max=50"`
	Number      string `json:"number" validate:"max=50"`
}

// Raw returns the submitted number, preferring phone_number.
func (r CheckRequest) Raw() string {
	if strings.TrimSpace(r.PhoneNumber) != "" {
		return r.PhoneNumber
	}
	return r.Number
}

// CheckResponse is the result of a single check.
type CheckResponse struct {
	Success          bool                 `json:"success"`
	Exists           bool                 `json:"exists"`
	NormalizedNumber string               `json:"normalized_number,omitempty"`
	FormattedNumber  string               `json:"formatted_number,omitempty"`
	Message          string               `json:"message"`
	Data             *PhoneNumberResponse `json:"data,omitempty"`
}

// BulkNumber is one item of a JSON bulk import.
type BulkNumber struct {
	OriginalNumber string `json:"original_number"`
	CategoryID     int64  `json:"category_id"`
}

// BulkImportRequest is the JSON bulk import body. Numbers is a pointer so an
// absent list can be told apart from an empty one.
type BulkImportRequest struct {
	Numbers *[]BulkNumber `json:"numbers"`
}

// TextImportRequest imports free text into one category.
type TextImportRequest struct {
	Text       string `json:"text" validate:"required"`
	CategoryID int64  `json:"category_id"`
	Mode       string `json:"mode" validate:"omitempty,oneof=lines scan"`
}

// UploadImportRequest holds the non-file fields of a multipart upload.
type UploadImportRequest struct {
	CategoryID int64  `form:"category_id"`
	Mode       string `form:"mode" validate:"omitempty,oneof=lines scan"`
}

// BulkImportResponse is the result of any synchronous import.
type BulkImportResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    []PhoneNumberResponse `json:"data"`
	Errors  []importer.ItemError  `json:"errors"`
	Summary importer.Summary      `json:"summary"`
	Archive *ArchiveInfo          `json:"archive,omitempty"`
}

// ArchiveInfo points at the stored copy of an uploaded file.
type ArchiveInfo struct {
	FileKey     string `json:"file_key"`
	DownloadURL string `json:"download_url,omitempty"`
}

// NormalizeRequest previews numbers without storing them.
type NormalizeRequest struct {
	Numbers []string `json:"numbers" validate:"required"`
}

// NormalizedNumber is the preview of one number.
type NormalizedNumber struct {
	Index           int           `json:"index"`
	Input           string        `json:"input"`
	Verdict         phone.Verdict `json:"verdict"`
	FormattedNumber string        `json:"formatted_number,omitempty"`
	Region          string        `json:"region,omitempty"`
	// Plausible is true when the numbering plan knows the number. It does
	// not affect whether the number can be stored.
	Plausible bool                     `json:"plausible"`
	Duplicate importer.DuplicateStatus `json:"duplicate_status"`
}

// EnqueueImportRequest queues a text import.
type EnqueueImportRequest struct {
	Text       string `json:"text" validate:"required"`
	CategoryID int64  `json:"category_id" validate:"required,gt=0"`
	Mode       string `json:"mode" validate:"omitempty,oneof=lines scan"`
}

// JobResponse reports a queued import.
type JobResponse = scheduler.JobInfo
