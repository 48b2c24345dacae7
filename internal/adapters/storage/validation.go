package storage

import (
	"fmt"
	"path"
	"strings"
)

// AllowedContentTypes defines the MIME types accepted for import files.
var AllowedContentTypes = map[string]bool{
	"text/plain":               true,
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

var extensionContentTypes = map[string]string{
	".txt":  "text/plain",
	".csv":  "text/csv",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// NormalizeContentType strips parameters such as charset and lowercases.
func NormalizeContentType(contentType string) string {
	normalized := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(normalized))
}

// ContentTypeFor returns the declared type when it is allowed, otherwise the
// type implied by the file extension. Browsers often send
// application/octet-stream for csv and xlsx files.
func ContentTypeFor(fileName, declared string) string {
	if ct := NormalizeContentType(declared); AllowedContentTypes[ct] {
		return ct
	}
	return extensionContentTypes[strings.ToLower(path.Ext(fileName))]
}

// ValidateContentType checks if the content type is allowed.
func (s *MinIOService) ValidateContentType(contentType string) error {
	return validateContentType(contentType)
}

// ValidateFileSize checks if the file size is within limits.
func (s *MinIOService) ValidateFileSize(sizeBytes int64) error {
	return validateFileSize(sizeBytes, s.maxFileSize)
}

func validateContentType(contentType string) error {
	if !AllowedContentTypes[NormalizeContentType(contentType)] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

func validateFileSize(sizeBytes, maxFileSize int64) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if maxFileSize > 0 && sizeBytes > maxFileSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, maxFileSize)
	}
	return nil
}
