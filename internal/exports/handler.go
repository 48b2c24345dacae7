package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"phonebook_backend/internal/phonenumbers/repository"
	"phonebook_backend/internal/whatsapp"
	"phonebook_backend/platform/httpkit"
	"phonebook_backend/platform/logger"
	"phonebook_backend/platform/phone"
)

const (
	defaultTimezone = "UTC"
	timeLayout      = "2006-01-02 15:04:05"
	exportFileName  = "phone-numbers.csv"
)

// Source streams stored phone numbers, optionally limited to one category.
type Source interface {
	Each(ctx context.Context, categoryID *int64, fn func(repository.PhoneNumber) error) error
}

// Handler handles export requests.
type Handler struct {
	source Source
	wa     *whatsapp.Client
	log    *logger.Logger
}

// NewHandler creates a new export handler.
func NewHandler(source Source, wa *whatsapp.Client, log *logger.Logger) *Handler {
	return &Handler{source: source, wa: wa, log: log}
}

// ExportPhoneNumbersCSV streams the phone book as CSV.
// GET /api/v1/exports/phone-numbers.csv
func (h *Handler) ExportPhoneNumbersCSV(c *gin.Context) {
	categoryID, ok := parseCategoryID(c)
	if !ok {
		return
	}
	location, tzName, ok := parseTimezone(c)
	if !ok {
		return
	}

	writer, ok := startCsvResponse(c, tzName)
	if !ok {
		return
	}

	rows := 0
	err := h.source.Each(c.Request.Context(), categoryID, func(p repository.PhoneNumber) error {
		rows++
		return writer.Write(h.row(p, location))
	})
	writer.Flush()
	if err == nil {
		err = writer.Error()
	}
	if err != nil {
		// headers are already sent, the client sees a truncated file
		h.log.Error("phone number export failed", "rows", rows, "error", err)
		return
	}
	h.log.Info("phone number export completed", "rows", rows)
}

func (h *Handler) row(p repository.PhoneNumber, location *time.Location) []string {
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.OriginalNumber,
		p.NormalizedNumber,
		phone.Format(p.NormalizedNumber),
		p.Category.Name,
		h.wa.Link(p.NormalizedNumber, ""),
		p.CreatedAt.In(location).Format(timeLayout),
	}
}

func csvHeaders() []string {
	return []string{
		"ID",
		"Original Number",
		"Normalized Number",
		"Formatted Number",
		"Category",
		"WhatsApp URL",
		"Created At",
	}
}

func parseCategoryID(c *gin.Context) (*int64, bool) {
	raw := strings.TrimSpace(c.Query("category_id"))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, "invalid category_id", nil)
		return nil, false
	}
	return &id, true
}

func parseTimezone(c *gin.Context) (*time.Location, string, bool) {
	tzName := strings.TrimSpace(c.DefaultQuery("timezone", defaultTimezone))
	location, err := time.LoadLocation(tzName)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid timezone", nil)
		return nil, "", false
	}
	return location, tzName, true
}

func startCsvResponse(c *gin.Context, tzName string) (*csv.Writer, bool) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+exportFileName)

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write([]string{fmt.Sprintf("Parameters:TimeZone=%s", tzName)}); err != nil {
		return nil, false
	}
	if err := writer.Write(csvHeaders()); err != nil {
		return nil, false
	}
	return writer, true
}
