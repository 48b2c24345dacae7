package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"phonebook_backend/internal/phonenumbers/service"
	"phonebook_backend/internal/phonenumbers/transport"
	"phonebook_backend/platform/apperr"
	"phonebook_backend/platform/httpkit"
	"phonebook_backend/platform/validator"
)

// Handler handles HTTP requests for phone numbers.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid phone number ID"
)

// New creates a new phone numbers handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List retrieves one page of phone numbers.
// GET /api/v1/phone-numbers
func (h *Handler) List(c *gin.Context) {
	var req transport.ListPhoneNumbersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result, "")
}

// GetByID retrieves a phone number by ID.
// GET /api/v1/phone-numbers/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result, "")
}

// Create adds a single phone number.
// POST /api/v1/phone-numbers
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreatePhoneNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result, "phone number added")
}

// Update changes a phone number.
// PUT /api/v1/phone-numbers/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdatePhoneNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result, "phone number updated")
}

// Delete removes a phone number.
// DELETE /api/v1/phone-numbers/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id)) {
		return
	}
	httpkit.OK(c, nil, "phone number deleted")
}

// Check reports whether a number is already stored.
// POST /api/v1/phone-numbers/check
func (h *Handler) Check(c *gin.Context) {
	var req transport.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	h.check(c, req.Raw())
}

// CheckByParam is Check with the number in the path.
// GET /api/v1/phone-numbers/check/:number
func (h *Handler) CheckByParam(c *gin.Context) {
	h.check(c, c.Param("number"))
}

func (h *Handler) check(c *gin.Context, raw string) {
	result, err := h.svc.Check(c.Request.Context(), raw)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusOK, result)
}

// Normalize previews numbers without storing them.
// POST /api/v1/phone-numbers/normalize
func (h *Handler) Normalize(c *gin.Context) {
	var req transport.NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Preview(c.Request.Context(), req.Numbers)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result, "")
}

// BulkImport imports a JSON batch.
// POST /api/v1/phone-numbers/bulk
func (h *Handler) BulkImport(c *gin.Context) {
	var req transport.BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("numbers must be a non-empty list").
			WithCode(apperr.CodeBatchEmptyOrMalformed))
		return
	}

	result, err := h.svc.BulkImport(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusOK, result)
}

// ImportText imports free text into one category.
// POST /api/v1/phone-numbers/bulk/text
func (h *Handler) ImportText(c *gin.Context) {
	var req transport.TextImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ImportText(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusOK, result)
}

// ImportUpload imports a txt, csv or xlsx file into one category.
// POST /api/v1/phone-numbers/bulk/upload
func (h *Handler) ImportUpload(c *gin.Context) {
	var req transport.UploadImportRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "cannot read uploaded file", nil)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	result, err := h.svc.ImportUpload(c.Request.Context(), service.Upload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	}, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusOK, result)
}

// EnqueueImport queues a text import.
// POST /api/v1/phone-numbers/bulk/jobs
func (h *Handler) EnqueueImport(c *gin.Context) {
	var req transport.EnqueueImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.EnqueueImport(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusAccepted, httpkit.Envelope{Success: true, Data: result, Message: "import queued"})
}

// GetJob reports the state of a queued import.
// GET /api/v1/phone-numbers/bulk/jobs/:id
func (h *Handler) GetJob(c *gin.Context) {
	result, err := h.svc.GetJob(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result, "")
}

// QRCode serves the WhatsApp QR code of a stored number.
// GET /api/v1/phone-numbers/:id/qr
func (h *Handler) QRCode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", "0"))
	if err != nil || size < 0 {
		httpkit.Error(c, http.StatusBadRequest, "invalid size", nil)
		return
	}

	png, err := h.svc.QRCode(c.Request.Context(), id, size)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return 0, false
	}
	return id, true
}
