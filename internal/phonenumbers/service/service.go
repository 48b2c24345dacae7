package service

import (
	"context"
	"strings"

	"phonebook_backend/internal/events"
	"phonebook_backend/internal/phonenumbers/importer"
	"phonebook_backend/internal/phonenumbers/repository"
	"phonebook_backend/internal/phonenumbers/transport"
	"phonebook_backend/internal/whatsapp"
	"phonebook_backend/platform/apperr"
	"phonebook_backend/platform/logger"
	"phonebook_backend/platform/phone"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	sourceSingle = "single"
)

// Config tunes validation and imports.
type Config struct {
	SinglePolicy      phone.Policy
	BulkPolicy        phone.Policy
	MaxBatchSize      int
	LookupConcurrency int
	MaxUploadBytes    int64
	ArchiveBucket     string
}

// VerdictObserver is told the reason of every verdict produced by checks and
// previews.
type VerdictObserver interface {
	Verdict(reason string)
}

// Service provides business logic for phone numbers.
type Service struct {
	repo     repository.Repository
	importer *importer.Importer[repository.PhoneNumber]
	cfg      Config
	eventBus events.Publisher
	wa       *whatsapp.Client
	log      *logger.Logger

	queue    ImportQueue
	archive  Archive
	verdicts VerdictObserver
}

// New creates a new phone numbers service.
func New(repo repository.Repository, eventBus events.Publisher, wa *whatsapp.Client, cfg Config, log *logger.Logger) *Service {
	if cfg.SinglePolicy == (phone.Policy{}) {
		cfg.SinglePolicy = phone.SinglePolicy
	}
	if cfg.BulkPolicy == (phone.Policy{}) {
		cfg.BulkPolicy = phone.BulkPolicy
	}

	return &Service{
		repo: repo,
		importer: importer.New[repository.PhoneNumber](repo, importer.Options{
			MaxBatchSize:      cfg.MaxBatchSize,
			Policy:            cfg.BulkPolicy,
			LookupConcurrency: cfg.LookupConcurrency,
		}),
		cfg:      cfg,
		eventBus: eventBus,
		wa:       wa,
		log:      log,
	}
}

// SetQueue enables queued imports.
func (s *Service) SetQueue(queue ImportQueue) { s.queue = queue }

// SetArchive enables archiving of uploaded import files.
func (s *Service) SetArchive(archive Archive) { s.archive = archive }

// SetVerdictObserver registers an observer for check and preview verdicts.
func (s *Service) SetVerdictObserver(o VerdictObserver) { s.verdicts = o }

// List retrieves one page of phone numbers, newest first.
func (s *Service) List(ctx context.Context, req transport.ListPhoneNumbersRequest) (transport.PhoneNumberListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, total, err := s.repo.List(ctx, repository.ListParams{
		CategoryID: req.CategoryID,
		Search:     strings.TrimSpace(req.Search),
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	})
	if err != nil {
		return transport.PhoneNumberListResponse{}, err
	}

	responses := make([]transport.PhoneNumberResponse, len(items))
	for i, item := range items {
		responses[i] = s.toResponse(item)
	}

	return transport.PhoneNumberListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// GetByID retrieves a phone number by ID.
func (s *Service) GetByID(ctx context.Context, id int64) (transport.PhoneNumberResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.PhoneNumberResponse{}, err
	}
	return s.toResponse(p), nil
}

// Create adds one number by hand. It uses the stricter single-add policy.
func (s *Service) Create(ctx context.Context, req transport.CreatePhoneNumberRequest) (transport.PhoneNumberResponse, error) {
	verdict := s.cfg.SinglePolicy.Validate(req.OriginalNumber)
	if !verdict.Valid {
		return transport.PhoneNumberResponse{}, apperr.Validation(verdict.Message).WithCode(apperr.CodeInvalidFormat)
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return transport.PhoneNumberResponse{}, err
	}

	p, err := s.repo.InsertPhoneNumber(ctx, strings.TrimSpace(req.OriginalNumber), verdict.Normalized, req.CategoryID)
	if err != nil {
		return transport.PhoneNumberResponse{}, categoryAsBadRequest(err)
	}

	s.log.Info("phone number created", "id", p.ID, "categoryId", p.Category.ID)
	s.eventBus.Publish(ctx, events.PhoneNumberCreated{
		BaseEvent:        events.NewBaseEvent(),
		PhoneNumberID:    p.ID,
		NormalizedNumber: p.NormalizedNumber,
		CategoryID:       p.Category.ID,
		Source:           sourceSingle,
	})
	return s.toResponse(p), nil
}

// Update changes the number, the category, or both.
func (s *Service) Update(ctx context.Context, id int64, req transport.UpdatePhoneNumberRequest) (transport.PhoneNumberResponse, error) {
	if req.PhoneNumber == nil && req.CategoryID == nil {
		return transport.PhoneNumberResponse{}, apperr.BadRequest("nothing to update")
	}

	params := repository.UpdateParams{ID: id, CategoryID: req.CategoryID}
	if req.PhoneNumber != nil {
		verdict := s.cfg.SinglePolicy.Validate(*req.PhoneNumber)
		if !verdict.Valid {
			return transport.PhoneNumberResponse{}, apperr.Validation(verdict.Message).WithCode(apperr.CodeInvalidFormat)
		}
		original := strings.TrimSpace(*req.PhoneNumber)
		params.OriginalNumber = &original
		params.NormalizedNumber = &verdict.Normalized
	}
	if req.CategoryID != nil {
		if err := s.requireCategory(ctx, *req.CategoryID); err != nil {
			return transport.PhoneNumberResponse{}, err
		}
	}

	p, err := s.repo.Update(ctx, params)
	if err != nil {
		return transport.PhoneNumberResponse{}, categoryAsBadRequest(err)
	}

	s.log.Info("phone number updated", "id", p.ID)
	return s.toResponse(p), nil
}

// Delete removes a phone number.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("phone number deleted", "id", id)
	s.eventBus.Publish(ctx, events.PhoneNumberDeleted{
		BaseEvent:     events.NewBaseEvent(),
		PhoneNumberID: id,
	})
	return nil
}

// Check validates raw and reports whether its canonical form is stored.
func (s *Service) Check(ctx context.Context, raw string) (transport.CheckResponse, error) {
	if strings.TrimSpace(raw) == "" {
		return transport.CheckResponse{}, apperr.BadRequest("phone number is required")
	}

	preview, err := importer.Check(ctx, raw, s.cfg.BulkPolicy, s.repo.ExistsByNormalizedNumber)
	if err != nil {
		return transport.CheckResponse{}, err
	}
	s.observe(preview.Verdict.Reason)
	if !preview.Verdict.Valid {
		return transport.CheckResponse{}, apperr.Validation(preview.Verdict.Message).WithCode(apperr.CodeInvalidFormat)
	}

	resp := transport.CheckResponse{
		Success:          true,
		NormalizedNumber: preview.Verdict.Normalized,
		FormattedNumber:  preview.Formatted,
		Message:          "phone number is available",
	}
	if preview.Duplicate != importer.DuplicateInStore {
		return resp, nil
	}

	resp.Exists = true
	resp.Message = "phone number already exists"
	p, err := s.repo.GetByNormalizedNumber(ctx, preview.Verdict.Normalized)
	switch {
	case err == nil:
		data := s.toResponse(p)
		resp.Data = &data
	case apperr.Is(err, apperr.KindNotFound):
		// deleted between the two reads
		resp.Exists = false
		resp.Message = "phone number is available"
	default:
		return transport.CheckResponse{}, err
	}
	return resp, nil
}

// Preview validates, formats and classifies numbers without storing them.
func (s *Service) Preview(ctx context.Context, raws []string) ([]transport.NormalizedNumber, error) {
	previews, err := s.importer.PreviewAll(ctx, raws)
	if err != nil {
		return nil, err
	}

	out := make([]transport.NormalizedNumber, len(previews))
	for i, p := range previews {
		s.observe(p.Verdict.Reason)
		out[i] = transport.NormalizedNumber{
			Index:           p.Index,
			Input:           p.Input,
			Verdict:         p.Verdict,
			FormattedNumber: p.Formatted,
			Duplicate:       p.Duplicate,
		}
		if p.Verdict.Valid {
			out[i].Region = phone.Region(p.Verdict.Normalized)
			out[i].Plausible = phone.IsPlausible(p.Verdict.Normalized)
		}
	}
	return out, nil
}

func (s *Service) requireCategory(ctx context.Context, categoryID int64) error {
	found, err := s.repo.CategoryExists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !found {
		return apperr.BadRequest("category not found").WithCode(apperr.CodeCategoryNotFound)
	}
	return nil
}

// categoryAsBadRequest reports a category that vanished after the existence
// check the same way as one that never existed.
func categoryAsBadRequest(err error) error {
	if e, ok := apperr.As(err); ok && e.Code == apperr.CodeCategoryNotFound {
		return apperr.BadRequest("category not found").WithCode(apperr.CodeCategoryNotFound)
	}
	return err
}

func (s *Service) observe(reason phone.Reason) {
	if s.verdicts != nil {
		s.verdicts.Verdict(string(reason))
	}
}

func (s *Service) toResponse(p repository.PhoneNumber) transport.PhoneNumberResponse {
	return transport.PhoneNumberResponse{
		ID:               p.ID,
		OriginalNumber:   p.OriginalNumber,
		NormalizedNumber: p.NormalizedNumber,
		FormattedNumber:  phone.Format(p.NormalizedNumber),
		Region:           phone.Region(p.NormalizedNumber),
		WhatsAppURL:      s.wa.Link(p.NormalizedNumber, ""),
		CategoryID:       p.Category.ID,
		Category: transport.CategorySummary{
			ID:   p.Category.ID,
			Name: p.Category.Name,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
