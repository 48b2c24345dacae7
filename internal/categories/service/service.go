package service

import (
	"context"

	"phonebook_backend/internal/categories/repository"
	"phonebook_backend/internal/categories/transport"
	"phonebook_backend/internal/events"
	"phonebook_backend/platform/apperr"
	"phonebook_backend/platform/logger"
	"phonebook_backend/platform/sanitize"
)

// Service provides business logic for categories.
type Service struct {
	repo     repository.Repository
	eventBus events.Publisher
	log      *logger.Logger
}

// New creates a new categories service.
func New(repo repository.Repository, eventBus events.Publisher, log *logger.Logger) *Service {
	return &Service{repo: repo, eventBus: eventBus, log: log}
}

// List retrieves all categories with their phone counts.
func (s *Service) List(ctx context.Context) ([]transport.CategoryResponse, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]transport.CategoryResponse, len(items))
	for i, item := range items {
		responses[i] = toResponse(item)
	}
	return responses, nil
}

// GetByID retrieves a category by ID.
func (s *Service) GetByID(ctx context.Context, id int64) (transport.CategoryResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CategoryResponse{}, err
	}
	return toResponse(c), nil
}

// Exists checks if a category exists by ID.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// Create creates a new category.
func (s *Service) Create(ctx context.Context, req transport.CreateCategoryRequest) (transport.CategoryResponse, error) {
	name := sanitize.Name(req.Name)
	if name == "" {
		return transport.CategoryResponse{}, apperr.Validation("name is required")
	}

	c, err := s.repo.Create(ctx, repository.CreateParams{
		Name:        name,
		Description: sanitize.TextPtr(req.Description),
	})
	if err != nil {
		return transport.CategoryResponse{}, err
	}

	s.log.Info("category created", "id", c.ID, "name", c.Name)
	s.eventBus.Publish(ctx, events.CategoryCreated{
		BaseEvent:  events.NewBaseEvent(),
		CategoryID: c.ID,
		Name:       c.Name,
	})
	return toResponse(c), nil
}

// Update updates an existing category.
func (s *Service) Update(ctx context.Context, id int64, req transport.UpdateCategoryRequest) (transport.CategoryResponse, error) {
	params := repository.UpdateParams{ID: id, Description: sanitize.TextPtr(req.Description)}
	if req.Name != nil {
		name := sanitize.Name(*req.Name)
		if name == "" {
			return transport.CategoryResponse{}, apperr.Validation("name must not be blank")
		}
		params.Name = &name
	}

	c, err := s.repo.Update(ctx, params)
	if err != nil {
		return transport.CategoryResponse{}, err
	}

	s.log.Info("category updated", "id", c.ID, "name", c.Name)
	return toResponse(c), nil
}

// Delete removes a category that no phone number references.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("category deleted", "id", id)
	s.eventBus.Publish(ctx, events.CategoryDeleted{
		BaseEvent:  events.NewBaseEvent(),
		CategoryID: id,
	})
	return nil
}

func toResponse(c repository.Category) transport.CategoryResponse {
	return transport.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		PhoneCount:  c.PhoneCount,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
