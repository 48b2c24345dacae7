// Package phonenumbers provides the phone numbers bounded context module:
// CRUD, duplicate checks, previews and every bulk import path.
package phonenumbers

import (
	"context"
	"fmt"

	"phonebook_backend/internal/events"
	apphttp "phonebook_backend/internal/http"
	"phonebook_backend/internal/phonenumbers/handler"
	"phonebook_backend/internal/phonenumbers/repository"
	"phonebook_backend/internal/phonenumbers/service"
	"phonebook_backend/internal/whatsapp"
	"phonebook_backend/platform/config"
	"phonebook_backend/platform/db"
	"phonebook_backend/platform/logger"
	"phonebook_backend/platform/metrics"
	"phonebook_backend/platform/phone"
	"phonebook_backend/platform/validator"
)

const bulkPath = "/phone-numbers/bulk"

// Module is the phone numbers bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
	metrics *metrics.Metrics
}

// NewModule creates and initializes the phone numbers module with all its
// dependencies. metrics may be nil.
func NewModule(pool db.Pool, eventBus events.Publisher, cfg service.Config, val *validator.Validator, m *metrics.Metrics, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, whatsapp.NewClient(""), cfg, log)
	if m != nil {
		svc.SetVerdictObserver(m)
	}
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
		metrics: m,
	}
}

// ServiceConfig builds the service settings from configuration.
func ServiceConfig(phoneCfg config.PhoneConfig, bulkCfg config.BulkConfig, minioCfg config.MinIOConfig) (service.Config, error) {
	bulkPolicy, err := phone.NewPolicy(phoneCfg.GetPhoneMinDigits(), phoneCfg.GetPhoneMaxDigits())
	if err != nil {
		return service.Config{}, fmt.Errorf("bulk phone policy: %w", err)
	}
	singlePolicy, err := phone.NewPolicy(phoneCfg.GetPhoneSingleMinDigits(), phoneCfg.GetPhoneMaxDigits())
	if err != nil {
		return service.Config{}, fmt.Errorf("single phone policy: %w", err)
	}

	cfg := service.Config{
		SinglePolicy:      singlePolicy,
		BulkPolicy:        bulkPolicy,
		MaxBatchSize:      bulkCfg.GetBulkMaxBatchSize(),
		LookupConcurrency: bulkCfg.GetBulkLookupConcurrency(),
		MaxUploadBytes:    bulkCfg.GetBulkMaxUploadBytes(),
	}
	if minioCfg != nil && minioCfg.IsMinIOEnabled() {
		cfg.ArchiveBucket = minioCfg.GetMinioBucketImports()
	}
	return cfg, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "phonenumbers"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts phone number routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/phone-numbers")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.POST("/check", m.handler.Check)
	group.GET("/check/:number", m.handler.CheckByParam)
	group.POST("/normalize", m.handler.Normalize)
	group.POST("/bulk", m.handler.BulkImport)
	group.POST("/bulk/text", m.handler.ImportText)
	group.POST("/bulk/upload", m.handler.ImportUpload)
	group.POST("/bulk/jobs", m.handler.EnqueueImport)
	group.GET("/bulk/jobs/:id", m.handler.GetJob)
	group.GET("/:id", m.handler.GetByID)
	group.GET("/:id/qr", m.handler.QRCode)
	group.PUT("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)

	seen := map[string]bool{bulkPath: true}
	for _, alias := range ctx.Config.GetBulkRouteAliases() {
		if seen[alias] {
			continue
		}
		seen[alias] = true
		ctx.V1.POST(alias, m.handler.BulkImport)
	}
}

// RegisterHandlers subscribes the metrics counters to phone number events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	if m.metrics == nil {
		return
	}
	bus.Subscribe(events.PhoneNumberCreated{}.EventName(), m)
	bus.Subscribe(events.PhoneNumberDeleted{}.EventName(), m)
	bus.Subscribe(events.BulkImportCompleted{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(_ context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.PhoneNumberCreated:
		m.metrics.PhoneNumberCreated(e.Source)
	case events.PhoneNumberDeleted:
		m.metrics.PhoneNumberDeleted()
	case events.BulkImportCompleted:
		m.metrics.BulkImportCompleted(e.Source, e.Total, e.Successful, e.ErrorCodes)
	}
	return nil
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
