// Package exports serves downloads of the phone book.
package exports

import (
	apphttp "phonebook_backend/internal/http"
	"phonebook_backend/internal/whatsapp"
	"phonebook_backend/platform/logger"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the exports module. source is usually
// the phone numbers repository.
func NewModule(source Source, log *logger.Logger) *Module {
	return &Module{
		handler: NewHandler(source, whatsapp.NewClient(""), log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts export routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/exports")
	group.GET("/phone-numbers.csv", m.handler.ExportPhoneNumbersCSV)
}

var _ apphttp.Module = (*Module)(nil)
