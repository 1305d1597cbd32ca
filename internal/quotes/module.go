// Package quotes provides the business quotes domain module.
package quotes

import (
	apphttp "circletel_backend/internal/http"
	"circletel_backend/internal/quotes/handler"
	"circletel_backend/internal/quotes/repository"
	"circletel_backend/internal/quotes/service"
	"circletel_backend/platform/events"
	"circletel_backend/platform/logger"
	"circletel_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotes domain module
type Module struct {
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
	service       *service.Service
}

// NewModule creates a new quotes module with all dependencies wired
func NewModule(pool *pgxpool.Pool, catalog service.CatalogReader, eventBus events.Bus, val *validator.Validator, validityDays int, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, catalog)
	svc.SetEventBus(eventBus)
	svc.SetValidityDays(validityDays)
	svc.SetLogger(log)

	return &Module{
		handler:       handler.New(svc, val),
		publicHandler: handler.NewPublicHandler(svc),
		service:       svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	quotes := ctx.Protected.Group("/quotes")
	m.handler.RegisterRoutes(quotes)

	// Public routes, no auth middleware
	publicQuotes := ctx.V1.Group("/public/quotes")
	m.publicHandler.RegisterRoutes(publicQuotes)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
