// Package catalog provides the service package catalog module.
package catalog

import (
	"circletel_backend/internal/catalog/handler"
	"circletel_backend/internal/catalog/repository"
	"circletel_backend/internal/catalog/service"
	apphttp "circletel_backend/internal/http"
	"circletel_backend/platform/logger"
	"circletel_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the catalog module. cache may be nil.
func NewModule(pool *pgxpool.Pool, cache service.Cache, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	if cache != nil {
		svc.SetCache(cache)
	}

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the live package store. Quote creation reads prices
// from here rather than through the cache.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
