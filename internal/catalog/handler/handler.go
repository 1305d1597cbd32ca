package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"circletel_backend/internal/catalog/transport"
	"circletel_backend/platform/httpkit"
	"circletel_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid package id"
)

// CatalogService is the read surface the handler depends on.
type CatalogService interface {
	GetPackageByID(ctx context.Context, id uuid.UUID) (transport.PackageResponse, error)
	ListPackages(ctx context.Context, req transport.ListPackagesRequest) (transport.PackageListResponse, error)
}

// Handler handles HTTP requests for the package catalog.
type Handler struct {
	svc CatalogService
	val *validator.Validator
}

// New creates a new catalog handler.
func New(svc CatalogService, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the catalog read routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/packages", h.ListPackages)
	rg.GET("/packages/:id", h.GetPackageByID)
}

// ListPackages retrieves catalog packages.
// GET /api/v1/packages
func (h *Handler) ListPackages(c *gin.Context) {
	var req transport.ListPackagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListPackages(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetPackageByID retrieves a single package.
// GET /api/v1/packages/:id
func (h *Handler) GetPackageByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.GetPackageByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
