package handler

import (
	"context"
	"net/http"
	"strconv"

	"circletel_backend/internal/quotes/transport"
	"circletel_backend/platform/apperr"
	"circletel_backend/platform/httpkit"
	"circletel_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid quote id"
)

// QuoteService is the quote service surface used by the staff handler.
type QuoteService interface {
	CreateBusinessQuote(ctx context.Context, req transport.CreateQuoteRequest, createdBy *uuid.UUID) (*transport.QuoteResponse, error)
	UpdateBusinessQuote(ctx context.Context, id uuid.UUID, req transport.UpdateQuoteRequest, updatedBy *uuid.UUID) (*transport.QuoteResponse, error)
	GetQuoteWithItems(ctx context.Context, id uuid.UUID) (*transport.QuoteResponse, error)
	DeleteBusinessQuote(ctx context.Context, id uuid.UUID) error
	ListBusinessQuotes(ctx context.Context, req transport.ListQuotesRequest) (*transport.QuoteListResponse, error)
	UpdateQuoteStatus(ctx context.Context, id uuid.UUID, next transport.QuoteStatus, actorID *uuid.UUID) (*transport.QuoteResponse, error)
	SendQuote(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) (*transport.QuoteResponse, error)
	PreviewPricing(ctx context.Context, req transport.CalculatePricingRequest) (*transport.CalculatePricingResponse, error)
	GetQuotePDF(ctx context.Context, id uuid.UUID, opts transport.PDFOptions) ([]byte, string, error)
}

// Handler handles HTTP requests for business quotes
type Handler struct {
	svc QuoteService
	val *validator.Validator
}

// RoleAdmin is required to delete quotes.
const RoleAdmin = "admin"

// New creates a new quotes handler
func New(svc QuoteService, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the quote routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.POST("/calculate", h.Calculate)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.POST("/:id/send", h.Send)
	rg.GET("/:id/pdf", h.DownloadPDF)
	rg.DELETE("/:id", httpkit.RequireRole(RoleAdmin), h.Delete)
}

// List handles GET /api/v1/quotes
func (h *Handler) List(c *gin.Context) {
	var req transport.ListQuotesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListBusinessQuotes(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Create handles POST /api/v1/quotes
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.CreateBusinessQuote(c.Request.Context(), req, actorID(c))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, result)
}

// Calculate handles POST /api/v1/quotes/calculate
func (h *Handler) Calculate(c *gin.Context) {
	var req transport.CalculatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.PreviewPricing(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetByID handles GET /api/v1/quotes/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetQuoteWithItems(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, httpkit.ErrorResponse{Error: "quote not found", Code: apperr.CodeQuoteNotFound})
		return
	}

	httpkit.OK(c, result)
}

// Update handles PUT /api/v1/quotes/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	var req transport.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.UpdateBusinessQuote(c.Request.Context(), id, req, actorID(c))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// UpdateStatus handles PATCH /api/v1/quotes/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	var req transport.UpdateQuoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateQuoteStatus(c.Request.Context(), id, req.Status, actorID(c))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Send handles POST /api/v1/quotes/:id/send
func (h *Handler) Send(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	result, err := h.svc.SendQuote(c.Request.Context(), id, actorID(c))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// DownloadPDF handles GET /api/v1/quotes/:id/pdf
// Query flags terms and signature default to true.
func (h *Handler) DownloadPDF(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	opts := transport.PDFOptions{
		IncludeTerms:     queryBool(c, "terms", true),
		IncludeSignature: queryBool(c, "signature", true),
	}
	data, fileName, err := h.svc.GetQuotePDF(c.Request.Context(), id, opts)
	if httpkit.HandleError(c, err) {
		return
	}

	servePDFBytes(c, fileName, data)
}

// Delete handles DELETE /api/v1/quotes/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteBusinessQuote(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

func parseQuoteID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// actorID returns the authenticated staff member, or nil for anonymous calls.
func actorID(c *gin.Context) *uuid.UUID {
	identity := httpkit.GetIdentity(c)
	if !identity.IsAuthenticated() {
		return nil
	}
	id := identity.UserID()
	return &id
}

func queryBool(c *gin.Context, key string, fallback bool) bool {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
