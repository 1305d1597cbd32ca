package handler

import (
	"context"
	"net/http"

	"circletel_backend/internal/quotes/transport"
	"circletel_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// PublicQuoteService is the quote service surface exposed to customers.
type PublicQuoteService interface {
	GetPublicQuote(ctx context.Context, token string) (*transport.PublicQuoteResponse, error)
	SignQuote(ctx context.Context, token string, req transport.SignQuoteRequest, meta transport.SignatureMeta) (*transport.PublicQuoteResponse, error)
	GetPublicQuotePDF(ctx context.Context, token string) (*transport.PDFDownload, error)
}

// PublicHandler serves the unauthenticated customer quote pages.
type PublicHandler struct {
	svc PublicQuoteService
}

func NewPublicHandler(svc PublicQuoteService) *PublicHandler {
	return &PublicHandler{svc: svc}
}

func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:token", h.GetPublicQuote)
	rg.POST("/:token/sign", h.Sign)
	rg.GET("/:token/pdf", h.DownloadPDF)
}

// GetPublicQuote handles GET /api/v1/public/quotes/:token
func (h *PublicHandler) GetPublicQuote(c *gin.Context) {
	result, err := h.svc.GetPublicQuote(c.Request.Context(), c.Param("token"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Sign handles POST /api/v1/public/quotes/:token/sign
func (h *PublicHandler) Sign(c *gin.Context) {
	var req transport.SignQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	meta := transport.SignatureMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	result, err := h.svc.SignQuote(c.Request.Context(), c.Param("token"), req, meta)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// DownloadPDF handles GET /api/v1/public/quotes/:token/pdf
func (h *PublicHandler) DownloadPDF(c *gin.Context) {
	download, err := h.svc.GetPublicQuotePDF(c.Request.Context(), c.Param("token"))
	if httpkit.HandleError(c, err) {
		return
	}

	if download.URL != "" {
		c.Redirect(http.StatusFound, download.URL)
		return
	}
	servePDFBytes(c, download.FileName, download.Data)
}
