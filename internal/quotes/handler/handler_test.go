package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"circletel_backend/internal/quotes/transport"
	"circletel_backend/platform/apperr"
	"circletel_backend/platform/httpkit"
	"circletel_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubService struct {
	createErr  error
	created    *uuid.UUID
	statusSeen transport.QuoteStatus
	pdfOpts    transport.PDFOptions
	signMeta   transport.SignatureMeta
	publicURL  string
}

func (s *stubService) CreateBusinessQuote(_ context.Context, req transport.CreateQuoteRequest, createdBy *uuid.UUID) (*transport.QuoteResponse, error) {
	s.created = createdBy
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &transport.QuoteResponse{ID: uuid.New(), CompanyName: req.CompanyName, Status: transport.QuoteStatusDraft}, nil
}

func (s *stubService) UpdateBusinessQuote(context.Context, uuid.UUID, transport.UpdateQuoteRequest, *uuid.UUID) (*transport.QuoteResponse, error) {
	return &transport.QuoteResponse{}, nil
}

func (s *stubService) GetQuoteWithItems(context.Context, uuid.UUID) (*transport.QuoteResponse, error) {
	return nil, nil
}

func (s *stubService) DeleteBusinessQuote(context.Context, uuid.UUID) error { return nil }

func (s *stubService) ListBusinessQuotes(_ context.Context, req transport.ListQuotesRequest) (*transport.QuoteListResponse, error) {
	return &transport.QuoteListResponse{Items: []transport.QuoteResponse{}, Page: req.Page, PageSize: req.PageSize}, nil
}

func (s *stubService) UpdateQuoteStatus(_ context.Context, _ uuid.UUID, next transport.QuoteStatus, _ *uuid.UUID) (*transport.QuoteResponse, error) {
	s.statusSeen = next
	return &transport.QuoteResponse{Status: next}, nil
}

func (s *stubService) SendQuote(context.Context, uuid.UUID, *uuid.UUID) (*transport.QuoteResponse, error) {
	return &transport.QuoteResponse{Status: transport.QuoteStatusSent}, nil
}

func (s *stubService) PreviewPricing(context.Context, transport.CalculatePricingRequest) (*transport.CalculatePricingResponse, error) {
	return &transport.CalculatePricingResponse{}, nil
}

func (s *stubService) GetQuotePDF(_ context.Context, _ uuid.UUID, opts transport.PDFOptions) ([]byte, string, error) {
	s.pdfOpts = opts
	return []byte("%PDF-1.7"), "BQ-2026-0001.pdf", nil
}

func (s *stubService) GetPublicQuote(context.Context, string) (*transport.PublicQuoteResponse, error) {
	return nil, apperr.NotFound("quote not found").WithCode(apperr.CodeQuoteNotFound)
}

func (s *stubService) SignQuote(_ context.Context, _ string, _ transport.SignQuoteRequest, meta transport.SignatureMeta) (*transport.PublicQuoteResponse, error) {
	s.signMeta = meta
	return &transport.PublicQuoteResponse{Status: transport.QuoteStatusAccepted}, nil
}

func (s *stubService) GetPublicQuotePDF(context.Context, string) (*transport.PDFDownload, error) {
	if s.publicURL != "" {
		return &transport.PDFDownload{FileName: "BQ-2026-0001.pdf", URL: s.publicURL}, nil
	}
	return &transport.PDFDownload{FileName: "BQ-2026-0001.pdf", Data: []byte("%PDF-1.7")}, nil
}

func newEngine(svc *stubService, userID *uuid.UUID) *gin.Engine {
	r := gin.New()
	if userID != nil {
		r.Use(func(c *gin.Context) {
			c.Set(httpkit.ContextUserIDKey, *userID)
			c.Next()
		})
	}
	New(svc, validator.New()).RegisterRoutes(r.Group("/quotes"))
	NewPublicHandler(svc).RegisterRoutes(r.Group("/public/quotes"))
	return r
}

func doRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "quote-test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePassesActor(t *testing.T) {
	svc := &stubService{}
	user := uuid.New()
	w := doRequest(newEngine(svc, &user), http.MethodPost, "/quotes", map[string]any{"companyName": "Acme"})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if svc.created == nil || *svc.created != user {
		t.Fatalf("expected actor %s, got %v", user, svc.created)
	}
}

func TestCreateMapsValidationError(t *testing.T) {
	svc := &stubService{createErr: apperr.Validation("validation failed").WithCode(apperr.CodeValidation).WithDetails([]string{"Company name is required"})}
	w := doRequest(newEngine(svc, nil), http.MethodPost, "/quotes", map[string]any{})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp httpkit.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != apperr.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %s", resp.Code)
	}
}

func TestGetByIDMissingReturnsNotFound(t *testing.T) {
	w := doRequest(newEngine(&stubService{}, nil), http.MethodGet, "/quotes/"+uuid.NewString(), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = doRequest(newEngine(&stubService{}, nil), http.MethodGet, "/quotes/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := &stubService{}
	r := newEngine(svc, nil)
	path := "/quotes/" + uuid.NewString() + "/status"

	if w := doRequest(r, http.MethodPatch, path, map[string]string{"status": "archived"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodPatch, path, map[string]string{"status": "approved"}); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if svc.statusSeen != transport.QuoteStatusApproved {
		t.Fatalf("expected approved, got %s", svc.statusSeen)
	}
}

func TestListBindsQuery(t *testing.T) {
	w := doRequest(newEngine(&stubService{}, nil), http.MethodGet, "/quotes?page=2&pageSize=10&status=sent", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp transport.QuoteListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Page != 2 || resp.PageSize != 10 {
		t.Fatalf("expected page 2 size 10, got %d/%d", resp.Page, resp.PageSize)
	}

	if w := doRequest(newEngine(&stubService{}, nil), http.MethodGet, "/quotes?pageSize=1000", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized page, got %d", w.Code)
	}
}

func TestDownloadPDF(t *testing.T) {
	svc := &stubService{}
	w := doRequest(newEngine(svc, nil), http.MethodGet, "/quotes/"+uuid.NewString()+"/pdf?signature=false", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypePDF {
		t.Fatalf("expected pdf content type, got %s", ct)
	}
	if !svc.pdfOpts.IncludeTerms || svc.pdfOpts.IncludeSignature {
		t.Fatalf("unexpected options: %+v", svc.pdfOpts)
	}
}

func TestPublicRoutes(t *testing.T) {
	svc := &stubService{}
	r := newEngine(svc, nil)

	w := doRequest(r, http.MethodGet, "/public/quotes/abc", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = doRequest(r, http.MethodPost, "/public/quotes/abc/sign", map[string]any{"signerName": "Thandi"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if svc.signMeta.UserAgent != "quote-test" || svc.signMeta.IPAddress == "" {
		t.Fatalf("expected request metadata, got %+v", svc.signMeta)
	}
}

func TestPublicPDFServesRenderedOrArchivedCopy(t *testing.T) {
	svc := &stubService{}
	r := newEngine(svc, nil)

	w := doRequest(r, http.MethodGet, "/public/quotes/abc/pdf", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != contentTypePDF {
		t.Fatalf("expected rendered pdf, got %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	svc.publicURL = "https://files.example/quote-pdfs/signed/abc/BQ-2026-0001.pdf"
	w = doRequest(r, http.MethodGet, "/public/quotes/abc/pdf", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != svc.publicURL {
		t.Fatalf("expected redirect to archived copy, got %q", loc)
	}
}

func TestDeleteRequiresAdminRole(t *testing.T) {
	svc := &stubService{}
	user := uuid.New()
	id := uuid.New()

	w := doRequest(newEngine(svc, &user), http.MethodDelete, "/quotes/"+id.String(), nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, user)
		c.Set(httpkit.ContextRolesKey, []string{RoleAdmin})
		c.Next()
	})
	New(svc, validator.New()).RegisterRoutes(r.Group("/quotes"))

	w = doRequest(r, http.MethodDelete, "/quotes/"+id.String(), nil)
	if w.Code >= http.StatusBadRequest {
		t.Fatalf("expected success for admin, got %d: %s", w.Code, w.Body.String())
	}
}
