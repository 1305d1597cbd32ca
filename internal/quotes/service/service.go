package service

import (
	"context"
	"time"

	"circletel_backend/internal/events"
	"circletel_backend/internal/quotes/repository"
	"circletel_backend/internal/quotes/transport"
	"circletel_backend/platform/apperr"
	"circletel_backend/platform/logger"
	"circletel_backend/platform/money"

	"github.com/google/uuid"
)

const defaultValidityDays = 30

// CatalogPackage is the subset of a service package a quote line snapshots.
type CatalogPackage struct {
	ID                uuid.UUID
	Name              string
	ServiceType       string
	SpeedDown         int
	SpeedUp           int
	DataCapGB         *int
	MonthlyPrice      float64
	InstallationPrice float64
}

// CatalogReader is the narrow interface the quote service needs from the
// package catalog. Implemented by an adapter in internal/adapters.
type CatalogReader interface {
	// GetPackagesByIDs returns the packages that exist, keyed by id.
	// Missing ids are simply absent from the map.
	GetPackagesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]CatalogPackage, error)
}

// ExpiryScheduler schedules the automatic expiry of a sent quote.
type ExpiryScheduler interface {
	ScheduleQuoteExpiry(ctx context.Context, quoteID uuid.UUID, at time.Time) error
}

// PDFRenderer renders a quote document.
type PDFRenderer interface {
	RenderQuote(quote *transport.QuoteResponse, opts transport.PDFOptions) ([]byte, error)
}

// PDFArchive resolves an archived signed PDF to a download link.
type PDFArchive interface {
	SignedPDFURL(ctx context.Context, fileKey string) (string, error)
}

// Service provides business logic for business quotes
type Service struct {
	repo         repository.Repository
	catalog      CatalogReader
	eventBus     events.Bus
	expiry       ExpiryScheduler // optional, nil disables scheduled expiry
	pdf          PDFRenderer     // optional, nil disables PDF downloads
	archive      PDFArchive      // optional, nil always renders on demand
	log          *logger.Logger
	validityDays int
	now          func() time.Time
}

// New creates a new quotes service
func New(repo repository.Repository, catalog CatalogReader) *Service {
	return &Service{
		repo:         repo,
		catalog:      catalog,
		log:          logger.Nop(),
		validityDays: defaultValidityDays,
		now:          time.Now,
	}
}

// SetEventBus injects the event bus used to publish quote lifecycle events.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// SetExpiryScheduler injects the scheduler that expires sent quotes.
func (s *Service) SetExpiryScheduler(scheduler ExpiryScheduler) {
	s.expiry = scheduler
}

// SetPDFRenderer injects the PDF renderer.
func (s *Service) SetPDFRenderer(renderer PDFRenderer) {
	s.pdf = renderer
}

// SetPDFArchive injects the signed PDF archive.
func (s *Service) SetPDFArchive(archive PDFArchive) {
	s.archive = archive
}

// SetLogger replaces the no-op logger.
func (s *Service) SetLogger(log *logger.Logger) {
	if log != nil {
		s.log = log
	}
}

// SetValidityDays sets how long a new quote stays valid.
func (s *Service) SetValidityDays(days int) {
	if days > 0 {
		s.validityDays = days
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, evt)
	}
}

func validationError(errs []string) error {
	return apperr.Validation("validation failed").WithCode(apperr.CodeValidation).WithDetails(errs)
}

func coded(kind apperr.Kind, code apperr.Code, message string, err error) error {
	return apperr.Wrap(kind, message, err).WithCode(code)
}

func quoteNotFound() error {
	return apperr.NotFound("quote not found").WithCode(apperr.CodeQuoteNotFound)
}

// storeError logs a repository failure and makes sure it carries a code.
// Errors that already have a code pass through untouched.
func (s *Service) storeError(ctx context.Context, operation string, err error) error {
	if err == nil || apperr.GetCode(err) != "" {
		return err
	}
	s.log.WithContext(ctx).DatabaseError(operation, err)
	return apperr.AsCoded(err)
}

// lookupQuote maps a missing row to QUOTE_NOT_FOUND and codes other errors.
func (s *Service) lookupQuote(ctx context.Context, id uuid.UUID) (*repository.Quote, error) {
	quote, err := s.repo.GetByID(ctx, id)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, quoteNotFound()
	}
	if err != nil {
		return nil, s.storeError(ctx, "get_quote", err)
	}
	return quote, nil
}

func discountFor(q *repository.Quote) Discount {
	return ResolveDiscount(q.CustomDiscountPercent, q.CustomDiscountAmount, q.DiscountReason)
}

func toLineItems(items []repository.QuoteItem) []transport.LineItem {
	out := make([]transport.LineItem, len(items))
	for i, it := range items {
		out[i] = toLineItem(it)
	}
	return out
}

func toLineItem(it repository.QuoteItem) transport.LineItem {
	return transport.LineItem{
		PackageID:         it.PackageID,
		ItemType:          transport.ItemType(it.ItemType),
		Quantity:          it.Quantity,
		MonthlyPrice:      it.MonthlyPrice,
		InstallationPrice: it.InstallationPrice,
		ServiceName:       it.ServiceName,
		ServiceType:       it.ServiceType,
		SpeedDown:         it.SpeedDown,
		SpeedUp:           it.SpeedUp,
		DataCapGB:         it.DataCapGB,
		Notes:             it.Notes,
		DisplayOrder:      it.DisplayOrder,
	}
}

func toStoredPricing(p transport.PricingBreakdown) repository.Pricing {
	return repository.Pricing{
		SubtotalMonthly:       p.SubtotalMonthly,
		SubtotalInstallation:  p.SubtotalInstallation,
		DiscountAmount:        p.DiscountAmount,
		VatAmountMonthly:      p.VatMonthly,
		VatAmountInstallation: p.VatInstallation,
		TotalMonthly:          p.TotalMonthly,
		TotalInstallation:     p.TotalInstallation,
		TotalContractValue:    p.TotalContractValue,
	}
}

// pricingFor recomputes the full breakdown for a quote from its items.
func pricingFor(q *repository.Quote, items []repository.QuoteItem) transport.PricingBreakdown {
	return CalculatePricingBreakdown(toLineItems(items), transport.ContractTerm(q.ContractTerm), discountFor(q))
}

func toItemResponses(items []repository.QuoteItem) []transport.QuoteItemResponse {
	out := make([]transport.QuoteItemResponse, len(items))
	for i, it := range items {
		qty := float64(it.Quantity)
		out[i] = transport.QuoteItemResponse{
			ID:                    it.ID,
			LineItem:              toLineItem(it),
			LineMonthlyTotal:      money.RoundToTwoDecimals(it.MonthlyPrice * qty),
			LineInstallationTotal: money.RoundToTwoDecimals(it.InstallationPrice * qty),
			PricePerMbps:          CalculatePricePerMbps(it.MonthlyPrice, it.SpeedDown),
		}
	}
	return out
}

func toSignatureResponse(sig *repository.Signature) *transport.SignatureResponse {
	if sig == nil {
		return nil
	}
	return &transport.SignatureResponse{
		SignerName:  sig.SignerName,
		SignerEmail: sig.SignerEmail,
		SignerTitle: sig.SignerTitle,
		SignedAt:    sig.SignedAt,
	}
}

func (s *Service) buildResponse(q *repository.Quote, items []repository.QuoteItem, sig *repository.Signature) *transport.QuoteResponse {
	status := transport.QuoteStatus(q.Status)
	now := s.now()
	return &transport.QuoteResponse{
		ID:                    q.ID,
		QuoteNumber:           q.QuoteNumber,
		Status:                status,
		CompanyName:           q.CompanyName,
		RegistrationNumber:    q.RegistrationNumber,
		VatNumber:             q.VatNumber,
		ContactName:           q.ContactName,
		ContactEmail:          q.ContactEmail,
		ContactPhone:          q.ContactPhone,
		ServiceAddress:        q.ServiceAddress,
		ContractTerm:          transport.ContractTerm(q.ContractTerm),
		CustomDiscountPercent: q.CustomDiscountPercent,
		CustomDiscountAmount:  q.CustomDiscountAmount,
		Pricing:               pricingFor(q, items),
		ValidUntil:            q.ValidUntil,
		DaysUntilExpiry:       DaysUntilExpiry(q.ValidUntil, now),
		CustomerNotes:         q.CustomerNotes,
		AdminNotes:            q.AdminNotes,
		Items:                 toItemResponses(items),
		Signature:             toSignatureResponse(sig),
		AllowedTransitions:    AllowedTransitions(status),
		CanEdit:               CanEditQuote(status),
		CanDelete:             CanDeleteQuote(status),
		CanSend:               CanSendQuote(status),
		CreatedBy:             q.CreatedBy,
		ApprovedAt:            q.ApprovedAt,
		SentAt:                q.SentAt,
		ViewedAt:              q.ViewedAt,
		AcceptedAt:            q.AcceptedAt,
		RejectedAt:            q.RejectedAt,
		CreatedAt:             q.CreatedAt,
		UpdatedAt:             q.UpdatedAt,
	}
}

func (s *Service) buildPublicResponse(q *repository.Quote, items []repository.QuoteItem, sig *repository.Signature) *transport.PublicQuoteResponse {
	status := transport.QuoteStatus(q.Status)
	now := s.now()
	return &transport.PublicQuoteResponse{
		QuoteNumber:     q.QuoteNumber,
		Status:          status,
		CompanyName:     q.CompanyName,
		ContactName:     q.ContactName,
		ServiceAddress:  q.ServiceAddress,
		ContractTerm:    transport.ContractTerm(q.ContractTerm),
		Pricing:         pricingFor(q, items),
		Items:           toItemResponses(items),
		CustomerNotes:   q.CustomerNotes,
		ValidUntil:      q.ValidUntil,
		DaysUntilExpiry: DaysUntilExpiry(q.ValidUntil, now),
		CanSign:         CanSignQuote(status, q.ValidUntil, now),
		Signature:       toSignatureResponse(sig),
	}
}

// loadSignature returns nil when the quote has not been signed.
func (s *Service) loadSignature(ctx context.Context, quoteID uuid.UUID) (*repository.Signature, error) {
	sig, err := s.repo.GetSignature(ctx, quoteID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.storeError(ctx, "get_signature", err)
	}
	return sig, nil
}
