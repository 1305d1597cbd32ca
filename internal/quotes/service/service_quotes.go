package service

import (
	"context"
	"fmt"
	"strings"

	"circletel_backend/internal/events"
	"circletel_backend/internal/quotes/repository"
	"circletel_backend/internal/quotes/transport"
	"circletel_backend/platform/apperr"
	"circletel_backend/platform/phone"
	"circletel_backend/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPage         = 1
	defaultPageSize     = 20
	maxPageSize         = 100
	listItemConcurrency = 8
	defaultItemQuantity = 1
)

// CreateBusinessQuote validates the request, snapshots the referenced
// packages and persists a draft quote with its items. If the items cannot
// be stored the header is deleted again.
func (s *Service) CreateBusinessQuote(ctx context.Context, req transport.CreateQuoteRequest, createdBy *uuid.UUID) (*transport.QuoteResponse, error) {
	if result := ValidateCreateQuoteRequest(req); !result.Valid {
		return nil, validationError(result.Errors)
	}

	packages, err := s.fetchPackages(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	quoteNumber, err := s.repo.NextQuoteNumber(ctx, now.Year())
	if err != nil {
		return nil, coded(apperr.KindInternal, apperr.CodeQuoteCreate, "failed to create quote", err)
	}

	quote := repository.Quote{
		ID:                 uuid.New(),
		QuoteNumber:        quoteNumber,
		CompanyName:        sanitize.Text(req.CompanyName),
		RegistrationNumber: sanitize.TextPtr(req.RegistrationNumber),
		VatNumber:          sanitize.TextPtr(req.VatNumber),
		ContactName:        sanitize.Text(req.ContactName),
		ContactEmail:       strings.ToLower(strings.TrimSpace(req.ContactEmail)),
		ContactPhone:       phone.NormalizeE164(req.ContactPhone),
		ServiceAddress:     sanitize.Text(req.ServiceAddress),
		ContractTerm:       int(req.ContractTerm),
		Status:             string(transport.QuoteStatusDraft),
		ValidUntil:         now.AddDate(0, 0, s.validityDays),
		CustomerNotes:      sanitize.TextPtr(req.CustomerNotes),
		CreatedBy:          createdBy,
		UpdatedBy:          createdBy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, &quote); err != nil {
		return nil, coded(apperr.KindInternal, apperr.CodeQuoteCreate, "failed to create quote", err)
	}

	items := make([]repository.QuoteItem, len(req.Items))
	for i, it := range req.Items {
		pkg := packages[i]
		items[i] = repository.QuoteItem{
			ID:                uuid.New(),
			QuoteID:           quote.ID,
			PackageID:         pkg.ID,
			ItemType:          string(itemTypeOrDefault(it.ItemType)),
			Quantity:          quantityOrDefault(it.Quantity),
			MonthlyPrice:      pkg.MonthlyPrice,
			InstallationPrice: pkg.InstallationPrice,
			ServiceName:       pkg.Name,
			ServiceType:       pkg.ServiceType,
			SpeedDown:         pkg.SpeedDown,
			SpeedUp:           pkg.SpeedUp,
			DataCapGB:         pkg.DataCapGB,
			Notes:             sanitize.TextPtr(it.Notes),
			DisplayOrder:      i,
			CreatedAt:         now,
		}
	}

	if err := s.repo.CreateItems(ctx, items); err != nil {
		s.rollbackQuote(ctx, &quote, err)
		return nil, coded(apperr.KindInternal, apperr.CodeItemsCreate, "failed to create quote items", err)
	}

	stored, err := s.repo.ListItems(ctx, quote.ID)
	if err != nil {
		return nil, coded(apperr.KindInternal, apperr.CodeQuoteUpdate, "failed to update quote pricing", err)
	}
	pricing := pricingFor(&quote, stored)
	quote.Pricing = toStoredPricing(pricing)
	if err := s.repo.UpdatePricing(ctx, quote.ID, quote.Pricing, now); err != nil {
		return nil, coded(apperr.KindInternal, apperr.CodeQuoteUpdate, "failed to update quote pricing", err)
	}

	s.publish(ctx, events.QuoteCreated{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     quote.ID,
		QuoteNumber: quote.QuoteNumber,
		CompanyName: quote.CompanyName,
		CreatedBy:   createdBy,
	})

	return s.buildResponse(&quote, stored, nil), nil
}

// rollbackQuote removes a header whose items could not be stored. A failed
// rollback is logged; the caller still reports the original failure.
func (s *Service) rollbackQuote(ctx context.Context, quote *repository.Quote, cause error) {
	if err := s.repo.Delete(ctx, quote.ID); err != nil {
		s.log.WithContext(ctx).CompensationFailed("create_business_quote", quote.ID.String(), cause, err)
	}
}

// fetchPackages resolves every item's package in one catalog call. The
// result is aligned with items.
func (s *Service) fetchPackages(ctx context.Context, items []transport.CreateQuoteItemRequest) ([]CatalogPackage, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	parsed := make([]uuid.UUID, len(items))
	for i, it := range items {
		id, err := uuid.Parse(strings.TrimSpace(it.PackageID))
		if err != nil {
			return nil, apperr.NotFound(fmt.Sprintf("package %s not found", it.PackageID)).WithCode(apperr.CodePackageNotFound)
		}
		parsed[i] = id
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	found, err := s.catalog.GetPackagesByIDs(ctx, ids)
	if err != nil {
		return nil, coded(apperr.KindInternal, apperr.CodePackageFetch, "failed to fetch packages", err)
	}

	out := make([]CatalogPackage, len(items))
	for i, id := range parsed {
		pkg, ok := found[id]
		if !ok {
			return nil, apperr.NotFound(fmt.Sprintf("package %s not found", id)).WithCode(apperr.CodePackageNotFound)
		}
		out[i] = pkg
	}
	return out, nil
}

func itemTypeOrDefault(t transport.ItemType) transport.ItemType {
	if t == "" {
		return transport.ItemTypeConnectivity
	}
	return t
}

func quantityOrDefault(q *int) int {
	if q == nil {
		return defaultItemQuantity
	}
	return *q
}

// UpdateBusinessQuote applies a partial update to an editable quote and
// recomputes its pricing from the stored items.
func (s *Service) UpdateBusinessQuote(ctx context.Context, id uuid.UUID, req transport.UpdateQuoteRequest, updatedBy *uuid.UUID) (*transport.QuoteResponse, error) {
	if result := ValidateUpdateQuoteRequest(req); !result.Valid {
		return nil, validationError(result.Errors)
	}

	quote, err := s.lookupQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanEditQuote(transport.QuoteStatus(quote.Status)) {
		return nil, apperr.Conflict(fmt.Sprintf("quote in status %s cannot be edited", quote.Status)).WithCode(apperr.CodeQuoteNotEditable)
	}

	applyUpdate(quote, req)

	items, err := s.repo.ListItems(ctx, quote.ID)
	if err != nil {
		return nil, coded(apperr.KindInternal, apperr.CodeQuoteUpdate, "failed to update quote", err)
	}
	pricing := pricingFor(quote, items)
	if err := checkDiscount(pricing.SubtotalMonthly, quote.CustomDiscountPercent, quote.CustomDiscountAmount); err != nil {
		return nil, err
	}
	quote.Pricing = toStoredPricing(pricing)
	quote.UpdatedBy = updatedBy
	quote.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, quote); err != nil {
		return nil, coded(apperr.KindInternal, apperr.CodeQuoteUpdate, "failed to update quote", err)
	}

	sig, err := s.loadSignature(ctx, quote.ID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(quote, items, sig), nil
}

func applyUpdate(q *repository.Quote, req transport.UpdateQuoteRequest) {
	if req.CompanyName != nil {
		q.CompanyName = sanitize.Text(*req.CompanyName)
	}
	if req.RegistrationNumber != nil {
		q.RegistrationNumber = sanitize.TextPtr(req.RegistrationNumber)
	}
	if req.VatNumber != nil {
		q.VatNumber = sanitize.TextPtr(req.VatNumber)
	}
	if req.ContactName != nil {
		q.ContactName = sanitize.Text(*req.ContactName)
	}
	if req.ContactEmail != nil {
		q.ContactEmail = strings.ToLower(strings.TrimSpace(*req.ContactEmail))
	}
	if req.ContactPhone != nil {
		q.ContactPhone = phone.NormalizeE164(*req.ContactPhone)
	}
	if req.ServiceAddress != nil {
		q.ServiceAddress = sanitize.Text(*req.ServiceAddress)
	}
	if req.ContractTerm != nil {
		q.ContractTerm = int(*req.ContractTerm)
	}
	if req.CustomDiscountPercent != nil {
		q.CustomDiscountPercent = *req.CustomDiscountPercent
	}
	if req.CustomDiscountAmount != nil {
		q.CustomDiscountAmount = *req.CustomDiscountAmount
	}
	if req.DiscountReason != nil {
		q.DiscountReason = sanitize.TextPtr(req.DiscountReason)
	}
	if req.CustomerNotes != nil {
		q.CustomerNotes = sanitize.TextPtr(req.CustomerNotes)
	}
	if req.AdminNotes != nil {
		q.AdminNotes = sanitize.TextPtr(req.AdminNotes)
	}
	if req.ValidUntil != nil {
		q.ValidUntil = req.ValidUntil.UTC()
	}
}

// GetQuoteWithItems returns nil without error when the quote does not exist.
func (s *Service) GetQuoteWithItems(ctx context.Context, id uuid.UUID) (*transport.QuoteResponse, error) {
	quote, err := s.repo.GetByID(ctx, id)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.storeError(ctx, "get_quote", err)
	}

	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return nil, s.storeError(ctx, "list_quote_items", err)
	}
	sig, err := s.loadSignature(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(quote, items, sig), nil
}

// DeleteBusinessQuote removes a quote that is still deletable.
func (s *Service) DeleteBusinessQuote(ctx context.Context, id uuid.UUID) error {
	quote, err := s.lookupQuote(ctx, id)
	if err != nil {
		return err
	}
	if !CanDeleteQuote(transport.QuoteStatus(quote.Status)) {
		return apperr.Conflict(fmt.Sprintf("quote in status %s cannot be deleted", quote.Status)).WithCode(apperr.CodeQuoteNotDeletable)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return coded(apperr.KindInternal, apperr.CodeQuoteDelete, "failed to delete quote", err)
	}

	s.publish(ctx, events.QuoteDeleted{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     quote.ID,
		QuoteNumber: quote.QuoteNumber,
	})
	return nil
}

// ListBusinessQuotes returns a page of quotes with their items.
func (s *Service) ListBusinessQuotes(ctx context.Context, req transport.ListQuotesRequest) (*transport.QuoteListResponse, error) {
	page := req.Page
	if page < 1 {
		page = defaultPage
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := repository.ListParams{
		Search:   strings.TrimSpace(req.Search),
		Page:     page,
		PageSize: pageSize,
	}
	if req.Status != "" {
		status := req.Status
		params.Status = &status
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, s.storeError(ctx, "list_quotes", err)
	}

	responses := make([]transport.QuoteResponse, len(result.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listItemConcurrency)
	for i := range result.Items {
		quote := &result.Items[i]
		g.Go(func() error {
			items, err := s.repo.ListItems(gctx, quote.ID)
			if err != nil {
				return err
			}
			responses[i] = *s.buildResponse(quote, items, nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.storeError(ctx, "list_quote_items", err)
	}

	return &transport.QuoteListResponse{
		Items:      responses,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// PreviewPricing prices a prospective quote without storing anything.
func (s *Service) PreviewPricing(ctx context.Context, req transport.CalculatePricingRequest) (*transport.CalculatePricingResponse, error) {
	packages, err := s.fetchPackages(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	lines := make([]transport.LineItem, len(req.Items))
	for i, it := range req.Items {
		pkg := packages[i]
		lines[i] = transport.LineItem{
			PackageID:         pkg.ID,
			ItemType:          itemTypeOrDefault(it.ItemType),
			Quantity:          quantityOrDefault(it.Quantity),
			MonthlyPrice:      pkg.MonthlyPrice,
			InstallationPrice: pkg.InstallationPrice,
			ServiceName:       pkg.Name,
			ServiceType:       pkg.ServiceType,
			SpeedDown:         pkg.SpeedDown,
			SpeedUp:           pkg.SpeedUp,
			DataCapGB:         pkg.DataCapGB,
			Notes:             it.Notes,
			DisplayOrder:      i,
		}
	}

	discount := ResolveDiscount(req.DiscountPercent, req.DiscountAmount, req.DiscountReason)
	pricing := CalculatePricingBreakdown(lines, req.ContractTerm, discount)
	if err := checkDiscount(pricing.SubtotalMonthly, req.DiscountPercent, req.DiscountAmount); err != nil {
		return nil, err
	}
	return &transport.CalculatePricingResponse{
		Items:   lines,
		Pricing: pricing,
	}, nil
}

// checkDiscount rejects a discount that does not fit the monthly subtotal.
// A flat amount is ignored when a percentage takes precedence over it.
func checkDiscount(subtotal, percent, amount float64) error {
	if percent > 0 {
		amount = 0
	}
	if v := ValidateDiscount(subtotal, percent, amount); !v.Valid {
		return validationError([]string{v.Error})
	}
	return nil
}
