package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"circletel_backend/internal/events"
	"circletel_backend/internal/quotes/repository"
	"circletel_backend/internal/quotes/transport"
	"circletel_backend/platform/apperr"
	"circletel_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	publicTokenBytes = 32
	expiryBatchSize  = 100
)

// UpdateQuoteStatus moves a quote to next if the transition table allows it.
// Moving to sent goes through SendQuote so the customer link is issued.
func (s *Service) UpdateQuoteStatus(ctx context.Context, id uuid.UUID, next transport.QuoteStatus, actorID *uuid.UUID) (*transport.QuoteResponse, error) {
	if next == transport.QuoteStatusSent {
		return s.SendQuote(ctx, id, actorID)
	}

	quote, err := s.lookupQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, quote, next, actorID, nil); err != nil {
		return nil, err
	}
	return s.GetQuoteWithItems(ctx, id)
}

// SendQuote issues the public link for an approved quote and marks it sent.
func (s *Service) SendQuote(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) (*transport.QuoteResponse, error) {
	quote, err := s.lookupQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanSendQuote(transport.QuoteStatus(quote.Status)) {
		return nil, apperr.Conflict(fmt.Sprintf("quote in status %s cannot be sent", quote.Status)).WithCode(apperr.CodeQuoteNotSendable)
	}

	token, err := newPublicToken()
	if err != nil {
		return nil, coded(apperr.KindInternal, apperr.CodeUnknown, "failed to generate public token", err)
	}
	if err := s.transition(ctx, quote, transport.QuoteStatusSent, actorID, &token); err != nil {
		return nil, err
	}

	s.publish(ctx, events.QuoteSent{
		BaseEvent:    events.NewBaseEvent(),
		QuoteID:      quote.ID,
		QuoteNumber:  quote.QuoteNumber,
		PublicToken:  token,
		CompanyName:  quote.CompanyName,
		ContactName:  quote.ContactName,
		ContactEmail: quote.ContactEmail,
		TotalMonthly: quote.TotalMonthly,
		ContractTerm: quote.ContractTerm,
	})

	if s.expiry != nil {
		if err := s.expiry.ScheduleQuoteExpiry(ctx, quote.ID, quote.ValidUntil); err != nil {
			s.log.WithContext(ctx).Warn("failed to schedule quote expiry", "quoteId", quote.ID, "error", err)
		}
	}

	return s.GetQuoteWithItems(ctx, id)
}

// GetPublicQuote returns the customer view of a quote. The first view of a
// sent, unexpired quote moves it to viewed.
func (s *Service) GetPublicQuote(ctx context.Context, token string) (*transport.PublicQuoteResponse, error) {
	quote, err := s.lookupByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if quote.Status == string(transport.QuoteStatusSent) && !IsQuoteExpired(quote.ValidUntil, s.now()) {
		if err := s.transition(ctx, quote, transport.QuoteStatusViewed, nil, nil); err != nil && !apperr.Is(err, apperr.KindConflict) {
			return nil, err
		}
	}

	items, err := s.repo.ListItems(ctx, quote.ID)
	if err != nil {
		return nil, s.storeError(ctx, "list_quote_items", err)
	}
	sig, err := s.loadSignature(ctx, quote.ID)
	if err != nil {
		return nil, err
	}
	return s.buildPublicResponse(quote, items, sig), nil
}

// SignQuote records the customer's signature and accepts the quote.
func (s *Service) SignQuote(ctx context.Context, token string, req transport.SignQuoteRequest, meta transport.SignatureMeta) (*transport.PublicQuoteResponse, error) {
	if result := ValidateSignQuoteRequest(req); !result.Valid {
		return nil, validationError(result.Errors)
	}

	quote, err := s.lookupByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	status := transport.QuoteStatus(quote.Status)
	if (status == transport.QuoteStatusSent || status == transport.QuoteStatusViewed) && IsQuoteExpired(quote.ValidUntil, now) {
		return nil, apperr.Gone("quote has expired").WithCode(apperr.CodeQuoteExpired)
	}
	if !CanSignQuote(status, quote.ValidUntil, now) {
		return nil, apperr.Conflict(fmt.Sprintf("quote in status %s cannot be signed", quote.Status)).WithCode(apperr.CodeQuoteNotSignable)
	}

	if status == transport.QuoteStatusSent {
		if err := s.transition(ctx, quote, transport.QuoteStatusViewed, nil, nil); err != nil {
			return nil, err
		}
	}

	sig := repository.Signature{
		ID:                     uuid.New(),
		QuoteID:                quote.ID,
		SignerName:             sanitize.Text(req.SignerName),
		SignerEmail:            req.SignerEmail,
		SignerIDNumber:         req.SignerIDNumber,
		SignerTitle:            sanitize.TextPtr(req.SignerTitle),
		SignatureData:          req.SignatureData,
		TermsAccepted:          req.TermsAccepted,
		FicaDocumentsConfirmed: req.FicaDocumentsConfirmed,
		CipcDocumentsConfirmed: req.CipcDocumentsConfirmed,
		IPAddress:              optional(meta.IPAddress),
		UserAgent:              optional(meta.UserAgent),
		SignedAt:               now,
	}
	if err := s.repo.CreateSignature(ctx, &sig); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("quote has already been signed").WithCode(apperr.CodeQuoteNotSignable)
		}
		return nil, s.storeError(ctx, "create_signature", err)
	}

	if err := s.transition(ctx, quote, transport.QuoteStatusAccepted, nil, nil); err != nil {
		s.rollbackSignature(ctx, quote, err)
		return nil, err
	}

	s.publish(ctx, events.QuoteAccepted{
		BaseEvent:          events.NewBaseEvent(),
		QuoteID:            quote.ID,
		QuoteNumber:        quote.QuoteNumber,
		CompanyName:        quote.CompanyName,
		SignerName:         sig.SignerName,
		SignerEmail:        sig.SignerEmail,
		ContactEmail:       quote.ContactEmail,
		TotalMonthly:       quote.TotalMonthly,
		TotalContractValue: quote.TotalContractValue,
	})

	items, err := s.repo.ListItems(ctx, quote.ID)
	if err != nil {
		return nil, s.storeError(ctx, "list_quote_items", err)
	}
	return s.buildPublicResponse(quote, items, &sig), nil
}

// rollbackSignature removes a signature whose accept transition failed so
// the customer can sign again.
func (s *Service) rollbackSignature(ctx context.Context, quote *repository.Quote, cause error) {
	if err := s.repo.DeleteSignature(ctx, quote.ID); err != nil {
		s.log.WithContext(ctx).CompensationFailed("sign_quote", quote.ID.String(), cause, err)
	}
}

// ExpireQuote expires a single quote if it is still open and past its
// validity. It is a no-op otherwise, so a stale scheduled task is harmless.
func (s *Service) ExpireQuote(ctx context.Context, id uuid.UUID) error {
	quote, err := s.lookupQuote(ctx, id)
	if err != nil {
		return err
	}
	if !s.isOverdue(quote) {
		return nil
	}
	err = s.transition(ctx, quote, transport.QuoteStatusExpired, nil, nil)
	if apperr.Is(err, apperr.KindConflict) {
		return nil
	}
	return err
}

// ExpireOverdueQuotes expires every sent or viewed quote past its validity
// and returns how many were expired.
func (s *Service) ExpireOverdueQuotes(ctx context.Context) (int, error) {
	quotes, err := s.repo.ListExpired(ctx, s.now().UTC(), expiryBatchSize)
	if err != nil {
		return 0, s.storeError(ctx, "list_expired_quotes", err)
	}

	expired := 0
	for i := range quotes {
		quote := &quotes[i]
		if !s.isOverdue(quote) {
			continue
		}
		err := s.transition(ctx, quote, transport.QuoteStatusExpired, nil, nil)
		if apperr.Is(err, apperr.KindConflict) {
			continue
		}
		if err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}

func (s *Service) isOverdue(q *repository.Quote) bool {
	status := transport.QuoteStatus(q.Status)
	open := status == transport.QuoteStatusSent || status == transport.QuoteStatusViewed
	return open && IsQuoteExpired(q.ValidUntil, s.now())
}

// GetQuotePDF renders the quote document.
func (s *Service) GetQuotePDF(ctx context.Context, id uuid.UUID, opts transport.PDFOptions) ([]byte, string, error) {
	if s.pdf == nil {
		return nil, "", apperr.Internal("pdf rendering is not configured").WithCode(apperr.CodeUnknown)
	}
	quote, err := s.GetQuoteWithItems(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if quote == nil {
		return nil, "", quoteNotFound()
	}
	return s.renderPDF(quote, opts)
}

// GetPublicQuotePDF returns the customer copy. An accepted quote whose
// signed PDF was archived is served as a link to that copy; otherwise the
// document is rendered, including the signature once accepted.
func (s *Service) GetPublicQuotePDF(ctx context.Context, token string) (*transport.PDFDownload, error) {
	quote, err := s.lookupByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	fileName := quote.QuoteNumber + ".pdf"
	accepted := quote.Status == string(transport.QuoteStatusAccepted)

	if accepted && s.archive != nil && quote.PDFFileKey != nil && *quote.PDFFileKey != "" {
		url, err := s.archive.SignedPDFURL(ctx, *quote.PDFFileKey)
		if err == nil {
			return &transport.PDFDownload{FileName: fileName, URL: url}, nil
		}
		s.log.WithContext(ctx).Warn("failed to presign archived quote pdf, rendering instead", "quoteId", quote.ID, "error", err)
	}

	data, fileName, err := s.GetQuotePDF(ctx, quote.ID, transport.PDFOptions{IncludeTerms: true, IncludeSignature: accepted})
	if err != nil {
		return nil, err
	}
	return &transport.PDFDownload{FileName: fileName, Data: data}, nil
}

// RecordPDFFileKey stores the object key of the archived signed PDF.
func (s *Service) RecordPDFFileKey(ctx context.Context, id uuid.UUID, fileKey string) error {
	if err := s.repo.SetPDFFileKey(ctx, id, fileKey); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return quoteNotFound()
		}
		return s.storeError(ctx, "set_pdf_file_key", err)
	}
	return nil
}

func (s *Service) renderPDF(quote *transport.QuoteResponse, opts transport.PDFOptions) ([]byte, string, error) {
	data, err := s.pdf.RenderQuote(quote, opts)
	if err != nil {
		return nil, "", coded(apperr.KindInternal, apperr.CodeUnknown, "failed to render quote pdf", err)
	}
	return data, quote.QuoteNumber + ".pdf", nil
}

func (s *Service) lookupByToken(ctx context.Context, token string) (*repository.Quote, error) {
	if token == "" {
		return nil, quoteNotFound()
	}
	quote, err := s.repo.GetByPublicToken(ctx, token)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, quoteNotFound()
	}
	if err != nil {
		return nil, s.storeError(ctx, "get_quote_by_token", err)
	}
	return quote, nil
}

// transition validates and persists a status change, then updates the
// in-memory quote to match.
func (s *Service) transition(ctx context.Context, quote *repository.Quote, next transport.QuoteStatus, actorID *uuid.UUID, publicToken *string) error {
	current := transport.QuoteStatus(quote.Status)
	if result := ValidateStatusTransition(current, next); !result.Valid {
		return apperr.Conflict(result.Errors[0]).WithCode(apperr.CodeInvalidTransition).WithDetails(result.Errors)
	}

	now := s.now().UTC()
	err := s.repo.UpdateStatus(ctx, repository.StatusUpdate{
		QuoteID:     quote.ID,
		From:        string(current),
		To:          string(next),
		At:          now,
		ActorID:     actorID,
		PublicToken: publicToken,
	})
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return coded(apperr.KindConflict, apperr.CodeInvalidTransition, "quote status changed concurrently", err)
		}
		s.log.WithContext(ctx).DatabaseError("update_quote_status", err)
		return coded(apperr.KindInternal, apperr.CodeQuoteUpdate, "failed to update quote status", err)
	}

	stampTransition(quote, next, now, actorID, publicToken)
	s.log.WithContext(ctx).QuoteTransition(quote.ID.String(), quote.QuoteNumber, string(current), string(next))
	s.publish(ctx, events.QuoteStatusChanged{
		BaseEvent:   events.NewBaseEvent(),
		QuoteID:     quote.ID,
		QuoteNumber: quote.QuoteNumber,
		OldStatus:   string(current),
		NewStatus:   string(next),
		ActorID:     actorID,
	})
	return nil
}

func stampTransition(q *repository.Quote, next transport.QuoteStatus, at time.Time, actorID *uuid.UUID, publicToken *string) {
	q.Status = string(next)
	q.UpdatedAt = at
	if actorID != nil {
		q.UpdatedBy = actorID
	}
	if publicToken != nil {
		q.PublicToken = publicToken
	}
	switch next {
	case transport.QuoteStatusApproved:
		q.ApprovedAt = &at
		q.ApprovedBy = actorID
	case transport.QuoteStatusSent:
		q.SentAt = &at
	case transport.QuoteStatusViewed:
		q.ViewedAt = &at
	case transport.QuoteStatusAccepted:
		q.AcceptedAt = &at
	case transport.QuoteStatusRejected:
		q.RejectedAt = &at
	}
}

func newPublicToken() (string, error) {
	buf := make([]byte, publicTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
