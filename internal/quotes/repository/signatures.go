package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"circletel_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Signature is the customer's acceptance of a quote.
type Signature struct {
	ID                     uuid.UUID
	QuoteID                uuid.UUID
	SignerName             string
	SignerEmail            string
	SignerIDNumber         string
	SignerTitle            *string
	SignatureData          string
	TermsAccepted          bool
	FicaDocumentsConfirmed bool
	CipcDocumentsConfirmed bool
	IPAddress              *string
	UserAgent              *string
	SignedAt               time.Time
}

// CreateSignature stores a signature. A quote can only be signed once.
func (r *PgRepository) CreateSignature(ctx context.Context, s *Signature) error {
	query := `
		INSERT INTO business_quote_signatures (
			id, quote_id, signer_name, signer_email, signer_id_number, signer_title,
			signature_data, terms_accepted, fica_documents_confirmed, cipc_documents_confirmed,
			ip_address, user_agent, signed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.QuoteID, s.SignerName, s.SignerEmail, s.SignerIDNumber, s.SignerTitle,
		s.SignatureData, s.TermsAccepted, s.FicaDocumentsConfirmed, s.CipcDocumentsConfirmed,
		s.IPAddress, s.UserAgent, s.SignedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("quote has already been signed")
		}
		return fmt.Errorf("failed to insert signature: %w", err)
	}
	return nil
}

// GetSignature returns the signature for a quote.
func (r *PgRepository) GetSignature(ctx context.Context, quoteID uuid.UUID) (*Signature, error) {
	var s Signature
	err := r.pool.QueryRow(ctx, `
		SELECT id, quote_id, signer_name, signer_email, signer_id_number, signer_title,
			signature_data, terms_accepted, fica_documents_confirmed, cipc_documents_confirmed,
			ip_address, user_agent, signed_at
		FROM business_quote_signatures
		WHERE quote_id = $1`, quoteID).Scan(
		&s.ID, &s.QuoteID, &s.SignerName, &s.SignerEmail, &s.SignerIDNumber, &s.SignerTitle,
		&s.SignatureData, &s.TermsAccepted, &s.FicaDocumentsConfirmed, &s.CipcDocumentsConfirmed,
		&s.IPAddress, &s.UserAgent, &s.SignedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("signature not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signature: %w", err)
	}
	return &s, nil
}

// DeleteSignature removes the signature for a quote. Deleting a missing
// signature is not an error.
func (r *PgRepository) DeleteSignature(ctx context.Context, quoteID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM business_quote_signatures WHERE quote_id = $1`, quoteID); err != nil {
		return fmt.Errorf("failed to delete signature: %w", err)
	}
	return nil
}
