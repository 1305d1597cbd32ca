package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QuoteReader reads quote headers and lines.
type QuoteReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	GetByPublicToken(ctx context.Context, token string) (*Quote, error)
	ListItems(ctx context.Context, quoteID uuid.UUID) ([]QuoteItem, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]Quote, error)
	GetSignature(ctx context.Context, quoteID uuid.UUID) (*Signature, error)
}

// QuoteWriter persists quote headers and lines.
type QuoteWriter interface {
	NextQuoteNumber(ctx context.Context, year int) (string, error)
	Create(ctx context.Context, quote *Quote) error
	CreateItems(ctx context.Context, items []QuoteItem) error
	Update(ctx context.Context, quote *Quote) error
	UpdatePricing(ctx context.Context, quoteID uuid.UUID, pricing Pricing, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, update StatusUpdate) error
	SetPDFFileKey(ctx context.Context, quoteID uuid.UUID, fileKey string) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateSignature(ctx context.Context, sig *Signature) error
	DeleteSignature(ctx context.Context, quoteID uuid.UUID) error
}

// Repository is everything the quote service needs from storage.
type Repository interface {
	QuoteReader
	QuoteWriter
}

var _ Repository = (*PgRepository)(nil)
