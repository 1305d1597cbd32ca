package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"circletel_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const quoteNotFoundMsg = "quote not found"

// Pricing is the persisted copy of a quote's pricing breakdown.
type Pricing struct {
	SubtotalMonthly       float64
	SubtotalInstallation  float64
	DiscountAmount        float64
	VatAmountMonthly      float64
	VatAmountInstallation float64
	TotalMonthly          float64
	TotalInstallation     float64
	TotalContractValue    float64
}

// Quote is a business_quotes row.
type Quote struct {
	ID                    uuid.UUID
	QuoteNumber           string
	CompanyName           string
	RegistrationNumber    *string
	VatNumber             *string
	ContactName           string
	ContactEmail          string
	ContactPhone          string
	ServiceAddress        string
	ContractTerm          int
	Status                string
	CustomDiscountPercent float64
	CustomDiscountAmount  float64
	DiscountReason        *string
	Pricing
	ValidUntil    time.Time
	CustomerNotes *string
	AdminNotes    *string
	PublicToken   *string
	PDFFileKey    *string
	CreatedBy     *uuid.UUID
	UpdatedBy     *uuid.UUID
	ApprovedBy    *uuid.UUID
	ApprovedAt    *time.Time
	SentAt        *time.Time
	ViewedAt      *time.Time
	AcceptedAt    *time.Time
	RejectedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// QuoteItem is a business_quote_items row.
type QuoteItem struct {
	ID                uuid.UUID
	QuoteID           uuid.UUID
	PackageID         uuid.UUID
	ItemType          string
	Quantity          int
	MonthlyPrice      float64
	InstallationPrice float64
	ServiceName       string
	ServiceType       string
	SpeedDown         int
	SpeedUp           int
	DataCapGB         *int
	Notes             *string
	DisplayOrder      int
	CreatedAt         time.Time
}

// StatusUpdate moves a quote from one status to another. The matching
// timestamp column is stamped with At.
type StatusUpdate struct {
	QuoteID     uuid.UUID
	From        string
	To          string
	At          time.Time
	ActorID     *uuid.UUID
	PublicToken *string
}

// ListParams filters the quote list.
type ListParams struct {
	Status   *string
	Search   string
	Page     int
	PageSize int
}

// ListResult is one page of quotes.
type ListResult struct {
	Items      []Quote
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// PgRepository stores quotes in Postgres.
type PgRepository struct {
	pool *pgxpool.Pool
}

// New creates a new quotes repository.
func New(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

const quoteColumns = `
	id, quote_number, company_name, registration_number, vat_number,
	contact_name, contact_email, contact_phone, service_address,
	contract_term, status, custom_discount_percent, custom_discount_amount, discount_reason,
	subtotal_monthly, subtotal_installation, discount_amount,
	vat_amount_monthly, vat_amount_installation, total_monthly, total_installation, total_contract_value,
	valid_until, customer_notes, admin_notes, public_token, pdf_file_key,
	created_by, updated_by, approved_by, approved_at, sent_at, viewed_at, accepted_at, rejected_at,
	created_at, updated_at`

func scanQuote(row rowScanner) (*Quote, error) {
	var q Quote
	err := row.Scan(
		&q.ID, &q.QuoteNumber, &q.CompanyName, &q.RegistrationNumber, &q.VatNumber,
		&q.ContactName, &q.ContactEmail, &q.ContactPhone, &q.ServiceAddress,
		&q.ContractTerm, &q.Status, &q.CustomDiscountPercent, &q.CustomDiscountAmount, &q.DiscountReason,
		&q.SubtotalMonthly, &q.SubtotalInstallation, &q.DiscountAmount,
		&q.VatAmountMonthly, &q.VatAmountInstallation, &q.TotalMonthly, &q.TotalInstallation, &q.TotalContractValue,
		&q.ValidUntil, &q.CustomerNotes, &q.AdminNotes, &q.PublicToken, &q.PDFFileKey,
		&q.CreatedBy, &q.UpdatedBy, &q.ApprovedBy, &q.ApprovedAt, &q.SentAt, &q.ViewedAt, &q.AcceptedAt, &q.RejectedAt,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// NextQuoteNumber atomically generates the next BQ-YYYY-NNNN number for year.
func (r *PgRepository) NextQuoteNumber(ctx context.Context, year int) (string, error) {
	var next int
	query := `
		INSERT INTO business_quote_counters (year, last_value)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = business_quote_counters.last_value + 1
		RETURNING last_value`

	if err := r.pool.QueryRow(ctx, query, year).Scan(&next); err != nil {
		return "", fmt.Errorf("failed to generate quote number: %w", err)
	}
	return FormatQuoteNumber(year, next), nil
}

// FormatQuoteNumber renders a quote number such as BQ-2026-0042.
func FormatQuoteNumber(year, seq int) string {
	return fmt.Sprintf("BQ-%d-%04d", year, seq)
}

// Create inserts a quote header.
func (r *PgRepository) Create(ctx context.Context, q *Quote) error {
	query := `
		INSERT INTO business_quotes (
			id, quote_number, company_name, registration_number, vat_number,
			contact_name, contact_email, contact_phone, service_address,
			contract_term, status, custom_discount_percent, custom_discount_amount, discount_reason,
			valid_until, customer_notes, created_by, updated_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err := r.pool.Exec(ctx, query,
		q.ID, q.QuoteNumber, q.CompanyName, q.RegistrationNumber, q.VatNumber,
		q.ContactName, q.ContactEmail, q.ContactPhone, q.ServiceAddress,
		q.ContractTerm, q.Status, q.CustomDiscountPercent, q.CustomDiscountAmount, q.DiscountReason,
		q.ValidUntil, q.CustomerNotes, q.CreatedBy, q.UpdatedBy, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}
	return nil
}

// CreateItems inserts all lines in one transaction so a failure leaves none behind.
func (r *PgRepository) CreateItems(ctx context.Context, items []QuoteItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{
			it.ID, it.QuoteID, it.PackageID, it.ItemType, it.Quantity,
			it.MonthlyPrice, it.InstallationPrice, it.ServiceName, it.ServiceType,
			it.SpeedDown, it.SpeedUp, it.DataCapGB, it.Notes, it.DisplayOrder, it.CreatedAt,
		}
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"business_quote_items"},
		[]string{
			"id", "quote_id", "package_id", "item_type", "quantity",
			"monthly_price", "installation_price", "service_name", "service_type",
			"speed_down", "speed_up", "data_cap_gb", "notes", "display_order", "created_at",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to insert quote items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit quote items: %w", err)
	}
	return nil
}

// ListItems returns a quote's lines ordered for display.
func (r *PgRepository) ListItems(ctx context.Context, quoteID uuid.UUID) ([]QuoteItem, error) {
	query := `
		SELECT id, quote_id, package_id, item_type, quantity,
			monthly_price, installation_price, service_name, service_type,
			speed_down, speed_up, data_cap_gb, notes, display_order, created_at
		FROM business_quote_items
		WHERE quote_id = $1
		ORDER BY display_order ASC, created_at ASC`

	rows, err := r.pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quote items: %w", err)
	}
	defer rows.Close()

	items := make([]QuoteItem, 0)
	for rows.Next() {
		var it QuoteItem
		if err := rows.Scan(
			&it.ID, &it.QuoteID, &it.PackageID, &it.ItemType, &it.Quantity,
			&it.MonthlyPrice, &it.InstallationPrice, &it.ServiceName, &it.ServiceType,
			&it.SpeedDown, &it.SpeedUp, &it.DataCapGB, &it.Notes, &it.DisplayOrder, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quote items: %w", err)
	}
	return items, nil
}

// GetByID fetches a quote header.
func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	q, err := scanQuote(r.pool.QueryRow(ctx, `SELECT `+quoteColumns+` FROM business_quotes WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(quoteNotFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return q, nil
}

// GetByPublicToken fetches a quote by its customer share token.
func (r *PgRepository) GetByPublicToken(ctx context.Context, token string) (*Quote, error) {
	q, err := scanQuote(r.pool.QueryRow(ctx, `SELECT `+quoteColumns+` FROM business_quotes WHERE public_token = $1`, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(quoteNotFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote by token: %w", err)
	}
	return q, nil
}

// Update writes the editable header fields and pricing.
func (r *PgRepository) Update(ctx context.Context, q *Quote) error {
	query := `
		UPDATE business_quotes SET
			company_name = $2, registration_number = $3, vat_number = $4,
			contact_name = $5, contact_email = $6, contact_phone = $7, service_address = $8,
			contract_term = $9, custom_discount_percent = $10, custom_discount_amount = $11, discount_reason = $12,
			subtotal_monthly = $13, subtotal_installation = $14, discount_amount = $15,
			vat_amount_monthly = $16, vat_amount_installation = $17,
			total_monthly = $18, total_installation = $19, total_contract_value = $20,
			valid_until = $21, customer_notes = $22, admin_notes = $23,
			updated_by = $24, updated_at = $25
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		q.ID, q.CompanyName, q.RegistrationNumber, q.VatNumber,
		q.ContactName, q.ContactEmail, q.ContactPhone, q.ServiceAddress,
		q.ContractTerm, q.CustomDiscountPercent, q.CustomDiscountAmount, q.DiscountReason,
		q.SubtotalMonthly, q.SubtotalInstallation, q.DiscountAmount,
		q.VatAmountMonthly, q.VatAmountInstallation,
		q.TotalMonthly, q.TotalInstallation, q.TotalContractValue,
		q.ValidUntil, q.CustomerNotes, q.AdminNotes,
		q.UpdatedBy, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update quote: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

// UpdatePricing overwrites the persisted pricing breakdown.
func (r *PgRepository) UpdatePricing(ctx context.Context, quoteID uuid.UUID, p Pricing, updatedAt time.Time) error {
	query := `
		UPDATE business_quotes SET
			subtotal_monthly = $2, subtotal_installation = $3, discount_amount = $4,
			vat_amount_monthly = $5, vat_amount_installation = $6,
			total_monthly = $7, total_installation = $8, total_contract_value = $9,
			updated_at = $10
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, quoteID,
		p.SubtotalMonthly, p.SubtotalInstallation, p.DiscountAmount,
		p.VatAmountMonthly, p.VatAmountInstallation,
		p.TotalMonthly, p.TotalInstallation, p.TotalContractValue,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update quote pricing: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

// UpdateStatus applies a transition only if the quote is still in From.
// A concurrent change surfaces as a conflict.
func (r *PgRepository) UpdateStatus(ctx context.Context, u StatusUpdate) error {
	query := `
		UPDATE business_quotes SET
			status = $3,
			public_token = COALESCE($5, public_token),
			approved_by = CASE WHEN $3 = 'approved' THEN $6 ELSE approved_by END,
			approved_at = CASE WHEN $3 = 'approved' THEN $4 ELSE approved_at END,
			sent_at     = CASE WHEN $3 = 'sent' THEN $4 ELSE sent_at END,
			viewed_at   = CASE WHEN $3 = 'viewed' THEN $4 ELSE viewed_at END,
			accepted_at = CASE WHEN $3 = 'accepted' THEN $4 ELSE accepted_at END,
			rejected_at = CASE WHEN $3 = 'rejected' THEN $4 ELSE rejected_at END,
			updated_by  = COALESCE($6, updated_by),
			updated_at  = $4
		WHERE id = $1 AND status = $2`

	result, err := r.pool.Exec(ctx, query, u.QuoteID, u.From, u.To, u.At, u.PublicToken, u.ActorID)
	if err != nil {
		return fmt.Errorf("failed to update quote status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.Conflict("quote status changed concurrently")
	}
	return nil
}

// SetPDFFileKey records where the signed PDF was archived.
func (r *PgRepository) SetPDFFileKey(ctx context.Context, quoteID uuid.UUID, fileKey string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE business_quotes SET pdf_file_key = $2, updated_at = now() WHERE id = $1`,
		quoteID, fileKey)
	if err != nil {
		return fmt.Errorf("failed to set pdf file key: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

// Delete removes a quote. Items and signature cascade.
func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM business_quotes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

// List returns quotes newest first, filtered by status and search text.
func (r *PgRepository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	var statusParam interface{}
	if params.Status != nil {
		statusParam = *params.Status
	}
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}

	baseQuery := `
		FROM business_quotes
		WHERE ($1::text IS NULL OR status = $1)
			AND ($2::text IS NULL OR quote_number ILIKE $2 OR company_name ILIKE $2 OR contact_email ILIKE $2)`
	args := []interface{}{statusParam, searchParam}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	rows, err := r.pool.Query(ctx,
		"SELECT "+quoteColumns+" "+baseQuery+" ORDER BY created_at DESC LIMIT $3 OFFSET $4",
		append(args, params.PageSize, offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	items := make([]Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		items = append(items, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: (total + params.PageSize - 1) / params.PageSize,
	}, nil
}

// ListExpired returns sent or viewed quotes whose validity ended before now.
func (r *PgRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]Quote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+quoteColumns+`
		FROM business_quotes
		WHERE status IN ('sent', 'viewed') AND valid_until < $1
		ORDER BY valid_until ASC
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, *q)
	}
	return quotes, rows.Err()
}
