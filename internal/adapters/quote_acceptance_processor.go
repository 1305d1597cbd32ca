package adapters

import (
	"bytes"
	"context"
	"fmt"

	"circletel_backend/internal/adapters/storage"
	"circletel_backend/internal/quotes/transport"
	"circletel_backend/platform/logger"

	"github.com/google/uuid"
)

const pdfContentType = "application/pdf"

// QuotePDFSource renders quote documents and records where the archived
// copy lives. Implemented by the quotes service.
type QuotePDFSource interface {
	GetQuotePDF(ctx context.Context, id uuid.UUID, opts transport.PDFOptions) ([]byte, string, error)
	RecordPDFFileKey(ctx context.Context, id uuid.UUID, fileKey string) error
}

// QuoteAcceptanceProcessor implements notification.QuoteAcceptanceProcessor.
// It renders the signed quote PDF, uploads it to object storage, and
// persists the file key on the quote.
type QuoteAcceptanceProcessor struct {
	quotes  QuotePDFSource
	storage storage.StorageService // nil skips archiving
	bucket  string
	log     *logger.Logger
}

// NewQuoteAcceptanceProcessor creates a new processor adapter.
func NewQuoteAcceptanceProcessor(quotes QuotePDFSource, storageSvc storage.StorageService, bucket string, log *logger.Logger) *QuoteAcceptanceProcessor {
	return &QuoteAcceptanceProcessor{
		quotes:  quotes,
		storage: storageSvc,
		bucket:  bucket,
		log:     log,
	}
}

// GenerateAndStorePDF renders the signed document and archives it. The
// rendered bytes are returned whenever rendering succeeded, including when
// storage is disabled or archiving fails, so the caller can still attach
// them to the confirmation email.
func (p *QuoteAcceptanceProcessor) GenerateAndStorePDF(ctx context.Context, quoteID uuid.UUID) (string, []byte, error) {
	pdfBytes, fileName, err := p.quotes.GetQuotePDF(ctx, quoteID, transport.PDFOptions{IncludeTerms: true, IncludeSignature: true})
	if err != nil {
		return "", nil, fmt.Errorf("generate signed PDF: %w", err)
	}

	if p.storage == nil {
		return fileName, pdfBytes, nil
	}

	folder := "signed/" + quoteID.String()
	fileKey, err := p.storage.UploadFile(ctx, p.bucket, folder, fileName, pdfContentType, bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return fileName, pdfBytes, fmt.Errorf("upload signed PDF: %w", err)
	}

	if err := p.quotes.RecordPDFFileKey(ctx, quoteID, fileKey); err != nil {
		if delErr := p.storage.DeleteObject(ctx, p.bucket, fileKey); delErr != nil {
			p.log.CompensationFailed("delete_signed_pdf", fileKey, err, delErr)
		}
		return fileName, pdfBytes, fmt.Errorf("persist PDF file key: %w", err)
	}

	p.log.Info("signed quote PDF archived", "quoteId", quoteID, "fileKey", fileKey)
	return fileName, pdfBytes, nil
}

// SignedPDFURL returns a short-lived download link for an archived signed
// PDF.
func (p *QuoteAcceptanceProcessor) SignedPDFURL(ctx context.Context, fileKey string) (string, error) {
	if p.storage == nil {
		return "", fmt.Errorf("object storage is not configured")
	}
	presigned, err := p.storage.GenerateDownloadURL(ctx, p.bucket, fileKey)
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}
