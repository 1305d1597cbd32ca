// Package notification sends customer and staff emails in response to
// quote domain events. Domain modules publish events and never talk to
// the mail provider directly.
package notification

import (
	"context"
	"strings"

	"circletel_backend/internal/email"
	"circletel_backend/internal/events"
	"circletel_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	quotePublicPathPrefix = "/quotes/view/"
	pdfMIMEType           = "application/pdf"
)

// Config provides the settings notification links and notices need.
type Config interface {
	GetAppBaseURL() string
	GetCompanyEmail() string
}

// QuoteAcceptanceProcessor renders and archives the signed quote PDF.
type QuoteAcceptanceProcessor interface {
	GenerateAndStorePDF(ctx context.Context, quoteID uuid.UUID) (fileName string, pdf []byte, err error)
}

// Module handles all notification-related event subscriptions.
type Module struct {
	sender     email.Sender
	cfg        Config
	log        *logger.Logger
	acceptance QuoteAcceptanceProcessor
}

// New creates a notification module.
func New(sender email.Sender, cfg Config, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{sender: sender, cfg: cfg, log: log}
}

// SetQuoteAcceptanceProcessor enables signed PDF archiving and attachments.
func (m *Module) SetQuoteAcceptanceProcessor(p QuoteAcceptanceProcessor) {
	m.acceptance = p
}

// RegisterHandlers subscribes to the quote events on the bus.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.QuoteSent{}.EventName(), m)
	bus.Subscribe(events.QuoteAccepted{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.QuoteSent:
		return m.handleQuoteSent(ctx, e)
	case events.QuoteAccepted:
		return m.handleQuoteAccepted(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleQuoteSent(ctx context.Context, e events.QuoteSent) error {
	err := m.sender.SendQuoteProposalEmail(ctx, e.ContactEmail, email.QuoteProposal{
		ContactName:  e.ContactName,
		CompanyName:  e.CompanyName,
		QuoteNumber:  e.QuoteNumber,
		ProposalURL:  m.publicQuoteURL(e.PublicToken),
		TotalMonthly: e.TotalMonthly,
		ContractTerm: e.ContractTerm,
	})
	if err != nil {
		m.log.Error("failed to send quote proposal email", "error", err, "quoteId", e.QuoteID)
		return err
	}

	m.log.Info("quote proposal email sent", "quoteId", e.QuoteID, "quoteNumber", e.QuoteNumber)
	return nil
}

func (m *Module) handleQuoteAccepted(ctx context.Context, e events.QuoteAccepted) error {
	var attachments []email.Attachment
	if m.acceptance != nil {
		fileName, pdf, err := m.acceptance.GenerateAndStorePDF(ctx, e.QuoteID)
		if err != nil {
			// A failed archive still yields the rendered copy.
			m.log.Error("failed to process signed quote PDF", "error", err, "quoteId", e.QuoteID)
		}
		if len(pdf) > 0 {
			attachments = append(attachments, email.Attachment{Content: pdf, FileName: fileName, MIMEType: pdfMIMEType})
		}
	}

	data := email.QuoteAccepted{
		SignerName:         e.SignerName,
		CompanyName:        e.CompanyName,
		QuoteNumber:        e.QuoteNumber,
		TotalMonthly:       e.TotalMonthly,
		TotalContractValue: e.TotalContractValue,
	}

	var firstErr error
	for _, to := range recipients(e.ContactEmail, e.SignerEmail) {
		if err := m.sender.SendQuoteAcceptedEmail(ctx, to, data, attachments...); err != nil {
			m.log.Error("failed to send quote accepted email", "error", err, "quoteId", e.QuoteID)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if notice := strings.TrimSpace(m.cfg.GetCompanyEmail()); notice != "" {
		if err := m.sender.SendQuoteAcceptedNoticeEmail(ctx, notice, data); err != nil {
			m.log.Error("failed to send quote accepted notice", "error", err, "quoteId", e.QuoteID)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	m.log.Info("quote accepted event processed", "quoteId", e.QuoteID, "attachments", len(attachments))
	return firstErr
}

func (m *Module) publicQuoteURL(token string) string {
	return strings.TrimRight(m.cfg.GetAppBaseURL(), "/") + quotePublicPathPrefix + token
}

// recipients de-duplicates addresses case-insensitively, skipping blanks.
func recipients(addrs ...string) []string {
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
