// Package email delivers customer and staff notifications over SMTP.
package email

import "context"

// Attachment represents a file attachment for an email.
type Attachment struct {
	Content  []byte
	FileName string // e.g. "BQ-2026-0042.pdf"
	MIMEType string
}

// Sender is the outbound mail surface used by the notification subscribers.
type Sender interface {
	SendQuoteProposalEmail(ctx context.Context, toEmail string, data QuoteProposal) error
	SendQuoteAcceptedEmail(ctx context.Context, toEmail string, data QuoteAccepted, attachments ...Attachment) error
	SendQuoteAcceptedNoticeEmail(ctx context.Context, toEmail string, data QuoteAccepted) error
}

// QuoteProposal is the content of the "your quote is ready" email.
type QuoteProposal struct {
	ContactName  string
	CompanyName  string
	QuoteNumber  string
	ProposalURL  string
	TotalMonthly float64
	ContractTerm int
}

// QuoteAccepted is the content of the acceptance confirmation and the
// internal notice.
type QuoteAccepted struct {
	SignerName         string
	CompanyName        string
	QuoteNumber        string
	TotalMonthly       float64
	TotalContractValue float64
}

// NoopSender discards every message. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendQuoteProposalEmail(ctx context.Context, toEmail string, data QuoteProposal) error {
	return nil
}

func (NoopSender) SendQuoteAcceptedEmail(ctx context.Context, toEmail string, data QuoteAccepted, attachments ...Attachment) error {
	return nil
}

func (NoopSender) SendQuoteAcceptedNoticeEmail(ctx context.Context, toEmail string, data QuoteAccepted) error {
	return nil
}

var (
	_ Sender = NoopSender{}
	_ Sender = (*SMTPSender)(nil)
)
