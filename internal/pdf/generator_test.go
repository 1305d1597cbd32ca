package pdf

import (
	"bytes"
	"testing"
	"time"

	"circletel_backend/internal/quotes/transport"

	"github.com/google/uuid"
)

type companyConfig struct{}

func (companyConfig) GetCompanyName() string               { return "CircleTel (Pty) Ltd" }
func (companyConfig) GetCompanyEmail() string              { return "quotes@circletel.co.za" }
func (companyConfig) GetCompanyPhone() string              { return "+27 87 087 6305" }
func (companyConfig) GetCompanyAddress() string            { return "Centurion, Gauteng" }
func (companyConfig) GetCompanyRegistrationNumber() string { return "2008/026404/07" }
func (companyConfig) GetCompanyVatNumber() string          { return "4380269318" }

func sampleQuote(status transport.QuoteStatus) *transport.QuoteResponse {
	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	notes := "Install before month end."
	return &transport.QuoteResponse{
		ID:             uuid.New(),
		QuoteNumber:    "BQ-2026-0001",
		Status:         status,
		CompanyName:    "Acme Logistics (Pty) Ltd",
		ContactName:    "Thandi Nkosi",
		ContactEmail:   "thandi@acme.co.za",
		ContactPhone:   "+27821234567",
		ServiceAddress: "12 Long Street, Cape Town",
		ContractTerm:   transport.ContractTerm24,
		CustomerNotes:  &notes,
		Pricing: transport.PricingBreakdown{
			SubtotalMonthly:      899,
			MonthlyAfterDiscount: 899,
			VatMonthly:           134.85,
			TotalMonthly:         1033.85,
			TotalContractValue:   24812.40,
		},
		Items: []transport.QuoteItemResponse{{
			LineItem: transport.LineItem{
				ServiceName:  "BizFibre 100",
				Quantity:     1,
				MonthlyPrice: 899,
				SpeedDown:    100,
				SpeedUp:      100,
			},
			LineMonthlyTotal: 899,
		}},
		ValidUntil: created.AddDate(0, 0, 30),
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestRenderQuoteProducesPDF(t *testing.T) {
	g := NewGenerator(companyConfig{})

	out, err := g.RenderQuote(sampleQuote(transport.QuoteStatusDraft), transport.PDFOptions{IncludeTerms: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", out[:min(len(out), 8)])
	}
}

func TestRenderQuoteWithSignature(t *testing.T) {
	g := NewGenerator(companyConfig{})
	q := sampleQuote(transport.QuoteStatusAccepted)
	signedAt := q.CreatedAt.Add(48 * time.Hour)
	q.AcceptedAt = &signedAt
	q.Signature = &transport.SignatureResponse{SignerName: "Thandi Nkosi", SignerEmail: "thandi@acme.co.za", SignedAt: signedAt}

	out, err := g.RenderQuote(q, transport.PDFOptions{IncludeTerms: true, IncludeSignature: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected non-empty document")
	}
}

func TestRenderQuoteNil(t *testing.T) {
	if _, err := NewGenerator(companyConfig{}).RenderQuote(nil, transport.PDFOptions{}); err == nil {
		t.Fatal("expected error for nil quote")
	}
}

func TestStatusLabel(t *testing.T) {
	if got := statusLabel(transport.QuoteStatusPendingApproval); got != "Pending approval" {
		t.Fatalf("expected %q, got %q", "Pending approval", got)
	}
}

func TestJoinPartsSkipsBlanks(t *testing.T) {
	if got := joinParts([]string{"a", "", " ", "b"}, " | "); got != "a | b" {
		t.Fatalf("expected %q, got %q", "a | b", got)
	}
}
