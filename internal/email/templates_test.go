package email

import (
	"context"
	"strings"
	"testing"
)

func TestRenderQuoteProposal(t *testing.T) {
	html, err := renderQuoteProposal(QuoteProposal{
		ContactName:  "Thandi <Nkosi>",
		CompanyName:  "Acme Logistics",
		QuoteNumber:  "BQ-2026-0001",
		ProposalURL:  "https://circletel.co.za/quotes/abc123",
		TotalMonthly: 1033.85,
		ContractTerm: 24,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"BQ-2026-0001", "24 months", "https://circletel.co.za/quotes/abc123", "View and accept quote"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected output to contain %q", want)
		}
	}
	if strings.Contains(html, "<Nkosi>") {
		t.Fatal("expected contact name to be escaped")
	}
}

func TestRenderQuoteAcceptedAttachmentNote(t *testing.T) {
	data := QuoteAccepted{SignerName: "Thandi", CompanyName: "Acme", QuoteNumber: "BQ-2026-0002", TotalMonthly: 1150, TotalContractValue: 13800}

	with, err := renderQuoteAccepted("quote_accepted.html", "Thanks", data, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(with, "signed copy") {
		t.Fatal("expected attachment note")
	}

	without, err := renderQuoteAccepted("quote_accepted.html", "Thanks", data, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(without, "signed copy") {
		t.Fatal("expected no attachment note")
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, err := renderEmailTemplate("missing.html", nil); err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestNoopSender(t *testing.T) {
	var s Sender = NoopSender{}
	if err := s.SendQuoteProposalEmail(context.Background(), "a@b.co.za", QuoteProposal{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
