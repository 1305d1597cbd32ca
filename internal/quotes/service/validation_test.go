package service

import (
	"strings"
	"testing"

	"circletel_backend/internal/quotes/transport"

	"github.com/google/uuid"
)

func ptr[T any](v T) *T { return &v }

func validCreateRequest(itemCount int) transport.CreateQuoteRequest {
	items := make([]transport.CreateQuoteItemRequest, itemCount)
	for i := range items {
		items[i] = transport.CreateQuoteItemRequest{PackageID: uuid.NewString(), ItemType: transport.ItemTypeConnectivity}
	}
	return transport.CreateQuoteRequest{
		CompanyName:        "Acme Logistics (Pty) Ltd",
		RegistrationNumber: ptr("2020/123456/07"),
		VatNumber:          ptr("4123456789"),
		ContactName:        "Thandi Nkosi",
		ContactEmail:       "thandi@acme.co.za",
		ContactPhone:       "082 123 4567",
		ServiceAddress:     "12 Long Street, Cape Town",
		ContractTerm:       transport.ContractTerm24,
		Items:              items,
	}
}

func hasError(errs []string, fragment string) bool {
	for _, e := range errs {
		if strings.Contains(e, fragment) {
			return true
		}
	}
	return false
}

func TestValidateCreateQuoteRequest_Valid(t *testing.T) {
	result := ValidateCreateQuoteRequest(validCreateRequest(1))
	if !result.Valid {
		t.Fatalf("expected valid request, got %v", result.Errors)
	}
	if result.Errors == nil || len(result.Errors) != 0 {
		t.Fatalf("expected empty error list, got %v", result.Errors)
	}
}

func TestValidateCreateQuoteRequest_RegistrationNumberFormat(t *testing.T) {
	req := validCreateRequest(1)
	req.RegistrationNumber = ptr("2020-123456-07")
	result := ValidateCreateQuoteRequest(req)
	if result.Valid || !hasError(result.Errors, "YYYY/NNNNNN/NN") {
		t.Fatalf("expected registration format error, got %v", result.Errors)
	}

	req.RegistrationNumber = ptr("2020/123456/07")
	if result := ValidateCreateQuoteRequest(req); !result.Valid {
		t.Fatalf("expected slash format to pass, got %v", result.Errors)
	}
}

func TestValidateCreateQuoteRequest_ItemCardinality(t *testing.T) {
	if result := ValidateCreateQuoteRequest(validCreateRequest(0)); result.Valid || !hasError(result.Errors, "At least one item") {
		t.Fatalf("expected zero items to be rejected, got %v", result.Errors)
	}
	if result := ValidateCreateQuoteRequest(validCreateRequest(11)); result.Valid || !hasError(result.Errors, "Maximum 10 items") {
		t.Fatalf("expected 11 items to be rejected, got %v", result.Errors)
	}
	for _, n := range []int{1, 5, 10} {
		if result := ValidateCreateQuoteRequest(validCreateRequest(n)); !result.Valid {
			t.Fatalf("expected %d items to pass, got %v", n, result.Errors)
		}
	}
}

func TestValidateCreateQuoteRequest_CollectsAllErrors(t *testing.T) {
	req := transport.CreateQuoteRequest{
		CompanyName:  strings.Repeat("x", 201),
		VatNumber:    ptr("12345"),
		ContactEmail: "not-an-email",
		ContactPhone: "+44 20 7946 0958",
		ContractTerm: 18,
		Items: []transport.CreateQuoteItemRequest{
			{PackageID: "", Quantity: ptr(0)},
			{PackageID: uuid.NewString(), Quantity: ptr(101), ItemType: "router"},
		},
	}

	result := ValidateCreateQuoteRequest(req)
	if result.Valid {
		t.Fatal("expected invalid request")
	}

	expected := []string{
		"Company name must be 200 characters or less",
		"VAT number must be 10 digits",
		"Contact name is required",
		"Contact email must be a valid email address",
		"valid South African phone number",
		"Service address is required",
		"Contract term must be 12, 24, or 36 months",
		"Item 1: package is required",
		"Item 1: quantity must be between 1 and 100",
		"Item 2: quantity must be between 1 and 100",
		"Item 2: unknown item type",
	}
	for _, want := range expected {
		if !hasError(result.Errors, want) {
			t.Fatalf("expected error containing %q, got %v", want, result.Errors)
		}
	}
	if len(result.Errors) != len(expected) {
		t.Fatalf("expected %d errors, got %d: %v", len(expected), len(result.Errors), result.Errors)
	}
}

func TestValidateCreateQuoteRequest_BlankCompanyName(t *testing.T) {
	req := validCreateRequest(1)
	req.CompanyName = "   "
	if result := ValidateCreateQuoteRequest(req); !hasError(result.Errors, "Company name is required") {
		t.Fatalf("expected required error, got %v", result.Errors)
	}
}

func TestValidateUpdateQuoteRequest(t *testing.T) {
	if result := ValidateUpdateQuoteRequest(transport.UpdateQuoteRequest{}); !result.Valid {
		t.Fatalf("expected empty update to be valid, got %v", result.Errors)
	}

	term := transport.ContractTerm(48)
	result := ValidateUpdateQuoteRequest(transport.UpdateQuoteRequest{
		CompanyName:           ptr(""),
		ContactEmail:          ptr("bad"),
		ContractTerm:          &term,
		CustomDiscountPercent: ptr(120.0),
		CustomDiscountAmount:  ptr(-1.0),
	})
	for _, want := range []string{
		"Company name is required",
		"Contact email must be a valid email address",
		"Contract term must be 12, 24, or 36 months",
		"Discount percentage must be between 0 and 100",
		"Discount amount cannot be negative",
	} {
		if !hasError(result.Errors, want) {
			t.Fatalf("expected %q, got %v", want, result.Errors)
		}
	}

	ok := ValidateUpdateQuoteRequest(transport.UpdateQuoteRequest{
		CustomDiscountPercent: ptr(100.0),
		CustomDiscountAmount:  ptr(0.0),
	})
	if !ok.Valid {
		t.Fatalf("expected boundary discounts to pass, got %v", ok.Errors)
	}
}

func TestValidateSignQuoteRequest(t *testing.T) {
	valid := transport.SignQuoteRequest{
		SignerName:             "Thandi Nkosi",
		SignerEmail:            "thandi@acme.co.za",
		SignerIDNumber:         "8001015009087",
		SignatureData:          "data:image/png;base64,iVBORw0KGgo=",
		TermsAccepted:          true,
		FicaDocumentsConfirmed: true,
		CipcDocumentsConfirmed: true,
	}
	if result := ValidateSignQuoteRequest(valid); !result.Valid {
		t.Fatalf("expected valid signature, got %v", result.Errors)
	}

	result := ValidateSignQuoteRequest(transport.SignQuoteRequest{SignerIDNumber: "123"})
	for _, want := range []string{
		"Signer name is required",
		"Signer email is required",
		"13-digit",
		"Signature is required",
		"Terms and conditions must be accepted",
		"FICA documents must be confirmed",
		"CIPC documents must be confirmed",
	} {
		if !hasError(result.Errors, want) {
			t.Fatalf("expected %q, got %v", want, result.Errors)
		}
	}
}
