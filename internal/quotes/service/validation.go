package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"circletel_backend/internal/quotes/transport"
	"circletel_backend/platform/phone"
	"circletel_backend/platform/validator"
)

const (
	maxCompanyNameLength = 200
	minQuoteItems        = 1
	maxQuoteItems        = 10
	minItemQuantity      = 1
	maxItemQuantity      = 100
)

var fieldValidator = validator.New()

// validationErrors accumulates rule violations without short-circuiting.
type validationErrors []string

func (v *validationErrors) add(format string, args ...any) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

func (v validationErrors) result() transport.ValidationResult {
	errs := []string(v)
	if errs == nil {
		errs = []string{}
	}
	return transport.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateCreateQuoteRequest checks every business rule for a new quote
// and reports all violations at once.
func ValidateCreateQuoteRequest(req transport.CreateQuoteRequest) transport.ValidationResult {
	var errs validationErrors

	checkCompanyName(&errs, req.CompanyName)
	checkRegistrationNumber(&errs, req.RegistrationNumber)
	checkVatNumber(&errs, req.VatNumber)
	checkRequired(&errs, "Contact name", req.ContactName)
	checkEmail(&errs, "Contact email", req.ContactEmail)
	checkPhone(&errs, req.ContactPhone)
	checkRequired(&errs, "Service address", req.ServiceAddress)
	checkContractTerm(&errs, req.ContractTerm)
	checkItems(&errs, req.Items)

	return errs.result()
}

// ValidateUpdateQuoteRequest checks only the fields present in the update.
func ValidateUpdateQuoteRequest(req transport.UpdateQuoteRequest) transport.ValidationResult {
	var errs validationErrors

	if req.CompanyName != nil {
		checkCompanyName(&errs, *req.CompanyName)
	}
	checkRegistrationNumber(&errs, req.RegistrationNumber)
	checkVatNumber(&errs, req.VatNumber)
	if req.ContactName != nil {
		checkRequired(&errs, "Contact name", *req.ContactName)
	}
	if req.ContactEmail != nil {
		checkEmail(&errs, "Contact email", *req.ContactEmail)
	}
	if req.ContactPhone != nil {
		checkPhone(&errs, *req.ContactPhone)
	}
	if req.ServiceAddress != nil {
		checkRequired(&errs, "Service address", *req.ServiceAddress)
	}
	if req.ContractTerm != nil {
		checkContractTerm(&errs, *req.ContractTerm)
	}
	if req.CustomDiscountPercent != nil {
		if p := *req.CustomDiscountPercent; p < 0 || p > 100 {
			errs.add("Discount percentage must be between 0 and 100")
		}
	}
	if req.CustomDiscountAmount != nil && *req.CustomDiscountAmount < 0 {
		errs.add("Discount amount cannot be negative")
	}

	return errs.result()
}

// ValidateSignQuoteRequest checks the signer's details and that every
// acknowledgement was given. Each missing acknowledgement is its own error.
func ValidateSignQuoteRequest(req transport.SignQuoteRequest) transport.ValidationResult {
	var errs validationErrors

	checkRequired(&errs, "Signer name", req.SignerName)
	checkEmail(&errs, "Signer email", req.SignerEmail)
	if !validator.IsIDNumber(strings.TrimSpace(req.SignerIDNumber)) {
		errs.add("Signer ID number must be a valid 13-digit South African ID number")
	}
	if strings.TrimSpace(req.SignatureData) == "" {
		errs.add("Signature is required")
	}
	if !req.TermsAccepted {
		errs.add("Terms and conditions must be accepted")
	}
	if !req.FicaDocumentsConfirmed {
		errs.add("FICA documents must be confirmed")
	}
	if !req.CipcDocumentsConfirmed {
		errs.add("CIPC documents must be confirmed")
	}

	return errs.result()
}

func checkCompanyName(errs *validationErrors, name string) {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		errs.add("Company name is required")
	case utf8.RuneCountInString(trimmed) > maxCompanyNameLength:
		errs.add("Company name must be %d characters or less", maxCompanyNameLength)
	}
}

func checkRegistrationNumber(errs *validationErrors, reg *string) {
	if reg == nil || strings.TrimSpace(*reg) == "" {
		return
	}
	if !validator.IsCompanyRegistration(strings.TrimSpace(*reg)) {
		errs.add("Registration number must be in format YYYY/NNNNNN/NN")
	}
}

func checkVatNumber(errs *validationErrors, vat *string) {
	if vat == nil || strings.TrimSpace(*vat) == "" {
		return
	}
	if !validator.IsVatNumber(strings.TrimSpace(*vat)) {
		errs.add("VAT number must be 10 digits")
	}
}

func checkRequired(errs *validationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		errs.add("%s is required", field)
	}
}

func checkEmail(errs *validationErrors, field, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		errs.add("%s is required", field)
		return
	}
	if !fieldValidator.IsEmail(trimmed) {
		errs.add("%s must be a valid email address", field)
	}
}

func checkPhone(errs *validationErrors, value string) {
	if strings.TrimSpace(value) == "" {
		errs.add("Contact phone is required")
		return
	}
	if !phone.IsSouthAfrican(value) {
		errs.add("Contact phone must be a valid South African phone number")
	}
}

func checkContractTerm(errs *validationErrors, term transport.ContractTerm) {
	if !term.Valid() {
		errs.add("Contract term must be 12, 24, or 36 months")
	}
}

func checkItems(errs *validationErrors, items []transport.CreateQuoteItemRequest) {
	switch {
	case len(items) < minQuoteItems:
		errs.add("At least one item is required")
	case len(items) > maxQuoteItems:
		errs.add("Maximum %d items allowed per quote", maxQuoteItems)
	}

	for i, it := range items {
		n := i + 1
		if strings.TrimSpace(it.PackageID) == "" {
			errs.add("Item %d: package is required", n)
		}
		if it.ItemType != "" && !it.ItemType.Valid() {
			errs.add("Item %d: unknown item type %q", n, it.ItemType)
		}
		if it.Quantity != nil && (*it.Quantity < minItemQuantity || *it.Quantity > maxItemQuantity) {
			errs.add("Item %d: quantity must be between %d and %d", n, minItemQuantity, maxItemQuantity)
		}
	}
}
