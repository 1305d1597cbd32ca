// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"regexp"

	"circletel_backend/platform/phone"

	"github.com/go-playground/validator/v10"
)

// Custom tags registered by New.
const (
	TagZAPhone      = "za_phone"
	TagZACompanyReg = "za_company_reg"
	TagZAVat        = "za_vat"
	TagZAIDNumber   = "za_id_number"
	TagContractTerm = "contract_term"
)

var (
	companyRegPattern = regexp.MustCompile(`^\d{4}/\d{6}/\d{2}$`)
	vatPattern        = regexp.MustCompile(`^\d{10}$`)
	idNumberPattern   = regexp.MustCompile(`^\d{13}$`)
)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the South African business tags registered.
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation(TagZAPhone, func(fl validator.FieldLevel) bool {
		return phone.IsSouthAfrican(fl.Field().String())
	})
	_ = v.RegisterValidation(TagZACompanyReg, func(fl validator.FieldLevel) bool {
		return IsCompanyRegistration(fl.Field().String())
	})
	_ = v.RegisterValidation(TagZAVat, func(fl validator.FieldLevel) bool {
		return IsVatNumber(fl.Field().String())
	})
	_ = v.RegisterValidation(TagZAIDNumber, func(fl validator.FieldLevel) bool {
		return IsIDNumber(fl.Field().String())
	})
	_ = v.RegisterValidation(TagContractTerm, func(fl validator.FieldLevel) bool {
		switch fl.Field().Int() {
		case 12, 24, 36:
			return true
		}
		return false
	})
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// IsEmail reports whether s passes the standard email check.
func (val *Validator) IsEmail(s string) bool {
	return s != "" && val.v.Var(s, "email") == nil
}

// IsCompanyRegistration matches CIPC numbers such as 2020/123456/07.
func IsCompanyRegistration(s string) bool {
	return companyRegPattern.MatchString(s)
}

// IsVatNumber matches a ten digit SARS VAT number.
func IsVatNumber(s string) bool {
	return vatPattern.MatchString(s)
}

// IsIDNumber matches a thirteen digit South African ID number.
func IsIDNumber(s string) bool {
	return idNumberPattern.MatchString(s)
}
