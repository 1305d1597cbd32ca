package validator

import "testing"

type signup struct {
	Phone string `validate:"required,za_phone"`
	Reg   string `validate:"omitempty,za_company_reg"`
	Vat   string `validate:"omitempty,za_vat"`
	Term  int    `validate:"contract_term"`
}

func TestCustomTags(t *testing.T) {
	v := New()

	ok := signup{Phone: "0821234567", Reg: "2020/123456/07", Vat: "4123456789", Term: 24}
	if err := v.Struct(ok); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}

	bad := signup{Phone: "123", Reg: "2020-123456-07", Vat: "41234", Term: 18}
	if err := v.Struct(bad); err == nil {
		t.Fatal("expected validation errors")
	}
}

func TestIsEmail(t *testing.T) {
	v := New()
	if !v.IsEmail("ops@circletel.co.za") {
		t.Fatal("expected email to be valid")
	}
	if v.IsEmail("not-an-email") || v.IsEmail("") {
		t.Fatal("expected invalid emails to be rejected")
	}
}

func TestPatternHelpers(t *testing.T) {
	if !IsCompanyRegistration("2020/123456/07") {
		t.Fatal("expected slash-separated registration to match")
	}
	if IsCompanyRegistration("2020-123456-07") {
		t.Fatal("expected dash-separated registration to be rejected")
	}
	if !IsIDNumber("8001015009087") || IsIDNumber("800101500908") {
		t.Fatal("expected ID number to require exactly 13 digits")
	}
}
