package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"circletel_backend/platform/money"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type quoteProposalEmailData struct {
	baseEmailData
	ContactName    string
	CompanyName    string
	QuoteNumber    string
	MonthlyTotal   string
	ContractMonths int
}

type quoteAcceptedEmailData struct {
	baseEmailData
	SignerName     string
	CompanyName    string
	QuoteNumber    string
	MonthlyTotal   string
	ContractTotal  string
	HasAttachments bool
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderQuoteProposal(data QuoteProposal) (string, error) {
	return renderEmailTemplate("quote_proposal.html", quoteProposalEmailData{
		baseEmailData: baseEmailData{
			Title:    "Your business quote is ready",
			Heading:  "Your business quote is ready",
			CTALabel: "View and accept quote",
			CTAURL:   data.ProposalURL,
		},
		ContactName:    data.ContactName,
		CompanyName:    data.CompanyName,
		QuoteNumber:    data.QuoteNumber,
		MonthlyTotal:   money.FormatCurrency(data.TotalMonthly),
		ContractMonths: data.ContractTerm,
	})
}

func renderQuoteAccepted(name, heading string, data QuoteAccepted, hasAttachments bool) (string, error) {
	return renderEmailTemplate(name, quoteAcceptedEmailData{
		baseEmailData: baseEmailData{
			Title:   heading,
			Heading: heading,
		},
		SignerName:     data.SignerName,
		CompanyName:    data.CompanyName,
		QuoteNumber:    data.QuoteNumber,
		MonthlyTotal:   money.FormatCurrency(data.TotalMonthly),
		ContractTotal:  money.FormatCurrency(data.TotalContractValue),
		HasAttachments: hasAttachments,
	})
}
