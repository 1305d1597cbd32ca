// Package pdf renders business quote documents using maroto/v2.
package pdf

import (
	"fmt"
	"strings"

	"circletel_backend/internal/quotes/transport"
	"circletel_backend/platform/money"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ── Colour palette ──────────────────────────────────────────────────────

var (
	colorPrimary    = &props.Color{Red: 17, Green: 24, Blue: 39}
	colorSecondary  = &props.Color{Red: 107, Green: 114, Blue: 128}
	colorAccent     = &props.Color{Red: 245, Green: 131, Blue: 31} // CircleTel orange
	colorTableHead  = &props.Color{Red: 241, Green: 245, Blue: 249}
	colorTableAlt   = &props.Color{Red: 249, Green: 250, Blue: 251}
	colorGreenLight = &props.Color{Red: 220, Green: 252, Blue: 231}
	colorGreen      = &props.Color{Red: 22, Green: 163, Blue: 74}
	colorRed        = &props.Color{Red: 220, Green: 38, Blue: 38}
	colorBorder     = &props.Color{Red: 226, Green: 232, Blue: 240}
)

const dateLayout = "02 Jan 2006"

// CompanyConfig supplies the issuer details printed on every document.
type CompanyConfig interface {
	GetCompanyName() string
	GetCompanyEmail() string
	GetCompanyPhone() string
	GetCompanyAddress() string
	GetCompanyRegistrationNumber() string
	GetCompanyVatNumber() string
}

// Company is the issuer block.
type Company struct {
	Name               string
	Email              string
	Phone              string
	Address            string
	RegistrationNumber string
	VatNumber          string
}

// Generator renders quote PDFs for a fixed issuing company.
type Generator struct {
	company Company
}

// NewGenerator creates a generator from config.
func NewGenerator(cfg CompanyConfig) *Generator {
	return &Generator{
		company: Company{
			Name:               cfg.GetCompanyName(),
			Email:              cfg.GetCompanyEmail(),
			Phone:              cfg.GetCompanyPhone(),
			Address:            cfg.GetCompanyAddress(),
			RegistrationNumber: cfg.GetCompanyRegistrationNumber(),
			VatNumber:          cfg.GetCompanyVatNumber(),
		},
	}
}

// RenderQuote builds the quote document. The signature block is only
// printed when requested and the quote carries a signature.
func (g *Generator) RenderQuote(quote *transport.QuoteResponse, opts transport.PDFOptions) ([]byte, error) {
	if quote == nil {
		return nil, fmt.Errorf("render quote: nil quote")
	}

	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterFooter(g.buildFooter()); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}

	m.AddRows(g.buildHeader(quote)...)
	m.AddRows(separator())
	m.AddRows(row.New(6))

	m.AddRows(g.buildAddressBlock(quote)...)
	m.AddRows(row.New(6))

	if banner := buildStatusBanner(quote); banner != nil {
		m.AddRows(banner, row.New(4))
	}

	m.AddRows(buildItemsTable(quote.Items)...)
	m.AddRows(row.New(4))

	m.AddRows(buildTotalsBlock(quote)...)

	if quote.CustomerNotes != nil && strings.TrimSpace(*quote.CustomerNotes) != "" {
		m.AddRows(row.New(6))
		m.AddRows(buildNotesBlock(*quote.CustomerNotes)...)
	}

	if opts.IncludeTerms {
		m.AddRows(row.New(8))
		m.AddRows(buildTerms(quote)...)
	}

	if opts.IncludeSignature && quote.Signature != nil {
		m.AddRows(row.New(8))
		m.AddRows(buildSignatureBlock(quote.Signature)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Header ──────────────────────────────────────────────────────────────

func (g *Generator) buildHeader(q *transport.QuoteResponse) []core.Row {
	return []core.Row{
		row.New(20).Add(
			col.New(6).Add(text.New(g.company.Name, props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Color: colorPrimary,
				Top:   4,
			})),
			col.New(6).Add(
				text.New("BUSINESS QUOTE", props.Text{
					Size:  20,
					Style: fontstyle.Bold,
					Align: align.Right,
					Color: colorAccent,
				}),
				text.New(q.QuoteNumber, props.Text{
					Size:  11,
					Align: align.Right,
					Color: colorSecondary,
					Top:   11,
				}),
			),
		),
	}
}

// ── Address block ───────────────────────────────────────────────────────

func (g *Generator) buildAddressBlock(q *transport.QuoteResponse) []core.Row {
	label := props.Text{Size: 7, Style: fontstyle.Bold, Color: colorAccent}
	strong := props.Text{Size: 9, Style: fontstyle.Bold, Color: colorPrimary}
	muted := props.Text{Size: 8, Color: colorSecondary}
	mutedRight := props.Text{Size: 8, Color: colorSecondary, Align: align.Right}

	rows := []core.Row{
		row.New(5).Add(
			col.New(4).Add(text.New("FROM", label)),
			col.New(5).Add(text.New("PREPARED FOR", label)),
			col.New(3).Add(text.New("QUOTE DETAILS", props.Text{Size: 7, Style: fontstyle.Bold, Color: colorAccent, Align: align.Right})),
		),
		row.New(5).Add(
			col.New(4).Add(text.New(g.company.Name, strong)),
			col.New(5).Add(text.New(q.CompanyName, strong)),
			col.New(3).Add(text.New("Date: "+q.CreatedAt.Format(dateLayout), mutedRight)),
		),
		row.New(5).Add(
			col.New(4).Add(text.New(g.company.Address, muted)),
			col.New(5).Add(text.New(q.ContactName, muted)),
			col.New(3).Add(text.New("Valid until: "+q.ValidUntil.Format(dateLayout), mutedRight)),
		),
		row.New(5).Add(
			col.New(4).Add(text.New(joinParts([]string{g.company.Email, g.company.Phone}, "  |  "), muted)),
			col.New(5).Add(text.New(joinParts([]string{q.ContactEmail, q.ContactPhone}, "  |  "), muted)),
			col.New(3).Add(text.New(fmt.Sprintf("Term: %d months", q.ContractTerm), mutedRight)),
		),
		row.New(5).Add(
			col.New(4),
			col.New(5).Add(text.New(q.ServiceAddress, muted)),
			col.New(3).Add(text.New("Status: "+statusLabel(q.Status), props.Text{
				Size:  8,
				Style: fontstyle.Bold,
				Color: statusColor(q.Status),
				Align: align.Right,
			})),
		),
	}

	var legal []string
	if q.RegistrationNumber != nil && *q.RegistrationNumber != "" {
		legal = append(legal, "Reg: "+*q.RegistrationNumber)
	}
	if q.VatNumber != nil && *q.VatNumber != "" {
		legal = append(legal, "VAT: "+*q.VatNumber)
	}
	if len(legal) > 0 {
		rows = append(rows, row.New(5).Add(
			col.New(4),
			col.New(8).Add(text.New(joinParts(legal, "  |  "), muted)),
		))
	}

	return rows
}

// ── Status banner ───────────────────────────────────────────────────────

func buildStatusBanner(q *transport.QuoteResponse) core.Row {
	switch q.Status {
	case transport.QuoteStatusAccepted:
		label := "Quote accepted"
		if q.AcceptedAt != nil {
			label += " on " + q.AcceptedAt.Format(dateLayout+" 15:04")
		}
		return row.New(8).Add(
			col.New(12).Add(text.New(label, props.Text{Size: 9, Style: fontstyle.Bold, Color: colorGreen, Top: 2})),
		).WithStyle(&props.Cell{BackgroundColor: colorGreenLight})
	case transport.QuoteStatusRejected, transport.QuoteStatusExpired:
		return row.New(8).Add(
			col.New(12).Add(text.New("Quote "+statusLabel(q.Status), props.Text{Size: 9, Style: fontstyle.Bold, Color: colorRed, Top: 2})),
		).WithStyle(&props.Cell{BackgroundColor: &props.Color{Red: 254, Green: 226, Blue: 226}})
	}
	return nil
}

// ── Line items table ────────────────────────────────────────────────────

func buildItemsTable(items []transport.QuoteItemResponse) []core.Row {
	header := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Top: 1.5}
	headerRight := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 1.5}

	rows := []core.Row{
		row.New(7).Add(
			col.New(12).Add(text.New("SERVICES", props.Text{Size: 8, Style: fontstyle.Bold, Color: colorAccent})),
		),
		row.New(7).Add(
			col.New(4).Add(text.New("Service", header)),
			col.New(2).Add(text.New("Speed", header)),
			col.New(1).Add(text.New("Qty", header)),
			col.New(2).Add(text.New("Monthly", headerRight)),
			col.New(3).Add(text.New("Installation", headerRight)),
		).WithStyle(&props.Cell{
			BackgroundColor: colorTableHead,
			BorderType:      border.Bottom,
			BorderColor:     colorBorder,
		}),
	}

	for i, it := range items {
		rows = append(rows, buildItemRow(it, i))
	}
	return rows
}

func buildItemRow(it transport.QuoteItemResponse, idx int) core.Row {
	normal := props.Text{Size: 8, Color: colorPrimary, Top: 1}
	right := props.Text{Size: 8, Color: colorPrimary, Align: align.Right, Top: 1}

	r := row.New(7).Add(
		col.New(4).Add(text.New(it.ServiceName, normal)),
		col.New(2).Add(text.New(formatSpeed(it.SpeedDown, it.SpeedUp), normal)),
		col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), normal)),
		col.New(2).Add(text.New(money.FormatCurrency(it.LineMonthlyTotal), right)),
		col.New(3).Add(text.New(money.FormatCurrency(it.LineInstallationTotal), right)),
	)
	if idx%2 == 0 {
		r.WithStyle(&props.Cell{BackgroundColor: colorTableAlt})
	}
	return r
}

// ── Totals block ────────────────────────────────────────────────────────

func buildTotalsBlock(q *transport.QuoteResponse) []core.Row {
	p := q.Pricing
	labelStyle := props.Text{Size: 9, Color: colorSecondary, Align: align.Right}
	valueStyle := props.Text{Size: 9, Color: colorPrimary, Align: align.Right}

	line := func(label string, amount float64) core.Row {
		return row.New(6).Add(
			col.New(9).Add(text.New(label, labelStyle)),
			col.New(3).Add(text.New(money.FormatCurrency(amount), valueStyle)),
		)
	}

	rows := []core.Row{separator(), row.New(3), line("Monthly subtotal (excl. VAT)", p.SubtotalMonthly)}

	if p.DiscountAmount > 0 {
		label := "Discount"
		if p.DiscountPercent > 0 {
			label = fmt.Sprintf("Discount (%.2f%%)", p.DiscountPercent)
		}
		rows = append(rows, row.New(6).Add(
			col.New(9).Add(text.New(label, labelStyle)),
			col.New(3).Add(text.New("-"+money.FormatCurrency(p.DiscountAmount), props.Text{Size: 9, Color: colorGreen, Align: align.Right})),
		))
	}

	rows = append(rows,
		line("VAT 15% (monthly)", p.VatMonthly),
		line("Total monthly (incl. VAT)", p.TotalMonthly),
	)
	if p.SubtotalInstallation > 0 {
		rows = append(rows,
			line("Installation (excl. VAT)", p.SubtotalInstallation),
			line("VAT 15% (installation)", p.VatInstallation),
			line("Total installation (incl. VAT)", p.TotalInstallation),
		)
	}

	strong := props.Text{Size: 11, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 2}
	rows = append(rows, row.New(2), row.New(10).Add(
		col.New(9).Add(text.New(fmt.Sprintf("TOTAL CONTRACT VALUE (%d MONTHS)", q.ContractTerm), strong)),
		col.New(3).Add(text.New(money.FormatCurrency(p.TotalContractValue), strong)),
	).WithStyle(&props.Cell{
		BackgroundColor: colorTableHead,
		BorderType:      border.Top | border.Bottom,
		BorderColor:     colorBorder,
	}))

	return rows
}

// ── Notes ───────────────────────────────────────────────────────────────

func buildNotesBlock(notes string) []core.Row {
	return []core.Row{
		row.New(5).Add(col.New(12).Add(text.New("NOTES", props.Text{Size: 8, Style: fontstyle.Bold, Color: colorAccent}))),
		row.New(12).Add(col.New(12).Add(text.New(notes, props.Text{Size: 8, Color: colorSecondary, Top: 1}))),
	}
}

// ── Terms ───────────────────────────────────────────────────────────────

func buildTerms(q *transport.QuoteResponse) []core.Row {
	terms := []string{
		fmt.Sprintf("1.  This quote is valid until %s. Prices may change after this date.", q.ValidUntil.Format(dateLayout)),
		fmt.Sprintf("2.  Services are provided on a %d month contract, billed monthly in advance.", q.ContractTerm),
		"3.  All amounts are in South African Rand. VAT is charged at 15%.",
		"4.  Installation is subject to a successful site survey and infrastructure availability.",
		"5.  FICA and CIPC documents are required before service activation.",
	}

	rows := []core.Row{
		separator(),
		row.New(3),
		row.New(5).Add(col.New(12).Add(text.New("TERMS AND CONDITIONS", props.Text{Size: 7, Style: fontstyle.Bold, Color: colorAccent}))),
	}
	for _, t := range terms {
		rows = append(rows, row.New(4).Add(col.New(12).Add(text.New(t, props.Text{Size: 7, Color: colorSecondary}))))
	}
	return rows
}

// ── Signature block ─────────────────────────────────────────────────────

func buildSignatureBlock(sig *transport.SignatureResponse) []core.Row {
	signer := sig.SignerName
	if sig.SignerTitle != nil && *sig.SignerTitle != "" {
		signer += ", " + *sig.SignerTitle
	}

	return []core.Row{
		separator(),
		row.New(3),
		row.New(5).Add(col.New(12).Add(text.New("ACCEPTANCE", props.Text{Size: 8, Style: fontstyle.Bold, Color: colorAccent}))),
		row.New(6).Add(
			col.New(6).Add(text.New("Accepted by: "+signer, props.Text{Size: 9, Style: fontstyle.Bold, Color: colorPrimary})),
			col.New(6).Add(text.New("Signed: "+sig.SignedAt.Format(dateLayout+" 15:04"), props.Text{Size: 9, Color: colorSecondary, Align: align.Right})),
		),
		row.New(5).Add(col.New(12).Add(text.New(sig.SignerEmail, props.Text{Size: 8, Color: colorSecondary}))),
	}
}

// ── Footer ──────────────────────────────────────────────────────────────

func (g *Generator) buildFooter() core.Row {
	parts := []string{g.company.Name}
	if g.company.RegistrationNumber != "" {
		parts = append(parts, "Reg: "+g.company.RegistrationNumber)
	}
	if g.company.VatNumber != "" {
		parts = append(parts, "VAT: "+g.company.VatNumber)
	}
	parts = append(parts, g.company.Phone, g.company.Email)

	return row.New(10).Add(
		col.New(12).Add(text.New(joinParts(parts, "  ·  "), props.Text{
			Size:  6.5,
			Color: colorSecondary,
			Align: align.Center,
			Top:   4,
		})),
	).WithStyle(&props.Cell{BorderType: border.Top, BorderColor: colorBorder})
}

// ── Helpers ─────────────────────────────────────────────────────────────

func separator() core.Row {
	return row.New(1).WithStyle(&props.Cell{BorderType: border.Bottom, BorderColor: colorBorder})
}

func statusColor(status transport.QuoteStatus) *props.Color {
	switch status {
	case transport.QuoteStatusAccepted:
		return colorGreen
	case transport.QuoteStatusRejected, transport.QuoteStatusExpired:
		return colorRed
	case transport.QuoteStatusSent, transport.QuoteStatusViewed:
		return colorAccent
	default:
		return colorSecondary
	}
}

func statusLabel(status transport.QuoteStatus) string {
	s := strings.ReplaceAll(string(status), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatSpeed(down, up int) string {
	if down == 0 && up == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d Mbps", down, up)
}

func joinParts(parts []string, sep string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
