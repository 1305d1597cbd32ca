package transport

import (
	"time"

	"github.com/google/uuid"
)

// QuoteStatus is the lifecycle state of a business quote.
type QuoteStatus string

const (
	QuoteStatusDraft           QuoteStatus = "draft"
	QuoteStatusPendingApproval QuoteStatus = "pending_approval"
	QuoteStatusApproved        QuoteStatus = "approved"
	QuoteStatusSent            QuoteStatus = "sent"
	QuoteStatusViewed          QuoteStatus = "viewed"
	QuoteStatusAccepted        QuoteStatus = "accepted"
	QuoteStatusRejected        QuoteStatus = "rejected"
	QuoteStatusExpired         QuoteStatus = "expired"
)

// AllQuoteStatuses lists every lifecycle state in workflow order.
func AllQuoteStatuses() []QuoteStatus {
	return []QuoteStatus{
		QuoteStatusDraft,
		QuoteStatusPendingApproval,
		QuoteStatusApproved,
		QuoteStatusSent,
		QuoteStatusViewed,
		QuoteStatusAccepted,
		QuoteStatusRejected,
		QuoteStatusExpired,
	}
}

// ContractTerm is the contract length in months.
type ContractTerm int

const (
	ContractTerm12 ContractTerm = 12
	ContractTerm24 ContractTerm = 24
	ContractTerm36 ContractTerm = 36
)

// Valid reports whether t is one of the offered terms.
func (t ContractTerm) Valid() bool {
	switch t {
	case ContractTerm12, ContractTerm24, ContractTerm36:
		return true
	}
	return false
}

// ItemType classifies a quote line.
type ItemType string

const (
	ItemTypeConnectivity ItemType = "connectivity"
	ItemTypeInstallation ItemType = "installation"
	ItemTypeEquipment    ItemType = "equipment"
	ItemTypeAddon        ItemType = "addon"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeConnectivity, ItemTypeInstallation, ItemTypeEquipment, ItemTypeAddon:
		return true
	}
	return false
}

// LineItem is a priced quote line. Prices are snapshotted from the
// catalog when the quote is created.
type LineItem struct {
	PackageID         uuid.UUID `json:"packageId"`
	ItemType          ItemType  `json:"itemType"`
	Quantity          int       `json:"quantity"`
	MonthlyPrice      float64   `json:"monthlyPrice"`
	InstallationPrice float64   `json:"installationPrice"`
	ServiceName       string    `json:"serviceName"`
	ServiceType       string    `json:"serviceType"`
	SpeedDown         int       `json:"speedDown"`
	SpeedUp           int       `json:"speedUp"`
	DataCapGB         *int      `json:"dataCapGb,omitempty"`
	Notes             *string   `json:"notes,omitempty"`
	DisplayOrder      int       `json:"displayOrder"`
}

// PricingBreakdown holds every derived monetary value of a quote.
type PricingBreakdown struct {
	SubtotalMonthly      float64 `json:"subtotalMonthly"`
	SubtotalInstallation float64 `json:"subtotalInstallation"`
	DiscountPercent      float64 `json:"discountPercent"`
	DiscountAmount       float64 `json:"discountAmount"`
	DiscountReason       *string `json:"discountReason,omitempty"`
	MonthlyAfterDiscount float64 `json:"monthlyAfterDiscount"`
	VatMonthly           float64 `json:"vatMonthly"`
	VatInstallation      float64 `json:"vatInstallation"`
	TotalMonthly         float64 `json:"totalMonthly"`
	TotalInstallation    float64 `json:"totalInstallation"`
	TotalUpfront         float64 `json:"totalUpfront"`
	TotalContractValue   float64 `json:"totalContractValue"`
}

// PricingComparison is the difference between two breakdowns.
type PricingComparison struct {
	MonthlyDiff         float64 `json:"monthlyDiff"`
	MonthlyDiffPercent  float64 `json:"monthlyDiffPercent"`
	ContractDiff        float64 `json:"contractDiff"`
	ContractDiffPercent float64 `json:"contractDiffPercent"`
	IsCheaper           bool    `json:"isCheaper"`
}

// DiscountValidation reports whether a discount may be applied.
type DiscountValidation struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidationResult collects every rule violation of a request.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// CreateQuoteItemRequest references a catalog package.
type CreateQuoteItemRequest struct {
	PackageID string   `json:"packageId" validate:"required"`
	ItemType  ItemType `json:"itemType" validate:"omitempty,oneof=connectivity installation equipment addon"`
	Quantity  *int     `json:"quantity,omitempty" validate:"omitempty,min=1,max=100"`
	Notes     *string  `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// CreateQuoteRequest is the payload for a new business quote.
type CreateQuoteRequest struct {
	CompanyName        string                   `json:"companyName"`
	RegistrationNumber *string                  `json:"registrationNumber,omitempty"`
	VatNumber          *string                  `json:"vatNumber,omitempty"`
	ContactName        string                   `json:"contactName"`
	ContactEmail       string                   `json:"contactEmail"`
	ContactPhone       string                   `json:"contactPhone"`
	ServiceAddress     string                   `json:"serviceAddress"`
	ContractTerm       ContractTerm             `json:"contractTerm"`
	Items              []CreateQuoteItemRequest `json:"items"`
	CustomerNotes      *string                  `json:"customerNotes,omitempty"`
}

// UpdateQuoteRequest is a partial update; nil fields are left unchanged.
type UpdateQuoteRequest struct {
	CompanyName           *string       `json:"companyName,omitempty"`
	RegistrationNumber    *string       `json:"registrationNumber,omitempty"`
	VatNumber             *string       `json:"vatNumber,omitempty"`
	ContactName           *string       `json:"contactName,omitempty"`
	ContactEmail          *string       `json:"contactEmail,omitempty"`
	ContactPhone          *string       `json:"contactPhone,omitempty"`
	ServiceAddress        *string       `json:"serviceAddress,omitempty"`
	ContractTerm          *ContractTerm `json:"contractTerm,omitempty"`
	CustomDiscountPercent *float64      `json:"customDiscountPercent,omitempty"`
	CustomDiscountAmount  *float64      `json:"customDiscountAmount,omitempty"`
	DiscountReason        *string       `json:"discountReason,omitempty"`
	CustomerNotes         *string       `json:"customerNotes,omitempty"`
	AdminNotes            *string       `json:"adminNotes,omitempty"`
	ValidUntil            *time.Time    `json:"validUntil,omitempty"`
}

// SignQuoteRequest is submitted by the customer to accept a quote.
type SignQuoteRequest struct {
	SignerName             string  `json:"signerName"`
	SignerEmail            string  `json:"signerEmail"`
	SignerIDNumber         string  `json:"signerIdNumber"`
	SignerTitle            *string `json:"signerTitle,omitempty"`
	SignatureData          string  `json:"signatureData"`
	TermsAccepted          bool    `json:"termsAccepted"`
	FicaDocumentsConfirmed bool    `json:"ficaDocumentsConfirmed"`
	CipcDocumentsConfirmed bool    `json:"cipcDocumentsConfirmed"`
}

// SignatureMeta is captured from the signing request itself.
type SignatureMeta struct {
	IPAddress string
	UserAgent string
}

// UpdateQuoteStatusRequest moves a quote through its lifecycle.
type UpdateQuoteStatusRequest struct {
	Status QuoteStatus `json:"status" validate:"required,oneof=draft pending_approval approved sent viewed accepted rejected expired"`
}

// ListQuotesRequest filters the quote list.
type ListQuotesRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=draft pending_approval approved sent viewed accepted rejected expired"`
	Search   string `form:"search" validate:"omitempty,max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// CalculatePricingRequest previews pricing without persisting anything.
type CalculatePricingRequest struct {
	Items           []CreateQuoteItemRequest `json:"items" validate:"required,min=1,max=10,dive"`
	ContractTerm    ContractTerm             `json:"contractTerm" validate:"contract_term"`
	DiscountPercent float64                  `json:"discountPercent" validate:"gte=0,lte=100"`
	DiscountAmount  float64                  `json:"discountAmount" validate:"gte=0"`
	DiscountReason  *string                  `json:"discountReason,omitempty" validate:"omitempty,max=200"`
}

// CalculatePricingResponse returns the priced lines and their breakdown.
type CalculatePricingResponse struct {
	Items   []LineItem       `json:"items"`
	Pricing PricingBreakdown `json:"pricing"`
}

// PDFOptions controls optional PDF sections.
type PDFOptions struct {
	IncludeTerms     bool
	IncludeSignature bool
}

// PDFDownload is either a freshly rendered document or a link to the
// archived signed copy. URL is set only for the archived copy.
type PDFDownload struct {
	FileName string
	Data     []byte
	URL      string
}

// QuoteItemResponse is a persisted line.
type QuoteItemResponse struct {
	ID uuid.UUID `json:"id"`
	LineItem
	LineMonthlyTotal      float64 `json:"lineMonthlyTotal"`
	LineInstallationTotal float64 `json:"lineInstallationTotal"`
	PricePerMbps          float64 `json:"pricePerMbps"`
}

// SignatureResponse describes who accepted a quote.
type SignatureResponse struct {
	SignerName  string    `json:"signerName"`
	SignerEmail string    `json:"signerEmail"`
	SignerTitle *string   `json:"signerTitle,omitempty"`
	SignedAt    time.Time `json:"signedAt"`
}

// QuoteResponse is the full staff view of a quote.
type QuoteResponse struct {
	ID                    uuid.UUID           `json:"id"`
	QuoteNumber           string              `json:"quoteNumber"`
	Status                QuoteStatus         `json:"status"`
	CompanyName           string              `json:"companyName"`
	RegistrationNumber    *string             `json:"registrationNumber,omitempty"`
	VatNumber             *string             `json:"vatNumber,omitempty"`
	ContactName           string              `json:"contactName"`
	ContactEmail          string              `json:"contactEmail"`
	ContactPhone          string              `json:"contactPhone"`
	ServiceAddress        string              `json:"serviceAddress"`
	ContractTerm          ContractTerm        `json:"contractTerm"`
	CustomDiscountPercent float64             `json:"customDiscountPercent"`
	CustomDiscountAmount  float64             `json:"customDiscountAmount"`
	Pricing               PricingBreakdown    `json:"pricing"`
	ValidUntil            time.Time           `json:"validUntil"`
	DaysUntilExpiry       int                 `json:"daysUntilExpiry"`
	CustomerNotes         *string             `json:"customerNotes,omitempty"`
	AdminNotes            *string             `json:"adminNotes,omitempty"`
	Items                 []QuoteItemResponse `json:"items"`
	Signature             *SignatureResponse  `json:"signature,omitempty"`
	AllowedTransitions    []QuoteStatus       `json:"allowedTransitions"`
	CanEdit               bool                `json:"canEdit"`
	CanDelete             bool                `json:"canDelete"`
	CanSend               bool                `json:"canSend"`
	CreatedBy             *uuid.UUID          `json:"createdBy,omitempty"`
	ApprovedAt            *time.Time          `json:"approvedAt,omitempty"`
	SentAt                *time.Time          `json:"sentAt,omitempty"`
	ViewedAt              *time.Time          `json:"viewedAt,omitempty"`
	AcceptedAt            *time.Time          `json:"acceptedAt,omitempty"`
	RejectedAt            *time.Time          `json:"rejectedAt,omitempty"`
	CreatedAt             time.Time           `json:"createdAt"`
	UpdatedAt             time.Time           `json:"updatedAt"`
}

// QuoteListResponse is a page of quotes.
type QuoteListResponse struct {
	Items      []QuoteResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// PublicQuoteResponse is what the customer sees through the share link.
type PublicQuoteResponse struct {
	QuoteNumber     string              `json:"quoteNumber"`
	Status          QuoteStatus         `json:"status"`
	CompanyName     string              `json:"companyName"`
	ContactName     string              `json:"contactName"`
	ServiceAddress  string              `json:"serviceAddress"`
	ContractTerm    ContractTerm        `json:"contractTerm"`
	Pricing         PricingBreakdown    `json:"pricing"`
	Items           []QuoteItemResponse `json:"items"`
	CustomerNotes   *string             `json:"customerNotes,omitempty"`
	ValidUntil      time.Time           `json:"validUntil"`
	DaysUntilExpiry int                 `json:"daysUntilExpiry"`
	CanSign         bool                `json:"canSign"`
	Signature       *SignatureResponse  `json:"signature,omitempty"`
}
