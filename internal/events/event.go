// Package events defines the quote domain events. The bus itself lives
// in platform/events; its types are aliased here so modules import one
// package.
package events

import (
	"circletel_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Quote Domain Events
// =============================================================================

// QuoteCreated is published after a quote and its items are persisted.
type QuoteCreated struct {
	BaseEvent
	QuoteID     uuid.UUID  `json:"quoteId"`
	QuoteNumber string     `json:"quoteNumber"`
	CompanyName string     `json:"companyName"`
	CreatedBy   *uuid.UUID `json:"createdBy,omitempty"`
}

func (e QuoteCreated) EventName() string { return "quotes.quote.created" }

// QuoteStatusChanged is published for every successful transition.
type QuoteStatusChanged struct {
	BaseEvent
	QuoteID     uuid.UUID  `json:"quoteId"`
	QuoteNumber string     `json:"quoteNumber"`
	OldStatus   string     `json:"oldStatus"`
	NewStatus   string     `json:"newStatus"`
	ActorID     *uuid.UUID `json:"actorId,omitempty"`
}

func (e QuoteStatusChanged) EventName() string { return "quotes.quote.status_changed" }

// QuoteSent is published when a quote is shared with the customer.
type QuoteSent struct {
	BaseEvent
	QuoteID      uuid.UUID `json:"quoteId"`
	QuoteNumber  string    `json:"quoteNumber"`
	PublicToken  string    `json:"publicToken"`
	CompanyName  string    `json:"companyName"`
	ContactName  string    `json:"contactName"`
	ContactEmail string    `json:"contactEmail"`
	TotalMonthly float64   `json:"totalMonthly"`
	ContractTerm int       `json:"contractTerm"`
}

func (e QuoteSent) EventName() string { return "quotes.quote.sent" }

// QuoteAccepted is published after the customer signs.
type QuoteAccepted struct {
	BaseEvent
	QuoteID            uuid.UUID `json:"quoteId"`
	QuoteNumber        string    `json:"quoteNumber"`
	CompanyName        string    `json:"companyName"`
	SignerName         string    `json:"signerName"`
	SignerEmail        string    `json:"signerEmail"`
	ContactEmail       string    `json:"contactEmail"`
	TotalMonthly       float64   `json:"totalMonthly"`
	TotalContractValue float64   `json:"totalContractValue"`
}

func (e QuoteAccepted) EventName() string { return "quotes.quote.accepted" }

// QuoteDeleted is published after a quote is removed.
type QuoteDeleted struct {
	BaseEvent
	QuoteID     uuid.UUID `json:"quoteId"`
	QuoteNumber string    `json:"quoteNumber"`
}

func (e QuoteDeleted) EventName() string { return "quotes.quote.deleted" }
