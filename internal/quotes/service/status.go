package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"circletel_backend/internal/quotes/transport"
)

// quoteTransitions lists the legal next states for every status. Every
// status is a key; accepted is terminal.
var quoteTransitions = map[transport.QuoteStatus][]transport.QuoteStatus{
	transport.QuoteStatusDraft:           {transport.QuoteStatusPendingApproval, transport.QuoteStatusRejected},
	transport.QuoteStatusPendingApproval: {transport.QuoteStatusApproved, transport.QuoteStatusRejected, transport.QuoteStatusDraft},
	transport.QuoteStatusApproved:        {transport.QuoteStatusSent, transport.QuoteStatusRejected},
	transport.QuoteStatusSent:            {transport.QuoteStatusViewed, transport.QuoteStatusRejected, transport.QuoteStatusExpired},
	transport.QuoteStatusViewed:          {transport.QuoteStatusAccepted, transport.QuoteStatusRejected, transport.QuoteStatusExpired},
	transport.QuoteStatusAccepted:        {},
	transport.QuoteStatusRejected:        {transport.QuoteStatusDraft},
	transport.QuoteStatusExpired:         {transport.QuoteStatusDraft},
}

// AllowedTransitions returns a copy of the next states reachable from status.
// Unknown statuses have none.
func AllowedTransitions(status transport.QuoteStatus) []transport.QuoteStatus {
	next := quoteTransitions[status]
	out := make([]transport.QuoteStatus, len(next))
	copy(out, next)
	return out
}

// ValidateStatusTransition reports whether current may move to next.
func ValidateStatusTransition(current, next transport.QuoteStatus) transport.ValidationResult {
	allowed := quoteTransitions[current]
	for _, s := range allowed {
		if s == next {
			return transport.ValidationResult{Valid: true, Errors: []string{}}
		}
	}

	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = string(s)
	}
	allowedList := "none"
	if len(names) > 0 {
		allowedList = strings.Join(names, ", ")
	}

	return transport.ValidationResult{
		Valid: false,
		Errors: []string{
			fmt.Sprintf("Invalid status transition from %s to %s. Allowed transitions: %s", current, next, allowedList),
		},
	}
}

// CanEditQuote reports whether header fields, discounts and term may change.
func CanEditQuote(status transport.QuoteStatus) bool {
	switch status {
	case transport.QuoteStatusDraft, transport.QuoteStatusPendingApproval, transport.QuoteStatusApproved:
		return true
	}
	return false
}

// CanDeleteQuote reports whether the quote may be removed.
func CanDeleteQuote(status transport.QuoteStatus) bool {
	switch status {
	case transport.QuoteStatusDraft, transport.QuoteStatusRejected, transport.QuoteStatusExpired:
		return true
	}
	return false
}

// CanSendQuote reports whether the quote may be sent to the customer.
func CanSendQuote(status transport.QuoteStatus) bool {
	return status == transport.QuoteStatusApproved
}

// CanSignQuote reports whether the customer may still accept the quote.
func CanSignQuote(status transport.QuoteStatus, validUntil, now time.Time) bool {
	if status != transport.QuoteStatusSent && status != transport.QuoteStatusViewed {
		return false
	}
	return !IsQuoteExpired(validUntil, now)
}

// IsQuoteExpired is true strictly after validUntil.
func IsQuoteExpired(validUntil, now time.Time) bool {
	return now.After(validUntil)
}

// DaysUntilExpiry rounds the remaining time up to whole days. It is
// negative once the quote has expired by more than a day.
func DaysUntilExpiry(validUntil, now time.Time) int {
	days := validUntil.Sub(now).Hours() / 24
	return int(math.Ceil(days))
}
