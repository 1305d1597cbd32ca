package service

import (
	"strings"
	"testing"
	"time"

	"circletel_backend/internal/quotes/transport"
)

func TestTransitionTableCoversEveryStatus(t *testing.T) {
	all := transport.AllQuoteStatuses()
	if len(quoteTransitions) != len(all) {
		t.Fatalf("expected %d table entries, got %d", len(all), len(quoteTransitions))
	}
	for _, from := range all {
		if _, ok := quoteTransitions[from]; !ok {
			t.Fatalf("missing transition entry for %s", from)
		}
		for _, to := range all {
			result := ValidateStatusTransition(from, to)
			if !result.Valid && len(result.Errors) != 1 {
				t.Fatalf("%s -> %s: expected exactly one error, got %v", from, to, result.Errors)
			}
		}
	}
}

func TestAcceptedIsTerminal(t *testing.T) {
	if len(AllowedTransitions(transport.QuoteStatusAccepted)) != 0 {
		t.Fatal("expected accepted to have no transitions")
	}
	for _, to := range transport.AllQuoteStatuses() {
		result := ValidateStatusTransition(transport.QuoteStatusAccepted, to)
		if result.Valid {
			t.Fatalf("expected accepted -> %s to be rejected", to)
		}
		if !strings.Contains(result.Errors[0], "Allowed transitions: none") {
			t.Fatalf("expected terminal message, got %q", result.Errors[0])
		}
	}
}

func TestValidateStatusTransition(t *testing.T) {
	valid := [][2]transport.QuoteStatus{
		{transport.QuoteStatusDraft, transport.QuoteStatusPendingApproval},
		{transport.QuoteStatusPendingApproval, transport.QuoteStatusDraft},
		{transport.QuoteStatusApproved, transport.QuoteStatusSent},
		{transport.QuoteStatusSent, transport.QuoteStatusViewed},
		{transport.QuoteStatusViewed, transport.QuoteStatusAccepted},
		{transport.QuoteStatusRejected, transport.QuoteStatusDraft},
		{transport.QuoteStatusExpired, transport.QuoteStatusDraft},
	}
	for _, pair := range valid {
		if result := ValidateStatusTransition(pair[0], pair[1]); !result.Valid {
			t.Fatalf("expected %s -> %s to be valid, got %v", pair[0], pair[1], result.Errors)
		}
	}

	result := ValidateStatusTransition(transport.QuoteStatusDraft, transport.QuoteStatusSent)
	if result.Valid {
		t.Fatal("expected draft -> sent to be rejected")
	}
	msg := result.Errors[0]
	if !strings.Contains(msg, "from draft to sent") || !strings.Contains(msg, "pending_approval, rejected") {
		t.Fatalf("expected message to name the transition and allowed set, got %q", msg)
	}

	if ValidateStatusTransition(transport.QuoteStatusSent, transport.QuoteStatusAccepted).Valid {
		t.Fatal("expected sent -> accepted to require viewed first")
	}
	if ValidateStatusTransition("archived", transport.QuoteStatusDraft).Valid {
		t.Fatal("expected unknown status to have no transitions")
	}
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	next := AllowedTransitions(transport.QuoteStatusDraft)
	next[0] = transport.QuoteStatusAccepted
	if quoteTransitions[transport.QuoteStatusDraft][0] != transport.QuoteStatusPendingApproval {
		t.Fatal("expected table to be unaffected by caller mutation")
	}
}

func TestStatusPredicates(t *testing.T) {
	for _, s := range transport.AllQuoteStatuses() {
		wantEdit := s == transport.QuoteStatusDraft || s == transport.QuoteStatusPendingApproval || s == transport.QuoteStatusApproved
		if CanEditQuote(s) != wantEdit {
			t.Fatalf("CanEditQuote(%s): expected %v", s, wantEdit)
		}
		wantDelete := s == transport.QuoteStatusDraft || s == transport.QuoteStatusRejected || s == transport.QuoteStatusExpired
		if CanDeleteQuote(s) != wantDelete {
			t.Fatalf("CanDeleteQuote(%s): expected %v", s, wantDelete)
		}
		if CanSendQuote(s) != (s == transport.QuoteStatusApproved) {
			t.Fatalf("CanSendQuote(%s): unexpected result", s)
		}
	}
}

func TestCanSignQuote(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-time.Second)

	if !CanSignQuote(transport.QuoteStatusSent, future, now) || !CanSignQuote(transport.QuoteStatusViewed, future, now) {
		t.Fatal("expected sent and viewed quotes to be signable before expiry")
	}
	if CanSignQuote(transport.QuoteStatusViewed, past, now) {
		t.Fatal("expected expired quote not to be signable")
	}
	if CanSignQuote(transport.QuoteStatusApproved, future, now) {
		t.Fatal("expected approved quote not to be signable")
	}
	if !CanSignQuote(transport.QuoteStatusSent, now, now) {
		t.Fatal("expected quote to be signable at exactly validUntil")
	}
}

func TestIsQuoteExpiredIsStrict(t *testing.T) {
	validUntil := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if IsQuoteExpired(validUntil, validUntil) {
		t.Fatal("expected quote not to be expired at the boundary")
	}
	if !IsQuoteExpired(validUntil, validUntil.Add(time.Nanosecond)) {
		t.Fatal("expected quote to be expired just after the boundary")
	}
}

func TestDaysUntilExpiry(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		validUntil time.Time
		want       int
	}{
		{now.Add(30 * 24 * time.Hour), 30},
		{now.Add(36 * time.Hour), 2},
		{now.Add(time.Minute), 1},
		{now, 0},
		{now.Add(-12 * time.Hour), 0},
		{now.Add(-36 * time.Hour), -1},
		{now.Add(-72 * time.Hour), -3},
	}
	for _, tc := range cases {
		if got := DaysUntilExpiry(tc.validUntil, now); got != tc.want {
			t.Fatalf("validUntil %s: expected %d, got %d", tc.validUntil, tc.want, got)
		}
	}
}
