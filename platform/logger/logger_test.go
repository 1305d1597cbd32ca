package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestJSONHandlerOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.QuoteTransition("q-1", "BQ-2026-0001", "approved", "sent")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "quote_transition" {
		t.Fatalf("expected msg quote_transition, got %v", entry["msg"])
	}
	if entry["to"] != "sent" {
		t.Fatalf("expected to=sent, got %v", entry["to"])
	}
}

func TestWithContextAddsRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-7")
	ctx = context.WithValue(ctx, UserIDKey, "user-9")
	log.WithContext(ctx).CompensationFailed("create_quote", "q-1", errors.New("items"), errors.New("delete"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["request_id"] != "req-7" || entry["user_id"] != "user-9" {
		t.Fatalf("expected context ids in entry, got %v", entry)
	}
	if entry["rollback_error"] != "delete" {
		t.Fatalf("expected rollback_error=delete, got %v", entry["rollback_error"])
	}
}
