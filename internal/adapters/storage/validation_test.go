package storage

import (
	"strings"
	"testing"
)

func TestValidateContentType(t *testing.T) {
	if err := ValidateContentType("application/pdf; charset=binary"); err != nil {
		t.Fatalf("expected pdf to be accepted, got %v", err)
	}
	if err := ValidateContentType("image/png"); err == nil {
		t.Fatal("expected png to be rejected")
	}
}

func TestValidateFileSize(t *testing.T) {
	if err := ValidateFileSize(0, 100); err == nil {
		t.Fatal("expected empty file to be rejected")
	}
	if err := ValidateFileSize(101, 100); err == nil {
		t.Fatal("expected oversize file to be rejected")
	}
	if err := ValidateFileSize(1<<30, 0); err != nil {
		t.Fatalf("expected unlimited max to accept, got %v", err)
	}
}

func TestBuildFileKey(t *testing.T) {
	key := buildFileKey("quotes/2026", "BQ-2026-0001.pdf")
	if !strings.HasPrefix(key, "quotes/2026/BQ-2026-0001_") || !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("unexpected key %q", key)
	}
	if buildFileKey("quotes/2026", "BQ-2026-0001.pdf") == key {
		t.Fatal("expected unique keys")
	}
}
