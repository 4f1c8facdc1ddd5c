package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		filename  string
		want      DocumentFormat
		wantOK    bool
	}{
		{"pdf by media type", "application/pdf", "report.bin", FormatPDF, true},
		{"media type with parameters", "text/plain; charset=utf-8", "notes", FormatPlainText, true},
		{"media type is case-insensitive", "Application/PDF", "", FormatPDF, true},
		{"docx by media type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "", FormatWordModern, true},
		{"octet-stream falls back to extension", "application/octet-stream", "Budget.XLSX", FormatExcelModern, true},
		{"empty media type falls back to extension", "", "deck.ppt", FormatPowerPointLegacy, true},
		{"unknown media type falls back to extension", "application/x-whatever", "old.doc", FormatWordLegacy, true},
		{"legacy excel", "application/vnd.ms-excel", "", FormatExcelLegacy, true},
		{"unsupported extension", "", "image.png", "", false},
		{"no information", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveFormat(tt.mediaType, tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("ResolveFormat(%q, %q) ok = %v, want %v", tt.mediaType, tt.filename, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ResolveFormat(%q, %q) = %q, want %q", tt.mediaType, tt.filename, got, tt.want)
			}
		})
	}
}

func TestDocumentFormat_Description(t *testing.T) {
	if got := FormatExcelLegacy.Description(); got != "Excel spreadsheet" {
		t.Errorf("Expected 'Excel spreadsheet', got '%s'", got)
	}
	if got := DocumentFormat("bogus").Description(); got != "document" {
		t.Errorf("Expected 'document' for unknown format, got '%s'", got)
	}
}

func TestSupportedFormats_CoverEveryFormat(t *testing.T) {
	formats := []DocumentFormat{
		FormatPDF, FormatWordLegacy, FormatWordModern, FormatExcelLegacy,
		FormatExcelModern, FormatPowerPointLegacy, FormatPowerPointModern, FormatPlainText,
	}
	if len(SupportedFormats) != len(formats) {
		t.Fatalf("Expected %d supported formats, got %d", len(formats), len(SupportedFormats))
	}
	for _, f := range formats {
		if _, ok := f.Info(); !ok {
			t.Errorf("Format %s has no descriptor", f)
		}
	}
}

func TestRawUpload_Size(t *testing.T) {
	u := RawUpload{Data: make([]byte, 10), DeclaredSize: 4}
	if u.Size() != 10 {
		t.Errorf("Expected size 10, got %d", u.Size())
	}
	u.DeclaredSize = 100
	if u.Size() != 100 {
		t.Errorf("Expected declared size 100 to win, got %d", u.Size())
	}
}

func TestPrompt_LenCountsRunes(t *testing.T) {
	p := Prompt{System: "héllo", User: "wörld"}
	if p.Len() != 10 {
		t.Errorf("Expected 10 characters, got %d", p.Len())
	}
}

func TestKindOf(t *testing.T) {
	base := EmptyContentError()
	wrapped := fmt.Errorf("ingest: %w", base)

	if got := KindOf(wrapped); got != KindEmptyContent {
		t.Errorf("Expected %s, got %s", KindEmptyContent, got)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("Expected empty kind for plain error, got %s", got)
	}
	if !errors.Is(wrapped, &DomainError{Kind: KindEmptyContent}) {
		t.Error("Expected errors.Is to match on kind")
	}
	if errors.Is(wrapped, &DomainError{Kind: KindContentTooShort}) {
		t.Error("Expected errors.Is to reject a different kind")
	}
}

func TestDomainError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("bad magic")
	err := ExtractionError("cannot parse PDF", cause)

	if err.Error() != "[extraction_failed] cannot parse PDF: bad magic" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("Expected cause to be reachable through Unwrap")
	}
}

func TestAllKinds(t *testing.T) {
	kinds := AllKinds()
	if len(kinds) != 10 {
		t.Fatalf("Expected 10 kinds, got %d", len(kinds))
	}
	seen := make(map[ErrorKind]bool)
	for _, k := range kinds {
		if !k.Valid() {
			t.Errorf("Kind %s reported invalid", k)
		}
		if seen[k] {
			t.Errorf("Duplicate kind %s", k)
		}
		seen[k] = true
	}
	if ErrorKind("nope").Valid() {
		t.Error("Unknown kind reported valid")
	}

	kinds[0] = "mutated"
	if AllKinds()[0] != KindUnsupportedFormat {
		t.Error("AllKinds must return a copy")
	}
}
