package services

import (
	"strings"
	"testing"

	"rag-chatbot-platform/models"
)

func TestComposeContextFormat(t *testing.T) {
	chunks := []models.Chunk{
		{Content: "Alpha content", Source: "/data/docs/report.pdf", Page: "3", Preview: "Alpha content"},
		{Content: "Beta content", Source: `C:\files\notes.txt`, Page: "Para-2", Preview: "Beta content"},
	}

	text, citations := ComposeContext(chunks)

	want := "[Source 1: report.pdf, Page 3]\nAlpha content\n" +
		"\n" +
		"[Source 2: notes.txt, Page Para-2]\nBeta content\n"
	if text != want {
		t.Errorf("context text:\n%q\nwant:\n%q", text, want)
	}

	if len(citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(citations))
	}
	if citations[0].File != "report.pdf" || citations[0].Page != "3" || citations[0].Preview != "Alpha content" {
		t.Errorf("citation 0 = %+v", citations[0])
	}
	if citations[1].File != "notes.txt" || citations[1].Page != "Para-2" {
		t.Errorf("citation 1 = %+v", citations[1])
	}
}

func TestComposeContextDeduplicatesCitations(t *testing.T) {
	chunks := []models.Chunk{
		{Content: "first slice", Source: "manual.pdf", Page: "7", Preview: "first slice"},
		{Content: "second slice", Source: "manual.pdf", Page: "7", Preview: "second slice"},
		{Content: "other page", Source: "manual.pdf", Page: "8", Preview: "other page"},
	}

	text, citations := ComposeContext(chunks)

	// All three blocks render; the duplicate (file, page) collapses to the
	// first-seen citation.
	for _, marker := range []string{"[Source 1:", "[Source 2:", "[Source 3:"} {
		if !strings.Contains(text, marker) {
			t.Errorf("context missing block %q", marker)
		}
	}
	if len(citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(citations))
	}
	if citations[0].Page != "7" || citations[0].Preview != "first slice" {
		t.Errorf("first-seen preview not kept: %+v", citations[0])
	}
	if citations[1].Page != "8" {
		t.Errorf("citation 1 = %+v", citations[1])
	}
}

func TestComposeContextEmpty(t *testing.T) {
	text, citations := ComposeContext(nil)
	if text != "" {
		t.Errorf("expected empty context, got %q", text)
	}
	if citations == nil {
		t.Error("citations must be an empty slice, not nil")
	}
	if len(citations) != 0 {
		t.Errorf("expected no citations, got %d", len(citations))
	}
}

func TestShortFileName(t *testing.T) {
	cases := map[string]string{
		"/data/docs/report.pdf": "report.pdf",
		`C:\files\notes.txt`:    "notes.txt",
		"plain.md":              "plain.md",
		"mixed/path\\deep.html": "deep.html",
	}
	for in, want := range cases {
		if got := shortFileName(in); got != want {
			t.Errorf("shortFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
