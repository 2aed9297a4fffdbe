package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/critree/internal/criteria"
)

const protocol = `Inclusion Criteria:
1. Adults aged 18 or older
2. Confirmed diagnosis
   a. measurable disease

Exclusion Criteria:
- Pregnancy
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestTagFile(t *testing.T) {
	path := writeTemp(t, "protocol.txt", protocol)
	sections, title, err := tagFile(path, criteria.Eligibility, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "protocol" {
		t.Errorf("expected title protocol, got %q", title)
	}
	if len(sections) != 2 || sections[0].Kind != criteria.Inclusion {
		t.Fatalf("unexpected sections: %+v", sections)
	}
	if got := sections[0].Lines[3].Path; got != "2.1" {
		t.Errorf("expected path 2.1, got %q", got)
	}
}

func TestTagFile_Unsupported(t *testing.T) {
	path := writeTemp(t, "protocol.rtf", protocol)
	if _, _, err := tagFile(path, criteria.Eligibility, slog.New(slog.DiscardHandler)); err == nil {
		t.Error("expected unsupported extension error")
	}
}

func TestWriteSections(t *testing.T) {
	path := writeTemp(t, "protocol.txt", protocol)
	sections, title, err := tagFile(path, criteria.Eligibility, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("tag: %v", err)
	}

	var text bytes.Buffer
	if err := writeSections(&text, "text", title, sections); err != nil {
		t.Fatalf("text: %v", err)
	}
	want := "Inclusion Criteria:\n1. Adults aged 18 or older\n2. Confirmed diagnosis\n  a. measurable disease\n\nExclusion Criteria:\n- Pregnancy\n"
	if text.String() != want {
		t.Errorf("text mismatch:\nwant:\n%s\ngot:\n%s", want, text.String())
	}

	var js bytes.Buffer
	if err := writeSections(&js, "json", title, sections); err != nil {
		t.Fatalf("json: %v", err)
	}
	var out struct {
		Title    string `json:"title"`
		Sections []struct {
			Kind string `json:"kind"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(js.Bytes(), &out); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if out.Title != "protocol" || len(out.Sections) != 2 || out.Sections[1].Kind != "exclusion" {
		t.Errorf("unexpected json output: %+v", out)
	}

	var y bytes.Buffer
	if err := writeSections(&y, "yaml", title, sections); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(y.String(), "kind: inclusion") || !strings.Contains(y.String(), "text: measurable disease") {
		t.Errorf("unexpected yaml output:\n%s", y.String())
	}

	if err := writeSections(&bytes.Buffer{}, "xml", title, sections); err == nil {
		t.Error("expected error for unknown format")
	}
}
