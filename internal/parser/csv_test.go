package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/critree/internal/criteria"
)

func TestCSVParser_PreTokenizedRows(t *testing.T) {
	input := `section,sequence,leader,depth,text
inclusion,1,Hdr,0,Inclusion Criteria
inclusion,2,1.,0,Adults
inclusion,3,a.,1,aged 18-75
exclusion,4,-,0,Pregnancy
exclusion,5,,0,(unless surgically sterile)
`
	p := &CSVParser{DefaultKind: criteria.Eligibility}
	doc, err := p.Parse(strings.NewReader(input), "export.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(doc.Sections))
	}
	if doc.Sections[0].Kind != criteria.Inclusion || doc.Sections[1].Kind != criteria.Exclusion {
		t.Errorf("unexpected kinds: %s, %s", doc.Sections[0].Kind, doc.Sections[1].Kind)
	}
	nested := doc.Sections[0].Lines[2]
	if nested.SequenceNumber != 3 || nested.LeaderStyle != "a." || nested.IndentationDepth != 1 {
		t.Errorf("unexpected nested row: %+v", nested)
	}
	if !doc.Sections[1].Lines[1].Supplementary {
		t.Errorf("expected parenthesized row to be flagged supplementary")
	}
}

func TestCSVParser_MinimalColumns(t *testing.T) {
	input := "sequence,text\n1,Adults\n2,Consent\n"
	p := &CSVParser{DefaultKind: criteria.Other}
	doc, err := p.Parse(strings.NewReader(input), "min.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Kind != criteria.Other {
		t.Fatalf("expected a single section of the default kind, got %+v", doc.Sections)
	}
}

func TestCSVParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing text column", "sequence,leader\n1,1.\n"},
		{"bad sequence", "sequence,text\none,Adults\n"},
		{"bad depth", "sequence,depth,text\n1,deep,Adults\n"},
		{"bad supplementary", "sequence,text,supplementary\n1,Adults,maybe\n"},
	}
	p := &CSVParser{}
	for _, tt := range tests {
		if _, err := p.Parse(strings.NewReader(tt.input), "bad.csv"); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.txt", "b.MD", "c.markdown", "d.csv", "e.htm", "f.pdf", "g.docx"} {
		if _, err := ForFile(name, Options{}); err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
		}
		if !IsSupportedExtension(name) {
			t.Errorf("%s: expected supported", name)
		}
	}
	if _, err := ForFile("h.xlsx", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}

	p, _ := ForFile("x.pdf", Options{FallbackPdftotext: true})
	if pdf, ok := p.(*PDFParser); !ok || !pdf.FallbackPdftotext || pdf.DefaultKind != criteria.Eligibility {
		t.Errorf("expected configured PDF parser with default kind, got %+v", p)
	}
}
