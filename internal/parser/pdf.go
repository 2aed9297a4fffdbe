package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/dgallion1/critree/internal/criteria"
	"github.com/dgallion1/critree/internal/doctree"
	"github.com/dgallion1/critree/internal/segment"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. Text comes from ledongthuc/pdf, or from
// pdftotext when that fails and the fallback is enabled.
type PDFParser struct {
	DefaultKind       criteria.SectionKind
	FallbackPdftotext bool
}

var pageNumberRe = regexp.MustCompile(`(?i)^(?:page\s+)?\d{1,4}(?:\s*(?:of|/)\s*\d{1,4})?$`)

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	tmp, err := os.CreateTemp("", "critree-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	pages, err := readPDFPages(tmpPath)
	if err != nil && p.FallbackPdftotext {
		pages, err = pdftotextPages(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	sections, err := segment.Sections(joinPages(pages), p.DefaultKind)
	if err != nil {
		return nil, fmt.Errorf("tokenize pdf text: %w", err)
	}
	return &doctree.Document{
		Title:    titleFor(filename),
		Sections: sections,
	}, nil
}

func readPDFPages(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func pdftotextPages(path string) ([]string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return strings.Split(string(out), "\f"), nil
}

// joinPages concatenates page texts, dropping page numbers and the running
// header and footer lines repeated on most pages so criteria lists continue
// across page breaks.
func joinPages(pages []string) string {
	running := make(map[string]int)
	if len(pages) >= 3 {
		for _, page := range pages {
			seen := make(map[string]bool)
			for _, line := range strings.Split(page, "\n") {
				key := strings.TrimSpace(line)
				if key != "" && !seen[key] {
					seen[key] = true
					running[key]++
				}
			}
		}
	}

	var sb strings.Builder
	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			key := strings.TrimSpace(line)
			if pageNumberRe.MatchString(key) || running[key]*2 > len(pages) {
				continue
			}
			sb.WriteString(strings.TrimRight(line, " \t\r"))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
