package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/critree/internal/criteria"
	"github.com/dgallion1/critree/internal/doctree"
	"github.com/dgallion1/critree/internal/segment"
)

// TextParser handles plain text files.
type TextParser struct {
	DefaultKind criteria.SectionKind
}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	sections, err := segment.Sections(string(src), p.DefaultKind)
	if err != nil {
		return nil, fmt.Errorf("tokenize text: %w", err)
	}
	return &doctree.Document{
		Title:    titleFor(filename),
		Sections: sections,
	}, nil
}
