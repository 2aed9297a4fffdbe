package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/critree/internal/criteria"
	"github.com/dgallion1/critree/internal/doctree"
	"github.com/dgallion1/critree/internal/segment"
)

// CSVParser handles pre-tokenized criteria exports. The first row names the
// columns; sequence and text are required, section, leader, depth and
// supplementary are optional.
type CSVParser struct {
	DefaultKind criteria.SectionKind
}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &doctree.Document{Title: titleFor(filename)}
	if len(records) == 0 {
		return doc, nil
	}

	cols := make(map[string]int)
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"sequence", "text"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("parse csv: missing %q column", required)
		}
	}
	get := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	defaultKind := p.DefaultKind
	if !defaultKind.Valid() {
		defaultKind = criteria.Eligibility
	}

	var cur *doctree.Section
	curLabel := ""
	for n, row := range records[1:] {
		rowNum := n + 2 // 1-indexed, skip header

		label := get(row, "section")
		if cur == nil || label != curLabel {
			kind := defaultKind
			if label != "" {
				kind = criteria.ParseSectionKind(label)
			}
			doc.Sections = append(doc.Sections, doctree.Section{Kind: kind, Heading: label})
			cur = &doc.Sections[len(doc.Sections)-1]
			curLabel = label
		}

		seq, err := strconv.Atoi(get(row, "sequence"))
		if err != nil {
			return nil, fmt.Errorf("csv row %d: sequence: %w", rowNum, err)
		}
		depth := 0
		if s := get(row, "depth"); s != "" {
			if depth, err = strconv.Atoi(s); err != nil {
				return nil, fmt.Errorf("csv row %d: depth: %w", rowNum, err)
			}
		}
		text := get(row, "text")
		supp := segment.IsSupplementary(text)
		if s := get(row, "supplementary"); s != "" {
			if supp, err = strconv.ParseBool(s); err != nil {
				return nil, fmt.Errorf("csv row %d: supplementary: %w", rowNum, err)
			}
		}

		cur.Lines = append(cur.Lines, criteria.RawLine{
			SequenceNumber:   seq,
			LeaderStyle:      get(row, "leader"),
			IndentationDepth: depth,
			Text:             text,
			Supplementary:    supp,
		})
	}

	return doc, nil
}
