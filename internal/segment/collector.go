package segment

import (
	"strings"

	"github.com/dgallion1/critree/internal/criteria"
	"github.com/dgallion1/critree/internal/doctree"
)

// Collector accumulates lines from a structured walk of a document (markdown
// AST, HTML tree, DOCX paragraphs) into criteria sections.
type Collector struct {
	defaultKind criteria.SectionKind
	sections    []doctree.Section
	cur         *doctree.Section
	seq         int
	offset      int // depth added below a non-criteria sub-heading
	ind         indenter
}

func NewCollector(defaultKind criteria.SectionKind) *Collector {
	if !defaultKind.Valid() {
		defaultKind = criteria.Eligibility
	}
	return &Collector{defaultKind: defaultKind}
}

// Heading records a document heading. Criteria headings open a new section
// with a header row; any other heading becomes a group line that the
// following lines nest under.
func (c *Collector) Heading(level int, text string) {
	c.HeadingAt(c.seq+1, level, text)
}

// HeadingAt is Heading with an explicit sequence number.
func (c *Collector) HeadingAt(seq, level int, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if kind, ok := HeadingKind(text); ok {
		c.sections = append(c.sections, doctree.Section{Kind: kind, Heading: text})
		c.cur = &c.sections[len(c.sections)-1]
		c.offset = 0
		c.ind.reset()
		c.append(seq, criteria.RawLine{LeaderStyle: criteria.HeaderLeader, Text: text})
		return
	}
	if level < 1 {
		level = 1
	}
	c.offset = 0
	c.LineAt(seq, strings.Repeat("#", level), 0, text)
	c.offset = 1
}

// Line records one list line at a structural depth.
func (c *Collector) Line(leader string, depth int, text string) {
	c.LineAt(c.seq+1, leader, depth, text)
}

// LineAt is Line with an explicit sequence number.
func (c *Collector) LineAt(seq int, leader string, depth int, text string) {
	text = strings.TrimSpace(text)
	if text == "" && leader == "" {
		return
	}
	c.append(seq, criteria.RawLine{
		LeaderStyle:      leader,
		IndentationDepth: depth + c.offset,
		Text:             text,
		Supplementary:    IsSupplementary(text),
	})
}

// Text tokenizes a block of free text line by line, recognizing criteria
// headings, leaders and indentation. Sequence numbers continue from the last
// recorded line. Lines read before a scan error stay collected.
func (c *Collector) Text(block string) error {
	base := c.seq
	return scanLines(block, func(n int, raw string) {
		seq := base + n
		width, body := measure(raw)
		if _, ok := HeadingKind(body); ok {
			c.HeadingAt(seq, 1, body)
			return
		}
		leader, rest := SplitLeader(body)
		c.LineAt(seq, leader, c.ind.depth(width), rest)
	})
}

// Sections returns the collected sections, dropping any left empty.
func (c *Collector) Sections() []doctree.Section {
	out := make([]doctree.Section, 0, len(c.sections))
	for _, s := range c.sections {
		if len(s.Lines) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func (c *Collector) append(seq int, l criteria.RawLine) {
	if c.cur == nil {
		c.sections = append(c.sections, doctree.Section{Kind: c.defaultKind})
		c.cur = &c.sections[len(c.sections)-1]
	}
	if seq <= c.seq {
		seq = c.seq + 1
	}
	c.seq = seq
	l.SequenceNumber = seq
	c.cur.Lines = append(c.cur.Lines, l)
}
