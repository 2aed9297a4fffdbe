package doctree

import (
	"fmt"
	"strings"

	"github.com/dgallion1/critree/internal/criteria"
)

// Document is a parsed study text split into criteria sections.
type Document struct {
	Title    string    // Document title (from metadata or filename)
	Sections []Section // Sections in document order
}

// Section is one run of tokenized lines belonging to a single criteria kind.
type Section struct {
	Kind    criteria.SectionKind
	Heading string             // Heading text that opened the section, if any
	Lines   []criteria.RawLine // Lines in document order, header row included
}

// LineCount returns the number of lines across all sections.
func (d *Document) LineCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Lines)
	}
	return n
}

// Merged returns the sections with every kind's runs concatenated, in order
// of first appearance. A document that repeats a heading yields one section
// per kind so paths stay unique within it; the repeated heading's header row
// is dropped since the merged section already has one.
func (d *Document) Merged() []Section {
	var out []Section
	idx := make(map[criteria.SectionKind]int)
	for _, s := range d.Sections {
		i, ok := idx[s.Kind]
		if !ok {
			idx[s.Kind] = len(out)
			out = append(out, Section{Kind: s.Kind, Heading: s.Heading, Lines: append([]criteria.RawLine(nil), s.Lines...)})
			continue
		}
		for _, l := range s.Lines {
			if !l.IsHeader() {
				out[i].Lines = append(out[i].Lines, l)
			}
		}
	}
	return out
}

// TaggedSection is a section after hierarchy building.
type TaggedSection struct {
	Kind    criteria.SectionKind  `json:"kind" yaml:"kind"`
	Heading string                `json:"heading,omitempty" yaml:"heading,omitempty"`
	Lines   []criteria.TaggedLine `json:"lines" yaml:"lines"`
}

// Tag builds every merged section of the document.
func (d *Document) Tag(b *criteria.Builder) ([]TaggedSection, error) {
	merged := d.Merged()
	out := make([]TaggedSection, 0, len(merged))
	for _, s := range merged {
		lines, err := b.Build(s.Kind, s.Lines)
		if err != nil {
			return nil, fmt.Errorf("tag %s section: %w", s.Kind, err)
		}
		out = append(out, TaggedSection{Kind: s.Kind, Heading: s.Heading, Lines: lines})
	}
	return out, nil
}

// Tree is a tagged section nested by path, ready to re-render.
type Tree struct {
	Kind     criteria.SectionKind
	Headers  []criteria.TaggedLine // Root and header rows (empty path)
	Children []*Node               // Top-level criteria
}

// Node is a tagged line and the lines nested under it.
type Node struct {
	Line     criteria.TaggedLine
	Children []*Node
}

// Build nests tagged lines by path. Lines must be in builder output order.
func Build(kind criteria.SectionKind, lines []criteria.TaggedLine) *Tree {
	tree := &Tree{Kind: kind}

	type stackEntry struct {
		node  *Node
		depth int
	}
	var stack []stackEntry

	for _, l := range lines {
		depth := criteria.PathDepth(l.Path)
		if depth == 0 {
			tree.Headers = append(tree.Headers, l)
			continue
		}
		n := &Node{Line: l}

		// Pop until the top is a shallower ancestor.
		for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			tree.Children = append(tree.Children, n)
		} else {
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, n)
		}
		stack = append(stack, stackEntry{node: n, depth: depth})
	}
	return tree
}

// Lines walks the tree depth first, returning lines in their original order.
func (t *Tree) Lines() []criteria.TaggedLine {
	out := append([]criteria.TaggedLine(nil), t.Headers...)
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, n.Line)
			walk(n.Children)
		}
	}
	walk(t.Children)
	return out
}

// Render re-emits the section as indented text, two spaces per level.
func (t *Tree) Render() string {
	var sb strings.Builder
	for _, h := range t.Headers {
		if h.Text != "" {
			sb.WriteString(h.Text)
			sb.WriteString("\n")
		}
	}
	var walk func(nodes []*Node, indent int)
	walk = func(nodes []*Node, indent int) {
		for _, n := range nodes {
			sb.WriteString(strings.Repeat("  ", indent))
			if n.Line.LeaderStyle != "" {
				sb.WriteString(n.Line.LeaderStyle)
				sb.WriteString(" ")
			}
			sb.WriteString(n.Line.Text)
			sb.WriteString("\n")
			walk(n.Children, indent+1)
		}
	}
	walk(t.Children, 0)
	return sb.String()
}
