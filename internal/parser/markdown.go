package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/critree/internal/criteria"
	"github.com/dgallion1/critree/internal/doctree"
	"github.com/dgallion1/critree/internal/segment"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct {
	DefaultKind criteria.SectionKind
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	doc := &doctree.Document{Title: titleFor(filename)}
	c := segment.NewCollector(p.DefaultKind)
	seen := false

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := inlineText(node, src)
			// A leading h1 names the document rather than opening a group.
			if !seen && node.Level == 1 {
				if _, ok := segment.HeadingKind(title); !ok {
					doc.Title = title
					seen = true
					continue
				}
			}
			c.Heading(node.Level, title)
		case *ast.List:
			walkMarkdownList(c, node, 0, src)
		default:
			if t := blockText(n, src); t != "" {
				if err := c.Text(t); err != nil {
					return nil, fmt.Errorf("tokenize markdown: %w", err)
				}
			}
		}
		seen = true
	}

	doc.Sections = c.Sections()
	return doc, nil
}

// walkMarkdownList emits one line per list item, nesting sub-lists one level deeper.
func walkMarkdownList(c *segment.Collector, list *ast.List, depth int, src []byte) {
	i := 0
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		leader := string(list.Marker)
		if list.IsOrdered() {
			leader = fmt.Sprintf("%d%c", list.Start+i, list.Marker)
		}
		i++

		first := true
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			if sub, ok := child.(*ast.List); ok {
				if first {
					c.Line(leader, depth, "")
					first = false
				}
				walkMarkdownList(c, sub, depth+1, src)
				continue
			}
			t := oneLine(blockText(child, src))
			if first {
				c.Line(leader, depth, t)
				first = false
				continue
			}
			c.Line("", depth+1, t)
		}
		if first {
			c.Line(leader, depth, "")
		}
	}
}

// blockText gets the text of a block node. Code blocks keep their raw lines;
// everything else is rendered from its inline children.
func blockText(n ast.Node, src []byte) string {
	switch n.Kind() {
	case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	case ast.KindBlockquote:
		var parts []string
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t := blockText(c, src); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, "\n")
	}
	return inlineText(n, src)
}

// inlineText concatenates the text of inline descendants, keeping line breaks.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Value(src))
				if t.HardLineBreak() || t.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(t.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
