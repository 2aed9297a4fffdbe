package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/critree/internal/criteria"
	"github.com/dgallion1/critree/internal/doctree"
	"github.com/dgallion1/critree/internal/segment"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files.
type HTMLParser struct {
	DefaultKind criteria.SectionKind
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &doctree.Document{Title: titleFor(filename)}
	if title := findTitle(root); title != "" {
		doc.Title = title
	}

	c := segment.NewCollector(p.DefaultKind)

	var textErr error
	addText := func(t string) {
		if textErr == nil {
			textErr = c.Text(t)
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if textErr != nil {
			return
		}
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				c.Heading(level, oneLine(textContent(n)))
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header", "title":
				return
			case "ul", "ol":
				walkHTMLList(c, n, 0)
				return
			case "p", "td", "blockquote", "dt", "dd":
				if t := blockLines(n); t != "" {
					addText(t)
				}
				return
			}
		}
		if n.Type == html.TextNode && n.Parent != nil && isContainer(n.Parent.Data) {
			if t := oneLine(n.Data); t != "" {
				addText(t)
			}
			return
		}

		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}

	if body := findBody(root); body != nil {
		walk(body)
	} else {
		walk(root)
	}
	if textErr != nil {
		return nil, fmt.Errorf("tokenize html: %w", textErr)
	}

	doc.Sections = c.Sections()
	return doc, nil
}

// walkHTMLList emits one line per <li>, descending into nested lists.
func walkHTMLList(c *segment.Collector, list *html.Node, depth int) {
	ordered := list.Data == "ol"
	style := attr(list, "type")
	next := 1
	if s, err := strconv.Atoi(attr(list, "start")); err == nil {
		next = s
	}

	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		leader := "-"
		if ordered {
			if v, err := strconv.Atoi(attr(li, "value")); err == nil {
				next = v
			}
			leader = orderedLeader(style, next) + "."
			next++
		}

		c.Line(leader, depth, itemText(li))
		for ch := li.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type == html.ElementNode && (ch.Data == "ul" || ch.Data == "ol") {
				walkHTMLList(c, ch, depth+1)
			}
		}
	}
}

// orderedLeader renders n in the numbering style of an <ol type=...>.
func orderedLeader(style string, n int) string {
	switch style {
	case "a":
		return alpha(n, 'a')
	case "A":
		return alpha(n, 'A')
	case "i":
		return strings.ToLower(roman(n))
	case "I":
		return roman(n)
	}
	return strconv.Itoa(n)
}

func alpha(n int, base rune) string {
	if n < 1 {
		return strconv.Itoa(n)
	}
	var out []rune
	for n > 0 {
		n--
		out = append([]rune{base + rune(n%26)}, out...)
		n /= 26
	}
	return string(out)
}

func roman(n int) string {
	if n < 1 || n > 3999 {
		return strconv.Itoa(n)
	}
	vals := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	syms := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
	var sb strings.Builder
	for i, v := range vals {
		for n >= v {
			sb.WriteString(syms[i])
			n -= v
		}
	}
	return sb.String()
}

// itemText is the text of an <li> without its nested lists.
func itemText(li *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			extract(ch)
		}
	}
	for ch := li.FirstChild; ch != nil; ch = ch.NextSibling {
		extract(ch)
	}
	return oneLine(buf.String())
}

// blockLines returns the text of a block element, one line per <br>.
func blockLines(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteByte('\n')
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			extract(ch)
		}
	}
	extract(n)

	var lines []string
	for _, l := range strings.Split(buf.String(), "\n") {
		if l = oneLine(l); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

func isContainer(tag string) bool {
	switch tag {
	case "body", "div", "section", "article", "main":
		return true
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
