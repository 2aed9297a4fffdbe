package segment

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/critree/internal/criteria"
	"github.com/dgallion1/critree/internal/doctree"
)

// TabWidth is the number of columns a tab counts for when measuring indentation.
const TabWidth = 4

var leaderRe = regexp.MustCompile(`^(\d{1,3}(?:\.\d{1,3})*[.)]|[ivxlcdmIVXLCDM]{1,6}[.)]|[A-Za-z][.)]|\((?:\d{1,3}|[ivxlcdmIVXLCDM]{1,6}|[A-Za-z])\)|[-*•·○▪+–])\s+`)

var headingRe = regexp.MustCompile(`(?i)^(?:key\s+|main\s+|general\s+|study\s+)?(inclusion|exclusion|eligibility)(?:\s+criteria)?\s*:?$`)

var supplementaryRe = regexp.MustCompile(`(?i)^(?:\*?note\b|nb\b|n\.b\.|e\.g\.|i\.e\.|please note\b)`)

// SplitLeader separates a bullet or numbering marker from the line text.
func SplitLeader(s string) (leader, rest string) {
	s = strings.TrimSpace(s)
	m := leaderRe.FindStringSubmatchIndex(s)
	if m == nil {
		return "", s
	}
	return s[m[2]:m[3]], strings.TrimSpace(s[m[1]:])
}

// HeadingKind reports whether s is a criteria section heading and which kind.
func HeadingKind(s string) (criteria.SectionKind, bool) {
	m := headingRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	return criteria.ParseSectionKind(m[1]), true
}

// IsSupplementary flags explanatory notes that hang off a criterion.
func IsSupplementary(text string) bool {
	t := strings.TrimSpace(text)
	if supplementaryRe.MatchString(t) {
		return true
	}
	return len(t) > 2 && strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")")
}

// Sections splits eligibility free text into criteria sections. Sequence
// numbers are the 1-based line numbers of text; text before the first heading
// lands in a section of defaultKind.
func Sections(text string, defaultKind criteria.SectionKind) ([]doctree.Section, error) {
	c := NewCollector(defaultKind)
	if err := c.Text(text); err != nil {
		return nil, err
	}
	return c.Sections(), nil
}

// Lines tokenizes text into raw lines without looking for headings.
func Lines(text string) ([]criteria.RawLine, error) {
	var out []criteria.RawLine
	var ind indenter
	err := scanLines(text, func(n int, raw string) {
		width, body := measure(raw)
		leader, rest := SplitLeader(body)
		out = append(out, criteria.RawLine{
			SequenceNumber:   n,
			LeaderStyle:      leader,
			IndentationDepth: ind.depth(width),
			Text:             rest,
			Supplementary:    IsSupplementary(rest),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MaxLineBytes is the longest line the tokenizer accepts.
const MaxLineBytes = 1024 * 1024

// scanLines calls fn for every non-blank line with its 1-based line number.
// Invalid UTF-8 is replaced with U+FFFD. A line longer than MaxLineBytes
// stops the scan with an error rather than truncating the text.
func scanLines(text string, fn func(n int, line string)) error {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimRight(strings.ToValidUTF8(scanner.Text(), "\uFFFD"), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fn(n, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan line %d: %w", n+1, err)
	}
	return nil
}

// measure returns the indentation width of line in columns and its body.
func measure(line string) (int, string) {
	width := 0
	for i, r := range line {
		switch r {
		case ' ', '\u00a0':
			width++
		case '\t':
			width += TabWidth - width%TabWidth
		default:
			return width, line[i:]
		}
	}
	return width, ""
}

// indenter folds raw column widths into nesting depths.
type indenter struct {
	widths []int
}

func (d *indenter) depth(width int) int {
	for len(d.widths) > 0 && d.widths[len(d.widths)-1] > width {
		d.widths = d.widths[:len(d.widths)-1]
	}
	if len(d.widths) == 0 || width > d.widths[len(d.widths)-1] {
		d.widths = append(d.widths, width)
	}
	return len(d.widths) - 1
}

func (d *indenter) reset() {
	d.widths = d.widths[:0]
}
