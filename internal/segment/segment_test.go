package segment

import (
	"bufio"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dgallion1/critree/internal/criteria"
	"github.com/dgallion1/critree/internal/doctree"
	"github.com/google/go-cmp/cmp"
)

const protocolText = `Inclusion Criteria:

1. Age ≥ 18 years
2. Histologically confirmed disease
   a) measurable by RECIST
   b) at least one lesion
      not previously irradiated
3. Adequate organ function
   Note: labs within 14 days

Exclusion Criteria:
- Pregnancy
- Prior therapy`

func TestSplitLeader(t *testing.T) {
	tests := []struct {
		in, leader, rest string
	}{
		{"1. Age ≥ 18", "1.", "Age ≥ 18"},
		{"a) measurable", "a)", "measurable"},
		{"(iv) roman in parens", "(iv)", "roman in parens"},
		{"IV. Upper roman", "IV.", "Upper roman"},
		{"- dash bullet", "-", "dash bullet"},
		{"• round bullet", "•", "round bullet"},
		{"10.2. nested number", "10.2.", "nested number"},
		{"e.g. not a leader", "", "e.g. not a leader"},
		{"Age 18 or older", "", "Age 18 or older"},
		{"  3)   padded", "3)", "padded"},
	}
	for _, tt := range tests {
		leader, rest := SplitLeader(tt.in)
		if leader != tt.leader || rest != tt.rest {
			t.Errorf("SplitLeader(%q): expected (%q, %q), got (%q, %q)", tt.in, tt.leader, tt.rest, leader, rest)
		}
	}
}

func TestHeadingKind(t *testing.T) {
	tests := []struct {
		in   string
		kind criteria.SectionKind
		ok   bool
	}{
		{"Inclusion Criteria:", criteria.Inclusion, true},
		{"EXCLUSION CRITERIA", criteria.Exclusion, true},
		{"Key Inclusion Criteria:", criteria.Inclusion, true},
		{"Eligibility:", criteria.Eligibility, true},
		{"Inclusion of patients with cirrhosis", 0, false},
		{"1. Inclusion", 0, false},
	}
	for _, tt := range tests {
		kind, ok := HeadingKind(tt.in)
		if ok != tt.ok || kind != tt.kind {
			t.Errorf("HeadingKind(%q): expected (%s, %v), got (%s, %v)", tt.in, tt.kind, tt.ok, kind, ok)
		}
	}
}

func TestIsSupplementary(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Note: labs within 14 days", true},
		{"NB: fasting sample", true},
		{"(see protocol appendix B)", true},
		{"e.g. statins", true},
		{"Normal renal function", false},
		{"No prior therapy", false},
	}
	for _, tt := range tests {
		if got := IsSupplementary(tt.in); got != tt.want {
			t.Errorf("IsSupplementary(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func mustSections(t *testing.T, text string, kind criteria.SectionKind) []doctree.Section {
	t.Helper()
	sections, err := Sections(text, kind)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sections
}

func TestSections_SplitsOnCriteriaHeadings(t *testing.T) {
	sections := mustSections(t, protocolText, criteria.Eligibility)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}

	inc := sections[0]
	if inc.Kind != criteria.Inclusion || inc.Heading != "Inclusion Criteria:" {
		t.Errorf("expected inclusion section, got %s %q", inc.Kind, inc.Heading)
	}
	want := []criteria.RawLine{
		{SequenceNumber: 1, LeaderStyle: "Hdr", Text: "Inclusion Criteria:"},
		{SequenceNumber: 3, LeaderStyle: "1.", Text: "Age ≥ 18 years"},
		{SequenceNumber: 4, LeaderStyle: "2.", Text: "Histologically confirmed disease"},
		{SequenceNumber: 5, LeaderStyle: "a)", IndentationDepth: 1, Text: "measurable by RECIST"},
		{SequenceNumber: 6, LeaderStyle: "b)", IndentationDepth: 1, Text: "at least one lesion"},
		{SequenceNumber: 7, LeaderStyle: "", IndentationDepth: 2, Text: "not previously irradiated"},
		{SequenceNumber: 8, LeaderStyle: "3.", Text: "Adequate organ function"},
		{SequenceNumber: 9, LeaderStyle: "", IndentationDepth: 1, Text: "Note: labs within 14 days", Supplementary: true},
	}
	if diff := cmp.Diff(want, inc.Lines); diff != "" {
		t.Errorf("inclusion lines mismatch (-want +got):\n%s", diff)
	}

	exc := sections[1]
	if exc.Kind != criteria.Exclusion {
		t.Errorf("expected exclusion section, got %s", exc.Kind)
	}
	if len(exc.Lines) != 3 || exc.Lines[1].SequenceNumber != 12 || exc.Lines[2].LeaderStyle != "-" {
		t.Errorf("unexpected exclusion lines: %+v", exc.Lines)
	}
}

func TestSections_TextBeforeHeadingUsesDefaultKind(t *testing.T) {
	sections := mustSections(t, "Healthy volunteers\n- aged 18-45\n", criteria.Eligibility)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Kind != criteria.Eligibility {
		t.Errorf("expected eligibility, got %s", sections[0].Kind)
	}
	if sections[0].Lines[0].LeaderStyle != "" || sections[0].Lines[1].LeaderStyle != "-" {
		t.Errorf("unexpected leaders: %+v", sections[0].Lines)
	}
}

func TestSections_EmptyInput(t *testing.T) {
	if got := mustSections(t, "\n\n   \n", criteria.Inclusion); len(got) != 0 {
		t.Errorf("expected no sections, got %d", len(got))
	}
}

func TestSections_FeedHierarchyBuilder(t *testing.T) {
	sections := mustSections(t, protocolText, criteria.Eligibility)
	tagged, err := criteria.Build(sections[0].Kind, sections[0].Lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantPaths := []string{"", "1", "2", "2.1", "2.2", "2.2.1", "3", "3.1"}
	for i, w := range wantPaths {
		if tagged[i].Path != w {
			t.Errorf("line %d: expected path %q, got %q", i, w, tagged[i].Path)
		}
	}
	if tagged[0].Classification != criteria.InclusionGroupHeader {
		t.Errorf("expected header band, got %v", tagged[0].Classification)
	}
	if tagged[7].Classification != criteria.InclusionContinuation {
		t.Errorf("expected unmarked note to stay a continuation, got %v", tagged[7].Classification)
	}
}

func TestLines_TabsAndIndentation(t *testing.T) {
	lines, err := Lines("1. top\n\ta. tabbed\n    b. four spaces\n2. back")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantDepths := []int{0, 1, 1, 0}
	if len(lines) != len(wantDepths) {
		t.Fatalf("expected %d lines, got %d", len(wantDepths), len(lines))
	}
	for i, w := range wantDepths {
		if lines[i].IndentationDepth != w {
			t.Errorf("line %d: expected depth %d, got %d", i, w, lines[i].IndentationDepth)
		}
	}
}

func TestCollector_SubHeadingNestsFollowingLines(t *testing.T) {
	c := NewCollector(criteria.Eligibility)
	c.Heading(2, "Exclusion Criteria")
	c.Heading(3, "Cardiac")
	c.Line("1.", 0, "Recent myocardial infarction")
	c.Line("", 0, "")
	c.Heading(2, "Inclusion")
	c.Line("-", 0, "Adults")

	sections := c.Sections()
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	exc := sections[0].Lines
	if len(exc) != 3 {
		t.Fatalf("expected 3 exclusion lines, got %d", len(exc))
	}
	if exc[1].LeaderStyle != "###" || exc[1].IndentationDepth != 0 {
		t.Errorf("expected sub-heading line at depth 0, got %+v", exc[1])
	}
	if exc[2].IndentationDepth != 1 {
		t.Errorf("expected criterion nested under sub-heading, got depth %d", exc[2].IndentationDepth)
	}
	if sections[1].Lines[1].IndentationDepth != 0 {
		t.Errorf("expected offset cleared by criteria heading, got %+v", sections[1].Lines[1])
	}
	for i := 1; i < len(exc); i++ {
		if exc[i].SequenceNumber <= exc[i-1].SequenceNumber {
			t.Errorf("sequence numbers not increasing: %+v", exc)
		}
	}
}

func TestSections_EdgeInputs(t *testing.T) {
	longLine := "2. " + strings.Repeat("x", 2*MaxLineBytes)
	tests := []struct {
		name      string
		text      string
		wantErr   bool
		sections  int
		lineCount int
	}{
		{
			name:    "line longer than the scan buffer",
			text:    "Inclusion Criteria:\n1. Adults\n" + longLine + "\n3. Consent\nExclusion Criteria:\n1. Pregnancy\n",
			wantErr: true,
		},
		{
			name:      "long line within the limit",
			text:      "Inclusion Criteria:\n" + strings.Repeat("y", MaxLineBytes/2) + "\n",
			sections:  1,
			lineCount: 2,
		},
		{
			name:      "invalid utf-8",
			text:      "Exclusion Criteria:\n- bad \xff\xfe bytes\n- fine\n",
			sections:  1,
			lineCount: 3,
		},
		{
			name:      "headings only",
			text:      "Inclusion Criteria:\n\nExclusion Criteria:\n",
			sections:  2,
			lineCount: 2,
		},
	}
	for _, tt := range tests {
		sections, err := Sections(tt.text, criteria.Eligibility)
		if tt.wantErr {
			if !errors.Is(err, bufio.ErrTooLong) {
				t.Errorf("%s: expected ErrTooLong, got %v", tt.name, err)
			}
			if sections != nil {
				t.Errorf("%s: expected no sections alongside the error, got %d", tt.name, len(sections))
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if len(sections) != tt.sections {
			t.Errorf("%s: expected %d sections, got %d", tt.name, tt.sections, len(sections))
			continue
		}
		n := 0
		for _, s := range sections {
			n += len(s.Lines)
			for _, l := range s.Lines {
				if !utf8.ValidString(l.Text) {
					t.Errorf("%s: invalid utf-8 in %q", tt.name, l.Text)
				}
			}
		}
		if n != tt.lineCount {
			t.Errorf("%s: expected %d lines, got %d", tt.name, tt.lineCount, n)
		}
	}
}

func TestSections_InvalidUTF8KeepsLeader(t *testing.T) {
	sections := mustSections(t, "Exclusion Criteria:\n- bad \xff bytes\n", criteria.Eligibility)
	line := sections[0].Lines[1]
	if line.LeaderStyle != "-" || line.Text != "bad \uFFFD bytes" {
		t.Errorf("unexpected line: %+v", line)
	}
}

func TestSections_HeadingsOnlyYieldHeaderRows(t *testing.T) {
	sections := mustSections(t, "Inclusion Criteria:\nExclusion Criteria:\n", criteria.Eligibility)
	for _, s := range sections {
		if len(s.Lines) != 1 || !s.Lines[0].IsHeader() {
			t.Errorf("expected a lone header row in %s, got %+v", s.Kind, s.Lines)
		}
		tagged, err := criteria.Build(s.Kind, s.Lines)
		if err != nil || tagged[0].Classification.Role() != criteria.RoleGroupHeader {
			t.Errorf("expected header band for %s, got %+v (err %v)", s.Kind, tagged, err)
		}
	}
}

func TestLines_OverlongLineFails(t *testing.T) {
	lines, err := Lines("1. ok\n" + strings.Repeat("z", MaxLineBytes+1))
	if !errors.Is(err, bufio.ErrTooLong) || lines != nil {
		t.Errorf("expected ErrTooLong and no lines, got %d lines, err %v", len(lines), err)
	}
	if err != nil && !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected the failing line number in %q", err.Error())
	}
}

func TestCollector_TextReportsScanError(t *testing.T) {
	c := NewCollector(criteria.Inclusion)
	if err := c.Text(strings.Repeat("w", MaxLineBytes+1)); !errors.Is(err, bufio.ErrTooLong) {
		t.Errorf("expected ErrTooLong, got %v", err)
	}
}
