package criteria

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	rootIndex         = 0
	headerIndex       = 1
	firstContentIndex = 2
)

type level struct {
	style string // leader style class owning this depth
	next  int    // sequence to hand out on the next Advance
	last  int    // sequence handed out most recently, 0 for placeholders
}

// LevelState tracks, per resolved depth, which leader style owns it and how far
// its numbering has advanced. One value serves exactly one section.
type LevelState struct {
	start     int
	levels    []level
	lastIndex int
	content   bool
}

// Resolution is the outcome of placing one line in the level table.
type Resolution struct {
	Index int
	// New is set when the line opened a level or replaced its leader style.
	New bool
	// Underflow is set when the line closed levels that were never opened.
	Underflow bool
}

// NewLevelState returns a table holding only the root and header entries.
func NewLevelState(start int) *LevelState {
	return &LevelState{
		start: start,
		levels: []level{
			rootIndex:   {style: "All", next: start},
			headerIndex: {style: HeaderLeader, next: start},
		},
	}
}

// Len is the number of entries in the table, including root and header.
func (s *LevelState) Len() int {
	return len(s.levels)
}

// Resolve maps a line's leader and indentation onto a level index. Every
// entry deeper than the resolved index is closed.
func (s *LevelState) Resolve(leader string, indentation int) Resolution {
	if leader == HeaderLeader && !s.content && s.levels[headerIndex].last == 0 {
		s.lastIndex = headerIndex
		return Resolution{Index: headerIndex, New: true}
	}

	var res Resolution
	switch {
	case leader == "":
		res.Index = s.unmarkedIndex()
	case indentation < 0:
		res.Underflow = true
		res.Index = firstContentIndex
	default:
		res.Index = indentation + firstContentIndex
	}

	class := styleClass(leader)
	if res.Index < len(s.levels) {
		lv := &s.levels[res.Index]
		if orphan := s.firstPopulatedBelow(res.Index); lv.last == 0 && orphan > 0 {
			// Deeper lines already took this depth's slot in the path, so
			// numbering resumes after them.
			res.Underflow = true
			res.New = true
			lv.style = class
			lv.next = max(lv.next, orphan+1)
		} else if lv.style != class {
			// A populated level keeps counting so sibling paths stay
			// strictly increasing across the style switch.
			res.New = true
			lv.style = class
			if lv.last == 0 {
				lv.next = s.start
			}
		}
		s.levels = s.levels[:res.Index+1]
	} else {
		for len(s.levels) <= res.Index {
			s.levels = append(s.levels, level{style: class, next: s.start})
		}
		res.New = true
	}

	s.lastIndex = res.Index
	s.content = true
	return res
}

// Advance hands out the next sequence number at index.
func (s *LevelState) Advance(index int) int {
	lv := &s.levels[index]
	lv.last = lv.next
	lv.next++
	return lv.last
}

// Path joins the current sequence of every populated content level from the
// top down to index. Root, header and placeholder levels add no segment.
func (s *LevelState) Path(index int) string {
	var segs []string
	for i := firstContentIndex; i <= index && i < len(s.levels); i++ {
		if s.levels[i].last > 0 {
			segs = append(segs, strconv.Itoa(s.levels[i].last))
		}
	}
	return strings.Join(segs, PathSeparator)
}

// unmarkedIndex places a line without a leader one level below the latest
// marked line, or beside the previous unmarked line.
func (s *LevelState) unmarkedIndex() int {
	if s.lastIndex < firstContentIndex {
		return firstContentIndex
	}
	if s.levels[s.lastIndex].style == "" {
		return s.lastIndex
	}
	return s.lastIndex + 1
}

func (s *LevelState) firstPopulatedBelow(index int) int {
	for i := index + 1; i < len(s.levels); i++ {
		if s.levels[i].last > 0 {
			return s.levels[i].last
		}
	}
	return 0
}

// styleClass reduces a literal leader to its numbering convention so that
// "1." and "12." or "a)" and "c)" compare equal.
func styleClass(leader string) string {
	if leader == "" || leader == HeaderLeader {
		return leader
	}
	rs := []rune(leader)
	var sb strings.Builder
	for i := 0; i < len(rs); {
		switch r := rs[i]; {
		case unicode.IsDigit(r):
			for i < len(rs) && unicode.IsDigit(rs[i]) {
				i++
			}
			sb.WriteByte('9')
		case unicode.IsLetter(r):
			j := i
			for j < len(rs) && unicode.IsLetter(rs[j]) {
				j++
			}
			sb.WriteString(letterClass(string(rs[i:j])))
			i = j
		default:
			sb.WriteRune(r)
			i++
		}
	}
	return sb.String()
}

func letterClass(word string) string {
	lower := strings.ToLower(word)
	upper := word != lower
	switch {
	case isRoman(lower) && (len(lower) > 1 || lower == "i"):
		if upper {
			return "I"
		}
		return "i"
	case len([]rune(word)) == 1:
		if upper {
			return "A"
		}
		return "a"
	}
	return lower
}

func isRoman(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("ivxlcdm", r) {
			return false
		}
	}
	return true
}
