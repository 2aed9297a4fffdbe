package criteria

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SectionKind identifies which criteria section a run of lines belongs to.
type SectionKind int

const (
	Inclusion SectionKind = iota + 1
	Exclusion
	Eligibility
	Other
)

// UnrecognizedStart is the sequence-start sentinel for values outside the known kinds.
const UnrecognizedStart = "??"

// Kinds lists every recognized section kind in storage order.
var Kinds = []SectionKind{Inclusion, Exclusion, Eligibility, Other}

func (k SectionKind) String() string {
	switch k {
	case Inclusion:
		return "inclusion"
	case Exclusion:
		return "exclusion"
	case Eligibility:
		return "eligibility"
	case Other:
		return "other"
	}
	return fmt.Sprintf("SectionKind(%d)", int(k))
}

// Valid reports whether k is one of the four recognized kinds.
func (k SectionKind) Valid() bool {
	return k >= Inclusion && k <= Other
}

// SequenceStart returns the marker that seeds numbering for the section.
func (k SectionKind) SequenceStart() string {
	switch k {
	case Inclusion:
		return "n"
	case Exclusion:
		return "e"
	case Eligibility:
		return "g"
	case Other:
		return "o"
	}
	return UnrecognizedStart
}

// ParseSectionKind normalizes an upstream label. Labels that match none of the
// known sections map to Other, never to Inclusion.
func ParseSectionKind(label string) SectionKind {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.TrimSuffix(s, ":")
	s = strings.TrimSpace(strings.TrimSuffix(s, "criteria"))
	s = strings.TrimPrefix(s, "key ")
	switch {
	case s == "":
		return Other
	case strings.HasPrefix(s, "incl"):
		return Inclusion
	case strings.HasPrefix(s, "excl"):
		return Exclusion
	case strings.HasPrefix(s, "elig"), s == "general", s == "participant eligibility":
		return Eligibility
	}
	return Other
}

func (k SectionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *SectionKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("section kind: %w", err)
	}
	*k = ParseSectionKind(s)
	return nil
}

func (k SectionKind) MarshalYAML() (any, error) {
	return k.String(), nil
}
