package criteria

// HeaderLeader marks the section header row produced by the tokenizer.
const HeaderLeader = "Hdr"

// RawLine is one tokenized line of a criteria section.
type RawLine struct {
	SequenceNumber   int    `json:"sequence_number" yaml:"sequence_number"`
	LeaderStyle      string `json:"leader_style" yaml:"leader_style"`
	IndentationDepth int    `json:"indentation_depth" yaml:"indentation_depth"`
	Text             string `json:"text" yaml:"text"`

	// Supplementary is the tokenizer's note flag, read by FlaggedSupplementary.
	Supplementary bool `json:"supplementary,omitempty" yaml:"supplementary,omitempty"`
}

// IsHeader reports whether the line is a section header row.
func (l RawLine) IsHeader() bool {
	return l.LeaderStyle == HeaderLeader
}

// TaggedLine is a RawLine placed in the section hierarchy.
type TaggedLine struct {
	SequenceNumber     int            `json:"sequence_number" yaml:"sequence_number"`
	Classification     Classification `json:"classification" yaml:"classification"`
	LeaderStyle        string         `json:"leader_style" yaml:"leader_style"`
	Depth              int            `json:"depth" yaml:"depth"`
	DepthLocalSequence int            `json:"depth_local_sequence" yaml:"depth_local_sequence"`
	Path               string         `json:"path" yaml:"path"`
	Text               string         `json:"text" yaml:"text"`
}

// QualifiedPath prefixes the path with the section's sequence-start marker so
// keys stay unique across the sections of one study, e.g. "n2.3".
func QualifiedPath(kind SectionKind, path string) string {
	return kind.SequenceStart() + path
}
