package criteria

import (
	"fmt"
	"log/slog"
)

// SupplementaryFunc decides whether a marked line is a supplementary statement
// attached to the criterion before it.
type SupplementaryFunc func(RawLine) bool

// FlaggedSupplementary trusts the tokenizer's Supplementary flag.
func FlaggedSupplementary(l RawLine) bool {
	return l.Supplementary
}

// Option configures a Builder.
type Option func(*Builder)

// WithSupplementary replaces the supplementary predicate.
func WithSupplementary(fn SupplementaryFunc) Option {
	return func(b *Builder) {
		if fn != nil {
			b.supplementary = fn
		}
	}
}

// Builder tags the lines of one criteria section at a time. It keeps no state
// between calls and may be shared across goroutines.
type Builder struct {
	log           *slog.Logger
	supplementary SupplementaryFunc
}

func NewBuilder(log *slog.Logger, opts ...Option) *Builder {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	b := &Builder{log: log, supplementary: FlaggedSupplementary}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build tags every line of a section in input order. It returns either the
// full tagged section or a *HierarchyError and nothing else.
func (b *Builder) Build(kind SectionKind, lines []RawLine) ([]TaggedLine, error) {
	if !kind.Valid() {
		return nil, &HierarchyError{
			Kind:     ErrUnrecognizedSectionKind,
			Position: -1,
			Detail:   fmt.Sprintf("no sequence start for %s", kind),
		}
	}
	if err := checkMonotonic(lines); err != nil {
		return nil, err
	}

	bands := Resolve(kind)
	state := NewLevelState(firstSequence)
	out := make([]TaggedLine, 0, len(lines))

	for i, raw := range lines {
		res := state.Resolve(raw.LeaderStyle, raw.IndentationDepth)
		if res.Underflow {
			b.log.Warn("depth underflow, opening fresh level",
				"section", kind.String(),
				"error", &HierarchyError{
					Kind:           ErrDepthUnderflow,
					SequenceNumber: raw.SequenceNumber,
					Position:       i,
					Detail:         fmt.Sprintf("indentation %d resolved to level %d", raw.IndentationDepth, res.Index),
				},
				"sequence_number", raw.SequenceNumber,
				"indentation_depth", raw.IndentationDepth,
			)
		}
		seq := state.Advance(res.Index)
		out = append(out, Assemble(raw, bands, res.Index, seq, state.Path(res.Index), b.supplementary(raw)))
	}
	return out, nil
}

// Build tags a section with a default Builder.
func Build(kind SectionKind, lines []RawLine) ([]TaggedLine, error) {
	return NewBuilder(nil).Build(kind, lines)
}

// firstSequence is the first number handed out at each depth. Every kind
// numbers from it; the sequence-start marker only prefixes stored paths.
const firstSequence = 1
