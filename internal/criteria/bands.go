package criteria

// Classification is the numeric band value stored for every tagged line.
type Classification int

// Band offsets above a section's base value. A value strictly greater than an
// offset falls in that band, so sub-bands added above these stay classified.
const (
	SupplementaryOffset = 200
	GroupHeaderOffset   = 300
	ContinuationOffset  = 1000
)

const (
	InclusionCriterion     Classification = 1
	InclusionSupplementary Classification = InclusionCriterion + SupplementaryOffset
	InclusionGroupHeader   Classification = InclusionCriterion + GroupHeaderOffset
	InclusionContinuation  Classification = InclusionCriterion + ContinuationOffset

	ExclusionCriterion     Classification = 2
	ExclusionSupplementary Classification = ExclusionCriterion + SupplementaryOffset
	ExclusionGroupHeader   Classification = ExclusionCriterion + GroupHeaderOffset
	ExclusionContinuation  Classification = ExclusionCriterion + ContinuationOffset

	EligibilityCriterion     Classification = 3
	EligibilitySupplementary Classification = EligibilityCriterion + SupplementaryOffset
	EligibilityGroupHeader   Classification = EligibilityCriterion + GroupHeaderOffset
	EligibilityContinuation  Classification = EligibilityCriterion + ContinuationOffset

	OtherCriterion     Classification = 4
	OtherSupplementary Classification = OtherCriterion + SupplementaryOffset
	OtherGroupHeader   Classification = OtherCriterion + GroupHeaderOffset
	OtherContinuation  Classification = OtherCriterion + ContinuationOffset
)

// Role is the textual function of a line inside its section.
type Role int

const (
	RoleCriterion Role = iota
	RoleSupplementary
	RoleGroupHeader
	RoleContinuation
)

func (r Role) String() string {
	switch r {
	case RoleSupplementary:
		return "supplementary statement"
	case RoleGroupHeader:
		return "group header"
	case RoleContinuation:
		return "continuation"
	}
	return "criterion"
}

// Bands holds the four classification values of one section kind.
type Bands struct {
	Kind          SectionKind
	Base          Classification
	Supplementary Classification
	GroupHeader   Classification
	Continuation  Classification
}

// Resolve derives the classification bands for a section kind. Values outside
// the known kinds resolve to the Other bands; the builder rejects them before
// they get this far.
func Resolve(kind SectionKind) Bands {
	base := OtherCriterion
	switch kind {
	case Inclusion:
		base = InclusionCriterion
	case Exclusion:
		base = ExclusionCriterion
	case Eligibility:
		base = EligibilityCriterion
	default:
		kind = Other
	}
	return Bands{
		Kind:          kind,
		Base:          base,
		Supplementary: base + SupplementaryOffset,
		GroupHeader:   base + GroupHeaderOffset,
		Continuation:  base + ContinuationOffset,
	}
}

// For returns the band value for a role.
func (b Bands) For(r Role) Classification {
	switch r {
	case RoleSupplementary:
		return b.Supplementary
	case RoleGroupHeader:
		return b.GroupHeader
	case RoleContinuation:
		return b.Continuation
	}
	return b.Base
}

// RoleOf classifies c by open-ended range, checked from the top band down.
func RoleOf(c Classification) Role {
	switch {
	case c > ContinuationOffset:
		return RoleContinuation
	case c > GroupHeaderOffset:
		return RoleGroupHeader
	case c > SupplementaryOffset:
		return RoleSupplementary
	}
	return RoleCriterion
}

// BandName describes classification c in terms of the section's bands.
func BandName(b Bands, c Classification) string {
	return b.Kind.String() + " " + RoleOf(c).String()
}

// Kind recovers the section kind encoded in a classification value.
func (c Classification) Kind() SectionKind {
	k := SectionKind(int(c) % 100)
	if !k.Valid() {
		return Other
	}
	return k
}

// Role is shorthand for RoleOf(c).
func (c Classification) Role() Role {
	return RoleOf(c)
}

func (c Classification) String() string {
	return BandName(Resolve(c.Kind()), c)
}
