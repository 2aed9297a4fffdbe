package criteria

// Assemble turns a resolved raw line into its tagged form.
func Assemble(raw RawLine, bands Bands, depth, localSeq int, path string, supplementary bool) TaggedLine {
	return TaggedLine{
		SequenceNumber:     raw.SequenceNumber,
		Classification:     bands.For(roleFor(raw, depth, supplementary)),
		LeaderStyle:        raw.LeaderStyle,
		Depth:              depth,
		DepthLocalSequence: localSeq,
		Path:               path,
		Text:               raw.Text,
	}
}

func roleFor(raw RawLine, depth int, supplementary bool) Role {
	switch {
	case depth <= headerIndex, raw.IsHeader():
		return RoleGroupHeader
	case raw.LeaderStyle == "":
		return RoleContinuation
	case supplementary:
		return RoleSupplementary
	}
	return RoleCriterion
}
