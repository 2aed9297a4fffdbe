package criteria

import "testing"

func TestResolve_BandsOrderedAndDisjoint(t *testing.T) {
	seen := map[Classification]SectionKind{}
	for _, kind := range Kinds {
		b := Resolve(kind)
		if b.Kind != kind {
			t.Errorf("%s: expected kind %s, got %s", kind, kind, b.Kind)
		}
		if !(b.Base < b.Supplementary && b.Supplementary < b.GroupHeader && b.GroupHeader < b.Continuation) {
			t.Errorf("%s: bands not strictly ordered: %+v", kind, b)
		}
		for _, c := range []Classification{b.Base, b.Supplementary, b.GroupHeader, b.Continuation} {
			if other, dup := seen[c]; dup {
				t.Errorf("%s: band %d already used by %s", kind, c, other)
			}
			seen[c] = kind
		}
	}
	if Resolve(Inclusion).Base == Resolve(Exclusion).Base {
		t.Error("expected inclusion and exclusion bases to differ")
	}
}

func TestResolve_Offsets(t *testing.T) {
	tests := []struct {
		kind SectionKind
		want Bands
	}{
		{Inclusion, Bands{Inclusion, 1, 201, 301, 1001}},
		{Exclusion, Bands{Exclusion, 2, 202, 302, 1002}},
		{Eligibility, Bands{Eligibility, 3, 203, 303, 1003}},
		{Other, Bands{Other, 4, 204, 304, 1004}},
	}
	for _, tt := range tests {
		if got := Resolve(tt.kind); got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.kind, tt.want, got)
		}
	}
}

func TestBandName_RangesAreOpenEnded(t *testing.T) {
	inc := Resolve(Inclusion)
	tests := []struct {
		c    Classification
		want string
	}{
		{InclusionCriterion, "inclusion criterion"},
		{200, "inclusion criterion"},
		{InclusionSupplementary, "inclusion supplementary statement"},
		{300, "inclusion supplementary statement"},
		{InclusionGroupHeader, "inclusion group header"},
		{1000, "inclusion group header"},
		{InclusionContinuation, "inclusion continuation"},
		{5000, "inclusion continuation"},
	}
	for _, tt := range tests {
		if got := BandName(inc, tt.c); got != tt.want {
			t.Errorf("BandName(%d): expected %q, got %q", int(tt.c), tt.want, got)
		}
	}
}

func TestBandName_OtherFallsThroughToCriterion(t *testing.T) {
	other := Resolve(Other)
	for _, c := range []Classification{OtherCriterion, 0, 150} {
		if got := BandName(other, c); got != "other criterion" {
			t.Errorf("BandName(%d): expected %q, got %q", int(c), "other criterion", got)
		}
	}
}

func TestClassification_KindAndRole(t *testing.T) {
	tests := []struct {
		c    Classification
		kind SectionKind
		role Role
	}{
		{InclusionContinuation, Inclusion, RoleContinuation},
		{ExclusionGroupHeader, Exclusion, RoleGroupHeader},
		{EligibilitySupplementary, Eligibility, RoleSupplementary},
		{OtherCriterion, Other, RoleCriterion},
		{Classification(99), Other, RoleCriterion},
	}
	for _, tt := range tests {
		if got := tt.c.Kind(); got != tt.kind {
			t.Errorf("%d: expected kind %s, got %s", int(tt.c), tt.kind, got)
		}
		if got := tt.c.Role(); got != tt.role {
			t.Errorf("%d: expected role %s, got %s", int(tt.c), tt.role, got)
		}
	}
	if got := ExclusionGroupHeader.String(); got != "exclusion group header" {
		t.Errorf("expected %q, got %q", "exclusion group header", got)
	}
}
