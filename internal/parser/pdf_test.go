package parser

import "testing"

func TestJoinPages_DropsRunningLines(t *testing.T) {
	pages := []string{
		"Protocol ABC-123\nInclusion Criteria:\n1. Adults\nPage 1 of 3",
		"Protocol ABC-123\n2. Consent\n   a. written\nPage 2 of 3",
		"Protocol ABC-123\nExclusion Criteria:\n- Pregnancy\n3",
	}
	want := "Inclusion Criteria:\n1. Adults\n2. Consent\n   a. written\nExclusion Criteria:\n- Pregnancy\n"
	if got := joinPages(pages); got != want {
		t.Errorf("joinPages mismatch:\nwant:\n%q\ngot:\n%q", want, got)
	}
}

func TestJoinPages_ShortDocumentsKeepRepeats(t *testing.T) {
	pages := []string{"- Adults", "- Adults"}
	if got := joinPages(pages); got != "- Adults\n- Adults\n" {
		t.Errorf("expected repeated lines kept, got %q", got)
	}
}
