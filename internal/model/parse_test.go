package model

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseSkillsDropsEmptyTokens(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"React, Node.js, , ", []string{"React", "Node.js"}},
		{"", []string{}},
		{" , ,\t,", []string{}},
		{"Go,go, Go ", []string{"Go", "go", "Go"}},
		{"  Python  ", []string{"Python"}},
	}

	for _, tc := range cases {
		got := ParseSkills(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseSkills(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
		for _, s := range got {
			if strings.TrimSpace(s) == "" {
				t.Fatalf("ParseSkills(%q) returned blank element", tc.in)
			}
		}
	}
}

func TestParseKeywordsSplitsLinesAndCommas(t *testing.T) {
	got := ParseKeywords("React\n Node.js ,Python\n\n")
	want := []string{"React", "Node.js", "Python"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected keywords: got %#v want %#v", got, want)
	}
}

func TestParseRatingBounds(t *testing.T) {
	if v, err := ParseRating(""); err != nil || v != nil {
		t.Fatalf("expected nil rating for empty input, got %v err=%v", v, err)
	}
	v, err := ParseRating("4.5")
	if err != nil || v == nil || *v != 4.5 {
		t.Fatalf("expected 4.5, got %v err=%v", v, err)
	}
	if _, err := ParseRating("5.1"); err == nil {
		t.Fatal("expected error for rating above 5")
	}
	if _, err := ParseRating("great"); err == nil {
		t.Fatal("expected error for non-numeric rating")
	}
}

func TestParsePayRateRejectsNegative(t *testing.T) {
	v, err := ParsePayRate("$25.00")
	if err != nil || v == nil || *v != 25 {
		t.Fatalf("expected 25, got %v err=%v", v, err)
	}
	if _, err := ParsePayRate("-1"); err == nil {
		t.Fatal("expected error for negative pay rate")
	}
}

func TestMatchLevelActionLabel(t *testing.T) {
	cases := map[MatchLevel]string{
		MatchExcellent: "Generate Proposal",
		MatchGreat:     "Generate Proposal",
		MatchModerate:  "Generate Proposal",
		MatchLow:       "Generate Proposal Anyway",
		"":             "Generate Proposal Anyway",
		"excellent":    "Generate Proposal",
	}
	for level, want := range cases {
		if got := level.ActionLabel(); got != want {
			t.Fatalf("ActionLabel(%q) = %q, want %q", level, got, want)
		}
	}
}
