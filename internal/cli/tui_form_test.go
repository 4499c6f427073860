package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestEntryFormSelectFieldCycles(t *testing.T) {
	f := newProfileForm(nil, 80)
	f.Index = findFieldIndex(f, "availability")
	if f.Index < 0 {
		t.Fatal("availability field not found")
	}

	f.handleKey(tea.KeyMsg{Type: tea.KeyRight})
	if got := f.currentField().Value; got != "busy" {
		t.Fatalf("expected busy after right, got %q", got)
	}
	f.handleKey(tea.KeyMsg{Type: tea.KeyLeft})
	f.handleKey(tea.KeyMsg{Type: tea.KeyLeft})
	if got := f.currentField().Value; got != "unavailable" {
		t.Fatalf("expected left to wrap to unavailable, got %q", got)
	}
	f.handleKey(tea.KeyMsg{Type: tea.KeySpace})
	if got := f.currentField().Value; got != "available" {
		t.Fatalf("expected space to advance to available, got %q", got)
	}
}

func TestEntryFormEnterAdvancesThenSubmits(t *testing.T) {
	f := newStatusForm(sampleProposal(), 80)

	submit, _ := f.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if submit {
		t.Fatal("enter on first field should advance, not submit")
	}
	if f.Index != 1 {
		t.Fatalf("expected index 1, got %d", f.Index)
	}
	f.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	submit, _ = f.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if !submit {
		t.Fatal("enter on last field should submit")
	}
	if got := f.value("response"); got != "hi" {
		t.Fatalf("expected typed response, got %q", got)
	}
}

func TestEntryFormCtrlSSubmitsFromAnyField(t *testing.T) {
	f := newManualForm(80)
	submit, _ := f.handleKey(tea.KeyMsg{Type: tea.KeyCtrlS})
	if !submit {
		t.Fatal("ctrl+s should submit")
	}
}

func TestEntryFormValidateNumbers(t *testing.T) {
	f := newProfileForm(nil, 80)
	f.Fields[findFieldIndex(f, "name")].Value = "Ada"
	f.Fields[findFieldIndex(f, "hourly_rate")].Value = "abc"
	if _, err := f.validate(); err == nil {
		t.Fatal("expected hourly rate error")
	}

	f.Fields[findFieldIndex(f, "hourly_rate")].Value = "42.5"
	f.Fields[findFieldIndex(f, "experience_years")].Value = "-1"
	if _, err := f.validate(); err == nil {
		t.Fatal("expected experience error")
	}

	f.Fields[findFieldIndex(f, "experience_years")].Value = "7"
	f.Fields[findFieldIndex(f, "skills")].Value = "Go, , React"
	p, err := profileFromForm(f, sampleProfileBase())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.HourlyRate != 42.5 || p.ExperienceYears != 7 {
		t.Fatalf("unexpected numbers: %+v", p)
	}
	if len(p.Skills) != 2 {
		t.Fatalf("expected 2 skills, got %v", p.Skills)
	}
	if p.GithubURL != "https://github.com/ada" {
		t.Fatalf("expected fields outside the form to survive, got %q", p.GithubURL)
	}
}

func TestEntryFormRequiresName(t *testing.T) {
	f := newProfileForm(nil, 80)
	if _, err := f.validate(); err == nil || err.Error() != "name is required" {
		t.Fatalf("expected name is required, got %v", err)
	}
}
