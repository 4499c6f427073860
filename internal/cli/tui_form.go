package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldInt
	fieldFloat
	fieldSelect
)

type formField struct {
	Key      string
	Label    string
	Help     string
	Kind     fieldKind
	Value    string
	Options  []string
	Required bool
}

// entryForm is a single-column field editor sharing one text input.
type entryForm struct {
	Title  string
	Fields []formField
	Index  int
	Input  textinput.Model
	Error  string
	Saving bool
}

func newEntryForm(title string, fields []formField, width int) *entryForm {
	f := &entryForm{Title: title, Fields: fields}
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 4096
	input.Width = clampInt(width-8, 20, 120)
	f.Input = input
	f.loadFieldIntoInput()
	f.Input.Focus()
	return f
}

func (f *entryForm) resize(width int) {
	if f == nil {
		return
	}
	f.Input.Width = clampInt(width-8, 20, 120)
}

func (f *entryForm) currentField() formField {
	if len(f.Fields) == 0 {
		return formField{}
	}
	if f.Index < 0 {
		f.Index = 0
	}
	if f.Index >= len(f.Fields) {
		f.Index = len(f.Fields) - 1
	}
	return f.Fields[f.Index]
}

func (f *entryForm) commitInput() {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	f.Fields[f.Index].Value = strings.TrimSpace(f.Input.Value())
}

func (f *entryForm) loadFieldIntoInput() {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	f.Input.SetValue(f.Fields[f.Index].Value)
	f.Input.CursorEnd()
}

func (f *entryForm) cycleSelect(delta int) {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	curr := f.Fields[f.Index]
	if curr.Kind != fieldSelect || len(curr.Options) == 0 {
		return
	}
	current := strings.TrimSpace(curr.Value)
	pos := 0
	for i, opt := range curr.Options {
		if strings.EqualFold(opt, current) {
			pos = i
			break
		}
	}
	n := len(curr.Options)
	pos = ((pos+delta)%n + n) % n
	curr.Value = curr.Options[pos]
	f.Fields[f.Index] = curr
	f.loadFieldIntoInput()
}

func (f *entryForm) value(key string) string {
	for _, field := range f.Fields {
		if field.Key == key {
			return strings.TrimSpace(field.Value)
		}
	}
	return ""
}

// handleKey applies one key press. submit is true when the user asked to save.
func (f *entryForm) handleKey(msg tea.KeyMsg) (submit bool, cmd tea.Cmd) {
	if f == nil || f.Saving {
		return false, nil
	}
	key := strings.ToLower(msg.String())
	kind := f.currentField().Kind
	switch key {
	case "up", "shift+tab":
		f.commitInput()
		if f.Index > 0 {
			f.Index--
		}
		f.loadFieldIntoInput()
		return false, nil
	case "down", "tab":
		f.commitInput()
		if f.Index < len(f.Fields)-1 {
			f.Index++
		}
		f.loadFieldIntoInput()
		return false, nil
	case "left", "right", " ", "space":
		if kind == fieldSelect {
			if key == "left" {
				f.cycleSelect(-1)
			} else {
				f.cycleSelect(1)
			}
			return false, nil
		}
	case "enter", "ctrl+s":
		f.commitInput()
		if f.Index < len(f.Fields)-1 && key != "ctrl+s" {
			f.Index++
			f.loadFieldIntoInput()
			return false, nil
		}
		return true, nil
	}

	if kind == fieldSelect {
		return false, nil
	}
	f.Input, cmd = f.Input.Update(msg)
	f.Fields[f.Index].Value = f.Input.Value()
	return false, cmd
}

// validate checks required and numeric fields and returns the trimmed values.
func (f *entryForm) validate() (map[string]string, error) {
	if f == nil {
		return nil, errors.New("internal form error")
	}
	vals := make(map[string]string, len(f.Fields))
	for _, field := range f.Fields {
		v := strings.TrimSpace(field.Value)
		if field.Required && v == "" {
			return nil, fmt.Errorf("%s is required", strings.ToLower(field.Label))
		}
		switch field.Kind {
		case fieldInt:
			if v == "" {
				break
			}
			if n, err := strconv.Atoi(v); err != nil || n < 0 {
				return nil, fmt.Errorf("%s must be an integer >= 0", strings.ToLower(field.Label))
			}
		case fieldFloat:
			if v == "" {
				break
			}
			if n, err := strconv.ParseFloat(v, 64); err != nil || n < 0 {
				return nil, fmt.Errorf("%s must be a number >= 0", strings.ToLower(field.Label))
			}
		case fieldSelect:
			if len(field.Options) == 0 {
				break
			}
			matched := false
			for _, opt := range field.Options {
				if strings.EqualFold(opt, v) {
					v = opt
					matched = true
					break
				}
			}
			if !matched {
				return nil, fmt.Errorf("%s has invalid value", strings.ToLower(field.Label))
			}
		}
		vals[field.Key] = v
	}
	return vals, nil
}

func (f *entryForm) view(width int) string {
	if f == nil {
		return ""
	}
	lines := make([]string, 0, len(f.Fields)+6)
	for i, field := range f.Fields {
		prefix := "  "
		if i == f.Index {
			prefix = "> "
		}
		display := strings.TrimSpace(field.Value)
		if display == "" {
			display = mutedStyle.Render("(empty)")
		}
		if field.Kind == fieldSelect {
			display = "[" + display + "]"
		}
		lines = append(lines, wrapOrTrim(fmt.Sprintf("%s%s: %s", prefix, field.Label, display), maxInt(width-6, 20)))
	}

	curr := f.currentField()
	body := strings.Join(lines, "\n") + "\n\n" + curr.Label + "\n"
	if strings.TrimSpace(curr.Help) != "" {
		body += mutedStyle.Render(curr.Help) + "\n"
	}
	body += f.Input.View()
	if f.Saving {
		body += "\n" + mutedStyle.Render("Saving...")
	}
	if strings.TrimSpace(f.Error) != "" {
		body += "\n" + errorStyle.Render(f.Error)
	}
	header := titleStyle.Render(f.Title)
	return lipgloss.JoinVertical(lipgloss.Left, header, panelStyle.Width(maxInt(width, 40)).Render(body))
}

func findFieldIndex(f *entryForm, key string) int {
	if f == nil {
		return -1
	}
	for i, field := range f.Fields {
		if field.Key == key {
			return i
		}
	}
	return -1
}
