package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jobassist/internal/api"
	"jobassist/internal/model"
)

var availabilityOptions = []string{"available", "busy", "unavailable"}

type profilesState struct {
	cursor        int
	form          *entryForm
	editID        int
	confirmDelete bool
	experience    []model.ExperienceProject
	experienceFor int
	message       string
}

type profileSavedMsg struct {
	profile model.Profile
	created bool
	err     error
}

type profileDeletedMsg struct {
	id  int
	err error
}

type experienceLoadedMsg struct {
	profileID int
	projects  []model.ExperienceProject
	err       error
}

func newProfileForm(existing *model.Profile, width int) *entryForm {
	p := model.Profile{AvailabilityStatus: availabilityOptions[0]}
	title := "New Profile"
	if existing != nil {
		p = *existing
		title = "Edit Profile: " + p.Name
	}
	return newEntryForm(title, []formField{
		{Key: "name", Label: "Name", Kind: fieldText, Required: true, Value: p.Name},
		{Key: "email", Label: "Email", Kind: fieldText, Value: p.Email},
		{Key: "hourly_rate", Label: "Hourly Rate", Help: "USD per hour", Kind: fieldFloat, Value: formatFloat(p.HourlyRate)},
		{Key: "skills", Label: "Skills", Help: "Comma-separated", Kind: fieldText, Value: strings.Join(p.Skills, ", ")},
		{Key: "experience_years", Label: "Experience (years)", Kind: fieldInt, Value: strconv.Itoa(p.ExperienceYears)},
		{Key: "bio", Label: "Bio", Kind: fieldText, Value: p.Bio},
		{Key: "portfolio_url", Label: "Portfolio URL", Kind: fieldText, Value: p.PortfolioURL},
		{Key: "availability", Label: "Availability", Kind: fieldSelect, Value: defaultIfEmpty(p.AvailabilityStatus, availabilityOptions[0]), Options: availabilityOptions},
	}, width)
}

// profileFromForm overlays the form values on base so fields the form does not
// show survive an edit.
func profileFromForm(f *entryForm, base model.Profile) (model.Profile, error) {
	vals, err := f.validate()
	if err != nil {
		return model.Profile{}, err
	}
	rate, _ := strconv.ParseFloat(defaultIfEmpty(vals["hourly_rate"], "0"), 64)
	years, _ := strconv.Atoi(defaultIfEmpty(vals["experience_years"], "0"))
	base.Name = vals["name"]
	base.Email = vals["email"]
	base.HourlyRate = rate
	base.Skills = model.ParseSkills(vals["skills"])
	base.ExperienceYears = years
	base.Bio = vals["bio"]
	base.PortfolioURL = vals["portfolio_url"]
	base.AvailabilityStatus = vals["availability"]
	return base, nil
}

func (m appModel) updateProfilesMsg(msg tea.Msg) (appModel, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case profileSavedMsg:
		if msg.err != nil {
			if m.prof.form != nil {
				m.prof.form.Error = msg.err.Error()
				m.prof.form.Saving = false
			}
			return m, nil, true
		}
		m.prof.form = nil
		if msg.created {
			m.prof.message = "profile created: " + msg.profile.Name
		} else {
			m.prof.message = "profile updated: " + msg.profile.Name
		}
		return m, loadProfilesCmd(m.client), true
	case profileDeletedMsg:
		m.prof.confirmDelete = false
		if msg.err != nil {
			m.prof.message = "error: " + msg.err.Error()
			return m, nil, true
		}
		m.prof.message = fmt.Sprintf("profile %d deleted", msg.id)
		if m.profileID == msg.id {
			m.profileID = 0
		}
		return m, loadProfilesCmd(m.client), true
	case experienceLoadedMsg:
		if msg.err != nil {
			m.prof.message = "error: " + msg.err.Error()
			return m, nil, true
		}
		m.prof.experience = msg.projects
		m.prof.experienceFor = msg.profileID
		return m, nil, true
	}
	return m, nil, false
}

func (m appModel) updateProfilesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prof.form != nil {
		if msg.String() == "esc" {
			m.prof.form = nil
			m.prof.message = "edit cancelled"
			return m, nil
		}
		submit, cmd := m.prof.form.handleKey(msg)
		if !submit {
			return m, cmd
		}
		base := model.Profile{Skills: []string{}}
		if m.prof.editID > 0 {
			if p, ok := m.profileByID(m.prof.editID); ok {
				base = p
			}
		}
		p, err := profileFromForm(m.prof.form, base)
		if err != nil {
			m.prof.form.Error = err.Error()
			return m, nil
		}
		m.prof.form.Error = ""
		m.prof.form.Saving = true
		return m, saveProfileCmd(m.client, m.prof.editID, p)
	}

	if m.prof.confirmDelete {
		switch msg.String() {
		case "y", "enter":
			if p, ok := m.selectedProfile(); ok {
				return m, deleteProfileCmd(m.client, p.ID)
			}
			m.prof.confirmDelete = false
		case "n", "esc":
			m.prof.confirmDelete = false
			m.prof.message = "delete cancelled"
		}
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.prof.cursor > 0 {
			m.prof.cursor--
		}
	case "down", "j":
		if m.prof.cursor < len(m.profiles)-1 {
			m.prof.cursor++
		}
	case "n":
		m.prof.editID = 0
		m.prof.form = newProfileForm(nil, m.width)
		m.prof.message = ""
	case "e", "enter":
		if p, ok := m.selectedProfile(); ok {
			m.prof.editID = p.ID
			m.prof.form = newProfileForm(&p, m.width)
			m.prof.message = ""
		}
	case "d":
		if _, ok := m.selectedProfile(); ok {
			m.prof.confirmDelete = true
		}
	case "s", " ":
		if p, ok := m.selectedProfile(); ok {
			m.profileID = p.ID
			m.prof.message = "active profile: " + p.Name
		}
	case "x":
		if p, ok := m.selectedProfile(); ok {
			return m, loadExperienceCmd(m.client, p.ID)
		}
	case "r":
		return m, loadProfilesCmd(m.client)
	}
	return m, nil
}

func (m appModel) selectedProfile() (model.Profile, bool) {
	if m.prof.cursor < 0 || m.prof.cursor >= len(m.profiles) {
		return model.Profile{}, false
	}
	return m.profiles[m.prof.cursor], true
}

func (m appModel) profileByID(id int) (model.Profile, bool) {
	for _, p := range m.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return model.Profile{}, false
}

func (m appModel) viewProfiles() string {
	if m.prof.form != nil {
		hints := mutedStyle.Render("tab/up/down: move | left/right: change option | enter: next/save | ctrl+s: save | esc: cancel")
		return lipgloss.JoinVertical(lipgloss.Left, hints, m.prof.form.view(m.width))
	}
	if m.prof.confirmDelete {
		p, _ := m.selectedProfile()
		text := fmt.Sprintf("Delete profile '%s'?\n\nIts experience and proposals go with it.\n\nPress y or Enter to confirm, n or Esc to cancel.", p.Name)
		return panelStyle.Width(clampInt(m.width-8, 36, 80)).Render(text)
	}

	hints := mutedStyle.Render("up/down: move | s/space: use for analysis | n: new | e: edit | d: delete | x: experience | r: refresh")
	if m.width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left, hints, m.renderProfileList(m.width), m.renderProfileDetails(m.width), m.renderProfileMessage())
	}
	leftW := clampInt(m.width/2, 34, 56)
	rightW := m.width - leftW - 1
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderProfileList(leftW), m.renderProfileDetails(rightW))
	return lipgloss.JoinVertical(lipgloss.Left, hints, body, m.renderProfileMessage())
}

func (m appModel) renderProfileList(width int) string {
	if len(m.profiles) == 0 {
		return panelStyle.Width(width).Render(mutedStyle.Render("No profiles yet.\nPress n to create one."))
	}
	maxRows := clampInt(m.height-12, 4, 18)
	start, end := listWindow(len(m.profiles), m.prof.cursor, maxRows)
	lines := make([]string, 0, maxRows+2)
	if start > 0 {
		lines = append(lines, mutedStyle.Render("..."))
	}
	for i := start; i < end; i++ {
		p := m.profiles[i]
		mark := " "
		if p.ID == m.profileID {
			mark = "*"
		}
		line := truncateRunes(fmt.Sprintf("[%s] %s  $%s/hr", mark, p.Name, formatFloat(p.HourlyRate)), maxInt(width-6, 10))
		if i == m.prof.cursor {
			line = selStyle.Width(maxInt(width-4, 6)).Render(line)
		}
		lines = append(lines, line)
	}
	if end < len(m.profiles) {
		lines = append(lines, mutedStyle.Render("..."))
	}
	return panelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m appModel) renderProfileDetails(width int) string {
	p, ok := m.selectedProfile()
	if !ok {
		return panelStyle.Width(width).Render("Profile Details\n\nSelect a profile.")
	}
	lines := []string{
		"Profile Details",
		"",
		kv("name", p.Name),
		kv("email", defaultIfEmpty(p.Email, "-")),
		kv("hourly_rate", formatFloat(p.HourlyRate)),
		kv("skills", joinOrNone(p.Skills)),
		kv("experience_years", strconv.Itoa(p.ExperienceYears)),
		kv("availability", defaultIfEmpty(p.AvailabilityStatus, "-")),
		kv("active", yesNo(p.ID == m.profileID)),
	}
	if p.Bio != "" {
		lines = append(lines, "", p.Bio)
	}
	if m.prof.experienceFor == p.ID {
		lines = append(lines, "", "Relevant Experience")
		if len(m.prof.experience) == 0 {
			lines = append(lines, mutedStyle.Render("(none)"))
		}
		for _, x := range m.prof.experience {
			lines = append(lines, "- "+x.ProjectTitle+"  "+mutedStyle.Render(joinOrNone(x.TechnologiesUsed)))
		}
	}
	for i := range lines {
		lines[i] = wrapOrTrim(lines[i], maxInt(width-6, 12))
	}
	return panelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m appModel) renderProfileMessage() string {
	msg := strings.TrimSpace(m.prof.message)
	if msg == "" {
		return ""
	}
	if strings.HasPrefix(msg, "error:") {
		return errorStyle.Render(msg)
	}
	return okStyle.Render(msg)
}

func saveProfileCmd(client api.Client, id int, p model.Profile) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if id > 0 {
			saved, err := client.UpdateProfile(ctx, id, p)
			return profileSavedMsg{profile: saved, err: err}
		}
		saved, err := client.CreateProfile(ctx, p)
		return profileSavedMsg{profile: saved, created: true, err: err}
	}
}

func deleteProfileCmd(client api.Client, id int) tea.Cmd {
	return func() tea.Msg {
		return profileDeletedMsg{id: id, err: client.DeleteProfile(context.Background(), id)}
	}
}

func loadExperienceCmd(client api.Client, profileID int) tea.Cmd {
	return func() tea.Msg {
		list, err := client.ListExperience(context.Background(), profileID)
		return experienceLoadedMsg{profileID: profileID, projects: list, err: err}
	}
}
