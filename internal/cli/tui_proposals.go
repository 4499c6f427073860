package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jobassist/internal/api"
	"jobassist/internal/model"
)

type proposalsState struct {
	list      []model.Proposal
	profileID int
	cursor    int
	loading   bool
	viewing   bool
	form      *entryForm
	message   string
}

type proposalsLoadedMsg struct {
	profileID int
	list      []model.Proposal
	err       error
}

type proposalStatusMsg struct {
	ack model.ProposalStatusUpdate
	err error
}

func newStatusForm(p model.Proposal, width int) *entryForm {
	return newEntryForm(fmt.Sprintf("Update Proposal #%d", p.ID), []formField{
		{Key: "status", Label: "Status", Kind: fieldSelect, Value: defaultIfEmpty(p.ProposalStatus, proposalStatuses[0]), Options: proposalStatuses},
		{Key: "response", Label: "Client Response", Help: "Optional", Kind: fieldText, Value: p.ClientResponse},
	}, width)
}

func (m appModel) updateProposalsMsg(msg tea.Msg) (appModel, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case proposalsLoadedMsg:
		if msg.profileID != m.profileID {
			return m, nil, true
		}
		m.props.loading = false
		if msg.err != nil {
			m.props.message = "error: " + msg.err.Error()
			return m, nil, true
		}
		m.props.list = msg.list
		m.props.profileID = msg.profileID
		m.props.cursor = clampInt(m.props.cursor, 0, maxInt(len(msg.list)-1, 0))
		return m, nil, true
	case proposalStatusMsg:
		if msg.err != nil {
			if m.props.form != nil {
				m.props.form.Error = msg.err.Error()
				m.props.form.Saving = false
			}
			return m, nil, true
		}
		m.props.form = nil
		m.props.message = fmt.Sprintf("proposal %d: %s", msg.ack.ProposalID, msg.ack.Status)
		return m, loadProposalsCmd(m.client, m.profileID), true
	}
	return m, nil, false
}

func (m appModel) updateProposalsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.props.form != nil {
		if msg.String() == "esc" {
			m.props.form = nil
			return m, nil
		}
		submit, cmd := m.props.form.handleKey(msg)
		if !submit {
			return m, cmd
		}
		vals, err := m.props.form.validate()
		if err != nil {
			m.props.form.Error = err.Error()
			return m, nil
		}
		p, ok := m.selectedProposal()
		if !ok {
			m.props.form = nil
			return m, nil
		}
		m.props.form.Saving = true
		return m, updateProposalStatusCmd(m.client, p.ID, vals["status"], vals["response"])
	}

	switch msg.String() {
	case "up", "k":
		if m.props.cursor > 0 {
			m.props.cursor--
		}
	case "down", "j":
		if m.props.cursor < len(m.props.list)-1 {
			m.props.cursor++
		}
	case "enter", "v":
		if _, ok := m.selectedProposal(); ok {
			m.props.viewing = !m.props.viewing
		}
	case "esc", "b":
		m.props.viewing = false
	case "s":
		if p, ok := m.selectedProposal(); ok {
			m.props.form = newStatusForm(p, m.width)
			m.props.message = ""
		}
	case "c":
		if p, ok := m.selectedProposal(); ok {
			if err := copyToClipboard(p.ProposalText); err != nil {
				m.props.message = "error: copy failed: " + err.Error()
			} else {
				m.props.message = fmt.Sprintf("proposal %d copied", p.ID)
			}
		}
	case "w":
		if p, ok := m.selectedProposal(); ok {
			return m, saveDraftCmd(m.settings.DraftsDir, p, p.JobTitle)
		}
	case "p":
		m.profileID = m.nextProfileID(m.profileID)
		m.props.loading = true
		m.props.viewing = false
		return m, loadProposalsCmd(m.client, m.profileID)
	case "r":
		m.props.loading = true
		return m, loadProposalsCmd(m.client, m.profileID)
	}
	return m, nil
}

func (m appModel) selectedProposal() (model.Proposal, bool) {
	if m.props.cursor < 0 || m.props.cursor >= len(m.props.list) {
		return model.Proposal{}, false
	}
	return m.props.list[m.props.cursor], true
}

func (m appModel) viewProposals() string {
	if m.props.form != nil {
		hints := mutedStyle.Render("left/right: change status | tab: move | ctrl+s: save | esc: cancel")
		return lipgloss.JoinVertical(lipgloss.Left, hints, m.props.form.view(m.width))
	}
	hints := mutedStyle.Render("up/down: move | enter: view | s: status | c: copy | w: save draft | p: profile | r: refresh")
	header := kv("Profile", m.profileName(m.profileID))
	if m.profileID == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, hints, header, mutedStyle.Render("Select a profile on the Profiles page (2)."))
	}

	width := maxInt(m.width, 40)
	var body string
	switch {
	case m.props.loading:
		body = m.spinner.View() + " Loading proposals..."
	case len(m.props.list) == 0:
		body = mutedStyle.Render("No proposals yet. Generate one from Job Analysis (3).")
	case m.props.viewing:
		p, _ := m.selectedProposal()
		lines := []string{titleStyle.Render(defaultIfEmpty(p.JobTitle, "Proposal")), kv("Status", defaultIfEmpty(p.ProposalStatus, "-")), ""}
		lines = append(lines, wrapText(p.ProposalText, width-6)...)
		body = strings.Join(lines, "\n")
	default:
		maxRows := clampInt(m.height-10, 4, 24)
		start, end := listWindow(len(m.props.list), m.props.cursor, maxRows)
		lines := make([]string, 0, maxRows)
		for i := start; i < end; i++ {
			p := m.props.list[i]
			line := truncateRunes(fmt.Sprintf("#%d  %-12s %s", p.ID, defaultIfEmpty(p.ProposalStatus, "-"), p.JobTitle), width-6)
			if i == m.props.cursor {
				line = selStyle.Width(width - 4).Render(line)
			}
			lines = append(lines, line)
		}
		body = strings.Join(lines, "\n")
	}
	parts := []string{hints, header, panelStyle.Width(width).Render(body)}
	if msg := strings.TrimSpace(m.props.message); msg != "" {
		style := okStyle
		if strings.HasPrefix(msg, "error:") {
			style = errorStyle
		}
		parts = append(parts, style.Render(msg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func loadProposalsCmd(client api.Client, profileID int) tea.Cmd {
	if profileID <= 0 {
		return nil
	}
	return func() tea.Msg {
		list, err := client.ListProposals(context.Background(), profileID)
		return proposalsLoadedMsg{profileID: profileID, list: list, err: err}
	}
}

func updateProposalStatusCmd(client api.Client, id int, status, response string) tea.Cmd {
	return func() tea.Msg {
		ack, err := client.UpdateProposalStatus(context.Background(), id, status, response)
		return proposalStatusMsg{ack: ack, err: err}
	}
}
