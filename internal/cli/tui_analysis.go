package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jobassist/internal/api"
	"jobassist/internal/model"
	"jobassist/internal/store"
	"jobassist/internal/workflow"
)

// copyToClipboard is swapped out in tests; headless CI has no clipboard.
var copyToClipboard = clipboard.WriteAll

type analysisState struct {
	form      *entryForm
	search    *entryForm
	searching bool
	cursor    int
	editor    textarea.Model
	notice    string
}

type analyzeDoneMsg struct {
	ticket workflow.Ticket
	resp   model.AnalysisResponse
	err    error
}

type generateDoneMsg struct {
	ticket   workflow.Ticket
	proposal model.Proposal
	err      error
}

type scrapeDoneMsg struct {
	ticket workflow.Ticket
	res    model.ScrapeResult
	err    error
}

type draftSavedMsg struct {
	draft store.Draft
	err   error
}

type clipboardMsg struct {
	err error
}

func newManualForm(width int) *entryForm {
	return newEntryForm("Enter Job Details", []formField{
		{Key: "title", Label: "Job Title", Kind: fieldText, Required: true},
		{Key: "description", Label: "Job Description", Kind: fieldText, Required: true},
		{Key: "skills", Label: "Required Skills", Help: "Comma-separated, e.g. React, Node.js", Kind: fieldText, Required: true},
		{Key: "client_rating", Label: "Client Rating", Help: "Optional, 0-5", Kind: fieldText},
		{Key: "avg_pay_rate", Label: "Average Pay Rate", Help: "Optional, USD/hr", Kind: fieldText},
		{Key: "url", Label: "Job URL", Help: "Optional", Kind: fieldText},
	}, width)
}

func newSearchForm(width int) *entryForm {
	return newEntryForm("Scrape Jobs", []formField{
		{Key: "keywords", Label: "Keywords", Help: "Comma-separated search keywords", Kind: fieldText, Required: true},
		{Key: "max_jobs", Label: "Jobs per Keyword", Help: "1-5", Kind: fieldInt, Value: strconv.Itoa(workflow.DefaultAnalysisMaxJobs)},
	}, width)
}

func (m appModel) updateAnalysisMsg(msg tea.Msg) (appModel, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case analyzeDoneMsg:
		var resp *model.AnalysisResponse
		if msg.err == nil {
			resp = &msg.resp
		}
		if !m.wf.CompleteAnalyze(msg.ticket, resp, msg.err) {
			m.logger.Debug("stale analysis dropped", "slot", msg.ticket.Slot.String(), "gen", msg.ticket.Gen)
		}
		return m, nil, true
	case generateDoneMsg:
		var p *model.Proposal
		if msg.err == nil {
			p = &msg.proposal
		}
		if m.wf.CompleteGenerate(msg.ticket, p, msg.err) && msg.err == nil {
			m.ana.notice = ""
		}
		return m, nil, true
	case scrapeDoneMsg:
		var res *model.ScrapeResult
		if msg.err == nil {
			res = &msg.res
		}
		if m.wf.CompleteScrape(msg.ticket, res, msg.err) {
			m.ana.cursor = 0
		}
		return m, nil, true
	case draftSavedMsg:
		if msg.err != nil {
			m.ana.notice = "error: " + msg.err.Error()
		} else {
			m.ana.notice = "Saved to " + msg.draft.Path
		}
		return m, nil, true
	case clipboardMsg:
		if msg.err != nil {
			m.ana.notice = "error: copy failed: " + msg.err.Error()
		} else {
			m.ana.notice = "Copied to clipboard"
		}
		return m, nil, true
	}
	return m, nil, false
}

func (m appModel) updateAnalysisKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.wf.Nav.ActiveView() {
	case workflow.ViewManualProposalEdit, workflow.ViewScrapeProposalEdit:
		return m.updateEditorKey(msg)
	case workflow.ViewManualProposal, workflow.ViewScrapeProposal:
		return m.updateOverlayKey(msg)
	case workflow.ViewManualForm:
		return m.updateManualKey(msg)
	case workflow.ViewScrapeGrid:
		return m.updateScrapeKey(msg)
	default:
		return m.updateLandingKey(msg)
	}
}

func (m appModel) updateLandingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "m":
		m.wf.Nav.NavigateTo(workflow.ScreenManual)
		if m.ana.form == nil {
			m.ana.form = newManualForm(m.width)
		}
	case "s":
		m.wf.Nav.NavigateTo(workflow.ScreenScrape)
		if m.ana.search == nil {
			m.ana.search = newSearchForm(m.width)
		}
		m.ana.searching = len(m.wf.Scrape.Jobs) == 0 && !m.wf.Scrape.Loading
	case "p":
		m.profileID = m.nextProfileID(m.profileID)
	}
	return m, nil
}

func (m appModel) updateManualKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.wf.ResetToLanding()
		m.ana.form = nil
		m.ana.notice = ""
		return m, nil
	case "ctrl+g":
		return m.startGenerate(workflow.ManualSlot)
	case "ctrl+v":
		m.wf.ViewProposal(workflow.ManualSlot)
		m.ana.notice = ""
		return m, nil
	case "ctrl+p":
		m.profileID = m.nextProfileID(m.profileID)
		return m, nil
	}
	if m.ana.form == nil {
		m.ana.form = newManualForm(m.width)
	}
	submit, cmd := m.ana.form.handleKey(msg)
	if !submit {
		return m, cmd
	}
	form := workflow.ManualForm{
		Title:        m.ana.form.value("title"),
		Description:  m.ana.form.value("description"),
		Skills:       m.ana.form.value("skills"),
		ClientRating: m.ana.form.value("client_rating"),
		AvgPayRate:   m.ana.form.value("avg_pay_rate"),
		URL:          m.ana.form.value("url"),
	}
	t, req, err := m.wf.SubmitManual(form, m.profileID)
	if err != nil {
		m.ana.form.Error = m.wf.Manual.FormErr
		return m, nil
	}
	m.ana.form.Error = ""
	return m, analyzeCmd(m.client, t, req)
}

func (m appModel) updateScrapeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ana.searching {
		if msg.String() == "esc" {
			m.ana.searching = false
			return m, nil
		}
		if m.ana.search == nil {
			m.ana.search = newSearchForm(m.width)
		}
		submit, cmd := m.ana.search.handleKey(msg)
		if !submit {
			return m, cmd
		}
		return m.startScrape()
	}

	slots := m.wf.ScrapedSlots()
	switch msg.String() {
	case "esc", "b":
		// Leaving the grid keeps the manual job and its form intact.
		m.wf.Nav.NavigateTo(workflow.ScreenLanding)
		m.ana.searching = false
		return m, nil
	case "/":
		m.ana.searching = true
		return m, nil
	case "up", "k":
		if m.ana.cursor > 0 {
			m.ana.cursor--
		}
		return m, nil
	case "down", "j":
		if m.ana.cursor < len(slots)-1 {
			m.ana.cursor++
		}
		return m, nil
	}
	if len(slots) == 0 {
		return m, nil
	}
	slot := slots[clampInt(m.ana.cursor, 0, len(slots)-1)]
	switch msg.String() {
	case "p":
		current := slot.ProfileID
		if current == 0 {
			current = m.profileID
		}
		_ = m.wf.SetSlotProfile(slot.ID, m.nextProfileID(current))
	case "a", "enter":
		pid := slot.ProfileID
		if pid == 0 {
			pid = m.profileID
		}
		t, req, err := m.wf.BeginAnalyze(slot.ID, pid)
		if err != nil {
			return m, nil
		}
		return m, analyzeCmd(m.client, t, req)
	case "g":
		return m.startGenerate(slot.ID)
	case "v":
		m.wf.ViewProposal(slot.ID)
		m.ana.notice = ""
	}
	return m, nil
}

func (m appModel) startScrape() (tea.Model, tea.Cmd) {
	keywords := model.ParseKeywords(m.ana.search.value("keywords"))
	if len(keywords) == 0 {
		m.ana.search.Error = "Enter at least one keyword."
		return m, nil
	}
	maxJobs, _ := strconv.Atoi(m.ana.search.value("max_jobs"))
	t, req, err := m.wf.BeginScrape(keywords, maxJobs)
	if err != nil {
		m.ana.search.Error = err.Error()
		return m, nil
	}
	m.ana.search.Error = ""
	m.ana.searching = false
	m.ana.cursor = 0
	return m, scrapeCmd(m.client, t, req)
}

func (m appModel) startGenerate(id workflow.SlotID) (tea.Model, tea.Cmd) {
	t, req, ok := m.wf.BeginGenerate(id)
	if !ok {
		return m, nil
	}
	m.logger.Info("generate proposal", "slot", id.String(), "profile_id", req.FreelancerID)
	return m, generateCmd(m.client, t, req)
}

func (m appModel) updateOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind, _ := m.wf.Nav.ActiveOverlay()
	p := m.wf.Nav.ActiveProposal()
	switch msg.String() {
	case "esc", "b":
		m.wf.Nav.CloseProposal(kind)
		m.ana.notice = ""
	case "e":
		if p != nil && m.wf.Nav.BeginEdit(p.ProposalText) {
			m.ana.editor.SetValue(p.ProposalText)
			m.ana.notice = ""
			cmd := m.ana.editor.Focus()
			return m, cmd
		}
	case "c":
		if p != nil {
			return m, copyProposalCmd(p.ProposalText)
		}
	case "w":
		if p != nil {
			return m, saveDraftCmd(m.settings.DraftsDir, *p, m.overlayJobTitle())
		}
	}
	return m, nil
}

func (m appModel) updateEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.wf.Nav.CancelEdit()
		m.ana.editor.Blur()
		m.ana.notice = "Edit discarded"
		return m, nil
	case "ctrl+s":
		if m.wf.Nav.CommitEdit(m.ana.editor.Value()) {
			m.ana.notice = "Proposal updated"
		}
		m.ana.editor.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.ana.editor, cmd = m.ana.editor.Update(msg)
	m.wf.Nav.SetEditBuffer(m.ana.editor.Value())
	return m, cmd
}

func (m appModel) overlayJobTitle() string {
	kind, ok := m.wf.Nav.ActiveOverlay()
	if !ok {
		return ""
	}
	if kind == workflow.OverlayScrape && m.wf.Nav.Scrape.Job != nil {
		return m.wf.Nav.Scrape.Job.Title
	}
	if kind == workflow.OverlayManual {
		return m.wf.Manual.Job.Title
	}
	if p := m.wf.Nav.ActiveProposal(); p != nil {
		return p.JobTitle
	}
	return ""
}

func (m appModel) viewAnalysis() string {
	switch m.wf.Nav.ActiveView() {
	case workflow.ViewManualProposal, workflow.ViewScrapeProposal:
		return m.viewOverlay(false)
	case workflow.ViewManualProposalEdit, workflow.ViewScrapeProposalEdit:
		return m.viewOverlay(true)
	case workflow.ViewManualForm:
		return m.viewManual()
	case workflow.ViewScrapeGrid:
		return m.viewScrapeGrid()
	default:
		return m.viewLanding()
	}
}

func (m appModel) viewLanding() string {
	lines := []string{
		titleStyle.Render("Job Analysis"),
		"",
		"How would you like to find a job to analyze?",
		"",
		"  m  Enter job details manually",
		"  s  Scrape jobs by keyword",
		"",
		kv("Profile", m.profileName(m.profileID)) + mutedStyle.Render("  (p to change)"),
	}
	if len(m.profiles) == 0 {
		lines = append(lines, errorStyle.Render("No profiles yet. Create one on the Profiles page (2)."))
	}
	return panelStyle.Width(maxInt(m.width, 40)).Render(strings.Join(lines, "\n"))
}

func (m appModel) viewManual() string {
	hints := mutedStyle.Render("tab/up/down: move | enter: next/analyze | ctrl+s: analyze | ctrl+g: generate | ctrl+v: view proposal | ctrl+p: profile | esc: back")
	profile := kv("Profile", m.profileName(m.profileID))
	parts := []string{hints, profile}
	if m.ana.form != nil {
		parts = append(parts, m.ana.form.view(m.width))
	}
	parts = append(parts, m.renderSlotResult(m.wf.ManualSlot(), "ctrl+g", "ctrl+v", m.width))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderSlotResult draws the analysis outcome and proposal actions for one slot.
func (m appModel) renderSlotResult(slot workflow.Slot, genKey, viewKey string, width int) string {
	lines := []string{}
	if slot.Loading() {
		lines = append(lines, m.spinner.View()+" Analyzing job...")
		return panelStyle.Width(maxInt(width, 40)).Render(strings.Join(lines, "\n"))
	}
	if slot.Err != "" {
		lines = append(lines, errorStyle.Render(slot.Err))
	}
	// A rejected re-analysis keeps the previous result, so it is still shown and usable.
	if slot.Analysis != nil {
		a := slot.Analysis.Analysis
		style := okStyle
		if !a.MatchLevel.Strong() {
			style = titleStyle
		}
		lines = append(lines, style.Render(a.MatchLevel.Title()))
		lines = append(lines, wrapText(a.MatchLevel.Subtitle(), maxInt(width-6, 20))...)
		lines = append(lines, kv("Overall", formatPercent(a.OverallMatchScore))+"  "+kv("Skills", formatPercent(a.SkillMatchScore)))
		lines = append(lines, kv("Matched", joinOrNone(a.MatchedSkills)))
		for _, r := range a.Reasons {
			lines = append(lines, "  - "+r)
		}
		if a.Recommendation != "" {
			lines = append(lines, wrapText(a.Recommendation, maxInt(width-6, 20))...)
		}
		lines = append(lines, "")
		switch {
		case slot.ProposalLoading():
			lines = append(lines, m.spinner.View()+" Generating proposal...")
		default:
			lines = append(lines, fmt.Sprintf("[%s] %s", genKey, slot.MatchLevel().ActionLabel()))
		}
		if slot.ProposalErr != "" {
			lines = append(lines, errorStyle.Render(slot.ProposalErr))
		}
		if slot.Proposal != nil {
			lines = append(lines, fmt.Sprintf("[%s] View Proposal", viewKey))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return panelStyle.Width(maxInt(width, 40)).Render(strings.Join(lines, "\n"))
}

func (m appModel) viewScrapeGrid() string {
	parts := []string{}
	if m.ana.searching && m.ana.search != nil {
		parts = append(parts, mutedStyle.Render("enter: next/scrape | ctrl+s: scrape | esc: close search"))
		parts = append(parts, m.ana.search.view(m.width))
	} else {
		parts = append(parts, mutedStyle.Render("up/down: select | a: analyze | g: generate | v: view proposal | p: card profile | /: new search | esc: back"))
		summary := kv("Keywords", joinOrNone(m.wf.Scrape.Keywords)) + "  " + kv("Jobs per keyword", strconv.Itoa(m.wf.Scrape.MaxJobs))
		parts = append(parts, summary)
	}
	if m.wf.Scrape.Loading {
		parts = append(parts, m.spinner.View()+" Scraping jobs...")
	}
	if m.wf.Scrape.Err != "" {
		parts = append(parts, errorStyle.Render(m.wf.Scrape.Err))
	}
	if m.wf.Scrape.Message != "" {
		parts = append(parts, mutedStyle.Render(m.wf.Scrape.Message))
	}

	slots := m.wf.ScrapedSlots()
	if len(slots) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
	maxCards := clampInt((m.height-12)/8, 1, 10)
	cursor := clampInt(m.ana.cursor, 0, len(slots)-1)
	start, end := listWindow(len(slots), cursor, maxCards)
	if start > 0 {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("... %d more above", start)))
	}
	for i := start; i < end; i++ {
		parts = append(parts, m.renderJobCard(i, slots[i], i == cursor))
	}
	if end < len(slots) {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("... %d more below", len(slots)-end)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m appModel) renderJobCard(i int, slot workflow.Slot, selected bool) string {
	job := m.wf.Scrape.Jobs[i]
	width := maxInt(m.width, 40)
	title := fmt.Sprintf("%d. %s", i+1, job.Title)
	if selected {
		title = selStyle.Render(truncateRunes(title, width-6))
	} else {
		title = titleStyle.Render(truncateRunes(title, width-6))
	}
	pid := slot.ProfileID
	if pid == 0 {
		pid = m.profileID
	}
	lines := []string{
		title,
		kv("Rating", formatOptionalFloat(job.ClientRating)) + "  " + kv("Pay", formatOptionalFloat(job.AvgPayRate)) + "  " + kv("Profile", m.profileName(pid)),
		wrapOrTrim(kv("Skills", joinOrNone(job.Skills)), width-6),
	}
	if selected {
		lines = append(lines, wrapText(truncateRunes(job.Description, 240), width-6)...)
	}
	if result := m.renderSlotResult(slot, "g", "v", width-4); result != "" {
		lines = append(lines, result)
	} else {
		lines = append(lines, mutedStyle.Render("[a] Analyze Match"))
	}
	return panelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m appModel) viewOverlay(editing bool) string {
	p := m.wf.Nav.ActiveProposal()
	if p == nil {
		return ""
	}
	width := maxInt(m.width, 40)
	header := titleStyle.Render("Generated Proposal")
	if title := m.overlayJobTitle(); title != "" {
		header += "  " + mutedStyle.Render(truncateRunes(title, width-24))
	}
	meta := kv("Proposal", "#"+strconv.Itoa(p.ID)) + "  " + kv("Status", defaultIfEmpty(p.ProposalStatus, "Generated"))

	var body, hints string
	if editing {
		body = m.ana.editor.View()
		hints = "ctrl+s: save edit | esc: discard"
	} else {
		lines := wrapText(p.ProposalText, width-6)
		maxLines := clampInt(m.height-10, 5, 200)
		if len(lines) > maxLines {
			lines = append(lines[:maxLines], mutedStyle.Render("..."))
		}
		body = strings.Join(lines, "\n")
		hints = "e: edit | c: copy | w: save draft | esc/b: back"
	}
	parts := []string{header, meta, panelStyle.Width(width).Render(body), mutedStyle.Render(hints)}
	if n := strings.TrimSpace(m.ana.notice); n != "" {
		style := okStyle
		if strings.HasPrefix(n, "error:") {
			style = errorStyle
		}
		parts = append(parts, style.Render(n))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func analyzeCmd(client api.Client, t workflow.Ticket, req model.AnalysisRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.AnalyzeJob(context.Background(), req)
		return analyzeDoneMsg{ticket: t, resp: resp, err: err}
	}
}

func generateCmd(client api.Client, t workflow.Ticket, req model.ProposalRequest) tea.Cmd {
	return func() tea.Msg {
		p, err := client.GenerateProposal(context.Background(), req)
		return generateDoneMsg{ticket: t, proposal: p, err: err}
	}
}

func scrapeCmd(client api.Client, t workflow.Ticket, req model.ScrapeRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := client.ScrapeJobs(context.Background(), req)
		return scrapeDoneMsg{ticket: t, res: res, err: err}
	}
}

func saveDraftCmd(dir string, p model.Proposal, jobTitle string) tea.Cmd {
	return func() tea.Msg {
		d, err := store.SaveDraft(dir, p, jobTitle, time.Now())
		return draftSavedMsg{draft: d, err: err}
	}
}

func copyProposalCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{err: copyToClipboard(text)}
	}
}
