package cli

import (
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"jobassist/internal/api"
	"jobassist/internal/health"
	"jobassist/internal/mockapi"
	"jobassist/internal/model"
	"jobassist/internal/settings"
	"jobassist/internal/workflow"
)

func sampleProposal() model.Proposal {
	return model.Proposal{ID: 7, JobTitle: "React Developer", ProposalText: "Hello", ProposalStatus: "Generated"}
}

func sampleProfileBase() model.Profile {
	return model.Profile{ID: 3, Name: "Ada", GithubURL: "https://github.com/ada"}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApp wires the TUI model to an in-memory backend holding one React/Node profile.
func newTestApp(t *testing.T) (appModel, *mockapi.Server) {
	t.Helper()
	mock := mockapi.New()
	srv := httptest.NewServer(mock)
	t.Cleanup(srv.Close)

	p := mock.SeedProfile(model.Profile{Name: "Ada", Skills: []string{"React", "Node.js"}, HourlyRate: 30, ExperienceYears: 5})
	s := settings.Defaults()
	s.APIURL = srv.URL
	s.DefaultProfileID = p.ID
	s.DraftsDir = t.TempDir()

	m := newAppModel(api.NewHTTPClient(srv.URL), s, discardLogger())
	m.page = pageAnalysis
	m.width = 120
	m.height = 40
	m.profiles = []model.Profile{p}
	return m, mock
}

func press(t *testing.T, m appModel, msg tea.KeyMsg) (appModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(appModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return am, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// deliver runs cmd synchronously and feeds its message back into the model.
func deliver(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next, _ := m.Update(cmd())
	return next.(appModel)
}

func fillManualForm(m *appModel, title, desc, skills string) {
	f := m.ana.form
	f.Fields[findFieldIndex(f, "title")].Value = title
	f.Fields[findFieldIndex(f, "description")].Value = desc
	f.Fields[findFieldIndex(f, "skills")].Value = skills
	f.Index = 0
	f.loadFieldIntoInput()
}

func TestResolveRoute(t *testing.T) {
	cases := []struct {
		path string
		want page
		ok   bool
	}{
		{"/", pageDashboard, true},
		{"", pageDashboard, true},
		{"/profiles", pageProfiles, true},
		{"/profiles/", pageProfiles, true},
		{"/job-scraping", pageAnalysis, true},
		{"/job-analysis", pageAnalysis, true},
		{"proposals", pageProposals, true},
		{"/analytics", pageAnalytics, true},
		{"/nope", pageDashboard, false},
	}
	for _, tc := range cases {
		got, ok := resolveRoute(tc.path)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("resolveRoute(%q) = %v,%v want %v,%v", tc.path, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNumberKeysSwitchPages(t *testing.T) {
	m, _ := newTestApp(t)
	m.page = pageDashboard

	m, _ = press(t, m, runes("2"))
	if m.page != pageProfiles {
		t.Fatalf("expected profiles page, got %v", m.page)
	}
	m, _ = press(t, m, runes("3"))
	if m.page != pageAnalysis {
		t.Fatalf("expected analysis page, got %v", m.page)
	}

	// Digits typed into the manual form stay in the form.
	m, _ = press(t, m, runes("m"))
	m, _ = press(t, m, runes("5"))
	if m.page != pageAnalysis {
		t.Fatalf("digit in form should not navigate, got page %v", m.page)
	}
	if got := m.ana.form.Input.Value(); got != "5" {
		t.Fatalf("expected digit in input, got %q", got)
	}
}

func TestHealthBannerClearsAfterManualRetry(t *testing.T) {
	s := settings.Defaults()
	s.HealthRetries = 3
	m := newAppModel(api.NewHTTPClient("http://127.0.0.1:1"), s, discardLogger())
	m.tracker.Begin()

	down := errors.New("connection refused")
	for i := 0; i < 3; i++ {
		next, cmd := m.Update(healthMsg{gen: m.healthGen, err: down})
		m = next.(appModel)
		if cmd == nil {
			t.Fatalf("attempt %d: expected a scheduled retry", i+1)
		}
		if m.wf.Connection != health.StatusChecking {
			t.Fatalf("attempt %d: expected checking, got %s", i+1, m.wf.Connection)
		}
	}
	next, _ := m.Update(healthMsg{gen: m.healthGen, err: down})
	m = next.(appModel)
	if m.wf.Connection != health.StatusDisconnected {
		t.Fatalf("expected disconnected after 4 failures, got %s", m.wf.Connection)
	}
	if !strings.Contains(m.View(), "Press ctrl+r to retry") {
		t.Fatal("expected disconnected banner")
	}

	staleGen := m.healthGen
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd == nil {
		t.Fatal("expected retry probe command")
	}
	if m.wf.Connection != health.StatusChecking {
		t.Fatalf("expected checking during retry, got %s", m.wf.Connection)
	}

	next, _ = m.Update(healthMsg{gen: staleGen, err: down})
	m = next.(appModel)
	if m.wf.Connection != health.StatusChecking {
		t.Fatal("stale probe result should be ignored")
	}

	next, _ = m.Update(healthMsg{gen: m.healthGen, err: nil})
	m = next.(appModel)
	if m.wf.Connection != health.StatusConnected {
		t.Fatalf("expected connected, got %s", m.wf.Connection)
	}
	if strings.Contains(m.View(), "Backend not reachable") {
		t.Fatal("banner should disappear after a successful retry")
	}
}

func TestManualRetryFailureIsSingleProbe(t *testing.T) {
	s := settings.Defaults()
	m := newAppModel(api.NewHTTPClient("http://127.0.0.1:1"), s, discardLogger())
	m.wf.Connection = health.StatusDisconnected
	m.tracker.Status = health.StatusDisconnected

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	next, cmd := m.Update(healthMsg{gen: m.healthGen, err: errors.New("still down")})
	m = next.(appModel)
	if cmd != nil {
		t.Fatal("manual retry should not schedule automatic retries")
	}
	if m.wf.Connection != health.StatusDisconnected {
		t.Fatalf("expected disconnected, got %s", m.wf.Connection)
	}
}

func TestManualAnalysisOffersGenerateAndOpensOverlay(t *testing.T) {
	m, _ := newTestApp(t)

	m, _ = press(t, m, runes("m"))
	if m.wf.Nav.ActiveView() != workflow.ViewManualForm {
		t.Fatalf("expected manual form, got %s", m.wf.Nav.ActiveView())
	}
	fillManualForm(&m, "React Developer", "Build an SPA", "React, Node.js")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.wf.ManualSlot().Loading() {
		t.Fatal("expected manual slot to be analyzing")
	}
	m = deliver(t, m, cmd)

	slot := m.wf.ManualSlot()
	if slot.Analysis == nil {
		t.Fatalf("expected analysis, slot err %q", slot.Err)
	}
	view := m.View()
	if !strings.Contains(view, "[ctrl+g] Generate Proposal") || strings.Contains(view, "Generate Proposal Anyway") {
		t.Fatalf("expected plain generate label, view:\n%s", view)
	}

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	if !m.wf.ManualSlot().ProposalLoading() {
		t.Fatal("expected generating")
	}
	m = deliver(t, m, cmd)
	if m.wf.Nav.ActiveView() != workflow.ViewManualProposal {
		t.Fatalf("expected proposal overlay, got %s", m.wf.Nav.ActiveView())
	}
	if !strings.Contains(m.View(), "Generated Proposal") {
		t.Fatal("expected overlay in view")
	}
}

func TestManualAnalysisLowMatchOffersGenerateAnyway(t *testing.T) {
	m, _ := newTestApp(t)
	m, _ = press(t, m, runes("m"))
	fillManualForm(&m, "WordPress Fixes", "Patch plugins", "PHP, WordPress")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = deliver(t, m, cmd)
	if !strings.Contains(m.View(), "[ctrl+g] Generate Proposal Anyway") {
		t.Fatal("expected generate anyway label for a low match")
	}
}

func TestManualValidationErrorStaysInline(t *testing.T) {
	m, mock := newTestApp(t)
	m, _ = press(t, m, runes("m"))
	fillManualForm(&m, "Title only", "", "")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatal("invalid form must not send a request")
	}
	if m.ana.form.Error != model.ErrMissingDescription.Error() {
		t.Fatalf("unexpected form error %q", m.ana.form.Error)
	}
	if n := mock.CallCount("POST", "/api/v1/jobs/analyze"); n != 0 {
		t.Fatalf("expected no analyze calls, got %d", n)
	}
}

func TestBackendDetailShownOnManualFailure(t *testing.T) {
	m, mock := newTestApp(t)
	mock.Fail("/api/v1/jobs/analyze", 500, "model offline")
	m, _ = press(t, m, runes("m"))
	fillManualForm(&m, "React Developer", "Build an SPA", "React")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = deliver(t, m, cmd)
	if got := m.wf.ManualSlot().Err; got != "model offline" {
		t.Fatalf("expected backend detail, got %q", got)
	}
	if !strings.Contains(m.View(), "model offline") {
		t.Fatal("expected error inline in view")
	}
}

func TestEscFromManualDropsLateResponse(t *testing.T) {
	m, _ := newTestApp(t)
	m, _ = press(t, m, runes("m"))
	fillManualForm(&m, "React Developer", "Build an SPA", "React")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.wf.Nav.ActiveView() != workflow.ViewLanding {
		t.Fatalf("expected landing, got %s", m.wf.Nav.ActiveView())
	}
	m = deliver(t, m, cmd)
	if m.wf.ManualSlot().Analysis != nil {
		t.Fatal("late analysis must not land after reset")
	}
}

func TestProposalOverlayEditCopyAndSave(t *testing.T) {
	m, _ := newTestApp(t)
	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyToClipboard = orig })

	m, _ = press(t, m, runes("m"))
	fillManualForm(&m, "React Developer", "Build an SPA", "React, Node.js")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = deliver(t, m, cmd)
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	m = deliver(t, m, cmd)
	original := m.wf.Nav.ActiveProposal().ProposalText

	m, _ = press(t, m, runes("e"))
	if m.wf.Nav.ActiveView() != workflow.ViewManualProposalEdit {
		t.Fatalf("expected edit view, got %s", m.wf.Nav.ActiveView())
	}
	m, _ = press(t, m, runes("!"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.wf.Nav.ActiveProposal().ProposalText; got != original {
		t.Fatal("cancel must keep the original text")
	}

	m, _ = press(t, m, runes("e"))
	m, _ = press(t, m, runes("!"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if got := m.wf.Nav.ActiveProposal().ProposalText; got != original+"!" {
		t.Fatalf("expected committed edit, got %q", got)
	}

	m, cmd = press(t, m, runes("c"))
	m = deliver(t, m, cmd)
	if copied != original+"!" {
		t.Fatalf("expected edited text on clipboard, got %q", copied)
	}
	if !strings.Contains(m.View(), "Copied to clipboard") {
		t.Fatal("expected copy notice in overlay")
	}

	m, cmd = press(t, m, runes("w"))
	m = deliver(t, m, cmd)
	if !strings.HasPrefix(m.ana.notice, "Saved to ") {
		t.Fatalf("expected saved notice, got %q", m.ana.notice)
	}
	data, err := os.ReadFile(strings.TrimPrefix(m.ana.notice, "Saved to "))
	if err != nil {
		t.Fatalf("read draft: %v", err)
	}
	if !strings.Contains(string(data), original+"!") {
		t.Fatal("draft should hold the edited text")
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.wf.Nav.ActiveView() != workflow.ViewManualForm {
		t.Fatalf("expected back on the form, got %s", m.wf.Nav.ActiveView())
	}
}

func TestScrapeGridAnalyzesPerCard(t *testing.T) {
	m, _ := newTestApp(t)

	m, _ = press(t, m, runes("s"))
	if !m.ana.searching {
		t.Fatal("expected search to open on an empty grid")
	}
	f := m.ana.search
	f.Fields[findFieldIndex(f, "keywords")].Value = "react"
	f.loadFieldIntoInput()
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.wf.Scrape.Loading {
		t.Fatal("expected scrape loading")
	}
	m = deliver(t, m, cmd)

	slots := m.wf.ScrapedSlots()
	if len(slots) == 0 {
		t.Fatalf("expected scraped jobs, err %q", m.wf.Scrape.Err)
	}
	if len(slots) > workflow.MaxAnalysisMaxJobs {
		t.Fatalf("expected at most %d jobs, got %d", workflow.MaxAnalysisMaxJobs, len(slots))
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd = press(t, m, runes("a"))
	m = deliver(t, m, cmd)
	slot, _ := m.wf.Slot(workflow.SlotID(1))
	if slot.Analysis == nil {
		t.Fatalf("expected analysis on card 2, err %q", slot.Err)
	}
	if first, _ := m.wf.Slot(workflow.SlotID(0)); first.Analysis != nil {
		t.Fatal("card 1 should be untouched")
	}

	m, cmd = press(t, m, runes("g"))
	m = deliver(t, m, cmd)
	if m.wf.Nav.ActiveView() != workflow.ViewScrapeProposal {
		t.Fatalf("expected scrape overlay, got %s", m.wf.Nav.ActiveView())
	}
	m, _ = press(t, m, runes("b"))
	if m.wf.Nav.ActiveView() != workflow.ViewScrapeGrid {
		t.Fatalf("expected grid after closing overlay, got %s", m.wf.Nav.ActiveView())
	}
	if !strings.Contains(m.View(), "[v] View Proposal") {
		t.Fatal("expected view proposal action on the card")
	}
}

func TestScrapeNoResultsMessage(t *testing.T) {
	m, _ := newTestApp(t)
	m, _ = press(t, m, runes("s"))
	f := m.ana.search
	f.Fields[findFieldIndex(f, "keywords")].Value = "cobol"
	f.loadFieldIntoInput()
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = deliver(t, m, cmd)
	if m.wf.Scrape.Err != "No jobs found. Try different keywords." {
		t.Fatalf("unexpected scrape error %q", m.wf.Scrape.Err)
	}
}

func TestProfilesPageCreatesProfile(t *testing.T) {
	m, mock := newTestApp(t)
	m.page = pageProfiles

	m, _ = press(t, m, runes("n"))
	if m.prof.form == nil {
		t.Fatal("expected profile form")
	}
	f := m.prof.form
	f.Fields[findFieldIndex(f, "name")].Value = "Grace"
	f.Fields[findFieldIndex(f, "skills")].Value = "COBOL, Go"
	f.loadFieldIntoInput()

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.prof.form.Saving {
		t.Fatal("expected saving state")
	}
	m = deliver(t, m, cmd)
	if m.prof.form != nil {
		t.Fatalf("expected form closed, message %q", m.prof.message)
	}
	if n := mock.CallCount("POST", "/api/v1/profiles/"); n != 1 {
		t.Fatalf("expected one create call, got %d", n)
	}
}

func TestLeavingScrapeGridKeepsManualJob(t *testing.T) {
	m, _ := newTestApp(t)
	m, _ = press(t, m, runes("m"))
	fillManualForm(&m, "React Developer", "Build an SPA", "React, Node.js")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = deliver(t, m, cmd)

	m.wf.Nav.NavigateTo(workflow.ScreenScrape)
	m.ana.searching = false
	m, _ = press(t, m, runes("b"))
	if m.wf.Nav.ActiveView() != workflow.ViewLanding {
		t.Fatalf("expected landing, got %s", m.wf.Nav.ActiveView())
	}

	m, _ = press(t, m, runes("m"))
	if m.wf.ManualSlot().Analysis == nil {
		t.Fatal("manual analysis should survive leaving the scrape grid")
	}
	if got := m.ana.form.value("title"); got != "React Developer" {
		t.Fatalf("expected form to keep its title, got %q", got)
	}
	if !strings.Contains(m.View(), "[ctrl+g] Generate Proposal") {
		t.Fatal("expected the previous analysis to be shown with the form")
	}
}

func TestRejectedReanalysisKeepsPreviousResultVisible(t *testing.T) {
	m, _ := newTestApp(t)
	m, _ = press(t, m, runes("s"))
	f := m.ana.search
	f.Fields[findFieldIndex(f, "keywords")].Value = "react"
	f.loadFieldIntoInput()
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = deliver(t, m, cmd)
	m, cmd = press(t, m, runes("a"))
	m = deliver(t, m, cmd)

	m.profileID = 0
	if err := m.wf.SetSlotProfile(workflow.SlotID(0), 0); err != nil {
		t.Fatalf("set slot profile: %v", err)
	}
	m, cmd = press(t, m, runes("a"))
	if cmd != nil {
		t.Fatal("analysis without a profile must not send a request")
	}
	view := m.View()
	if !strings.Contains(view, workflow.ErrNoProfile.Error()) {
		t.Fatal("expected the validation error on the card")
	}
	if !strings.Contains(view, "[g] Generate Proposal") {
		t.Fatal("expected the previous analysis and its generate action to stay visible")
	}
}
