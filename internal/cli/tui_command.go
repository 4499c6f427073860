package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jobassist/internal/api"
	"jobassist/internal/health"
	"jobassist/internal/model"
	"jobassist/internal/settings"
	"jobassist/internal/workflow"
)

type page int

const (
	pageDashboard page = iota
	pageProfiles
	pageAnalysis
	pageProposals
	pageAnalytics
)

type route struct {
	Path  string
	Page  page
	Title string
	Key   string
}

// routes maps client-side paths to pages. /job-analysis is an alias kept for old links.
var routes = []route{
	{Path: "/", Page: pageDashboard, Title: "Dashboard", Key: "1"},
	{Path: "/profiles", Page: pageProfiles, Title: "Profiles", Key: "2"},
	{Path: "/job-scraping", Page: pageAnalysis, Title: "Job Analysis", Key: "3"},
	{Path: "/job-analysis", Page: pageAnalysis, Title: "Job Analysis"},
	{Path: "/proposals", Page: pageProposals, Title: "Proposals", Key: "4"},
	{Path: "/analytics", Page: pageAnalytics, Title: "Analytics", Key: "5"},
}

func resolveRoute(path string) (page, bool) {
	p := strings.TrimSpace(path)
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	for _, r := range routes {
		if r.Path == p {
			return r.Page, true
		}
	}
	return pageDashboard, false
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	selStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
	tabStyle    = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	tabOnStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true).Padding(0, 1)
)

type appModel struct {
	client   api.Client
	logger   *slog.Logger
	settings settings.Settings
	apiURL   string

	tracker   *health.Tracker
	healthGen int
	wf        *workflow.State
	spinner   spinner.Model

	page      page
	width     int
	height    int
	profiles  []model.Profile
	profileID int
	status    string

	dash  dashboardState
	prof  profilesState
	props proposalsState
	ana   analysisState
}

type healthMsg struct {
	gen int
	err error
}

type healthRetryMsg struct {
	gen int
}

type profilesLoadedMsg struct {
	profiles []model.Profile
	err      error
}

func runTUI(args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	cf := addClientFlags(fs)
	start := fs.String("route", "/", "start page: / /profiles /job-scraping /proposals /analytics")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	startPage, ok := resolveRoute(*start)
	if !ok {
		return fmt.Errorf("unknown route %q", *start)
	}
	if !stdinIsTTY() {
		return errors.New("tui requires an interactive terminal (TTY)")
	}

	env, err := cf.open()
	if err != nil {
		return err
	}
	defer env.close()

	m := newAppModel(env.client, env.settings, env.logger)
	m.apiURL = env.client.BaseURL()
	m.page = startPage
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "tty") {
			return errors.New("tui requires an interactive terminal (TTY)")
		}
		return err
	}
	return nil
}

func newAppModel(client api.Client, s settings.Settings, logger *slog.Logger) appModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	editor := textarea.New()
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.Prompt = ""
	return appModel{
		client:    client,
		logger:    logger,
		settings:  s,
		apiURL:    s.APIURL,
		tracker:   health.NewTracker(health.Policy{Retries: s.HealthRetries, Delay: s.HealthDelay()}),
		wf:        workflow.New(),
		spinner:   sp,
		profileID: s.DefaultProfileID,
		ana:       analysisState{editor: editor},
	}
}

func (m appModel) Init() tea.Cmd {
	m.tracker.Begin()
	return tea.Batch(healthCheckCmd(m.client, m.healthGen), m.spinner.Tick, loadProfilesCmd(m.client), m.pageLoadCmd())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ana.form.resize(m.width)
		m.ana.search.resize(m.width)
		m.prof.form.resize(m.width)
		m.props.form.resize(m.width)
		m.ana.editor.SetWidth(clampInt(m.width-6, 20, 160))
		m.ana.editor.SetHeight(clampInt(m.height-10, 5, 40))
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case healthMsg:
		return m.onHealth(msg)
	case healthRetryMsg:
		if msg.gen != m.healthGen {
			return m, nil
		}
		return m, healthCheckCmd(m.client, m.healthGen)
	case profilesLoadedMsg:
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			return m, nil
		}
		m.profiles = msg.profiles
		m.prof.cursor = clampInt(m.prof.cursor, 0, maxInt(len(m.profiles)-1, 0))
		if m.profileID == 0 && len(m.profiles) > 0 {
			m.profileID = m.profiles[0].ID
		}
		return m, nil
	case tea.KeyMsg:
		return m.onKey(msg)
	}

	// Results are routed by type, not by page: a response may land after the user moved on.
	for _, handle := range []func(appModel, tea.Msg) (appModel, tea.Cmd, bool){
		appModel.updateAnalysisMsg,
		appModel.updateProfilesMsg,
		appModel.updateProposalsMsg,
		appModel.updateDashboardMsg,
	} {
		if next, cmd, ok := handle(m, msg); ok {
			return next, cmd
		}
	}
	return m, nil
}

func (m appModel) onHealth(msg healthMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.healthGen {
		return m, nil
	}
	wasConnected := m.wf.Connection == health.StatusConnected
	retry := m.tracker.Record(msg.err)
	m.wf.Connection = m.tracker.Status
	if msg.err != nil {
		m.logger.Warn("health probe failed", "attempt", m.tracker.Attempts(), "error", msg.err)
	}
	if retry {
		gen := m.healthGen
		return m, tea.Tick(m.tracker.Policy.Delay, func(time.Time) tea.Msg { return healthRetryMsg{gen: gen} })
	}
	if m.wf.Connection == health.StatusConnected && !wasConnected {
		m.logger.Info("backend connected", "api_url", m.apiURL)
		return m, tea.Batch(loadProfilesCmd(m.client), m.pageLoadCmd())
	}
	return m, nil
}

// retryHealth runs one user-triggered probe. Pending automatic retries are abandoned.
func (m appModel) retryHealth() (tea.Model, tea.Cmd) {
	m.healthGen++
	m.tracker.BeginManual()
	m.wf.Connection = m.tracker.Status
	return m, healthCheckCmd(m.client, m.healthGen)
}

func (m appModel) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+r":
		if m.wf.Connection == health.StatusDisconnected {
			return m.retryHealth()
		}
		return m, nil
	}

	if !m.capturingText() {
		key := msg.String()
		if key == "q" {
			return m, tea.Quit
		}
		for _, r := range routes {
			if r.Key != "" && r.Key == key {
				return m.navigate(r.Path)
			}
		}
	}

	switch m.page {
	case pageProfiles:
		return m.updateProfilesKey(msg)
	case pageAnalysis:
		return m.updateAnalysisKey(msg)
	case pageProposals:
		return m.updateProposalsKey(msg)
	default:
		return m.updateDashboardKey(msg)
	}
}

// capturingText reports whether key presses belong to a focused input.
func (m appModel) capturingText() bool {
	switch m.page {
	case pageProfiles:
		return m.prof.form != nil
	case pageProposals:
		return m.props.form != nil
	case pageAnalysis:
		if m.wf.Nav.Editing {
			return true
		}
		view := m.wf.Nav.ActiveView()
		return view == workflow.ViewManualForm || (view == workflow.ViewScrapeGrid && m.ana.searching)
	}
	return false
}

func (m appModel) navigate(path string) (tea.Model, tea.Cmd) {
	p, ok := resolveRoute(path)
	if !ok {
		m.status = "error: unknown route " + path
		return m, nil
	}
	m.page = p
	m.status = ""
	return m, m.pageLoadCmd()
}

func (m appModel) pageLoadCmd() tea.Cmd {
	switch m.page {
	case pageDashboard:
		return loadDashboardCmd(m.client)
	case pageProfiles:
		return loadProfilesCmd(m.client)
	case pageProposals:
		return loadProposalsCmd(m.client, m.profileID)
	case pageAnalytics:
		return loadAnalyticsCmd(m.client, m.profileID)
	}
	return nil
}

// nextProfileID cycles through loaded profiles starting after current.
func (m appModel) nextProfileID(current int) int {
	if len(m.profiles) == 0 {
		return 0
	}
	for i, p := range m.profiles {
		if p.ID == current {
			return m.profiles[(i+1)%len(m.profiles)].ID
		}
	}
	return m.profiles[0].ID
}

func (m appModel) profileName(id int) string {
	for _, p := range m.profiles {
		if p.ID == id {
			return p.Name
		}
	}
	if id > 0 {
		return fmt.Sprintf("#%d", id)
	}
	return "(none)"
}

func (m appModel) View() string {
	if m.width <= 0 {
		m.width = 100
	}
	if m.height <= 0 {
		m.height = 30
	}

	parts := []string{m.renderTabs()}
	if banner := m.renderBanner(); banner != "" {
		parts = append(parts, banner)
	}
	switch m.page {
	case pageProfiles:
		parts = append(parts, m.viewProfiles())
	case pageAnalysis:
		parts = append(parts, m.viewAnalysis())
	case pageProposals:
		parts = append(parts, m.viewProposals())
	case pageAnalytics:
		parts = append(parts, m.viewAnalytics())
	default:
		parts = append(parts, m.viewDashboard())
	}
	parts = append(parts, m.renderStatusLine())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m appModel) renderTabs() string {
	tabs := []string{titleStyle.Render("jobassist")}
	for _, r := range routes {
		if r.Key == "" {
			continue
		}
		label := r.Key + " " + r.Title
		if r.Page == m.page {
			tabs = append(tabs, tabOnStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m appModel) renderBanner() string {
	switch m.wf.Connection {
	case health.StatusDisconnected:
		text := fmt.Sprintf("Backend not reachable at %s. Press ctrl+r to retry.", m.apiURL)
		return bannerStyle.Width(maxInt(m.width, 20)).Render(truncateRunes(text, maxInt(m.width-2, 10)))
	case health.StatusChecking:
		return mutedStyle.Render(m.spinner.View() + " connecting to " + m.apiURL)
	}
	return ""
}

func (m appModel) renderStatusLine() string {
	msg := strings.TrimSpace(m.status)
	if msg == "" {
		msg = "1-5: switch page | q: quit"
	}
	style := mutedStyle
	if strings.HasPrefix(strings.ToLower(msg), "error:") {
		style = errorStyle
	}
	return style.Width(m.width).Render(truncateRunes(msg, maxInt(m.width-2, 10)))
}

func healthCheckCmd(client api.Client, gen int) tea.Cmd {
	return func() tea.Msg {
		return healthMsg{gen: gen, err: client.Health(context.Background())}
	}
}

func loadProfilesCmd(client api.Client) tea.Cmd {
	return func() tea.Msg {
		profiles, err := client.ListProfiles(context.Background())
		return profilesLoadedMsg{profiles: profiles, err: err}
	}
}
