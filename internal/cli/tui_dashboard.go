package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jobassist/internal/api"
	"jobassist/internal/model"
)

type dashboardState struct {
	stats        *model.DashboardStats
	trends       *model.JobTrends
	profileStats *model.ProfileStats
	err          string
}

type dashboardLoadedMsg struct {
	stats model.DashboardStats
	err   error
}

type analyticsLoadedMsg struct {
	trends       model.JobTrends
	profileStats *model.ProfileStats
	err          error
}

func (m appModel) updateDashboardMsg(msg tea.Msg) (appModel, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		if msg.err != nil {
			m.dash.err = msg.err.Error()
			return m, nil, true
		}
		stats := msg.stats
		m.dash.stats = &stats
		m.dash.err = ""
		return m, nil, true
	case analyticsLoadedMsg:
		if msg.err != nil {
			m.dash.err = msg.err.Error()
			return m, nil, true
		}
		trends := msg.trends
		m.dash.trends = &trends
		m.dash.profileStats = msg.profileStats
		m.dash.err = ""
		return m, nil, true
	}
	return m, nil, false
}

func (m appModel) updateDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m, m.pageLoadCmd()
	case "p":
		if m.page == pageAnalytics {
			m.profileID = m.nextProfileID(m.profileID)
			return m, m.pageLoadCmd()
		}
	}
	return m, nil
}

func (m appModel) viewDashboard() string {
	width := maxInt(m.width, 40)
	lines := []string{titleStyle.Render("Dashboard"), ""}
	if s := m.dash.stats; s != nil {
		lines = append(lines,
			kv("Profiles", fmt.Sprint(s.TotalProfiles)),
			kv("Jobs scraped", fmt.Sprint(s.TotalJobsScraped)),
			kv("Jobs analyzed", fmt.Sprint(s.TotalJobsAnalyzed)),
			kv("Proposals generated", fmt.Sprint(s.TotalProposalsGenerated)),
		)
	} else if m.dash.err == "" {
		lines = append(lines, m.spinner.View()+" Loading...")
	}
	if m.dash.err != "" {
		lines = append(lines, errorStyle.Render(m.dash.err))
	}
	lines = append(lines, "", kv("Active profile", m.profileName(m.profileID)))
	lines = append(lines, "", mutedStyle.Render("3: analyze a job | 2: manage profiles | r: refresh"))
	return panelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m appModel) viewAnalytics() string {
	width := maxInt(m.width, 40)
	left := []string{titleStyle.Render("Job Trends"), ""}
	if t := m.dash.trends; t != nil {
		if t.TotalJobsAnalyzed == 0 && t.Message != "" {
			left = append(left, mutedStyle.Render(t.Message))
		} else {
			left = append(left,
				kv("Jobs", fmt.Sprint(t.TotalJobsAnalyzed)),
				kv("Recent", fmt.Sprint(t.RecentJobsCount)),
				kv("Avg pay", formatFloat(t.AvgPayRate)),
				kv("Avg client rating", formatFloat(t.AvgClientRating)),
			)
			if len(t.TopSkills) > 0 {
				left = append(left, "", "Top skills")
				for _, s := range t.TopSkills {
					left = append(left, fmt.Sprintf("  %-18s %d", truncateRunes(s.Skill, 18), s.Count))
				}
			}
			if len(t.JobCategories) > 0 {
				names := make([]string, 0, len(t.JobCategories))
				for name := range t.JobCategories {
					names = append(names, name)
				}
				sort.Strings(names)
				left = append(left, "", "Categories")
				for _, name := range names {
					left = append(left, fmt.Sprintf("  %-18s %d", truncateRunes(name, 18), t.JobCategories[name]))
				}
			}
		}
	} else if m.dash.err == "" {
		left = append(left, m.spinner.View()+" Loading...")
	}

	right := []string{titleStyle.Render("Profile Stats"), ""}
	if ps := m.dash.profileStats; ps != nil {
		right = append(right,
			kv("Profile", ps.Profile.Name),
			kv("Projects", fmt.Sprint(ps.Stats.TotalProjects)),
			kv("Proposals", fmt.Sprint(ps.Stats.TotalProposals)),
			kv("Avg rating", formatFloat(ps.Stats.AvgProjectRating)),
			kv("Earnings", formatFloat(ps.Stats.TotalEarnings)),
		)
		for _, p := range ps.RecentProposals {
			right = append(right, "  #"+fmt.Sprint(p.ID)+" "+truncateRunes(p.JobTitle, 30))
		}
	} else {
		right = append(right, mutedStyle.Render("No profile selected (p to cycle)."))
	}

	hints := mutedStyle.Render("p: switch profile | r: refresh")
	parts := []string{hints}
	if width >= 90 {
		half := width / 2
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top,
			panelStyle.Width(half).Render(strings.Join(left, "\n")),
			panelStyle.Width(width-half-1).Render(strings.Join(right, "\n")),
		))
	} else {
		parts = append(parts, panelStyle.Width(width).Render(strings.Join(left, "\n")), panelStyle.Width(width).Render(strings.Join(right, "\n")))
	}
	if m.dash.err != "" {
		parts = append(parts, errorStyle.Render(m.dash.err))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func loadDashboardCmd(client api.Client) tea.Cmd {
	return func() tea.Msg {
		stats, err := client.DashboardStats(context.Background())
		return dashboardLoadedMsg{stats: stats, err: err}
	}
}

func loadAnalyticsCmd(client api.Client, profileID int) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		trends, err := client.JobTrends(ctx)
		if err != nil {
			return analyticsLoadedMsg{err: err}
		}
		msg := analyticsLoadedMsg{trends: trends}
		if profileID > 0 {
			ps, err := client.ProfileStats(ctx, profileID)
			if err != nil {
				return analyticsLoadedMsg{err: err}
			}
			msg.profileStats = &ps
		}
		return msg
	}
}
