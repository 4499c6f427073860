package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"jobassist/internal/mockapi"
	"jobassist/internal/model"
	"jobassist/internal/settings"
)

// captureStdout runs fn with os.Stdout redirected and returns what it printed.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	done := make(chan string)
	go func() {
		data, _ := io.ReadAll(r)
		done <- string(data)
	}()
	runErr := fn()
	_ = w.Close()
	os.Stdout = orig
	return <-done, runErr
}

func clearSettingsEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		settings.EnvAPIURL,
		settings.EnvProfileID,
		settings.EnvDraftsDir,
		settings.EnvLogFile,
		settings.EnvLogLevel,
		settings.EnvConfig,
	} {
		t.Setenv(key, "")
	}
}

type cliFixture struct {
	mock   *mockapi.Server
	url    string
	config string
	drafts string
}

func newCLIFixture(t *testing.T) cliFixture {
	t.Helper()
	clearSettingsEnv(t)
	mock := mockapi.New()
	srv := httptest.NewServer(mock)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	fx := cliFixture{
		mock:   mock,
		url:    srv.URL,
		config: filepath.Join(dir, "config.json"),
		drafts: filepath.Join(dir, "drafts"),
	}
	_, err := captureStdout(t, func() error {
		return Run([]string{"settings", "set", "--config", fx.config, "--api-url", fx.url, "--drafts-dir", fx.drafts})
	})
	if err != nil {
		t.Fatalf("settings set: %v", err)
	}
	return fx
}

func TestSettingsSetPersistsAndShows(t *testing.T) {
	fx := newCLIFixture(t)

	out, err := captureStdout(t, func() error {
		return Run([]string{"settings", "show", "--config", fx.config, "--json"})
	})
	if err != nil {
		t.Fatalf("settings show: %v", err)
	}
	var shown struct {
		ConfigPath string            `json:"config_path"`
		Settings   settings.Settings `json:"settings"`
	}
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("decode settings: %v\n%s", err, out)
	}
	if shown.ConfigPath != fx.config {
		t.Fatalf("unexpected config path %q", shown.ConfigPath)
	}
	got := shown.Settings
	if got.APIURL != fx.url || got.DraftsDir != fx.drafts {
		t.Fatalf("unexpected settings: %+v", got)
	}
	if got.HealthRetries != settings.DefaultHealthRetries {
		t.Fatalf("expected default retries, got %d", got.HealthRetries)
	}

	if _, err := captureStdout(t, func() error {
		return Run([]string{"settings", "set", "--config", fx.config, "--health-retries", "0"})
	}); err == nil {
		t.Fatal("expected zero retries to be rejected")
	}
}

func TestProfilesAddAndList(t *testing.T) {
	fx := newCLIFixture(t)

	out, err := captureStdout(t, func() error {
		return Run([]string{"profiles", "add", "--config", fx.config, "--name", "Ada", "--skills", "Go, React", "--hourly-rate", "55", "--json"})
	})
	if err != nil {
		t.Fatalf("profiles add: %v", err)
	}
	var created model.Profile
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if created.ID == 0 || len(created.Skills) != 2 {
		t.Fatalf("unexpected profile: %+v", created)
	}

	out, err = captureStdout(t, func() error {
		return Run([]string{"profiles", "list", "--config", fx.config, "--json"})
	})
	if err != nil {
		t.Fatalf("profiles list: %v", err)
	}
	var list []model.Profile
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Ada" {
		t.Fatalf("unexpected list: %+v", list)
	}

	if _, err := captureStdout(t, func() error {
		return Run([]string{"profiles", "add", "--config", fx.config})
	}); err == nil || !strings.Contains(err.Error(), "--name is required") {
		t.Fatalf("expected missing name error, got %v", err)
	}
}

func TestAnalyzeReportsActionLabel(t *testing.T) {
	fx := newCLIFixture(t)
	p := fx.mock.SeedProfile(model.Profile{Name: "Ada", Skills: []string{"React", "Node.js"}})

	out, err := captureStdout(t, func() error {
		return Run([]string{"analyze", "--config", fx.config, "--profile", strconv.Itoa(p.ID),
			"--title", "React Developer", "--description", "Build an SPA", "--skills", "React, Node.js", "--json"})
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var got struct {
		ProfileID   int    `json:"profile_id"`
		ActionLabel string `json:"action_label"`
		Analysis    struct {
			Analysis struct {
				MatchLevel string `json:"match_level"`
			} `json:"analysis"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode analyze output: %v\n%s", err, out)
	}
	if got.ActionLabel != "Generate Proposal" {
		t.Fatalf("expected Generate Proposal, got %q", got.ActionLabel)
	}
	if got.Analysis.Analysis.MatchLevel != string(model.MatchExcellent) {
		t.Fatalf("expected excellent match, got %q", got.Analysis.Analysis.MatchLevel)
	}
}

func TestAnalyzeRejectsBadRatingBeforeRequest(t *testing.T) {
	fx := newCLIFixture(t)
	p := fx.mock.SeedProfile(model.Profile{Name: "Ada"})

	_, err := captureStdout(t, func() error {
		return Run([]string{"analyze", "--config", fx.config, "--profile", strconv.Itoa(p.ID),
			"--title", "T", "--description", "D", "--skills", "Go", "--client-rating", "nine"})
	})
	if err == nil {
		t.Fatal("expected rating parse error")
	}
	if n := fx.mock.CallCount(http.MethodPost, "/api/v1/jobs/analyze"); n != 0 {
		t.Fatalf("expected no analyze request, got %d", n)
	}
}

func TestAnalyzeRequiresProfile(t *testing.T) {
	fx := newCLIFixture(t)
	_, err := captureStdout(t, func() error {
		return Run([]string{"analyze", "--config", fx.config, "--title", "T", "--description", "D", "--skills", "Go"})
	})
	if err == nil || !strings.Contains(err.Error(), "--profile is required") {
		t.Fatalf("expected profile error, got %v", err)
	}
}

func TestProposeSavesDraft(t *testing.T) {
	fx := newCLIFixture(t)
	p := fx.mock.SeedProfile(model.Profile{Name: "Ada", Skills: []string{"Go"}, ExperienceYears: 4})

	out, err := captureStdout(t, func() error {
		return Run([]string{"propose", "--config", fx.config, "--profile", strconv.Itoa(p.ID),
			"--title", "Go Service", "--description", "Extend an API", "--skills", "Go", "--save", "--json"})
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	var got struct {
		Proposal *model.Proposal `json:"proposal"`
		Draft    *struct {
			Path string `json:"path"`
		} `json:"draft"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode propose output: %v\n%s", err, out)
	}
	if got.Proposal == nil || got.Draft == nil {
		t.Fatalf("expected proposal and draft, got %s", out)
	}
	if filepath.Dir(got.Draft.Path) != fx.drafts {
		t.Fatalf("draft written outside drafts dir: %s", got.Draft.Path)
	}
	data, err := os.ReadFile(got.Draft.Path)
	if err != nil {
		t.Fatalf("read draft: %v", err)
	}
	if !strings.Contains(string(data), got.Proposal.ProposalText) {
		t.Fatal("draft should contain the proposal text")
	}

	out, err = captureStdout(t, func() error {
		return Run([]string{"proposals", "drafts", "--config", fx.config})
	})
	if err != nil {
		t.Fatalf("proposals drafts: %v", err)
	}
	if !strings.Contains(out, filepath.Base(got.Draft.Path)) {
		t.Fatalf("expected draft in listing, got %q", out)
	}
}

func TestHealthFailsAgainstClosedBackend(t *testing.T) {
	clearSettingsEnv(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	config := filepath.Join(t.TempDir(), "config.json")

	out, err := captureStdout(t, func() error {
		return Run([]string{"health", "--config", config, "--api-url", url, "--retries", "0", "--json"})
	})
	if err == nil {
		t.Fatal("expected health to fail")
	}
	var report struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Status != "disconnected" {
		t.Fatalf("expected disconnected, got %q", report.Status)
	}
}

func TestHealthSucceeds(t *testing.T) {
	fx := newCLIFixture(t)
	out, err := captureStdout(t, func() error {
		return Run([]string{"health", "--config", fx.config})
	})
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(out, "connected") {
		t.Fatalf("expected connected status, got %q", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := captureStdout(t, func() error {
		return Run([]string{"frobnicate"})
	})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}
