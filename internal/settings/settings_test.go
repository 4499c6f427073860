package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadDefaultsWhenConfigMissing(t *testing.T) {
	s, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("read settings failed: %v", err)
	}
	if s.APIURL != DefaultAPIURL {
		t.Fatalf("api url default mismatch: got %q want %q", s.APIURL, DefaultAPIURL)
	}
	if s.HealthRetries != DefaultHealthRetries {
		t.Fatalf("health retries default mismatch: got %d", s.HealthRetries)
	}
	if s.HealthDelay().Seconds() != 2 {
		t.Fatalf("expected 2s health delay, got %v", s.HealthDelay())
	}
}

func TestUpdateNormalizesAndPersists(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.json")
	res, err := Update(cfg, Settings{APIURL: " http://api.local:9000/ ", LogLevel: "WARNING", DefaultProfileID: 3})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if res.Settings.APIURL != "http://api.local:9000" {
		t.Fatalf("expected trimmed api url, got %q", res.Settings.APIURL)
	}
	if res.Settings.LogLevel != "warn" {
		t.Fatalf("expected warn log level, got %q", res.Settings.LogLevel)
	}

	got, err := Read(cfg)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if got.DefaultProfileID != 3 || got.APIURL != "http://api.local:9000" {
		t.Fatalf("unexpected persisted settings: %+v", got)
	}
}

func TestUpdateRejectsBadURL(t *testing.T) {
	if _, err := Update(filepath.Join(t.TempDir(), "c.json"), Settings{APIURL: "localhost:8000"}); err == nil {
		t.Fatal("expected error for api url without scheme")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.json")
	if _, err := Update(cfg, Settings{APIURL: "http://from-file:8000"}); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	t.Setenv(EnvAPIURL, "http://from-env:8001")
	t.Setenv(EnvProfileID, "12")

	s, err := Load(cfg)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if s.APIURL != "http://from-env:8001" {
		t.Fatalf("expected env api url, got %q", s.APIURL)
	}
	if s.DefaultProfileID != 12 {
		t.Fatalf("expected env profile id, got %d", s.DefaultProfileID)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvDraftsDir+"=/tmp/drafts-from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()
	t.Setenv(EnvDraftsDir, "")
	_ = os.Unsetenv(EnvDraftsDir)

	s, err := Load(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if s.DraftsDir != "/tmp/drafts-from-dotenv" {
		t.Fatalf("expected drafts dir from .env, got %q", s.DraftsDir)
	}
}
