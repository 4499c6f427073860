package settings

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"jobassist/internal/store"
)

const (
	DefaultAPIURL          = "http://localhost:8000"
	DefaultHealthRetries   = 3
	DefaultHealthDelaySecs = 2.0
	DefaultLogLevel        = "info"
	schemaVersion          = 1
)

const (
	EnvAPIURL    = "JOBASSIST_API_URL"
	EnvProfileID = "JOBASSIST_PROFILE_ID"
	EnvDraftsDir = "JOBASSIST_DRAFTS_DIR"
	EnvLogFile   = "JOBASSIST_LOG_FILE"
	EnvLogLevel  = "JOBASSIST_LOG_LEVEL"
	EnvConfig    = "JOBASSIST_CONFIG"
)

type Settings struct {
	APIURL           string  `json:"api_url,omitempty"`
	DefaultProfileID int     `json:"default_profile_id,omitempty"`
	DraftsDir        string  `json:"drafts_dir,omitempty"`
	LogFile          string  `json:"log_file,omitempty"`
	LogLevel         string  `json:"log_level,omitempty"`
	HealthRetries    int     `json:"health_retries,omitempty"`
	HealthDelaySecs  float64 `json:"health_delay_seconds,omitempty"`
}

type configFile struct {
	SchemaVersion int      `json:"schema_version"`
	UpdatedAt     string   `json:"updated_at,omitempty"`
	Settings      Settings `json:"settings"`
}

type UpdateResult struct {
	ConfigPath string   `json:"config_path"`
	Settings   Settings `json:"settings"`
}

// DefaultConfigPath is ~/.config/jobassist/config.json, or ./jobassist.json when
// no user config directory is available.
func DefaultConfigPath() string {
	if v := strings.TrimSpace(os.Getenv(EnvConfig)); v != "" {
		return v
	}
	dir, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(dir) == "" {
		return "jobassist.json"
	}
	return filepath.Join(dir, "jobassist", "config.json")
}

func Defaults() Settings {
	return Settings{
		APIURL:          DefaultAPIURL,
		DraftsDir:       defaultDraftsDir(),
		LogLevel:        DefaultLogLevel,
		HealthRetries:   DefaultHealthRetries,
		HealthDelaySecs: DefaultHealthDelaySecs,
	}
}

func defaultDraftsDir() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return "proposals"
	}
	return filepath.Join(home, "jobassist", "proposals")
}

func normalize(raw Settings) Settings {
	def := Defaults()
	norm := raw
	norm.APIURL = strings.TrimRight(strings.TrimSpace(norm.APIURL), "/")
	if norm.APIURL == "" {
		norm.APIURL = def.APIURL
	}
	if norm.DefaultProfileID < 0 {
		norm.DefaultProfileID = 0
	}
	norm.DraftsDir = strings.TrimSpace(norm.DraftsDir)
	if norm.DraftsDir == "" {
		norm.DraftsDir = def.DraftsDir
	}
	norm.LogFile = strings.TrimSpace(norm.LogFile)
	norm.LogLevel = normalizeLogLevel(norm.LogLevel)
	if norm.HealthRetries <= 0 {
		norm.HealthRetries = def.HealthRetries
	}
	if norm.HealthDelaySecs <= 0 {
		norm.HealthDelaySecs = def.HealthDelaySecs
	}
	return norm
}

func normalizeLogLevel(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return "debug"
	case "warn", "warning":
		return "warn"
	case "error":
		return "error"
	default:
		return DefaultLogLevel
	}
}

// Validate rejects settings the client cannot run with.
func (s Settings) Validate() error {
	u, err := url.Parse(s.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an http(s) URL, got %q", s.APIURL)
	}
	if s.HealthRetries > 20 {
		return fmt.Errorf("health_retries must be <= 20")
	}
	return nil
}

// HealthDelay is the pause between automatic health retries.
func (s Settings) HealthDelay() time.Duration {
	return time.Duration(s.HealthDelaySecs * float64(time.Second))
}

// Read loads the settings file, returning defaults when it does not exist.
func Read(configPath string) (Settings, error) {
	path := normalizeConfigPath(configPath)
	var cfg configFile
	if err := store.ReadJSON(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Settings{}, err
	}
	return normalize(cfg.Settings), nil
}

// Update validates and persists settings.
func Update(configPath string, s Settings) (UpdateResult, error) {
	path := normalizeConfigPath(configPath)
	norm := normalize(s)
	if err := norm.Validate(); err != nil {
		return UpdateResult{}, err
	}
	cfg := configFile{
		SchemaVersion: schemaVersion,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
		Settings:      norm,
	}
	if err := store.WriteJSON(path, cfg); err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{ConfigPath: path, Settings: norm}, nil
}

// Load reads the settings file and applies environment overrides. An optional
// .env file in the working directory is loaded first; existing variables win.
func Load(configPath string) (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Settings{}, fmt.Errorf("load .env: %w", err)
	}
	s, err := Read(configPath)
	if err != nil {
		return Settings{}, err
	}
	s = applyEnv(s)
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func applyEnv(s Settings) Settings {
	s.APIURL = envString(EnvAPIURL, s.APIURL)
	s.DefaultProfileID = envInt(EnvProfileID, s.DefaultProfileID)
	s.DraftsDir = envString(EnvDraftsDir, s.DraftsDir)
	s.LogFile = envString(EnvLogFile, s.LogFile)
	s.LogLevel = envString(EnvLogLevel, s.LogLevel)
	return normalize(s)
}

func normalizeConfigPath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return DefaultConfigPath()
	}
	return p
}

func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
