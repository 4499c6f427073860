package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"jobassist/internal/api"
	"jobassist/internal/settings"
)

// appEnv is what every backend-facing command needs: resolved settings, a logger
// and the API client.
type appEnv struct {
	settings settings.Settings
	client   *api.HTTPClient
	logger   *slog.Logger
	close    func()
}

type clientFlags struct {
	config *string
	apiURL *string
}

func addClientFlags(fs *flag.FlagSet) clientFlags {
	return clientFlags{
		config: fs.String("config", "", "settings file path (default ~/.config/jobassist/config.json)"),
		apiURL: fs.String("api-url", "", "backend base URL, overrides settings"),
	}
}

func (f clientFlags) open() (*appEnv, error) {
	s, err := settings.Load(strings.TrimSpace(*f.config))
	if err != nil {
		return nil, err
	}
	if u := strings.TrimSpace(*f.apiURL); u != "" {
		s.APIURL = strings.TrimRight(u, "/")
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	logger, closeLog, err := newLogger(s)
	if err != nil {
		return nil, err
	}
	client := api.NewHTTPClient(s.APIURL, api.WithLogger(logger))
	logger.Debug("client configured", "api_url", client.BaseURL())
	return &appEnv{settings: s, client: client, logger: logger, close: closeLog}, nil
}

// newLogger writes JSON logs to the configured file. With no log file, logs are
// discarded so they never interleave with command output or the TUI.
func newLogger(s settings.Settings) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(s.LogLevel)}
	path := strings.TrimSpace(s.LogFile)
	if path == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, opts)), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return slog.New(slog.NewJSONHandler(f, opts)), func() { _ = f.Close() }, nil
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// profileID returns explicit when set, otherwise the configured default profile.
func (e *appEnv) profileID(explicit int) (int, error) {
	if explicit > 0 {
		return explicit, nil
	}
	if e.settings.DefaultProfileID > 0 {
		return e.settings.DefaultProfileID, nil
	}
	return 0, errors.New("--profile is required (or set a default with: jobassist settings set --profile <id>)")
}
