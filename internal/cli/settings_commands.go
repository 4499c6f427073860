package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"jobassist/internal/settings"
)

func runSettings(args []string) error {
	if len(args) == 0 {
		printSettingsUsage()
		return nil
	}
	switch args[0] {
	case "show":
		return runSettingsShow(args[1:])
	case "set":
		return runSettingsSet(args[1:])
	case "help", "-h", "--help":
		printSettingsUsage()
		return nil
	default:
		printSettingsUsage()
		return fmt.Errorf("unknown settings subcommand %q", args[0])
	}
}

func runSettingsShow(args []string) error {
	fs := flag.NewFlagSet("settings show", flag.ContinueOnError)
	config := fs.String("config", "", "settings file path")
	effective := fs.Bool("effective", false, "apply .env and environment overrides")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	configPath := resolveConfigPath(*config)
	var (
		s   settings.Settings
		err error
	)
	if *effective {
		s, err = settings.Load(configPath)
	} else {
		s, err = settings.Read(configPath)
	}
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(map[string]any{
			"config_path": configPath,
			"settings":    s,
		})
	}

	fmt.Printf("config: %s\n", configPath)
	printSettings(s)
	return nil
}

func runSettingsSet(args []string) error {
	fs := flag.NewFlagSet("settings set", flag.ContinueOnError)
	config := fs.String("config", "", "settings file path")
	apiURL := fs.String("api-url", "", "backend base URL (empty keeps current)")
	profile := fs.Int("profile", -1, "default profile id (0 clears, -1 keeps current)")
	draftsDir := fs.String("drafts-dir", "", "directory for saved proposal drafts (empty keeps current)")
	logFile := fs.String("log-file", "", "JSON log file, \"-\" disables (empty keeps current)")
	logLevel := fs.String("log-level", "", "debug|info|warn|error (empty keeps current)")
	retries := fs.Int("health-retries", -1, "automatic health retries (>=1, -1 keeps current)")
	delay := fs.Float64("health-delay", -1, "seconds between health retries (>0, -1 keeps current)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	configPath := resolveConfigPath(*config)
	s, err := settings.Read(configPath)
	if err != nil {
		return err
	}

	if v := strings.TrimSpace(*apiURL); v != "" {
		s.APIURL = v
	}
	if *profile != -1 {
		if *profile < 0 {
			return errors.New("--profile must be >= 0")
		}
		s.DefaultProfileID = *profile
	}
	if v := strings.TrimSpace(*draftsDir); v != "" {
		s.DraftsDir = v
	}
	switch v := strings.TrimSpace(*logFile); v {
	case "":
	case "-":
		s.LogFile = ""
	default:
		s.LogFile = v
	}
	if v := strings.TrimSpace(*logLevel); v != "" {
		s.LogLevel = v
	}
	if *retries != -1 {
		if *retries < 1 {
			return errors.New("--health-retries must be >= 1")
		}
		s.HealthRetries = *retries
	}
	if *delay != -1 {
		if *delay <= 0 {
			return errors.New("--health-delay must be > 0")
		}
		s.HealthDelaySecs = *delay
	}

	res, err := settings.Update(configPath, s)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}
	fmt.Printf("updated settings in %s\n", res.ConfigPath)
	printSettings(res.Settings)
	return nil
}

func resolveConfigPath(raw string) string {
	if p := strings.TrimSpace(raw); p != "" {
		return p
	}
	return settings.DefaultConfigPath()
}

func printSettings(s settings.Settings) {
	fmt.Println(kv("api_url", s.APIURL))
	profile := "(none)"
	if s.DefaultProfileID > 0 {
		profile = fmt.Sprint(s.DefaultProfileID)
	}
	fmt.Println(kv("default_profile", profile))
	fmt.Println(kv("drafts_dir", s.DraftsDir))
	fmt.Println(kv("log_file", defaultIfEmpty(s.LogFile, "(disabled)")))
	fmt.Println(kv("log_level", s.LogLevel))
	fmt.Println(kv("health_retries", fmt.Sprint(s.HealthRetries)))
	fmt.Println(kv("health_delay_seconds", formatFloat(s.HealthDelaySecs)))
}

func printSettingsUsage() {
	fmt.Println("settings commands:")
	fmt.Println("  jobassist settings show [--effective] [--json]")
	fmt.Println("  jobassist settings set [--api-url URL] [--profile ID] [--drafts-dir DIR] [--log-file PATH|-] [--log-level LEVEL]")
	fmt.Println("                         [--health-retries N] [--health-delay SECONDS] [--json]")
}
