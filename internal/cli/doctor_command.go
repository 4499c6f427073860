package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"path/filepath"

	"jobassist/internal/health"
	"jobassist/internal/settings"
	"jobassist/internal/store"
)

type doctorResult struct {
	OK     bool          `json:"ok"`
	Checks []doctorCheck `json:"checks"`
}

type doctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func runDoctor(args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	cf := addClientFlags(fs)
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := cf.open()
	if err != nil {
		return err
	}
	defer env.close()

	configPath := *cf.config
	if configPath == "" {
		configPath = settings.DefaultConfigPath()
	}
	res := runDoctorChecks(env, configPath)
	if *jsonOut {
		return printJSON(res)
	}

	for _, c := range res.Checks {
		status := "ok"
		if !c.OK {
			status = "fail"
		}
		fmt.Printf("%s: %s (%s)\n", c.Name, status, c.Message)
	}
	if !res.OK {
		return errors.New("doctor checks failed")
	}
	fmt.Println("doctor: all checks passed")
	return nil
}

func runDoctorChecks(env *appEnv, configPath string) doctorResult {
	checks := []doctorCheck{
		writableCheck("directory:config", filepath.Dir(configPath)),
		writableCheck("directory:drafts", env.settings.DraftsDir),
	}

	// A single probe: doctor reports, it does not wait out the retry schedule.
	_, err := health.Wait(context.Background(), env.client.Health, health.Policy{})
	backend := doctorCheck{Name: "backend", OK: err == nil, Message: "reachable at " + env.client.BaseURL()}
	if err != nil {
		backend.Message = err.Error()
	}
	checks = append(checks, backend)

	profile := doctorCheck{Name: "default-profile", OK: true, Message: "not set"}
	if id := env.settings.DefaultProfileID; id > 0 && err == nil {
		p, perr := env.client.GetProfile(context.Background(), id)
		if perr != nil {
			profile.OK = false
			profile.Message = fmt.Sprintf("profile %d: %v", id, perr)
		} else {
			profile.Message = profileLabel(p)
		}
	}
	checks = append(checks, profile)

	ok := true
	for _, c := range checks {
		if !c.OK {
			ok = false
			break
		}
	}
	return doctorResult{OK: ok, Checks: checks}
}

func writableCheck(name, dir string) doctorCheck {
	if err := store.CheckWritable(dir); err != nil {
		return doctorCheck{Name: name, OK: false, Message: err.Error()}
	}
	return doctorCheck{Name: name, OK: true, Message: dir + " writable"}
}
