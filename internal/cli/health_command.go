package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"jobassist/internal/health"
)

type healthReport struct {
	APIURL   string        `json:"api_url"`
	Status   health.Status `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration string        `json:"duration"`
}

func runHealth(args []string) error {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	cf := addClientFlags(fs)
	retries := fs.Int("retries", -1, "automatic retries after a failed probe (-1 uses settings)")
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

	policy := health.Policy{Retries: env.settings.HealthRetries, Delay: env.settings.HealthDelay()}
	if *retries >= 0 {
		policy.Retries = *retries
	}

	started := time.Now()
	status, probeErr := health.Wait(context.Background(), env.client.Health, policy)
	report := healthReport{
		APIURL:   env.client.BaseURL(),
		Status:   status,
		Duration: time.Since(started).Round(time.Millisecond).String(),
	}
	if probeErr != nil {
		report.Error = probeErr.Error()
	}
	env.logger.Info("health check", "status", status, "duration", report.Duration)

	if *jsonOut {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		fmt.Println(kv("api_url", report.APIURL))
		fmt.Println(kv("status", string(report.Status)))
		if report.Error != "" {
			fmt.Println(kv("error", report.Error))
		}
	}
	if status != health.StatusConnected {
		return errors.New("backend is not reachable")
	}
	return nil
}
