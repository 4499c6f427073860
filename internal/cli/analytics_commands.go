package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"jobassist/internal/store"
)

func runAnalytics(args []string) error {
	if len(args) == 0 {
		printAnalyticsUsage()
		return nil
	}
	switch args[0] {
	case "dashboard":
		return runAnalyticsDashboard(args[1:])
	case "stats":
		return runAnalyticsStats(args[1:])
	case "trends":
		return runAnalyticsTrends(args[1:])
	case "export":
		return runAnalyticsExport(args[1:])
	case "help", "-h", "--help":
		printAnalyticsUsage()
		return nil
	default:
		printAnalyticsUsage()
		return fmt.Errorf("unknown analytics subcommand %q", args[0])
	}
}

func runAnalyticsDashboard(args []string) error {
	fs := flag.NewFlagSet("analytics dashboard", flag.ContinueOnError)
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

	stats, err := env.client.DashboardStats(context.Background())
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(stats)
	}
	fmt.Println(kv("profiles", fmt.Sprint(stats.TotalProfiles)))
	fmt.Println(kv("jobs_scraped", fmt.Sprint(stats.TotalJobsScraped)))
	fmt.Println(kv("jobs_analyzed", fmt.Sprint(stats.TotalJobsAnalyzed)))
	fmt.Println(kv("proposals_generated", fmt.Sprint(stats.TotalProposalsGenerated)))
	return nil
}

func runAnalyticsStats(args []string) error {
	fs := flag.NewFlagSet("analytics stats", flag.ContinueOnError)
	cf := addClientFlags(fs)
	profileID := fs.Int("profile", 0, "profile id (default from settings)")
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
	pid, err := env.profileID(*profileID)
	if err != nil {
		return err
	}

	ps, err := env.client.ProfileStats(context.Background(), pid)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(ps)
	}
	fmt.Println(kv("profile", profileLabel(ps.Profile)))
	fmt.Println(kv("projects", fmt.Sprint(ps.Stats.TotalProjects)))
	fmt.Println(kv("proposals", fmt.Sprint(ps.Stats.TotalProposals)))
	fmt.Println(kv("avg_project_rating", formatFloat(ps.Stats.AvgProjectRating)))
	fmt.Println(kv("total_earnings", formatFloat(ps.Stats.TotalEarnings)))
	fmt.Println(kv("experience_years", fmt.Sprint(ps.Stats.ExperienceYears)))
	if len(ps.RecentProposals) > 0 {
		fmt.Println("recent_proposals:")
		for _, p := range ps.RecentProposals {
			fmt.Printf("  %d. %s (%s)\n", p.ID, truncateRunes(p.JobTitle, 60), defaultIfEmpty(p.ProposalStatus, "-"))
		}
	}
	return nil
}

func runAnalyticsTrends(args []string) error {
	fs := flag.NewFlagSet("analytics trends", flag.ContinueOnError)
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

	t, err := env.client.JobTrends(context.Background())
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(t)
	}
	if t.Message != "" && t.TotalJobsAnalyzed == 0 {
		fmt.Println(t.Message)
		return nil
	}
	fmt.Println(kv("jobs_analyzed", fmt.Sprint(t.TotalJobsAnalyzed)))
	fmt.Println(kv("recent_jobs", fmt.Sprint(t.RecentJobsCount)))
	fmt.Println(kv("avg_pay_rate", formatFloat(t.AvgPayRate)))
	fmt.Println(kv("avg_client_rating", formatFloat(t.AvgClientRating)))
	if len(t.JobCategories) > 0 {
		names := make([]string, 0, len(t.JobCategories))
		for name := range t.JobCategories {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println("categories:")
		for _, name := range names {
			fmt.Printf("  %s: %d\n", name, t.JobCategories[name])
		}
	}
	if len(t.TopSkills) > 0 {
		fmt.Println("top_skills:")
		for _, s := range t.TopSkills {
			fmt.Printf("  %s: %d\n", s.Skill, s.Count)
		}
	}
	return nil
}

func runAnalyticsExport(args []string) error {
	fs := flag.NewFlagSet("analytics export", flag.ContinueOnError)
	cf := addClientFlags(fs)
	profileID := fs.Int("profile", 0, "profile id (default from settings)")
	out := fs.String("out", "", "write the export to this file instead of stdout")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	env, err := cf.open()
	if err != nil {
		return err
	}
	defer env.close()
	pid, err := env.profileID(*profileID)
	if err != nil {
		return err
	}

	raw, err := env.client.ExportProfile(context.Background(), pid)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return errors.New("backend returned an empty export")
	}
	path := strings.TrimSpace(*out)
	if path == "" {
		_, err := os.Stdout.Write(append(raw, '\n'))
		return err
	}
	if err := store.WriteBytes(path, append(raw, '\n')); err != nil {
		return err
	}
	fmt.Printf("exported profile %d to %s\n", pid, path)
	return nil
}

func printAnalyticsUsage() {
	fmt.Println("analytics commands:")
	fmt.Println("  analytics dashboard [--json]")
	fmt.Println("  analytics stats [--profile <id>] [--json]")
	fmt.Println("  analytics trends [--json]")
	fmt.Println("  analytics export [--profile <id>] [--out <file>]")
}
