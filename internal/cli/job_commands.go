package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"jobassist/internal/model"
	"jobassist/internal/store"
	"jobassist/internal/workflow"
)

func runJobs(args []string) error {
	if len(args) == 0 {
		printJobsUsage()
		return nil
	}
	switch args[0] {
	case "scrape":
		return runJobsScrape(args[1:])
	case "list":
		return runJobsList(args[1:])
	case "clear":
		return runJobsClear(args[1:])
	case "scrape-url":
		return runJobsScrapeURL(args[1:])
	case "help", "-h", "--help":
		printJobsUsage()
		return nil
	default:
		printJobsUsage()
		return fmt.Errorf("unknown jobs subcommand %q", args[0])
	}
}

func runJobsScrape(args []string) error {
	fs := flag.NewFlagSet("jobs scrape", flag.ContinueOnError)
	cf := addClientFlags(fs)
	keywords := fs.String("keywords", "", "comma-separated search keywords")
	maxJobs := fs.Int("max-jobs", workflow.DefaultScrapeMaxJobs, "jobs per keyword (1-50)")
	category := fs.String("category", "", "optional category filter")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	kws := model.ParseKeywords(*keywords)
	if len(kws) == 0 {
		return errors.New("--keywords is required")
	}
	env, err := cf.open()
	if err != nil {
		return err
	}
	defer env.close()

	res, err := env.client.ScrapeJobs(context.Background(), model.ScrapeRequest{
		Keywords:          kws,
		MaxJobsPerKeyword: workflow.ClampScrapeMaxJobs(*maxJobs),
		CategoryFilter:    strings.TrimSpace(*category),
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}
	if res.Message != "" {
		fmt.Println(res.Message)
	}
	printJobTable(res.Jobs)
	fmt.Println(kv("total", fmt.Sprint(res.TotalCount)))
	return nil
}

func runJobsList(args []string) error {
	fs := flag.NewFlagSet("jobs list", flag.ContinueOnError)
	cf := addClientFlags(fs)
	limit := fs.Int("limit", 50, "maximum jobs to list")
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

	jobs, err := env.client.ListScrapedJobs(context.Background(), *limit)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(jobs)
	}
	if len(jobs) == 0 {
		fmt.Println("no scraped jobs")
		return nil
	}
	printJobTable(jobs)
	return nil
}

func runJobsClear(args []string) error {
	fs := flag.NewFlagSet("jobs clear", flag.ContinueOnError)
	cf := addClientFlags(fs)
	yes := fs.Bool("yes", false, "skip confirmation")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		ok, err := promptConfirm("Clear all scraped jobs? [y/N]: ")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("aborted")
			return nil
		}
	}
	env, err := cf.open()
	if err != nil {
		return err
	}
	defer env.close()
	if err := env.client.ClearScrapedJobs(context.Background()); err != nil {
		return err
	}
	fmt.Println("cleared scraped jobs")
	return nil
}

func runJobsScrapeURL(args []string) error {
	fs := flag.NewFlagSet("jobs scrape-url", flag.ContinueOnError)
	cf := addClientFlags(fs)
	jobURL := fs.String("url", "", "job posting URL")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*jobURL) == "" {
		return errors.New("--url is required")
	}
	env, err := cf.open()
	if err != nil {
		return err
	}
	defer env.close()

	job, err := env.client.ScrapeJobURL(context.Background(), strings.TrimSpace(*jobURL))
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(job)
	}
	printJob(job)
	return nil
}

// jobFlags mirror the manual job form; values are parsed exactly as the form parses them.
type jobFlags struct {
	title       *string
	description *string
	skills      *string
	rating      *string
	payRate     *string
	url         *string
}

func addJobFlags(fs *flag.FlagSet) jobFlags {
	return jobFlags{
		title:       fs.String("title", "", "job title"),
		description: fs.String("description", "", "job description"),
		skills:      fs.String("skills", "", "comma-separated required skills"),
		rating:      fs.String("client-rating", "", "client rating 0-5 (optional)"),
		payRate:     fs.String("pay-rate", "", "average pay rate in USD/hr (optional)"),
		url:         fs.String("url", "", "job URL (optional)"),
	}
}

func (f jobFlags) form() workflow.ManualForm {
	return workflow.ManualForm{
		Title:        *f.title,
		Description:  *f.description,
		Skills:       *f.skills,
		ClientRating: *f.rating,
		AvgPayRate:   *f.payRate,
		URL:          *f.url,
	}
}

type analyzeOutput struct {
	ProfileID   int                    `json:"profile_id"`
	Job         model.JobDetails       `json:"job"`
	Analysis    model.AnalysisResponse `json:"analysis"`
	ActionLabel string                 `json:"action_label"`
	Proposal    *model.Proposal        `json:"proposal,omitempty"`
	Draft       *store.Draft           `json:"draft,omitempty"`
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	cf := addClientFlags(fs)
	profileID := fs.Int("profile", 0, "profile id (default from settings)")
	jf := addJobFlags(fs)
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

	st := workflow.New()
	out, err := analyzeManual(context.Background(), env, st, jf.form(), pid)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(out)
	}
	printAnalysis(out)
	return nil
}

func runPropose(args []string) error {
	fs := flag.NewFlagSet("propose", flag.ContinueOnError)
	cf := addClientFlags(fs)
	profileID := fs.Int("profile", 0, "profile id (default from settings)")
	jf := addJobFlags(fs)
	save := fs.Bool("save", false, "write the proposal to the drafts directory")
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

	ctx := context.Background()
	st := workflow.New()
	out, err := analyzeManual(ctx, env, st, jf.form(), pid)
	if err != nil {
		return err
	}

	t, req, ok := st.BeginGenerate(workflow.ManualSlot)
	if !ok {
		return errors.New("analysis is required before generating a proposal")
	}
	env.logger.Info("generate proposal", "profile_id", pid, "slot", t.Slot.String())
	prop, genErr := env.client.GenerateProposal(ctx, req)
	st.CompleteGenerate(t, &prop, genErr)
	slot := st.ManualSlot()
	if genErr != nil {
		return errors.New(slot.ProposalErr)
	}
	out.Proposal = slot.Proposal

	if *save {
		d, err := store.SaveDraft(env.settings.DraftsDir, *slot.Proposal, out.Job.Title, time.Now())
		if err != nil {
			return err
		}
		out.Draft = &d
	}
	if *jsonOut {
		return printJSON(out)
	}
	printAnalysis(out)
	fmt.Println()
	fmt.Printf("proposal #%d (%s)\n\n", out.Proposal.ID, defaultIfEmpty(out.Proposal.ProposalStatus, "Generated"))
	fmt.Println(out.Proposal.ProposalText)
	if out.Draft != nil {
		fmt.Println()
		fmt.Println(kv("saved", out.Draft.Path))
	}
	return nil
}

// analyzeManual runs the manual analysis flow to completion on st.
func analyzeManual(ctx context.Context, env *appEnv, st *workflow.State, form workflow.ManualForm, profileID int) (analyzeOutput, error) {
	t, req, err := st.SubmitManual(form, profileID)
	if err != nil {
		return analyzeOutput{}, err
	}
	env.logger.Info("analyze job", "profile_id", profileID, "title", req.JobTitle)
	resp, analyzeErr := env.client.AnalyzeJob(ctx, req)
	st.CompleteAnalyze(t, &resp, analyzeErr)
	slot := st.ManualSlot()
	if analyzeErr != nil {
		env.logger.Warn("analyze failed", "error", analyzeErr)
		return analyzeOutput{}, errors.New(slot.Err)
	}
	return analyzeOutput{
		ProfileID:   profileID,
		Job:         st.Manual.Job,
		Analysis:    *slot.Analysis,
		ActionLabel: slot.MatchLevel().ActionLabel(),
	}, nil
}

func printAnalysis(out analyzeOutput) {
	a := out.Analysis.Analysis
	fmt.Println(a.MatchLevel.Title())
	fmt.Println(a.MatchLevel.Subtitle())
	fmt.Println()
	fmt.Println(kv("match_level", string(a.MatchLevel)))
	fmt.Println(kv("overall_score", formatPercent(a.OverallMatchScore)))
	fmt.Println(kv("skill_score", formatPercent(a.SkillMatchScore)))
	fmt.Println(kv("matched_skills", joinOrNone(a.MatchedSkills)))
	for _, r := range a.Reasons {
		fmt.Printf("  - %s\n", r)
	}
	if a.Recommendation != "" {
		fmt.Println(kv("recommendation", a.Recommendation))
	}
	fmt.Println(kv("next", out.ActionLabel))
}

func printJobTable(jobs []model.ScrapedJob) {
	for i, j := range jobs {
		fmt.Printf("%d\t%s\trating=%s\tpay=%s\t%s\n", i+1, truncateRunes(j.Title, 48), formatOptionalFloat(j.ClientRating), formatOptionalFloat(j.AvgPayRate), joinOrNone(j.Skills))
	}
}

func printJob(j model.ScrapedJob) {
	fmt.Println(kv("title", j.Title))
	fmt.Println(kv("skills", joinOrNone(j.Skills)))
	fmt.Println(kv("client_rating", formatOptionalFloat(j.ClientRating)))
	fmt.Println(kv("avg_pay_rate", formatOptionalFloat(j.AvgPayRate)))
	fmt.Println(kv("url", defaultIfEmpty(j.URL, "-")))
	if j.ClientName != "" {
		fmt.Println(kv("client", j.ClientName))
	}
	fmt.Println()
	fmt.Println(j.Description)
}

func printJobsUsage() {
	fmt.Println("jobs commands:")
	fmt.Println("  jobs scrape --keywords \"react, node\" [--max-jobs 10] [--category ...] [--json]")
	fmt.Println("  jobs list [--limit 50] [--json]")
	fmt.Println("  jobs clear [--yes]")
	fmt.Println("  jobs scrape-url --url <job-url> [--json]")
	fmt.Println()
	fmt.Println("analysis:")
	fmt.Println("  analyze [--profile <id>] --title <t> --description <d> --skills \"Go, SQL\" [--client-rating 4.8] [--pay-rate 40]")
	fmt.Println("  propose [--profile <id>] <same job flags> [--save]")
}
