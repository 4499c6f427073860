package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"jobassist/internal/store"
)

// Statuses the backend's proposal tracker recognizes.
var proposalStatuses = []string{"Generated", "Submitted", "Viewed", "Interviewed", "Hired", "Rejected"}

func runProposals(args []string) error {
	if len(args) == 0 {
		printProposalsUsage()
		return nil
	}
	switch args[0] {
	case "list":
		return runProposalsList(args[1:])
	case "show":
		return runProposalsShow(args[1:])
	case "status":
		return runProposalsStatus(args[1:])
	case "save":
		return runProposalsSave(args[1:])
	case "drafts":
		return runProposalsDrafts(args[1:])
	case "help", "-h", "--help":
		printProposalsUsage()
		return nil
	default:
		printProposalsUsage()
		return fmt.Errorf("unknown proposals subcommand %q", args[0])
	}
}

func runProposalsList(args []string) error {
	fs := flag.NewFlagSet("proposals list", flag.ContinueOnError)
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

	list, err := env.client.ListProposals(context.Background(), pid)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("no proposals")
		return nil
	}
	for _, p := range list {
		fmt.Printf("%d\t%s\t%s\n", p.ID, defaultIfEmpty(p.ProposalStatus, "-"), truncateRunes(p.JobTitle, 60))
	}
	return nil
}

func runProposalsShow(args []string) error {
	fs := flag.NewFlagSet("proposals show", flag.ContinueOnError)
	cf := addClientFlags(fs)
	id := fs.Int("id", 0, "proposal id")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("--id is required")
	}
	env, err := cf.open()
	if err != nil {
		return err
	}
	defer env.close()

	p, err := env.client.GetProposal(context.Background(), *id)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(p)
	}
	fmt.Println(kv("id", fmt.Sprint(p.ID)))
	fmt.Println(kv("job", defaultIfEmpty(p.JobTitle, "-")))
	fmt.Println(kv("status", defaultIfEmpty(p.ProposalStatus, "-")))
	if p.ClientResponse != "" {
		fmt.Println(kv("client_response", p.ClientResponse))
	}
	fmt.Println()
	fmt.Println(p.ProposalText)
	return nil
}

func runProposalsStatus(args []string) error {
	fs := flag.NewFlagSet("proposals status", flag.ContinueOnError)
	cf := addClientFlags(fs)
	id := fs.Int("id", 0, "proposal id")
	status := fs.String("status", "", "new status: "+strings.Join(proposalStatuses, "|"))
	response := fs.String("response", "", "client response (optional)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("--id is required")
	}
	next, ok := normalizeProposalStatus(*status)
	if !ok {
		return fmt.Errorf("--status must be one of %s", strings.Join(proposalStatuses, ", "))
	}
	env, err := cf.open()
	if err != nil {
		return err
	}
	defer env.close()

	ack, err := env.client.UpdateProposalStatus(context.Background(), *id, next, strings.TrimSpace(*response))
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(ack)
	}
	fmt.Printf("proposal %d: %s\n", ack.ProposalID, ack.Status)
	return nil
}

func runProposalsSave(args []string) error {
	fs := flag.NewFlagSet("proposals save", flag.ContinueOnError)
	cf := addClientFlags(fs)
	id := fs.Int("id", 0, "proposal id")
	dir := fs.String("dir", "", "drafts directory (default from settings)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("--id is required")
	}
	env, err := cf.open()
	if err != nil {
		return err
	}
	defer env.close()

	p, err := env.client.GetProposal(context.Background(), *id)
	if err != nil {
		return err
	}
	d, err := store.SaveDraft(defaultIfEmpty(*dir, env.settings.DraftsDir), p, p.JobTitle, time.Now())
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(d)
	}
	fmt.Printf("saved proposal %d to %s\n", d.ProposalID, d.Path)
	return nil
}

func runProposalsDrafts(args []string) error {
	fs := flag.NewFlagSet("proposals drafts", flag.ContinueOnError)
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

	paths, err := store.ListDrafts(env.settings.DraftsDir)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(paths)
	}
	if len(paths) == 0 {
		fmt.Printf("no drafts in %s\n", env.settings.DraftsDir)
		return nil
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

func normalizeProposalStatus(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	for _, known := range proposalStatuses {
		if strings.EqualFold(s, known) {
			return known, true
		}
	}
	return "", false
}

func printProposalsUsage() {
	fmt.Println("proposals commands:")
	fmt.Println("  proposals list [--profile <id>] [--json]")
	fmt.Println("  proposals show --id <id> [--json]")
	fmt.Println("  proposals status --id <id> --status Submitted [--response <text>]")
	fmt.Println("  proposals save --id <id> [--dir <drafts-dir>]")
	fmt.Println("  proposals drafts [--json]")
}
