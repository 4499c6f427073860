package cli

import "fmt"

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "tui", "ui":
		return runTUI(args[1:])
	case "health":
		return runHealth(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "profiles":
		return runProfiles(args[1:])
	case "experience":
		return runExperience(args[1:])
	case "jobs":
		return runJobs(args[1:])
	case "analyze":
		return runAnalyze(args[1:])
	case "propose":
		return runPropose(args[1:])
	case "proposals":
		return runProposals(args[1:])
	case "analytics":
		return runAnalytics(args[1:])
	case "settings":
		return runSettings(args[1:])
	case "mock-server":
		return runMockServer(args[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("jobassist: terminal client for the freelance job assistant")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  jobassist health")
	fmt.Println("  jobassist profiles add --name <name> --skills \"Go, React\" --hourly-rate 40")
	fmt.Println("  jobassist tui")
	fmt.Println()
	fmt.Println("Interactive:")
	fmt.Println("  tui         dashboard, profiles, job analysis, proposals, analytics")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  health      probe the backend (1 attempt + retries)")
	fmt.Println("  doctor      check config, drafts dir, and backend reachability")
	fmt.Println("  profiles    list/show/add/update/delete freelancer profiles")
	fmt.Println("  experience  list/add/update/delete relevant-experience projects")
	fmt.Println("  jobs        scrape, list, clear, scrape-url")
	fmt.Println("  analyze     analyze one job against a profile")
	fmt.Println("  propose     analyze and generate a proposal for one job")
	fmt.Println("  proposals   list/show/status/save proposals")
	fmt.Println("  analytics   dashboard, stats, trends, export")
	fmt.Println("  settings    show/update client settings")
	fmt.Println("  mock-server run an in-memory backend for offline use")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Use --json on commands for machine-readable output")
	fmt.Println("  - --api-url or JOBASSIST_API_URL overrides the configured backend")
}
