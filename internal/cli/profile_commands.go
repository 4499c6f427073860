package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"jobassist/internal/model"
)

func runProfiles(args []string) error {
	if len(args) == 0 {
		printProfilesUsage()
		return nil
	}
	switch args[0] {
	case "list":
		return runProfilesList(args[1:])
	case "show":
		return runProfilesShow(args[1:])
	case "add":
		return runProfilesAdd(args[1:])
	case "update":
		return runProfilesUpdate(args[1:])
	case "delete":
		return runProfilesDelete(args[1:])
	case "help", "-h", "--help":
		printProfilesUsage()
		return nil
	default:
		printProfilesUsage()
		return fmt.Errorf("unknown profiles subcommand %q", args[0])
	}
}

func runProfilesList(args []string) error {
	fs := flag.NewFlagSet("profiles list", flag.ContinueOnError)
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

	profiles, err := env.client.ListProfiles(context.Background())
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(profiles)
	}
	if len(profiles) == 0 {
		fmt.Println("no profiles")
		return nil
	}
	for _, p := range profiles {
		fmt.Printf("%d\t%s\t$%s/hr\t%s\n", p.ID, p.Name, formatFloat(p.HourlyRate), joinOrNone(p.Skills))
	}
	return nil
}

func runProfilesShow(args []string) error {
	fs := flag.NewFlagSet("profiles show", flag.ContinueOnError)
	cf := addClientFlags(fs)
	id := fs.Int("id", 0, "profile id")
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

	p, err := env.client.GetProfile(context.Background(), *id)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(p)
	}
	printProfile(p)
	return nil
}

// profileFlags binds every editable profile field. Only flags the user actually set
// are applied, so update can patch a single field.
type profileFlags struct {
	fs           *flag.FlagSet
	name         *string
	email        *string
	hourlyRate   *float64
	skills       *string
	experience   *int
	bio          *string
	portfolio    *string
	github       *string
	linkedin     *string
	timezone     *string
	availability *string
}

func addProfileFlags(fs *flag.FlagSet) profileFlags {
	return profileFlags{
		fs:           fs,
		name:         fs.String("name", "", "display name"),
		email:        fs.String("email", "", "contact email"),
		hourlyRate:   fs.Float64("hourly-rate", 0, "hourly rate in USD"),
		skills:       fs.String("skills", "", "comma-separated skills"),
		experience:   fs.Int("experience-years", 0, "years of experience"),
		bio:          fs.String("bio", "", "short bio"),
		portfolio:    fs.String("portfolio-url", "", "portfolio URL"),
		github:       fs.String("github-url", "", "GitHub URL"),
		linkedin:     fs.String("linkedin-url", "", "LinkedIn URL"),
		timezone:     fs.String("timezone", "", "timezone"),
		availability: fs.String("availability", "", "availability status"),
	}
}

func (f profileFlags) apply(p model.Profile) (model.Profile, error) {
	var err error
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			p.Name = strings.TrimSpace(*f.name)
		case "email":
			p.Email = strings.TrimSpace(*f.email)
		case "hourly-rate":
			if *f.hourlyRate < 0 {
				err = errors.New("--hourly-rate must be >= 0")
			}
			p.HourlyRate = *f.hourlyRate
		case "skills":
			p.Skills = model.ParseSkills(*f.skills)
		case "experience-years":
			if *f.experience < 0 {
				err = errors.New("--experience-years must be >= 0")
			}
			p.ExperienceYears = *f.experience
		case "bio":
			p.Bio = strings.TrimSpace(*f.bio)
		case "portfolio-url":
			p.PortfolioURL = strings.TrimSpace(*f.portfolio)
		case "github-url":
			p.GithubURL = strings.TrimSpace(*f.github)
		case "linkedin-url":
			p.LinkedinURL = strings.TrimSpace(*f.linkedin)
		case "timezone":
			p.Timezone = strings.TrimSpace(*f.timezone)
		case "availability":
			p.AvailabilityStatus = strings.TrimSpace(*f.availability)
		}
	})
	return p, err
}

func runProfilesAdd(args []string) error {
	fs := flag.NewFlagSet("profiles add", flag.ContinueOnError)
	cf := addClientFlags(fs)
	pf := addProfileFlags(fs)
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := pf.apply(model.Profile{Skills: []string{}})
	if err != nil {
		return err
	}
	if p.Name == "" {
		return errors.New("--name is required")
	}
	env, err := cf.open()
	if err != nil {
		return err
	}
	defer env.close()

	created, err := env.client.CreateProfile(context.Background(), p)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(created)
	}
	fmt.Printf("created profile %s\n", profileLabel(created))
	return nil
}

func runProfilesUpdate(args []string) error {
	fs := flag.NewFlagSet("profiles update", flag.ContinueOnError)
	cf := addClientFlags(fs)
	id := fs.Int("id", 0, "profile id")
	pf := addProfileFlags(fs)
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

	ctx := context.Background()
	current, err := env.client.GetProfile(ctx, *id)
	if err != nil {
		return err
	}
	next, err := pf.apply(current)
	if err != nil {
		return err
	}
	if strings.TrimSpace(next.Name) == "" {
		return errors.New("--name cannot be empty")
	}
	updated, err := env.client.UpdateProfile(ctx, *id, next)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(updated)
	}
	fmt.Printf("updated profile %s\n", profileLabel(updated))
	return nil
}

func runProfilesDelete(args []string) error {
	fs := flag.NewFlagSet("profiles delete", flag.ContinueOnError)
	cf := addClientFlags(fs)
	id := fs.Int("id", 0, "profile id")
	yes := fs.Bool("yes", false, "skip confirmation")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("--id is required")
	}
	if !*yes {
		ok, err := promptConfirm(fmt.Sprintf("Delete profile %d? [y/N]: ", *id))
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

	if err := env.client.DeleteProfile(context.Background(), *id); err != nil {
		return err
	}
	fmt.Printf("deleted profile %d\n", *id)
	return nil
}

func printProfile(p model.Profile) {
	fmt.Println(kv("id", fmt.Sprint(p.ID)))
	fmt.Println(kv("name", p.Name))
	fmt.Println(kv("email", defaultIfEmpty(p.Email, "-")))
	fmt.Println(kv("hourly_rate", formatFloat(p.HourlyRate)))
	fmt.Println(kv("skills", joinOrNone(p.Skills)))
	fmt.Println(kv("experience_years", fmt.Sprint(p.ExperienceYears)))
	fmt.Println(kv("availability", defaultIfEmpty(p.AvailabilityStatus, "-")))
	if p.Bio != "" {
		fmt.Println(kv("bio", p.Bio))
	}
}

func runExperience(args []string) error {
	if len(args) == 0 {
		printExperienceUsage()
		return nil
	}
	switch args[0] {
	case "list":
		return runExperienceList(args[1:])
	case "add":
		return runExperienceAdd(args[1:])
	case "update":
		return runExperienceUpdate(args[1:])
	case "delete":
		return runExperienceDelete(args[1:])
	case "help", "-h", "--help":
		printExperienceUsage()
		return nil
	default:
		printExperienceUsage()
		return fmt.Errorf("unknown experience subcommand %q", args[0])
	}
}

func runExperienceList(args []string) error {
	fs := flag.NewFlagSet("experience list", flag.ContinueOnError)
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

	projects, err := env.client.ListExperience(context.Background(), pid)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(projects)
	}
	if len(projects) == 0 {
		fmt.Println("no relevant experience")
		return nil
	}
	for _, p := range projects {
		fmt.Printf("%d\t%s\t%s\n", p.ID, p.ProjectTitle, joinOrNone(p.TechnologiesUsed))
	}
	return nil
}

type experienceFlags struct {
	fs           *flag.FlagSet
	title        *string
	description  *string
	url          *string
	company      *string
	projectType  *string
	technologies *string
	achievements *string
	duration     *string
	completed    *string
}

func addExperienceFlags(fs *flag.FlagSet) experienceFlags {
	return experienceFlags{
		fs:           fs,
		title:        fs.String("title", "", "project title"),
		description:  fs.String("description", "", "project description"),
		url:          fs.String("url", "", "project URL"),
		company:      fs.String("company", "", "company name"),
		projectType:  fs.String("type", "", "project type"),
		technologies: fs.String("technologies", "", "comma-separated technologies"),
		achievements: fs.String("achievements", "", "key achievements"),
		duration:     fs.String("duration", "", "project duration"),
		completed:    fs.String("completed", "", "completion date"),
	}
}

func (f experienceFlags) apply(p model.ExperienceProject) model.ExperienceProject {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "title":
			p.ProjectTitle = strings.TrimSpace(*f.title)
		case "description":
			p.ProjectDescription = strings.TrimSpace(*f.description)
		case "url":
			p.ProjectURL = strings.TrimSpace(*f.url)
		case "company":
			p.CompanyName = strings.TrimSpace(*f.company)
		case "type":
			p.ProjectType = strings.TrimSpace(*f.projectType)
		case "technologies":
			p.TechnologiesUsed = model.ParseSkills(*f.technologies)
		case "achievements":
			p.KeyAchievements = strings.TrimSpace(*f.achievements)
		case "duration":
			p.ProjectDuration = strings.TrimSpace(*f.duration)
		case "completed":
			p.CompletionDate = strings.TrimSpace(*f.completed)
		}
	})
	return p
}

func runExperienceAdd(args []string) error {
	fs := flag.NewFlagSet("experience add", flag.ContinueOnError)
	cf := addClientFlags(fs)
	profileID := fs.Int("profile", 0, "profile id (default from settings)")
	ef := addExperienceFlags(fs)
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	project := ef.apply(model.ExperienceProject{})
	if project.ProjectTitle == "" || project.ProjectDescription == "" {
		return errors.New("--title and --description are required")
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

	added, err := env.client.AddExperience(context.Background(), pid, project)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(added)
	}
	fmt.Printf("added experience %d to profile %d\n", added.ID, pid)
	return nil
}

func runExperienceUpdate(args []string) error {
	fs := flag.NewFlagSet("experience update", flag.ContinueOnError)
	cf := addClientFlags(fs)
	profileID := fs.Int("profile", 0, "profile id (default from settings)")
	id := fs.Int("id", 0, "experience project id")
	ef := addExperienceFlags(fs)
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
	pid, err := env.profileID(*profileID)
	if err != nil {
		return err
	}

	ctx := context.Background()
	projects, err := env.client.ListExperience(ctx, pid)
	if err != nil {
		return err
	}
	var current *model.ExperienceProject
	for i := range projects {
		if projects[i].ID == *id {
			current = &projects[i]
			break
		}
	}
	if current == nil {
		return fmt.Errorf("experience %d not found on profile %d", *id, pid)
	}
	updated, err := env.client.UpdateExperience(ctx, pid, *id, ef.apply(*current))
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(updated)
	}
	fmt.Printf("updated experience %d\n", updated.ID)
	return nil
}

func runExperienceDelete(args []string) error {
	fs := flag.NewFlagSet("experience delete", flag.ContinueOnError)
	cf := addClientFlags(fs)
	profileID := fs.Int("profile", 0, "profile id (default from settings)")
	id := fs.Int("id", 0, "experience project id")
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
	pid, err := env.profileID(*profileID)
	if err != nil {
		return err
	}
	if err := env.client.DeleteExperience(context.Background(), pid, *id); err != nil {
		return err
	}
	fmt.Printf("deleted experience %d\n", *id)
	return nil
}

func printProfilesUsage() {
	fmt.Println("profiles commands:")
	fmt.Println("  jobassist profiles list [--json]")
	fmt.Println("  jobassist profiles show --id <id> [--json]")
	fmt.Println("  jobassist profiles add --name <name> [--skills \"Go, React\"] [--hourly-rate 40] [--experience-years 5]")
	fmt.Println("  jobassist profiles update --id <id> [--name ...] [--skills ...] [--bio ...]")
	fmt.Println("  jobassist profiles delete --id <id> [--yes]")
}

func printExperienceUsage() {
	fmt.Println("experience commands:")
	fmt.Println("  jobassist experience list [--profile <id>] [--json]")
	fmt.Println("  jobassist experience add [--profile <id>] --title <title> --description <text> [--technologies \"Go, Redis\"]")
	fmt.Println("  jobassist experience update [--profile <id>] --id <id> [--title ...] [--achievements ...]")
	fmt.Println("  jobassist experience delete [--profile <id>] --id <id>")
}
