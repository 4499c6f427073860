package mockapi

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"jobassist/internal/model"
)

func defaultCatalog() []model.ScrapedJob {
	return []model.ScrapedJob{
		catalogJob("Senior React Developer", "Build a customer dashboard with React and TypeScript.", []string{"React", "TypeScript", "CSS"}, 4.9, 45, "https://jobs.example.com/1", "Web Development"),
		catalogJob("Node.js API Engineer", "Design REST endpoints and background workers.", []string{"Node.js", "PostgreSQL", "Docker"}, 4.6, 40, "https://jobs.example.com/2", "Web Development"),
		catalogJob("Python Data Pipeline", "Move CSV exports into a warehouse nightly.", []string{"Python", "SQL", "Airflow"}, 4.2, 35, "https://jobs.example.com/3", "Data Science"),
		catalogJob("Go Microservice Developer", "Extend a Go service with gRPC and Redis caching.", []string{"Go", "Redis", "Kubernetes"}, 5.0, 60, "https://jobs.example.com/4", "Backend"),
		catalogJob("Full Stack React/Node", "Ship features across a React front end and Node back end.", []string{"React", "Node.js", "MongoDB"}, 3.9, 30, "https://jobs.example.com/5", "Web Development"),
		catalogJob("WordPress Site Fixes", "Patch plugins and tidy theme templates.", []string{"WordPress", "PHP"}, 0, 0, "https://jobs.example.com/6", "CMS"),
		catalogJob("Mobile App in React Native", "Port an existing web app to iOS and Android.", []string{"React Native", "JavaScript"}, 4.4, 50, "https://jobs.example.com/7", "Mobile"),
	}
}

func catalogJob(title, desc string, skills []string, rating, pay float64, url, category string) model.ScrapedJob {
	job := model.ScrapedJob{
		JobDetails: model.JobDetails{
			Title:       title,
			Description: desc,
			Skills:      skills,
			URL:         url,
		},
		ClientName:  "Example Client",
		JobCategory: category,
	}
	if rating > 0 {
		job.ClientRating = &rating
	}
	if pay > 0 {
		job.AvgPayRate = &pay
		job.BudgetRange = fmt.Sprintf("$%.0f/hr", pay)
	}
	return job
}

func matchesKeyword(job model.ScrapedJob, keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" || kw == "latest" {
		return true
	}
	if strings.Contains(strings.ToLower(job.Title), kw) || strings.Contains(strings.ToLower(job.Description), kw) {
		return true
	}
	for _, skill := range job.Skills {
		if strings.Contains(strings.ToLower(skill), kw) {
			return true
		}
	}
	return false
}

func containsURL(jobs []model.ScrapedJob, url string) bool {
	for _, j := range jobs {
		if j.URL == url {
			return true
		}
	}
	return false
}

// wireJob renders a job with either the canonical keys or the scraper's short keys,
// where skills arrive as one comma string and numbers as strings.
func wireJob(job model.ScrapedJob, legacy bool) map[string]any {
	out := map[string]any{
		"client_name":  job.ClientName,
		"budget_range": job.BudgetRange,
		"job_category": job.JobCategory,
	}
	if !legacy {
		out["job_title"] = job.Title
		out["job_description"] = job.Description
		out["required_skills"] = job.Skills
		out["job_url"] = job.URL
		out["client_rating"] = floatOrZero(job.ClientRating)
		out["avg_pay_rate"] = floatOrZero(job.AvgPayRate)
		return out
	}
	out["title"] = job.Title
	out["description"] = job.Description
	out["skills"] = strings.Join(job.Skills, ", ")
	out["url"] = job.URL
	out["client_rating"] = strconv.FormatFloat(floatOrZero(job.ClientRating), 'f', -1, 64)
	out["avg_pay_rate"] = strconv.FormatFloat(floatOrZero(job.AvgPayRate), 'f', -1, 64)
	return out
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// scoreMatch is a deterministic stand-in for the backend analyzer: skill overlap
// drives the score, and the score picks the match level.
func scoreMatch(profile model.Profile, req model.AnalysisRequest) model.AnalysisResult {
	have := map[string]bool{}
	for _, s := range profile.Skills {
		have[strings.ToLower(strings.TrimSpace(s))] = true
	}
	var matched []string
	for _, s := range req.RequiredSkills {
		if have[strings.ToLower(strings.TrimSpace(s))] {
			matched = append(matched, s)
		}
	}
	skillScore := 0.0
	if len(req.RequiredSkills) > 0 {
		skillScore = float64(len(matched)) / float64(len(req.RequiredSkills))
	}
	overall := skillScore
	var reasons []string
	reasons = append(reasons, fmt.Sprintf("Matched %d of %d required skills", len(matched), len(req.RequiredSkills)))
	if req.ClientRating != nil {
		if *req.ClientRating >= 4.5 {
			reasons = append(reasons, "Client is highly rated")
		} else if *req.ClientRating < 3 {
			reasons = append(reasons, "Client rating is low")
			overall -= 0.1
		}
	}
	if req.AvgPayRate != nil && profile.HourlyRate > 0 {
		if *req.AvgPayRate >= profile.HourlyRate {
			reasons = append(reasons, "Pay rate meets your hourly rate")
		} else {
			reasons = append(reasons, "Pay rate is below your hourly rate")
			overall -= 0.05
		}
	}
	overall = math.Max(0, math.Min(1, overall))

	level := model.MatchLow
	switch {
	case overall >= 0.8:
		level = model.MatchExcellent
	case overall >= 0.6:
		level = model.MatchGreat
	case overall >= 0.4:
		level = model.MatchModerate
	}
	result := "FAIL"
	recommendation := "Consider skipping this job or highlighting transferable skills."
	if level != model.MatchLow {
		result = "PASS"
		recommendation = "Apply with a proposal that leads with your matched skills."
	}
	if matched == nil {
		matched = []string{}
	}
	return model.AnalysisResult{
		Result:            result,
		MatchLevel:        level,
		OverallMatchScore: round2(overall),
		SkillMatchScore:   round2(skillScore),
		MatchedSkills:     matched,
		Reasons:           reasons,
		Recommendation:    recommendation,
	}
}

func draftProposal(profile model.Profile, req model.ProposalRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi,\n\nI read your post for %q and would like to help.", req.JobTitle)
	if profile.ExperienceYears > 0 {
		fmt.Fprintf(&b, " I have %d years of experience", profile.ExperienceYears)
		if len(req.RequiredSkills) > 0 {
			fmt.Fprintf(&b, " working with %s", strings.Join(req.RequiredSkills, ", "))
		}
		b.WriteString(".")
	}
	if strings.TrimSpace(profile.Bio) != "" {
		fmt.Fprintf(&b, "\n\n%s", strings.TrimSpace(profile.Bio))
	}
	if profile.HourlyRate > 0 {
		fmt.Fprintf(&b, "\n\nMy rate is $%.0f/hr.", profile.HourlyRate)
	}
	fmt.Fprintf(&b, "\n\nBest,\n%s", profile.Name)
	return b.String()
}
