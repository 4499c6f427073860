package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingTitle       = errors.New("job title is required")
	ErrMissingDescription = errors.New("job description is required")
	ErrMissingSkills      = errors.New("at least one required skill is needed")
)

// JobDetails is the canonical job shape shared by manually entered and scraped jobs.
type JobDetails struct {
	Title        string   `json:"job_title"`
	Description  string   `json:"job_description"`
	Skills       []string `json:"required_skills"`
	ClientRating *float64 `json:"client_rating,omitempty"`
	AvgPayRate   *float64 `json:"avg_pay_rate,omitempty"`
	URL          string   `json:"job_url,omitempty"`
}

func (j JobDetails) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return ErrMissingTitle
	}
	if strings.TrimSpace(j.Description) == "" {
		return ErrMissingDescription
	}
	if len(j.Skills) == 0 {
		return ErrMissingSkills
	}
	return nil
}

func (j JobDetails) AnalysisRequest(freelancerID int) AnalysisRequest {
	return AnalysisRequest{
		JobTitle:       j.Title,
		JobDescription: j.Description,
		RequiredSkills: cloneStrings(j.Skills),
		ClientRating:   j.ClientRating,
		AvgPayRate:     j.AvgPayRate,
		JobURL:         optionalString(j.URL),
		FreelancerID:   freelancerID,
	}
}

// ProposalRequest builds a generate request; the job's average pay rate is sent as the budget.
func (j JobDetails) ProposalRequest(freelancerID int) ProposalRequest {
	return ProposalRequest{
		FreelancerID:   freelancerID,
		JobTitle:       j.Title,
		JobDescription: j.Description,
		RequiredSkills: cloneStrings(j.Skills),
		ClientRating:   j.ClientRating,
		JobBudget:      j.AvgPayRate,
		JobURL:         optionalString(j.URL),
		UseAI:          true,
	}
}

// ScrapedJob is a job returned by the scraping endpoints, normalized on decode.
type ScrapedJob struct {
	JobDetails
	ClientName      string `json:"client_name,omitempty"`
	BudgetRange     string `json:"budget_range,omitempty"`
	ProjectDuration string `json:"project_duration,omitempty"`
	JobCategory     string `json:"job_category,omitempty"`
	PostedDate      string `json:"posted_date,omitempty"`
}

type rawScrapedJob struct {
	JobTitle        string          `json:"job_title"`
	Title           string          `json:"title"`
	JobDescription  string          `json:"job_description"`
	Description     string          `json:"description"`
	RequiredSkills  json.RawMessage `json:"required_skills"`
	Skills          json.RawMessage `json:"skills"`
	ClientRating    json.RawMessage `json:"client_rating"`
	AvgPayRate      json.RawMessage `json:"avg_pay_rate"`
	JobURL          string          `json:"job_url"`
	URL             string          `json:"url"`
	ClientName      string          `json:"client_name"`
	BudgetRange     string          `json:"budget_range"`
	ProjectDuration string          `json:"project_duration"`
	JobCategory     string          `json:"job_category"`
	PostedDate      string          `json:"posted_date"`
}

// UnmarshalJSON accepts both key spellings the scraping API emits (job_title/title,
// job_description/description, required_skills/skills, job_url/url) and numbers sent
// as strings. A zero rating or pay rate is the scraper's "unknown" and decodes to nil.
func (j *ScrapedJob) UnmarshalJSON(data []byte) error {
	var raw rawScrapedJob
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	skills, err := decodeSkills(firstRaw(raw.RequiredSkills, raw.Skills))
	if err != nil {
		return fmt.Errorf("decode scraped job skills: %w", err)
	}
	rating, err := decodeLooseFloat(raw.ClientRating)
	if err != nil {
		return fmt.Errorf("decode client_rating: %w", err)
	}
	payRate, err := decodeLooseFloat(raw.AvgPayRate)
	if err != nil {
		return fmt.Errorf("decode avg_pay_rate: %w", err)
	}

	*j = ScrapedJob{
		JobDetails: JobDetails{
			Title:        firstNonEmpty(raw.JobTitle, raw.Title),
			Description:  firstNonEmpty(raw.JobDescription, raw.Description),
			Skills:       skills,
			ClientRating: nonZero(rating),
			AvgPayRate:   nonZero(payRate),
			URL:          firstNonEmpty(raw.JobURL, raw.URL),
		},
		ClientName:      strings.TrimSpace(raw.ClientName),
		BudgetRange:     strings.TrimSpace(raw.BudgetRange),
		ProjectDuration: strings.TrimSpace(raw.ProjectDuration),
		JobCategory:     strings.TrimSpace(raw.JobCategory),
		PostedDate:      strings.TrimSpace(raw.PostedDate),
	}
	return nil
}

// SkillCount is one [skill, count] pair from the job trends endpoint.
type SkillCount struct {
	Skill string
	Count int
}

func (s *SkillCount) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("skill count: expected [skill, count], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &s.Skill); err != nil {
		return fmt.Errorf("skill count name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &s.Count); err != nil {
		return fmt.Errorf("skill count value: %w", err)
	}
	return nil
}

func (s SkillCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{s.Skill, s.Count})
}

func decodeSkills(raw json.RawMessage) ([]string, error) {
	if isNullRaw(raw) {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanSkills(list), nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, err
	}
	return ParseSkills(text), nil
}

func cleanSkills(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func firstRaw(values ...json.RawMessage) json.RawMessage {
	for _, v := range values {
		if !isNullRaw(v) {
			return v
		}
	}
	return nil
}

func isNullRaw(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func nonZero(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
