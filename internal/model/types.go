package model

// Profile is a freelancer profile as stored by the backend.
type Profile struct {
	ID                 int      `json:"id,omitempty"`
	Name               string   `json:"name"`
	Email              string   `json:"email,omitempty"`
	HourlyRate         float64  `json:"hourly_rate"`
	Skills             []string `json:"skills"`
	ExperienceYears    int      `json:"experience_years"`
	Bio                string   `json:"bio,omitempty"`
	PortfolioURL       string   `json:"portfolio_url,omitempty"`
	GithubURL          string   `json:"github_url,omitempty"`
	LinkedinURL        string   `json:"linkedin_url,omitempty"`
	RelevantExperience string   `json:"relevant_experience,omitempty"`
	Timezone           string   `json:"timezone,omitempty"`
	AvailabilityStatus string   `json:"availability_status,omitempty"`
	CreatedAt          string   `json:"created_at,omitempty"`
	UpdatedAt          string   `json:"updated_at,omitempty"`
}

// ExperienceProject is a relevant-experience entry attached to a profile.
type ExperienceProject struct {
	ID                 int      `json:"id,omitempty"`
	FreelancerID       int      `json:"freelancer_id,omitempty"`
	ProjectTitle       string   `json:"project_title"`
	ProjectDescription string   `json:"project_description"`
	ProjectURL         string   `json:"project_url,omitempty"`
	CompanyName        string   `json:"company_name,omitempty"`
	ProjectType        string   `json:"project_type,omitempty"`
	TechnologiesUsed   []string `json:"technologies_used,omitempty"`
	KeyAchievements    string   `json:"key_achievements,omitempty"`
	ProjectDuration    string   `json:"project_duration,omitempty"`
	CompletionDate     string   `json:"completion_date,omitempty"`
	CreatedAt          string   `json:"created_at,omitempty"`
}

type AnalysisRequest struct {
	JobTitle       string   `json:"job_title"`
	JobDescription string   `json:"job_description"`
	RequiredSkills []string `json:"required_skills"`
	ClientRating   *float64 `json:"client_rating"`
	AvgPayRate     *float64 `json:"avg_pay_rate"`
	JobURL         *string  `json:"job_url"`
	FreelancerID   int      `json:"freelancer_id"`
}

// AnalysisResult is the backend's verdict for one profile/job pair. Read-only.
type AnalysisResult struct {
	Result            string     `json:"result,omitempty"`
	MatchLevel        MatchLevel `json:"match_level"`
	OverallMatchScore float64    `json:"overall_match_score"`
	SkillMatchScore   float64    `json:"skill_match_score"`
	MatchedSkills     []string   `json:"matched_skills"`
	Reasons           []string   `json:"reasons"`
	Recommendation    string     `json:"recommendation,omitempty"`
}

// AnalysisResponse wraps the result returned by POST /jobs/analyze.
type AnalysisResponse struct {
	ID       int            `json:"id"`
	Analysis AnalysisResult `json:"analysis"`
}

type ProposalRequest struct {
	FreelancerID   int      `json:"freelancer_id"`
	JobTitle       string   `json:"job_title"`
	JobDescription string   `json:"job_description"`
	RequiredSkills []string `json:"required_skills"`
	ClientRating   *float64 `json:"client_rating"`
	JobBudget      *float64 `json:"job_budget"`
	JobURL         *string  `json:"job_url"`
	UseAI          bool     `json:"use_ai"`
}

type Proposal struct {
	ID             int      `json:"id"`
	FreelancerID   int      `json:"freelancer_id,omitempty"`
	JobTitle       string   `json:"job_title,omitempty"`
	JobURL         string   `json:"job_url,omitempty"`
	ProposalText   string   `json:"proposal_text"`
	ProposalStatus string   `json:"proposal_status,omitempty"`
	ClientResponse string   `json:"client_response,omitempty"`
	SubmissionDate string   `json:"submission_date,omitempty"`
	ResponseDate   string   `json:"response_date,omitempty"`
	JobBudget      *float64 `json:"job_budget,omitempty"`
	ClientRating   *float64 `json:"client_rating,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
}

// ProposalStatusUpdate is the acknowledgement of PUT /proposals/{id}.
type ProposalStatusUpdate struct {
	Message        string `json:"message"`
	ProposalID     int    `json:"proposal_id"`
	Status         string `json:"status"`
	ClientResponse string `json:"client_response,omitempty"`
}

type ScrapeRequest struct {
	Keywords          []string `json:"keywords"`
	MaxJobsPerKeyword int      `json:"max_jobs_per_keyword"`
	CategoryFilter    string   `json:"category_filter,omitempty"`
}

type ScrapeResult struct {
	Message    string       `json:"message,omitempty"`
	Jobs       []ScrapedJob `json:"jobs"`
	AddedCount int          `json:"added_count,omitempty"`
	TotalCount int          `json:"total_count"`
}

type DashboardStats struct {
	TotalProfiles           int `json:"total_profiles"`
	TotalJobsScraped        int `json:"total_jobs_scraped"`
	TotalJobsAnalyzed       int `json:"total_jobs_analyzed"`
	TotalProposalsGenerated int `json:"total_proposals_generated"`
}

type ProfileStats struct {
	Profile         Profile           `json:"profile"`
	Stats           ProfileStatTotals `json:"stats"`
	RecentProposals []Proposal        `json:"recent_proposals"`
}

type ProfileStatTotals struct {
	TotalProjects    int     `json:"total_projects"`
	TotalProposals   int     `json:"total_proposals"`
	AvgProjectRating float64 `json:"avg_project_rating"`
	TotalEarnings    float64 `json:"total_earnings"`
	ExperienceYears  int     `json:"experience_years"`
}

type JobTrends struct {
	Message           string         `json:"message,omitempty"`
	TotalJobsAnalyzed int            `json:"total_jobs_analyzed"`
	JobCategories     map[string]int `json:"job_categories,omitempty"`
	AvgPayRate        float64        `json:"avg_pay_rate"`
	AvgClientRating   float64        `json:"avg_client_rating"`
	TopSkills         []SkillCount   `json:"top_skills,omitempty"`
	RecentJobsCount   int            `json:"recent_jobs_count"`
}
