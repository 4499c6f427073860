package mockapi

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"jobassist/internal/model"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) listProfiles(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]model.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createProfile(w http.ResponseWriter, r *http.Request) {
	var p model.Profile
	if !decodeBody(w, r, &p) {
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "name is required")
		return
	}
	s.mu.Lock()
	created := s.insertProfileLocked(p)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "profileID")
	if !ok {
		return
	}
	s.mu.Lock()
	p, found := s.profiles[id]
	s.mu.Unlock()
	if !found {
		writeDetail(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "profileID")
	if !ok {
		return
	}
	var p model.Profile
	if !decodeBody(w, r, &p) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, found := s.profiles[id]
	if !found {
		writeDetail(w, http.StatusNotFound, "Profile not found")
		return
	}
	p.ID = id
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = s.stamp()
	if p.AvailabilityStatus == "" {
		p.AvailabilityStatus = current.AvailabilityStatus
	}
	s.profiles[id] = p
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "profileID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.profiles[id]; !found {
		writeDetail(w, http.StatusNotFound, "Profile not found")
		return
	}
	delete(s.profiles, id)
	delete(s.experience, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile deleted successfully"})
}

func (s *Server) listExperience(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "profileID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.profiles[id]; !found {
		writeDetail(w, http.StatusNotFound, "Profile not found")
		return
	}
	out := append([]model.ExperienceProject{}, s.experience[id]...)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addExperience(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "profileID")
	if !ok {
		return
	}
	var p model.ExperienceProject
	if !decodeBody(w, r, &p) {
		return
	}
	if strings.TrimSpace(p.ProjectTitle) == "" || strings.TrimSpace(p.ProjectDescription) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "project_title and project_description are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.profiles[id]; !found {
		writeDetail(w, http.StatusNotFound, "Profile not found")
		return
	}
	p.ID = s.allocID()
	p.FreelancerID = id
	p.CreatedAt = s.stamp()
	s.experience[id] = append(s.experience[id], p)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateExperience(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "profileID")
	if !ok {
		return
	}
	projectID, ok := pathInt(w, r, "projectID")
	if !ok {
		return
	}
	var p model.ExperienceProject
	if !decodeBody(w, r, &p) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.profiles[id]; !found {
		writeDetail(w, http.StatusNotFound, "Profile not found")
		return
	}
	projects := s.experience[id]
	for i := range projects {
		if projects[i].ID != projectID {
			continue
		}
		p.ID = projectID
		p.FreelancerID = id
		p.CreatedAt = projects[i].CreatedAt
		projects[i] = p
		writeJSON(w, http.StatusOK, p)
		return
	}
	writeDetail(w, http.StatusNotFound, "Updated project not found")
}

func (s *Server) deleteExperience(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "profileID")
	if !ok {
		return
	}
	projectID, ok := pathInt(w, r, "projectID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.profiles[id]; !found {
		writeDetail(w, http.StatusNotFound, "Profile not found")
		return
	}
	projects := s.experience[id]
	for i := range projects {
		if projects[i].ID == projectID {
			s.experience[id] = append(projects[:i:i], projects[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Project deleted successfully"})
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Project not found")
}

func (s *Server) scrapeJobs(w http.ResponseWriter, r *http.Request) {
	var req model.ScrapeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	keywords := model.ParseKeywords(strings.Join(req.Keywords, ","))
	if len(keywords) == 0 {
		keywords = []string{"latest"}
	}
	limit := req.MaxJobsPerKeyword
	if limit <= 0 {
		limit = 10
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	var found []model.ScrapedJob
	for _, kw := range keywords {
		n := 0
		for _, job := range s.catalog {
			if n >= limit {
				break
			}
			if !matchesKeyword(job, kw) || seen[job.URL] {
				continue
			}
			seen[job.URL] = true
			found = append(found, job)
			n++
		}
	}

	added := 0
	for _, job := range found {
		if !containsURL(s.scraped, job.URL) {
			s.scraped = append(s.scraped, job)
			added++
		}
	}

	// Alternate between the two key spellings the real scraper emits.
	wire := make([]map[string]any, 0, len(found))
	for i, job := range found {
		wire = append(wire, wireJob(job, i%2 == 1))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     fmt.Sprintf("Scraped %d jobs, added %d new", len(found), added),
		"jobs":        wire,
		"added_count": added,
		"total_count": len(found),
	})
}

func (s *Server) listScraped(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeDetail(w, http.StatusUnprocessableEntity, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	s.mu.Lock()
	jobs := append([]model.ScrapedJob{}, s.scraped...)
	s.mu.Unlock()
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	wire := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		wire = append(wire, wireJob(job, false))
	}
	writeJSON(w, http.StatusOK, wire)
}

func (s *Server) clearScraped(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.scraped = nil
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "All scraped jobs cleared successfully"})
}

func (s *Server) scrapeURL(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("url"))
	if target == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "url is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.catalog {
		if job.URL == target {
			writeJSON(w, http.StatusOK, wireJob(job, false))
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Could not scrape job from URL")
}

func (s *Server) analyzeJob(w http.ResponseWriter, r *http.Request) {
	var req model.AnalysisRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, found := s.profiles[req.FreelancerID]
	if !found {
		writeDetail(w, http.StatusNotFound, "Freelancer profile not found")
		return
	}
	s.analyzed++
	writeJSON(w, http.StatusOK, model.AnalysisResponse{
		ID:       s.allocID(),
		Analysis: scoreMatch(profile, req),
	})
}

func (s *Server) generateProposal(w http.ResponseWriter, r *http.Request) {
	var req model.ProposalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, found := s.profiles[req.FreelancerID]
	if !found {
		writeDetail(w, http.StatusNotFound, "Freelancer profile not found")
		return
	}
	p := model.Proposal{
		ID:             s.allocID(),
		FreelancerID:   profile.ID,
		JobTitle:       req.JobTitle,
		ProposalText:   draftProposal(profile, req),
		ProposalStatus: "Generated",
		JobBudget:      req.JobBudget,
		ClientRating:   req.ClientRating,
		CreatedAt:      s.stamp(),
	}
	if req.JobURL != nil {
		p.JobURL = *req.JobURL
	}
	s.proposals = append(s.proposals, p)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) listProposals(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("freelancer_id"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "freelancer_id is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Proposal{}
	for _, p := range s.proposals {
		if p.FreelancerID == id {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "proposalID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.proposals {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Proposal not found")
}

func (s *Server) updateProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "proposalID")
	if !ok {
		return
	}
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "status is required")
		return
	}
	clientResponse := r.URL.Query().Get("client_response")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.proposals {
		if s.proposals[i].ID != id {
			continue
		}
		s.proposals[i].ProposalStatus = status
		s.proposals[i].ClientResponse = clientResponse
		if status == "Submitted" && s.proposals[i].SubmissionDate == "" {
			s.proposals[i].SubmissionDate = s.stamp()
		}
		if clientResponse != "" {
			s.proposals[i].ResponseDate = s.stamp()
		}
		writeJSON(w, http.StatusOK, model.ProposalStatusUpdate{
			Message:        "Proposal status updated",
			ProposalID:     id,
			Status:         status,
			ClientResponse: clientResponse,
		})
		return
	}
	writeDetail(w, http.StatusNotFound, "Proposal not found")
}

func (s *Server) dashboard(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, model.DashboardStats{
		TotalProfiles:           len(s.profiles),
		TotalJobsScraped:        len(s.scraped),
		TotalJobsAnalyzed:       s.analyzed,
		TotalProposalsGenerated: len(s.proposals),
	})
}

func (s *Server) profileStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "profileID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, found := s.profiles[id]
	if !found {
		writeDetail(w, http.StatusNotFound, "Profile not found")
		return
	}
	var recent []model.Proposal
	for i := len(s.proposals) - 1; i >= 0 && len(recent) < 5; i-- {
		if s.proposals[i].FreelancerID == id {
			recent = append(recent, s.proposals[i])
		}
	}
	total := 0
	for _, p := range s.proposals {
		if p.FreelancerID == id {
			total++
		}
	}
	writeJSON(w, http.StatusOK, model.ProfileStats{
		Profile: profile,
		Stats: model.ProfileStatTotals{
			TotalProjects:   len(s.experience[id]),
			TotalProposals:  total,
			ExperienceYears: profile.ExperienceYears,
		},
		RecentProposals: recent,
	})
}

func (s *Server) jobTrends(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.scraped) == 0 {
		writeJSON(w, http.StatusOK, model.JobTrends{Message: "No job data available"})
		return
	}
	trends := model.JobTrends{
		TotalJobsAnalyzed: len(s.scraped),
		JobCategories:     map[string]int{},
		RecentJobsCount:   len(s.scraped),
	}
	skillCounts := map[string]int{}
	var paySum, ratingSum float64
	var payN, ratingN int
	for _, job := range s.scraped {
		if job.JobCategory != "" {
			trends.JobCategories[job.JobCategory]++
		}
		for _, skill := range job.Skills {
			skillCounts[skill]++
		}
		if job.AvgPayRate != nil {
			paySum += *job.AvgPayRate
			payN++
		}
		if job.ClientRating != nil {
			ratingSum += *job.ClientRating
			ratingN++
		}
	}
	if payN > 0 {
		trends.AvgPayRate = round2(paySum / float64(payN))
	}
	if ratingN > 0 {
		trends.AvgClientRating = round2(ratingSum / float64(ratingN))
	}
	for skill, n := range skillCounts {
		trends.TopSkills = append(trends.TopSkills, model.SkillCount{Skill: skill, Count: n})
	}
	sort.Slice(trends.TopSkills, func(i, j int) bool {
		a, b := trends.TopSkills[i], trends.TopSkills[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Skill < b.Skill
	})
	if len(trends.TopSkills) > 10 {
		trends.TopSkills = trends.TopSkills[:10]
	}
	writeJSON(w, http.StatusOK, trends)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "profileID")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, found := s.profiles[id]
	if !found {
		writeDetail(w, http.StatusNotFound, "Profile not found")
		return
	}
	projects := append([]model.ExperienceProject{}, s.experience[id]...)
	proposals := []model.Proposal{}
	for _, p := range s.proposals {
		if p.FreelancerID == id {
			proposals = append(proposals, p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profile":         profile,
		"past_projects":   projects,
		"proposals":       proposals,
		"export_date":     s.stamp(),
		"total_projects":  len(projects),
		"total_proposals": len(proposals),
	})
}

func (s *Server) insertProfileLocked(p model.Profile) model.Profile {
	p.ID = s.allocID()
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.AvailabilityStatus == "" {
		p.AvailabilityStatus = "available"
	}
	p.CreatedAt = s.stamp()
	p.UpdatedAt = p.CreatedAt
	s.profiles[p.ID] = p
	return p
}

func (s *Server) allocID() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) stamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func pathInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, key))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, key+" must be an integer")
		return 0, false
	}
	return n, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
