package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobassist/internal/model"
)

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestFailInjectsDetail(t *testing.T) {
	s := New()
	s.Fail("/api/v1/jobs/analyze", http.StatusInternalServerError, "model offline")

	w := do(t, s, http.MethodPost, "/api/v1/jobs/analyze", model.AnalysisRequest{})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"model offline"}`, w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	s.Fail("/api/v1/jobs/analyze", 0, "")
	w = do(t, s, http.MethodPost, "/api/v1/jobs/analyze", model.AnalysisRequest{FreelancerID: 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 2, s.CallCount(http.MethodPost, "/api/v1/jobs/analyze"))
}

func TestScrapeAlternatesKeySpellings(t *testing.T) {
	s := New()
	w := do(t, s, http.MethodPost, "/api/v1/jobs/scrape", model.ScrapeRequest{Keywords: []string{"react"}, MaxJobsPerKeyword: 5})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Jobs       []map[string]any `json:"jobs"`
		TotalCount int              `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.GreaterOrEqual(t, len(body.Jobs), 2)
	assert.Contains(t, body.Jobs[0], "job_title")
	assert.Contains(t, body.Jobs[1], "title")
	assert.IsType(t, "", body.Jobs[1]["skills"])
}

func TestScrapeRespectsPerKeywordLimit(t *testing.T) {
	s := New()
	w := do(t, s, http.MethodPost, "/api/v1/jobs/scrape", model.ScrapeRequest{MaxJobsPerKeyword: 2})
	require.Equal(t, http.StatusOK, w.Code)

	var res model.ScrapeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.Jobs, 2)
	assert.Equal(t, 2, res.AddedCount)
}

func TestScoreMatchLevels(t *testing.T) {
	profile := model.Profile{Skills: []string{"react", "Node.js"}}
	cases := []struct {
		skills []string
		want   model.MatchLevel
	}{
		{[]string{"React", "Node.js"}, model.MatchExcellent},
		{[]string{"React", "Node.js", "CSS"}, model.MatchGreat},
		{[]string{"React", "Go"}, model.MatchModerate},
		{[]string{"PHP"}, model.MatchLow},
	}
	for _, tc := range cases {
		got := scoreMatch(profile, model.AnalysisRequest{RequiredSkills: tc.skills})
		assert.Equal(t, tc.want, got.MatchLevel, "skills %v", tc.skills)
	}
}

func TestListProposalsRequiresFreelancer(t *testing.T) {
	s := New()
	w := do(t, s, http.MethodGet, "/api/v1/proposals/", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGeneratedProposalUsesClock(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return fixed }))
	p := s.SeedProfile(model.Profile{Name: "Ada"})

	w := do(t, s, http.MethodPost, "/api/v1/proposals/generate", model.ProposalRequest{FreelancerID: p.ID, JobTitle: "Go API"})
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Proposal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "2024-03-01T09:30:00", got.CreatedAt)
	assert.Equal(t, "Generated", got.ProposalStatus)
}
