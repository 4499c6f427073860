package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobassist/internal/model"
)

const (
	DefaultBaseURL     = "http://localhost:8000"
	DefaultHealthLimit = 5 * time.Second
	RequestIDHeader    = "X-Request-ID"
)

// Sentinel errors for backend failures.
var (
	ErrBackendUnreachable = errors.New("backend unreachable")
	ErrNotFound           = errors.New("not found")
	ErrBadResponse        = errors.New("unexpected backend response")
)

// StatusError is a non-2xx reply. Detail carries the backend's "detail" field when present.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Msg    string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Msg)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

func (e *StatusError) Detail() string {
	return e.Msg
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Client is the interface for the job-assistant backend.
type Client interface {
	Health(ctx context.Context) error

	ListProfiles(ctx context.Context) ([]model.Profile, error)
	GetProfile(ctx context.Context, id int) (model.Profile, error)
	CreateProfile(ctx context.Context, p model.Profile) (model.Profile, error)
	UpdateProfile(ctx context.Context, id int, p model.Profile) (model.Profile, error)
	DeleteProfile(ctx context.Context, id int) error

	ListExperience(ctx context.Context, profileID int) ([]model.ExperienceProject, error)
	AddExperience(ctx context.Context, profileID int, p model.ExperienceProject) (model.ExperienceProject, error)
	UpdateExperience(ctx context.Context, profileID, projectID int, p model.ExperienceProject) (model.ExperienceProject, error)
	DeleteExperience(ctx context.Context, profileID, projectID int) error

	ScrapeJobs(ctx context.Context, req model.ScrapeRequest) (model.ScrapeResult, error)
	ListScrapedJobs(ctx context.Context, limit int) ([]model.ScrapedJob, error)
	ClearScrapedJobs(ctx context.Context) error
	ScrapeJobURL(ctx context.Context, jobURL string) (model.ScrapedJob, error)
	AnalyzeJob(ctx context.Context, req model.AnalysisRequest) (model.AnalysisResponse, error)

	GenerateProposal(ctx context.Context, req model.ProposalRequest) (model.Proposal, error)
	ListProposals(ctx context.Context, freelancerID int) ([]model.Proposal, error)
	GetProposal(ctx context.Context, id int) (model.Proposal, error)
	UpdateProposalStatus(ctx context.Context, id int, status, clientResponse string) (model.ProposalStatusUpdate, error)

	DashboardStats(ctx context.Context) (model.DashboardStats, error)
	ProfileStats(ctx context.Context, profileID int) (model.ProfileStats, error)
	JobTrends(ctx context.Context) (model.JobTrends, error)
	ExportProfile(ctx context.Context, profileID int) (json.RawMessage, error)
}

// HTTPClient implements Client over the backend's JSON API rooted at <base>/api/v1.
// Analysis and generation calls carry no client timeout; only the health probe is bounded.
type HTTPClient struct {
	baseURL     string
	client      *http.Client
	healthLimit time.Duration
	logger      *slog.Logger
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

func WithHealthTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.healthLimit = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewHTTPClient creates a backend client. baseURL is the server root, e.g. http://localhost:8000.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	base = strings.TrimSuffix(base, "/api/v1")
	c := &HTTPClient{
		baseURL:     base,
		client:      &http.Client{},
		healthLimit: DefaultHealthLimit,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthLimit)
	defer cancel()
	return c.do(ctx, http.MethodGet, c.baseURL+"/health", nil, nil)
}

func (c *HTTPClient) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	var out []model.Profile
	if err := c.do(ctx, http.MethodGet, c.endpoint("/profiles/"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context, id int) (model.Profile, error) {
	var out model.Profile
	err := c.do(ctx, http.MethodGet, c.endpoint("/profiles/%d", id), nil, &out)
	return out, err
}

func (c *HTTPClient) CreateProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	var out model.Profile
	err := c.do(ctx, http.MethodPost, c.endpoint("/profiles/"), p, &out)
	return out, err
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, id int, p model.Profile) (model.Profile, error) {
	var out model.Profile
	err := c.do(ctx, http.MethodPut, c.endpoint("/profiles/%d", id), p, &out)
	return out, err
}

func (c *HTTPClient) DeleteProfile(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("/profiles/%d", id), nil, nil)
}

func (c *HTTPClient) ListExperience(ctx context.Context, profileID int) ([]model.ExperienceProject, error) {
	var out []model.ExperienceProject
	if err := c.do(ctx, http.MethodGet, c.endpoint("/profiles/%d/relevant-experience", profileID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) AddExperience(ctx context.Context, profileID int, p model.ExperienceProject) (model.ExperienceProject, error) {
	var out model.ExperienceProject
	err := c.do(ctx, http.MethodPost, c.endpoint("/profiles/%d/relevant-experience", profileID), p, &out)
	return out, err
}

func (c *HTTPClient) UpdateExperience(ctx context.Context, profileID, projectID int, p model.ExperienceProject) (model.ExperienceProject, error) {
	var out model.ExperienceProject
	err := c.do(ctx, http.MethodPut, c.endpoint("/profiles/%d/relevant-experience/%d", profileID, projectID), p, &out)
	return out, err
}

func (c *HTTPClient) DeleteExperience(ctx context.Context, profileID, projectID int) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("/profiles/%d/relevant-experience/%d", profileID, projectID), nil, nil)
}

// ScrapeJobs accepts both the {jobs, total_count} envelope and a bare job list.
func (c *HTTPClient) ScrapeJobs(ctx context.Context, req model.ScrapeRequest) (model.ScrapeResult, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, c.endpoint("/jobs/scrape"), req, &raw); err != nil {
		return model.ScrapeResult{}, err
	}
	return decodeScrapeResult(raw)
}

func (c *HTTPClient) ListScrapedJobs(ctx context.Context, limit int) ([]model.ScrapedJob, error) {
	u := c.endpoint("/jobs/scraped")
	if limit > 0 {
		u += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var out []model.ScrapedJob
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ClearScrapedJobs(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("/jobs/scraped"), nil, nil)
}

func (c *HTTPClient) ScrapeJobURL(ctx context.Context, jobURL string) (model.ScrapedJob, error) {
	u := c.endpoint("/jobs/scrape-url") + "?" + url.Values{"url": {jobURL}}.Encode()
	var out model.ScrapedJob
	err := c.do(ctx, http.MethodGet, u, nil, &out)
	return out, err
}

func (c *HTTPClient) AnalyzeJob(ctx context.Context, req model.AnalysisRequest) (model.AnalysisResponse, error) {
	var out model.AnalysisResponse
	err := c.do(ctx, http.MethodPost, c.endpoint("/jobs/analyze"), req, &out)
	return out, err
}

func (c *HTTPClient) GenerateProposal(ctx context.Context, req model.ProposalRequest) (model.Proposal, error) {
	var out model.Proposal
	err := c.do(ctx, http.MethodPost, c.endpoint("/proposals/generate"), req, &out)
	return out, err
}

func (c *HTTPClient) ListProposals(ctx context.Context, freelancerID int) ([]model.Proposal, error) {
	u := c.endpoint("/proposals/") + "?" + url.Values{"freelancer_id": {strconv.Itoa(freelancerID)}}.Encode()
	var out []model.Proposal
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetProposal(ctx context.Context, id int) (model.Proposal, error) {
	var out model.Proposal
	err := c.do(ctx, http.MethodGet, c.endpoint("/proposals/%d", id), nil, &out)
	return out, err
}

// UpdateProposalStatus sends status and client_response as query parameters, as the backend expects.
func (c *HTTPClient) UpdateProposalStatus(ctx context.Context, id int, status, clientResponse string) (model.ProposalStatusUpdate, error) {
	params := url.Values{"status": {status}}
	if strings.TrimSpace(clientResponse) != "" {
		params.Set("client_response", clientResponse)
	}
	var out model.ProposalStatusUpdate
	err := c.do(ctx, http.MethodPut, c.endpoint("/proposals/%d", id)+"?"+params.Encode(), nil, &out)
	return out, err
}

func (c *HTTPClient) DashboardStats(ctx context.Context) (model.DashboardStats, error) {
	var out model.DashboardStats
	err := c.do(ctx, http.MethodGet, c.endpoint("/analytics/dashboard"), nil, &out)
	return out, err
}

func (c *HTTPClient) ProfileStats(ctx context.Context, profileID int) (model.ProfileStats, error) {
	var out model.ProfileStats
	err := c.do(ctx, http.MethodGet, c.endpoint("/analytics/profiles/%d/stats", profileID), nil, &out)
	return out, err
}

func (c *HTTPClient) JobTrends(ctx context.Context) (model.JobTrends, error) {
	var out model.JobTrends
	err := c.do(ctx, http.MethodGet, c.endpoint("/analytics/jobs/trends"), nil, &out)
	return out, err
}

func (c *HTTPClient) ExportProfile(ctx context.Context, profileID int) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.endpoint("/analytics/export/%d", profileID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) endpoint(format string, args ...any) string {
	return c.baseURL + "/api/v1" + fmt.Sprintf(format, args...)
}

func (c *HTTPClient) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "method", method, "url", rawURL, "request_id", reqID, "error", err)
		return classifyError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		"method", method,
		"url", rawURL,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: req.URL.Path, Code: resp.StatusCode, Msg: readDetail(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s %s: %v", ErrBadResponse, method, req.URL.Path, err)
	}
	return nil
}

// readDetail extracts FastAPI-style {"detail": "..."} bodies, falling back to trimmed text.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(data, &envelope) == nil && len(envelope.Detail) > 0 {
		var text string
		if json.Unmarshal(envelope.Detail, &text) == nil {
			return strings.TrimSpace(text)
		}
		return strings.TrimSpace(string(envelope.Detail))
	}
	text := strings.TrimSpace(string(data))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func decodeScrapeResult(raw json.RawMessage) (model.ScrapeResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var jobs []model.ScrapedJob
		if err := json.Unmarshal(trimmed, &jobs); err != nil {
			return model.ScrapeResult{}, fmt.Errorf("%w: decoding scraped jobs: %v", ErrBadResponse, err)
		}
		return model.ScrapeResult{Jobs: jobs, TotalCount: len(jobs)}, nil
	}
	var res model.ScrapeResult
	if err := json.Unmarshal(trimmed, &res); err != nil {
		return model.ScrapeResult{}, fmt.Errorf("%w: decoding scrape result: %v", ErrBadResponse, err)
	}
	if res.Jobs == nil {
		res.Jobs = []model.ScrapedJob{}
	}
	return res, nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	return err
}
