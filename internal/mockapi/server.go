// Package mockapi is an in-memory stand-in for the job-assistant backend, used by
// tests and by the mock-server command for offline use.
package mockapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"jobassist/internal/model"
)

// Call is one request observed by the server.
type Call struct {
	Method    string
	Path      string
	Query     string
	RequestID string
}

type failure struct {
	status int
	detail string
}

type Server struct {
	mu         sync.Mutex
	logger     *slog.Logger
	now        func() time.Time
	profiles   map[int]model.Profile
	experience map[int][]model.ExperienceProject
	proposals  []model.Proposal
	scraped    []model.ScrapedJob
	catalog    []model.ScrapedJob
	analyzed   int
	nextID     int
	calls      []Call
	failures   map[string]failure
	delays     map[string]time.Duration
	handler    http.Handler
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCatalog replaces the jobs returned by scrape requests.
func WithCatalog(jobs []model.ScrapedJob) Option {
	return func(s *Server) {
		s.catalog = append([]model.ScrapedJob(nil), jobs...)
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
		profiles:   map[int]model.Profile{},
		experience: map[int][]model.ExperienceProject{},
		catalog:    defaultCatalog(),
		nextID:     1,
		failures:   map[string]failure{},
		delays:     map[string]time.Duration{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recovery)
	r.Use(s.record)

	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", s.listProfiles)
			r.Post("/", s.createProfile)
			r.Get("/{profileID}", s.getProfile)
			r.Put("/{profileID}", s.updateProfile)
			r.Delete("/{profileID}", s.deleteProfile)
			r.Get("/{profileID}/relevant-experience", s.listExperience)
			r.Post("/{profileID}/relevant-experience", s.addExperience)
			r.Put("/{profileID}/relevant-experience/{projectID}", s.updateExperience)
			r.Delete("/{profileID}/relevant-experience/{projectID}", s.deleteExperience)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/scrape", s.scrapeJobs)
			r.Get("/scraped", s.listScraped)
			r.Delete("/scraped", s.clearScraped)
			r.Get("/scrape-url", s.scrapeURL)
			r.Post("/analyze", s.analyzeJob)
		})

		r.Route("/proposals", func(r chi.Router) {
			r.Post("/generate", s.generateProposal)
			r.Get("/", s.listProposals)
			r.Get("/{proposalID}", s.getProposal)
			r.Put("/{proposalID}", s.updateProposal)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dashboard", s.dashboard)
			r.Get("/profiles/{profileID}/stats", s.profileStats)
			r.Get("/jobs/trends", s.jobTrends)
			r.Get("/export/{profileID}", s.export)
		})
	})
	return r
}

// Fail makes every request to path answer with status and detail until cleared with status 0.
func (s *Server) Fail(path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, path)
		return
	}
	s.failures[path] = failure{status: status, detail: detail}
}

// Delay holds every request to path for d before it is handled.
func (s *Server) Delay(path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d <= 0 {
		delete(s.delays, path)
		return
	}
	s.delays[path] = d
}

// Calls returns the requests seen so far, oldest first.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount counts requests for one method and path.
func (s *Server) CallCount(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// SeedProfile stores a profile and returns it with its assigned id.
func (s *Server) SeedProfile(p model.Profile) model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertProfileLocked(p)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, RequestID: reqID})
		fail, failing := s.failures[r.URL.Path]
		delay := s.delays[r.URL.Path]
		s.mu.Unlock()

		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "request_id", reqID)

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			writeDetail(w, fail.status, fail.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				writeDetail(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail answers with the backend's {"detail": "..."} error shape.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
