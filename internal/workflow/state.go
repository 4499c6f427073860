package workflow

import (
	"errors"
	"sort"
	"strings"

	"jobassist/internal/health"
	"jobassist/internal/model"
)

const (
	DefaultAnalysisMaxJobs = 5
	MaxAnalysisMaxJobs     = 5
	DefaultScrapeMaxJobs   = 10
	MaxScrapeMaxJobs       = 50
)

var (
	ErrNoProfile    = errors.New("select a profile first")
	ErrUnknownSlot  = errors.New("unknown job slot")
	ErrScrapeActive = errors.New("a scrape is already running")
)

// ManualFlow holds the job typed into the manual form and its form-level error.
type ManualFlow struct {
	Job     model.JobDetails
	FormErr string
}

// ScrapeFlow is the scraped job list driving the analysis grid.
type ScrapeFlow struct {
	Jobs     []model.ScrapedJob
	Keywords []string
	MaxJobs  int
	Loading  bool
	Err      string
	Message  string

	gen uint64
}

// State is the whole job-analysis workflow: connection status, navigation and the
// per-job slots. It is owned by a single event loop and is not safe for concurrent use.
type State struct {
	Connection health.Status
	Nav        Navigation
	Manual     ManualFlow
	Scrape     ScrapeFlow

	slots   map[SlotID]*Slot
	counter uint64
}

func New() *State {
	s := &State{
		Connection: health.StatusChecking,
		Nav:        NewNavigation(),
		Scrape:     ScrapeFlow{MaxJobs: DefaultAnalysisMaxJobs},
		slots:      map[SlotID]*Slot{},
	}
	s.slots[ManualSlot] = newSlot(ManualSlot)
	return s
}

// Slot returns a snapshot of one slot.
func (s *State) Slot(id SlotID) (Slot, bool) {
	slot, ok := s.slots[id]
	if !ok {
		return Slot{}, false
	}
	return *slot, true
}

func (s *State) ManualSlot() Slot {
	slot, _ := s.Slot(ManualSlot)
	return slot
}

// ScrapedSlots returns one slot per scraped job, in list order.
func (s *State) ScrapedSlots() []Slot {
	out := make([]Slot, 0, len(s.Scrape.Jobs))
	for i := range s.Scrape.Jobs {
		if slot, ok := s.slots[SlotID(i)]; ok {
			out = append(out, *slot)
		}
	}
	return out
}

// SetSlotProfile records the profile chosen for a slot without starting any request.
func (s *State) SetSlotProfile(id SlotID, profileID int) error {
	slot, ok := s.slots[id]
	if !ok {
		return ErrUnknownSlot
	}
	slot.ProfileID = profileID
	return nil
}

// SetScrapedJobs replaces the scraped list and resets every scraped slot to empty.
// Responses for tickets issued before this call are discarded.
func (s *State) SetScrapedJobs(jobs []model.ScrapedJob) {
	for id := range s.slots {
		if id != ManualSlot {
			delete(s.slots, id)
		}
	}
	s.Scrape.Jobs = append([]model.ScrapedJob(nil), jobs...)
	for i := range s.Scrape.Jobs {
		s.slots[SlotID(i)] = newSlot(SlotID(i))
	}
	s.counter++
}

// ResetToLanding returns to the landing screen and clears the manual job, its slot
// and its overlay. The scraped list and its slots are kept.
func (s *State) ResetToLanding() {
	s.Nav.NavigateTo(ScreenLanding)
	s.Nav.CloseProposal(OverlayManual)
	s.Manual = ManualFlow{}
	s.slots[ManualSlot] = newSlot(ManualSlot)
	s.counter++
}

// JobFor returns the job a slot analyzes: the manual job or scraped job i.
func (s *State) JobFor(id SlotID) (model.JobDetails, bool) {
	if id == ManualSlot {
		return s.Manual.Job, true
	}
	i := int(id)
	if i < 0 || i >= len(s.Scrape.Jobs) {
		return model.JobDetails{}, false
	}
	return s.Scrape.Jobs[i].JobDetails, true
}

// BeginAnalyze validates a slot's job and profile and moves the slot to analyzing.
// A validation failure is recorded on the slot and no ticket is issued.
func (s *State) BeginAnalyze(id SlotID, profileID int) (Ticket, model.AnalysisRequest, error) {
	slot, ok := s.slots[id]
	if !ok {
		return Ticket{}, model.AnalysisRequest{}, ErrUnknownSlot
	}
	job, _ := s.JobFor(id)
	slot.ProfileID = profileID

	err := validateAnalyze(job, profileID)
	if id == ManualSlot {
		s.Manual.FormErr = ""
		if err != nil {
			s.Manual.FormErr = err.Error()
		}
	}
	if err != nil {
		slot.Err = err.Error()
		return Ticket{}, model.AnalysisRequest{}, err
	}

	if err := transition(slot, PhaseAnalyzing); err != nil {
		return Ticket{}, model.AnalysisRequest{}, err
	}
	slot.Analysis = nil
	slot.Proposal = nil
	slot.Err = ""
	slot.ProposalErr = ""
	t := s.issue(slot, StageAnalyze)
	return t, job.AnalysisRequest(profileID), nil
}

// CompleteAnalyze applies an analysis response. It reports false when the ticket is
// stale and the response was dropped.
func (s *State) CompleteAnalyze(t Ticket, resp *model.AnalysisResponse, err error) bool {
	slot, ok := s.current(t, StageAnalyze)
	if !ok {
		return false
	}
	if err == nil && resp == nil {
		err = errors.New("empty analysis response")
	}
	if err != nil {
		_ = transition(slot, PhaseAnalysisFailed)
		slot.Err = failureText(err, analyzeFallback(slot.ID))
		return true
	}
	analysis := *resp
	analysis.Analysis.MatchLevel = analysis.Analysis.MatchLevel.Normalize()
	_ = transition(slot, PhaseAnalyzed)
	slot.Analysis = &analysis
	slot.Err = ""
	return true
}

// BeginGenerate starts proposal generation. It reports false, with no ticket, when the
// slot has no analysis or is still analyzing.
func (s *State) BeginGenerate(id SlotID) (Ticket, model.ProposalRequest, bool) {
	slot, ok := s.slots[id]
	if !ok || !slot.CanGenerate() {
		return Ticket{}, model.ProposalRequest{}, false
	}
	job, ok := s.JobFor(id)
	if !ok {
		return Ticket{}, model.ProposalRequest{}, false
	}
	if err := transition(slot, PhaseGenerating); err != nil {
		return Ticket{}, model.ProposalRequest{}, false
	}
	slot.ProposalErr = ""
	t := s.issue(slot, StageGenerate)
	return t, job.ProposalRequest(slot.ProfileID), true
}

// CompleteGenerate stores a generated proposal and opens the slot's overlay. A failure
// only sets the slot's proposal error.
func (s *State) CompleteGenerate(t Ticket, p *model.Proposal, err error) bool {
	slot, ok := s.current(t, StageGenerate)
	if !ok {
		return false
	}
	if err == nil && p == nil {
		err = errors.New("empty proposal response")
	}
	if err != nil {
		_ = transition(slot, PhaseGenerationFailed)
		slot.ProposalErr = failureText(err, generateFallback(slot.ID))
		return true
	}
	proposal := *p
	_ = transition(slot, PhaseProposed)
	slot.Proposal = &proposal
	slot.ProposalErr = ""
	s.openSlotProposal(slot)
	return true
}

// ViewProposal reopens the stored proposal for a slot.
func (s *State) ViewProposal(id SlotID) bool {
	slot, ok := s.slots[id]
	if !ok || slot.Proposal == nil {
		return false
	}
	s.openSlotProposal(slot)
	return true
}

func (s *State) openSlotProposal(slot *Slot) {
	if slot.ID == ManualSlot {
		s.Nav.OpenProposal(OverlayManual, slot.Proposal, nil)
		return
	}
	i := int(slot.ID)
	if i < 0 || i >= len(s.Scrape.Jobs) {
		return
	}
	job := s.Scrape.Jobs[i]
	s.Nav.OpenProposal(OverlayScrape, slot.Proposal, &job)
}

// BeginScrape starts a scrape for the analysis grid. The list is cleared immediately,
// so every slot resets.
func (s *State) BeginScrape(keywords []string, maxJobs int) (Ticket, model.ScrapeRequest, error) {
	if s.Scrape.Loading {
		return Ticket{}, model.ScrapeRequest{}, ErrScrapeActive
	}
	maxJobs = ClampAnalysisMaxJobs(maxJobs)
	s.Scrape.Keywords = append([]string(nil), keywords...)
	s.Scrape.MaxJobs = maxJobs
	s.Scrape.Loading = true
	s.Scrape.Err = ""
	s.Scrape.Message = ""
	s.SetScrapedJobs(nil)

	s.counter++
	s.Scrape.gen = s.counter
	t := Ticket{Slot: ManualSlot, Stage: StageScrape, Gen: s.counter}
	return t, model.ScrapeRequest{Keywords: append([]string(nil), keywords...), MaxJobsPerKeyword: maxJobs}, nil
}

func (s *State) CompleteScrape(t Ticket, res *model.ScrapeResult, err error) bool {
	if t.Stage != StageScrape || t.Gen == 0 || t.Gen != s.Scrape.gen {
		return false
	}
	s.Scrape.Loading = false
	s.Scrape.gen = 0
	if err != nil {
		s.Scrape.Err = failureText(err, "Failed to scrape jobs.")
		return true
	}
	if res == nil || len(res.Jobs) == 0 {
		s.Scrape.Err = "No jobs found. Try different keywords."
		return true
	}
	s.Scrape.Message = res.Message
	s.SetScrapedJobs(res.Jobs)
	return true
}

// ClampAnalysisMaxJobs bounds the per-keyword count used by the analysis grid to [1,5].
func ClampAnalysisMaxJobs(n int) int {
	if n <= 0 {
		return DefaultAnalysisMaxJobs
	}
	if n > MaxAnalysisMaxJobs {
		return MaxAnalysisMaxJobs
	}
	return n
}

// ClampScrapeMaxJobs bounds the standalone scrape count to [1,50].
func ClampScrapeMaxJobs(n int) int {
	if n <= 0 {
		return DefaultScrapeMaxJobs
	}
	if n > MaxScrapeMaxJobs {
		return MaxScrapeMaxJobs
	}
	return n
}

// ManualForm is the raw text of the manual job form.
type ManualForm struct {
	Title        string
	Description  string
	Skills       string
	ClientRating string
	AvgPayRate   string
	URL          string
}

// Parse converts the form into a job, parsing numbers once.
func (f ManualForm) Parse() (model.JobDetails, error) {
	rating, err := model.ParseRating(f.ClientRating)
	if err != nil {
		return model.JobDetails{}, err
	}
	pay, err := model.ParsePayRate(f.AvgPayRate)
	if err != nil {
		return model.JobDetails{}, err
	}
	job := model.JobDetails{
		Title:        strings.TrimSpace(f.Title),
		Description:  strings.TrimSpace(f.Description),
		Skills:       model.ParseSkills(f.Skills),
		ClientRating: rating,
		AvgPayRate:   pay,
		URL:          strings.TrimSpace(f.URL),
	}
	if err := job.Validate(); err != nil {
		return model.JobDetails{}, err
	}
	return job, nil
}

// SubmitManual parses the form, stores the job and starts analysis of the manual slot.
func (s *State) SubmitManual(form ManualForm, profileID int) (Ticket, model.AnalysisRequest, error) {
	job, err := form.Parse()
	if err != nil {
		s.Manual.FormErr = err.Error()
		return Ticket{}, model.AnalysisRequest{}, err
	}
	s.Manual.Job = job
	return s.BeginAnalyze(ManualSlot, profileID)
}

// InFlight lists slots with a request outstanding, for status lines.
func (s *State) InFlight() []SlotID {
	var out []SlotID
	for id, slot := range s.slots {
		if slot.Loading() || slot.ProposalLoading() {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *State) issue(slot *Slot, stage Stage) Ticket {
	s.counter++
	slot.gen = s.counter
	return Ticket{Slot: slot.ID, Stage: stage, Gen: s.counter}
}

func (s *State) current(t Ticket, stage Stage) (*Slot, bool) {
	if t.Stage != stage || t.Gen == 0 {
		return nil, false
	}
	slot, ok := s.slots[t.Slot]
	if !ok || slot.gen != t.Gen {
		return nil, false
	}
	want := PhaseAnalyzing
	if stage == StageGenerate {
		want = PhaseGenerating
	}
	if slot.Phase != want {
		return nil, false
	}
	return slot, true
}

func validateAnalyze(job model.JobDetails, profileID int) error {
	if profileID <= 0 {
		return ErrNoProfile
	}
	return job.Validate()
}

// detailer is implemented by backend errors that carry a human-readable detail.
type detailer interface {
	Detail() string
}

func failureText(err error, fallback string) string {
	var d detailer
	if errors.As(err, &d) {
		if msg := strings.TrimSpace(d.Detail()); msg != "" {
			return msg
		}
	}
	return fallback
}

func analyzeFallback(id SlotID) string {
	if id == ManualSlot {
		return "Failed to analyze job."
	}
	return "Failed to analyze match."
}

func generateFallback(id SlotID) string {
	if id == ManualSlot {
		return "Failed to generate proposal. Please try again."
	}
	return "Failed to generate proposal."
}
