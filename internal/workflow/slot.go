package workflow

import (
	"strconv"

	"jobassist/internal/model"
)

// SlotID identifies one unit of analysis/proposal work: the manual job or a scraped job index.
type SlotID int

const ManualSlot SlotID = -1

func (id SlotID) String() string {
	if id == ManualSlot {
		return "manual"
	}
	return "job-" + strconv.Itoa(int(id))
}

// Slot is the per-job analysis/proposal state. Loading flags are derived from Phase,
// so a slot can never be generating without an analysis.
type Slot struct {
	ID          SlotID
	Phase       Phase
	ProfileID   int
	Analysis    *model.AnalysisResponse
	Proposal    *model.Proposal
	Err         string
	ProposalErr string

	gen uint64
}

func newSlot(id SlotID) *Slot {
	return &Slot{ID: id, Phase: PhaseEmpty}
}

func (s Slot) Loading() bool {
	return s.Phase == PhaseAnalyzing
}

func (s Slot) ProposalLoading() bool {
	return s.Phase == PhaseGenerating
}

// CanGenerate reports whether Stage B may start for this slot.
func (s Slot) CanGenerate() bool {
	if s.Analysis == nil {
		return false
	}
	return s.Phase != PhaseAnalyzing && s.Phase != PhaseGenerating
}

// MatchLevel returns the analyzed match level, or "" before analysis.
func (s Slot) MatchLevel() model.MatchLevel {
	if s.Analysis == nil {
		return ""
	}
	return s.Analysis.Analysis.MatchLevel
}

type Stage string

const (
	StageAnalyze  Stage = "analyze"
	StageGenerate Stage = "generate"
	StageScrape   Stage = "scrape"
)

// Ticket tags an outgoing request. A response is applied only while its ticket is
// still the current one for the slot; tickets come from a single monotonic counter,
// so a reset invalidates every ticket issued before it.
type Ticket struct {
	Slot  SlotID
	Stage Stage
	Gen   uint64
}
