package workflow

import "fmt"

// Phase is the lifecycle position of one analysis/proposal slot.
type Phase string

const (
	PhaseEmpty            Phase = "empty"
	PhaseAnalyzing        Phase = "analyzing"
	PhaseAnalyzed         Phase = "analyzed"
	PhaseAnalysisFailed   Phase = "analysis_failed"
	PhaseGenerating       Phase = "generating"
	PhaseProposed         Phase = "proposed"
	PhaseGenerationFailed Phase = "generation_failed"
)

var allowedTransitions = map[Phase]map[Phase]bool{
	PhaseEmpty: {
		PhaseAnalyzing: true,
	},
	PhaseAnalyzing: {
		PhaseAnalyzing:      true, // superseded by a newer request
		PhaseAnalyzed:       true,
		PhaseAnalysisFailed: true,
	},
	PhaseAnalyzed: {
		PhaseAnalyzing:  true,
		PhaseGenerating: true,
	},
	PhaseAnalysisFailed: {
		PhaseAnalyzing: true,
	},
	PhaseGenerating: {
		PhaseProposed:         true,
		PhaseGenerationFailed: true,
		PhaseAnalyzing:        true, // profile changed mid-generation
	},
	PhaseGenerationFailed: {
		PhaseGenerating: true,
		PhaseAnalyzing:  true,
	},
	PhaseProposed: {
		PhaseAnalyzing:  true,
		PhaseGenerating: true,
	},
}

func CanTransition(from, to Phase) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

func transition(s *Slot, to Phase) error {
	if !CanTransition(s.Phase, to) {
		return fmt.Errorf("invalid slot transition: %q -> %q (slot=%s)", s.Phase, to, s.ID)
	}
	s.Phase = to
	return nil
}
