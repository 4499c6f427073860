package model

import "strings"

type MatchLevel string

const (
	MatchExcellent MatchLevel = "EXCELLENT"
	MatchGreat     MatchLevel = "GREAT"
	MatchModerate  MatchLevel = "MODERATE"
	MatchLow       MatchLevel = "LOW"
)

const (
	GenerateProposalLabel       = "Generate Proposal"
	GenerateProposalAnywayLabel = "Generate Proposal Anyway"
)

// Normalize maps unknown levels to LOW, matching how the backend buckets scores.
func (l MatchLevel) Normalize() MatchLevel {
	switch MatchLevel(strings.ToUpper(strings.TrimSpace(string(l)))) {
	case MatchExcellent:
		return MatchExcellent
	case MatchGreat:
		return MatchGreat
	case MatchModerate:
		return MatchModerate
	default:
		return MatchLow
	}
}

// Strong reports whether the level is EXCELLENT or GREAT.
func (l MatchLevel) Strong() bool {
	n := l.Normalize()
	return n == MatchExcellent || n == MatchGreat
}

func (l MatchLevel) Title() string {
	switch l.Normalize() {
	case MatchExcellent:
		return "Excellent Match!"
	case MatchGreat:
		return "Great Match!"
	case MatchModerate:
		return "Moderate Match"
	default:
		return "Low Match"
	}
}

func (l MatchLevel) Subtitle() string {
	switch l.Normalize() {
	case MatchExcellent:
		return "This job is a perfect fit for your profile. Apply with confidence."
	case MatchGreat:
		return "This job is a strong fit for your profile. You can now generate a personalized proposal using AI."
	case MatchModerate:
		return "Consider applying but highlight relevant experience and transferable skills."
	default:
		return "This job may not be the best fit, but you can still apply if interested."
	}
}

// ActionLabel is the label of the generate-proposal action for this level.
func (l MatchLevel) ActionLabel() string {
	if l.Normalize() == MatchLow {
		return GenerateProposalAnywayLabel
	}
	return GenerateProposalLabel
}
