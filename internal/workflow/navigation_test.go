package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobassist/internal/model"
)

func TestActiveViewPriority(t *testing.T) {
	n := NewNavigation()
	assert.Equal(t, ViewLanding, n.ActiveView())

	n.OpenProposal(OverlayManual, &model.Proposal{ProposalText: "manual"}, nil)
	assert.Equal(t, ViewLanding, n.ActiveView(), "manual overlay only shows on the manual screen")

	n.NavigateTo(ScreenManual)
	assert.Equal(t, ViewManualProposal, n.ActiveView())

	n.OpenProposal(OverlayScrape, &model.Proposal{ProposalText: "scrape"}, &model.ScrapedJob{})
	assert.Equal(t, ViewScrapeProposal, n.ActiveView(), "scrape overlay wins over everything")
	assert.Equal(t, "scrape", n.ActiveProposal().ProposalText)

	n.CloseProposal(OverlayScrape)
	assert.Equal(t, ViewManualProposal, n.ActiveView())
}

func TestOpenProposalIgnoresNil(t *testing.T) {
	n := NewNavigation()
	n.NavigateTo(ScreenScrape)
	n.OpenProposal(OverlayScrape, nil, nil)
	assert.False(t, n.Scrape.Open)
	assert.Equal(t, ViewScrapeGrid, n.ActiveView())
}

func TestEditCommitAndCancel(t *testing.T) {
	original := &model.Proposal{ID: 1, ProposalText: "draft"}
	n := NewNavigation()
	n.NavigateTo(ScreenManual)
	n.OpenProposal(OverlayManual, original, nil)

	assert.True(t, n.BeginEdit(n.ActiveProposal().ProposalText))
	assert.Equal(t, ViewManualProposalEdit, n.ActiveView())
	n.SetEditBuffer("draft v2")
	n.CancelEdit()
	assert.Equal(t, "draft", n.ActiveProposal().ProposalText)
	assert.Equal(t, ViewManualProposal, n.ActiveView())

	n.BeginEdit("draft")
	assert.True(t, n.CommitEdit("final"))
	assert.Equal(t, "final", n.ActiveProposal().ProposalText)
	assert.Equal(t, "draft", original.ProposalText, "edits stay local to the overlay")
	assert.False(t, n.Editing)
}

func TestBeginEditWithoutOverlay(t *testing.T) {
	n := NewNavigation()
	assert.False(t, n.BeginEdit("x"))
	assert.False(t, n.CommitEdit("y"))
}

func TestNavigateToLeavesOverlays(t *testing.T) {
	n := NewNavigation()
	n.OpenProposal(OverlayScrape, &model.Proposal{ProposalText: "s"}, nil)
	n.NavigateTo(ScreenManual)
	assert.True(t, n.Scrape.Open)
	n.NavigateTo("elsewhere")
	assert.Equal(t, ScreenManual, n.Screen)
}
