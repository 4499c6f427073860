package workflow

import "jobassist/internal/model"

type Screen string

const (
	ScreenLanding Screen = "landing"
	ScreenManual  Screen = "manual"
	ScreenScrape  Screen = "scrape"
)

type OverlayKind int

const (
	OverlayManual OverlayKind = iota
	OverlayScrape
)

// View is the one thing rendered for the current navigation state.
type View string

const (
	ViewLanding            View = "landing"
	ViewManualForm         View = "manual_form"
	ViewScrapeGrid         View = "scrape_grid"
	ViewManualProposal     View = "manual_proposal"
	ViewManualProposalEdit View = "manual_proposal_edit"
	ViewScrapeProposal     View = "scrape_proposal"
	ViewScrapeProposalEdit View = "scrape_proposal_edit"
)

// ProposalView is a full-screen proposal overlay. Open implies Proposal != nil.
type ProposalView struct {
	Open     bool
	Proposal *model.Proposal
	Job      *model.ScrapedJob
}

type Navigation struct {
	Screen     Screen
	Manual     ProposalView
	Scrape     ProposalView
	Editing    bool
	EditBuffer string
}

func NewNavigation() Navigation {
	return Navigation{Screen: ScreenLanding}
}

// NavigateTo changes the base screen. Overlays are left as they are.
func (n *Navigation) NavigateTo(screen Screen) {
	switch screen {
	case ScreenLanding, ScreenManual, ScreenScrape:
		n.Screen = screen
	}
}

// OpenProposal shows the named overlay with a private copy of the proposal.
func (n *Navigation) OpenProposal(kind OverlayKind, p *model.Proposal, job *model.ScrapedJob) {
	if p == nil {
		return
	}
	cp := *p
	view := ProposalView{Open: true, Proposal: &cp}
	if job != nil {
		jc := *job
		view.Job = &jc
	}
	switch kind {
	case OverlayManual:
		view.Job = nil
		n.Manual = view
	case OverlayScrape:
		n.Scrape = view
	default:
		return
	}
	n.exitEdit()
}

func (n *Navigation) CloseProposal(kind OverlayKind) {
	switch kind {
	case OverlayManual:
		n.Manual = ProposalView{}
	case OverlayScrape:
		n.Scrape = ProposalView{}
	default:
		return
	}
	n.exitEdit()
}

// ActiveOverlay returns the overlay that currently takes rendering priority.
func (n Navigation) ActiveOverlay() (OverlayKind, bool) {
	if n.Scrape.Open && n.Scrape.Proposal != nil {
		return OverlayScrape, true
	}
	if n.Screen == ScreenManual && n.Manual.Open && n.Manual.Proposal != nil {
		return OverlayManual, true
	}
	return 0, false
}

// ActiveProposal returns the proposal shown by the active overlay.
func (n Navigation) ActiveProposal() *model.Proposal {
	kind, ok := n.ActiveOverlay()
	if !ok {
		return nil
	}
	if kind == OverlayScrape {
		return n.Scrape.Proposal
	}
	return n.Manual.Proposal
}

func (n Navigation) ActiveView() View {
	if kind, ok := n.ActiveOverlay(); ok {
		if kind == OverlayScrape {
			if n.Editing {
				return ViewScrapeProposalEdit
			}
			return ViewScrapeProposal
		}
		if n.Editing {
			return ViewManualProposalEdit
		}
		return ViewManualProposal
	}
	switch n.Screen {
	case ScreenManual:
		return ViewManualForm
	case ScreenScrape:
		return ViewScrapeGrid
	default:
		return ViewLanding
	}
}

// BeginEdit enters edit mode for the active overlay with text as the buffer.
func (n *Navigation) BeginEdit(text string) bool {
	if _, ok := n.ActiveOverlay(); !ok {
		return false
	}
	n.Editing = true
	n.EditBuffer = text
	return true
}

func (n *Navigation) SetEditBuffer(text string) {
	if !n.Editing {
		return
	}
	n.EditBuffer = text
}

// CommitEdit replaces the active overlay's proposal text and leaves edit mode.
func (n *Navigation) CommitEdit(newText string) bool {
	if !n.Editing {
		return false
	}
	p := n.ActiveProposal()
	if p == nil {
		n.exitEdit()
		return false
	}
	p.ProposalText = newText
	n.exitEdit()
	return true
}

// CancelEdit drops the buffer without touching the proposal.
func (n *Navigation) CancelEdit() {
	n.exitEdit()
}

func (n *Navigation) exitEdit() {
	n.Editing = false
	n.EditBuffer = ""
}
