package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"jobassist/internal/model"
)

const draftExt = ".md"

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Draft is a proposal saved to disk for later editing or submission.
type Draft struct {
	Path       string `json:"path"`
	ProposalID int    `json:"proposal_id"`
	JobTitle   string `json:"job_title,omitempty"`
	SavedAt    string `json:"saved_at"`
}

// SaveDraft writes the proposal text as a markdown file under dir and returns
// the written draft. Saving the same proposal twice overwrites the earlier file.
func SaveDraft(dir string, p model.Proposal, jobTitle string, now time.Time) (Draft, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return Draft{}, fmt.Errorf("drafts directory is required")
	}
	if strings.TrimSpace(p.ProposalText) == "" {
		return Draft{}, fmt.Errorf("proposal %d has no text to save", p.ID)
	}
	title := strings.TrimSpace(jobTitle)
	if title == "" {
		title = p.JobTitle
	}

	name := fmt.Sprintf("proposal-%d", p.ID)
	if slug := slugify(title); slug != "" {
		name += "-" + slug
	}
	path := filepath.Join(dir, name+draftExt)

	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	b.WriteString(strings.TrimRight(p.ProposalText, "\n"))
	b.WriteString("\n")
	if err := WriteBytes(path, []byte(b.String())); err != nil {
		return Draft{}, err
	}
	return Draft{
		Path:       path,
		ProposalID: p.ID,
		JobTitle:   title,
		SavedAt:    now.UTC().Format(time.RFC3339),
	}, nil
}

// ListDrafts returns saved draft paths in name order. A missing directory is empty.
func ListDrafts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read drafts directory %s: %w", dir, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), draftExt) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func slugify(s string) string {
	slug := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if len(slug) > 48 {
		slug = strings.TrimRight(slug[:48], "-")
	}
	return slug
}
