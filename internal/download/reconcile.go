package download

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ytget/yt-bw/internal/model"
)

// PlanAction says what must happen for the expected input path to exist
type PlanAction int

const (
	// ActionKeep means the engine wrote the expected file itself
	ActionKeep PlanAction = iota
	// ActionRename means exactly one differently named file must be moved
	ActionRename
	// ActionMerge means a separate video and audio stream must be muxed
	ActionMerge
)

func (a PlanAction) String() string {
	switch a {
	case ActionKeep:
		return "keep"
	case ActionRename:
		return "rename"
	case ActionMerge:
		return "merge"
	default:
		return fmt.Sprintf("PlanAction(%d)", int(a))
	}
}

// Plan is the result of reconciling engine output against the expected path
type Plan struct {
	Action    PlanAction
	Expected  string
	Sources   []string // renamed or merged into Expected
	Leftovers []string // job files to delete once Expected exists
}

// formatTagged matches the ".f<format id>.<ext>" tail yt-dlp gives
// unmerged streams
var formatTagged = regexp.MustCompile(`^\.f[0-9A-Za-z_-]+\.[0-9A-Za-z]+$`)

// Reconcile decides how the files an engine reported map onto expected.
// Paths outside expected's directory or not sharing its stem are ignored.
func Reconcile(expected string, actual []string) (Plan, error) {
	expected = filepath.Clean(expected)
	dir := filepath.Dir(expected)
	stem := strings.TrimSuffix(filepath.Base(expected), filepath.Ext(expected))

	plan := Plan{Expected: expected}
	found := false
	seen := make(map[string]bool)
	var candidates []string

	for _, p := range actual {
		p = filepath.Clean(p)
		if seen[p] || filepath.Dir(p) != dir {
			continue
		}
		seen[p] = true

		if p == expected {
			found = true
			continue
		}
		if strings.HasPrefix(filepath.Base(p), stem+".") {
			candidates = append(candidates, p)
		}
	}
	sort.Strings(candidates)

	switch {
	case found:
		plan.Action = ActionKeep
		plan.Leftovers = candidates
	case len(candidates) == 0:
		return Plan{}, model.ErrNothingDownloaded
	case len(candidates) == 1:
		plan.Action = ActionRename
		plan.Sources = candidates
	case len(candidates) == 2 && isStreamPair(stem, candidates):
		plan.Action = ActionMerge
		plan.Sources = candidates
	default:
		return Plan{}, fmt.Errorf("%w: %d candidate files", model.ErrAmbiguousOutput, len(candidates))
	}
	return plan, nil
}

func isStreamPair(stem string, paths []string) bool {
	for _, p := range paths {
		tail := strings.TrimPrefix(filepath.Base(p), stem)
		if !formatTagged.MatchString(tail) {
			return false
		}
	}
	return true
}
