package searcher

import (
	"github.com/dshills/projcat/pkg/types"
)

// Filter holds the selected values and match mode for each category.
// A category with no selected values imposes no constraint, whether it is
// missing from Selected or present with an empty list.
type Filter struct {
	Selected map[string][]string
	Modes    map[string]types.MatchMode
}

// Active reports whether any category constrains the result
func (f Filter) Active() bool {
	for _, selected := range f.Selected {
		if len(selected) > 0 {
			return true
		}
	}
	return false
}

// Mode returns the match mode for a category, defaulting to MatchAny
func (f Filter) Mode(category string) types.MatchMode {
	if f.Modes[category] == types.MatchAll {
		return types.MatchAll
	}
	return types.MatchAny
}

// Matches reports whether a project's tags satisfy every active category
func (f Filter) Matches(tags types.TagMap) bool {
	for category, selected := range f.Selected {
		if len(selected) == 0 {
			continue
		}

		if f.Mode(category) == types.MatchAll {
			for _, v := range selected {
				if !tags.Contains(category, v) {
					return false
				}
			}
			continue
		}

		matched := false
		for _, v := range selected {
			if tags.Contains(category, v) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// ApplyFilter returns the projects whose tags match f, in input order
func ApplyFilter(projects []types.Project, idx *TagIndex, f Filter) []types.Project {
	if !f.Active() {
		return projects
	}

	out := make([]types.Project, 0, len(projects))
	for _, p := range projects {
		if f.Matches(idx.Tags(p.ID)) {
			out = append(out, p)
		}
	}
	return out
}
