package searcher

import (
	"sort"
	"strings"

	"github.com/dshills/projcat/pkg/types"
)

// Threshold is the score a candidate must exceed to survive ranking
const Threshold = 60.0

// ScoredProject pairs a project with its relevance score
type ScoredProject struct {
	Project types.Project
	Score   float64
}

// Rank scores projects against query and returns those above Threshold,
// best first. Ties keep their input order. An empty query returns every
// project unchanged with a zero score.
func Rank(query string, projects []types.Project, idx *TagIndex) []ScoredProject {
	query = strings.ToLower(strings.TrimSpace(query))

	scored := make([]ScoredProject, 0, len(projects))
	if query == "" {
		for _, p := range projects {
			scored = append(scored, ScoredProject{Project: p})
		}
		return scored
	}

	for _, p := range projects {
		score := PartialRatio(query, searchBlob(p, idx))
		if score > Threshold {
			scored = append(scored, ScoredProject{Project: p, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// searchBlob is the lowercased text a query is matched against
func searchBlob(p types.Project, idx *TagIndex) string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteByte(' ')
	b.WriteString(p.Description)
	b.WriteByte(' ')
	if idx != nil {
		b.WriteString(strings.Join(idx.Values(p.ID), " "))
	}
	return strings.ToLower(b.String())
}
