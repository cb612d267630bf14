package searcher

import (
	"sort"
	"strings"

	"github.com/dshills/projcat/internal/taxonomy"
	"github.com/dshills/projcat/pkg/types"
)

// QueryParam is the free-text query parameter name
const QueryParam = "q"

// matchSuffix marks the companion parameter carrying a category's mode
const matchSuffix = "_match"

// ParseParams builds a machine-shape request from raw query parameters.
// Every taxonomy category may be repeated; "<category>_match" selects its
// mode. Blank values are dropped. The second result lists parameter names
// that were not recognized, sorted.
func ParseParams(params map[string][]string, tax *taxonomy.Taxonomy) (SearchRequest, []string) {
	req := SearchRequest{
		Filter: Filter{
			Selected: make(map[string][]string),
			Modes:    make(map[string]types.MatchMode),
		},
	}

	if q := params[QueryParam]; len(q) > 0 {
		req.Query = q[0]
	}

	for _, category := range tax.Categories() {
		for _, v := range params[category] {
			if strings.TrimSpace(v) == "" {
				continue
			}
			req.Filter.Selected[category] = append(req.Filter.Selected[category], v)
		}
		if mode := params[category+matchSuffix]; len(mode) > 0 {
			req.Filter.Modes[category] = types.ParseMatchMode(mode[0])
		}
	}

	var unknown []string
	for name := range params {
		if !isKnownParam(name, tax) {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)

	return req, unknown
}

func isKnownParam(name string, tax *taxonomy.Taxonomy) bool {
	if name == QueryParam || tax.Has(name) {
		return true
	}
	if base, ok := strings.CutSuffix(name, matchSuffix); ok {
		return tax.Has(base)
	}
	return false
}
