package searcher

import (
	"github.com/dshills/projcat/internal/storage"
	"github.com/dshills/projcat/pkg/types"
)

// TagIndex is the per-query grouping of scanned tag rows. Both views keep
// the store's scan order.
type TagIndex struct {
	byProject map[int64]types.TagMap
	flat      map[int64][]string
}

// BuildTagIndex groups tag rows by project and category
func BuildTagIndex(tags []*storage.Tag) *TagIndex {
	idx := &TagIndex{
		byProject: make(map[int64]types.TagMap),
		flat:      make(map[int64][]string),
	}

	for _, tag := range tags {
		m, ok := idx.byProject[tag.ProjectID]
		if !ok {
			m = types.TagMap{}
			idx.byProject[tag.ProjectID] = m
		}
		m.Add(tag.Category, tag.Value)
		idx.flat[tag.ProjectID] = append(idx.flat[tag.ProjectID], tag.Value)
	}

	return idx
}

// Tags returns a project's values grouped by category. The result is nil
// for a project with no tags; reading from a nil TagMap is safe.
func (idx *TagIndex) Tags(projectID int64) types.TagMap {
	return idx.byProject[projectID]
}

// Values returns all of a project's tag values in scan order
func (idx *TagIndex) Values(projectID int64) []string {
	return idx.flat[projectID]
}
