package types

// ProjectSummary is the machine-readable shape of one query result
type ProjectSummary struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Tags        TagMap  `json:"tags"`
	Score       float64 `json:"score,omitempty"` // Only set when a query ranked the results
}

// ProjectDetail is a single project with its tags, both flat and grouped
type ProjectDetail struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DocPath     string   `json:"doc_path,omitempty"`
	Tags        []string `json:"tags"`
	TagMap      TagMap   `json:"-"`
}

// Validate checks if the summary is valid
func (ps *ProjectSummary) Validate() error {
	if ps.ID <= 0 {
		return ErrInvalidProjectID
	}

	if ps.Title == "" {
		return ErrEmptyTitle
	}

	if ps.Description == "" {
		return ErrEmptyDescription
	}

	if ps.Score < 0 || ps.Score > 100 {
		return ErrInvalidScore
	}

	return nil
}
