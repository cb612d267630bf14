package types

import "strings"

// CategoryExtra is the sentinel category for freeform tag values that no
// taxonomy category recognizes.
const CategoryExtra = "extra"

// Project is a catalog entry as seen by the query engine
type Project struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Tag is a single (category, value) label attached to a project
type Tag struct {
	Category string `json:"category"`
	Value    string `json:"value"`
}

// TagMap groups a project's tag values by category. Values keep the order
// in which the store returned them.
type TagMap map[string][]string

// Add appends a value to a category
func (m TagMap) Add(category, value string) {
	m[category] = append(m[category], value)
}

// Contains reports whether value is present in category
func (m TagMap) Contains(category, value string) bool {
	for _, v := range m[category] {
		if v == value {
			return true
		}
	}
	return false
}

// Validate checks the tag value is usable
func (t Tag) Validate() error {
	if t.Category == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Value) == "" {
		return ErrEmptyTagValue
	}
	return nil
}
