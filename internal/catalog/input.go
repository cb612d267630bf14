package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/projcat/internal/taxonomy"
	"github.com/dshills/projcat/pkg/types"
)

// ErrInvalidInput is returned when a mutation is rejected by validation
var ErrInvalidInput = errors.New("invalid input")

// ProjectInput is the normalized payload of a create or update
type ProjectInput struct {
	Title       string
	Description string
	DocPath     string // Optional path or URL of the project write-up
	Tags        []types.Tag
}

// GroupedInput builds an input from values grouped by category, as posted
// by the create and edit forms. Categories are read in the given order;
// extraTags is a comma-separated list stored under the extra category.
func GroupedInput(title, description string, grouped map[string][]string, extraTags string, categories []string) ProjectInput {
	in := ProjectInput{Title: title, Description: description}

	for _, category := range categories {
		for _, v := range grouped[category] {
			if v = strings.TrimSpace(v); v != "" {
				in.Tags = append(in.Tags, types.Tag{Category: category, Value: v})
			}
		}
	}

	for _, v := range strings.Split(extraTags, ",") {
		if v = strings.TrimSpace(v); v != "" {
			in.Tags = append(in.Tags, types.Tag{Category: types.CategoryExtra, Value: v})
		}
	}

	return in
}

// FlatInput builds an input from an ungrouped list of values, assigning each
// to its taxonomy category.
func FlatInput(title, description string, tags []string, tax *taxonomy.Taxonomy) ProjectInput {
	in := ProjectInput{Title: title, Description: description}

	for _, v := range tags {
		if v = strings.TrimSpace(v); v != "" {
			in.Tags = append(in.Tags, types.Tag{Category: tax.Classify(v), Value: v})
		}
	}

	return in
}

// Normalize trims the text fields and checks every field is usable
func (in *ProjectInput) Normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.DocPath = strings.TrimSpace(in.DocPath)

	if in.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, types.ErrEmptyTitle)
	}
	if in.Description == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, types.ErrEmptyDescription)
	}

	for i := range in.Tags {
		in.Tags[i].Value = strings.TrimSpace(in.Tags[i].Value)
		if err := in.Tags[i].Validate(); err != nil {
			return fmt.Errorf("%w: tag %d: %w", ErrInvalidInput, i, err)
		}
	}

	return nil
}

// docPath returns the stored form of DocPath: nil when empty
func (in *ProjectInput) docPath() *string {
	if in.DocPath == "" {
		return nil
	}
	p := in.DocPath
	return &p
}
