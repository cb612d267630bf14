package importer

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/projcat/internal/catalog"
	"github.com/dshills/projcat/internal/taxonomy"
	"github.com/dshills/projcat/pkg/types"
)

// Record is one project in a seed file. Tags are classified against the
// taxonomy; Categories are taken as given, except that keys the taxonomy
// does not define land in the extra category; ExtraTags is a
// comma-separated list of freeform values.
type Record struct {
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	DocPath     string              `yaml:"doc_path"`
	Tags        []string            `yaml:"tags"`
	Categories  map[string][]string `yaml:"categories"`
	ExtraTags   string              `yaml:"extra_tags"`
}

// seedFile is the top-level document of a seed file
type seedFile struct {
	Projects []Record `yaml:"projects"`
}

// ParseSeed decodes a YAML or JSON seed document
func ParseSeed(data []byte) ([]Record, error) {
	var doc seedFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return doc.Projects, nil
}

// LoadSeed reads and decodes a seed file
func LoadSeed(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// Input converts a record into a catalog input. Grouped categories and
// extra tags come first, then values grouped under keys the taxonomy does
// not define (including "extra"), which are stored as extra tags in key
// order, then classified tags.
func (r Record) Input(tax *taxonomy.Taxonomy) catalog.ProjectInput {
	in := catalog.GroupedInput(r.Title, r.Description, r.Categories, r.ExtraTags, tax.Categories())
	in.DocPath = r.DocPath

	unknown := make([]string, 0, len(r.Categories))
	for key := range r.Categories {
		if !tax.Has(key) {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)

	for _, key := range unknown {
		for _, v := range r.Categories[key] {
			if v = strings.TrimSpace(v); v != "" {
				in.Tags = append(in.Tags, types.Tag{Category: types.CategoryExtra, Value: v})
			}
		}
	}

	in.Tags = append(in.Tags, catalog.FlatInput(r.Title, r.Description, r.Tags, tax).Tags...)
	return in
}
