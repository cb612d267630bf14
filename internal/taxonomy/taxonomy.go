package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/xrash/smetrics"
	"gopkg.in/yaml.v3"

	"github.com/dshills/projcat/pkg/types"
)

//go:embed default.yaml
var defaultTaxonomy []byte

// ErrInvalidTaxonomy is returned when a taxonomy definition cannot be used
var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

// suggestThreshold is the minimum Jaro-Winkler similarity for Suggest
const suggestThreshold = 0.85

// Category is one named group of recognized values
type Category struct {
	Name   string
	Values []string
}

// Taxonomy is an immutable, ordered mapping from category name to the set of
// values recognized in that category.
type Taxonomy struct {
	order  []string
	values map[string][]string
	sets   map[string]map[string]struct{}
}

// New builds a Taxonomy from categories in definition order
func New(categories []Category) (*Taxonomy, error) {
	t := &Taxonomy{
		order:  make([]string, 0, len(categories)),
		values: make(map[string][]string, len(categories)),
		sets:   make(map[string]map[string]struct{}, len(categories)),
	}

	for _, c := range categories {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: empty category name", ErrInvalidTaxonomy)
		}
		if _, dup := t.sets[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidTaxonomy, c.Name)
		}

		set := make(map[string]struct{}, len(c.Values))
		vals := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			if _, seen := set[v]; seen {
				continue
			}
			set[v] = struct{}{}
			vals = append(vals, v)
		}

		t.order = append(t.order, c.Name)
		t.values[c.Name] = vals
		t.sets[c.Name] = set
	}

	return t, nil
}

// Parse decodes a YAML or JSON mapping of category name to a list of values.
// Category order follows the document.
func Parse(data []byte) (*Taxonomy, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaxonomy, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return New(nil)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrInvalidTaxonomy)
	}

	categories := make([]Category, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]

		var values []string
		if err := val.Decode(&values); err != nil {
			return nil, fmt.Errorf("%w: category %q: %v", ErrInvalidTaxonomy, key.Value, err)
		}
		categories = append(categories, Category{Name: key.Value, Values: values})
	}

	return New(categories)
}

// Load reads and parses a taxonomy file
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the built-in taxonomy
func Default() *Taxonomy {
	t, err := Parse(defaultTaxonomy)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy is invalid: %v", err))
	}
	return t
}

// Classify returns the first category, in definition order, whose values
// contain value exactly. Unrecognized values belong to types.CategoryExtra.
func (t *Taxonomy) Classify(value string) string {
	for _, name := range t.order {
		if _, ok := t.sets[name][value]; ok {
			return name
		}
	}
	return types.CategoryExtra
}

// Categories returns category names in definition order
func (t *Taxonomy) Categories() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Values returns the recognized values of a category in definition order
func (t *Taxonomy) Values(category string) []string {
	vals := t.values[category]
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// Has reports whether category is defined
func (t *Taxonomy) Has(category string) bool {
	_, ok := t.sets[category]
	return ok
}

// Suggest returns the defined category closest to name, if any is close
// enough to be a likely typo.
func (t *Taxonomy) Suggest(name string) (string, bool) {
	best, bestScore := "", 0.0
	for _, c := range t.order {
		score := smetrics.JaroWinkler(name, c, 0.7, 4)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore < suggestThreshold {
		return "", false
	}
	return best, true
}
