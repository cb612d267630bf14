package types

// MatchMode controls how a category's selected values are tested against a
// project's values in that category.
type MatchMode string

const (
	// MatchAny passes when at least one selected value is present
	MatchAny MatchMode = "any"
	// MatchAll passes when every selected value is present
	MatchAll MatchMode = "all"
)

// ParseMatchMode maps a raw mode string to a MatchMode. Anything other than
// "all" means "any".
func ParseMatchMode(s string) MatchMode {
	if MatchMode(s) == MatchAll {
		return MatchAll
	}
	return MatchAny
}
