// Package taxonomy holds the static category to value-set mapping used to
// classify freeform tag input.
//
// A Taxonomy is loaded once at startup, from a YAML or JSON file or from the
// embedded default, and is read-only afterwards. It is passed explicitly to
// the components that need it; there is no package-level instance.
//
//	tax, err := taxonomy.Load("tags.yaml")
//	if err != nil {
//	    return err
//	}
//	tax.Classify("rust")    // "technology"
//	tax.Classify("bespoke") // "extra"
//
// Category order matters: Classify returns the first category in definition
// order that lists the value, so documents are decoded node by node rather
// than through a Go map.
package taxonomy
