// Package catalog is the mutation surface of the project catalog.
//
// Inputs arrive in two forms. GroupedInput takes values already grouped by
// category plus a comma-separated list of extra tags, as the HTML forms post
// them. FlatInput takes a plain list of values and classifies each one
// against the taxonomy; values no category knows are stored as extra tags.
//
//	in := catalog.FlatInput("Proxy", "a TLS proxy", []string{"Python", "bespoke"}, tax)
//	id, err := svc.Create(ctx, in)
//
// Title and description are trimmed and must be non-empty; violations wrap
// ErrInvalidInput. Update and Delete of a missing project return
// storage.ErrNotFound.
package catalog
