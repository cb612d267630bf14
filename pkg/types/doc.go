// Package types provides shared type definitions for the project catalog.
//
// This package defines domain types used across the store, the query engine
// and the HTTP and MCP surfaces.
//
// # Core Types
//
// Project is a catalog entry identified by a store-assigned ID:
//
//	p := types.Project{ID: 7, Title: "Proxy", Description: "a TLS proxy"}
//
// Tag is a (category, value) label. Values that no taxonomy category
// recognizes are stored under CategoryExtra:
//
//	tags := []types.Tag{
//	    {Category: "technology", Value: "rust"},
//	    {Category: types.CategoryExtra, Value: "bespoke"},
//	}
//
// TagMap groups a project's values by category and is what the filter
// engine matches against:
//
//	m := types.TagMap{}
//	m.Add("technology", "rust")
//	m.Contains("technology", "rust") // true
//
// # Match Modes
//
// Each filtered category carries a MatchMode. MatchAny passes a project when
// any selected value is present; MatchAll requires every selected value.
// ParseMatchMode treats unknown strings as MatchAny.
//
// # Results
//
// ProjectSummary is the machine-readable query result. Score is populated
// only when a free-text query ranked the results and is in [0, 100].
package types
