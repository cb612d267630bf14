// Package searcher implements the catalog query engine: tag filtering and
// fuzzy relevance ranking over a full scan of the store.
//
// Every query follows the same pipeline:
//
//  1. scan projects (newest first) and tags concurrently
//  2. group tags into a TagIndex
//  3. keep projects matching the Filter
//  4. when a query is given, score and sort the survivors with Rank
//  5. shape the output
//
// # Basic Usage
//
//	s := searcher.NewSearcher(store, tax, logger, searcher.Options{})
//
//	resp, err := s.Search(ctx, searcher.SearchRequest{
//	    Query: "tls proxy",
//	    Filter: searcher.Filter{
//	        Selected: map[string][]string{"technology": {"Python", "SQL"}},
//	        Modes:    map[string]types.MatchMode{"technology": types.MatchAll},
//	    },
//	})
//
// Raw query parameters are turned into a request with ParseParams, which
// also reports parameter names it did not recognize.
//
// # Filtering
//
// A category with selected values passes a project in MatchAny mode when at
// least one value is present, and in MatchAll mode when all of them are. A
// project must pass every category that has a selection. Output order is
// input order.
//
// # Ranking
//
// Scores come from PartialRatio: the best alignment of the lowercased query
// against a window of the project's title, description and tag values, in
// [0, 100]. Only scores above Threshold survive. Equal scores keep store
// order.
//
// # Shapes
//
// Search returns summaries with tags grouped by category and accepts a
// filter on any taxonomy category. Page filters on client, domain,
// technology and project_type in MatchAny mode and returns flat tag values
// for rendering.
//
// # Caching
//
// Search responses can be cached in an LRU keyed by the normalized request.
// Each entry records the store revision read before its scan, and a lookup
// serves it only while the store still reports that revision. Writes from
// another process sharing the database file therefore invalidate entries
// too. Entries also expire after their TTL; InvalidateCache drops
// everything and is called after every mutation.
package searcher
