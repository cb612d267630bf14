package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/projcat/internal/storage"
	"github.com/dshills/projcat/internal/taxonomy"
	"github.com/dshills/projcat/pkg/types"
)

// Page shape categories. The page filters on these four only and always
// in MatchAny mode.
const (
	CategoryClient      = "client"
	CategoryDomain      = "domain"
	CategoryTechnology  = "technology"
	CategoryProjectType = "project_type"
)

const (
	defaultCacheSize = 1000
	defaultCacheTTL  = 5 * time.Minute
)

// SearchRequest contains parameters for a machine-shape query
type SearchRequest struct {
	Query    string
	Filter   Filter
	UseCache bool // Whether to use query cache
	CacheTTL time.Duration
}

// SearchResponse contains query results and metadata
type SearchResponse struct {
	Results      []types.ProjectSummary
	TotalResults int
	Duration     time.Duration
	CacheHit     bool
	Ranked       bool // Results carry scores and are ordered by them
}

// PageRequest contains the fixed filters of the page shape
type PageRequest struct {
	Query       string
	Client      []string
	Domain      []string
	Technology  []string
	ProjectType []string
}

// PageResponse is the ordered project list for rendering, with each
// project's flat tag values.
type PageResponse struct {
	Projects    []types.Project
	ProjectTags map[int64][]string
	Query       string
}

// Options configures a Searcher
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

// cacheEntry represents a cached search response with expiration time and
// the store revision it was computed from
type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
	revision  int64
}

// Searcher runs catalog queries: scan, index, filter, rank, shape
type Searcher struct {
	storage  storage.Storage
	taxonomy *taxonomy.Taxonomy
	logger   *zap.Logger
	metrics  *Metrics
	cacheTTL time.Duration
	cache    *lru.Cache[[32]byte, *cacheEntry]
	cacheMu  sync.RWMutex
}

// NewSearcher creates a new Searcher instance
func NewSearcher(store storage.Storage, tax *taxonomy.Taxonomy, logger *zap.Logger, opts Options) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}

	cache, err := lru.New[[32]byte, *cacheEntry](opts.CacheSize)
	if err != nil {
		// This should never happen with a positive size
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Searcher{
		storage:  store,
		taxonomy: tax,
		logger:   logger,
		metrics:  NewMetrics(),
		cacheTTL: opts.CacheTTL,
		cache:    cache,
	}
}

// Taxonomy returns the taxonomy the searcher filters against
func (s *Searcher) Taxonomy() *taxonomy.Taxonomy {
	return s.taxonomy
}

// Search runs a machine-shape query. Every taxonomy category may be
// filtered, each with its own mode; selections on unknown categories are
// ignored.
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()
	s.metrics.QueriesTotal.WithLabelValues(shapeSearch).Inc()

	req.Query = strings.ToLower(strings.TrimSpace(req.Query))
	req.Filter = s.knownCategories(req.Filter)
	if req.CacheTTL <= 0 {
		req.CacheTTL = s.cacheTTL
	}

	// The revision is read before the scan: a write committed while the scan
	// runs leaves the stored entry tagged with a revision that no later
	// lookup will match.
	var revision int64
	if req.UseCache {
		var err error
		revision, err = s.storage.Revision(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog revision: %w", err)
		}

		if cached := s.checkCache(req, revision); cached != nil {
			s.metrics.CacheHitsTotal.Inc()
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
		s.metrics.CacheMissesTotal.Inc()
	}

	projects, idx, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	filtered := ApplyFilter(projects, idx, req.Filter)
	ranked := Rank(req.Query, filtered, idx)

	response := &SearchResponse{
		Results: make([]types.ProjectSummary, 0, len(ranked)),
		Ranked:  req.Query != "",
	}
	for _, sp := range ranked {
		response.Results = append(response.Results, types.ProjectSummary{
			ID:          sp.Project.ID,
			Title:       sp.Project.Title,
			Description: sp.Project.Description,
			Tags:        copyTagMap(idx.Tags(sp.Project.ID)),
			Score:       sp.Score,
		})
	}
	response.TotalResults = len(response.Results)
	response.Duration = time.Since(startTime)

	s.metrics.QueryDuration.WithLabelValues(shapeSearch).Observe(response.Duration.Seconds())
	s.metrics.ResultCount.WithLabelValues(shapeSearch).Observe(float64(response.TotalResults))

	if req.UseCache {
		s.storeInCache(req, revision, response)
	}

	s.logger.Debug("search completed",
		zap.String("query", req.Query),
		zap.Int("candidates", len(projects)),
		zap.Int("filtered", len(filtered)),
		zap.Int("results", response.TotalResults),
		zap.Duration("duration", response.Duration),
	)

	return response, nil
}

// Page runs a page-shape query over the fixed client, domain, technology
// and project_type filters.
func (s *Searcher) Page(ctx context.Context, req PageRequest) (*PageResponse, error) {
	startTime := time.Now()
	s.metrics.QueriesTotal.WithLabelValues(shapePage).Inc()

	projects, idx, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	f := Filter{Selected: map[string][]string{
		CategoryClient:      req.Client,
		CategoryDomain:      req.Domain,
		CategoryTechnology:  req.Technology,
		CategoryProjectType: req.ProjectType,
	}}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	ranked := Rank(query, ApplyFilter(projects, idx, f), idx)

	response := &PageResponse{
		Projects:    make([]types.Project, 0, len(ranked)),
		ProjectTags: make(map[int64][]string, len(ranked)),
		Query:       query,
	}
	for _, sp := range ranked {
		response.Projects = append(response.Projects, sp.Project)
		response.ProjectTags[sp.Project.ID] = append([]string(nil), idx.Values(sp.Project.ID)...)
	}

	s.metrics.QueryDuration.WithLabelValues(shapePage).Observe(time.Since(startTime).Seconds())
	s.metrics.ResultCount.WithLabelValues(shapePage).Observe(float64(len(response.Projects)))

	return response, nil
}

// load scans projects and tags concurrently and indexes the tags
func (s *Searcher) load(ctx context.Context) ([]types.Project, *TagIndex, error) {
	var (
		rows []*storage.Project
		tags []*storage.Tag
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.storage.ListProjects(gctx)
		if err != nil {
			return fmt.Errorf("failed to scan projects: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tags, err = s.storage.ListTags(gctx)
		if err != nil {
			return fmt.Errorf("failed to scan tags: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	projects := make([]types.Project, len(rows))
	for i, row := range rows {
		projects[i] = row.ToTypesProject()
	}

	return projects, BuildTagIndex(tags), nil
}

// knownCategories drops selections and modes for categories the taxonomy
// does not define
func (s *Searcher) knownCategories(f Filter) Filter {
	out := Filter{
		Selected: make(map[string][]string, len(f.Selected)),
		Modes:    make(map[string]types.MatchMode, len(f.Modes)),
	}
	for category, selected := range f.Selected {
		if !s.taxonomy.Has(category) {
			s.logger.Warn("ignoring filter on unknown category", zap.String("category", category))
			continue
		}
		out.Selected[category] = selected
	}
	for category, mode := range f.Modes {
		if s.taxonomy.Has(category) {
			out.Modes[category] = mode
		}
	}
	return out
}

// checkCache looks up a cached response, returning nil on a miss. Entries
// computed at another store revision are stale and dropped.
func (s *Searcher) checkCache(req SearchRequest, revision int64) *SearchResponse {
	hash := computeQueryHash(req)
	now := time.Now()

	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)
	if !found {
		s.cacheMu.RUnlock()
		return nil
	}

	if now.After(entry.expiresAt) || entry.revision != revision {
		s.cacheMu.RUnlock()

		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil
	}

	response := copySearchResponse(entry.response)
	s.cacheMu.RUnlock()

	return response
}

// storeInCache saves a copy of the response computed at revision
func (s *Searcher) storeInCache(req SearchRequest, revision int64, response *SearchResponse) {
	entry := &cacheEntry{
		response:  copySearchResponse(response),
		expiresAt: time.Now().Add(req.CacheTTL),
		revision:  revision,
	}

	s.cacheMu.Lock()
	s.cache.Add(computeQueryHash(req), entry)
	s.cacheMu.Unlock()
}

// InvalidateCache drops every cached response. Called after any mutation.
func (s *Searcher) InvalidateCache(ctx context.Context) error {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
	return nil
}

// CacheLen reports the number of cached responses
func (s *Searcher) CacheLen() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cache.Len()
}

// copySearchResponse creates a deep copy of a SearchResponse
func copySearchResponse(src *SearchResponse) *SearchResponse {
	if src == nil {
		return nil
	}

	dst := &SearchResponse{
		TotalResults: src.TotalResults,
		Duration:     src.Duration,
		CacheHit:     src.CacheHit,
		Ranked:       src.Ranked,
		Results:      make([]types.ProjectSummary, len(src.Results)),
	}

	for i, result := range src.Results {
		dst.Results[i] = result
		dst.Results[i].Tags = copyTagMap(result.Tags)
	}

	return dst
}

// copyTagMap returns an independent, never-nil copy
func copyTagMap(m types.TagMap) types.TagMap {
	out := make(types.TagMap, len(m))
	for category, values := range m {
		out[category] = append([]string(nil), values...)
	}
	return out
}

// computeQueryHash computes a unique hash for a normalized search request
func computeQueryHash(req SearchRequest) [32]byte {
	var data strings.Builder
	data.WriteString(req.Query)

	categories := make([]string, 0, len(req.Filter.Selected))
	for category, selected := range req.Filter.Selected {
		if len(selected) > 0 {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)

	for _, category := range categories {
		data.WriteString("|")
		data.WriteString(category)
		data.WriteString(":")
		data.WriteString(string(req.Filter.Mode(category)))
		data.WriteString(":")
		data.WriteString(strings.Join(req.Filter.Selected[category], "\x1f"))
	}

	return sha256.Sum256([]byte(data.String()))
}
