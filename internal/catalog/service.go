package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/projcat/internal/searcher"
	"github.com/dshills/projcat/internal/storage"
	"github.com/dshills/projcat/internal/taxonomy"
	"github.com/dshills/projcat/pkg/types"
)

// Service is the single entry point for reading and mutating the catalog.
//
// Mutations run in one store transaction each and purge the query cache
// once committed.
type Service struct {
	store    storage.Storage
	taxonomy *taxonomy.Taxonomy
	searcher *searcher.Searcher
	logger   *zap.Logger
	metrics  *Metrics
}

// NewService creates a new catalog service.
func NewService(store storage.Storage, tax *taxonomy.Taxonomy, s *searcher.Searcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		taxonomy: tax,
		searcher: s,
		logger:   logger,
		metrics:  NewMetrics(),
	}
}

// Taxonomy returns the taxonomy used for classification and filtering
func (s *Service) Taxonomy() *taxonomy.Taxonomy {
	return s.taxonomy
}

// Create stores a new project with its tags and returns its ID.
func (s *Service) Create(ctx context.Context, in ProjectInput) (int64, error) {
	if err := in.Normalize(); err != nil {
		s.metrics.observe(opCreate, err)
		return 0, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		s.metrics.observe(opCreate, err)
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	project := &storage.Project{Title: in.Title, Description: in.Description, DocPath: in.docPath()}
	if err := tx.CreateProject(ctx, project); err != nil {
		s.metrics.observe(opCreate, err)
		return 0, err
	}

	if err := insertTags(ctx, tx, project.ID, in.Tags); err != nil {
		s.metrics.observe(opCreate, err)
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		s.metrics.observe(opCreate, err)
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidate(ctx)
	s.metrics.observe(opCreate, nil)
	s.logger.Info("project created",
		zap.Int64("id", project.ID),
		zap.String("title", project.Title),
		zap.Int("tags", len(in.Tags)),
	)

	return project.ID, nil
}

// Update replaces a project's title, description and full tag set.
// Returns storage.ErrNotFound when the project does not exist.
func (s *Service) Update(ctx context.Context, id int64, in ProjectInput) error {
	if err := in.Normalize(); err != nil {
		s.metrics.observe(opUpdate, err)
		return err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		s.metrics.observe(opUpdate, err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	project, err := tx.GetProject(ctx, id)
	if err != nil {
		s.metrics.observe(opUpdate, err)
		return err
	}

	project.Title = in.Title
	project.Description = in.Description
	project.DocPath = in.docPath()
	if err := tx.UpdateProject(ctx, project); err != nil {
		s.metrics.observe(opUpdate, err)
		return err
	}

	if err := tx.DeleteTagsByProject(ctx, id); err != nil {
		s.metrics.observe(opUpdate, err)
		return err
	}

	if err := insertTags(ctx, tx, id, in.Tags); err != nil {
		s.metrics.observe(opUpdate, err)
		return err
	}

	if err := tx.Commit(); err != nil {
		s.metrics.observe(opUpdate, err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidate(ctx)
	s.metrics.observe(opUpdate, nil)
	s.logger.Info("project updated", zap.Int64("id", id), zap.Int("tags", len(in.Tags)))

	return nil
}

// Get returns a project with its tags. Returns storage.ErrNotFound when the
// project does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*types.ProjectDetail, error) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	tags, err := s.store.ListTagsByProject(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &types.ProjectDetail{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		Tags:        make([]string, 0, len(tags)),
		TagMap:      types.TagMap{},
	}
	if project.DocPath != nil {
		detail.DocPath = *project.DocPath
	}
	for _, tag := range tags {
		detail.Tags = append(detail.Tags, tag.Value)
		detail.TagMap.Add(tag.Category, tag.Value)
	}

	return detail, nil
}

// Delete removes a project and all of its tags. Returns storage.ErrNotFound
// when the project does not exist.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		s.metrics.observe(opDelete, err)
		return err
	}

	s.invalidate(ctx)
	s.metrics.observe(opDelete, nil)
	s.logger.Info("project deleted", zap.Int64("id", id))

	return nil
}

// Search runs a machine-shape query
func (s *Service) Search(ctx context.Context, req searcher.SearchRequest) (*searcher.SearchResponse, error) {
	return s.searcher.Search(ctx, req)
}

// Page runs a page-shape query
func (s *Service) Page(ctx context.Context, req searcher.PageRequest) (*searcher.PageResponse, error) {
	return s.searcher.Page(ctx, req)
}

// Status reports store statistics
func (s *Service) Status(ctx context.Context) (*storage.Status, error) {
	return s.store.GetStatus(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.searcher == nil {
		return
	}
	if err := s.searcher.InvalidateCache(ctx); err != nil {
		s.logger.Warn("failed to invalidate query cache", zap.Error(err))
	}
}

// insertTags writes tags for a project inside tx
func insertTags(ctx context.Context, tx storage.Tx, projectID int64, tags []types.Tag) error {
	for _, tag := range tags {
		if err := tx.InsertTag(ctx, storage.FromTypesTag(tag, projectID)); err != nil {
			return err
		}
	}
	return nil
}
