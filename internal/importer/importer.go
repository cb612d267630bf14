package importer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/projcat/internal/catalog"
	"github.com/dshills/projcat/internal/storage"
	"github.com/dshills/projcat/internal/taxonomy"
)

// ErrImportInProgress is returned when another import holds the lock
var ErrImportInProgress = errors.New("import already in progress")

// Importer loads seed records into the store in batched transactions
type Importer struct {
	storage  storage.Storage
	taxonomy *taxonomy.Taxonomy
	logger   *zap.Logger
	lock     ImportLock
}

// Config contains configuration for an import
type Config struct {
	Workers   int // Number of concurrent batches (default: runtime.NumCPU())
	BatchSize int // Number of records to commit per transaction (default: 50)
}

// Statistics contains statistics about the import operation
type Statistics struct {
	ProjectsImported int
	ProjectsFailed   int
	TagsCreated      int
	Duration         time.Duration
	ErrorMessages    []string
}

// New creates a new Importer instance
func New(store storage.Storage, tax *taxonomy.Taxonomy, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		storage:  store,
		taxonomy: tax,
		logger:   logger,
	}
}

// ImportFile loads every record of a seed file
func (imp *Importer) ImportFile(ctx context.Context, path string, config *Config) (*Statistics, error) {
	records, err := LoadSeed(path)
	if err != nil {
		return nil, err
	}
	return imp.Import(ctx, records, config)
}

// Import stores records. Invalid records are counted and reported in the
// statistics without aborting the import; store failures abort it and roll
// back the failing batch.
func (imp *Importer) Import(ctx context.Context, records []Record, config *Config) (*Statistics, error) {
	if !imp.lock.TryAcquire() {
		return nil, ErrImportInProgress
	}
	defer imp.lock.Release()

	if config == nil {
		config = &Config{}
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	startTime := time.Now()
	stats := &Statistics{
		ErrorMessages: make([]string, 0),
	}

	var (
		imported int32
		failed   int32
		tags     int32
		mu       sync.Mutex // Protect stats.ErrorMessages
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))
		offset := i
		batch := records[i:end]

		g.Go(func() error {
			return imp.importBatch(gctx, offset, batch, &imported, &failed, &tags, &mu, stats)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.ProjectsImported = int(imported)
	stats.ProjectsFailed = int(failed)
	stats.TagsCreated = int(tags)
	stats.Duration = time.Since(startTime)

	imp.logger.Info("import completed",
		zap.Int("imported", stats.ProjectsImported),
		zap.Int("failed", stats.ProjectsFailed),
		zap.Int("tags", stats.TagsCreated),
		zap.Duration("duration", stats.Duration),
	)

	return stats, nil
}

// importBatch stores a batch of records within a transaction
func (imp *Importer) importBatch(ctx context.Context, offset int, records []Record,
	imported, failed, tags *int32, mu *sync.Mutex, stats *Statistics) error {

	tx, err := imp.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var batchImported, batchTags int32
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		in := record.Input(imp.taxonomy)
		if err := in.Normalize(); err != nil {
			atomic.AddInt32(failed, 1)
			mu.Lock()
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("record %d: %v", offset+i, err))
			mu.Unlock()
			imp.logger.Warn("skipping invalid record", zap.Int("record", offset+i), zap.Error(err))
			continue
		}

		n, err := storeProject(ctx, tx, in)
		if err != nil {
			return fmt.Errorf("record %d: %w", offset+i, err)
		}
		batchImported++
		batchTags += int32(n)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Only committed work counts
	atomic.AddInt32(imported, batchImported)
	atomic.AddInt32(tags, batchTags)

	return nil
}

// storeProject writes one normalized project and its tags, returning the
// tag count
func storeProject(ctx context.Context, tx storage.Tx, in catalog.ProjectInput) (int, error) {
	project := &storage.Project{Title: in.Title, Description: in.Description}
	if in.DocPath != "" {
		docPath := in.DocPath
		project.DocPath = &docPath
	}
	if err := tx.CreateProject(ctx, project); err != nil {
		return 0, err
	}

	for _, tag := range in.Tags {
		if err := tx.InsertTag(ctx, storage.FromTypesTag(tag, project.ID)); err != nil {
			return 0, err
		}
	}

	return len(in.Tags), nil
}
