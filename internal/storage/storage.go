package storage

import (
	"context"
	"time"

	"github.com/dshills/projcat/pkg/types"
)

// Storage defines the interface for persisting and scanning catalog records
type Storage interface {
	// Project operations
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, projectID int64) (*Project, error)
	UpdateProject(ctx context.Context, project *Project) error
	DeleteProject(ctx context.Context, projectID int64) error
	ListProjects(ctx context.Context) ([]*Project, error)

	// Tag operations
	InsertTag(ctx context.Context, tag *Tag) error
	ListTags(ctx context.Context) ([]*Tag, error)
	ListTagsByProject(ctx context.Context, projectID int64) ([]*Tag, error)
	DeleteTagsByProject(ctx context.Context, projectID int64) error

	// Status operations
	GetStatus(ctx context.Context) (*Status, error)
	// Revision returns a counter that changes whenever any connection
	// commits a write to projects or tags.
	Revision(ctx context.Context) (int64, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Project represents a stored catalog project
type Project struct {
	ID          int64
	Title       string
	Description string
	DocPath     *string // Nullable
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Tag represents one (category, value) label owned by a project
type Tag struct {
	ID        int64
	ProjectID int64
	Category  string
	Value     string
	CreatedAt time.Time
}

// Status contains statistics about the catalog database
type Status struct {
	ProjectsCount int
	TagsCount     int
	SizeMB        float64
	SchemaVersion string
}

// ToTypesProject converts a storage Project to types.Project
func (p *Project) ToTypesProject() types.Project {
	return types.Project{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
	}
}

// ToTypesTag converts a storage Tag to types.Tag
func (t *Tag) ToTypesTag() types.Tag {
	return types.Tag{
		Category: t.Category,
		Value:    t.Value,
	}
}

// FromTypesTag converts types.Tag to a storage Tag owned by projectID
func FromTypesTag(t types.Tag, projectID int64) *Tag {
	return &Tag{
		ProjectID: projectID,
		Category:  t.Category,
		Value:     t.Value,
	}
}
