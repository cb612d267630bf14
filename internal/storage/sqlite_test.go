package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	// Use in-memory database for testing
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NotNil(t, storage)
	return storage
}

func createTestProject(t *testing.T, s Storage, title string, tags ...[2]string) *Project {
	t.Helper()
	ctx := context.Background()

	project := &Project{Title: title, Description: title + " description"}
	require.NoError(t, s.CreateProject(ctx, project))

	for _, tg := range tags {
		require.NoError(t, s.InsertTag(ctx, &Tag{ProjectID: project.ID, Category: tg[0], Value: tg[1]}))
	}
	return project
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	assert.NotNil(t, storage)
	assert.NotNil(t, storage.db)
}

func TestClose(t *testing.T) {
	storage := setupTestDB(t)
	err := storage.Close()
	assert.NoError(t, err)
}

func TestCreateProject(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := &Project{
		Title:       "Proxy",
		Description: "a TLS proxy",
	}

	err := storage.CreateProject(ctx, project)
	require.NoError(t, err)
	assert.Greater(t, project.ID, int64(0))
	assert.False(t, project.CreatedAt.IsZero())

	second := &Project{Title: "Other", Description: "another"}
	require.NoError(t, storage.CreateProject(ctx, second))
	assert.Greater(t, second.ID, project.ID)
}

func TestGetProject(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	docPath := "docs/proxy.md"
	project := &Project{
		Title:       "Proxy",
		Description: "a TLS proxy",
		DocPath:     &docPath,
	}
	require.NoError(t, storage.CreateProject(ctx, project))

	retrieved, err := storage.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, retrieved.ID)
	assert.Equal(t, "Proxy", retrieved.Title)
	assert.Equal(t, "a TLS proxy", retrieved.Description)
	require.NotNil(t, retrieved.DocPath)
	assert.Equal(t, docPath, *retrieved.DocPath)
}

func TestGetProject_NotFound(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	_, err := storage.GetProject(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProject(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	project := createTestProject(t, storage, "Proxy")

	project.Title = "Proxy v2"
	project.Description = "a faster TLS proxy"
	require.NoError(t, storage.UpdateProject(ctx, project))

	updated, err := storage.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Proxy v2", updated.Title)
	assert.Equal(t, "a faster TLS proxy", updated.Description)
	assert.Nil(t, updated.DocPath)
}

func TestUpdateProject_NotFound(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	err := storage.UpdateProject(context.Background(), &Project{ID: 42, Title: "x", Description: "y"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProjects_OrderedByIDDesc(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	first := createTestProject(t, storage, "first")
	second := createTestProject(t, storage, "second")
	third := createTestProject(t, storage, "third")

	projects, err := storage.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, third.ID, projects[0].ID)
	assert.Equal(t, second.ID, projects[1].ID)
	assert.Equal(t, first.ID, projects[2].ID)
}

func TestListProjects_Empty(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	projects, err := storage.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestInsertAndListTags(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	a := createTestProject(t, storage, "a", [2]string{"technology", "rust"}, [2]string{"extra", "foo"})
	b := createTestProject(t, storage, "b", [2]string{"technology", "go"})

	tags, err := storage.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 3)

	// Insertion order
	assert.Equal(t, a.ID, tags[0].ProjectID)
	assert.Equal(t, "rust", tags[0].Value)
	assert.Equal(t, "foo", tags[1].Value)
	assert.Equal(t, b.ID, tags[2].ProjectID)

	byProject, err := storage.ListTagsByProject(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, byProject, 2)
	assert.Equal(t, "technology", byProject[0].Category)
	assert.Equal(t, "extra", byProject[1].Category)
}

func TestInsertTag_DuplicatesPreserved(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	project := createTestProject(t, storage, "dup",
		[2]string{"technology", "rust"},
		[2]string{"technology", "rust"},
	)

	tags, err := storage.ListTagsByProject(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestInsertTag_UnknownProject(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	err := storage.InsertTag(context.Background(), &Tag{ProjectID: 999, Category: "extra", Value: "orphan"})
	assert.Error(t, err) // Foreign key violation
}

func TestDeleteTagsByProject(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	a := createTestProject(t, storage, "a", [2]string{"technology", "rust"})
	b := createTestProject(t, storage, "b", [2]string{"technology", "go"})

	require.NoError(t, storage.DeleteTagsByProject(ctx, a.ID))

	tags, err := storage.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, b.ID, tags[0].ProjectID)
}

func TestDeleteProject_CascadesTags(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	a := createTestProject(t, storage, "a", [2]string{"technology", "rust"}, [2]string{"extra", "foo"})
	b := createTestProject(t, storage, "b", [2]string{"technology", "go"})

	require.NoError(t, storage.DeleteProject(ctx, a.ID))

	_, err := storage.GetProject(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	tags, err := storage.ListTags(ctx)
	require.NoError(t, err)
	for _, tag := range tags {
		assert.NotEqual(t, a.ID, tag.ProjectID, "no tag may reference a deleted project")
	}
	assert.Len(t, tags, 1)

	_, err = storage.GetProject(ctx, b.ID)
	assert.NoError(t, err)
}

func TestDeleteProject_NotFound(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	err := storage.DeleteProject(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransaction_Commit(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)

	project := &Project{Title: "tx", Description: "in a transaction"}
	require.NoError(t, tx.CreateProject(ctx, project))
	require.NoError(t, tx.InsertTag(ctx, &Tag{ProjectID: project.ID, Category: "extra", Value: "v"}))

	// Reads inside the transaction see uncommitted rows
	tags, err := tx.ListTagsByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	require.NoError(t, tx.Commit())

	got, err := storage.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "tx", got.Title)
}

func TestTransaction_Rollback(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	existing := createTestProject(t, storage, "keep", [2]string{"technology", "rust"})

	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.DeleteProject(ctx, existing.ID))
	created := &Project{Title: "discard", Description: "rolled back"}
	require.NoError(t, tx.CreateProject(ctx, created))
	require.NoError(t, tx.Rollback())

	_, err = storage.GetProject(ctx, existing.ID)
	assert.NoError(t, err)
	tags, err := storage.ListTagsByProject(ctx, existing.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	_, err = storage.GetProject(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransaction_NestedNotSupported(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.BeginTx(ctx)
	assert.Error(t, err)
	assert.NoError(t, tx.Close())
}

func TestGetStatus(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	createTestProject(t, storage, "a", [2]string{"technology", "rust"}, [2]string{"extra", "foo"})
	createTestProject(t, storage, "b")

	status, err := storage.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, status.ProjectsCount)
	assert.Equal(t, 2, status.TagsCount)
	assert.Equal(t, CurrentSchemaVersion, status.SchemaVersion)
	assert.GreaterOrEqual(t, status.SizeMB, 0.0)
}

func TestConversions(t *testing.T) {
	p := &Project{ID: 3, Title: "t", Description: "d"}
	tp := p.ToTypesProject()
	assert.Equal(t, int64(3), tp.ID)
	assert.Equal(t, "t", tp.Title)
	assert.Equal(t, "d", tp.Description)

	tag := &Tag{ProjectID: 3, Category: "technology", Value: "go"}
	tt := tag.ToTypesTag()
	back := FromTypesTag(tt, 3)
	assert.Equal(t, tag.Category, back.Category)
	assert.Equal(t, tag.Value, back.Value)
	assert.Equal(t, int64(3), back.ProjectID)
}

func TestRevision_ChangesOnEveryWrite(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	revision := func() int64 {
		t.Helper()
		r, err := storage.Revision(ctx)
		require.NoError(t, err)
		return r
	}

	start := revision()
	assert.Equal(t, start, revision(), "reads must not change the revision")

	project := createTestProject(t, storage, "a")
	afterCreate := revision()
	assert.Greater(t, afterCreate, start)

	require.NoError(t, storage.InsertTag(ctx, &Tag{ProjectID: project.ID, Category: "extra", Value: "v"}))
	afterTag := revision()
	assert.Greater(t, afterTag, afterCreate)

	project.Title = "b"
	require.NoError(t, storage.UpdateProject(ctx, project))
	afterUpdate := revision()
	assert.Greater(t, afterUpdate, afterTag)

	require.NoError(t, storage.DeleteProject(ctx, project.ID))
	assert.Greater(t, revision(), afterUpdate)
}

func TestRevision_RolledBackWriteLeavesRevision(t *testing.T) {
	storage := setupTestDB(t)
	defer storage.Close()

	ctx := context.Background()
	before, err := storage.Revision(ctx)
	require.NoError(t, err)

	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateProject(ctx, &Project{Title: "discard", Description: "rolled back"}))
	require.NoError(t, tx.Rollback())

	after, err := storage.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRevision_SharedAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	writer, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer writer.Close()

	reader, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer reader.Close()

	ctx := context.Background()
	before, err := reader.Revision(ctx)
	require.NoError(t, err)

	createTestProject(t, writer, "from another handle")

	after, err := reader.Revision(ctx)
	require.NoError(t, err)
	assert.Greater(t, after, before)
}
