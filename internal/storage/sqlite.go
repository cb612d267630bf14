package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys so tag rows cascade with their project
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction. Every method goes through the
// transaction handle; the pool holds a single connection, so touching s.db
// while a transaction is open would block forever.
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Project operations

func createProjectWithQuerier(ctx context.Context, q querier, project *Project) error {
	query := `
		INSERT INTO projects (title, description, doc_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		project.Title, project.Description, project.DocPath, now, now)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	project.ID = id
	project.CreatedAt = now
	project.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateProject(ctx context.Context, project *Project) error {
	return createProjectWithQuerier(ctx, s.querier(), project)
}

func getProjectWithQuerier(ctx context.Context, q querier, projectID int64) (*Project, error) {
	query := `
		SELECT id, title, description, doc_path, created_at, updated_at
		FROM projects
		WHERE id = ?
	`
	var project Project
	var docPath sql.NullString
	err := q.QueryRowContext(ctx, query, projectID).Scan(
		&project.ID, &project.Title, &project.Description,
		&docPath, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if docPath.Valid {
		project.DocPath = &docPath.String
	}
	return &project, nil
}

func (s *SQLiteStorage) GetProject(ctx context.Context, projectID int64) (*Project, error) {
	return getProjectWithQuerier(ctx, s.querier(), projectID)
}

func updateProjectWithQuerier(ctx context.Context, q querier, project *Project) error {
	query := `
		UPDATE projects
		SET title = ?, description = ?, doc_path = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		project.Title, project.Description, project.DocPath, now, project.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	project.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateProject(ctx context.Context, project *Project) error {
	return updateProjectWithQuerier(ctx, s.querier(), project)
}

// deleteProjectWithQuerier removes a project's tags and then the project.
// Callers must run it inside a transaction for the pair to be atomic.
func deleteProjectWithQuerier(ctx context.Context, q querier, projectID int64) error {
	if err := deleteTagsByProjectWithQuerier(ctx, q, projectID); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProject deletes a project and all of its tags in one transaction
func (s *SQLiteStorage) DeleteProject(ctx context.Context, projectID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteProjectWithQuerier(ctx, tx, projectID); err != nil {
		return err
	}

	return tx.Commit()
}

// listProjectsWithQuerier returns every project, most recently created first
func listProjectsWithQuerier(ctx context.Context, q querier) ([]*Project, error) {
	query := `
		SELECT id, title, description, doc_path, created_at, updated_at
		FROM projects
		ORDER BY id DESC
	`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var projects []*Project
	for rows.Next() {
		var project Project
		var docPath sql.NullString
		if err := rows.Scan(
			&project.ID, &project.Title, &project.Description,
			&docPath, &project.CreatedAt, &project.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if docPath.Valid {
			project.DocPath = &docPath.String
		}
		projects = append(projects, &project)
	}

	return projects, rows.Err()
}

func (s *SQLiteStorage) ListProjects(ctx context.Context) ([]*Project, error) {
	return listProjectsWithQuerier(ctx, s.querier())
}

// Tag operations

func insertTagWithQuerier(ctx context.Context, q querier, tag *Tag) error {
	query := `
		INSERT INTO tags (project_id, category, value, created_at)
		VALUES (?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query, tag.ProjectID, tag.Category, tag.Value, now)
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	tag.ID = id
	tag.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) InsertTag(ctx context.Context, tag *Tag) error {
	return insertTagWithQuerier(ctx, s.querier(), tag)
}

// listTagsWithQuerier scans tags in insertion order. A projectID of zero
// scans every project.
func listTagsWithQuerier(ctx context.Context, q querier, projectID int64) ([]*Tag, error) {
	query := `
		SELECT id, project_id, category, value, created_at
		FROM tags
	`
	var args []interface{}
	if projectID != 0 {
		query += " WHERE project_id = ?"
		args = append(args, projectID)
	}
	query += " ORDER BY id"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tags []*Tag
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.ProjectID, &tag.Category, &tag.Value, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}

	return tags, rows.Err()
}

func (s *SQLiteStorage) ListTags(ctx context.Context) ([]*Tag, error) {
	return listTagsWithQuerier(ctx, s.querier(), 0)
}

func (s *SQLiteStorage) ListTagsByProject(ctx context.Context, projectID int64) ([]*Tag, error) {
	return listTagsWithQuerier(ctx, s.querier(), projectID)
}

func deleteTagsByProjectWithQuerier(ctx context.Context, q querier, projectID int64) error {
	_, err := q.ExecContext(ctx, "DELETE FROM tags WHERE project_id = ?", projectID)
	if err != nil {
		return fmt.Errorf("failed to delete tags: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DeleteTagsByProject(ctx context.Context, projectID int64) error {
	return deleteTagsByProjectWithQuerier(ctx, s.querier(), projectID)
}

// Status operations

func getStatusWithQuerier(ctx context.Context, q querier) (*Status, error) {
	status := &Status{}

	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&status.ProjectsCount); err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags").Scan(&status.TagsCount); err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}

	// Calculate database size
	var pageCount, pageSize int
	if err := q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.SizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	version, err := currentSchemaVersion(ctx, q)
	if err != nil {
		return nil, err
	}
	status.SchemaVersion = version.String()

	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*Status, error) {
	return getStatusWithQuerier(ctx, s.querier())
}

func revisionWithQuerier(ctx context.Context, q querier) (int64, error) {
	var revision int64
	if err := q.QueryRowContext(ctx, "SELECT revision FROM catalog_revision WHERE id = 1").Scan(&revision); err != nil {
		return 0, fmt.Errorf("failed to read catalog revision: %w", err)
	}
	return revision, nil
}

func (s *SQLiteStorage) Revision(ctx context.Context) (int64, error) {
	return revisionWithQuerier(ctx, s.querier())
}

// Transaction implementations

func (t *sqliteTx) CreateProject(ctx context.Context, project *Project) error {
	return createProjectWithQuerier(ctx, t.querier(), project)
}

func (t *sqliteTx) GetProject(ctx context.Context, projectID int64) (*Project, error) {
	return getProjectWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) UpdateProject(ctx context.Context, project *Project) error {
	return updateProjectWithQuerier(ctx, t.querier(), project)
}

func (t *sqliteTx) DeleteProject(ctx context.Context, projectID int64) error {
	return deleteProjectWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) ListProjects(ctx context.Context) ([]*Project, error) {
	return listProjectsWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) InsertTag(ctx context.Context, tag *Tag) error {
	return insertTagWithQuerier(ctx, t.querier(), tag)
}

func (t *sqliteTx) ListTags(ctx context.Context) ([]*Tag, error) {
	return listTagsWithQuerier(ctx, t.querier(), 0)
}

func (t *sqliteTx) ListTagsByProject(ctx context.Context, projectID int64) ([]*Tag, error) {
	return listTagsWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) DeleteTagsByProject(ctx context.Context, projectID int64) error {
	return deleteTagsByProjectWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*Status, error) {
	return getStatusWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Revision(ctx context.Context) (int64, error) {
	return revisionWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
