// Package storage provides SQLite-based persistence for catalog projects and
// their tags.
//
// # Database Schema
//
// Tables:
//   - projects: id, title, description, optional doc_path, timestamps
//   - tags: project_id, category, value (ON DELETE CASCADE to projects)
//   - schema_version: applied migrations, ordered with semver
//
// Tag rows are not unique: the same (category, value) pair may be stored
// more than once for a project.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("catalog.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	project := &storage.Project{Title: "Proxy", Description: "a TLS proxy"}
//	if err := store.CreateProject(ctx, project); err != nil {
//	    return err
//	}
//
// # Scans
//
// ListProjects returns projects ordered by id descending (most recently
// created first). ListTags returns every tag in insertion order; the query
// engine groups them per project on each query.
//
// # Transactions
//
// Use transactions for multi-step mutations:
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	if err := tx.UpdateProject(ctx, project); err != nil {
//	    return err
//	}
//	if err := tx.DeleteTagsByProject(ctx, project.ID); err != nil {
//	    return err
//	}
//	for _, tag := range tags {
//	    if err := tx.InsertTag(ctx, tag); err != nil {
//	        return err
//	    }
//	}
//	return tx.Commit()
//
// DeleteProject always runs in its own transaction (or the caller's, when
// called on a Tx) so a project and its tags disappear together.
//
// The pool is limited to one connection. Inside a transaction, use only the
// Tx; calling the parent SQLiteStorage would wait on the connection the
// transaction holds.
//
// # Build Tags
//
// Pure Go build (default, or the purego tag) uses modernc.org/sqlite:
//
//	CGO_ENABLED=0 go build -tags "purego" ./...
//
// CGO build (sqlite_cgo tag) uses github.com/mattn/go-sqlite3:
//
//	CGO_ENABLED=1 go build -tags "sqlite_cgo" ./...
package storage
