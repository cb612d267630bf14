package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/projcat/internal/catalog"
	"github.com/dshills/projcat/internal/searcher"
	"github.com/dshills/projcat/internal/storage"
	"github.com/dshills/projcat/internal/taxonomy"
	"github.com/dshills/projcat/pkg/types"
)

func newTestService(t *testing.T) *catalog.Service {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tax := taxonomy.Default()
	s := searcher.NewSearcher(store, tax, zap.NewNop(), searcher.Options{})
	return catalog.NewService(store, tax, s, zap.NewNop())
}

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	server, err := NewServer(newTestService(t), zap.NewNop(), nil)
	require.NoError(t, err)
	return server
}

func serve(server *Server, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, server *Server, method, target string, v interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return serve(server, method, target, body, "application/json")
}

func postForm(server *Server, target string, form url.Values) *httptest.ResponseRecorder {
	return serve(server, http.MethodPost, target, []byte(form.Encode()), "application/x-www-form-urlencoded")
}

func createProject(t *testing.T, server *Server, title, description string, tags ...string) int64 {
	t.Helper()

	rec := postJSON(t, server, http.MethodPost, "/api/projects", ProjectRequest{
		Title:       title,
		Description: description,
		Tags:        tags,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp CreateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.ID
}

func listProjects(t *testing.T, server *Server, query string) []types.ProjectSummary {
	t.Helper()

	rec := serve(server, http.MethodGet, "/api/projects?"+query, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var results []types.ProjectSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	return results
}

func TestNewServer(t *testing.T) {
	t.Run("creates server with valid config", func(t *testing.T) {
		cfg := &Config{Host: "localhost", Port: 9090}

		server, err := NewServer(newTestService(t), zap.NewNop(), cfg)
		require.NoError(t, err)
		assert.NotNil(t, server.echo)
		assert.Equal(t, cfg, server.config)
	})

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server, err := NewServer(newTestService(t), zap.NewNop(), nil)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", server.config.Host)
		assert.Equal(t, 8080, server.config.Port)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(newTestService(t), nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when service is nil", func(t *testing.T) {
		_, err := NewServer(nil, zap.NewNop(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "service cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t)

	rec := serve(server, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleMetrics(t *testing.T) {
	server := setupTestServer(t)

	serve(server, http.MethodGet, "/health", nil, "")
	rec := serve(server, http.MethodGet, "/metrics", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "projcat_http_requests_total")
}

func TestCORS(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPI_CreateAndGet(t *testing.T) {
	server := setupTestServer(t)

	id := createProject(t, server, "Fraud Dashboard", "Power BI dashboard for fraud", "Power BI", "fraud", "bespoke")

	rec := serve(server, http.MethodGet, "/api/projects/"+strconv.FormatInt(id, 10), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail types.ProjectDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, id, detail.ID)
	assert.Equal(t, "Fraud Dashboard", detail.Title)
	assert.Equal(t, []string{"Power BI", "fraud", "bespoke"}, detail.Tags)
}

func TestAPI_DocPath(t *testing.T) {
	server := setupTestServer(t)

	rec := postJSON(t, server, http.MethodPost, "/api/projects", ProjectRequest{
		Title:       "Documented",
		Description: "has a write-up",
		DocPath:     "docs/write-up.md",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created CreateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	target := "/api/projects/" + strconv.FormatInt(created.ID, 10)

	rec = serve(server, http.MethodGet, target, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail types.ProjectDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "docs/write-up.md", detail.DocPath)

	rec = postJSON(t, server, http.MethodPut, target, ProjectRequest{Title: "Documented", Description: "no write-up"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(server, http.MethodGet, target, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "doc_path")
}

func TestAPI_CreateValidation(t *testing.T) {
	server := setupTestServer(t)

	tests := []struct {
		name string
		req  ProjectRequest
	}{
		{"blank title", ProjectRequest{Title: "  ", Description: "d"}},
		{"missing description", ProjectRequest{Title: "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, server, http.MethodPost, "/api/projects", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, "invalid input")
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		rec := serve(server, http.MethodPost, "/api/projects", []byte("{"), "application/json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	assert.Empty(t, listProjects(t, server, ""))
}

func TestAPI_GetNotFound(t *testing.T) {
	server := setupTestServer(t)

	for _, target := range []string{"/api/projects/999", "/api/projects/abc", "/api/projects/0"} {
		rec := serve(server, http.MethodGet, target, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Project not found", resp.Error)
	}
}

func TestAPI_Update(t *testing.T) {
	server := setupTestServer(t)
	id := createProject(t, server, "Old", "old description", "SQL")
	target := "/api/projects/" + strconv.FormatInt(id, 10)

	rec := postJSON(t, server, http.MethodPut, target, ProjectRequest{
		Title:       "New",
		Description: "new description",
		Tags:        []string{"Python", "health"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UpdateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	results := listProjects(t, server, "")
	require.Len(t, results, 1)
	assert.Equal(t, "New", results[0].Title)
	assert.Equal(t, types.TagMap{"technology": {"Python"}, "domain": {"health"}}, results[0].Tags)

	t.Run("validation failure", func(t *testing.T) {
		rec := postJSON(t, server, http.MethodPut, target, ProjectRequest{Title: "", Description: "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing project", func(t *testing.T) {
		rec := postJSON(t, server, http.MethodPut, "/api/projects/999", ProjectRequest{Title: "t", Description: "d"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAPI_Delete(t *testing.T) {
	server := setupTestServer(t)
	id := createProject(t, server, "Doomed", "to be deleted", "SQL")
	target := "/api/projects/" + strconv.FormatInt(id, 10)

	rec := serve(server, http.MethodDelete, target, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(server, http.MethodGet, target, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(server, http.MethodDelete, target, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_List(t *testing.T) {
	server := setupTestServer(t)

	dash := createProject(t, server, "Fraud Dashboard", "Power BI dashboard", "Power BI", "fraud", "dashboard")
	etl := createProject(t, server, "Claims ETL", "Python pipeline", "Python", "SQL", "health", "automation")
	scraper := createProject(t, server, "Permit Scraper", "scrapes permits", "Python", "environment", "scraping")

	t.Run("no filters returns newest first", func(t *testing.T) {
		results := listProjects(t, server, "")
		require.Len(t, results, 3)
		assert.Equal(t, []int64{scraper, etl, dash}, []int64{results[0].ID, results[1].ID, results[2].ID})
	})

	t.Run("any mode by default", func(t *testing.T) {
		results := listProjects(t, server, "technology=Python&technology=Power+BI")
		assert.Len(t, results, 3)
	})

	t.Run("all mode", func(t *testing.T) {
		results := listProjects(t, server, "technology=Python&technology=SQL&technology_match=all")
		require.Len(t, results, 1)
		assert.Equal(t, etl, results[0].ID)
	})

	t.Run("query ranks results", func(t *testing.T) {
		results := listProjects(t, server, "q=fraud+dashbord")
		require.NotEmpty(t, results)
		assert.Equal(t, dash, results[0].ID)
		assert.Greater(t, results[0].Score, searcher.Threshold)
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		rec := serve(server, http.MethodGet, "/api/projects?domain=finance", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}

func TestAPI_ListUnknownParam(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	server, err := NewServer(newTestService(t), zap.New(core), nil)
	require.NoError(t, err)

	rec := serve(server, http.MethodGet, "/api/projects?technolgy=Python", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.FilterMessage("unknown filter parameter").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "technolgy", fields["param"])
	assert.Equal(t, "technology", fields["did_you_mean"])
}

func TestPage_Index(t *testing.T) {
	server := setupTestServer(t)
	createProject(t, server, "Fraud Dashboard", "Power BI dashboard", "Power BI", "fraud")
	createProject(t, server, "Claims ETL", "Python pipeline", "Python", "health")

	t.Run("lists every project", func(t *testing.T) {
		rec := serve(server, http.MethodGet, "/", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Fraud Dashboard")
		assert.Contains(t, body, "Claims ETL")
		assert.Contains(t, body, "Power BI, fraud")
	})

	t.Run("filters on fixed categories", func(t *testing.T) {
		rec := serve(server, http.MethodGet, "/?domain=health", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Claims ETL")
		assert.NotContains(t, body, "Fraud Dashboard")
		assert.Contains(t, body, `value="health" checked`)
	})

	t.Run("no matches", func(t *testing.T) {
		rec := serve(server, http.MethodGet, "/?q=zzzzzz", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "No projects found.")
	})
}

func TestPage_Create(t *testing.T) {
	server := setupTestServer(t)

	rec := serve(server, http.MethodGet, "/create", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="extra_tags"`)

	rec = postForm(server, "/create", url.Values{
		"title":       {"Grouped"},
		"description": {"from the form"},
		"technology":  {"SQL", "Tableau"},
		"domain":      {"finance"},
		"extra_tags":  {"legacy, , urgent"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	results := listProjects(t, server, "")
	require.Len(t, results, 1)
	assert.Equal(t, types.TagMap{
		"domain":     {"finance"},
		"technology": {"SQL", "Tableau"},
		"extra":      {"legacy", "urgent"},
	}, results[0].Tags)
}

func TestPage_DocPath(t *testing.T) {
	server := setupTestServer(t)

	rec := postForm(server, "/create", url.Values{
		"title":       {"Linked"},
		"description": {"with a document"},
		"doc_path":    {"https://example.org/report.pdf"},
	})
	require.Equal(t, http.StatusFound, rec.Code)

	results := listProjects(t, server, "")
	require.Len(t, results, 1)

	rec = serve(server, http.MethodGet, "/edit/"+strconv.FormatInt(results[0].ID, 10), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="https://example.org/report.pdf"`)
}

func TestPage_CreateValidation(t *testing.T) {
	server := setupTestServer(t)

	rec := postForm(server, "/create", url.Values{
		"title":       {"   "},
		"description": {"kept"},
		"domain":      {"health"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "title cannot be empty")
	assert.Contains(t, body, "kept")
	assert.Contains(t, body, `value="health" checked`)

	assert.Empty(t, listProjects(t, server, ""))
}

func TestPage_Edit(t *testing.T) {
	server := setupTestServer(t)
	id := createProject(t, server, "Editable", "before", "Python", "bespoke")
	target := "/edit/" + strconv.FormatInt(id, 10)

	rec := serve(server, http.MethodGet, target, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="Editable"`)
	assert.Contains(t, body, `value="Python" checked`)
	assert.Contains(t, body, `value="bespoke"`)

	rec = postForm(server, target, url.Values{
		"title":       {"Edited"},
		"description": {"after"},
		"domain":      {"education"},
	})
	require.Equal(t, http.StatusFound, rec.Code)

	results := listProjects(t, server, "")
	require.Len(t, results, 1)
	assert.Equal(t, "Edited", results[0].Title)
	assert.Equal(t, types.TagMap{"domain": {"education"}}, results[0].Tags)

	t.Run("missing project", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(server, http.MethodGet, "/edit/999", nil, "").Code)

		rec := postForm(server, "/edit/999", url.Values{"title": {"t"}, "description": {"d"}})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		rec := postForm(server, target, url.Values{"title": {"Edited"}, "description": {""}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.True(t, strings.Contains(rec.Body.String(), "description cannot be empty"))
	})
}

func TestPage_Delete(t *testing.T) {
	server := setupTestServer(t)
	id := createProject(t, server, "Doomed", "to be deleted")

	rec := postForm(server, "/delete/"+strconv.FormatInt(id, 10), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Empty(t, listProjects(t, server, ""))

	rec = postForm(server, "/delete/"+strconv.FormatInt(id, 10), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShutdown(t *testing.T) {
	server := setupTestServer(t)
	assert.NoError(t, server.Shutdown(context.Background()))
}
