package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dshills/projcat/internal/catalog"
	"github.com/dshills/projcat/internal/searcher"
	"github.com/dshills/projcat/internal/storage"
)

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProjectRequest is the body for POST and PUT /api/projects.
type ProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DocPath     string   `json:"doc_path"`
	Tags        []string `json:"tags"`
}

// CreateResponse is the response body for POST /api/projects.
type CreateResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

// UpdateResponse is the response body for PUT /api/projects/:id.
type UpdateResponse struct {
	Success bool `json:"success"`
}

// handleListProjects runs a machine-shape query from the query string.
func (s *Server) handleListProjects(c echo.Context) error {
	tax := s.service.Taxonomy()

	req, unknown := searcher.ParseParams(c.QueryParams(), tax)
	for _, name := range unknown {
		fields := []zap.Field{zap.String("param", name)}
		if suggestion, ok := tax.Suggest(name); ok {
			fields = append(fields, zap.String("did_you_mean", suggestion))
		}
		s.logger.Warn("unknown filter parameter", fields...)
	}
	req.UseCache = true

	resp, err := s.service.Search(c.Request().Context(), req)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "search failed"})
	}

	return c.JSON(http.StatusOK, resp.Results)
}

// handleCreateProject creates a project from a flat tag list.
func (s *Server) handleCreateProject(c echo.Context) error {
	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	in := catalog.FlatInput(req.Title, req.Description, req.Tags, s.service.Taxonomy())
	in.DocPath = req.DocPath
	id, err := s.service.Create(c.Request().Context(), in)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, CreateResponse{Success: true, ID: id})
}

// handleGetProject returns one project with flat tag values.
func (s *Server) handleGetProject(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Project not found"})
	}

	detail, err := s.service.Get(c.Request().Context(), id)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, detail)
}

// handleUpdateProject replaces a project's fields and tags.
func (s *Server) handleUpdateProject(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Project not found"})
	}

	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	in := catalog.FlatInput(req.Title, req.Description, req.Tags, s.service.Taxonomy())
	in.DocPath = req.DocPath
	if err := s.service.Update(c.Request().Context(), id, in); err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, UpdateResponse{Success: true})
}

// handleDeleteProject removes a project and its tags.
func (s *Server) handleDeleteProject(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Project not found"})
	}

	if err := s.service.Delete(c.Request().Context(), id); err != nil {
		return s.writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// writeError maps catalog errors onto status codes
func (s *Server) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Project not found"})
	default:
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// parseID reads the :id path parameter
func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
