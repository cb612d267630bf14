package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dshills/projcat/internal/catalog"
	"github.com/dshills/projcat/internal/searcher"
	"github.com/dshills/projcat/internal/storage"
	"github.com/dshills/projcat/pkg/types"
)

const (
	indexTemplate = "index.html"
	formTemplate  = "form.html"
)

// pageFilters are the categories offered on the index page, in display order
var pageFilters = []string{
	searcher.CategoryClient,
	searcher.CategoryDomain,
	searcher.CategoryTechnology,
	searcher.CategoryProjectType,
}

type projectView struct {
	ID          int64
	Title       string
	Description string
	Tags        []string
}

// categoryField is one group of checkboxes
type categoryField struct {
	Name     string
	Options  []string
	Selected []string
}

type indexPage struct {
	Query    string
	Filters  []categoryField
	Projects []projectView
}

type formPage struct {
	Heading     string
	Action      string
	Title       string
	Description string
	DocPath     string
	Categories  []categoryField
	ExtraTags   string
	Error       string
}

// handleIndexPage renders the page shape for the query string
func (s *Server) handleIndexPage(c echo.Context) error {
	params := c.QueryParams()
	req := searcher.PageRequest{
		Query:       params.Get(searcher.QueryParam),
		Client:      params[searcher.CategoryClient],
		Domain:      params[searcher.CategoryDomain],
		Technology:  params[searcher.CategoryTechnology],
		ProjectType: params[searcher.CategoryProjectType],
	}

	resp, err := s.service.Page(c.Request().Context(), req)
	if err != nil {
		s.logger.Error("page query failed", zap.Error(err))
		return c.String(http.StatusInternalServerError, "internal error")
	}

	tax := s.service.Taxonomy()
	data := indexPage{
		Query:    req.Query,
		Filters:  make([]categoryField, 0, len(pageFilters)),
		Projects: make([]projectView, 0, len(resp.Projects)),
	}
	for _, category := range pageFilters {
		data.Filters = append(data.Filters, categoryField{
			Name:     category,
			Options:  tax.Values(category),
			Selected: params[category],
		})
	}
	for _, p := range resp.Projects {
		data.Projects = append(data.Projects, projectView{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Tags:        resp.ProjectTags[p.ID],
		})
	}

	return c.Render(http.StatusOK, indexTemplate, data)
}

func (s *Server) handleCreateForm(c echo.Context) error {
	return c.Render(http.StatusOK, formTemplate, s.newFormPage("Add project", "/create", nil))
}

func (s *Server) handleCreateSubmit(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return c.String(http.StatusBadRequest, "invalid form")
	}

	in := s.formInput(form)
	if _, err := s.service.Create(c.Request().Context(), in); err != nil {
		return s.formError(c, s.newFormPage("Add project", "/create", &in), err)
	}

	return c.Redirect(http.StatusFound, "/")
}

func (s *Server) handleEditForm(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.String(http.StatusNotFound, "Project not found")
	}

	detail, err := s.service.Get(c.Request().Context(), id)
	if err != nil {
		return s.pageError(c, err)
	}

	in := catalog.ProjectInput{Title: detail.Title, Description: detail.Description, DocPath: detail.DocPath}
	for _, category := range append(s.service.Taxonomy().Categories(), types.CategoryExtra) {
		for _, v := range detail.TagMap[category] {
			in.Tags = append(in.Tags, types.Tag{Category: category, Value: v})
		}
	}

	return c.Render(http.StatusOK, formTemplate, s.newFormPage("Edit project", editAction(id), &in))
}

func (s *Server) handleEditSubmit(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.String(http.StatusNotFound, "Project not found")
	}

	form, err := c.FormParams()
	if err != nil {
		return c.String(http.StatusBadRequest, "invalid form")
	}

	in := s.formInput(form)
	if err := s.service.Update(c.Request().Context(), id, in); err != nil {
		return s.formError(c, s.newFormPage("Edit project", editAction(id), &in), err)
	}

	return c.Redirect(http.StatusFound, "/")
}

func (s *Server) handleDeleteSubmit(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.String(http.StatusNotFound, "Project not found")
	}

	if err := s.service.Delete(c.Request().Context(), id); err != nil {
		return s.pageError(c, err)
	}

	return c.Redirect(http.StatusFound, "/")
}

// formInput reads the grouped checkboxes and the extra_tags field
func (s *Server) formInput(form map[string][]string) catalog.ProjectInput {
	in := catalog.GroupedInput(
		first(form["title"]),
		first(form["description"]),
		form,
		first(form["extra_tags"]),
		s.service.Taxonomy().Categories(),
	)
	in.DocPath = first(form["doc_path"])
	return in
}

// newFormPage builds the form view, prefilled from in when it is not nil
func (s *Server) newFormPage(heading, action string, in *catalog.ProjectInput) formPage {
	tax := s.service.Taxonomy()
	page := formPage{Heading: heading, Action: action}

	selected := make(types.TagMap)
	if in != nil {
		page.Title = in.Title
		page.Description = in.Description
		page.DocPath = in.DocPath
		for _, tag := range in.Tags {
			selected.Add(tag.Category, tag.Value)
		}
		page.ExtraTags = strings.Join(selected[types.CategoryExtra], ", ")
	}

	for _, category := range tax.Categories() {
		options := tax.Values(category)
		for _, v := range selected[category] {
			if !containsValue(options, v) {
				options = append(options, v)
			}
		}
		page.Categories = append(page.Categories, categoryField{
			Name:     category,
			Options:  options,
			Selected: selected[category],
		})
	}

	return page
}

// formError re-renders the form on validation failure
func (s *Server) formError(c echo.Context, page formPage, err error) error {
	if errors.Is(err, catalog.ErrInvalidInput) {
		page.Error = err.Error()
		return c.Render(http.StatusBadRequest, formTemplate, page)
	}
	return s.pageError(c, err)
}

func (s *Server) pageError(c echo.Context, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return c.String(http.StatusNotFound, "Project not found")
	}
	s.logger.Error("page request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.String(http.StatusInternalServerError, "internal error")
}

func editAction(id int64) string {
	return fmt.Sprintf("/edit/%d", id)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func containsValue(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
