package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/dshills/projcat/internal/catalog"
	"github.com/dshills/projcat/internal/searcher"
	"github.com/dshills/projcat/internal/storage"
	"github.com/dshills/projcat/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams    = -32602 // Invalid method parameters
	ErrorCodeInternalError    = -32603 // Internal JSON-RPC error
	ErrorCodeProjectNotFound  = -32001 // No project with the given ID
	ErrorCodeValidationFailed = -32002 // Title, description or tags rejected
)

// handleSearchProjects handles the search_projects tool invocation
func (s *Server) handleSearchProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Every argument is optional
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok && request.Params.Arguments != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	filter, err := s.parseFilter(args)
	if err != nil {
		return nil, err
	}

	resp, err := s.service.Search(ctx, searcher.SearchRequest{
		Query:    getStringDefault(args, "query", ""),
		Filter:   filter,
		UseCache: true,
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"results":       resp.Results,
		"total_results": resp.TotalResults,
		"ranked":        resp.Ranked,
		"cache_hit":     resp.CacheHit,
		"duration_ms":   resp.Duration.Milliseconds(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// parseFilter reads the filters and match_modes arguments
func (s *Server) parseFilter(args map[string]interface{}) (searcher.Filter, error) {
	tax := s.service.Taxonomy()
	filter := searcher.Filter{
		Selected: make(map[string][]string),
		Modes:    make(map[string]types.MatchMode),
	}

	if raw, present := args["filters"]; present && raw != nil {
		filters, ok := raw.(map[string]interface{})
		if !ok {
			return filter, newMCPError(ErrorCodeInvalidParams, "filters must be an object", map[string]interface{}{
				"param": "filters",
			})
		}

		for category, rawValues := range filters {
			if !tax.Has(category) {
				data := map[string]interface{}{
					"param":    "filters",
					"category": category,
				}
				if suggestion, ok := tax.Suggest(category); ok {
					data["suggestion"] = suggestion
				}
				return filter, newMCPError(ErrorCodeInvalidParams, "unknown category", data)
			}

			values, err := stringSlice(rawValues)
			if err != nil {
				return filter, newMCPError(ErrorCodeInvalidParams, "filter values must be an array of strings", map[string]interface{}{
					"param":    "filters",
					"category": category,
				})
			}
			filter.Selected[category] = values
		}
	}

	if raw, present := args["match_modes"]; present && raw != nil {
		modes, ok := raw.(map[string]interface{})
		if !ok {
			return filter, newMCPError(ErrorCodeInvalidParams, "match_modes must be an object", map[string]interface{}{
				"param": "match_modes",
			})
		}

		for category, rawMode := range modes {
			mode, ok := rawMode.(string)
			if !ok || (mode != string(types.MatchAny) && mode != string(types.MatchAll)) {
				return filter, newMCPError(ErrorCodeInvalidParams, "invalid match mode", map[string]interface{}{
					"param":    "match_modes",
					"category": category,
					"allowed":  []string{string(types.MatchAny), string(types.MatchAll)},
				})
			}
			if !tax.Has(category) {
				s.logger.Warn("ignoring match mode for unknown category", zap.String("category", category))
				continue
			}
			filter.Modes[category] = types.ParseMatchMode(mode)
		}
	}

	return filter, nil
}

// handleGetProject handles the get_project tool invocation
func (s *Server) handleGetProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, err := requireID(args)
	if err != nil {
		return nil, err
	}

	detail, err := s.service.Get(ctx, id)
	if err != nil {
		return nil, mutationError("failed to get project", id, err)
	}

	response := map[string]interface{}{
		"id":          detail.ID,
		"title":       detail.Title,
		"description": detail.Description,
		"doc_path":    detail.DocPath,
		"tags":        detail.Tags,
		"tag_map":     detail.TagMap,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCreateProject handles the create_project tool invocation
func (s *Server) handleCreateProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	in, err := s.parseProjectInput(args)
	if err != nil {
		return nil, err
	}

	id, err := s.service.Create(ctx, in)
	if err != nil {
		return nil, mutationError("failed to create project", 0, err)
	}

	response := map[string]interface{}{
		"success": true,
		"id":      id,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleUpdateProject handles the update_project tool invocation
func (s *Server) handleUpdateProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, err := requireID(args)
	if err != nil {
		return nil, err
	}

	in, err := s.parseProjectInput(args)
	if err != nil {
		return nil, err
	}

	if err := s.service.Update(ctx, id, in); err != nil {
		return nil, mutationError("failed to update project", id, err)
	}

	response := map[string]interface{}{
		"success": true,
		"id":      id,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDeleteProject handles the delete_project tool invocation
func (s *Server) handleDeleteProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, err := requireID(args)
	if err != nil {
		return nil, err
	}

	if err := s.service.Delete(ctx, id); err != nil {
		return nil, mutationError("failed to delete project", id, err)
	}

	response := map[string]interface{}{
		"success": true,
		"id":      id,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListCategories handles the list_categories tool invocation
func (s *Server) handleListCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tax := s.service.Taxonomy()

	categories := make([]map[string]interface{}, 0, len(tax.Categories()))
	for _, name := range tax.Categories() {
		categories = append(categories, map[string]interface{}{
			"name":   name,
			"values": tax.Values(name),
		})
	}

	response := map[string]interface{}{
		"categories":     categories,
		"extra_category": types.CategoryExtra,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.service.Status(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"projects_count": status.ProjectsCount,
		"tags_count":     status.TagsCount,
		"size_mb":        fmt.Sprintf("%.2f", status.SizeMB),
		"schema_version": status.SchemaVersion,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// parseProjectInput reads title, description and tags
func (s *Server) parseProjectInput(args map[string]interface{}) (catalog.ProjectInput, error) {
	title, ok := args["title"].(string)
	if !ok {
		return catalog.ProjectInput{}, newMCPError(ErrorCodeInvalidParams, "title parameter is required", map[string]interface{}{
			"param":  "title",
			"reason": "missing or not a string",
		})
	}

	description, ok := args["description"].(string)
	if !ok {
		return catalog.ProjectInput{}, newMCPError(ErrorCodeInvalidParams, "description parameter is required", map[string]interface{}{
			"param":  "description",
			"reason": "missing or not a string",
		})
	}

	var tags []string
	if raw, present := args["tags"]; present && raw != nil {
		var err error
		tags, err = stringSlice(raw)
		if err != nil {
			return catalog.ProjectInput{}, newMCPError(ErrorCodeInvalidParams, "tags must be an array of strings", map[string]interface{}{
				"param": "tags",
			})
		}
	}

	in := catalog.FlatInput(title, description, tags, s.service.Taxonomy())

	if raw, present := args["doc_path"]; present && raw != nil {
		docPath, ok := raw.(string)
		if !ok {
			return catalog.ProjectInput{}, newMCPError(ErrorCodeInvalidParams, "doc_path must be a string", map[string]interface{}{
				"param": "doc_path",
			})
		}
		in.DocPath = docPath
	}

	return in, nil
}

// Helper functions

// mutationError maps catalog errors onto MCP error codes
func mutationError(message string, id int64, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return newMCPError(ErrorCodeProjectNotFound, "project not found", map[string]interface{}{
			"id": id,
		})
	case errors.Is(err, catalog.ErrInvalidInput):
		return newMCPError(ErrorCodeValidationFailed, "validation failed", map[string]interface{}{
			"reason": err.Error(),
		})
	default:
		return newMCPError(ErrorCodeInternalError, message, map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// requireID extracts a positive integer id parameter
func requireID(args map[string]interface{}) (int64, error) {
	var id int64
	switch v := args["id"].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, newMCPError(ErrorCodeInvalidParams, "id must be an integer", map[string]interface{}{
				"param": "id",
				"value": v,
			})
		}
		id = int64(v)
	case int:
		id = int64(v)
	case int64:
		id = v
	default:
		return 0, newMCPError(ErrorCodeInvalidParams, "id parameter is required", map[string]interface{}{
			"param":  "id",
			"reason": "missing or not a number",
		})
	}

	if id < 1 {
		return 0, newMCPError(ErrorCodeInvalidParams, "id must be positive", map[string]interface{}{
			"param": "id",
			"value": id,
		})
	}
	return id, nil
}

// stringSlice converts a decoded JSON array into strings
func stringSlice(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected array, got %T", raw)
	}
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
