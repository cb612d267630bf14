package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func idProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
		"minimum":     1,
	}
}

func tagsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Tag values. Each value is assigned to the first taxonomy category that lists it; unknown values become extra tags",
		"items": map[string]interface{}{
			"type": "string",
		},
	}
}

// searchProjectsTool returns the tool definition for search_projects
func searchProjectsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_projects",
		Description: "Filter the project catalog by tag category and rank it by fuzzy similarity to a free-text query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free-text query matched against title, description and tag values. Empty keeps store order",
				},
				"filters": map[string]interface{}{
					"type":        "object",
					"description": "Selected values per category, e.g. {\"technology\": [\"Python\", \"SQL\"]}",
					"additionalProperties": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
				},
				"match_modes": map[string]interface{}{
					"type":        "object",
					"description": "Match mode per category: any (default) or all",
					"additionalProperties": map[string]interface{}{
						"type": "string",
						"enum": []string{"any", "all"},
					},
				},
			},
		},
	}
}

// getProjectTool returns the tool definition for get_project
func getProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_project",
		Description: "Fetch one project with its tags",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": idProperty("Project ID"),
			},
			Required: []string{"id"},
		},
	}
}

// createProjectTool returns the tool definition for create_project
func createProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_project",
		Description: "Add a project to the catalog",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Project title (non-empty)",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Project description (non-empty)",
				},
				"doc_path": docPathProperty(),
				"tags":     tagsProperty(),
			},
			Required: []string{"title", "description"},
		},
	}
}

// updateProjectTool returns the tool definition for update_project
func updateProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_project",
		Description: "Replace a project's title, description and tags",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": idProperty("Project ID"),
				"title": map[string]interface{}{
					"type":        "string",
					"description": "New title (non-empty)",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "New description (non-empty)",
				},
				"doc_path": docPathProperty(),
				"tags":     tagsProperty(),
			},
			Required: []string{"id", "title", "description"},
		},
	}
}

// deleteProjectTool returns the tool definition for delete_project
func deleteProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_project",
		Description: "Delete a project and all of its tags",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": idProperty("Project ID"),
			},
			Required: []string{"id"},
		},
	}
}

// listCategoriesTool returns the tool definition for list_categories
func listCategoriesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_categories",
		Description: "List the taxonomy categories and their recognized values, in definition order",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report catalog size and schema version",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// docPathProperty describes the optional doc_path argument
func docPathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Optional path or URL of the project write-up; omitted or empty clears it",
	}
}
