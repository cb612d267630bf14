// Package mcp implements the Model Context Protocol (MCP) server for the
// project catalog.
//
// The server exposes the catalog to MCP clients as tools:
//   - search_projects: filter by tag category and rank by a free-text query
//   - get_project, create_project, update_project, delete_project
//   - list_categories: the taxonomy in definition order
//   - get_status: catalog size and schema version
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout carries the protocol, so the server logs to stderr only.
//
// # Basic Usage
//
//	catalogd mcp --config catalog.yaml
//
// # Tool: search_projects
//
//	Request:
//	{
//	  "name": "search_projects",
//	  "arguments": {
//	    "query": "fraud dashboard",
//	    "filters": {"technology": ["Python", "SQL"], "client": ["AHCA"]},
//	    "match_modes": {"technology": "all"}
//	  }
//	}
//
//	Response:
//	{
//	  "results": [
//	    {
//	      "id": 12,
//	      "title": "Medicaid fraud dashboard",
//	      "description": "Claims anomaly scoring",
//	      "tags": {"client": ["AHCA"], "technology": ["Python", "SQL"]},
//	      "score": 100
//	    }
//	  ],
//	  "total_results": 1,
//	  "ranked": true
//	}
//
// Filter categories must exist in the taxonomy; an unknown category is
// rejected with a suggestion when a close match exists.
//
// # Tool: create_project
//
//	{
//	  "name": "create_project",
//	  "arguments": {
//	    "title": "Proxy",
//	    "description": "a TLS proxy",
//	    "tags": ["Python", "bespoke"]
//	  }
//	}
//
// Tags are classified against the taxonomy; "bespoke" above is stored as an
// extra tag.
//
// # Error Codes
//
//	-32602  Invalid params (missing id, malformed filters, unknown category)
//	-32603  Internal error
//	-32001  Project not found
//	-32002  Validation failed (empty title or description)
package mcp
