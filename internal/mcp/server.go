package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dshills/projcat/internal/catalog"
)

const (
	// ServerName is the MCP server name
	ServerName = "projcat"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	service *catalog.Service
	logger  *zap.Logger
}

// NewServer creates a new MCP server exposing the catalog as tools
func NewServer(svc *catalog.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		mcp:     server.NewMCPServer(ServerName, ServerVersion),
		service: svc,
		logger:  logger,
	}
	s.registerTools()

	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("serving MCP on stdio", zap.String("server", ServerName))
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchProjectsTool(), s.handleSearchProjects)
	s.mcp.AddTool(getProjectTool(), s.handleGetProject)
	s.mcp.AddTool(createProjectTool(), s.handleCreateProject)
	s.mcp.AddTool(updateProjectTool(), s.handleUpdateProject)
	s.mcp.AddTool(deleteProjectTool(), s.handleDeleteProject)
	s.mcp.AddTool(listCategoriesTool(), s.handleListCategories)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
