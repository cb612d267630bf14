package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/projcat/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the catalog as MCP tools on stdio",
	Long:  "Serve the catalog as MCP tools on stdio. Stdout is reserved for the protocol; logs go to stderr.",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext()
	defer stop()

	server := mcp.NewServer(a.service, a.logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Serve(ctx)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("received shutdown signal")
		return nil
	case err := <-errChan:
		if err != nil {
			a.logger.Error("mcp server error", zap.Error(err))
		}
		return err
	}
}
