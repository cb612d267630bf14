package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpserver "github.com/dshills/projcat/internal/http"
)

const shutdownTimeout = 10 * time.Second

var allowOrigins []string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and pages",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringSliceVar(&allowOrigins, "allow-origin", nil,
		"CORS origin allowed to call the API (repeatable, default any)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	server, err := httpserver.NewServer(a.service, a.logger, &httpserver.Config{
		Host:         a.config.Server.Host,
		Port:         a.config.Server.Port,
		AllowOrigins: allowOrigins,
	})
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("received shutdown signal")
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
