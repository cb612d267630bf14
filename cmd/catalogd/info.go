package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/projcat/internal/storage"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List taxonomy categories and their values",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		for _, category := range a.taxonomy.Categories() {
			fmt.Fprintf(out, "%s: %s\n", category, strings.Join(a.taxonomy.Values(category), ", "))
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog counts and schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		status, err := a.service.Status(context.Background())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Projects:       %d\n", status.ProjectsCount)
		fmt.Fprintf(out, "Tags:           %d\n", status.TagsCount)
		fmt.Fprintf(out, "Schema version: %s\n", status.SchemaVersion)
		fmt.Fprintf(out, "Size:           %.2f MB\n", status.SizeMB)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "catalogd\n")
		fmt.Fprintf(out, "Version: %s\n", version)
		fmt.Fprintf(out, "Build Time: %s\n", buildTime)
		fmt.Fprintf(out, "Build Mode: %s\n", storage.BuildMode)
		fmt.Fprintf(out, "SQLite Driver: %s\n", storage.DriverName)
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd, statusCmd, versionCmd)
}
