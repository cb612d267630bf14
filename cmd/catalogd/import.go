package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/projcat/internal/importer"
)

var (
	importWorkers   int
	importBatchSize int
)

var importCmd = &cobra.Command{
	Use:   "import <seed.yaml>",
	Short: "Import projects from a YAML seed file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().IntVar(&importWorkers, "workers", 0, "Concurrent batches (default: number of CPUs)")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 0, "Records per transaction (default: 50)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext()
	defer stop()

	imp := importer.New(a.store, a.taxonomy, a.logger)
	stats, err := imp.ImportFile(ctx, args[0], &importer.Config{
		Workers:   importWorkers,
		BatchSize: importBatchSize,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d projects (%d tags) in %s\n",
		stats.ProjectsImported, stats.TagsCreated, stats.Duration.Round(time.Millisecond))
	if stats.ProjectsFailed > 0 {
		fmt.Fprintf(out, "%d records failed:\n", stats.ProjectsFailed)
		for _, msg := range stats.ErrorMessages {
			fmt.Fprintf(out, "  %s\n", msg)
		}
	}
	return nil
}
