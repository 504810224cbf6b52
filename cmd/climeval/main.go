// Package main provides the climeval evaluation CLI.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/climagination/climeval/internal/config"
	"github.com/climagination/climeval/internal/grid"
	"github.com/climagination/climeval/internal/plotting"
	"github.com/climagination/climeval/internal/results"
	"github.com/climagination/climeval/internal/usecase"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Path to evaluation config YAML (required)")
	runName := flag.String("name", "", "Run name used in output file names (default: timestamp)")
	noPlots := flag.Bool("no-plots", false, "Skip plot rendering")
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("climeval version %s\n", version)
		return
	}

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required")
		printUsage()
		os.Exit(1)
	}

	if err := run(*configPath, *runName, *noPlots); err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}
}

func run(configPath, runName string, noPlots bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if runName == "" {
		runName = time.Now().UTC().Format("20060102T150405Z")
	}

	log.Printf("Project: %s", cfg.ProjectName)
	log.Printf("Run: %s", runName)

	eng := grid.NewEngine(cfg.Compute.EffectiveWorkers())
	log.Printf("Compute engine: %d workers", eng.Workers)

	set, err := usecase.Run(cfg, eng)
	if err != nil {
		return err
	}

	dir, err := results.Save(set, cfg.Output.Dir, cfg.ProjectName, runName)
	if err != nil {
		return fmt.Errorf("saving results: %w", err)
	}
	log.Printf("Results written to %s", dir)

	if !noPlots {
		if err := plotting.RenderAll(set, dir, runName, cfg.Output.Formats, cfg.Output.DPI); err != nil {
			return fmt.Errorf("rendering plots: %w", err)
		}
	}

	// Record the run in the catalog so the results server can list it.
	catalogPath := filepath.Join(cfg.Output.Dir, "catalog.db")
	catalog, err := results.OpenCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("opening run catalog: %w", err)
	}
	defer catalog.Close()

	runID := uuid.NewString()
	if err := catalog.RecordRun(runID, cfg.ProjectName, runName, cfg.Description, time.Now().UTC()); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	if err := catalog.RecordScalars(runID, set); err != nil {
		return fmt.Errorf("recording scalar metrics: %w", err)
	}
	log.Printf("Run recorded: %s", runID)

	return nil
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Climate Model Evaluation v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  climeval -config <path> [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -config        Path to evaluation config YAML (required)")
	fmt.Println("  -name          Run name used in output file names (default: UTC timestamp)")
	fmt.Println("  -no-plots      Skip plot rendering")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Run an evaluation")
	fmt.Println("  climeval -config configs/eval.yaml")
	fmt.Println()
	fmt.Println("  # Name the run and skip plots")
	fmt.Println("  climeval -config configs/eval.yaml -name baseline -no-plots")
	fmt.Println()
}
