// Package main provides the evaluation results HTTP server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	httpHandler "github.com/climagination/climeval/internal/http"
	"github.com/climagination/climeval/internal/results"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("climeval-server version %s\n", version)
		return
	}

	// Load configuration from environment.
	port := getEnv("PORT", "8080")
	resultsDir := getEnv("RESULTS_DIR", "./results")
	catalogPath := getEnv("CATALOG_PATH", "./results/catalog.db")

	log.Printf("Starting evaluation results server...")
	log.Printf("Port: %s", port)
	log.Printf("Results directory: %s", resultsDir)
	log.Printf("Catalog path: %s", catalogPath)

	// Open the run catalog.
	catalog, err := results.OpenCatalog(catalogPath)
	if err != nil {
		log.Fatalf("Failed to open run catalog: %v", err)
	}
	defer catalog.Close()

	// Setup router.
	router := httpHandler.SetupRouter(catalog, resultsDir)

	// Start server.
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Health check: http://localhost:%s/health", port)
	log.Printf("API endpoints:")
	log.Printf("  - GET /v1/runs")
	log.Printf("  - GET /v1/runs/:id")
	log.Printf("  - GET /v1/runs/:id/summary")
	log.Printf("  - GET /v1/runs/:id/metrics/:name")

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Climate Evaluation Results Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  climeval-server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  RESULTS_DIR             Evaluation output directory (default: ./results)")
	fmt.Println("  CATALOG_PATH            Run catalog SQLite path (default: ./results/catalog.db)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  climeval-server")
	fmt.Println()
	fmt.Println("  # Start server on custom port")
	fmt.Println("  PORT=3000 climeval-server")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                         Health check")
	fmt.Println("  GET /v1/runs                        List evaluation runs")
	fmt.Println("  GET /v1/runs/:id                    Get one evaluation run")
	fmt.Println("  GET /v1/runs/:id/summary            Run record plus scalar metrics")
	fmt.Println("  GET /v1/runs/:id/metrics/:name      Gridded metric values as JSON")
	fmt.Println()
}
