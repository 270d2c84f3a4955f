// Package main provides the pp-grid HTTP server.
package main

import (
	"flag"
	"fmt"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"go.ngs.io/pp-grid/internal/config"
	httpHandler "go.ngs.io/pp-grid/internal/http"
	"go.ngs.io/pp-grid/internal/observability"
	"go.ngs.io/pp-grid/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()
	defer glog.Flush()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("pp-grid version %s\n", version)
		return
	}

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		glog.Exitf("Failed to load configuration: %v", err)
	}

	glog.Infof("Starting pp-grid server...")
	glog.Infof("Port: %s", cfg.Port)
	glog.Infof("Grid directory: %s", cfg.GridDir)
	glog.Infof("Max points per request: %d", cfg.MaxPoints)

	// Metrics go to a dedicated registry so /metrics only shows grid series
	// plus the Go and process collectors.
	var gatherer prometheus.Gatherer
	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = observability.NewMetrics(reg)
		gatherer = reg
	} else {
		glog.Infof("Metrics disabled")
	}

	// Initialize use case.
	gridService := usecase.NewGridService(cfg.GridDir, cfg.MaxPoints, metrics)

	// Setup router.
	router := httpHandler.SetupRouter(gridService, cfg, gatherer)

	// Start server.
	addr := fmt.Sprintf(":%s", cfg.Port)
	glog.Infof("Server listening on %s", addr)
	glog.Infof("Health check: http://localhost:%s/health", cfg.Port)
	glog.Infof("API endpoints:")
	glog.Infof("  - GET  /v1/grids")
	glog.Infof("  - GET  /v1/grids/:name")
	glog.Infof("  - POST /v1/grids/describe")
	glog.Infof("  - POST /v1/grids/nearest")
	glog.Infof("  - POST /v1/grids/lonlatbox")
	glog.Infof("  - POST /v1/grids/interpolate")

	if err := router.Run(addr); err != nil {
		glog.Exitf("Failed to start server: %v", err)
	}
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("pp-grid server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  pp-grid [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println("  -logtostderr   Log to standard error instead of files")
	fmt.Println("  -v N           Verbose log level")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  GRID_DIR                Directory of named grid descriptors, *.txt (default: ./data/grids)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  MAX_POINTS              Maximum data values per request (default: 4000000)")
	fmt.Println("  METRICS_ENABLED         Serve Prometheus metrics on /metrics (default: true)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  pp-grid -logtostderr")
	fmt.Println()
	fmt.Println("  # Start server on custom port")
	fmt.Println("  PORT=3000 pp-grid -logtostderr")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health                   Health check")
	fmt.Println("  GET  /metrics                  Prometheus metrics (if enabled)")
	fmt.Println("  GET  /v1/grids                 List named grids")
	fmt.Println("  GET  /v1/grids/:name           Describe a named grid")
	fmt.Println("  POST /v1/grids/describe        Describe a grid")
	fmt.Println("  POST /v1/grids/nearest         Values at the nearest grid point")
	fmt.Println("  POST /v1/grids/lonlatbox       Slice data to a lon/lat box")
	fmt.Println("  POST /v1/grids/interpolate     Regrid data onto another grid")
	fmt.Println()
}
