package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/form-omr/internal/config"
	"github.com/ironsheep/form-omr/internal/omr"
	"github.com/ironsheep/form-omr/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("omr-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("omr-mcp - MCP server for order form mark recognition")
			fmt.Println()
			fmt.Println("Usage: omr-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  OMR_LOG_LEVEL=debug                Enable debug logging")
			fmt.Println("  OMR_ENGINE_LAYOUT=reference|two-up Printed form layout")
			fmt.Println("  OMR_ENGINE_VOCABULARY=a,b,c        Menu items in printed order")
			fmt.Println("  OMR_ENGINE_MARK_THRESHOLD=0.4      Fill ratio of a marked box")
			fmt.Println("  OMR_ENGINE_BATCH_CONCURRENCY=4     Parallel images per batch")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client.")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Log.Level == "debug" {
		log.Printf("OMR MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	engineCfg, err := cfg.Engine.ToEngineConfig()
	if err != nil {
		log.Fatalf("Invalid engine config: %v", err)
	}
	engine, err := omr.NewEngine(engineCfg)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	if cfg.Log.Level == "debug" {
		log.Printf("Engine ready: %d items, layout %s, threshold %.2f",
			len(engineCfg.Form.Vocabulary), cfg.Engine.Layout, engineCfg.MarkThreshold)
	}

	srv := server.New(engine, cfg.Engine.BatchConcurrency)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
