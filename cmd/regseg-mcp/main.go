package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/registry-segmenter/internal/config"
	"github.com/ironsheep/registry-segmenter/internal/log"
	"github.com/ironsheep/registry-segmenter/internal/ocr"
	"github.com/ironsheep/registry-segmenter/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// envSettings names the settings file the server starts from.
const envSettings = "REGSEG_SETTINGS"

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("regseg-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("regseg-mcp - MCP server for business registry page segmentation")
			fmt.Println()
			fmt.Println("Usage: regseg-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  REGSEG_LOG_LEVEL=debug       Enable debug logging")
			fmt.Println("  REGSEG_SETTINGS=<file>       Settings file to start from")
			fmt.Println("  REGSEG_<SETTING>=<value>     Override a single setting, e.g. REGSEG_THRESH_VALUE=80")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Logs go to stderr; stdout is for MCP protocol
	log.ApplyEnv()
	log.Debugf("regseg-mcp %s (built %s, commit %s)", Version, BuildTime, GitCommit)

	cfg, err := config.Load(os.Getenv(envSettings))
	if err != nil {
		log.Fatalf("Settings error: %v", err)
	}

	rec := ocr.NewTesseract()
	rec.Language = cfg.OCRLanguage
	rec.PageSegMode = cfg.OCRPageSegMode
	rec.Timeout = cfg.OCRTimeout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, rec, Version)
	if err := srv.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Server error: %v", err)
	}
}
