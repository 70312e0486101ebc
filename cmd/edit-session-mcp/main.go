package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/copperline/imagesession/internal/analysis"
	"github.com/copperline/imagesession/internal/autosave"
	"github.com/copperline/imagesession/internal/config"
	"github.com/copperline/imagesession/internal/server"
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
			fmt.Printf("edit-session-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("edit-session-mcp - MCP server for interactive image editing sessions")
			fmt.Println()
			fmt.Println("Usage: edit-session-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --config PATH    Read settings from a YAML file")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  GEMINI_API_KEY    Enables the image_analyze tool")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "edit-session-mcp: %v\n", err)
		os.Exit(1)
	}

	// Logging goes to stderr (stdout is for MCP protocol).
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithQuietPeriod(cfg.AutosaveQuiet()),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o755); err != nil {
		logger.Warn("autosave directory unavailable, autosave disabled", "error", err)
	} else {
		store, err := autosave.OpenSQLite(cfg.StoragePath, logger)
		if err != nil {
			logger.Warn("autosave store unavailable, autosave disabled", "error", err)
		} else {
			defer store.Close()
			opts = append(opts, server.WithAutosaveStore(store))
		}
	}

	if cfg.Gemini.APIKey != "" {
		analyzer, err := analysis.NewGemini(cfg.Gemini.APIKey, analysis.WithModel(cfg.Gemini.Model))
		if err != nil {
			logger.Warn("analysis unavailable", "error", err)
		} else {
			opts = append(opts, server.WithAnalyzer(analyzer))
		}
	} else {
		logger.Info("GEMINI_API_KEY not set, image_analyze disabled")
	}

	logger.Info("starting", "version", Version, "storage", cfg.StoragePath)

	srv := server.New(opts...)
	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
