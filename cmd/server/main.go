package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"diff-review-planner/internal/agent"
	"diff-review-planner/internal/api"
	"diff-review-planner/internal/client"
	"diff-review-planner/internal/config"
	"diff-review-planner/internal/processor"
)

func main() {

	// Load configuration first
	cfg := config.LoadConfig()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Setup structured logging with configurable level, format, and output
	logger, logCleanup := setupLogger(cfg)
	defer logCleanup()
	slog.SetDefault(logger)

	// Create the model planner only when a backend is configured. The
	// heuristic endpoints work without one.
	var model processor.ModelPlanner
	if cfg.ModelEnabled() {
		generator, err := client.NewGenerator(context.Background(), cfg)
		if err != nil {
			slog.Error("create generation backend failed", "error", err)
			os.Exit(1)
		}

		// Verify the backend connection when the adapter supports it
		if checker, ok := generator.(interface{ Ping(context.Context) error }); ok {
			if err := checker.Ping(context.Background()); err != nil {
				slog.Error("llm health check failed", "error", err)
				os.Exit(1)
			}
		}

		planAgent, err := agent.NewPlanAgent(generator, cfg.Planner)
		if err != nil {
			slog.Error("init plan agent failed", "error", err)
			os.Exit(1)
		}
		slog.Info("model planning enabled", "backend", generator.Name())
		model = planAgent
	} else {
		slog.Warn("no LLM API key configured, model planning disabled")
	}

	// Initialize the plan processor and HTTP server
	planProcessor := processor.NewPlanProcessor(model, cfg.Planner)
	server := api.New(cfg, planProcessor)

	// Start server in a goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server start failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("server stopping")

	// Give the server 5 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown forced", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// setupLogger creates a logger based on configuration
func setupLogger(cfg *config.Config) (*slog.Logger, func()) {
	var writers []io.Writer
	var closers []io.Closer
	outputs := strings.Split(cfg.Log.Output, ",")

	for _, output := range outputs {
		output = strings.TrimSpace(output)
		if output == "" {
			continue
		}

		var w io.Writer
		switch output {
		case "stderr":
			w = os.Stderr
		case "stdout":
			w = os.Stdout
		default:
			// Use lumberjack for log rotation
			l := &lumberjack.Logger{
				Filename:   output,
				MaxSize:    cfg.Log.Rotation.MaxSize,
				MaxBackups: cfg.Log.Rotation.MaxBackups,
				MaxAge:     cfg.Log.Rotation.MaxAge,
				Compress:   cfg.Log.Rotation.Compress,
			}
			w = l
			closers = append(closers, l)
		}
		writers = append(writers, w)
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	multiWriter := io.MultiWriter(writers...)
	opts := &slog.HandlerOptions{Level: cfg.GetLogLevel()}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(multiWriter, opts)
	} else {
		handler = slog.NewTextHandler(multiWriter, opts)
	}

	cleanup := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	return slog.New(handler), cleanup
}
