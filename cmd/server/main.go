package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/churn-insights/pkg/api"
	"github.com/hazyhaar/churn-insights/pkg/session"
	"github.com/mark3labs/mcp-go/server"
)

const version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	case "report":
		cmdReport(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: churn <command>

Commands:
  serve    Start the HTTP dashboard API (and MCP over HTTP at /mcp)
  mcp      Serve the MCP tools over stdio
  report   Load one export and print its churn snapshot as JSON
`)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	preload := fs.String("load", "", "export file or URL to load at startup")
	fs.Parse(args)

	logger := newLogger(slog.LevelInfo)
	cfg := loadConfig(*cfgPath, logger)
	if *preload != "" {
		cfg.Preload = *preload
	}

	sess := newSession(cfg, logger)
	preloadExport(sess, cfg.Preload, logger)

	apiCfg := cfg.api(logger)
	mcpSrv := server.NewMCPServer("churn-insights", version, server.WithToolCapabilities(true))
	api.RegisterMCPTools(mcpSrv, sess, apiCfg)

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(mcpSrv))
	mux.Handle("/", api.NewRouter(sess, apiCfg))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// SIGHUP: reload the startup export.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			if cfg.Preload == "" {
				logger.Info("SIGHUP received, nothing to reload")
				continue
			}
			logger.Info("SIGHUP received, reloading export", "source", cfg.Preload)
			preloadExport(sess, cfg.Preload, logger)
		}
	}()

	go func() {
		logger.Info("churn-insights listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	preload := fs.String("load", "", "export file or URL to load at startup")
	fs.Parse(args)

	// stdout carries the protocol; logs stay on stderr.
	logger := newLogger(slog.LevelWarn)
	cfg := loadConfig(*cfgPath, logger)
	if *preload != "" {
		cfg.Preload = *preload
	}

	sess := newSession(cfg, logger)
	preloadExport(sess, cfg.Preload, logger)

	mcpSrv := server.NewMCPServer("churn-insights", version, server.WithToolCapabilities(true))
	api.RegisterMCPTools(mcpSrv, sess, cfg.api(logger))

	if err := server.ServeStdio(mcpSrv); err != nil {
		logger.Error("mcp stdio", "error", err)
		os.Exit(1)
	}
}

func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func newSession(cfg config, logger *slog.Logger) *session.Session {
	sc, err := cfg.session(logger)
	if err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	return session.New(sc)
}

// preloadExport loads a startup export. Failures are logged and the
// server keeps whatever dataset it had.
func preloadExport(sess *session.Session, source string, logger *slog.Logger) {
	if source == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ds, err := loadSource(ctx, sess, source, nil)
	if err != nil {
		logger.Error("preload failed", "source", source, "error", err)
		return
	}
	logger.Info("preloaded export", "source", source, "id", ds.ID, "records", len(ds.Records))
}
