package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"dow/internal/config"
	"dow/internal/downloader"
	"dow/internal/lockfile"
	"dow/internal/logging"
	"dow/internal/metrics"
	"dow/internal/server"
	"dow/internal/state"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dowd", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "", "log level override: debug|info|warn|error")
	jsonOut := fs.Bool("json", false, "json logs")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Println(version)
		return nil
	}

	path := *cfgPath
	if path == "" {
		if env := os.Getenv("DOW_CONFIG"); env != "" {
			path = env
		} else if h, err := os.UserHomeDir(); err == nil && h != "" {
			path = filepath.Join(h, ".config", "dow", "config.yml")
		}
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file not found: %s", path)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	log := logging.New(level, *jsonOut || cfg.Logging.Format == "json")

	if err := config.EnsureDir(cfg.Server.DataRoot, 0o755); err != nil {
		return err
	}
	if err := config.EnsureDir(cfg.Server.DownloadRoot, 0o755); err != nil {
		return err
	}

	lock, err := lockfile.Acquire(filepath.Join(cfg.Server.DataRoot, "dowd.lock"))
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	db, err := state.Open(cfg.Server.DataRoot)
	if err != nil {
		return err
	}
	defer db.Close()

	met := metrics.New(cfg)
	runner := downloader.New(cfg.Server.DownloadRoot, cfg.Server.YTDLPPath, log)
	srv := server.New(cfg, log, db, runner, met)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("dowd %s listening on %s (downloads in %s)", version, cfg.Server.Listen, cfg.Server.DownloadRoot)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Infof("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}
