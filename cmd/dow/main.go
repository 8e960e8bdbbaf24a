package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"dow/internal/api"
	"dow/internal/config"
	"dow/internal/logging"
	"dow/internal/tui"
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
	if len(args) == 0 {
		usage()
		return errors.New("no command provided")
	}
	switch args[0] {
	case "submit":
		return handleSubmit(ctx, args[1:])
	case "tui":
		return handleTUI(ctx, args[1:])
	case "config":
		return handleConfig(args[1:])
	case "version":
		fmt.Println(version)
		return nil
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func usage() {
	fmt.Println(strings.TrimSpace(`dow - submit URLs to a download backend

Usage:
  dow <command> [flags]

Commands:
  submit URL        Submit one URL and print the backend's response
  tui               Open the interactive form (URL field + result pane)
  config validate   Validate a YAML config file
  config print      Print the loaded config as JSON
  version           Print version
  help              Show this help

Flags:
  --config PATH     Path to YAML config file (or DOW_CONFIG env var; default: ~/.config/dow/config.yml)
  --log-level L     Log level: debug|info|warn|error (per command)
  --json            JSON log output (per command)

The backend base URL comes from api.base_url or DOW_API_BASE_URL. Without
either, paths stay relative and only work when served same-origin.`))
}

// defaultConfigPath resolves flag > env > ~/.config/dow/config.yml.
func defaultConfigPath(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if env := os.Getenv("DOW_CONFIG"); env != "" {
		return env
	}
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return filepath.Join(h, ".config", "dow", "config.yml")
	}
	return ""
}

// loadClientConfig loads the config file when one exists; the client runs
// fine without one.
func loadClientConfig(flagVal string) (*config.Config, error) {
	path := defaultConfigPath(flagVal)
	if path == "" {
		return config.Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		if flagVal != "" {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return config.Default(), nil
	}
	return config.Load(path)
}

func handleSubmit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "warn", "log level")
	jsonOut := fs.Bool("json", false, "json logs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	url := strings.TrimSpace(fs.Arg(0))
	if url == "" {
		return errors.New("usage: dow submit URL")
	}
	cfg, err := loadClientConfig(*cfgPath)
	if err != nil {
		return err
	}
	log := logging.New(*logLevel, *jsonOut)
	client := api.New(cfg)
	log.Debugf("submitting %s to %s", logging.SanitizeURL(url), client.Resolver().Resolve(api.DownloadPath))

	pretty, err := client.Submit(ctx, url)
	if err != nil {
		// The failure is the result; it lands on stdout like any other.
		fmt.Println("Error: " + err.Error())
		return nil
	}
	fmt.Println(pretty)
	return nil
}

func handleTUI(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadClientConfig(*cfgPath)
	if err != nil {
		return err
	}
	p := tea.NewProgram(tui.New(cfg, api.New(cfg)), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

func handleConfig(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: dow config <validate|print> [--config PATH]")
	}
	sub := args[0]
	fs := flag.NewFlagSet("config "+sub, flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	path := defaultConfigPath(*cfgPath)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file not found: %s", path)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	switch sub {
	case "validate":
		fmt.Println("config OK:", path)
		return nil
	case "print":
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	default:
		return fmt.Errorf("unknown config subcommand: %s", sub)
	}
}
