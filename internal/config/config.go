package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvBaseURL overrides api.base_url when set, so split deployments can be
// pointed at a remote backend without editing the config file.
const EnvBaseURL = "DOW_API_BASE_URL"

// Config mirrors the YAML schema. All values should be supplied via YAML;
// minimal validation occurs in Validate.
type Config struct {
	Version int     `yaml:"version"`
	API     API     `yaml:"api"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
	Metrics Metrics `yaml:"metrics"`
	UI      UI      `yaml:"ui"`
}

type API struct {
	// BaseURL prefixes request paths. Empty means same-origin relative
	// paths (client served by the backend itself).
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

type Server struct {
	Listen       string `yaml:"listen"`
	DataRoot     string `yaml:"data_root"`
	DownloadRoot string `yaml:"download_root"`
	// StaticRoot serves a built web client with index.html fallback.
	// Empty disables static serving.
	StaticRoot string `yaml:"static_root"`
	YTDLPPath  string `yaml:"ytdlp_path"`
}

type Logging struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // human|json
}

type Metrics struct {
	PrometheusTextfile PromTextfile `yaml:"prometheus_textfile"`
}

type PromTextfile struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type UI struct {
	// RefreshHz controls how often the history tab re-fetches while
	// visible. 0 disables background refresh.
	RefreshHz int `yaml:"refresh_hz"`
}

// Default returns the configuration used when no config file exists. The
// client is fully functional with it: the only knob it honors is the
// base-URL environment override.
func Default() *Config {
	return &Config{
		Version: 1,
		API:     API{BaseURL: os.Getenv(EnvBaseURL)},
	}
}

// Load reads, parses, expands, and validates a YAML config file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	expanded, err := expandTilde(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(expanded)
	if err != nil {
		return nil, err
	}
	// Expand ${ENV} placeholders before unmarshalling
	b = []byte(os.ExpandEnv(string(b)))
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if err := c.expandPaths(); err != nil {
		return nil, err
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = os.Getenv(EnvBaseURL)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) expandPaths() error {
	var err error
	if c.Server.DataRoot, err = expandTilde(c.Server.DataRoot); err != nil {
		return err
	}
	if c.Server.DownloadRoot, err = expandTilde(c.Server.DownloadRoot); err != nil {
		return err
	}
	if c.Server.StaticRoot, err = expandTilde(c.Server.StaticRoot); err != nil {
		return err
	}
	if c.Metrics.PrometheusTextfile.Path, err = expandTilde(c.Metrics.PrometheusTextfile.Path); err != nil {
		return err
	}
	return nil
}

// Validate checks fields every consumer relies on. Server-only fields are
// checked by ValidateServer so the client can run from a partial file.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	if c.API.TimeoutSeconds < 0 {
		return errors.New("api.timeout_seconds must be >= 0")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level invalid: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "human", "json":
	default:
		return fmt.Errorf("logging.format invalid: %s", c.Logging.Format)
	}
	if c.UI.RefreshHz < 0 {
		return errors.New("ui.refresh_hz must be >= 0")
	}
	return nil
}

// ValidateServer enforces the fields dowd cannot start without.
func (c *Config) ValidateServer() error {
	if c.Server.Listen == "" {
		return errors.New("server.listen is required")
	}
	if c.Server.DataRoot == "" {
		return errors.New("server.data_root is required")
	}
	if c.Server.DownloadRoot == "" {
		return errors.New("server.download_root is required")
	}
	return nil
}

func expandTilde(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p[0] != '~' {
		return p, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if p == "~" {
		return h, nil
	}
	return filepath.Join(h, p[2:]), nil
}

// EnsureDir creates path and parents if missing. Empty path is a no-op.
func EnsureDir(path string, perm fs.FileMode) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(path, perm)
}
