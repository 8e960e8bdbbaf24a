package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"time"

	"dow/internal/config"
)

// Backend paths. DownloadPath is the submission endpoint; DownloadsPath
// lists the server-side job registry for the history view.
const (
	DownloadPath  = "/download"
	DownloadsPath = "/downloads"
)

// Job is one row of the backend's download registry.
type Job struct {
	ID            int64  `json:"id"`
	URL           string `json:"url"`
	Host          string `json:"host"`
	Status        string `json:"status"`
	VideoFilename string `json:"video_filename"`
	Title         string `json:"title"`
	Uploader      string `json:"uploader"`
	DurationSec   int64  `json:"duration_sec"`
	SizeBytes     int64  `json:"size_bytes"`
	Error         string `json:"error"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
}

// Client talks to the download backend. It does not inspect response
// status codes on submission: any JSON-parseable body is rendered as-is,
// error payloads included.
type Client struct {
	http *http.Client
	res  *Resolver
	ua   string
}

func New(cfg *config.Config) *Client {
	return &Client{
		http: newHTTPClient(cfg),
		res:  NewResolver(cfg.API.BaseURL),
		ua:   userAgent(cfg),
	}
}

// Resolver exposes the endpoint resolver, mainly for tests.
func (c *Client) Resolver() *Resolver { return c.res }

// Submit POSTs {"url": rawURL} to the download endpoint and returns the
// response body re-indented with two spaces, preserving the server's key
// order. Transport failures and unparseable bodies come back as errors;
// the caller owns turning them into a display string.
func (c *Client) Submit(ctx context.Context, rawURL string) (string, error) {
	payload, err := json.Marshal(map[string]string{"url": rawURL})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.res.Resolve(DownloadPath), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.ua)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return "", fmt.Errorf("response is not valid JSON: %w", err)
	}
	return out.String(), nil
}

// Downloads fetches the backend's job registry, newest first.
func (c *Client) Downloads(ctx context.Context) ([]Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.res.Resolve(DownloadsPath), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.ua)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing downloads: %s", resp.Status)
	}
	var jobs []Job
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// newHTTPClient builds the transport. A zero timeout means no client-side
// bound: a backend that never responds is only limited by the dialer.
func newHTTPClient(cfg *config.Config) *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
	timeout := time.Duration(cfg.API.TimeoutSeconds) * time.Second
	return &http.Client{Transport: tr, Timeout: timeout}
}

func userAgent(cfg *config.Config) string {
	if cfg != nil && cfg.API.UserAgent != "" {
		return cfg.API.UserAgent
	}
	return fmt.Sprintf("dow/%s (%s/%s)", versionString(), runtime.GOOS, runtime.GOARCH)
}

func versionString() string { return defaultVersion }

var defaultVersion = "dev"
