// Package webdav fetches folder listings with PROPFIND. It understands the
// ownCloud/Nextcloud property extensions (favorite, tags, owner, fileid, preview).
package webdav

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/takeshy/davquery/internal/fileutil"
	"github.com/takeshy/davquery/internal/model"
)

const (
	// DefaultDAVPath is the per-user files root of Nextcloud and ownCloud
	DefaultDAVPath = "/remote.php/dav/files/{user}"

	defaultTimeout = 30 * time.Second
)

// Options configures a Client
type Options struct {
	BaseURL  string
	Username string
	Password string
	// DAVPath is appended to BaseURL; "{user}" is replaced by the username
	DAVPath    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client lists folders of a WebDAV server
type Client struct {
	root       *url.URL
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
}

// StatusError is returned when the server answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("server responded with status %d: %s", e.StatusCode, e.Body)
}

// NewClient creates a new WebDAV client
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	davPath := opts.DAVPath
	if davPath == "" {
		davPath = DefaultDAVPath
	}
	davPath = strings.ReplaceAll(davPath, "{user}", url.PathEscape(opts.Username))
	if davPath != "" && !strings.HasPrefix(davPath, "/") {
		davPath = "/" + davPath
	}

	root, err := url.Parse(base + strings.TrimRight(davPath, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if root.Scheme != "http" && root.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		root:       root,
		username:   opts.Username,
		password:   opts.Password,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// RootURL returns the DAV root all folder paths are relative to
func (c *Client) RootURL() string {
	return c.root.String()
}

// List returns the entries of one folder level in server order. The first
// entry is usually the folder itself.
func (c *Client) List(ctx context.Context, folder string) ([]model.File, error) {
	folder = fileutil.NormalizeFolder(folder)

	start := time.Now()
	body, err := c.propfind(ctx, folder, "1", propfindBody)
	if err != nil {
		return nil, err
	}

	files, err := decodeMultistatus(body, c.root.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	c.logger.Debug("PROPFIND completed",
		"folder", folder,
		"entries", len(files),
		"duration", time.Since(start))

	return files, nil
}

// Ping checks that the DAV root is reachable with the configured credentials
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.propfind(ctx, "/", "0", pingBody)
	return err
}

func (c *Client) folderURL(folder string) string {
	u := strings.TrimRight(c.root.String(), "/") + fileutil.EscapePath(folder)
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}

func (c *Client) propfind(ctx context.Context, folder, depth, reqBody string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "PROPFIND", c.folderURL(folder), bytes.NewBufferString(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Depth", depth)
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list folder: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       truncate(strings.TrimSpace(string(body)), 200),
		}
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
