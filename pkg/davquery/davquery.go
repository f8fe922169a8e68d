// Package davquery runs query blocks against a WebDAV server.
//
//	client, err := davquery.New(davquery.Connection{
//		BaseURL:  "https://cloud.example.com",
//		Username: "alice",
//		Password: "app-password",
//	})
//	items, err := client.RunQuery(ctx, "command: List Files\nfolder: /Photos")
//
// Errors can be inspected with errors.As against *CommandError,
// *ConfigurationError and *ServerError.
package davquery

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/takeshy/davquery/internal/config"
	"github.com/takeshy/davquery/internal/dates"
	"github.com/takeshy/davquery/internal/engine"
	"github.com/takeshy/davquery/internal/format"
	"github.com/takeshy/davquery/internal/webdav"
)

type (
	// Connection holds the server settings
	Connection = config.Connection

	CommandError       = engine.CommandError
	ConfigurationError = engine.ConfigurationError
	ServerError        = engine.ServerError
)

type options struct {
	httpClient     *http.Client
	timeout        time.Duration
	logger         *slog.Logger
	location       *time.Location
	dateLayout     string
	datetimeLayout string
	now            func() time.Time
}

// Option configures a Client
type Option func(*options)

// WithHTTPClient sets the HTTP client used for PROPFIND requests
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout sets the request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLocation sets the zone used for date filters and {{date}} output
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

// WithDateLayouts sets the Go layouts used for {{date}} and {{datetime}}
func WithDateLayouts(date, datetime string) Option {
	return func(o *options) {
		o.dateLayout = date
		o.datetimeLayout = datetime
	}
}

// WithClock sets the clock that "now" in date filters refers to
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Client runs query blocks
type Client struct {
	engine *engine.Engine
}

// New creates a client. Missing connection settings are reported as a
// *ConfigurationError by RunQuery, not by New.
func New(conn Connection, opts ...Option) (*Client, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	var fetcher engine.Fetcher
	if conn.Complete() {
		wc, err := webdav.NewClient(webdav.Options{
			BaseURL:    conn.BaseURL,
			Username:   conn.Username,
			Password:   conn.Password,
			DAVPath:    conn.DAVPath,
			Timeout:    o.timeout,
			HTTPClient: o.httpClient,
			Logger:     o.logger,
		})
		if err != nil {
			return nil, err
		}
		fetcher = wc
	}

	eng := engine.New(conn, fetcher,
		engine.WithLogger(o.logger),
		engine.WithResolver(&dates.Resolver{Now: o.now, Location: o.location}),
		engine.WithFormatter(&format.Formatter{
			DateLayout:     o.dateLayout,
			DatetimeLayout: o.datetimeLayout,
			Location:       o.location,
		}),
	)

	return &Client{engine: eng}, nil
}

// RunQuery executes a query block and returns the formatted items in server
// order. No match is an empty slice, not an error.
func (c *Client) RunQuery(ctx context.Context, text string) ([]string, error) {
	return c.engine.Run(ctx, text)
}
