// Package engine executes query blocks: parse, fetch one folder level, filter
// and format.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/takeshy/davquery/internal/config"
	"github.com/takeshy/davquery/internal/dates"
	"github.com/takeshy/davquery/internal/fileutil"
	"github.com/takeshy/davquery/internal/filter"
	"github.com/takeshy/davquery/internal/format"
	"github.com/takeshy/davquery/internal/model"
	"github.com/takeshy/davquery/internal/query"
	"github.com/takeshy/davquery/internal/webdav"
)

// Fetcher returns the raw entries of one folder level in server order
type Fetcher interface {
	List(ctx context.Context, folder string) ([]model.File, error)
}

// Result is the outcome of one query block
type Result struct {
	Query  *query.Query
	Folder string
	Items  []string
	Files  []model.File
	Bare   bool
}

// Engine runs query blocks against a Fetcher
type Engine struct {
	conn      config.Connection
	fetcher   Fetcher
	matcher   *filter.Matcher
	formatter *format.Formatter
	logger    *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger; slog.Default() is used otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithResolver sets the date resolver used by the date filters
func WithResolver(r *dates.Resolver) Option {
	return func(e *Engine) {
		e.matcher = filter.New(r)
	}
}

// WithFormatter sets the formatter used for {{placeholder}} templates
func WithFormatter(fm *format.Formatter) Option {
	return func(e *Engine) {
		e.formatter = fm
	}
}

// New creates an engine
func New(conn config.Connection, fetcher Fetcher, opts ...Option) *Engine {
	e := &Engine{
		conn:      conn,
		fetcher:   fetcher,
		matcher:   filter.New(nil),
		formatter: &format.Formatter{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes text and returns the formatted items
func (e *Engine) Run(ctx context.Context, text string) ([]string, error) {
	res, err := e.Execute(ctx, text)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// Execute parses and runs one query block
func (e *Engine) Execute(ctx context.Context, text string) (*Result, error) {
	q := query.Parse(text)
	for _, d := range q.Diagnostics {
		e.logger.Debug("ignored query line", "line", d.Line, "text", d.Text, "reason", d.Reason)
	}
	return e.ExecuteQuery(ctx, q)
}

// ExecuteQuery runs an already parsed query
func (e *Engine) ExecuteQuery(ctx context.Context, q *query.Query) (*Result, error) {
	if q.Command != query.CommandListFiles {
		return nil, &CommandError{Command: q.Command}
	}

	if missing := e.conn.Missing(); len(missing) > 0 {
		return nil, &ConfigurationError{Missing: missing}
	}

	folder := fileutil.NormalizeFolder(q.Folder)

	entries, err := e.fetcher.List(ctx, folder)
	if err != nil {
		var statusErr *webdav.StatusError
		if errors.As(err, &statusErr) {
			return nil, &ServerError{StatusCode: statusErr.StatusCode, Folder: folder, Err: err}
		}
		return nil, fmt.Errorf("failed to list %s: %w", folder, err)
	}

	files := make([]model.File, 0, len(entries))
	for _, f := range entries {
		// the queried folder itself
		if f.Path != "" && fileutil.NormalizeFolder(f.Path) == folder {
			continue
		}
		if strings.TrimSpace(f.Name) == "" {
			e.logger.Debug("skipping entry without name", "path", f.Path)
			continue
		}
		files = append(files, f)
	}

	matched := e.matcher.Apply(files, q.Filter)

	items := make([]string, 0, len(matched))
	for _, f := range matched {
		items = append(items, e.formatter.Format(q.Format, f))
	}

	e.logger.Debug("query executed",
		"folder", folder,
		"entries", len(entries),
		"matched", len(matched))

	return &Result{
		Query:  q,
		Folder: folder,
		Items:  items,
		Files:  matched,
		Bare:   q.Bare(),
	}, nil
}
