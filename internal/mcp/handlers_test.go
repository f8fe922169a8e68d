package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takeshy/davquery/internal/config"
	"github.com/takeshy/davquery/internal/engine"
	"github.com/takeshy/davquery/internal/model"
	"github.com/takeshy/davquery/internal/store"
)

type staticFetcher []model.File

func (f staticFetcher) List(_ context.Context, _ string) ([]model.File, error) {
	return f, nil
}

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()

	files := staticFetcher{
		{Name: "Photos", Path: "/Photos", Type: model.TypeFolder},
		{Name: "a.jpg", Path: "/Photos/a.jpg", Size: 100, Favorite: true},
		{Name: "b.png", Path: "/Photos/b.png", Size: 200},
		{Name: "c.gif", Path: "/Photos/c.gif", Size: 300},
	}
	eng := engine.New(config.Connection{BaseURL: "https://cloud.example.com", Username: "alice", Password: "x"}, files)

	cfg := ServerConfig{Executor: eng}
	if withStore {
		m, err := store.NewManager(filepath.Join(t.TempDir(), "queries.json"))
		require.NoError(t, err)
		_, err = m.SaveQuery("pngs", "command: List Files\nfolder: /Photos\nfilter:\n    - extension: png\n")
		require.NoError(t, err)
		cfg.Store = m
	}

	s, err := NewServer(cfg, "test")
	require.NoError(t, err)
	return s
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestNewServer_RequiresExecutor(t *testing.T) {
	_, err := NewServer(ServerConfig{}, "test")
	assert.Error(t, err)
}

func TestHandleRunQuery(t *testing.T) {
	s := newTestServer(t, false)

	res, out, err := s.handleRunQuery(context.Background(), nil, RunQueryInput{Query: `command: List Files
folder: /Photos
filter:
    - extension: jpg,png
format: {{name}}{{favorite}}
list-style: none`})

	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg⭐", "b.png"}, out.Items)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, "/Photos", out.Folder)
	assert.Equal(t, "none", out.ListStyle)
	assert.Equal(t, "Found 2 items in /Photos\na.jpg⭐\nb.png", resultText(t, res))
}

func TestHandleRunQuery_Errors(t *testing.T) {
	s := newTestServer(t, false)

	_, _, err := s.handleRunQuery(context.Background(), nil, RunQueryInput{Query: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")

	_, out, err := s.handleRunQuery(context.Background(), nil, RunQueryInput{Query: "command: Do Something Else"})
	require.Error(t, err)
	var cmdErr *engine.CommandError
	assert.ErrorAs(t, err, &cmdErr)
	assert.NotNil(t, out.Items)
}

func TestHandleRunQuery_NoMatches(t *testing.T) {
	s := newTestServer(t, false)

	res, out, err := s.handleRunQuery(context.Background(), nil, RunQueryInput{Query: "command: List Files\nfolder: /Photos\nfilter:\n    - extension: pdf"})

	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.NotNil(t, out.Items)
	assert.Equal(t, "No files matched in /Photos", resultText(t, res))
}

func TestHandleParseQuery(t *testing.T) {
	s := newTestServer(t, false)

	res, out, err := s.handleParseQuery(context.Background(), nil, ParseQueryInput{Query: `command: List Files
folder: /Photos
filter:
    - extension: jpg
    - colour: red
    junk
format: {{name}}`})

	require.NoError(t, err)
	assert.True(t, out.Supported)
	assert.True(t, out.HasFilter)
	assert.Equal(t, "/Photos", out.Folder)
	assert.Equal(t, "{{name}}", out.Format)
	assert.Equal(t, []FilterItem{
		{Key: "extension", Value: "jpg", Known: true},
		{Key: "colour", Value: "red"},
	}, out.Filter)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, 6, out.Diagnostics[0].Line)
	assert.Contains(t, resultText(t, res), "2 filter criteria")
}

func TestHandleParseQuery_Unsupported(t *testing.T) {
	s := newTestServer(t, false)

	res, out, err := s.handleParseQuery(context.Background(), nil, ParseQueryInput{Query: "folder: /"})

	require.NoError(t, err)
	assert.False(t, out.Supported)
	assert.False(t, out.HasFilter)
	assert.Empty(t, out.Filter)
	assert.Contains(t, resultText(t, res), "only")
}

func TestHandleListFiles(t *testing.T) {
	s := newTestServer(t, false)

	_, out, err := s.handleListFiles(context.Background(), nil, ListFilesInput{
		Folder:  "Photos/",
		Filters: []FilterItem{{Key: "minsize", Value: "150"}, {Key: "extension", Value: "gif, png"}},
		Format:  "{{name}}: {{size}}",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"b.png: 200", "c.gif: 300"}, out.Items)
	assert.Equal(t, "/Photos", out.Folder)

	_, _, err = s.handleListFiles(context.Background(), nil, ListFilesInput{Filters: []FilterItem{{Key: " "}}})
	assert.Error(t, err)
}

func TestHandleListFiles_RejectsUnencodableInput(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name    string
		input   ListFilesInput
		wantErr string
	}{
		{
			name:    "header injected through format",
			input:   ListFilesInput{Folder: "/Photos", Format: "{{name}}\ncommand: Other"},
			wantErr: "format must be a single line",
		},
		{
			name:    "header injected through folder",
			input:   ListFilesInput{Folder: "/Photos\nformat: {{path}}"},
			wantErr: "folder must be a single line",
		},
		{
			name:    "dashed filter key",
			input:   ListFilesInput{Folder: "/Photos", Filters: []FilterItem{{Key: "mime-type", Value: "image/png"}, {Key: "extension", Value: "jpg"}}},
			wantErr: `invalid filter key "mime-type"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := s.handleListFiles(context.Background(), nil, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.NotContains(t, err.Error(), "unsupported command")
			assert.Empty(t, out.Items)
		})
	}
}

func TestHandleListFiles_UnknownKeyIsIgnored(t *testing.T) {
	s := newTestServer(t, false)

	_, out, err := s.handleListFiles(context.Background(), nil, ListFilesInput{
		Folder:  "/Photos",
		Filters: []FilterItem{{Key: "color", Value: "red"}, {Key: "extension", Value: "jpg"}},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, out.Items)
}

func TestHandleRunSaved(t *testing.T) {
	s := newTestServer(t, true)

	_, out, err := s.handleRunSaved(context.Background(), nil, RunSavedInput{Name: "pngs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.png"}, out.Items)

	_, _, err = s.handleRunSaved(context.Background(), nil, RunSavedInput{Name: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, _, err = s.handleRunSaved(context.Background(), nil, RunSavedInput{})
	assert.Error(t, err)
}

func TestHandleRunSaved_NoStore(t *testing.T) {
	s := newTestServer(t, false)

	_, _, err := s.handleRunSaved(context.Background(), nil, RunSavedInput{Name: "pngs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}
