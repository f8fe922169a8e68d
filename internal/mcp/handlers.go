package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/takeshy/davquery/internal/engine"
	"github.com/takeshy/davquery/internal/filter"
	"github.com/takeshy/davquery/internal/query"
	"github.com/takeshy/davquery/internal/render"
)

// handleRunQuery handles the run_query tool
func (s *Server) handleRunQuery(ctx context.Context, req *mcp.CallToolRequest, input RunQueryInput) (*mcp.CallToolResult, QueryOutput, error) {
	output := QueryOutput{Items: []string{}}

	if strings.TrimSpace(input.Query) == "" {
		return nil, output, fmt.Errorf("query is required")
	}

	return s.execute(ctx, input.Query)
}

// handleParseQuery handles the parse_query tool
func (s *Server) handleParseQuery(ctx context.Context, req *mcp.CallToolRequest, input ParseQueryInput) (*mcp.CallToolResult, ParseQueryOutput, error) {
	q := query.Parse(input.Query)

	output := ParseQueryOutput{
		Command:     q.Command,
		Supported:   q.Command == query.CommandListFiles,
		Folder:      q.Folder,
		Format:      q.Format,
		ListStyle:   q.ListStyle,
		Headers:     q.Headers,
		HasFilter:   q.HasFilter(),
		Filter:      []FilterItem{},
		Diagnostics: []DiagnosticItem{},
	}
	if output.Headers == nil {
		output.Headers = map[string]string{}
	}

	for _, c := range q.Filter {
		output.Filter = append(output.Filter, FilterItem{Key: c.Key, Value: c.Value, Known: filter.Known(c.Key)})
	}
	for _, d := range q.Diagnostics {
		output.Diagnostics = append(output.Diagnostics, DiagnosticItem{Line: d.Line, Text: d.Text, Reason: d.Reason})
	}

	summary := fmt.Sprintf("command %q, %d filter criteria, %d ignored lines",
		q.Command, len(output.Filter), len(output.Diagnostics))
	if !output.Supported {
		summary += fmt.Sprintf(" (only %q is supported)", query.CommandListFiles)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: summary},
		},
	}, output, nil
}

// handleListFiles handles the list_files tool
func (s *Server) handleListFiles(ctx context.Context, req *mcp.CallToolRequest, input ListFilesInput) (*mcp.CallToolResult, QueryOutput, error) {
	q := &query.Query{
		Command:   query.CommandListFiles,
		Folder:    input.Folder,
		Format:    input.Format,
		ListStyle: input.ListStyle,
	}

	if len(input.Filters) > 0 {
		q.Filter = make([]query.Criterion, 0, len(input.Filters))
		for _, f := range input.Filters {
			key := strings.TrimSpace(f.Key)
			if key == "" {
				return nil, QueryOutput{Items: []string{}}, fmt.Errorf("filter key is required")
			}
			q.Filter = append(q.Filter, query.Criterion{Key: key, Value: strings.TrimSpace(f.Value)})
		}
	}

	if err := q.Validate(); err != nil {
		return nil, QueryOutput{Items: []string{}}, err
	}

	res, err := s.executor.ExecuteQuery(ctx, q)
	return s.respond(res, err)
}

// handleRunSaved handles the run_saved tool
func (s *Server) handleRunSaved(ctx context.Context, req *mcp.CallToolRequest, input RunSavedInput) (*mcp.CallToolResult, QueryOutput, error) {
	output := QueryOutput{Items: []string{}}

	if input.Name == "" {
		return nil, output, fmt.Errorf("name is required")
	}
	if s.store == nil {
		return nil, output, fmt.Errorf("saved queries are not available")
	}

	saved, err := s.store.GetQuery(input.Name)
	if err != nil {
		return nil, output, err
	}

	return s.execute(ctx, saved.Text)
}

func (s *Server) execute(ctx context.Context, text string) (*mcp.CallToolResult, QueryOutput, error) {
	res, err := s.executor.Execute(ctx, text)
	return s.respond(res, err)
}

func (s *Server) respond(res *engine.Result, err error) (*mcp.CallToolResult, QueryOutput, error) {
	output := QueryOutput{Items: []string{}}

	if err != nil {
		s.logger.Debug("query failed", "error", err)
		return nil, output, fmt.Errorf("query failed: %w", err)
	}

	out := render.FromResult(res)
	output.Items = out.Items
	output.Total = out.Total
	output.Folder = res.Folder
	if res.Query != nil {
		output.ListStyle = res.Query.ListStyle
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: summarize(res, out)},
		},
	}, output, nil
}

func summarize(res *engine.Result, out render.Output) string {
	if out.Total == 0 {
		return fmt.Sprintf("No files matched in %s", res.Folder)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d items in %s\n", out.Total, res.Folder)
	if err := render.WriteMarkdown(&b, out); err != nil {
		return b.String()
	}
	return strings.TrimRight(b.String(), "\n")
}
