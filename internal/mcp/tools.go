package mcp

// RunQueryInput represents input for the run_query tool
type RunQueryInput struct {
	Query string `json:"query" jsonschema:"the query block, one key: value pair per line"`
}

// QueryOutput represents the items produced by a query
type QueryOutput struct {
	Items     []string `json:"items"`
	Total     int      `json:"total"`
	Folder    string   `json:"folder"`
	ListStyle string   `json:"list_style,omitempty"`
}

// ParseQueryInput represents input for the parse_query tool
type ParseQueryInput struct {
	Query string `json:"query" jsonschema:"the query block to parse"`
}

// ParseQueryOutput represents the parsed structure of a query block
type ParseQueryOutput struct {
	Command     string            `json:"command"`
	Supported   bool              `json:"supported"`
	Folder      string            `json:"folder,omitempty"`
	Format      string            `json:"format,omitempty"`
	ListStyle   string            `json:"list_style,omitempty"`
	Headers     map[string]string `json:"headers"`
	HasFilter   bool              `json:"has_filter"`
	Filter      []FilterItem      `json:"filter"`
	Diagnostics []DiagnosticItem  `json:"diagnostics"`
}

// FilterItem is one filter criterion
type FilterItem struct {
	Key   string `json:"key" jsonschema:"criterion key, e.g. extension or modifiedafter"`
	Value string `json:"value" jsonschema:"criterion value, e.g. jpg,png or now - 7 days"`
	Known bool   `json:"known,omitempty"`
}

// DiagnosticItem describes a line the parser ignored
type DiagnosticItem struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// ListFilesInput represents input for the list_files tool
type ListFilesInput struct {
	Folder    string       `json:"folder,omitempty" jsonschema:"folder to list (default /)"`
	Filters   []FilterItem `json:"filters,omitempty" jsonschema:"criteria that must all match"`
	Format    string       `json:"format,omitempty" jsonschema:"output template, e.g. {{name}} ({{sizekb}} KB)"`
	ListStyle string       `json:"list_style,omitempty" jsonschema:"set to none for bare output"`
}

// RunSavedInput represents input for the run_saved tool
type RunSavedInput struct {
	Name string `json:"name" jsonschema:"name of the saved query"`
}
