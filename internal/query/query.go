package query

import (
	"fmt"
	"regexp"
	"strings"
)

// CommandListFiles is the only command the engine executes
const CommandListFiles = "List Files"

// Recognised header keys
const (
	KeyCommand   = "command"
	KeyFolder    = "folder"
	KeyFormat    = "format"
	KeyListStyle = "list-style"
	KeyFilter    = "filter"
)

// Filter criterion keys understood by the filter engine
const (
	FilterExtension      = "extension"
	FilterType           = "type"
	FilterMinSize        = "minsize"
	FilterMaxSize        = "maxsize"
	FilterFavorite       = "favorite"
	FilterMimeType       = "mimetype"
	FilterTag            = "tag"
	FilterOwner          = "owner"
	FilterModifiedAfter  = "modifiedafter"
	FilterModifiedBefore = "modifiedbefore"
	FilterHasPreview     = "haspreview"
)

// Criterion is a single "- key: value" line of a filter section
type Criterion struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Diagnostic records a line the parser ignored
type Diagnostic struct {
	Line   int    `json:"line" yaml:"line"`
	Text   string `json:"text" yaml:"text"`
	Reason string `json:"reason" yaml:"reason"`
}

// Query is the parsed form of a query block.
//
// Filter is nil when the block had no "filter:" line and a non-nil (possibly
// empty) slice when it had one.
type Query struct {
	Command   string `json:"command,omitempty" yaml:"command,omitempty"`
	Folder    string `json:"folder,omitempty" yaml:"folder,omitempty"`
	Format    string `json:"format,omitempty" yaml:"format,omitempty"`
	ListStyle string `json:"list_style,omitempty" yaml:"list-style,omitempty"`

	// Headers holds every stored header pair, recognised or not
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	Filter      []Criterion  `json:"filter,omitempty" yaml:"filter,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// HasFilter reports whether the block contained a filter section
func (q *Query) HasFilter() bool {
	return q.Filter != nil
}

// Bare reports whether list bullets should be suppressed
func (q *Query) Bare() bool {
	return strings.EqualFold(strings.TrimSpace(q.ListStyle), "none")
}

// Header returns a stored header value
func (q *Query) Header(key string) (string, bool) {
	v, ok := q.Headers[key]
	return v, ok
}

func (q *Query) set(key, value string) {
	if q.Headers == nil {
		q.Headers = make(map[string]string)
	}
	q.Headers[key] = value

	switch key {
	case KeyCommand:
		q.Command = value
	case KeyFolder:
		q.Folder = value
	case KeyFormat:
		q.Format = value
	case KeyListStyle:
		q.ListStyle = value
	}
}

var criterionKeyRegex = regexp.MustCompile(`^\w+$`)

// Validate reports fields Encode cannot represent: line breaks in any value and
// filter keys that are not a single word.
func (q *Query) Validate() error {
	headers := []struct{ key, value string }{
		{KeyCommand, q.Command},
		{KeyFolder, q.Folder},
		{KeyFormat, q.Format},
		{KeyListStyle, q.ListStyle},
	}
	for _, h := range headers {
		if strings.ContainsAny(h.value, "\r\n") {
			return fmt.Errorf("%s must be a single line", h.key)
		}
	}

	for _, c := range q.Filter {
		if !criterionKeyRegex.MatchString(c.Key) {
			return fmt.Errorf("invalid filter key %q: only letters, digits and underscores are allowed", c.Key)
		}
		if strings.ContainsAny(c.Value, "\r\n") {
			return fmt.Errorf("filter %s must be a single line", c.Key)
		}
	}
	return nil
}

// Encode renders the query back into block text. For a query that passes
// Validate, parsing the result yields the same header fields and filter.
func (q *Query) Encode() string {
	var b strings.Builder

	writeHeader := func(key, value string) {
		if value == "" {
			return
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}

	writeHeader(KeyCommand, q.Command)
	writeHeader(KeyFolder, q.Folder)

	if q.Filter != nil {
		b.WriteString(KeyFilter + ":\n")
		for _, c := range q.Filter {
			b.WriteString("    - ")
			b.WriteString(c.Key)
			b.WriteString(": ")
			b.WriteString(c.Value)
			b.WriteString("\n")
		}
	}

	writeHeader(KeyFormat, q.Format)
	writeHeader(KeyListStyle, q.ListStyle)

	return b.String()
}
