// Package query parses davquery blocks.
//
// A block is a flat list of "key: value" header lines plus one list-valued
// section introduced by "filter:" whose lines look like "- key: value".
// Parsing never fails: lines that cannot be read are skipped and reported as
// diagnostics.
package query

import (
	"regexp"
	"strings"
)

var criterionRegex = regexp.MustCompile(`^-\s*(\w+):\s*(.*)$`)

// Parse parses a query block
func Parse(text string) *Query {
	q := &Query{}
	inFilter := false

	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, KeyFilter+":") {
			inFilter = true
			q.Filter = []Criterion{}
			continue
		}

		if inFilter {
			if m := criterionRegex.FindStringSubmatch(trimmed); m != nil {
				q.Filter = append(q.Filter, Criterion{Key: m[1], Value: strings.TrimSpace(m[2])})
				continue
			}
			if isIndented(line) || strings.HasPrefix(trimmed, "-") {
				q.diagnose(lineNo, line, "not a filter criterion")
				continue
			}
			// An unindented line closes the section and is read as a header
			inFilter = false
		}

		q.parseHeader(lineNo, line)
	}

	return q
}

func (q *Query) parseHeader(lineNo int, line string) {
	parts := strings.Split(line, ":")
	if len(parts) < 2 {
		parts = strings.Split(line, ";")
	}
	if len(parts) < 2 {
		q.diagnose(lineNo, line, "missing key separator")
		return
	}

	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(strings.Join(parts[1:], ":"))
	if key == "" || value == "" {
		q.diagnose(lineNo, line, "empty key or value")
		return
	}
	q.set(key, value)
}

func (q *Query) diagnose(lineNo int, text, reason string) {
	q.Diagnostics = append(q.Diagnostics, Diagnostic{Line: lineNo, Text: text, Reason: reason})
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}
