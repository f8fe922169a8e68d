// Package filter evaluates file records against the criteria of a query's
// filter section. Criteria combine with logical AND; keys the engine does not
// know are ignored.
package filter

import (
	"slices"
	"strconv"
	"strings"

	"github.com/takeshy/davquery/internal/dates"
	"github.com/takeshy/davquery/internal/fileutil"
	"github.com/takeshy/davquery/internal/model"
	"github.com/takeshy/davquery/internal/query"
)

type predicate func(m *Matcher, f model.File, value string) bool

var predicates = map[string]predicate{
	query.FilterExtension:      matchExtension,
	query.FilterType:           matchType,
	query.FilterMinSize:        matchMinSize,
	query.FilterMaxSize:        matchMaxSize,
	query.FilterFavorite:       matchFavorite,
	query.FilterMimeType:       matchMimeType,
	query.FilterTag:            matchTag,
	query.FilterOwner:          matchOwner,
	query.FilterModifiedAfter:  matchModifiedAfter,
	query.FilterModifiedBefore: matchModifiedBefore,
	query.FilterHasPreview:     matchHasPreview,
}

// Matcher applies filter criteria. The resolver evaluates date criteria.
type Matcher struct {
	Resolver *dates.Resolver
}

// New creates a matcher using r for date criteria
func New(r *dates.Resolver) *Matcher {
	if r == nil {
		r = dates.NewResolver()
	}
	return &Matcher{Resolver: r}
}

// Known reports whether key names a criterion the engine evaluates
func Known(key string) bool {
	_, ok := predicates[key]
	return ok
}

// Match reports whether f satisfies every criterion. It stops at the first
// criterion that fails.
func (m *Matcher) Match(f model.File, criteria []query.Criterion) bool {
	for _, c := range criteria {
		pred, ok := predicates[c.Key]
		if !ok {
			continue
		}
		if !pred(m, f, c.Value) {
			return false
		}
	}
	return true
}

// Apply returns the files matching criteria, preserving order
func (m *Matcher) Apply(files []model.File, criteria []query.Criterion) []model.File {
	matched := make([]model.File, 0, len(files))
	for _, f := range files {
		if m.Match(f, criteria) {
			matched = append(matched, f)
		}
	}
	return matched
}

func matchExtension(_ *Matcher, f model.File, value string) bool {
	ext := strings.ToLower(fileutil.Ext(f.Name))
	return slices.Contains(splitList(value), ext)
}

func matchType(_ *Matcher, f model.File, value string) bool {
	return strings.ToLower(string(f.Type)) == strings.ToLower(value)
}

func matchMinSize(_ *Matcher, f model.File, value string) bool {
	n, ok := parseLeadingInt(value)
	return ok && f.Size >= n
}

func matchMaxSize(_ *Matcher, f model.File, value string) bool {
	n, ok := parseLeadingInt(value)
	return ok && f.Size <= n
}

func matchFavorite(_ *Matcher, f model.File, value string) bool {
	return f.Favorite == truthy(value)
}

func matchMimeType(_ *Matcher, f model.File, value string) bool {
	return slices.Contains(splitList(value), strings.ToLower(f.MimeType))
}

func matchTag(_ *Matcher, f model.File, value string) bool {
	terms := splitList(value)
	for _, tag := range f.Tags {
		tag = strings.ToLower(tag)
		for _, term := range terms {
			if strings.Contains(tag, term) {
				return true
			}
		}
	}
	return false
}

func matchOwner(_ *Matcher, f model.File, value string) bool {
	return strings.Contains(strings.ToLower(f.Owner), strings.ToLower(value))
}

func matchModifiedAfter(m *Matcher, f model.File, value string) bool {
	return modified(f).After(m.Resolver.Resolve(value))
}

func matchModifiedBefore(m *Matcher, f model.File, value string) bool {
	return modified(f).Before(m.Resolver.Resolve(value))
}

func matchHasPreview(_ *Matcher, f model.File, value string) bool {
	return f.HasPreview == truthy(value)
}

func modified(f model.File) dates.Timestamp {
	t, ok := f.ModifiedTime()
	if !ok {
		return dates.Invalid
	}
	return dates.At(t)
}

func truthy(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "1" || v == "true"
}

// splitList splits a comma separated allow-list into trimmed, lower-cased,
// non-empty terms
func splitList(value string) []string {
	var terms []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			terms = append(terms, part)
		}
	}
	return terms
}

// parseLeadingInt reads the optionally signed run of digits at the start of s,
// so "10kb" reads as 10
func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
