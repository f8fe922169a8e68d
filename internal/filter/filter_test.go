package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/takeshy/davquery/internal/dates"
	"github.com/takeshy/davquery/internal/model"
	"github.com/takeshy/davquery/internal/query"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestMatcher() *Matcher {
	return New(&dates.Resolver{
		Now:      func() time.Time { return testNow },
		Location: time.UTC,
	})
}

func sampleFile() model.File {
	return model.File{
		Name:         "Report.PDF",
		Path:         "/Documents/Report.PDF",
		Type:         model.TypeFile,
		Size:         2_000_000,
		MimeType:     "application/pdf",
		LastModified: "Tue, 10 Jun 2025 08:00:00 GMT",
		Modified:     time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC),
		Favorite:     true,
		Tags:         []string{"Work-Projects", "urgent"},
		Owner:        "Alice Example",
		FileID:       "42",
		HasPreview:   false,
	}
}

func TestMatch_SingleCriterion(t *testing.T) {
	m := newTestMatcher()
	f := sampleFile()

	tests := []struct {
		key   string
		value string
		want  bool
	}{
		{"extension", "pdf", true},
		{"extension", "jpg, PDF ", true},
		{"extension", "jpg,png", false},
		{"extension", "", false},
		{"type", "file", true},
		{"type", "FILE", true},
		{"type", "folder", false},
		{"minsize", "1000000", true},
		{"minsize", "2000000", true},
		{"minsize", "2000001", false},
		{"minsize", "abc", false},
		{"minsize", "1000kb", true},
		{"maxsize", "2000000", true},
		{"maxsize", "1999999", false},
		{"favorite", "true", true},
		{"favorite", "1", true},
		{"favorite", "false", false},
		{"favorite", "yes", false},
		{"favorite", "TRUE", true},
		{"favorite", "True", true},
		{"mimetype", "image/png, application/pdf", true},
		{"mimetype", "APPLICATION/PDF", true},
		{"mimetype", "application", false},
		{"tag", "work", true},
		{"tag", "home, URG", true},
		{"tag", "personal", false},
		{"owner", "alice", true},
		{"owner", "EXAMPLE", true},
		{"owner", "bob", false},
		{"modifiedafter", "2025-06-01", true},
		{"modifiedafter", "now - 3 days", false},
		{"modifiedafter", "2025-06-10T08:00:00", false},
		{"modifiedbefore", "now", true},
		{"modifiedbefore", "now - 10 days", false},
		{"modifiedbefore", "not a date", false},
		{"modifiedafter", "not a date", false},
		{"modifiedafter", "2025", true},
		{"modifiedbefore", "2025", false},
		{"modifiedbefore", "2026", true},
		{"modifiedafter", "hello world 2020", false},
		{"modifiedbefore", "hello world 2020", false},
		{"modifiedafter", "now + 9999999999 hours", false},
		{"modifiedbefore", "now + 9999999999 hours", false},
		{"haspreview", "false", true},
		{"haspreview", "true", false},
		{"haspreview", "TRUE", false},
		{"haspreview", "False", true},
		{"unknownkey", "whatever", true},
		{"Extension", "jpg", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			got := m.Match(f, []query.Criterion{{Key: tt.key, Value: tt.value}})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_AndSemantics(t *testing.T) {
	m := newTestMatcher()
	f := sampleFile()

	pass := query.Criterion{Key: "extension", Value: "pdf"}
	alsoPass := query.Criterion{Key: "minsize", Value: "100"}
	fail := query.Criterion{Key: "type", Value: "folder"}

	assert.True(t, m.Match(f, []query.Criterion{pass, alsoPass}))
	assert.False(t, m.Match(f, []query.Criterion{pass, fail}))
	assert.False(t, m.Match(f, []query.Criterion{fail, pass}))
}

func TestMatch_EmptyCriteria(t *testing.T) {
	m := newTestMatcher()

	assert.True(t, m.Match(sampleFile(), nil))
	assert.True(t, m.Match(sampleFile(), []query.Criterion{}))
}

func TestMatch_ShortCircuits(t *testing.T) {
	calls := 0
	m := New(&dates.Resolver{
		Now: func() time.Time {
			calls++
			return testNow
		},
		Location: time.UTC,
	})

	criteria := []query.Criterion{
		{Key: "extension", Value: "jpg"},
		{Key: "modifiedafter", Value: "now - 1 day"},
	}
	assert.False(t, m.Match(sampleFile(), criteria))
	assert.Equal(t, 0, calls, "criteria after the first failure must not be evaluated")
}

func TestMatch_NoExtension(t *testing.T) {
	m := newTestMatcher()
	f := model.File{Name: "Makefile", Type: model.TypeFile}

	assert.False(t, m.Match(f, []query.Criterion{{Key: "extension", Value: "makefile"}}))
	assert.False(t, m.Match(f, []query.Criterion{{Key: "extension", Value: "txt,"}}))
}

func TestMatch_UnparseableModifiedTime(t *testing.T) {
	m := newTestMatcher()
	f := model.File{Name: "a.txt", LastModified: "garbage"}

	assert.False(t, m.Match(f, []query.Criterion{{Key: "modifiedafter", Value: "2000-01-01"}}))
	assert.False(t, m.Match(f, []query.Criterion{{Key: "modifiedbefore", Value: "now"}}))
}

func TestApply_SizeScenario(t *testing.T) {
	m := newTestMatcher()
	files := []model.File{
		{Name: "small.bin", Size: 500_000},
		{Name: "large.bin", Size: 2_000_000},
	}

	got := m.Apply(files, []query.Criterion{{Key: "minsize", Value: "1000000"}})
	assert.Equal(t, []model.File{files[1]}, got)
}

func TestApply_PreservesOrder(t *testing.T) {
	m := newTestMatcher()
	files := []model.File{
		{Name: "a.jpg", Size: 100},
		{Name: "b.png", Size: 200},
		{Name: "c.gif", Size: 50},
		{Name: "d.JPG", Size: 10},
	}

	got := m.Apply(files, []query.Criterion{{Key: "extension", Value: "jpg, png"}})

	names := make([]string, 0, len(got))
	for _, f := range got {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a.jpg", "b.png", "d.JPG"}, names)
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("extension"))
	assert.True(t, Known("haspreview"))
	assert.False(t, Known("size"))
}
