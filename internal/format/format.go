// Package format expands {{placeholder}} templates against file records.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/takeshy/davquery/internal/fileutil"
	"github.com/takeshy/davquery/internal/model"
)

const (
	DefaultDateLayout     = "2006-01-02"
	DefaultDatetimeLayout = "2006-01-02 15:04"

	FavoriteGlyph = "⭐"
	PreviewGlyph  = "📷"
)

var placeholderRegex = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Formatter renders records. Dates are shown in Location using the layouts.
type Formatter struct {
	DateLayout     string
	DatetimeLayout string
	Location       *time.Location
}

type field func(fm *Formatter, f model.File) string

var fields = map[string]field{
	"name": func(_ *Formatter, f model.File) string { return f.Name },
	"filename": func(_ *Formatter, f model.File) string {
		base, _ := fileutil.SplitExt(f.Name)
		return base
	},
	"ext":      func(_ *Formatter, f model.File) string { return fileutil.Ext(f.Name) },
	"size":     func(_ *Formatter, f model.File) string { return strconv.FormatInt(f.Size, 10) },
	"sizekb":   func(_ *Formatter, f model.File) string { return fmt.Sprintf("%.2f", float64(f.Size)/1024) },
	"sizemb":   func(_ *Formatter, f model.File) string { return fmt.Sprintf("%.2f", float64(f.Size)/(1024*1024)) },
	"type":     func(_ *Formatter, f model.File) string { return string(f.Type) },
	"mimetype": func(_ *Formatter, f model.File) string { return f.MimeType },
	"modified": func(_ *Formatter, f model.File) string { return f.LastModified },
	"created":  func(_ *Formatter, f model.File) string { return f.Created },
	"date": func(fm *Formatter, f model.File) string {
		return fm.renderTime(f, fm.dateLayout())
	},
	"datetime": func(fm *Formatter, f model.File) string {
		return fm.renderTime(f, fm.datetimeLayout())
	},
	"favorite": func(_ *Formatter, f model.File) string {
		if f.Favorite {
			return FavoriteGlyph
		}
		return ""
	},
	"preview": func(_ *Formatter, f model.File) string {
		if f.HasPreview {
			return PreviewGlyph
		}
		return ""
	},
	"tags":   func(_ *Formatter, f model.File) string { return strings.Join(f.Tags, ", ") },
	"owner":  func(_ *Formatter, f model.File) string { return f.Owner },
	"fileid": func(_ *Formatter, f model.File) string { return f.FileID },
	"path":   func(_ *Formatter, f model.File) string { return f.Path },
}

var defaultFormatter = &Formatter{}

// Format expands template with the default formatter
func Format(template string, f model.File) string {
	return defaultFormatter.Format(template, f)
}

// Placeholders lists the tokens Format understands
func Placeholders() []string {
	return []string{
		"name", "filename", "ext", "size", "sizekb", "sizemb", "type", "mimetype",
		"modified", "created", "date", "datetime", "favorite", "preview", "tags",
		"owner", "fileid", "path",
	}
}

// Format expands every known placeholder in template. An empty template yields
// the record name. Unknown placeholders are left as written and substituted
// text is never expanded again.
func (fm *Formatter) Format(template string, f model.File) string {
	if template == "" {
		return f.Name
	}

	return placeholderRegex.ReplaceAllStringFunc(template, func(token string) string {
		name := token[2 : len(token)-2]
		fn, ok := fields[name]
		if !ok {
			return token
		}
		return fn(fm, f)
	})
}

func (fm *Formatter) renderTime(f model.File, layout string) string {
	t, ok := f.ModifiedTime()
	if !ok {
		return ""
	}
	if fm.Location != nil {
		t = t.In(fm.Location)
	} else {
		t = t.Local()
	}
	return t.Format(layout)
}

func (fm *Formatter) dateLayout() string {
	if fm.DateLayout == "" {
		return DefaultDateLayout
	}
	return fm.DateLayout
}

func (fm *Formatter) datetimeLayout() string {
	if fm.DatetimeLayout == "" {
		return DefaultDatetimeLayout
	}
	return fm.DatetimeLayout
}
