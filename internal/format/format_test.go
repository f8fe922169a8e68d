package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/takeshy/davquery/internal/model"
)

func reportFile() model.File {
	return model.File{
		Name:         "report.pdf",
		Path:         "/Documents/report.pdf",
		Type:         model.TypeFile,
		Size:         1536,
		MimeType:     "application/pdf",
		LastModified: "Tue, 10 Jun 2025 08:05:00 GMT",
		Modified:     time.Date(2025, 6, 10, 8, 5, 0, 0, time.UTC),
		Created:      "2025-06-01T10:00:00Z",
		Favorite:     true,
		Tags:         []string{"work", "q2"},
		Owner:        "alice",
		FileID:       "1234",
		HasPreview:   true,
	}
}

func TestFormat_Placeholders(t *testing.T) {
	fm := &Formatter{Location: time.UTC}
	f := reportFile()

	tests := []struct {
		template string
		want     string
	}{
		{"{{name}}", "report.pdf"},
		{"{{filename}}", "report"},
		{"{{ext}}", "pdf"},
		{"{{size}}", "1536"},
		{"{{sizekb}}", "1.50"},
		{"{{sizemb}}", "0.00"},
		{"{{type}}", "file"},
		{"{{mimetype}}", "application/pdf"},
		{"{{modified}}", "Tue, 10 Jun 2025 08:05:00 GMT"},
		{"{{created}}", "2025-06-01T10:00:00Z"},
		{"{{date}}", "2025-06-10"},
		{"{{datetime}}", "2025-06-10 08:05"},
		{"{{favorite}}", FavoriteGlyph},
		{"{{preview}}", PreviewGlyph},
		{"{{tags}}", "work, q2"},
		{"{{owner}}", "alice"},
		{"{{fileid}}", "1234"},
		{"{{path}}", "/Documents/report.pdf"},
		{"{{name}} ({{sizekb}} KB) {{name}}", "report.pdf (1.50 KB) report.pdf"},
		{"{{unknown}} {{ name }} {{Name}}", "{{unknown}} {{ name }} {{Name}}"},
		{"no placeholders", "no placeholders"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			assert.Equal(t, tt.want, fm.Format(tt.template, f))
		})
	}
}

func TestFormat_EmptyTemplateReturnsName(t *testing.T) {
	assert.Equal(t, "report.pdf", Format("", reportFile()))
}

func TestFormat_NoExtension(t *testing.T) {
	f := model.File{Name: "README"}

	assert.Equal(t, "README", Format("{{filename}}", f))
	assert.Equal(t, "", Format("{{ext}}", f))
}

func TestFormat_DottedName(t *testing.T) {
	f := model.File{Name: "archive.tar.gz"}

	assert.Equal(t, "archive.tar|gz", Format("{{filename}}|{{ext}}", f))
}

func TestFormat_SizeMB(t *testing.T) {
	f := model.File{Name: "big.iso", Size: 5 * 1024 * 1024}

	assert.Equal(t, "5.00", Format("{{sizemb}}", f))
	assert.Equal(t, "5120.00", Format("{{sizekb}}", f))
}

func TestFormat_FlagsOff(t *testing.T) {
	f := model.File{Name: "a.txt"}

	assert.Equal(t, "[][]", Format("[{{favorite}}][{{preview}}]", f))
}

func TestFormat_MissingModifiedTime(t *testing.T) {
	f := model.File{Name: "a.txt", LastModified: "garbage"}

	assert.Equal(t, "||garbage", Format("{{date}}|{{datetime}}|{{modified}}", f))
}

func TestFormat_NoDoubleSubstitution(t *testing.T) {
	f := model.File{Name: "{{path}}.txt", Path: "/secret"}

	assert.Equal(t, "{{path}}.txt", Format("{{name}}", f))
	assert.Equal(t, "{{path}}", Format("{{filename}}", f))
}

func TestFormat_CustomLayoutsAndLocation(t *testing.T) {
	fm := &Formatter{
		DateLayout:     "02.01.2006",
		DatetimeLayout: "02.01.2006 15:04",
		Location:       time.FixedZone("UTC+2", 2*60*60),
	}

	assert.Equal(t, "10.06.2025 10:05", fm.Format("{{datetime}}", reportFile()))
	assert.Equal(t, "10.06.2025", fm.Format("{{date}}", reportFile()))
}

func TestPlaceholders_AllKnown(t *testing.T) {
	for _, p := range Placeholders() {
		_, ok := fields[p]
		assert.True(t, ok, p)
	}
	assert.Len(t, Placeholders(), len(fields))
}
