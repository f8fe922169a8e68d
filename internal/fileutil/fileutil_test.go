package fileutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitExt(t *testing.T) {
	tests := []struct {
		name     string
		wantBase string
		wantExt  string
	}{
		{"photo.jpg", "photo", "jpg"},
		{"archive.tar.gz", "archive.tar", "gz"},
		{"README", "README", ""},
		{".bashrc", "", "bashrc"},
		{"trailing.", "trailing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, ext := SplitExt(tt.name)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestNameFromPath(t *testing.T) {
	assert.Equal(t, "a.jpg", NameFromPath("/Photos/a.jpg"))
	assert.Equal(t, "Photos", NameFromPath("/Photos/"))
	assert.Equal(t, "", NameFromPath("/"))
	assert.Equal(t, "plain", NameFromPath("plain"))
}

func TestNormalizeFolder(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"//", "/"},
		{"Photos", "/Photos"},
		{"/Photos/", "/Photos"},
		{"  Docs/2025/ ", "/Docs/2025"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeFolder(tt.in), "input %q", tt.in)
	}
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "/My%20Docs/a%231.txt", EscapePath("/My Docs/a#1.txt"))
	assert.Equal(t, "/", EscapePath("/"))
}

func TestDetectMimeType(t *testing.T) {
	assert.Equal(t, "image/jpeg", DetectMimeType("IMG_001.JPG"))
	assert.Equal(t, "application/pdf", DetectMimeType("report.pdf"))
	assert.Equal(t, "application/octet-stream", DetectMimeType("Makefile"))
}
