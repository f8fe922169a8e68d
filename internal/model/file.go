// Package model holds the file metadata record shared by the fetch, filter and
// format stages. Records live for a single query execution and are never persisted.
package model

import "time"

// ResourceType distinguishes plain files from collections
type ResourceType string

const (
	TypeFile   ResourceType = "file"
	TypeFolder ResourceType = "folder"
)

// File represents one entry of a PROPFIND response
type File struct {
	Name     string       `json:"name" yaml:"name"`
	Path     string       `json:"path" yaml:"path"`
	Type     ResourceType `json:"type" yaml:"type"`
	Size     int64        `json:"size" yaml:"size"`
	MimeType string       `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`

	// LastModified and Created keep the server's raw strings.
	LastModified string    `json:"last_modified,omitempty" yaml:"last_modified,omitempty"`
	Modified     time.Time `json:"-" yaml:"-"`
	Created      string    `json:"created,omitempty" yaml:"created,omitempty"`

	Favorite   bool     `json:"favorite" yaml:"favorite"`
	Tags       []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Owner      string   `json:"owner,omitempty" yaml:"owner,omitempty"`
	FileID     string   `json:"file_id,omitempty" yaml:"file_id,omitempty"`
	HasPreview bool     `json:"has_preview" yaml:"has_preview"`
}

// IsFolder reports whether the record is a collection
func (f File) IsFolder() bool {
	return f.Type == TypeFolder
}

// ModifiedTime returns the parsed last modification time and whether it is usable
func (f File) ModifiedTime() (time.Time, bool) {
	return f.Modified, !f.Modified.IsZero()
}
