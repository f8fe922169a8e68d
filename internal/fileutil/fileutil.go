package fileutil

import (
	"net/url"
	"path"
	"strings"
)

// SplitExt splits a file name at its last dot.
// A name without a dot has an empty extension and is returned unchanged as base.
func SplitExt(name string) (base, ext string) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx+1:]
}

// Ext returns the substring after the last dot of name, or "" if there is none
func Ext(name string) string {
	_, ext := SplitExt(name)
	return ext
}

// NameFromPath derives a display name from a resource path
// ("/Photos/a.jpg" -> "a.jpg", "/Photos/" -> "Photos", "/" -> "")
func NameFromPath(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// NormalizeFolder makes a folder path absolute and strips the trailing slash.
// An empty path is the root.
func NormalizeFolder(folder string) string {
	folder = strings.TrimSpace(folder)
	if folder == "" || folder == "/" {
		return "/"
	}
	if !strings.HasPrefix(folder, "/") {
		folder = "/" + folder
	}
	folder = strings.TrimRight(folder, "/")
	if folder == "" {
		return "/"
	}
	return folder
}

// EscapePath escapes every segment of a slash separated path
func EscapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// DetectMimeType detects MIME type based on file extension
func DetectMimeType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	mimeTypes := map[string]string{
		".txt":  "text/plain",
		".md":   "text/markdown",
		".html": "text/html",
		".htm":  "text/html",
		".css":  "text/css",
		".js":   "text/javascript",
		".json": "application/json",
		".xml":  "application/xml",
		".yaml": "application/x-yaml",
		".yml":  "application/x-yaml",
		".csv":  "text/csv",
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		".odt":  "application/vnd.oasis.opendocument.text",
		".zip":  "application/zip",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".svg":  "image/svg+xml",
		".mp3":  "audio/mpeg",
		".mp4":  "video/mp4",
		".mov":  "video/quicktime",
	}

	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
