package webdav

import (
	"encoding/xml"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/takeshy/davquery/internal/fileutil"
	"github.com/takeshy/davquery/internal/model"
)

const propfindBody = `<?xml version="1.0" encoding="UTF-8"?>
<d:propfind xmlns:d="DAV:" xmlns:oc="http://owncloud.org/ns" xmlns:nc="http://nextcloud.org/ns">
  <d:prop>
    <d:displayname/>
    <d:getlastmodified/>
    <d:getcontentlength/>
    <d:getcontenttype/>
    <d:resourcetype/>
    <d:creationdate/>
    <oc:favorite/>
    <oc:tags/>
    <oc:fileid/>
    <oc:owner-id/>
    <oc:owner-display-name/>
    <oc:size/>
    <nc:has-preview/>
    <nc:system-tags/>
  </d:prop>
</d:propfind>`

const pingBody = `<?xml version="1.0" encoding="UTF-8"?>
<d:propfind xmlns:d="DAV:">
  <d:prop>
    <d:resourcetype/>
  </d:prop>
</d:propfind>`

type multistatus struct {
	XMLName   xml.Name   `xml:"DAV: multistatus"`
	Responses []response `xml:"DAV: response"`
}

type response struct {
	Href      string     `xml:"DAV: href"`
	Propstats []propstat `xml:"DAV: propstat"`
}

type propstat struct {
	Prop   prop   `xml:"DAV: prop"`
	Status string `xml:"DAV: status"`
}

type prop struct {
	DisplayName      string       `xml:"DAV: displayname"`
	LastModified     string       `xml:"DAV: getlastmodified"`
	ContentLength    string       `xml:"DAV: getcontentlength"`
	ContentType      string       `xml:"DAV: getcontenttype"`
	CreationDate     string       `xml:"DAV: creationdate"`
	ResourceType     resourceType `xml:"DAV: resourcetype"`
	Favorite         string       `xml:"http://owncloud.org/ns favorite"`
	Tags             tagList      `xml:"http://owncloud.org/ns tags"`
	FileID           string       `xml:"http://owncloud.org/ns fileid"`
	OwnerID          string       `xml:"http://owncloud.org/ns owner-id"`
	OwnerDisplayName string       `xml:"http://owncloud.org/ns owner-display-name"`
	Size             string       `xml:"http://owncloud.org/ns size"`
	HasPreview       string       `xml:"http://nextcloud.org/ns has-preview"`
	SystemTags       systemTags   `xml:"http://nextcloud.org/ns system-tags"`
}

type resourceType struct {
	Collection *struct{} `xml:"DAV: collection"`
}

type tagList struct {
	Tags []string `xml:"http://owncloud.org/ns tag"`
}

type systemTags struct {
	Tags []string `xml:"http://nextcloud.org/ns system-tag"`
}

// decodeMultistatus turns a PROPFIND response into records. Paths are made
// relative to rootPath; entries keep the server's order.
func decodeMultistatus(body []byte, rootPath string) ([]model.File, error) {
	var ms multistatus
	if err := xml.Unmarshal(body, &ms); err != nil {
		return nil, err
	}

	files := make([]model.File, 0, len(ms.Responses))
	for _, r := range ms.Responses {
		files = append(files, r.toFile(rootPath))
	}
	return files, nil
}

// mergedProp combines the props of every successful propstat
func (r response) mergedProp() prop {
	var merged prop
	for _, ps := range r.Propstats {
		if !statusOK(ps.Status) {
			continue
		}
		p := ps.Prop
		merged.DisplayName = first(merged.DisplayName, p.DisplayName)
		merged.LastModified = first(merged.LastModified, p.LastModified)
		merged.ContentLength = first(merged.ContentLength, p.ContentLength)
		merged.ContentType = first(merged.ContentType, p.ContentType)
		merged.CreationDate = first(merged.CreationDate, p.CreationDate)
		if p.ResourceType.Collection != nil {
			merged.ResourceType = p.ResourceType
		}
		merged.Favorite = first(merged.Favorite, p.Favorite)
		merged.Tags.Tags = append(merged.Tags.Tags, p.Tags.Tags...)
		merged.FileID = first(merged.FileID, p.FileID)
		merged.OwnerID = first(merged.OwnerID, p.OwnerID)
		merged.OwnerDisplayName = first(merged.OwnerDisplayName, p.OwnerDisplayName)
		merged.Size = first(merged.Size, p.Size)
		merged.HasPreview = first(merged.HasPreview, p.HasPreview)
		merged.SystemTags.Tags = append(merged.SystemTags.Tags, p.SystemTags.Tags...)
	}
	return merged
}

func (r response) toFile(rootPath string) model.File {
	p := r.mergedProp()

	f := model.File{
		Path:         relativePath(r.Href, rootPath),
		Type:         model.TypeFile,
		MimeType:     strings.TrimSpace(p.ContentType),
		LastModified: strings.TrimSpace(p.LastModified),
		Created:      strings.TrimSpace(p.CreationDate),
		Favorite:     strings.TrimSpace(p.Favorite) == "1",
		FileID:       strings.TrimSpace(p.FileID),
		HasPreview:   strings.EqualFold(strings.TrimSpace(p.HasPreview), "true"),
	}

	if p.ResourceType.Collection != nil {
		f.Type = model.TypeFolder
	}

	f.Name = strings.TrimSpace(p.DisplayName)
	if f.Name == "" {
		f.Name = fileutil.NameFromPath(f.Path)
	}

	if n, err := strconv.ParseInt(strings.TrimSpace(p.ContentLength), 10, 64); err == nil {
		f.Size = n
	} else if n, err := strconv.ParseInt(strings.TrimSpace(p.Size), 10, 64); err == nil {
		f.Size = n
	}

	if f.MimeType == "" && !f.IsFolder() && f.Name != "" {
		f.MimeType = fileutil.DetectMimeType(f.Name)
	}

	if t, err := http.ParseTime(f.LastModified); err == nil {
		f.Modified = t
	}

	f.Owner = strings.TrimSpace(p.OwnerDisplayName)
	if f.Owner == "" {
		f.Owner = strings.TrimSpace(p.OwnerID)
	}

	for _, tag := range append(p.Tags.Tags, p.SystemTags.Tags...) {
		if tag = strings.TrimSpace(tag); tag != "" {
			f.Tags = append(f.Tags, tag)
		}
	}

	return f
}

// relativePath strips the DAV root from an href. Folders lose their trailing slash.
func relativePath(href, rootPath string) string {
	href = strings.TrimSpace(href)
	if u, err := url.Parse(href); err == nil {
		href = u.EscapedPath()
	}
	p, err := url.PathUnescape(href)
	if err != nil {
		p = href
	}

	root := strings.TrimRight(rootPath, "/")
	if root != "" && strings.HasPrefix(p, root) {
		p = p[len(root):]
	}
	return fileutil.NormalizeFolder(p)
}

// statusOK reports whether a propstat status line ("HTTP/1.1 200 OK") is 2xx.
// A missing status is treated as success.
func statusOK(status string) bool {
	fields := strings.Fields(status)
	if len(fields) < 2 {
		return true
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return false
	}
	return code >= 200 && code <= 299
}

func first(current, candidate string) string {
	if current != "" {
		return current
	}
	return candidate
}
