package chat

import (
	"io"
	"path/filepath"
	"strings"
)

// Document describes one file attached to a documents-mode session. Content
// is the handle the transport reads from when uploading; it may be nil for
// descriptors that only exist to display state.
type Document struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Content io.Reader `json:"-"`
}

// acceptedExtensions mirrors the upload filter applied before any network
// call; the server performs the authoritative check.
var acceptedExtensions = map[string]struct{}{
	".pdf":  {},
	".txt":  {},
	".doc":  {},
	".docx": {},
}

// Accepted reports whether the document's extension is an uploadable type.
func (d Document) Accepted() bool {
	ext := strings.ToLower(filepath.Ext(d.Name))
	_, ok := acceptedExtensions[ext]
	return ok
}
