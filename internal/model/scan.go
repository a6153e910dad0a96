package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DefaultTitle is reported for submissions whose metadata carries no title.
const DefaultTitle = "Untitled"

// ErrInvalidMetadata is returned by ParseMetadata when the field is not a JSON object.
var ErrInvalidMetadata = errors.New("invalid metadata")

// Metadata is the free-form JSON object sent alongside a scan.
type Metadata map[string]any

// ParseMetadata decodes raw as a JSON object. An empty string yields empty metadata.
// Callers that want the lenient behavior substitute an empty Metadata on ErrInvalidMetadata.
func ParseMetadata(raw string) (Metadata, error) {
	if raw == "" {
		return Metadata{}, nil
	}
	var m Metadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if m == nil {
		m = Metadata{}
	}
	return m, nil
}

// Title returns the "title" value, or DefaultTitle when it is absent, null or empty.
func (m Metadata) Title() string {
	if s := m.String("title"); s != "" {
		return s
	}
	return DefaultTitle
}

// String renders the value under key, or "" when it is absent or null.
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// FilePart is one uploaded file of a submission. Filename is untrusted client input.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// ScanSubmission is everything received in one multipart scan upload.
type ScanSubmission struct {
	Files    []FilePart
	Metadata Metadata
	OCRText  string
}

// ScanReceipt summarizes what was persisted for a submission.
type ScanReceipt struct {
	Title     string     `json:"title"`
	Artifacts []Artifact `json:"artifacts"`
}

// Names lists the stored artifact names in save order.
func (r *ScanReceipt) Names() []string {
	names := make([]string, 0, len(r.Artifacts))
	for _, a := range r.Artifacts {
		names = append(names, a.Name)
	}
	return names
}
