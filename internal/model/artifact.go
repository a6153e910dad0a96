package model

import (
	"fmt"
	"strings"
	"time"
)

// Artifact is a file persisted to the upload store as part of a scan submission.
// Artifacts are written once and never mutated.
type Artifact struct {
	Name        string    `json:"name"`
	Field       string    `json:"field"`
	Original    string    `json:"original_filename"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	StoredAt    time.Time `json:"stored_at"`
}

// SanitizeFilename keeps only ASCII letters, digits and the characters '.', '_' and '-'.
// Every other byte is dropped, so the result can never contain a path separator.
// Applying it twice yields the same result as applying it once.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		if allowedFilenameByte(name[i]) {
			b.WriteByte(name[i])
		}
	}
	return b.String()
}

func allowedFilenameByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '_', c == '-':
		return true
	}
	return false
}

// ArtifactName composes the storage name "<unix-seconds>_<sanitized filename>".
// Two files with the same sanitized name saved within the same second get the same name.
func ArtifactName(at time.Time, filename string) string {
	return fmt.Sprintf("%d_%s", at.Unix(), SanitizeFilename(filename))
}
