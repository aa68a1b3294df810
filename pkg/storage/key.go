package storage

import (
	"regexp"
	"strings"

	"github.com/trelliskit/trellis/pkg/id"
)

var unsafeSegmentChars = regexp.MustCompile(`[^a-zA-Z0-9\-_./]`)

// newObjectKey generates "{prefix}/{ulid}{ext}" with the prefix sanitized
// for object keys: no traversal, no leading or trailing separators, no
// shell-hostile characters.
func newObjectKey(prefix, contentType string) string {
	ext := ExtFromMIME(contentType)
	if ext == "" {
		ext = ".bin"
	}
	name := id.New() + ext

	if prefix == "" {
		return name
	}
	return sanitizeSegment(prefix) + "/" + name
}

func sanitizeSegment(segment string) string {
	segment = strings.Trim(segment, " /\\")
	segment = strings.ReplaceAll(segment, "..", "")
	return unsafeSegmentChars.ReplaceAllString(segment, "_")
}
