package storage

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
)

// MIMEOctetStream is the fallback when detection yields nothing better.
const MIMEOctetStream = "application/octet-stream"

// http.DetectContentType considers at most 512 bytes.
const mimeDetectionBytes = 512

// mimeExtensions maps detected MIME types to preferred file extensions for
// generated storage keys.
var mimeExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/bmp":     ".bmp",
	"image/tiff":    ".tiff",
	"image/avif":    ".avif",

	"application/pdf":  ".pdf",
	"text/plain":       ".txt",
	"text/csv":         ".csv",
	"text/html":        ".html",
	"application/json": ".json",
	"application/zip":  ".zip",
	"application/gzip": ".gz",

	"video/mp4":  ".mp4",
	"video/webm": ".webm",
	"audio/mpeg": ".mp3",
	"audio/ogg":  ".ogg",
	"audio/wav":  ".wav",
}

// ExtFromMIME returns the preferred extension for a MIME type, or "".
func ExtFromMIME(mimeType string) string {
	return mimeExtensions[NormalizeMIME(mimeType)]
}

// NormalizeMIME lowercases a MIME type and drops parameters like charset.
func NormalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}

// IsImageMIME reports whether the MIME type is in the image/ family.
func IsImageMIME(mimeType string) bool {
	return strings.HasPrefix(NormalizeMIME(mimeType), "image/")
}

// MatchesMIME reports whether a MIME type matches any of the patterns.
// A pattern is either an exact type or a glob like "image/*".
func MatchesMIME(mimeType string, patterns []string) bool {
	mimeType = NormalizeMIME(mimeType)

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(strings.ToLower(pattern))

		if mimeType == pattern {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if strings.HasPrefix(mimeType, prefix+"/") {
				return true
			}
		}
	}

	return false
}

// DetectMIME sniffs the MIME type from the first bytes of r and returns a
// reader that replays the full stream. Non-seekable input smaller than the
// sniff window is buffered in memory; seekable input is rewound in place.
func DetectMIME(r io.Reader) (string, io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		buf := make([]byte, mimeDetectionBytes)
		// ReadFull keeps reading through short reads until the sniff
		// window is full or the stream ends.
		n, err := io.ReadFull(rs, buf)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return "", nil, err
		}
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return "", nil, err
		}
		if n == 0 {
			return MIMEOctetStream, rs, nil
		}
		return http.DetectContentType(buf[:n]), rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return MIMEOctetStream, bytes.NewReader(nil), nil
	}
	return http.DetectContentType(data), bytes.NewReader(data), nil
}
