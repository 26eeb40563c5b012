// Package validate checks message text and file uploads before they enter
// the cipher pipeline.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxMessageChars is the maximum message length in characters.
	MaxMessageChars = 4000

	// MaxFileBytes is the maximum upload size (20 MB).
	MaxFileBytes = 20 * 1024 * 1024
)

var (
	// ErrEmptyMessage is returned for absent or whitespace-only text.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong is returned when text exceeds MaxMessageChars.
	ErrMessageTooLong = fmt.Errorf("message exceeds %d characters", MaxMessageChars)

	// ErrFileTooLarge is returned when an upload exceeds MaxFileBytes.
	ErrFileTooLarge = fmt.Errorf("file exceeds %d bytes", MaxFileBytes)

	// ErrFileType is returned for media types outside the allow-list.
	ErrFileType = errors.New("file type not allowed")

	// ErrNoFile is returned for an absent upload.
	ErrNoFile = errors.New("no file provided")
)

// allowedMimeTypes is the explicit upload allow-list.
var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"audio/mpeg":      true,
	"audio/ogg":       true,
	"audio/wav":       true,
	"audio/webm":      true,
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
	"application/pdf": true,
	"text/plain":      true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
}

// MessageText rejects empty, whitespace-only or over-long text and returns
// the trimmed form. A message of exactly MaxMessageChars characters passes.
func MessageText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageChars {
		return "", ErrMessageTooLong
	}
	return trimmed, nil
}

// FileUpload rejects absent, oversized or disallowed uploads. A file of
// exactly MaxFileBytes passes; the type check applies regardless of size.
func FileUpload(name, mimeType string, size int64) error {
	if name == "" || size < 0 {
		return ErrNoFile
	}
	if !allowedMimeTypes[mimeType] {
		return fmt.Errorf("%w: %s", ErrFileType, mimeType)
	}
	if size > MaxFileBytes {
		return ErrFileTooLarge
	}
	return nil
}
