package resumes

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxFileSize is the largest accepted upload.
const MaxFileSize = 10 << 20

// ErrInvalidFile is wrapped by every ValidationError.
var ErrInvalidFile = errors.New("invalid file")

var allowedExtensions = []string{"pdf", "png", "jpg", "jpeg", "bmp", "tiff", "tif", "docx", "txt"}

// image uploads are only readable through OCR
var imageExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "bmp": {}, "tiff": {}, "tif": {},
}

// ValidationError explains why an upload was refused.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid file %q: %s", e.Name, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidFile }

// AllowedExtensions lists the accepted extensions without the dot.
func AllowedExtensions() []string {
	return append([]string(nil), allowedExtensions...)
}

// FileType returns the lowercase extension of name without the dot, or ""
// when there is none.
func FileType(name string) string {
	ext := filepath.Ext(strings.TrimSpace(name))
	if len(ext) < 2 {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// ValidateFile checks the name and size of an upload before any reading.
func ValidateFile(name string, size int64) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Name: name, Reason: "file name is required"}
	}
	ext := FileType(name)
	if !isAllowed(ext) {
		return &ValidationError{
			Name:   name,
			Reason: "unsupported type, expected one of " + strings.ToUpper(strings.Join(allowedExtensions, ", ")),
		}
	}
	if size <= 0 {
		return &ValidationError{Name: name, Reason: "file is empty"}
	}
	if size > MaxFileSize {
		return &ValidationError{
			Name:   name,
			Reason: fmt.Sprintf("file is too large (%s), maximum is 10 MB", FormatSize(size)),
		}
	}
	return nil
}

// IsImage reports whether name has an image extension.
func IsImage(name string) bool {
	_, ok := imageExtensions[FileType(name)]
	return ok
}

// FormatSize renders a byte count as B, KB or MB.
func FormatSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	}
}

func isAllowed(ext string) bool {
	for _, a := range allowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}
