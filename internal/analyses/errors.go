package analyses

import (
	"errors"

	"skillgap-backend/internal/extract"
	"skillgap-backend/internal/resumes"
	"skillgap-backend/internal/shared/storage/object"
)

var (
	// ErrInvalidRequest is returned when request fields fail validation.
	ErrInvalidRequest = errors.New("invalid analysis request")
	// ErrUnprocessable marks queued analyses that will fail on every retry.
	ErrUnprocessable = errors.New("analysis cannot be processed")
	// ErrAsyncDisabled is returned by Enqueue without a queue or object store.
	ErrAsyncDisabled = errors.New("async analyses are not configured")
)

// IsInputError reports whether err was caused by the upload itself rather
// than by the service.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, resumes.ErrInvalidFile) ||
		IsUnreadable(err)
}

// IsUnreadable reports whether the upload passed validation but its text
// could not be read.
func IsUnreadable(err error) bool {
	return errors.Is(err, extract.ErrUnsupported) ||
		errors.Is(err, extract.ErrOCRUnavailable) ||
		errors.Is(err, extract.ErrUnreadable)
}

func permanent(err error) bool {
	return IsInputError(err) || errors.Is(err, object.ErrNotFound)
}
