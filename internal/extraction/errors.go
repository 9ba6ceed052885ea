package extraction

import (
	"errors"
	"fmt"
)

// Common document analysis errors
var (
	// ErrInvalidDocument is returned when neither content nor a gs:// URI is given,
	// or the content is not what its mime type claims.
	ErrInvalidDocument = errors.New("invalid or corrupted document")

	// ErrDocumentTooLarge is returned when the document exceeds size limits.
	ErrDocumentTooLarge = errors.New("document exceeds maximum size limit")

	// ErrProcessingFailed is returned when Document AI processing fails.
	ErrProcessingFailed = errors.New("document AI processing failed")

	// ErrInvalidCredentials is returned when Google Cloud credentials are invalid
	// or do not have the necessary permissions.
	ErrInvalidCredentials = errors.New("invalid Google Cloud credentials")

	// ErrMissingCredentials is returned when Google Cloud credentials are not configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials")

	// ErrInvalidConfiguration is returned when the Document AI configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid Document AI configuration")

	// ErrProcessorNotFound is returned when the specified Document AI processor
	// cannot be found or accessed.
	ErrProcessorNotFound = errors.New("Document AI processor not found")

	// ErrQuotaExceeded is returned when Document AI API quota limits are exceeded.
	ErrQuotaExceeded = errors.New("Document AI API quota exceeded")

	// ErrCompletionFailed is returned when the chat completion gives no usable answer.
	ErrCompletionFailed = errors.New("completion failed")

	// ErrNoText is returned when no stage recognized any text or fields.
	ErrNoText = errors.New("document contains no readable text")
)

// AnalysisError wraps errors with additional context about a document analysis failure.
type AnalysisError struct {
	// Op is the operation that failed (e.g., "Process", "Complete").
	Op string

	Err error

	Details string

	// ProcessorID is the Document AI processor ID used (if available).
	ProcessorID string
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("extraction: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	if e.ProcessorID != "" {
		return fmt.Sprintf("extraction: %s failed (processor: %s): %v", e.Op, e.ProcessorID, e.Err)
	}
	return fmt.Sprintf("extraction: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *AnalysisError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapAnalysisError wraps an error as an AnalysisError if it isn't already one.
func WrapAnalysisError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var analysisErr *AnalysisError
	if errors.As(err, &analysisErr) {
		return err
	}

	return &AnalysisError{Op: op, Err: err, Details: details}
}
