package ocr

import (
	"errors"
	"fmt"
)

// Errors returned by Service implementations. Callers match them with errors.Is.
var (
	// Synchronous Vision requests accept at most 20MB of content.
	ErrFileTooLarge = errors.New("document exceeds the 20MB OCR limit")

	// Content declared as application/pdf without a %PDF header.
	ErrInvalidPDF = errors.New("document is not a readable PDF")

	// Mime type outside the PDF, TIFF, GIF and image formats Vision reads.
	ErrUnsupportedFormat = errors.New("unsupported mime type for OCR")

	// Vision returned an error for the request or for a page.
	ErrOCRFailed = errors.New("text detection failed")

	ErrMissingCredentials = errors.New("no Google credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS")

	// Receipts and invoices longer than MaxPagesSync pages are rejected.
	ErrTooManyPages = errors.New("document has more pages than synchronous OCR allows")

	// Every page came back without text, e.g. a blank scan.
	ErrEmptyDocument = errors.New("no text found in document")
)

// OCRError records which step of text extraction failed for a document.
type OCRError struct {
	Op      string // ExtractText, validateContent, ...
	Err     error
	Details string // mime type, page number or Vision status message
}

func (e *OCRError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("ocr %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ocr %s (%s): %v", e.Op, e.Details, e.Err)
}

func (e *OCRError) Unwrap() error { return e.Err }

// WrapOCRError attaches op and details to err. Nil stays nil and an existing
// OCRError is returned unchanged so the innermost step is reported.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var existing *OCRError
	if errors.As(err, &existing) {
		return err
	}
	return &OCRError{Op: op, Err: err, Details: details}
}
