// Package ocr extracts plain text from uploaded invoices and receipts with the
// Google Cloud Vision API. It is used when document parsing returns no text that
// the completion step could work from.
//
// Cloud Vision API Limitations:
//   - Maximum file size: 20MB for synchronous processing
//   - Maximum pages: 5 pages for synchronous file processing
//   - Files (PDF, TIFF, GIF) go through file annotation; other images through image annotation
package ocr

import (
	"context"
	"time"
)

// Service extracts text from a document held in memory.
type Service interface {
	ExtractText(ctx context.Context, content []byte, mimeType string) (*OCRResult, error)
}

// OCRResult contains the results of OCR processing with metadata.
type OCRResult struct {
	// Text is the extracted text content from all pages, concatenated in reading order.
	Text string `json:"text"`

	PageCount int `json:"page_count"`

	// Confidence is the average page confidence (0.0 to 1.0).
	Confidence float32 `json:"confidence"`

	ProcessedAt time.Time `json:"processed_at"`

	// LanguageCodes contains the detected languages in the document, sorted.
	LanguageCodes []string `json:"language_codes,omitempty"`

	ProcessingDuration time.Duration `json:"processing_duration"`
}
