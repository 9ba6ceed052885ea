// Package extraction turns an uploaded invoice or receipt into
// models.ExtractedInvoiceData using Google Document AI, Cloud Vision OCR and an
// OpenAI chat completion.
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_PROJECT_ID: Google Cloud project ID
//   - GOOGLE_LOCATION: Processing location (e.g., "us", "eu")
//   - GOOGLE_PROCESSOR_ID: Document AI invoice or expense processor ID
//   - OPENAI_API_KEY: enables the completion step (optional)
//
// Document AI API Limitations:
//   - Maximum file size: 20MB for synchronous processing
//   - Supported formats: PDF, TIFF, GIF, JPEG, PNG, BMP, WEBP
//   - Documents may be passed inline or as gs:// URIs
package extraction

import (
	"context"
	"time"

	"opsconsole/pkg/models"
)

// Document is one uploaded file to analyze. Content takes precedence over URI.
type Document struct {
	// URI is a gs:// location readable by the Document AI service account.
	URI string

	MimeType string

	// Instructions are free-form hints from the user, e.g. "the venue is the
	// delivery address".
	Instructions string

	Content []byte
}

// Analyzer extracts structured data from a document.
type Analyzer interface {
	AnalyzeDocument(ctx context.Context, doc Document) (*models.ExtractedInvoiceData, error)
}

// Analysis is the outcome of one analysis stage.
type Analysis struct {
	Data *models.ExtractedInvoiceData

	// Text is the full document text in reading order, if any was recognized.
	Text string

	// Confidence maps extracted field names to confidence values (0.0-1.0).
	Confidence map[string]float32
}

// DocumentAIConfig holds configuration for Google Document AI processing.
type DocumentAIConfig struct {
	// ProjectID is the Google Cloud project ID where Document AI is enabled.
	ProjectID string

	// Location is the processing location (e.g., "us", "eu").
	// Should match where your Document AI processor is created.
	Location string

	ProcessorID string

	// ProcessorVersion specifies a particular processor version.
	// If empty, uses the default version.
	ProcessorVersion string

	// Timeout is the maximum time to wait for processing.
	Timeout time.Duration
}

// DefaultConfig returns a DocumentAIConfig with sensible defaults.
func DefaultConfig() DocumentAIConfig {
	return DocumentAIConfig{
		Location: "us",
		Timeout:  60 * time.Second,
	}
}
