package ocr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"opsconsole/internal/logger"
)

const (
	// MaxFileSizeBytes is the maximum file size for synchronous processing (20MB)
	MaxFileSizeBytes = 20 * 1024 * 1024

	// MaxPagesSync is the maximum number of pages for synchronous processing
	MaxPagesSync = 5
)

// fileMimeTypes are annotated page by page through the files API.
var fileMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/tiff":      true,
	"image/gif":       true,
}

// GoogleVisionOCRService implements Service using Google Cloud Vision API.
type GoogleVisionOCRService struct {
	client *vision.ImageAnnotatorClient
	log    zerolog.Logger
}

// NewGoogleVisionOCRService creates a Vision client. Without options the
// application default credentials are used.
func NewGoogleVisionOCRService(ctx context.Context, opts ...option.ClientOption) (*GoogleVisionOCRService, error) {
	const op = "NewGoogleVisionOCRService"

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		if len(opts) == 0 {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, "failed to create Vision client")
	}

	return NewGoogleVisionOCRServiceWithClient(client), nil
}

// NewGoogleVisionOCRServiceWithClient creates a new OCR service with an explicit client (for testing).
func NewGoogleVisionOCRServiceWithClient(client *vision.ImageAnnotatorClient) *GoogleVisionOCRService {
	return &GoogleVisionOCRService{
		client: client,
		log:    logger.WithComponent("ocr"),
	}
}

// ExtractText runs document text detection on content.
func (g *GoogleVisionOCRService) ExtractText(ctx context.Context, content []byte, mimeType string) (*OCRResult, error) {
	const op = "ExtractText"
	startTime := time.Now()

	mimeType, err := validateContent(content, mimeType)
	if err != nil {
		return nil, WrapOCRError(op, err, fmt.Sprintf("mime type %q, %d bytes", mimeType, len(content)))
	}

	var pages []*visionpb.AnnotateImageResponse
	if fileMimeTypes[mimeType] {
		pages, err = g.annotateFile(ctx, content, mimeType)
	} else {
		pages, err = g.annotateImage(ctx, content)
	}
	if err != nil {
		return nil, WrapOCRError(op, err, "Vision API call failed")
	}

	result, err := collectText(pages)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to process Vision API response")
	}

	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	g.log.Info().
		Int("pages", result.PageCount).
		Int("text_length", len(result.Text)).
		Float32("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Msg("OCR extraction completed")

	return result, nil
}

func (g *GoogleVisionOCRService) annotateFile(ctx context.Context, content []byte, mimeType string) ([]*visionpb.AnnotateImageResponse, error) {
	resp, err := g.client.BatchAnnotateFiles(ctx, &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  content,
					MimeType: mimeType,
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOCRFailed, err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("%w: no response from Vision API", ErrOCRFailed)
	}

	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrOCRFailed, fileResp.Error.Message)
	}
	return fileResp.Responses, nil
}

func (g *GoogleVisionOCRService) annotateImage(ctx context.Context, content []byte) ([]*visionpb.AnnotateImageResponse, error) {
	resp, err := g.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: content},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOCRFailed, err)
	}
	return resp.Responses, nil
}

// validateContent checks size and format and returns the normalized mime type.
func validateContent(content []byte, mimeType string) (string, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	switch {
	case len(content) == 0:
		return mimeType, ErrEmptyDocument
	case len(content) > MaxFileSizeBytes:
		return mimeType, ErrFileTooLarge
	case mimeType == "application/pdf" && (len(content) < 4 || string(content[:4]) != "%PDF"):
		return mimeType, ErrInvalidPDF
	case mimeType != "application/pdf" && !strings.HasPrefix(mimeType, "image/"):
		return mimeType, ErrUnsupportedFormat
	}
	return mimeType, nil
}

// collectText joins the text of all pages and averages their confidence.
func collectText(pages []*visionpb.AnnotateImageResponse) (*OCRResult, error) {
	if len(pages) == 0 {
		return nil, ErrEmptyDocument
	}
	if len(pages) > MaxPagesSync {
		return nil, WrapOCRError("collectText", ErrTooManyPages, fmt.Sprintf("document has %d pages", len(pages)))
	}

	var allText strings.Builder
	var confidenceSum float32
	var confidenceCount int
	languageSet := make(map[string]bool)

	for pageIdx, page := range pages {
		if page.Error != nil {
			return nil, fmt.Errorf("error processing page %d: %s", pageIdx+1, page.Error.Message)
		}
		annotation := page.FullTextAnnotation
		if annotation == nil {
			continue
		}

		if pageIdx > 0 {
			fmt.Fprintf(&allText, "\n\n--- Page %d ---\n\n", pageIdx+1)
		}
		allText.WriteString(annotation.Text)

		for _, p := range annotation.Pages {
			if p.Confidence > 0 {
				confidenceSum += p.Confidence
				confidenceCount++
			}
			if p.Property == nil {
				continue
			}
			for _, lang := range p.Property.DetectedLanguages {
				if lang.LanguageCode != "" {
					languageSet[lang.LanguageCode] = true
				}
			}
		}
	}

	text := allText.String()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	var avgConfidence float32
	if confidenceCount > 0 {
		avgConfidence = confidenceSum / float32(confidenceCount)
	}

	languages := make([]string, 0, len(languageSet))
	for lang := range languageSet {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	return &OCRResult{
		Text:          text,
		PageCount:     len(pages),
		Confidence:    avgConfidence,
		LanguageCodes: languages,
	}, nil
}

// Close closes the underlying Vision client.
func (g *GoogleVisionOCRService) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
