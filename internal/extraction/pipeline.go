package extraction

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"opsconsole/internal/logger"
	"opsconsole/internal/ocr"
	"opsconsole/pkg/models"
)

// Processor is a structured parsing stage such as DocumentAIAnalyzer.
type Processor interface {
	Process(ctx context.Context, doc Document) (*Analysis, error)
}

// TextCompleter fills missing fields from document text, such as Completer.
type TextCompleter interface {
	Complete(ctx context.Context, text string, partial *models.ExtractedInvoiceData, instructions string) (*models.ExtractedInvoiceData, error)
}

// Pipeline implements Analyzer by chaining document parsing, OCR for documents
// parsing returned no text for, and completion. Any stage may be nil.
type Pipeline struct {
	processor Processor
	ocr       ocr.Service
	completer TextCompleter
	log       zerolog.Logger
}

// NewPipeline creates an analyzer from the configured stages.
func NewPipeline(processor Processor, ocrService ocr.Service, completer TextCompleter) *Pipeline {
	return &Pipeline{
		processor: processor,
		ocr:       ocrService,
		completer: completer,
		log:       logger.WithComponent("extraction"),
	}
}

// AnalyzeDocument implements Analyzer. A failing stage is logged and skipped as
// long as a later stage can still produce data.
func (p *Pipeline) AnalyzeDocument(ctx context.Context, doc Document) (*models.ExtractedInvoiceData, error) {
	const op = "AnalyzeDocument"

	if len(doc.Content) == 0 && doc.URI == "" {
		return nil, WrapAnalysisError(op, ErrInvalidDocument, "no content or URI")
	}

	data := &models.ExtractedInvoiceData{}
	var text string

	if p.processor != nil {
		analysis, err := p.processor.Process(ctx, doc)
		switch {
		case err != nil && !p.canRecover(doc):
			return nil, err
		case err != nil:
			p.log.Warn().
				Err(err).
				Msg("Document parsing failed, continuing with OCR")
		default:
			data, text = analysis.Data, analysis.Text
		}
	}

	if strings.TrimSpace(text) == "" && p.ocr != nil && len(doc.Content) > 0 {
		result, err := p.ocr.ExtractText(ctx, doc.Content, doc.MimeType)
		if err != nil {
			p.log.Warn().
				Err(err).
				Msg("OCR fallback failed")
		} else {
			text = result.Text
			p.log.Debug().
				Int("text_length", len(text)).
				Float32("confidence", result.Confidence).
				Msg("Using OCR text")
		}
	}

	if p.completer != nil && strings.TrimSpace(text) != "" {
		completed, err := p.completer.Complete(ctx, text, data, doc.Instructions)
		if err != nil {
			if ctx.Err() != nil {
				return nil, WrapAnalysisError(op, ctx.Err(), "analysis was interrupted")
			}
			p.log.Warn().
				Err(err).
				Msg("Completion failed, keeping parsed fields")
		} else {
			data = completed
		}
	}

	if isEmpty(data) {
		return nil, WrapAnalysisError(op, ErrNoText, doc.URI)
	}
	return data, nil
}

func (p *Pipeline) canRecover(doc Document) bool {
	return p.ocr != nil && p.completer != nil && len(doc.Content) > 0
}

func isEmpty(data *models.ExtractedInvoiceData) bool {
	if data == nil {
		return true
	}
	return data.Amount == nil && data.Date == nil && data.DueDate == nil &&
		data.Beneficiary == "" && data.Venue == "" && data.Address == "" &&
		data.Description == "" && data.Purpose == "" && data.Summary == "" &&
		len(data.Items) == 0 && data.Remarks == "" && data.BankDetails == nil
}
