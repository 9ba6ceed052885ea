package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"opsconsole/internal/logger"
	"opsconsole/pkg/models"
)

// MaxDocumentSizeBytes is the maximum document size for processing (20MB)
const MaxDocumentSizeBytes = 20 * 1024 * 1024

// DocumentAIAnalyzer implements Analyzer using a Document AI invoice or expense parser.
type DocumentAIAnalyzer struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIAnalyzer creates a Document AI client for the configured location.
// Regional locations get their regional endpoint.
func NewDocumentAIAnalyzer(ctx context.Context, config DocumentAIConfig, opts ...option.ClientOption) (*DocumentAIAnalyzer, error) {
	const op = "NewDocumentAIAnalyzer"

	if config.ProjectID == "" {
		return nil, WrapAnalysisError(op, ErrInvalidConfiguration, "GOOGLE_PROJECT_ID is required")
	}
	if config.ProcessorID == "" {
		return nil, WrapAnalysisError(op, ErrInvalidConfiguration, "GOOGLE_PROCESSOR_ID is required")
	}
	if config.Location == "" {
		config.Location = "us"
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	clientOptions := append([]option.ClientOption(nil), opts...)
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if len(opts) == 0 {
			return nil, WrapAnalysisError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapAnalysisError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return NewDocumentAIAnalyzerWithClient(config, client), nil
}

// NewDocumentAIAnalyzerWithClient creates an analyzer with an explicit client (for testing).
func NewDocumentAIAnalyzerWithClient(config DocumentAIConfig, client *documentai.DocumentProcessorClient) *DocumentAIAnalyzer {
	return &DocumentAIAnalyzer{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}
}

// AnalyzeDocument implements Analyzer.
func (p *DocumentAIAnalyzer) AnalyzeDocument(ctx context.Context, doc Document) (*models.ExtractedInvoiceData, error) {
	analysis, err := p.Process(ctx, doc)
	if err != nil {
		return nil, err
	}
	return analysis.Data, nil
}

// Process sends the document to Document AI and maps the returned entities.
func (p *DocumentAIAnalyzer) Process(ctx context.Context, doc Document) (*Analysis, error) {
	const op = "Process"

	req, err := p.buildRequest(doc)
	if err != nil {
		return nil, WrapAnalysisError(op, err, fmt.Sprintf("mime type %q, %d bytes", doc.MimeType, len(doc.Content)))
	}

	processCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, p.handleProcessingError(op, err)
	}
	if resp.Document == nil {
		return nil, &AnalysisError{Op: op, Err: ErrProcessingFailed, ProcessorID: p.config.ProcessorID}
	}

	data, confidence := mapEntities(resp.Document)

	p.log.Info().
		Str("processor", p.config.ProcessorID).
		Int("entities", len(resp.Document.Entities)).
		Int("text_length", len(resp.Document.Text)).
		Str("beneficiary", data.Beneficiary).
		Bool("has_amount", data.Amount != nil).
		Dur("duration", time.Since(start)).
		Msg("Document AI extraction completed")

	return &Analysis{Data: data, Text: resp.Document.Text, Confidence: confidence}, nil
}

func (p *DocumentAIAnalyzer) buildRequest(doc Document) (*documentaipb.ProcessRequest, error) {
	req := &documentaipb.ProcessRequest{Name: p.getProcessorName()}

	mimeType := strings.ToLower(strings.TrimSpace(doc.MimeType))
	switch {
	case len(doc.Content) > MaxDocumentSizeBytes:
		return nil, ErrDocumentTooLarge
	case len(doc.Content) > 0:
		if mimeType == "application/pdf" && (len(doc.Content) < 4 || string(doc.Content[:4]) != "%PDF") {
			return nil, ErrInvalidDocument
		}
		req.Source = &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{Content: doc.Content, MimeType: mimeType},
		}
	case strings.HasPrefix(doc.URI, "gs://"):
		req.Source = &documentaipb.ProcessRequest_GcsDocument{
			GcsDocument: &documentaipb.GcsDocument{GcsUri: doc.URI, MimeType: mimeType},
		}
	default:
		return nil, ErrInvalidDocument
	}
	return req, nil
}

// getProcessorName constructs the full processor name for Document AI API.
func (p *DocumentAIAnalyzer) getProcessorName() string {
	if p.config.ProcessorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			p.config.ProjectID, p.config.Location, p.config.ProcessorID, p.config.ProcessorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		p.config.ProjectID, p.config.Location, p.config.ProcessorID)
}

// handleProcessingError converts Document AI errors to analysis errors.
func (p *DocumentAIAnalyzer) handleProcessingError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return WrapAnalysisError(op, err, "processing was interrupted")
	}

	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return WrapAnalysisError(op, ErrInvalidCredentials, "insufficient permissions for Document AI")
	case codes.ResourceExhausted:
		return WrapAnalysisError(op, ErrQuotaExceeded, "Document AI API quota exceeded")
	case codes.NotFound:
		return WrapAnalysisError(op, ErrProcessorNotFound, fmt.Sprintf("processor not found: %s", p.config.ProcessorID))
	case codes.InvalidArgument:
		return WrapAnalysisError(op, ErrInvalidDocument, "document format not supported or corrupted")
	case codes.DeadlineExceeded:
		return WrapAnalysisError(op, context.DeadlineExceeded, "processing timeout")
	case codes.Canceled:
		return WrapAnalysisError(op, context.Canceled, "processing was canceled")
	default:
		return WrapAnalysisError(op, fmt.Errorf("%w: %v", ErrProcessingFailed, err), "")
	}
}

// Close closes the underlying Document AI client.
func (p *DocumentAIAnalyzer) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// mapEntities converts invoice and expense parser entities. The first entity of a
// type wins; line items accumulate.
func mapEntities(doc *documentaipb.Document) (*models.ExtractedInvoiceData, map[string]float32) {
	data := &models.ExtractedInvoiceData{}
	confidence := make(map[string]float32)
	bank := &models.BankDetails{}

	setText := func(field string, target *string, entity *documentaipb.Document_Entity) {
		value := entityText(entity)
		if *target != "" || value == "" {
			return
		}
		*target = value
		confidence[field] = entity.Confidence
	}

	for _, entity := range doc.Entities {
		switch entity.Type {
		case "supplier_name", "vendor_name":
			setText("beneficiary", &data.Beneficiary, entity)
		case "ship_to_name":
			setText("venue", &data.Venue, entity)
		case "ship_to_address", "receiver_address":
			setText("address", &data.Address, entity)
		case "invoice_date", "receipt_date", "purchase_date":
			if data.Date == nil {
				if date, ok := entityDate(entity); ok {
					data.Date = &date
					confidence["date"] = entity.Confidence
				}
			}
		case "due_date":
			if data.DueDate == nil {
				if date, ok := entityDate(entity); ok {
					data.DueDate = &date
					confidence["due_date"] = entity.Confidence
				}
			}
		case "total_amount", "gross_amount":
			if data.Amount == nil {
				if amount, ok := entityMoney(entity); ok {
					data.Amount = &amount
					confidence["amount"] = entity.Confidence
				}
			}
		case "line_item":
			if item, ok := lineItem(entity); ok {
				data.Items = append(data.Items, item)
			}
		case "supplier_iban", "supplier_account_number":
			setText("bank_details.account_number", &bank.AccountNumber, entity)
		case "supplier_bank_name":
			setText("bank_details.bank_name", &bank.BankName, entity)
		case "supplier_swift", "supplier_bic":
			setText("bank_details.swift_code", &bank.SwiftCode, entity)
		case "remit_to_name":
			setText("bank_details.account_name", &bank.AccountName, entity)
		}
	}

	if *bank != (models.BankDetails{}) {
		bank.AccountNumber = strings.ReplaceAll(bank.AccountNumber, " ", "")
		data.BankDetails = bank
	}
	return data, confidence
}

func entityText(entity *documentaipb.Document_Entity) string {
	if nv := entity.NormalizedValue; nv != nil && strings.TrimSpace(nv.Text) != "" {
		return strings.Join(strings.Fields(nv.Text), " ")
	}
	return strings.Join(strings.Fields(entity.MentionText), " ")
}

// entityDate prefers the normalized date and falls back to parsing the mention text.
func entityDate(entity *documentaipb.Document_Entity) (time.Time, bool) {
	if entity.NormalizedValue != nil {
		if d := entity.NormalizedValue.GetDateValue(); d != nil && d.Year > 0 {
			return time.Date(int(d.Year), time.Month(d.Month), int(d.Day), 0, 0, 0, 0, time.UTC), true
		}
	}
	date, err := models.ParseCalendarDate(entity.MentionText)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// entityMoney prefers the normalized money value and falls back to parsing the mention text.
func entityMoney(entity *documentaipb.Document_Entity) (decimal.Decimal, bool) {
	if entity.NormalizedValue != nil {
		if m := entity.NormalizedValue.GetMoneyValue(); m != nil {
			return decimal.New(m.Units, 0).Add(decimal.New(int64(m.Nanos), -9)), true
		}
	}
	amount, err := models.ParseAmount(entity.MentionText)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return amount, true
}

func lineItem(entity *documentaipb.Document_Entity) (models.LineItem, bool) {
	var item models.LineItem
	for _, prop := range entity.Properties {
		switch prop.Type {
		case "line_item/description":
			item.Description = entityText(prop)
		case "line_item/product_code":
			item.Name = entityText(prop)
		}
	}
	if item.Description == "" && item.Name == "" {
		item.Description = entityText(entity)
	}
	return item, item.Description != "" || item.Name != ""
}
