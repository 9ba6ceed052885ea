package extraction

import (
	"context"
	"errors"
	"testing"

	"opsconsole/internal/ocr"
	"opsconsole/pkg/models"
)

type fakeProcessor struct {
	analysis *Analysis
	err      error
}

func (f *fakeProcessor) Process(context.Context, Document) (*Analysis, error) {
	return f.analysis, f.err
}

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (f *fakeOCR) ExtractText(context.Context, []byte, string) (*ocr.OCRResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &ocr.OCRResult{Text: f.text, PageCount: 1}, nil
}

type fakeCompleter struct {
	gotText string
	result  *models.ExtractedInvoiceData
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, text string, partial *models.ExtractedInvoiceData, _ string) (*models.ExtractedInvoiceData, error) {
	f.gotText = text
	if f.err != nil {
		return nil, f.err
	}
	return mergeExtracted(partial, f.result), nil
}

var pdf = Document{Content: []byte("%PDF-1.7"), MimeType: "application/pdf"}

func TestPipelineUsesParsedTextForCompletion(t *testing.T) {
	processor := &fakeProcessor{analysis: &Analysis{
		Data: &models.ExtractedInvoiceData{Beneficiary: "Hotel Adlon"},
		Text: "Rechnung",
	}}
	ocrService := &fakeOCR{text: "unused"}
	completer := &fakeCompleter{result: &models.ExtractedInvoiceData{Venue: "Adlon Ballroom"}}

	got, err := NewPipeline(processor, ocrService, completer).AnalyzeDocument(context.Background(), pdf)
	if err != nil {
		t.Fatalf("AnalyzeDocument() error = %v", err)
	}
	if got.Beneficiary != "Hotel Adlon" || got.Venue != "Adlon Ballroom" {
		t.Errorf("got %+v", got)
	}
	if ocrService.calls != 0 {
		t.Errorf("OCR called %d times, want 0", ocrService.calls)
	}
	if completer.gotText != "Rechnung" {
		t.Errorf("completer text = %q", completer.gotText)
	}
}

func TestPipelineFallsBackToOCR(t *testing.T) {
	processor := &fakeProcessor{analysis: &Analysis{Data: &models.ExtractedInvoiceData{}}}
	ocrService := &fakeOCR{text: "Quittung Café"}
	completer := &fakeCompleter{result: &models.ExtractedInvoiceData{Beneficiary: "Café Einstein"}}

	got, err := NewPipeline(processor, ocrService, completer).AnalyzeDocument(context.Background(), pdf)
	if err != nil {
		t.Fatalf("AnalyzeDocument() error = %v", err)
	}
	if completer.gotText != "Quittung Café" || got.Beneficiary != "Café Einstein" {
		t.Errorf("text = %q, got %+v", completer.gotText, got)
	}
}

func TestPipelineRecoversFromProcessorFailure(t *testing.T) {
	processor := &fakeProcessor{err: ErrQuotaExceeded}
	completer := &fakeCompleter{result: &models.ExtractedInvoiceData{Beneficiary: "Globex"}}

	got, err := NewPipeline(processor, &fakeOCR{text: "Globex"}, completer).AnalyzeDocument(context.Background(), pdf)
	if err != nil {
		t.Fatalf("AnalyzeDocument() error = %v", err)
	}
	if got.Beneficiary != "Globex" {
		t.Errorf("Beneficiary = %q", got.Beneficiary)
	}

	_, err = NewPipeline(processor, nil, nil).AnalyzeDocument(context.Background(), pdf)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("without fallback: error = %v, want ErrQuotaExceeded", err)
	}
}

func TestPipelineKeepsParsedFieldsWhenCompletionFails(t *testing.T) {
	processor := &fakeProcessor{analysis: &Analysis{
		Data: &models.ExtractedInvoiceData{Beneficiary: "Hotel Adlon"},
		Text: "Rechnung",
	}}
	completer := &fakeCompleter{err: ErrCompletionFailed}

	got, err := NewPipeline(processor, nil, completer).AnalyzeDocument(context.Background(), pdf)
	if err != nil {
		t.Fatalf("AnalyzeDocument() error = %v", err)
	}
	if got.Beneficiary != "Hotel Adlon" {
		t.Errorf("Beneficiary = %q", got.Beneficiary)
	}
}

func TestPipelineErrors(t *testing.T) {
	p := NewPipeline(&fakeProcessor{analysis: &Analysis{Data: &models.ExtractedInvoiceData{}}}, &fakeOCR{err: ocr.ErrEmptyDocument}, nil)

	if _, err := p.AnalyzeDocument(context.Background(), pdf); !errors.Is(err, ErrNoText) {
		t.Errorf("empty document: error = %v, want ErrNoText", err)
	}
	if _, err := p.AnalyzeDocument(context.Background(), Document{}); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("no input: error = %v, want ErrInvalidDocument", err)
	}
}

func TestMergeExtractedBankDetails(t *testing.T) {
	got := mergeExtracted(&models.ExtractedInvoiceData{BeneficiaryType: "freelancer"},
		&models.ExtractedInvoiceData{
			BeneficiaryType: "person",
			BankDetails:     &models.BankDetails{AccountNumber: "DE89370400440532013000"},
			Items:           []models.LineItem{{Description: "DJ"}},
		})
	if got.BeneficiaryType != "person" {
		t.Errorf("BeneficiaryType = %q, want unknown type replaced", got.BeneficiaryType)
	}
	if got.BankDetails == nil || got.BankDetails.AccountNumber != "DE89370400440532013000" {
		t.Errorf("BankDetails = %+v", got.BankDetails)
	}
	if len(got.Items) != 1 {
		t.Errorf("Items = %+v", got.Items)
	}
}
