package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"opsconsole/internal/extraction"
	"opsconsole/internal/logger"
	"opsconsole/internal/ocr"
	"opsconsole/pkg/models"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file-or-gs-uri]",
	Short: "Extract structured data from an invoice or receipt",
	Long: `Analyze an invoice or receipt and print the extracted data as JSON.

Document AI parses the document when GOOGLE_PROCESSOR_ID is set. When it
returns no text, Cloud Vision OCR reads the document instead. With
OPENAI_API_KEY set, a chat completion fills the beneficiary type, venue,
purpose, remarks and bank details and follows the --instructions hints.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_PROJECT_ID - Your Google Cloud project ID
  GOOGLE_PROCESSOR_ID - Your Document AI invoice or expense processor ID`,
	Example: `  # Extract a local PDF invoice
  opsconsole extract invoice.pdf

  # Extract a receipt photo with a hint for the completion step
  opsconsole extract receipt.jpg --instructions "the venue is the restaurant"

  # Extract a document stored in Cloud Storage and save the result
  opsconsole extract gs://invoices/2025/adlon.pdf -o adlon.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().String("instructions", "", "Hints for the completion step")
	extractCmd.Flags().String("mime-type", "", "Mime type of the document (default: detected)")
	extractCmd.Flags().Bool("no-completion", false, "Skip the OpenAI completion step")
	extractCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	outputPath, _ := cmd.Flags().GetString("output")
	instructions, _ := cmd.Flags().GetString("instructions")
	mimeType, _ := cmd.Flags().GetString("mime-type")
	noCompletion, _ := cmd.Flags().GetBool("no-completion")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	doc, err := readDocument(args[0], mimeType, instructions, log)
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	data, err := analyzeDocument(ctx, doc, !noCompletion, log)
	if err != nil {
		return err
	}
	return writeJSONOutput(data, outputPath, log)
}

// analyzeDocument runs the configured extraction stages on doc.
func analyzeDocument(ctx context.Context, doc extraction.Document, withCompletion bool, log zerolog.Logger) (*models.ExtractedInvoiceData, error) {
	analyzer, closeAll, err := createAnalyzer(ctx, withCompletion, log)
	if err != nil {
		return nil, err
	}
	defer closeAll()

	startTime := time.Now()
	data, err := analyzer.AnalyzeDocument(ctx, doc)
	if err != nil {
		return nil, handleExtractionError(err, log)
	}

	log.Info().
		Str("beneficiary", data.Beneficiary).
		Bool("has_amount", data.Amount != nil).
		Bool("has_bank_details", data.BankDetails.HasAccountNumber()).
		Dur("duration", time.Since(startTime)).
		Msg("Document analysis completed successfully")

	return data, nil
}

// createAnalyzer wires the stages the configuration allows. Stages are only
// assigned when they were created, so absent stages stay nil interfaces.
func createAnalyzer(ctx context.Context, withCompletion bool, log zerolog.Logger) (extraction.Analyzer, func(), error) {
	var (
		processor  extraction.Processor
		ocrService ocr.Service
		completer  extraction.TextCompleter
		closers    []func() error
	)
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn().Err(err).Msg("Failed to close client")
			}
		}
	}

	opts := cfg.GoogleClientOptions()

	if cfg.DocumentAIProcessorID != "" {
		docAI, err := extraction.NewDocumentAIAnalyzer(ctx, cfg.GetDocumentAIConfig(), opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Document AI analyzer. Please check GOOGLE_PROJECT_ID, "+
				"GOOGLE_LOCATION and GOOGLE_PROCESSOR_ID: %w", err)
		}
		processor = docAI
		closers = append(closers, docAI.Close)
	}

	if vision, err := ocr.NewGoogleVisionOCRService(ctx, opts...); err != nil {
		log.Warn().
			Err(err).
			Msg("Cloud Vision unavailable, OCR fallback disabled")
	} else {
		ocrService = vision
		closers = append(closers, vision.Close)
	}

	if withCompletion && cfg.OpenAIAPIKey != "" {
		c, err := extraction.NewCompleter(cfg.OpenAIAPIKey, cfg.GetCompletionConfig())
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		completer = c
	}

	if processor == nil && completer == nil {
		closeAll()
		return nil, nil, fmt.Errorf("no extraction stage configured. Please set one of:\n" +
			"  GOOGLE_PROCESSOR_ID=your-document-ai-processor-id\n" +
			"  OPENAI_API_KEY=your-openai-key")
	}

	log.Debug().
		Bool("document_ai", processor != nil).
		Bool("ocr", ocrService != nil).
		Bool("completion", completer != nil).
		Msg("Analyzer created")

	return extraction.NewPipeline(processor, ocrService, completer), closeAll, nil
}

// handleExtractionError provides user-friendly error messages for analysis failures
func handleExtractionError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Document analysis failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("document analysis timed out. Try increasing --timeout or processing a smaller file")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("document analysis was canceled")
	case errors.Is(err, extraction.ErrInvalidDocument):
		return fmt.Errorf("invalid or corrupted document. Please check the file integrity: %w", err)
	case errors.Is(err, extraction.ErrDocumentTooLarge):
		return fmt.Errorf("document is too large (maximum 20MB). Try compressing or splitting the file")
	case errors.Is(err, extraction.ErrProcessorNotFound):
		return fmt.Errorf("Document AI processor not found. Please check your GOOGLE_PROCESSOR_ID environment variable")
	case errors.Is(err, extraction.ErrInvalidCredentials):
		return fmt.Errorf("permission denied. Please ensure your service account has 'Document AI API User' role")
	case errors.Is(err, extraction.ErrQuotaExceeded):
		return fmt.Errorf("Document AI API quota exceeded. Check your project quotas in Google Cloud Console")
	case errors.Is(err, extraction.ErrNoText):
		return fmt.Errorf("no readable text or fields found in the document")
	default:
		return fmt.Errorf("document analysis failed: %w", err)
	}
}
