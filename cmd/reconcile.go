package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"opsconsole/internal/directory"
	"opsconsole/internal/logger"
	"opsconsole/internal/reconcile"
	"opsconsole/internal/resilience"
	"opsconsole/internal/sheets"
	"opsconsole/internal/store"
	"opsconsole/internal/store/postgres"
	"opsconsole/pkg/models"
)

const (
	directoryPostgres = "postgres"
	directorySheets   = "sheets"
	directoryFile     = "file"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Apply extracted document data to an invoice or receipt draft",
	Long: `Apply data extracted from an invoice or receipt to a draft financial record.

Only fields the draft does not have yet are filled. The document is matched to
a project, the beneficiary is resolved against known beneficiaries and the bank
account is reused, created or staged for a beneficiary that is not stored yet.

The result contains the updated draft and one notice per step.`,
}

var reconcileInvoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Reconcile an invoice with its draft",
	Example: `  # Reconcile an extracted payload against the Postgres directory
  opsconsole reconcile invoice --extracted adlon.json --draft draft.json

  # Analyze the PDF first, use a JSON directory and keep bank accounts in memory
  opsconsole reconcile invoice --document adlon.pdf --directory file \
    --directory-file directory.json --dry-run`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

var reconcileReceiptCmd = &cobra.Command{
	Use:   "receipt",
	Short: "Reconcile a receipt with its expense draft",
	Example: `  # Reconcile a receipt photo and log the result to the spreadsheet
  opsconsole reconcile receipt --document receipt.jpg --directory sheets --log-sheet`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.AddCommand(reconcileInvoiceCmd, reconcileReceiptCmd)

	for _, c := range []*cobra.Command{reconcileInvoiceCmd, reconcileReceiptCmd} {
		c.Flags().String("extracted", "", "Extracted data JSON file")
		c.Flags().String("document", "", "Document to analyze instead of --extracted (file or gs:// URI)")
		c.Flags().String("instructions", "", "Hints for the completion step when analyzing --document")
		c.Flags().String("draft", "", "Draft JSON file (default: empty draft)")
		c.Flags().String("directory", directoryPostgres, "Directory source: postgres, sheets or file")
		c.Flags().String("directory-file", "", "Directory JSON file for --directory file")
		c.Flags().Bool("dry-run", false, "Keep new bank accounts in memory instead of the database")
		c.Flags().Bool("log-sheet", false, "Append the result to the results worksheet")
		c.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
		c.Flags().Int("timeout", 120, "Processing timeout in seconds")
		c.MarkFlagsMutuallyExclusive("extracted", "document")
		c.MarkFlagsOneRequired("extracted", "document")
	}
}

func runReconcile(cmd *cobra.Command, args []string) error {
	kind := cmd.Name()
	log := logger.WithComponent("reconcile").With().Str("kind", kind).Logger()

	extractedPath, _ := cmd.Flags().GetString("extracted")
	documentPath, _ := cmd.Flags().GetString("document")
	instructions, _ := cmd.Flags().GetString("instructions")
	draftPath, _ := cmd.Flags().GetString("draft")
	directoryKind, _ := cmd.Flags().GetString("directory")
	directoryPath, _ := cmd.Flags().GetString("directory-file")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	logSheet, _ := cmd.Flags().GetBool("log-sheet")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	log.Info().
		Str("directory", directoryKind).
		Bool("dry_run", dryRun).
		Bool("log_sheet", logSheet).
		Msg("Starting reconciliation")

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	// Extracted payload
	var extracted *models.ExtractedInvoiceData
	documentName := filepath.Base(extractedPath)
	if documentPath != "" {
		doc, err := readDocument(documentPath, "", instructions, log)
		if err != nil {
			return err
		}
		extracted, err = analyzeDocument(ctx, doc, true, log)
		if err != nil {
			return err
		}
		documentName = filepath.Base(documentPath)
	} else {
		extracted = &models.ExtractedInvoiceData{}
		if err := readJSONFile(extractedPath, extracted); err != nil {
			return err
		}
	}

	draft := &models.DraftFinancialRecord{}
	if draftPath != "" {
		if err := readJSONFile(draftPath, draft); err != nil {
			return err
		}
	}

	// Shared clients
	var db *sql.DB
	if directoryKind == directoryPostgres || !dryRun {
		var err error
		db, err = openDatabase(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	var sheetsService *sheets.Service
	if directoryKind == directorySheets || logSheet {
		var err error
		sheetsService, err = openSheets(ctx)
		if err != nil {
			return err
		}
	}

	source, err := directorySource(directoryKind, directoryPath, db, sheetsService)
	if err != nil {
		return err
	}
	dir, err := directory.Load(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to load directory: %w", err)
	}

	var accounts reconcile.AccountStore
	if dryRun {
		accounts = store.NewMemoryStore()
	} else {
		exec := resilience.NewExecutor(cfg.GetResilienceConfig())
		accounts = store.NewGuardedAccountStore(postgres.NewBankAccountRepository(db), exec)
	}

	result, err := reconcile.NewOrchestrator(accounts).Apply(ctx, extracted, draft, dir)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	logResult(log, result)

	if logSheet {
		row := sheets.NewResultRow(documentName, kind, result, time.Now())
		if err := sheetsService.AppendResults(ctx, cfg.ResultsWorksheet, []sheets.ResultRow{row}); err != nil {
			log.Warn().
				Err(err).
				Str("sheet", cfg.ResultsWorksheet).
				Msg("Failed to log result to spreadsheet")
		}
	}

	return writeJSONOutput(result, outputPath, log)
}

func directorySource(kind, file string, db *sql.DB, sheetsService *sheets.Service) (directory.Source, error) {
	switch kind {
	case directoryPostgres:
		return postgres.NewDirectoryRepository(db), nil
	case directorySheets:
		return directory.NewSheetsSource(sheetsService, cfg.ProjectsWorksheet, cfg.BeneficiariesWorksheet), nil
	case directoryFile:
		if file == "" {
			return nil, fmt.Errorf("--directory-file is required with --directory file")
		}
		return directory.FileSource{Path: file}, nil
	default:
		return nil, fmt.Errorf("unknown directory source %q (use postgres, sheets or file)", kind)
	}
}

func openDatabase(ctx context.Context) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required (or use --dry-run with --directory file|sheets)")
	}
	db, err := postgres.OpenDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func openSheets(ctx context.Context) (*sheets.Service, error) {
	if cfg.GoogleSheetURL == "" {
		return nil, fmt.Errorf("GOOGLE_SHEET_URL environment variable is required")
	}
	svc, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL, cfg.GoogleCredentials)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets service: %w", err)
	}
	return svc, nil
}

func logResult(log zerolog.Logger, result *reconcile.Result) {
	for _, n := range result.Notices {
		event := log.Debug()
		if n.Status == reconcile.NoticeFailed {
			event = log.Warn()
		}
		event.
			Str("step", n.Step).
			Str("status", n.Status).
			Str("error", n.Error).
			Msg(n.Message)
	}

	log.Info().
		Str("project_id", result.Draft.ProjectID).
		Int("score", result.Score).
		Str("beneficiary", result.Draft.BeneficiaryText).
		Str("bank_account_id", result.Draft.BankAccountID).
		Bool("failed_steps", result.Failed()).
		Msg("Reconciliation completed")
}
