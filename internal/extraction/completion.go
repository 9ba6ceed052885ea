package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"opsconsole/internal/logger"
	"opsconsole/pkg/models"
)

// ChatClient is the part of the OpenAI client the completer uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// CompletionConfig holds configuration for the completion step.
type CompletionConfig struct {
	Model       string
	Temperature float32
	MaxRetries  int

	// MaxTextLength caps the document text sent in the prompt.
	MaxTextLength int
}

// DefaultCompletionConfig returns a CompletionConfig with sensible defaults.
func DefaultCompletionConfig() CompletionConfig {
	return CompletionConfig{
		Model:         openai.GPT4oMini,
		Temperature:   0.1,
		MaxRetries:    3,
		MaxTextLength: 12000,
	}
}

// Completer asks a chat model for the fields document parsing cannot supply and
// merges them into the partial extraction without overwriting anything.
type Completer struct {
	client ChatClient
	config CompletionConfig
	log    zerolog.Logger
}

// NewCompleter creates a completer backed by the OpenAI API.
func NewCompleter(apiKey string, config CompletionConfig) (*Completer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, WrapAnalysisError("NewCompleter", ErrInvalidConfiguration, "OPENAI_API_KEY is required")
	}
	return NewCompleterWithClient(openai.NewClient(apiKey), config), nil
}

// NewCompleterWithClient creates a completer with an explicit client (for testing).
func NewCompleterWithClient(client ChatClient, config CompletionConfig) *Completer {
	defaults := DefaultCompletionConfig()
	if config.Model == "" {
		config.Model = defaults.Model
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = defaults.MaxRetries
	}
	if config.MaxTextLength <= 0 {
		config.MaxTextLength = defaults.MaxTextLength
	}
	return &Completer{
		client: client,
		config: config,
		log:    logger.WithComponent("completion"),
	}
}

// Complete returns partial enriched with the model's answer for text.
func (c *Completer) Complete(ctx context.Context, text string, partial *models.ExtractedInvoiceData, instructions string) (*models.ExtractedInvoiceData, error) {
	const op = "Complete"

	if partial == nil {
		partial = &models.ExtractedInvoiceData{}
	}
	prompt := buildCompletionPrompt(truncate(text, c.config.MaxTextLength), partial, instructions)

	c.log.Debug().
		Int("prompt_length", len(prompt)).
		Str("model", c.config.Model).
		Float32("temperature", c.config.Temperature).
		Msg("Sending completion request")

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, WrapAnalysisError(op, err, "completion was interrupted")
		}

		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.config.Model,
			Temperature: c.config.Temperature,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			MaxTokens: 1000,
		})
		if err != nil {
			lastErr = err
			c.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_retries", c.config.MaxRetries).
				Msg("Completion request failed, retrying")
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("no response choices")
			continue
		}

		content := stripCodeFence(resp.Choices[0].Message.Content)
		var completed models.ExtractedInvoiceData
		if err := json.Unmarshal([]byte(content), &completed); err != nil {
			lastErr = fmt.Errorf("failed to parse JSON response: %w", err)
			c.log.Warn().
				Err(err).
				Str("response", content).
				Int("attempt", attempt).
				Msg("Failed to parse completion response, retrying")
			continue
		}

		merged := mergeExtracted(partial, &completed)
		c.log.Info().
			Str("beneficiary", merged.Beneficiary).
			Str("beneficiary_type", merged.BeneficiaryType).
			Str("venue", merged.Venue).
			Bool("bank_details", merged.BankDetails.HasAccountNumber()).
			Int("attempt", attempt).
			Msg("Completion merged")
		return merged, nil
	}

	return nil, WrapAnalysisError(op, fmt.Errorf("%w: %w", ErrCompletionFailed, lastErr),
		fmt.Sprintf("all %d attempts failed", c.config.MaxRetries))
}

const systemPrompt = `Du analysierst Rechnungen und Quittungen von Veranstaltungen (Hotels, Locations, Caterer, Künstler, Dienstleister).
Extrahiere die Daten so, wie sie im Dokument stehen, und erfinde nichts.

Felder:
- beneficiary: wer das Geld bekommt (Rechnungssteller, nicht der Empfänger)
- beneficiary_type: "person" für Einzelpersonen und Freiberufler, sonst "company"
- venue: Name des Veranstaltungsorts oder Lieferorts, falls erkennbar
- address: Adresse des Veranstaltungsorts oder Lieferorts
- date, due_date: im Format YYYY-MM-DD
- amount: Bruttobetrag als Zahl mit Punkt als Dezimaltrenner, z.B. "580.00"
- description: kurze Beschreibung der Leistung
- purpose: Verwendungszweck in einem Satz auf Deutsch
- items: Liste von {"description": "..."} für die Positionen
- remarks: Hinweise, die nicht in andere Felder passen (Zahlungsbedingungen, Rabatte, Storno)
- bank_details: {"account_number": IBAN ohne Leerzeichen, "bank_name", "account_name", "swift_code"}

Befolge zusätzliche Anweisungen des Benutzers, wenn sie den Feldern nicht widersprechen.
Antworte NUR mit gültigem JSON. Verwende null für fehlende Werte.`

// buildCompletionPrompt creates the user prompt from the document text, what
// was already extracted and the user's instructions.
func buildCompletionPrompt(text string, partial *models.ExtractedInvoiceData, instructions string) string {
	var prompt strings.Builder

	prompt.WriteString("Analysiere dieses Dokument und ergänze die fehlenden Informationen.\n\n")

	if known, err := json.Marshal(partial); err == nil && string(known) != "{}" {
		prompt.WriteString("Bereits erkannt (nicht ändern):\n")
		prompt.Write(known)
		prompt.WriteString("\n\n")
	}

	if instructions = strings.TrimSpace(instructions); instructions != "" {
		prompt.WriteString("Anweisungen des Benutzers:\n")
		prompt.WriteString(instructions)
		prompt.WriteString("\n\n")
	}

	prompt.WriteString("Dokumenttext:\n")
	prompt.WriteString(text)
	return prompt.String()
}

// mergeExtracted fills the fields of base that are empty from completed.
func mergeExtracted(base, completed *models.ExtractedInvoiceData) *models.ExtractedInvoiceData {
	out := *base
	out.Items = append([]models.LineItem(nil), base.Items...)

	fill := func(target *string, value string) {
		if *target == "" {
			*target = value
		}
	}
	fill(&out.Beneficiary, completed.Beneficiary)
	fill(&out.Venue, completed.Venue)
	fill(&out.Address, completed.Address)
	fill(&out.Description, completed.Description)
	fill(&out.Purpose, completed.Purpose)
	fill(&out.Summary, completed.Summary)
	fill(&out.Remarks, completed.Remarks)
	if _, ok := models.ParseBeneficiaryType(out.BeneficiaryType); !ok {
		out.BeneficiaryType = completed.BeneficiaryType
	}

	if out.Amount == nil {
		out.Amount = completed.Amount
	}
	if out.Date == nil {
		out.Date = completed.Date
	}
	if out.DueDate == nil {
		out.DueDate = completed.DueDate
	}
	if len(out.Items) == 0 {
		out.Items = completed.Items
	}

	switch {
	case base.BankDetails == nil && completed.BankDetails != nil:
		bank := *completed.BankDetails
		out.BankDetails = &bank
	case base.BankDetails != nil:
		bank := *base.BankDetails
		if completed.BankDetails != nil {
			fill(&bank.AccountNumber, completed.BankDetails.AccountNumber)
			fill(&bank.BankName, completed.BankDetails.BankName)
			fill(&bank.AccountName, completed.BankDetails.AccountName)
			fill(&bank.SwiftCode, completed.BankDetails.SwiftCode)
		}
		out.BankDetails = &bank
	}
	return &out
}

func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	// Keep the cut on a rune boundary.
	cut := limit
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
