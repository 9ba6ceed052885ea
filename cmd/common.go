package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"opsconsole/internal/extraction"
)

// createCommandContext creates a context with timeout and signal handling
func createCommandContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// readDocument loads a local file, or passes a gs:// URI through to Document AI.
func readDocument(path, mimeType, instructions string, log zerolog.Logger) (extraction.Document, error) {
	doc := extraction.Document{URI: path, MimeType: mimeType, Instructions: instructions}

	if strings.HasPrefix(path, "gs://") {
		if doc.MimeType == "" {
			doc.MimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
		}
		if doc.MimeType == "" {
			return doc, fmt.Errorf("cannot determine mime type of %s, use --mime-type", path)
		}
		return doc, nil
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", path).
				Msg("Document file not found")
			return doc, fmt.Errorf("document file not found: %s", path)
		}
		if os.IsPermission(err) {
			return doc, fmt.Errorf("permission denied accessing document: %s", path)
		}
		return doc, fmt.Errorf("error accessing document: %w", err)
	}
	if !fileInfo.Mode().IsRegular() {
		return doc, fmt.Errorf("path is not a regular file: %s", path)
	}
	if fileInfo.Size() == 0 {
		return doc, fmt.Errorf("document is empty: %s", path)
	}
	if fileInfo.Size() > extraction.MaxDocumentSizeBytes {
		log.Error().
			Str("file", path).
			Int64("size", fileInfo.Size()).
			Int64("max_size", extraction.MaxDocumentSizeBytes).
			Msg("Document exceeds maximum size limit")
		return doc, fmt.Errorf("document too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), extraction.MaxDocumentSizeBytes)
	}

	doc.Content, err = os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("failed to read document: %w", err)
	}
	if doc.MimeType == "" {
		doc.MimeType = detectMimeType(path, doc.Content)
	}
	doc.URI = ""

	log.Debug().
		Str("file", path).
		Int64("size", fileInfo.Size()).
		Str("mime_type", doc.MimeType).
		Msg("Document loaded")
	return doc, nil
}

// detectMimeType trusts the file extension first and sniffs the content otherwise.
func detectMimeType(path string, content []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		if i := strings.IndexByte(byExt, ';'); i >= 0 {
			byExt = byExt[:i]
		}
		return byExt
	}
	sniffed := http.DetectContentType(content)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return sniffed
}

// readJSONFile decodes the JSON file at path into v.
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSONOutput writes v as indented JSON to outputPath or stdout.
func writeJSONOutput(v any, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal output to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Output written to file")
		return nil
	}

	if _, err := os.Stdout.Write(append(jsonData, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
