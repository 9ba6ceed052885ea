package ocr_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"opsconsole/internal/ocr"
)

// Example demonstrates reading the text of a scanned receipt.
func Example() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Credentials come from GOOGLE_APPLICATION_CREDENTIALS
	ocrService, err := ocr.NewGoogleVisionOCRService(ctx)
	if err != nil {
		log.Fatalf("Failed to create OCR service: %v", err)
	}
	defer ocrService.Close()

	content, err := os.ReadFile("receipt.jpg")
	if err != nil {
		log.Fatalf("Failed to read receipt: %v", err)
	}

	result, err := ocrService.ExtractText(ctx, content, "image/jpeg")
	if err != nil {
		switch {
		case errors.Is(err, ocr.ErrFileTooLarge):
			log.Printf("Receipt is too large for processing. Maximum size is 20MB.")
		case errors.Is(err, ocr.ErrEmptyDocument):
			log.Printf("No readable text found in the receipt.")
		default:
			log.Fatalf("OCR processing failed: %v", err)
		}
		return
	}

	fmt.Printf("Pages: %d, confidence %.2f%%, languages %s\n",
		result.PageCount, result.Confidence*100, strings.Join(result.LanguageCodes, ", "))
	fmt.Println(result.Text)
}
