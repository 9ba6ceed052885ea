package matching

import (
	"strings"
	"time"

	"opsconsole/pkg/models"
)

// Normalized holds the comparison-ready view of an extraction payload.
type Normalized struct {
	Beneficiary string     // lower-cased, trimmed
	Venue       string     // venue, or address when no venue was extracted
	Date        *time.Time // calendar date, nil when absent
}

// Normalize lower-cases and trims the text fields used for candidate scoring.
func Normalize(extracted *models.ExtractedInvoiceData) Normalized {
	if extracted == nil {
		return Normalized{}
	}

	n := Normalized{
		Beneficiary: normalizeText(extracted.Beneficiary),
		Venue:       normalizeText(extracted.Venue),
	}
	if n.Venue == "" {
		n.Venue = normalizeText(extracted.Address)
	}
	if extracted.Date != nil && !extracted.Date.IsZero() {
		date := models.CalendarDate(*extracted.Date)
		n.Date = &date
	}
	return n
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// overlaps reports whether either normalized string contains the other.
// Empty strings never match.
func overlaps(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
