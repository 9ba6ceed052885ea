package sheets

import (
	"fmt"
	"strings"
	"time"

	"opsconsole/internal/reconcile"
)

// ResultRow is one reconciliation pass as written to the results sheet.
type ResultRow struct {
	Document      string
	Kind          string // invoice or receipt
	ProjectID     string
	Score         int
	Beneficiary   string
	Amount        string
	Purpose       string
	BankAccountID string
	Notices       string
	ProcessedAt   time.Time
}

func ResultHeaders() []interface{} {
	return []interface{}{
		"Dokument", "Art", "Projekt", "Score", "Empfänger",
		"Betrag", "Zweck", "Bankkonto", "Hinweise", "Verarbeitet",
	}
}

// NewResultRow summarizes a reconciliation result. Staged bank accounts are left
// out since their ids are not stored anywhere.
func NewResultRow(document, kind string, res *reconcile.Result, processedAt time.Time) ResultRow {
	draft := res.Draft
	row := ResultRow{
		Document:      document,
		Kind:          kind,
		ProjectID:     draft.ProjectID,
		Score:         res.Score,
		Beneficiary:   draft.BeneficiaryText,
		Purpose:       draft.Purpose,
		BankAccountID: draft.PersistableBankAccountID(),
		ProcessedAt:   processedAt,
	}
	if !draft.Amount.IsZero() {
		row.Amount = draft.Amount.StringFixed(2)
	}

	var notes []string
	for _, n := range res.Notices {
		if n.Status == reconcile.NoticeSkipped {
			continue
		}
		notes = append(notes, fmt.Sprintf("%s: %s", n.Step, n.Message))
	}
	row.Notices = strings.Join(notes, "; ")
	return row
}

// Values converts the row for the Sheets API.
func (r ResultRow) Values() []interface{} {
	processedAt := r.ProcessedAt.Format("02.01.2006 15:04:05")
	return []interface{}{
		r.Document,      // A: Dokument
		r.Kind,          // B: Art
		r.ProjectID,     // C: Projekt
		r.Score,         // D: Score
		r.Beneficiary,   // E: Empfänger
		r.Amount,        // F: Betrag
		r.Purpose,       // G: Zweck
		r.BankAccountID, // H: Bankkonto
		r.Notices,       // I: Hinweise
		processedAt,     // J: Verarbeitet
	}
}
