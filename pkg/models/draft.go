package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatusPending is the status of payment terms seeded from a document.
const PaymentStatusPending = "Pending"

type PaymentTerm struct {
	Amount      decimal.Decimal `json:"amount"`
	RequestDate time.Time       `json:"request_date"`
	ReleaseDate time.Time       `json:"release_date"`
	Status      string          `json:"status"`
}

// UnmarshalJSON accepts calendar dates ("2025-12-05") as well as RFC3339 timestamps.
// A malformed date is an error since payment terms are user data.
func (t *PaymentTerm) UnmarshalJSON(data []byte) error {
	type plain PaymentTerm
	aux := struct {
		*plain
		RequestDate json.RawMessage `json:"request_date"`
		ReleaseDate json.RawMessage `json:"release_date"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	if t.RequestDate, err = termDate(aux.RequestDate); err != nil {
		return fmt.Errorf("request_date: %w", err)
	}
	if t.ReleaseDate, err = termDate(aux.ReleaseDate); err != nil {
		return fmt.Errorf("release_date: %w", err)
	}
	return nil
}

func termDate(raw json.RawMessage) (time.Time, error) {
	var s *string
	if len(raw) == 0 {
		return time.Time{}, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, err
	}
	if s == nil || *s == "" {
		return time.Time{}, nil
	}
	return ParseCalendarDate(*s)
}

// DraftFinancialRecord is the user-editable invoice or expense form state. It is
// created when the form opens and persisted or discarded by the caller.
type DraftFinancialRecord struct {
	ProjectID string `json:"project_id,omitempty"`

	// Beneficiary as shown in the form, and the record it resolved to (if any)
	BeneficiaryText string       `json:"beneficiary_text,omitempty"`
	BeneficiaryRef  *Beneficiary `json:"beneficiary_ref,omitempty"`

	Amount       decimal.Decimal `json:"amount"`
	PaymentTerms []PaymentTerm   `json:"payment_terms,omitempty"`

	// BankAccountID references a stored account or a staged one (TempBankAccountPrefix).
	BankAccountID     string             `json:"bank_account_id,omitempty"`
	StagedBankAccount *BankAccountRecord `json:"staged_bank_account,omitempty"`

	Purpose string `json:"purpose,omitempty"`
	Remarks string `json:"remarks,omitempty"`
}

// HasBeneficiary reports whether the user already chose or typed a beneficiary.
func (d *DraftFinancialRecord) HasBeneficiary() bool {
	return d.BeneficiaryRef != nil || d.BeneficiaryText != ""
}

// PersistableBankAccountID returns the bank account id usable as a foreign key,
// or "" when the account is only staged in memory.
func (d *DraftFinancialRecord) PersistableBankAccountID() string {
	if IsTemporaryID(d.BankAccountID) {
		return ""
	}
	return d.BankAccountID
}

// Clone returns a deep copy of the draft.
func (d *DraftFinancialRecord) Clone() *DraftFinancialRecord {
	out := *d
	if d.BeneficiaryRef != nil {
		ref := *d.BeneficiaryRef
		out.BeneficiaryRef = &ref
	}
	if d.StagedBankAccount != nil {
		acc := *d.StagedBankAccount
		out.StagedBankAccount = &acc
	}
	if d.PaymentTerms != nil {
		out.PaymentTerms = append([]PaymentTerm(nil), d.PaymentTerms...)
	}
	return &out
}
