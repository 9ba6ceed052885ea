package models

import "strings"

const (
	// BeneficiaryIDNew marks a beneficiary typed by the user or extracted from a document
	// that has not been stored yet.
	BeneficiaryIDNew = "new"

	// BeneficiaryIDUnknown marks a legacy free-text beneficiary without a resolvable record.
	BeneficiaryIDUnknown = "unknown"

	BeneficiaryTypePerson  = "person"
	BeneficiaryTypeCompany = "company"

	// TempBankAccountPrefix prefixes the id of bank accounts staged in memory only.
	// Such ids must never be used as foreign keys.
	TempBankAccountPrefix = "temp_"

	// TempOwnerID is the owner id of staged bank accounts.
	TempOwnerID = "temp"

	// DefaultBankName is stored when the document did not name the bank.
	DefaultBankName = "Unknown Bank"
)

type Beneficiary struct {
	ID   string `json:"id"`   // Store id, BeneficiaryIDNew or BeneficiaryIDUnknown
	Name string `json:"name"` // Display name as typed or extracted
	Type string `json:"type"` // "person" or "company"
}

// IsPersisted reports whether the beneficiary refers to a stored record.
func (b Beneficiary) IsPersisted() bool {
	id := strings.TrimSpace(b.ID)
	return id != "" && id != BeneficiaryIDNew && id != BeneficiaryIDUnknown
}

// ParseBeneficiaryType normalizes a reported beneficiary type.
// The second value is false when the input is not a recognised type.
func ParseBeneficiaryType(value string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case BeneficiaryTypePerson, "individual":
		return BeneficiaryTypePerson, true
	case BeneficiaryTypeCompany, "business", "organization", "organisation":
		return BeneficiaryTypeCompany, true
	default:
		return "", false
	}
}

type BankAccountRecord struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_id"`
	OwnerType     string `json:"owner_type"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	SwiftCode     string `json:"swift_code,omitempty"`
}

// IsTemporary reports whether the record only exists in memory.
func (r BankAccountRecord) IsTemporary() bool {
	return IsTemporaryID(r.ID)
}

// IsTemporaryID reports whether id was generated for a staged bank account.
func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, TempBankAccountPrefix)
}
