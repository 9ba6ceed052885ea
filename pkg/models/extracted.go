package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExtractedInvoiceData is the structured output of document understanding for one
// uploaded invoice or receipt. Every field is optional.
type ExtractedInvoiceData struct {
	// Amounts and dates
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	Date    *time.Time       `json:"date,omitempty"`     // Invoice or receipt date
	DueDate *time.Time       `json:"due_date,omitempty"` // Payment due date

	// Beneficiary (who gets paid)
	Beneficiary     string `json:"beneficiary,omitempty"`
	BeneficiaryType string `json:"beneficiary_type,omitempty"` // "person", "company" or unknown

	// Where the goods or services were delivered
	Venue   string `json:"venue,omitempty"`
	Address string `json:"address,omitempty"`

	// What was bought
	Description string     `json:"description,omitempty"`
	Purpose     string     `json:"purpose,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Items       []LineItem `json:"items,omitempty"`

	Remarks     string       `json:"remarks,omitempty"`
	BankDetails *BankDetails `json:"bank_details,omitempty"`
}

type LineItem struct {
	Description string `json:"description,omitempty"`
	Name        string `json:"name,omitempty"`
}

type BankDetails struct {
	AccountNumber string `json:"account_number,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	AccountName   string `json:"account_name,omitempty"`
	SwiftCode     string `json:"swift_code,omitempty"`
}

// HasAccountNumber reports whether bank details carry a usable account number.
func (b *BankDetails) HasAccountNumber() bool {
	return b != nil && strings.TrimSpace(b.AccountNumber) != ""
}

// UnmarshalJSON decodes a payload leniently: a field holding a value of the wrong
// type is treated as absent instead of failing the whole payload.
func (e *ExtractedInvoiceData) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := ExtractedInvoiceData{
		Amount:          lenientAmount(raw["amount"]),
		Date:            lenientDate(raw["date"]),
		DueDate:         lenientDate(raw["due_date"]),
		Beneficiary:     lenientString(raw["beneficiary"]),
		BeneficiaryType: lenientString(raw["beneficiary_type"]),
		Venue:           lenientString(raw["venue"]),
		Address:         lenientString(raw["address"]),
		Description:     lenientString(raw["description"]),
		Purpose:         lenientString(raw["purpose"]),
		Summary:         lenientString(raw["summary"]),
		Items:           lenientItems(raw["items"]),
		Remarks:         lenientString(raw["remarks"]),
		BankDetails:     lenientBankDetails(raw["bank_details"]),
	}
	*e = out
	return nil
}

// lenientString accepts JSON strings and numbers; anything else is absent.
func lenientString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String()
	}
	return ""
}

func lenientAmount(raw json.RawMessage) *decimal.Decimal {
	value := lenientString(raw)
	if value == "" {
		return nil
	}
	amount, err := ParseAmount(value)
	if err != nil {
		return nil
	}
	return &amount
}

func lenientDate(raw json.RawMessage) *time.Time {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return nil
	}
	date, err := ParseCalendarDate(s)
	if err != nil {
		return nil
	}
	return &date
}

func lenientItems(raw json.RawMessage) []LineItem {
	var entries []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil {
		return nil
	}
	var items []LineItem
	for _, entry := range entries {
		if name := lenientString(entry); name != "" {
			items = append(items, LineItem{Name: name})
			continue
		}
		var fields map[string]json.RawMessage
		if json.Unmarshal(entry, &fields) != nil {
			continue
		}
		item := LineItem{
			Description: lenientString(fields["description"]),
			Name:        lenientString(fields["name"]),
		}
		if item.Description != "" || item.Name != "" {
			items = append(items, item)
		}
	}
	return items
}

func lenientBankDetails(raw json.RawMessage) *BankDetails {
	var fields map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil {
		return nil
	}
	details := &BankDetails{
		AccountNumber: lenientString(fields["account_number"]),
		BankName:      lenientString(fields["bank_name"]),
		AccountName:   lenientString(fields["account_name"]),
		SwiftCode:     lenientString(fields["swift_code"]),
	}
	if *details == (BankDetails{}) {
		return nil
	}
	return details
}
