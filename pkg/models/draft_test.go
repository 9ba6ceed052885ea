package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDraftDecodesCalendarDates(t *testing.T) {
	payload := `{
		"project_id": "p1",
		"amount": "250.50",
		"payment_terms": [
			{"amount": "250.50", "request_date": "2025-12-05", "release_date": "2025-12-20T00:00:00Z", "status": "Pending"},
			{"amount": "10", "request_date": null, "status": "Approved"}
		]
	}`

	var draft DraftFinancialRecord
	if err := json.Unmarshal([]byte(payload), &draft); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(draft.PaymentTerms) != 2 {
		t.Fatalf("PaymentTerms = %+v, want 2", draft.PaymentTerms)
	}

	first := draft.PaymentTerms[0]
	if !first.RequestDate.Equal(time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("RequestDate = %v", first.RequestDate)
	}
	if !first.ReleaseDate.Equal(time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ReleaseDate = %v", first.ReleaseDate)
	}
	if !first.Amount.Equal(decimal.RequireFromString("250.50")) || first.Status != PaymentStatusPending {
		t.Errorf("first term = %+v", first)
	}

	second := draft.PaymentTerms[1]
	if !second.RequestDate.IsZero() || !second.ReleaseDate.IsZero() || second.Status != "Approved" {
		t.Errorf("second term = %+v", second)
	}
}

func TestPaymentTermRejectsMalformedDate(t *testing.T) {
	var term PaymentTerm
	if err := json.Unmarshal([]byte(`{"request_date": "next week"}`), &term); err == nil {
		t.Errorf("Unmarshal() expected error for malformed request_date")
	}
}

func TestPaymentTermRoundTrip(t *testing.T) {
	in := PaymentTerm{
		Amount:      decimal.RequireFromString("99.90"),
		RequestDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Status:      PaymentStatusPending,
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out PaymentTerm
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !out.RequestDate.Equal(in.RequestDate) || !out.ReleaseDate.IsZero() || !out.Amount.Equal(in.Amount) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestProjectCandidateDecodesCalendarDates(t *testing.T) {
	payload := `[
		{"id": "p1", "name": "Gala 05-071225", "start_date": "2025-12-05", "due_date": "07.12.2025"},
		{"id": "p2", "name": "Roadshow", "start_date": "soon", "due_date": 12}
	]`

	var projects []ProjectCandidate
	if err := json.Unmarshal([]byte(payload), &projects); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("projects = %+v", projects)
	}
	if projects[0].Name != "Gala 05-071225" {
		t.Errorf("Name = %q", projects[0].Name)
	}
	if projects[0].StartDate == nil || !projects[0].StartDate.Equal(time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartDate = %v", projects[0].StartDate)
	}
	if projects[0].DueDate == nil || !projects[0].DueDate.Equal(time.Date(2025, 12, 7, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DueDate = %v", projects[0].DueDate)
	}
	if projects[1].ID != "p2" || projects[1].StartDate != nil || projects[1].DueDate != nil {
		t.Errorf("p2 = %+v", projects[1])
	}
}
