package models

import (
	"encoding/json"
	"time"
)

// ProjectCandidate is a project from the project directory that an invoice may belong to.
type ProjectCandidate struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`                          // Often carries a date code, e.g. "Gala 05-071225"
	ClientName        string     `json:"client_name,omitempty"`         // Contact person at the client
	ClientCompanyName string     `json:"client_company_name,omitempty"` // Client company
	Venue             string     `json:"venue,omitempty"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	DueDate           *time.Time `json:"due_date,omitempty"`
}

// UnmarshalJSON accepts the same date formats as extracted payloads. An unreadable
// date leaves the field unset, as the directory sheets do.
func (p *ProjectCandidate) UnmarshalJSON(data []byte) error {
	type plain ProjectCandidate
	aux := struct {
		*plain
		StartDate json.RawMessage `json:"start_date"`
		DueDate   json.RawMessage `json:"due_date"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.StartDate = lenientDate(aux.StartDate)
	p.DueDate = lenientDate(aux.DueDate)
	return nil
}
