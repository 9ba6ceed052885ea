package reconcile

import (
	"testing"

	"opsconsole/pkg/models"
)

func TestResolveBeneficiary(t *testing.T) {
	known := []models.Beneficiary{
		{ID: "b0", Name: "", Type: models.BeneficiaryTypeCompany},
		{ID: "b1", Name: "Adlon Kempinski Berlin", Type: models.BeneficiaryTypeCompany},
		{ID: "b2", Name: "Adlon", Type: models.BeneficiaryTypeCompany},
		{ID: "b3", Name: "Jane Doe", Type: models.BeneficiaryTypePerson},
		{ID: "b4", Name: "Catering", Type: models.BeneficiaryTypeCompany},
	}

	tests := []struct {
		name   string
		input  string
		wantID string
	}{
		{"exact match beats earlier substring", "  ADLON ", "b2"},
		{"known name inside extracted", "Jane Doe Photography", "b3"},
		{"known inside extracted beats extracted inside known", "Adlon Kempinski", "b2"},
		{"extracted inside known", "Kempinski", "b1"},
		{"first in list order within a tier", "Adlon Catering", "b2"},
		{"no match", "Globex", models.BeneficiaryIDNew},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveBeneficiary(tt.input, "", known)
			if got.ID != tt.wantID {
				t.Errorf("ResolveBeneficiary(%q) = %+v, want id %s", tt.input, got, tt.wantID)
			}
		})
	}
}

func TestResolveBeneficiaryPlaceholderType(t *testing.T) {
	tests := []struct {
		reported string
		want     string
	}{
		{"person", models.BeneficiaryTypePerson},
		{"Individual", models.BeneficiaryTypePerson},
		{"company", models.BeneficiaryTypeCompany},
		{"", models.BeneficiaryTypeCompany},
		{"freelancer", models.BeneficiaryTypeCompany},
	}
	for _, tt := range tests {
		got := ResolveBeneficiary(" Max Mustermann ", tt.reported, nil)
		if got.ID != models.BeneficiaryIDNew || got.Name != "Max Mustermann" {
			t.Errorf("placeholder = %+v", got)
		}
		if got.Type != tt.want {
			t.Errorf("type for %q = %s, want %s", tt.reported, got.Type, tt.want)
		}
	}
}

func TestResolveBeneficiaryKeepsKnownType(t *testing.T) {
	known := []models.Beneficiary{{ID: "b3", Name: "Jane Doe", Type: models.BeneficiaryTypePerson}}

	got := ResolveBeneficiary("jane doe", "company", known)
	if got != known[0] {
		t.Errorf("ResolveBeneficiary() = %+v, want %+v", got, known[0])
	}
}
