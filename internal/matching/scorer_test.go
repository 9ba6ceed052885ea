package matching

import (
	"reflect"
	"testing"
	"time"

	"opsconsole/pkg/models"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestScoreRulesAreAdditive(t *testing.T) {
	extracted := &models.ExtractedInvoiceData{
		Beneficiary: "  Hotel ADLON ",
		Venue:       "Adlon Ballroom",
	}
	candidate := models.ProjectCandidate{
		ID:                "p1",
		Name:              "Spring Summit",
		ClientCompanyName: "Hotel Adlon",
		Venue:             "adlon ballroom",
	}

	if got := Score(extracted, candidate); got != PointsCompanyMatch+PointsVenueMatch {
		t.Errorf("Score() = %d, want %d", got, PointsCompanyMatch+PointsVenueMatch)
	}
}

func TestScoreClientRuleSuppressedByCompanyRule(t *testing.T) {
	extracted := &models.ExtractedInvoiceData{Beneficiary: "Acme"}

	both := models.ProjectCandidate{ClientCompanyName: "Acme GmbH", ClientName: "Acme"}
	if got := Score(extracted, both); got != PointsCompanyMatch {
		t.Errorf("Score(company and client) = %d, want %d", got, PointsCompanyMatch)
	}

	clientOnly := models.ProjectCandidate{ClientCompanyName: "Globex", ClientName: "acme"}
	if got := Score(extracted, clientOnly); got != PointsClientMatch {
		t.Errorf("Score(client only) = %d, want %d", got, PointsClientMatch)
	}
}

func TestScoreNameRuleIsOneDirectional(t *testing.T) {
	extracted := &models.ExtractedInvoiceData{Beneficiary: "Adlon"}

	if got := Score(extracted, models.ProjectCandidate{Name: "Adlon Gala"}); got != PointsNameContains {
		t.Errorf("Score(name contains beneficiary) = %d, want %d", got, PointsNameContains)
	}

	extracted.Beneficiary = "Adlon Gala Catering"
	if got := Score(extracted, models.ProjectCandidate{Name: "Adlon Gala"}); got != 0 {
		t.Errorf("Score(beneficiary contains name) = %d, want 0", got)
	}
}

func TestScoreVenueFallsBackToAddress(t *testing.T) {
	extracted := &models.ExtractedInvoiceData{Address: "Unter den Linden 77, Berlin"}
	candidate := models.ProjectCandidate{Venue: "unter den linden 77"}

	if got := Score(extracted, candidate); got != PointsVenueMatch {
		t.Errorf("Score() = %d, want %d", got, PointsVenueMatch)
	}
}

func TestScoreEmptyFieldsNeverMatch(t *testing.T) {
	extracted := &models.ExtractedInvoiceData{}
	candidate := models.ProjectCandidate{Name: "Anything", ClientName: "Acme", Venue: "Hall"}

	if got := Score(extracted, candidate); got != 0 {
		t.Errorf("Score() = %d, want 0", got)
	}
	if got := Score(nil, candidate); got != 0 {
		t.Errorf("Score(nil) = %d, want 0", got)
	}
}

func TestScoreProjectDateWindow(t *testing.T) {
	candidate := models.ProjectCandidate{
		StartDate: date(2025, 3, 10),
		DueDate:   date(2025, 3, 12),
	}

	tests := []struct {
		name string
		date *time.Time
		want int
	}{
		{"seven days before start", date(2025, 3, 3), PointsProjectDateWindow},
		{"eight days before start", date(2025, 3, 2), 0},
		{"sixty days after due date", date(2025, 5, 11), PointsProjectDateWindow},
		{"sixty one days after due date", date(2025, 5, 12), 0},
		{"no extracted date", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(&models.ExtractedInvoiceData{Date: tt.date}, candidate)
			if got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreLabelDateWindow(t *testing.T) {
	candidate := models.ProjectCandidate{Name: "Gala 05-071225"}

	tests := []struct {
		name string
		date *time.Time
		want int
	}{
		{"seven days before label start", date(2025, 11, 28), PointsLabelDateWindow},
		{"eight days before label start", date(2025, 11, 27), 0},
		{"inside label range", date(2025, 12, 6), PointsLabelDateWindow},
		{"sixty days after label end", date(2026, 2, 5), PointsLabelDateWindow},
		{"sixty one days after label end", date(2026, 2, 6), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(&models.ExtractedInvoiceData{Date: tt.date}, candidate)
			if got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreProjectWindowWithoutDueDateUsesStart(t *testing.T) {
	candidate := models.ProjectCandidate{StartDate: date(2025, 3, 10)}

	if got := Score(&models.ExtractedInvoiceData{Date: date(2025, 5, 9)}, candidate); got != PointsProjectDateWindow {
		t.Errorf("Score(start+60d) = %d, want %d", got, PointsProjectDateWindow)
	}
	if got := Score(&models.ExtractedInvoiceData{Date: date(2025, 5, 10)}, candidate); got != 0 {
		t.Errorf("Score(start+61d) = %d, want 0", got)
	}
}

func TestExplainLabelDateRule(t *testing.T) {
	candidate := models.ProjectCandidate{
		Name:              "Hotel Adlon Gala 05-071225",
		ClientCompanyName: "Hotel Adlon",
		StartDate:         date(2025, 12, 5),
	}
	n := Normalize(&models.ExtractedInvoiceData{
		Beneficiary: "Hotel Adlon",
		Date:        date(2025, 12, 10),
	})

	got := Explain(n, candidate)
	wantRules := []string{RuleCompany, RuleName, RuleProjectDate, RuleLabelDate}
	if !reflect.DeepEqual(got.Rules, wantRules) {
		t.Errorf("Rules = %v, want %v", got.Rules, wantRules)
	}
	if got.Total != 28 {
		t.Errorf("Total = %d, want 28", got.Total)
	}

	// Label end Dec 7 + 60 days is Feb 5, project start + 60 days is Feb 3.
	n.Date = date(2026, 2, 5)
	got = Explain(n, candidate)
	if !reflect.DeepEqual(got.Rules, []string{RuleCompany, RuleName, RuleLabelDate}) {
		t.Errorf("Rules on Feb 5 = %v", got.Rules)
	}
}

func TestExplainUnparseableLabelSkipsRule(t *testing.T) {
	candidate := models.ProjectCandidate{Name: "Kickoff 1325"}
	n := Normalize(&models.ExtractedInvoiceData{Date: date(2025, 1, 13)})

	if got := Explain(n, candidate); got.Total != 0 {
		t.Errorf("Total = %d, want 0 (rules %v)", got.Total, got.Rules)
	}
}
