// Package matching scores in-flight projects against data extracted from an invoice
// and picks the project the invoice most likely belongs to.
package matching

import (
	"strings"

	"opsconsole/internal/datelabel"
	"opsconsole/pkg/models"
)

// Points per rule and the date window around a project. The values are empirical and
// kept stable so that match results do not shift between releases.
const (
	PointsCompanyMatch      = 10
	PointsClientMatch       = 5
	PointsNameContains      = 3
	PointsVenueMatch        = 8
	PointsProjectDateWindow = 5
	PointsLabelDateWindow   = 10
	DaysBeforeProjectStart  = 7
	DaysAfterProjectEnd     = 60
)

// Rule names reported in a Breakdown.
const (
	RuleCompany     = "company"
	RuleClient      = "client"
	RuleName        = "name"
	RuleVenue       = "venue"
	RuleProjectDate = "project_date"
	RuleLabelDate   = "label_date"
)

// Breakdown is the score of one candidate with the rules that fired, in rule order.
type Breakdown struct {
	Total int
	Rules []string
}

func (b *Breakdown) add(rule string, points int) {
	b.Total += points
	b.Rules = append(b.Rules, rule)
}

// Score returns the match score of candidate for the extracted data. Rules add up
// independently, except that the client rule only counts when the company rule did not.
func Score(extracted *models.ExtractedInvoiceData, candidate models.ProjectCandidate) int {
	return Explain(Normalize(extracted), candidate).Total
}

// Explain scores a candidate against an already normalized payload.
func Explain(n Normalized, candidate models.ProjectCandidate) Breakdown {
	var b Breakdown

	companyMatched := overlaps(n.Beneficiary, normalizeText(candidate.ClientCompanyName))
	if companyMatched {
		b.add(RuleCompany, PointsCompanyMatch)
	}
	if !companyMatched && overlaps(n.Beneficiary, normalizeText(candidate.ClientName)) {
		b.add(RuleClient, PointsClientMatch)
	}

	name := normalizeText(candidate.Name)
	if n.Beneficiary != "" && name != "" && strings.Contains(name, n.Beneficiary) {
		b.add(RuleName, PointsNameContains)
	}

	if overlaps(n.Venue, normalizeText(candidate.Venue)) {
		b.add(RuleVenue, PointsVenueMatch)
	}

	if n.Date == nil {
		return b
	}

	if window, ok := projectWindow(candidate); ok && window.Contains(*n.Date) {
		b.add(RuleProjectDate, PointsProjectDateWindow)
	}
	if label, ok := datelabel.Parse(candidate.Name); ok {
		if label.Widen(DaysBeforeProjectStart, DaysAfterProjectEnd).Contains(*n.Date) {
			b.add(RuleLabelDate, PointsLabelDateWindow)
		}
	}
	return b
}

// projectWindow is [start - 7 days, (due date or start) + 60 days].
func projectWindow(candidate models.ProjectCandidate) (models.DateInterval, bool) {
	if candidate.StartDate == nil || candidate.StartDate.IsZero() {
		return models.DateInterval{}, false
	}
	start := models.CalendarDate(*candidate.StartDate)
	end := start
	if candidate.DueDate != nil && !candidate.DueDate.IsZero() {
		end = models.CalendarDate(*candidate.DueDate)
	}
	window := models.DateInterval{
		Start: start.AddDate(0, 0, -DaysBeforeProjectStart),
		End:   end.AddDate(0, 0, DaysAfterProjectEnd),
	}
	return window, true
}
