// Package reconcile merges data extracted from an invoice or receipt into a draft
// financial record. It only fills fields the user has not set, resolves the
// beneficiary, matches the project and reuses, creates or stages the bank account.
package reconcile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"opsconsole/internal/logger"
	"opsconsole/internal/matching"
	"opsconsole/pkg/models"
)

// RemarksHeading separates extracted remarks from text already in the draft.
const RemarksHeading = "--- Extracted remarks ---"

// Steps of a reconciliation pass, in order.
const (
	StepAmount      = "amount"
	StepPurpose     = "purpose"
	StepBeneficiary = "beneficiary"
	StepProject     = "project"
	StepBankAccount = "bank_account"
	StepRemarks     = "remarks"
)

// Notice statuses.
const (
	NoticeSet     = "set"
	NoticeSkipped = "skipped"
	NoticeFailed  = "failed"
)

// Directory is the read-only reference data a pass matches against.
type Directory struct {
	Projects      []models.ProjectCandidate `json:"projects"`
	Beneficiaries []models.Beneficiary      `json:"beneficiaries"`
}

// Notice reports what one step did to the draft.
type Notice struct {
	Step    string `json:"step"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	Draft   *models.DraftFinancialRecord `json:"draft"`
	Notices []Notice                     `json:"notices"`

	// Project and Score are set when the project step matched a candidate.
	Project *models.ProjectCandidate `json:"project,omitempty"`
	Score   int                      `json:"score,omitempty"`
}

// Failed reports whether any step failed.
func (r *Result) Failed() bool {
	for _, n := range r.Notices {
		if n.Status == NoticeFailed {
			return true
		}
	}
	return false
}

// Orchestrator runs reconciliation passes. It keeps no state between passes and may
// be shared; callers serialize passes over the same draft.
type Orchestrator struct {
	matcher  *matching.ProjectMatcher
	accounts *BankAccountReconciler
	now      func() time.Time
	log      zerolog.Logger
}

func NewOrchestrator(store AccountStore) *Orchestrator {
	return NewOrchestratorWithDeps(matching.NewProjectMatcher(), NewBankAccountReconciler(store), time.Now)
}

// NewOrchestratorWithDeps creates an orchestrator with explicit collaborators (for testing).
func NewOrchestratorWithDeps(matcher *matching.ProjectMatcher, accounts *BankAccountReconciler, now func() time.Time) *Orchestrator {
	return &Orchestrator{
		matcher:  matcher,
		accounts: accounts,
		now:      now,
		log:      logger.WithComponent("reconcile"),
	}
}

// Apply merges extracted into a copy of draft and returns it. The caller's draft is
// not modified. Failing steps are reported as notices and never stop the pass; only a
// missing payload or draft returns an error.
func (o *Orchestrator) Apply(ctx context.Context, extracted *models.ExtractedInvoiceData, draft *models.DraftFinancialRecord, directory Directory) (*Result, error) {
	const op = "Apply"

	if extracted == nil {
		return nil, WrapStepError(op, ErrInvalidInput, "no extracted data")
	}
	if draft == nil {
		return nil, WrapStepError(op, ErrInvalidInput, "no draft")
	}

	res := &Result{Draft: draft.Clone()}

	o.applyAmount(res, extracted)
	o.applyPurpose(res, extracted)
	resolved := o.applyBeneficiary(res, extracted, directory.Beneficiaries)
	o.applyProject(res, extracted, directory.Projects)
	o.applyBankAccount(ctx, res, extracted, resolved)
	o.applyRemarks(res, extracted)

	o.log.Info().
		Str("project_id", res.Draft.ProjectID).
		Str("beneficiary", res.Draft.BeneficiaryText).
		Str("bank_account_id", res.Draft.BankAccountID).
		Bool("failed", res.Failed()).
		Msg("Reconciliation pass completed")

	return res, nil
}

func (o *Orchestrator) applyAmount(res *Result, extracted *models.ExtractedInvoiceData) {
	draft := res.Draft

	if extracted.Amount == nil || !extracted.Amount.IsPositive() {
		res.skip(StepAmount, "no positive amount extracted")
		return
	}
	if !draft.Amount.IsZero() {
		res.skip(StepAmount, "amount already set")
		return
	}

	requestDate := models.CalendarDate(o.now())
	if extracted.Date != nil {
		requestDate = models.CalendarDate(*extracted.Date)
	}
	releaseDate := requestDate
	if extracted.DueDate != nil {
		releaseDate = models.CalendarDate(*extracted.DueDate)
	}

	draft.Amount = *extracted.Amount
	if len(draft.PaymentTerms) == 1 {
		term := &draft.PaymentTerms[0]
		term.Amount = *extracted.Amount
		term.RequestDate = requestDate
		term.ReleaseDate = releaseDate
		res.set(StepAmount, "amount set, payment term updated")
		return
	}

	draft.PaymentTerms = []models.PaymentTerm{{
		Amount:      *extracted.Amount,
		RequestDate: requestDate,
		ReleaseDate: releaseDate,
		Status:      models.PaymentStatusPending,
	}}
	res.set(StepAmount, "amount set with one pending payment term")
}

func (o *Orchestrator) applyPurpose(res *Result, extracted *models.ExtractedInvoiceData) {
	purpose := Purpose(extracted)
	switch {
	case purpose == "":
		res.skip(StepPurpose, "no purpose extracted")
	case strings.TrimSpace(res.Draft.Purpose) != "":
		res.skip(StepPurpose, "purpose already set")
	default:
		res.Draft.Purpose = purpose
		res.set(StepPurpose, "purpose set")
	}
}

// Purpose returns the first non-empty of the joined line items, description,
// purpose and summary.
func Purpose(extracted *models.ExtractedInvoiceData) string {
	var items []string
	for _, item := range extracted.Items {
		text := strings.TrimSpace(item.Description)
		if text == "" {
			text = strings.TrimSpace(item.Name)
		}
		if text != "" {
			items = append(items, text)
		}
	}

	for _, candidate := range []string{
		strings.Join(items, ", "),
		extracted.Description,
		extracted.Purpose,
		extracted.Summary,
	} {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			return candidate
		}
	}
	return ""
}

// applyBeneficiary returns the beneficiary the bank account step should use: the
// resolved one, or the draft's existing one when this step did not run.
func (o *Orchestrator) applyBeneficiary(res *Result, extracted *models.ExtractedInvoiceData, known []models.Beneficiary) *models.Beneficiary {
	draft := res.Draft

	if strings.TrimSpace(extracted.Beneficiary) == "" {
		res.skip(StepBeneficiary, "no beneficiary extracted")
		return existingBeneficiary(draft)
	}
	if draft.HasBeneficiary() {
		res.skip(StepBeneficiary, "beneficiary already set")
		return existingBeneficiary(draft)
	}

	resolved := ResolveBeneficiary(extracted.Beneficiary, extracted.BeneficiaryType, known)
	draft.BeneficiaryText = resolved.Name
	draft.BeneficiaryRef = &resolved

	if resolved.IsPersisted() {
		res.set(StepBeneficiary, "matched known beneficiary "+resolved.Name)
	} else {
		res.set(StepBeneficiary, "new "+resolved.Type+" beneficiary "+resolved.Name)
	}

	out := resolved
	return &out
}

func existingBeneficiary(draft *models.DraftFinancialRecord) *models.Beneficiary {
	if draft.BeneficiaryRef != nil {
		b := *draft.BeneficiaryRef
		return &b
	}
	if text := strings.TrimSpace(draft.BeneficiaryText); text != "" {
		return &models.Beneficiary{ID: models.BeneficiaryIDUnknown, Name: text, Type: models.BeneficiaryTypeCompany}
	}
	return nil
}

func (o *Orchestrator) applyProject(res *Result, extracted *models.ExtractedInvoiceData, projects []models.ProjectCandidate) {
	if strings.TrimSpace(res.Draft.ProjectID) != "" {
		res.skip(StepProject, "project already set")
		return
	}

	best, score := o.matcher.BestMatch(extracted, projects)
	if best == nil {
		res.skip(StepProject, "no matching project")
		return
	}

	res.Draft.ProjectID = best.ID
	res.Project = best
	res.Score = score
	res.set(StepProject, "matched project "+best.Name)
}

func (o *Orchestrator) applyBankAccount(ctx context.Context, res *Result, extracted *models.ExtractedInvoiceData, beneficiary *models.Beneficiary) {
	draft := res.Draft

	if !extracted.BankDetails.HasAccountNumber() {
		res.skip(StepBankAccount, "no account number extracted")
		return
	}
	if strings.TrimSpace(draft.BankAccountID) != "" {
		res.skip(StepBankAccount, "bank account already set")
		return
	}

	owner := models.Beneficiary{ID: models.BeneficiaryIDNew, Type: models.BeneficiaryTypeCompany}
	if beneficiary != nil {
		owner = *beneficiary
	}

	record, outcome, err := o.accounts.Reconcile(ctx, owner, *extracted.BankDetails)
	if err != nil {
		o.log.Warn().
			Err(err).
			Str("beneficiary_id", owner.ID).
			Msg("Bank account reconciliation failed, leaving bank fields unset")

		msg := "bank account not reconciled"
		if errors.Is(err, ErrStorageFailure) {
			msg = "bank account storage unavailable"
		}
		res.fail(StepBankAccount, msg, err)
		return
	}

	draft.BankAccountID = record.ID
	draft.StagedBankAccount = nil
	if outcome == AccountStaged {
		draft.StagedBankAccount = record
	}
	res.set(StepBankAccount, "bank account "+string(outcome))
}

func (o *Orchestrator) applyRemarks(res *Result, extracted *models.ExtractedInvoiceData) {
	remarks := strings.TrimSpace(extracted.Remarks)
	if remarks == "" {
		res.skip(StepRemarks, "no remarks extracted")
		return
	}

	res.Draft.Remarks = AppendRemarks(res.Draft.Remarks, remarks)
	res.set(StepRemarks, "remarks appended")
}

// AppendRemarks adds extracted remarks below existing text under RemarksHeading.
func AppendRemarks(existing, remarks string) string {
	block := RemarksHeading + "\n" + remarks
	existing = strings.TrimRight(existing, " \t\n")
	if existing == "" {
		return block
	}
	return existing + "\n\n" + block
}

func (r *Result) set(step, message string) {
	r.Notices = append(r.Notices, Notice{Step: step, Status: NoticeSet, Message: message})
}

func (r *Result) skip(step, message string) {
	r.Notices = append(r.Notices, Notice{Step: step, Status: NoticeSkipped, Message: message})
}

func (r *Result) fail(step, message string, err error) {
	r.Notices = append(r.Notices, Notice{Step: step, Status: NoticeFailed, Message: message, Error: err.Error()})
}
