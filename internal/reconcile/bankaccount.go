package reconcile

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"opsconsole/internal/logger"
	"opsconsole/pkg/models"
)

// AccountStore looks up and inserts beneficiary bank accounts.
type AccountStore interface {
	// LookupBankAccount returns the account of ownerID with accountNumber,
	// or nil without error when there is none.
	LookupBankAccount(ctx context.Context, ownerID, accountNumber string) (*models.BankAccountRecord, error)

	// InsertBankAccount stores record and returns it with its assigned id.
	InsertBankAccount(ctx context.Context, record models.BankAccountRecord) (*models.BankAccountRecord, error)
}

// AccountStoreFuncs adapts a pair of functions to AccountStore.
type AccountStoreFuncs struct {
	Lookup func(ctx context.Context, ownerID, accountNumber string) (*models.BankAccountRecord, error)
	Insert func(ctx context.Context, record models.BankAccountRecord) (*models.BankAccountRecord, error)
}

func (f AccountStoreFuncs) LookupBankAccount(ctx context.Context, ownerID, accountNumber string) (*models.BankAccountRecord, error) {
	return f.Lookup(ctx, ownerID, accountNumber)
}

func (f AccountStoreFuncs) InsertBankAccount(ctx context.Context, record models.BankAccountRecord) (*models.BankAccountRecord, error) {
	return f.Insert(ctx, record)
}

// AccountOutcome says how a bank account was obtained.
type AccountOutcome string

const (
	AccountReused  AccountOutcome = "reused"
	AccountCreated AccountOutcome = "created"
	AccountStaged  AccountOutcome = "staged"
)

// BankAccountReconciler reuses, creates or stages the bank account of a beneficiary.
// A stored beneficiary never gets two accounts with the same account number.
type BankAccountReconciler struct {
	store AccountStore
	newID func() string
	log   zerolog.Logger
}

func NewBankAccountReconciler(store AccountStore) *BankAccountReconciler {
	return &BankAccountReconciler{
		store: store,
		newID: func() string { return uuid.NewString() },
		log:   logger.WithComponent("bank-account-reconciler"),
	}
}

// Reconcile returns the bank account for details owned by beneficiary.
//
// Stored beneficiaries get their existing account for the account number, or a newly
// inserted one. Beneficiaries that are not stored yet get a temporary record that is
// never written to the store.
func (r *BankAccountReconciler) Reconcile(ctx context.Context, beneficiary models.Beneficiary, details models.BankDetails) (*models.BankAccountRecord, AccountOutcome, error) {
	const op = "ReconcileBankAccount"

	accountNumber := strings.TrimSpace(details.AccountNumber)
	if accountNumber == "" {
		return nil, "", WrapStepError(op, ErrMissingAccountNumber, "")
	}

	record := models.BankAccountRecord{
		OwnerType:     ownerType(beneficiary),
		BankName:      strings.TrimSpace(details.BankName),
		AccountNumber: accountNumber,
		AccountName:   strings.TrimSpace(details.AccountName),
		SwiftCode:     strings.TrimSpace(details.SwiftCode),
	}

	if !beneficiary.IsPersisted() {
		record.ID = models.TempBankAccountPrefix + r.newID()
		record.OwnerID = models.TempOwnerID

		r.log.Debug().
			Str("account_id", record.ID).
			Str("beneficiary", beneficiary.Name).
			Msg("Staged temporary bank account")
		return &record, AccountStaged, nil
	}

	if r.store == nil {
		return nil, "", storageError(op, ErrStorageFailure, "no account store configured")
	}

	ownerID := strings.TrimSpace(beneficiary.ID)
	existing, err := r.store.LookupBankAccount(ctx, ownerID, accountNumber)
	if err != nil {
		return nil, "", storageError("LookupBankAccount", err, "owner "+ownerID)
	}
	if existing != nil {
		r.log.Debug().
			Str("account_id", existing.ID).
			Str("owner_id", ownerID).
			Msg("Reusing stored bank account")
		return existing, AccountReused, nil
	}

	record.OwnerID = ownerID
	if record.BankName == "" {
		record.BankName = models.DefaultBankName
	}
	if record.AccountName == "" {
		record.AccountName = beneficiary.Name
	}

	created, err := r.store.InsertBankAccount(ctx, record)
	if err != nil {
		return nil, "", storageError("InsertBankAccount", err, "owner "+ownerID)
	}
	if created == nil {
		created = &record
	}

	r.log.Info().
		Str("account_id", created.ID).
		Str("owner_id", ownerID).
		Str("bank_name", created.BankName).
		Msg("Created bank account")
	return created, AccountCreated, nil
}

func ownerType(b models.Beneficiary) string {
	if typ, ok := models.ParseBeneficiaryType(b.Type); ok {
		return typ
	}
	return models.BeneficiaryTypeCompany
}
