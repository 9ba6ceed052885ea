package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"opsconsole/pkg/models"
)

// fakeAccountStore records calls and keeps inserted accounts so later lookups see them.
type fakeAccountStore struct {
	accounts  []models.BankAccountRecord
	lookups   int
	inserts   int
	lookupErr error
	insertErr error
}

func (s *fakeAccountStore) LookupBankAccount(_ context.Context, ownerID, accountNumber string) (*models.BankAccountRecord, error) {
	s.lookups++
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	for _, acc := range s.accounts {
		if acc.OwnerID == ownerID && acc.AccountNumber == accountNumber {
			found := acc
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeAccountStore) InsertBankAccount(_ context.Context, record models.BankAccountRecord) (*models.BankAccountRecord, error) {
	s.inserts++
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	record.ID = "acc-" + record.AccountNumber
	s.accounts = append(s.accounts, record)
	return &record, nil
}

func TestReconcileCreatesThenReuses(t *testing.T) {
	store := &fakeAccountStore{}
	r := NewBankAccountReconciler(store)
	owner := models.Beneficiary{ID: "b1", Name: "Hotel Adlon", Type: models.BeneficiaryTypeCompany}
	details := models.BankDetails{AccountNumber: " DE89370400440532013000 "}

	first, outcome, err := r.Reconcile(context.Background(), owner, details)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if outcome != AccountCreated {
		t.Errorf("outcome = %s, want %s", outcome, AccountCreated)
	}
	if first.BankName != models.DefaultBankName || first.AccountName != "Hotel Adlon" {
		t.Errorf("defaults not applied: %+v", first)
	}
	if first.OwnerID != "b1" || first.AccountNumber != "DE89370400440532013000" {
		t.Errorf("record = %+v", first)
	}

	second, outcome, err := r.Reconcile(context.Background(), owner, details)
	if err != nil {
		t.Fatalf("Reconcile() second call error = %v", err)
	}
	if outcome != AccountReused || second.ID != first.ID {
		t.Errorf("second call = %+v (%s), want reuse of %s", second, outcome, first.ID)
	}
	if store.inserts != 1 {
		t.Errorf("inserts = %d, want 1", store.inserts)
	}
	if store.lookups != 2 {
		t.Errorf("lookups = %d, want 2", store.lookups)
	}
}

func TestReconcileKeepsExtractedNames(t *testing.T) {
	store := &fakeAccountStore{}
	r := NewBankAccountReconciler(store)
	owner := models.Beneficiary{ID: "b1", Name: "Hotel Adlon"}

	got, _, err := r.Reconcile(context.Background(), owner, models.BankDetails{
		AccountNumber: "123",
		BankName:      "Deutsche Bank",
		AccountName:   "Adlon Holding GmbH",
		SwiftCode:     "DEUTDEBB",
	})
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if got.BankName != "Deutsche Bank" || got.AccountName != "Adlon Holding GmbH" || got.SwiftCode != "DEUTDEBB" {
		t.Errorf("record = %+v", got)
	}
	if got.OwnerType != models.BeneficiaryTypeCompany {
		t.Errorf("OwnerType = %q, want company default", got.OwnerType)
	}
}

func TestReconcileStagesForUnstoredBeneficiary(t *testing.T) {
	for _, id := range []string{models.BeneficiaryIDNew, models.BeneficiaryIDUnknown, ""} {
		store := &fakeAccountStore{}
		r := NewBankAccountReconciler(store)

		got, outcome, err := r.Reconcile(context.Background(),
			models.Beneficiary{ID: id, Name: "Jane Doe", Type: models.BeneficiaryTypePerson},
			models.BankDetails{AccountNumber: "123"})
		if err != nil {
			t.Fatalf("Reconcile(id=%q) error = %v", id, err)
		}
		if outcome != AccountStaged {
			t.Errorf("outcome = %s, want %s", outcome, AccountStaged)
		}
		if !strings.HasPrefix(got.ID, models.TempBankAccountPrefix) || got.OwnerID != models.TempOwnerID {
			t.Errorf("staged record = %+v", got)
		}
		if got.OwnerType != models.BeneficiaryTypePerson {
			t.Errorf("OwnerType = %q, want person", got.OwnerType)
		}
		if store.lookups != 0 || store.inserts != 0 {
			t.Errorf("store touched for id %q: %d lookups, %d inserts", id, store.lookups, store.inserts)
		}
	}
}

func TestReconcileTemporaryIDsAreUnique(t *testing.T) {
	r := NewBankAccountReconciler(nil)
	owner := models.Beneficiary{ID: models.BeneficiaryIDNew}

	a, _, _ := r.Reconcile(context.Background(), owner, models.BankDetails{AccountNumber: "1"})
	b, _, _ := r.Reconcile(context.Background(), owner, models.BankDetails{AccountNumber: "1"})
	if a.ID == b.ID {
		t.Errorf("temporary ids collide: %s", a.ID)
	}
}

func TestReconcileStorageFailures(t *testing.T) {
	boom := errors.New("connection refused")
	owner := models.Beneficiary{ID: "b1", Name: "Hotel Adlon"}
	details := models.BankDetails{AccountNumber: "123"}

	tests := []struct {
		name  string
		store *fakeAccountStore
		op    string
	}{
		{"lookup", &fakeAccountStore{lookupErr: boom}, "LookupBankAccount"},
		{"insert", &fakeAccountStore{insertErr: boom}, "InsertBankAccount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewBankAccountReconciler(tt.store).Reconcile(context.Background(), owner, details)
			if !errors.Is(err, ErrStorageFailure) {
				t.Fatalf("error = %v, want ErrStorageFailure", err)
			}
			if !errors.Is(err, boom) {
				t.Errorf("error = %v, want cause in chain", err)
			}
			var stepErr *StepError
			if !errors.As(err, &stepErr) || stepErr.Op != tt.op {
				t.Errorf("error = %#v, want StepError with op %s", err, tt.op)
			}
		})
	}
}

func TestReconcileWithoutStore(t *testing.T) {
	_, _, err := NewBankAccountReconciler(nil).Reconcile(context.Background(),
		models.Beneficiary{ID: "b1"}, models.BankDetails{AccountNumber: "123"})
	if !errors.Is(err, ErrStorageFailure) {
		t.Errorf("error = %v, want ErrStorageFailure", err)
	}
}

func TestReconcileRequiresAccountNumber(t *testing.T) {
	_, _, err := NewBankAccountReconciler(&fakeAccountStore{}).Reconcile(context.Background(),
		models.Beneficiary{ID: "b1"}, models.BankDetails{AccountNumber: "  "})
	if !errors.Is(err, ErrMissingAccountNumber) {
		t.Errorf("error = %v, want ErrMissingAccountNumber", err)
	}
}

func TestAccountStoreFuncs(t *testing.T) {
	var looked, inserted bool
	store := AccountStoreFuncs{
		Lookup: func(context.Context, string, string) (*models.BankAccountRecord, error) {
			looked = true
			return nil, nil
		},
		Insert: func(_ context.Context, rec models.BankAccountRecord) (*models.BankAccountRecord, error) {
			inserted = true
			rec.ID = "acc-1"
			return &rec, nil
		},
	}

	got, outcome, err := NewBankAccountReconciler(store).Reconcile(context.Background(),
		models.Beneficiary{ID: "b1", Name: "X"}, models.BankDetails{AccountNumber: "1"})
	if err != nil || outcome != AccountCreated || got.ID != "acc-1" {
		t.Fatalf("Reconcile() = %+v, %s, %v", got, outcome, err)
	}
	if !looked || !inserted {
		t.Errorf("looked = %v, inserted = %v", looked, inserted)
	}
}
