package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"opsconsole/internal/reconcile"
	"opsconsole/internal/resilience"
	"opsconsole/pkg/models"
)

func TestMemoryStoreInsertIsIdempotentPerOwnerAndNumber(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 10)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := s.InsertBankAccount(ctx, models.BankAccountRecord{OwnerID: "b1", AccountNumber: "123"})
			if err != nil {
				t.Errorf("InsertBankAccount() error = %v", err)
				return
			}
			ids[i] = rec.ID
		}(i)
	}
	wg.Wait()

	if got := len(s.BankAccounts()); got != 1 {
		t.Fatalf("stored %d accounts, want 1", got)
	}
	for _, id := range ids {
		if id != ids[0] {
			t.Errorf("insert returned %s, want %s", id, ids[0])
		}
	}

	found, err := s.LookupBankAccount(ctx, "b1", "123")
	if err != nil || found == nil || found.ID != ids[0] {
		t.Errorf("LookupBankAccount() = %+v, %v", found, err)
	}
	if missing, _ := s.LookupBankAccount(ctx, "b2", "123"); missing != nil {
		t.Errorf("LookupBankAccount(other owner) = %+v, want nil", missing)
	}
}

func TestMemoryStoreReplacesTemporaryID(t *testing.T) {
	s := NewMemoryStore()

	rec, err := s.InsertBankAccount(context.Background(), models.BankAccountRecord{
		ID: models.TempBankAccountPrefix + "x", OwnerID: "b1", AccountNumber: "1",
	})
	if err != nil {
		t.Fatalf("InsertBankAccount() error = %v", err)
	}
	if models.IsTemporaryID(rec.ID) {
		t.Errorf("stored id %s is temporary", rec.ID)
	}
	if _, err := s.InsertBankAccount(context.Background(), models.BankAccountRecord{OwnerID: "b1"}); err == nil {
		t.Errorf("expected error without account number")
	}
}

func TestMemoryStoreWithReconciler(t *testing.T) {
	s := NewMemoryStore()
	r := reconcile.NewBankAccountReconciler(s)
	owner := models.Beneficiary{ID: "b1", Name: "Hotel Adlon"}

	for i := 0; i < 3; i++ {
		if _, _, err := r.Reconcile(context.Background(), owner, models.BankDetails{AccountNumber: "DE01"}); err != nil {
			t.Fatalf("Reconcile() error = %v", err)
		}
	}
	if got := len(s.BankAccounts()); got != 1 {
		t.Errorf("stored %d accounts, want 1", got)
	}
}

func TestGuardedAccountStoreRetriesBadConn(t *testing.T) {
	calls := 0
	next := reconcile.AccountStoreFuncs{
		Lookup: func(context.Context, string, string) (*models.BankAccountRecord, error) {
			calls++
			if calls == 1 {
				return nil, driver.ErrBadConn
			}
			return &models.BankAccountRecord{ID: "acc-1"}, nil
		},
	}
	exec := resilience.NewExecutor(resilience.Config{RetryInitialBackoff: time.Millisecond})

	got, err := NewGuardedAccountStore(next, exec).LookupBankAccount(context.Background(), "b1", "1")
	if err != nil || got == nil || got.ID != "acc-1" {
		t.Fatalf("LookupBankAccount() = %+v, %v", got, err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestGuardedAccountStoreOpenBreakerIsStorageFailure(t *testing.T) {
	down := errors.New("database down")
	next := reconcile.AccountStoreFuncs{
		Lookup: func(context.Context, string, string) (*models.BankAccountRecord, error) {
			return nil, down
		},
	}
	exec := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:   1,
		BreakerEnabled:     true,
		BreakerMinRequests: 1,
		BreakerOpenTimeout: time.Minute,
	})
	r := reconcile.NewBankAccountReconciler(NewGuardedAccountStore(next, exec))
	owner := models.Beneficiary{ID: "b1"}

	_, _, err := r.Reconcile(context.Background(), owner, models.BankDetails{AccountNumber: "1"})
	if !errors.Is(err, down) {
		t.Fatalf("first call error = %v, want cause", err)
	}

	_, _, err = r.Reconcile(context.Background(), owner, models.BankDetails{AccountNumber: "1"})
	if !errors.Is(err, reconcile.ErrStorageFailure) || !resilience.IsCircuitOpen(err) {
		t.Fatalf("second call error = %v, want storage failure from open breaker", err)
	}
}

func TestClassifyStorageError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want resilience.ErrorClassification
	}{
		{"bad conn", driver.ErrBadConn, resilience.ErrorClassification{Retryable: true, RecordFailure: true}},
		{"connection failure", &pgconn.PgError{Code: "08006"}, resilience.ErrorClassification{Retryable: true, RecordFailure: true}},
		{"serialization", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "40001"}), resilience.ErrorClassification{Retryable: true, RecordFailure: true}},
		{"unique violation", &pgconn.PgError{Code: "23505"}, resilience.ErrorClassification{}},
		{"canceled", context.Canceled, resilience.ErrorClassification{}},
		{"unknown", errors.New("boom"), resilience.ErrorClassification{RecordFailure: true}},
	}
	for _, tt := range tests {
		if got := ClassifyStorageError(tt.err); got != tt.want {
			t.Errorf("%s: ClassifyStorageError() = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}
