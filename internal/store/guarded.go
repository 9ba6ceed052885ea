package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"opsconsole/internal/reconcile"
	"opsconsole/internal/resilience"
	"opsconsole/pkg/models"
)

// GuardedAccountStore retries transient failures of the wrapped store and stops
// calling it while its circuit breaker is open.
type GuardedAccountStore struct {
	next reconcile.AccountStore
	exec *resilience.Executor
}

func NewGuardedAccountStore(next reconcile.AccountStore, exec *resilience.Executor) *GuardedAccountStore {
	return &GuardedAccountStore{next: next, exec: exec}
}

func (g *GuardedAccountStore) LookupBankAccount(ctx context.Context, ownerID, accountNumber string) (*models.BankAccountRecord, error) {
	return resilience.Call(ctx, g.exec, "bank_accounts.lookup", func(ctx context.Context) (*models.BankAccountRecord, error) {
		return g.next.LookupBankAccount(ctx, ownerID, accountNumber)
	}, ClassifyStorageError)
}

func (g *GuardedAccountStore) InsertBankAccount(ctx context.Context, record models.BankAccountRecord) (*models.BankAccountRecord, error) {
	return resilience.Call(ctx, g.exec, "bank_accounts.insert", func(ctx context.Context) (*models.BankAccountRecord, error) {
		return g.next.InsertBankAccount(ctx, record)
	}, ClassifyStorageError)
}

// ClassifyStorageError retries connection and serialization failures. Constraint
// violations and other statement errors are permanent and do not count against the
// breaker, since they say nothing about the health of the database.
func ClassifyStorageError(err error) resilience.ErrorClassification {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	case errors.Is(err, driver.ErrBadConn):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"), // connection exception
			pgErr.Code == "40001", // serialization failure
			pgErr.Code == "40P01", // deadlock detected
			pgErr.Code == "57P01": // admin shutdown
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
