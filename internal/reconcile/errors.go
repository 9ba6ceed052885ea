package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageFailure is returned when the account store cannot look up or insert
	// a bank account. Reconciliation continues with bank fields left unset.
	ErrStorageFailure = errors.New("bank account storage failed")

	// ErrInvalidInput is returned by Apply when the payload or draft is missing.
	ErrInvalidInput = errors.New("invalid reconciliation input")

	// ErrMissingAccountNumber is returned when bank details carry no account number.
	ErrMissingAccountNumber = errors.New("bank details carry no account number")
)

// StepError wraps a failure of one reconciliation step.
type StepError struct {
	// Op is the operation that failed (e.g., "LookupBankAccount").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

func (e *StepError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("reconcile: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("reconcile: %s failed: %v", e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func (e *StepError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapStepError wraps err as a StepError unless it already is one.
func WrapStepError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return err
	}

	return &StepError{Op: op, Err: err, Details: details}
}

// storageError marks err as a storage failure while keeping the cause in the chain.
func storageError(op string, err error, details string) error {
	if errors.Is(err, ErrStorageFailure) {
		return WrapStepError(op, err, details)
	}
	return &StepError{Op: op, Err: fmt.Errorf("%w: %w", ErrStorageFailure, err), Details: details}
}
