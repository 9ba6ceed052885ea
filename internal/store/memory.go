// Package store holds bank account and directory stores used by reconciliation.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"opsconsole/pkg/models"
)

// MemoryStore keeps projects, beneficiaries and bank accounts in process memory.
// It is used for dry runs and tests and is safe for concurrent use.
type MemoryStore struct {
	mu            sync.RWMutex
	projects      []models.ProjectCandidate
	beneficiaries []models.Beneficiary
	accounts      []models.BankAccountRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed replaces the directory contents.
func (s *MemoryStore) Seed(projects []models.ProjectCandidate, beneficiaries []models.Beneficiary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = append([]models.ProjectCandidate(nil), projects...)
	s.beneficiaries = append([]models.Beneficiary(nil), beneficiaries...)
}

func (s *MemoryStore) ListProjects(context.Context) ([]models.ProjectCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ProjectCandidate(nil), s.projects...), nil
}

func (s *MemoryStore) ListBeneficiaries(context.Context) ([]models.Beneficiary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Beneficiary(nil), s.beneficiaries...), nil
}

func (s *MemoryStore) LookupBankAccount(_ context.Context, ownerID, accountNumber string) (*models.BankAccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if acc, ok := s.find(ownerID, accountNumber); ok {
		return &acc, nil
	}
	return nil, nil
}

// InsertBankAccount stores record under a new id. A second insert for the same owner
// and account number returns the stored record instead of a duplicate.
func (s *MemoryStore) InsertBankAccount(_ context.Context, record models.BankAccountRecord) (*models.BankAccountRecord, error) {
	if record.OwnerID == "" || record.AccountNumber == "" {
		return nil, fmt.Errorf("insert bank account: owner id and account number are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if acc, ok := s.find(record.OwnerID, record.AccountNumber); ok {
		return &acc, nil
	}
	if record.ID == "" || models.IsTemporaryID(record.ID) {
		record.ID = uuid.NewString()
	}
	s.accounts = append(s.accounts, record)
	return &record, nil
}

// BankAccounts returns a copy of all stored accounts.
func (s *MemoryStore) BankAccounts() []models.BankAccountRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.BankAccountRecord(nil), s.accounts...)
}

func (s *MemoryStore) find(ownerID, accountNumber string) (models.BankAccountRecord, bool) {
	for _, acc := range s.accounts {
		if acc.OwnerID == ownerID && acc.AccountNumber == accountNumber {
			return acc, true
		}
	}
	return models.BankAccountRecord{}, false
}
