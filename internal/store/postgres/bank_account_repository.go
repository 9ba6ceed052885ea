package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"opsconsole/pkg/models"
)

// BankAccountRepository implements reconcile.AccountStore. The unique constraint on
// (owner_id, account_number) keeps concurrent inserts from creating duplicates.
type BankAccountRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewBankAccountRepository(db *sql.DB) *BankAccountRepository {
	return &BankAccountRepository{db: db, now: time.Now}
}

func (r *BankAccountRepository) LookupBankAccount(ctx context.Context, ownerID, accountNumber string) (*models.BankAccountRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, owner_id, owner_type, bank_name, account_number, account_name, COALESCE(swift_code, '')
FROM bank_accounts
WHERE owner_id = $1 AND account_number = $2
`, ownerID, accountNumber)

	var rec models.BankAccountRecord
	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.OwnerType, &rec.BankName, &rec.AccountNumber, &rec.AccountName, &rec.SwiftCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup bank account: %w", err)
	}
	return &rec, nil
}

// InsertBankAccount stores record under a new id. When another writer stored the same
// owner and account number first, the existing record is returned.
func (r *BankAccountRepository) InsertBankAccount(ctx context.Context, record models.BankAccountRecord) (*models.BankAccountRecord, error) {
	if record.OwnerID == "" || record.AccountNumber == "" {
		return nil, fmt.Errorf("insert bank account: owner id and account number are required")
	}
	if models.IsTemporaryID(record.OwnerID) || record.OwnerID == models.TempOwnerID {
		return nil, fmt.Errorf("insert bank account: owner %q is not stored", record.OwnerID)
	}
	record.ID = uuid.NewString()

	var swift any
	if record.SwiftCode != "" {
		swift = record.SwiftCode
	}

	var id string
	err := r.db.QueryRowContext(ctx, `
INSERT INTO bank_accounts (id, owner_id, owner_type, bank_name, account_number, account_name, swift_code, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (owner_id, account_number) DO NOTHING
RETURNING id
`, record.ID, record.OwnerID, record.OwnerType, record.BankName, record.AccountNumber, record.AccountName, swift, r.now().UTC()).Scan(&id)
	if err == nil {
		record.ID = id
		return &record, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("insert bank account: %w", err)
	}

	existing, err := r.LookupBankAccount(ctx, record.OwnerID, record.AccountNumber)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("insert bank account: conflicting record for owner %s vanished", record.OwnerID)
	}
	return existing, nil
}
