package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"opsconsole/pkg/models"
)

// DirectoryRepository reads the project and beneficiary directories.
type DirectoryRepository struct {
	db *sql.DB
}

func NewDirectoryRepository(db *sql.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// ListProjects returns active projects, newest start date first.
func (r *DirectoryRepository) ListProjects(ctx context.Context) ([]models.ProjectCandidate, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, COALESCE(client_name, ''), COALESCE(client_company_name, ''), COALESCE(venue, ''), start_date, due_date
FROM projects
WHERE active
ORDER BY start_date DESC NULLS LAST, id
`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]models.ProjectCandidate, 0)
	for rows.Next() {
		var p models.ProjectCandidate
		var start, due sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &p.ClientName, &p.ClientCompanyName, &p.Venue, &start, &due); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.StartDate = nullDate(start)
		p.DueDate = nullDate(due)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

func (r *DirectoryRepository) ListBeneficiaries(ctx context.Context) ([]models.Beneficiary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, type
FROM beneficiaries
ORDER BY name, id
`)
	if err != nil {
		return nil, fmt.Errorf("list beneficiaries: %w", err)
	}
	defer rows.Close()

	out := make([]models.Beneficiary, 0)
	for rows.Next() {
		var b models.Beneficiary
		if err := rows.Scan(&b.ID, &b.Name, &b.Type); err != nil {
			return nil, fmt.Errorf("scan beneficiary: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate beneficiaries: %w", err)
	}
	return out, nil
}

// Import upserts projects and beneficiaries in one transaction.
func (r *DirectoryRepository) Import(ctx context.Context, projects []models.ProjectCandidate, beneficiaries []models.Beneficiary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, p := range projects {
		_, err := tx.ExecContext(ctx, `
INSERT INTO projects (id, name, client_name, client_company_name, venue, start_date, due_date)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name, client_name = EXCLUDED.client_name, client_company_name = EXCLUDED.client_company_name,
	venue = EXCLUDED.venue, start_date = EXCLUDED.start_date, due_date = EXCLUDED.due_date
`, p.ID, p.Name, p.ClientName, p.ClientCompanyName, p.Venue, p.StartDate, p.DueDate)
		if err != nil {
			return fmt.Errorf("upsert project %s: %w", p.ID, err)
		}
	}

	for _, b := range beneficiaries {
		typ, ok := models.ParseBeneficiaryType(b.Type)
		if !ok {
			typ = models.BeneficiaryTypeCompany
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO beneficiaries (id, name, type)
VALUES ($1,$2,$3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type
`, b.ID, b.Name, typ)
		if err != nil {
			return fmt.Errorf("upsert beneficiary %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import tx: %w", err)
	}
	return nil
}

func nullDate(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	d := models.CalendarDate(v.Time)
	return &d
}
