// Package directory loads the project and beneficiary lists reconciliation matches
// against, from a JSON file, a Google Spreadsheet or PostgreSQL.
package directory

import (
	"context"
	"fmt"

	"opsconsole/internal/reconcile"
	"opsconsole/pkg/models"
)

// Source lists the known projects and beneficiaries.
type Source interface {
	ListProjects(ctx context.Context) ([]models.ProjectCandidate, error)
	ListBeneficiaries(ctx context.Context) ([]models.Beneficiary, error)
}

// Load reads both lists from src.
func Load(ctx context.Context, src Source) (reconcile.Directory, error) {
	const op = "LoadDirectory"

	projects, err := src.ListProjects(ctx)
	if err != nil {
		return reconcile.Directory{}, fmt.Errorf("%s: failed to list projects: %w", op, err)
	}
	beneficiaries, err := src.ListBeneficiaries(ctx)
	if err != nil {
		return reconcile.Directory{}, fmt.Errorf("%s: failed to list beneficiaries: %w", op, err)
	}
	return reconcile.Directory{Projects: projects, Beneficiaries: beneficiaries}, nil
}
