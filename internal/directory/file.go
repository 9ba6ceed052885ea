package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"opsconsole/internal/reconcile"
	"opsconsole/pkg/models"
)

// FileSource reads a directory from a JSON file shaped like reconcile.Directory.
// The file is read on every call.
type FileSource struct {
	Path string
}

func (f FileSource) ListProjects(context.Context) ([]models.ProjectCandidate, error) {
	dir, err := f.read()
	if err != nil {
		return nil, err
	}
	return dir.Projects, nil
}

func (f FileSource) ListBeneficiaries(context.Context) ([]models.Beneficiary, error) {
	dir, err := f.read()
	if err != nil {
		return nil, err
	}
	return dir.Beneficiaries, nil
}

func (f FileSource) read() (reconcile.Directory, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return reconcile.Directory{}, fmt.Errorf("read directory file: %w", err)
	}
	var dir reconcile.Directory
	if err := json.Unmarshal(data, &dir); err != nil {
		return reconcile.Directory{}, fmt.Errorf("parse directory file %s: %w", f.Path, err)
	}
	return dir, nil
}
