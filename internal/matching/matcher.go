package matching

import (
	"github.com/rs/zerolog"

	"opsconsole/internal/logger"
	"opsconsole/pkg/models"
)

// BestMatch returns the highest scoring candidate and its score. Ties go to the
// candidate that comes first. When no candidate scores above zero it returns nil.
func BestMatch(extracted *models.ExtractedInvoiceData, candidates []models.ProjectCandidate) (*models.ProjectCandidate, int) {
	return NewProjectMatcher().BestMatch(extracted, candidates)
}

// ProjectMatcher selects the project an extracted invoice belongs to.
type ProjectMatcher struct {
	log zerolog.Logger
}

func NewProjectMatcher() *ProjectMatcher {
	return &ProjectMatcher{log: logger.WithComponent("project-matcher")}
}

func (m *ProjectMatcher) BestMatch(extracted *models.ExtractedInvoiceData, candidates []models.ProjectCandidate) (*models.ProjectCandidate, int) {
	normalized := Normalize(extracted)

	bestIndex, bestScore := -1, 0
	for i, candidate := range candidates {
		b := Explain(normalized, candidate)

		m.log.Debug().
			Str("project_id", candidate.ID).
			Str("project", candidate.Name).
			Int("score", b.Total).
			Strs("rules", b.Rules).
			Msg("Scored project candidate")

		if b.Total > bestScore {
			bestIndex, bestScore = i, b.Total
		}
	}

	if bestIndex < 0 {
		m.log.Debug().Int("candidates", len(candidates)).Msg("No project candidate scored above zero")
		return nil, 0
	}

	best := candidates[bestIndex]
	m.log.Info().
		Str("project_id", best.ID).
		Str("project", best.Name).
		Int("score", bestScore).
		Msg("Matched project")
	return &best, bestScore
}
