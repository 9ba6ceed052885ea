package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"opsconsole/internal/logger"
	"opsconsole/pkg/models"
)

// RangeReader reads cell values of a spreadsheet range.
type RangeReader interface {
	ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error)
}

// SheetsSource reads the directory from two worksheets.
//
// Projects: A=ID, B=Name, C=Client, D=Client company, E=Venue, F=Start, G=Due
// Beneficiaries: A=ID, B=Name, C=Type
//
// The first row of each worksheet is a header and is skipped.
type SheetsSource struct {
	reader             RangeReader
	projectsSheet      string
	beneficiariesSheet string
	log                zerolog.Logger
}

func NewSheetsSource(reader RangeReader, projectsSheet, beneficiariesSheet string) *SheetsSource {
	return &SheetsSource{
		reader:             reader,
		projectsSheet:      projectsSheet,
		beneficiariesSheet: beneficiariesSheet,
		log:                logger.WithComponent("directory-sheets"),
	}
}

func (s *SheetsSource) ListProjects(ctx context.Context) ([]models.ProjectCandidate, error) {
	const op = "ListProjects"

	values, err := s.reader.ReadRange(ctx, s.projectsSheet+"!A:G")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s sheet: %w", op, s.projectsSheet, err)
	}

	var projects []models.ProjectCandidate
	for i, row := range dataRows(values) {
		rowNum := i + 2 // header row and 1-based numbering

		project, err := s.parseProjectRow(row, rowNum)
		if err != nil {
			s.log.Warn().
				Err(err).
				Int("row", rowNum).
				Str("sheet", s.projectsSheet).
				Msg("Failed to parse project, skipping")
			continue
		}
		projects = append(projects, project)
	}

	s.log.Info().
		Int("total_rows", len(dataRows(values))).
		Int("parsed_projects", len(projects)).
		Str("sheet", s.projectsSheet).
		Msg("Projects read successfully")

	return projects, nil
}

func (s *SheetsSource) ListBeneficiaries(ctx context.Context) ([]models.Beneficiary, error) {
	const op = "ListBeneficiaries"

	values, err := s.reader.ReadRange(ctx, s.beneficiariesSheet+"!A:C")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s sheet: %w", op, s.beneficiariesSheet, err)
	}

	var beneficiaries []models.Beneficiary
	for i, row := range dataRows(values) {
		rowNum := i + 2

		id, name := getString(row, 0), getString(row, 1)
		if id == "" || name == "" {
			s.log.Warn().
				Int("row", rowNum).
				Str("sheet", s.beneficiariesSheet).
				Msg("Skipping beneficiary row without id or name")
			continue
		}

		typ, ok := models.ParseBeneficiaryType(getString(row, 2))
		if !ok {
			typ = models.BeneficiaryTypeCompany
		}
		beneficiaries = append(beneficiaries, models.Beneficiary{ID: id, Name: name, Type: typ})
	}

	s.log.Info().
		Int("parsed_beneficiaries", len(beneficiaries)).
		Str("sheet", s.beneficiariesSheet).
		Msg("Beneficiaries read successfully")

	return beneficiaries, nil
}

func (s *SheetsSource) parseProjectRow(row []interface{}, rowNum int) (models.ProjectCandidate, error) {
	const op = "parseProjectRow"

	project := models.ProjectCandidate{
		ID:                getString(row, 0),
		Name:              getString(row, 1),
		ClientName:        getString(row, 2),
		ClientCompanyName: getString(row, 3),
		Venue:             getString(row, 4),
	}
	if project.ID == "" || project.Name == "" {
		return models.ProjectCandidate{}, fmt.Errorf("%s: missing id or name in row %d", op, rowNum)
	}

	// An unreadable date only disables the date rule for this project.
	if start := getString(row, 5); start != "" {
		if date, err := parseSheetDate(start); err == nil {
			project.StartDate = &date
		} else {
			s.log.Warn().Str("date_str", start).Int("row", rowNum).Msg("Invalid project start date, ignoring")
		}
	}
	if due := getString(row, 6); due != "" {
		if date, err := parseSheetDate(due); err == nil {
			project.DueDate = &date
		} else {
			s.log.Warn().Str("date_str", due).Int("row", rowNum).Msg("Invalid project due date, ignoring")
		}
	}
	return project, nil
}

func dataRows(values [][]interface{}) [][]interface{} {
	if len(values) <= 1 {
		return nil
	}
	return values[1:]
}

// parseSheetDate parses German spreadsheet dates (DD.MM.YYYY and variants) and ISO dates.
func parseSheetDate(value string) (time.Time, error) {
	formats := []string{
		"02.01.2006",
		"2.1.2006",
		"02.01.06",
		"2.1.06",
	}
	for _, format := range formats {
		if date, err := time.Parse(format, value); err == nil {
			return date, nil
		}
	}
	return models.ParseCalendarDate(value)
}

// getString safely extracts a string value from a row slice
func getString(row []interface{}, index int) string {
	if index >= len(row) || row[index] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[index]))
}
