package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/synapse-edu/classroom-service/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

const (
	rosterSheet  = "Roster"
	notSubmitted = "—"
)

// ExportRoster renders the submission matrix of a space as an xlsx
// workbook: one row per member, one column per assignment, cells carry
// the submission timestamp or a dash.
func (s *exportService) ExportRoster(ctx context.Context, spaceID uint, actorID uint) ([]byte, string, error) {
	space, err := s.repo.Space().GetByID(ctx, spaceID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	if space.OwnerID != actorID {
		return nil, "", NewPermissionError(actorID, "space", "export roster", "not the owner")
	}

	members, err := s.repo.Membership().ListMemberAccounts(ctx, spaceID)
	if err != nil {
		return nil, "", err
	}
	assignments, err := s.repo.Assignment().ListBySpace(ctx, spaceID)
	if err != nil {
		return nil, "", err
	}

	// submitted[assignmentID][pupilID] = submission timestamp.
	submitted := make(map[uint]map[uint]string, len(assignments))
	for _, a := range assignments {
		subs, err := s.repo.Submission().ListByAssignment(ctx, a.ID)
		if err != nil {
			return nil, "", err
		}
		byPupil := make(map[uint]string, len(subs))
		for _, sub := range subs {
			byPupil[sub.PupilID] = sub.CreatedAt.Format("2006-01-02 15:04")
		}
		submitted[a.ID] = byPupil
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(rosterSheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	setCell := func(col, row int, v interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(rosterSheet, cell, v)
	}

	header := []interface{}{"Name", "Email"}
	for _, a := range assignments {
		header = append(header, a.Title)
	}
	for i, h := range header {
		if err := setCell(i+1, 1, h); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, member := range members {
		values := []interface{}{member.DisplayName, member.Email}
		for _, a := range assignments {
			cell := notSubmitted
			if ts, ok := submitted[a.ID][member.ID]; ok {
				cell = ts
			}
			values = append(values, cell)
		}
		for col, v := range values {
			if err := setCell(col+1, row+2, v); err != nil {
				return nil, "", fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("space_%d_roster.xlsx", spaceID)
	s.logger.Info("roster exported",
		"space_id", spaceID,
		"members", len(members),
		"assignments", len(assignments))
	return buf.Bytes(), filename, nil
}
