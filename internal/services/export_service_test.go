package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/synapse-edu/classroom-service/internal/models"
)

func TestExportService_ExportRoster(t *testing.T) {
	env := newTestEnv(t)
	svc := NewExportService(env.repo, env.logger)
	master := env.createMaster(t, "m@school.edu")
	pupilA := env.createPupil(t, "a@school.edu")
	pupilB := env.createPupil(t, "b@school.edu")
	space := env.createSpace(t, master.ID, "Music")
	env.enroll(t, space.ID, pupilA.ID)
	env.enroll(t, space.ID, pupilB.ID)
	ctx := context.Background()

	assignment := &models.Assignment{SpaceID: space.ID, Title: "Scales"}
	if err := env.repo.Assignment().Create(ctx, assignment); err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	// Only pupil A has submitted.
	subSvc := NewSubmissionService(env.repo, env.store, env.logger)
	if _, err := subSvc.Submit(ctx, assignment.ID, pupilA.ID, upload("scales.pdf", "x")); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	t.Run("one row per member, one column per assignment", func(t *testing.T) {
		data, filename, err := svc.ExportRoster(ctx, space.ID, master.ID)
		if err != nil {
			t.Fatalf("ExportRoster: %v", err)
		}
		if filename == "" {
			t.Error("empty filename")
		}

		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("open workbook: %v", err)
		}
		defer f.Close()

		rows, err := f.GetRows(rosterSheet)
		if err != nil {
			t.Fatalf("GetRows: %v", err)
		}
		// Header plus two members.
		if len(rows) != 3 {
			t.Fatalf("rows = %d, want 3", len(rows))
		}
		if rows[0][0] != "Name" || rows[0][1] != "Email" || rows[0][2] != "Scales" {
			t.Errorf("header = %v", rows[0])
		}
		if rows[1][1] != pupilA.Email {
			t.Errorf("first member email = %q, want %q", rows[1][1], pupilA.Email)
		}
		if rows[1][2] == notSubmitted {
			t.Error("submitting pupil shows as not submitted")
		}
		if rows[2][2] != notSubmitted {
			t.Errorf("non-submitting pupil cell = %q, want %q", rows[2][2], notSubmitted)
		}
	})

	t.Run("only the owner exports", func(t *testing.T) {
		_, _, err := svc.ExportRoster(ctx, space.ID, pupilA.ID)
		if !errors.Is(err, ErrAccessDenied) {
			t.Errorf("ExportRoster as pupil = %v, want ErrAccessDenied", err)
		}
	})

	t.Run("missing space", func(t *testing.T) {
		_, _, err := svc.ExportRoster(ctx, 9999, master.ID)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("ExportRoster on missing space = %v, want ErrNotFound", err)
		}
	})
}
