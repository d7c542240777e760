package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/synapse-edu/classroom-service/internal/events"
)

func newAssignmentFixture(t *testing.T) (*testEnv, AssignmentService, *events.MockEventPublisher) {
	t.Helper()
	env := newTestEnv(t)
	publisher := events.NewMockEventPublisher(env.utilsLog)
	svc := NewAssignmentService(env.repo, env.store, publisher, env.logger, env.validator)
	return env, svc, publisher
}

func TestAssignmentService_Create(t *testing.T) {
	env, svc, _ := newAssignmentFixture(t)
	master := env.createMaster(t, "m@school.edu")
	pupil := env.createPupil(t, "p@school.edu")
	space := env.createSpace(t, master.ID, "Geometry")
	env.enroll(t, space.ID, pupil.ID)
	ctx := context.Background()

	t.Run("with due date", func(t *testing.T) {
		res, err := svc.Create(ctx, space.ID, &CreateAssignmentRequest{
			Title:   "Proofs",
			DueDate: "2026-09-15 17:00",
		}, nil, master.ID)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if res.DueDateWarning {
			t.Error("unexpected due date warning")
		}
		if res.Assignment.DueDate == nil {
			t.Fatal("due date not stored")
		}
	})

	t.Run("bad due date degrades with warning", func(t *testing.T) {
		res, err := svc.Create(ctx, space.ID, &CreateAssignmentRequest{
			Title:   "Angles",
			DueDate: "next tuesday",
		}, nil, master.ID)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if !res.DueDateWarning {
			t.Error("expected due date warning")
		}
		if res.Assignment.DueDate != nil {
			t.Errorf("due date = %v, want nil", res.Assignment.DueDate)
		}
	})

	t.Run("stores reference document", func(t *testing.T) {
		res, err := svc.Create(ctx, space.ID, &CreateAssignmentRequest{Title: "Vectors"},
			upload("solution.pdf", "%PDF"), master.ID)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if res.Assignment.ReferenceDocPath == nil {
			t.Fatal("reference doc path not set")
		}
		want := fmt.Sprintf("ref_%d_solution.pdf", res.Assignment.ID)
		if *res.Assignment.ReferenceDocPath != want {
			t.Errorf("path = %q, want %q", *res.Assignment.ReferenceDocPath, want)
		}
		if !env.store.Exists(want) {
			t.Error("reference doc missing from store")
		}
	})

	t.Run("reference doc accepts txt", func(t *testing.T) {
		res, err := svc.Create(ctx, space.ID, &CreateAssignmentRequest{Title: "A"},
			upload("notes.txt", "hints"), master.ID)
		if err != nil {
			t.Fatalf("Create with .txt = %v", err)
		}
		if res.Assignment.ReferenceDocPath == nil {
			t.Error("txt reference doc not stored")
		}
	})

	t.Run("disallowed reference doc is silently skipped", func(t *testing.T) {
		res, err := svc.Create(ctx, space.ID, &CreateAssignmentRequest{Title: "B"},
			upload("tool.exe", "mz"), master.ID)
		if err != nil {
			t.Fatalf("Create with .exe = %v, want success without reference", err)
		}
		if res.Assignment.ReferenceDocPath != nil {
			t.Errorf("reference doc stored for .exe upload: %q", *res.Assignment.ReferenceDocPath)
		}
	})

	t.Run("only the owner can create", func(t *testing.T) {
		_, err := svc.Create(ctx, space.ID, &CreateAssignmentRequest{Title: "Nope"}, nil, pupil.ID)
		if !errors.Is(err, ErrAccessDenied) {
			t.Errorf("Create as pupil = %v, want ErrAccessDenied", err)
		}
	})
}

func TestAssignmentService_Edit(t *testing.T) {
	env, svc, publisher := newAssignmentFixture(t)
	master := env.createMaster(t, "m@school.edu")
	pupil := env.createPupil(t, "p@school.edu")
	space := env.createSpace(t, master.ID, "Calculus")
	env.enroll(t, space.ID, pupil.ID)
	ctx := context.Background()

	created, err := svc.Create(ctx, space.ID, &CreateAssignmentRequest{Title: "Limits"}, nil, master.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	publisher.ClearEvents()

	t.Run("edit notifies members", func(t *testing.T) {
		res, err := svc.Edit(ctx, created.Assignment.ID, &EditAssignmentRequest{
			Title:   "Limits and continuity",
			DueDate: "2026-10-01",
		}, nil, master.ID)
		if err != nil {
			t.Fatalf("Edit: %v", err)
		}
		if res.Assignment.Title != "Limits and continuity" {
			t.Errorf("title = %q", res.Assignment.Title)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("events = %d, want 1", len(published))
		}
		if published[0].Type != events.TypeAssignmentUpdated {
			t.Errorf("event type = %s", published[0].Type)
		}

		var data events.AssignmentUpdatedEvent
		if err := json.Unmarshal(published[0].Data, &data); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if len(data.MemberEmails) != 1 || data.MemberEmails[0] != pupil.Email {
			t.Errorf("member emails = %v, want [%s]", data.MemberEmails, pupil.Email)
		}
	})

	t.Run("bad due date keeps the stored one", func(t *testing.T) {
		res, err := svc.Edit(ctx, created.Assignment.ID, &EditAssignmentRequest{
			Title:   "Limits and continuity",
			DueDate: "whenever",
		}, nil, master.ID)
		if err != nil {
			t.Fatalf("Edit: %v", err)
		}
		if !res.DueDateWarning {
			t.Error("expected due date warning")
		}
		if res.Assignment.DueDate == nil {
			t.Error("existing due date was cleared by an unparseable value")
		}
	})

	t.Run("empty due date clears it", func(t *testing.T) {
		res, err := svc.Edit(ctx, created.Assignment.ID, &EditAssignmentRequest{
			Title: "Limits and continuity",
		}, nil, master.ID)
		if err != nil {
			t.Fatalf("Edit: %v", err)
		}
		if res.Assignment.DueDate != nil {
			t.Errorf("due date = %v, want nil", res.Assignment.DueDate)
		}
	})

	t.Run("only the owner can edit", func(t *testing.T) {
		_, err := svc.Edit(ctx, created.Assignment.ID, &EditAssignmentRequest{Title: "Hack"}, nil, pupil.ID)
		if !errors.Is(err, ErrAccessDenied) {
			t.Errorf("Edit as pupil = %v, want ErrAccessDenied", err)
		}
	})

	t.Run("missing assignment", func(t *testing.T) {
		_, err := svc.Edit(ctx, 9999, &EditAssignmentRequest{Title: "X"}, nil, master.ID)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Edit missing = %v, want ErrNotFound", err)
		}
	})
}

func TestAssignmentService_GetByID(t *testing.T) {
	env, svc, _ := newAssignmentFixture(t)
	master := env.createMaster(t, "m@school.edu")
	pupil := env.createPupil(t, "p@school.edu")
	outsider := env.createPupil(t, "o@school.edu")
	space := env.createSpace(t, master.ID, "Latin")
	env.enroll(t, space.ID, pupil.ID)
	ctx := context.Background()

	created, err := svc.Create(ctx, space.ID, &CreateAssignmentRequest{Title: "Translation"}, nil, master.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	subSvc := NewSubmissionService(env.repo, env.store, env.logger)
	if _, err := subSvc.Submit(ctx, created.Assignment.ID, pupil.ID, upload("t.pdf", "x")); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	t.Run("owner sees all submissions", func(t *testing.T) {
		detail, err := svc.GetByID(ctx, created.Assignment.ID, master.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if len(detail.Submissions) != 1 {
			t.Errorf("submissions = %d, want 1", len(detail.Submissions))
		}
	})

	t.Run("pupil sees only their own", func(t *testing.T) {
		detail, err := svc.GetByID(ctx, created.Assignment.ID, pupil.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if detail.Submissions != nil {
			t.Error("pupil received the full submission list")
		}
		if detail.Submission == nil || detail.Submission.PupilID != pupil.ID {
			t.Errorf("own submission = %+v", detail.Submission)
		}
	})

	t.Run("outsiders are denied", func(t *testing.T) {
		if _, err := svc.GetByID(ctx, created.Assignment.ID, outsider.ID); !errors.Is(err, ErrAccessDenied) {
			t.Errorf("GetByID as outsider = %v, want ErrAccessDenied", err)
		}
	})
}
