package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/synapse-edu/classroom-service/internal/llm"
	"github.com/synapse-edu/classroom-service/internal/models"
)

type feedbackFixture struct {
	env        *testEnv
	generator  *llm.MockGenerator
	svc        FeedbackService
	master     *models.Account
	pupil      *models.Account
	space      *models.Space
	assignment *models.Assignment
	submission *models.Submission
}

func newFeedbackFixture(t *testing.T, withReference bool) *feedbackFixture {
	t.Helper()
	env := newTestEnv(t)
	generator := &llm.MockGenerator{
		FeedbackText:  "Good work on section one.",
		IntegrityText: "No integrity flags found.",
		SummaryText:   "The class is doing well overall.",
	}
	svc := NewFeedbackService(env.repo, env.store, generator, env.logger)

	master := env.createMaster(t, "m@school.edu")
	pupil := env.createPupil(t, "p@school.edu")
	space := env.createSpace(t, master.ID, "Statistics")
	env.enroll(t, space.ID, pupil.ID)
	ctx := context.Background()

	assignment := &models.Assignment{SpaceID: space.ID, Title: "Regression"}
	if err := env.repo.Assignment().Create(ctx, assignment); err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	if withReference {
		path := "ref_1_solution.pdf"
		if err := env.store.Save(path, strings.NewReader("%PDF ref")); err != nil {
			t.Fatalf("save reference: %v", err)
		}
		assignment.ReferenceDocPath = &path
		if err := env.repo.Assignment().Update(ctx, assignment); err != nil {
			t.Fatalf("update assignment: %v", err)
		}
	}

	submission, err := NewSubmissionService(env.repo, env.store, env.logger).
		Submit(ctx, assignment.ID, pupil.ID, upload("work.pdf", "%PDF work"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	return &feedbackFixture{
		env: env, generator: generator, svc: svc,
		master: master, pupil: pupil, space: space,
		assignment: assignment, submission: submission,
	}
}

func TestFeedbackService_GenerateFeedback(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a feedback report", func(t *testing.T) {
		f := newFeedbackFixture(t, true)
		report, err := f.svc.GenerateFeedback(ctx, f.submission.ID, f.master.ID)
		if err != nil {
			t.Fatalf("GenerateFeedback: %v", err)
		}
		if report.Kind != models.ReportFeedback {
			t.Errorf("kind = %s", report.Kind)
		}
		if report.Body != f.generator.FeedbackText {
			t.Errorf("body = %q", report.Body)
		}

		stored, err := f.env.repo.FeedbackReport().ListBySubmission(ctx, f.submission.ID)
		if err != nil {
			t.Fatalf("ListBySubmission: %v", err)
		}
		if len(stored) != 1 {
			t.Errorf("stored reports = %d, want 1", len(stored))
		}
	})

	t.Run("requires a reference document", func(t *testing.T) {
		f := newFeedbackFixture(t, false)
		_, err := f.svc.GenerateFeedback(ctx, f.submission.ID, f.master.ID)
		if !errors.Is(err, ErrFeedbackUnavailable) {
			t.Errorf("GenerateFeedback without reference = %v, want ErrFeedbackUnavailable", err)
		}
	})

	t.Run("generator failure surfaces its message", func(t *testing.T) {
		f := newFeedbackFixture(t, true)
		f.generator.Err = errors.New("model overloaded")

		_, err := f.svc.GenerateFeedback(ctx, f.submission.ID, f.master.ID)
		if !errors.Is(err, ErrFeedbackUnavailable) {
			t.Fatalf("err = %v, want ErrFeedbackUnavailable", err)
		}
		if !strings.Contains(err.Error(), "model overloaded") {
			t.Errorf("error text %q does not carry the backend message", err)
		}

		// Nothing persisted on failure.
		stored, _ := f.env.repo.FeedbackReport().ListBySubmission(ctx, f.submission.ID)
		if len(stored) != 0 {
			t.Errorf("stored reports = %d, want 0", len(stored))
		}
	})

	t.Run("pupils cannot generate feedback", func(t *testing.T) {
		f := newFeedbackFixture(t, true)
		_, err := f.svc.GenerateFeedback(ctx, f.submission.ID, f.pupil.ID)
		if !errors.Is(err, ErrAccessDenied) {
			t.Errorf("GenerateFeedback as pupil = %v, want ErrAccessDenied", err)
		}
	})
}

func TestFeedbackService_CheckIntegrity(t *testing.T) {
	ctx := context.Background()
	f := newFeedbackFixture(t, false)

	report, err := f.svc.CheckIntegrity(ctx, f.submission.ID, f.master.ID)
	if err != nil {
		t.Fatalf("CheckIntegrity: %v", err)
	}
	if report.Kind != models.ReportIntegrity {
		t.Errorf("kind = %s", report.Kind)
	}
	if report.Body != f.generator.IntegrityText {
		t.Errorf("body = %q", report.Body)
	}
}

func TestFeedbackService_SpaceInsights(t *testing.T) {
	ctx := context.Background()

	t.Run("summarizes stored feedback reports", func(t *testing.T) {
		f := newFeedbackFixture(t, true)
		if _, err := f.svc.GenerateFeedback(ctx, f.submission.ID, f.master.ID); err != nil {
			t.Fatalf("GenerateFeedback: %v", err)
		}

		summary, err := f.svc.SpaceInsights(ctx, f.space.ID, f.master.ID)
		if err != nil {
			t.Fatalf("SpaceInsights: %v", err)
		}
		if summary != f.generator.SummaryText {
			t.Errorf("summary = %q", summary)
		}
	})

	t.Run("no reports yet", func(t *testing.T) {
		f := newFeedbackFixture(t, true)
		_, err := f.svc.SpaceInsights(ctx, f.space.ID, f.master.ID)
		if !errors.Is(err, ErrFeedbackUnavailable) {
			t.Errorf("SpaceInsights with no reports = %v, want ErrFeedbackUnavailable", err)
		}
	})
}

func TestFeedbackService_ListBySubmission(t *testing.T) {
	ctx := context.Background()
	f := newFeedbackFixture(t, true)
	if _, err := f.svc.GenerateFeedback(ctx, f.submission.ID, f.master.ID); err != nil {
		t.Fatalf("GenerateFeedback: %v", err)
	}

	t.Run("pupil reads own reports", func(t *testing.T) {
		reports, err := f.svc.ListBySubmission(ctx, f.submission.ID, f.pupil.ID)
		if err != nil {
			t.Fatalf("ListBySubmission: %v", err)
		}
		if len(reports) != 1 {
			t.Errorf("reports = %d, want 1", len(reports))
		}
	})

	t.Run("strangers denied", func(t *testing.T) {
		stranger := f.env.createPupil(t, "x@school.edu")
		_, err := f.svc.ListBySubmission(ctx, f.submission.ID, stranger.ID)
		if !errors.Is(err, ErrAccessDenied) {
			t.Errorf("ListBySubmission as stranger = %v, want ErrAccessDenied", err)
		}
	})
}
