package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
)

func TestSpaceService_Create(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSpaceService(env.repo, env.logger, env.validator)
	master := env.createMaster(t, "m@school.edu")
	ctx := context.Background()

	t.Run("generates an 8 char hex join code", func(t *testing.T) {
		space, err := svc.Create(ctx, &CreateSpaceRequest{Name: "Algebra"}, master.ID)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if !regexp.MustCompile(`^[0-9a-f]{8}$`).MatchString(space.JoinCode) {
			t.Errorf("join code = %q, want 8 hex chars", space.JoinCode)
		}
		if space.OwnerID != master.ID {
			t.Errorf("owner = %d, want %d", space.OwnerID, master.ID)
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		if _, err := svc.Create(ctx, &CreateSpaceRequest{}, master.ID); err == nil {
			t.Error("Create with empty name succeeded")
		}
	})
}

func TestSpaceService_Join(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSpaceService(env.repo, env.logger, env.validator)
	master := env.createMaster(t, "m@school.edu")
	pupil := env.createPupil(t, "p@school.edu")
	space := env.createSpace(t, master.ID, "Physics")
	ctx := context.Background()

	t.Run("first join enrolls", func(t *testing.T) {
		res, err := svc.Join(ctx, space.JoinCode, pupil.ID)
		if err != nil {
			t.Fatalf("Join: %v", err)
		}
		if res.AlreadyMember {
			t.Error("first join reported AlreadyMember")
		}
		if res.Space.ID != space.ID {
			t.Errorf("joined space %d, want %d", res.Space.ID, space.ID)
		}
	})

	t.Run("second join is an idempotent no-op", func(t *testing.T) {
		res, err := svc.Join(ctx, space.JoinCode, pupil.ID)
		if err != nil {
			t.Fatalf("Join: %v", err)
		}
		if !res.AlreadyMember {
			t.Error("second join did not report AlreadyMember")
		}

		members, err := env.repo.Membership().ListBySpace(ctx, space.ID)
		if err != nil {
			t.Fatalf("ListBySpace: %v", err)
		}
		if len(members) != 1 {
			t.Errorf("memberships = %d, want 1", len(members))
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		if _, err := svc.Join(ctx, "deadbeef", pupil.ID); !errors.Is(err, ErrInvalidJoinCode) {
			t.Errorf("Join with unknown code = %v, want ErrInvalidJoinCode", err)
		}
	})

	t.Run("code is trimmed and lowercased", func(t *testing.T) {
		other := env.createPupil(t, "p2@school.edu")
		res, err := svc.Join(ctx, "  "+space.JoinCode+" ", other.ID)
		if err != nil {
			t.Fatalf("Join with padded code: %v", err)
		}
		if res.Space.ID != space.ID {
			t.Errorf("joined space %d, want %d", res.Space.ID, space.ID)
		}
	})
}

func TestSpaceService_CanView(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSpaceService(env.repo, env.logger, env.validator)
	master := env.createMaster(t, "m@school.edu")
	member := env.createPupil(t, "in@school.edu")
	outsider := env.createPupil(t, "out@school.edu")
	space := env.createSpace(t, master.ID, "Chemistry")
	env.enroll(t, space.ID, member.ID)
	ctx := context.Background()

	cases := []struct {
		name      string
		accountID uint
		want      bool
	}{
		{"owner", master.ID, true},
		{"member", member.ID, true},
		{"outsider", outsider.ID, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.CanView(ctx, space.ID, tc.accountID)
			if err != nil {
				t.Fatalf("CanView: %v", err)
			}
			if got != tc.want {
				t.Errorf("CanView = %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("missing space", func(t *testing.T) {
		if _, err := svc.CanView(ctx, 9999, master.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("CanView on missing space = %v, want ErrNotFound", err)
		}
	})
}

func TestSpaceService_ListMembers(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSpaceService(env.repo, env.logger, env.validator)
	master := env.createMaster(t, "m@school.edu")
	pupil := env.createPupil(t, "p@school.edu")
	space := env.createSpace(t, master.ID, "History")
	env.enroll(t, space.ID, pupil.ID)
	ctx := context.Background()

	members, err := svc.ListMembers(ctx, space.ID, master.ID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 1 || members[0].ID != pupil.ID {
		t.Errorf("members = %+v, want just pupil %d", members, pupil.ID)
	}

	if _, err := svc.ListMembers(ctx, space.ID, pupil.ID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("ListMembers as pupil = %v, want ErrAccessDenied", err)
	}
}
