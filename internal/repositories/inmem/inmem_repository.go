// Package inmem provides an in-memory Repository used by service tests.
// It enforces the same uniqueness rules the database schema does, so
// duplicate-write paths behave as they would against PostgreSQL.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/repositories"
)

type Repository struct {
	mu sync.Mutex

	accounts    map[uint]*models.Account
	spaces      map[uint]*models.Space
	memberships map[uint]*models.Membership
	assignments map[uint]*models.Assignment
	submissions map[uint]*models.Submission
	reports     map[uint]*models.FeedbackReport

	nextID uint
}

func New() *Repository {
	return &Repository{
		accounts:    make(map[uint]*models.Account),
		spaces:      make(map[uint]*models.Space),
		memberships: make(map[uint]*models.Membership),
		assignments: make(map[uint]*models.Assignment),
		submissions: make(map[uint]*models.Submission),
		reports:     make(map[uint]*models.FeedbackReport),
	}
}

func (r *Repository) allocID() uint {
	r.nextID++
	return r.nextID
}

func (r *Repository) Account() repositories.AccountRepository { return &accountStore{r} }
func (r *Repository) Space() repositories.SpaceRepository     { return &spaceStore{r} }
func (r *Repository) Membership() repositories.MembershipRepository {
	return &membershipStore{r}
}
func (r *Repository) Assignment() repositories.AssignmentRepository {
	return &assignmentStore{r}
}
func (r *Repository) Submission() repositories.SubmissionRepository {
	return &submissionStore{r}
}
func (r *Repository) FeedbackReport() repositories.FeedbackReportRepository {
	return &reportStore{r}
}

// WithTransaction runs fn directly. The fake has no rollback; tests
// that exercise transaction failure paths assert on state explicitly.
func (r *Repository) WithTransaction(_ context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *Repository) Ping(context.Context) error { return nil }
func (r *Repository) Close() error               { return nil }

type accountStore struct{ r *Repository }

func (s *accountStore) GetByID(_ context.Context, id uint) (*models.Account, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if a, ok := s.r.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *accountStore) GetBySubjectID(_ context.Context, subjectID string) (*models.Account, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for _, a := range s.r.accounts {
		if a.SubjectID == subjectID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *accountStore) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for _, a := range s.r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *accountStore) Create(_ context.Context, account *models.Account) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for _, a := range s.r.accounts {
		if a.SubjectID == account.SubjectID || a.Email == account.Email {
			return repositories.ErrDuplicate
		}
	}
	account.ID = s.r.allocID()
	account.CreatedAt = time.Now()
	cp := *account
	s.r.accounts[account.ID] = &cp
	return nil
}

type spaceStore struct{ r *Repository }

func (s *spaceStore) GetByID(_ context.Context, id uint) (*models.Space, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if sp, ok := s.r.spaces[id]; ok {
		cp := *sp
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *spaceStore) GetByJoinCode(_ context.Context, code string) (*models.Space, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for _, sp := range s.r.spaces {
		if sp.JoinCode == code {
			cp := *sp
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *spaceStore) ListByOwner(_ context.Context, ownerID uint) ([]*models.Space, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	var out []*models.Space
	for _, sp := range s.r.spaces {
		if sp.OwnerID == ownerID {
			cp := *sp
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *spaceStore) Create(_ context.Context, space *models.Space) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for _, sp := range s.r.spaces {
		if sp.JoinCode == space.JoinCode {
			return repositories.ErrDuplicate
		}
	}
	space.ID = s.r.allocID()
	space.CreatedAt = time.Now()
	cp := *space
	s.r.spaces[space.ID] = &cp
	return nil
}

func (s *spaceStore) ExistsByJoinCode(_ context.Context, code string) (bool, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for _, sp := range s.r.spaces {
		if sp.JoinCode == code {
			return true, nil
		}
	}
	return false, nil
}

type membershipStore struct{ r *Repository }

func (s *membershipStore) Get(_ context.Context, spaceID, accountID uint) (*models.Membership, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for _, m := range s.r.memberships {
		if m.SpaceID == spaceID && m.AccountID == accountID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *membershipStore) ListBySpace(_ context.Context, spaceID uint) ([]*models.Membership, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	var out []*models.Membership
	for _, m := range s.r.memberships {
		if m.SpaceID == spaceID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *membershipStore) ListSpacesByAccount(_ context.Context, accountID uint) ([]*models.Space, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	var ms []*models.Membership
	for _, m := range s.r.memberships {
		if m.AccountID == accountID {
			ms = append(ms, m)
		}
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].ID > ms[j].ID })
	var out []*models.Space
	for _, m := range ms {
		if sp, ok := s.r.spaces[m.SpaceID]; ok {
			cp := *sp
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *membershipStore) ListMemberAccounts(_ context.Context, spaceID uint) ([]*models.Account, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	var ms []*models.Membership
	for _, m := range s.r.memberships {
		if m.SpaceID == spaceID {
			ms = append(ms, m)
		}
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].ID < ms[j].ID })
	var out []*models.Account
	for _, m := range ms {
		if a, ok := s.r.accounts[m.AccountID]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *membershipStore) Create(_ context.Context, membership *models.Membership) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for _, m := range s.r.memberships {
		if m.SpaceID == membership.SpaceID && m.AccountID == membership.AccountID {
			return repositories.ErrDuplicate
		}
	}
	membership.ID = s.r.allocID()
	membership.CreatedAt = time.Now()
	cp := *membership
	s.r.memberships[membership.ID] = &cp
	return nil
}

type assignmentStore struct{ r *Repository }

func (s *assignmentStore) GetByID(_ context.Context, id uint) (*models.Assignment, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if a, ok := s.r.assignments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *assignmentStore) ListBySpace(_ context.Context, spaceID uint) ([]*models.Assignment, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	var out []*models.Assignment
	for _, a := range s.r.assignments {
		if a.SpaceID == spaceID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *assignmentStore) Create(_ context.Context, assignment *models.Assignment) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	assignment.ID = s.r.allocID()
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = assignment.CreatedAt
	cp := *assignment
	s.r.assignments[assignment.ID] = &cp
	return nil
}

func (s *assignmentStore) Update(_ context.Context, assignment *models.Assignment) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if _, ok := s.r.assignments[assignment.ID]; !ok {
		return repositories.ErrNotFound
	}
	assignment.UpdatedAt = time.Now()
	cp := *assignment
	s.r.assignments[assignment.ID] = &cp
	return nil
}

type submissionStore struct{ r *Repository }

func (s *submissionStore) GetByID(_ context.Context, id uint) (*models.Submission, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if sub, ok := s.r.submissions[id]; ok {
		cp := *sub
		if p, ok := s.r.accounts[sub.PupilID]; ok {
			cp.Pupil = *p
		}
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *submissionStore) Get(_ context.Context, assignmentID, pupilID uint) (*models.Submission, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for _, sub := range s.r.submissions {
		if sub.AssignmentID == assignmentID && sub.PupilID == pupilID {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *submissionStore) ListByAssignment(_ context.Context, assignmentID uint) ([]*models.Submission, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	var out []*models.Submission
	for _, sub := range s.r.submissions {
		if sub.AssignmentID == assignmentID {
			cp := *sub
			if p, ok := s.r.accounts[sub.PupilID]; ok {
				cp.Pupil = *p
			}
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *submissionStore) Create(_ context.Context, submission *models.Submission) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for _, sub := range s.r.submissions {
		if sub.AssignmentID == submission.AssignmentID && sub.PupilID == submission.PupilID {
			return repositories.ErrDuplicate
		}
	}
	submission.ID = s.r.allocID()
	submission.CreatedAt = time.Now()
	cp := *submission
	s.r.submissions[submission.ID] = &cp
	return nil
}

type reportStore struct{ r *Repository }

func (s *reportStore) GetByID(_ context.Context, id uint) (*models.FeedbackReport, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if rep, ok := s.r.reports[id]; ok {
		cp := *rep
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *reportStore) ListBySubmission(_ context.Context, submissionID uint) ([]*models.FeedbackReport, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	var out []*models.FeedbackReport
	for _, rep := range s.r.reports {
		if rep.SubmissionID == submissionID {
			cp := *rep
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *reportStore) ListBySpace(_ context.Context, spaceID uint, kind models.ReportKind) ([]*models.FeedbackReport, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	var out []*models.FeedbackReport
	for _, rep := range s.r.reports {
		if rep.Kind != kind {
			continue
		}
		sub, ok := s.r.submissions[rep.SubmissionID]
		if !ok {
			continue
		}
		asg, ok := s.r.assignments[sub.AssignmentID]
		if !ok || asg.SpaceID != spaceID {
			continue
		}
		cp := *rep
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *reportStore) Create(_ context.Context, report *models.FeedbackReport) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	report.ID = s.r.allocID()
	report.CreatedAt = time.Now()
	cp := *report
	s.r.reports[report.ID] = &cp
	return nil
}
