package lecture

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
)

const maxCodeGenAttempts = 100

var (
	// errors
	ErrNotFound = core.NewError(core.KindNotFound, "lecture not found")

	// ErrAlreadyActivated: the activation window was used and has expired;
	// a lecture gets exactly one activation window ever.
	ErrAlreadyActivated = core.NewError(core.KindBadRequest, "attendance already activated, cannot be reactivated")

	// ErrCodeAlreadySet is returned by Repository.ActivateLecture when the
	// conditional update matched no row because another activation won the race.
	ErrCodeAlreadySet = errors.New("lecture code already set")
)

type (
	Repository interface {
		CreateLecture(ctx context.Context, lec Lecture) (Lecture, error)
		// GetLectureByID scopes the lookup to a course and excludes soft-deleted rows.
		GetLectureByID(ctx context.Context, id, courseID string) (Lecture, error)
		QueryLecturesByCourse(ctx context.Context, courseID string, ordering []core.DBOrdering) ([]Lecture, error)
		UpdateLecture(ctx context.Context, lec Lecture) (Lecture, error)
		DeleteLecture(ctx context.Context, id string) error // soft delete

		// ActiveCodeExists reports whether any non-deleted lecture in the course
		// holds `code` with an expiry at or after `now`.
		ActiveCodeExists(ctx context.Context, courseID, code string, now time.Time) (bool, error)
		// ActivateLecture sets the code fields iff they were never set
		// (code_expires_at IS NULL); returns ErrCodeAlreadySet otherwise.
		ActivateLecture(ctx context.Context, id, code string, generatedAt, expiresAt time.Time) (Lecture, error)

		GetLectureByActiveCode(ctx context.Context, courseID, code string, now time.Time) (Lecture, error)
		GetLectureByCode(ctx context.Context, courseID, code string) (Lecture, error)
	}

	Service interface {
		Create(ctx context.Context, courseID string, nl NewLecture) (Lecture, error)
		GetByID(ctx context.Context, id, courseID string) (Lecture, error)
		QueryByCourse(ctx context.Context, courseID string, ordering []core.DBOrdering) ([]Lecture, error)
		Update(ctx context.Context, orig Lecture, ul UpdateLecture) (Lecture, error)
		Delete(ctx context.Context, id string) error
		Activate(ctx context.Context, lec Lecture) (Lecture, error)
	}

	service struct {
		repo       Repository
		codeTTL    time.Duration
		codeLength int
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, conf *core.Config) Service {
	return &service{
		repo:       repo,
		codeTTL:    conf.Attendance.CodeTTL,
		codeLength: conf.Attendance.CodeLength,
	}
}

func (svc *service) Create(ctx context.Context, courseID string, nl NewLecture) (Lecture, error) {
	now := core.NowFunc().UTC()
	return svc.repo.CreateLecture(ctx, Lecture{
		CourseID:  courseID,
		Date:      nl.Date,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) GetByID(ctx context.Context, id, courseID string) (Lecture, error) {
	return svc.repo.GetLectureByID(ctx, id, courseID)
}

func (svc *service) QueryByCourse(ctx context.Context, courseID string, ordering []core.DBOrdering) ([]Lecture, error) {
	return svc.repo.QueryLecturesByCourse(ctx, courseID, ordering)
}

func (svc *service) Update(ctx context.Context, orig Lecture, ul UpdateLecture) (Lecture, error) {
	orig.Date = ul.Date
	orig.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateLecture(ctx, orig)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteLecture(ctx, id)
}

// Activate opens the lecture's one-time attendance window.
//
// Lifecycle: Unactivated (code_expires_at null) -> Active (expiry in the
// future) -> Expired (expiry in the past, terminal). Calling Activate while
// Active is a no-op returning the existing code; calling it once Expired
// fails with ErrAlreadyActivated.
func (svc *service) Activate(ctx context.Context, lec Lecture) (Lecture, error) {
	now := core.NowFunc().UTC()
	if lec.CodeActive(now) {
		// concurrent/duplicate activation within the window: reuse the code
		return lec, nil
	}
	if lec.Activated() {
		return Lecture{}, ErrAlreadyActivated
	}

	code, err := svc.generateUniqueCode(ctx, lec.CourseID, now)
	if err != nil {
		return Lecture{}, err
	}

	activated, err := svc.repo.ActivateLecture(ctx, lec.ID, code, now, now.Add(svc.codeTTL))
	if err == nil {
		return activated, nil
	}
	if errors.Cause(err) != ErrCodeAlreadySet {
		return Lecture{}, err
	}

	// another activation won the race; adopt its window if still open
	cur, err := svc.repo.GetLectureByID(ctx, lec.ID, lec.CourseID)
	if err != nil {
		return Lecture{}, err
	}
	if cur.CodeActive(core.NowFunc().UTC()) {
		return cur, nil
	}
	return Lecture{}, ErrAlreadyActivated
}

// generateUniqueCode retries generation until the code collides with no
// currently active code in the course. Two active lectures in a course must
// never share a code.
func (svc *service) generateUniqueCode(ctx context.Context, courseID string, now time.Time) (string, error) {
	for i := 0; i < maxCodeGenAttempts; i++ {
		code, err := core.RandomCode(svc.codeLength)
		if err != nil {
			return "", errors.Wrap(err, "generating attendance code")
		}
		exists, err := svc.repo.ActiveCodeExists(ctx, courseID, code, now)
		if err != nil {
			return "", errors.Wrap(err, "checking attendance code uniqueness")
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("attendance code space exhausted")
}
