package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/user"
)

const (
	joinCodeLength     = 8
	maxCodeGenAttempts = 100
)

var (
	// errors
	ErrNotFound           = core.NewError(core.KindNotFound, "course not found")
	ErrEnrollmentNotFound = core.NewError(core.KindNotFound, "enrollment not found")
	ErrInvalidJoinCode    = core.NewError(core.KindNotFound, "invalid join code")
	ErrAlreadyEnrolled    = core.NewError(core.KindConflict, "user is already enrolled in this course")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		GetCourseByJoinCode(ctx context.Context, code string) (Course, error)
		JoinCodeExists(ctx context.Context, code string) (bool, error)
		QueryCoursesByUser(ctx context.Context, userID string) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error // soft delete

		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, userID, courseID string) (Enrollment, error)
		QueryEnrollmentsByCourse(ctx context.Context, courseID string, roles ...string) ([]Enrollment, error)
		CountEnrollments(ctx context.Context, courseID string, roles ...string) (int, error)
	}

	// Service is the course business API; it also acts as the enrollment
	// resolver consumed by the attendance recorder.
	Service interface {
		Create(ctx context.Context, actor user.User, nc NewCourse) (Course, error)
		GetByID(ctx context.Context, id string) (Course, error)
		QueryByUser(ctx context.Context, userID string) ([]Course, error)
		Update(ctx context.Context, orig Course, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, id string) error
		Join(ctx context.Context, actor user.User, joinCode string) (Enrollment, error)
		GetEnrollment(ctx context.Context, userID, courseID string) (Enrollment, error)
		Roster(ctx context.Context, courseID string) ([]Enrollment, error)
		CountEnrollments(ctx context.Context, courseID string, roles ...string) (int, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Create persists a new course and enrolls its creator as professor.
func (svc *service) Create(ctx context.Context, actor user.User, nc NewCourse) (Course, error) {
	code, err := svc.generateJoinCode(ctx)
	if err != nil {
		return Course{}, err
	}

	now := core.NowFunc().UTC()
	crs := Course{
		Name:      nc.Name,
		Term:      nc.Term,
		JoinCode:  code,
		CreatedAt: now,
		UpdatedAt: now,
	}
	crs, err = svc.repo.CreateCourse(ctx, crs)
	if err != nil {
		return Course{}, err
	}

	_, err = svc.repo.CreateEnrollment(ctx, Enrollment{
		CourseID:  crs.ID,
		UserID:    actor.ID,
		Role:      RoleProfessor,
		CreatedAt: now,
	})
	if err != nil {
		return Course{}, errors.Wrap(err, "enrolling course creator")
	}
	return crs, nil
}

// generateJoinCode retries generation until no other course holds the code.
func (svc *service) generateJoinCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeGenAttempts; i++ {
		code, err := core.RandomCode(joinCodeLength)
		if err != nil {
			return "", errors.Wrap(err, "generating join code")
		}
		exists, err := svc.repo.JoinCodeExists(ctx, code)
		if err != nil {
			return "", errors.Wrap(err, "checking join code uniqueness")
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("join code space exhausted")
}

func (svc *service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *service) QueryByUser(ctx context.Context, userID string) ([]Course, error) {
	return svc.repo.QueryCoursesByUser(ctx, userID)
}

func (svc *service) Update(ctx context.Context, orig Course, uc UpdateCourse) (Course, error) {
	orig.Name = uc.Name
	orig.Term = uc.Term
	orig.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateCourse(ctx, orig)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

// Join enrolls actor as a student in the course holding joinCode.
func (svc *service) Join(ctx context.Context, actor user.User, joinCode string) (Enrollment, error) {
	crs, err := svc.repo.GetCourseByJoinCode(ctx, joinCode)
	if err != nil {
		if core.IsKind(err, core.KindNotFound) {
			return Enrollment{}, ErrInvalidJoinCode
		}
		return Enrollment{}, err
	}

	if _, err = svc.repo.GetEnrollment(ctx, actor.ID, crs.ID); err == nil {
		return Enrollment{}, ErrAlreadyEnrolled
	} else if !core.IsKind(err, core.KindNotFound) {
		return Enrollment{}, err
	}

	return svc.repo.CreateEnrollment(ctx, Enrollment{
		CourseID:  crs.ID,
		UserID:    actor.ID,
		Role:      RoleStudent,
		CreatedAt: core.NowFunc().UTC(),
	})
}

// GetEnrollment resolves (user, course) to an enrollment;
// ErrEnrollmentNotFound means "not enrolled".
func (svc *service) GetEnrollment(ctx context.Context, userID, courseID string) (Enrollment, error) {
	return svc.repo.GetEnrollment(ctx, userID, courseID)
}

func (svc *service) Roster(ctx context.Context, courseID string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByCourse(ctx, courseID)
}

func (svc *service) CountEnrollments(ctx context.Context, courseID string, roles ...string) (int, error) {
	return svc.repo.CountEnrollments(ctx, courseID, roles...)
}
