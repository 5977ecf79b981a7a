package attendance

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/course"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/lecture"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/user"
)

var (
	ErrNotFound        = core.NewError(core.KindNotFound, "attendance record not found")
	ErrAlreadyRecorded = core.NewError(core.KindConflict, "attendance already recorded for this lecture")
	ErrNotPermitted    = core.NewError(core.KindForbidden, "cannot record attendance for another user")
	ErrNotEnrolled     = core.NewError(core.KindBadRequest, "user is not enrolled in this course")
	ErrNoActiveCode    = core.NewError(core.KindExpired, "no valid attendance code available")
	ErrInvalidCode     = core.NewError(core.KindBadRequest, "invalid code")
	ErrUnknownCode     = core.NewError(core.KindNotFound, "invalid code")
	ErrCodeExpired     = core.NewError(core.KindExpired, "code has expired, contact your instructor")
)

type (
	Repository interface {
		CreateAttendance(ctx context.Context, att *Attendance) error
		GetAttendanceByID(ctx context.Context, id, courseID string) (Attendance, error)
		AttendanceExists(ctx context.Context, lectureID, userID string) (bool, error)
		QueryAttendancesByLecture(ctx context.Context, courseID, lectureID string, ordering ...core.DBOrdering) ([]Attendance, error)
		UpdateAttendance(ctx context.Context, att Attendance) error
		DeleteAttendance(ctx context.Context, id, courseID string) error
		CountAttendees(ctx context.Context, lectureID string) (int, error)
	}

	// LectureStore is the slice of the lecture repository this service reads from.
	LectureStore interface {
		GetLectureByActiveCode(ctx context.Context, courseID, code string, now time.Time) (lecture.Lecture, error)
		GetLectureByCode(ctx context.Context, courseID, code string) (lecture.Lecture, error)
	}

	// EnrollmentResolver answers membership questions about a course.
	EnrollmentResolver interface {
		GetEnrollment(ctx context.Context, userID, courseID string) (course.Enrollment, error)
		CountEnrollments(ctx context.Context, courseID string, roles ...string) (int, error)
	}

	Service interface {
		Create(ctx context.Context, actor user.User, actorEnr *course.Enrollment, lec lecture.Lecture, na NewAttendance) (Attendance, error)
		CreateByCode(ctx context.Context, actor user.User, courseID string, sc SubmitCode) (Attendance, error)
		Get(ctx context.Context, id, courseID string) (Attendance, error)
		QueryByLecture(ctx context.Context, courseID, lectureID string, ordering ...core.DBOrdering) ([]Attendance, error)
		Update(ctx context.Context, att Attendance, actor user.User, ua UpdateAttendance) (Attendance, error)
		Delete(ctx context.Context, id, courseID string) error
		Stats(ctx context.Context, lec lecture.Lecture) (Stats, error)
	}

	service struct {
		repo       Repository
		lectures   LectureStore
		enrollment EnrollmentResolver
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, lectures LectureStore, enrollment EnrollmentResolver) Service {
	return &service{
		repo:       repo,
		lectures:   lectures,
		enrollment: enrollment,
	}
}

// Create records attendance for na.UserID at lec. Staff (per actorEnr or an
// admin account) may record for anyone without a code; everyone else records
// only for themselves and must present the lecture's active code.
//
// Checks run in a fixed order so the caller always sees the most specific
// failure first: duplicate, then permission, then target enrollment, then
// code verification.
func (s *service) Create(ctx context.Context, actor user.User, actorEnr *course.Enrollment, lec lecture.Lecture, na NewAttendance) (Attendance, error) {
	exists, err := s.repo.AttendanceExists(ctx, lec.ID, na.UserID)
	if err != nil {
		return Attendance{}, err
	}
	if exists {
		return Attendance{}, ErrAlreadyRecorded
	}

	needsCode := !actor.IsAdmin && (actorEnr == nil || course.RequiresCodeVerification(actorEnr.Role))
	if needsCode && actor.ID != na.UserID {
		return Attendance{}, ErrNotPermitted
	}

	if _, err = s.enrollment.GetEnrollment(ctx, na.UserID, lec.CourseID); err != nil {
		if errors.Cause(err) == course.ErrEnrollmentNotFound {
			return Attendance{}, ErrNotEnrolled
		}
		return Attendance{}, err
	}

	if needsCode {
		if err = verifyCode(lec, na.Code); err != nil {
			return Attendance{}, err
		}
	}

	return s.insert(ctx, actor, lec, na)
}

// CreateByCode records the actor's own attendance given only a code: the
// lecture is looked up by the code within the course. A code that matches an
// expired lecture fails with an expiry error rather than not-found, so the
// student knows the code was real but too late.
func (s *service) CreateByCode(ctx context.Context, actor user.User, courseID string, sc SubmitCode) (Attendance, error) {
	now := core.NowFunc()

	lec, err := s.lectures.GetLectureByActiveCode(ctx, courseID, sc.Code, now)
	if err != nil {
		if errors.Cause(err) != lecture.ErrNotFound {
			return Attendance{}, err
		}
		// Distinguish a stale code from one that never existed.
		if _, err = s.lectures.GetLectureByCode(ctx, courseID, sc.Code); err == nil {
			return Attendance{}, ErrCodeExpired
		} else if errors.Cause(err) == lecture.ErrNotFound {
			return Attendance{}, ErrUnknownCode
		}
		return Attendance{}, err
	}

	exists, err := s.repo.AttendanceExists(ctx, lec.ID, actor.ID)
	if err != nil {
		return Attendance{}, err
	}
	if exists {
		return Attendance{}, ErrAlreadyRecorded
	}

	if _, err = s.enrollment.GetEnrollment(ctx, actor.ID, courseID); err != nil {
		if errors.Cause(err) == course.ErrEnrollmentNotFound {
			return Attendance{}, ErrNotEnrolled
		}
		return Attendance{}, err
	}

	return s.insert(ctx, actor, lec, NewAttendance{UserID: actor.ID, Code: sc.Code})
}

func (s *service) insert(ctx context.Context, actor user.User, lec lecture.Lecture, na NewAttendance) (Attendance, error) {
	now := core.NowFunc()
	att := Attendance{
		CourseID:  lec.CourseID,
		LectureID: lec.ID,
		UserID:    na.UserID,
		UpdatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if na.UpdateReason != "" {
		att.UpdateReason.SetValid(na.UpdateReason)
	}
	if err := s.repo.CreateAttendance(ctx, &att); err != nil {
		// The unique index on (lecture_id, user_id) backstops the
		// existence check under concurrent submissions.
		if core.IsKind(err, core.KindConflict) {
			return Attendance{}, ErrAlreadyRecorded
		}
		return Attendance{}, err
	}
	return att, nil
}

func (s *service) Get(ctx context.Context, id, courseID string) (Attendance, error) {
	return s.repo.GetAttendanceByID(ctx, id, courseID)
}

func (s *service) QueryByLecture(ctx context.Context, courseID, lectureID string, ordering ...core.DBOrdering) ([]Attendance, error) {
	return s.repo.QueryAttendancesByLecture(ctx, courseID, lectureID, ordering...)
}

func (s *service) Update(ctx context.Context, att Attendance, actor user.User, ua UpdateAttendance) (Attendance, error) {
	if ua.UpdateReason != nil {
		if *ua.UpdateReason == "" {
			att.UpdateReason.Valid = false
			att.UpdateReason.String = ""
		} else {
			att.UpdateReason.SetValid(*ua.UpdateReason)
		}
	}
	att.UpdatedBy = actor.ID
	att.UpdatedAt = core.NowFunc()
	if err := s.repo.UpdateAttendance(ctx, att); err != nil {
		return Attendance{}, err
	}
	return att, nil
}

func (s *service) Delete(ctx context.Context, id, courseID string) error {
	return s.repo.DeleteAttendance(ctx, id, courseID)
}

// Stats reports turnout for a lecture. Only students and team leads count
// toward the denominator; a course with none of either reports 0%.
func (s *service) Stats(ctx context.Context, lec lecture.Lecture) (Stats, error) {
	attendees, err := s.repo.CountAttendees(ctx, lec.ID)
	if err != nil {
		return Stats{}, err
	}
	enrolled, err := s.enrollment.CountEnrollments(ctx, lec.CourseID, course.AttendeeRoles...)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		LectureID:     lec.ID,
		AttendeeCount: attendees,
		EnrolledCount: enrolled,
	}
	if enrolled > 0 {
		pct := float64(attendees) / float64(enrolled) * 100
		stats.AttendancePercentage = math.Round(pct*100) / 100
	}
	return stats, nil
}

func verifyCode(lec lecture.Lecture, code string) error {
	if !lec.Code.Valid || !lec.CodeExpiresAt.Valid {
		return ErrNoActiveCode
	}
	if code != lec.Code.String {
		return ErrInvalidCode
	}
	if core.NowFunc().After(lec.CodeExpiresAt.Time) {
		return ErrCodeExpired
	}
	return nil
}
