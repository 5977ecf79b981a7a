package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/course"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/lecture"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/user"
)

type fakeRepo struct {
	existing  map[string]bool // lectureID + "|" + userID
	created   []Attendance
	conflict  bool
	attendees int
}

func (r *fakeRepo) CreateAttendance(ctx context.Context, att *Attendance) error {
	if r.conflict {
		return core.NewError(core.KindConflict, "duplicate key")
	}
	att.ID = "att1"
	r.created = append(r.created, *att)
	return nil
}
func (r *fakeRepo) GetAttendanceByID(ctx context.Context, id, courseID string) (Attendance, error) {
	return Attendance{}, ErrNotFound
}
func (r *fakeRepo) AttendanceExists(ctx context.Context, lectureID, userID string) (bool, error) {
	return r.existing[lectureID+"|"+userID], nil
}
func (r *fakeRepo) QueryAttendancesByLecture(ctx context.Context, courseID, lectureID string, ordering ...core.DBOrdering) ([]Attendance, error) {
	return r.created, nil
}
func (r *fakeRepo) UpdateAttendance(ctx context.Context, att Attendance) error { return nil }
func (r *fakeRepo) DeleteAttendance(ctx context.Context, id, courseID string) error {
	return nil
}
func (r *fakeRepo) CountAttendees(ctx context.Context, lectureID string) (int, error) {
	return r.attendees, nil
}

type fakeLectures struct {
	lectures []lecture.Lecture
}

func (l *fakeLectures) GetLectureByActiveCode(ctx context.Context, courseID, code string, now time.Time) (lecture.Lecture, error) {
	for _, lec := range l.lectures {
		if lec.CourseID == courseID && lec.Code.Valid && lec.Code.String == code && lec.CodeActive(now) {
			return lec, nil
		}
	}
	return lecture.Lecture{}, lecture.ErrNotFound
}
func (l *fakeLectures) GetLectureByCode(ctx context.Context, courseID, code string) (lecture.Lecture, error) {
	for _, lec := range l.lectures {
		if lec.CourseID == courseID && lec.Code.Valid && lec.Code.String == code {
			return lec, nil
		}
	}
	return lecture.Lecture{}, lecture.ErrNotFound
}

type fakeEnrollment struct {
	enrolled map[string]course.Enrollment // userID
	counts   int
}

func (e *fakeEnrollment) GetEnrollment(ctx context.Context, userID, courseID string) (course.Enrollment, error) {
	if enr, ok := e.enrolled[userID]; ok {
		return enr, nil
	}
	return course.Enrollment{}, course.ErrEnrollmentNotFound
}
func (e *fakeEnrollment) CountEnrollments(ctx context.Context, courseID string, roles ...string) (int, error) {
	return e.counts, nil
}

func frozenNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = orig })
}

func activeLecture(now time.Time) lecture.Lecture {
	return lecture.Lecture{
		ID:            "lec1",
		CourseID:      "crs1",
		Code:          null.StringFrom("AB12CD"),
		CodeExpiresAt: null.TimeFrom(now.Add(3 * time.Minute)),
	}
}

func TestServiceCreate(t *testing.T) {
	now := time.Date(2021, 10, 4, 10, 0, 0, 0, time.UTC)
	frozenNow(t, now)
	ctx := context.Background()

	student := user.User{ID: "usr1"}
	other := user.User{ID: "usr2"}
	prof := user.User{ID: "usr3"}
	lead := user.User{ID: "usr4"}
	profEnr := course.Enrollment{CourseID: "crs1", UserID: prof.ID, Role: course.RoleProfessor}
	studentEnr := course.Enrollment{CourseID: "crs1", UserID: student.ID, Role: course.RoleStudent}
	leadEnr := course.Enrollment{CourseID: "crs1", UserID: lead.ID, Role: course.RoleTeamLead}

	enrollment := func() *fakeEnrollment {
		return &fakeEnrollment{enrolled: map[string]course.Enrollment{
			student.ID: studentEnr,
			prof.ID:    profEnr,
			lead.ID:    leadEnr,
		}}
	}

	tests := []struct {
		name     string
		actor    user.User
		actorEnr *course.Enrollment
		lec      lecture.Lecture
		na       NewAttendance
		repo     *fakeRepo
		wantErr  error
	}{
		{
			name:    "duplicate",
			actor:   student,
			lec:     activeLecture(now),
			na:      NewAttendance{UserID: student.ID, Code: "AB12CD"},
			repo:    &fakeRepo{existing: map[string]bool{"lec1|usr1": true}},
			wantErr: ErrAlreadyRecorded,
		},
		{
			// duplicate wins even when the actor also lacks permission
			name:    "duplicate before permission",
			actor:   other,
			lec:     activeLecture(now),
			na:      NewAttendance{UserID: student.ID, Code: "AB12CD"},
			repo:    &fakeRepo{existing: map[string]bool{"lec1|usr1": true}},
			wantErr: ErrAlreadyRecorded,
		},
		{
			name:    "non-staff recording for someone else",
			actor:   other,
			lec:     activeLecture(now),
			na:      NewAttendance{UserID: student.ID, Code: "AB12CD"},
			repo:    &fakeRepo{},
			wantErr: ErrNotPermitted,
		},
		{
			name:    "target not enrolled",
			actor:   other,
			lec:     activeLecture(now),
			na:      NewAttendance{UserID: other.ID, Code: "AB12CD"},
			repo:    &fakeRepo{},
			wantErr: ErrNotEnrolled,
		},
		{
			name:    "no code generated yet",
			actor:   student,
			lec:     lecture.Lecture{ID: "lec1", CourseID: "crs1"},
			na:      NewAttendance{UserID: student.ID, Code: "AB12CD"},
			repo:    &fakeRepo{},
			wantErr: ErrNoActiveCode,
		},
		{
			name:    "wrong code",
			actor:   student,
			lec:     activeLecture(now),
			na:      NewAttendance{UserID: student.ID, Code: "ZZZZZZ"},
			repo:    &fakeRepo{},
			wantErr: ErrInvalidCode,
		},
		{
			name:  "expired code",
			actor: student,
			lec: lecture.Lecture{
				ID:            "lec1",
				CourseID:      "crs1",
				Code:          null.StringFrom("AB12CD"),
				CodeExpiresAt: null.TimeFrom(now.Add(-time.Minute)),
			},
			na:      NewAttendance{UserID: student.ID, Code: "AB12CD"},
			repo:    &fakeRepo{},
			wantErr: ErrCodeExpired,
		},
		{
			// team leads count as attendees, not staff
			name:     "team lead still needs a code",
			actor:    lead,
			actorEnr: &leadEnr,
			lec:      activeLecture(now),
			na:       NewAttendance{UserID: lead.ID, Code: "ZZZZZZ"},
			repo:     &fakeRepo{},
			wantErr:  ErrInvalidCode,
		},
		{
			name:  "valid self submission",
			actor: student,
			lec:   activeLecture(now),
			na:    NewAttendance{UserID: student.ID, Code: "AB12CD"},
			repo:  &fakeRepo{},
		},
		{
			name:     "staff records without a code",
			actor:    prof,
			actorEnr: &profEnr,
			lec:      activeLecture(now),
			na:       NewAttendance{UserID: student.ID, UpdateReason: "arrived late"},
			repo:     &fakeRepo{},
		},
		{
			name:  "admin records without a code",
			actor: user.User{ID: "adm1", IsAdmin: true},
			lec:   lecture.Lecture{ID: "lec1", CourseID: "crs1"},
			na:    NewAttendance{UserID: student.ID},
			repo:  &fakeRepo{},
		},
		{
			name:    "concurrent insert loses to unique index",
			actor:   student,
			lec:     activeLecture(now),
			na:      NewAttendance{UserID: student.ID, Code: "AB12CD"},
			repo:    &fakeRepo{conflict: true},
			wantErr: ErrAlreadyRecorded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.repo, &fakeLectures{}, enrollment())
			att, err := svc.Create(ctx, tt.actor, tt.actorEnr, tt.lec, tt.na)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.na.UserID, att.UserID)
			assert.Equal(t, tt.actor.ID, att.UpdatedBy)
			assert.Equal(t, tt.lec.ID, att.LectureID)
			if tt.na.UpdateReason != "" {
				assert.Equal(t, tt.na.UpdateReason, att.UpdateReason.String)
			} else {
				assert.False(t, att.UpdateReason.Valid)
			}
		})
	}
}

func TestServiceCreateByCode(t *testing.T) {
	now := time.Date(2021, 10, 4, 10, 0, 0, 0, time.UTC)
	frozenNow(t, now)
	ctx := context.Background()

	student := user.User{ID: "usr1"}
	enrollment := &fakeEnrollment{enrolled: map[string]course.Enrollment{
		student.ID: {CourseID: "crs1", UserID: student.ID, Role: course.RoleStudent},
	}}
	lectures := &fakeLectures{lectures: []lecture.Lecture{
		activeLecture(now),
		{
			ID:            "lec2",
			CourseID:      "crs1",
			Code:          null.StringFrom("OLDCOD"),
			CodeExpiresAt: null.TimeFrom(now.Add(-time.Hour)),
		},
	}}

	tests := []struct {
		name    string
		actor   user.User
		code    string
		repo    *fakeRepo
		wantErr error
	}{
		{
			name:    "unknown code",
			actor:   student,
			code:    "NOPE00",
			repo:    &fakeRepo{},
			wantErr: ErrUnknownCode,
		},
		{
			name:    "expired code",
			actor:   student,
			code:    "OLDCOD",
			repo:    &fakeRepo{},
			wantErr: ErrCodeExpired,
		},
		{
			name:    "already recorded",
			actor:   student,
			code:    "AB12CD",
			repo:    &fakeRepo{existing: map[string]bool{"lec1|usr1": true}},
			wantErr: ErrAlreadyRecorded,
		},
		{
			name:    "not enrolled",
			actor:   user.User{ID: "usr9"},
			code:    "AB12CD",
			repo:    &fakeRepo{},
			wantErr: ErrNotEnrolled,
		},
		{
			name:  "active code",
			actor: student,
			code:  "AB12CD",
			repo:  &fakeRepo{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.repo, lectures, enrollment)
			att, err := svc.CreateByCode(ctx, tt.actor, "crs1", SubmitCode{Code: tt.code})
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "lec1", att.LectureID)
			assert.Equal(t, tt.actor.ID, att.UserID)
			assert.Equal(t, tt.actor.ID, att.UpdatedBy)
		})
	}
}

func TestServiceStats(t *testing.T) {
	ctx := context.Background()
	lec := lecture.Lecture{ID: "lec1", CourseID: "crs1"}

	tests := []struct {
		name      string
		attendees int
		enrolled  int
		wantPct   float64
	}{
		{"no attendees", 0, 10, 0},
		{"full house", 10, 10, 100},
		{"two thirds", 2, 3, 66.67},
		{"one third", 1, 3, 33.33},
		{"empty course", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(
				&fakeRepo{attendees: tt.attendees},
				&fakeLectures{},
				&fakeEnrollment{counts: tt.enrolled},
			)
			stats, err := svc.Stats(ctx, lec)
			require.NoError(t, err)
			assert.Equal(t, lec.ID, stats.LectureID)
			assert.Equal(t, tt.attendees, stats.AttendeeCount)
			assert.Equal(t, tt.enrolled, stats.EnrolledCount)
			assert.Equal(t, tt.wantPct, stats.AttendancePercentage)
		})
	}
}
