package course

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
)

// Enrollment roles within a course.
const (
	RoleProfessor = "professor"
	RoleTA        = "ta"
	RoleStudent   = "student"
	RoleTeamLead  = "team_lead"
)

var (
	AllRoles = []string{RoleProfessor, RoleTA, RoleStudent, RoleTeamLead}

	// StaffRoles may manage lectures and attendance records.
	StaffRoles = []string{RoleProfessor, RoleTA}

	// AttendeeRoles count towards attendance statistics.
	AttendeeRoles = []string{RoleStudent, RoleTeamLead}
)

// IsStaffRole reports whether role is a course-staff role.
func IsStaffRole(role string) bool {
	for _, r := range StaffRoles {
		if r == role {
			return true
		}
	}
	return false
}

// RequiresCodeVerification reports whether an actor with the given enrollment
// role must present a valid attendance code to record attendance.
// Staff bypass code verification entirely.
func RequiresCodeVerification(role string) bool {
	return !IsStaffRole(role)
}

type Course struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Term      string    `json:"term" db:"term"`
	JoinCode  string    `json:"join_code" db:"join_code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
	DeletedAt null.Time `json:"-" db:"deleted_at"`
}

type Enrollment struct {
	ID        string    `json:"id" db:"id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

func (e Enrollment) IsStaff() bool {
	return IsStaffRole(e.Role)
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name string `json:"name" validate:"required"`
	Term string `json:"term" validate:"required"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Term = core.CleanString(nc.Term)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Name string `json:"name"`
	Term string `json:"term"`
}

func (uc *UpdateCourse) Validate(origCrs Course, validate *validator.Validate) error {
	name := core.CleanString(uc.Name)
	if name != "" {
		uc.Name = name
	} else {
		uc.Name = origCrs.Name
	}

	term := core.CleanString(uc.Term)
	if term != "" {
		uc.Term = term
	} else {
		uc.Term = origCrs.Term
	}
	return validate.Struct(uc)
}

// JoinRequest is a student's request to enroll with a course join code.
type JoinRequest struct {
	JoinCode string `json:"join_code" validate:"required"`
}

func (jr *JoinRequest) Validate(validate *validator.Validate) error {
	// codes are stored uppercase
	jr.JoinCode = strings.ToUpper(core.CleanString(jr.JoinCode))
	return validate.Struct(jr)
}
