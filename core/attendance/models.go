package attendance

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
)

// Attendance is one recorded presence of a user at a lecture.
// UpdatedBy differs from UserID when staff recorded it on the user's behalf.
type Attendance struct {
	ID           string      `json:"id" db:"id"`
	CourseID     string      `json:"course_id" db:"course_id"`
	LectureID    string      `json:"lecture_id" db:"lecture_id"`
	UserID       string      `json:"user_id" db:"user_id"`
	UpdatedBy    string      `json:"updated_by" db:"updated_by"`
	UpdateReason null.String `json:"update_reason" db:"update_reason"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"` // UTC
	DeletedAt    null.Time   `json:"-" db:"deleted_at"`
}

// NewAttendance is an explicit creation request (staff entry or self-recording).
type NewAttendance struct {
	UserID       string `json:"user_id" validate:"required"`
	Code         string `json:"code"`
	UpdateReason string `json:"update_reason"`
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	na.UserID = core.CleanString(na.UserID)
	na.Code = strings.ToUpper(core.CleanString(na.Code))
	na.UpdateReason = core.CleanString(na.UpdateReason)
	return validate.Struct(na)
}

// SubmitCode is a student's self-service redemption; the lecture is found by code.
type SubmitCode struct {
	Code string `json:"code" validate:"required"`
}

func (sc *SubmitCode) Validate(validate *validator.Validate) error {
	sc.Code = strings.ToUpper(core.CleanString(sc.Code))
	return validate.Struct(sc)
}

// UpdateAttendance defines what staff may change on an existing record.
type UpdateAttendance struct {
	UpdateReason *string `json:"update_reason"`
}

func (ua *UpdateAttendance) Validate(validate *validator.Validate) error {
	if ua.UpdateReason != nil {
		reason := core.CleanString(*ua.UpdateReason)
		ua.UpdateReason = &reason
	}
	return validate.Struct(ua)
}

// Stats summarizes attendance for one lecture.
// The denominator counts enrolled students and team leads only.
type Stats struct {
	LectureID            string  `json:"lecture_id"`
	AttendeeCount        int     `json:"attendee_count"`
	EnrolledCount        int     `json:"enrolled_count"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}
