package lecture

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

// Lecture is a single course meeting. Its attendance-code fields are null
// until the lecture is activated, exactly once, by course staff.
type Lecture struct {
	ID              string      `json:"id" db:"id"`
	CourseID        string      `json:"course_id" db:"course_id"`
	Date            time.Time   `json:"date" db:"date"`
	Code            null.String `json:"code" db:"code"`
	CodeGeneratedAt null.Time   `json:"code_generated_at" db:"code_generated_at"`
	CodeExpiresAt   null.Time   `json:"code_expires_at" db:"code_expires_at"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"` // UTC
	DeletedAt       null.Time   `json:"-" db:"deleted_at"`
}

// Activated reports whether the one-shot activation has ever happened.
// Once true, it never becomes false again; the code is never regenerated.
func (l Lecture) Activated() bool {
	return l.CodeExpiresAt.Valid
}

// CodeActive reports whether the attendance code is redeemable at `now`.
func (l Lecture) CodeActive(now time.Time) bool {
	return l.CodeExpiresAt.Valid && !now.After(l.CodeExpiresAt.Time)
}

// NewLecture contains information needed to create a new Lecture.
type NewLecture struct {
	Date time.Time `json:"date" validate:"required"`
}

func (nl *NewLecture) Validate(validate *validator.Validate) error {
	return validate.Struct(nl)
}

// UpdateLecture defines what information may be provided to modify an existing Lecture.
// Code fields are deliberately absent: the code lifecycle only moves through activation.
type UpdateLecture struct {
	Date time.Time `json:"date" validate:"required"`
}

func (ul *UpdateLecture) Validate(validate *validator.Validate) error {
	return validate.Struct(ul)
}
