package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/attendance"
)

var attendanceOrderFields = map[string]bool{"created_at": true, "updated_at": true}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, att *attendance.Attendance) error {
	att.ID = uuid.NewString()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO attendance (id, course_id, lecture_id, user_id, updated_by, update_reason, created_at, updated_at)
		VALUES (:id, :course_id, :lecture_id, :user_id, :updated_by, :update_reason, :created_at, :updated_at)`,
		att,
	)
	if err != nil {
		if isUniqueViolation(err, "attendance_lecture_user_key") {
			return core.NewError(core.KindConflict, "attendance already recorded for this lecture")
		}
		return errors.Wrap(err, "creating attendance")
	}
	return nil
}

func (repo *attendanceRepository) GetAttendanceByID(ctx context.Context, id, courseID string) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := repo.db.GetContext(ctx, &att, `
		SELECT * FROM attendance WHERE id = $1 AND course_id = $2 AND deleted_at IS NULL`,
		id, courseID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrNotFound
		}
		return attendance.Attendance{}, errors.Wrap(err, "getting attendance")
	}
	return att, nil
}

func (repo *attendanceRepository) AttendanceExists(ctx context.Context, lectureID, userID string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM attendance WHERE lecture_id = $1 AND user_id = $2 AND deleted_at IS NULL
		)`,
		lectureID, userID,
	)
	return exists, errors.Wrap(err, "checking attendance existence")
}

func (repo *attendanceRepository) QueryAttendancesByLecture(ctx context.Context, courseID, lectureID string, ordering ...core.DBOrdering) ([]attendance.Attendance, error) {
	q := `SELECT * FROM attendance WHERE course_id = $1 AND lecture_id = $2 AND deleted_at IS NULL`
	if clause := orderByClause(ordering, attendanceOrderFields); clause != "" {
		q += clause
	} else {
		q += ` ORDER BY created_at ASC`
	}

	atts := make([]attendance.Attendance, 0)
	if err := repo.db.SelectContext(ctx, &atts, q, courseID, lectureID); err != nil {
		return nil, errors.Wrap(err, "querying attendances")
	}
	return atts, nil
}

func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, att attendance.Attendance) error {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE attendance
		SET update_reason = :update_reason, updated_by = :updated_by, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL`,
		att,
	)
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.ErrNotFound
	}
	return nil
}

func (repo *attendanceRepository) DeleteAttendance(ctx context.Context, id, courseID string) error {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE attendance SET deleted_at = now()
		WHERE id = $1 AND course_id = $2 AND deleted_at IS NULL`,
		id, courseID,
	)
	if err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.ErrNotFound
	}
	return nil
}

func (repo *attendanceRepository) CountAttendees(ctx context.Context, lectureID string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM attendance WHERE lecture_id = $1 AND deleted_at IS NULL`,
		lectureID,
	)
	if err != nil {
		return 0, errors.Wrap(err, "counting attendees")
	}
	return count, nil
}
