package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.NewString()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO course (id, name, term, join_code, created_at, updated_at)
		VALUES (:id, :name, :term, :join_code, :created_at, :updated_at)`,
		crs,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var crs course.Course
	err := repo.db.GetContext(ctx, &crs, `SELECT * FROM course WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByJoinCode(ctx context.Context, code string) (course.Course, error) {
	var crs course.Course
	err := repo.db.GetContext(ctx, &crs, `SELECT * FROM course WHERE join_code = $1 AND deleted_at IS NULL`, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course by join code")
	}
	return crs, nil
}

func (repo *courseRepository) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM course WHERE join_code = $1)`, code)
	return exists, errors.Wrap(err, "checking join code")
}

func (repo *courseRepository) QueryCoursesByUser(ctx context.Context, userID string) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	err := repo.db.SelectContext(ctx, &courses, `
		SELECT c.* FROM course c
		JOIN enrollment e ON e.course_id = c.id
		WHERE e.user_id = $1 AND c.deleted_at IS NULL
		ORDER BY c.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE course SET name = :name, term = :term, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL`,
		crs,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `UPDATE course SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	return errors.Wrap(err, "deleting course")
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	enr.ID = uuid.NewString()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO enrollment (id, course_id, user_id, role, created_at)
		VALUES (:id, :course_id, :user_id, :role, :created_at)`,
		enr,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return course.Enrollment{}, course.ErrAlreadyEnrolled
		}
		return course.Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return enr, nil
}

func (repo *courseRepository) GetEnrollment(ctx context.Context, userID, courseID string) (course.Enrollment, error) {
	var enr course.Enrollment
	err := repo.db.GetContext(ctx, &enr, `SELECT * FROM enrollment WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Enrollment{}, course.ErrEnrollmentNotFound
		}
		return course.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	return enr, nil
}

func (repo *courseRepository) QueryEnrollmentsByCourse(ctx context.Context, courseID string, roles ...string) ([]course.Enrollment, error) {
	q := `SELECT * FROM enrollment WHERE course_id = $1`
	args := []interface{}{courseID}
	if len(roles) > 0 {
		for _, role := range roles {
			args = append(args, role)
		}
		q += ` AND role IN (` + inPlaceholders(2, len(roles)) + `)`
	}
	q += ` ORDER BY created_at ASC`

	enrs := make([]course.Enrollment, 0)
	if err := repo.db.SelectContext(ctx, &enrs, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	return enrs, nil
}

func (repo *courseRepository) CountEnrollments(ctx context.Context, courseID string, roles ...string) (int, error) {
	q := `SELECT COUNT(*) FROM enrollment WHERE course_id = $1`
	args := []interface{}{courseID}
	if len(roles) > 0 {
		for _, role := range roles {
			args = append(args, role)
		}
		q += ` AND role IN (` + inPlaceholders(2, len(roles)) + `)`
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting enrollments")
	}
	return count, nil
}
