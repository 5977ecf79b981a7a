package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/lecture"
)

var lectureOrderFields = map[string]bool{"date": true, "created_at": true}

type lectureRepository struct {
	db *sqlx.DB
}

var _ lecture.Repository = (*lectureRepository)(nil)

func NewLectureRepository(db *sqlx.DB) *lectureRepository {
	return &lectureRepository{db: db}
}

func (repo *lectureRepository) CreateLecture(ctx context.Context, lec lecture.Lecture) (lecture.Lecture, error) {
	lec.ID = uuid.NewString()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO lecture (id, course_id, date, created_at, updated_at)
		VALUES (:id, :course_id, :date, :created_at, :updated_at)`,
		lec,
	)
	if err != nil {
		return lecture.Lecture{}, errors.Wrap(err, "creating lecture")
	}
	return lec, nil
}

func (repo *lectureRepository) getLecture(ctx context.Context, where string, args ...interface{}) (lecture.Lecture, error) {
	var lec lecture.Lecture
	err := repo.db.GetContext(ctx, &lec, `SELECT * FROM lecture WHERE deleted_at IS NULL AND `+where, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return lecture.Lecture{}, lecture.ErrNotFound
		}
		return lecture.Lecture{}, errors.Wrap(err, "getting lecture")
	}
	return lec, nil
}

func (repo *lectureRepository) GetLectureByID(ctx context.Context, id, courseID string) (lecture.Lecture, error) {
	return repo.getLecture(ctx, "id = $1 AND course_id = $2", id, courseID)
}

func (repo *lectureRepository) QueryLecturesByCourse(ctx context.Context, courseID string, ordering []core.DBOrdering) ([]lecture.Lecture, error) {
	q := `SELECT * FROM lecture WHERE course_id = $1 AND deleted_at IS NULL`
	if clause := orderByClause(ordering, lectureOrderFields); clause != "" {
		q += clause
	} else {
		q += ` ORDER BY date ASC`
	}

	lecs := make([]lecture.Lecture, 0)
	if err := repo.db.SelectContext(ctx, &lecs, q, courseID); err != nil {
		return nil, errors.Wrap(err, "querying lectures")
	}
	return lecs, nil
}

func (repo *lectureRepository) UpdateLecture(ctx context.Context, lec lecture.Lecture) (lecture.Lecture, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE lecture SET date = :date, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL`,
		lec,
	)
	if err != nil {
		return lecture.Lecture{}, errors.Wrap(err, "updating lecture")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return lecture.Lecture{}, lecture.ErrNotFound
	}
	return lec, nil
}

func (repo *lectureRepository) DeleteLecture(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `UPDATE lecture SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	return errors.Wrap(err, "deleting lecture")
}

func (repo *lectureRepository) ActiveCodeExists(ctx context.Context, courseID, code string, now time.Time) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM lecture
			WHERE course_id = $1 AND code = $2 AND code_expires_at >= $3 AND deleted_at IS NULL
		)`,
		courseID, code, now,
	)
	return exists, errors.Wrap(err, "checking attendance code")
}

// ActivateLecture is a conditional update: it only matches when the code was
// never set, so two concurrent activations cannot both win.
func (repo *lectureRepository) ActivateLecture(ctx context.Context, id, code string, generatedAt, expiresAt time.Time) (lecture.Lecture, error) {
	var lec lecture.Lecture
	err := repo.db.GetContext(ctx, &lec, `
		UPDATE lecture
		SET code = $2, code_generated_at = $3, code_expires_at = $4, updated_at = $3
		WHERE id = $1 AND code_expires_at IS NULL AND deleted_at IS NULL
		RETURNING *`,
		id, code, generatedAt, expiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return lecture.Lecture{}, lecture.ErrCodeAlreadySet
		}
		return lecture.Lecture{}, errors.Wrap(err, "activating lecture")
	}
	return lec, nil
}

func (repo *lectureRepository) GetLectureByActiveCode(ctx context.Context, courseID, code string, now time.Time) (lecture.Lecture, error) {
	return repo.getLecture(ctx, "course_id = $1 AND code = $2 AND code_expires_at >= $3", courseID, code, now)
}

func (repo *lectureRepository) GetLectureByCode(ctx context.Context, courseID, code string) (lecture.Lecture, error) {
	return repo.getLecture(ctx, "course_id = $1 AND code = $2", courseID, code)
}
