package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/lecture"
)

type lectureRepository struct {
	db *DB
}

var _ lecture.Repository = (*lectureRepository)(nil)

func NewLectureRepository(db *DB) *lectureRepository {
	return &lectureRepository{db: db}
}

func (repo *lectureRepository) CreateLecture(ctx context.Context, lec lecture.Lecture) (lecture.Lecture, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	lec.ID = repo.db.nextID()
	repo.db.lectures[lec.ID] = &lec
	return lec, nil
}

func (repo *lectureRepository) GetLectureByID(ctx context.Context, id, courseID string) (lecture.Lecture, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if lec, ok := repo.db.lectures[id]; ok && lec.CourseID == courseID && !lec.DeletedAt.Valid {
		return *lec, nil
	}
	return lecture.Lecture{}, lecture.ErrNotFound
}

func (repo *lectureRepository) QueryLecturesByCourse(ctx context.Context, courseID string, ordering []core.DBOrdering) ([]lecture.Lecture, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	lecs := make([]lecture.Lecture, 0)
	for _, lec := range repo.db.lectures {
		if lec.CourseID == courseID && !lec.DeletedAt.Valid {
			lecs = append(lecs, *lec)
		}
	}
	sort.Slice(lecs, func(i, j int) bool { return lecs[i].Date.Before(lecs[j].Date) })
	return lecs, nil
}

func (repo *lectureRepository) UpdateLecture(ctx context.Context, lec lecture.Lecture) (lecture.Lecture, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if existing, ok := repo.db.lectures[lec.ID]; !ok || existing.DeletedAt.Valid {
		return lecture.Lecture{}, lecture.ErrNotFound
	}
	repo.db.lectures[lec.ID] = &lec
	return lec, nil
}

func (repo *lectureRepository) DeleteLecture(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if lec, ok := repo.db.lectures[id]; ok && !lec.DeletedAt.Valid {
		lec.DeletedAt.SetValid(nowUTC())
	}
	return nil
}

func (repo *lectureRepository) ActiveCodeExists(ctx context.Context, courseID, code string, now time.Time) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, lec := range repo.db.lectures {
		if lec.CourseID == courseID && !lec.DeletedAt.Valid &&
			lec.Code.Valid && lec.Code.String == code && lec.CodeActive(now) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *lectureRepository) ActivateLecture(ctx context.Context, id, code string, generatedAt, expiresAt time.Time) (lecture.Lecture, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	lec, ok := repo.db.lectures[id]
	if !ok || lec.DeletedAt.Valid {
		return lecture.Lecture{}, lecture.ErrNotFound
	}
	if lec.CodeExpiresAt.Valid {
		return lecture.Lecture{}, lecture.ErrCodeAlreadySet
	}
	lec.Code = null.StringFrom(code)
	lec.CodeGeneratedAt = null.TimeFrom(generatedAt)
	lec.CodeExpiresAt = null.TimeFrom(expiresAt)
	lec.UpdatedAt = generatedAt
	return *lec, nil
}

func (repo *lectureRepository) GetLectureByActiveCode(ctx context.Context, courseID, code string, now time.Time) (lecture.Lecture, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, lec := range repo.db.lectures {
		if lec.CourseID == courseID && !lec.DeletedAt.Valid &&
			lec.Code.Valid && lec.Code.String == code && lec.CodeActive(now) {
			return *lec, nil
		}
	}
	return lecture.Lecture{}, lecture.ErrNotFound
}

func (repo *lectureRepository) GetLectureByCode(ctx context.Context, courseID, code string) (lecture.Lecture, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, lec := range repo.db.lectures {
		if lec.CourseID == courseID && !lec.DeletedAt.Valid && lec.Code.Valid && lec.Code.String == code {
			return *lec, nil
		}
	}
	return lecture.Lecture{}, lecture.ErrNotFound
}
