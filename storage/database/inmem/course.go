package inmemdb

import (
	"context"
	"sort"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs.ID = repo.db.nextID()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok && !crs.DeletedAt.Valid {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetCourseByJoinCode(ctx context.Context, code string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, crs := range repo.db.courses {
		if crs.JoinCode == code && !crs.DeletedAt.Valid {
			return *crs, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, crs := range repo.db.courses {
		if crs.JoinCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (repo *courseRepository) QueryCoursesByUser(ctx context.Context, userID string) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0)
	for _, enr := range repo.db.enrollments {
		if enr.UserID != userID {
			continue
		}
		if crs, ok := repo.db.courses[enr.CourseID]; ok && !crs.DeletedAt.Valid {
			courses = append(courses, *crs)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if existing, ok := repo.db.courses[crs.ID]; !ok || existing.DeletedAt.Valid {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if crs, ok := repo.db.courses[id]; ok && !crs.DeletedAt.Valid {
		crs.DeletedAt.SetValid(nowUTC())
	}
	return nil
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.enrollments {
		if existing.CourseID == enr.CourseID && existing.UserID == enr.UserID {
			return course.Enrollment{}, course.ErrAlreadyEnrolled
		}
	}
	enr.ID = repo.db.nextID()
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *courseRepository) GetEnrollment(ctx context.Context, userID, courseID string) (course.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, enr := range repo.db.enrollments {
		if enr.UserID == userID && enr.CourseID == courseID {
			return *enr, nil
		}
	}
	return course.Enrollment{}, course.ErrEnrollmentNotFound
}

func (repo *courseRepository) QueryEnrollmentsByCourse(ctx context.Context, courseID string, roles ...string) ([]course.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrs := make([]course.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.CourseID == courseID && roleMatches(enr.Role, roles) {
			enrs = append(enrs, *enr)
		}
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].ID < enrs[j].ID })
	return enrs, nil
}

func (repo *courseRepository) CountEnrollments(ctx context.Context, courseID string, roles ...string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	count := 0
	for _, enr := range repo.db.enrollments {
		if enr.CourseID == courseID && roleMatches(enr.Role, roles) {
			count++
		}
	}
	return count, nil
}

func roleMatches(role string, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
