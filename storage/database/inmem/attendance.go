package inmemdb

import (
	"context"
	"sort"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, att *attendance.Attendance) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.attendances {
		if existing.LectureID == att.LectureID && existing.UserID == att.UserID && !existing.DeletedAt.Valid {
			return core.NewError(core.KindConflict, "attendance already recorded for this lecture")
		}
	}
	att.ID = repo.db.nextID()
	stored := *att
	repo.db.attendances[att.ID] = &stored
	return nil
}

func (repo *attendanceRepository) GetAttendanceByID(ctx context.Context, id, courseID string) (attendance.Attendance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if att, ok := repo.db.attendances[id]; ok && att.CourseID == courseID && !att.DeletedAt.Valid {
		return *att, nil
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) AttendanceExists(ctx context.Context, lectureID, userID string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, att := range repo.db.attendances {
		if att.LectureID == lectureID && att.UserID == userID && !att.DeletedAt.Valid {
			return true, nil
		}
	}
	return false, nil
}

func (repo *attendanceRepository) QueryAttendancesByLecture(ctx context.Context, courseID, lectureID string, ordering ...core.DBOrdering) ([]attendance.Attendance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	atts := make([]attendance.Attendance, 0)
	for _, att := range repo.db.attendances {
		if att.CourseID == courseID && att.LectureID == lectureID && !att.DeletedAt.Valid {
			atts = append(atts, *att)
		}
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].ID < atts[j].ID })
	return atts, nil
}

func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, att attendance.Attendance) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if existing, ok := repo.db.attendances[att.ID]; !ok || existing.DeletedAt.Valid {
		return attendance.ErrNotFound
	}
	repo.db.attendances[att.ID] = &att
	return nil
}

func (repo *attendanceRepository) DeleteAttendance(ctx context.Context, id, courseID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	att, ok := repo.db.attendances[id]
	if !ok || att.CourseID != courseID || att.DeletedAt.Valid {
		return attendance.ErrNotFound
	}
	att.DeletedAt.SetValid(nowUTC())
	return nil
}

func (repo *attendanceRepository) CountAttendees(ctx context.Context, lectureID string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	count := 0
	for _, att := range repo.db.attendances {
		if att.LectureID == lectureID && !att.DeletedAt.Valid {
			count++
		}
	}
	return count, nil
}
