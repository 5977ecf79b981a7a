// Package inmemdb provides in-memory repository implementations for tests.
package inmemdb

import (
	"strconv"
	"sync"
	"time"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/attendance"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/course"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/lecture"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/user"
)

type DB struct {
	mutex sync.RWMutex

	pkCount     int
	users       map[string]*user.User
	courses     map[string]*course.Course
	enrollments map[string]*course.Enrollment
	lectures    map[string]*lecture.Lecture
	attendances map[string]*attendance.Attendance
}

func NewDB() *DB {
	return &DB{
		users:       make(map[string]*user.User),
		courses:     make(map[string]*course.Course),
		enrollments: make(map[string]*course.Enrollment),
		lectures:    make(map[string]*lecture.Lecture),
		attendances: make(map[string]*attendance.Attendance),
	}
}

// Reset drops all stored data; for tests.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.users = make(map[string]*user.User)
	db.courses = make(map[string]*course.Course)
	db.enrollments = make(map[string]*course.Enrollment)
	db.lectures = make(map[string]*lecture.Lecture)
	db.attendances = make(map[string]*attendance.Attendance)
}

// nextID must be called with the write lock held.
func (db *DB) nextID() string {
	db.pkCount++
	return strconv.Itoa(db.pkCount)
}

func nowUTC() time.Time { return core.NowFunc().UTC() }
