package lecture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
)

type fakeRepo struct {
	lectures      map[string]Lecture // by ID
	activations   int
	activeCodes   map[string]bool
	raceOnce      bool // first ActivateLecture loses the race
	racedActivate func(r *fakeRepo, id string)
}

func newFakeRepo(lectures ...Lecture) *fakeRepo {
	r := &fakeRepo{lectures: map[string]Lecture{}, activeCodes: map[string]bool{}}
	for _, lec := range lectures {
		r.lectures[lec.ID] = lec
	}
	return r
}

func (r *fakeRepo) CreateLecture(ctx context.Context, lec Lecture) (Lecture, error) {
	lec.ID = "lec1"
	r.lectures[lec.ID] = lec
	return lec, nil
}

func (r *fakeRepo) GetLectureByID(ctx context.Context, id, courseID string) (Lecture, error) {
	lec, ok := r.lectures[id]
	if !ok || lec.CourseID != courseID {
		return Lecture{}, ErrNotFound
	}
	return lec, nil
}

func (r *fakeRepo) QueryLecturesByCourse(ctx context.Context, courseID string, ordering []core.DBOrdering) ([]Lecture, error) {
	var res []Lecture
	for _, lec := range r.lectures {
		if lec.CourseID == courseID {
			res = append(res, lec)
		}
	}
	return res, nil
}

func (r *fakeRepo) UpdateLecture(ctx context.Context, lec Lecture) (Lecture, error) {
	r.lectures[lec.ID] = lec
	return lec, nil
}

func (r *fakeRepo) DeleteLecture(ctx context.Context, id string) error {
	delete(r.lectures, id)
	return nil
}

func (r *fakeRepo) ActiveCodeExists(ctx context.Context, courseID, code string, now time.Time) (bool, error) {
	return r.activeCodes[code], nil
}

func (r *fakeRepo) ActivateLecture(ctx context.Context, id, code string, generatedAt, expiresAt time.Time) (Lecture, error) {
	if r.raceOnce {
		r.raceOnce = false
		if r.racedActivate != nil {
			r.racedActivate(r, id)
		}
		return Lecture{}, ErrCodeAlreadySet
	}
	lec, ok := r.lectures[id]
	if !ok {
		return Lecture{}, ErrNotFound
	}
	if lec.CodeExpiresAt.Valid {
		return Lecture{}, ErrCodeAlreadySet
	}
	lec.Code = null.StringFrom(code)
	lec.CodeGeneratedAt = null.TimeFrom(generatedAt)
	lec.CodeExpiresAt = null.TimeFrom(expiresAt)
	r.lectures[id] = lec
	r.activations++
	return lec, nil
}

func (r *fakeRepo) GetLectureByActiveCode(ctx context.Context, courseID, code string, now time.Time) (Lecture, error) {
	for _, lec := range r.lectures {
		if lec.CourseID == courseID && lec.Code.Valid && lec.Code.String == code && lec.CodeActive(now) {
			return lec, nil
		}
	}
	return Lecture{}, ErrNotFound
}

func (r *fakeRepo) GetLectureByCode(ctx context.Context, courseID, code string) (Lecture, error) {
	for _, lec := range r.lectures {
		if lec.CourseID == courseID && lec.Code.Valid && lec.Code.String == code {
			return lec, nil
		}
	}
	return Lecture{}, ErrNotFound
}

func testConfig() *core.Config {
	conf := new(core.Config)
	conf.Attendance.CodeTTL = 5 * time.Minute
	conf.Attendance.CodeLength = 6
	return conf
}

func frozenNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = orig })
}

func TestServiceActivate(t *testing.T) {
	now := time.Date(2021, 10, 4, 10, 0, 0, 0, time.UTC)
	frozenNow(t, now)
	ctx := context.Background()

	t.Run("first activation opens a 5 minute window", func(t *testing.T) {
		lec := Lecture{ID: "lec1", CourseID: "crs1"}
		repo := newFakeRepo(lec)
		svc := NewService(repo, testConfig())

		got, err := svc.Activate(ctx, lec)
		require.NoError(t, err)
		assert.True(t, got.Code.Valid)
		assert.Len(t, got.Code.String, 6)
		assert.Regexp(t, "^[A-Z0-9]{6}$", got.Code.String)
		assert.Equal(t, now, got.CodeGeneratedAt.Time)
		assert.Equal(t, now.Add(5*time.Minute), got.CodeExpiresAt.Time)
	})

	t.Run("activating while active returns the same code", func(t *testing.T) {
		lec := Lecture{ID: "lec1", CourseID: "crs1"}
		repo := newFakeRepo(lec)
		svc := NewService(repo, testConfig())

		first, err := svc.Activate(ctx, lec)
		require.NoError(t, err)
		second, err := svc.Activate(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, first.Code, second.Code)
		assert.Equal(t, first.CodeExpiresAt, second.CodeExpiresAt)
		assert.Equal(t, 1, repo.activations)
	})

	t.Run("expired lecture cannot be reactivated", func(t *testing.T) {
		lec := Lecture{
			ID:            "lec1",
			CourseID:      "crs1",
			Code:          null.StringFrom("AB12CD"),
			CodeExpiresAt: null.TimeFrom(now.Add(-time.Second)),
		}
		repo := newFakeRepo(lec)
		svc := NewService(repo, testConfig())

		_, err := svc.Activate(ctx, lec)
		assert.Equal(t, ErrAlreadyActivated, err)
		assert.Equal(t, 0, repo.activations)
	})

	t.Run("window boundary is inclusive", func(t *testing.T) {
		lec := Lecture{
			ID:            "lec1",
			CourseID:      "crs1",
			Code:          null.StringFrom("AB12CD"),
			CodeExpiresAt: null.TimeFrom(now),
		}
		repo := newFakeRepo(lec)
		svc := NewService(repo, testConfig())

		got, err := svc.Activate(ctx, lec)
		require.NoError(t, err)
		assert.Equal(t, "AB12CD", got.Code.String)
	})

	t.Run("losing the activation race adopts the winner's code", func(t *testing.T) {
		lec := Lecture{ID: "lec1", CourseID: "crs1"}
		repo := newFakeRepo(lec)
		repo.raceOnce = true
		repo.racedActivate = func(r *fakeRepo, id string) {
			winner := r.lectures[id]
			winner.Code = null.StringFrom("WINNER")
			winner.CodeGeneratedAt = null.TimeFrom(now)
			winner.CodeExpiresAt = null.TimeFrom(now.Add(5 * time.Minute))
			r.lectures[id] = winner
		}
		svc := NewService(repo, testConfig())

		got, err := svc.Activate(ctx, lec)
		require.NoError(t, err)
		assert.Equal(t, "WINNER", got.Code.String)
	})

	t.Run("losing the race to an already expired window fails", func(t *testing.T) {
		lec := Lecture{ID: "lec1", CourseID: "crs1"}
		repo := newFakeRepo(lec)
		repo.raceOnce = true
		repo.racedActivate = func(r *fakeRepo, id string) {
			winner := r.lectures[id]
			winner.Code = null.StringFrom("STALE0")
			winner.CodeGeneratedAt = null.TimeFrom(now.Add(-10 * time.Minute))
			winner.CodeExpiresAt = null.TimeFrom(now.Add(-5 * time.Minute))
			r.lectures[id] = winner
		}
		svc := NewService(repo, testConfig())

		_, err := svc.Activate(ctx, lec)
		assert.Equal(t, ErrAlreadyActivated, err)
	})

	t.Run("regenerates on collision with an active code", func(t *testing.T) {
		lec := Lecture{ID: "lec1", CourseID: "crs1"}
		repo := newFakeRepo(lec)
		svc := NewService(repo, testConfig()).(*service)

		// exhaust a few collisions before a free code shows up
		calls := 0
		repoWrap := &collideRepo{fakeRepo: repo, collisions: 3, calls: &calls}
		svc.repo = repoWrap

		got, err := svc.Activate(ctx, lec)
		require.NoError(t, err)
		assert.True(t, got.Code.Valid)
		assert.Equal(t, 4, calls)
	})
}

type collideRepo struct {
	*fakeRepo
	collisions int
	calls      *int
}

func (r *collideRepo) ActiveCodeExists(ctx context.Context, courseID, code string, now time.Time) (bool, error) {
	*r.calls++
	if *r.calls <= r.collisions {
		return true, nil
	}
	return false, nil
}
