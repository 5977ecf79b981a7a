package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/apps/api/echo"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/attendance"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/course"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/lecture"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/user"
	emailsvc "github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/services/email"
	inmemdb "github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/storage/database/inmem"
)

var (
	conf *core.Config
	db   *inmemdb.DB
	app  Server

	usrRepo user.Repository
	crsRepo course.Repository
	lecRepo lecture.Repository
	attRepo attendance.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errPermDenied   = httpErr{Error: "permission denied"}
	errNotFoundResp = httpErr{Error: "not found"}
)

func TestMain(m *testing.M) {
	conf = &core.Config{
		TestMode:        true,
		Env:             "TEST",
		AppName:         "Conductor",
		SecretKey:       []byte("~&t0p$s3crit!"),
		FrontendBaseURL: "https://conductor.test",
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		},
		Attendance: core.AttendanceConfig{
			CodeTTL:    5 * time.Minute,
			CodeLength: 6,
		},
	}
	logger := testLogger{std: log.New(os.Stdout, "TEST : ", log.LstdFlags)}

	// set up DB & repos
	db = inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)
	crsRepo = inmemdb.NewCourseRepository(db)
	lectures := inmemdb.NewLectureRepository(db)
	lecRepo = lectures
	attRepo = inmemdb.NewAttendanceRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	crsSvc := course.NewService(crsRepo)
	lecSvc := lecture.NewService(lecRepo, conf)
	attSvc := attendance.NewService(attRepo, lectures, crsSvc)

	// set up validators & translations
	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)
	core.ParseEmailTemplates(conf, logger)

	// set up server
	app = NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		UserSvc:       usrSvc,
		CourseSvc:     crsSvc,
		LectureSvc:    lecSvc,
		AttendanceSvc: attSvc,
	})

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type testLogger struct {
	std *log.Logger
}

var _ core.Logger = (*testLogger)(nil)

func (l testLogger) Enable(bool)                        {}
func (l testLogger) Debug(msg string, _ ...interface{}) { l.std.Println("DEBUG:", msg) }
func (l testLogger) Info(msg string, _ ...interface{})  { l.std.Println("INFO:", msg) }
func (l testLogger) Warn(msg string, _ ...interface{})  { l.std.Println("WARN:", msg) }
func (l testLogger) Error(msg string, _ ...interface{}) { l.std.Println("ERROR:", msg) }
func (l testLogger) Fatal(msg string, _ ...interface{}) { l.std.Fatalln("FATAL:", msg) }

func resetDB(t *testing.T) {
	t.Helper()
	db.Reset()
}

// Fixtures

func createUser(t *testing.T, name, uname, email, pwd string, isActive, isAdmin bool) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  isActive,
		IsAdmin:   isAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("SetPassword(): %v", err)
		}
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func createCourse(t *testing.T, name, term, joinCode string) course.Course {
	t.Helper()

	now := time.Now().UTC()
	crs, err := crsRepo.CreateCourse(context.Background(), course.Course{
		Name:      name,
		Term:      term,
		JoinCode:  joinCode,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCourse(): %v", err)
	}
	return crs
}

func enroll(t *testing.T, usr user.User, crs course.Course, role string) course.Enrollment {
	t.Helper()

	enr, err := crsRepo.CreateEnrollment(context.Background(), course.Enrollment{
		CourseID:  crs.ID,
		UserID:    usr.ID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateEnrollment(): %v", err)
	}
	return enr
}

func createLecture(t *testing.T, crs course.Course, date time.Time) lecture.Lecture {
	t.Helper()

	now := time.Now().UTC()
	lec, err := lecRepo.CreateLecture(context.Background(), lecture.Lecture{
		CourseID:  crs.ID,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateLecture(): %v", err)
	}
	return lec
}

func activateLecture(t *testing.T, lec lecture.Lecture, code string, generatedAt time.Time) lecture.Lecture {
	t.Helper()

	lec, err := lecRepo.ActivateLecture(context.Background(), lec.ID, code, generatedAt, generatedAt.Add(conf.Attendance.CodeTTL))
	if err != nil {
		t.Fatalf("ActivateLecture(): %v", err)
	}
	return lec
}

func recordAttendance(t *testing.T, usr user.User, lec lecture.Lecture) attendance.Attendance {
	t.Helper()

	now := time.Now().UTC()
	att := attendance.Attendance{
		CourseID:  lec.CourseID,
		LectureID: lec.ID,
		UserID:    usr.ID,
		UpdatedBy: usr.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := attRepo.CreateAttendance(context.Background(), &att); err != nil {
		t.Fatalf("CreateAttendance(): %v", err)
	}
	return att
}

// HTTP helpers

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
