package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/apps/api/echo"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/attendance"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/course"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/lecture"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/user"
	emailsvc "github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/services/email"
	logsvc "github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/services/logger"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/storage/database"
	sqlxrepos "github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newServerDeps(
	conf *core.Config,
	logger core.Logger,
	validate *validator.Validate,
	translator ut.Translator,
	usrSvc user.Service,
	crsSvc course.Service,
	lecSvc lecture.Service,
	attSvc attendance.Service,
) echoapi.ServerDeps {
	return echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		UserSvc:       usrSvc,
		CourseSvc:     crsSvc,
		LectureSvc:    lecSvc,
		AttendanceSvc: attSvc,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewCourseRepository, dig.As(new(course.Repository))))
	must(c.Provide(sqlxrepos.NewLectureRepository, dig.As(new(lecture.Repository), new(attendance.LectureStore))))
	must(c.Provide(sqlxrepos.NewAttendanceRepository, dig.As(new(attendance.Repository))))
	must(c.Provide(user.NewService))
	must(c.Provide(course.NewService, dig.As(new(course.Service), new(attendance.EnrollmentResolver))))
	must(c.Provide(lecture.NewService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(newServerDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
