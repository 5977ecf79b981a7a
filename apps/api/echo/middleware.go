package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/course"
	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/lecture"
)

const (
	contextCourseKey     = "course"
	contextEnrollmentKey = "enrollment"
	contextLectureKey    = "lecture"
)

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// courseContextMiddleware resolves the `:courseID` URL param and the actor's
// enrollment in it. Non-members get a 404 rather than a 403 so course IDs
// are not probeable. Admins pass through without an enrollment.
func courseContextMiddleware(deps ServerDeps) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, deps.UserSvc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}

			crs, err := deps.CourseSvc.GetByID(ctx.Request().Context(), ctx.Param("courseID"))
			if err != nil {
				if errors.Cause(err) == course.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding course by ID")
			}

			enr, err := deps.CourseSvc.GetEnrollment(ctx.Request().Context(), usr.ID, crs.ID)
			if err != nil {
				if errors.Cause(err) != course.ErrEnrollmentNotFound {
					return errors.Wrap(err, "finding enrollment")
				}
				if !usr.IsAdmin {
					return errHttpNotFound
				}
			} else {
				ctx.Set(contextEnrollmentKey, &enr)
			}

			ctx.Set(contextCourseKey, crs)
			return next(ctx)
		}
	}
}

// staffMiddleware restricts a route to course staff (professor/TA) and admins.
// Must run after courseContextMiddleware.
func staffMiddleware(deps ServerDeps) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, deps.UserSvc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if usr.IsAdmin {
				return next(ctx)
			}
			if enr := getContextEnrollment(ctx); enr != nil && enr.IsStaff() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// lectureContextMiddleware resolves the `:lectureID` URL param within the
// context course. Must run after courseContextMiddleware.
func lectureContextMiddleware(deps ServerDeps) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			crs, err := getContextCourse(ctx)
			if err != nil {
				return err
			}

			lec, err := deps.LectureSvc.GetByID(ctx.Request().Context(), ctx.Param("lectureID"), crs.ID)
			if err != nil {
				if errors.Cause(err) == lecture.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding lecture by ID")
			}

			ctx.Set(contextLectureKey, lec)
			return next(ctx)
		}
	}
}

func getContextCourse(ctx echo.Context) (course.Course, error) {
	if crs, ok := ctx.Get(contextCourseKey).(course.Course); ok {
		return crs, nil
	}
	return course.Course{}, errors.New("course object not found in echo.Context")
}

// getContextEnrollment returns the actor's enrollment in the context course,
// or nil when the actor is an admin outsider.
func getContextEnrollment(ctx echo.Context) *course.Enrollment {
	if enr, ok := ctx.Get(contextEnrollmentKey).(*course.Enrollment); ok {
		return enr
	}
	return nil
}

func getContextLecture(ctx echo.Context) (lecture.Lecture, error) {
	if lec, ok := ctx.Get(contextLectureKey).(lecture.Lecture); ok {
		return lec, nil
	}
	return lecture.Lecture{}, errors.New("lecture object not found in echo.Context")
}
