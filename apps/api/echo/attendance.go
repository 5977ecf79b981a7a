package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/attendance"
)

type attendanceApi struct {
	deps ServerDeps
}

func registerAttendanceAPI(g *echo.Group, deps ServerDeps) {
	api := attendanceApi{deps: deps}

	// self-service: redeem a code without knowing the lecture ID
	ag := g.Group("/attendances")
	ag.POST("", api.createByCode)

	dag := ag.Group("/:id")
	dag.GET("", api.retrieve, staffMiddleware(deps))
	dag.PUT("", api.update, staffMiddleware(deps))
	dag.DELETE("", api.destroy, staffMiddleware(deps))

	// lecture-scoped endpoints
	lg := g.Group("/lectures/:lectureID/attendances", lectureContextMiddleware(deps))
	lg.POST("", api.create)
	lg.GET("", api.query, staffMiddleware(deps))
}

// Handlers

// create records attendance for a known lecture: students self-record with a
// code, staff record anyone without one.
func (api *attendanceApi) create(ctx echo.Context) error {
	lec, err := getContextLecture(ctx)
	if err != nil {
		return err
	}

	var data attendance.NewAttendance
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	att, err := api.deps.AttendanceSvc.Create(ctx.Request().Context(), usr, getContextEnrollment(ctx), lec, data)
	if err != nil {
		attendanceSubmissions.WithLabelValues("rejected").Inc()
		return err
	}
	attendanceSubmissions.WithLabelValues("recorded").Inc()
	return ctx.JSON(http.StatusCreated, att)
}

// createByCode records the actor's own attendance given only a code.
func (api *attendanceApi) createByCode(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	var data attendance.SubmitCode
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitCode")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	att, err := api.deps.AttendanceSvc.CreateByCode(ctx.Request().Context(), usr, crs.ID, data)
	if err != nil {
		attendanceSubmissions.WithLabelValues("rejected").Inc()
		return err
	}
	attendanceSubmissions.WithLabelValues("recorded").Inc()
	return ctx.JSON(http.StatusCreated, att)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	lec, err := getContextLecture(ctx)
	if err != nil {
		return err
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	atts, err := api.deps.AttendanceSvc.QueryByLecture(ctx.Request().Context(), lec.CourseID, lec.ID, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying attendances")
	}
	if atts == nil {
		atts = []attendance.Attendance{}
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	att, err := api.deps.AttendanceSvc.Get(ctx.Request().Context(), ctx.Param("id"), crs.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	att, err := api.deps.AttendanceSvc.Get(ctx.Request().Context(), ctx.Param("id"), crs.ID)
	if err != nil {
		return err
	}

	var data attendance.UpdateAttendance
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAttendance")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	att, err = api.deps.AttendanceSvc.Update(ctx.Request().Context(), att, usr, data)
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	if err = api.deps.AttendanceSvc.Delete(ctx.Request().Context(), ctx.Param("id"), crs.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
