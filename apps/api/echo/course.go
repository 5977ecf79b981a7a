package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/course"
)

type courseApi struct {
	deps ServerDeps
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{deps: deps}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.POST("/join", api.join)

	// detail endpoints, scoped to a course the actor belongs to
	dg := cg.Group("/:courseID", courseContextMiddleware(deps))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware(deps))
	dg.DELETE("", api.destroy, staffMiddleware(deps))
	dg.GET("/roster", api.roster)

	registerLectureAPI(dg, deps)
	registerAttendanceAPI(dg, deps)
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	crs, err := api.deps.CourseSvc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	courses, err := api.deps.CourseSvc.QueryByUser(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) join(ctx echo.Context) error {
	var data course.JoinRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	enr, err := api.deps.CourseSvc.Join(ctx.Request().Context(), usr, data.JoinCode)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(crs, api.deps.Validate); err != nil {
		return err
	}

	crs, err = api.deps.CourseSvc.Update(ctx.Request().Context(), crs, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}
	if err = api.deps.CourseSvc.Delete(ctx.Request().Context(), crs.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) roster(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	enrs, err := api.deps.CourseSvc.Roster(ctx.Request().Context(), crs.ID)
	if err != nil {
		return errors.Wrap(err, "querying roster")
	}
	if enrs == nil {
		enrs = []course.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}
