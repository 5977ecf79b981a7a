package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core/lecture"
)

type lectureApi struct {
	deps ServerDeps
}

func registerLectureAPI(g *echo.Group, deps ServerDeps) {
	api := lectureApi{deps: deps}

	lg := g.Group("/lectures")
	lg.POST("", api.create, staffMiddleware(deps))
	lg.GET("", api.query)

	dg := lg.Group("/:lectureID", lectureContextMiddleware(deps))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware(deps))
	dg.DELETE("", api.destroy, staffMiddleware(deps))
	dg.POST("/activate", api.activate, staffMiddleware(deps))
	dg.GET("/stats", api.stats, staffMiddleware(deps))
}

// Handlers

func (api *lectureApi) create(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	var data lecture.NewLecture
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLecture")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	lec, err := api.deps.LectureSvc.Create(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating lecture")
	}
	return ctx.JSON(http.StatusCreated, lec)
}

func (api *lectureApi) query(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	lecs, err := api.deps.LectureSvc.QueryByCourse(ctx.Request().Context(), crs.ID, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying lectures")
	}
	if lecs == nil {
		lecs = []lecture.Lecture{}
	}
	return ctx.JSON(http.StatusOK, lecs)
}

func (api *lectureApi) retrieve(ctx echo.Context) error {
	lec, err := getContextLecture(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lec)
}

func (api *lectureApi) update(ctx echo.Context) error {
	lec, err := getContextLecture(ctx)
	if err != nil {
		return err
	}

	var data lecture.UpdateLecture
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLecture")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	lec, err = api.deps.LectureSvc.Update(ctx.Request().Context(), lec, data)
	if err != nil {
		return errors.Wrap(err, "updating lecture")
	}
	return ctx.JSON(http.StatusOK, lec)
}

func (api *lectureApi) destroy(ctx echo.Context) error {
	lec, err := getContextLecture(ctx)
	if err != nil {
		return err
	}
	if err = api.deps.LectureSvc.Delete(ctx.Request().Context(), lec.ID); err != nil {
		return errors.Wrap(err, "deleting lecture")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// activate opens (or returns) the lecture's one-time attendance window.
func (api *lectureApi) activate(ctx echo.Context) error {
	lec, err := getContextLecture(ctx)
	if err != nil {
		return err
	}

	lec, err = api.deps.LectureSvc.Activate(ctx.Request().Context(), lec)
	if err != nil {
		return err
	}
	lectureActivations.Inc()
	return ctx.JSON(http.StatusOK, lec)
}

func (api *lectureApi) stats(ctx echo.Context) error {
	lec, err := getContextLecture(ctx)
	if err != nil {
		return err
	}

	stats, err := api.deps.AttendanceSvc.Stats(ctx.Request().Context(), lec)
	if err != nil {
		return errors.Wrap(err, "computing attendance stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
