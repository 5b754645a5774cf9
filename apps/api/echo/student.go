package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/coursework"
	"github.com/trezcool/academia/core/principal"
)

type studentApi struct {
	principals *principal.Service
	courses    *course.Service
	coursework *coursework.Service
	validate   *validator.Validate
}

func registerStudentAPI(g *echo.Group, principals *principal.Service, courses *course.Service, cw *coursework.Service, validate *validator.Validate) {
	api := studentApi{principals: principals, courses: courses, coursework: cw, validate: validate}

	g.GET("/me", api.me)
	g.GET("/courses", api.queryCourses)
	g.GET("/courses/:course/tasks", api.queryTasks)
	g.POST("/inscriptions", api.createInscription)
	g.GET("/notes", api.queryNotes)
}

func (api *studentApi) me(ctx echo.Context) error {
	student, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, student)
}

func (api *studentApi) queryCourses(ctx echo.Context) error {
	student, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	courses, err := api.courses.StudentCourses(ctx.Request().Context(), student.ID)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *studentApi) createInscription(ctx echo.Context) error {
	student, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	var data SelfInscriptionRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SelfInscriptionRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	ins, err := api.courses.SelfEnroll(ctx.Request().Context(), student, data.CourseID, data.Password)
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrNotFound:
			return errCourseNotFound
		case course.ErrInvalidPassword:
			return echo.NewHTTPError(http.StatusConflict, "Invalid password.")
		case course.ErrAlreadyEnrolled:
			return echo.NewHTTPError(http.StatusConflict, "You are already enrolled in this course.")
		}
		return errors.Wrap(err, "creating inscription")
	}
	return ctx.JSON(http.StatusOK, ins)
}

func (api *studentApi) queryTasks(ctx echo.Context) error {
	student, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	tasks, err := api.coursework.CourseTasks(ctx.Request().Context(), student, ctx.Param("course"))
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrNotFound:
			return errCourseNotFound
		case coursework.ErrNotEnrolled:
			return echo.NewHTTPError(http.StatusForbidden, "You are not enrolled in this course.")
		}
		return errors.Wrap(err, "querying tasks")
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *studentApi) queryNotes(ctx echo.Context) error {
	student, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	notes, err := api.coursework.StudentNotes(ctx.Request().Context(), student)
	if err != nil {
		return errors.Wrap(err, "querying notes")
	}
	return ctx.JSON(http.StatusOK, notes)
}
