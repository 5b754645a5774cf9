package echoapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/coursework"
	"github.com/trezcool/academia/core/principal"
)

type professorApi struct {
	principals *principal.Service
	courses    *course.Service
	coursework *coursework.Service
	validate   *validator.Validate
}

func registerProfessorAPI(g *echo.Group, principals *principal.Service, courses *course.Service, cw *coursework.Service, validate *validator.Validate) {
	api := professorApi{principals: principals, courses: courses, coursework: cw, validate: validate}

	g.GET("/me", api.me)

	g.GET("/courses", api.queryCourses)
	g.POST("/courses", api.createCourse)
	g.GET("/courses/:course/students", api.queryStudents)
	g.PUT("/courses/:course/password", api.updateCoursePassword)
	g.DELETE("/courses/:course", api.destroyCourse)

	g.POST("/inscriptions", api.createInscription)

	g.GET("/courses/:course/tasks", api.queryTasks)
	g.POST("/courses/:course/tasks", api.createTask)
	g.PUT("/tasks/:task/notes", api.gradeTask)
}

func (api *professorApi) me(ctx echo.Context) error {
	prof, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *professorApi) queryCourses(ctx echo.Context) error {
	prof, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	courses, err := api.courses.QueryByProfessor(ctx.Request().Context(), prof.ID)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *professorApi) createCourse(ctx echo.Context) error {
	prof, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	var data course.NewCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.courses.Create(ctx.Request().Context(), prof, data)
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrNameExists:
			return errCourseNameExists
		case course.ErrProfessorNotFound:
			return errProfessorNotFound
		case course.ErrNotOwner:
			return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf("The ID '%d' is not your ID.", data.ProfessorID))
		}
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *professorApi) queryStudents(ctx echo.Context) error {
	prof, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	students, err := api.courses.Students(ctx.Request().Context(), prof, ctx.Param("course"))
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrNotFound:
			return errCourseNotFound
		case course.ErrNotOwner:
			return echo.NewHTTPError(http.StatusForbidden, "This is not your course, you can't see the students.")
		}
		return errors.Wrap(err, "querying course students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *professorApi) updateCoursePassword(ctx echo.Context) error {
	prof, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	var data CoursePasswordRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CoursePasswordRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	name := ctx.Param("course")
	cp := course.ChangePassword{Current: data.Password, New: data.NewPassword}
	if err = api.courses.ChangePassword(ctx.Request().Context(), prof, name, cp); err != nil {
		switch errors.Cause(err) {
		case course.ErrNotFound:
			return errCourseNotFound
		case course.ErrNotOwner:
			return echo.NewHTTPError(http.StatusForbidden, "This is not your course.")
		case course.ErrInvalidPassword:
			return echo.NewHTTPError(http.StatusConflict, "Incorrect password of the course.")
		}
		return errors.Wrap(err, "updating course password")
	}
	return ctx.JSON(http.StatusOK, StatusResponse{
		StatusCode: http.StatusOK,
		Detail:     fmt.Sprintf("Password of the course %s updated.", name),
	})
}

func (api *professorApi) destroyCourse(ctx echo.Context) error {
	prof, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	name := ctx.Param("course")
	msg, err := api.courses.Delete(ctx.Request().Context(), prof, name)
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrNotFound:
			return errCourseNotFound
		case course.ErrNotOwner:
			return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf("The course '%s' is not your course, you can't delete it.", name))
		}
		return errors.Wrap(err, "deleting course")
	}
	return ctx.JSON(http.StatusOK, StatusResponse{StatusCode: http.StatusOK, Detail: msg})
}

func (api *professorApi) createInscription(ctx echo.Context) error {
	prof, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	var data course.NewInscription
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInscription")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	ins, err := api.courses.Enroll(ctx.Request().Context(), prof, data)
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrStudentNotFound:
			return errStudentNotFound
		case course.ErrNotFound:
			return errCourseNotFound
		case course.ErrNotOwner:
			return echo.NewHTTPError(http.StatusForbidden, "This is not your course, you can't inscribe a student.")
		case course.ErrAlreadyEnrolled:
			return echo.NewHTTPError(http.StatusConflict, "The student is already enrolled in this course.")
		}
		return errors.Wrap(err, "creating inscription")
	}
	return ctx.JSON(http.StatusOK, ins)
}

func (api *professorApi) queryTasks(ctx echo.Context) error {
	prof, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	tasks, err := api.coursework.CourseTasks(ctx.Request().Context(), prof, ctx.Param("course"))
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrNotFound:
			return errCourseNotFound
		case course.ErrNotOwner:
			return echo.NewHTTPError(http.StatusForbidden, "This is not your course.")
		}
		return errors.Wrap(err, "querying tasks")
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *professorApi) createTask(ctx echo.Context) error {
	prof, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	var data coursework.NewTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	task, err := api.coursework.CreateTask(ctx.Request().Context(), prof, ctx.Param("course"), data)
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrNotFound:
			return errCourseNotFound
		case course.ErrNotOwner:
			return echo.NewHTTPError(http.StatusForbidden, "This is not your course.")
		}
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusOK, task)
}

func (api *professorApi) gradeTask(ctx echo.Context) error {
	prof, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	taskID, err := strconv.Atoi(ctx.Param("task"))
	if err != nil {
		return errTaskNotFound
	}

	var data coursework.NewNote
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNote")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	note, err := api.coursework.Grade(ctx.Request().Context(), prof, taskID, data)
	if err != nil {
		switch errors.Cause(err) {
		case coursework.ErrTaskNotFound:
			return errTaskNotFound
		case course.ErrNotFound:
			return errCourseNotFound
		case course.ErrStudentNotFound:
			return errStudentNotFound
		case course.ErrNotOwner:
			return echo.NewHTTPError(http.StatusForbidden, "This is not your course.")
		case coursework.ErrNotEnrolled:
			return echo.NewHTTPError(http.StatusConflict, "The student is not enrolled in this course.")
		}
		return errors.Wrap(err, "grading task")
	}
	return ctx.JSON(http.StatusOK, note)
}
