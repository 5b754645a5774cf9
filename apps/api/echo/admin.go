package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/principal"
)

type adminApi struct {
	principals *principal.Service
	courses    *course.Service
	validate   *validator.Validate
}

func registerAdminAPI(g *echo.Group, principals *principal.Service, courses *course.Service, validate *validator.Validate) {
	api := adminApi{principals: principals, courses: courses, validate: validate}

	g.GET("/users", api.queryUsers)
	g.POST("/professors", api.createProfessor)
	g.POST("/students", api.createStudent)
	g.GET("/students/:username/courses", api.queryStudentCourses)

	g.GET("/courses", api.queryCourses)
	g.POST("/courses", api.createCourse)
	g.PUT("/courses/:course/password", api.updateCoursePassword)
	g.DELETE("/courses/:course", api.destroyCourse)

	g.POST("/inscriptions", api.createInscription)
}

// queryUsers lists professors and students.
func (api *adminApi) queryUsers(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	filter := principal.QueryFilter{Roles: []principal.Role{principal.RoleProfessor, principal.RoleStudent}}
	users, err := api.principals.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *adminApi) createProfessor(ctx echo.Context) error {
	return api.createPrincipal(ctx, principal.RoleProfessor)
}

func (api *adminApi) createStudent(ctx echo.Context) error {
	return api.createPrincipal(ctx, principal.RoleStudent)
}

func (api *adminApi) createPrincipal(ctx echo.Context, role principal.Role) error {
	var data principal.NewPrincipal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPrincipal")
	}
	data.Role = role
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.principals.Create(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == principal.ErrUsernameExists {
			return errUsernameExists
		}
		return errors.Wrapf(err, "creating %s", role)
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *adminApi) queryStudentCourses(ctx echo.Context) error {
	c := ctx.Request().Context()
	student, err := api.principals.GetStudent(c, ctx.Param("username"))
	if err != nil {
		if errors.Cause(err) == principal.ErrNotFound {
			return errStudentNotFound
		}
		return errors.Wrap(err, "finding student")
	}

	courses, err := api.courses.StudentCourses(c, student.ID)
	if err != nil {
		return errors.Wrap(err, "querying student courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *adminApi) queryCourses(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.courses.QueryAll(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *adminApi) createCourse(ctx echo.Context) error {
	admin, err := getContextPrincipal(ctx, api.principals)
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

	crs, err := api.courses.Create(ctx.Request().Context(), admin, data)
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrNameExists:
			return errCourseNameExists
		case course.ErrProfessorNotFound:
			return errProfessorNotFound
		}
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *adminApi) createInscription(ctx echo.Context) error {
	admin, err := getContextPrincipal(ctx, api.principals)
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

	ins, err := api.courses.Enroll(ctx.Request().Context(), admin, data)
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrStudentNotFound:
			return errStudentNotFound
		case course.ErrNotFound:
			return errCourseNotFound
		case course.ErrAlreadyEnrolled:
			return echo.NewHTTPError(http.StatusConflict, "The student is already enrolled in this course.")
		}
		return errors.Wrap(err, "creating inscription")
	}
	return ctx.JSON(http.StatusOK, ins)
}

func (api *adminApi) updateCoursePassword(ctx echo.Context) error {
	admin, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	var data AdminCoursePasswordRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminCoursePasswordRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	name := ctx.Param("course")
	if err = api.courses.ChangePassword(ctx.Request().Context(), admin, name, course.ChangePassword{New: data.Password}); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errCourseNotFound
		}
		return errors.Wrap(err, "updating course password")
	}
	return ctx.JSON(http.StatusOK, StatusResponse{
		StatusCode: http.StatusOK,
		Detail:     fmt.Sprintf("Password of the course %s updated.", name),
	})
}

func (api *adminApi) destroyCourse(ctx echo.Context) error {
	admin, err := getContextPrincipal(ctx, api.principals)
	if err != nil {
		return err
	}

	msg, err := api.courses.Delete(ctx.Request().Context(), admin, ctx.Param("course"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errCourseNotFound
		}
		return errors.Wrap(err, "deleting course")
	}
	return ctx.JSON(http.StatusOK, StatusResponse{StatusCode: http.StatusOK, Detail: msg})
}
