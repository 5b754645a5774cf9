package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/principal"
)

var (
	errUnauthenticated      = echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
	errUsernameExists       = echo.NewHTTPError(http.StatusConflict, "Username already exists.")
	errCourseNameExists     = echo.NewHTTPError(http.StatusConflict, "Name already exists.")
	errCourseNotFound       = echo.NewHTTPError(http.StatusNotFound, "Course not found.")
	errStudentNotFound      = echo.NewHTTPError(http.StatusNotFound, "Student not found.")
	errProfessorNotFound    = echo.NewHTTPError(http.StatusNotFound, "Professor ID not found.")
	errTaskNotFound         = echo.NewHTTPError(http.StatusNotFound, "Task not found.")

	msgDuplicateEntry = "Duplicate Entry"
	msgIntegrityError = "Integrity error"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.IntegrityError: // constraint violated at write time
			code = http.StatusBadRequest
			message = msgIntegrityError
			if origErr.Duplicate {
				message = msgDuplicateEntry
			}
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var p principal.Principal
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				p.ID, _ = claims.PrincipalID()
				p.Username = claims.Username
				p.Role = claims.Role
			}
			logger.Error(msg, errors.Wrap(err, msg), p)

			if ctx.Echo().Debug {
				message = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		} else if m, ok := message.(map[string]string); ok {
			message = echo.Map{"error": m}
		}

		if code == http.StatusUnauthorized {
			ctx.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
