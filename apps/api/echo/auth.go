package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/auth"
	"github.com/trezcool/academia/core/principal"
)

const (
	contextClaimsKey    = "claims"
	contextPrincipalKey = "principal"
)

var roleDenials = map[principal.Role]string{
	principal.RoleAdmin:     "You're not an admin.",
	principal.RoleProfessor: "You're not a professor.",
	principal.RoleStudent:   "You're not a student.",
}

type authApi struct {
	svc      *auth.Service
	validate *validator.Validate
}

func registerAuthAPI(e *echo.Echo, svc *auth.Service, validate *validator.Validate) {
	api := authApi{svc: svc, validate: validate}

	e.POST("/token", api.login)
}

// login expects a form-encoded username and password.
func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	token, err := api.svc.Login(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		if errors.Cause(err) == auth.ErrAuthenticationFailed {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "logging in")
	}
	return ctx.JSON(http.StatusOK, token)
}

// authMiddleware decodes the bearer token and stores its claims in the echo.Context.
func authMiddleware(tokens *auth.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			parts := strings.SplitN(ctx.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], auth.TokenType) || strings.TrimSpace(parts[1]) == "" {
				return errUnauthenticated
			}

			claims, err := tokens.Decode(strings.TrimSpace(parts[1]))
			if err != nil {
				return &echo.HTTPError{Code: http.StatusUnauthorized, Message: errUnauthenticated.Message, Internal: err}
			}
			ctx.Set(contextClaimsKey, *claims)
			return next(ctx)
		}
	}
}

// roleMiddleware loads the authenticated principal and only lets the given role through.
// It must run after authMiddleware.
func roleMiddleware(role principal.Role, svc *principal.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			p, err := getContextPrincipal(ctx, svc)
			if err != nil {
				return err
			}
			if p.Role != role {
				return echo.NewHTTPError(http.StatusForbidden, roleDenials[role])
			}
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (auth.Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(auth.Claims); ok {
		return claims, nil
	}
	return auth.Claims{}, errUnauthenticated
}

// getContextPrincipal loads (once per request) the principal the token was issued to.
func getContextPrincipal(ctx echo.Context, svc *principal.Service) (principal.Principal, error) {
	if p, ok := ctx.Get(contextPrincipalKey).(principal.Principal); ok {
		return p, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return principal.Principal{}, err
	}
	id, err := claims.PrincipalID()
	if err != nil {
		return principal.Principal{}, errUnauthenticated
	}

	p, err := svc.Get(ctx.Request().Context(), id, claims.Role)
	if err != nil {
		if errors.Cause(err) == principal.ErrNotFound { // deleted since the token was issued
			return principal.Principal{}, errUnauthenticated
		}
		return principal.Principal{}, errors.Wrap(err, "finding principal by ID")
	}
	ctx.Set(contextPrincipalKey, p)
	return p, nil
}

type LoginRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
