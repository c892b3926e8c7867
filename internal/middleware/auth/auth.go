package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/todo_service/internal/service"
	"github.com/Skotchmaster/todo_service/internal/tokens"
)

// Gate resolves a request token to a live user record and either attaches the
// identity to the echo context or rejects the request. Returning the HTTP
// error from the middleware is what stops the chain: downstream handlers are
// never reached after a rejection.
type Gate struct {
	Svc *service.AuthService
}

func NewGate(svc *service.AuthService) *Gate {
	return &Gate{Svc: svc}
}

// TokenFromRequest extracts the session token, cookie first, then the
// Authorization header.
func TokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if v, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return v
	}
	return ""
}

func sessionHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, tokens.ErrExpired):
		return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
	case errors.Is(err, tokens.ErrInvalid):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	case errors.Is(err, tokens.ErrNoSecret):
		return echo.NewHTTPError(http.StatusInternalServerError, "server configuration error")
	case errors.Is(err, service.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (g *Gate) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := TokenFromRequest(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}

		sess, err := g.Svc.GetSession(c.Request().Context(), token)
		if err != nil {
			return sessionHTTPError(err)
		}

		c.Set("userID", sess.ID)
		c.Set("username", sess.Username)
		c.Set("isAdmin", sess.IsAdmin)
		return next(c)
	}
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		isAdmin, ok := c.Get("isAdmin").(bool)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		if !isAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
		}
		return next(c)
	}
}

// SessionFromContext rebuilds the identity the gate attached. ok is false when
// the request never passed Authenticate.
func SessionFromContext(c echo.Context) (service.Session, bool) {
	id, ok := c.Get("userID").(uint)
	if !ok {
		return service.Session{}, false
	}
	username, _ := c.Get("username").(string)
	isAdmin, _ := c.Get("isAdmin").(bool)
	return service.Session{ID: id, Username: username, IsAdmin: isAdmin}, true
}
