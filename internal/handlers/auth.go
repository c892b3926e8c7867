package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/todo_service/internal/events"
	"github.com/Skotchmaster/todo_service/internal/logging"
	authmw "github.com/Skotchmaster/todo_service/internal/middleware/auth"
	"github.com/Skotchmaster/todo_service/internal/service"
	"github.com/Skotchmaster/todo_service/internal/tokens"
)

type AuthHandler struct {
	Svc          *service.AuthService
	Producer     *events.Producer
	CookieSecure bool
}

func CreateCookie(name, value, path string, expTime time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		MaxAge:   int(time.Until(expTime).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req.Username, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	// Hash and salt never leave the service.
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Registration successful",
		"user": echo.Map{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		case errors.Is(err, tokens.ErrNoSecret):
			return echo.NewHTTPError(http.StatusInternalServerError, "server configuration error")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	c.SetCookie(CreateCookie("token", res.Token, "/", time.Now().Add(tokens.DefaultTTL), h.CookieSecure))

	h.publish(c, map[string]any{
		"type":     "user_logged_in",
		"userID":   res.User.ID,
		"username": res.User.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"user":    res.User,
	})
}

// Session runs behind the gate; it only echoes back the identity the gate
// attached after re-fetching the user record.
func (h *AuthHandler) Session(c echo.Context) error {
	sess, ok := authmw.SessionFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": sess,
	})
}
