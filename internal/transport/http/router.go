package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/todo_service/internal/handlers"
	authmw "github.com/Skotchmaster/todo_service/internal/middleware/auth"
)

type Deps struct {
	AuthHandler   *handlers.AuthHandler
	TodoHandler   *handlers.TodoHandler
	SearchHandler *handlers.SearchHandler
	Gate          *authmw.Gate
}

func Register(e *echo.Echo, d *Deps) {
	start := time.Now()

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"message": "OK",
			"data": echo.Map{
				"uptime":    time.Since(start).Seconds(),
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			},
		})
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/session", d.AuthHandler.Session, d.Gate.Authenticate)

	todos := e.Group("/todos", d.Gate.Authenticate)
	todos.GET("", d.TodoHandler.List)
	todos.POST("", d.TodoHandler.Create)
	todos.PUT("/:id", d.TodoHandler.Update)
	todos.DELETE("/:id", d.TodoHandler.Delete, authmw.RequireAdmin)
	todos.GET("/search", d.SearchHandler.Search)
}
