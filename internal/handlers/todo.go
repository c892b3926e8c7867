package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/todo_service/internal/es"
	"github.com/Skotchmaster/todo_service/internal/events"
	"github.com/Skotchmaster/todo_service/internal/logging"
	"github.com/Skotchmaster/todo_service/internal/models"
)

type TodoHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	ES       *elasticsearch.Client
	Index    string
}

func (h *TodoHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "todo_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *TodoHandler) index(c echo.Context, todo *models.Todo) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := es.IndexTodo(ctx, h.ES, h.Index, todo); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *TodoHandler) unindex(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := es.DeleteTodo(ctx, h.ES, h.Index, id); err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
	}
}

func (h *TodoHandler) List(c echo.Context) error {
	var todos []models.Todo
	if err := h.DB.WithContext(c.Request().Context()).Order("id ASC").Find(&todos).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Successfully Queried Todos",
		"data":    todos,
	})
}

func (h *TodoHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "todo_create")

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		l.Warn("create_error", "status", 400)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	todo := models.Todo{Name: req.Name}
	if err := h.DB.WithContext(ctx).Create(&todo).Error; err != nil {
		l.Error("create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.index(c, &todo)
	h.publish(c, map[string]any{
		"type":   "todo_created",
		"userID": c.Get("userID"),
		"todoID": todo.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Successfully Created Todos",
		"data":    todo,
	})
}

func (h *TodoHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "todo_update")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Name   string `json:"name"`
		Status *bool  `json:"status"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		l.Warn("update_error", "status", 400)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var todo models.Todo
	if err := h.DB.WithContext(ctx).First(&todo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "todo not found")
		}
		l.Error("update_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	todo.Name = req.Name
	if req.Status != nil {
		todo.Status = *req.Status
	}
	if err := h.DB.WithContext(ctx).Save(&todo).Error; err != nil {
		l.Error("update_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.index(c, &todo)
	h.publish(c, map[string]any{
		"type":   "todo_updated",
		"userID": c.Get("userID"),
		"todoID": todo.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Successfully Updated Todos",
		"data":    todo,
	})
}

func (h *TodoHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "todo_delete")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var todo models.Todo
	if err := h.DB.WithContext(ctx).First(&todo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "todo not found")
		}
		l.Error("delete_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.DB.WithContext(ctx).Delete(&todo).Error; err != nil {
		l.Error("delete_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.unindex(c, todo.ID)
	h.publish(c, map[string]any{
		"type":   "todo_deleted",
		"userID": c.Get("userID"),
		"todoID": todo.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Successfully Deleted Todos",
		"data":    todo,
	})
}
