package handlers

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/todo_service/internal/service/search"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func calculatePage(page, size int) (from, limit, current int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return (page - 1) * size, size, page
}

func (h *SearchHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query")
	}
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search unavailable")
	}

	from, limit, page := calculatePage(
		parseIntDefault(c.QueryParam("page"), 1),
		parseIntDefault(c.QueryParam("size"), 10),
	)

	total, todos, err := search.Search(c.Request().Context(), h.ES, h.Index, query, from, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Successfully Queried Todos",
		"data":    todos,
		"meta": echo.Map{
			"total": total,
			"page":  page,
			"size":  limit,
		},
	})
}
