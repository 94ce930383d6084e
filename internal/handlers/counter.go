package handlers

import (
	"net/http"

	"github.com/anonto42/quartfeed/internal/repositories"
	"github.com/anonto42/quartfeed/internal/views"
	"github.com/labstack/echo/v4"
)

// CounterHandler serves the counter app
type CounterHandler struct {
	counterRepository repositories.CounterRepository
}

func NewCounterHandler(counterRepo repositories.CounterRepository) *CounterHandler {
	return &CounterHandler{counterRepository: counterRepo}
}

// RegisterCounterRoutes registers the counter page
func (h *CounterHandler) RegisterCounterRoutes(g *echo.Group) {
	g.GET("/", h.Count)
}

// Count records a hit and shows the running total.
func (h *CounterHandler) Count(c echo.Context) error {
	hits, err := h.counterRepository.Increment(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update counter").SetInternal(err)
	}
	return c.Render(http.StatusOK, "counter.html", views.Page{Data: hits})
}
