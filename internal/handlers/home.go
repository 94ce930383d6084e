package handlers

import (
	"net/http"

	"github.com/anonto42/quartfeed/internal/models"
	"github.com/anonto42/quartfeed/internal/repositories"
	"github.com/anonto42/quartfeed/internal/views"
	"github.com/labstack/echo/v4"
)

// HomeHandler serves the landing page
type HomeHandler struct {
	relationshipRepository repositories.RelationshipRepository
}

func NewHomeHandler(relRepo repositories.RelationshipRepository) *HomeHandler {
	return &HomeHandler{relationshipRepository: relRepo}
}

// RegisterHomeRoutes registers the landing page
func (h *HomeHandler) RegisterHomeRoutes(g *echo.Group) {
	g.GET("/", h.Home)
}

// Home greets everyone and lists followed accounts for signed-in users.
func (h *HomeHandler) Home(c echo.Context) error {
	page := views.Page{}
	if userID := currentUserID(c); userID != 0 {
		following, err := h.relationshipRepository.GetFollowing(c.Request().Context(), userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load following").SetInternal(err)
		}
		page.Data = models.ToCompactList(following)
	}
	return render(c, http.StatusOK, "home.html", page)
}
