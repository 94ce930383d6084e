package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/quartfeed/internal/middleware"
	"github.com/anonto42/quartfeed/internal/models"
	"github.com/anonto42/quartfeed/internal/repositories"
	"github.com/anonto42/quartfeed/internal/views"
	"github.com/anonto42/quartfeed/pkg/security"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository         repositories.UserRepository
	relationshipRepository repositories.RelationshipRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, relRepo repositories.RelationshipRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo, relationshipRepository: relRepo}
}

// RegisterProfileRoutes registers the browser profile pages. guard is
// applied to every route and should require a signed-in user.
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, guard ...echo.MiddlewareFunc) {
	g.GET("/user/:username", h.Profile, guard...)
	g.GET("/user/:username/followers", h.Followers, guard...)
	g.GET("/user/:username/following", h.Following, guard...)
	g.GET("/users", h.Search, guard...)
}

// RegisterAPIRoutes registers the JSON profile endpoints.
func (h *UserHandler) RegisterAPIRoutes(g *echo.Group) {
	g.GET("/users/:username", h.GetUser)
	g.GET("/users/:username/followers", h.GetFollowers)
	g.GET("/users/:username/following", h.GetFollowing)
}

// Profile shows a user with follow counts and the viewer's relation.
func (h *UserHandler) Profile(c echo.Context) error {
	user, err := h.lookup(c)
	if err != nil {
		return err
	}
	profile, err := h.buildProfile(c.Request().Context(), currentUserID(c), user)
	if err != nil {
		return err
	}
	page := views.Page{Title: "@" + user.Username, Data: profile}
	if profile.Relationship != models.RelationSelf {
		page = withCSRF(c, page)
	}
	return render(c, http.StatusOK, "profile.html", page)
}

func (h *UserHandler) Followers(c echo.Context) error {
	return h.renderList(c, "Followers of @", h.relationshipRepository.GetFollowers)
}

func (h *UserHandler) Following(c echo.Context) error {
	return h.renderList(c, "Followed by @", h.relationshipRepository.GetFollowing)
}

type listFunc func(ctx context.Context, userID uint) ([]models.User, error)

func (h *UserHandler) renderList(c echo.Context, title string, list listFunc) error {
	user, err := h.lookup(c)
	if err != nil {
		return err
	}
	users, err := list(c.Request().Context(), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load users").SetInternal(err)
	}
	return render(c, http.StatusOK, "user_list.html", views.Page{
		Title: title + user.Username,
		Data:  models.ToCompactList(users),
	})
}

type searchResults struct {
	Query string
	Users []models.UserCompact
}

// Search finds users whose name contains q.
func (h *UserHandler) Search(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	results := searchResults{Query: query}
	if security.ContainsMarkup(query) {
		return render(c, http.StatusOK, "users.html", views.Page{
			Title: "Find people",
			Error: "Search may not contain markup",
			Data:  results,
		})
	}
	if query != "" {
		users, err := h.userRepository.SearchUsers(c.Request().Context(), query)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to search users").SetInternal(err)
		}
		results.Users = models.ToCompactList(users)
	}
	return render(c, http.StatusOK, "users.html", views.Page{Title: "Find people", Data: results})
}

// GetUser returns a profile as seen by the token's user.
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.lookup(c)
	if err != nil {
		return err
	}
	profile, err := h.buildProfile(c.Request().Context(), middleware.GetUserID(c), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profile})
}

func (h *UserHandler) GetFollowers(c echo.Context) error {
	return h.listJSON(c, h.relationshipRepository.GetFollowers)
}

func (h *UserHandler) GetFollowing(c echo.Context) error {
	return h.listJSON(c, h.relationshipRepository.GetFollowing)
}

func (h *UserHandler) listJSON(c echo.Context, list listFunc) error {
	user, err := h.lookup(c)
	if err != nil {
		return err
	}
	users, err := list(c.Request().Context(), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load users").SetInternal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": models.ToCompactList(users)})
}

// lookup loads the :username path parameter, answering 404 when unknown.
func (h *UserHandler) lookup(c echo.Context) (*models.User, error) {
	return findUser(c, h.userRepository)
}

func (h *UserHandler) buildProfile(ctx context.Context, viewerID uint, user *models.User) (*models.Profile, error) {
	profile := &models.Profile{UserCompact: user.ToCompact()}

	var err error
	if profile.FollowersCount, err = h.relationshipRepository.GetFollowersCount(ctx, user.ID); err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to count followers").SetInternal(err)
	}
	if profile.FollowingCount, err = h.relationshipRepository.GetFollowingCount(ctx, user.ID); err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to count following").SetInternal(err)
	}

	if viewerID == user.ID {
		profile.Relationship = models.RelationSelf
		return profile, nil
	}

	following, err := h.relationshipRepository.ExistingRelationship(ctx, viewerID, user.ID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to load relationship").SetInternal(err)
	}
	profile.Relationship = models.RelationNotFollowing
	if following {
		profile.Relationship = models.RelationFollowing
	}
	return profile, nil
}

func findUser(c echo.Context, users repositories.UserRepository) (*models.User, error) {
	user, err := users.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to load user").SetInternal(err)
	}
	return user, nil
}
