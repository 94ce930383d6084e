package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/quartfeed/internal/middleware"
	"github.com/anonto42/quartfeed/internal/models"
	"github.com/anonto42/quartfeed/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	relationshipRepository repositories.RelationshipRepository
	userRepository         repositories.UserRepository
	csrfEnabled            bool
	log                    *zap.Logger
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(relRepo repositories.RelationshipRepository, userRepo repositories.UserRepository, csrfEnabled bool, log *zap.Logger) *FollowHandler {
	return &FollowHandler{
		relationshipRepository: relRepo,
		userRepository:         userRepo,
		csrfEnabled:            csrfEnabled,
		log:                    log,
	}
}

// RegisterFollowRoutes registers the browser follow forms behind guard.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, guard ...echo.MiddlewareFunc) {
	g.POST("/add_friend/:username", h.AddFriend, guard...)
	g.POST("/remove_friend/:username", h.RemoveFriend, guard...)
}

// RegisterAPIRoutes registers the JSON follow endpoints.
func (h *FollowHandler) RegisterAPIRoutes(g *echo.Group) {
	g.POST("/users/:username/follow", h.FollowUser)
	g.DELETE("/users/:username/follow", h.UnfollowUser)
}

// AddFriend makes the signed-in user follow :username.
func (h *FollowHandler) AddFriend(c echo.Context) error {
	target, err := findUser(c, h.userRepository)
	if err != nil {
		return err
	}
	profileURL := "/user/" + target.Username

	if !validCSRF(c, h.csrfEnabled, c.FormValue("csrf_token")) {
		return redirectWithFlash(c, profileURL, msgInvalidPost)
	}

	viewerID := currentUserID(c)
	if viewerID == target.ID {
		return redirectWithFlash(c, profileURL, "You can't follow yourself")
	}

	created, err := h.follow(c.Request().Context(), viewerID, target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to follow user").SetInternal(err)
	}
	if !created {
		return redirectWithFlash(c, profileURL, "Already following "+target.Username)
	}
	return redirectWithFlash(c, profileURL, "Followed "+target.Username)
}

// RemoveFriend makes the signed-in user stop following :username.
func (h *FollowHandler) RemoveFriend(c echo.Context) error {
	target, err := findUser(c, h.userRepository)
	if err != nil {
		return err
	}
	profileURL := "/user/" + target.Username

	if !validCSRF(c, h.csrfEnabled, c.FormValue("csrf_token")) {
		return redirectWithFlash(c, profileURL, msgInvalidPost)
	}

	removed, err := h.unfollow(c.Request().Context(), currentUserID(c), target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to unfollow user").SetInternal(err)
	}
	if !removed {
		return redirectWithFlash(c, profileURL, "Not following "+target.Username)
	}
	return redirectWithFlash(c, profileURL, "Unfollowed "+target.Username)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := middleware.GetUserID(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := findUser(c, h.userRepository)
	if err != nil {
		return err
	}
	if currentUserID == target.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	created, err := h.follow(c.Request().Context(), currentUserID, target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to follow user").SetInternal(err)
	}
	if !created {
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := middleware.GetUserID(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	target, err := findUser(c, h.userRepository)
	if err != nil {
		return err
	}

	removed, err := h.unfollow(c.Request().Context(), currentUserID, target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to unfollow user").SetInternal(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "Not following this user")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}

// follow reports false when fm already follows to.
func (h *FollowHandler) follow(ctx context.Context, fmUserID, toUserID uint) (bool, error) {
	exists, err := h.relationshipRepository.ExistingRelationship(ctx, fmUserID, toUserID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	err = h.relationshipRepository.CreateRelationship(ctx, &models.Relationship{FmUserID: fmUserID, ToUserID: toUserID})
	if errors.Is(err, repositories.ErrAlreadyFollowing) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	h.log.Info("User followed", zap.Uint("fm_user_id", fmUserID), zap.Uint("to_user_id", toUserID))
	return true, nil
}

// unfollow reports false when there was nothing to remove.
func (h *FollowHandler) unfollow(ctx context.Context, fmUserID, toUserID uint) (bool, error) {
	err := h.relationshipRepository.DeleteRelationship(ctx, fmUserID, toUserID)
	if errors.Is(err, repositories.ErrRelationshipNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	h.log.Info("User unfollowed", zap.Uint("fm_user_id", fmUserID), zap.Uint("to_user_id", toUserID))
	return true, nil
}
