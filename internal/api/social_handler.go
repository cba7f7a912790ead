package api

import (
	"errors"
	"fmt"
	"net/http"

	"verum/academy-app/internal/domain"
	"verum/academy-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SocialHandler holds the social service dependency.
type SocialHandler struct {
	socialService service.SocialService
}

func NewSocialHandler(socialService service.SocialService) *SocialHandler {
	return &SocialHandler{socialService: socialService}
}

// --- Request Structs ---

type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type GrantAwardRequest struct {
	Title  string           `json:"title" binding:"required"`
	Issuer string           `json:"issuer" binding:"required"`
	Date   string           `json:"date" binding:"required"` // YYYY-MM-DD
	Icon   domain.AwardIcon `json:"icon" binding:"required,oneof=trophy medal star"`
}

// --- Handler Methods ---

// ToggleFollow godoc
// @Summary Toggle following another user
// @Tags Social
// @Produce json
// @Security BearerAuth
// @Param id path string true "Target user ID"
// @Success 200 {object} gin.H "following: resulting state"
// @Failure 400 {object} gin.H "Cannot follow yourself"
// @Router /users/{id}/follow [post]
func (h *SocialHandler) ToggleFollow(c *gin.Context) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	following, err := h.socialService.ToggleFollow(c.Request.Context(), actorID, targetID)
	if err != nil {
		if errors.Is(err, service.ErrSelfFollow) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else if errors.Is(err, service.ErrProfileNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to toggle follow")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following})
}

// AddComment godoc
// @Summary Comment on a media item
// @Tags Social
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media ID"
// @Param comment body AddCommentRequest true "Comment text"
// @Success 201 {object} domain.Comment
// @Failure 404 {object} gin.H "Media not found"
// @Router /media/{id}/comments [post]
func (h *SocialHandler) AddComment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	mediaID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	comment, err := h.socialService.AddComment(c.Request.Context(), userID, mediaID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrMediaNotFound), errors.Is(err, service.ErrProfileNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to add comment")
		}
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Comments lists a media item's comments, oldest first.
func (h *SocialHandler) Comments(c *gin.Context) {
	mediaID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	comments, err := h.socialService.CommentsForMedia(c.Request.Context(), mediaID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch comments")
		return
	}
	c.JSON(http.StatusOK, comments)
}

// Notifications lists the signed-in user's notifications, newest first.
func (h *SocialHandler) Notifications(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	items, err := h.socialService.NotificationsForUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}
	c.JSON(http.StatusOK, items)
}

// MarkNotificationRead godoc
// @Summary Mark one of the signed-in user's notifications as read
// @Tags Social
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204 "Marked read"
// @Failure 404 {object} gin.H "Not found or not yours"
// @Router /notifications/{id}/read [post]
func (h *SocialHandler) MarkNotificationRead(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	notificationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.socialService.MarkNotificationRead(c.Request.Context(), userID, notificationID); err != nil {
		if errors.Is(err, service.ErrNotificationOwner) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to mark notification read")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// GrantAward godoc
// @Summary Grant an award to an athlete (Admin)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Athlete user ID"
// @Param award body GrantAwardRequest true "Award details"
// @Success 201 {object} domain.Award
// @Router /admin/users/{id}/awards [post]
func (h *SocialHandler) GrantAward(c *gin.Context) {
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req GrantAwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	award, err := h.socialService.GrantAward(c.Request.Context(), targetID, req.Title, req.Issuer, req.Date, req.Icon)
	if err != nil {
		if errors.Is(err, service.ErrAwardValidation) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to grant award")
		}
		return
	}
	c.JSON(http.StatusCreated, award)
}

// RevokeAward godoc
// @Summary Revoke a previously granted award (Admin)
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Award ID"
// @Success 204
// @Router /admin/awards/{id} [delete]
func (h *SocialHandler) RevokeAward(c *gin.Context) {
	awardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.socialService.RevokeAward(c.Request.Context(), awardID); err != nil {
		if errors.Is(err, service.ErrAwardNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to revoke award")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// Awards lists a user's awards, newest first.
func (h *SocialHandler) Awards(c *gin.Context) {
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	awards, err := h.socialService.AwardsForUser(c.Request.Context(), targetID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch awards")
		return
	}
	c.JSON(http.StatusOK, awards)
}
