package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"verum/academy-app/internal/domain"
	"verum/academy-app/internal/service"

	"github.com/gin-gonic/gin"
)

// MediaHandler holds the media service dependency.
type MediaHandler struct {
	mediaService service.MediaService
	feedService  service.FeedService
}

func NewMediaHandler(mediaService service.MediaService, feedService service.FeedService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, feedService: feedService}
}

// --- Request Structs ---

type MediaUploadURLRequest struct {
	Type        domain.MediaType `json:"type" binding:"required,oneof=video photo"`
	ContentType string           `json:"contentType" binding:"required"`
}

type SubmitMediaRequest struct {
	Type         domain.MediaType     `json:"type" binding:"required,oneof=video photo"`
	Title        string               `json:"title" binding:"required"`
	Category     domain.MediaCategory `json:"category" binding:"required"`
	ObjectKey    string               `json:"objectKey" binding:"required"`
	ThumbnailURL string               `json:"thumbnailUrl"`
	Duration     *string              `json:"duration"`
}

type ReviewRequest struct {
	Decision domain.MediaStatus `json:"decision" binding:"required,oneof=approved rejected"`
	Rating   *float64           `json:"rating"`
	Feedback string             `json:"feedback"`
}

// --- Handler Methods ---

// UploadURL godoc
// @Summary Get a presigned URL for a media upload
// @Description Phase one of the two-phase upload. The client PUTs the asset
// @Description to the returned URL, then submits the object key.
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MediaUploadURLRequest true "Media type and content type"
// @Success 200 {object} service.UploadURLResponse
// @Failure 400 {object} gin.H "Content type does not match the media type"
// @Router /media/upload-url [post]
func (h *MediaHandler) UploadURL(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req MediaUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	resp, err := h.mediaService.UploadURL(c.Request.Context(), userID, req.Type, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrMediaContentType) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL")
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Submit godoc
// @Summary Submit an uploaded asset for review
// @Description Creates a media item in status pending. Phase two of the upload.
// @Tags Media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param media body SubmitMediaRequest true "Media details"
// @Success 201 {object} domain.MediaItem
// @Failure 400 {object} gin.H "Validation error"
// @Router /media [post]
func (h *MediaHandler) Submit(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SubmitMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	item, err := h.mediaService.Submit(c.Request.Context(), userID, service.SubmitMediaInput{
		Type:         req.Type,
		Title:        req.Title,
		Category:     req.Category,
		ObjectKey:    req.ObjectKey,
		ThumbnailURL: req.ThumbnailURL,
		Duration:     req.Duration,
	})
	if err != nil {
		if errors.Is(err, service.ErrMediaValidation) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to submit media")
		}
		return
	}
	c.JSON(http.StatusCreated, item)
}

// MyMedia lists the signed-in athlete's own gallery, every status included.
func (h *MediaHandler) MyMedia(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	items, err := h.mediaService.GetByUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch media")
		return
	}
	c.JSON(http.StatusOK, items)
}

// UserMedia lists another user's gallery. Non-owners see only visible
// items; owners and admins see everything.
func (h *MediaHandler) UserMedia(c *gin.Context) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actorRole, _ := getUserRoleFromContext(c)

	visibleOnly := actorID != targetID && actorRole != domain.RoleAdmin
	items, err := h.feedService.UserFeed(c.Request.Context(), targetID, visibleOnly)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch media")
		return
	}
	c.JSON(http.StatusOK, items)
}

// ToggleLike godoc
// @Summary Toggle the signed-in user's like on a media item
// @Tags Media
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media ID"
// @Success 200 {object} gin.H "liked: resulting state"
// @Failure 404 {object} gin.H "Media not found"
// @Router /media/{id}/like [post]
func (h *MediaHandler) ToggleLike(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	mediaID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	liked, err := h.mediaService.ToggleLike(c.Request.Context(), mediaID, userID)
	if err != nil {
		handleMediaError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// GlobalFeed godoc
// @Summary The community feed of approved and featured media
// @Tags Feed
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum items to return"
// @Success 200 {array} domain.MediaItem
// @Router /feed [get]
func (h *MediaHandler) GlobalFeed(c *gin.Context) {
	limit := intQuery(c, "limit", 0)

	items, err := h.feedService.GlobalFeed(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch feed")
		return
	}
	c.JSON(http.StatusOK, items)
}

// PendingQueue lists the review queue, oldest submissions last.
func (h *MediaHandler) PendingQueue(c *gin.Context) {
	items, err := h.mediaService.GetPending(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch review queue")
		return
	}
	c.JSON(http.StatusOK, items)
}

// Review godoc
// @Summary Review a pending media item (Admin)
// @Description Applies the one-and-only review decision. Re-sending the same
// @Description decision is a no-op; a conflicting decision returns 409.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media ID"
// @Param review body ReviewRequest true "Decision, optional rating and feedback"
// @Success 200 {object} domain.MediaItem
// @Failure 400 {object} gin.H "Invalid decision or rating"
// @Failure 409 {object} gin.H "Already reviewed with a different decision"
// @Router /admin/media/{id}/review [post]
func (h *MediaHandler) Review(c *gin.Context) {
	reviewerID, ok := requireUserID(c)
	if !ok {
		return
	}
	mediaID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	item, err := h.mediaService.Review(c.Request.Context(), reviewerID, mediaID, req.Decision, req.Rating, req.Feedback)
	if err != nil {
		handleMediaError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Promote godoc
// @Summary Promote an approved media item to featured (Admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media ID"
// @Success 200 {object} domain.MediaItem
// @Failure 409 {object} gin.H "Item is not approved"
// @Router /admin/media/{id}/promote [post]
func (h *MediaHandler) Promote(c *gin.Context) {
	mediaID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.mediaService.Promote(c.Request.Context(), mediaID)
	if err != nil {
		handleMediaError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// intQuery reads an optional integer query parameter.
func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func handleMediaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMediaNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMediaValidation),
		errors.Is(err, service.ErrInvalidDecision),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrMediaContentType):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAlreadyReviewed),
		errors.Is(err, service.ErrPromoteNotAllowed):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrReviewWriteFailed):
		abortWithError(c, http.StatusInternalServerError, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
