package api

import (
	"errors"
	"fmt"
	"net/http"

	"verum/academy-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileHandler holds the profile service dependency.
type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// --- Request Structs ---

// UpdateProfileRequest uses pointers so that only the fields the client
// actually sent reach the field-level update.
type UpdateProfileRequest struct {
	FullName  *string `json:"fullName"`
	Username  *string `json:"username"`
	AvatarURL *string `json:"avatarUrl"`
	Bio       *string `json:"bio"`
	Position  *string `json:"position"`
	Club      *string `json:"club"`
	Phone     *string `json:"phone"`
	DOB       *string `json:"dob"`

	Physical *struct {
		Height *string `json:"height"`
		Weight *string `json:"weight"`
		Foot   *string `json:"foot"`
		Age    *string `json:"age"`
	} `json:"physical"`

	Stats *struct {
		Matches       *int `json:"matches"`
		Goals         *int `json:"goals"`
		Assists       *int `json:"assists"`
		MinutesPlayed *int `json:"minutesPlayed"`
	} `json:"stats"`
}

// fields flattens the request into the dotted field paths the service
// whitelist understands.
func (r *UpdateProfileRequest) fields() map[string]interface{} {
	out := make(map[string]interface{})
	put := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	put("fullName", r.FullName)
	put("username", r.Username)
	put("avatarUrl", r.AvatarURL)
	put("bio", r.Bio)
	put("position", r.Position)
	put("club", r.Club)
	put("phone", r.Phone)
	put("dob", r.DOB)

	if r.Physical != nil {
		put("physical.height", r.Physical.Height)
		put("physical.weight", r.Physical.Weight)
		put("physical.foot", r.Physical.Foot)
		put("physical.age", r.Physical.Age)
	}
	if r.Stats != nil {
		putInt := func(key string, v *int) {
			if v != nil {
				out[key] = *v
			}
		}
		putInt("stats.matches", r.Stats.Matches)
		putInt("stats.goals", r.Stats.Goals)
		putInt("stats.assists", r.Stats.Assists)
		putInt("stats.minutesPlayed", r.Stats.MinutesPlayed)
	}
	return out
}

type UploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// --- Handler Methods ---

// GetMyProfile godoc
// @Summary Get the signed-in user's profile
// @Description Returns the canonical profile, healing legacy documents on read.
// @Tags Profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Profile not found"
// @Router /profiles/me [get]
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handleProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(profile))
}

// GetProfileByID godoc
// @Summary Get a profile by ID
// @Tags Profiles
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} gin.H "Profile not found"
// @Router /profiles/{id} [get]
func (h *ProfileHandler) GetProfileByID(c *gin.Context) {
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), targetID)
	if err != nil {
		handleProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(profile))
}

// UpdateProfile godoc
// @Summary Update profile fields
// @Description Field-level update. Athletes edit themselves; admins edit anyone.
// @Tags Profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Target user ID"
// @Param profile body UpdateProfileRequest true "Fields to update"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid field"
// @Failure 403 {object} gin.H "Forbidden"
// @Router /profiles/{id} [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}
	actorRole, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not identify user role")
		return
	}
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	fields := req.fields()
	if len(fields) == 0 {
		abortWithError(c, http.StatusBadRequest, "No updatable fields provided")
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), actorID, actorRole, targetID, fields)
	if err != nil {
		handleProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(profile))
}

// AvatarUploadURL godoc
// @Summary Get a presigned URL for an avatar upload
// @Tags Profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UploadURLRequest true "Content type of the image"
// @Success 200 {object} service.UploadURLResponse
// @Failure 400 {object} gin.H "Unsupported content type"
// @Router /profiles/me/avatar-upload-url [post]
func (h *ProfileHandler) AvatarUploadURL(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	resp, err := h.profileService.AvatarUploadURL(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProfileField) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL")
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListAthletes godoc
// @Summary List all athlete profiles (Admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /admin/athletes [get]
func (h *ProfileHandler) ListAthletes(c *gin.Context) {
	athletes, err := h.profileService.ListAthletes(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list athletes")
		return
	}

	resp := make([]UserResponse, 0, len(athletes))
	for i := range athletes {
		resp = append(resp, MapUserToResponse(&athletes[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// --- Shared helpers ---

func handleProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrProfileAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidProfileField):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// requireUserID pulls the authenticated user's ID from the context.
func requireUserID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Could not identify user")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid user ID in token")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseIDParam converts a path parameter to an ObjectID.
func parseIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", name))
		return primitive.NilObjectID, false
	}
	return id, true
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
