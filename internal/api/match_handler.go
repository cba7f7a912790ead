package api

import (
	"errors"
	"fmt"
	"net/http"

	"verum/academy-app/internal/domain"
	"verum/academy-app/internal/service"

	"github.com/gin-gonic/gin"
)

// MatchHandler holds the match service dependency.
type MatchHandler struct {
	matchService service.MatchService
}

func NewMatchHandler(matchService service.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// --- Request Structs ---

type CreateMatchRequest struct {
	Opponent   string            `json:"opponent" binding:"required"`
	Date       string            `json:"date" binding:"required"` // YYYY-MM-DD
	Time       string            `json:"time"`                    // HH:mm
	Location   string            `json:"location"`
	Type       domain.MatchType  `json:"type" binding:"required"`
	HomeOrAway domain.HomeOrAway `json:"homeOrAway" binding:"required,oneof=Home Away"`
}

type LogResultRequest struct {
	Result  string  `json:"result" binding:"required"` // e.g. "3-1"
	Minutes int     `json:"minutes"`
	Goals   int     `json:"goals"`
	Assists int     `json:"assists"`
	Rating  float64 `json:"rating"`
}

// --- Handler Methods ---

// Create godoc
// @Summary Add a fixture to the signed-in user's agenda
// @Tags Matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param match body CreateMatchRequest true "Fixture details"
// @Success 201 {object} domain.MatchEvent
// @Failure 400 {object} gin.H "Validation error"
// @Router /matches [post]
func (h *MatchHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	event, err := h.matchService.Create(c.Request.Context(), userID, service.CreateMatchInput{
		Opponent:   req.Opponent,
		Date:       req.Date,
		Time:       req.Time,
		Location:   req.Location,
		Type:       req.Type,
		HomeOrAway: req.HomeOrAway,
	})
	if err != nil {
		handleMatchError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// Agenda godoc
// @Summary The signed-in user's fixtures in chronological order
// @Tags Matches
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.MatchEvent
// @Router /matches [get]
func (h *MatchHandler) Agenda(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	events, err := h.matchService.AgendaForUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch agenda")
		return
	}
	c.JSON(http.StatusOK, events)
}

// AllMatches is the admin view over every user's schedule.
func (h *MatchHandler) AllMatches(c *gin.Context) {
	events, err := h.matchService.AllMatches(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch matches")
		return
	}
	c.JSON(http.StatusOK, events)
}

// LogResult godoc
// @Summary Log the result of a scheduled fixture
// @Description Completes the fixture exactly once and rolls the athlete's
// @Description numbers into the profile stat counters.
// @Tags Matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Param result body LogResultRequest true "Result and performance numbers"
// @Success 200 {object} domain.MatchEvent
// @Failure 409 {object} gin.H "Result already logged"
// @Router /matches/{id}/result [post]
func (h *MatchHandler) LogResult(c *gin.Context) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}
	actorRole, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not identify user role")
		return
	}
	matchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req LogResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	event, err := h.matchService.LogResult(c.Request.Context(), actorID, actorRole, matchID, req.Result, domain.MatchStats{
		Minutes: req.Minutes,
		Goals:   req.Goals,
		Assists: req.Assists,
		Rating:  req.Rating,
	})
	if err != nil {
		handleMatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// Delete godoc
// @Summary Remove a fixture from the agenda
// @Tags Matches
// @Security BearerAuth
// @Param id path string true "Match ID"
// @Success 204 "Deleted"
// @Failure 403 {object} gin.H "Forbidden"
// @Router /matches/{id} [delete]
func (h *MatchHandler) Delete(c *gin.Context) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}
	actorRole, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not identify user role")
		return
	}
	matchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.matchService.Delete(c.Request.Context(), actorID, actorRole, matchID); err != nil {
		handleMatchError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func handleMatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMatchValidation),
		errors.Is(err, service.ErrInvalidMatchRating):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMatchAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrMatchAlreadyLogged):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
