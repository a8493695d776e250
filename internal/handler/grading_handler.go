package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jamgrade/jamgrade-backend/internal/grading"
	"github.com/jamgrade/jamgrade-backend/internal/middleware"
	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/jamgrade/jamgrade-backend/internal/response"
	"github.com/jamgrade/jamgrade-backend/internal/service"
	"github.com/jamgrade/jamgrade-backend/internal/validator"
)

// GradingHandler handles grading edits, sign-off and session analytics.
type GradingHandler struct {
	sessionService *service.SessionService
	gradingService *service.GradingService
}

// NewGradingHandler creates a new GradingHandler.
func NewGradingHandler(sessionService *service.SessionService, gradingService *service.GradingService) *GradingHandler {
	return &GradingHandler{sessionService: sessionService, gradingService: gradingService}
}

// Update godoc
// PATCH /api/v1/professor/:group_scope/gradings
// Applies point/comment edits, sign-off (sign=true) or unsign (sign=false)
// to one grading.
func (h *GradingHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.UpdateGradingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	updated, err := h.gradingService.Update(c.Request.Context(), claims.Email, &req)
	if err != nil {
		switch {
		case errors.Is(err, grading.ErrAlreadySigned):
			response.Fail(c, http.StatusConflict, response.ErrGradingSigned)
		case errors.Is(err, grading.ErrNotSigned):
			response.Fail(c, http.StatusConflict, response.ErrGradingNotSigned)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, updated)
}

// SignOffAutograded godoc
// POST /api/v1/professor/:group_scope/jam-sessions/:session_id/sign-off-autograded
// Signs every unsigned AUTOGRADED grading in one pass; the response reports
// the outcome per grading.
func (h *GradingHandler) SignOffAutograded(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	session, ok := h.resolveSession(c)
	if !ok {
		return
	}

	results, err := h.gradingService.SignOffAutograded(c.Request.Context(), session.ID, claims.Email)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// Overview godoc
// GET /api/v1/professor/:group_scope/jam-sessions/:session_id/overview
// Session analytics: signed success rate, grading counts, per-question
// success rates and type-specific breakdowns, per-participant scores.
func (h *GradingHandler) Overview(c *gin.Context) {
	session, ok := h.resolveSession(c)
	if !ok {
		return
	}

	overview, err := h.gradingService.BuildOverview(c.Request.Context(), session.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, overview)
}

// ExportCSV godoc
// GET /api/v1/professor/:group_scope/jam-sessions/:session_id/results.csv
// Streams the results table as a semicolon-separated CSV download.
func (h *GradingHandler) ExportCSV(c *gin.Context) {
	session, ok := h.resolveSession(c)
	if !ok {
		return
	}

	content, filename, err := h.gradingService.ExportCSV(c.Request.Context(), session)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(content))
}

func (h *GradingHandler) resolveSession(c *gin.Context) (*model.Session, bool) {
	id, err := uuidParam(c, "session_id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, false
	}

	session, err := h.sessionService.Get(c.Request.Context(), c.Param("group_scope"), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return nil, false
	}
	return session, true
}
