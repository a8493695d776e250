package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/jamgrade/jamgrade-backend/internal/phase"
	"github.com/jamgrade/jamgrade-backend/internal/response"
	"github.com/jamgrade/jamgrade-backend/internal/service"
	"github.com/jamgrade/jamgrade-backend/internal/validator"
)

// SessionHandler handles the professor-facing jam session endpoints.
type SessionHandler struct {
	sessionService *service.SessionService
	gradingService *service.GradingService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, gradingService *service.GradingService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, gradingService: gradingService}
}

// Create godoc
// POST /api/v1/professor/:group_scope/jam-sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), c.Param("group_scope"), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, session)
}

// List godoc
// GET /api/v1/professor/:group_scope/jam-sessions?page=1&per_page=20
func (h *SessionHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	sessions, total, err := h.sessionService.List(c.Request.Context(), c.Param("group_scope"), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}
	response.SuccessWithPagination(c, http.StatusOK, sessions, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}

// Get godoc
// GET /api/v1/professor/:group_scope/jam-sessions/:session_id?current_path=...
// The optional current_path yields a redirect hint when the viewer is not on
// the canonical route for the session's phase.
func (h *SessionHandler) Get(c *gin.Context) {
	session, ok := h.resolveSession(c)
	if !ok {
		return
	}

	payload := gin.H{"session": session}
	if currentPath := c.Query("current_path"); currentPath != "" {
		if route, moved := h.sessionService.RedirectHint(session, phase.ProfessorRoutes, currentPath); moved {
			payload["redirect"] = route
		}
	}
	response.Success(c, http.StatusOK, payload)
}

// Update godoc
// PATCH /api/v1/professor/:group_scope/jam-sessions/:session_id
// Phase changes are validated against the lifecycle and trigger their side
// effects (timer start, autograde fan-out).
func (h *SessionHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.Update(c.Request.Context(), c.Param("group_scope"), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrInvalidPhaseChange):
			response.Fail(c, http.StatusConflict, response.ErrInvalidPhaseChange)
		case errors.Is(err, service.ErrNoQuestions):
			response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, session)
}

// Delete godoc
// DELETE /api/v1/professor/:group_scope/jam-sessions/:session_id
func (h *SessionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.sessionService.Delete(c.Request.Context(), c.Param("group_scope"), id); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ListStudents godoc
// GET /api/v1/professor/:group_scope/jam-sessions/:session_id/students
func (h *SessionHandler) ListStudents(c *gin.Context) {
	session, ok := h.resolveSession(c)
	if !ok {
		return
	}

	students, err := h.sessionService.ListStudents(c.Request.Context(), session.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, students)
}

// ListQuestions godoc
// GET /api/v1/professor/:group_scope/jam-sessions/:session_id/questions?with_gradings=true
// with_gradings merges participants, answers and gradings into each
// association: one StudentAnswer per participant, MISSING rows included.
func (h *SessionHandler) ListQuestions(c *gin.Context) {
	session, ok := h.resolveSession(c)
	if !ok {
		return
	}

	if c.Query("with_gradings") == "true" {
		assocs, _, err := h.gradingService.QuestionsWithGradings(c.Request.Context(), session.ID)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		response.Success(c, http.StatusOK, assocs)
		return
	}

	assocs, err := h.sessionService.ListQuestions(c.Request.Context(), session.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, assocs)
}

// addSessionQuestionRequest attaches a question to the session roster.
type addSessionQuestionRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Points     int       `json:"points" binding:"min=0"`
}

// AddQuestion godoc
// POST /api/v1/professor/:group_scope/jam-sessions/:session_id/questions
func (h *SessionHandler) AddQuestion(c *gin.Context) {
	session, ok := h.resolveSession(c)
	if !ok {
		return
	}

	var req addSessionQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.AddQuestion(c.Request.Context(), session.ID, req.QuestionID, req.Points); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{})
}

// UpdateQuestion godoc
// PATCH /api/v1/professor/:group_scope/jam-sessions/:session_id/questions/:question_id
func (h *SessionHandler) UpdateQuestion(c *gin.Context) {
	session, ok := h.resolveSession(c)
	if !ok {
		return
	}
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SessionQuestionUpdateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.UpdateQuestion(c.Request.Context(), session.ID, questionID, &req); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// resolveSession parses :session_id and checks group ownership.
func (h *SessionHandler) resolveSession(c *gin.Context) (*model.Session, bool) {
	id, err := uuid.Parse(c.Param("session_id"))
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
