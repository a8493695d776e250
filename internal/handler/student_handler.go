package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jamgrade/jamgrade-backend/internal/answer"
	"github.com/jamgrade/jamgrade-backend/internal/middleware"
	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/jamgrade/jamgrade-backend/internal/phase"
	"github.com/jamgrade/jamgrade-backend/internal/response"
	"github.com/jamgrade/jamgrade-backend/internal/service"
	"github.com/jamgrade/jamgrade-backend/internal/validator"
)

// StudentHandler handles the student-facing jam session endpoints.
type StudentHandler struct {
	sessionService *service.SessionService
	answerService  *service.AnswerService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(sessionService *service.SessionService, answerService *service.AnswerService) *StudentHandler {
	return &StudentHandler{sessionService: sessionService, answerService: answerService}
}

// Join godoc
// POST /api/v1/student/jam-sessions/:session_id/join
func (h *StudentHandler) Join(c *gin.Context) {
	claims := middleware.GetClaims(c)
	sessionID, err := uuidParam(c, "session_id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.Join(c.Request.Context(), sessionID, claims.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrSessionNotInProgress):
			response.Fail(c, http.StatusConflict, response.ErrSessionNotInProgress)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, session)
}

// State godoc
// GET /api/v1/student/jam-sessions/:session_id/state?current_path=...
// Returns the phase, the remaining time and, when the viewer is off the
// canonical route for the phase, a redirect hint. Polled by the client
// between live stream reconnects.
func (h *StudentHandler) State(c *gin.Context) {
	sessionID, err := uuidParam(c, "session_id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	payload := gin.H{
		"phase":  session.Phase,
		"status": session.Status,
	}
	if session.EndAt != nil {
		payload["end_at"] = session.EndAt
		remaining := time.Until(*session.EndAt)
		if remaining < 0 {
			remaining = 0
		}
		payload["remaining_seconds"] = int(remaining.Seconds())
	}
	if currentPath := c.Query("current_path"); currentPath != "" {
		if route, moved := h.sessionService.RedirectHint(session, phase.StudentRoutes, currentPath); moved {
			payload["redirect"] = route
		}
	}
	response.Success(c, http.StatusOK, payload)
}

// ListQuestions godoc
// GET /api/v1/student/jam-sessions/:session_id/questions
// Returns the roster with the student's own answers attached. Solution
// fields are stripped unless the session is FINISHED.
func (h *StudentHandler) ListQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	sessionID, err := uuidParam(c, "session_id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	joined, err := h.sessionService.IsParticipant(c.Request.Context(), sessionID, claims.Email)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !joined {
		response.Fail(c, http.StatusForbidden, response.ErrSessionNotAccessible)
		return
	}

	assocs, err := h.sessionService.ListQuestions(c.Request.Context(), sessionID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	consulting := session.Phase == model.PhaseFinished
	for i := range assocs {
		if !consulting {
			stripSolution(assocs[i].Question)
		}
		payload, err := h.answerService.Get(c.Request.Context(), sessionID, assocs[i].QuestionID, claims.Email)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		if payload != nil {
			assocs[i].Answers = []model.StudentAnswer{{
				UserEmail: claims.Email,
				Status:    model.AnswerStatusSubmitted,
				Payload:   payload,
			}}
		}
	}
	response.Success(c, http.StatusOK, assocs)
}

// SubmitAnswer godoc
// POST /api/v1/student/jam-sessions/:session_id/questions/:question_id/answer
// A null answer deletes the stored answer for this question.
func (h *StudentHandler) SubmitAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	sessionID, err := uuidParam(c, "session_id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	questionID, err := uuidParam(c, "question_id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.answerService.Submit(c.Request.Context(), sessionID, questionID, claims.Email, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrSessionNotInProgress):
			response.Fail(c, http.StatusConflict, response.ErrSessionNotInProgress)
		case errors.Is(err, service.ErrSessionNotAccessible):
			response.Fail(c, http.StatusForbidden, response.ErrSessionNotAccessible)
		case errors.Is(err, answer.ErrInvalidCodeEdit), errors.Is(err, answer.ErrUnknownQuestionType):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, result)
}

// stripSolution removes the fields a student must not see before the
// consultation phase.
func stripSolution(q *model.Question) {
	if q == nil {
		return
	}
	switch q.Type {
	case model.QuestionTypeTrueFalse:
		q.TrueFalse = nil
	case model.QuestionTypeMultipleChoice:
		if q.MultipleChoice != nil {
			options := make([]model.QuestionOption, len(q.MultipleChoice.Options))
			for i, o := range q.MultipleChoice.Options {
				options[i] = model.QuestionOption{ID: o.ID, Text: o.Text}
			}
			q.MultipleChoice = &model.MultipleChoiceQuestion{Options: options}
		}
	case model.QuestionTypeCode:
		if q.Code != nil {
			q.Code.SolutionCode = ""
		}
	case model.QuestionTypeDatabase:
		if q.Database != nil {
			queries := make([]model.DatabaseQuery, len(q.Database.Queries))
			for i, dq := range q.Database.Queries {
				queries[i] = model.DatabaseQuery{Order: dq.Order, Title: dq.Title, TestQuery: dq.TestQuery, Lint: dq.Lint}
			}
			q.Database = &model.DatabaseQuestion{Queries: queries}
		}
	}
}
