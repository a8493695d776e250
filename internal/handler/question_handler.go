package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jamgrade/jamgrade-backend/internal/middleware"
	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/jamgrade/jamgrade-backend/internal/response"
	"github.com/jamgrade/jamgrade-backend/internal/service"
	"github.com/jamgrade/jamgrade-backend/internal/validator"
)

// QuestionHandler handles question bank, question and collection endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// CreateBank godoc
// POST /api/v1/professor/:group_scope/banks
func (h *QuestionHandler) CreateBank(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateBankRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	bank, err := h.questionService.CreateBank(c.Request.Context(), c.Param("group_scope"), claims.Email, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, bank)
}

// ListBanks godoc
// GET /api/v1/professor/:group_scope/banks
func (h *QuestionHandler) ListBanks(c *gin.Context) {
	banks, err := h.questionService.ListBanks(c.Request.Context(), c.Param("group_scope"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, banks)
}

// CreateQuestion godoc
// POST /api/v1/professor/:group_scope/banks/:bank_id/questions
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	bankID, err := uuidParam(c, "bank_id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.CreateQuestion(c.Request.Context(), bankID, &req)
	if err != nil {
		if errors.Is(err, service.ErrMissingVariant) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, question)
}

// ListQuestions godoc
// GET /api/v1/professor/:group_scope/banks/:bank_id/questions
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	bankID, err := uuidParam(c, "bank_id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.questionService.ListQuestions(c.Request.Context(), bankID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, questions)
}

// DeleteQuestion godoc
// DELETE /api/v1/professor/:group_scope/questions/:question_id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID, err := uuidParam(c, "question_id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.DeleteQuestion(c.Request.Context(), questionID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// CreateCollection godoc
// POST /api/v1/professor/:group_scope/collections
func (h *QuestionHandler) CreateCollection(c *gin.Context) {
	var req model.CreateCollectionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	collection, err := h.questionService.CreateCollection(c.Request.Context(), c.Param("group_scope"), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, collection)
}

// ListCollections godoc
// GET /api/v1/professor/:group_scope/collections
func (h *QuestionHandler) ListCollections(c *gin.Context) {
	collections, err := h.questionService.ListCollections(c.Request.Context(), c.Param("group_scope"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, collections)
}

// GetCollection godoc
// GET /api/v1/professor/:group_scope/collections/:collection_id
func (h *QuestionHandler) GetCollection(c *gin.Context) {
	collectionID, err := uuidParam(c, "collection_id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	collection, err := h.questionService.GetCollection(c.Request.Context(), collectionID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, collection)
}

// AddCollectionQuestion godoc
// POST /api/v1/professor/:group_scope/collections/:collection_id/questions
func (h *QuestionHandler) AddCollectionQuestion(c *gin.Context) {
	collectionID, err := uuidParam(c, "collection_id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AddCollectionQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	cq, err := h.questionService.AddCollectionQuestion(c.Request.Context(), collectionID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, cq)
}

// RemoveCollectionQuestion godoc
// DELETE /api/v1/professor/:group_scope/collections/:collection_id/questions/:question_id
func (h *QuestionHandler) RemoveCollectionQuestion(c *gin.Context) {
	collectionID, err := uuidParam(c, "collection_id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	questionID, err := uuidParam(c, "question_id")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.RemoveCollectionQuestion(c.Request.Context(), collectionID, questionID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
