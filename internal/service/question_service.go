package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/jamgrade/jamgrade-backend/internal/repository"
)

// ErrMissingVariant is returned when the payload variant does not match the
// declared question type.
var ErrMissingVariant = errors.New("question payload does not match the declared type")

// QuestionService orchestrates question banks, questions and collections.
type QuestionService struct {
	questionRepo   *repository.QuestionRepository
	collectionRepo *repository.CollectionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, collectionRepo *repository.CollectionRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo, collectionRepo: collectionRepo}
}

// CreateBank inserts a question bank owned by the professor.
func (s *QuestionService) CreateBank(ctx context.Context, groupScope, ownerEmail string, req *model.CreateBankRequest) (*model.QuestionBank, error) {
	bank := &model.QuestionBank{GroupScope: groupScope, Label: req.Label, OwnerEmail: ownerEmail}
	if err := s.questionRepo.CreateBank(ctx, bank); err != nil {
		return nil, fmt.Errorf("create bank: %w", err)
	}
	return bank, nil
}

// ListBanks retrieves the banks of a group scope.
func (s *QuestionService) ListBanks(ctx context.Context, groupScope string) ([]model.QuestionBank, error) {
	return s.questionRepo.ListBanks(ctx, groupScope)
}

// CreateQuestion validates the variant against the declared type and inserts
// the question.
func (s *QuestionService) CreateQuestion(ctx context.Context, bankID uuid.UUID, req *model.CreateQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		BankID:        bankID,
		Title:         req.Title,
		Content:       req.Content,
		Type:          req.Type,
		DefaultPoints: req.DefaultPoints,

		TrueFalse:      req.TrueFalse,
		MultipleChoice: req.MultipleChoice,
		Essay:          req.Essay,
		Code:           req.Code,
		Web:            req.Web,
		Database:       req.Database,
	}
	if !q.HasVariant() {
		return nil, ErrMissingVariant
	}
	if err := s.questionRepo.CreateQuestion(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// GetQuestion retrieves one question.
func (s *QuestionService) GetQuestion(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return s.questionRepo.GetQuestion(ctx, id)
}

// ListQuestions retrieves the questions of a bank.
func (s *QuestionService) ListQuestions(ctx context.Context, bankID uuid.UUID) ([]model.Question, error) {
	return s.questionRepo.ListQuestions(ctx, bankID)
}

// DeleteQuestion removes a question.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return s.questionRepo.DeleteQuestion(ctx, id)
}

// CreateCollection inserts a collection.
func (s *QuestionService) CreateCollection(ctx context.Context, groupScope string, req *model.CreateCollectionRequest) (*model.Collection, error) {
	c := &model.Collection{GroupScope: groupScope, Label: req.Label}
	if err := s.collectionRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return c, nil
}

// ListCollections retrieves the collections of a group scope.
func (s *QuestionService) ListCollections(ctx context.Context, groupScope string) ([]model.Collection, error) {
	return s.collectionRepo.List(ctx, groupScope)
}

// GetCollection retrieves a collection with its questions.
func (s *QuestionService) GetCollection(ctx context.Context, id uuid.UUID) (*model.Collection, error) {
	c, err := s.collectionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Questions, err = s.collectionRepo.ListQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AddCollectionQuestion attaches a question; points default to the question's
// own default.
func (s *QuestionService) AddCollectionQuestion(ctx context.Context, collectionID uuid.UUID, req *model.AddCollectionQuestionRequest) (*model.CollectionQuestion, error) {
	points := 0
	if req.Points != nil {
		points = *req.Points
	} else {
		q, err := s.questionRepo.GetQuestion(ctx, req.QuestionID)
		if err != nil {
			return nil, err
		}
		points = q.DefaultPoints
	}
	return s.collectionRepo.AddQuestion(ctx, collectionID, req.QuestionID, points)
}

// RemoveCollectionQuestion detaches a question from the collection.
func (s *QuestionService) RemoveCollectionQuestion(ctx context.Context, collectionID, questionID uuid.UUID) error {
	return s.collectionRepo.RemoveQuestion(ctx, collectionID, questionID)
}
