package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jamgrade/jamgrade-backend/internal/answer"
	"github.com/jamgrade/jamgrade-backend/internal/config"
	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/jamgrade/jamgrade-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AnswerService handles student answer submission, both the synchronous HTTP
// path and the debounced live autosave path.
type AnswerService struct {
	sessionRepo *repository.SessionRepository
	answerRepo  *repository.AnswerRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(
	sessionRepo *repository.SessionRepository,
	answerRepo *repository.AnswerRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *AnswerService {
	return &AnswerService{
		sessionRepo: sessionRepo,
		answerRepo:  answerRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "answer_service").Logger(),
	}
}

// SubmitResult tells the caller what happened to the stored answer.
type SubmitResult struct {
	Deleted bool                 `json:"deleted"`
	Payload *model.AnswerPayload `json:"payload,omitempty"`
}

// checkAccess verifies the session is running and the student participates.
func (s *AnswerService) checkAccess(ctx context.Context, sessionID uuid.UUID, userEmail string) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return ErrSessionNotFound
	}
	if session.Phase != model.PhaseInProgress {
		return ErrSessionNotInProgress
	}
	joined, err := s.sessionRepo.IsParticipant(ctx, sessionID, userEmail)
	if err != nil {
		return err
	}
	if !joined {
		return ErrSessionNotAccessible
	}
	return nil
}

// Submit normalizes a raw answer and persists it synchronously. A nil raw
// answer (or a raw value that normalizes to nothing) deletes the stored
// answer.
func (s *AnswerService) Submit(ctx context.Context, sessionID, questionID uuid.UUID, userEmail string, raw *model.RawAnswer) (*SubmitResult, error) {
	if err := s.checkAccess(ctx, sessionID, userEmail); err != nil {
		return nil, err
	}

	payload, err := s.normalize(ctx, sessionID, questionID, userEmail, raw)
	if err != nil {
		return nil, err
	}

	if payload == nil {
		if err := s.answerRepo.Delete(ctx, sessionID, questionID, userEmail); err != nil {
			return nil, fmt.Errorf("delete answer: %w", err)
		}
		s.publishAnswerEvent(ctx, sessionID, questionID, userEmail, true)
		return &SubmitResult{Deleted: true}, nil
	}

	if err := s.answerRepo.Upsert(ctx, sessionID, questionID, userEmail, payload); err != nil {
		return nil, fmt.Errorf("store answer: %w", err)
	}
	s.publishAnswerEvent(ctx, sessionID, questionID, userEmail, false)
	return &SubmitResult{Payload: payload}, nil
}

// answerTask mirrors the answer worker's queue payload. A nil Payload means
// delete.
type answerTask struct {
	SessionID  string               `json:"session_id"`
	QuestionID string               `json:"question_id"`
	UserEmail  string               `json:"user_email"`
	Payload    *model.AnswerPayload `json:"payload"`
}

// QueueAutosave normalizes a raw answer and hands it to the persistence
// queue instead of writing synchronously. Used by the live exam stream,
// downstream of the per-question debounce window.
func (s *AnswerService) QueueAutosave(ctx context.Context, sessionID, questionID uuid.UUID, userEmail string, raw *model.RawAnswer) error {
	if err := s.checkAccess(ctx, sessionID, userEmail); err != nil {
		return err
	}

	payload, err := s.normalize(ctx, sessionID, questionID, userEmail, raw)
	if err != nil {
		return err
	}

	task, err := json.Marshal(answerTask{
		SessionID:  sessionID.String(),
		QuestionID: questionID.String(),
		UserEmail:  userEmail,
		Payload:    payload,
	})
	if err != nil {
		return err
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, task).Err(); err != nil {
		return fmt.Errorf("queue autosave: %w", err)
	}
	s.publishAnswerEvent(ctx, sessionID, questionID, userEmail, payload == nil)
	return nil
}

// Get retrieves a student's stored answer, or (nil, nil) if none exists.
func (s *AnswerService) Get(ctx context.Context, sessionID, questionID uuid.UUID, userEmail string) (*model.AnswerPayload, error) {
	return s.answerRepo.Get(ctx, sessionID, questionID, userEmail)
}

// normalize resolves the question type and runs the type-specific
// translation against the existing stored payload.
func (s *AnswerService) normalize(ctx context.Context, sessionID, questionID uuid.UUID, userEmail string, raw *model.RawAnswer) (*model.AnswerPayload, error) {
	assoc, err := s.sessionRepo.GetQuestion(ctx, sessionID, questionID)
	if err != nil {
		return nil, fmt.Errorf("resolve question: %w", err)
	}

	// Partial edit types (code, database) merge into what is already stored.
	var existing *model.AnswerPayload
	if raw != nil {
		t := assoc.Question.Type
		if t == model.QuestionTypeCode || t == model.QuestionTypeDatabase {
			existing, err = s.answerRepo.Get(ctx, sessionID, questionID, userEmail)
			if err != nil {
				return nil, err
			}
		}
	}

	return answer.Normalize(assoc.Question.Type, raw, existing)
}

// publishAnswerEvent notifies the monitor stream, best effort.
func (s *AnswerService) publishAnswerEvent(ctx context.Context, sessionID, questionID uuid.UUID, userEmail string, deleted bool) {
	event := "answer_saved"
	if deleted {
		event = "answer_removed"
	}
	raw, err := json.Marshal(map[string]any{
		"event": event,
		"data": map[string]any{
			"question_id": questionID.String(),
			"user_email":  userEmail,
			"at":          time.Now().UTC(),
		},
	})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.SessionMonitorChannel(sessionID.String()), raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Monitor publish failed")
	}
}
