package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jamgrade/jamgrade-backend/internal/config"
	"github.com/jamgrade/jamgrade-backend/internal/grading"
	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/jamgrade/jamgrade-backend/internal/phase"
	"github.com/jamgrade/jamgrade-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Session lifecycle errors.
var (
	ErrInvalidPhaseChange   = errors.New("phase change is not allowed from the current phase")
	ErrNoQuestions          = errors.New("session has no questions")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionNotInProgress = errors.New("session is not in progress")
	ErrSessionNotAccessible = errors.New("student has not joined this session")
)

// phaseTransitions is the forward-only lifecycle. Unlisted pairs are
// rejected; same-phase PATCHes are accepted as no-ops.
var phaseTransitions = map[model.SessionPhase][]model.SessionPhase{
	model.PhaseNew:        {model.PhaseDraft},
	model.PhaseDraft:      {model.PhaseInProgress},
	model.PhaseInProgress: {model.PhaseGrading},
	model.PhaseGrading:    {model.PhaseFinished},
	model.PhaseFinished:   {},
}

// SessionService orchestrates jam session lifecycle, participants and the
// question roster.
type SessionService struct {
	sessionRepo    *repository.SessionRepository
	collectionRepo *repository.CollectionRepository
	answerRepo     *repository.AnswerRepository
	gradingRepo    *repository.GradingRepository
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	collectionRepo *repository.CollectionRepository,
	answerRepo *repository.AnswerRepository,
	gradingRepo *repository.GradingRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo:    sessionRepo,
		collectionRepo: collectionRepo,
		answerRepo:     answerRepo,
		gradingRepo:    gradingRepo,
		rdb:            rdb,
		log:            log.With().Str("component", "session_service").Logger(),
	}
}

// Create inserts a session in phase NEW and, when a collection is given,
// seeds the question roster from it.
func (s *SessionService) Create(ctx context.Context, groupScope string, req *model.CreateSessionRequest) (*model.Session, error) {
	session := &model.Session{
		GroupScope:      groupScope,
		Label:           req.Label,
		Conditions:      req.Conditions,
		Phase:           model.PhaseNew,
		Status:          model.SessionStatusActive,
		DurationHours:   req.DurationHours,
		DurationMinutes: req.DurationMinutes,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if req.CollectionID != nil {
		if err := s.sessionRepo.SeedFromCollection(ctx, session.ID, *req.CollectionID); err != nil {
			return nil, fmt.Errorf("seed from collection: %w", err)
		}
	}
	return session, nil
}

// Get retrieves a session scoped to a group.
func (s *SessionService) Get(ctx context.Context, groupScope string, id uuid.UUID) (*model.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if session.GroupScope != groupScope {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetByID retrieves a session without group scoping. Student endpoints use
// participant checks instead of group membership.
func (s *SessionService) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List retrieves sessions of a group, paginated.
func (s *SessionService) List(ctx context.Context, groupScope string, page, perPage int) ([]model.Session, int64, error) {
	return s.sessionRepo.ListByGroup(ctx, groupScope, page, perPage)
}

// Update applies a PATCH to the session. A phase change is validated against
// the transition table and triggers its side effects; other fields are plain
// partial updates.
func (s *SessionService) Update(ctx context.Context, groupScope string, id uuid.UUID, req *model.UpdateSessionRequest) (*model.Session, error) {
	session, err := s.Get(ctx, groupScope, id)
	if err != nil {
		return nil, err
	}

	var startAt, endAt *time.Time

	if req.Phase != nil && *req.Phase != session.Phase {
		if !transitionAllowed(session.Phase, *req.Phase) {
			return nil, ErrInvalidPhaseChange
		}

		switch *req.Phase {
		case model.PhaseInProgress:
			questions, err := s.sessionRepo.ListQuestions(ctx, id)
			if err != nil {
				return nil, err
			}
			if len(questions) == 0 {
				return nil, ErrNoQuestions
			}
			now := time.Now()
			startAt = &now
			if d := session.Duration(); d > 0 {
				e := now.Add(d)
				endAt = &e
			}

		case model.PhaseGrading:
			if err := s.autogradeSession(ctx, session); err != nil {
				return nil, fmt.Errorf("autograde fan-out: %w", err)
			}
		}
	}
	if req.EndAt != nil {
		// Manual deadline extension while the session runs.
		endAt = req.EndAt
	}

	updated, err := s.sessionRepo.Update(ctx, id, req, startAt, endAt)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	if req.Phase != nil && *req.Phase != session.Phase {
		s.cachePhaseState(ctx, updated)
		s.publishMonitorEvent(ctx, updated.ID, "phase_changed", map[string]any{
			"phase": updated.Phase,
		})
	}
	return updated, nil
}

// Delete removes a session and everything hanging off it.
func (s *SessionService) Delete(ctx context.Context, groupScope string, id uuid.UUID) error {
	if _, err := s.Get(ctx, groupScope, id); err != nil {
		return err
	}
	return s.sessionRepo.Delete(ctx, id)
}

// transitionAllowed consults the forward-only table.
func transitionAllowed(from, to model.SessionPhase) bool {
	for _, next := range phaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// cachePhaseState keeps the hot phase and deadline in Redis so the student
// routing endpoints avoid a DB round-trip per poll.
func (s *SessionService) cachePhaseState(ctx context.Context, session *model.Session) {
	id := session.ID.String()
	if err := s.rdb.Set(ctx, config.CacheKey.SessionPhaseKey(id), string(session.Phase), 24*time.Hour).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", id).Msg("Failed to cache session phase")
	}
	if session.EndAt != nil {
		if err := s.rdb.Set(ctx, config.CacheKey.SessionEndAtKey(id), session.EndAt.Format(time.RFC3339), 24*time.Hour).Err(); err != nil {
			s.log.Warn().Err(err).Str("session_id", id).Msg("Failed to cache session deadline")
		}
	}
}

// CachedPhase returns the session phase from Redis, falling back to the
// database on a cache miss.
func (s *SessionService) CachedPhase(ctx context.Context, id uuid.UUID) (model.SessionPhase, error) {
	cached, err := s.rdb.Get(ctx, config.CacheKey.SessionPhaseKey(id.String())).Result()
	if err == nil && cached != "" {
		return model.SessionPhase(cached), nil
	}
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return "", ErrSessionNotFound
	}
	return session.Phase, nil
}

// RedirectHint computes the navigation target for a viewer of the session, or
// ("", false) when the viewer is already on the canonical route.
func (s *SessionService) RedirectHint(session *model.Session, table phase.RouteTable, currentPath string) (string, bool) {
	return phase.Redirect(table, session.Phase, currentPath, session.GroupScope, session.ID.String())
}

// Join registers a student as participant. Students may only join while the
// session runs.
func (s *SessionService) Join(ctx context.Context, sessionID uuid.UUID, userEmail string) (*model.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if session.Phase != model.PhaseInProgress {
		return nil, ErrSessionNotInProgress
	}
	if err := s.sessionRepo.AddStudent(ctx, sessionID, userEmail); err != nil {
		return nil, fmt.Errorf("join session: %w", err)
	}
	s.publishMonitorEvent(ctx, sessionID, "student_joined", map[string]any{
		"user_email": userEmail,
	})
	return session, nil
}

// ListStudents retrieves the participants in join order.
func (s *SessionService) ListStudents(ctx context.Context, sessionID uuid.UUID) ([]model.SessionStudent, error) {
	return s.sessionRepo.ListStudents(ctx, sessionID)
}

// IsParticipant reports whether the student has joined the session.
func (s *SessionService) IsParticipant(ctx context.Context, sessionID uuid.UUID, userEmail string) (bool, error) {
	return s.sessionRepo.IsParticipant(ctx, sessionID, userEmail)
}

// AddQuestion appends a question to the roster with its max points.
func (s *SessionService) AddQuestion(ctx context.Context, sessionID, questionID uuid.UUID, points int) error {
	return s.sessionRepo.AddQuestion(ctx, sessionID, questionID, points)
}

// UpdateQuestion adjusts order or max points of a roster entry.
func (s *SessionService) UpdateQuestion(ctx context.Context, sessionID, questionID uuid.UUID, req *model.SessionQuestionUpdateRequest) error {
	return s.sessionRepo.UpdateQuestion(ctx, sessionID, questionID, req)
}

// ListQuestions retrieves the roster in grading order, questions nested.
func (s *SessionService) ListQuestions(ctx context.Context, sessionID uuid.UUID) ([]model.SessionQuestion, error) {
	return s.sessionRepo.ListQuestions(ctx, sessionID)
}

// gradingTask mirrors the grading worker's queue payload.
type gradingTask struct {
	SessionID  string               `json:"session_id"`
	QuestionID string               `json:"question_id"`
	UserEmail  string               `json:"user_email"`
	Grading    model.StudentGrading `json:"grading"`
}

// autogradeSession computes an AUTOGRADED grading for every
// (objective question, participant) pair and queues them for the grading
// worker. Existing gradings are overwritten: entering GRADING resets the
// grading table to the autograder's view.
func (s *SessionService) autogradeSession(ctx context.Context, session *model.Session) error {
	assocs, err := s.sessionRepo.ListQuestions(ctx, session.ID)
	if err != nil {
		return err
	}
	students, err := s.sessionRepo.ListStudents(ctx, session.ID)
	if err != nil {
		return err
	}
	answers, err := s.answerRepo.ListBySession(ctx, session.ID)
	if err != nil {
		return err
	}

	type key struct {
		questionID uuid.UUID
		email      string
	}
	byKey := make(map[key]*model.AnswerPayload, len(answers))
	for _, a := range answers {
		byKey[key{a.QuestionID, a.UserEmail}] = a.Payload
	}

	now := time.Now()
	queued := 0
	for _, sq := range assocs {
		for _, st := range students {
			payload := byKey[key{sq.QuestionID, st.UserEmail}]
			g := grading.Autograde(sq.Question, sq.Points, payload, now)
			if g == nil {
				// Subjective type: seed an UNGRADED grading so the sign-off
				// workflow covers every participant.
				g = &model.StudentGrading{Status: model.GradingStatusUngraded, UpdatedAt: now}
			}

			raw, err := json.Marshal(gradingTask{
				SessionID:  session.ID.String(),
				QuestionID: sq.QuestionID.String(),
				UserEmail:  st.UserEmail,
				Grading:    *g,
			})
			if err != nil {
				return err
			}
			if err := s.rdb.RPush(ctx, config.WorkerKey.PersistGradingsQueue, raw).Err(); err != nil {
				return err
			}
			queued++
		}
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Int("gradings_queued", queued).
		Msg("Autograde fan-out queued")
	return nil
}

// publishMonitorEvent pushes a best-effort event to the session's monitor
// channel. Failures are logged, never propagated.
func (s *SessionService) publishMonitorEvent(ctx context.Context, sessionID uuid.UUID, event string, data map[string]any) {
	msg := map[string]any{"event": event, "data": data}
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.SessionMonitorChannel(sessionID.String()), raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Monitor publish failed")
	}
}
