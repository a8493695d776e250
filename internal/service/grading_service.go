package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jamgrade/jamgrade-backend/internal/config"
	"github.com/jamgrade/jamgrade-backend/internal/grading"
	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/jamgrade/jamgrade-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// GradingService orchestrates grading edits, sign-off and the session-level
// analytics views built on top of them.
type GradingService struct {
	sessionRepo *repository.SessionRepository
	answerRepo  *repository.AnswerRepository
	gradingRepo *repository.GradingRepository
	rdb         *redis.Client
	log         zerolog.Logger
	// unsignPolicy decides what a professor's unsign does to the status.
	unsignPolicy grading.UnsignPolicy
}

// NewGradingService creates a new GradingService with the default unsign
// policy.
func NewGradingService(
	sessionRepo *repository.SessionRepository,
	answerRepo *repository.AnswerRepository,
	gradingRepo *repository.GradingRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *GradingService {
	return &GradingService{
		sessionRepo:  sessionRepo,
		answerRepo:   answerRepo,
		gradingRepo:  gradingRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "grading_service").Logger(),
		unsignPolicy: grading.UnsignKeep,
	}
}

// QuestionsWithGradings assembles the grading view: the question roster with
// one StudentAnswer per (question, participant), MISSING rows included, each
// carrying its grading if one exists.
func (s *GradingService) QuestionsWithGradings(ctx context.Context, sessionID uuid.UUID) ([]model.SessionQuestion, []model.SessionStudent, error) {
	assocs, err := s.sessionRepo.ListQuestions(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	students, err := s.sessionRepo.ListStudents(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	answers, err := s.answerRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	gradings, err := s.gradingRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	type key struct {
		questionID uuid.UUID
		email      string
	}
	answerByKey := make(map[key]repository.StoredAnswer, len(answers))
	for _, a := range answers {
		answerByKey[key{a.QuestionID, a.UserEmail}] = a
	}
	gradingByKey := make(map[key]*model.StudentGrading, len(gradings))
	for i := range gradings {
		g := gradings[i]
		gradingByKey[key{g.QuestionID, g.UserEmail}] = &gradings[i].Grading
	}

	for i := range assocs {
		sq := &assocs[i]
		sq.Answers = make([]model.StudentAnswer, 0, len(students))
		for _, st := range students {
			k := key{sq.QuestionID, st.UserEmail}
			sa := model.StudentAnswer{
				UserEmail: st.UserEmail,
				Status:    model.AnswerStatusMissing,
				Grading:   gradingByKey[k],
			}
			if stored, ok := answerByKey[k]; ok && !stored.Payload.IsEmpty() {
				sa.Status = model.AnswerStatusSubmitted
				sa.Payload = stored.Payload
				submittedAt := stored.SubmittedAt
				sa.SubmittedAt = &submittedAt
			}
			sq.Answers = append(sq.Answers, sa)
		}
	}
	return assocs, students, nil
}

// Update applies a PATCH to one grading: point/comment edits, sign-off
// (sign=true) or unsign (sign=false). Edits on a signed grading are rejected
// until it is unsigned.
func (s *GradingService) Update(ctx context.Context, professorEmail string, req *model.UpdateGradingRequest) (*model.StudentGrading, error) {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("invalid question id: %w", err)
	}

	g, err := s.gradingRepo.Get(ctx, sessionID, questionID, req.UserEmail)
	if err != nil {
		return nil, err
	}
	if g == nil {
		g = &model.StudentGrading{Status: model.GradingStatusUngraded}
	}

	now := time.Now()

	if req.Sign != nil && !*req.Sign {
		if err := grading.Unsign(g, s.unsignPolicy, now); err != nil {
			return nil, err
		}
	} else {
		if err := grading.ApplyEdit(g, req.PointsObtained, req.Comment, now); err != nil {
			return nil, err
		}
		if req.Sign != nil && *req.Sign {
			assoc, err := s.sessionRepo.GetQuestion(ctx, sessionID, questionID)
			if err != nil {
				return nil, fmt.Errorf("resolve question: %w", err)
			}
			if err := grading.SignOff(g, assoc.Points, professorEmail, now); err != nil {
				return nil, err
			}
		}
	}

	if err := s.gradingRepo.Upsert(ctx, sessionID, questionID, req.UserEmail, g); err != nil {
		return nil, fmt.Errorf("store grading: %w", err)
	}

	s.publishGradingEvent(ctx, sessionID, questionID, req.UserEmail, g)
	return g, nil
}

// SignOffResult is the outcome for one grading in a bulk sign-off.
type SignOffResult struct {
	QuestionID string `json:"question_id"`
	UserEmail  string `json:"user_email"`
	Signed     bool   `json:"signed"`
	Error      string `json:"error,omitempty"`
}

// SignOffAutograded signs every unsigned AUTOGRADED grading of the session
// in one pass. Failures are reported per grading instead of aborting the
// batch; successfully signed gradings are flushed in one bulk write.
func (s *GradingService) SignOffAutograded(ctx context.Context, sessionID uuid.UUID, professorEmail string) ([]SignOffResult, error) {
	assocs, err := s.sessionRepo.ListQuestions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	maxPoints := make(map[uuid.UUID]int, len(assocs))
	for _, sq := range assocs {
		maxPoints[sq.QuestionID] = sq.Points
	}

	gradings, err := s.gradingRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var results []SignOffResult
	var batch []repository.StoredGrading

	for _, sg := range gradings {
		if sg.Grading.Status != model.GradingStatusAutograded || sg.Grading.Signed() {
			continue
		}
		res := SignOffResult{QuestionID: sg.QuestionID.String(), UserEmail: sg.UserEmail}

		points, ok := maxPoints[sg.QuestionID]
		if !ok {
			res.Error = "question no longer in session"
			results = append(results, res)
			continue
		}
		if err := grading.SignOff(&sg.Grading, points, professorEmail, now); err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}

		res.Signed = true
		results = append(results, res)
		batch = append(batch, sg)
	}

	if err := s.gradingRepo.BulkUpsert(ctx, sessionID, batch); err != nil {
		return nil, fmt.Errorf("store gradings: %w", err)
	}

	s.log.Info().
		Str("session_id", sessionID.String()).
		Int("signed", len(batch)).
		Int("skipped", len(results)-len(batch)).
		Msg("Bulk sign-off completed")
	return results, nil
}

// Overview is the session analytics payload for the professor dashboard.
type Overview struct {
	SignedSuccessRate int                `json:"signed_success_rate"`
	TotalPoints       int                `json:"total_points"`
	Stats             grading.Stats      `json:"grading_stats"`
	Questions         []QuestionOverview `json:"questions"`
	Participants      []ParticipantScore `json:"participants"`
}

// QuestionOverview is one question's aggregate block.
type QuestionOverview struct {
	QuestionID  string             `json:"question_id"`
	Order       int                `json:"order"`
	Title       string             `json:"title"`
	Points      int                `json:"points"`
	SuccessRate int                `json:"success_rate"`
	TypeStats   *grading.TypeStats `json:"type_stats,omitempty"`
}

// ParticipantScore is one participant's score line.
type ParticipantScore struct {
	UserEmail      string `json:"user_email"`
	Name           string `json:"name"`
	ObtainedPoints int    `json:"obtained_points"`
}

// BuildOverview assembles the full analytics view of a session.
func (s *GradingService) BuildOverview(ctx context.Context, sessionID uuid.UUID) (*Overview, error) {
	assocs, students, err := s.QuestionsWithGradings(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	o := &Overview{
		SignedSuccessRate: grading.SignedSuccessRate(assocs),
		TotalPoints:       grading.TotalPoints(assocs),
		Stats:             grading.GradingStats(assocs),
	}
	for _, sq := range assocs {
		qo := QuestionOverview{
			QuestionID:  sq.QuestionID.String(),
			Order:       sq.Order,
			Points:      sq.Points,
			SuccessRate: grading.QuestionSuccessRate(sq),
			TypeStats:   grading.TypeSpecificStats(sq),
		}
		if sq.Question != nil {
			qo.Title = sq.Question.Title
		}
		o.Questions = append(o.Questions, qo)
	}
	for _, st := range students {
		o.Participants = append(o.Participants, ParticipantScore{
			UserEmail:      st.UserEmail,
			Name:           st.Name,
			ObtainedPoints: grading.ObtainedPoints(assocs, st.UserEmail),
		})
	}
	return o, nil
}

// ExportCSV renders the results CSV and its download filename.
func (s *GradingService) ExportCSV(ctx context.Context, session *model.Session) (content, filename string, err error) {
	assocs, students, err := s.QuestionsWithGradings(ctx, session.ID)
	if err != nil {
		return "", "", err
	}
	return grading.ExportCSV(assocs, students), grading.ExportFilename(session.ID, session.Label), nil
}

// publishGradingEvent notifies the monitor stream, best effort.
func (s *GradingService) publishGradingEvent(ctx context.Context, sessionID, questionID uuid.UUID, userEmail string, g *model.StudentGrading) {
	raw, err := json.Marshal(map[string]any{
		"event": "grading_updated",
		"data": map[string]any{
			"question_id": questionID.String(),
			"user_email":  userEmail,
			"status":      g.Status,
			"signed":      g.Signed(),
		},
	})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.SessionMonitorChannel(sessionID.String()), raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Monitor publish failed")
	}
}
