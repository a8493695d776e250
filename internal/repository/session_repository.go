package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jamgrade/jamgrade-backend/internal/model"
)

// SessionRepository handles jam session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, group_scope, label, conditions, phase, status,
	duration_hours, duration_minutes, start_at, end_at, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*model.Session, error) {
	s := &model.Session{}
	err := row.Scan(
		&s.ID, &s.GroupScope, &s.Label, &s.Conditions, &s.Phase, &s.Status,
		&s.DurationHours, &s.DurationMinutes, &s.StartAt, &s.EndAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a session in phase NEW.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO jam_sessions (group_scope, label, conditions, phase, status, duration_hours, duration_minutes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		s.GroupScope, s.Label, s.Conditions, s.Phase, s.Status, s.DurationHours, s.DurationMinutes,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM jam_sessions WHERE id = $1`, id))
}

// ListByGroup retrieves sessions of a group, newest first, with optional
// pagination.
func (r *SessionRepository) ListByGroup(ctx context.Context, groupScope string, page, perPage int) ([]model.Session, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM jam_sessions WHERE group_scope = $1`, groupScope,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM jam_sessions
		 WHERE group_scope = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, groupScope, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, total, rows.Err()
}

// Update applies a partial update built from the PATCH payload.
func (r *SessionRepository) Update(ctx context.Context, id uuid.UUID, req *model.UpdateSessionRequest, startAt, endAt *time.Time) (*model.Session, error) {
	set := "updated_at = NOW()"
	args := []any{id}

	add := func(col string, v any) {
		args = append(args, v)
		set += fmt.Sprintf(", %s = $%d", col, len(args))
	}

	if req.Phase != nil {
		add("phase", *req.Phase)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}
	if req.Label != nil {
		add("label", *req.Label)
	}
	if req.Conditions != nil {
		add("conditions", *req.Conditions)
	}
	if req.DurationHours != nil {
		add("duration_hours", *req.DurationHours)
	}
	if req.DurationMinutes != nil {
		add("duration_minutes", *req.DurationMinutes)
	}
	if startAt != nil {
		add("start_at", *startAt)
	}
	if endAt != nil {
		add("end_at", *endAt)
	}

	return scanSession(r.pool.QueryRow(ctx,
		`UPDATE jam_sessions SET `+set+` WHERE id = $1 RETURNING `+sessionColumns, args...))
}

// Delete removes a session; questions, answers and gradings cascade.
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM jam_sessions WHERE id = $1`, id)
	return err
}

// AddStudent registers a participant, idempotently.
func (r *SessionRepository) AddStudent(ctx context.Context, sessionID uuid.UUID, userEmail string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO session_students (session_id, user_email)
		 VALUES ($1, $2)
		 ON CONFLICT (session_id, user_email) DO NOTHING`,
		sessionID, userEmail)
	return err
}

// ListStudents retrieves the participants in join order.
func (r *SessionRepository) ListStudents(ctx context.Context, sessionID uuid.UUID) ([]model.SessionStudent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ss.user_email, COALESCE(s.name, ss.user_email), ss.joined_at
		 FROM session_students ss
		 LEFT JOIN students s ON s.email = ss.user_email
		 WHERE ss.session_id = $1
		 ORDER BY ss.joined_at`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.SessionStudent
	for rows.Next() {
		var s model.SessionStudent
		if err := rows.Scan(&s.UserEmail, &s.Name, &s.JoinedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// IsParticipant reports whether the student has joined the session.
func (r *SessionRepository) IsParticipant(ctx context.Context, sessionID uuid.UUID, userEmail string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM session_students WHERE session_id = $1 AND user_email = $2
		 )`, sessionID, userEmail,
	).Scan(&exists)
	return exists, err
}

// SeedFromCollection copies a collection's associations into the session.
func (r *SessionRepository) SeedFromCollection(ctx context.Context, sessionID, collectionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO session_questions (session_id, question_id, ord, points)
		 SELECT $1, question_id, ord, points
		 FROM collection_questions
		 WHERE collection_id = $2
		 ON CONFLICT (session_id, question_id) DO NOTHING`,
		sessionID, collectionID)
	return err
}

// AddQuestion appends a question at the next order position with the given
// max points.
func (r *SessionRepository) AddQuestion(ctx context.Context, sessionID, questionID uuid.UUID, points int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO session_questions (session_id, question_id, ord, points)
		 VALUES ($1, $2,
			(SELECT COALESCE(MAX(ord), 0) + 1 FROM session_questions WHERE session_id = $1),
			$3)`,
		sessionID, questionID, points)
	return err
}

// UpdateQuestion adjusts order and/or max points of an association.
func (r *SessionRepository) UpdateQuestion(ctx context.Context, sessionID, questionID uuid.UUID, req *model.SessionQuestionUpdateRequest) error {
	set := ""
	args := []any{sessionID, questionID}
	if req.Order != nil {
		args = append(args, *req.Order)
		set = fmt.Sprintf("ord = $%d", len(args))
	}
	if req.Points != nil {
		args = append(args, *req.Points)
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("points = $%d", len(args))
	}
	if set == "" {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE session_questions SET `+set+` WHERE session_id = $1 AND question_id = $2`, args...)
	return err
}

// GetQuestion retrieves one association with its nested question.
func (r *SessionRepository) GetQuestion(ctx context.Context, sessionID, questionID uuid.UUID) (*model.SessionQuestion, error) {
	var sq model.SessionQuestion
	var q model.Question
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT sq.session_id, sq.question_id, sq.ord, sq.points,
		        q.id, q.bank_id, q.title, q.content, q.type, q.default_points, q.payload, q.created_at, q.updated_at
		 FROM session_questions sq
		 JOIN questions q ON sq.question_id = q.id
		 WHERE sq.session_id = $1 AND sq.question_id = $2`,
		sessionID, questionID,
	).Scan(
		&sq.SessionID, &sq.QuestionID, &sq.Order, &sq.Points,
		&q.ID, &q.BankID, &q.Title, &q.Content, &q.Type, &q.DefaultPoints, &payload, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalVariant(&q, payload); err != nil {
		return nil, err
	}
	sq.Question = &q
	return &sq, nil
}

// ListQuestions retrieves the session's associations with nested questions,
// in grading order.
func (r *SessionRepository) ListQuestions(ctx context.Context, sessionID uuid.UUID) ([]model.SessionQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sq.session_id, sq.question_id, sq.ord, sq.points,
		        q.id, q.bank_id, q.title, q.content, q.type, q.default_points, q.payload, q.created_at, q.updated_at
		 FROM session_questions sq
		 JOIN questions q ON sq.question_id = q.id
		 WHERE sq.session_id = $1
		 ORDER BY sq.ord`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var associations []model.SessionQuestion
	for rows.Next() {
		var sq model.SessionQuestion
		var q model.Question
		var payload []byte
		if err := rows.Scan(
			&sq.SessionID, &sq.QuestionID, &sq.Order, &sq.Points,
			&q.ID, &q.BankID, &q.Title, &q.Content, &q.Type, &q.DefaultPoints, &payload, &q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := unmarshalVariant(&q, payload); err != nil {
			return nil, err
		}
		sq.Question = &q
		associations = append(associations, sq)
	}
	return associations, rows.Err()
}
