package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jamgrade/jamgrade-backend/internal/model"
)

// AnswerRepository handles student answer data access. Payloads are stored
// as JSONB of the tagged union; a NULL payload row never exists — deleting
// an answer deletes the row.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Upsert creates or replaces the stored payload for one
// (session, question, participant) tuple.
func (r *AnswerRepository) Upsert(ctx context.Context, sessionID, questionID uuid.UUID, userEmail string, payload *model.AnswerPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO student_answers (session_id, question_id, user_email, payload, submitted_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (session_id, question_id, user_email) DO UPDATE
		 SET payload = EXCLUDED.payload, submitted_at = NOW(), updated_at = NOW()`,
		sessionID, questionID, userEmail, raw)
	return err
}

// Delete removes the stored answer. Semantically this is "answer removed",
// distinct from never answered only through the audit trail.
func (r *AnswerRepository) Delete(ctx context.Context, sessionID, questionID uuid.UUID, userEmail string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM student_answers
		 WHERE session_id = $1 AND question_id = $2 AND user_email = $3`,
		sessionID, questionID, userEmail)
	return err
}

// Get retrieves one stored answer, or (nil, nil) if none exists.
func (r *AnswerRepository) Get(ctx context.Context, sessionID, questionID uuid.UUID, userEmail string) (*model.AnswerPayload, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT payload FROM student_answers
		 WHERE session_id = $1 AND question_id = $2 AND user_email = $3`,
		sessionID, questionID, userEmail,
	).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p := &model.AnswerPayload{}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, err
	}
	return p, nil
}

// StoredAnswer is one persisted answer row.
type StoredAnswer struct {
	QuestionID  uuid.UUID
	UserEmail   string
	Payload     *model.AnswerPayload
	SubmittedAt time.Time
}

// ListBySession retrieves every stored answer of a session.
func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]StoredAnswer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id, user_email, payload, submitted_at
		 FROM student_answers
		 WHERE session_id = $1
		 ORDER BY question_id, user_email`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []StoredAnswer
	for rows.Next() {
		var a StoredAnswer
		var raw []byte
		if err := rows.Scan(&a.QuestionID, &a.UserEmail, &raw, &a.SubmittedAt); err != nil {
			return nil, err
		}
		a.Payload = &model.AnswerPayload{}
		if err := json.Unmarshal(raw, a.Payload); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
