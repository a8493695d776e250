package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jamgrade/jamgrade-backend/internal/model"
)

// QuestionRepository handles question bank and question data access. The
// type-specific variant is stored as a single JSONB column and rehydrated
// into the matching union field on read.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// CreateBank inserts a question bank.
func (r *QuestionRepository) CreateBank(ctx context.Context, b *model.QuestionBank) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO question_banks (group_scope, label, owner_email)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		b.GroupScope, b.Label, b.OwnerEmail,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// ListBanks retrieves all banks of a group scope.
func (r *QuestionRepository) ListBanks(ctx context.Context, groupScope string) ([]model.QuestionBank, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, group_scope, label, owner_email, created_at, updated_at
		 FROM question_banks
		 WHERE group_scope = $1
		 ORDER BY label`, groupScope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banks []model.QuestionBank
	for rows.Next() {
		var b model.QuestionBank
		if err := rows.Scan(&b.ID, &b.GroupScope, &b.Label, &b.OwnerEmail, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

// CreateQuestion inserts a question with its serialized variant payload.
func (r *QuestionRepository) CreateQuestion(ctx context.Context, q *model.Question) error {
	payload, err := marshalVariant(q)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (bank_id, title, content, type, default_points, payload)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		q.BankID, q.Title, q.Content, q.Type, q.DefaultPoints, payload,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// GetQuestion retrieves a single question by ID.
func (r *QuestionRepository) GetQuestion(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, bank_id, title, content, type, default_points, payload, created_at, updated_at
		 FROM questions
		 WHERE id = $1`, id,
	).Scan(&q.ID, &q.BankID, &q.Title, &q.Content, &q.Type, &q.DefaultPoints, &payload, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalVariant(q, payload); err != nil {
		return nil, err
	}
	return q, nil
}

// ListQuestions retrieves all questions of a bank in creation order.
func (r *QuestionRepository) ListQuestions(ctx context.Context, bankID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, bank_id, title, content, type, default_points, payload, created_at, updated_at
		 FROM questions
		 WHERE bank_id = $1
		 ORDER BY created_at`, bankID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		var payload []byte
		if err := rows.Scan(&q.ID, &q.BankID, &q.Title, &q.Content, &q.Type, &q.DefaultPoints, &payload, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalVariant(&q, payload); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// DeleteQuestion removes a question. Associations cascade in the schema.
func (r *QuestionRepository) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// marshalVariant serializes the union field matching the question type.
func marshalVariant(q *model.Question) ([]byte, error) {
	var v any
	switch q.Type {
	case model.QuestionTypeTrueFalse:
		v = q.TrueFalse
	case model.QuestionTypeMultipleChoice:
		v = q.MultipleChoice
	case model.QuestionTypeEssay:
		v = q.Essay
	case model.QuestionTypeCode:
		v = q.Code
	case model.QuestionTypeWeb:
		v = q.Web
	case model.QuestionTypeDatabase:
		v = q.Database
	default:
		return nil, fmt.Errorf("unknown question type %q", q.Type)
	}
	return json.Marshal(v)
}

// unmarshalVariant rehydrates the union field matching the question type.
func unmarshalVariant(q *model.Question, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	switch q.Type {
	case model.QuestionTypeTrueFalse:
		q.TrueFalse = &model.TrueFalseQuestion{}
		return json.Unmarshal(payload, q.TrueFalse)
	case model.QuestionTypeMultipleChoice:
		q.MultipleChoice = &model.MultipleChoiceQuestion{}
		return json.Unmarshal(payload, q.MultipleChoice)
	case model.QuestionTypeEssay:
		q.Essay = &model.EssayQuestion{}
		return json.Unmarshal(payload, q.Essay)
	case model.QuestionTypeCode:
		q.Code = &model.CodeQuestion{}
		return json.Unmarshal(payload, q.Code)
	case model.QuestionTypeWeb:
		q.Web = &model.WebQuestion{}
		return json.Unmarshal(payload, q.Web)
	case model.QuestionTypeDatabase:
		q.Database = &model.DatabaseQuestion{}
		return json.Unmarshal(payload, q.Database)
	}
	return fmt.Errorf("unknown question type %q", q.Type)
}
