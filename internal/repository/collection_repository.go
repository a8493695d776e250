package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jamgrade/jamgrade-backend/internal/model"
)

// CollectionRepository handles collection data access.
type CollectionRepository struct {
	pool *pgxpool.Pool
}

// NewCollectionRepository creates a new CollectionRepository.
func NewCollectionRepository(pool *pgxpool.Pool) *CollectionRepository {
	return &CollectionRepository{pool: pool}
}

// Create inserts a collection.
func (r *CollectionRepository) Create(ctx context.Context, c *model.Collection) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO collections (group_scope, label)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		c.GroupScope, c.Label,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// List retrieves all collections of a group scope.
func (r *CollectionRepository) List(ctx context.Context, groupScope string) ([]model.Collection, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, group_scope, label, created_at, updated_at
		 FROM collections
		 WHERE group_scope = $1
		 ORDER BY label`, groupScope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []model.Collection
	for rows.Next() {
		var c model.Collection
		if err := rows.Scan(&c.ID, &c.GroupScope, &c.Label, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

// Get retrieves a collection without its questions.
func (r *CollectionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Collection, error) {
	c := &model.Collection{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, group_scope, label, created_at, updated_at
		 FROM collections
		 WHERE id = $1`, id,
	).Scan(&c.ID, &c.GroupScope, &c.Label, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AddQuestion appends a question at the next order position.
func (r *CollectionRepository) AddQuestion(ctx context.Context, collectionID, questionID uuid.UUID, points int) (*model.CollectionQuestion, error) {
	cq := &model.CollectionQuestion{CollectionID: collectionID, QuestionID: questionID, Points: points}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO collection_questions (collection_id, question_id, ord, points)
		 VALUES ($1, $2,
			(SELECT COALESCE(MAX(ord), 0) + 1 FROM collection_questions WHERE collection_id = $1),
			$3)
		 RETURNING ord`,
		collectionID, questionID, points,
	).Scan(&cq.Order)
	if err != nil {
		return nil, err
	}
	return cq, nil
}

// RemoveQuestion detaches a question from the collection.
func (r *CollectionRepository) RemoveQuestion(ctx context.Context, collectionID, questionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM collection_questions WHERE collection_id = $1 AND question_id = $2`,
		collectionID, questionID)
	return err
}

// ListQuestions retrieves the collection's associations with nested
// questions, in display order.
func (r *CollectionRepository) ListQuestions(ctx context.Context, collectionID uuid.UUID) ([]model.CollectionQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT cq.collection_id, cq.question_id, cq.ord, cq.points,
		        q.id, q.bank_id, q.title, q.content, q.type, q.default_points, q.payload, q.created_at, q.updated_at
		 FROM collection_questions cq
		 JOIN questions q ON cq.question_id = q.id
		 WHERE cq.collection_id = $1
		 ORDER BY cq.ord`, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var associations []model.CollectionQuestion
	for rows.Next() {
		var cq model.CollectionQuestion
		var q model.Question
		var payload []byte
		if err := rows.Scan(
			&cq.CollectionID, &cq.QuestionID, &cq.Order, &cq.Points,
			&q.ID, &q.BankID, &q.Title, &q.Content, &q.Type, &q.DefaultPoints, &payload, &q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := unmarshalVariant(&q, payload); err != nil {
			return nil, err
		}
		cq.Question = &q
		associations = append(associations, cq)
	}
	return associations, rows.Err()
}
