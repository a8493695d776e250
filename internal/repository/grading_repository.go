package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jamgrade/jamgrade-backend/internal/model"
)

// GradingRepository handles student grading data access.
type GradingRepository struct {
	pool *pgxpool.Pool
}

// NewGradingRepository creates a new GradingRepository.
func NewGradingRepository(pool *pgxpool.Pool) *GradingRepository {
	return &GradingRepository{pool: pool}
}

// StoredGrading is one persisted grading row with its addressing key.
type StoredGrading struct {
	QuestionID uuid.UUID
	UserEmail  string
	Grading    model.StudentGrading
}

// Get retrieves one grading, or (nil, nil) if none exists yet.
func (r *GradingRepository) Get(ctx context.Context, sessionID, questionID uuid.UUID, userEmail string) (*model.StudentGrading, error) {
	g := &model.StudentGrading{}
	err := r.pool.QueryRow(ctx,
		`SELECT status, points_obtained, is_correct, comment, signed_by, signed_at, autograded_points, updated_at
		 FROM student_gradings
		 WHERE session_id = $1 AND question_id = $2 AND user_email = $3`,
		sessionID, questionID, userEmail,
	).Scan(&g.Status, &g.PointsObtained, &g.IsCorrect, &g.Comment, &g.SignedBy, &g.SignedAt, &g.AutogradedPoints, &g.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Upsert creates or replaces one grading.
func (r *GradingRepository) Upsert(ctx context.Context, sessionID, questionID uuid.UUID, userEmail string, g *model.StudentGrading) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO student_gradings
			(session_id, question_id, user_email, status, points_obtained, is_correct, comment, signed_by, signed_at, autograded_points, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		 ON CONFLICT (session_id, question_id, user_email) DO UPDATE
		 SET status = EXCLUDED.status,
		     points_obtained = EXCLUDED.points_obtained,
		     is_correct = EXCLUDED.is_correct,
		     comment = EXCLUDED.comment,
		     signed_by = EXCLUDED.signed_by,
		     signed_at = EXCLUDED.signed_at,
		     autograded_points = EXCLUDED.autograded_points,
		     updated_at = NOW()`,
		sessionID, questionID, userEmail,
		g.Status, g.PointsObtained, g.IsCorrect, g.Comment, g.SignedBy, g.SignedAt, g.AutogradedPoints)
	return err
}

// BulkUpsert writes a batch of gradings in one round-trip using UNNEST.
// Used by the grading worker to flush autograde and bulk sign-off batches.
func (r *GradingRepository) BulkUpsert(ctx context.Context, sessionID uuid.UUID, batch []StoredGrading) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	questionIDs := make([]uuid.UUID, 0, n)
	emails := make([]string, 0, n)
	statuses := make([]string, 0, n)
	points := make([]int, 0, n)
	corrects := make([]bool, 0, n)
	comments := make([]string, 0, n)
	signedBys := make([]string, 0, n)
	signedAts := make([]*time.Time, 0, n)
	autogradedPoints := make([]*int, 0, n)

	for _, sg := range batch {
		questionIDs = append(questionIDs, sg.QuestionID)
		emails = append(emails, sg.UserEmail)
		statuses = append(statuses, string(sg.Grading.Status))
		points = append(points, sg.Grading.PointsObtained)
		corrects = append(corrects, sg.Grading.IsCorrect)
		comments = append(comments, sg.Grading.Comment)
		signedBys = append(signedBys, sg.Grading.SignedBy)
		signedAts = append(signedAts, sg.Grading.SignedAt)
		autogradedPoints = append(autogradedPoints, sg.Grading.AutogradedPoints)
	}

	query := `
		INSERT INTO student_gradings
			(session_id, question_id, user_email, status, points_obtained, is_correct, comment, signed_by, signed_at, autograded_points, updated_at)
		SELECT $1, u.question_id, u.user_email, u.status, u.points_obtained, u.is_correct, u.comment, u.signed_by, u.signed_at, u.autograded_points, NOW()
		FROM UNNEST(
			$2::uuid[],
			$3::text[],
			$4::text[],
			$5::int[],
			$6::bool[],
			$7::text[],
			$8::text[],
			$9::timestamptz[],
			$10::int[]
		) AS u (question_id, user_email, status, points_obtained, is_correct, comment, signed_by, signed_at, autograded_points)
		ON CONFLICT (session_id, question_id, user_email) DO UPDATE
		SET status = EXCLUDED.status,
		    points_obtained = EXCLUDED.points_obtained,
		    is_correct = EXCLUDED.is_correct,
		    comment = EXCLUDED.comment,
		    signed_by = EXCLUDED.signed_by,
		    signed_at = EXCLUDED.signed_at,
		    autograded_points = EXCLUDED.autograded_points,
		    updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		sessionID, questionIDs, emails, statuses, points, corrects, comments, signedBys, signedAts, autogradedPoints)
	return err
}

// ListBySession retrieves every grading of a session.
func (r *GradingRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]StoredGrading, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id, user_email, status, points_obtained, is_correct, comment, signed_by, signed_at, autograded_points, updated_at
		 FROM student_gradings
		 WHERE session_id = $1
		 ORDER BY question_id, user_email`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gradings []StoredGrading
	for rows.Next() {
		var sg StoredGrading
		g := &sg.Grading
		if err := rows.Scan(
			&sg.QuestionID, &sg.UserEmail,
			&g.Status, &g.PointsObtained, &g.IsCorrect, &g.Comment, &g.SignedBy, &g.SignedAt, &g.AutogradedPoints, &g.UpdatedAt,
		); err != nil {
			return nil, err
		}
		gradings = append(gradings, sg)
	}
	return gradings, rows.Err()
}
