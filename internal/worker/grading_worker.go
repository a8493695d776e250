package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jamgrade/jamgrade-backend/internal/config"
	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/jamgrade/jamgrade-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	gradingBatchSize    = 50
	gradingBatchTimeout = 2 * time.Second
	gradingPollTimeout  = 1 * time.Second
)

// GradingWorker consumes persist_gradings_queue and writes gradings to
// PostgreSQL in per-session batches. Items come from the autograde fan-out
// on the GRADING phase transition.
type GradingWorker struct {
	gradingRepo *repository.GradingRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewGradingWorker creates a new GradingWorker.
func NewGradingWorker(gradingRepo *repository.GradingRepository, rdb *redis.Client, log zerolog.Logger) *GradingWorker {
	return &GradingWorker{
		gradingRepo: gradingRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "grading_worker").Logger(),
	}
}

type gradingTask struct {
	SessionID  string               `json:"session_id"`
	QuestionID string               `json:"question_id"`
	UserEmail  string               `json:"user_email"`
	Grading    model.StudentGrading `json:"grading"`
}

// Start begins the batching worker loop. Call in a goroutine.
func (w *GradingWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	batch := make([]*gradingTask, 0, gradingBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= gradingBatchSize || time.Since(lastFlush) >= gradingBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return

		default:
			item, err := w.rdb.BLPop(ctx, gradingPollTimeout, config.WorkerKey.PersistGradingsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var t gradingTask
			if err := json.Unmarshal([]byte(item[1]), &t); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &t)
		}
	}
}

// flushSafe writes the batch, falling back to single upserts and a requeue
// when the bulk write fails.
func (w *GradingWorker) flushSafe(ctx context.Context, batch []*gradingTask) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk grading write failed, using fallback")

		for _, t := range batch {
			if err := w.persistSingle(ctx, t); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed — requeueing")
				raw, _ := json.Marshal(t)
				w.rdb.RPush(ctx, config.WorkerKey.PersistGradingsQueue, raw)
			}
		}
	}
}

// bulkUpsert groups the batch by session and flushes each group with the
// UNNEST upsert.
func (w *GradingWorker) bulkUpsert(ctx context.Context, batch []*gradingTask) error {
	groups := make(map[uuid.UUID][]repository.StoredGrading)
	for _, t := range batch {
		sessionID, err := uuid.Parse(t.SessionID)
		if err != nil {
			return err
		}
		questionID, err := uuid.Parse(t.QuestionID)
		if err != nil {
			return err
		}
		groups[sessionID] = append(groups[sessionID], repository.StoredGrading{
			QuestionID: questionID,
			UserEmail:  t.UserEmail,
			Grading:    t.Grading,
		})
	}

	for sessionID, group := range groups {
		if err := w.gradingRepo.BulkUpsert(ctx, sessionID, group); err != nil {
			return err
		}
	}
	return nil
}

func (w *GradingWorker) persistSingle(ctx context.Context, t *gradingTask) error {
	sessionID, err := uuid.Parse(t.SessionID)
	if err != nil {
		return err
	}
	questionID, err := uuid.Parse(t.QuestionID)
	if err != nil {
		return err
	}
	return w.gradingRepo.Upsert(ctx, sessionID, questionID, t.UserEmail, &t.Grading)
}

// drain flushes everything still queued before shutdown.
func (w *GradingWorker) drain(ctx context.Context) {
	batch := make([]*gradingTask, 0, gradingBatchSize)
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistGradingsQueue).Result()
		if err != nil {
			break
		}
		var t gradingTask
		if err := json.Unmarshal([]byte(result), &t); err != nil {
			continue
		}
		batch = append(batch, &t)
		if len(batch) >= gradingBatchSize {
			w.flushSafe(ctx, batch)
			batch = batch[:0]
		}
	}
	w.flushSafe(ctx, batch)
}
