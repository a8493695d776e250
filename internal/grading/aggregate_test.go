package grading

import (
	"testing"
	"time"

	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func signed(points int, status model.GradingStatus) *model.StudentGrading {
	now := time.Now()
	return &model.StudentGrading{
		Status:         status,
		PointsObtained: points,
		SignedBy:       "prof@example.com",
		SignedAt:       &now,
	}
}

func unsigned(points int, status model.GradingStatus) *model.StudentGrading {
	return &model.StudentGrading{Status: status, PointsObtained: points}
}

func TestSignedSuccessRate(t *testing.T) {
	assocs := []model.SessionQuestion{
		{
			Points: 5,
			Answers: []model.StudentAnswer{
				{UserEmail: "a@x.com", Grading: signed(5, model.GradingStatusGraded)},
				{UserEmail: "b@x.com", Grading: signed(3, model.GradingStatusGraded)},
			},
		},
		{
			Points: 10,
			Answers: []model.StudentAnswer{
				{UserEmail: "a@x.com", Grading: signed(8, model.GradingStatusGraded)},
				// Unsigned gradings stay out of both numerator and denominator.
				{UserEmail: "b@x.com", Grading: unsigned(10, model.GradingStatusAutograded)},
			},
		},
	}

	// (5+3+8) / (5+5+10) = 80%
	assert.Equal(t, 80, SignedSuccessRate(assocs))
}

func TestSignedSuccessRateEmptySession(t *testing.T) {
	assert.Equal(t, 0, SignedSuccessRate(nil))
	assert.Equal(t, 0, SignedSuccessRate([]model.SessionQuestion{{Points: 5}}))
}

func TestSignedSuccessRateAllUnsigned(t *testing.T) {
	assocs := []model.SessionQuestion{
		{
			Points: 5,
			Answers: []model.StudentAnswer{
				{UserEmail: "a@x.com", Grading: unsigned(5, model.GradingStatusAutograded)},
			},
		},
	}
	assert.Equal(t, 0, SignedSuccessRate(assocs))
}

func TestSignedSuccessRateRounds(t *testing.T) {
	assocs := []model.SessionQuestion{
		{
			Points: 3,
			Answers: []model.StudentAnswer{
				{UserEmail: "a@x.com", Grading: signed(1, model.GradingStatusGraded)},
			},
		},
	}
	// 1/3 rounds to 33, not truncated-then-floored garbage.
	assert.Equal(t, 33, SignedSuccessRate(assocs))

	assocs[0].Answers[0].Grading.PointsObtained = 2
	assert.Equal(t, 67, SignedSuccessRate(assocs))
}

func TestObtainedPoints(t *testing.T) {
	assocs := []model.SessionQuestion{
		{
			Points: 5,
			Answers: []model.StudentAnswer{
				{UserEmail: "a@x.com", Grading: signed(4, model.GradingStatusGraded)},
				{UserEmail: "b@x.com", Grading: signed(2, model.GradingStatusGraded)},
			},
		},
		{
			Points: 10,
			Answers: []model.StudentAnswer{
				{UserEmail: "a@x.com", Grading: unsigned(7, model.GradingStatusAutograded)},
				{UserEmail: "b@x.com"}, // missing grading counts as 0
			},
		},
	}

	assert.Equal(t, 11, ObtainedPoints(assocs, "a@x.com"))
	assert.Equal(t, 2, ObtainedPoints(assocs, "b@x.com"))
	assert.Equal(t, 0, ObtainedPoints(assocs, "nobody@x.com"))
}

func TestTotalPoints(t *testing.T) {
	assocs := []model.SessionQuestion{{Points: 5}, {Points: 10}, {Points: 0}}
	assert.Equal(t, 15, TotalPoints(assocs))
	assert.Equal(t, 0, TotalPoints(nil))
}

func TestGradingStats(t *testing.T) {
	assocs := []model.SessionQuestion{
		{
			Points: 5,
			Answers: []model.StudentAnswer{
				{UserEmail: "a@x.com", Grading: signed(5, model.GradingStatusGraded)},
				{UserEmail: "b@x.com", Grading: unsigned(5, model.GradingStatusAutograded)},
				{UserEmail: "c@x.com", Grading: unsigned(0, model.GradingStatusUngraded)},
				{UserEmail: "d@x.com"}, // no grading at all
			},
		},
	}

	s := GradingStats(assocs)
	assert.Equal(t, 3, s.TotalGradings)
	assert.Equal(t, 1, s.TotalSigned)
	assert.Equal(t, 1, s.TotalAutogradedUnsigned)
}

func TestQuestionSuccessRateCountsUnsigned(t *testing.T) {
	assoc := model.SessionQuestion{
		Points: 10,
		Answers: []model.StudentAnswer{
			{UserEmail: "a@x.com", Grading: signed(10, model.GradingStatusGraded)},
			{UserEmail: "b@x.com", Grading: unsigned(5, model.GradingStatusAutograded)},
			{UserEmail: "c@x.com"}, // answered but ungraded still widens the denominator
		},
	}

	// (10+5+0) / (10+10+10) = 50%
	assert.Equal(t, 50, QuestionSuccessRate(assoc))
}

func TestQuestionSuccessRateNoAnswers(t *testing.T) {
	assert.Equal(t, 0, QuestionSuccessRate(model.SessionQuestion{Points: 10}))
}
