package grading

import (
	"time"

	"github.com/jamgrade/jamgrade-backend/internal/model"
)

// Autograde computes an AUTOGRADED grading for objective question types.
// Essay and web questions return nil: they stay ungraded until a professor
// grades them manually. A missing answer yields 0 points but still gets a
// grading so the sign-off workflow covers every participant.
func Autograde(q *model.Question, maxPoints int, ans *model.AnswerPayload, now time.Time) *model.StudentGrading {
	if q == nil {
		return nil
	}

	var points int
	switch q.Type {
	case model.QuestionTypeTrueFalse:
		if q.TrueFalse != nil && ans != nil && ans.TrueFalse != nil &&
			ans.TrueFalse.IsTrue == q.TrueFalse.IsTrue {
			points = maxPoints
		}

	case model.QuestionTypeMultipleChoice:
		if q.MultipleChoice != nil && ans != nil && ans.MultipleChoice != nil &&
			selectionMatches(q.MultipleChoice.Options, ans.MultipleChoice.Options) {
			points = maxPoints
		}

	case model.QuestionTypeCode:
		if ans != nil && ans.Code != nil && ans.Code.AllTestCasesPassed {
			points = maxPoints
		}

	case model.QuestionTypeDatabase:
		if q.Database != nil && ans != nil && ans.Database != nil &&
			allTestQueriesPassed(q.Database.Queries, ans.Database.Queries) {
			points = maxPoints
		}

	default:
		return nil
	}

	autograded := points
	return &model.StudentGrading{
		Status:           model.GradingStatusAutograded,
		PointsObtained:   points,
		IsCorrect:        points == maxPoints,
		AutogradedPoints: &autograded,
		UpdatedAt:        now,
	}
}

// selectionMatches reports whether the selected option set equals the
// correct option set.
func selectionMatches(correct []model.QuestionOption, selected []model.QuestionOption) bool {
	want := make(map[int]bool)
	for _, o := range correct {
		if o.IsCorrect {
			want[o.ID] = true
		}
	}
	if len(selected) != len(want) {
		return false
	}
	for _, o := range selected {
		if !want[o.ID] {
			return false
		}
	}
	return true
}

// allTestQueriesPassed checks every test query of the solution against the
// student's sub-query results, matched by order.
func allTestQueriesPassed(solution []model.DatabaseQuery, answers []model.DatabaseQueryAnswer) bool {
	results := make(map[int]bool)
	for _, qa := range answers {
		results[qa.Order] = qa.Success
	}
	for _, q := range solution {
		if q.TestQuery && !results[q.Order] {
			return false
		}
	}
	return true
}
