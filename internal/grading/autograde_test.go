package grading

import (
	"testing"

	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutogradeTrueFalse(t *testing.T) {
	q := &model.Question{
		Type:      model.QuestionTypeTrueFalse,
		TrueFalse: &model.TrueFalseQuestion{IsTrue: true},
	}

	g := Autograde(q, 5, &model.AnswerPayload{TrueFalse: &model.TrueFalseAnswer{IsTrue: true}}, now())
	require.NotNil(t, g)
	assert.Equal(t, model.GradingStatusAutograded, g.Status)
	assert.Equal(t, 5, g.PointsObtained)
	assert.True(t, g.IsCorrect)
	require.NotNil(t, g.AutogradedPoints)
	assert.Equal(t, 5, *g.AutogradedPoints)

	g = Autograde(q, 5, &model.AnswerPayload{TrueFalse: &model.TrueFalseAnswer{IsTrue: false}}, now())
	require.NotNil(t, g)
	assert.Equal(t, 0, g.PointsObtained)
	assert.False(t, g.IsCorrect)
}

func TestAutogradeMissingAnswerStillGrades(t *testing.T) {
	q := &model.Question{
		Type:      model.QuestionTypeTrueFalse,
		TrueFalse: &model.TrueFalseQuestion{IsTrue: true},
	}

	g := Autograde(q, 5, nil, now())
	require.NotNil(t, g, "missing answers still get a 0-point grading")
	assert.Equal(t, 0, g.PointsObtained)
	assert.Equal(t, model.GradingStatusAutograded, g.Status)
}

func TestAutogradeMultipleChoice(t *testing.T) {
	q := &model.Question{
		Type: model.QuestionTypeMultipleChoice,
		MultipleChoice: &model.MultipleChoiceQuestion{
			Options: []model.QuestionOption{
				{ID: 1, IsCorrect: true},
				{ID: 2, IsCorrect: false},
				{ID: 3, IsCorrect: true},
			},
		},
	}

	tests := []struct {
		name     string
		selected []model.QuestionOption
		want     int
	}{
		{"exact set", []model.QuestionOption{{ID: 1}, {ID: 3}}, 4},
		{"order irrelevant", []model.QuestionOption{{ID: 3}, {ID: 1}}, 4},
		{"missing one", []model.QuestionOption{{ID: 1}}, 0},
		{"extra wrong one", []model.QuestionOption{{ID: 1}, {ID: 2}, {ID: 3}}, 0},
		{"nothing selected", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans := &model.AnswerPayload{
				MultipleChoice: &model.MultipleChoiceAnswer{Options: tt.selected},
			}
			g := Autograde(q, 4, ans, now())
			require.NotNil(t, g)
			assert.Equal(t, tt.want, g.PointsObtained)
		})
	}
}

func TestAutogradeCode(t *testing.T) {
	q := &model.Question{Type: model.QuestionTypeCode, Code: &model.CodeQuestion{Language: "go"}}

	g := Autograde(q, 10, &model.AnswerPayload{Code: &model.CodeAnswer{AllTestCasesPassed: true}}, now())
	require.NotNil(t, g)
	assert.Equal(t, 10, g.PointsObtained)

	g = Autograde(q, 10, &model.AnswerPayload{Code: &model.CodeAnswer{AllTestCasesPassed: false}}, now())
	require.NotNil(t, g)
	assert.Equal(t, 0, g.PointsObtained)
}

func TestAutogradeDatabase(t *testing.T) {
	q := &model.Question{
		Type: model.QuestionTypeDatabase,
		Database: &model.DatabaseQuestion{
			Queries: []model.DatabaseQuery{
				{Order: 1, TestQuery: true},
				{Order: 2, TestQuery: false, Lint: true}, // lint-only, not scored
				{Order: 3, TestQuery: true},
			},
		},
	}

	ans := &model.AnswerPayload{
		Database: &model.DatabaseAnswer{
			Queries: []model.DatabaseQueryAnswer{
				{Order: 1, Success: true},
				{Order: 2, Success: false},
				{Order: 3, Success: true},
			},
		},
	}
	g := Autograde(q, 6, ans, now())
	require.NotNil(t, g)
	assert.Equal(t, 6, g.PointsObtained, "lint-only queries do not affect the score")

	ans.Database.Queries[2].Success = false
	g = Autograde(q, 6, ans, now())
	require.NotNil(t, g)
	assert.Equal(t, 0, g.PointsObtained)
}

func TestAutogradeSubjectiveTypesReturnNil(t *testing.T) {
	essay := &model.Question{Type: model.QuestionTypeEssay, Essay: &model.EssayQuestion{}}
	web := &model.Question{Type: model.QuestionTypeWeb, Web: &model.WebQuestion{}}

	assert.Nil(t, Autograde(essay, 5, &model.AnswerPayload{Essay: &model.EssayAnswer{Content: "x"}}, now()))
	assert.Nil(t, Autograde(web, 5, &model.AnswerPayload{Web: &model.WebAnswer{HTML: "<p>"}}, now()))
	assert.Nil(t, Autograde(nil, 5, nil, now()))
}
