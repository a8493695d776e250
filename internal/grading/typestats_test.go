package grading

import (
	"testing"

	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeSpecificStatsTrueFalse(t *testing.T) {
	assoc := model.SessionQuestion{
		Question: &model.Question{Type: model.QuestionTypeTrueFalse, TrueFalse: &model.TrueFalseQuestion{IsTrue: true}},
		Answers: []model.StudentAnswer{
			{Payload: &model.AnswerPayload{TrueFalse: &model.TrueFalseAnswer{IsTrue: true}}},
			{Payload: &model.AnswerPayload{TrueFalse: &model.TrueFalseAnswer{IsTrue: true}}},
			{Payload: &model.AnswerPayload{TrueFalse: &model.TrueFalseAnswer{IsTrue: false}}},
			{}, // missing answers are excluded from the tally
		},
	}

	s := TypeSpecificStats(assoc)
	require.NotNil(t, s)
	require.NotNil(t, s.TrueFalse)
	assert.Equal(t, 2, s.TrueFalse.True)
	assert.Equal(t, 1, s.TrueFalse.False)
}

func TestTypeSpecificStatsMultipleChoice(t *testing.T) {
	assoc := model.SessionQuestion{
		Question: &model.Question{
			Type: model.QuestionTypeMultipleChoice,
			MultipleChoice: &model.MultipleChoiceQuestion{
				Options: []model.QuestionOption{
					{ID: 1, Text: "red"},
					{ID: 2, Text: "green"},
				},
			},
		},
		Answers: []model.StudentAnswer{
			{Payload: &model.AnswerPayload{MultipleChoice: &model.MultipleChoiceAnswer{Options: []model.QuestionOption{{ID: 1}}}}},
			{Payload: &model.AnswerPayload{MultipleChoice: &model.MultipleChoiceAnswer{Options: []model.QuestionOption{{ID: 1}, {ID: 2}}}}},
		},
	}

	s := TypeSpecificStats(assoc)
	require.NotNil(t, s)
	require.NotNil(t, s.MultipleChoice)
	require.Len(t, s.MultipleChoice.Options, 2)
	assert.Equal(t, OptionCount{ID: 1, Text: "red", Count: 2}, s.MultipleChoice.Options[0])
	assert.Equal(t, OptionCount{ID: 2, Text: "green", Count: 1}, s.MultipleChoice.Options[1])
}

func TestTypeSpecificStatsEssaySubmissions(t *testing.T) {
	assoc := model.SessionQuestion{
		Question: &model.Question{Type: model.QuestionTypeEssay, Essay: &model.EssayQuestion{}},
		Answers: []model.StudentAnswer{
			{Payload: &model.AnswerPayload{Essay: &model.EssayAnswer{Content: "x"}}},
			{},
			{},
		},
	}

	s := TypeSpecificStats(assoc)
	require.NotNil(t, s)
	require.NotNil(t, s.Essay)
	assert.Equal(t, 1, s.Essay.Submitted)
	assert.Equal(t, 2, s.Essay.Missing)
}

func TestTypeSpecificStatsDatabase(t *testing.T) {
	assoc := model.SessionQuestion{
		Question: &model.Question{
			Type: model.QuestionTypeDatabase,
			Database: &model.DatabaseQuestion{
				Queries: []model.DatabaseQuery{
					{Order: 1, Title: "select", TestQuery: true, Lint: true},
					{Order: 2, Title: "join", TestQuery: true},
				},
			},
		},
		Answers: []model.StudentAnswer{
			{Payload: &model.AnswerPayload{Database: &model.DatabaseAnswer{Queries: []model.DatabaseQueryAnswer{
				{Order: 1, Success: true, LintPassed: false},
				{Order: 2, Success: false},
			}}}},
			{Payload: &model.AnswerPayload{Database: &model.DatabaseAnswer{Queries: []model.DatabaseQueryAnswer{
				{Order: 1, Success: true, LintPassed: true},
			}}}},
		},
	}

	s := TypeSpecificStats(assoc)
	require.NotNil(t, s)
	require.NotNil(t, s.Database)

	require.Len(t, s.Database.TestQueries, 2)
	assert.Equal(t, QueryStats{Order: 1, Title: "select", Success: 2, Failure: 0}, s.Database.TestQueries[0])
	assert.Equal(t, QueryStats{Order: 2, Title: "join", Success: 0, Failure: 1}, s.Database.TestQueries[1])

	require.Len(t, s.Database.LintQueries, 1)
	assert.Equal(t, QueryStats{Order: 1, Title: "select", Success: 1, Failure: 1}, s.Database.LintQueries[0])
}

func TestTypeSpecificStatsNilQuestion(t *testing.T) {
	assert.Nil(t, TypeSpecificStats(model.SessionQuestion{}))
}
