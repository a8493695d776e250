package answer

import (
	"testing"

	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool    { return &v }
func strPtr(s string) *string { return &s }

func TestNormalizeNilRawDeletes(t *testing.T) {
	for _, qt := range []model.QuestionType{
		model.QuestionTypeTrueFalse, model.QuestionTypeMultipleChoice,
		model.QuestionTypeEssay, model.QuestionTypeCode,
		model.QuestionTypeWeb, model.QuestionTypeDatabase,
	} {
		got, err := Normalize(qt, nil, nil)
		require.NoError(t, err, "type %s", qt)
		assert.Nil(t, got, "type %s", qt)
	}
}

func TestNormalizeTrueFalse(t *testing.T) {
	got, err := Normalize(model.QuestionTypeTrueFalse, &model.RawAnswer{IsTrue: boolPtr(false)}, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.TrueFalse)
	assert.False(t, got.TrueFalse.IsTrue)

	got, err = Normalize(model.QuestionTypeTrueFalse, &model.RawAnswer{}, nil)
	require.NoError(t, err)
	assert.Nil(t, got, "unset boolean clears the answer")
}

func TestNormalizeMultipleChoiceKeepsOnlySelected(t *testing.T) {
	raw := &model.RawAnswer{Options: []model.QuestionOption{
		{ID: 1, IsCorrect: true},
		{ID: 2, IsCorrect: false},
		{ID: 3, IsCorrect: true},
	}}

	got, err := Normalize(model.QuestionTypeMultipleChoice, raw, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.MultipleChoice)
	require.Len(t, got.MultipleChoice.Options, 2)
	assert.Equal(t, 1, got.MultipleChoice.Options[0].ID)
	assert.Equal(t, 3, got.MultipleChoice.Options[1].ID)
}

func TestNormalizeMultipleChoiceEmptySelectionDeletes(t *testing.T) {
	raw := &model.RawAnswer{Options: []model.QuestionOption{{ID: 1}, {ID: 2}}}
	got, err := Normalize(model.QuestionTypeMultipleChoice, raw, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNormalizeEssay(t *testing.T) {
	got, err := Normalize(model.QuestionTypeEssay, &model.RawAnswer{Content: strPtr("my answer")}, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "my answer", got.Essay.Content)

	got, err = Normalize(model.QuestionTypeEssay, &model.RawAnswer{Content: strPtr("")}, nil)
	require.NoError(t, err)
	assert.Nil(t, got, "empty editor clears the answer")
}

func TestNormalizeCodeMergesIntoExisting(t *testing.T) {
	existing := &model.AnswerPayload{Code: &model.CodeAnswer{
		Code:               "old code",
		Solution:           "old solution",
		AllTestCasesPassed: true,
		TestCaseResults:    []model.CodeTestResult{{Order: 1, Passed: true}},
	}}

	got, err := Normalize(model.QuestionTypeCode,
		&model.RawAnswer{Which: "code", NewCode: strPtr("new code")}, existing)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Code)

	assert.Equal(t, "new code", got.Code.Code)
	assert.Equal(t, "old solution", got.Code.Solution, "the other field survives the merge")
	assert.False(t, got.Code.AllTestCasesPassed, "an edit invalidates sandbox results")
	assert.Nil(t, got.Code.TestCaseResults)

	// The stored payload is never mutated in place.
	assert.Equal(t, "old code", existing.Code.Code)
	assert.True(t, existing.Code.AllTestCasesPassed)
}

func TestNormalizeCodeSolutionField(t *testing.T) {
	got, err := Normalize(model.QuestionTypeCode,
		&model.RawAnswer{Which: "solution", NewCode: strPtr("SELECT 1")}, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "SELECT 1", got.Code.Solution)
	assert.Empty(t, got.Code.Code)
}

func TestNormalizeCodeRejectsPartialEdit(t *testing.T) {
	_, err := Normalize(model.QuestionTypeCode, &model.RawAnswer{Which: "code"}, nil)
	assert.ErrorIs(t, err, ErrInvalidCodeEdit)

	_, err = Normalize(model.QuestionTypeCode, &model.RawAnswer{NewCode: strPtr("x")}, nil)
	assert.ErrorIs(t, err, ErrInvalidCodeEdit)

	_, err = Normalize(model.QuestionTypeCode,
		&model.RawAnswer{Which: "bogus", NewCode: strPtr("x")}, nil)
	assert.ErrorIs(t, err, ErrInvalidCodeEdit)
}

func TestNormalizeWeb(t *testing.T) {
	got, err := Normalize(model.QuestionTypeWeb,
		&model.RawAnswer{Web: &model.WebAnswer{HTML: "<p>hi</p>", CSS: "p{}"}}, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "<p>hi</p>", got.Web.HTML)

	got, err = Normalize(model.QuestionTypeWeb, &model.RawAnswer{Web: &model.WebAnswer{}}, nil)
	require.NoError(t, err)
	assert.Nil(t, got, "all-empty editors clear the answer")
}

func TestNormalizeDatabaseMergesByOrder(t *testing.T) {
	existing := &model.AnswerPayload{Database: &model.DatabaseAnswer{
		Queries: []model.DatabaseQueryAnswer{
			{Order: 1, Content: "SELECT 1", Success: true, LintPassed: true},
			{Order: 2, Content: "SELECT 2", Success: true},
		},
	}}

	raw := &model.RawAnswer{Queries: []model.DatabaseQueryAnswer{
		{Order: 2, Content: "SELECT 2 WHERE x"},
		{Order: 3, Content: "SELECT 3"},
	}}

	got, err := Normalize(model.QuestionTypeDatabase, raw, existing)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Database)
	require.Len(t, got.Database.Queries, 3)

	// Untouched query keeps its evaluation flags.
	assert.Equal(t, model.DatabaseQueryAnswer{Order: 1, Content: "SELECT 1", Success: true, LintPassed: true},
		got.Database.Queries[0])
	// Edited query loses them.
	assert.Equal(t, model.DatabaseQueryAnswer{Order: 2, Content: "SELECT 2 WHERE x"},
		got.Database.Queries[1])
	assert.Equal(t, model.DatabaseQueryAnswer{Order: 3, Content: "SELECT 3"},
		got.Database.Queries[2])
}

func TestNormalizeDatabaseEmptyEditNoExisting(t *testing.T) {
	got, err := Normalize(model.QuestionTypeDatabase, &model.RawAnswer{}, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNormalizeUnknownType(t *testing.T) {
	_, err := Normalize(model.QuestionType("matrix"), &model.RawAnswer{}, nil)
	assert.ErrorIs(t, err, ErrUnknownQuestionType)
}
