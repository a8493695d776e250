// Package answer translates raw student input into typed answer payloads
// and owns the debounced autosave plumbing for the live exam stream.
package answer

import (
	"errors"
	"sort"

	"github.com/jamgrade/jamgrade-backend/internal/model"
)

// Normalization errors.
var (
	ErrUnknownQuestionType = errors.New("unknown question type")
	ErrInvalidCodeEdit     = errors.New("code edits require which and new_code")
)

// Normalize translates a raw UI value into the typed payload persisted for
// the question type. A nil result (with nil error) means "remove the
// answer", which callers must treat as distinct from "not yet answered".
// Code edits are partial: the changed field is merged into the existing
// payload, never replacing it wholesale.
func Normalize(t model.QuestionType, raw *model.RawAnswer, existing *model.AnswerPayload) (*model.AnswerPayload, error) {
	if raw == nil {
		return nil, nil
	}

	switch t {
	case model.QuestionTypeTrueFalse:
		if raw.IsTrue == nil {
			return nil, nil
		}
		return &model.AnswerPayload{TrueFalse: &model.TrueFalseAnswer{IsTrue: *raw.IsTrue}}, nil

	case model.QuestionTypeMultipleChoice:
		var selected []model.QuestionOption
		for _, o := range raw.Options {
			if o.IsCorrect {
				selected = append(selected, o)
			}
		}
		if len(selected) == 0 {
			return nil, nil
		}
		return &model.AnswerPayload{MultipleChoice: &model.MultipleChoiceAnswer{Options: selected}}, nil

	case model.QuestionTypeEssay:
		if raw.Content == nil || *raw.Content == "" {
			return nil, nil
		}
		return &model.AnswerPayload{Essay: &model.EssayAnswer{Content: *raw.Content}}, nil

	case model.QuestionTypeCode:
		return mergeCodeEdit(raw, existing)

	case model.QuestionTypeWeb:
		if raw.Web == nil || (raw.Web.HTML == "" && raw.Web.CSS == "" && raw.Web.JS == "") {
			return nil, nil
		}
		w := *raw.Web
		return &model.AnswerPayload{Web: &w}, nil

	case model.QuestionTypeDatabase:
		return mergeDatabaseEdit(raw, existing), nil
	}

	return nil, ErrUnknownQuestionType
}

// mergeCodeEdit applies a single-field update to the existing code payload.
func mergeCodeEdit(raw *model.RawAnswer, existing *model.AnswerPayload) (*model.AnswerPayload, error) {
	if raw.NewCode == nil || (raw.Which != "code" && raw.Which != "solution") {
		return nil, ErrInvalidCodeEdit
	}

	code := model.CodeAnswer{}
	if existing != nil && existing.Code != nil {
		code = *existing.Code
	}
	switch raw.Which {
	case "code":
		code.Code = *raw.NewCode
	case "solution":
		code.Solution = *raw.NewCode
	}
	// Any edit invalidates previous sandbox results.
	code.AllTestCasesPassed = false
	code.TestCaseResults = nil

	return &model.AnswerPayload{Code: &code}, nil
}

// mergeDatabaseEdit merges the provided sub-queries by order into the
// existing payload. Edited queries lose their previous evaluation flags.
func mergeDatabaseEdit(raw *model.RawAnswer, existing *model.AnswerPayload) *model.AnswerPayload {
	if len(raw.Queries) == 0 && (existing == nil || existing.Database == nil) {
		return nil
	}

	merged := make(map[int]model.DatabaseQueryAnswer)
	if existing != nil && existing.Database != nil {
		for _, qa := range existing.Database.Queries {
			merged[qa.Order] = qa
		}
	}
	for _, qa := range raw.Queries {
		merged[qa.Order] = model.DatabaseQueryAnswer{Order: qa.Order, Content: qa.Content}
	}

	db := &model.DatabaseAnswer{}
	for _, qa := range merged {
		db.Queries = append(db.Queries, qa)
	}
	sort.Slice(db.Queries, func(i, j int) bool { return db.Queries[i].Order < db.Queries[j].Order })
	if len(db.Queries) == 0 {
		return nil
	}
	return &model.AnswerPayload{Database: db}
}
