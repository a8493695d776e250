package grading

import (
	"sort"

	"github.com/jamgrade/jamgrade-backend/internal/model"
)

// TypeStats is the per-question-type answer breakdown. Only the field
// matching Type is populated.
type TypeStats struct {
	Type           model.QuestionType   `json:"type"`
	TrueFalse      *TrueFalseStats      `json:"true_false,omitempty"`
	MultipleChoice *MultipleChoiceStats `json:"multiple_choice,omitempty"`
	Code           *PassFailStats       `json:"code,omitempty"`
	Essay          *SubmissionStats     `json:"essay,omitempty"`
	Web            *SubmissionStats     `json:"web,omitempty"`
	Database       *DatabaseStats       `json:"database,omitempty"`
}

// TrueFalseStats counts boolean selections.
type TrueFalseStats struct {
	True  int `json:"true"`
	False int `json:"false"`
}

// OptionCount is the selection count for one multiple-choice option.
type OptionCount struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// MultipleChoiceStats counts per-option selections.
type MultipleChoiceStats struct {
	Options []OptionCount `json:"options"`
}

// PassFailStats counts sandbox outcomes. Passed means all test cases passed
// on a submitted answer.
type PassFailStats struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// SubmissionStats counts submitted vs missing answers.
type SubmissionStats struct {
	Submitted int `json:"submitted"`
	Missing   int `json:"missing"`
}

// QueryStats is the success/failure tally for one ordered sub-query.
type QueryStats struct {
	Order   int    `json:"order"`
	Title   string `json:"title,omitempty"`
	Success int    `json:"success"`
	Failure int    `json:"failure"`
}

// DatabaseStats splits per-query tallies into test and lint queries.
type DatabaseStats struct {
	TestQueries []QueryStats `json:"test_queries"`
	LintQueries []QueryStats `json:"lint_queries"`
}

// TypeSpecificStats computes the per-type breakdown for one association.
// Returns nil for a nil question or an unrecognized type; callers must
// handle nil instead of expecting a throw.
func TypeSpecificStats(assoc model.SessionQuestion) *TypeStats {
	q := assoc.Question
	if q == nil {
		return nil
	}

	switch q.Type {
	case model.QuestionTypeTrueFalse:
		s := &TrueFalseStats{}
		for _, a := range assoc.Answers {
			if a.Payload == nil || a.Payload.TrueFalse == nil {
				continue
			}
			if a.Payload.TrueFalse.IsTrue {
				s.True++
			} else {
				s.False++
			}
		}
		return &TypeStats{Type: q.Type, TrueFalse: s}

	case model.QuestionTypeMultipleChoice:
		if q.MultipleChoice == nil {
			return &TypeStats{Type: q.Type, MultipleChoice: &MultipleChoiceStats{}}
		}
		counts := make(map[int]int)
		for _, a := range assoc.Answers {
			if a.Payload == nil || a.Payload.MultipleChoice == nil {
				continue
			}
			for _, o := range a.Payload.MultipleChoice.Options {
				counts[o.ID]++
			}
		}
		s := &MultipleChoiceStats{}
		for _, o := range q.MultipleChoice.Options {
			s.Options = append(s.Options, OptionCount{ID: o.ID, Text: o.Text, Count: counts[o.ID]})
		}
		return &TypeStats{Type: q.Type, MultipleChoice: s}

	case model.QuestionTypeCode:
		s := &PassFailStats{}
		for _, a := range assoc.Answers {
			if a.Payload == nil || a.Payload.Code == nil {
				continue
			}
			if a.Payload.Code.AllTestCasesPassed {
				s.Passed++
			} else {
				s.Failed++
			}
		}
		return &TypeStats{Type: q.Type, Code: s}

	case model.QuestionTypeEssay:
		return &TypeStats{Type: q.Type, Essay: submissionStats(assoc.Answers)}

	case model.QuestionTypeWeb:
		return &TypeStats{Type: q.Type, Web: submissionStats(assoc.Answers)}

	case model.QuestionTypeDatabase:
		if q.Database == nil {
			return &TypeStats{Type: q.Type, Database: &DatabaseStats{}}
		}
		return &TypeStats{Type: q.Type, Database: databaseStats(q.Database, assoc.Answers)}
	}

	return nil
}

func submissionStats(answers []model.StudentAnswer) *SubmissionStats {
	s := &SubmissionStats{}
	for _, a := range answers {
		if a.Payload.IsEmpty() {
			s.Missing++
		} else {
			s.Submitted++
		}
	}
	return s
}

// databaseStats matches student sub-query answers to the solution's queries
// by order.
func databaseStats(dq *model.DatabaseQuestion, answers []model.StudentAnswer) *DatabaseStats {
	test := make(map[int]*QueryStats)
	lint := make(map[int]*QueryStats)
	for _, q := range dq.Queries {
		if q.TestQuery {
			test[q.Order] = &QueryStats{Order: q.Order, Title: q.Title}
		}
		if q.Lint {
			lint[q.Order] = &QueryStats{Order: q.Order, Title: q.Title}
		}
	}

	for _, a := range answers {
		if a.Payload == nil || a.Payload.Database == nil {
			continue
		}
		for _, qa := range a.Payload.Database.Queries {
			if qs, ok := test[qa.Order]; ok {
				if qa.Success {
					qs.Success++
				} else {
					qs.Failure++
				}
			}
			if qs, ok := lint[qa.Order]; ok {
				if qa.LintPassed {
					qs.Success++
				} else {
					qs.Failure++
				}
			}
		}
	}

	return &DatabaseStats{
		TestQueries: sortedQueryStats(test),
		LintQueries: sortedQueryStats(lint),
	}
}

func sortedQueryStats(m map[int]*QueryStats) []QueryStats {
	out := make([]QueryStats, 0, len(m))
	for _, qs := range m {
		out = append(out, *qs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
