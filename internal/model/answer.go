package model

import "time"

// AnswerStatus is derived from payload presence, never stored independently.
type AnswerStatus string

const (
	AnswerStatusMissing   AnswerStatus = "MISSING"
	AnswerStatusSubmitted AnswerStatus = "SUBMITTED"
)

// AnswerPayload is the tagged union of per-type answer payloads. At most one
// variant is non-nil. A nil *AnswerPayload means "no answer" (MISSING).
type AnswerPayload struct {
	TrueFalse      *TrueFalseAnswer      `json:"true_false,omitempty"`
	MultipleChoice *MultipleChoiceAnswer `json:"multiple_choice,omitempty"`
	Essay          *EssayAnswer          `json:"essay,omitempty"`
	Code           *CodeAnswer           `json:"code,omitempty"`
	Web            *WebAnswer            `json:"web,omitempty"`
	Database       *DatabaseAnswer       `json:"database,omitempty"`
}

// IsEmpty reports whether no variant is populated.
func (p *AnswerPayload) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.TrueFalse == nil && p.MultipleChoice == nil && p.Essay == nil &&
		p.Code == nil && p.Web == nil && p.Database == nil
}

// StudentAnswer is one participant's answer to one session question.
type StudentAnswer struct {
	UserEmail   string          `json:"user_email"`
	Status      AnswerStatus    `json:"status"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
	Payload     *AnswerPayload  `json:"answer,omitempty"`
	Grading     *StudentGrading `json:"student_grading,omitempty"`
}

// TrueFalseAnswer is the student's boolean choice.
type TrueFalseAnswer struct {
	IsTrue bool `json:"is_true"`
}

// MultipleChoiceAnswer holds only the selected options.
type MultipleChoiceAnswer struct {
	Options []QuestionOption `json:"options"`
}

// EssayAnswer is the editor content.
type EssayAnswer struct {
	Content string `json:"content"`
}

// CodeAnswer holds the two editable code fields plus sandbox results. Fields
// are merged individually, never wholesale replaced.
type CodeAnswer struct {
	Code               string           `json:"code"`
	Solution           string           `json:"solution,omitempty"`
	AllTestCasesPassed bool             `json:"all_test_cases_passed"`
	TestCaseResults    []CodeTestResult `json:"test_case_results,omitempty"`
}

// CodeTestResult is the sandbox outcome for one test case.
type CodeTestResult struct {
	Order  int    `json:"order"`
	Passed bool   `json:"passed"`
	Output string `json:"output,omitempty"`
}

// WebAnswer holds the three web editor contents.
type WebAnswer struct {
	HTML string `json:"html,omitempty"`
	CSS  string `json:"css,omitempty"`
	JS   string `json:"js,omitempty"`
}

// DatabaseQueryAnswer is the student's sub-query matched to a solution query
// by order, with its evaluation outcome.
type DatabaseQueryAnswer struct {
	Order      int    `json:"order"`
	Content    string `json:"content"`
	Success    bool   `json:"success"`
	LintPassed bool   `json:"lint_passed"`
}

// DatabaseAnswer holds the per-query answers.
type DatabaseAnswer struct {
	Queries []DatabaseQueryAnswer `json:"queries"`
}

// SubmitAnswerRequest carries the raw UI value for one question. A request
// whose payload normalizes to nil deletes the stored answer; this is
// distinguishable from "not yet answered" at the call site.
type SubmitAnswerRequest struct {
	Answer *RawAnswer `json:"answer"`
}

// RawAnswer is the pre-normalization student input, shaped per question type.
type RawAnswer struct {
	IsTrue  *bool            `json:"is_true,omitempty"`
	Options []QuestionOption `json:"options,omitempty"`
	Content *string          `json:"content,omitempty"`
	// Code edits are partial: Which selects the field, NewCode the value.
	Which   string                `json:"which,omitempty" binding:"omitempty,oneof=code solution"`
	NewCode *string               `json:"new_code,omitempty"`
	Web     *WebAnswer            `json:"web,omitempty"`
	Queries []DatabaseQueryAnswer `json:"queries,omitempty"`
}
