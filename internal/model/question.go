package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType discriminates the question payload variants. The set is
// closed; unknown values are rejected at binding time.
type QuestionType string

const (
	QuestionTypeTrueFalse      QuestionType = "trueFalse"
	QuestionTypeMultipleChoice QuestionType = "multipleChoice"
	QuestionTypeEssay          QuestionType = "essay"
	QuestionTypeCode           QuestionType = "code"
	QuestionTypeWeb            QuestionType = "web"
	QuestionTypeDatabase       QuestionType = "database"
)

// Question is a tagged union: exactly one variant pointer matching Type is
// non-nil. Dispatch on Type, never via string-indexed lookup.
type Question struct {
	ID            uuid.UUID    `json:"id"`
	BankID        uuid.UUID    `json:"bank_id"`
	Title         string       `json:"title"`
	Content       string       `json:"content"`
	Type          QuestionType `json:"type"`
	DefaultPoints int          `json:"default_points"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	TrueFalse      *TrueFalseQuestion      `json:"true_false,omitempty"`
	MultipleChoice *MultipleChoiceQuestion `json:"multiple_choice,omitempty"`
	Essay          *EssayQuestion          `json:"essay,omitempty"`
	Code           *CodeQuestion           `json:"code,omitempty"`
	Web            *WebQuestion            `json:"web,omitempty"`
	Database       *DatabaseQuestion       `json:"database,omitempty"`
}

// HasVariant reports whether the variant matching Type is populated.
func (q *Question) HasVariant() bool {
	switch q.Type {
	case QuestionTypeTrueFalse:
		return q.TrueFalse != nil
	case QuestionTypeMultipleChoice:
		return q.MultipleChoice != nil
	case QuestionTypeEssay:
		return q.Essay != nil
	case QuestionTypeCode:
		return q.Code != nil
	case QuestionTypeWeb:
		return q.Web != nil
	case QuestionTypeDatabase:
		return q.Database != nil
	}
	return false
}

// TrueFalseQuestion holds the expected boolean answer.
type TrueFalseQuestion struct {
	IsTrue bool `json:"is_true"`
}

// QuestionOption is a single multiple-choice option. IsCorrect doubles as
// the selection flag on student answers.
type QuestionOption struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// MultipleChoiceQuestion holds the option list with correct flags set.
type MultipleChoiceQuestion struct {
	Options []QuestionOption `json:"options"`
}

// EssayQuestion optionally seeds the editor with a template.
type EssayQuestion struct {
	Template string `json:"template,omitempty"`
}

// CodeQuestion carries the starter code, the reference solution and the test
// cases run by the external sandbox.
type CodeQuestion struct {
	Language     string         `json:"language"`
	TemplateCode string         `json:"template_code,omitempty"`
	SolutionCode string         `json:"solution_code,omitempty"`
	TestCases    []CodeTestCase `json:"test_cases,omitempty"`
}

// CodeTestCase is one sandbox test, ordered.
type CodeTestCase struct {
	Order          int    `json:"order"`
	Input          string `json:"input,omitempty"`
	ExpectedOutput string `json:"expected_output,omitempty"`
}

// WebQuestion seeds the three web editors.
type WebQuestion struct {
	TemplateHTML string `json:"template_html,omitempty"`
	TemplateCSS  string `json:"template_css,omitempty"`
	TemplateJS   string `json:"template_js,omitempty"`
}

// DatabaseQuery is one ordered sub-query of a database question. Test
// queries are checked against the solution output; lint queries against the
// lint rules only.
type DatabaseQuery struct {
	Order     int    `json:"order"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content,omitempty"`
	TestQuery bool   `json:"test_query"`
	Lint      bool   `json:"lint"`
}

// DatabaseQuestion holds the ordered solution queries.
type DatabaseQuestion struct {
	Queries []DatabaseQuery `json:"queries"`
}

// CreateQuestionRequest is the payload for adding a question to a bank.
// Exactly one variant matching Type must be present; the service enforces it.
type CreateQuestionRequest struct {
	Title         string       `json:"title" binding:"required,min=1,max=255"`
	Content       string       `json:"content" binding:"omitempty,max=100000"`
	Type          QuestionType `json:"type" binding:"required,oneof=trueFalse multipleChoice essay code web database"`
	DefaultPoints int          `json:"default_points" binding:"min=0,max=1000"`

	TrueFalse      *TrueFalseQuestion      `json:"true_false" binding:"omitempty"`
	MultipleChoice *MultipleChoiceQuestion `json:"multiple_choice" binding:"omitempty"`
	Essay          *EssayQuestion          `json:"essay" binding:"omitempty"`
	Code           *CodeQuestion           `json:"code" binding:"omitempty"`
	Web            *WebQuestion            `json:"web" binding:"omitempty"`
	Database       *DatabaseQuestion       `json:"database" binding:"omitempty"`
}

// QuestionBank groups questions under a group scope.
type QuestionBank struct {
	ID         uuid.UUID `json:"id"`
	GroupScope string    `json:"group_scope"`
	Label      string    `json:"label"`
	OwnerEmail string    `json:"owner_email"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Collection is an ordered, point-weighted set of questions used to seed a
// session's question list.
type Collection struct {
	ID         uuid.UUID            `json:"id"`
	GroupScope string               `json:"group_scope"`
	Label      string               `json:"label"`
	Questions  []CollectionQuestion `json:"questions,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// CollectionQuestion is the question-to-collection association.
type CollectionQuestion struct {
	CollectionID uuid.UUID `json:"collection_id"`
	QuestionID   uuid.UUID `json:"question_id"`
	Order        int       `json:"order"`
	Points       int       `json:"points"`
	Question     *Question `json:"question,omitempty"`
}

// CreateBankRequest is the payload for creating a question bank.
type CreateBankRequest struct {
	Label string `json:"label" binding:"required,min=1,max=255"`
}

// CreateCollectionRequest is the payload for creating a collection.
type CreateCollectionRequest struct {
	Label string `json:"label" binding:"required,min=1,max=255"`
}

// AddCollectionQuestionRequest attaches a question to a collection.
// Points defaults to the question's default when omitted.
type AddCollectionQuestionRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Points     *int      `json:"points" binding:"omitempty,min=0"`
}
