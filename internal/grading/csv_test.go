package grading

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV(t *testing.T) {
	assocs := []model.SessionQuestion{
		{
			Order:  2,
			Points: 2,
			Answers: []model.StudentAnswer{
				{
					UserEmail: "ada@example.com",
					Payload:   &model.AnswerPayload{TrueFalse: &model.TrueFalseAnswer{IsTrue: true}},
					Grading:   unsigned(2, model.GradingStatusAutograded),
				},
			},
		},
		{
			Order:  1,
			Points: 3,
			Answers: []model.StudentAnswer{
				{
					UserEmail: "ada@example.com",
					Payload:   &model.AnswerPayload{Essay: &model.EssayAnswer{Content: "..."}},
					Grading:   unsigned(3, model.GradingStatusGraded),
				},
				{UserEmail: "bob@example.com"},
			},
		},
	}
	participants := []model.SessionStudent{
		{Name: "Ada Lovelace", UserEmail: "ada@example.com"},
		{Name: "Bob", UserEmail: "bob@example.com"},
	}

	out := ExportCSV(assocs, participants)

	rows := strings.Split(out, "\r")
	require.Len(t, rows, 4, "header + 2 participants + trailing empty")
	assert.Empty(t, rows[3], "every row, the last included, ends with a bare CR")
	assert.NotContains(t, out, "\n", "no LF anywhere in the output")

	assert.Equal(t, "Name;Email;Success Rate;Total Points;Obtained Points;Q1;Q2", rows[0])

	// Q columns follow question order, not input order: Q1 is the 3-point
	// essay, Q2 the 2-point true/false.
	assert.Equal(t, "Ada Lovelace;ada@example.com;100;5;5;3;2", rows[1])
	assert.Equal(t, "Bob;bob@example.com;0;5;0;0;0", rows[2])
}

func TestExportCSVPartialCredit(t *testing.T) {
	// One answered 5-point question graded 3/5: the Success Rate column counts
	// answered questions (100), while the points ratio stays derivable from
	// the Total/Obtained columns.
	assocs := []model.SessionQuestion{
		{
			Order:  1,
			Points: 5,
			Answers: []model.StudentAnswer{
				{
					UserEmail: "ada@example.com",
					Payload:   &model.AnswerPayload{Essay: &model.EssayAnswer{Content: "..."}},
					Grading:   unsigned(3, model.GradingStatusGraded),
				},
			},
		},
	}
	participants := []model.SessionStudent{{Name: "Ada", UserEmail: "ada@example.com"}}

	rows := strings.Split(ExportCSV(assocs, participants), "\r")
	assert.Equal(t, "Ada;ada@example.com;100;5;3;3", rows[1])
}

func TestExportCSVNoQuestions(t *testing.T) {
	participants := []model.SessionStudent{{Name: "Ada", UserEmail: "ada@example.com"}}

	out := ExportCSV(nil, participants)
	rows := strings.Split(out, "\r")
	assert.Equal(t, "Name;Email;Success Rate;Total Points;Obtained Points", rows[0])
	// Zero questions must not divide by zero.
	assert.Equal(t, "Ada;ada@example.com;0;0;0", rows[1])
}

func TestExportCSVNoParticipants(t *testing.T) {
	out := ExportCSV([]model.SessionQuestion{{Order: 1, Points: 5}}, nil)
	assert.Equal(t, "Name;Email;Success Rate;Total Points;Obtained Points;Q1\r", out)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Final Exam 2026", "final-exam-2026"},
		{"  DB & SQL -- Midterm!  ", "db-sql-midterm"},
		{"UPPER", "upper"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}

func TestExportFilename(t *testing.T) {
	id := uuid.MustParse("2b0fb34e-3c3f-4e18-9a53-1fcb64a0f6fd")
	got := ExportFilename(id, "Final Exam 2026")
	assert.Equal(t, "exam-session-2b0fb34e-3c3f-4e18-9a53-1fcb64a0f6fd-final-exam-2026-results.csv", got)
}
