package model

import "time"

// GradingStatus enumerates grading states. AUTOGRADED comes from the
// autograder; a manual point edit on top of it moves the grading to GRADED.
type GradingStatus string

const (
	GradingStatusUngraded   GradingStatus = "UNGRADED"
	GradingStatusAutograded GradingStatus = "AUTOGRADED"
	GradingStatusGraded     GradingStatus = "GRADED"
)

// StudentGrading is the grading attached to one student answer.
// SignedBy non-empty means the grading is finalized and must be unsigned
// before any further edit. IsCorrect is recomputed at sign-off time as
// points == max, not continuously maintained.
type StudentGrading struct {
	Status         GradingStatus `json:"status"`
	PointsObtained int           `json:"points_obtained"`
	IsCorrect      bool          `json:"is_correct"`
	Comment        string        `json:"comment,omitempty"`
	SignedBy       string        `json:"signed_by,omitempty"`
	SignedAt       *time.Time    `json:"signed_at,omitempty"`
	// AutogradedPoints keeps the autograder's original value so a manual
	// override at sign-off time can be detected.
	AutogradedPoints *int      `json:"autograded_points,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Signed reports whether the grading has been signed off.
func (g *StudentGrading) Signed() bool {
	return g != nil && g.SignedBy != ""
}

// UpdateGradingRequest is the PATCH /gradings payload. It addresses the
// grading by (session, question, participant) and applies point/comment
// edits, sign-off or unsign.
type UpdateGradingRequest struct {
	SessionID      string  `json:"session_id" binding:"required,uuid"`
	QuestionID     string  `json:"question_id" binding:"required,uuid"`
	UserEmail      string  `json:"user_email" binding:"required,email"`
	PointsObtained *int    `json:"points_obtained" binding:"omitempty,min=0"`
	Comment        *string `json:"comment" binding:"omitempty,max=10000"`
	Sign           *bool   `json:"sign" binding:"omitempty"`
}
