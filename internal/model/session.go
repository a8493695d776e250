package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionPhase enumerates the lifecycle phases of a jam session.
type SessionPhase string

const (
	PhaseNew        SessionPhase = "NEW"
	PhaseDraft      SessionPhase = "DRAFT"
	PhaseInProgress SessionPhase = "IN_PROGRESS"
	PhaseGrading    SessionPhase = "GRADING"
	PhaseFinished   SessionPhase = "FINISHED"
)

// SessionStatus is independent of the phase: an archived session keeps
// whatever phase it was in.
type SessionStatus string

const (
	SessionStatusActive   SessionStatus = "ACTIVE"
	SessionStatusArchived SessionStatus = "ARCHIVED"
)

// Session represents a timed jam (exam) session owned by a professor group.
type Session struct {
	ID              uuid.UUID     `json:"id"`
	GroupScope      string        `json:"group_scope"`
	Label           string        `json:"label"`
	Conditions      string        `json:"conditions,omitempty"`
	Phase           SessionPhase  `json:"phase"`
	Status          SessionStatus `json:"status"`
	DurationHours   int           `json:"duration_hours"`
	DurationMinutes int           `json:"duration_minutes"`
	StartAt         *time.Time    `json:"start_at,omitempty"`
	EndAt           *time.Time    `json:"end_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Duration returns the configured session length. Zero means untimed.
func (s *Session) Duration() time.Duration {
	return time.Duration(s.DurationHours)*time.Hour +
		time.Duration(s.DurationMinutes)*time.Minute
}

// SessionStudent is a participant registered to a session.
type SessionStudent struct {
	UserEmail string    `json:"user_email"`
	Name      string    `json:"name"`
	JoinedAt  time.Time `json:"joined_at"`
}

// SessionQuestion is the question-to-session association. Points is the
// maximum attainable score within this session and may differ from the
// question's default.
type SessionQuestion struct {
	SessionID  uuid.UUID       `json:"session_id"`
	QuestionID uuid.UUID       `json:"question_id"`
	Order      int             `json:"order"`
	Points     int             `json:"points"`
	Question   *Question       `json:"question,omitempty"`
	Answers    []StudentAnswer `json:"student_answers,omitempty"`
}

// CreateSessionRequest is the payload for creating a new jam session.
type CreateSessionRequest struct {
	Label           string     `json:"label" binding:"required,min=1,max=255"`
	Conditions      string     `json:"conditions" binding:"omitempty,max=10000"`
	DurationHours   int        `json:"duration_hours" binding:"min=0,max=24"`
	DurationMinutes int        `json:"duration_minutes" binding:"min=0,max=59"`
	CollectionID    *uuid.UUID `json:"collection_id" binding:"omitempty"`
}

// UpdateSessionRequest is the payload for PATCHing a session. Phase changes
// go through the same endpoint and are validated against the transition table.
type UpdateSessionRequest struct {
	Phase           *SessionPhase  `json:"phase" binding:"omitempty,oneof=NEW DRAFT IN_PROGRESS GRADING FINISHED"`
	Status          *SessionStatus `json:"status" binding:"omitempty,oneof=ACTIVE ARCHIVED"`
	Label           *string        `json:"label" binding:"omitempty,min=1,max=255"`
	Conditions      *string        `json:"conditions" binding:"omitempty,max=10000"`
	DurationHours   *int           `json:"duration_hours" binding:"omitempty,min=0,max=24"`
	DurationMinutes *int           `json:"duration_minutes" binding:"omitempty,min=0,max=59"`
	EndAt           *time.Time     `json:"end_at" binding:"omitempty"`
}

// SessionQuestionUpdateRequest adjusts order or max points of an association.
type SessionQuestionUpdateRequest struct {
	Order  *int `json:"order" binding:"omitempty,min=1"`
	Points *int `json:"points" binding:"omitempty,min=0"`
}
