package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAutosave Action = "autosave"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AutosaveRequest carries one raw answer edit for a question. A null answer
// removes the stored answer for that question.
type AutosaveRequest struct {
	Action     Action          `json:"action"`
	QuestionID string          `json:"question_id"`
	Answer     json.RawMessage `json:"answer"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSaved    Event = "saved"
	EventRedirect Event = "redirect"
	EventMonitor  Event = "monitor"
	EventPong     Event = "pong"
)

// SavedResponse acknowledges that an edit entered the debounce window.
type SavedResponse struct {
	Event      Event  `json:"event"`
	QuestionID string `json:"question_id"`
}

// RedirectResponse tells the client to navigate to the canonical route for
// the session's current phase.
type RedirectResponse struct {
	Event Event  `json:"event"`
	Phase string `json:"phase"`
	Route string `json:"route"`
}

// MonitorResponse forwards a session monitor event to a professor.
type MonitorResponse struct {
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
