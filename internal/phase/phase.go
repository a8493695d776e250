// Package phase resolves the canonical client route for a session's
// lifecycle phase. Two independent tables exist: professors and students see
// different pages for the same phase (students never see a draft page).
package phase

import (
	"strings"

	"github.com/jamgrade/jamgrade-backend/internal/model"
)

// Route placeholders substituted by Resolve.
const (
	placeholderGroupScope     = "{groupScope}"
	placeholderSessionID      = "{sessionId}"
	placeholderActiveQuestion = "{activeQuestion}"
)

// defaultActiveQuestion is injected into the professor grading route.
const defaultActiveQuestion = "1"

// RouteTable maps a phase to its canonical route template.
type RouteTable map[model.SessionPhase]string

// ProfessorRoutes is the professor-facing table.
var ProfessorRoutes = RouteTable{
	model.PhaseNew:        "/{groupScope}/jam-sessions/{sessionId}/draft",
	model.PhaseDraft:      "/{groupScope}/jam-sessions/{sessionId}/draft",
	model.PhaseInProgress: "/{groupScope}/jam-sessions/{sessionId}/in-progress",
	model.PhaseGrading:    "/{groupScope}/jam-sessions/{sessionId}/grading/{activeQuestion}",
	model.PhaseFinished:   "/{groupScope}/jam-sessions/{sessionId}/finished",
}

// StudentRoutes is the student-facing table.
var StudentRoutes = RouteTable{
	model.PhaseNew:        "/{groupScope}/jam-sessions/{sessionId}/wait",
	model.PhaseDraft:      "/{groupScope}/jam-sessions/{sessionId}/wait",
	model.PhaseInProgress: "/{groupScope}/jam-sessions/{sessionId}/take",
	model.PhaseGrading:    "/{groupScope}/jam-sessions/{sessionId}/wait",
	model.PhaseFinished:   "/{groupScope}/jam-sessions/{sessionId}/consult",
}

// Resolve returns the concrete canonical route for the phase, or false for
// an unknown or empty phase (treated as still-loading, not an error).
func Resolve(table RouteTable, p model.SessionPhase, groupScope, sessionID string) (string, bool) {
	tmpl, ok := table[p]
	if !ok {
		return "", false
	}
	r := strings.NewReplacer(
		placeholderGroupScope, groupScope,
		placeholderSessionID, sessionID,
		placeholderActiveQuestion, defaultActiveQuestion,
	)
	return r.Replace(tmpl), true
}

// Redirect decides whether a viewer at currentPath must navigate. It returns
// the target route and true, or ("", false) when no navigation is needed.
// Calling it while already on the canonical route is a no-op, which is what
// prevents redirect loops. currentPath may be either the concrete path or
// the raw route template.
func Redirect(table RouteTable, p model.SessionPhase, currentPath, groupScope, sessionID string) (string, bool) {
	tmpl, ok := table[p]
	if !ok {
		return "", false
	}
	target, _ := Resolve(table, p, groupScope, sessionID)
	if currentPath == target || currentPath == tmpl {
		return "", false
	}
	return target, true
}
