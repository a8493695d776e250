package phase

import (
	"testing"

	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestResolveProfessorRoutes(t *testing.T) {
	tests := []struct {
		phase model.SessionPhase
		want  string
	}{
		{model.PhaseNew, "/cs101/jam-sessions/abc/draft"},
		{model.PhaseDraft, "/cs101/jam-sessions/abc/draft"},
		{model.PhaseInProgress, "/cs101/jam-sessions/abc/in-progress"},
		{model.PhaseGrading, "/cs101/jam-sessions/abc/grading/1"},
		{model.PhaseFinished, "/cs101/jam-sessions/abc/finished"},
	}

	for _, tt := range tests {
		got, ok := Resolve(ProfessorRoutes, tt.phase, "cs101", "abc")
		assert.True(t, ok, "phase %s", tt.phase)
		assert.Equal(t, tt.want, got)
	}
}

func TestResolveStudentRoutes(t *testing.T) {
	got, ok := Resolve(StudentRoutes, model.PhaseInProgress, "cs101", "abc")
	assert.True(t, ok)
	assert.Equal(t, "/cs101/jam-sessions/abc/take", got)

	got, ok = Resolve(StudentRoutes, model.PhaseGrading, "cs101", "abc")
	assert.True(t, ok)
	assert.Equal(t, "/cs101/jam-sessions/abc/wait", got)

	got, ok = Resolve(StudentRoutes, model.PhaseFinished, "cs101", "abc")
	assert.True(t, ok)
	assert.Equal(t, "/cs101/jam-sessions/abc/consult", got)
}

func TestResolveUnknownPhase(t *testing.T) {
	_, ok := Resolve(ProfessorRoutes, model.SessionPhase(""), "cs101", "abc")
	assert.False(t, ok, "empty phase is still-loading, not an error")

	_, ok = Resolve(ProfessorRoutes, model.SessionPhase("BOGUS"), "cs101", "abc")
	assert.False(t, ok)
}

func TestRedirectMovesOffWrongRoute(t *testing.T) {
	target, moved := Redirect(StudentRoutes, model.PhaseGrading, "/cs101/jam-sessions/abc/take", "cs101", "abc")
	assert.True(t, moved)
	assert.Equal(t, "/cs101/jam-sessions/abc/wait", target)
}

func TestRedirectIsIdempotent(t *testing.T) {
	// A viewer already on the canonical route never navigates; this is what
	// prevents redirect loops.
	target, _ := Redirect(StudentRoutes, model.PhaseGrading, "/cs101/jam-sessions/abc/take", "cs101", "abc")

	next, moved := Redirect(StudentRoutes, model.PhaseGrading, target, "cs101", "abc")
	assert.False(t, moved)
	assert.Empty(t, next)
}

func TestRedirectAcceptsRawTemplate(t *testing.T) {
	_, moved := Redirect(StudentRoutes, model.PhaseInProgress,
		"/{groupScope}/jam-sessions/{sessionId}/take", "cs101", "abc")
	assert.False(t, moved, "raw route template counts as already-there")
}

func TestRedirectUnknownPhase(t *testing.T) {
	_, moved := Redirect(ProfessorRoutes, model.SessionPhase(""), "/anywhere", "cs101", "abc")
	assert.False(t, moved)
}
