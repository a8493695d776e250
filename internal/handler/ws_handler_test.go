package handler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jamgrade/jamgrade-backend/internal/model"
	ws "github.com/jamgrade/jamgrade-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentRedirectCarriesGroupScope(t *testing.T) {
	id := uuid.MustParse("2b0fb34e-3c3f-4e18-9a53-1fcb64a0f6fd")

	event, ok := studentRedirect(model.PhaseGrading, "cs-101", id)

	require.True(t, ok)
	assert.Equal(t, ws.EventRedirect, event.Event)
	assert.Equal(t, string(model.PhaseGrading), event.Phase)
	assert.Equal(t, "/cs-101/jam-sessions/2b0fb34e-3c3f-4e18-9a53-1fcb64a0f6fd/wait", event.Route)
}

func TestStudentRedirectPerPhase(t *testing.T) {
	id := uuid.MustParse("2b0fb34e-3c3f-4e18-9a53-1fcb64a0f6fd")
	tests := []struct {
		phase model.SessionPhase
		want  string
	}{
		{model.PhaseInProgress, "/cs-101/jam-sessions/2b0fb34e-3c3f-4e18-9a53-1fcb64a0f6fd/take"},
		{model.PhaseFinished, "/cs-101/jam-sessions/2b0fb34e-3c3f-4e18-9a53-1fcb64a0f6fd/consult"},
	}
	for _, tt := range tests {
		event, ok := studentRedirect(tt.phase, "cs-101", id)
		require.True(t, ok, "phase %s", tt.phase)
		assert.Equal(t, tt.want, event.Route)
		assert.NotContains(t, event.Route, "//", "scope segment must never be empty")
	}
}

func TestStudentRedirectUnknownPhase(t *testing.T) {
	_, ok := studentRedirect(model.SessionPhase("BOGUS"), "cs-101", uuid.New())
	assert.False(t, ok)
}
