package grading

import (
	"testing"
	"time"

	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }
func now() time.Time          { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }

func TestApplyEditOnUngraded(t *testing.T) {
	g := &model.StudentGrading{Status: model.GradingStatusUngraded}

	err := ApplyEdit(g, intPtr(7), strPtr("good work"), now())
	require.NoError(t, err)

	assert.Equal(t, model.GradingStatusGraded, g.Status)
	assert.Equal(t, 7, g.PointsObtained)
	assert.Equal(t, "good work", g.Comment)
}

func TestApplyEditKeepsAutogradedStatus(t *testing.T) {
	g := &model.StudentGrading{
		Status:           model.GradingStatusAutograded,
		PointsObtained:   5,
		AutogradedPoints: intPtr(5),
	}

	// The override is only detected at sign-off, not on edit.
	err := ApplyEdit(g, intPtr(3), nil, now())
	require.NoError(t, err)
	assert.Equal(t, model.GradingStatusAutograded, g.Status)
	assert.Equal(t, 3, g.PointsObtained)
}

func TestApplyEditCommentOnly(t *testing.T) {
	g := &model.StudentGrading{Status: model.GradingStatusUngraded}

	err := ApplyEdit(g, nil, strPtr("see me"), now())
	require.NoError(t, err)
	assert.Equal(t, model.GradingStatusUngraded, g.Status, "comment alone never grades")
	assert.Equal(t, "see me", g.Comment)
}

func TestApplyEditRejectsSigned(t *testing.T) {
	signedAt := now()
	g := &model.StudentGrading{
		Status:   model.GradingStatusGraded,
		SignedBy: "prof@example.com",
		SignedAt: &signedAt,
	}

	err := ApplyEdit(g, intPtr(1), nil, now())
	assert.ErrorIs(t, err, ErrAlreadySigned)
}

func TestSignOffUngradedBecomesGraded(t *testing.T) {
	g := &model.StudentGrading{Status: model.GradingStatusUngraded, PointsObtained: 4}

	err := SignOff(g, 5, "prof@example.com", now())
	require.NoError(t, err)

	assert.Equal(t, model.GradingStatusGraded, g.Status)
	assert.Equal(t, "prof@example.com", g.SignedBy)
	require.NotNil(t, g.SignedAt)
	assert.False(t, g.IsCorrect)
}

func TestSignOffAutogradedUnchangedPointsKeepsStatus(t *testing.T) {
	g := &model.StudentGrading{
		Status:           model.GradingStatusAutograded,
		PointsObtained:   5,
		AutogradedPoints: intPtr(5),
	}

	err := SignOff(g, 5, "prof@example.com", now())
	require.NoError(t, err)

	assert.Equal(t, model.GradingStatusAutograded, g.Status,
		"confirming the autograder verbatim is not a manual grade")
	assert.True(t, g.Signed())
	assert.True(t, g.IsCorrect)
}

func TestSignOffAutogradedOverrideBecomesGraded(t *testing.T) {
	g := &model.StudentGrading{
		Status:           model.GradingStatusAutograded,
		PointsObtained:   3,
		AutogradedPoints: intPtr(5),
	}

	err := SignOff(g, 5, "prof@example.com", now())
	require.NoError(t, err)
	assert.Equal(t, model.GradingStatusGraded, g.Status)
	assert.False(t, g.IsCorrect)
}

func TestSignOffRecomputesIsCorrect(t *testing.T) {
	g := &model.StudentGrading{
		Status:         model.GradingStatusUngraded,
		PointsObtained: 5,
		IsCorrect:      false, // stale
	}

	err := SignOff(g, 5, "prof@example.com", now())
	require.NoError(t, err)
	assert.True(t, g.IsCorrect)
}

func TestSignOffRejectsSigned(t *testing.T) {
	signedAt := now()
	g := &model.StudentGrading{
		Status:   model.GradingStatusGraded,
		SignedBy: "other@example.com",
		SignedAt: &signedAt,
	}

	err := SignOff(g, 5, "prof@example.com", now())
	assert.ErrorIs(t, err, ErrAlreadySigned)
	assert.Equal(t, "other@example.com", g.SignedBy)
}

func TestUnsignKeepPolicy(t *testing.T) {
	signedAt := now()
	g := &model.StudentGrading{
		Status:   model.GradingStatusGraded,
		SignedBy: "prof@example.com",
		SignedAt: &signedAt,
	}

	err := Unsign(g, UnsignKeep, now())
	require.NoError(t, err)

	assert.Empty(t, g.SignedBy)
	assert.Nil(t, g.SignedAt)
	assert.Equal(t, model.GradingStatusGraded, g.Status)
}

func TestUnsignRevertPolicy(t *testing.T) {
	signedAt := now()
	g := &model.StudentGrading{
		Status:   model.GradingStatusGraded,
		SignedBy: "prof@example.com",
		SignedAt: &signedAt,
	}

	err := Unsign(g, UnsignRevert, now())
	require.NoError(t, err)
	assert.Equal(t, model.GradingStatusUngraded, g.Status)
}

func TestUnsignRevertKeepsAutograded(t *testing.T) {
	signedAt := now()
	g := &model.StudentGrading{
		Status:   model.GradingStatusAutograded,
		SignedBy: "prof@example.com",
		SignedAt: &signedAt,
	}

	err := Unsign(g, UnsignRevert, now())
	require.NoError(t, err)
	assert.Equal(t, model.GradingStatusAutograded, g.Status,
		"both policies leave AUTOGRADED alone")
}

func TestUnsignRejectsUnsigned(t *testing.T) {
	g := &model.StudentGrading{Status: model.GradingStatusGraded}
	assert.ErrorIs(t, Unsign(g, UnsignKeep, now()), ErrNotSigned)
}

func TestSignOffRoundTrip(t *testing.T) {
	// Sign, unsign, edit, re-sign: the full correction workflow.
	g := &model.StudentGrading{
		Status:           model.GradingStatusAutograded,
		PointsObtained:   5,
		AutogradedPoints: intPtr(5),
	}

	require.NoError(t, SignOff(g, 5, "prof@example.com", now()))
	require.NoError(t, Unsign(g, UnsignKeep, now()))
	require.NoError(t, ApplyEdit(g, intPtr(2), strPtr("partial credit"), now()))
	require.NoError(t, SignOff(g, 5, "prof@example.com", now()))

	assert.Equal(t, model.GradingStatusGraded, g.Status)
	assert.Equal(t, 2, g.PointsObtained)
	assert.False(t, g.IsCorrect)
}
