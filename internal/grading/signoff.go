package grading

import (
	"errors"
	"time"

	"github.com/jamgrade/jamgrade-backend/internal/model"
)

// Sign-off errors surfaced to handlers.
var (
	ErrAlreadySigned = errors.New("grading is signed and must be unsigned before editing")
	ErrNotSigned     = errors.New("grading is not signed")
)

// UnsignPolicy controls what happens to the grading status when a professor
// unsigns. The two historical grading flows diverged here, so the behavior
// is an explicit policy instead of a hardcoded choice.
type UnsignPolicy string

const (
	// UnsignKeep clears the signature and leaves the status untouched.
	UnsignKeep UnsignPolicy = "KEEP_STATUS"
	// UnsignRevert additionally reverts a manual GRADED back to UNGRADED.
	// An AUTOGRADED grading keeps its status under both policies.
	UnsignRevert UnsignPolicy = "REVERT_TO_UNGRADED"
)

// ApplyEdit merges a point/comment edit into an unsigned grading. A manual
// point edit on an AUTOGRADED grading does not change the status here; the
// override is detected at sign-off time against AutogradedPoints.
func ApplyEdit(g *model.StudentGrading, points *int, comment *string, now time.Time) error {
	if g.Signed() {
		return ErrAlreadySigned
	}
	if points != nil {
		g.PointsObtained = *points
		if g.Status == model.GradingStatusUngraded {
			g.Status = model.GradingStatusGraded
		}
	}
	if comment != nil {
		g.Comment = *comment
	}
	g.UpdatedAt = now
	return nil
}

// SignOff finalizes a grading with the current points snapshot. An UNGRADED
// grading becomes GRADED; an AUTOGRADED grading becomes GRADED only when the
// points differ from the autograder's original value (manual override),
// otherwise it stays AUTOGRADED. IsCorrect is recomputed as
// points == maxPoints.
func SignOff(g *model.StudentGrading, maxPoints int, professorEmail string, now time.Time) error {
	if g.Signed() {
		return ErrAlreadySigned
	}

	switch g.Status {
	case model.GradingStatusUngraded:
		g.Status = model.GradingStatusGraded
	case model.GradingStatusAutograded:
		if g.AutogradedPoints != nil && g.PointsObtained != *g.AutogradedPoints {
			g.Status = model.GradingStatusGraded
		}
	}

	g.IsCorrect = g.PointsObtained == maxPoints
	g.SignedBy = professorEmail
	g.SignedAt = &now
	g.UpdatedAt = now
	return nil
}

// Unsign clears the signature according to the policy.
func Unsign(g *model.StudentGrading, policy UnsignPolicy, now time.Time) error {
	if !g.Signed() {
		return ErrNotSigned
	}
	g.SignedBy = ""
	g.SignedAt = nil
	if policy == UnsignRevert && g.Status == model.GradingStatusGraded {
		g.Status = model.GradingStatusUngraded
	}
	g.UpdatedAt = now
	return nil
}
