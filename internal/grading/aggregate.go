// Package grading holds the pure aggregation and sign-off logic shared by
// the professor dashboards, the CSV export and the monitor stream.
package grading

import (
	"math"

	"github.com/jamgrade/jamgrade-backend/internal/model"
)

// Stats are plain counts driving "all signed?" gating and bulk sign-off
// eligibility.
type Stats struct {
	TotalGradings           int `json:"total_gradings"`
	TotalSigned             int `json:"total_signed"`
	TotalAutogradedUnsigned int `json:"total_autograded_unsigned"`
}

// percent guards the zero-denominator case and rounds to the nearest
// integer. Aggregation functions must never return NaN or Infinity.
func percent(num, den int) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(float64(num) / float64(den) * 100))
}

// SignedSuccessRate returns the session-wide success percentage over signed
// gradings only: sum of obtained points divided by the sum of
// (maxPoints x signed-grading-count) per question. Questions with no signed
// grading contribute nothing to either side; an empty or fully unsigned
// session yields 0.
func SignedSuccessRate(assocs []model.SessionQuestion) int {
	obtained, attainable := 0, 0
	for _, sq := range assocs {
		for _, a := range sq.Answers {
			if a.Grading.Signed() {
				obtained += a.Grading.PointsObtained
				attainable += sq.Points
			}
		}
	}
	return percent(obtained, attainable)
}

// ObtainedPoints sums the participant's obtained points across all
// questions. A missing grading counts as 0.
func ObtainedPoints(assocs []model.SessionQuestion, userEmail string) int {
	total := 0
	for _, sq := range assocs {
		for _, a := range sq.Answers {
			if a.UserEmail == userEmail && a.Grading != nil {
				total += a.Grading.PointsObtained
			}
		}
	}
	return total
}

// TotalPoints sums the maximum attainable points of the session.
func TotalPoints(assocs []model.SessionQuestion) int {
	total := 0
	for _, sq := range assocs {
		total += sq.Points
	}
	return total
}

// GradingStats counts gradings across all questions and participants.
func GradingStats(assocs []model.SessionQuestion) Stats {
	var s Stats
	for _, sq := range assocs {
		for _, a := range sq.Answers {
			if a.Grading == nil {
				continue
			}
			s.TotalGradings++
			if a.Grading.Signed() {
				s.TotalSigned++
			} else if a.Grading.Status == model.GradingStatusAutograded {
				s.TotalAutogradedUnsigned++
			}
		}
	}
	return s
}

// QuestionSuccessRate returns the per-question success percentage over all
// answers, signed or not. The denominator policy deliberately differs from
// SignedSuccessRate.
func QuestionSuccessRate(assoc model.SessionQuestion) int {
	obtained, attainable := 0, 0
	for _, a := range assoc.Answers {
		if a.Grading != nil {
			obtained += a.Grading.PointsObtained
		}
		attainable += assoc.Points
	}
	return percent(obtained, attainable)
}
