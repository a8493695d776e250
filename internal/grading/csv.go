package grading

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jamgrade/jamgrade-backend/internal/model"
)

// CSV export format: `;`-separated columns, rows terminated by a bare
// carriage return. Assembled by hand because encoding/csv cannot emit
// `\r`-only row terminators.
const csvSeparator = ";"
const csvRowTerminator = "\r"

// ExportCSV renders the results table consumed by spreadsheet imports:
// Name;Email;Success Rate;Total Points;Obtained Points;Q1;Q2;...
// The per-row success rate is the share of questions the participant
// answered; the points ratio is derivable from the Total/Obtained columns.
func ExportCSV(assocs []model.SessionQuestion, participants []model.SessionStudent) string {
	sorted := make([]model.SessionQuestion, len(assocs))
	copy(sorted, assocs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	var b strings.Builder

	header := []string{"Name", "Email", "Success Rate", "Total Points", "Obtained Points"}
	for i := range sorted {
		header = append(header, fmt.Sprintf("Q%d", i+1))
	}
	b.WriteString(strings.Join(header, csvSeparator))
	b.WriteString(csvRowTerminator)

	total := TotalPoints(sorted)

	for _, p := range participants {
		answered := 0
		perQuestion := make([]string, 0, len(sorted))
		for _, sq := range sorted {
			points := 0
			for _, a := range sq.Answers {
				if a.UserEmail != p.UserEmail {
					continue
				}
				if !a.Payload.IsEmpty() {
					answered++
				}
				if a.Grading != nil {
					points = a.Grading.PointsObtained
				}
			}
			perQuestion = append(perQuestion, strconv.Itoa(points))
		}

		row := []string{
			p.Name,
			p.UserEmail,
			strconv.Itoa(percent(answered, len(sorted))),
			strconv.Itoa(total),
			strconv.Itoa(ObtainedPoints(sorted, p.UserEmail)),
		}
		row = append(row, perQuestion...)
		b.WriteString(strings.Join(row, csvSeparator))
		b.WriteString(csvRowTerminator)
	}

	return b.String()
}

// ExportFilename builds the download name: exam-session-{id}-{slug}-results.csv.
func ExportFilename(sessionID uuid.UUID, label string) string {
	return fmt.Sprintf("exam-session-%s-%s-results.csv", sessionID, Slugify(label))
}

// Slugify lowercases the label and collapses every non-alphanumeric run
// into a single hyphen.
func Slugify(label string) string {
	var b strings.Builder
	lastHyphen := true // Suppress a leading hyphen.
	for _, r := range strings.ToLower(label) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
