package canvas

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"canvasassist/models"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

var fileLinkRegex = regexp.MustCompile(`<a[^>]*?title="([^"]*)"[^>]*?href="([^"]*)"`)

func (s *Service) GetAssignments(ctx context.Context, courseID int) ([]models.Assignment, error) {
	log.Printf("[INFO] Retrieving assignments for course %d", courseID)

	var assignments []models.Assignment
	if err := s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/assignments", courseID), nil, &assignments); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Successfully retrieved %d assignments for course %d", len(assignments), courseID)
	return assignments, nil
}

func (s *Service) GetAssignment(ctx context.Context, courseID, assignmentID int) (*models.Assignment, error) {
	assignment := &models.Assignment{}
	if err := s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/assignments/%d", courseID, assignmentID), nil, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *Service) GetSubmissions(ctx context.Context, courseID, assignmentID int) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/assignments/%d/submissions", courseID, assignmentID), nil, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

// GetAssignmentDetails returns an assignment enriched with file links scraped
// from the HTML description, submission requirements, and a human-readable
// due date.
func (s *Service) GetAssignmentDetails(ctx context.Context, courseID, assignmentID int) (*models.AssignmentDetails, error) {
	log.Printf("[INFO] Retrieving assignment details for assignment %d in course %d", assignmentID, courseID)

	assignment, err := s.GetAssignment(ctx, courseID, assignmentID)
	if err != nil {
		return nil, err
	}

	description := assignment.Description
	if description == "" {
		description = "No description available"
	}

	details := &models.AssignmentDetails{
		ID:              assignment.ID,
		Name:            assignment.Name,
		DueAt:           assignment.DueAt,
		PointsPossible:  assignment.PointsPossible,
		SubmissionTypes: assignment.SubmissionTypes,
		HasSubmitted:    assignment.HasSubmittedSubmissions,
		AllowedAttempts: assignment.AllowedAttempts,
		UnlockAt:        assignment.UnlockAt,
		LockAt:          assignment.LockAt,
		Description:     description,
		Files:           extractFileLinks(assignment.Description),
	}

	details.RequiresSubmission = len(assignment.SubmissionTypes) > 0
	details.IsQuiz = lo.Contains(assignment.SubmissionTypes, "online_quiz")

	if dueDate, ok := parseCanvasDate(assignment.DueAt); ok {
		details.FormattedDueDate = dueDate.Format("January 2, 2006 at 3:04 PM")
	}

	return details, nil
}

// FindAssignmentByName locates an assignment whose name contains the pattern,
// case-insensitive. When no substring match exists it falls back to fuzzy
// matching so small typos still resolve. Returns nil when nothing matches.
func (s *Service) FindAssignmentByName(ctx context.Context, courseID int, namePattern string) (*models.Assignment, error) {
	log.Printf("[INFO] Searching for assignment matching %q in course %d", namePattern, courseID)

	assignments, err := s.GetAssignments(ctx, courseID)
	if err != nil {
		return nil, err
	}

	pattern := strings.ToLower(strings.TrimSpace(namePattern))
	for i := range assignments {
		if strings.Contains(strings.ToLower(assignments[i].Name), pattern) {
			log.Printf("[INFO] Found assignment %d by substring match", assignments[i].ID)
			return &assignments[i], nil
		}
	}

	for i := range assignments {
		if fuzzy.MatchFold(pattern, assignments[i].Name) {
			log.Printf("[INFO] Found assignment %d by fuzzy match", assignments[i].ID)
			return &assignments[i], nil
		}
	}

	log.Printf("[INFO] No assignment matching %q in course %d", namePattern, courseID)
	return nil, nil
}

// GetUpcomingAssignments returns unsubmitted assignments due within the next
// days. Assignments without a due date or with one the API sent in a shape we
// cannot parse are skipped.
func (s *Service) GetUpcomingAssignments(ctx context.Context, courseID, days int) ([]models.Assignment, error) {
	assignments, err := s.GetAssignments(ctx, courseID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cutoff := now.AddDate(0, 0, days)

	upcoming := lo.Filter(assignments, func(a models.Assignment, _ int) bool {
		if a.DueAt == "" || a.Submitted {
			return false
		}
		dueDate, ok := parseCanvasDate(a.DueAt)
		return ok && dueDate.After(now) && !dueDate.After(cutoff)
	})

	log.Printf("[INFO] Found %d upcoming assignments in course %d (next %d days)", len(upcoming), courseID, days)
	return upcoming, nil
}

// GetLateAssignments returns unsubmitted assignments whose due date has
// passed.
func (s *Service) GetLateAssignments(ctx context.Context, courseID int) ([]models.Assignment, error) {
	assignments, err := s.GetAssignments(ctx, courseID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	late := lo.Filter(assignments, func(a models.Assignment, _ int) bool {
		if a.DueAt == "" || a.Submitted {
			return false
		}
		dueDate, ok := parseCanvasDate(a.DueAt)
		return ok && dueDate.Before(now)
	})

	log.Printf("[INFO] Found %d late assignments in course %d", len(late), courseID)
	return late, nil
}

func extractFileLinks(description string) []models.AssignmentFile {
	files := []models.AssignmentFile{}
	if !strings.Contains(description, "<a") {
		return files
	}

	for _, match := range fileLinkRegex.FindAllStringSubmatch(description, -1) {
		files = append(files, models.AssignmentFile{
			Title: match[1],
			URL:   match[2],
		})
	}
	return files
}

// parseCanvasDate parses the ISO timestamps Canvas sends (usually RFC 3339
// with a Z suffix, occasionally without a zone).
func parseCanvasDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t, true
	}
	return time.Time{}, false
}
