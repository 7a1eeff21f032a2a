package canvas

import (
	"context"
	"log"
	"sort"

	"canvasassist/models"

	"github.com/samber/lo"
)

const summaryUpcomingDays = 7

// GetAssignmentSummary collects late and upcoming assignments across up to
// maxCourses courses, keeping only the fields the model needs so the result
// stays small. Both lists are sorted by due date.
func (s *Service) GetAssignmentSummary(ctx context.Context, maxCourses int) (*models.AssignmentSummary, error) {
	log.Printf("[INFO] Building assignment summary across up to %d courses", maxCourses)

	courses, err := s.GetCourses(ctx)
	if err != nil {
		return nil, err
	}

	if len(courses) == 0 {
		return &models.AssignmentSummary{
			LateAssignments:     []models.SummaryAssignment{},
			UpcomingAssignments: []models.SummaryAssignment{},
		}, nil
	}

	totalCourses := len(courses)
	if len(courses) > maxCourses {
		courses = courses[:maxCourses]
	}

	summary := &models.AssignmentSummary{
		Courses:             totalCourses,
		CoursesChecked:      len(courses),
		LateAssignments:     []models.SummaryAssignment{},
		UpcomingAssignments: []models.SummaryAssignment{},
	}

	for _, course := range courses {
		late, err := s.GetLateAssignments(ctx, course.ID)
		if err != nil {
			return nil, err
		}
		summary.LateAssignments = append(summary.LateAssignments, toSummaryAssignments(course, late)...)

		upcoming, err := s.GetUpcomingAssignments(ctx, course.ID, summaryUpcomingDays)
		if err != nil {
			return nil, err
		}
		summary.UpcomingAssignments = append(summary.UpcomingAssignments, toSummaryAssignments(course, upcoming)...)
	}

	sortByDueDate(summary.LateAssignments)
	sortByDueDate(summary.UpcomingAssignments)

	log.Printf("[INFO] Assignment summary: %d late, %d upcoming", len(summary.LateAssignments), len(summary.UpcomingAssignments))
	return summary, nil
}

func toSummaryAssignments(course models.Course, assignments []models.Assignment) []models.SummaryAssignment {
	return lo.Map(assignments, func(a models.Assignment, _ int) models.SummaryAssignment {
		return models.SummaryAssignment{
			CourseName:     course.Name,
			CourseID:       course.ID,
			AssignmentName: a.Name,
			AssignmentID:   a.ID,
			DueDate:        a.DueAt,
			PointsPossible: a.PointsPossible,
		}
	})
}

func sortByDueDate(assignments []models.SummaryAssignment) {
	sort.SliceStable(assignments, func(i, j int) bool {
		return assignments[i].DueDate < assignments[j].DueDate
	})
}
