package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"canvasassist/models"
)

func newTestService(handler http.HandlerFunc) (*Service, *httptest.Server) {
	server := httptest.NewServer(handler)
	service := NewService(server.URL, "test-token", "https://example.instructure.com", false)
	return service, server
}

func writeEnvelope(w http.ResponseWriter, data any) {
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}

func TestGetCourses(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/courses" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "test-token" {
			t.Errorf("missing token query parameter")
		}
		if r.URL.Query().Get("institute_url") != "https://example.instructure.com" {
			t.Errorf("missing institute_url query parameter")
		}
		writeEnvelope(w, []models.Course{
			{ID: 1, Name: "Distributed Systems"},
			{ID: 2, Name: "Operating Systems"},
		})
	})
	defer server.Close()

	courses, err := service.GetCourses(context.Background())
	if err != nil {
		t.Fatalf("GetCourses() returned error: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(courses))
	}
	if courses[0].Name != "Distributed Systems" {
		t.Errorf("first course name = %q", courses[0].Name)
	}
}

func TestDoRequestEnvelopeError(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "Invalid access token",
		})
	})
	defer server.Close()

	_, err := service.GetCourses(context.Background())
	if err == nil {
		t.Fatal("expected error for success=false envelope")
	}
	if !strings.Contains(err.Error(), "Invalid access token") {
		t.Errorf("error %q does not carry the server's message", err)
	}
}

func TestDoRequestHTTPError(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})
	defer server.Close()

	_, err := service.GetCourses(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q does not mention status code", err)
	}
}

func TestGetUpcomingAndLateAssignments(t *testing.T) {
	now := time.Now()
	assignments := []models.Assignment{
		{ID: 1, Name: "Due soon", DueAt: now.Add(48 * time.Hour).UTC().Format(time.RFC3339)},
		{ID: 2, Name: "Far future", DueAt: now.Add(30 * 24 * time.Hour).UTC().Format(time.RFC3339)},
		{ID: 3, Name: "Overdue", DueAt: now.Add(-48 * time.Hour).UTC().Format(time.RFC3339)},
		{ID: 4, Name: "Submitted", DueAt: now.Add(-24 * time.Hour).UTC().Format(time.RFC3339), Submitted: true},
		{ID: 5, Name: "No due date"},
		{ID: 6, Name: "Bad date", DueAt: "next tuesday"},
	}

	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, assignments)
	})
	defer server.Close()

	upcoming, err := service.GetUpcomingAssignments(context.Background(), 42, 14)
	if err != nil {
		t.Fatalf("GetUpcomingAssignments() returned error: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].ID != 1 {
		t.Errorf("upcoming = %+v, expected only assignment 1", upcoming)
	}

	late, err := service.GetLateAssignments(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetLateAssignments() returned error: %v", err)
	}
	if len(late) != 1 || late[0].ID != 3 {
		t.Errorf("late = %+v, expected only assignment 3", late)
	}
}

func TestFindAssignmentByName(t *testing.T) {
	assignments := []models.Assignment{
		{ID: 1, Name: "Homework 1: TCP Basics"},
		{ID: 2, Name: "Final Essay on Consensus"},
	}

	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, assignments)
	})
	defer server.Close()

	tests := []struct {
		name       string
		pattern    string
		expectedID int
		expectNil  bool
	}{
		{name: "substring match", pattern: "tcp", expectedID: 1},
		{name: "case insensitive", pattern: "FINAL ESSAY", expectedID: 2},
		{name: "fuzzy fallback", pattern: "consnsus", expectedID: 2},
		{name: "no match", pattern: "midterm quiz", expectNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := service.FindAssignmentByName(context.Background(), 42, tt.pattern)
			if err != nil {
				t.Fatalf("FindAssignmentByName() returned error: %v", err)
			}
			if tt.expectNil {
				if found != nil {
					t.Errorf("expected nil, found %+v", found)
				}
				return
			}
			if found == nil {
				t.Fatalf("expected assignment %d, found nothing", tt.expectedID)
			}
			if found.ID != tt.expectedID {
				t.Errorf("found assignment %d, expected %d", found.ID, tt.expectedID)
			}
		})
	}
}

func TestGetAssignmentDetails(t *testing.T) {
	assignment := models.Assignment{
		ID:              7,
		Name:            "Lab Report",
		DueAt:           "2026-09-15T23:59:00Z",
		PointsPossible:  50,
		SubmissionTypes: []string{"online_upload", "online_quiz"},
		Description:     `Read the handout: <a title="handout.pdf" href="https://files.example.com/handout.pdf">handout</a>`,
	}

	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, assignment)
	})
	defer server.Close()

	details, err := service.GetAssignmentDetails(context.Background(), 42, 7)
	if err != nil {
		t.Fatalf("GetAssignmentDetails() returned error: %v", err)
	}

	if len(details.Files) != 1 || details.Files[0].Title != "handout.pdf" {
		t.Errorf("files = %+v, expected handout.pdf", details.Files)
	}
	if !details.RequiresSubmission {
		t.Error("expected RequiresSubmission to be true")
	}
	if !details.IsQuiz {
		t.Error("expected IsQuiz to be true")
	}
	if details.FormattedDueDate != "September 15, 2026 at 11:59 PM" {
		t.Errorf("formatted due date = %q", details.FormattedDueDate)
	}
}

func TestGetAssignmentSummary(t *testing.T) {
	now := time.Now()
	courses := []models.Course{
		{ID: 1, Name: "Networks"},
		{ID: 2, Name: "Databases"},
		{ID: 3, Name: "Skipped"},
	}
	courseAssignments := map[string][]models.Assignment{
		"/courses/1/assignments": {
			{ID: 11, Name: "Overdue Lab", DueAt: now.Add(-72 * time.Hour).UTC().Format(time.RFC3339), PointsPossible: 20},
		},
		"/courses/2/assignments": {
			{ID: 21, Name: "Quiz", DueAt: now.Add(24 * time.Hour).UTC().Format(time.RFC3339), PointsPossible: 10},
		},
	}

	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/courses" {
			writeEnvelope(w, courses)
			return
		}
		if assignments, ok := courseAssignments[r.URL.Path]; ok {
			writeEnvelope(w, assignments)
			return
		}
		t.Errorf("unexpected path: %s", r.URL.Path)
	})
	defer server.Close()

	summary, err := service.GetAssignmentSummary(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetAssignmentSummary() returned error: %v", err)
	}

	if summary.Courses != 3 {
		t.Errorf("courses = %d, expected 3", summary.Courses)
	}
	if summary.CoursesChecked != 2 {
		t.Errorf("courses checked = %d, expected 2", summary.CoursesChecked)
	}
	if len(summary.LateAssignments) != 1 || summary.LateAssignments[0].AssignmentID != 11 {
		t.Errorf("late assignments = %+v", summary.LateAssignments)
	}
	if len(summary.UpcomingAssignments) != 1 || summary.UpcomingAssignments[0].CourseName != "Databases" {
		t.Errorf("upcoming assignments = %+v", summary.UpcomingAssignments)
	}
}

func TestGetCourseResources(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/courses/42/files":
			writeEnvelope(w, []models.CourseFile{
				{ID: 1, DisplayName: "syllabus.pdf", Size: 2048},
			})
		case "/courses/42/modules":
			writeEnvelope(w, []models.Module{
				{ID: 9, Name: "Week 1", Position: 1},
			})
		case "/courses/42/modules/9/items":
			writeEnvelope(w, []models.ModuleItem{
				{ID: 91, Title: "Intro Lecture", Type: "Page", Position: 1},
			})
		case "/courses/42/assignments/7/submissions":
			writeEnvelope(w, []models.Submission{
				{ID: 70, UserID: 5, Score: 48, Grade: "A", Late: false},
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})
	defer server.Close()

	ctx := context.Background()

	files, err := service.GetFiles(ctx, 42)
	if err != nil {
		t.Fatalf("GetFiles() returned error: %v", err)
	}
	if len(files) != 1 || files[0].DisplayName != "syllabus.pdf" {
		t.Errorf("files = %+v", files)
	}

	modules, err := service.GetModules(ctx, 42)
	if err != nil {
		t.Fatalf("GetModules() returned error: %v", err)
	}
	if len(modules) != 1 || modules[0].Name != "Week 1" {
		t.Errorf("modules = %+v", modules)
	}

	items, err := service.GetModuleItems(ctx, 42, 9)
	if err != nil {
		t.Fatalf("GetModuleItems() returned error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Intro Lecture" {
		t.Errorf("module items = %+v", items)
	}

	submissions, err := service.GetSubmissions(ctx, 42, 7)
	if err != nil {
		t.Fatalf("GetSubmissions() returned error: %v", err)
	}
	if len(submissions) != 1 || submissions[0].Grade != "A" {
		t.Errorf("submissions = %+v", submissions)
	}
}

func TestParseCanvasDate(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{value: "2026-09-15T23:59:00Z", ok: true},
		{value: "2026-09-15T23:59:00+02:00", ok: true},
		{value: "2026-09-15T23:59:00", ok: true},
		{value: "", ok: false},
		{value: "soon", ok: false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.value), func(t *testing.T) {
			_, ok := parseCanvasDate(tt.value)
			if ok != tt.ok {
				t.Errorf("parseCanvasDate(%q) ok = %v, expected %v", tt.value, ok, tt.ok)
			}
		})
	}
}
