package models

// Canvas entities as returned by the Canvas proxy API. Date fields stay as
// the raw ISO strings the API sends; helpers that need real times parse them
// and skip values they cannot parse.

type Course struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	CourseCode string `json:"course_code,omitempty"`
	StartAt    string `json:"start_at,omitempty"`
	EndAt      string `json:"end_at,omitempty"`
}

type CoursePreview struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Assignment struct {
	ID                      int      `json:"id"`
	Name                    string   `json:"name"`
	DueAt                   string   `json:"due_at,omitempty"`
	UnlockAt                string   `json:"unlock_at,omitempty"`
	LockAt                  string   `json:"lock_at,omitempty"`
	PointsPossible          float64  `json:"points_possible"`
	SubmissionTypes         []string `json:"submission_types,omitempty"`
	Submitted               bool     `json:"submitted"`
	HasSubmittedSubmissions bool     `json:"has_submitted_submissions"`
	AllowedAttempts         int      `json:"allowed_attempts"`
	Description             string   `json:"description,omitempty"`
}

type AssignmentPreview struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	DueAt          string  `json:"due_at,omitempty"`
	PointsPossible float64 `json:"points_possible"`
	Submitted      bool    `json:"submitted"`
}

type AssignmentFile struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type AssignmentDetails struct {
	ID                 int              `json:"id"`
	Name               string           `json:"name"`
	DueAt              string           `json:"due_at,omitempty"`
	FormattedDueDate   string           `json:"formatted_due_date,omitempty"`
	PointsPossible     float64          `json:"points_possible"`
	SubmissionTypes    []string         `json:"submission_types"`
	HasSubmitted       bool             `json:"has_submitted_submissions"`
	AllowedAttempts    int              `json:"allowed_attempts"`
	UnlockAt           string           `json:"unlock_at,omitempty"`
	LockAt             string           `json:"lock_at,omitempty"`
	Description        string           `json:"description"`
	Files              []AssignmentFile `json:"files"`
	RequiresSubmission bool             `json:"requires_submission"`
	IsQuiz             bool             `json:"is_quiz,omitempty"`
}

type SummaryAssignment struct {
	CourseName     string  `json:"course_name"`
	CourseID       int     `json:"course_id"`
	AssignmentName string  `json:"assignment_name"`
	AssignmentID   int     `json:"assignment_id"`
	DueDate        string  `json:"due_date"`
	PointsPossible float64 `json:"points_possible"`
}

type AssignmentSummary struct {
	Courses             int                 `json:"courses"`
	CoursesChecked      int                 `json:"courses_checked"`
	LateAssignments     []SummaryAssignment `json:"late_assignments"`
	UpcomingAssignments []SummaryAssignment `json:"upcoming_assignments"`
}

type Submission struct {
	ID          int     `json:"id"`
	UserID      int     `json:"user_id"`
	SubmittedAt string  `json:"submitted_at,omitempty"`
	Score       float64 `json:"score"`
	Grade       string  `json:"grade,omitempty"`
	Late        bool    `json:"late"`
	Missing     bool    `json:"missing"`
}

type Announcement struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	PostedAt string `json:"posted_at,omitempty"`
}

type CourseFile struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content-type,omitempty"`
}

type Module struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type ModuleItem struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Position int    `json:"position"`
	HTMLURL  string `json:"html_url,omitempty"`
}

type CourseGrades struct {
	CourseID     int     `json:"course_id"`
	CurrentScore float64 `json:"current_score"`
	CurrentGrade string  `json:"current_grade,omitempty"`
	FinalScore   float64 `json:"final_score"`
	FinalGrade   string  `json:"final_grade,omitempty"`
}

type UserProfile struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	SortableName string `json:"sortable_name,omitempty"`
	PrimaryEmail string `json:"primary_email,omitempty"`
	LoginID      string `json:"login_id,omitempty"`
}
