package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"canvasassist/models"
	"canvasassist/services"
	"canvasassist/services/canvas"
	"canvasassist/services/docindex"
	"canvasassist/services/llm"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
)

// AgentTool interface that all tools must implement
type AgentTool interface {
	Name() string
	Description() string
	Call(ctx context.Context, input string) (string, error)
	Spec() llm.ToolSpec
}

func generateToolSpec[T any](name, description string) llm.ToolSpec {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	return llm.ToolSpec{
		Name:        name,
		Description: description,
		Properties:  schema.Properties,
		Required:    schema.Required,
	}
}

const assignmentPreviewLimit = 15

func marshalToolResult(v any) (string, error) {
	result, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return string(result), nil
}

type GetCoursesToolInput struct{}

type GetCoursesTool struct {
	canvasService *canvas.Service
}

func NewGetCoursesTool(canvasService *canvas.Service) GetCoursesTool {
	return GetCoursesTool{canvasService: canvasService}
}

func (t GetCoursesTool) Name() string {
	return "get_courses"
}

func (t GetCoursesTool) Description() string {
	return "Get a list of courses the user is enrolled in"
}

func (t GetCoursesTool) Call(ctx context.Context, input string) (string, error) {
	var params GetCoursesToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse get courses tool input: %v", err)
	}

	courses, err := t.canvasService.GetCourses(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get courses: %v", err)
	}

	// Only send concise information to avoid token issues
	previews := lo.Map(courses, func(course models.Course, _ int) models.CoursePreview {
		return models.CoursePreview{ID: course.ID, Name: course.Name}
	})

	return marshalToolResult(previews)
}

func (t GetCoursesTool) Spec() llm.ToolSpec {
	return generateToolSpec[GetCoursesToolInput](t.Name(), t.Description())
}

type GetCourseDetailsToolInput struct {
	CourseID int `json:"course_id" jsonschema:"required,description=The ID of the course to retrieve"`
}

type GetCourseDetailsTool struct {
	canvasService *canvas.Service
}

func NewGetCourseDetailsTool(canvasService *canvas.Service) GetCourseDetailsTool {
	return GetCourseDetailsTool{canvasService: canvasService}
}

func (t GetCourseDetailsTool) Name() string {
	return "get_course_details"
}

func (t GetCourseDetailsTool) Description() string {
	return "Get detailed information about a specific course"
}

func (t GetCourseDetailsTool) Call(ctx context.Context, input string) (string, error) {
	var params GetCourseDetailsToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse get course details tool input: %v", err)
	}

	course, err := t.canvasService.GetCourse(ctx, params.CourseID)
	if err != nil {
		return "", fmt.Errorf("failed to get course: %v", err)
	}

	return marshalToolResult(course)
}

func (t GetCourseDetailsTool) Spec() llm.ToolSpec {
	return generateToolSpec[GetCourseDetailsToolInput](t.Name(), t.Description())
}

type GetAssignmentsToolInput struct {
	CourseID int `json:"course_id" jsonschema:"required,description=The ID of the course to retrieve assignments for"`
}

type GetAssignmentsTool struct {
	canvasService *canvas.Service
}

func NewGetAssignmentsTool(canvasService *canvas.Service) GetAssignmentsTool {
	return GetAssignmentsTool{canvasService: canvasService}
}

func (t GetAssignmentsTool) Name() string {
	return "get_assignments"
}

func (t GetAssignmentsTool) Description() string {
	return "Get assignments for a specific course"
}

func (t GetAssignmentsTool) Call(ctx context.Context, input string) (string, error) {
	var params GetAssignmentsToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse get assignments tool input: %v", err)
	}

	assignments, err := t.canvasService.GetAssignments(ctx, params.CourseID)
	if err != nil {
		return "", fmt.Errorf("failed to get assignments: %v", err)
	}

	// Simplify and cap to reduce token usage
	if len(assignments) > assignmentPreviewLimit {
		assignments = assignments[:assignmentPreviewLimit]
	}
	previews := lo.Map(assignments, func(a models.Assignment, _ int) models.AssignmentPreview {
		return models.AssignmentPreview{
			ID:             a.ID,
			Name:           a.Name,
			DueAt:          a.DueAt,
			PointsPossible: a.PointsPossible,
			Submitted:      a.Submitted,
		}
	})

	return marshalToolResult(previews)
}

func (t GetAssignmentsTool) Spec() llm.ToolSpec {
	return generateToolSpec[GetAssignmentsToolInput](t.Name(), t.Description())
}

type GetAssignmentSummaryToolInput struct {
	MaxCourses int `json:"max_courses,omitempty" jsonschema:"description=Maximum number of courses to check (default: 5)"`
}

type GetAssignmentSummaryTool struct {
	canvasService *canvas.Service
}

func NewGetAssignmentSummaryTool(canvasService *canvas.Service) GetAssignmentSummaryTool {
	return GetAssignmentSummaryTool{canvasService: canvasService}
}

func (t GetAssignmentSummaryTool) Name() string {
	return "get_assignment_summary"
}

func (t GetAssignmentSummaryTool) Description() string {
	return "Get a summary of important assignments (late and upcoming) across all courses"
}

func (t GetAssignmentSummaryTool) Call(ctx context.Context, input string) (string, error) {
	var params GetAssignmentSummaryToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse get assignment summary tool input: %v", err)
	}

	maxCourses := params.MaxCourses
	if maxCourses <= 0 {
		maxCourses = 5
	}

	summary, err := t.canvasService.GetAssignmentSummary(ctx, maxCourses)
	if err != nil {
		return "", fmt.Errorf("failed to get assignment summary: %v", err)
	}

	return marshalToolResult(summary)
}

func (t GetAssignmentSummaryTool) Spec() llm.ToolSpec {
	return generateToolSpec[GetAssignmentSummaryToolInput](t.Name(), t.Description())
}

type GetUpcomingAssignmentsToolInput struct {
	CourseID int `json:"course_id" jsonschema:"required,description=The ID of the course"`
	Days     int `json:"days,omitempty" jsonschema:"description=Number of days to look ahead (default: 14)"`
}

type GetUpcomingAssignmentsTool struct {
	canvasService *canvas.Service
}

func NewGetUpcomingAssignmentsTool(canvasService *canvas.Service) GetUpcomingAssignmentsTool {
	return GetUpcomingAssignmentsTool{canvasService: canvasService}
}

func (t GetUpcomingAssignmentsTool) Name() string {
	return "get_upcoming_assignments"
}

func (t GetUpcomingAssignmentsTool) Description() string {
	return "Get assignments that are due in the next X days for a course"
}

func (t GetUpcomingAssignmentsTool) Call(ctx context.Context, input string) (string, error) {
	var params GetUpcomingAssignmentsToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse get upcoming assignments tool input: %v", err)
	}

	days := params.Days
	if days <= 0 {
		days = 14
	}

	assignments, err := t.canvasService.GetUpcomingAssignments(ctx, params.CourseID, days)
	if err != nil {
		return "", fmt.Errorf("failed to get upcoming assignments: %v", err)
	}

	previews := lo.Map(assignments, func(a models.Assignment, _ int) models.AssignmentPreview {
		return models.AssignmentPreview{
			ID:             a.ID,
			Name:           a.Name,
			DueAt:          a.DueAt,
			PointsPossible: a.PointsPossible,
		}
	})

	return marshalToolResult(previews)
}

func (t GetUpcomingAssignmentsTool) Spec() llm.ToolSpec {
	return generateToolSpec[GetUpcomingAssignmentsToolInput](t.Name(), t.Description())
}

type GetLateAssignmentsToolInput struct {
	CourseID int `json:"course_id" jsonschema:"required,description=The ID of the course"`
}

type GetLateAssignmentsTool struct {
	canvasService *canvas.Service
}

func NewGetLateAssignmentsTool(canvasService *canvas.Service) GetLateAssignmentsTool {
	return GetLateAssignmentsTool{canvasService: canvasService}
}

func (t GetLateAssignmentsTool) Name() string {
	return "get_late_assignments"
}

func (t GetLateAssignmentsTool) Description() string {
	return "Get assignments that are past due and not submitted for a course"
}

func (t GetLateAssignmentsTool) Call(ctx context.Context, input string) (string, error) {
	var params GetLateAssignmentsToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse get late assignments tool input: %v", err)
	}

	assignments, err := t.canvasService.GetLateAssignments(ctx, params.CourseID)
	if err != nil {
		return "", fmt.Errorf("failed to get late assignments: %v", err)
	}

	previews := lo.Map(assignments, func(a models.Assignment, _ int) models.AssignmentPreview {
		return models.AssignmentPreview{
			ID:             a.ID,
			Name:           a.Name,
			DueAt:          a.DueAt,
			PointsPossible: a.PointsPossible,
		}
	})

	return marshalToolResult(previews)
}

func (t GetLateAssignmentsTool) Spec() llm.ToolSpec {
	return generateToolSpec[GetLateAssignmentsToolInput](t.Name(), t.Description())
}

type GetAssignmentDetailsToolInput struct {
	CourseID     int `json:"course_id" jsonschema:"required,description=The ID of the course"`
	AssignmentID int `json:"assignment_id" jsonschema:"required,description=The ID of the assignment"`
}

type GetAssignmentDetailsTool struct {
	canvasService *canvas.Service
}

func NewGetAssignmentDetailsTool(canvasService *canvas.Service) GetAssignmentDetailsTool {
	return GetAssignmentDetailsTool{canvasService: canvasService}
}

func (t GetAssignmentDetailsTool) Name() string {
	return "get_assignment_details"
}

func (t GetAssignmentDetailsTool) Description() string {
	return "Get comprehensive details about a specific assignment, including instructions, files, and submission requirements"
}

func (t GetAssignmentDetailsTool) Call(ctx context.Context, input string) (string, error) {
	var params GetAssignmentDetailsToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse get assignment details tool input: %v", err)
	}

	details, err := t.canvasService.GetAssignmentDetails(ctx, params.CourseID, params.AssignmentID)
	if err != nil {
		return "", fmt.Errorf("failed to get assignment details: %v", err)
	}

	return marshalToolResult(details)
}

func (t GetAssignmentDetailsTool) Spec() llm.ToolSpec {
	return generateToolSpec[GetAssignmentDetailsToolInput](t.Name(), t.Description())
}

type FindAssignmentToolInput struct {
	CourseID    int    `json:"course_id" jsonschema:"required,description=The ID of the course"`
	NamePattern string `json:"name_pattern" jsonschema:"required,description=Full or partial name of the assignment to find (case insensitive)"`
}

type FindAssignmentTool struct {
	canvasService *canvas.Service
}

func NewFindAssignmentTool(canvasService *canvas.Service) FindAssignmentTool {
	return FindAssignmentTool{canvasService: canvasService}
}

func (t FindAssignmentTool) Name() string {
	return "find_assignment"
}

func (t FindAssignmentTool) Description() string {
	return "Find an assignment by name or keyword in a specific course"
}

func (t FindAssignmentTool) Call(ctx context.Context, input string) (string, error) {
	var params FindAssignmentToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse find assignment tool input: %v", err)
	}

	assignment, err := t.canvasService.FindAssignmentByName(ctx, params.CourseID, params.NamePattern)
	if err != nil {
		return "", fmt.Errorf("failed to find assignment: %v", err)
	}

	if assignment == nil {
		return fmt.Sprintf("No assignment found matching '%s' in course %d", params.NamePattern, params.CourseID), nil
	}

	return marshalToolResult(assignment)
}

func (t FindAssignmentTool) Spec() llm.ToolSpec {
	return generateToolSpec[FindAssignmentToolInput](t.Name(), t.Description())
}

type GetUserProfileToolInput struct{}

type GetUserProfileTool struct {
	canvasService *canvas.Service
}

func NewGetUserProfileTool(canvasService *canvas.Service) GetUserProfileTool {
	return GetUserProfileTool{canvasService: canvasService}
}

func (t GetUserProfileTool) Name() string {
	return "get_user_profile"
}

func (t GetUserProfileTool) Description() string {
	return "Get the current user's profile information"
}

func (t GetUserProfileTool) Call(ctx context.Context, input string) (string, error) {
	var params GetUserProfileToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse get user profile tool input: %v", err)
	}

	profile, err := t.canvasService.GetUserProfile(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get user profile: %v", err)
	}

	return marshalToolResult(profile)
}

func (t GetUserProfileTool) Spec() llm.ToolSpec {
	return generateToolSpec[GetUserProfileToolInput](t.Name(), t.Description())
}

type GetGradesToolInput struct {
	CourseID int `json:"course_id" jsonschema:"required,description=The ID of the course to retrieve grades for"`
}

type GetGradesTool struct {
	canvasService *canvas.Service
}

func NewGetGradesTool(canvasService *canvas.Service) GetGradesTool {
	return GetGradesTool{canvasService: canvasService}
}

func (t GetGradesTool) Name() string {
	return "get_grades"
}

func (t GetGradesTool) Description() string {
	return "Get the user's current and final grades for a course"
}

func (t GetGradesTool) Call(ctx context.Context, input string) (string, error) {
	var params GetGradesToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse get grades tool input: %v", err)
	}

	grades, err := t.canvasService.GetGrades(ctx, params.CourseID)
	if err != nil {
		return "", fmt.Errorf("failed to get grades: %v", err)
	}

	return marshalToolResult(grades)
}

func (t GetGradesTool) Spec() llm.ToolSpec {
	return generateToolSpec[GetGradesToolInput](t.Name(), t.Description())
}

type GetCourseModulesToolInput struct {
	CourseID int `json:"course_id" jsonschema:"required,description=The ID of the course to retrieve modules for"`
}

type courseModule struct {
	models.Module
	Items []models.ModuleItem `json:"items"`
}

type GetCourseModulesTool struct {
	canvasService *canvas.Service
}

func NewGetCourseModulesTool(canvasService *canvas.Service) GetCourseModulesTool {
	return GetCourseModulesTool{canvasService: canvasService}
}

func (t GetCourseModulesTool) Name() string {
	return "get_course_modules"
}

func (t GetCourseModulesTool) Description() string {
	return "Get the modules of a course and the items (pages, assignments, files) inside each module"
}

func (t GetCourseModulesTool) Call(ctx context.Context, input string) (string, error) {
	var params GetCourseModulesToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse get course modules tool input: %v", err)
	}

	modules, err := t.canvasService.GetModules(ctx, params.CourseID)
	if err != nil {
		return "", fmt.Errorf("failed to get modules: %v", err)
	}

	result := make([]courseModule, 0, len(modules))
	for _, module := range modules {
		items, err := t.canvasService.GetModuleItems(ctx, params.CourseID, module.ID)
		if err != nil {
			return "", fmt.Errorf("failed to get items for module %d: %v", module.ID, err)
		}
		result = append(result, courseModule{Module: module, Items: items})
	}

	return marshalToolResult(result)
}

func (t GetCourseModulesTool) Spec() llm.ToolSpec {
	return generateToolSpec[GetCourseModulesToolInput](t.Name(), t.Description())
}

type SearchCourseContentToolInput struct {
	Topics []string `json:"topics" jsonschema:"required,description=Topics or questions to search course materials for"`
	Limit  int      `json:"limit,omitempty" jsonschema:"description=Maximum number of content chunks to return (default: 5)"`
}

type SearchCourseContentTool struct {
	docindexService *docindex.Service
}

func NewSearchCourseContentTool(docindexService *docindex.Service) SearchCourseContentTool {
	return SearchCourseContentTool{docindexService: docindexService}
}

func (t SearchCourseContentTool) Name() string {
	return "search_course_content"
}

func (t SearchCourseContentTool) Description() string {
	return "Search indexed course materials (announcements, assignment instructions) semantically by topic"
}

func (t SearchCourseContentTool) Call(ctx context.Context, input string) (string, error) {
	var params SearchCourseContentToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse search course content tool input: %v", err)
	}

	if len(params.Topics) == 0 {
		return "", fmt.Errorf("at least one topic is required")
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 5
	}

	chunks, err := t.docindexService.QueryTopicChunks(ctx, params.Topics, limit)
	if err != nil {
		return "", fmt.Errorf("failed to search course content: %v", err)
	}

	if len(chunks) == 0 {
		return "No course content found for those topics", nil
	}

	return strings.Join(chunks, "\n\n=== CHUNK SEPARATOR ===\n\n"), nil
}

func (t SearchCourseContentTool) Spec() llm.ToolSpec {
	return generateToolSpec[SearchCourseContentToolInput](t.Name(), t.Description())
}

type GetMemoryToolInput struct{}

type GetMemoryTool struct {
	memoryService *services.MemoryService
}

func NewGetMemoryTool(memoryService *services.MemoryService) GetMemoryTool {
	return GetMemoryTool{memoryService: memoryService}
}

func (t GetMemoryTool) Name() string {
	return "get_memory"
}

func (t GetMemoryTool) Description() string {
	return "Retrieves the assistant's memory about the student's courses, deadlines, and preferences"
}

func (t GetMemoryTool) Call(ctx context.Context, input string) (string, error) {
	var params GetMemoryToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse get memory tool input: %v", err)
	}

	memory, err := t.memoryService.GetMemory()
	if err != nil {
		return "", fmt.Errorf("failed to get memory: %v", err)
	}

	if memory.MemoryContent == "" {
		return "(empty)", nil
	}

	return memory.MemoryContent, nil
}

func (t GetMemoryTool) Spec() llm.ToolSpec {
	return generateToolSpec[GetMemoryToolInput](t.Name(), t.Description())
}

type UpdateMemoryToolInput struct {
	Content string `json:"content" jsonschema:"required,description=The new memory content to store"`
}

type UpdateMemoryTool struct {
	memoryService *services.MemoryService
}

func NewUpdateMemoryTool(memoryService *services.MemoryService) UpdateMemoryTool {
	return UpdateMemoryTool{memoryService: memoryService}
}

func (t UpdateMemoryTool) Name() string {
	return "update_memory"
}

func (t UpdateMemoryTool) Description() string {
	return "Updates the assistant's memory with new content"
}

func (t UpdateMemoryTool) Call(ctx context.Context, input string) (string, error) {
	var params UpdateMemoryToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse update memory tool input: %v", err)
	}

	if err := t.memoryService.UpdateMemory(params.Content); err != nil {
		return "", fmt.Errorf("failed to update memory: %v", err)
	}

	return "Memory updated successfully", nil
}

func (t UpdateMemoryTool) Spec() llm.ToolSpec {
	return generateToolSpec[UpdateMemoryToolInput](t.Name(), t.Description())
}

type GetCurrentTimeToolInput struct{}

type GetCurrentTimeTool struct{}

func NewGetCurrentTimeTool() GetCurrentTimeTool {
	return GetCurrentTimeTool{}
}

func (t GetCurrentTimeTool) Name() string {
	return "get_current_time"
}

func (t GetCurrentTimeTool) Description() string {
	return "Gets the current timestamp in ISO format"
}

func (t GetCurrentTimeTool) Call(ctx context.Context, input string) (string, error) {
	var params GetCurrentTimeToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse get current time tool input: %v", err)
	}

	return time.Now().Format(time.RFC3339), nil
}

func (t GetCurrentTimeTool) Spec() llm.ToolSpec {
	return generateToolSpec[GetCurrentTimeToolInput](t.Name(), t.Description())
}
