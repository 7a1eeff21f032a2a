package canvas

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"canvasassist/models"
)

func (s *Service) GetCourses(ctx context.Context) ([]models.Course, error) {
	log.Printf("[INFO] Retrieving list of courses")

	var courses []models.Course
	if err := s.doRequest(ctx, http.MethodGet, "/courses", nil, &courses); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Successfully retrieved %d courses", len(courses))
	return courses, nil
}

func (s *Service) GetCourse(ctx context.Context, courseID int) (*models.Course, error) {
	log.Printf("[INFO] Retrieving course %d", courseID)

	course := &models.Course{}
	if err := s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/courses/%d", courseID), nil, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *Service) GetAnnouncements(ctx context.Context, courseID int) ([]models.Announcement, error) {
	var announcements []models.Announcement
	if err := s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/announcements", courseID), nil, &announcements); err != nil {
		return nil, err
	}
	return announcements, nil
}

func (s *Service) GetFiles(ctx context.Context, courseID int) ([]models.CourseFile, error) {
	var files []models.CourseFile
	if err := s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/files", courseID), nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *Service) GetModules(ctx context.Context, courseID int) ([]models.Module, error) {
	var modules []models.Module
	if err := s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/modules", courseID), nil, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

func (s *Service) GetModuleItems(ctx context.Context, courseID, moduleID int) ([]models.ModuleItem, error) {
	var items []models.ModuleItem
	if err := s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/modules/%d/items", courseID, moduleID), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) GetGrades(ctx context.Context, courseID int) (*models.CourseGrades, error) {
	log.Printf("[INFO] Retrieving grades for course %d", courseID)

	grades := &models.CourseGrades{}
	if err := s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/grades", courseID), nil, grades); err != nil {
		return nil, err
	}
	return grades, nil
}
