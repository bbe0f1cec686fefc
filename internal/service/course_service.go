package service

import (
	"context"
	"errors"
	"strings"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/google/uuid"
)

// CourseListOptions carries the caller-provided listing parameters.
type CourseListOptions struct {
	Status    model.CourseStatus
	TeacherID *uuid.UUID
	Search    string
	// Catalog lets students browse active courses instead of their own.
	Catalog bool
	Limit   int
	Offset  int
}

// CourseService handles course business logic.
type CourseService struct {
	courses     CourseStore
	enrollments EnrollmentStore
	profiles    ProfileStore
}

// NewCourseService creates a new CourseService.
func NewCourseService(courses CourseStore, enrollments EnrollmentStore, profiles ProfileStore) *CourseService {
	return &CourseService{courses: courses, enrollments: enrollments, profiles: profiles}
}

// List retrieves the courses visible to the caller.
func (s *CourseService) List(ctx context.Context, actor model.Identity, opts CourseListOptions) ([]model.Course, *response.Pagination, error) {
	f := model.CourseFilter{Status: opts.Status, TeacherID: opts.TeacherID, Search: strings.TrimSpace(opts.Search)}
	f.Limit, f.Offset = normalizePage(opts.Limit, opts.Offset)

	switch {
	case actor.Can(model.PermissionCoursesReadAll):
	case actor.Role == model.RoleTeacher:
		f.TeacherID = &actor.UserID
	case opts.Catalog:
		f.Status = model.CourseStatusActive
	default:
		f.StudentID = &actor.UserID
	}

	courses, total, err := s.courses.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return courses, response.NewPagination(f.Limit, f.Offset, total), nil
}

// Get retrieves one course. Students see active courses and courses they
// are enrolled in; teachers only their own.
func (s *CourseService) Get(ctx context.Context, actor model.Identity, id uuid.UUID) (*model.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.Can(model.PermissionCoursesReadAll):
		return c, nil
	case actor.Role == model.RoleTeacher:
		if c.TeacherID != actor.UserID {
			return nil, ErrNotCourseOwner
		}
		return c, nil
	}
	if c.Status == model.CourseStatusActive {
		return c, nil
	}
	enrolled, err := s.isEnrolled(ctx, c.ID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *CourseService) isEnrolled(ctx context.Context, courseID, studentID uuid.UUID) (bool, error) {
	list, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return false, err
	}
	for _, e := range list {
		if e.CourseID == courseID && e.Status != model.EnrollmentStatusDropped {
			return true, nil
		}
	}
	return false, nil
}

// Create adds a course. Teachers own what they create; admins must name the teacher.
func (s *CourseService) Create(ctx context.Context, actor model.Identity, req model.CreateCourseRequest) (*model.Course, error) {
	if !actor.Can(model.PermissionCoursesWrite) {
		return nil, ErrForbidden
	}

	teacherID := actor.UserID
	if actor.Role != model.RoleTeacher {
		if req.TeacherID == nil {
			return nil, invalid("teacher_id", "es obligatorio")
		}
		teacherID = *req.TeacherID
	} else if req.TeacherID != nil && *req.TeacherID != actor.UserID {
		return nil, ErrNotCourseOwner
	}

	teacher, err := s.profiles.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalid("teacher_id", "no existe")
		}
		return nil, err
	}
	if teacher.Role != model.RoleTeacher {
		return nil, invalid("teacher_id", "no corresponde a un docente")
	}

	status := req.Status
	if status == "" {
		status = model.CourseStatusDraft
	}
	c := &model.Course{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		Schedule:    req.Schedule,
		Capacity:    req.Capacity,
		TeacherID:   teacherID,
	}
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update edits a course owned by the caller (or any course for admins).
func (s *CourseService) Update(ctx context.Context, actor model.Identity, id uuid.UUID, req model.UpdateCourseRequest) (*model.Course, error) {
	c, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		c.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Status != "" {
		c.Status = req.Status
	}
	if req.Schedule != nil {
		c.Schedule = *req.Schedule
	}
	if req.Capacity > 0 {
		if req.Capacity < c.EnrolledCount {
			return nil, invalid("capacity", "es menor que la cantidad de matriculados")
		}
		c.Capacity = req.Capacity
	}

	if err := s.courses.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a course owned by the caller (or any course for admins).
func (s *CourseService) Delete(ctx context.Context, actor model.Identity, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.courses.Delete(ctx, id)
}

// owned loads a course the caller may modify.
func (s *CourseService) owned(ctx context.Context, actor model.Identity, id uuid.UUID) (*model.Course, error) {
	if !actor.Can(model.PermissionCoursesWrite) {
		return nil, ErrForbidden
	}
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Can(model.PermissionCoursesWriteAll) && c.TeacherID != actor.UserID {
		return nil, ErrNotCourseOwner
	}
	return c, nil
}
