package service

import (
	"context"
	"errors"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
)

// EnrollmentService handles course enrollment.
type EnrollmentService struct {
	enrollments EnrollmentStore
	courses     CourseStore
	profiles    ProfileStore
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(enrollments EnrollmentStore, courses CourseStore, profiles ProfileStore) *EnrollmentService {
	return &EnrollmentService{enrollments: enrollments, courses: courses, profiles: profiles}
}

// canManage reports whether the caller may manage enrollments of c.
func canManage(actor model.Identity, c *model.Course) bool {
	if actor.Can(model.PermissionCoursesWriteAll) {
		return true
	}
	return actor.Can(model.PermissionEnrollmentsManage) && c.TeacherID == actor.UserID
}

// ListByCourse lists enrollments of a course. Students only see their own entry.
func (s *EnrollmentService) ListByCourse(ctx context.Context, actor model.Identity, courseID uuid.UUID) ([]model.Enrollment, error) {
	c, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	list, err := s.enrollments.ListByCourse(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if canManage(actor, c) {
		return list, nil
	}
	if !actor.IsStudent() {
		return nil, ErrNotCourseOwner
	}

	own := []model.Enrollment{}
	for _, e := range list {
		if e.StudentID == actor.UserID {
			own = append(own, e)
		}
	}
	return own, nil
}

// Enroll adds a student to a course. Students may only enroll themselves
// into active courses.
func (s *EnrollmentService) Enroll(ctx context.Context, actor model.Identity, courseID uuid.UUID, req model.CreateEnrollmentRequest) (*model.Enrollment, error) {
	c, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	studentID := actor.UserID
	switch {
	case canManage(actor, c):
		if req.StudentID == nil {
			return nil, invalid("student_id", "es obligatorio")
		}
		studentID = *req.StudentID
	case actor.IsStudent():
		if req.StudentID != nil && *req.StudentID != actor.UserID {
			return nil, ErrStudentScope
		}
		if c.Status != model.CourseStatusActive {
			return nil, ErrCourseInactive
		}
	default:
		return nil, ErrNotCourseOwner
	}

	student, err := s.profiles.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalid("student_id", "no existe")
		}
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, invalid("student_id", "no corresponde a un estudiante")
	}

	e := &model.Enrollment{
		CourseID:  c.ID,
		StudentID: studentID,
		Status:    model.EnrollmentStatusActive,
	}
	if err := s.enrollments.Create(ctx, e, c.Capacity); err != nil {
		return nil, err
	}
	return e, nil
}

// Update changes status and/or progress. Students may update their own
// enrollment; course managers any enrollment of their course. Moving an
// enrollment back to active counts against the course capacity.
func (s *EnrollmentService) Update(ctx context.Context, actor model.Identity, id uuid.UUID, req model.UpdateEnrollmentRequest) (*model.Enrollment, error) {
	e, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	c, err := s.courses.GetByID(ctx, e.CourseID)
	if err != nil {
		return nil, err
	}

	reactivating := req.Status == model.EnrollmentStatusActive && e.Status != model.EnrollmentStatusActive
	if reactivating && actor.IsStudent() && c.Status != model.CourseStatusActive {
		return nil, ErrCourseInactive
	}

	if req.Status != "" {
		e.Status = req.Status
	}
	if req.Progress != nil {
		e.Progress = *req.Progress
	}
	if e.Progress == 100 && req.Status == "" {
		e.Status = model.EnrollmentStatusCompleted
	}
	if err := s.enrollments.Update(ctx, e, c.Capacity); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an enrollment.
func (s *EnrollmentService) Delete(ctx context.Context, actor model.Identity, id uuid.UUID) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	return s.enrollments.Delete(ctx, id)
}

func (s *EnrollmentService) authorize(ctx context.Context, actor model.Identity, id uuid.UUID) (*model.Enrollment, error) {
	e, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsStudent() {
		if e.StudentID != actor.UserID {
			return nil, ErrStudentScope
		}
		return e, nil
	}
	c, err := s.courses.GetByID(ctx, e.CourseID)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, c) {
		return nil, ErrNotCourseOwner
	}
	return e, nil
}
