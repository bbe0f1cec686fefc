package service

import (
	"context"
	"errors"
	"strings"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
)

// GroupService handles student cohorts.
type GroupService struct {
	groups   GroupStore
	courses  CourseStore
	profiles ProfileStore
}

// NewGroupService creates a new GroupService.
func NewGroupService(groups GroupStore, courses CourseStore, profiles ProfileStore) *GroupService {
	return &GroupService{groups: groups, courses: courses, profiles: profiles}
}

// List returns every group, or for students only the groups they belong to.
func (s *GroupService) List(ctx context.Context, actor model.Identity) ([]model.Group, error) {
	if actor.IsStudent() {
		return s.groups.List(ctx, &actor.UserID)
	}
	return s.groups.List(ctx, nil)
}

// Create adds a group owned by the caller.
func (s *GroupService) Create(ctx context.Context, actor model.Identity, req model.CreateGroupRequest) (*model.Group, error) {
	if !actor.Can(model.PermissionGroupsWrite) {
		return nil, ErrForbidden
	}
	if req.CourseID != nil {
		c, err := s.courses.GetByID(ctx, *req.CourseID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, invalid("course_id", "no existe")
			}
			return nil, err
		}
		if !actor.Can(model.PermissionCoursesWriteAll) && c.TeacherID != actor.UserID {
			return nil, ErrNotCourseOwner
		}
	}

	g := &model.Group{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CourseID:    req.CourseID,
		CreatedBy:   actor.UserID,
	}
	if err := s.groups.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// AddMember adds a student to a group.
func (s *GroupService) AddMember(ctx context.Context, actor model.Identity, groupID, studentID uuid.UUID) (*model.Group, error) {
	if err := s.checkWrite(ctx, actor, groupID); err != nil {
		return nil, err
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
	if err := s.groups.AddMember(ctx, groupID, studentID); err != nil {
		return nil, err
	}
	return s.groups.GetByID(ctx, groupID)
}

// RemoveMember removes a student from a group.
func (s *GroupService) RemoveMember(ctx context.Context, actor model.Identity, groupID, studentID uuid.UUID) error {
	if err := s.checkWrite(ctx, actor, groupID); err != nil {
		return err
	}
	return s.groups.RemoveMember(ctx, groupID, studentID)
}

func (s *GroupService) checkWrite(ctx context.Context, actor model.Identity, groupID uuid.UUID) error {
	if !actor.Can(model.PermissionGroupsWrite) {
		return ErrForbidden
	}
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if !actor.Can(model.PermissionCoursesWriteAll) && g.CreatedBy != actor.UserID {
		return ErrForbidden
	}
	return nil
}
