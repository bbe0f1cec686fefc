package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/google/uuid"
)

// DefaultMaxParticipants applies when a live class is created without a limit.
const DefaultMaxParticipants = 100

// LiveClassListOptions carries the caller-provided listing parameters.
type LiveClassListOptions struct {
	CourseID     *uuid.UUID
	UpcomingOnly bool
	Limit        int
	Offset       int
}

// LiveClassService handles live class scheduling and presence bookkeeping.
type LiveClassService struct {
	liveClasses LiveClassStore
	courses     CourseStore
	enrollments EnrollmentStore
}

// NewLiveClassService creates a new LiveClassService.
func NewLiveClassService(liveClasses LiveClassStore, courses CourseStore, enrollments EnrollmentStore) *LiveClassService {
	return &LiveClassService{liveClasses: liveClasses, courses: courses, enrollments: enrollments}
}

// visibleCourses returns the course ids the caller may see live classes of.
// A nil slice means every course.
func (s *LiveClassService) visibleCourses(ctx context.Context, actor model.Identity) ([]uuid.UUID, error) {
	if actor.Can(model.PermissionCoursesReadAll) {
		return nil, nil
	}
	ids := []uuid.UUID{}
	if actor.IsStudent() {
		list, err := s.enrollments.ListByStudent(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		for _, e := range list {
			if e.Status != model.EnrollmentStatusDropped {
				ids = append(ids, e.CourseID)
			}
		}
		return ids, nil
	}
	courses, _, err := s.courses.List(ctx, model.CourseFilter{TeacherID: &actor.UserID})
	if err != nil {
		return nil, err
	}
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// List retrieves the live classes of the courses visible to the caller.
func (s *LiveClassService) List(ctx context.Context, actor model.Identity, opts LiveClassListOptions) ([]model.LiveClass, *response.Pagination, error) {
	visible, err := s.visibleCourses(ctx, actor)
	if err != nil {
		return nil, nil, err
	}

	f := model.LiveClassFilter{CourseIDs: visible, UpcomingOnly: opts.UpcomingOnly}
	f.Limit, f.Offset = normalizePage(opts.Limit, opts.Offset)
	if opts.CourseID != nil {
		if visible != nil && !slices.Contains(visible, *opts.CourseID) {
			f.CourseIDs = []uuid.UUID{}
		} else {
			f.CourseIDs = []uuid.UUID{*opts.CourseID}
		}
	}

	list, total, err := s.liveClasses.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return list, response.NewPagination(f.Limit, f.Offset, total), nil
}

// Create schedules a live class for a course the caller manages.
func (s *LiveClassService) Create(ctx context.Context, actor model.Identity, req model.CreateLiveClassRequest) (*model.LiveClass, error) {
	if err := s.checkCourse(ctx, actor, req.CourseID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalid("course_id", "no existe")
		}
		return nil, err
	}

	capacity := req.MaxParticipants
	if capacity == 0 {
		capacity = DefaultMaxParticipants
	}
	l := &model.LiveClass{
		CourseID:        req.CourseID,
		Title:           strings.TrimSpace(req.Title),
		ScheduledAt:     req.ScheduledAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		MeetingLink:     req.MeetingLink,
		MaxParticipants: capacity,
		Status:          model.LiveClassStatusScheduled,
	}
	if err := s.liveClasses.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Update edits a live class of a course the caller manages.
func (s *LiveClassService) Update(ctx context.Context, actor model.Identity, id uuid.UUID, req model.UpdateLiveClassRequest) (*model.LiveClass, error) {
	l, err := s.liveClasses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCourse(ctx, actor, l.CourseID); err != nil {
		return nil, err
	}

	if req.Title != "" {
		l.Title = strings.TrimSpace(req.Title)
	}
	if req.ScheduledAt != nil {
		l.ScheduledAt = req.ScheduledAt.UTC()
	}
	if req.DurationMinutes > 0 {
		l.DurationMinutes = req.DurationMinutes
	}
	if req.MeetingLink != nil {
		l.MeetingLink = *req.MeetingLink
	}
	if req.MaxParticipants > 0 {
		l.MaxParticipants = req.MaxParticipants
	}
	if req.Status != "" {
		l.Status = req.Status
	}

	if err := s.liveClasses.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Delete removes a live class of a course the caller manages.
func (s *LiveClassService) Delete(ctx context.Context, actor model.Identity, id uuid.UUID) error {
	l, err := s.liveClasses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkCourse(ctx, actor, l.CourseID); err != nil {
		return err
	}
	return s.liveClasses.Delete(ctx, id)
}

// Authorize checks that the caller may join a live class and returns it.
func (s *LiveClassService) Authorize(ctx context.Context, actor model.Identity, id uuid.UUID) (*model.LiveClass, error) {
	l, err := s.liveClasses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == model.LiveClassStatusFinished || l.Status == model.LiveClassStatusCancelled {
		return nil, ErrLiveClassClosed
	}
	visible, err := s.visibleCourses(ctx, actor)
	if err != nil {
		return nil, err
	}
	if visible != nil && !slices.Contains(visible, l.CourseID) {
		return nil, ErrForbidden
	}
	return l, nil
}

// SetParticipantCount persists the number of connected participants.
func (s *LiveClassService) SetParticipantCount(ctx context.Context, id uuid.UUID, count int) error {
	return s.liveClasses.SetParticipantCount(ctx, id, count)
}

func (s *LiveClassService) checkCourse(ctx context.Context, actor model.Identity, courseID uuid.UUID) error {
	if !actor.Can(model.PermissionLiveClassesWrite) {
		return ErrForbidden
	}
	c, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if !actor.Can(model.PermissionCoursesWriteAll) && c.TeacherID != actor.UserID {
		return ErrNotCourseOwner
	}
	return nil
}
