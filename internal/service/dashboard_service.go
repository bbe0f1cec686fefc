package service

import (
	"context"
	"math"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
)

const dashboardListSize = 5

// DashboardData consolidates the metrics shown on the caller's dashboard.
// Which fields are filled depends on the role.
type DashboardData struct {
	Role                model.Role               `json:"role"`
	Counts              *model.DashboardCounts   `json:"counts,omitempty"`
	Courses             []model.Course           `json:"courses,omitempty"`
	StudentCount        *int                     `json:"student_count,omitempty"`
	AverageProgress     *float64                 `json:"average_progress,omitempty"`
	RecentResults       []model.EvaluationResult `json:"recent_results,omitempty"`
	UpcomingLiveClasses []model.LiveClass        `json:"upcoming_live_classes"`
	UnreadMessages      int                      `json:"unread_messages"`
}

// DashboardService assembles role-specific dashboards.
type DashboardService struct {
	counts      DashboardStore
	courses     CourseStore
	enrollments EnrollmentStore
	evaluations EvaluationStore
	messages    MessageStore
	liveClasses *LiveClassService
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	counts DashboardStore,
	courses CourseStore,
	enrollments EnrollmentStore,
	evaluations EvaluationStore,
	messages MessageStore,
	liveClasses *LiveClassService,
) *DashboardService {
	return &DashboardService{
		counts:      counts,
		courses:     courses,
		enrollments: enrollments,
		evaluations: evaluations,
		messages:    messages,
		liveClasses: liveClasses,
	}
}

// GetDashboardData builds the dashboard for the caller.
func (s *DashboardService) GetDashboardData(ctx context.Context, actor model.Identity) (*DashboardData, error) {
	data := &DashboardData{Role: actor.Role}

	var err error
	switch actor.Role {
	case model.RoleAdmin:
		err = s.fillAdmin(ctx, data)
	case model.RoleTeacher:
		err = s.fillTeacher(ctx, actor, data)
	default:
		err = s.fillStudent(ctx, actor, data)
	}
	if err != nil {
		return nil, err
	}

	upcoming, _, err := s.liveClasses.List(ctx, actor, LiveClassListOptions{UpcomingOnly: true, Limit: dashboardListSize})
	if err != nil {
		return nil, err
	}
	data.UpcomingLiveClasses = upcoming

	data.UnreadMessages, err = s.messages.CountUnread(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *DashboardService) fillAdmin(ctx context.Context, data *DashboardData) error {
	counts, err := s.counts.GetSummaryCounts(ctx)
	if err != nil {
		return err
	}
	data.Counts = &counts
	return nil
}

func (s *DashboardService) fillTeacher(ctx context.Context, actor model.Identity, data *DashboardData) error {
	courses, _, err := s.courses.List(ctx, model.CourseFilter{TeacherID: &actor.UserID})
	if err != nil {
		return err
	}
	data.Courses = courses

	students := make(map[uuid.UUID]struct{})
	for _, c := range courses {
		list, err := s.enrollments.ListByCourse(ctx, c.ID)
		if err != nil {
			return err
		}
		for _, e := range list {
			if e.Status == model.EnrollmentStatusActive {
				students[e.StudentID] = struct{}{}
			}
		}
	}
	n := len(students)
	data.StudentCount = &n
	return nil
}

func (s *DashboardService) fillStudent(ctx context.Context, actor model.Identity, data *DashboardData) error {
	courses, _, err := s.courses.List(ctx, model.CourseFilter{StudentID: &actor.UserID})
	if err != nil {
		return err
	}
	data.Courses = courses

	enrollments, err := s.enrollments.ListByStudent(ctx, actor.UserID)
	if err != nil {
		return err
	}
	var sum, count int
	for _, e := range enrollments {
		if e.Status == model.EnrollmentStatusDropped {
			continue
		}
		sum += e.Progress
		count++
	}
	avg := 0.0
	if count > 0 {
		avg = math.Round(float64(sum)/float64(count)*100) / 100
	}
	data.AverageProgress = &avg

	recent, _, err := s.evaluations.List(ctx, model.EvaluationFilter{StudentID: &actor.UserID, Limit: dashboardListSize})
	if err != nil {
		return err
	}
	data.RecentResults = recent
	return nil
}
