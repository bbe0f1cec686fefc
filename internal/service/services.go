package service

import (
	"github.com/epsilon-academy/academy-backend/internal/cache"
	"github.com/epsilon-academy/academy-backend/internal/config"
	"github.com/rs/zerolog"
)

// Services holds every service, wired over one set of stores.
type Services struct {
	Auth       *AuthService
	User       *UserService
	Course     *CourseService
	Enrollment *EnrollmentService
	Group      *GroupService
	Message    *MessageService
	LiveClass  *LiveClassService
	Evaluation *EvaluationService
	Dashboard  *DashboardService
}

// NewServices wires the services over stores.
func NewServices(cfg *config.Config, stores Stores, denylist cache.Denylist, summaries SummaryCache, log zerolog.Logger) *Services {
	liveClasses := NewLiveClassService(stores.LiveClasses, stores.Courses, stores.Enrollments)
	auth := NewAuthService(cfg, stores.Profiles, denylist, log)

	return &Services{
		Auth:       auth,
		User:       NewUserService(stores.Profiles, auth),
		Course:     NewCourseService(stores.Courses, stores.Enrollments, stores.Profiles),
		Enrollment: NewEnrollmentService(stores.Enrollments, stores.Courses, stores.Profiles),
		Group:      NewGroupService(stores.Groups, stores.Courses, stores.Profiles),
		Message:    NewMessageService(stores.Messages, stores.Profiles),
		LiveClass:  liveClasses,
		Evaluation: NewEvaluationService(stores.Evaluations, stores.Profiles, summaries, log),
		Dashboard: NewDashboardService(stores.Dashboard, stores.Courses, stores.Enrollments,
			stores.Evaluations, stores.Messages, liveClasses),
	}
}
