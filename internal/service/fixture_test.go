package service

import (
	"testing"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/cache"
	"github.com/epsilon-academy/academy-backend/internal/config"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/repository/memory"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	cfg         *config.Config
	auth        *AuthService
	users       *UserService
	courses     *CourseService
	enrollments *EnrollmentService
	groups      *GroupService
	messages    *MessageService
	liveClasses *LiveClassService
	evaluations *EvaluationService
	dashboard   *DashboardService
}

var (
	admin   = model.Identity{UserID: memory.FixtureAdminID, Role: model.RoleAdmin}
	teacher = model.Identity{UserID: memory.FixtureTeacherID, Role: model.RoleTeacher}
	student = model.Identity{UserID: memory.FixtureStudentID, Role: model.RoleStudent}
	other   = model.Identity{UserID: memory.FixtureStudent2ID, Role: model.RoleStudent}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewDB()
	if err := memory.Seed(db, bcrypt.MinCost); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	log := zerolog.Nop()

	profiles := memory.NewProfileRepository(db)
	courses := memory.NewCourseRepository(db)
	enrollments := memory.NewEnrollmentRepository(db)
	liveClasses := NewLiveClassService(memory.NewLiveClassRepository(db), courses, enrollments)
	messages := memory.NewMessageRepository(db)
	evaluations := memory.NewEvaluationRepository(db)

	auth := NewAuthService(cfg, profiles, cache.NewMemoryDenylist(), log)

	return &fixture{
		cfg:         cfg,
		auth:        auth,
		users:       NewUserService(profiles, auth),
		courses:     NewCourseService(courses, enrollments, profiles),
		enrollments: NewEnrollmentService(enrollments, courses, profiles),
		groups:      NewGroupService(memory.NewGroupRepository(db), courses, profiles),
		messages:    NewMessageService(messages, profiles),
		liveClasses: liveClasses,
		evaluations: NewEvaluationService(evaluations, profiles, cache.NewStatisticsCache(nil, 0), log),
		dashboard: NewDashboardService(memory.NewDashboardRepository(db), courses, enrollments,
			evaluations, messages, liveClasses),
	}
}

func intPtr(v int) *int { return &v }
