package service

import (
	"context"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
)

// ProfileStore persists profiles.
type ProfileStore interface {
	Create(ctx context.Context, p *model.Profile, teacher *model.TeacherDetail, student *model.StudentDetail) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	List(ctx context.Context, f model.ProfileFilter) ([]model.Profile, int, error)
	Update(ctx context.Context, p *model.Profile) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	CountByRole(ctx context.Context) (map[model.Role]int, error)
}

// CourseStore persists courses.
type CourseStore interface {
	Create(ctx context.Context, c *model.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	List(ctx context.Context, f model.CourseFilter) ([]model.Course, int, error)
	Update(ctx context.Context, c *model.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EnrollmentStore persists enrollments. Create, and an Update that moves an
// enrollment back to active, must fail with ErrCourseFull when the course
// already holds capacity active enrollments. A duplicate (course, student)
// pair fails Create with ErrDuplicate before capacity is considered.
type EnrollmentStore interface {
	Create(ctx context.Context, e *model.Enrollment, capacity int) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Enrollment, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Enrollment, error)
	Update(ctx context.Context, e *model.Enrollment, capacity int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GroupStore persists groups and their members.
type GroupStore interface {
	Create(ctx context.Context, g *model.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error)
	List(ctx context.Context, memberID *uuid.UUID) ([]model.Group, error)
	AddMember(ctx context.Context, groupID, studentID uuid.UUID) error
	RemoveMember(ctx context.Context, groupID, studentID uuid.UUID) error
}

// MessageStore persists direct messages.
type MessageStore interface {
	Create(ctx context.Context, m *model.Message) error
	ListFor(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]model.Message, int, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)
}

// LiveClassStore persists live classes.
type LiveClassStore interface {
	Create(ctx context.Context, l *model.LiveClass) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.LiveClass, error)
	List(ctx context.Context, f model.LiveClassFilter) ([]model.LiveClass, int, error)
	Update(ctx context.Context, l *model.LiveClass) error
	Transition(ctx context.Context, id uuid.UUID, from, to model.LiveClassStatus) (bool, error)
	SetParticipantCount(ctx context.Context, id uuid.UUID, count int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EvaluationStore persists evaluation results.
type EvaluationStore interface {
	Create(ctx context.Context, e *model.EvaluationResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.EvaluationResult, error)
	List(ctx context.Context, f model.EvaluationFilter) ([]model.EvaluationResult, int, error)
	ListAll(ctx context.Context, f model.EvaluationFilter) ([]model.EvaluationResult, error)
}

// DashboardStore provides platform-wide counters.
type DashboardStore interface {
	GetSummaryCounts(ctx context.Context) (model.DashboardCounts, error)
}

// Stores bundles one implementation of every store.
type Stores struct {
	Profiles    ProfileStore
	Courses     CourseStore
	Enrollments EnrollmentStore
	Groups      GroupStore
	Messages    MessageStore
	LiveClasses LiveClassStore
	Evaluations EvaluationStore
	Dashboard   DashboardStore
}
