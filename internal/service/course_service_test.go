package service

import (
	"context"
	"errors"
	"testing"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/repository/memory"
	"github.com/google/uuid"
)

func TestCourseListIsScopedByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		actor model.Identity
		opts  CourseListOptions
		want  int
	}{
		{"admin sees all", admin, CourseListOptions{}, 2},
		{"teacher sees own", teacher, CourseListOptions{}, 2},
		{"student sees enrolled", student, CourseListOptions{}, 1},
		{"student catalog sees active", other, CourseListOptions{Catalog: true}, 1},
		{"student without enrollments", other, CourseListOptions{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, page, err := f.courses.List(ctx, tt.actor, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != tt.want || page.TotalItems != tt.want {
				t.Fatalf("got %d (total %d), want %d", len(list), page.TotalItems, tt.want)
			}
		})
	}
}

func TestCourseCreateOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.courses.Create(ctx, teacher, model.CreateCourseRequest{Title: "Química", Capacity: 10})
	if err != nil {
		t.Fatalf("teacher create: %v", err)
	}
	if c.TeacherID != teacher.UserID || c.Status != model.CourseStatusDraft {
		t.Errorf("course = %+v", c)
	}

	if _, err := f.courses.Create(ctx, student, model.CreateCourseRequest{Title: "Hack", Capacity: 1}); !errors.Is(err, ErrForbidden) {
		t.Errorf("student create: %v", err)
	}

	_, err = f.courses.Create(ctx, admin, model.CreateCourseRequest{Title: "Sin docente", Capacity: 1})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["teacher_id"] == "" {
		t.Errorf("admin without teacher_id: %v", err)
	}

	notTeacher := memory.FixtureStudentID
	_, err = f.courses.Create(ctx, admin, model.CreateCourseRequest{Title: "Mal docente", Capacity: 1, TeacherID: &notTeacher})
	if !errors.As(err, &verr) {
		t.Errorf("admin with student as teacher: %v", err)
	}
}

func TestCourseUpdateRequiresOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.auth.Signup(ctx, model.SignupRequest{
		Email: "otro@x.pe", Password: "secreto1", FullName: "Otro Docente", Role: model.RoleTeacher,
	}, true)
	if err != nil {
		t.Fatal(err)
	}
	stranger := model.Identity{UserID: sess.Profile.ID, Role: model.RoleTeacher}

	_, err = f.courses.Update(ctx, stranger, memory.FixtureCourseID, model.UpdateCourseRequest{Title: "Robado"})
	if !errors.Is(err, ErrNotCourseOwner) {
		t.Fatalf("expected ErrNotCourseOwner, got %v", err)
	}
	if err := f.courses.Delete(ctx, stranger, memory.FixtureCourseID); !errors.Is(err, ErrNotCourseOwner) {
		t.Fatalf("expected ErrNotCourseOwner on delete, got %v", err)
	}

	desc := "Nuevo temario"
	c, err := f.courses.Update(ctx, teacher, memory.FixtureCourseID, model.UpdateCourseRequest{Description: &desc})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if c.Description != desc || c.Title != "Matemáticas preuniversitarias" {
		t.Errorf("course = %+v", c)
	}
}

func TestCourseGetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.courses.Get(ctx, other, memory.FixtureDraftCourseID); !errors.Is(err, ErrNotFound) {
		t.Errorf("student reading draft course: %v", err)
	}
	if _, err := f.courses.Get(ctx, other, memory.FixtureCourseID); err != nil {
		t.Errorf("student reading active course: %v", err)
	}
	if _, err := f.courses.Get(ctx, admin, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown course: %v", err)
	}
}

func TestEnrollmentRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.enrollments.Enroll(ctx, other, memory.FixtureDraftCourseID, model.CreateEnrollmentRequest{}); !errors.Is(err, ErrCourseInactive) {
		t.Fatalf("self-enroll into draft: %v", err)
	}

	e, err := f.enrollments.Enroll(ctx, other, memory.FixtureCourseID, model.CreateEnrollmentRequest{})
	if err != nil {
		t.Fatalf("self-enroll: %v", err)
	}
	if e.StudentID != other.UserID || e.Status != model.EnrollmentStatusActive {
		t.Errorf("enrollment = %+v", e)
	}

	if _, err := f.enrollments.Enroll(ctx, other, memory.FixtureCourseID, model.CreateEnrollmentRequest{}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate: %v", err)
	}

	target := student.UserID
	if _, err := f.enrollments.Enroll(ctx, other, memory.FixtureCourseID, model.CreateEnrollmentRequest{StudentID: &target}); !errors.Is(err, ErrStudentScope) {
		t.Fatalf("enroll someone else: %v", err)
	}
}

func TestEnrollmentCapacityFromService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []uuid.UUID{memory.FixtureStudentID, memory.FixtureStudent2ID} {
		id := id
		if _, err := f.enrollments.Enroll(ctx, teacher, memory.FixtureDraftCourseID, model.CreateEnrollmentRequest{StudentID: &id}); err != nil {
			t.Fatalf("enroll %s: %v", id, err)
		}
	}

	sess, err := f.auth.Signup(ctx, model.SignupRequest{Email: "tercero@x.pe", Password: "secreto1", FullName: "Tercero"}, false)
	if err != nil {
		t.Fatal(err)
	}
	third := sess.Profile.ID
	if _, err := f.enrollments.Enroll(ctx, teacher, memory.FixtureDraftCourseID, model.CreateEnrollmentRequest{StudentID: &third}); !errors.Is(err, ErrCourseFull) {
		t.Fatalf("expected ErrCourseFull, got %v", err)
	}
}

func TestEnrollmentUpdateProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list, err := f.enrollments.ListByCourse(ctx, student, memory.FixtureCourseID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}

	if _, err := f.enrollments.Update(ctx, other, list[0].ID, model.UpdateEnrollmentRequest{Progress: intPtr(90)}); !errors.Is(err, ErrStudentScope) {
		t.Fatalf("other student update: %v", err)
	}

	e, err := f.enrollments.Update(ctx, teacher, list[0].ID, model.UpdateEnrollmentRequest{Progress: intPtr(100)})
	if err != nil {
		t.Fatal(err)
	}
	if e.Progress != 100 || e.Status != model.EnrollmentStatusCompleted {
		t.Errorf("enrollment = %+v", e)
	}
}

func TestEnrollmentReactivationRespectsCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var first *model.Enrollment
	for _, id := range []uuid.UUID{memory.FixtureStudentID, memory.FixtureStudent2ID} {
		id := id
		e, err := f.enrollments.Enroll(ctx, teacher, memory.FixtureDraftCourseID, model.CreateEnrollmentRequest{StudentID: &id})
		if err != nil {
			t.Fatalf("enroll %s: %v", id, err)
		}
		if first == nil {
			first = e
		}
	}

	again := memory.FixtureStudentID
	if _, err := f.enrollments.Enroll(ctx, teacher, memory.FixtureDraftCourseID, model.CreateEnrollmentRequest{StudentID: &again}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate into full course: %v, want ErrDuplicate", err)
	}

	if _, err := f.enrollments.Update(ctx, teacher, first.ID, model.UpdateEnrollmentRequest{Status: model.EnrollmentStatusDropped}); err != nil {
		t.Fatalf("drop: %v", err)
	}

	sess, err := f.auth.Signup(ctx, model.SignupRequest{Email: "reemplazo@x.pe", Password: "secreto1", FullName: "Reemplazo"}, false)
	if err != nil {
		t.Fatal(err)
	}
	third := sess.Profile.ID
	if _, err := f.enrollments.Enroll(ctx, teacher, memory.FixtureDraftCourseID, model.CreateEnrollmentRequest{StudentID: &third}); err != nil {
		t.Fatalf("enroll into freed seat: %v", err)
	}

	tests := []struct {
		name  string
		actor model.Identity
		want  error
	}{
		{"student into draft course", student, ErrCourseInactive},
		{"teacher over capacity", teacher, ErrCourseFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.enrollments.Update(ctx, tt.actor, first.ID, model.UpdateEnrollmentRequest{Status: model.EnrollmentStatusActive})
			if !errors.Is(err, tt.want) {
				t.Fatalf("reactivate: %v, want %v", err, tt.want)
			}
		})
	}

	e, err := f.enrollments.Update(ctx, teacher, first.ID, model.UpdateEnrollmentRequest{Progress: intPtr(40)})
	if err != nil {
		t.Fatalf("progress on dropped enrollment: %v", err)
	}
	if e.Status != model.EnrollmentStatusDropped {
		t.Fatalf("status = %q, want dropped", e.Status)
	}
}
