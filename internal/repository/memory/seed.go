package memory

import (
	"fmt"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Fixture identities available after Seed.
var (
	FixtureAdminID    = uuid.MustParse("00000000-0000-4000-8000-00000000a001")
	FixtureTeacherID  = uuid.MustParse("00000000-0000-4000-8000-00000000b001")
	FixtureStudentID  = uuid.MustParse("00000000-0000-4000-8000-00000000c001")
	FixtureStudent2ID = uuid.MustParse("00000000-0000-4000-8000-00000000c002")

	FixtureCourseID      = uuid.MustParse("00000000-0000-4000-8000-00000000d001")
	FixtureDraftCourseID = uuid.MustParse("00000000-0000-4000-8000-00000000d002")
	FixtureGroupID       = uuid.MustParse("00000000-0000-4000-8000-00000000e001")
	FixtureLiveClassID   = uuid.MustParse("00000000-0000-4000-8000-00000000f001")
)

// FixturePassword is the password of every seeded profile.
const FixturePassword = "epsilon123"

// FixtureProfileID returns the seeded profile impersonated for a role.
func FixtureProfileID(role model.Role) (uuid.UUID, bool) {
	switch role {
	case model.RoleAdmin:
		return FixtureAdminID, true
	case model.RoleTeacher:
		return FixtureTeacherID, true
	case model.RoleStudent:
		return FixtureStudentID, true
	}
	return uuid.Nil, false
}

// DevIdentity impersonates the fixture profile of role. It backs the
// X-Dev-Role header in skip mode.
func DevIdentity(role model.Role) (model.Identity, bool) {
	id, ok := FixtureProfileID(role)
	if !ok {
		return model.Identity{}, false
	}
	return model.Identity{UserID: id, Role: role}, true
}

// Seed loads the fixture data set into db. bcryptCost controls how the
// shared fixture password is hashed.
func Seed(db *DB, bcryptCost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash fixture password: %w", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	now := db.now()
	profile := func(id uuid.UUID, email, name string, role model.Role) {
		db.profiles[id] = model.Profile{
			ID: id, Email: email, FullName: name, Role: role,
			PasswordHash: string(hash), CreatedAt: now, UpdatedAt: now,
		}
	}
	profile(FixtureAdminID, "admin@epsilon.academy", "Administración Epsilon", model.RoleAdmin)
	profile(FixtureTeacherID, "docente@epsilon.academy", "María Quispe", model.RoleTeacher)
	profile(FixtureStudentID, "ana@epsilon.academy", "Ana Torres", model.RoleStudent)
	profile(FixtureStudent2ID, "luis@epsilon.academy", "Luis Rojas", model.RoleStudent)

	db.teachers[FixtureTeacherID] = model.TeacherDetail{ProfileID: FixtureTeacherID, Specialty: "Matemáticas"}
	db.students[FixtureStudentID] = model.StudentDetail{ProfileID: FixtureStudentID, Institution: "UNI", Grade: "5to"}
	db.students[FixtureStudent2ID] = model.StudentDetail{ProfileID: FixtureStudent2ID, Institution: "San Marcos", Grade: "5to"}

	db.courses[FixtureCourseID] = model.Course{
		ID: FixtureCourseID, Title: "Matemáticas preuniversitarias", Description: "Álgebra y aritmética",
		Status: model.CourseStatusActive, Schedule: "Lun-Mié 18:00", Capacity: 30,
		TeacherID: FixtureTeacherID, CreatedAt: now, UpdatedAt: now,
	}
	db.courses[FixtureDraftCourseID] = model.Course{
		ID: FixtureDraftCourseID, Title: "Física básica", Status: model.CourseStatusDraft,
		Capacity: 2, TeacherID: FixtureTeacherID, CreatedAt: now.Add(-time.Hour), UpdatedAt: now,
	}

	enrollmentID := uuid.MustParse("00000000-0000-4000-8000-0000000e0001")
	db.enrollments[enrollmentID] = model.Enrollment{
		ID: enrollmentID, CourseID: FixtureCourseID, StudentID: FixtureStudentID,
		Status: model.EnrollmentStatusActive, Progress: 40, EnrolledAt: now, UpdatedAt: now,
	}

	courseID := FixtureCourseID
	db.groups[FixtureGroupID] = model.Group{
		ID: FixtureGroupID, Name: "Grupo A", Description: "Turno noche", CourseID: &courseID,
		CreatedBy: FixtureTeacherID, MemberIDs: []uuid.UUID{FixtureStudentID, FixtureStudent2ID}, CreatedAt: now,
	}

	db.liveClasses[FixtureLiveClassID] = model.LiveClass{
		ID: FixtureLiveClassID, CourseID: FixtureCourseID, Title: "Repaso de ecuaciones",
		ScheduledAt: now.Add(24 * time.Hour), DurationMinutes: 90, MaxParticipants: 50,
		Status: model.LiveClassStatusScheduled, CreatedAt: now, UpdatedAt: now,
	}

	groupID := FixtureGroupID
	results := []struct {
		student     uuid.UUID
		name        string
		service     string
		institution string
		total       int
		correct     int
		incorrect   int
		daysAgo     int
		minutes     int
	}{
		{FixtureStudentID, "Simulacro 1", "Ciencias", "UNI", 20, 18, 2, 10, 60},
		{FixtureStudentID, "Simulacro 2", "Ciencias", "UNI", 20, 10, 8, 5, 55},
		{FixtureStudent2ID, "Simulacro 1", "Letras", "San Marcos", 20, 8, 10, 9, 70},
	}
	for i, fx := range results {
		id := uuid.MustParse(fmt.Sprintf("00000000-0000-4000-8000-0000000f%04d", i+1))
		start := now.AddDate(0, 0, -fx.daysAgo)
		end := start.Add(time.Duration(fx.minutes) * time.Minute)
		pct := float64(fx.correct) / float64(fx.total) * 100
		db.evaluations[id] = model.EvaluationResult{
			ID: id, StudentID: fx.student, CourseID: &courseID, GroupID: &groupID,
			EvaluacionNombre: fx.name, TipoEvaluacion: model.EvaluationTypeSimulacro,
			Servicio: fx.service, Institucion: fx.institution,
			TotalPreguntas: fx.total, RespuestasCorrectas: fx.correct, RespuestasIncorrectas: fx.incorrect,
			RespuestasBlanco: fx.total - fx.correct - fx.incorrect,
			Porcentaje:       pct, Aprobado: pct >= model.DefaultPassingPercentage,
			FechaInicio: start, FechaFin: &end, CreatedAt: end,
		}
	}
	return nil
}
