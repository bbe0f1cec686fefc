package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/cache"
	"github.com/epsilon-academy/academy-backend/internal/config"
	"github.com/epsilon-academy/academy-backend/internal/database"
	"github.com/epsilon-academy/academy-backend/internal/logger"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/repository"
	"github.com/epsilon-academy/academy-backend/internal/service"
	"github.com/google/uuid"
)

const (
	demoTeacherEmail = "docente.demo@epsilon.academy"
	demoPassword     = "epsilon123"
	demoCourseTitle  = "Ciclo Intensivo Demo"
)

var names = []string{
	"Lucía Quispe", "Mateo Huamán", "Valentina Rojas", "Santiago Flores", "Camila Mendoza",
	"Sebastián Torres", "Ximena Chávez", "Diego Vargas", "Daniela Ramos", "Joaquín Castillo",
	"Mariana Gutiérrez", "Thiago Paredes", "Renata Salazar", "Adrián Ccori", "Fernanda Díaz",
	"Gabriel Mamani", "Antonella Ríos", "Nicolás Espinoza", "Isabella Aguilar", "Rodrigo Villanueva",
	"Alessandra Cruz", "Emiliano Soto", "Luciana Herrera", "Matías Cárdenas", "Valeria Ponce",
}

var institutions = []string{"Colegio San Marcos", "IE Túpac Amaru", "Colegio Santa Rosa"}
var services = []string{"Preuniversitario", "Reforzamiento", "Ciclo Anual"}

func main() {
	var count, attempts int
	flag.IntVar(&count, "students", len(names), "Number of demo students to create")
	flag.IntVar(&attempts, "attempts", 3, "Evaluation results recorded per student")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	profiles := repository.NewProfileRepository(pool)
	svcs := service.NewServices(cfg, service.Stores{
		Profiles:    profiles,
		Courses:     repository.NewCourseRepository(pool),
		Enrollments: repository.NewEnrollmentRepository(pool),
		Groups:      repository.NewGroupRepository(pool),
		Messages:    repository.NewMessageRepository(pool),
		LiveClasses: repository.NewLiveClassRepository(pool),
		Evaluations: repository.NewEvaluationRepository(pool),
		Dashboard:   repository.NewDashboardRepository(pool),
	}, cache.NewMemoryDenylist(), cache.NewStatisticsCache(nil, 0), log)

	admin := model.Identity{Role: model.RoleAdmin}

	fmt.Println("=== Seeding demo data ===")

	teacherID, err := ensureProfile(ctx, svcs.Auth, profiles, model.SignupRequest{
		Email:     demoTeacherEmail,
		Password:  demoPassword,
		FullName:  "Docente Demo",
		Role:      model.RoleTeacher,
		Specialty: "Matemática",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare demo teacher")
	}
	fmt.Printf("Teacher: %s (%s)\n", demoTeacherEmail, teacherID)

	course, err := svcs.Course.Create(ctx, admin, model.CreateCourseRequest{
		Title:       demoCourseTitle,
		Description: "Curso de demostración con resultados de simulacros.",
		Status:      model.CourseStatusActive,
		Schedule:    "Lun-Vie 16:00",
		Capacity:    count + 10,
		TeacherID:   &teacherID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create demo course")
	}
	fmt.Printf("Course: %s (%s)\n", course.Title, course.ID)

	rng := rand.New(rand.NewPCG(2026, 1))
	now := time.Now().UTC()
	created := 0

	for i := 0; i < count; i++ {
		name := names[i%len(names)]
		institution := institutions[i%len(institutions)]
		email := fmt.Sprintf("%s.%02d@demo.epsilon.academy", slug(name), i+1)

		studentID, err := ensureProfile(ctx, svcs.Auth, profiles, model.SignupRequest{
			Email:       email,
			Password:    demoPassword,
			FullName:    name,
			Institution: institution,
			Grade:       "5to secundaria",
		})
		if err != nil {
			log.Error().Err(err).Str("email", email).Msg("Failed to create student")
			continue
		}

		if _, err := svcs.Enrollment.Enroll(ctx, admin, course.ID, model.CreateEnrollmentRequest{StudentID: &studentID}); err != nil &&
			!errors.Is(err, service.ErrDuplicate) {
			log.Error().Err(err).Str("email", email).Msg("Failed to enroll student")
			continue
		}

		for a := 0; a < attempts; a++ {
			req := demoResult(rng, studentID, course.ID, institution, services[a%len(services)], a, now)
			if _, err := svcs.Evaluation.Create(ctx, admin, req); err != nil {
				log.Error().Err(err).Str("email", email).Msg("Failed to record result")
			}
		}
		created++
	}

	fmt.Printf("\nDone. %d students seeded with password %q\n", created, demoPassword)
}

// ensureProfile signs up req, or returns the existing profile with that email.
func ensureProfile(ctx context.Context, auth *service.AuthService, profiles *repository.ProfileRepository, req model.SignupRequest) (uuid.UUID, error) {
	session, err := auth.Signup(ctx, req, true)
	if err == nil {
		return session.Profile.ID, nil
	}
	if !errors.Is(err, service.ErrDuplicate) {
		return uuid.Nil, err
	}
	p, err := profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

func demoResult(rng *rand.Rand, studentID, courseID uuid.UUID, institution, servicio string, attempt int, now time.Time) model.CreateEvaluationResultRequest {
	total := 20
	correct := 6 + rng.IntN(14)
	blank := rng.IntN(total - correct + 1)
	incorrect := total - correct - blank

	start := now.AddDate(0, 0, -7*(attempt+1)).Add(time.Duration(rng.IntN(120)) * time.Minute)
	end := start.Add(time.Duration(40+rng.IntN(50)) * time.Minute)

	return model.CreateEvaluationResultRequest{
		StudentID:             &studentID,
		CourseID:              &courseID,
		EvaluacionNombre:      fmt.Sprintf("Simulacro %d", attempt+1),
		TipoEvaluacion:        model.EvaluationTypeSimulacro,
		Servicio:              servicio,
		Institucion:           institution,
		TotalPreguntas:        &total,
		RespuestasCorrectas:   &correct,
		RespuestasIncorrectas: &incorrect,
		RespuestasBlanco:      &blank,
		FechaInicio:           &start,
		FechaFin:              &end,
	}
}

func slug(name string) string {
	r := strings.NewReplacer(" ", ".", "á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n")
	return r.Replace(strings.ToLower(name))
}
