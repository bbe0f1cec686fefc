package service

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/config"
	"github.com/epsilon-academy/academy-backend/internal/export"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/epsilon-academy/academy-backend/internal/statistics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SummaryCache stores computed statistics summaries.
type SummaryCache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
	Invalidate(ctx context.Context) error
}

// EvaluationService handles evaluation results, statistics and exports.
type EvaluationService struct {
	evaluations EvaluationStore
	profiles    ProfileStore
	cache       SummaryCache
	log         zerolog.Logger
	now         func() time.Time
}

// NewEvaluationService creates a new EvaluationService.
func NewEvaluationService(evaluations EvaluationStore, profiles ProfileStore, cache SummaryCache, log zerolog.Logger) *EvaluationService {
	return &EvaluationService{
		evaluations: evaluations,
		profiles:    profiles,
		cache:       cache,
		log:         log.With().Str("component", "evaluation_service").Logger(),
		now:         time.Now,
	}
}

// List retrieves a page of results. Students are confined to their own.
func (s *EvaluationService) List(ctx context.Context, actor model.Identity, f model.EvaluationFilter) ([]model.EvaluationResult, *response.Pagination, error) {
	if !actor.Can(model.PermissionEvaluationsReadAll) {
		if f.StudentID != nil && *f.StudentID != actor.UserID {
			return nil, nil, ErrStudentScope
		}
		f.StudentID = &actor.UserID
	}
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)

	list, total, err := s.evaluations.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return list, response.NewPagination(f.Limit, f.Offset, total), nil
}

// Get retrieves a single result.
func (s *EvaluationService) Get(ctx context.Context, actor model.Identity, id uuid.UUID) (*model.EvaluationResult, error) {
	r, err := s.evaluations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Can(model.PermissionEvaluationsReadAll) && r.StudentID != actor.UserID {
		return nil, ErrStudentScope
	}
	return r, nil
}

// Create records a result after checking the answer-count and time
// invariants. Porcentaje is derived when omitted and Aprobado defaults to
// porcentaje >= DefaultPassingPercentage.
func (s *EvaluationService) Create(ctx context.Context, actor model.Identity, req model.CreateEvaluationResultRequest) (*model.EvaluationResult, error) {
	studentID := actor.UserID
	if actor.Can(model.PermissionEvaluationsWriteAll) {
		if req.StudentID == nil {
			return nil, invalid("student_id", "es obligatorio")
		}
		studentID = *req.StudentID
	} else if req.StudentID != nil && *req.StudentID != actor.UserID {
		return nil, ErrStudentScope
	}

	r, err := buildResult(studentID, req)
	if err != nil {
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

	if err := s.evaluations.Create(ctx, r); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate statistics cache")
	}
	return r, nil
}

func buildResult(studentID uuid.UUID, req model.CreateEvaluationResultRequest) (*model.EvaluationResult, error) {
	total, correct, incorrect := *req.TotalPreguntas, *req.RespuestasCorrectas, *req.RespuestasIncorrectas
	blank := 0
	if req.RespuestasBlanco != nil {
		blank = *req.RespuestasBlanco
	}

	fields := map[string]string{}
	if correct+incorrect+blank > total {
		fields["respuestas_correctas"] = "correctas + incorrectas + en blanco supera total_preguntas"
	}
	if req.FechaFin != nil && req.FechaFin.Before(*req.FechaInicio) {
		fields["fecha_fin"] = "debe ser posterior a fecha_inicio"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	pct := math.Round(float64(correct)/float64(total)*10000) / 100
	if req.Porcentaje != nil {
		pct = *req.Porcentaje
	}
	passed := pct >= model.DefaultPassingPercentage
	if req.Aprobado != nil {
		passed = *req.Aprobado
	}

	r := &model.EvaluationResult{
		StudentID:             studentID,
		CourseID:              req.CourseID,
		GroupID:               req.GroupID,
		EvaluacionNombre:      strings.TrimSpace(req.EvaluacionNombre),
		TipoEvaluacion:        req.TipoEvaluacion,
		Servicio:              strings.TrimSpace(req.Servicio),
		Institucion:           strings.TrimSpace(req.Institucion),
		TotalPreguntas:        total,
		RespuestasCorrectas:   correct,
		RespuestasIncorrectas: incorrect,
		RespuestasBlanco:      blank,
		Porcentaje:            pct,
		Aprobado:              passed,
		FechaInicio:           req.FechaInicio.UTC(),
		DetallePreguntas:      req.DetallePreguntas,
	}
	if req.FechaFin != nil {
		end := req.FechaFin.UTC()
		r.FechaFin = &end
	}
	return r, nil
}

// authorizeQuery checks the caller may read statistics for q and pins the
// student dimension to the caller for students.
func (s *EvaluationService) authorizeQuery(actor model.Identity, q statistics.Query) (statistics.Query, error) {
	q.DimensionID = strings.TrimSpace(q.DimensionID)
	if q.Dimension.RequiresUUID() && q.DimensionID != "" {
		id, err := uuid.Parse(q.DimensionID)
		if err != nil {
			return q, invalid("dimension_id", "debe ser un UUID válido")
		}
		q.DimensionID = id.String()
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return q, invalid("fecha_fin", "debe ser posterior a fecha_inicio")
	}

	if actor.Can(model.PermissionStatisticsReadAll) {
		return q, nil
	}
	if q.Dimension != statistics.DimensionStudent {
		return q, ErrForbidden
	}
	if q.DimensionID != "" && q.DimensionID != actor.UserID.String() {
		return q, ErrStudentScope
	}
	q.DimensionID = actor.UserID.String()
	return q, nil
}

// prefilter narrows the store query to the records q can select.
func prefilter(q statistics.Query) model.EvaluationFilter {
	f := model.EvaluationFilter{From: q.From, To: q.To}
	if q.DimensionID == "" {
		return f
	}
	switch q.Dimension {
	case statistics.DimensionStudent, statistics.DimensionCourse, statistics.DimensionGroup:
		id, err := uuid.Parse(q.DimensionID)
		if err != nil {
			return f
		}
		switch q.Dimension {
		case statistics.DimensionStudent:
			f.StudentID = &id
		case statistics.DimensionCourse:
			f.CourseID = &id
		default:
			f.GroupID = &id
		}
	case statistics.DimensionInstitution:
		f.Institucion = q.DimensionID
	case statistics.DimensionService:
		f.Servicio = q.DimensionID
	}
	return f
}

func statisticsKey(q statistics.Query) string {
	bound := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	}
	return config.CacheKey.StatisticsKey(string(q.Dimension), strings.ToLower(q.DimensionID), bound(q.From), bound(q.To))
}

// Statistics returns the summary for q, served from cache when possible.
func (s *EvaluationService) Statistics(ctx context.Context, actor model.Identity, q statistics.Query) (statistics.Summary, error) {
	q, err := s.authorizeQuery(actor, q)
	if err != nil {
		return statistics.Summary{}, err
	}

	key := statisticsKey(q)
	var cached statistics.Summary
	if found, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Statistics cache read failed")
	} else if found {
		return cached, nil
	}

	records, err := s.evaluations.ListAll(ctx, prefilter(q))
	if err != nil {
		return statistics.Summary{}, err
	}
	summary := statistics.Aggregate(records, q)

	if err := s.cache.Set(ctx, key, summary); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Statistics cache write failed")
	}
	return summary, nil
}

// Export renders the results selected by q with their summary as an xlsx
// workbook and returns it with a suggested filename.
func (s *EvaluationService) Export(ctx context.Context, actor model.Identity, q statistics.Query) (*bytes.Buffer, string, error) {
	if !actor.Can(model.PermissionReportsExport) {
		return nil, "", ErrForbidden
	}
	q, err := s.authorizeQuery(actor, q)
	if err != nil {
		return nil, "", err
	}

	records, err := s.evaluations.ListAll(ctx, prefilter(q))
	if err != nil {
		return nil, "", err
	}
	selected := statistics.Filter(records, q)
	summary := statistics.Aggregate(selected, q)

	names := make(map[uuid.UUID]string)
	for _, r := range selected {
		if _, ok := names[r.StudentID]; ok {
			continue
		}
		p, err := s.profiles.GetByID(ctx, r.StudentID)
		switch {
		case err == nil:
			names[r.StudentID] = p.FullName
		case errors.Is(err, ErrNotFound):
			names[r.StudentID] = ""
		default:
			return nil, "", err
		}
	}

	buf, err := export.Evaluations(selected, names, summary)
	if err != nil {
		return nil, "", err
	}
	s.log.Info().
		Str("dimension", string(q.Dimension)).
		Str("dimension_id", q.DimensionID).
		Int("rows", len(selected)).
		Msg("Evaluation report exported")
	return buf, export.Filename(summary, s.now()), nil
}
