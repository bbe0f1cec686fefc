package repository

import (
	"context"
	"encoding/json"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const evaluationColumns = `id, student_id, course_id, group_id, evaluacion_nombre, tipo_evaluacion,
	servicio, institucion, total_preguntas, respuestas_correctas, respuestas_incorrectas,
	respuestas_blanco, porcentaje, aprobado, fecha_inicio, fecha_fin, detalle_preguntas, created_at`

// EvaluationRepository handles evaluation result data access.
type EvaluationRepository struct {
	pool *pgxpool.Pool
}

// NewEvaluationRepository creates a new EvaluationRepository.
func NewEvaluationRepository(pool *pgxpool.Pool) *EvaluationRepository {
	return &EvaluationRepository{pool: pool}
}

func scanEvaluation(row pgx.Row) (*model.EvaluationResult, error) {
	e := &model.EvaluationResult{}
	var detail []byte
	err := row.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.GroupID, &e.EvaluacionNombre, &e.TipoEvaluacion,
		&e.Servicio, &e.Institucion, &e.TotalPreguntas, &e.RespuestasCorrectas, &e.RespuestasIncorrectas,
		&e.RespuestasBlanco, &e.Porcentaje, &e.Aprobado, &e.FechaInicio, &e.FechaFin, &detail, &e.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if len(detail) > 0 {
		e.DetallePreguntas = json.RawMessage(detail)
	}
	return e, nil
}

func filterConditions(f model.EvaluationFilter) conditions {
	var cond conditions
	if f.StudentID != nil {
		cond.add("student_id = ?", *f.StudentID)
	}
	if f.CourseID != nil {
		cond.add("course_id = ?", *f.CourseID)
	}
	if f.GroupID != nil {
		cond.add("group_id = ?", *f.GroupID)
	}
	if f.Institucion != "" {
		cond.add("lower(trim(institucion)) = lower(trim(?))", f.Institucion)
	}
	if f.Servicio != "" {
		cond.add("lower(trim(servicio)) = lower(trim(?))", f.Servicio)
	}
	if f.From != nil {
		cond.add("fecha_inicio >= ?", *f.From)
	}
	if f.To != nil {
		cond.add("fecha_inicio <= ?", *f.To)
	}
	return cond
}

// Create inserts an evaluation result.
func (r *EvaluationRepository) Create(ctx context.Context, e *model.EvaluationResult) error {
	var detail interface{}
	if len(e.DetallePreguntas) > 0 {
		detail = []byte(e.DetallePreguntas)
	}
	return translate(r.pool.QueryRow(ctx,
		`INSERT INTO evaluation_results (student_id, course_id, group_id, evaluacion_nombre, tipo_evaluacion,
		   servicio, institucion, total_preguntas, respuestas_correctas, respuestas_incorrectas,
		   respuestas_blanco, porcentaje, aprobado, fecha_inicio, fecha_fin, detalle_preguntas)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id, created_at`,
		e.StudentID, e.CourseID, e.GroupID, e.EvaluacionNombre, e.TipoEvaluacion,
		e.Servicio, e.Institucion, e.TotalPreguntas, e.RespuestasCorrectas, e.RespuestasIncorrectas,
		e.RespuestasBlanco, e.Porcentaje, e.Aprobado, e.FechaInicio, e.FechaFin, detail,
	).Scan(&e.ID, &e.CreatedAt))
}

// GetByID retrieves an evaluation result by its ID.
func (r *EvaluationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.EvaluationResult, error) {
	return scanEvaluation(r.pool.QueryRow(ctx,
		`SELECT `+evaluationColumns+` FROM evaluation_results WHERE id = $1`, id))
}

// List retrieves a page of results matching the filter, newest attempt
// first, plus the total match count.
func (r *EvaluationRepository) List(ctx context.Context, f model.EvaluationFilter) ([]model.EvaluationResult, int, error) {
	cond := filterConditions(f)

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM evaluation_results`+cond.where(), cond.args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageSQL, args := cond.page(f.Limit, f.Offset)
	results, err := r.query(ctx,
		`SELECT `+evaluationColumns+` FROM evaluation_results`+cond.where()+
			` ORDER BY fecha_inicio DESC, id`+pageSQL, args...)
	return results, total, err
}

// ListAll retrieves every result matching the filter, ignoring paging.
// Used by statistics and exports.
func (r *EvaluationRepository) ListAll(ctx context.Context, f model.EvaluationFilter) ([]model.EvaluationResult, error) {
	cond := filterConditions(f)
	return r.query(ctx,
		`SELECT `+evaluationColumns+` FROM evaluation_results`+cond.where()+` ORDER BY fecha_inicio`, cond.args...)
}

// Count returns the total number of stored results.
func (r *EvaluationRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM evaluation_results`).Scan(&n)
	return n, err
}

func (r *EvaluationRepository) query(ctx context.Context, sql string, args ...interface{}) ([]model.EvaluationResult, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []model.EvaluationResult{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *e)
	}
	return results, rows.Err()
}
