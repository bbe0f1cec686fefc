package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EvaluationType enumerates the kinds of evaluated attempts.
type EvaluationType string

const (
	EvaluationTypeQuiz      EvaluationType = "quiz"
	EvaluationTypeExam      EvaluationType = "examen"
	EvaluationTypeSimulacro EvaluationType = "simulacro"
)

// DefaultPassingPercentage is applied when a submission omits the pass flag.
const DefaultPassingPercentage = 60.0

// EvaluationResult is one student's scored attempt at an evaluation.
type EvaluationResult struct {
	ID                    uuid.UUID       `json:"id"`
	StudentID             uuid.UUID       `json:"student_id"`
	CourseID              *uuid.UUID      `json:"course_id,omitempty"`
	GroupID               *uuid.UUID      `json:"group_id,omitempty"`
	EvaluacionNombre      string          `json:"evaluacion_nombre"`
	TipoEvaluacion        EvaluationType  `json:"tipo_evaluacion"`
	Servicio              string          `json:"servicio"`
	Institucion           string          `json:"institucion"`
	TotalPreguntas        int             `json:"total_preguntas"`
	RespuestasCorrectas   int             `json:"respuestas_correctas"`
	RespuestasIncorrectas int             `json:"respuestas_incorrectas"`
	RespuestasBlanco      int             `json:"respuestas_blanco"`
	Porcentaje            float64         `json:"porcentaje"`
	Aprobado              bool            `json:"aprobado"`
	FechaInicio           time.Time       `json:"fecha_inicio"`
	FechaFin              *time.Time      `json:"fecha_fin,omitempty"`
	DetallePreguntas      json.RawMessage `json:"detalle_preguntas,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// DurationMinutes returns the attempt length in minutes and whether it is known.
func (r *EvaluationResult) DurationMinutes() (float64, bool) {
	if r.FechaFin == nil || r.FechaInicio.IsZero() || r.FechaFin.Before(r.FechaInicio) {
		return 0, false
	}
	return r.FechaFin.Sub(r.FechaInicio).Minutes(), true
}

// CreateEvaluationResultRequest is the payload for recording a result.
// StudentID may be omitted by students submitting their own attempt.
type CreateEvaluationResultRequest struct {
	StudentID             *uuid.UUID      `json:"student_id" binding:"omitempty"`
	CourseID              *uuid.UUID      `json:"course_id" binding:"omitempty"`
	GroupID               *uuid.UUID      `json:"group_id" binding:"omitempty"`
	EvaluacionNombre      string          `json:"evaluacion_nombre" binding:"required,min=1,max=255"`
	TipoEvaluacion        EvaluationType  `json:"tipo_evaluacion" binding:"required,oneof=quiz examen simulacro"`
	Servicio              string          `json:"servicio" binding:"omitempty,max=120"`
	Institucion           string          `json:"institucion" binding:"omitempty,max=120"`
	TotalPreguntas        *int            `json:"total_preguntas" binding:"required,min=1,max=10000"`
	RespuestasCorrectas   *int            `json:"respuestas_correctas" binding:"required,min=0"`
	RespuestasIncorrectas *int            `json:"respuestas_incorrectas" binding:"required,min=0"`
	RespuestasBlanco      *int            `json:"respuestas_blanco" binding:"omitempty,min=0"`
	Porcentaje            *float64        `json:"porcentaje" binding:"omitempty,min=0,max=100"`
	Aprobado              *bool           `json:"aprobado" binding:"omitempty"`
	FechaInicio           *time.Time      `json:"fecha_inicio" binding:"required"`
	FechaFin              *time.Time      `json:"fecha_fin" binding:"omitempty"`
	DetallePreguntas      json.RawMessage `json:"detalle_preguntas" binding:"omitempty"`
}

// EvaluationFilter narrows evaluation result listings. Nil/empty fields
// do not filter. From and To bound FechaInicio inclusively.
type EvaluationFilter struct {
	StudentID   *uuid.UUID
	CourseID    *uuid.UUID
	GroupID     *uuid.UUID
	Institucion string
	Servicio    string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}
