package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/export"
	"github.com/epsilon-academy/academy-backend/internal/middleware"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/epsilon-academy/academy-backend/internal/service"
	"github.com/epsilon-academy/academy-backend/internal/statistics"
	"github.com/epsilon-academy/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// EvaluationHandler handles evaluation results, statistics and exports.
type EvaluationHandler struct {
	evaluationService *service.EvaluationService
}

// NewEvaluationHandler creates a new EvaluationHandler.
func NewEvaluationHandler(evaluationService *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluationService: evaluationService}
}

type listResultsQuery struct {
	StudentID   string `form:"student_id" binding:"omitempty,uuid"`
	CourseID    string `form:"course_id" binding:"omitempty,uuid"`
	GroupID     string `form:"group_id" binding:"omitempty,uuid"`
	Institucion string `form:"institucion" binding:"omitempty,max=120"`
	Servicio    string `form:"servicio" binding:"omitempty,max=120"`
	FechaInicio string `form:"fecha_inicio"`
	FechaFin    string `form:"fecha_fin"`
	Limit       int    `form:"limit" binding:"omitempty,min=0"`
	Offset      int    `form:"offset" binding:"omitempty,min=0"`
}

type statisticsQuery struct {
	Dimension   string `form:"dimension"`
	DimensionID string `form:"dimension_id" binding:"omitempty,max=120"`
	FechaInicio string `form:"fecha_inicio"`
	FechaFin    string `form:"fecha_fin"`
}

// ListResults godoc
// GET /api/evaluations/results
// Students only see their own results.
func (h *EvaluationHandler) ListResults(c *gin.Context) {
	var q listResultsQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery, fields)
		return
	}

	from, to, fields := parseRange(q.FechaInicio, q.FechaFin)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery, fields)
		return
	}

	f := model.EvaluationFilter{
		StudentID:   optionalUUID(q.StudentID),
		CourseID:    optionalUUID(q.CourseID),
		GroupID:     optionalUUID(q.GroupID),
		Institucion: q.Institucion,
		Servicio:    q.Servicio,
		From:        from,
		To:          to,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}

	results, page, err := h.evaluationService.List(c.Request.Context(), middleware.MustIdentity(c), f)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, page)
}

// GetResult godoc
// GET /api/evaluations/results/:id
func (h *EvaluationHandler) GetResult(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.evaluationService.Get(c.Request.Context(), middleware.MustIdentity(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// CreateResult godoc
// POST /api/evaluations/results
// Records a scored attempt. Missing required fields are named in the 400.
func (h *EvaluationHandler) CreateResult(c *gin.Context) {
	var req model.CreateEvaluationResultRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.evaluationService.Create(c.Request.Context(), middleware.MustIdentity(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"result": result})
}

// Statistics godoc
// GET /api/evaluations/statistics
// Summarizes results for a dimension. Only staff may query beyond their own
// student dimension.
func (h *EvaluationHandler) Statistics(c *gin.Context) {
	q, ok := h.bindStatisticsQuery(c)
	if !ok {
		return
	}

	summary, err := h.evaluationService.Statistics(c.Request.Context(), middleware.MustIdentity(c), q)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

// Export godoc
// GET /api/evaluations/export
// Streams an xlsx workbook with the selected results and their summary.
func (h *EvaluationHandler) Export(c *gin.Context) {
	q, ok := h.bindStatisticsQuery(c)
	if !ok {
		return
	}

	buf, filename, err := h.evaluationService.Export(c.Request.Context(), middleware.MustIdentity(c), q)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *EvaluationHandler) bindStatisticsQuery(c *gin.Context) (statistics.Query, bool) {
	var raw statisticsQuery
	if fields := validator.BindQuery(c, &raw); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery, fields)
		return statistics.Query{}, false
	}

	dim, err := statistics.ParseDimension(raw.Dimension)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery,
			map[string]string{"dimension": "must be one of student group institution service course global"})
		return statistics.Query{}, false
	}

	from, to, fields := parseRange(raw.FechaInicio, raw.FechaFin)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery, fields)
		return statistics.Query{}, false
	}

	return statistics.Query{Dimension: dim, DimensionID: raw.DimensionID, From: from, To: to}, true
}

// parseRange reads an inclusive date range. Both RFC 3339 timestamps and
// plain dates are accepted; a plain end date covers the whole day.
func parseRange(fromRaw, toRaw string) (*time.Time, *time.Time, map[string]string) {
	fields := make(map[string]string)
	from, err := parseBound(fromRaw, false)
	if err != nil {
		fields["fecha_inicio"] = err.Error()
	}
	to, err := parseBound(toRaw, true)
	if err != nil {
		fields["fecha_fin"] = err.Error()
	}
	if len(fields) > 0 {
		return nil, nil, fields
	}
	return from, to, nil
}

func parseBound(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, errors.New("must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
