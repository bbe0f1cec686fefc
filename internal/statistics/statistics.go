// Package statistics reduces evaluation results into summary figures for a
// requested dimension (student, group, institution, service, course or
// global). Everything here is a pure function of its inputs.
package statistics

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
)

// Dimension is the grouping axis of a statistics query.
type Dimension string

const (
	DimensionStudent     Dimension = "student"
	DimensionGroup       Dimension = "group"
	DimensionInstitution Dimension = "institution"
	DimensionService     Dimension = "service"
	DimensionCourse      Dimension = "course"
	DimensionGlobal      Dimension = "global"
)

// TopN is the length of the student ranking.
const TopN = 5

// UnspecifiedKey labels breakdown rows whose categorical field is empty.
const UnspecifiedKey = "unspecified"

var ErrUnknownDimension = errors.New("unknown statistics dimension")

// ParseDimension validates a dimension name. An empty string means global.
func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DimensionGlobal, nil
	case DimensionStudent, DimensionGroup, DimensionInstitution,
		DimensionService, DimensionCourse, DimensionGlobal:
		return d, nil
	}
	return "", ErrUnknownDimension
}

// RequiresUUID reports whether ids of the dimension are UUIDs.
func (d Dimension) RequiresUUID() bool {
	return d == DimensionStudent || d == DimensionGroup || d == DimensionCourse
}

// Query selects the records to summarize. From and To bound the attempt
// start time inclusively; nil means unbounded. An empty DimensionID
// selects every record of the dimension.
type Query struct {
	Dimension   Dimension
	DimensionID string
	From        *time.Time
	To          *time.Time
}

// Summary is the reduced view of a set of evaluation results.
type Summary struct {
	Dimension   Dimension `json:"dimension"`
	DimensionID string    `json:"dimension_id,omitempty"`

	Count               int     `json:"count"`
	TotalQuestions      int     `json:"total_questions"`
	TotalCorrect        int     `json:"total_correct"`
	TotalIncorrect      int     `json:"total_incorrect"`
	TotalBlank          int     `json:"total_blank"`
	MeanPercentage      float64 `json:"mean_percentage"`
	WeightedPercentage  float64 `json:"weighted_percentage"`
	MeanDurationMinutes float64 `json:"mean_duration_minutes"`
	PassRatePercentage  float64 `json:"pass_rate_percentage"`
	MaxPercentage       float64 `json:"max_percentage"`
	MinPercentage       float64 `json:"min_percentage"`
	PassedCount         int     `json:"passed_count"`
	FailedCount         int     `json:"failed_count"`

	UniqueStudents *int          `json:"unique_students,omitempty"`
	BreakdownBy    string        `json:"breakdown_by,omitempty"`
	Breakdown      []Bucket      `json:"breakdown,omitempty"`
	TopStudents    []StudentRank `json:"top_students,omitempty"`
}

// Bucket summarizes the records sharing one categorical value.
type Bucket struct {
	Key                string  `json:"key"`
	Count              int     `json:"count"`
	UniqueStudents     int     `json:"unique_students"`
	MeanPercentage     float64 `json:"mean_percentage"`
	PassRatePercentage float64 `json:"pass_rate_percentage"`
}

// StudentRank is one row of the top-N ranking.
type StudentRank struct {
	StudentID      uuid.UUID `json:"student_id"`
	Attempts       int       `json:"attempts"`
	MeanPercentage float64   `json:"mean_percentage"`
	BestPercentage float64   `json:"best_percentage"`
}

// Empty returns the zero summary for q, with the dimension extras present
// but zeroed so the response shape does not depend on the data.
func Empty(q Query) Summary {
	s := Summary{Dimension: q.Dimension, DimensionID: q.DimensionID}
	if q.Dimension != DimensionStudent {
		zero := 0
		s.UniqueStudents = &zero
	}
	return s
}

// Filter returns the records matching q, preserving order.
func Filter(records []model.EvaluationResult, q Query) []model.EvaluationResult {
	out := make([]model.EvaluationResult, 0, len(records))
	for i := range records {
		if matches(&records[i], q) {
			out = append(out, records[i])
		}
	}
	return out
}

// Aggregate filters records by q and reduces them into a Summary.
// An empty selection yields Empty(q).
func Aggregate(records []model.EvaluationResult, q Query) Summary {
	selected := Filter(records, q)
	if len(selected) == 0 {
		return Empty(q)
	}

	s := Empty(q)
	var (
		pctSum   float64
		durSum   float64
		durCount int
		students = make(map[uuid.UUID]struct{})
		maxPct   = math.Inf(-1)
		minPct   = math.Inf(1)
	)

	for i := range selected {
		r := &selected[i]
		s.Count++
		s.TotalQuestions += r.TotalPreguntas
		s.TotalCorrect += r.RespuestasCorrectas
		s.TotalIncorrect += r.RespuestasIncorrectas
		s.TotalBlank += r.RespuestasBlanco
		if r.Aprobado {
			s.PassedCount++
		} else {
			s.FailedCount++
		}

		pctSum += r.Porcentaje
		maxPct = math.Max(maxPct, r.Porcentaje)
		minPct = math.Min(minPct, r.Porcentaje)

		if d, ok := r.DurationMinutes(); ok {
			durSum += d
			durCount++
		}
		students[r.StudentID] = struct{}{}
	}

	s.MeanPercentage = round2(pctSum / float64(s.Count))
	s.PassRatePercentage = percent(s.PassedCount, s.Count)
	s.MaxPercentage = round2(maxPct)
	s.MinPercentage = round2(minPct)
	s.WeightedPercentage = percent(s.TotalCorrect, s.TotalQuestions)
	if durCount > 0 {
		s.MeanDurationMinutes = round2(durSum / float64(durCount))
	}

	if s.UniqueStudents != nil {
		n := len(students)
		s.UniqueStudents = &n
	}

	switch q.Dimension {
	case DimensionInstitution:
		s.BreakdownBy = string(DimensionService)
		s.Breakdown = breakdown(selected, func(r *model.EvaluationResult) string { return r.Servicio })
	case DimensionService:
		s.BreakdownBy = string(DimensionInstitution)
		s.Breakdown = breakdown(selected, func(r *model.EvaluationResult) string { return r.Institucion })
	}

	if q.Dimension == DimensionService || q.Dimension == DimensionGlobal {
		s.TopStudents = topStudents(selected, TopN)
	}

	return s
}

func matches(r *model.EvaluationResult, q Query) bool {
	if q.From != nil && r.FechaInicio.Before(*q.From) {
		return false
	}
	if q.To != nil && r.FechaInicio.After(*q.To) {
		return false
	}
	if q.DimensionID == "" {
		return true
	}

	switch q.Dimension {
	case DimensionStudent:
		return strings.EqualFold(r.StudentID.String(), q.DimensionID)
	case DimensionGroup:
		return r.GroupID != nil && strings.EqualFold(r.GroupID.String(), q.DimensionID)
	case DimensionCourse:
		return r.CourseID != nil && strings.EqualFold(r.CourseID.String(), q.DimensionID)
	case DimensionInstitution:
		return strings.EqualFold(strings.TrimSpace(r.Institucion), strings.TrimSpace(q.DimensionID))
	case DimensionService:
		return strings.EqualFold(strings.TrimSpace(r.Servicio), strings.TrimSpace(q.DimensionID))
	}
	return true
}

func breakdown(records []model.EvaluationResult, key func(*model.EvaluationResult) string) []Bucket {
	type acc struct {
		count    int
		passed   int
		pctSum   float64
		students map[uuid.UUID]struct{}
	}
	groups := make(map[string]*acc)

	for i := range records {
		r := &records[i]
		k := strings.TrimSpace(key(r))
		if k == "" {
			k = UnspecifiedKey
		}
		a, ok := groups[k]
		if !ok {
			a = &acc{students: make(map[uuid.UUID]struct{})}
			groups[k] = a
		}
		a.count++
		a.pctSum += r.Porcentaje
		if r.Aprobado {
			a.passed++
		}
		a.students[r.StudentID] = struct{}{}
	}

	out := make([]Bucket, 0, len(groups))
	for k, a := range groups {
		out = append(out, Bucket{
			Key:                k,
			Count:              a.count,
			UniqueStudents:     len(a.students),
			MeanPercentage:     round2(a.pctSum / float64(a.count)),
			PassRatePercentage: percent(a.passed, a.count),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func topStudents(records []model.EvaluationResult, n int) []StudentRank {
	type acc struct {
		attempts int
		pctSum   float64
		best     float64
	}
	byStudent := make(map[uuid.UUID]*acc)

	for i := range records {
		r := &records[i]
		a, ok := byStudent[r.StudentID]
		if !ok {
			a = &acc{best: r.Porcentaje}
			byStudent[r.StudentID] = a
		}
		a.attempts++
		a.pctSum += r.Porcentaje
		a.best = math.Max(a.best, r.Porcentaje)
	}

	ranks := make([]StudentRank, 0, len(byStudent))
	for id, a := range byStudent {
		ranks = append(ranks, StudentRank{
			StudentID:      id,
			Attempts:       a.attempts,
			MeanPercentage: round2(a.pctSum / float64(a.attempts)),
			BestPercentage: round2(a.best),
		})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].MeanPercentage != ranks[j].MeanPercentage {
			return ranks[i].MeanPercentage > ranks[j].MeanPercentage
		}
		if ranks[i].Attempts != ranks[j].Attempts {
			return ranks[i].Attempts > ranks[j].Attempts
		}
		return ranks[i].StudentID.String() < ranks[j].StudentID.String()
	})

	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}

// percent returns part/whole as a two-decimal percentage, 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
