// Package export renders evaluation reports as Excel workbooks.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/statistics"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	SheetResults = "Resultados"
	SheetSummary = "Resumen"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var resultHeaders = []string{
	"Estudiante", "ID estudiante", "Evaluación", "Tipo", "Servicio", "Institución",
	"Preguntas", "Correctas", "Incorrectas", "En blanco", "Porcentaje", "Aprobado",
	"Inicio", "Fin", "Duración (min)",
}

// Filename returns the suggested download name for a report generated at t.
func Filename(s statistics.Summary, t time.Time) string {
	name := "evaluaciones_" + string(s.Dimension)
	if s.DimensionID != "" {
		name += "_" + s.DimensionID
	}
	return fmt.Sprintf("%s_%s.xlsx", name, t.Format("20060102"))
}

// Evaluations writes one row per result on the results sheet and the
// summary figures on the summary sheet. names maps student ids to display
// names; missing entries leave the name cell empty.
func Evaluations(results []model.EvaluationResult, names map[uuid.UUID]string, summary statistics.Summary) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetResults)
	if err != nil {
		return nil, fmt.Errorf("create results sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	if err := writeResults(f, results, names, headerStyle); err != nil {
		return nil, err
	}
	if err := writeSummary(f, summary, headerStyle); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func writeResults(f *excelize.File, results []model.EvaluationResult, names map[uuid.UUID]string, headerStyle int) error {
	if err := f.SetSheetRow(SheetResults, "A1", &resultHeaders); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(resultHeaders))
	if err := f.SetCellStyle(SheetResults, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetResults, "A", "A", 28)
	_ = f.SetColWidth(SheetResults, "B", "B", 38)
	_ = f.SetColWidth(SheetResults, "C", "C", 30)
	_ = f.SetColWidth(SheetResults, "M", "N", 20)

	for i := range results {
		r := &results[i]
		end, duration := "", interface{}("")
		if r.FechaFin != nil {
			end = r.FechaFin.UTC().Format(time.RFC3339)
		}
		if d, ok := r.DurationMinutes(); ok {
			duration = d
		}
		passed := "No"
		if r.Aprobado {
			passed = "Sí"
		}
		row := []interface{}{
			names[r.StudentID], r.StudentID.String(), r.EvaluacionNombre, string(r.TipoEvaluacion),
			r.Servicio, r.Institucion, r.TotalPreguntas, r.RespuestasCorrectas,
			r.RespuestasIncorrectas, r.RespuestasBlanco, r.Porcentaje, passed,
			r.FechaInicio.UTC().Format(time.RFC3339), end, duration,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetResults, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, s statistics.Summary, headerStyle int) error {
	rows := [][]interface{}{
		{"Indicador", "Valor"},
		{"Dimensión", string(s.Dimension)},
		{"Identificador", s.DimensionID},
		{"Intentos", s.Count},
		{"Preguntas", s.TotalQuestions},
		{"Correctas", s.TotalCorrect},
		{"Incorrectas", s.TotalIncorrect},
		{"En blanco", s.TotalBlank},
		{"Porcentaje promedio", s.MeanPercentage},
		{"Porcentaje ponderado", s.WeightedPercentage},
		{"Duración promedio (min)", s.MeanDurationMinutes},
		{"Tasa de aprobación (%)", s.PassRatePercentage},
		{"Porcentaje máximo", s.MaxPercentage},
		{"Porcentaje mínimo", s.MinPercentage},
		{"Aprobados", s.PassedCount},
		{"Desaprobados", s.FailedCount},
	}
	if s.UniqueStudents != nil {
		rows = append(rows, []interface{}{"Estudiantes únicos", *s.UniqueStudents})
	}

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &rows[i]); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "B1", headerStyle); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 28)

	next := len(rows) + 2
	if len(s.Breakdown) > 0 {
		header := []interface{}{"Desglose por " + s.BreakdownBy, "Intentos", "Estudiantes", "Promedio", "Aprobación (%)"}
		cell, _ := excelize.CoordinatesToCellName(1, next)
		if err := f.SetSheetRow(SheetSummary, cell, &header); err != nil {
			return err
		}
		for i, b := range s.Breakdown {
			row := []interface{}{b.Key, b.Count, b.UniqueStudents, b.MeanPercentage, b.PassRatePercentage}
			cell, _ := excelize.CoordinatesToCellName(1, next+1+i)
			if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
				return err
			}
		}
		next += len(s.Breakdown) + 2
	}

	if len(s.TopStudents) > 0 {
		header := []interface{}{"Mejores estudiantes", "Intentos", "Promedio", "Mejor"}
		cell, _ := excelize.CoordinatesToCellName(1, next)
		if err := f.SetSheetRow(SheetSummary, cell, &header); err != nil {
			return err
		}
		for i, r := range s.TopStudents {
			row := []interface{}{r.StudentID.String(), r.Attempts, r.MeanPercentage, r.BestPercentage}
			cell, _ := excelize.CoordinatesToCellName(1, next+1+i)
			if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
				return err
			}
		}
	}
	return nil
}
