package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/repository/memory"
	"github.com/epsilon-academy/academy-backend/internal/statistics"
	"github.com/xuri/excelize/v2"
)

func resultRequest(correct, incorrect, total int) model.CreateEvaluationResultRequest {
	start := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	return model.CreateEvaluationResultRequest{
		EvaluacionNombre:      "Práctica",
		TipoEvaluacion:        model.EvaluationTypeQuiz,
		Servicio:              "Ciencias",
		Institucion:           "UNI",
		TotalPreguntas:        intPtr(total),
		RespuestasCorrectas:   intPtr(correct),
		RespuestasIncorrectas: intPtr(incorrect),
		FechaInicio:           &start,
	}
}

func TestCreateResultDerivesPercentageAndPass(t *testing.T) {
	f := newFixture(t)

	r, err := f.evaluations.Create(context.Background(), student, resultRequest(2, 1, 3))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.StudentID != student.UserID {
		t.Errorf("student_id = %s", r.StudentID)
	}
	if r.Porcentaje != 66.67 || !r.Aprobado {
		t.Errorf("porcentaje = %v aprobado = %v", r.Porcentaje, r.Aprobado)
	}

	req := resultRequest(5, 5, 10)
	if r, _ = f.evaluations.Create(context.Background(), student, req); r.Aprobado {
		t.Errorf("50%% should fail the default threshold")
	}
}

func TestCreateResultInvariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := resultRequest(8, 3, 10)
	_, err := f.evaluations.Create(ctx, student, req)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["respuestas_correctas"] == "" {
		t.Fatalf("answers over total: %v", err)
	}

	req = resultRequest(5, 3, 10)
	before := req.FechaInicio.Add(-time.Minute)
	req.FechaFin = &before
	if _, err = f.evaluations.Create(ctx, student, req); !errors.As(err, &verr) || verr.Fields["fecha_fin"] == "" {
		t.Fatalf("end before start: %v", err)
	}

	req = resultRequest(5, 3, 10)
	someoneElse := other.UserID
	req.StudentID = &someoneElse
	if _, err = f.evaluations.Create(ctx, student, req); !errors.Is(err, ErrStudentScope) {
		t.Fatalf("submitting for another student: %v", err)
	}

	req = resultRequest(5, 3, 10)
	if _, err = f.evaluations.Create(ctx, teacher, req); !errors.As(err, &verr) || verr.Fields["student_id"] == "" {
		t.Fatalf("teacher without student_id: %v", err)
	}
}

func TestListResultsConfinesStudents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list, page, err := f.evaluations.List(ctx, student, model.EvaluationFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalItems != 2 {
		t.Fatalf("student sees %d results, want 2", page.TotalItems)
	}
	for _, r := range list {
		if r.StudentID != student.UserID {
			t.Fatalf("leaked result of %s", r.StudentID)
		}
	}

	foreign := other.UserID
	if _, _, err := f.evaluations.List(ctx, student, model.EvaluationFilter{StudentID: &foreign}); !errors.Is(err, ErrStudentScope) {
		t.Fatalf("expected ErrStudentScope, got %v", err)
	}

	_, page, _ = f.evaluations.List(ctx, teacher, model.EvaluationFilter{})
	if page.TotalItems != 3 {
		t.Fatalf("teacher sees %d results, want 3", page.TotalItems)
	}
}

func TestStatisticsAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.evaluations.Statistics(ctx, student, statistics.Query{Dimension: statistics.DimensionGlobal}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("student global: %v", err)
	}
	q := statistics.Query{Dimension: statistics.DimensionStudent, DimensionID: other.UserID.String()}
	if _, err := f.evaluations.Statistics(ctx, student, q); !errors.Is(err, ErrStudentScope) {
		t.Fatalf("student reading another student: %v", err)
	}

	own, err := f.evaluations.Statistics(ctx, student, statistics.Query{Dimension: statistics.DimensionStudent})
	if err != nil {
		t.Fatal(err)
	}
	if own.DimensionID != student.UserID.String() || own.Count != 2 {
		t.Fatalf("own summary = %+v", own)
	}
	if own.UniqueStudents != nil {
		t.Error("student dimension must omit unique_students")
	}

	global, err := f.evaluations.Statistics(ctx, teacher, statistics.Query{Dimension: statistics.DimensionGlobal})
	if err != nil {
		t.Fatal(err)
	}
	if global.Count != 3 || *global.UniqueStudents != 2 || len(global.TopStudents) != 2 {
		t.Fatalf("global summary = %+v", global)
	}

	bad := statistics.Query{Dimension: statistics.DimensionCourse, DimensionID: "no-es-uuid"}
	var verr *ValidationError
	if _, err := f.evaluations.Statistics(ctx, admin, bad); !errors.As(err, &verr) {
		t.Fatalf("malformed course id: %v", err)
	}
}

func TestStatisticsInstitutionIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	s, err := f.evaluations.Statistics(context.Background(), admin,
		statistics.Query{Dimension: statistics.DimensionInstitution, DimensionID: "uni"})
	if err != nil {
		t.Fatal(err)
	}
	if s.Count != 2 || s.BreakdownBy != "service" || len(s.Breakdown) != 1 || s.Breakdown[0].Key != "Ciencias" {
		t.Fatalf("summary = %+v", s)
	}
}

func TestExportRequiresPermission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, _, err := f.evaluations.Export(ctx, student, statistics.Query{Dimension: statistics.DimensionStudent}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("student export: %v", err)
	}

	buf, name, err := f.evaluations.Export(ctx, admin, statistics.Query{Dimension: statistics.DimensionGlobal})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if name == "" {
		t.Error("empty filename")
	}
	wb, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatal(err)
	}
	defer wb.Close()
	rows, _ := wb.GetRows("Resultados")
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}
	names := map[string]bool{}
	for _, r := range rows[1:] {
		names[r[0]] = true
	}
	if !names["Ana Torres"] || !names["Luis Rojas"] {
		t.Fatalf("student names missing: %v", names)
	}
}

func TestDashboardByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.dashboard.GetDashboardData(ctx, admin)
	if err != nil {
		t.Fatal(err)
	}
	if a.Counts == nil || a.Counts.Students != 2 || len(a.UpcomingLiveClasses) != 1 {
		t.Fatalf("admin dashboard = %+v", a)
	}

	tc, err := f.dashboard.GetDashboardData(ctx, teacher)
	if err != nil {
		t.Fatal(err)
	}
	if len(tc.Courses) != 2 || tc.StudentCount == nil || *tc.StudentCount != 1 {
		t.Fatalf("teacher dashboard = %+v", tc)
	}

	st, err := f.dashboard.GetDashboardData(ctx, student)
	if err != nil {
		t.Fatal(err)
	}
	if st.AverageProgress == nil || *st.AverageProgress != 40 || len(st.RecentResults) != 2 {
		t.Fatalf("student dashboard = %+v", st)
	}
	if st.Counts != nil {
		t.Error("student dashboard exposes platform counts")
	}

	ot, _ := f.dashboard.GetDashboardData(ctx, other)
	if len(ot.UpcomingLiveClasses) != 0 {
		t.Errorf("unenrolled student sees %d live classes", len(ot.UpcomingLiveClasses))
	}
}

func TestLiveClassAuthorize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.liveClasses.Authorize(ctx, student, memory.FixtureLiveClassID); err != nil {
		t.Fatalf("enrolled student: %v", err)
	}
	if _, err := f.liveClasses.Authorize(ctx, other, memory.FixtureLiveClassID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("unenrolled student: %v", err)
	}

	_, err := f.liveClasses.Update(ctx, teacher, memory.FixtureLiveClassID, model.UpdateLiveClassRequest{Status: model.LiveClassStatusCancelled})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.liveClasses.Authorize(ctx, student, memory.FixtureLiveClassID); !errors.Is(err, ErrLiveClassClosed) {
		t.Fatalf("cancelled class: %v", err)
	}
}

func TestGroupAndMessageFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.groups.Create(ctx, teacher, model.CreateGroupRequest{Name: "Refuerzo"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.groups.AddMember(ctx, teacher, g.ID, teacher.UserID); err == nil {
		t.Fatal("teacher added as group member")
	}
	g, err = f.groups.AddMember(ctx, teacher, g.ID, other.UserID)
	if err != nil || len(g.MemberIDs) != 1 {
		t.Fatalf("AddMember = %+v, %v", g, err)
	}
	mine, _ := f.groups.List(ctx, other)
	if len(mine) != 2 {
		t.Fatalf("student groups = %d, want 2", len(mine))
	}
	if _, err := f.groups.Create(ctx, student, model.CreateGroupRequest{Name: "Nope"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("student creating group: %v", err)
	}

	m, err := f.messages.Send(ctx, teacher, model.SendMessageRequest{RecipientID: other.UserID, Subject: "Bienvenido", Body: "Hola"})
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := f.messages.UnreadCount(ctx, other); n != 1 {
		t.Fatalf("unread = %d", n)
	}
	if err := f.messages.MarkRead(ctx, other, m.ID); err != nil {
		t.Fatal(err)
	}
	if n, _ := f.messages.UnreadCount(ctx, other); n != 0 {
		t.Fatalf("unread after read = %d", n)
	}
}
