package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/cache"
	"github.com/epsilon-academy/academy-backend/internal/config"
	"github.com/epsilon-academy/academy-backend/internal/export"
	"github.com/epsilon-academy/academy-backend/internal/handler"
	"github.com/epsilon-academy/academy-backend/internal/middleware"
	"github.com/epsilon-academy/academy-backend/internal/repository/memory"
	"github.com/epsilon-academy/academy-backend/internal/service"
	"github.com/epsilon-academy/academy-backend/internal/validator"
	ws "github.com/epsilon-academy/academy-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const testServiceKey = "service-secret"

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	validator.Setup()

	db := memory.NewDB()
	if err := memory.Seed(db, bcrypt.MinCost); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg := &config.Config{
		GinMode:        gin.TestMode,
		JWTSecret:      "test-secret",
		JWTExpiry:      time.Hour,
		BcryptCost:     bcrypt.MinCost,
		ServiceRoleKey: testServiceKey,
		SessionCookie:  "academy_session",
	}
	log := zerolog.Nop()

	stores := service.Stores{
		Profiles:    memory.NewProfileRepository(db),
		Courses:     memory.NewCourseRepository(db),
		Enrollments: memory.NewEnrollmentRepository(db),
		Groups:      memory.NewGroupRepository(db),
		Messages:    memory.NewMessageRepository(db),
		LiveClasses: memory.NewLiveClassRepository(db),
		Evaluations: memory.NewEvaluationRepository(db),
		Dashboard:   memory.NewDashboardRepository(db),
	}
	svcs := service.NewServices(cfg, stores, cache.NewMemoryDenylist(), cache.NewStatisticsCache(nil, 0), log)
	hub := ws.NewHub(svcs.LiveClass, log)
	handlers := NewHandlers(cfg, svcs, hub, handler.NewSystemHandler(nil, nil, "memory", log), log)

	return SetupRouter(svcs.Auth, handlers, cfg, Options{Logger: log, Dev: memory.DevIdentity})
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response: %v (%s)", err, w.Body.String())
		}
	}
	return w, env
}

func as(role string) map[string]string {
	return map[string]string{middleware.HeaderDevRole: role}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/courses", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if env.Error == nil || env.Error.Code != "TOKEN_REQUIRED" {
		t.Fatalf("expected TOKEN_REQUIRED, got %+v", env.Error)
	}

	w, env = do(t, r, http.MethodGet, "/api/courses", nil, map[string]string{"Authorization": "Bearer garbage"})
	if w.Code != http.StatusUnauthorized || env.Error.Code != "TOKEN_INVALID" {
		t.Fatalf("expected 401 TOKEN_INVALID, got %d %+v", w.Code, env.Error)
	}
}

func TestLoginSessionLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ana@epsilon.academy",
		"password": memory.FixturePassword,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "academy_session=") {
		t.Fatalf("expected session cookie, got %q", w.Header().Get("Set-Cookie"))
	}

	var session struct {
		Token string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &session); err != nil || session.Token == "" {
		t.Fatalf("missing access token: %v", err)
	}
	bearer := map[string]string{"Authorization": "Bearer " + session.Token}

	w, env = do(t, r, http.MethodGet, "/api/auth/user", nil, bearer)
	if w.Code != http.StatusOK {
		t.Fatalf("user: expected 200, got %d", w.Code)
	}
	var me struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &me); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if me.User.Email != "ana@epsilon.academy" || me.User.Role != "student" {
		t.Fatalf("unexpected user %+v", me.User)
	}

	if w, _ := do(t, r, http.MethodPost, "/api/auth/logout", nil, bearer); w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}

	w, env = do(t, r, http.MethodGet, "/api/auth/user", nil, bearer)
	if w.Code != http.StatusUnauthorized || env.Error.Code != "TOKEN_INVALID" {
		t.Fatalf("revoked token: expected 401 TOKEN_INVALID, got %d %+v", w.Code, env.Error)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ana@epsilon.academy",
		"password": "wrong-password",
	}, nil)
	if w.Code != http.StatusUnauthorized || env.Error.Code != "INVALID_CREDENTIALS" {
		t.Fatalf("expected 401 INVALID_CREDENTIALS, got %d %+v", w.Code, env.Error)
	}
}

func TestSignupPrivilegedRoles(t *testing.T) {
	r := newTestRouter(t)
	body := map[string]string{
		"email":     "nuevo.docente@epsilon.academy",
		"password":  "secret123",
		"full_name": "Nuevo Docente",
		"role":      "teacher",
	}

	w, env := do(t, r, http.MethodPost, "/api/auth/signup", body, nil)
	if w.Code != http.StatusForbidden || env.Error.Code != "SERVICE_ROLE_REQUIRED" {
		t.Fatalf("expected 403 SERVICE_ROLE_REQUIRED, got %d %+v", w.Code, env.Error)
	}

	w, _ = do(t, r, http.MethodPost, "/api/auth/signup", body, map[string]string{middleware.HeaderServiceRoleKey: testServiceKey})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w, env = do(t, r, http.MethodPost, "/api/auth/signup", body, map[string]string{middleware.HeaderServiceRoleKey: testServiceKey})
	if w.Code != http.StatusConflict || env.Error.Code != "CONFLICT" {
		t.Fatalf("duplicate email: expected 409 CONFLICT, got %d %+v", w.Code, env.Error)
	}
}

func TestUpdatePasswordRequiresServiceRole(t *testing.T) {
	r := newTestRouter(t)
	body := map[string]string{"email": "ana@epsilon.academy", "new_password": "otra-clave"}

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{middleware.HeaderServiceRoleKey: "nope"}, http.StatusForbidden},
		{"valid key", map[string]string{middleware.HeaderServiceRoleKey: testServiceKey}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w, _ := do(t, r, http.MethodPost, "/api/update-password", body, tt.headers); w.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}

	w, _ := do(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ana@epsilon.academy",
		"password": "otra-clave",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login with new password: expected 200, got %d", w.Code)
	}
}

func TestCreateResultNamesMissingFields(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/evaluations/results", map[string]interface{}{
		"student_id":             memory.FixtureStudentID,
		"evaluacion_nombre":      "Simulacro 3",
		"tipo_evaluacion":        "simulacro",
		"respuestas_correctas":   10,
		"respuestas_incorrectas": 5,
		"fecha_inicio":           "2026-03-01T10:00:00Z",
	}, as("teacher"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %+v", env.Error)
	}
	if _, ok := env.Error.Fields["total_preguntas"]; !ok {
		t.Fatalf("expected total_preguntas in fields, got %v", env.Error.Fields)
	}
}

func TestCreateResultAsStudent(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/evaluations/results", map[string]interface{}{
		"evaluacion_nombre":      "Quiz 1",
		"tipo_evaluacion":        "quiz",
		"total_preguntas":        10,
		"respuestas_correctas":   7,
		"respuestas_incorrectas": 3,
		"fecha_inicio":           "2026-03-01T10:00:00Z",
	}, as("student"))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var out struct {
		Result struct {
			StudentID  string  `json:"student_id"`
			Porcentaje float64 `json:"porcentaje"`
			Aprobado   bool    `json:"aprobado"`
		} `json:"result"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Result.StudentID != memory.FixtureStudentID.String() || out.Result.Porcentaje != 70 || !out.Result.Aprobado {
		t.Fatalf("unexpected result %+v", out.Result)
	}
}

func TestStatisticsScopes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name     string
		role     string
		query    string
		wantCode int
	}{
		{"student global", "student", "?dimension=global", http.StatusForbidden},
		{"student other student", "student", "?dimension=student&dimension_id=" + memory.FixtureStudent2ID.String(), http.StatusForbidden},
		{"student own", "student", "?dimension=student", http.StatusOK},
		{"teacher global", "teacher", "?dimension=global", http.StatusOK},
		{"unknown dimension", "admin", "?dimension=planet", http.StatusBadRequest},
		{"bad date", "admin", "?dimension=global&fecha_inicio=ayer", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := do(t, r, http.MethodGet, "/api/evaluations/statistics"+tt.query, nil, as(tt.role))
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestStatisticsStudentSummary(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/evaluations/statistics?dimension=student", nil, as("student"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var s struct {
		Dimension      string  `json:"dimension"`
		DimensionID    string  `json:"dimension_id"`
		Count          int     `json:"count"`
		MeanPercentage float64 `json:"mean_percentage"`
	}
	if err := json.Unmarshal(env.Data, &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.DimensionID != memory.FixtureStudentID.String() || s.Count != 2 || s.MeanPercentage != 70 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestExportWorkbook(t *testing.T) {
	r := newTestRouter(t)

	w, _ := do(t, r, http.MethodGet, "/api/evaluations/export?dimension=global", nil, as("teacher"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != export.ContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), ".xlsx") {
		t.Fatalf("unexpected disposition %q", w.Header().Get("Content-Disposition"))
	}
	if w.Body.Len() == 0 {
		t.Fatal("empty workbook")
	}

	w, _ = do(t, r, http.MethodGet, "/api/evaluations/export", nil, as("student"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("student export: expected 403, got %d", w.Code)
	}
}

func TestEnrollmentConflicts(t *testing.T) {
	r := newTestRouter(t)

	path := "/api/courses/" + memory.FixtureCourseID.String() + "/enrollments"
	w, env := do(t, r, http.MethodPost, path, nil, as("student"))
	if w.Code != http.StatusConflict || env.Error.Code != "ALREADY_ENROLLED" {
		t.Fatalf("expected 409 ALREADY_ENROLLED, got %d %+v", w.Code, env.Error)
	}

	draft := "/api/courses/" + memory.FixtureDraftCourseID.String() + "/enrollments"
	w, env = do(t, r, http.MethodPost, draft, nil, as("student"))
	if w.Code != http.StatusConflict || env.Error.Code != "COURSE_INACTIVE" {
		t.Fatalf("expected 409 COURSE_INACTIVE, got %d %+v", w.Code, env.Error)
	}
}

func TestCourseRoutes(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/courses", map[string]interface{}{
		"title":    "Química general",
		"capacity": 25,
	}, as("student"))
	if w.Code != http.StatusForbidden || env.Error.Code != "PERMISSION_DENIED" {
		t.Fatalf("student create: expected 403 PERMISSION_DENIED, got %d %+v", w.Code, env.Error)
	}

	w, _ = do(t, r, http.MethodPost, "/api/courses", map[string]interface{}{
		"title":    "Química general",
		"capacity": 25,
	}, as("teacher"))
	if w.Code != http.StatusCreated {
		t.Fatalf("teacher create: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w, env = do(t, r, http.MethodGet, "/api/courses?limit=1", nil, as("admin"))
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var list struct {
		Courses []json.RawMessage `json:"courses"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil || len(list.Courses) != 1 {
		t.Fatalf("expected one course on the page, got %d (%v)", len(list.Courses), err)
	}

	w, _ = do(t, r, http.MethodGet, "/api/courses/not-a-uuid", nil, as("admin"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", w.Code)
	}
}

func TestUsersRequireAdmin(t *testing.T) {
	r := newTestRouter(t)

	if w, _ := do(t, r, http.MethodGet, "/api/users", nil, as("teacher")); w.Code != http.StatusForbidden {
		t.Fatalf("teacher: expected 403, got %d", w.Code)
	}
	if w, _ := do(t, r, http.MethodGet, "/api/users?role=student", nil, as("admin")); w.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", w.Code)
	}
}

func TestDashboardPerRole(t *testing.T) {
	r := newTestRouter(t)

	for _, role := range []string{"admin", "teacher", "student"} {
		t.Run(role, func(t *testing.T) {
			w, env := do(t, r, http.MethodGet, "/api/dashboard", nil, as(role))
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			var d struct {
				Role string `json:"role"`
			}
			if err := json.Unmarshal(env.Data, &d); err != nil || d.Role != role {
				t.Fatalf("expected role %s, got %q (%v)", role, d.Role, err)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	w, _ := do(t, r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestLiveClassPresenceRefusesFinishedClass(t *testing.T) {
	r := newTestRouter(t)
	path := "/api/live-classes/" + memory.FixtureLiveClassID.String()

	w, env := do(t, r, http.MethodPut, path, map[string]string{"status": "finished"}, as("teacher"))
	if w.Code != http.StatusOK {
		t.Fatalf("finish live class: %d %+v", w.Code, env.Error)
	}

	w, env = do(t, r, http.MethodGet, "/ws/live-classes/"+memory.FixtureLiveClassID.String(), nil, as("student"))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if env.Error == nil || env.Error.Code != "LIVE_CLASS_CLOSED" {
		t.Fatalf("expected LIVE_CLASS_CLOSED, got %+v", env.Error)
	}
}
