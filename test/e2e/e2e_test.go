//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

const (
	defaultBaseURL = "http://localhost:8080/api"
	password       = "password123"
)

var (
	baseURL        string
	anonKey        string
	serviceRoleKey string
	runID          string

	teacherToken string
	studentToken string
	studentID    string
	courseID     string
	liveClassID  string
)

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	anonKey = os.Getenv("ANON_KEY")
	serviceRoleKey = os.Getenv("SERVICE_ROLE_KEY")
	if serviceRoleKey == "" {
		fmt.Println("SERVICE_ROLE_KEY is required to create the e2e teacher")
		os.Exit(1)
	}
	runID = fmt.Sprintf("%d", time.Now().UnixNano())

	os.Exit(m.Run())
}

func TestE2EFlow(t *testing.T) {
	// Step 1: Teacher signup through the service role
	t.Run("TeacherSignup", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/auth/signup", map[string]string{
			"email":     "e2e.teacher." + runID + "@example.com",
			"password":  password,
			"full_name": "E2E Teacher",
			"role":      "teacher",
		}, "", map[string]string{"X-Service-Role-Key": serviceRoleKey})
		expect(t, resp, http.StatusCreated)

		var body struct {
			Data struct {
				Token string `json:"access_token"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		teacherToken = body.Data.Token
		if teacherToken == "" {
			t.Fatal("teacher token missing")
		}
	})

	// Step 2: Student self-signup
	t.Run("StudentSignup", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/auth/signup", map[string]string{
			"email":       "e2e.student." + runID + "@example.com",
			"password":    password,
			"full_name":   "E2E Student",
			"institution": "Colegio E2E",
		}, "", nil)
		expect(t, resp, http.StatusCreated)

		var body struct {
			Data struct {
				Token string `json:"access_token"`
				User  struct {
					ID string `json:"id"`
				} `json:"user"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		studentToken = body.Data.Token
		studentID = body.Data.User.ID
		if studentToken == "" || studentID == "" {
			t.Fatal("student session missing")
		}
	})

	// Step 2b: Student cannot self-assign a privileged role
	t.Run("StudentCannotSignupAsTeacher", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/auth/signup", map[string]string{
			"email":     "e2e.fake." + runID + "@example.com",
			"password":  password,
			"full_name": "E2E Fake",
			"role":      "teacher",
		}, "", nil)
		expect(t, resp, http.StatusForbidden)
	})

	// Step 3: Teacher creates an active course
	t.Run("CreateCourse", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/courses", map[string]interface{}{
			"title":    "E2E Course " + runID,
			"status":   "active",
			"capacity": 5,
		}, teacherToken, nil)
		expect(t, resp, http.StatusCreated)

		var body struct {
			Data struct {
				Course struct {
					ID string `json:"id"`
				} `json:"course"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		courseID = body.Data.Course.ID
	})

	// Step 4: Student enrolls, twice
	t.Run("Enroll", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/courses/"+courseID+"/enrollments", nil, studentToken, nil)
		expect(t, resp, http.StatusCreated)
		resp.Body.Close()

		resp = do(t, http.MethodPost, "/courses/"+courseID+"/enrollments", nil, studentToken, nil)
		expect(t, resp, http.StatusConflict)
		resp.Body.Close()
	})

	// Step 5: Student records an evaluation result
	t.Run("CreateResult", func(t *testing.T) {
		start := time.Now().UTC().Add(-time.Hour)
		resp := do(t, http.MethodPost, "/evaluations/results", map[string]interface{}{
			"course_id":              courseID,
			"evaluacion_nombre":      "Simulacro E2E",
			"tipo_evaluacion":        "simulacro",
			"servicio":               "Preuniversitario",
			"institucion":            "Colegio E2E",
			"total_preguntas":        20,
			"respuestas_correctas":   15,
			"respuestas_incorrectas": 3,
			"respuestas_blanco":      2,
			"fecha_inicio":           start,
			"fecha_fin":              start.Add(45 * time.Minute),
		}, studentToken, nil)
		expect(t, resp, http.StatusCreated)

		var body struct {
			Data struct {
				Result struct {
					Porcentaje float64 `json:"porcentaje"`
					Aprobado   bool    `json:"aprobado"`
				} `json:"result"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if body.Data.Result.Porcentaje != 75 || !body.Data.Result.Aprobado {
			t.Fatalf("result = %+v, want 75%% passed", body.Data.Result)
		}
	})

	// Step 6: Statistics per course and per student
	t.Run("Statistics", func(t *testing.T) {
		resp := do(t, http.MethodGet, "/evaluations/statistics?dimension=course&dimension_id="+courseID, nil, teacherToken, nil)
		expect(t, resp, http.StatusOK)

		var body struct {
			Data struct {
				Count          int     `json:"count"`
				MeanPercentage float64 `json:"mean_percentage"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if body.Data.Count != 1 || body.Data.MeanPercentage != 75 {
			t.Fatalf("course summary = %+v", body.Data)
		}

		resp = do(t, http.MethodGet, "/evaluations/statistics", nil, studentToken, nil)
		expect(t, resp, http.StatusForbidden)
		resp.Body.Close()
	})

	// Step 7: Export workbook
	t.Run("Export", func(t *testing.T) {
		resp := do(t, http.MethodGet, "/evaluations/export?dimension=course&dimension_id="+courseID, nil, teacherToken, nil)
		expect(t, resp, http.StatusOK)
		defer resp.Body.Close()

		if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
			t.Fatalf("content type = %q", ct)
		}
	})

	// Step 8: Live class presence over websocket
	t.Run("LiveClassPresence", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/live-classes", map[string]interface{}{
			"course_id":        courseID,
			"title":            "Repaso E2E",
			"scheduled_at":     time.Now().UTC().Add(time.Hour),
			"duration_minutes": 60,
			"max_participants": 10,
		}, teacherToken, nil)
		expect(t, resp, http.StatusCreated)

		var body struct {
			Data struct {
				LiveClass struct {
					ID string `json:"id"`
				} `json:"live_class"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		liveClassID = body.Data.LiveClass.ID

		conn, _, err := websocket.DefaultDialer.Dial(wsURL("/ws/live-classes/"+liveClassID, studentToken), nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var event struct {
			Event string `json:"event"`
			Count int    `json:"count"`
		}
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("read: %v", err)
		}
		if event.Event != "participants" || event.Count != 1 {
			t.Fatalf("event = %+v, want participants count 1", event)
		}
	})

	// Step 9: Logout revokes the token
	t.Run("Logout", func(t *testing.T) {
		resp := do(t, http.MethodPost, "/auth/logout", nil, studentToken, nil)
		expect(t, resp, http.StatusOK)
		resp.Body.Close()

		resp = do(t, http.MethodGet, "/auth/user", nil, studentToken, nil)
		expect(t, resp, http.StatusUnauthorized)
		resp.Body.Close()
	})
}

// Helpers

func do(t *testing.T, method, path string, body interface{}, token string, headers map[string]string) *http.Response {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+path, bodyReader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if anonKey != "" {
		req.Header.Set("apikey", anonKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func expect(t *testing.T, resp *http.Response, status int) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("status %d, want %d: %s", resp.StatusCode, status, readBody(resp))
	}
}

// wsURL maps the API base URL onto the websocket route, which lives
// outside the /api prefix.
func wsURL(path, token string) string {
	u, _ := url.Parse(baseURL)
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = strings.TrimSuffix(strings.TrimSuffix(u.Path, "/"), "/api") + path
	u.RawQuery = url.Values{"access_token": {token}}.Encode()
	return u.String()
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("json decode: %v", err)
	}
}
