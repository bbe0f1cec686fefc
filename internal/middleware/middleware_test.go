package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterRefillsPerInterval(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatalf("first two requests should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatalf("third request within the interval should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatalf("other visitors keep their own bucket")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Fatalf("bucket should refill after one interval")
	}

	now = now.Add(4 * time.Minute)
	rl.cleanup()
	if len(rl.visitors) != 0 {
		t.Fatalf("idle visitors should be evicted, have %d", len(rl.visitors))
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want [200 429]", codes)
	}
}

func TestBrotli(t *testing.T) {
	large := strings.Repeat("epsilon academy ", 200)

	r := gin.New()
	r.Use(BrotliWithConfig(BrotliConfig{MinLength: 256, Skipper: SkipPathSuffix("/export")}))
	r.GET("/large", func(c *gin.Context) { c.String(http.StatusOK, large) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/export", func(c *gin.Context) { c.String(http.StatusOK, large) })

	tests := []struct {
		name       string
		path       string
		acceptBr   bool
		wantBr     bool
		wantString string
	}{
		{"compresses large body", "/large", true, true, large},
		{"small body stays plain", "/small", true, false, "ok"},
		{"client without br", "/large", false, false, large},
		{"skipped path", "/export", true, false, large},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.acceptBr {
				req.Header.Set("Accept-Encoding", "gzip, br")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			gotBr := w.Header().Get("Content-Encoding") == "br"
			if gotBr != tt.wantBr {
				t.Fatalf("Content-Encoding br = %v, want %v", gotBr, tt.wantBr)
			}

			var body io.Reader = w.Body
			if gotBr {
				body = brotli.NewReader(w.Body)
			}
			got, err := io.ReadAll(body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			if string(got) != tt.wantString {
				t.Fatalf("body length = %d, want %d", len(got), len(tt.wantString))
			}
		})
	}
}

func TestRequireServiceRole(t *testing.T) {
	r := gin.New()
	r.POST("/admin", RequireServiceRole("secret"), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusForbidden},
		{"valid", "secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin", nil)
			if tt.header != "" {
				req.Header.Set(HeaderServiceRoleKey, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequireAnonKey(t *testing.T) {
	open := gin.New()
	open.GET("/", RequireAnonKey(""), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	open.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("unconfigured anon key should pass, got %d", w.Code)
	}

	guarded := gin.New()
	guarded.GET("/", RequireAnonKey("anon"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w = httptest.NewRecorder()
	guarded.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing anon key: status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderAnonKey, "anon")
	w = httptest.NewRecorder()
	guarded.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid anon key: status = %d, want 200", w.Code)
	}
}
