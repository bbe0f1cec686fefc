package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler reports liveness and dependency health.
type SystemHandler struct {
	db        Pinger
	rdb       *redis.Client
	store     string
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler. db and rdb may be nil when
// the server runs on the in-memory store or without Redis.
func NewSystemHandler(db Pinger, rdb *redis.Client, store string, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		db:        db,
		rdb:       rdb,
		store:     store,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthReport struct {
	Status     string            `json:"status"`
	Store      string            `json:"store"`
	Uptime     string            `json:"uptime"`
	Checks     map[string]string `json:"checks"`
	Goroutines int               `json:"goroutines"`
	HeapAlloc  uint64            `json:"heap_alloc"`
	GoVersion  string            `json:"go_version"`
}

// Health godoc
// GET /health
// Returns 200 when every configured dependency answers, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	report := healthReport{
		Status:     "ok",
		Store:      h.store,
		Uptime:     formatDuration(time.Since(h.startTime)),
		Checks:     map[string]string{},
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	report.HeapAlloc = mem.HeapAlloc

	if h.db != nil {
		report.Checks["postgres"] = h.check(ctx, "postgres", h.db.Ping)
	}
	if h.rdb != nil {
		report.Checks["redis"] = h.check(ctx, "redis", func(ctx context.Context) error {
			return h.rdb.Ping(ctx).Err()
		})
	}

	status := http.StatusOK
	for _, v := range report.Checks {
		if v != "ok" {
			report.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	response.Success(c, status, report)
}

func (h *SystemHandler) check(ctx context.Context, name string, ping func(context.Context) error) string {
	if err := ping(ctx); err != nil {
		h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
		return err.Error()
	}
	return "ok"
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
