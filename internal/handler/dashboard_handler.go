package handler

import (
	"net/http"

	"github.com/epsilon-academy/academy-backend/internal/middleware"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/epsilon-academy/academy-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler handles the role-aware dashboard.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboardData godoc
// GET /api/dashboard
// Admins get platform totals, teachers their courses and students, students
// their enrollments and recent results.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	data, err := h.dashboardService.GetDashboardData(c.Request.Context(), middleware.MustIdentity(c))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}
