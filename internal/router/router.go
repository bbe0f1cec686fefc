package router

import (
	"net/http"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/config"
	"github.com/epsilon-academy/academy-backend/internal/handler"
	"github.com/epsilon-academy/academy-backend/internal/middleware"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/epsilon-academy/academy-backend/internal/service"
	ws "github.com/epsilon-academy/academy-backend/internal/websocket"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Course     *handler.CourseHandler
	Enrollment *handler.EnrollmentHandler
	LiveClass  *handler.LiveClassHandler
	Group      *handler.GroupHandler
	Message    *handler.MessageHandler
	Evaluation *handler.EvaluationHandler
	Dashboard  *handler.DashboardHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
}

// NewHandlers builds every handler over svcs.
func NewHandlers(cfg *config.Config, svcs *service.Services, hub *ws.Hub, system *handler.SystemHandler, log zerolog.Logger) *Handlers {
	return &Handlers{
		Auth:       handler.NewAuthHandler(svcs.Auth, cfg.ServiceRoleKey, cfg.SessionCookie, cfg.GinMode == gin.ReleaseMode),
		User:       handler.NewUserHandler(svcs.User),
		Course:     handler.NewCourseHandler(svcs.Course),
		Enrollment: handler.NewEnrollmentHandler(svcs.Enrollment),
		LiveClass:  handler.NewLiveClassHandler(svcs.LiveClass),
		Group:      handler.NewGroupHandler(svcs.Group),
		Message:    handler.NewMessageHandler(svcs.Message),
		Evaluation: handler.NewEvaluationHandler(svcs.Evaluation),
		Dashboard:  handler.NewDashboardHandler(svcs.Dashboard),
		WS:         handler.NewWSHandler(svcs.LiveClass, hub, log, cfg.AllowedOrigins),
		System:     system,
	}
}

// Options carries the optional pieces of the middleware stack.
type Options struct {
	Logger zerolog.Logger
	// Dev enables X-Dev-Role impersonation; nil outside skip mode.
	Dev middleware.DevResolver
	// AuthLimiter rate-limits signup and login; nil disables it.
	AuthLimiter *middleware.RateLimiter
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	opts Options,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// Restrict to AllowedOrigins when set; otherwise allow all for dev.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Type", "Authorization", "X-Request-ID",
		middleware.HeaderAnonKey, middleware.HeaderServiceRoleKey, middleware.HeaderDevRole,
	}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(opts.Logger))

	// Workbooks are already zip-compressed.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality: middleware.DefaultBrotliConfig.Quality,
		Skipper: middleware.SkipPathSuffix("/export"),
	}))

	router.Use(middleware.Authenticate(authService, cfg.SessionCookie, opts.Dev))

	router.GET("/health", handlers.System.Health)

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	requireAuth := middleware.RequireAuth()
	api := router.Group("/api")

	// ─── 1. Auth (Public, Rate Limited) ────────────────────────────────
	auth := api.Group("/auth")
	{
		public := auth.Group("")
		if opts.AuthLimiter != nil {
			public.Use(opts.AuthLimiter.Middleware())
		}
		public.Use(middleware.RequireAnonKey(cfg.AnonKey))
		public.POST("/signup", handlers.Auth.Signup)
		public.POST("/login", handlers.Auth.Login)

		auth.POST("/logout", requireAuth, handlers.Auth.Logout)
		auth.GET("/user", requireAuth, handlers.Auth.CurrentUser)
	}

	api.POST("/update-password", middleware.RequireServiceRole(cfg.ServiceRoleKey), handlers.Auth.UpdatePassword)

	// ─── 2. Authenticated API ──────────────────────────────────────────
	authed := api.Group("")
	authed.Use(requireAuth)
	{
		authed.GET("/dashboard", handlers.Dashboard.GetDashboardData)

		// Users
		users := authed.Group("/users", middleware.RequirePermission(model.PermissionUsersManage))
		users.GET("", handlers.User.ListUsers)
		users.PATCH("/:id", handlers.User.UpdateUser)

		// Courses
		authed.GET("/courses", handlers.Course.ListCourses)
		authed.POST("/courses",
			middleware.RequirePermission(model.PermissionCoursesWrite),
			handlers.Course.CreateCourse,
		)
		authed.GET("/courses/:id", handlers.Course.GetCourse)
		authed.PUT("/courses/:id",
			middleware.RequirePermission(model.PermissionCoursesWrite),
			handlers.Course.UpdateCourse,
		)
		authed.DELETE("/courses/:id",
			middleware.RequirePermission(model.PermissionCoursesWrite),
			handlers.Course.DeleteCourse,
		)

		// Enrollments
		authed.GET("/courses/:id/enrollments", handlers.Enrollment.ListEnrollments)
		authed.POST("/courses/:id/enrollments", handlers.Enrollment.Enroll)
		authed.PATCH("/enrollments/:id", handlers.Enrollment.UpdateEnrollment)
		authed.DELETE("/enrollments/:id", handlers.Enrollment.DeleteEnrollment)

		// Live classes
		authed.GET("/live-classes", handlers.LiveClass.ListLiveClasses)
		liveWrite := middleware.RequirePermission(model.PermissionLiveClassesWrite)
		authed.POST("/live-classes", liveWrite, handlers.LiveClass.CreateLiveClass)
		authed.PUT("/live-classes/:id", liveWrite, handlers.LiveClass.UpdateLiveClass)
		authed.DELETE("/live-classes/:id", liveWrite, handlers.LiveClass.DeleteLiveClass)

		// Groups
		groupWrite := middleware.RequirePermission(model.PermissionGroupsWrite)
		authed.GET("/groups", handlers.Group.ListGroups)
		authed.POST("/groups", groupWrite, handlers.Group.CreateGroup)
		authed.POST("/groups/:id/members", groupWrite, handlers.Group.AddMember)
		authed.DELETE("/groups/:id/members/:student_id", groupWrite, handlers.Group.RemoveMember)

		// Messages
		authed.GET("/messages", handlers.Message.ListMessages)
		authed.POST("/messages", handlers.Message.SendMessage)
		authed.POST("/messages/:id/read", handlers.Message.MarkRead)

		// Evaluations
		evaluations := authed.Group("/evaluations")
		evaluations.GET("/results", handlers.Evaluation.ListResults)
		evaluations.POST("/results", handlers.Evaluation.CreateResult)
		evaluations.GET("/results/:id", handlers.Evaluation.GetResult)
		evaluations.GET("/statistics", handlers.Evaluation.Statistics)
		evaluations.GET("/export",
			middleware.RequirePermission(model.PermissionReportsExport),
			handlers.Evaluation.Export,
		)
	}

	// ─── 3. WebSocket ──────────────────────────────────────────────────
	wsGroup := router.Group("/ws", requireAuth)
	{
		wsGroup.GET("/live-classes/:id", handlers.WS.LiveClassPresence)
	}

	return router
}
