package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jamgrade/jamgrade-backend/internal/config"
	"github.com/jamgrade/jamgrade-backend/internal/handler"
	"github.com/jamgrade/jamgrade-backend/internal/middleware"
	"github.com/jamgrade/jamgrade-backend/internal/model"
	"github.com/jamgrade/jamgrade-backend/internal/response"
	"github.com/jamgrade/jamgrade-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Session  *handler.SessionHandler
	Grading  *handler.GradingHandler
	Question *handler.QuestionHandler
	Student  *handler.StudentHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/professor/login", handlers.Auth.ProfessorLogin)

		// Authenticated profile routes
		auth.POST("/student/logout", middleware.RequireStudentJWT(authService), handlers.Auth.StudentLogout)
		auth.GET("/me", middleware.RequireProfessorJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.POST("/jam-sessions/:session_id/join", handlers.Student.Join)
		studentAPI.GET("/jam-sessions/:session_id/state", handlers.Student.State)
		studentAPI.GET("/jam-sessions/:session_id/questions", handlers.Student.ListQuestions)
		studentAPI.POST("/jam-sessions/:session_id/questions/:question_id/answer", handlers.Student.SubmitAnswer)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/student/jam-sessions/:session_id/stream",
			middleware.RequireStudentWSAuth(authService),
			handlers.WS.StudentStream,
		)
		ws.GET("/professor/:group_scope/jam-sessions/:session_id/monitor",
			middleware.RequireProfessorWSAuth(authService),
			handlers.WS.MonitorStream,
		)
	}

	// ─── 4. Professor Group (JWT + Group Scope + RBAC) ─────────────────
	professorAPI := router.Group("/api/v1/professor")
	professorAPI.Use(middleware.RequireProfessorJWT(authService))
	{
		professorAPI.POST("/students/:email/reset-session", handlers.Auth.ResetStudentSession)

		scoped := professorAPI.Group("/:group_scope")
		scoped.Use(middleware.RequireGroupScope())
		{
			// Jam session lifecycle
			scoped.POST("/jam-sessions",
				middleware.RequirePermission(model.PermissionSessionsWrite),
				handlers.Session.Create,
			)
			scoped.GET("/jam-sessions",
				middleware.RequirePermission(model.PermissionSessionsRead),
				handlers.Session.List,
			)
			scoped.GET("/jam-sessions/:session_id",
				middleware.RequirePermission(model.PermissionSessionsRead),
				handlers.Session.Get,
			)
			scoped.PATCH("/jam-sessions/:session_id",
				middleware.RequirePermission(model.PermissionSessionsWrite),
				handlers.Session.Update,
			)
			scoped.DELETE("/jam-sessions/:session_id",
				middleware.RequirePermission(model.PermissionSessionsWrite),
				handlers.Session.Delete,
			)
			scoped.GET("/jam-sessions/:session_id/students",
				middleware.RequirePermission(model.PermissionSessionsRead),
				handlers.Session.ListStudents,
			)

			// Question roster
			scoped.GET("/jam-sessions/:session_id/questions",
				middleware.RequirePermission(model.PermissionSessionsRead),
				handlers.Session.ListQuestions,
			)
			scoped.POST("/jam-sessions/:session_id/questions",
				middleware.RequirePermission(model.PermissionSessionsWrite),
				handlers.Session.AddQuestion,
			)
			scoped.PATCH("/jam-sessions/:session_id/questions/:question_id",
				middleware.RequirePermission(model.PermissionSessionsWrite),
				handlers.Session.UpdateQuestion,
			)

			// Grading
			scoped.PATCH("/gradings",
				middleware.RequirePermission(model.PermissionGradingsWrite),
				handlers.Grading.Update,
			)
			scoped.POST("/jam-sessions/:session_id/sign-off-autograded",
				middleware.RequirePermission(model.PermissionGradingsSign),
				handlers.Grading.SignOffAutograded,
			)
			scoped.GET("/jam-sessions/:session_id/overview",
				middleware.RequirePermission(model.PermissionSessionsRead),
				handlers.Grading.Overview,
			)
			scoped.GET("/jam-sessions/:session_id/results.csv",
				middleware.RequirePermission(model.PermissionSessionsRead),
				handlers.Grading.ExportCSV,
			)

			// Question banks
			scoped.POST("/banks",
				middleware.RequirePermission(model.PermissionBanksWrite),
				handlers.Question.CreateBank,
			)
			scoped.GET("/banks", handlers.Question.ListBanks)
			scoped.POST("/banks/:bank_id/questions",
				middleware.RequirePermission(model.PermissionBanksWrite),
				handlers.Question.CreateQuestion,
			)
			scoped.GET("/banks/:bank_id/questions", handlers.Question.ListQuestions)
			scoped.DELETE("/questions/:question_id",
				middleware.RequirePermission(model.PermissionBanksWrite),
				handlers.Question.DeleteQuestion,
			)

			// Collections
			scoped.POST("/collections",
				middleware.RequirePermission(model.PermissionBanksWrite),
				handlers.Question.CreateCollection,
			)
			scoped.GET("/collections", handlers.Question.ListCollections)
			scoped.GET("/collections/:collection_id", handlers.Question.GetCollection)
			scoped.POST("/collections/:collection_id/questions",
				middleware.RequirePermission(model.PermissionBanksWrite),
				handlers.Question.AddCollectionQuestion,
			)
			scoped.DELETE("/collections/:collection_id/questions/:question_id",
				middleware.RequirePermission(model.PermissionBanksWrite),
				handlers.Question.RemoveCollectionQuestion,
			)
		}
	}

	return router
}
