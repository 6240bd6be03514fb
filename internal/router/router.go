package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quangdm/exam-portal-api/internal/config"
	"github.com/quangdm/exam-portal-api/internal/handler"
	"github.com/quangdm/exam-portal-api/internal/middleware"
	"github.com/quangdm/exam-portal-api/internal/models"
	"github.com/quangdm/exam-portal-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	QuestionHandler   *handler.QuestionHandler
	ExamHandler       *handler.ExamHandler
	SubmissionHandler *handler.SubmissionHandler
	GradingHandler    *handler.GradingHandler
	UserHandler       *handler.UserHandler
	MediaHandler      *handler.MediaHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("login", 10, time.Minute))
		deps.AuthHandler.Register(auth)

		session := api.Group("/auth", jwtMiddleware)
		deps.AuthHandler.RegisterProtected(session)
	}

	teacherOnly := middleware.RequireRole(models.RoleTeacher)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	if deps.QuestionHandler != nil {
		questions := api.Group("/questions", jwtMiddleware, teacherOnly)
		deps.QuestionHandler.Register(questions)
	}

	if deps.ExamHandler != nil {
		exams := api.Group("/exams", jwtMiddleware, studentOnly)
		deps.ExamHandler.Register(exams)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware, studentOnly)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.GradingHandler != nil {
		grading := api.Group("/grading", jwtMiddleware, teacherOnly)
		deps.GradingHandler.Register(grading)
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware, teacherOnly)
		deps.UserHandler.Register(users)
	}

	if deps.MediaHandler != nil {
		media := api.Group("/media", jwtMiddleware)
		deps.MediaHandler.Register(media)
	}
}
