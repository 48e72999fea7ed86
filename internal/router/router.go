package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skolara/skolara-api/internal/config"
	"github.com/skolara/skolara-api/internal/handler"
	"github.com/skolara/skolara-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler     *handler.CourseHandler
	AssignmentHandler *handler.AssignmentHandler
	EnrollmentHandler *handler.EnrollmentHandler
	SubmissionHandler *handler.SubmissionHandler
	GradingHandler    *handler.GradingHandler
	GradebookHandler  *handler.GradebookHandler
	ActivityHandler   *handler.ActivityHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.CourseHandler != nil {
		courses := app.Group("/api/v1/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)
	}

	if deps.AssignmentHandler != nil {
		assignments := app.Group("/api/v1/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.EnrollmentHandler != nil {
		enrollments := app.Group("/api/v1/enrollments", jwtMiddleware)
		deps.EnrollmentHandler.Register(enrollments)
	}

	if deps.SubmissionHandler != nil {
		submissions := app.Group("/api/v1/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.GradingHandler != nil {
		grading := app.Group("/api/v1/grading", jwtMiddleware)
		deps.GradingHandler.Register(grading)
	}

	if deps.GradebookHandler != nil {
		gradebook := app.Group("/api/v1/gradebook", jwtMiddleware)
		deps.GradebookHandler.Register(gradebook)
	}

	if deps.ActivityHandler != nil {
		activity := app.Group("/api/v1/activity", jwtMiddleware)
		deps.ActivityHandler.Register(activity)
	}
}
