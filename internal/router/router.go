package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/vstep-go-api/internal/config"
	"github.com/noah-isme/vstep-go-api/internal/handler"
	"github.com/noah-isme/vstep-go-api/internal/middleware"
	"github.com/noah-isme/vstep-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ClassHandler        *handler.ClassHandler
	StudentClassHandler *handler.StudentClassHandler
	MaterialHandler     *handler.MaterialHandler
	ScheduleHandler     *handler.ScheduleHandler
	AttendanceHandler   *handler.AttendanceHandler
	AnnouncementHandler *handler.AnnouncementHandler
	AssignmentHandler   *handler.AssignmentHandler
	SubmissionHandler   *handler.SubmissionHandler
	AdminClassHandler   *handler.AdminClassHandler
	AdminGradingHandler *handler.AdminGradingHandler
	ReportHandler       *handler.ReportHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
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

	// Teacher surface: class registry plus nested content collaborators.
	if deps.ClassHandler != nil {
		classes := app.Group("/api/v1/classes", jwtMiddleware,
			middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin))
		deps.ClassHandler.Register(classes)

		if deps.MaterialHandler != nil {
			deps.MaterialHandler.Register(classes)
		}
		if deps.ScheduleHandler != nil {
			deps.ScheduleHandler.Register(classes)
		}
		if deps.AttendanceHandler != nil {
			deps.AttendanceHandler.Register(classes)
		}
		if deps.AnnouncementHandler != nil {
			deps.AnnouncementHandler.Register(classes)
		}
		if deps.AssignmentHandler != nil {
			deps.AssignmentHandler.Register(classes)
		}
	}

	// Student surface. Joins are rate limited per user to keep invite-code
	// guessing slow.
	if deps.StudentClassHandler != nil {
		student := app.Group("/api/v1/student/classes", jwtMiddleware,
			middleware.RequireRole(middleware.RoleStudent))
		student.Use("/join", middleware.RateLimit("join", cfg.JoinRateLimit, cfg.JoinRateWindow))
		deps.StudentClassHandler.Register(student)

		if deps.SubmissionHandler != nil {
			studentWork := app.Group("/api/v1/student", jwtMiddleware,
				middleware.RequireRole(middleware.RoleStudent))
			deps.SubmissionHandler.Register(studentWork)
		}
	}

	// Admin surface.
	admin := app.Group("/api/admin", jwtMiddleware, middleware.RequireRole(middleware.RoleAdmin))
	if deps.AdminClassHandler != nil {
		deps.AdminClassHandler.Register(admin.Group("/classes"))
	}
	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(admin.Group("/reports"))
	}
	if deps.AdminGradingHandler != nil {
		deps.AdminGradingHandler.Register(admin)
	}

	if deps.NotificationHandler != nil {
		notifications := app.Group("/api/v1/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}
}
