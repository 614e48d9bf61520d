package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vstep-go-api/internal/config"
	"github.com/noah-isme/vstep-go-api/internal/database"
	"github.com/noah-isme/vstep-go-api/internal/handler"
	"github.com/noah-isme/vstep-go-api/internal/middleware"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/repository"
	"github.com/noah-isme/vstep-go-api/internal/router"
	"github.com/noah-isme/vstep-go-api/internal/service"
	cloud "github.com/noah-isme/vstep-go-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Class{},
		&models.Enrollment{},
		&models.Material{},
		&models.Schedule{},
		&models.Attendance{},
		&models.Announcement{},
		&models.Assignment{},
		&models.Submission{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	var uploader service.FileUploader
	if cfg.CloudinaryCloudName != "" {
		cloudUploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cloudUploader
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reportRepo := repository.NewReportRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, "vstep", natsConn, validate, logger)
	classService := service.NewClassService(classRepo, enrollmentRepo, scheduleRepo, validate, logger, cfg.InviteCodeAttempts)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, classRepo, studentRepo, validate, logger)
	materialService := service.NewMaterialService(materialRepo, classRepo, uploader, validate, logger)
	scheduleService := service.NewScheduleService(scheduleRepo, classRepo, validate, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, classRepo, enrollmentRepo, validate, logger)
	announcementService := service.NewAnnouncementService(announcementRepo, classRepo, enrollmentRepo, notificationService, redisClient, cfg.AnnouncementCacheTTL, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, submissionRepo, classRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, enrollmentRepo, classRepo, validate, logger)
	gradingService := service.NewGradingService(submissionRepo, assignmentRepo, validate, logger)
	reportService := service.NewReportService(reportRepo, classRepo, enrollmentRepo, attendanceRepo, redisClient, cfg.ReportCacheTTL, logger)

	appCtx, stopServices := context.WithCancel(context.Background())
	defer stopServices()
	notificationService.Start(appCtx)

	deps := router.Dependencies{
		ClassHandler:        handler.NewClassHandler(classService, enrollmentService, logger),
		StudentClassHandler: handler.NewStudentClassHandler(classService, enrollmentService, logger),
		MaterialHandler:     handler.NewMaterialHandler(materialService, logger),
		ScheduleHandler:     handler.NewScheduleHandler(scheduleService, logger),
		AttendanceHandler:   handler.NewAttendanceHandler(attendanceService, logger),
		AnnouncementHandler: handler.NewAnnouncementHandler(announcementService, logger),
		AssignmentHandler:   handler.NewAssignmentHandler(assignmentService, submissionService, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(submissionService, logger),
		AdminClassHandler:   handler.NewAdminClassHandler(classService, logger),
		AdminGradingHandler: handler.NewAdminGradingHandler(gradingService, logger),
		ReportHandler:       handler.NewReportHandler(reportService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, 30*time.Second),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
