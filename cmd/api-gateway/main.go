package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/schooldesk/substitute-api/api/swagger"
	"github.com/schooldesk/substitute-api/internal/bridge"
	"github.com/schooldesk/substitute-api/internal/handler"
	"github.com/schooldesk/substitute-api/internal/repository"
	"github.com/schooldesk/substitute-api/internal/service"
	"github.com/schooldesk/substitute-api/internal/store"
	"github.com/schooldesk/substitute-api/pkg/cache"
	"github.com/schooldesk/substitute-api/pkg/config"
	"github.com/schooldesk/substitute-api/pkg/logger"
	corsmiddleware "github.com/schooldesk/substitute-api/pkg/middleware/cors"
	reqidmiddleware "github.com/schooldesk/substitute-api/pkg/middleware/requestid"
)

// @title Substitute Teacher API
// @version 1.0.0
// @description School substitute teacher management service
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := store.New(cfg.Data.Dir, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to open data store", "error", err)
	}

	metricsSvc := service.NewMetricsService()
	st.SetObserver(metricsSvc.ObserveStoreOperation)

	var jsonCache *cache.JSONCache
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, schedule cache disabled", "error", err)
	} else {
		jsonCache = cache.NewJSONCache(redisClient, cfg.Redis.CacheTTL, logr)
	}

	validate := validator.New()

	teacherRepo := repository.NewTeacherRepository(st)
	scheduleRepo := repository.NewScheduleRepository(st)
	periodRepo := repository.NewPeriodRepository(st)
	attendanceRepo := repository.NewAttendanceRepository(st, cfg.Data.AttendanceFile)
	absenceRepo := repository.NewAbsenceRepository(st)
	assignmentRepo := repository.NewAssignmentRepository(st)
	smsRepo := repository.NewSMSRepository(st)
	userRepo := repository.NewUserRepository(st)
	notificationRepo := repository.NewNotificationRepository(st)

	outbox := bridge.NewQueueHost(0)
	bridgeClient := bridge.NewClient(outbox, cfg.SMS.BridgeTimeout, logr)

	rosterSvc := service.NewRosterService(teacherRepo, validate, logr)
	timetableSvc := service.NewTimetableService(scheduleRepo, periodRepo, rosterSvc, st, cfg.Data.TimetableFile, jsonCache, metricsSvc, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, validate, logr)
	absenceSvc := service.NewAbsenceService(absenceRepo, assignmentRepo, teacherRepo, rosterSvc, timetableSvc, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, absenceRepo, teacherRepo, timetableSvc, logr)
	smsSvc := service.NewSMSService(smsRepo, bridgeClient, cfg.SMS.SendDelay, metricsSvc, logr)
	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)

	if err := authSvc.EnsureDefaultUser(context.Background()); err != nil {
		logr.Sugar().Fatalw("failed to seed default account", "error", err)
	}

	// ingest any CSVs already present so a fresh deployment starts populated
	if rows, err := st.ReadCSV(cfg.Data.SubstituteFile); err == nil && len(rows) > 0 {
		if n, err := rosterSvc.ImportSubstitutes(context.Background(), rows); err != nil {
			logr.Sugar().Warnw("substitute import failed", "error", err)
		} else {
			logr.Sugar().Infow("substitutes imported", "count", n)
		}
	}
	if n, err := timetableSvc.Process(context.Background()); err != nil {
		logr.Sugar().Warnw("timetable processing skipped", "error", err)
	} else {
		logr.Sugar().Infow("timetable processed", "entries", n)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r, cfg.APIPrefix, handler.Deps{
		Auth:          handler.NewAuthHandler(authSvc),
		Teachers:      handler.NewTeacherHandler(rosterSvc),
		Schedules:     handler.NewScheduleHandler(timetableSvc),
		Attendance:    handler.NewAttendanceHandler(attendanceSvc, absenceSvc, rosterSvc),
		Absences:      handler.NewAbsenceHandler(absenceSvc, assignmentSvc),
		Assignments:   handler.NewAssignmentHandler(assignmentSvc),
		SMS:           handler.NewSMSHandler(smsSvc, bridgeClient, outbox),
		Uploads:       handler.NewUploadHandler(timetableSvc, rosterSvc, st, cfg.Data.SubstituteFile),
		Notifications: handler.NewNotificationHandler(notificationRepo),
		Metrics:       handler.NewMetricsHandler(metricsSvc),

		AuthService:    authSvc,
		MetricsService: metricsSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
