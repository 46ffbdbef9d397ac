package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/od"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/punchmissed"
	appHTTP "github.com/cmlabs-hris/hrms-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hrms-backend-go/internal/service/attendance"
	ledgerService "github.com/cmlabs-hris/hrms-backend-go/internal/service/balance"
	fileService "github.com/cmlabs-hris/hrms-backend-go/internal/service/file"
	holidayService "github.com/cmlabs-hris/hrms-backend-go/internal/service/holiday"
	leaveService "github.com/cmlabs-hris/hrms-backend-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hrms-backend-go/internal/service/notification"
	odService "github.com/cmlabs-hris/hrms-backend-go/internal/service/od"
	punchMissedService "github.com/cmlabs-hris/hrms-backend-go/internal/service/punchmissed"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/workflow"
)

type repositories struct {
	tx           database.Transactor
	employees    employee.EmployeeRepository
	compensatory employee.CompensatoryRepository
	deductions   balance.DeductionRepository
	holidays     holiday.HolidayRepository
	leaves       leave.LeaveRepository
	ods          od.ODRepository
	punchMissed  punchmissed.PunchMissedRepository
	attendances  attendance.AttendanceRepository
	punches      attendance.RawPunchLogRepository
	notification notification.Repository
	close        func()
}

func newRepositories(cfg *config.Config) (*repositories, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		return &repositories{
			tx:           store,
			employees:    memory.NewEmployeeRepository(store),
			compensatory: memory.NewCompensatoryRepository(store),
			deductions:   memory.NewDeductionRepository(store),
			holidays:     memory.NewHolidayRepository(store),
			leaves:       memory.NewLeaveRepository(store),
			ods:          memory.NewODRepository(store),
			punchMissed:  memory.NewPunchMissedRepository(store),
			attendances:  memory.NewAttendanceRepository(store),
			punches:      memory.NewRawPunchLogRepository(store),
			notification: memory.NewNotificationRepository(store),
			close:        func() {},
		}, nil
	default:
		db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		return &repositories{
			tx:           postgresql.NewTransactor(db),
			employees:    postgresql.NewEmployeeRepository(db),
			compensatory: postgresql.NewCompensatoryRepository(db),
			deductions:   postgresql.NewDeductionRepository(db),
			holidays:     postgresql.NewHolidayRepository(db),
			leaves:       postgresql.NewLeaveRepository(db),
			ods:          postgresql.NewODRepository(db),
			punchMissed:  postgresql.NewPunchMissedRepository(db),
			attendances:  postgresql.NewAttendanceRepository(db),
			punches:      postgresql.NewRawPunchLogRepository(db),
			notification: postgresql.NewNotificationRepository(db),
			close:        db.Close,
		}, nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).With(
		slog.String("app", "hrms-cmlabs"),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	repos, err := newRepositories(cfg)
	if err != nil {
		logger.Error("failed to initialize storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer repos.close()
	logger.Info("storage ready", "driver", cfg.Storage.Driver)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	sseHub := sse.NewHub()
	notifService := notificationService.NewNotificationService(repos.notification, sseHub, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.Workers,
		QueueSize:     cfg.Notification.QueueSize,
	}, logger)

	flow := workflow.NewHelper(repos.employees, notifService, logger, cfg.Approval.LockDays)
	ledger := ledgerService.NewLedger(repos.tx, repos.employees, repos.compensatory, repos.deductions)
	holidaySvc := holidayService.NewHolidayService(repos.holidays)
	attendanceSvc := attendanceService.NewAttendanceService(
		repos.tx,
		repos.attendances,
		repos.punches,
		repos.employees,
		repos.leaves,
		repos.ods,
		holidaySvc,
		ledger,
		flow,
		attendanceService.Config{
			Rules: attendanceService.Rules{
				OfficeStart: cfg.Attendance.OfficeStart,
				LAGrace:     cfg.Attendance.LAGrace,
				FullDayOut:  cfg.Attendance.FullDayOut,
				FNCutoff:    cfg.Attendance.FNCutoff,
				ANCutoff:    cfg.Attendance.ANCutoff,
			},
			Workers:      cfg.Attendance.Workers,
			MaxAttempts:  cfg.Attendance.MaxAttempts,
			RetryBackoff: cfg.Attendance.RetryBackoff,
		},
	)
	leaveSvc := leaveService.NewLeaveService(repos.tx, repos.leaves, repos.employees, holidaySvc, ledger, flow)
	odSvc := odService.NewODService(repos.tx, repos.ods, flow)
	punchMissedSvc := punchMissedService.NewPunchMissedService(repos.tx, repos.punchMissed, repos.employees, attendanceSvc, flow)

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		logger.Error("failed to initialize local storage", "error", err)
		os.Exit(1)
	}
	fileSvc := fileService.NewFileService(fileStorage, flow, cfg.Storage.MaxUploadSize)

	scheduler := cron.NewScheduler(logger)
	cron.NewAttendanceJobs(attendanceSvc, cfg.Attendance.ReconcileHour, cfg.Attendance.Timezone).RegisterJobs(scheduler)
	scheduler.Start()

	router := appHTTP.NewRouter(
		cfg.App,
		JWTService,
		appHTTP.NewLeaveHandler(leaveSvc),
		appHTTP.NewCertificateHandler(fileSvc, cfg.Storage.MaxUploadSize),
		appHTTP.NewODHandler(odSvc),
		appHTTP.NewPunchMissedHandler(punchMissedSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewHolidayHandler(holidaySvc),
		appHTTP.NewBalanceHandler(ledger),
		appHTTP.NewNotificationHandler(notifService, JWTService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	scheduler.Stop()
	notifService.Stop()
	logger.Info("server stopped")
}
