package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

// Reconciler is the part of the attendance service driven by the scheduler.
type Reconciler interface {
	Reconcile(ctx context.Context, req attendance.ReconcileRequest) (attendance.Report, error)
}

type AttendanceJobs struct {
	reconciler Reconciler
	runHour    int
	location   *time.Location
	now        func() time.Time

	mu      sync.Mutex
	lastRun string
}

func NewAttendanceJobs(reconciler Reconciler, runHour int, location *time.Location) *AttendanceJobs {
	if location == nil {
		location = time.UTC
	}
	return &AttendanceJobs{
		reconciler: reconciler,
		runHour:    runHour,
		location:   location,
		now:        time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("reconcile_attendance", 15*time.Minute, 10*time.Minute, j.ReconcileAttendance)
}

// ReconcileAttendance reconciles the current day once, during the configured
// hour. Ticks outside that hour, or after the day already ran, do nothing.
func (j *AttendanceJobs) ReconcileAttendance(ctx context.Context) error {
	now := j.now().In(j.location)
	if now.Hour() != j.runHour {
		return nil
	}

	date := now.Format(clock.DateLayout)

	j.mu.Lock()
	if j.lastRun == date {
		j.mu.Unlock()
		return nil
	}
	j.lastRun = date
	j.mu.Unlock()

	slog.Info("Cron: Starting attendance reconciliation", "date", date)

	report, err := j.reconciler.Reconcile(ctx, attendance.ReconcileRequest{Date: date})
	if err != nil {
		j.mu.Lock()
		j.lastRun = ""
		j.mu.Unlock()
		return err
	}

	slog.Info("Cron: Attendance reconciliation completed",
		"date", date,
		"employees", report.Employees,
		"created", report.Created,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failures", len(report.Failures),
	)
	return nil
}
