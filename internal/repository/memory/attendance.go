package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

type AttendanceRepository struct {
	s *Store
}

func NewAttendanceRepository(s *Store) *AttendanceRepository {
	return &AttendanceRepository{s: s}
}

func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := r.s.read(func(d *data) error {
		found, ok := d.attendances[id]
		if !ok {
			return attendance.ErrAttendanceNotFound
		}
		found.EmployeeName = d.employeeName(found.EmployeeID)
		a = found
		return nil
	})
	return a, err
}

func (r *AttendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	if err := r.s.check("attendance.GetByEmployeeAndDate", employeeID); err != nil {
		return nil, err
	}
	var out *attendance.Attendance
	err := r.s.read(func(d *data) error {
		id, ok := d.attendanceByDay[dayKey(employeeID, date)]
		if !ok {
			return nil
		}
		a := d.attendances[id]
		out = &a
		return nil
	})
	return out, err
}

func (r *AttendanceRepository) Upsert(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if err := r.s.check("attendance.Upsert", a.EmployeeID); err != nil {
		return attendance.Attendance{}, err
	}
	err := r.s.write(ctx, func(d *data) error {
		now := r.s.now()
		a.LogDate = clock.Date(a.LogDate)
		key := dayKey(a.EmployeeID, a.LogDate)

		id, exists := d.attendanceByDay[key]
		if !exists {
			if a.Version != 0 {
				return attendance.ErrVersionConflict
			}
			a.ID = newID()
			a.CreatedAt = now
		} else {
			stored := d.attendances[id]
			if stored.Version != a.Version {
				return attendance.ErrVersionConflict
			}
			a.ID = id
			a.CreatedAt = stored.CreatedAt
		}
		a.Version++
		a.UpdatedAt = now
		a.EmployeeName = nil

		d.attendances[a.ID] = a
		d.attendanceByDay[key] = a.ID
		a.EmployeeName = d.employeeName(a.EmployeeID)
		return nil
	})
	if err != nil {
		return attendance.Attendance{}, err
	}
	return a, nil
}

func (r *AttendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	var out []attendance.Attendance
	err := r.s.read(func(d *data) error {
		for _, a := range d.attendances {
			if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
				continue
			}
			if filter.DepartmentID != nil && d.employees[a.EmployeeID].DepartmentID != *filter.DepartmentID {
				continue
			}
			if filter.From != nil && a.LogDate.Before(*filter.From) {
				continue
			}
			if filter.To != nil && a.LogDate.After(*filter.To) {
				continue
			}
			if filter.LAPending && (a.LAApproval == nil || *a.LAApproval != attendance.LAPending) {
				continue
			}
			a.EmployeeName = d.employeeName(a.EmployeeID)
			out = append(out, a)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortBy(out, func(a, b attendance.Attendance) bool {
		if !a.LogDate.Equal(b.LogDate) {
			return a.LogDate.After(b.LogDate)
		}
		return a.EmployeeID < b.EmployeeID
	})
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

type RawPunchLogRepository struct {
	s *Store
}

func NewRawPunchLogRepository(s *Store) *RawPunchLogRepository {
	return &RawPunchLogRepository{s: s}
}

func (r *RawPunchLogRepository) Create(ctx context.Context, logs []attendance.RawPunchLog) error {
	return r.s.write(ctx, func(d *data) error {
		now := r.s.now()
		for _, l := range logs {
			l.ID = newID()
			l.LogDate = clock.Date(l.LogDate)
			l.CreatedAt = now
			d.punches[l.ID] = l
		}
		return nil
	})
}

func (r *RawPunchLogRepository) ListUnprocessed(ctx context.Context, employeeID string, date time.Time) ([]attendance.RawPunchLog, error) {
	if err := r.s.check("punch.ListUnprocessed", employeeID); err != nil {
		return nil, err
	}
	var out []attendance.RawPunchLog
	err := r.s.read(func(d *data) error {
		for _, l := range d.punches {
			if l.EmployeeID == employeeID && !l.Processed && clock.SameDay(l.LogDate, date) {
				out = append(out, l)
			}
		}
		return nil
	})
	sortBy(out, func(a, b attendance.RawPunchLog) bool {
		if a.LogTime != b.LogTime {
			return a.LogTime < b.LogTime
		}
		return a.ID < b.ID
	})
	return out, err
}

func (r *RawPunchLogRepository) MarkProcessed(ctx context.Context, ids []string) error {
	return r.s.write(ctx, func(d *data) error {
		for _, id := range ids {
			if l, ok := d.punches[id]; ok {
				l.Processed = true
				d.punches[id] = l
			}
		}
		return nil
	})
}

var (
	_ attendance.AttendanceRepository  = (*AttendanceRepository)(nil)
	_ attendance.RawPunchLogRepository = (*RawPunchLogRepository)(nil)
)
