package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
)

type LeaveRepository struct {
	s *Store
}

func NewLeaveRepository(s *Store) *LeaveRepository {
	return &LeaveRepository{s: s}
}

// cloneLeave detaches the slices so callers cannot change stored rows.
func cloneLeave(l leave.Leave) leave.Leave {
	l.Status = slices.Clone(l.Status)
	l.History = slices.Clone(l.History)
	l.ApprovedDates = slices.Clone(l.ApprovedDates)
	l.RejectedDates = slices.Clone(l.RejectedDates)
	return l
}

func (r *LeaveRepository) CreateBatch(ctx context.Context, leaves []leave.Leave) ([]leave.Leave, error) {
	out := make([]leave.Leave, 0, len(leaves))
	err := r.s.write(ctx, func(d *data) error {
		now := r.s.now()
		for _, l := range leaves {
			l.ID = newID()
			l.Version = 1
			l.CreatedAt, l.UpdatedAt = now, now
			l.EmployeeName = nil
			d.leaves[l.ID] = cloneLeave(l)
			l.EmployeeName = d.employeeName(l.EmployeeID)
			out = append(out, l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LeaveRepository) GetByID(ctx context.Context, id string) (leave.Leave, error) {
	var l leave.Leave
	err := r.s.read(func(d *data) error {
		found, ok := d.leaves[id]
		if !ok {
			return leave.ErrLeaveNotFound
		}
		l = cloneLeave(found)
		l.EmployeeName = d.employeeName(l.EmployeeID)
		return nil
	})
	return l, err
}

func (r *LeaveRepository) Update(ctx context.Context, l leave.Leave) (leave.Leave, error) {
	err := r.s.write(ctx, func(d *data) error {
		stored, ok := d.leaves[l.ID]
		if !ok {
			return leave.ErrLeaveNotFound
		}
		if stored.Version != l.Version {
			return approval.ErrConflict
		}
		stored.Status = l.Status
		stored.History = l.History
		stored.ApprovedDates = l.ApprovedDates
		stored.RejectedDates = l.RejectedDates
		stored.Version++
		stored.UpdatedAt = r.s.now()
		d.leaves[l.ID] = cloneLeave(stored)

		l = cloneLeave(stored)
		l.EmployeeName = d.employeeName(l.EmployeeID)
		return nil
	})
	if err != nil {
		return leave.Leave{}, err
	}
	return l, nil
}

func (r *LeaveRepository) ListActiveBetween(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Leave, error) {
	if err := r.s.check("leave.ListActiveBetween", employeeID); err != nil {
		return nil, err
	}
	window := leave.FullDay{From: from, To: to}
	var out []leave.Leave
	err := r.s.read(func(d *data) error {
		for _, l := range d.leaves {
			if l.EmployeeID == employeeID && !l.IsRejected() && l.FullDay.Overlaps(window) {
				out = append(out, cloneLeave(l))
			}
		}
		return nil
	})
	sortBy(out, func(a, b leave.Leave) bool { return a.FullDay.From.Before(b.FullDay.From) })
	return out, err
}

func (r *LeaveRepository) CountActiveOfTypeInYear(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int) (int, error) {
	count := 0
	err := r.s.read(func(d *data) error {
		for _, l := range d.leaves {
			if l.EmployeeID == employeeID && l.LeaveType == leaveType && l.FullDay.From.Year() == year && !l.IsRejected() {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *LeaveRepository) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.Leave, int64, error) {
	var out []leave.Leave
	err := r.s.read(func(d *data) error {
		for _, l := range d.leaves {
			if filter.EmployeeID != nil && l.EmployeeID != *filter.EmployeeID {
				continue
			}
			if filter.DepartmentID != nil && l.DepartmentID != *filter.DepartmentID {
				continue
			}
			if filter.LeaveType != nil && string(l.LeaveType) != *filter.LeaveType {
				continue
			}
			if filter.PendingStage != nil {
				stage, ok := approval.LeaveChain.PendingStage(l.Status)
				if !ok || stage != *filter.PendingStage {
					continue
				}
			}
			if filter.From != nil && l.FullDay.To.Before(*filter.From) {
				continue
			}
			if filter.To != nil && l.FullDay.From.After(*filter.To) {
				continue
			}
			l = cloneLeave(l)
			l.EmployeeName = d.employeeName(l.EmployeeID)
			out = append(out, l)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortBy(out, func(a, b leave.Leave) bool { return a.CreatedAt.After(b.CreatedAt) })
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

var _ leave.LeaveRepository = (*LeaveRepository)(nil)
