package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/od"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

type ODRepository struct {
	s *Store
}

func NewODRepository(s *Store) *ODRepository {
	return &ODRepository{s: s}
}

func cloneOD(o od.OD) od.OD {
	o.Status = slices.Clone(o.Status)
	o.History = slices.Clone(o.History)
	o.ActualPunchTimes = slices.Clone(o.ActualPunchTimes)
	return o
}

func (r *ODRepository) Create(ctx context.Context, o od.OD) (od.OD, error) {
	err := r.s.write(ctx, func(d *data) error {
		now := r.s.now()
		o.ID = newID()
		o.Version = 1
		o.CreatedAt, o.UpdatedAt = now, now
		o.EmployeeName = nil
		d.ods[o.ID] = cloneOD(o)
		o.EmployeeName = d.employeeName(o.EmployeeID)
		return nil
	})
	if err != nil {
		return od.OD{}, err
	}
	return o, nil
}

func (r *ODRepository) GetByID(ctx context.Context, id string) (od.OD, error) {
	var o od.OD
	err := r.s.read(func(d *data) error {
		found, ok := d.ods[id]
		if !ok {
			return od.ErrODNotFound
		}
		o = cloneOD(found)
		o.EmployeeName = d.employeeName(o.EmployeeID)
		return nil
	})
	return o, err
}

func (r *ODRepository) Update(ctx context.Context, o od.OD) (od.OD, error) {
	err := r.s.write(ctx, func(d *data) error {
		stored, ok := d.ods[o.ID]
		if !ok {
			return od.ErrODNotFound
		}
		if stored.Version != o.Version {
			return approval.ErrConflict
		}
		stored.Status = o.Status
		stored.History = o.History
		stored.Version++
		stored.UpdatedAt = r.s.now()
		d.ods[o.ID] = cloneOD(stored)

		o = cloneOD(stored)
		o.EmployeeName = d.employeeName(o.EmployeeID)
		return nil
	})
	if err != nil {
		return od.OD{}, err
	}
	return o, nil
}

func (r *ODRepository) ListActiveCovering(ctx context.Context, employeeID string, from, to time.Time) ([]od.OD, error) {
	if err := r.s.check("od.ListActiveCovering", employeeID); err != nil {
		return nil, err
	}
	from, to = clock.Date(from), clock.Date(to)
	var out []od.OD
	err := r.s.read(func(d *data) error {
		for _, o := range d.ods {
			if o.EmployeeID != employeeID || o.IsRejected() {
				continue
			}
			if clock.Date(o.DateOut).After(to) || clock.Date(o.DateIn).Before(from) {
				continue
			}
			out = append(out, cloneOD(o))
		}
		return nil
	})
	sortBy(out, func(a, b od.OD) bool { return a.DateOut.Before(b.DateOut) })
	return out, err
}

func (r *ODRepository) RecordActualPunch(ctx context.Context, id string, pair od.PunchPair) error {
	return r.s.write(ctx, func(d *data) error {
		stored, ok := d.ods[id]
		if !ok {
			return od.ErrODNotFound
		}
		stored.ActualPunchTimes = slices.Clone(stored.ActualPunchTimes).Replace(pair)
		stored.UpdatedAt = r.s.now()
		d.ods[id] = stored
		return nil
	})
}

func (r *ODRepository) List(ctx context.Context, filter od.ODFilter) ([]od.OD, int64, error) {
	var out []od.OD
	err := r.s.read(func(d *data) error {
		for _, o := range d.ods {
			if filter.EmployeeID != nil && o.EmployeeID != *filter.EmployeeID {
				continue
			}
			if filter.DepartmentID != nil && o.DepartmentID != *filter.DepartmentID {
				continue
			}
			if filter.PendingStage != nil {
				stage, ok := approval.ODChain.PendingStage(o.Status)
				if !ok || stage != *filter.PendingStage {
					continue
				}
			}
			o = cloneOD(o)
			o.EmployeeName = d.employeeName(o.EmployeeID)
			out = append(out, o)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortBy(out, func(a, b od.OD) bool { return a.CreatedAt.After(b.CreatedAt) })
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

var _ od.ODRepository = (*ODRepository)(nil)
