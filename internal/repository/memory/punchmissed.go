package memory

import (
	"context"
	"slices"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/punchmissed"
)

type PunchMissedRepository struct {
	s *Store
}

func NewPunchMissedRepository(s *Store) *PunchMissedRepository {
	return &PunchMissedRepository{s: s}
}

func clonePunchMissed(p punchmissed.PunchMissed) punchmissed.PunchMissed {
	p.Status = slices.Clone(p.Status)
	p.History = slices.Clone(p.History)
	if p.AdminInput != nil {
		t := *p.AdminInput
		p.AdminInput = &t
	}
	return p
}

func (r *PunchMissedRepository) Create(ctx context.Context, p punchmissed.PunchMissed) (punchmissed.PunchMissed, error) {
	err := r.s.write(ctx, func(d *data) error {
		now := r.s.now()
		p.ID = newID()
		p.Version = 1
		p.CreatedAt, p.UpdatedAt = now, now
		p.EmployeeName = nil
		d.punchMissed[p.ID] = clonePunchMissed(p)
		p.EmployeeName = d.employeeName(p.EmployeeID)
		return nil
	})
	if err != nil {
		return punchmissed.PunchMissed{}, err
	}
	return p, nil
}

func (r *PunchMissedRepository) GetByID(ctx context.Context, id string) (punchmissed.PunchMissed, error) {
	var p punchmissed.PunchMissed
	err := r.s.read(func(d *data) error {
		found, ok := d.punchMissed[id]
		if !ok {
			return punchmissed.ErrPunchMissedNotFound
		}
		p = clonePunchMissed(found)
		p.EmployeeName = d.employeeName(p.EmployeeID)
		return nil
	})
	return p, err
}

func (r *PunchMissedRepository) Update(ctx context.Context, p punchmissed.PunchMissed) (punchmissed.PunchMissed, error) {
	err := r.s.write(ctx, func(d *data) error {
		stored, ok := d.punchMissed[p.ID]
		if !ok {
			return punchmissed.ErrPunchMissedNotFound
		}
		if stored.Version != p.Version {
			return approval.ErrConflict
		}
		stored.Status = p.Status
		stored.History = p.History
		stored.AdminInput = p.AdminInput
		stored.Version++
		stored.UpdatedAt = r.s.now()
		d.punchMissed[p.ID] = clonePunchMissed(stored)

		p = clonePunchMissed(stored)
		p.EmployeeName = d.employeeName(p.EmployeeID)
		return nil
	})
	if err != nil {
		return punchmissed.PunchMissed{}, err
	}
	return p, nil
}

func (r *PunchMissedRepository) List(ctx context.Context, filter punchmissed.PunchMissedFilter) ([]punchmissed.PunchMissed, int64, error) {
	var out []punchmissed.PunchMissed
	err := r.s.read(func(d *data) error {
		for _, p := range d.punchMissed {
			if filter.EmployeeID != nil && p.EmployeeID != *filter.EmployeeID {
				continue
			}
			if filter.DepartmentID != nil && p.DepartmentID != *filter.DepartmentID {
				continue
			}
			if filter.PendingStage != nil {
				stage, ok := approval.PunchMissedChain.PendingStage(p.Status)
				if !ok || stage != *filter.PendingStage {
					continue
				}
			}
			p = clonePunchMissed(p)
			p.EmployeeName = d.employeeName(p.EmployeeID)
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortBy(out, func(a, b punchmissed.PunchMissed) bool { return a.CreatedAt.After(b.CreatedAt) })
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

var _ punchmissed.PunchMissedRepository = (*PunchMissedRepository)(nil)
