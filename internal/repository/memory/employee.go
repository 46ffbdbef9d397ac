package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
)

type EmployeeRepository struct {
	s *Store
}

func NewEmployeeRepository(s *Store) *EmployeeRepository {
	return &EmployeeRepository{s: s}
}

// Seed inserts or replaces employees. Used by local runs and tests; the
// directory itself is owned by another system.
func (r *EmployeeRepository) Seed(ctx context.Context, employees ...employee.Employee) error {
	return r.s.write(ctx, func(d *data) error {
		now := r.s.now()
		for _, e := range employees {
			if e.ID == "" {
				e.ID = newID()
			}
			if e.EmploymentStatus == "" {
				e.EmploymentStatus = employee.EmploymentStatusActive
			}
			e.CreatedAt, e.UpdatedAt = now, now
			d.employees[e.ID] = e
		}
		return nil
	})
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	if err := r.s.check("employee.GetByID", id); err != nil {
		return employee.Employee{}, err
	}
	var e employee.Employee
	err := r.s.read(func(d *data) error {
		found, ok := d.employees[id]
		if !ok {
			return employee.ErrEmployeeNotFound
		}
		e = found
		return nil
	})
	return e, err
}

// GetByIDForUpdate is GetByID: transactions are already serialized.
func (r *EmployeeRepository) GetByIDForUpdate(ctx context.Context, id string) (employee.Employee, error) {
	return r.GetByID(ctx, id)
}

func (r *EmployeeRepository) ListActive(ctx context.Context) ([]employee.Employee, error) {
	return r.list(func(e employee.Employee) bool { return e.IsActive() })
}

func (r *EmployeeRepository) ListByDepartment(ctx context.Context, departmentID string) ([]employee.Employee, error) {
	return r.list(func(e employee.Employee) bool { return e.IsActive() && e.DepartmentID == departmentID })
}

func (r *EmployeeRepository) ListByRole(ctx context.Context, role user.Role) ([]employee.Employee, error) {
	return r.list(func(e employee.Employee) bool { return e.IsActive() && e.Role == role })
}

func (r *EmployeeRepository) list(keep func(employee.Employee) bool) ([]employee.Employee, error) {
	var out []employee.Employee
	err := r.s.read(func(d *data) error {
		for _, e := range d.employees {
			if keep(e) {
				out = append(out, e)
			}
		}
		return nil
	})
	sortBy(out, func(a, b employee.Employee) bool { return a.ID < b.ID })
	return out, err
}

func (r *EmployeeRepository) UpdateBalances(ctx context.Context, id string, balances employee.Balances) error {
	if err := r.s.check("employee.UpdateBalances", id); err != nil {
		return err
	}
	return r.s.write(ctx, func(d *data) error {
		e, ok := d.employees[id]
		if !ok {
			return employee.ErrEmployeeNotFound
		}
		e.Balances = balances
		e.UpdatedAt = r.s.now()
		d.employees[id] = e
		return nil
	})
}

func (r *EmployeeRepository) SetLastPunchMissedSubmission(ctx context.Context, id string, at time.Time) error {
	return r.s.write(ctx, func(d *data) error {
		e, ok := d.employees[id]
		if !ok {
			return employee.ErrEmployeeNotFound
		}
		e.LastPunchMissedSubmission = &at
		e.UpdatedAt = r.s.now()
		d.employees[id] = e
		return nil
	})
}

type CompensatoryRepository struct {
	s *Store
}

func NewCompensatoryRepository(s *Store) *CompensatoryRepository {
	return &CompensatoryRepository{s: s}
}

func (r *CompensatoryRepository) Seed(ctx context.Context, entries ...employee.CompensatoryEntry) error {
	return r.s.write(ctx, func(d *data) error {
		now := r.s.now()
		for _, e := range entries {
			if e.ID == "" {
				e.ID = newID()
			}
			if e.Status == "" {
				e.Status = employee.CompensatoryAvailable
			}
			e.CreatedAt, e.UpdatedAt = now, now
			d.compensatory[e.ID] = e
		}
		return nil
	})
}

func (r *CompensatoryRepository) GetByID(ctx context.Context, id string) (employee.CompensatoryEntry, error) {
	var e employee.CompensatoryEntry
	err := r.s.read(func(d *data) error {
		found, ok := d.compensatory[id]
		if !ok {
			return employee.ErrCompensatoryNotFound
		}
		e = found
		return nil
	})
	return e, err
}

func (r *CompensatoryRepository) ListAvailable(ctx context.Context, employeeID string) ([]employee.CompensatoryEntry, error) {
	var out []employee.CompensatoryEntry
	err := r.s.read(func(d *data) error {
		for _, e := range d.compensatory {
			if e.EmployeeID == employeeID && e.Status == employee.CompensatoryAvailable {
				out = append(out, e)
			}
		}
		return nil
	})
	sortBy(out, func(a, b employee.CompensatoryEntry) bool { return a.EarnedOn.Before(b.EarnedOn) })
	return out, err
}

func (r *CompensatoryRepository) MarkUsed(ctx context.Context, id string, usedFor string) error {
	return r.s.write(ctx, func(d *data) error {
		e, ok := d.compensatory[id]
		if !ok {
			return employee.ErrCompensatoryNotFound
		}
		if e.Status != employee.CompensatoryAvailable {
			return employee.ErrCompensatoryNotAvailable
		}
		e.Status = employee.CompensatoryUsed
		e.UsedFor = &usedFor
		e.UpdatedAt = r.s.now()
		d.compensatory[id] = e
		return nil
	})
}

var (
	_ employee.EmployeeRepository     = (*EmployeeRepository)(nil)
	_ employee.CompensatoryRepository = (*CompensatoryRepository)(nil)
)
