package memory

import (
	"context"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/balance"
)

type DeductionRepository struct {
	s *Store
}

func NewDeductionRepository(s *Store) *DeductionRepository {
	return &DeductionRepository{s: s}
}

func (r *DeductionRepository) GetByKey(ctx context.Context, key string) (*balance.Deduction, error) {
	var out *balance.Deduction
	err := r.s.read(func(d *data) error {
		if found, ok := d.deductions[key]; ok {
			out = &found
		}
		return nil
	})
	return out, err
}

func (r *DeductionRepository) Create(ctx context.Context, ded balance.Deduction) (balance.Deduction, error) {
	err := r.s.write(ctx, func(d *data) error {
		if _, ok := d.deductions[ded.Key]; ok {
			return balance.ErrDuplicateDeduction
		}
		d.deductions[ded.Key] = ded
		return nil
	})
	return ded, err
}

func (r *DeductionRepository) ListByEmployee(ctx context.Context, employeeID string) ([]balance.Deduction, error) {
	var out []balance.Deduction
	err := r.s.read(func(d *data) error {
		for _, ded := range d.deductions {
			if ded.EmployeeID == employeeID {
				out = append(out, ded)
			}
		}
		return nil
	})
	sortBy(out, func(a, b balance.Deduction) bool { return a.CreatedAt.Before(b.CreatedAt) })
	return out, err
}

var _ balance.DeductionRepository = (*DeductionRepository)(nil)
