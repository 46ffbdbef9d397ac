package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

type HolidayRepository struct {
	s *Store
}

func NewHolidayRepository(s *Store) *HolidayRepository {
	return &HolidayRepository{s: s}
}

func (r *HolidayRepository) Create(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	err := r.s.write(ctx, func(d *data) error {
		for _, existing := range d.holidays {
			if clock.SameDay(existing.Date, h.Date) {
				return holiday.ErrHolidayExists
			}
		}
		h.ID = newID()
		h.Date = clock.Date(h.Date)
		h.CreatedAt = r.s.now()
		d.holidays[h.ID] = h
		return nil
	})
	return h, err
}

func (r *HolidayRepository) ListBetween(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	from, to = clock.Date(from), clock.Date(to)
	var out []holiday.Holiday
	err := r.s.read(func(d *data) error {
		for _, h := range d.holidays {
			if !h.Date.Before(from) && !h.Date.After(to) {
				out = append(out, h)
			}
		}
		return nil
	})
	sortBy(out, func(a, b holiday.Holiday) bool { return a.Date.Before(b.Date) })
	return out, err
}

var _ holiday.HolidayRepository = (*HolidayRepository)(nil)
