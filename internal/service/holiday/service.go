package holiday

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

type HolidayServiceImpl struct {
	repo holiday.HolidayRepository
}

func NewHolidayService(repo holiday.HolidayRepository) *HolidayServiceImpl {
	return &HolidayServiceImpl{repo: repo}
}

// CreateHoliday implements holiday.HolidayService. Admin only.
func (s *HolidayServiceImpl) CreateHoliday(ctx context.Context, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	actor, ok := user.ActorFromContext(ctx)
	if !ok {
		return holiday.HolidayResponse{}, user.ErrUnauthenticated
	}
	if actor.Role != user.RoleAdmin {
		return holiday.HolidayResponse{}, user.ErrAdminAccessRequired
	}
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}

	date, _ := clock.ParseDate(req.Date)
	h, err := s.repo.Create(ctx, holiday.Holiday{
		Date: date,
		Type: holiday.Type(req.Type),
		Name: req.Name,
	})
	if err != nil {
		return holiday.HolidayResponse{}, err
	}

	slog.Info("holiday created", "date", req.Date, "type", req.Type, "actor_id", actor.EmployeeID)
	return h.ToResponse(), nil
}

// ListHolidays implements holiday.HolidayService.
func (s *HolidayServiceImpl) ListHolidays(ctx context.Context, year int) ([]holiday.HolidayResponse, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	holidays, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}

	responses := make([]holiday.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		responses = append(responses, h.ToResponse())
	}
	return responses, nil
}

// Calendar implements holiday.HolidayService.
func (s *HolidayServiceImpl) Calendar(ctx context.Context, from, to time.Time) (holiday.Calendar, error) {
	holidays, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return holiday.Calendar{}, err
	}
	return holiday.NewCalendar(holidays), nil
}

var _ holiday.HolidayService = (*HolidayServiceImpl)(nil)
