package holiday

import (
	"context"
	"time"
)

type HolidayService interface {
	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	ListHolidays(ctx context.Context, year int) ([]HolidayResponse, error)
	// Calendar loads the holidays covering from..to.
	Calendar(ctx context.Context, from, to time.Time) (Calendar, error)
}
