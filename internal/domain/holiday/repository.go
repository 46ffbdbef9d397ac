package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	Create(ctx context.Context, h Holiday) (Holiday, error)
	// ListBetween returns holidays with from <= date <= to.
	ListBetween(ctx context.Context, from, to time.Time) ([]Holiday, error)
}
