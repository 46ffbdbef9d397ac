package holiday

import (
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

type Type string

const (
	// TypeRestricted holidays are optional: they count as leave days when an
	// employee takes them as restricted-holiday leave.
	TypeRestricted Type = "RH"
	// TypeYearly holidays are closed days for everyone.
	TypeYearly Type = "YH"
)

func (t Type) IsValid() bool {
	return t == TypeRestricted || t == TypeYearly
}

type Holiday struct {
	ID        string
	Date      time.Time
	Type      Type
	Name      string
	CreatedAt time.Time
}

// Calendar answers day-type questions for a loaded date range.
type Calendar struct {
	days map[string]Holiday
}

func NewCalendar(holidays []Holiday) Calendar {
	days := make(map[string]Holiday, len(holidays))
	for _, h := range holidays {
		days[h.Date.Format(clock.DateLayout)] = h
	}
	return Calendar{days: days}
}

func (c Calendar) Lookup(date time.Time) (Holiday, bool) {
	h, ok := c.days[date.Format(clock.DateLayout)]
	return h, ok
}

func (c Calendar) IsYearly(date time.Time) bool {
	h, ok := c.Lookup(date)
	return ok && h.Type == TypeYearly
}

func (c Calendar) IsRestricted(date time.Time) bool {
	h, ok := c.Lookup(date)
	return ok && h.Type == TypeRestricted
}

// IsNonWorking reports Sundays and yearly holidays. These are never counted
// as leave days and never marked AWI.
func (c Calendar) IsNonWorking(date time.Time) bool {
	return date.Weekday() == time.Sunday || c.IsYearly(date)
}
