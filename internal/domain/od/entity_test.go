package od

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
)

func TestOD_WindowOn(t *testing.T) {
	o := OD{
		DateOut: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		TimeOut: clock.At(14, 0, 0),
		DateIn:  time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		TimeIn:  clock.At(12, 0, 0),
	}

	from, to, full := o.WindowOn(o.DateOut)
	assert.Equal(t, clock.At(14, 0, 0), from)
	assert.Equal(t, DayEnd, to)
	assert.False(t, full)

	_, _, full = o.WindowOn(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.True(t, full)

	from, to, _ = o.WindowOn(o.DateIn)
	assert.Equal(t, DayStart, from)
	assert.Equal(t, clock.At(12, 0, 0), to)

	assert.False(t, o.Covers(time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)))
}

func TestPunchPairs_Replace(t *testing.T) {
	in := "09:00:00"
	later := "09:30:00"
	ps := PunchPairs{{Date: "2026-03-09", In: &in}, {Date: "2026-03-10", In: &in}}

	ps = ps.Replace(PunchPair{Date: "2026-03-09", In: &later})

	assert.Len(t, ps, 2)
	assert.Equal(t, "2026-03-10", ps[0].Date)
	assert.Equal(t, &later, ps[1].In)
}

func TestSubmitODRequest_Validate(t *testing.T) {
	req := SubmitODRequest{DateOut: "2026-03-09", TimeOut: "14:00", DateIn: "2026-03-09", TimeIn: "13:00", Purpose: "audit", PlaceUnitVisit: "Plant 2"}
	assert.Error(t, req.Validate())

	req.TimeIn = "16:00:00"
	assert.NoError(t, req.Validate())
	assert.Equal(t, clock.At(16, 0, 0), req.ParsedTimeIn)
}
