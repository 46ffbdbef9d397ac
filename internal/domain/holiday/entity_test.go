package holiday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalendar_IsNonWorking(t *testing.T) {
	cal := NewCalendar([]Holiday{
		{Date: time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC), Type: TypeYearly, Name: "Republic Day"},
		{Date: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), Type: TypeRestricted, Name: "Holi"},
	})

	assert.True(t, cal.IsNonWorking(time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)))
	assert.True(t, cal.IsNonWorking(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)), "Sunday")
	assert.False(t, cal.IsNonWorking(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)), "restricted holiday is a working day")
	assert.True(t, cal.IsRestricted(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsRestricted(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)))
}
