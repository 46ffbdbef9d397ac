package holiday

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminCtx() context.Context {
	return user.WithActor(context.Background(), user.Actor{EmployeeID: "A001", Role: user.RoleAdmin})
}

func TestCreateHoliday(t *testing.T) {
	svc := NewHolidayService(memory.NewHolidayRepository(memory.NewStore()))

	resp, err := svc.CreateHoliday(adminCtx(), holiday.CreateHolidayRequest{Date: "2025-08-15", Type: "YH", Name: "Independence Day"})
	require.NoError(t, err)
	assert.Equal(t, "2025-08-15", resp.Date)
	assert.Equal(t, "YH", resp.Type)
	assert.NotEmpty(t, resp.ID)

	_, err = svc.CreateHoliday(adminCtx(), holiday.CreateHolidayRequest{Date: "2025-08-15", Type: "RH", Name: "Duplicate"})
	assert.ErrorIs(t, err, holiday.ErrHolidayExists)
}

func TestCreateHoliday_Rejections(t *testing.T) {
	svc := NewHolidayService(memory.NewHolidayRepository(memory.NewStore()))
	req := holiday.CreateHolidayRequest{Date: "2025-08-15", Type: "YH", Name: "Independence Day"}

	_, err := svc.CreateHoliday(context.Background(), req)
	assert.ErrorIs(t, err, user.ErrUnauthenticated)

	hod := user.WithActor(context.Background(), user.Actor{EmployeeID: "H001", Role: user.RoleHOD})
	_, err = svc.CreateHoliday(hod, req)
	assert.ErrorIs(t, err, user.ErrAdminAccessRequired)

	_, err = svc.CreateHoliday(adminCtx(), holiday.CreateHolidayRequest{Date: "15/08/2025", Type: "PH"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, map[string]string{
		"date": "date must be in YYYY-MM-DD format",
		"type": "type must be one of: RH, YH",
		"name": "name is required",
	}, verrs.ToMap())
}

func TestListHolidaysAndCalendar(t *testing.T) {
	svc := NewHolidayService(memory.NewHolidayRepository(memory.NewStore()))
	for _, req := range []holiday.CreateHolidayRequest{
		{Date: "2025-10-02", Type: "YH", Name: "Gandhi Jayanti"},
		{Date: "2025-03-14", Type: "RH", Name: "Holi"},
		{Date: "2026-01-26", Type: "YH", Name: "Republic Day"},
	} {
		_, err := svc.CreateHoliday(adminCtx(), req)
		require.NoError(t, err)
	}

	list, err := svc.ListHolidays(context.Background(), 2025)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2025-03-14", list[0].Date)
	assert.Equal(t, "2025-10-02", list[1].Date)

	cal, err := svc.Calendar(context.Background(),
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, cal.IsRestricted(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsNonWorking(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsYearly(time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC)), "outside the loaded range")
}
