// Package servicetest wires the services' collaborators on the memory store
// for tests.
package servicetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/memory"
	ledgersvc "github.com/cmlabs-hris/hrms-backend-go/internal/service/balance"
	holidaysvc "github.com/cmlabs-hris/hrms-backend-go/internal/service/holiday"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/workflow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Notifier records every notification instead of sending it.
type Notifier struct {
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (n *Notifier) Notify(ctx context.Context, req notification.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, req)
	return nil
}

// Recipients lists who was notified, in order.
func (n *Notifier) Recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]string, 0, len(n.sent))
	for _, r := range n.sent {
		ids = append(ids, r.RecipientID)
	}
	return ids
}

func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
}

type Env struct {
	Store        *memory.Store
	Employees    *memory.EmployeeRepository
	Compensatory *memory.CompensatoryRepository
	Deductions   *memory.DeductionRepository
	Holidays     *memory.HolidayRepository
	Leaves       *memory.LeaveRepository
	ODs          *memory.ODRepository
	PunchMissed  *memory.PunchMissedRepository
	Attendances  *memory.AttendanceRepository
	Punches      *memory.RawPunchLogRepository

	Notifier       *Notifier
	Flow           *workflow.Helper
	Ledger         *ledgersvc.LedgerImpl
	HolidayService *holidaysvc.HolidayServiceImpl
}

// Staff seeded by NewEnv.
const (
	Employee1 = "E001" // ENG, 5 paid leaves, 6 medical, 2 restricted holidays
	Employee2 = "E002" // ENG, no balance
	HOD       = "H001" // ENG
	OtherHOD  = "H002" // OPS
	Admin     = "A001"
	CEO       = "C001"
)

// NewEnv builds the repositories on a fresh store and seeds the staff.
// A non-zero now fixes the approval clock.
func NewEnv(t *testing.T, now time.Time) *Env {
	t.Helper()

	store := memory.NewStore()
	env := &Env{
		Store:        store,
		Employees:    memory.NewEmployeeRepository(store),
		Compensatory: memory.NewCompensatoryRepository(store),
		Deductions:   memory.NewDeductionRepository(store),
		Holidays:     memory.NewHolidayRepository(store),
		Leaves:       memory.NewLeaveRepository(store),
		ODs:          memory.NewODRepository(store),
		PunchMissed:  memory.NewPunchMissedRepository(store),
		Attendances:  memory.NewAttendanceRepository(store),
		Punches:      memory.NewRawPunchLogRepository(store),
		Notifier:     &Notifier{},
	}
	env.Flow = workflow.NewHelper(env.Employees, env.Notifier, nil, 0)
	if !now.IsZero() {
		env.Flow.SetClock(func() time.Time { return now })
	}
	env.Ledger = ledgersvc.NewLedger(store, env.Employees, env.Compensatory, env.Deductions)
	env.HolidayService = holidaysvc.NewHolidayService(env.Holidays)

	require.NoError(t, env.Employees.Seed(context.Background(),
		employee.Employee{ID: Employee1, FullName: "Asha Rao", DepartmentID: "ENG", Role: user.RoleEmployee,
			Balances: employee.Balances{
				PaidLeaves:         decimal.NewFromInt(5),
				MedicalLeaves:      decimal.NewFromInt(6),
				RestrictedHolidays: decimal.NewFromInt(2),
			}},
		employee.Employee{ID: Employee2, FullName: "Ravi Kumar", DepartmentID: "ENG", Role: user.RoleEmployee},
		employee.Employee{ID: HOD, FullName: "Meera Nair", DepartmentID: "ENG", Role: user.RoleHOD},
		employee.Employee{ID: OtherHOD, FullName: "Vikram Shah", DepartmentID: "OPS", Role: user.RoleHOD},
		employee.Employee{ID: Admin, FullName: "Farah Khan", DepartmentID: "HR", Role: user.RoleAdmin},
		employee.Employee{ID: CEO, FullName: "Anil Menon", DepartmentID: "MGMT", Role: user.RoleCEO},
	))
	return env
}

// As returns a context carrying the given actor.
func As(id string, role user.Role) context.Context {
	return user.WithActor(context.Background(), user.Actor{EmployeeID: id, Role: role})
}
