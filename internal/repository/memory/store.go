// Package memory implements every repository on an in-process store. It is
// the "memory" storage driver used for local runs and service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/od"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/punchmissed"
	"github.com/google/uuid"
)

// FaultFunc lets tests fail an operation. op names the repository method,
// key identifies the row (usually an employee ID).
type FaultFunc func(op, key string) error

type data struct {
	employees       map[string]employee.Employee
	compensatory    map[string]employee.CompensatoryEntry
	deductions      map[string]balance.Deduction
	holidays        map[string]holiday.Holiday
	attendances     map[string]attendance.Attendance
	attendanceByDay map[string]string
	punches         map[string]attendance.RawPunchLog
	leaves          map[string]leave.Leave
	ods             map[string]od.OD
	punchMissed     map[string]punchmissed.PunchMissed
	notifications   map[string]notification.Notification
}

func newData() data {
	return data{
		employees:       make(map[string]employee.Employee),
		compensatory:    make(map[string]employee.CompensatoryEntry),
		deductions:      make(map[string]balance.Deduction),
		holidays:        make(map[string]holiday.Holiday),
		attendances:     make(map[string]attendance.Attendance),
		attendanceByDay: make(map[string]string),
		punches:         make(map[string]attendance.RawPunchLog),
		leaves:          make(map[string]leave.Leave),
		ods:             make(map[string]od.OD),
		punchMissed:     make(map[string]punchmissed.PunchMissed),
		notifications:   make(map[string]notification.Notification),
	}
}

func (d data) clone() data {
	c := newData()
	copyMap(c.employees, d.employees)
	copyMap(c.compensatory, d.compensatory)
	copyMap(c.deductions, d.deductions)
	copyMap(c.holidays, d.holidays)
	copyMap(c.attendances, d.attendances)
	copyMap(c.attendanceByDay, d.attendanceByDay)
	copyMap(c.punches, d.punches)
	copyMap(c.leaves, d.leaves)
	copyMap(c.ods, d.ods)
	copyMap(c.punchMissed, d.punchMissed)
	copyMap(c.notifications, d.notifications)
	return c
}

func copyMap[K comparable, V any](dst, src map[K]V) {
	for k, v := range src {
		dst[k] = v
	}
}

// Store holds all rows. Transactions are serialized and roll back by
// restoring a snapshot taken at begin.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	d    data

	faultMu sync.RWMutex
	fault   FaultFunc

	now func() time.Time
}

func NewStore() *Store {
	return &Store{d: newData(), now: time.Now}
}

// SetFault installs f; nil removes it.
func (s *Store) SetFault(f FaultFunc) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.fault = f
}

func (s *Store) check(op, key string) error {
	s.faultMu.RLock()
	f := s.fault
	s.faultMu.RUnlock()
	if f == nil {
		return nil
	}
	return f(op, key)
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// WithinTransaction implements database.Transactor. A nested call joins the
// outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.d.clone()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func (s *Store) restore(snapshot data) {
	s.mu.Lock()
	s.d = snapshot
	s.mu.Unlock()
}

// write runs fn under the write lock. Outside a transaction it also takes
// the transaction lock so a rollback cannot drop the write.
func (s *Store) write(ctx context.Context, fn func(d *data) error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.d)
}

func (s *Store) read(fn func(d *data) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.d)
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func sortBy[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

func (d *data) employeeName(id string) *string {
	if e, ok := d.employees[id]; ok {
		name := e.FullName
		return &name
	}
	return nil
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}
