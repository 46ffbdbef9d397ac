package employee

import (
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

type BalanceResponse struct {
	EmployeeID            string                      `json:"employee_id"`
	PaidLeaves            string                      `json:"paid_leaves"`
	MedicalLeaves         string                      `json:"medical_leaves"`
	RestrictedHolidays    string                      `json:"restricted_holidays"`
	MaternityClaims       int                         `json:"maternity_claims"`
	PaternityClaims       int                         `json:"paternity_claims"`
	UnpaidLeavesTaken     string                      `json:"unpaid_leaves_taken"`
	CompensatoryAvailable []CompensatoryEntryResponse `json:"compensatory_available"`
}

type CompensatoryEntryResponse struct {
	ID       string `json:"id"`
	EarnedOn string `json:"earned_on"`
	Hours    string `json:"hours"`
	Status   string `json:"status"`
}

func (e Employee) ToBalanceResponse(entries []CompensatoryEntry) BalanceResponse {
	resp := BalanceResponse{
		EmployeeID:            e.ID,
		PaidLeaves:            e.Balances.PaidLeaves.String(),
		MedicalLeaves:         e.Balances.MedicalLeaves.String(),
		RestrictedHolidays:    e.Balances.RestrictedHolidays.String(),
		MaternityClaims:       e.Balances.MaternityClaims,
		PaternityClaims:       e.Balances.PaternityClaims,
		UnpaidLeavesTaken:     e.Balances.UnpaidLeavesTaken.String(),
		CompensatoryAvailable: make([]CompensatoryEntryResponse, 0, len(entries)),
	}
	for _, c := range entries {
		resp.CompensatoryAvailable = append(resp.CompensatoryAvailable, CompensatoryEntryResponse{
			ID:       c.ID,
			EarnedOn: c.EarnedOn.Format(clock.DateLayout),
			Hours:    c.Hours.String(),
			Status:   string(c.Status),
		})
	}
	return resp
}
