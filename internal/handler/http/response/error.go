package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/approval"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/od"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/punchmissed"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var balanceErr *balance.InsufficientBalanceError
	if errors.As(err, &balanceErr) {
		BadRequest(w, balanceErr.Error(), map[string]string{
			"counter":   string(balanceErr.Counter),
			"available": balanceErr.Available.String(),
			"requested": balanceErr.Requested.String(),
		})
		return
	}

	var ruleErr *approval.RuleError
	if errors.As(err, &ruleErr) {
		handleRuleError(w, ruleErr)
		return
	}

	switch {
	// Auth
	case errors.Is(err, user.ErrUnauthenticated):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrAdminAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Not found
	case errors.Is(err, leave.ErrLeaveNotFound),
		errors.Is(err, leave.ErrCertificateNotFound),
		errors.Is(err, od.ErrODNotFound),
		errors.Is(err, punchmissed.ErrPunchMissedNotFound),
		errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, employee.ErrCompensatoryNotFound),
		errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, err.Error())

	// Access to another employee's records or stage
	case errors.Is(err, leave.ErrUnauthorized),
		errors.Is(err, od.ErrUnauthorized),
		errors.Is(err, punchmissed.ErrUnauthorized),
		errors.Is(err, attendance.ErrUnauthorized),
		errors.Is(err, employee.ErrUnauthorized),
		errors.Is(err, leave.ErrNotDepartmentApprover),
		errors.Is(err, od.ErrNotDepartmentApprover),
		errors.Is(err, punchmissed.ErrNotDepartmentApprover),
		errors.Is(err, attendance.ErrLateArrivalSelf),
		errors.Is(err, attendance.ErrLateArrivalForbidden):
		Forbidden(w, err.Error())

	// Concurrent or repeated writes
	case errors.Is(err, approval.ErrConflict),
		errors.Is(err, attendance.ErrVersionConflict),
		errors.Is(err, balance.ErrDuplicateDeduction),
		errors.Is(err, holiday.ErrHolidayExists),
		errors.Is(err, punchmissed.ErrMonthlyLimitReached),
		errors.Is(err, employee.ErrCompensatoryNotAvailable),
		errors.Is(err, leave.ErrOverlappingLeave),
		errors.Is(err, od.ErrOverlappingOD):
		Conflict(w, err.Error())

	case errors.Is(err, attendance.ErrTransientIO),
		errors.Is(err, notification.ErrQueueFull),
		errors.Is(err, notification.ErrStopped):
		ServiceUnavailable(w, err.Error())

	// Business rule violations on the submitted data
	case errors.Is(err, balance.ErrInsufficientBalance),
		errors.Is(err, balance.ErrNothingToDeduct),
		errors.Is(err, leave.ErrSegmentsOverlap),
		errors.Is(err, leave.ErrNoWorkingDays),
		errors.Is(err, leave.ErrChargeHolderOnLeave),
		errors.Is(err, leave.ErrChargeHolderIsSelf),
		errors.Is(err, leave.ErrMedicalAlreadyUsed),
		errors.Is(err, leave.ErrCertificateRequired),
		errors.Is(err, leave.ErrCertificateInvalidType),
		errors.Is(err, leave.ErrCertificateTooLarge),
		errors.Is(err, leave.ErrParentalClaimsExceeded),
		errors.Is(err, leave.ErrNotRestrictedHoliday),
		errors.Is(err, leave.ErrCompensatoryRequired),
		errors.Is(err, leave.ErrCompensatoryTooLong),
		errors.Is(err, leave.ErrInvalidRejectedDates),
		errors.Is(err, leave.ErrRejectedDatesStage),
		errors.Is(err, od.ErrInvalidWindow),
		errors.Is(err, punchmissed.ErrFutureDate),
		errors.Is(err, punchmissed.ErrAdminInputStage),
		errors.Is(err, holiday.ErrInvalidType),
		errors.Is(err, attendance.ErrNotLateArrival),
		errors.Is(err, attendance.ErrLateArrivalNotOpen),
		errors.Is(err, attendance.ErrLateArrivalReason),
		errors.Is(err, employee.ErrEmployeeInactive),
		errors.Is(err, employee.ErrNoApproverForDepartment),
		errors.Is(err, employee.ErrCompensatoryOwnerMismatch):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}

func handleRuleError(w http.ResponseWriter, err *approval.RuleError) {
	details := map[string]string{
		"kind":  string(err.Kind),
		"stage": err.Stage,
	}
	if err.Detail != "" {
		details["detail"] = err.Detail
	}

	switch {
	case errors.Is(err, approval.ErrSelfApproval),
		errors.Is(err, approval.ErrForbiddenRole):
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), details)
	case errors.Is(err, approval.ErrConflict),
		errors.Is(err, approval.ErrAlreadyDecided),
		errors.Is(err, approval.ErrExpired),
		errors.Is(err, approval.ErrNotTerminal):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error(), details)
	case errors.Is(err, approval.ErrCorruptState):
		InternalServerError(w, "An unexpected error occurred")
	default:
		BadRequest(w, err.Error(), details)
	}
}
