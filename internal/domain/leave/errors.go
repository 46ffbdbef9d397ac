package leave

import "errors"

var (
	ErrLeaveNotFound          = errors.New("leave not found")
	ErrOverlappingLeave       = errors.New("you already have a leave covering one of these dates")
	ErrSegmentsOverlap        = errors.New("segments of a composite leave must not overlap")
	ErrNoWorkingDays          = errors.New("leave covers no working days")
	ErrChargeHolderOnLeave    = errors.New("charge-holder is on leave during these dates")
	ErrChargeHolderIsSelf     = errors.New("charge cannot be given to yourself")
	ErrMedicalAlreadyUsed     = errors.New("medical leave has already been used this calendar year")
	ErrCertificateRequired    = errors.New("medical certificate is required for medical leave")
	ErrParentalClaimsExceeded = errors.New("maternity or paternity leave can be claimed at most twice")
	ErrNotRestrictedHoliday   = errors.New("restricted holiday leave must fall on restricted holidays")
	ErrCompensatoryRequired   = errors.New("compensatory leave requires a compensatory entry")
	ErrCompensatoryTooLong    = errors.New("one compensatory entry covers at most one day")
	ErrInvalidRejectedDates   = errors.New("rejected dates must be working days of the leave")
	ErrRejectedDatesStage     = errors.New("dates can only be rejected at the ceo stage")
	ErrUnauthorized           = errors.New("unauthorized to access this leave")
	ErrNotDepartmentApprover  = errors.New("only the HOD of the employee's department may decide this stage")
)

var (
	ErrCertificateNotFound    = errors.New("medical certificate not found")
	ErrCertificateInvalidType = errors.New("medical certificate must be a pdf, jpg, jpeg or png file")
	ErrCertificateTooLarge    = errors.New("medical certificate exceeds the upload size limit")
)
