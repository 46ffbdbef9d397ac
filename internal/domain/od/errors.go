package od

import "errors"

var (
	ErrODNotFound            = errors.New("OD request not found")
	ErrOverlappingOD         = errors.New("you already have an OD covering this period")
	ErrInvalidWindow         = errors.New("OD must end after it starts")
	ErrUnauthorized          = errors.New("unauthorized to access this OD request")
	ErrNotDepartmentApprover = errors.New("only the HOD of the employee's department may decide this stage")
)
