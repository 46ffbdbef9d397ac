package employee

import "errors"

var (
	ErrEmployeeNotFound          = errors.New("employee not found")
	ErrCompensatoryNotFound      = errors.New("compensatory entry not found")
	ErrCompensatoryNotAvailable  = errors.New("compensatory entry has already been used")
	ErrUnauthorized              = errors.New("unauthorized to access this employee")
	ErrNoApproverForDepartment   = errors.New("department has no HOD")
	ErrEmployeeInactive          = errors.New("employee is not active")
	ErrCompensatoryOwnerMismatch = errors.New("compensatory entry belongs to another employee")
)
