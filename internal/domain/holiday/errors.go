package holiday

import "errors"

var (
	ErrHolidayExists = errors.New("a holiday already exists on this date")
	ErrInvalidType   = errors.New("holiday type must be RH or YH")
)
