package status

import "errors"

var ErrInvalidStatus = errors.New("invalid attendance status")
