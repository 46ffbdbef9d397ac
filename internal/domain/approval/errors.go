package approval

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfOrder     = errors.New("an earlier stage has not advanced")
	ErrConflict       = errors.New("request was modified concurrently, reload and retry")
	ErrMissingReason  = errors.New("a reason is required to reject or deny")
	ErrExpired        = errors.New("request is locked: decided more than the allowed days ago")
	ErrSelfApproval   = errors.New("cannot decide on your own request")
	ErrForbiddenRole  = errors.New("role is not allowed to act on this stage")
	ErrAlreadyDecided = errors.New("stage has already been decided")
	ErrIllegalValue   = errors.New("value is not legal for this stage")
	ErrUnknownStage   = errors.New("unknown stage")
	ErrNotTerminal    = errors.New("request is still in progress and cannot be unlocked")
	ErrCorruptState   = errors.New("stored stage values do not match the chain")
)

// RuleError names the violated rule, the chain and the stage.
type RuleError struct {
	Err    error
	Kind   Kind
	Stage  string
	Detail string
}

func (e *RuleError) Error() string {
	msg := fmt.Sprintf("%s %s stage: %v", e.Kind, e.Stage, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

func ruleError(err error, kind Kind, stage, detail string) error {
	return &RuleError{Err: err, Kind: kind, Stage: stage, Detail: detail}
}
