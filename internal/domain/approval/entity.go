package approval

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
)

// Value is the status of one stage of a chain.
type Value string

const (
	Pending       Value = "Pending"
	Submitted     Value = "Submitted"
	Approved      Value = "Approved"
	Rejected      Value = "Rejected"
	Allowed       Value = "Allowed"
	Denied        Value = "Denied"
	Acknowledged  Value = "Acknowledged"
	NotApplicable Value = "N/A"
)

// Advancing values let the next stage proceed.
func (v Value) Advancing() bool {
	switch v {
	case Submitted, Approved, Allowed, Acknowledged:
		return true
	}
	return false
}

// Negative values end the chain.
func (v Value) Negative() bool {
	return v == Rejected || v == Denied
}

type Kind string

const (
	KindLeave       Kind = "leave"
	KindOD          Kind = "od"
	KindPunchMissed Kind = "punch_missed"
)

// Stage is one named step of a chain and the role allowed to decide it.
type Stage struct {
	Key  string
	Role user.Role
	// Decisions are the values an actor may move the stage to.
	Decisions []Value
	// ReasonOnNegative requires a remark when the decision is negative.
	ReasonOnNegative bool
	// ForbidSelf stops an actor from deciding on their own request.
	ForbidSelf bool
	// Bypassable stages are pre-set to Submitted when the submitter's role
	// is at or above the stage role.
	Bypassable bool
}

// Values holds the value of every stage, in chain order.
type Values []Value

// Event is one append-only history entry.
type Event struct {
	Stage     string    `json:"stage"`
	Status    Value     `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	ActorID   string    `json:"actor_id"`
	ActorRole user.Role `json:"actor_role"`
	At        time.Time `json:"at"`
}

// Decision is a request to move one stage away from Pending.
type Decision struct {
	Stage     string
	Value     Value
	Reason    string
	Actor     user.Actor
	Submitter user.Actor
}

// Outcome is the result of a successful transition.
type Outcome struct {
	Values    Values
	Events    []Event
	NextStage string // stage now Pending; empty when terminal
	Completed bool   // last stage reached an advancing value
	Rejected  bool
}

// History is the append-only audit trail of a request.
type History []Event

// Value implements driver.Valuer for JSONB storage
func (h History) Value() (driver.Value, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner for JSONB retrieval
func (h *History) Scan(value interface{}) error {
	if value == nil {
		*h = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("failed to scan History: invalid type")
	}
	return json.Unmarshal(data, h)
}
