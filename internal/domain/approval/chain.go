package approval

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
)

// Chain is an ordered list of stages for one request kind.
type Chain struct {
	Kind   Kind
	Stages []Stage
}

// LeaveChain: HOD approves, CEO approves, Admin acknowledges.
var LeaveChain = Chain{
	Kind: KindLeave,
	Stages: []Stage{
		{Key: "hod", Role: user.RoleHOD, Decisions: []Value{Approved, Rejected}, ReasonOnNegative: true, ForbidSelf: true, Bypassable: true},
		{Key: "ceo", Role: user.RoleCEO, Decisions: []Value{Approved, Rejected}, ReasonOnNegative: true, ForbidSelf: true, Bypassable: true},
		{Key: "admin", Role: user.RoleAdmin, Decisions: []Value{Acknowledged}},
	},
}

// ODChain: HOD gate, Admin permission, HOD approval, CEO approval, Admin
// acknowledgement.
var ODChain = Chain{
	Kind: KindOD,
	Stages: []Stage{
		{Key: "initial", Role: user.RoleHOD, Decisions: []Value{Allowed, Denied}, ReasonOnNegative: true, ForbidSelf: true, Bypassable: true},
		{Key: "admin", Role: user.RoleAdmin, Decisions: []Value{Allowed, Denied}},
		{Key: "hod", Role: user.RoleHOD, Decisions: []Value{Approved, Rejected}, ReasonOnNegative: true, ForbidSelf: true, Bypassable: true},
		{Key: "ceo", Role: user.RoleCEO, Decisions: []Value{Approved, Rejected}, ReasonOnNegative: true, ForbidSelf: true, Bypassable: true},
		{Key: "finalAdmin", Role: user.RoleAdmin, Decisions: []Value{Acknowledged}},
	},
}

// PunchMissedChain: HOD approves, Admin verifies the time, CEO approves.
var PunchMissedChain = Chain{
	Kind: KindPunchMissed,
	Stages: []Stage{
		{Key: "hod", Role: user.RoleHOD, Decisions: []Value{Approved, Rejected}, ReasonOnNegative: true, ForbidSelf: true, Bypassable: true},
		{Key: "admin", Role: user.RoleAdmin, Decisions: []Value{Approved, Rejected}},
		{Key: "ceo", Role: user.RoleCEO, Decisions: []Value{Approved, Rejected}, ReasonOnNegative: true, ForbidSelf: true, Bypassable: true},
	},
}

// Index returns the position of the stage with the given key.
func (c Chain) Index(key string) (int, bool) {
	for i, s := range c.Stages {
		if s.Key == key {
			return i, true
		}
	}
	return -1, false
}

// Legal reports whether v may be stored for the stage at index i.
func (c Chain) Legal(i int, v Value) bool {
	s := c.Stages[i]
	if v == Pending || v == NotApplicable {
		return true
	}
	if v == Submitted {
		return s.Bypassable
	}
	for _, d := range s.Decisions {
		if d == v {
			return true
		}
	}
	return false
}

// Validate checks stored values against the chain.
func (c Chain) Validate(values Values) error {
	if len(values) != len(c.Stages) {
		return ruleError(ErrCorruptState, c.Kind, "", fmt.Sprintf("expected %d stages, got %d", len(c.Stages), len(values)))
	}
	for i, v := range values {
		if !c.Legal(i, v) {
			return ruleError(ErrCorruptState, c.Kind, c.Stages[i].Key, fmt.Sprintf("illegal value %q", v))
		}
	}
	return nil
}

// IsRejected reports whether any stage holds a negative value.
func (c Chain) IsRejected(values Values) bool {
	for _, v := range values {
		if v.Negative() {
			return true
		}
	}
	return false
}

// IsCompleted reports whether every stage advanced.
func (c Chain) IsCompleted(values Values) bool {
	if len(values) != len(c.Stages) {
		return false
	}
	for _, v := range values {
		if !v.Advancing() {
			return false
		}
	}
	return true
}

// IsTerminal reports whether no further transition is legal.
func (c Chain) IsTerminal(values Values) bool {
	return c.IsRejected(values) || c.IsCompleted(values)
}

// PendingStage returns the key of the stage waiting for a decision.
func (c Chain) PendingStage(values Values) (string, bool) {
	for i, v := range values {
		if v == Pending && i < len(c.Stages) {
			return c.Stages[i].Key, true
		}
	}
	return "", false
}

// Initial returns the starting values for a request filed by submitter.
// Stages the submitter's role already covers are pre-set to Submitted.
func (c Chain) Initial(submitter user.Actor, now time.Time) Outcome {
	values := make(Values, len(c.Stages))
	for i := range values {
		values[i] = NotApplicable
	}
	out := Outcome{Values: values}
	c.unblock(&out, 0, submitter, now)
	return out
}

// Apply validates and performs one transition.
func (c Chain) Apply(current Values, d Decision, now time.Time) (Outcome, error) {
	i, ok := c.Index(d.Stage)
	if !ok {
		return Outcome{}, ruleError(ErrUnknownStage, c.Kind, d.Stage, "")
	}
	if err := c.Validate(current); err != nil {
		return Outcome{}, err
	}
	stage := c.Stages[i]

	for j := 0; j < i; j++ {
		if !current[j].Advancing() {
			return Outcome{}, ruleError(ErrOutOfOrder, c.Kind, stage.Key,
				fmt.Sprintf("%s stage is %s", c.Stages[j].Key, current[j]))
		}
	}
	if current[i] != Pending {
		if current[i] == NotApplicable {
			return Outcome{}, ruleError(ErrOutOfOrder, c.Kind, stage.Key, "stage is not open")
		}
		return Outcome{}, ruleError(ErrAlreadyDecided, c.Kind, stage.Key, fmt.Sprintf("stage is %s", current[i]))
	}
	if d.Actor.Role != stage.Role {
		return Outcome{}, ruleError(ErrForbiddenRole, c.Kind, stage.Key,
			fmt.Sprintf("requires %s, actor is %s", stage.Role, d.Actor.Role))
	}
	if d.Value == Submitted || d.Value == Pending || d.Value == NotApplicable || !c.Legal(i, d.Value) {
		return Outcome{}, ruleError(ErrIllegalValue, c.Kind, stage.Key, fmt.Sprintf("value %q", d.Value))
	}
	if stage.ForbidSelf && d.Actor.EmployeeID == d.Submitter.EmployeeID {
		return Outcome{}, ruleError(ErrSelfApproval, c.Kind, stage.Key, "")
	}
	if d.Value.Negative() && stage.ReasonOnNegative && strings.TrimSpace(d.Reason) == "" {
		return Outcome{}, ruleError(ErrMissingReason, c.Kind, stage.Key, "")
	}

	next := make(Values, len(current))
	copy(next, current)
	next[i] = d.Value

	out := Outcome{
		Values: next,
		Events: []Event{{
			Stage:     stage.Key,
			Status:    d.Value,
			Reason:    strings.TrimSpace(d.Reason),
			ActorID:   d.Actor.EmployeeID,
			ActorRole: d.Actor.Role,
			At:        now,
		}},
	}

	if d.Value.Negative() {
		for k := i + 1; k < len(next); k++ {
			next[k] = NotApplicable
		}
		out.Rejected = true
		return out, nil
	}

	c.unblock(&out, i+1, d.Submitter, now)
	return out, nil
}

// unblock opens the stage at from, skipping stages the submitter covers.
func (c Chain) unblock(out *Outcome, from int, submitter user.Actor, now time.Time) {
	for j := from; j < len(c.Stages); j++ {
		s := c.Stages[j]
		if s.Bypassable && s.Role.Rank() > 0 && submitter.Role.Rank() >= s.Role.Rank() {
			out.Values[j] = Submitted
			out.Events = append(out.Events, Event{
				Stage:     s.Key,
				Status:    Submitted,
				ActorID:   submitter.EmployeeID,
				ActorRole: submitter.Role,
				At:        now,
			})
			continue
		}
		out.Values[j] = Pending
		out.NextStage = s.Key
		return
	}
	out.Completed = true
}

// CheckLock fails with ErrExpired once a terminal request is older than
// lockDays, measured from reference.
func (c Chain) CheckLock(current Values, reference, now time.Time, lockDays int) error {
	if lockDays <= 0 || !c.IsTerminal(current) {
		return nil
	}
	if now.Sub(reference) > time.Duration(lockDays)*24*time.Hour {
		return ruleError(ErrExpired, c.Kind, "", fmt.Sprintf("locked after %d days", lockDays))
	}
	return nil
}

// Reopen is the unlock override: it sets one reachable stage of a terminal
// request back to Pending and clears every later stage.
func (c Chain) Reopen(current Values, stageKey, reason string, actor user.Actor, now time.Time) (Outcome, error) {
	i, ok := c.Index(stageKey)
	if !ok {
		return Outcome{}, ruleError(ErrUnknownStage, c.Kind, stageKey, "")
	}
	if err := c.Validate(current); err != nil {
		return Outcome{}, err
	}
	if actor.Role != user.RoleAdmin && actor.Role != user.RoleCEO {
		return Outcome{}, ruleError(ErrForbiddenRole, c.Kind, stageKey, "unlock requires Admin or CEO")
	}
	if strings.TrimSpace(reason) == "" {
		return Outcome{}, ruleError(ErrMissingReason, c.Kind, stageKey, "unlock")
	}
	if !c.IsTerminal(current) {
		return Outcome{}, ruleError(ErrNotTerminal, c.Kind, stageKey, "")
	}
	for j := 0; j < i; j++ {
		if !current[j].Advancing() {
			return Outcome{}, ruleError(ErrOutOfOrder, c.Kind, stageKey,
				fmt.Sprintf("%s stage is %s", c.Stages[j].Key, current[j]))
		}
	}

	next := make(Values, len(current))
	copy(next, current)
	next[i] = Pending
	for k := i + 1; k < len(next); k++ {
		next[k] = NotApplicable
	}

	return Outcome{
		Values:    next,
		NextStage: stageKey,
		Events: []Event{{
			Stage:     stageKey,
			Status:    Pending,
			Reason:    "unlocked: " + strings.TrimSpace(reason),
			ActorID:   actor.EmployeeID,
			ActorRole: actor.Role,
			At:        now,
		}},
	}, nil
}

// ToMap keys values by stage, the shape used in storage and responses.
func (c Chain) ToMap(values Values) map[string]Value {
	m := make(map[string]Value, len(c.Stages))
	for i, s := range c.Stages {
		if i < len(values) {
			m[s.Key] = values[i]
		}
	}
	return m
}

// FromMap is the inverse of ToMap. Missing stages are N/A.
func (c Chain) FromMap(m map[string]Value) (Values, error) {
	values := make(Values, len(c.Stages))
	for i, s := range c.Stages {
		v, ok := m[s.Key]
		if !ok {
			v = NotApplicable
		}
		values[i] = v
	}
	for k := range m {
		if _, ok := c.Index(k); !ok {
			return nil, ruleError(ErrCorruptState, c.Kind, k, "unknown stage in stored status")
		}
	}
	if err := c.Validate(values); err != nil {
		return nil, err
	}
	return values, nil
}

// Get returns the value of one stage.
func (c Chain) Get(values Values, key string) Value {
	i, ok := c.Index(key)
	if !ok || i >= len(values) {
		return NotApplicable
	}
	return values[i]
}
