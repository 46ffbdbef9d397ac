package approval

import (
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow      = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	testEmployee = user.Actor{EmployeeID: "E001", Role: user.RoleEmployee}
	testHOD      = user.Actor{EmployeeID: "H001", Role: user.RoleHOD}
	testAdmin    = user.Actor{EmployeeID: "A001", Role: user.RoleAdmin}
	testCEO      = user.Actor{EmployeeID: "C001", Role: user.RoleCEO}
)

func decide(t *testing.T, c Chain, values Values, stage string, v Value, actor, submitter user.Actor, reason string) Outcome {
	t.Helper()
	out, err := c.Apply(values, Decision{Stage: stage, Value: v, Actor: actor, Submitter: submitter, Reason: reason}, testNow)
	require.NoError(t, err)
	return out
}

func TestChain_Initial_Employee(t *testing.T) {
	out := LeaveChain.Initial(testEmployee, testNow)

	assert.Equal(t, Values{Pending, NotApplicable, NotApplicable}, out.Values)
	assert.Equal(t, "hod", out.NextStage)
	assert.Empty(t, out.Events)
	assert.False(t, out.Completed)
}

func TestChain_Initial_HODBypassesOwnStage(t *testing.T) {
	out := LeaveChain.Initial(testHOD, testNow)

	assert.Equal(t, Values{Submitted, Pending, NotApplicable}, out.Values)
	assert.Equal(t, "ceo", out.NextStage)
	require.Len(t, out.Events, 1)
	assert.Equal(t, "hod", out.Events[0].Stage)
	assert.Equal(t, Submitted, out.Events[0].Status)
}

func TestChain_Initial_CEOBypassesHODAndCEO(t *testing.T) {
	out := LeaveChain.Initial(testCEO, testNow)

	assert.Equal(t, Values{Submitted, Submitted, Pending}, out.Values)
	assert.Equal(t, "admin", out.NextStage)
}

func TestChain_LeaveHODApproveThenCEOReject(t *testing.T) {
	values := LeaveChain.Initial(testEmployee, testNow).Values

	out := decide(t, LeaveChain, values, "hod", Approved, testHOD, testEmployee, "")
	assert.Equal(t, Values{Approved, Pending, NotApplicable}, out.Values)
	assert.Equal(t, "ceo", out.NextStage)

	out = decide(t, LeaveChain, out.Values, "ceo", Rejected, testCEO, testEmployee, "project deadline")
	assert.Equal(t, Values{Approved, Rejected, NotApplicable}, out.Values)
	assert.True(t, out.Rejected)
	assert.True(t, LeaveChain.IsTerminal(out.Values))
	assert.Empty(t, out.NextStage)

	_, err := LeaveChain.Apply(out.Values, Decision{Stage: "admin", Value: Acknowledged, Actor: testAdmin, Submitter: testEmployee}, testNow)
	assert.ErrorIs(t, err, ErrOutOfOrder)
}

func TestChain_LeaveFullyAcknowledged(t *testing.T) {
	values := LeaveChain.Initial(testEmployee, testNow).Values
	values = decide(t, LeaveChain, values, "hod", Approved, testHOD, testEmployee, "").Values
	values = decide(t, LeaveChain, values, "ceo", Approved, testCEO, testEmployee, "").Values
	out := decide(t, LeaveChain, values, "admin", Acknowledged, testAdmin, testEmployee, "")

	assert.True(t, out.Completed)
	assert.True(t, LeaveChain.IsCompleted(out.Values))
	assert.Equal(t, Values{Approved, Approved, Acknowledged}, out.Values)
}

func TestChain_ODInitialDeniedCascades(t *testing.T) {
	values := ODChain.Initial(testEmployee, testNow).Values
	out := decide(t, ODChain, values, "initial", Denied, testHOD, testEmployee, "not needed")

	assert.Equal(t, Values{Denied, NotApplicable, NotApplicable, NotApplicable, NotApplicable}, out.Values)
	assert.True(t, ODChain.IsTerminal(out.Values))

	_, err := ODChain.Apply(out.Values, Decision{Stage: "admin", Value: Allowed, Actor: testAdmin, Submitter: testEmployee}, testNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfOrder)

	var ruleErr *RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, KindOD, ruleErr.Kind)
	assert.Equal(t, "admin", ruleErr.Stage)
}

func TestChain_ODFullOrder(t *testing.T) {
	values := ODChain.Initial(testEmployee, testNow).Values
	values = decide(t, ODChain, values, "initial", Allowed, testHOD, testEmployee, "").Values
	values = decide(t, ODChain, values, "admin", Allowed, testAdmin, testEmployee, "").Values
	values = decide(t, ODChain, values, "hod", Approved, testHOD, testEmployee, "").Values
	values = decide(t, ODChain, values, "ceo", Approved, testCEO, testEmployee, "").Values
	out := decide(t, ODChain, values, "finalAdmin", Acknowledged, testAdmin, testEmployee, "")

	assert.True(t, out.Completed)
	assert.Equal(t, Values{Allowed, Allowed, Approved, Approved, Acknowledged}, out.Values)
}

func TestChain_ODHODSubmitterSkipsHODStages(t *testing.T) {
	values := ODChain.Initial(testHOD, testNow).Values
	assert.Equal(t, Values{Submitted, Pending, NotApplicable, NotApplicable, NotApplicable}, values)

	out := decide(t, ODChain, values, "admin", Allowed, testAdmin, testHOD, "")
	assert.Equal(t, Values{Submitted, Allowed, Submitted, Pending, NotApplicable}, out.Values)
	assert.Equal(t, "ceo", out.NextStage)
	require.Len(t, out.Events, 2)
	assert.Equal(t, "hod", out.Events[1].Stage)
}

func TestChain_Apply_Rules(t *testing.T) {
	fresh := LeaveChain.Initial(testEmployee, testNow).Values
	hodDone := Values{Approved, Pending, NotApplicable}

	tests := []struct {
		name     string
		values   Values
		decision Decision
		want     error
	}{
		{
			name:     "unknown stage",
			values:   fresh,
			decision: Decision{Stage: "finance", Value: Approved, Actor: testHOD, Submitter: testEmployee},
			want:     ErrUnknownStage,
		},
		{
			name:     "ceo before hod",
			values:   fresh,
			decision: Decision{Stage: "ceo", Value: Approved, Actor: testCEO, Submitter: testEmployee},
			want:     ErrOutOfOrder,
		},
		{
			name:     "wrong role",
			values:   fresh,
			decision: Decision{Stage: "hod", Value: Approved, Actor: testAdmin, Submitter: testEmployee},
			want:     ErrForbiddenRole,
		},
		{
			name:     "illegal value",
			values:   fresh,
			decision: Decision{Stage: "hod", Value: Acknowledged, Actor: testHOD, Submitter: testEmployee},
			want:     ErrIllegalValue,
		},
		{
			name:     "submitted is not a decision",
			values:   fresh,
			decision: Decision{Stage: "hod", Value: Submitted, Actor: testHOD, Submitter: testEmployee},
			want:     ErrIllegalValue,
		},
		{
			name:     "reject without reason",
			values:   fresh,
			decision: Decision{Stage: "hod", Value: Rejected, Reason: "   ", Actor: testHOD, Submitter: testEmployee},
			want:     ErrMissingReason,
		},
		{
			name:     "already decided",
			values:   hodDone,
			decision: Decision{Stage: "hod", Value: Rejected, Reason: "changed mind", Actor: testHOD, Submitter: testEmployee},
			want:     ErrAlreadyDecided,
		},
		{
			name:     "self approval",
			values:   hodDone,
			decision: Decision{Stage: "ceo", Value: Approved, Actor: testCEO, Submitter: user.Actor{EmployeeID: testCEO.EmployeeID, Role: user.RoleEmployee}},
			want:     ErrSelfApproval,
		},
		{
			name:     "corrupt stored values",
			values:   Values{Approved, Acknowledged, NotApplicable},
			decision: Decision{Stage: "admin", Value: Acknowledged, Actor: testAdmin, Submitter: testEmployee},
			want:     ErrCorruptState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LeaveChain.Apply(tt.values, tt.decision, testNow)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestChain_Apply_AdminRejectNeedsNoReason(t *testing.T) {
	values := PunchMissedChain.Initial(testEmployee, testNow).Values
	values = decide(t, PunchMissedChain, values, "hod", Approved, testHOD, testEmployee, "").Values

	out := decide(t, PunchMissedChain, values, "admin", Rejected, testAdmin, testEmployee, "")
	assert.Equal(t, Values{Approved, Rejected, NotApplicable}, out.Values)
}

func TestChain_Apply_DoesNotMutateInput(t *testing.T) {
	values := LeaveChain.Initial(testEmployee, testNow).Values
	before := append(Values(nil), values...)

	decide(t, LeaveChain, values, "hod", Approved, testHOD, testEmployee, "")
	assert.Equal(t, before, values)
}

func TestChain_RejectedIsMonotonic(t *testing.T) {
	values := Values{Approved, Rejected, NotApplicable}
	for i, stage := range LeaveChain.Stages {
		_, err := LeaveChain.Apply(values, Decision{Stage: stage.Key, Value: stage.Decisions[0], Actor: user.Actor{EmployeeID: "X", Role: stage.Role}, Submitter: testEmployee, Reason: "r"}, testNow)
		assert.Error(t, err, "stage %d", i)
	}
}

func TestChain_CheckLock(t *testing.T) {
	terminal := Values{Approved, Approved, Acknowledged}
	inFlight := Values{Approved, Pending, NotApplicable}
	old := testNow.AddDate(0, 0, -31)
	recent := testNow.AddDate(0, 0, -29)

	assert.ErrorIs(t, LeaveChain.CheckLock(terminal, old, testNow, 30), ErrExpired)
	assert.NoError(t, LeaveChain.CheckLock(terminal, recent, testNow, 30))
	assert.NoError(t, LeaveChain.CheckLock(inFlight, old, testNow, 30))
	assert.NoError(t, LeaveChain.CheckLock(terminal, old, testNow, 0))
}

func TestChain_Reopen(t *testing.T) {
	terminal := Values{Approved, Rejected, NotApplicable}

	out, err := LeaveChain.Reopen(terminal, "ceo", "wrong decision", testAdmin, testNow)
	require.NoError(t, err)
	assert.Equal(t, Values{Approved, Pending, NotApplicable}, out.Values)
	assert.Equal(t, "ceo", out.NextStage)
	require.Len(t, out.Events, 1)
	assert.Contains(t, out.Events[0].Reason, "wrong decision")

	_, err = LeaveChain.Reopen(terminal, "ceo", "", testAdmin, testNow)
	assert.ErrorIs(t, err, ErrMissingReason)

	_, err = LeaveChain.Reopen(terminal, "ceo", "x", testHOD, testNow)
	assert.ErrorIs(t, err, ErrForbiddenRole)

	_, err = LeaveChain.Reopen(Values{Approved, Pending, NotApplicable}, "hod", "x", testAdmin, testNow)
	assert.ErrorIs(t, err, ErrNotTerminal)

	_, err = LeaveChain.Reopen(terminal, "admin", "x", testAdmin, testNow)
	assert.ErrorIs(t, err, ErrOutOfOrder)
}

func TestChain_Validate(t *testing.T) {
	assert.NoError(t, ODChain.Validate(Values{Allowed, Pending, NotApplicable, NotApplicable, NotApplicable}))
	assert.ErrorIs(t, ODChain.Validate(Values{Allowed}), ErrCorruptState)
	assert.ErrorIs(t, ODChain.Validate(Values{Approved, Pending, NotApplicable, NotApplicable, NotApplicable}), ErrCorruptState)
}

func TestChain_MapRoundTrip(t *testing.T) {
	values := Values{Allowed, Allowed, Pending, NotApplicable, NotApplicable}
	m := ODChain.ToMap(values)
	assert.Equal(t, Pending, m["hod"])
	assert.Equal(t, Allowed, m["initial"])

	back, err := ODChain.FromMap(m)
	require.NoError(t, err)
	assert.Equal(t, values, back)

	_, err = ODChain.FromMap(map[string]Value{"finance": Approved})
	assert.ErrorIs(t, err, ErrCorruptState)

	assert.Equal(t, Pending, ODChain.Get(values, "hod"))
	assert.Equal(t, NotApplicable, ODChain.Get(values, "nope"))
}
