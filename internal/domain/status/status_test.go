package status

import (
	"encoding/json"
	"testing"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	cases := []struct {
		name   string
		status Status
		want   string
	}{
		{"present", Whole(Present()), "Present"},
		{"open", Whole(PresentOpen()), "Present(-)"},
		{"awi", Whole(AWI()), "AWI"},
		{"la pending", Whole(LateArrival(LAApprovalPending)), "Present [LA: Approval Pending]"},
		{"la deducted", Whole(LateArrivalDeducted(DeductCompensatory)), "Present [LA: Deducted(Compensatory)]"},
		{"full day od", Whole(ODFullDay()), "Present (OD: 9:00 to 5:30)"},
		{"half day", Whole(HalfDay(HalfDayFirstHalf)), "Present (HD: First Half)"},
		{
			"split la",
			Halves(LateArrival(LAApprovalPending), Present()),
			"FN: Present [LA: Approval Pending] & AN: Present",
		},
		{
			"split od",
			Halves(OD(clock.At(9, 30, 0), clock.At(12, 45, 0)), PresentOpen()),
			"FN: OD: 09:30 to 12:45 & AN: Present(-)",
		},
		{"equal halves collapse", Halves(Leave(LeaveApproved), Leave(LeaveApproved)), "Leave (Approved)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.status.String())
			assert.NoError(t, c.status.Validate())
		})
	}
}

func TestParse_AcceptsEveryRenderedStatus(t *testing.T) {
	inputs := []string{
		"Present",
		"Present(-)",
		"Absent",
		"AWI",
		"Present (LA)",
		"Present [LA: Denied]",
		"Present [LA: Deducted(Salary)]",
		"Leave (Approval Pending)",
		"OD: 14:00 to 17:30",
		"Present (HD)",
		"FN: Leave (Approved) & AN: Present",
		"FN: Present [LA: Allowed] & AN: OD: 13:30 to 16:00",
		"FN: AWI & AN: Leave (Approved)",
	}
	for _, in := range inputs {
		st, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, st.String())
	}
}

func TestParse_RejectsOutsideVocabulary(t *testing.T) {
	invalid := []string{
		"",
		"present",
		"Present [LA: Maybe]",
		"FN: Present",
		"FN: Present & AN: Holiday",
		"OD: 17:00 to 09:00",
		"FN: Present (OD: 9:00 to 5:30) & AN: Present",
	}
	for _, in := range invalid {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidStatus, in)
	}
}

func TestStatus_With(t *testing.T) {
	st := Whole(AWI()).With(FN, Leave(LeaveApproved))
	assert.Equal(t, "FN: Leave (Approved) & AN: AWI", st.String())
	assert.True(t, st.HalfHas(FN, KindLeave))
	assert.False(t, st.HalfHas(AN, KindLeave))

	st = st.With(AN, Leave(LeaveApproved))
	assert.False(t, st.IsSplit())
	assert.Equal(t, "Leave (Approved)", st.String())

	st = Whole(ODFullDay()).With(AN, Absent())
	assert.Equal(t, "FN: Present & AN: Absent", st.String())
}

func TestAtom_ValidateRejectsStrayModifiers(t *testing.T) {
	assert.ErrorIs(t, Atom{Kind: KindPresent, LA: LAAllowed}.Validate(), ErrInvalidStatus)
	assert.ErrorIs(t, Atom{Kind: KindLateArrival, LA: LADeducted}.Validate(), ErrInvalidStatus)
	assert.ErrorIs(t, Atom{Kind: KindLeave}.Validate(), ErrInvalidStatus)
	assert.ErrorIs(t, Atom{Kind: "holiday"}.Validate(), ErrInvalidStatus)
	assert.ErrorIs(t, Status{}.Validate(), ErrInvalidStatus)
}

func TestStatus_Boundary(t *testing.T) {
	st := Halves(LateArrival(LAApprovalPending), Present())

	v, err := st.Value()
	require.NoError(t, err)
	assert.Equal(t, "FN: Present [LA: Approval Pending] & AN: Present", v)

	var scanned Status
	require.NoError(t, scanned.Scan([]byte(v.(string))))
	assert.Equal(t, st, scanned)

	data, err := json.Marshal(map[string]Status{"status": st})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"FN: Present [LA: Approval Pending] & AN: Present"}`, string(data))

	var decoded map[string]Status
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, st, decoded["status"])

	var zero Status
	v, err = zero.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
