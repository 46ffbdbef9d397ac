package status

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
)

const (
	fnPrefix  = "FN: "
	separator = " & AN: "
)

var fixedAtoms = map[string]Atom{
	"Present":                              Present(),
	"Present(-)":                           PresentOpen(),
	"Absent":                               Absent(),
	"AWI":                                  AWI(),
	"Present (LA)":                         LateArrival(LANotRequired),
	"Present [LA: Approval Pending]":       LateArrival(LAApprovalPending),
	"Present [LA: Allowed]":                LateArrival(LAAllowed),
	"Present [LA: Denied]":                 LateArrival(LADenied),
	"Present [LA: Deducted(CL)]":           LateArrivalDeducted(DeductCL),
	"Present [LA: Deducted(Compensatory)]": LateArrivalDeducted(DeductCompensatory),
	"Present [LA: Deducted(Salary)]":       LateArrivalDeducted(DeductSalary),
	"Leave (Approved)":                     Leave(LeaveApproved),
	"Leave (Approval Pending)":             Leave(LeaveApprovalPending),
	"Present (OD: 9:00 to 5:30)":           ODFullDay(),
	"Present (HD)":                         HalfDay(HalfDayUnspecified),
	"Present (HD: First Half)":             HalfDay(HalfDayFirstHalf),
	"Present (HD: Afternoon)":              HalfDay(HalfDayAfternoon),
}

// Parse reads a display string back into a Status. Anything outside the
// vocabulary is rejected with ErrInvalidStatus.
func Parse(s string) (Status, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, fnPrefix) {
		body := strings.TrimPrefix(s, fnPrefix)
		idx := strings.Index(body, separator)
		if idx < 0 {
			return Status{}, fmt.Errorf("%w: %q has no AN half", ErrInvalidStatus, s)
		}
		fn, err := parseAtom(body[:idx])
		if err != nil {
			return Status{}, err
		}
		an, err := parseAtom(body[idx+len(separator):])
		if err != nil {
			return Status{}, err
		}
		st := Halves(fn, an)
		if err := st.Validate(); err != nil {
			return Status{}, err
		}
		return st, nil
	}

	a, err := parseAtom(s)
	if err != nil {
		return Status{}, err
	}
	return Whole(a), nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s string) Status {
	st, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return st
}

func parseAtom(s string) (Atom, error) {
	if a, ok := fixedAtoms[s]; ok {
		return a, nil
	}
	if strings.HasPrefix(s, "OD: ") {
		parts := strings.Split(strings.TrimPrefix(s, "OD: "), " to ")
		if len(parts) == 2 {
			from, errFrom := clock.ParseTimeOfDay(parts[0])
			to, errTo := clock.ParseTimeOfDay(parts[1])
			if errFrom == nil && errTo == nil {
				a := OD(from, to)
				if err := a.Validate(); err != nil {
					return Atom{}, err
				}
				return a, nil
			}
		}
	}
	return Atom{}, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Value implements driver.Valuer for database storage
func (s Status) Value() (driver.Value, error) {
	if s.IsZero() {
		return nil, nil
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (s *Status) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = Status{}
		return nil
	case string:
		st, err := Parse(v)
		if err != nil {
			return err
		}
		*s = st
		return nil
	case []byte:
		return s.Scan(string(v))
	}
	return fmt.Errorf("failed to scan Status: invalid type %T", value)
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*s = Status{}
		return nil
	}
	return s.Scan(str)
}
