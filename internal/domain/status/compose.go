package status

import (
	"fmt"
)

// Half selects the forenoon or afternoon part of a day.
type Half int

const (
	FN Half = iota
	AN
)

func (h Half) String() string {
	if h == AN {
		return "AN"
	}
	return "FN"
}

// Status is the value stored in an attendance record.
type Status struct {
	fn    Atom
	an    Atom
	split bool
}

// Whole returns a status where one atom covers the day.
func Whole(a Atom) Status {
	return Status{fn: a, an: a}
}

// Halves returns a forenoon/afternoon status. Equal halves collapse to Whole.
func Halves(fn, an Atom) Status {
	if fn == an {
		return Whole(fn)
	}
	return Status{fn: fn, an: an, split: true}
}

// IsZero reports whether no status has been set.
func (s Status) IsZero() bool {
	return s.fn.Kind == "" && s.an.Kind == ""
}

// IsSplit reports whether the halves differ.
func (s Status) IsSplit() bool {
	return s.split
}

// Get returns the atom of one half. For a whole-day status both halves
// return the same atom.
func (s Status) Get(h Half) Atom {
	if h == AN {
		return s.an
	}
	return s.fn
}

// With replaces one half and returns the new status. A whole-day-only atom
// on the other half is degraded to plain Present so the split stays legal.
func (s Status) With(h Half, a Atom) Status {
	fn, an := s.fn, s.an
	if h == FN {
		fn = a
		if an.wholeDayOnly() {
			an = Present()
		}
	} else {
		an = a
		if fn.wholeDayOnly() {
			fn = Present()
		}
	}
	return Halves(fn, an)
}

// Has reports whether either half is of the given kind.
func (s Status) Has(kind Kind) bool {
	return s.fn.Kind == kind || s.an.Kind == kind
}

// HalfHas reports whether half h is of the given kind.
func (s Status) HalfHas(h Half, kind Kind) bool {
	return s.Get(h).Kind == kind
}

// String renders the display string persisted and returned by the API.
func (s Status) String() string {
	if s.IsZero() {
		return ""
	}
	if !s.split {
		return s.fn.String()
	}
	return fmt.Sprintf("FN: %s & AN: %s", s.fn, s.an)
}

// Validate checks the structural grammar:
// status = atom | "FN: " atom " & AN: " atom.
func (s Status) Validate() error {
	if s.IsZero() {
		return fmt.Errorf("%w: empty", ErrInvalidStatus)
	}
	if err := s.fn.Validate(); err != nil {
		return err
	}
	if !s.split {
		if s.fn != s.an {
			return fmt.Errorf("%w: whole-day status with differing halves", ErrInvalidStatus)
		}
		return nil
	}
	if err := s.an.Validate(); err != nil {
		return err
	}
	if s.fn.wholeDayOnly() || s.an.wholeDayOnly() {
		return fmt.Errorf("%w: %s cannot be used for a half day", ErrInvalidStatus, s.fn)
	}
	return nil
}
