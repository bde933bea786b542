package orbitcalc

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownField is returned when a field is not one of the orbit fields.
	ErrUnknownField = errors.New("unknown orbit field")
	// ErrUnknownLock is returned for an invalid lock mode.
	ErrUnknownLock = errors.New("unknown lock mode")
)

// Field identifies one of the interdependent values of an OrbitState.
type Field uint8

const (
	FieldR Field = iota + 1
	FieldM
	FieldAlt
	FieldA
	FieldT
	FieldE
	FieldAp
	FieldPe
)

// Fields lists every field in the order they are displayed.
var Fields = []Field{FieldR, FieldM, FieldAlt, FieldA, FieldT, FieldE, FieldAp, FieldPe}

var fieldNames = map[Field]string{
	FieldR:   "R",
	FieldM:   "M",
	FieldAlt: "Alt",
	FieldA:   "a",
	FieldT:   "T",
	FieldE:   "e",
	FieldAp:  "Ap",
	FieldPe:  "Pe",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", uint8(f))
}

// ParseField returns the field from its short name (case sensitive) or a long alias.
func ParseField(s string) (Field, error) {
	s = strings.TrimSpace(s)
	for f, name := range fieldNames {
		if s == name {
			return f, nil
		}
	}
	switch strings.ToLower(s) {
	case "radius":
		return FieldR, nil
	case "mass":
		return FieldM, nil
	case "alt", "altitude":
		return FieldAlt, nil
	case "sma", "semimajoraxis", "semi-major-axis":
		return FieldA, nil
	case "period":
		return FieldT, nil
	case "ecc", "eccentricity":
		return FieldE, nil
	case "ap", "apoapsis":
		return FieldAp, nil
	case "pe", "periapsis":
		return FieldPe, nil
	}
	return 0, fmt.Errorf("%w: '%s'", ErrUnknownField, s)
}

// Lock declares which of e, Ap and Pe is authoritative when a change is ambiguous.
type Lock uint8

const (
	ELock Lock = iota + 1
	ApLock
	PeLock
)

func (l Lock) String() string {
	switch l {
	case ELock:
		return "e_lock"
	case ApLock:
		return "Ap_lock"
	case PeLock:
		return "Pe_lock"
	default:
		return fmt.Sprintf("Lock(%d)", uint8(l))
	}
}

// ParseLock returns the lock from "e_lock", "Ap_lock", "Pe_lock" or their short forms.
func ParseLock(s string) (Lock, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_lock") {
	case "e":
		return ELock, nil
	case "ap":
		return ApLock, nil
	case "pe":
		return PeLock, nil
	}
	return 0, fmt.Errorf("%w: '%s'", ErrUnknownLock, s)
}

// FieldAccessor is whatever holds the displayed values (a form, a map of flags...).
// It lets the resolver be driven without knowing anything about presentation.
type FieldAccessor interface {
	Field(f Field) float64
	SetField(f Field, v float64)
}

// OrbitState holds every field describing one orbit.
// Ap and Pe are altitudes above the surface of the reference body.
type OrbitState struct {
	R    float64 `yaml:"R"`   // reference body radius (m)
	M    float64 `yaml:"M"`   // reference body mass (kg)
	A    float64 `yaml:"a"`   // semi-major axis (m)
	Alt  float64 `yaml:"Alt"` // altitude, a - R (m)
	T    float64 `yaml:"T"`   // period (s)
	E    float64 `yaml:"e"`   // eccentricity
	Ap   float64 `yaml:"Ap"`  // apoapsis (m)
	Pe   float64 `yaml:"Pe"`  // periapsis (m)
	Lock Lock    `yaml:"-"`
	Body string  `yaml:"body"`
}

// Field implements FieldAccessor.
func (s *OrbitState) Field(f Field) float64 {
	switch f {
	case FieldR:
		return s.R
	case FieldM:
		return s.M
	case FieldAlt:
		return s.Alt
	case FieldA:
		return s.A
	case FieldT:
		return s.T
	case FieldE:
		return s.E
	case FieldAp:
		return s.Ap
	case FieldPe:
		return s.Pe
	}
	return 0
}

// SetField implements FieldAccessor. Unknown fields are ignored.
func (s *OrbitState) SetField(f Field, v float64) {
	switch f {
	case FieldR:
		s.R = v
	case FieldM:
		s.M = v
	case FieldAlt:
		s.Alt = v
	case FieldA:
		s.A = v
	case FieldT:
		s.T = v
	case FieldE:
		s.E = v
	case FieldAp:
		s.Ap = v
	case FieldPe:
		s.Pe = v
	}
}

// HasNaN returns whether any numeric field is NaN or infinite.
func (s OrbitState) HasNaN() bool {
	for _, f := range Fields {
		if !finite(s.Field(f)) {
			return true
		}
	}
	return false
}

// String implements the Stringer interface.
func (s OrbitState) String() string {
	return fmt.Sprintf("body=%s a=%g Alt=%g T=%g e=%g Ap=%g Pe=%g R=%g M=%g lock=%s", s.Body, s.A, s.Alt, s.T, s.E, s.Ap, s.Pe, s.R, s.M, s.Lock)
}

// Validate reports every physical inconsistency of this state. The resolver never calls it:
// invalid inputs flow through as NaN. It is meant for callers who want to reject bad input.
func (s *OrbitState) Validate() error {
	var errs []error
	for _, f := range Fields {
		if !finite(s.Field(f)) {
			errs = append(errs, fmt.Errorf("%s is not a finite number", f))
		}
	}
	if s.M <= 0 {
		errs = append(errs, fmt.Errorf("M=%g must be positive", s.M))
	}
	if s.R < 0 {
		errs = append(errs, fmt.Errorf("R=%g cannot be negative", s.R))
	}
	if s.E < 0 || s.E >= 1 {
		errs = append(errs, fmt.Errorf("e=%g is not a closed orbit", s.E))
	}
	if s.Ap < s.Pe {
		errs = append(errs, fmt.Errorf("Ap=%g is below Pe=%g", s.Ap, s.Pe))
	}
	if s.Lock < ELock || s.Lock > PeLock {
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownLock, s.Lock))
	}
	return errors.Join(errs...)
}
