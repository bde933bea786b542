package orbitcalc

import (
	"fmt"
)

// Initial describes the orbit a session starts with.
type Initial struct {
	Body         string
	Altitude     float64
	Eccentricity float64
	Lock         Lock
}

// Session holds the live state of one calculator: the values a form would display.
// A session is not safe for concurrent use; callers serialize changes.
type Session struct {
	Strict   bool // validate the state after each change
	resolver *Resolver
	catalog  *Catalog
	state    OrbitState
}

// NewSession places the orbit at the initial altitude around the initial body.
// A nil catalog uses the default one. None of this is reported to the resolver observer.
func NewSession(r *Resolver, c *Catalog, init Initial) (*Session, error) {
	if c == nil {
		c = DefaultCatalog()
	}
	body, err := c.Lookup(init.Body)
	if err != nil {
		return nil, err
	}
	state := OrbitState{E: init.Eccentricity, Lock: init.Lock, Body: body.Name}
	if !body.IsCustom() {
		state.R, state.M = body.Radius, body.Mass
	}
	state.A = state.R + init.Altitude
	state.Ap, state.Pe = EToApsides(init.Eccentricity, state.A, state.R)
	res, err := r.resolve(FieldA, state, false)
	if err != nil {
		return nil, err
	}
	return &Session{resolver: r, catalog: c, state: res.State}, nil
}

// State returns a copy of the current state.
func (s *Session) State() OrbitState {
	return s.state
}

// Warnings returns the warnings of the current state.
func (s *Session) Warnings() Warnings {
	return CheckAltitude(s.state)
}

// VerbosePeriod returns the period formatted with Kerbin days.
func (s *Session) VerbosePeriod() string {
	return FormatDuration(s.state.T)
}

// Set changes one field and resolves the others.
func (s *Session) Set(field Field, value float64) error {
	if _, ok := fieldNames[field]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	s.state.SetField(field, value)
	return s.apply(field)
}

// SetLock changes the lock mode. Nothing is recomputed.
func (s *Session) SetLock(lock Lock) error {
	if _, ok := orbitStrategies[lock]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLock, lock)
	}
	s.state.Lock = lock
	return nil
}

// SelectBody switches the reference body from its catalog name.
func (s *Session) SelectBody(name string) error {
	body, err := s.catalog.Lookup(name)
	if err != nil {
		return err
	}
	res, err := s.resolver.SelectBody(body, s.state)
	if err != nil {
		return err
	}
	s.state = res.State
	return s.validate()
}

// Read pulls the value of field from acc and resolves the change.
func (s *Session) Read(acc FieldAccessor, field Field) error {
	return s.Set(field, acc.Field(field))
}

// Render pushes every field to acc.
func (s *Session) Render(acc FieldAccessor) {
	for _, f := range Fields {
		acc.SetField(f, s.state.Field(f))
	}
}

func (s *Session) apply(field Field) error {
	res, err := s.resolver.Resolve(field, s.state)
	if err != nil {
		return err
	}
	s.state = res.State
	return s.validate()
}

func (s *Session) validate() error {
	if !s.Strict {
		return nil
	}
	if err := s.state.Validate(); err != nil {
		return fmt.Errorf("invalid orbit: %w", err)
	}
	return nil
}
