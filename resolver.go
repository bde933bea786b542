package orbitcalc

import (
	"fmt"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Observer is notified after every resolved change, with the lock that was active before it.
type Observer interface {
	ObserveResolve(field Field, lock Lock, res Result)
}

// Result is the outcome of a field change.
type Result struct {
	State    OrbitState
	Swapped  bool // apoapsis and periapsis were swapped
	Warnings Warnings
}

// Resolver keeps an OrbitState consistent when one of its fields changes.
// It holds no orbit state itself: every call takes a state and returns the updated copy.
type Resolver struct {
	Places   int      // decimals kept on the apsides and the period; a and Alt follow from the apsides
	Observer Observer // optional
	logger   kitlog.Logger
}

// NewResolver returns a resolver rounding to DefaultPlaces. A nil logger discards everything.
func NewResolver(logger kitlog.Logger) *Resolver {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Resolver{Places: DefaultPlaces, logger: kitlog.With(logger, "component", "resolver")}
}

// OnFieldChanged returns the state after field was changed to the value it holds in s.
func (r *Resolver) OnFieldChanged(field Field, s OrbitState) (OrbitState, error) {
	res, err := r.Resolve(field, s)
	return res.State, err
}

// Resolve recomputes what depends on field. Numeric domain errors are not reported: they
// surface as NaN or Inf in the returned state. Only an unknown field or lock is an error,
// in which case the state is returned unchanged.
func (r *Resolver) Resolve(field Field, s OrbitState) (Result, error) {
	return r.resolve(field, s, true)
}

// resolve is Resolve, notifying the observer only if observe is set.
func (r *Resolver) resolve(field Field, s OrbitState, observe bool) (Result, error) {
	if _, ok := orbitStrategies[s.Lock]; !ok {
		return Result{State: s, Warnings: CheckAltitude(s)}, fmt.Errorf("%w: %s", ErrUnknownLock, s.Lock)
	}
	handler, ok := fieldStrategies[field]
	if !ok {
		handler, ok = apsisStrategies[dispatchKey{field, s.Lock}]
	}
	if !ok {
		return Result{State: s, Warnings: CheckAltitude(s)}, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	lock := s.Lock
	u := &update{places: r.Places, s: s}
	handler(u)
	u.settle()
	res := Result{State: u.s, Swapped: u.swapped, Warnings: CheckAltitude(u.s)}

	level.Debug(r.logger).Log("msg", "resolved", "field", field, "lock", lock, "a", res.State.A, "e", res.State.E, "Ap", res.State.Ap, "Pe", res.State.Pe, "T", res.State.T)
	if res.Swapped {
		level.Info(r.logger).Log("msg", "apsides swapped", "field", field, "from", lock, "to", res.State.Lock)
	}
	if res.Warnings.Any() {
		level.Warn(r.logger).Log("msg", res.Warnings.String(), "Alt", res.State.Alt, "Pe", res.State.Pe)
	}
	if observe && r.Observer != nil {
		r.Observer.ObserveResolve(field, lock, res)
	}
	return res, nil
}

// SelectBody switches the reference body. The "Other" body only renames the state since its
// mass and radius are whatever the user already entered.
// The R and M updates it runs are not reported to the observer.
func (r *Resolver) SelectBody(body ReferenceBody, s OrbitState) (Result, error) {
	if body.IsCustom() {
		s.Body = OtherName
		return Result{State: s, Warnings: CheckAltitude(s)}, nil
	}
	s.R = body.Radius
	res, err := r.resolve(FieldR, s, false)
	if err != nil {
		return res, err
	}
	swapped := res.Swapped
	res.State.M = body.Mass
	if res, err = r.resolve(FieldM, res.State, false); err != nil {
		return res, err
	}
	res.State.Body = body.Name
	res.Swapped = res.Swapped || swapped
	return res, nil
}

// update is the working copy of one resolution.
type update struct {
	places  int
	s       OrbitState
	swapped bool
}

type strategy func(u *update)

type dispatchKey struct {
	field Field
	lock  Lock
}

// fieldStrategies are the changes which do not depend on the lock.
var fieldStrategies = map[Field]strategy{
	FieldR:   radiusChanged,
	FieldM:   massChanged,
	FieldAlt: altitudeChanged,
	FieldA:   semiMajorAxisChanged,
	FieldT:   periodChanged,
}

// apsisStrategies maps a change of e, Ap or Pe under a given lock to what is held fixed.
// Changing the locked value keeps a; changing another one keeps the locked value.
var apsisStrategies = map[dispatchKey]strategy{
	{FieldE, ELock}:   computeOrbit,
	{FieldE, ApLock}:  fromApoapsisAndE,
	{FieldE, PeLock}:  fromPeriapsisAndE,
	{FieldAp, ELock}:  fromApoapsisAndE,
	{FieldAp, ApLock}: computeOrbit,
	{FieldAp, PeLock}: fromApsides,
	{FieldPe, ELock}:  fromPeriapsisAndE,
	{FieldPe, ApLock}: fromApsides,
	{FieldPe, PeLock}: computeOrbit,
}

// orbitStrategies recompute the apsides and eccentricity from a and R.
var orbitStrategies = map[Lock]strategy{
	ELock: func(u *update) {
		Ap, Pe := EToApsides(u.s.E, u.s.A, u.s.R)
		u.checkApsides(Pe, Ap)
	},
	ApLock: func(u *update) {
		u.checkApsides(2*u.s.A-2*u.s.R-u.s.Ap, u.s.Ap)
		u.deriveE()
	},
	PeLock: func(u *update) {
		u.checkApsides(u.s.Pe, 2*u.s.A-2*u.s.R-u.s.Pe)
		u.deriveE()
	},
}

func computeOrbit(u *update) {
	orbitStrategies[u.s.Lock](u)
}

// Strategies only place the apsides (and e); settle derives a, Alt and T from them.

func radiusChanged(u *update) {
	computeOrbit(u)
	u.s.Body = OtherName
}

func massChanged(u *update) {
	u.s.Body = OtherName
}

func altitudeChanged(u *update) {
	u.s.A = u.s.R + u.s.Alt
	computeOrbit(u)
}

func semiMajorAxisChanged(u *update) {
	computeOrbit(u)
}

func periodChanged(u *update) {
	u.s.A = PeriodToSemiMajorAxis(u.s.T, u.s.M)
	computeOrbit(u)
}

// fromApoapsisAndE holds Ap and e.
func fromApoapsisAndE(u *update) {
	a := (u.s.Ap + u.s.R) / (1 + u.s.E)
	u.checkApsides(2*a-2*u.s.R-u.s.Ap, u.s.Ap)
}

// fromPeriapsisAndE holds Pe and e.
func fromPeriapsisAndE(u *update) {
	a := (u.s.Pe + u.s.R) / (1 - u.s.E)
	u.checkApsides(u.s.Pe, 2*a-2*u.s.R-u.s.Pe)
}

// fromApsides holds both apsides.
func fromApsides(u *update) {
	u.checkApsides(u.s.Pe, u.s.Ap)
	u.deriveE()
}

func (u *update) round(x float64) float64 {
	return Round(x, u.places)
}

// settle writes a, Alt and T from the rounded apsides, so that a = (Ap+Pe+2R)/2 holds
// whatever the precision. T is rounded like the apsides.
func (u *update) settle() {
	u.s.A = SemiMajorAxisFromApsides(u.s.Ap, u.s.Pe, u.s.R)
	u.s.Alt = u.s.A - u.s.R
	u.s.T = u.round(SemiMajorAxisToPeriod(u.s.A, u.s.M))
}

func (u *update) deriveE() {
	u.s.E = ApsidesToE(u.s.Pe, u.s.Ap, u.s.R)
}

// checkApsides writes the apsides, swapping them if the apoapsis is below the periapsis.
// On a swap the lock follows the value the user held: Ap_lock becomes Pe_lock and vice versa.
// Under e_lock, e is derived again so that it stays positive.
func (u *update) checkApsides(Pe, Ap float64) {
	Pe, Ap = u.round(Pe), u.round(Ap)
	if !(Ap < Pe) {
		u.s.Ap, u.s.Pe = Ap, Pe
		return
	}
	u.s.Ap, u.s.Pe = Pe, Ap
	u.swapped = true
	switch u.s.Lock {
	case ApLock:
		u.s.Lock = PeLock
	case PeLock:
		u.s.Lock = ApLock
	case ELock:
		u.deriveE()
	}
}
