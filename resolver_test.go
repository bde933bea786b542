package orbitcalc

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	kitlog "github.com/go-kit/log"
	"gonum.org/v1/gonum/floats/scalar"
)

// kerbinOrbit returns a circular 100 km orbit around Kerbin.
func kerbinOrbit(lock Lock) OrbitState {
	return OrbitState{
		R: Kerbin.Radius, M: Kerbin.Mass,
		A: 700000, Alt: 100000, T: SemiMajorAxisToPeriod(700000, Kerbin.Mass),
		E: 0, Ap: 100000, Pe: 100000,
		Lock: lock, Body: Kerbin.Name,
	}
}

func assertConsistent(t *testing.T, s OrbitState) {
	t.Helper()
	if s.Ap < s.Pe {
		t.Fatalf("Ap=%f < Pe=%f\n%s", s.Ap, s.Pe, s)
	}
	if a := SemiMajorAxisFromApsides(s.Ap, s.Pe, s.R); !scalar.EqualWithinAbsOrRel(s.A, a, 1e-6, 1e-9) {
		t.Fatalf("a=%f but (Ap+Pe+2R)/2=%f\n%s", s.A, a, s)
	}
	if !scalar.EqualWithinAbsOrRel(s.Alt, s.A-s.R, 1e-6, 1e-9) {
		t.Fatalf("Alt=%f but a-R=%f\n%s", s.Alt, s.A-s.R, s)
	}
}

func assertFloat(t *testing.T, name string, got, exp float64) {
	t.Helper()
	if !scalar.EqualWithinAbsOrRel(got, exp, 1e-6, 1e-9) {
		t.Fatalf("%s=%.9f, expected %.9f", name, got, exp)
	}
}

func resolve(t *testing.T, r *Resolver, field Field, value float64, s OrbitState) Result {
	t.Helper()
	s.SetField(field, value)
	res, err := r.Resolve(field, s)
	if err != nil {
		t.Fatalf("resolving %s=%f: %s", field, value, err)
	}
	assertConsistent(t, res.State)
	return res
}

func TestResolverRadiusChanged(t *testing.T) {
	r := NewResolver(nil)
	s := kerbinOrbit(ELock)
	s.E = 0.1
	res := resolve(t, r, FieldR, 500000, s)
	assertFloat(t, "Alt", res.State.Alt, 200000)
	assertFloat(t, "Ap", res.State.Ap, 270000)
	assertFloat(t, "Pe", res.State.Pe, 130000)
	// The period only depends on a and M.
	assertFloat(t, "T", res.State.T, s.T)
	if res.State.Body != OtherName {
		t.Fatalf("body should be %s, got %s", OtherName, res.State.Body)
	}

	// Under Ap_lock, Ap is kept and Pe follows.
	res = resolve(t, r, FieldR, 650000, kerbinOrbit(ApLock))
	assertFloat(t, "Ap", res.State.Ap, 100000)
	assertFloat(t, "Pe", res.State.Pe, 0)
	assertFloat(t, "e", res.State.E, 50000.0/700000)
	if res.Swapped || res.State.Lock != ApLock {
		t.Fatal("no swap expected")
	}
}

func TestResolverMassChanged(t *testing.T) {
	r := NewResolver(nil)
	s := kerbinOrbit(ELock)
	res := resolve(t, r, FieldM, 2*Kerbin.Mass, s)
	assertFloat(t, "T", res.State.T, s.T/math.Sqrt2)
	if res.State.A != s.A || res.State.Ap != s.Ap || res.State.Pe != s.Pe {
		t.Fatal("changing M should only change T")
	}
	if res.State.Body != OtherName {
		t.Fatal("body should be Other")
	}
}

func TestResolverAltitudeAndSemiMajorAxis(t *testing.T) {
	r := NewResolver(nil)
	s := kerbinOrbit(ELock)
	s.E = 0.1
	res := resolve(t, r, FieldAlt, 400000, s)
	assertFloat(t, "a", res.State.A, 1000000)
	assertFloat(t, "T", res.State.T, SemiMajorAxisToPeriod(1000000, Kerbin.Mass))
	assertFloat(t, "Ap", res.State.Ap, 500000)
	assertFloat(t, "Pe", res.State.Pe, 300000)

	res = resolve(t, r, FieldA, 900000, s)
	assertFloat(t, "Alt", res.State.Alt, 300000)
	assertFloat(t, "T", res.State.T, SemiMajorAxisToPeriod(900000, Kerbin.Mass))
	assertFloat(t, "Ap", res.State.Ap, 390000)
	assertFloat(t, "Pe", res.State.Pe, 210000)
	assertFloat(t, "e", res.State.E, 0.1)
}

func TestResolverPeriodChanged(t *testing.T) {
	r := NewResolver(nil)
	s := kerbinOrbit(PeLock)
	res := resolve(t, r, FieldT, SemiMajorAxisToPeriod(800000, Kerbin.Mass), s)
	assertFloat(t, "a", res.State.A, 800000)
	assertFloat(t, "Alt", res.State.Alt, 200000)
	assertFloat(t, "Pe", res.State.Pe, 100000)
	assertFloat(t, "Ap", res.State.Ap, 300000)
	assertFloat(t, "e", res.State.E, 0.125)
}

func TestResolverEccentricityChanged(t *testing.T) {
	r := NewResolver(nil)

	// e_lock: a is held.
	res := resolve(t, r, FieldE, 0.1, kerbinOrbit(ELock))
	assertFloat(t, "a", res.State.A, 700000)
	assertFloat(t, "Ap", res.State.Ap, 170000)
	assertFloat(t, "Pe", res.State.Pe, 30000)

	// Ap_lock: Ap is held and the orbit shrinks.
	res = resolve(t, r, FieldE, 0.2, kerbinOrbit(ApLock))
	assertFloat(t, "a", res.State.A, 700000/1.2)
	assertFloat(t, "Ap", res.State.Ap, 100000)
	assertFloat(t, "T", res.State.T, SemiMajorAxisToPeriod(700000/1.2, Kerbin.Mass))
	if res.State.E != 0.2 {
		t.Fatalf("e should be kept, got %f", res.State.E)
	}
	if w := res.Warnings; !w.AltitudeLow || !w.PeriapsisLow {
		t.Fatalf("expected both warnings, got %+v", w)
	}

	// Pe_lock: Pe is held and the orbit grows.
	res = resolve(t, r, FieldE, 0.2, kerbinOrbit(PeLock))
	assertFloat(t, "a", res.State.A, 875000)
	assertFloat(t, "Pe", res.State.Pe, 100000)
	assertFloat(t, "Ap", res.State.Ap, 450000)
	if res.Warnings.Any() {
		t.Fatalf("no warning expected, got %s", res.Warnings)
	}
}

func TestResolverApoapsisChanged(t *testing.T) {
	r := NewResolver(nil)

	s := kerbinOrbit(ELock)
	s.E = 0.1
	res := resolve(t, r, FieldAp, 500000, s)
	assertFloat(t, "a", res.State.A, 1000000)
	assertFloat(t, "Pe", res.State.Pe, 300000)
	assertFloat(t, "Alt", res.State.Alt, 400000)
	assertFloat(t, "e", res.State.E, 0.1)

	res = resolve(t, r, FieldAp, 300000, kerbinOrbit(ApLock))
	assertFloat(t, "a", res.State.A, 700000)
	assertFloat(t, "Pe", res.State.Pe, -100000)
	assertFloat(t, "e", res.State.E, 200000.0/700000)
	if !res.Warnings.PeriapsisLow || res.Warnings.AltitudeLow {
		t.Fatalf("unexpected warnings %+v", res.Warnings)
	}

	res = resolve(t, r, FieldAp, 300000, kerbinOrbit(PeLock))
	assertFloat(t, "a", res.State.A, 800000)
	assertFloat(t, "Pe", res.State.Pe, 100000)
	assertFloat(t, "T", res.State.T, SemiMajorAxisToPeriod(800000, Kerbin.Mass))
	assertFloat(t, "e", res.State.E, 0.125)
}

func TestResolverPeriapsisChanged(t *testing.T) {
	r := NewResolver(nil)

	s := kerbinOrbit(ELock)
	s.E = 0.125
	res := resolve(t, r, FieldPe, 100000, s)
	assertFloat(t, "a", res.State.A, 800000)
	assertFloat(t, "Ap", res.State.Ap, 300000)

	res = resolve(t, r, FieldPe, 50000, kerbinOrbit(PeLock))
	assertFloat(t, "a", res.State.A, 700000)
	assertFloat(t, "Ap", res.State.Ap, 150000)
	assertFloat(t, "e", res.State.E, 50000.0/700000)

	s = kerbinOrbit(ApLock)
	s.Ap = 300000
	res = resolve(t, r, FieldPe, 100000, s)
	assertFloat(t, "a", res.State.A, 800000)
	assertFloat(t, "e", res.State.E, 0.125)
	if res.State.Lock != ApLock || res.Swapped {
		t.Fatal("no swap expected")
	}
}

func TestResolverApsisSwap(t *testing.T) {
	r := NewResolver(nil)

	// Raising a under Ap_lock pushes the computed Pe above the held Ap.
	res := resolve(t, r, FieldA, 800000, kerbinOrbit(ApLock))
	if !res.Swapped {
		t.Fatal("expected a swap")
	}
	if res.State.Ap != 300000 || res.State.Pe != 100000 {
		t.Fatalf("Ap=%f Pe=%f", res.State.Ap, res.State.Pe)
	}
	if res.State.Lock != PeLock {
		t.Fatalf("lock should have flipped to Pe_lock, got %s", res.State.Lock)
	}
	assertFloat(t, "e", res.State.E, 0.125)

	// Lowering a under Pe_lock is the mirror case.
	s := kerbinOrbit(PeLock)
	s.A, s.Alt, s.Ap, s.Pe = 800000, 200000, 300000, 300000
	res = resolve(t, r, FieldA, 700000, s)
	if !res.Swapped || res.State.Lock != ApLock {
		t.Fatalf("expected a swap to Ap_lock, got %+v", res)
	}
	if res.State.Ap != 300000 || res.State.Pe != -100000 {
		t.Fatalf("Ap=%f Pe=%f", res.State.Ap, res.State.Pe)
	}

	// Typing a periapsis above the held apoapsis.
	res = resolve(t, r, FieldPe, 300000, kerbinOrbit(ApLock))
	if !res.Swapped || res.State.Lock != PeLock || res.State.Pe != 100000 || res.State.Ap != 300000 {
		t.Fatalf("unexpected swap result %s", res.State)
	}

	// A negative e under e_lock swaps without changing the lock.
	res = resolve(t, r, FieldE, -0.1, kerbinOrbit(ELock))
	if !res.Swapped || res.State.Lock != ELock {
		t.Fatalf("unexpected swap result %s", res.State)
	}
	assertFloat(t, "e", res.State.E, 0.1)
	assertFloat(t, "Ap", res.State.Ap, 170000)
}

func TestResolverLockFlipChainsWithinUpdates(t *testing.T) {
	r := NewResolver(nil)
	res := resolve(t, r, FieldA, 800000, kerbinOrbit(ApLock))
	// The next change runs under the flipped lock: Pe (the held value) stays.
	next := resolve(t, r, FieldA, 900000, res.State)
	if next.State.Lock != PeLock || next.State.Pe != 100000 {
		t.Fatalf("Pe should be held under the flipped lock: %s", next.State)
	}
	assertFloat(t, "Ap", next.State.Ap, 500000)
}

func TestResolverNaNPropagation(t *testing.T) {
	r := NewResolver(nil)
	s := kerbinOrbit(PeLock)
	s.E = 1
	res, err := r.Resolve(FieldE, s)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !math.IsInf(res.State.A, 1) && !math.IsNaN(res.State.A) {
		t.Fatalf("e=1 under Pe_lock should not yield a finite a: %s", res.State)
	}
	if !res.State.HasNaN() {
		t.Fatal("expected a non finite state")
	}
	s = kerbinOrbit(ELock)
	s.M = 0
	res, err = r.Resolve(FieldM, s)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if !math.IsInf(res.State.T, 1) {
		t.Fatalf("M=0 should give an infinite period, got %f", res.State.T)
	}
}

func TestResolverErrors(t *testing.T) {
	r := NewResolver(nil)
	s := kerbinOrbit(ELock)
	if _, err := r.Resolve(Field(0), s); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	s.Lock = Lock(9)
	out, err := r.OnFieldChanged(FieldE, s)
	if !errors.Is(err, ErrUnknownLock) {
		t.Fatalf("expected ErrUnknownLock, got %v", err)
	}
	if out != s {
		t.Fatal("state should be returned unchanged on error")
	}
}

func TestResolverSelectBody(t *testing.T) {
	r := NewResolver(nil)
	s := kerbinOrbit(ELock)
	s.E = 0.1
	res, err := r.SelectBody(Duna, s)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	assertConsistent(t, res.State)
	if res.State.Body != Duna.Name || res.State.R != Duna.Radius || res.State.M != Duna.Mass {
		t.Fatalf("body not selected: %s", res.State)
	}
	assertFloat(t, "Alt", res.State.Alt, 380000)
	assertFloat(t, "Ap", res.State.Ap, 450000)
	assertFloat(t, "T", res.State.T, SemiMajorAxisToPeriod(700000, Duna.Mass))

	res, err = r.SelectBody(Other, res.State)
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if res.State.Body != OtherName || res.State.R != Duna.Radius {
		t.Fatalf("selecting Other should only rename: %s", res.State)
	}
}

type recordingObserver struct {
	fields []Field
	locks  []Lock
	swaps  int
}

func (o *recordingObserver) ObserveResolve(field Field, lock Lock, res Result) {
	o.fields = append(o.fields, field)
	o.locks = append(o.locks, lock)
	if res.Swapped {
		o.swaps++
	}
}

func TestResolverObserverAndLogs(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(kitlog.NewLogfmtLogger(&buf))
	obs := new(recordingObserver)
	r.Observer = obs
	res := resolve(t, r, FieldA, 800000, kerbinOrbit(ApLock))
	resolve(t, r, FieldE, 0.2, res.State)
	if len(obs.fields) != 2 || obs.fields[0] != FieldA || obs.fields[1] != FieldE {
		t.Fatalf("unexpected observed fields %v", obs.fields)
	}
	if obs.locks[0] != ApLock || obs.locks[1] != PeLock {
		t.Fatalf("observer should get the lock active before each change: %v", obs.locks)
	}
	if obs.swaps != 1 {
		t.Fatalf("expected one swap, got %d", obs.swaps)
	}
	logs := buf.String()
	for _, exp := range []string{`msg="apsides swapped"`, "from=Ap_lock", "to=Pe_lock", "component=resolver", "field=a"} {
		if !strings.Contains(logs, exp) {
			t.Fatalf("%q missing from logs:\n%s", exp, logs)
		}
	}
}

func TestResolverCoarsePrecision(t *testing.T) {
	r := NewResolver(nil)
	r.Places = 0
	changes := map[Field]float64{
		FieldR:   599999.7,
		FieldM:   5.3e22,
		FieldAlt: 100000.4,
		FieldA:   700000.4,
		FieldT:   2000.6,
		FieldE:   0.3,
		FieldAp:  150000.2,
		FieldPe:  90000.7,
	}
	integral := func(v float64) bool { return v == math.Trunc(v) }
	for _, lock := range []Lock{ELock, ApLock, PeLock} {
		for _, field := range Fields {
			res := resolve(t, r, field, changes[field], kerbinOrbit(lock))
			if st := res.State; !integral(st.Ap) || !integral(st.Pe) || !integral(st.T) {
				t.Fatalf("%s under %s: Ap, Pe and T should be whole numbers: %s", field, lock, st)
			}
		}
	}

	res := resolve(t, r, FieldA, 700000.4, kerbinOrbit(ELock))
	if res.State.A != 700000 || res.State.Alt != 100000 {
		t.Fatalf("a should follow the rounded apsides: %s", res.State)
	}
	res = resolve(t, r, FieldE, 0.3, kerbinOrbit(ApLock))
	if res.State.Pe != -223077 || res.State.A != 538461.5 {
		t.Fatalf("unexpected orbit %s", res.State)
	}
	assertFloat(t, "T", res.State.T, math.Round(SemiMajorAxisToPeriod(538461.5, Kerbin.Mass)))
}

func TestResolverObserverSkipsBodySelection(t *testing.T) {
	r := NewResolver(nil)
	obs := new(recordingObserver)
	r.Observer = obs
	if _, err := r.SelectBody(Duna, kerbinOrbit(ELock)); err != nil {
		t.Fatalf("err %s", err)
	}
	s, err := NewSession(r, nil, Initial{Body: "Eve", Altitude: 100000, Lock: PeLock})
	if err != nil {
		t.Fatalf("err %s", err)
	}
	if err := s.SelectBody("Jool"); err != nil {
		t.Fatalf("err %s", err)
	}
	if len(obs.fields) != 0 {
		t.Fatalf("body selection should not be observed, got %v", obs.fields)
	}
	if err := s.Set(FieldE, 0.1); err != nil {
		t.Fatalf("err %s", err)
	}
	if len(obs.fields) != 1 || obs.fields[0] != FieldE || obs.locks[0] != PeLock {
		t.Fatalf("unexpected observed changes %v %v", obs.fields, obs.locks)
	}
}

func TestResolverInvariants(t *testing.T) {
	r := NewResolver(nil)
	rng := rand.New(rand.NewSource(42))
	uniform := func(min, max float64) float64 { return min + rng.Float64()*(max-min) }
	s := kerbinOrbit(ELock)
	for i := 0; i < 5000; i++ {
		// Restart from a circular orbit whenever the walk leaves closed orbits.
		if s.Validate() != nil || s.A <= 0 {
			s = kerbinOrbit(ELock)
		}
		if rng.Intn(10) == 0 {
			s.Lock = []Lock{ELock, ApLock, PeLock}[rng.Intn(3)]
		}
		field := Fields[rng.Intn(len(Fields))]
		var value float64
		switch field {
		case FieldR:
			value = uniform(1e5, 1e6)
		case FieldM:
			value = uniform(1e20, 1e24)
		case FieldAlt:
			value = uniform(1e4, 1e7)
		case FieldA:
			value = s.R + uniform(1e4, 1e7)
		case FieldT:
			value = uniform(1e3, 1e6)
		case FieldE:
			value = uniform(0, 0.9)
		case FieldAp, FieldPe:
			value = uniform(1e4, 1e7)
		}
		res := resolve(t, r, field, value, s)
		if res.State.HasNaN() {
			t.Fatalf("step %d: %s=%f gave %s", i, field, value, res.State)
		}
		s = res.State
	}
}
