package astrosim

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gonum/floats"
)

func TestSolveEccentricAnomaly(t *testing.T) {
	for _, e := range []float64{0, 0.1, 0.5, 0.9} {
		for M := 0.0; M < 2*math.Pi; M += 0.1 {
			E, err := SolveEccentricAnomaly(M, e)
			if err != nil {
				t.Fatalf("e=%f M=%f: %s", e, M, err)
			}
			// Kepler residual within the solver tolerance.
			if residual := math.Abs(E - e*math.Sin(E) - M); residual > keplerTolerance {
				t.Fatalf("e=%f M=%f: residual %e", e, M, residual)
			}
		}
	}
}

func TestSolveCircular(t *testing.T) {
	// A circular orbit short-circuits: E is exactly M.
	for M := 0.0; M < 2*math.Pi; M += 0.25 {
		E, err := SolveEccentricAnomaly(M, 0)
		if err != nil {
			t.Fatal(err)
		}
		if E != normAngle(M) {
			t.Fatalf("M=%f: E=%f", M, E)
		}
	}
}

func TestSolveHighEccentricity(t *testing.T) {
	// Near-parabolic orbits still converge with the adjusted seed.
	for M := 0.05; M < 2*math.Pi; M += 0.1 {
		E, err := SolveEccentricAnomaly(M, 0.99)
		if err != nil {
			t.Fatalf("M=%f: %s", M, err)
		}
		if residual := math.Abs(E - 0.99*math.Sin(E) - M); residual > keplerTolerance {
			t.Fatalf("M=%f: residual %e", M, residual)
		}
	}
}

func TestNonConvergenceFallback(t *testing.T) {
	// The solver converges for every bound orbit in practice, so the error
	// contract is pinned directly: the typed error carries the last iterate
	// and the caller can recover it through errors.As.
	var err error = NonConvergenceError{MeanAnomaly: 2.5, Eccentricity: 0.99, LastE: 2.9, Iterations: maxKeplerIterations}
	var ncErr NonConvergenceError
	if !errors.As(err, &ncErr) {
		t.Fatal("errors.As fail")
	}
	if ncErr.LastE != 2.9 {
		t.Fatalf("last iterate %f", ncErr.LastE)
	}
	if ncErr.Iterations != maxKeplerIterations {
		t.Fatalf("iteration count %d", ncErr.Iterations)
	}
	if !strings.Contains(err.Error(), "did not converge") || !strings.Contains(err.Error(), "lastE=2.9") {
		t.Fatalf("message '%s'", err.Error())
	}
	// A best effort caller keeps LastE; the Kepler residual at the last
	// iterate is still finite and usable.
	if math.IsNaN(ncErr.LastE - ncErr.Eccentricity*math.Sin(ncErr.LastE) - ncErr.MeanAnomaly) {
		t.Fatal("last iterate unusable")
	}
}

func TestSolveInvalidEccentricity(t *testing.T) {
	var eccErr InvalidEccentricityError
	if _, err := SolveEccentricAnomaly(1, 1.5); !errors.As(err, &eccErr) {
		t.Fatalf("hyperbolic eccentricity returned %v", err)
	}
	if _, err := SolveEccentricAnomaly(1, -0.5); !errors.As(err, &eccErr) {
		t.Fatalf("negative eccentricity returned %v", err)
	}
}

func TestStateAtCircular(t *testing.T) {
	// Equatorial circular orbit at 1 AU: radius stays at 1 AU, speed is
	// constant, position and velocity remain orthogonal.
	el, _ := NewElements(1, 0, 0, 0, 0, 0, J2000)
	period, _ := el.Period(SunMass)
	var speed0 float64
	for frac := 0.0; frac < 1; frac += 0.125 {
		R, V, err := StateAt(el, J2000+frac*period, SunMass)
		if err != nil {
			t.Fatal(err)
		}
		if !floats.EqualWithinAbs(norm(R), 1, 1e-9) {
			t.Fatalf("radius %f at %f periods", norm(R), frac)
		}
		if !floats.EqualWithinAbs(dot(R, V)/norm(V), 0, 1e-9) {
			t.Fatalf("R and V not orthogonal at %f periods", frac)
		}
		if frac == 0 {
			speed0 = norm(V)
		} else if !floats.EqualWithinRel(norm(V), speed0, 1e-9) {
			t.Fatalf("speed %f at %f periods, started at %f", norm(V), frac, speed0)
		}
	}
}

func TestStateAtPeriodic(t *testing.T) {
	el, _ := NewElementsDeg(1.523679, 0.0934, 1.85, 49.558, 286.502, 19.412, J2000)
	period, _ := el.Period(SunMass)
	R0, V0, err := StateAt(el, J2000, SunMass)
	if err != nil {
		t.Fatal(err)
	}
	R1, V1, err := StateAt(el, J2000+period, SunMass)
	if err != nil {
		t.Fatal(err)
	}
	if !vectorsEqual(R0, R1) || !vectorsEqual(V0, V1) {
		t.Fatal("state did not return after one period")
	}
	// Perihelion and aphelion bound the radius.
	for frac := 0.0; frac < 1; frac += 0.05 {
		R, _, err := StateAt(el, J2000+frac*period, SunMass)
		if err != nil {
			t.Fatal(err)
		}
		if r := norm(R); r < el.Perihelion()-1e-9 || r > el.Aphelion()+1e-9 {
			t.Fatalf("radius %f outside [%f, %f]", r, el.Perihelion(), el.Aphelion())
		}
	}
}

func TestStateAtVisViva(t *testing.T) {
	// The specific orbital energy -μ/2a must hold at every point.
	el, _ := NewElementsDeg(5.2044, 0.0489, 1.303, 100.464, 273.867, 20.02, J2000)
	μ := gmAUDay(SunMass)
	expEnergy := -μ / (2 * el.SemiMajorAxis())
	for jd := J2000; jd < J2000+4000; jd += 250 {
		R, V, err := StateAt(el, jd, SunMass)
		if err != nil {
			t.Fatal(err)
		}
		energy := dot(V, V)/2 - μ/norm(R)
		if !floats.EqualWithinRel(energy, expEnergy, 1e-9) {
			t.Fatalf("JD %f: energy %e, expected %e", jd, energy, expEnergy)
		}
	}
}
