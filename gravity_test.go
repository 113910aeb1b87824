package astrosim

import (
	"errors"
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestEscapeVelocity(t *testing.T) {
	// Earth surface escape velocity, from the CRC handbook.
	vEsc, err := EscapeVelocity(5.9721986e24, 6.371e6)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinRel(vEsc, 11186, 1e-3) {
		t.Fatalf("Earth escape velocity %f m/s", vEsc)
	}
	var massErr InvalidMassError
	if _, err := EscapeVelocity(0, 6.371e6); !errors.As(err, &massErr) {
		t.Fatal("zero mass accepted")
	}
	var radErr InvalidRadiusError
	if _, err := EscapeVelocity(5.9721986e24, -1); !errors.As(err, &radErr) {
		t.Fatal("negative radius accepted")
	}
}

func TestPairwiseForce(t *testing.T) {
	sun := NewSun()
	earth, err := BodyFromString("earth")
	if err != nil {
		t.Fatal(err)
	}
	earth.setState([]float64{1, 0, 0}, []float64{0, 0, 0})
	force, err := PairwiseForce(earth, sun)
	if err != nil {
		t.Fatal(err)
	}
	// F = GMm/r² at 1 AU, roughly 3.54e22 N, pointing back at the Sun.
	exp := G * SunMass * earth.Mass() / (auMeters * auMeters)
	if !floats.EqualWithinRel(norm(force), exp, 1e-12) {
		t.Fatalf("force magnitude %e, expected %e", norm(force), exp)
	}
	if !floats.EqualWithinRel(norm(force), 3.54e22, 0.01) {
		t.Fatalf("force magnitude %e not within 1%% of 3.54e22 N", norm(force))
	}
	if force[0] >= 0 {
		t.Fatal("force must point from Earth toward the Sun")
	}
	// Newton's third law.
	reaction, err := PairwiseForce(sun, earth)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinAbs(force[i]+reaction[i], 0, 1e-10*norm(force)) {
			t.Fatal("action and reaction do not cancel")
		}
	}
	// Coincident bodies are rejected.
	earth.setState([]float64{0, 0, 0}, []float64{0, 0, 0})
	if _, err := PairwiseForce(earth, sun); err == nil {
		t.Fatal("coincident bodies accepted")
	}
}

func TestOrbitalEnergy(t *testing.T) {
	earth, _ := BodyFromString("earth")
	var massErr InvalidMassError
	if _, err := OrbitalEnergy(earth, 0); !errors.As(err, &massErr) {
		t.Fatal("zero central mass accepted")
	}
	if _, err := OrbitalEnergy(earth, SunMass); err == nil {
		t.Fatal("degenerate position accepted")
	}
	circularState(earth, 1)
	energy, err := OrbitalEnergy(earth, SunMass)
	if err != nil {
		t.Fatal(err)
	}
	// For a circular orbit E = -GMm/2a.
	exp := -G * SunMass * earth.Mass() / (2 * auMeters)
	if !floats.EqualWithinRel(energy, exp, 1e-9) {
		t.Fatalf("orbital energy %e J, expected %e", energy, exp)
	}
	if energy >= 0 {
		t.Fatal("a bound orbit must have negative energy")
	}
}

func TestHillSphereRadius(t *testing.T) {
	earth, _ := BodyFromString("earth")
	rH, err := HillSphereRadius(earth.Mass(), SunMass, 1)
	if err != nil {
		t.Fatal(err)
	}
	// Earth's Hill sphere is about 1.5 million km.
	if !floats.EqualWithinRel(rH, 1.4965e9, 1e-3) {
		t.Fatalf("Earth Hill radius %e m", rH)
	}
	// The Moon at 3.84e8 m sits comfortably inside it.
	if rH < 3.84e8 {
		t.Fatal("Earth Hill sphere does not contain the Moon")
	}
	var massErr InvalidMassError
	if _, err := HillSphereRadius(0, SunMass, 1); !errors.As(err, &massErr) {
		t.Fatal("zero body mass accepted")
	}
	if _, err := HillSphereRadius(earth.Mass(), -1, 1); !errors.As(err, &massErr) {
		t.Fatal("negative central mass accepted")
	}
	if _, err := HillSphereRadius(earth.Mass(), SunMass, 0); err == nil {
		t.Fatal("zero semi-major axis accepted")
	}
}

func TestTidalForceGradient(t *testing.T) {
	sun := NewSun()
	earth, _ := BodyFromString("earth")
	earth.setState([]float64{1, 0, 0}, []float64{0, 0, 0})
	gradient, err := TidalForceGradient(earth, sun)
	if err != nil {
		t.Fatal(err)
	}
	// The magnitude along the Earth-Sun axis is 2GM/r³; across it, half
	// that with the opposite sign.
	axial := -2 * G * SunMass / (auMeters * auMeters * auMeters)
	if !floats.EqualWithinRel(gradient.At(0, 0), axial, 1e-12) {
		t.Fatalf("radial component %e, expected %e", gradient.At(0, 0), axial)
	}
	if !floats.EqualWithinRel(gradient.At(1, 1), -axial/2, 1e-12) {
		t.Fatalf("transverse component %e, expected %e", gradient.At(1, 1), -axial/2)
	}
	// Symmetric and traceless.
	trace := 0.0
	for i := 0; i < 3; i++ {
		trace += gradient.At(i, i)
		for j := i + 1; j < 3; j++ {
			if gradient.At(i, j) != gradient.At(j, i) {
				t.Fatal("tidal tensor not symmetric")
			}
		}
	}
	if !floats.EqualWithinAbs(trace, 0, math.Abs(axial)*1e-12) {
		t.Fatalf("tidal tensor trace %e", trace)
	}
	// Coincident bodies are rejected.
	earth.setState([]float64{0, 0, 0}, []float64{0, 0, 0})
	if _, err := TidalForceGradient(earth, sun); err == nil {
		t.Fatal("coincident bodies accepted")
	}
}

func TestIntegrateValidation(t *testing.T) {
	sun := NewSun()
	earth, _ := BodyFromString("earth")
	if err := IntegrateStep([]CelestialBody{sun}, 3600); err == nil {
		t.Fatal("single body accepted")
	}
	if err := IntegrateStep([]CelestialBody{sun, earth}, 0); err == nil {
		t.Fatal("zero step accepted")
	}
	if err := IntegrateSteps([]CelestialBody{sun, earth}, 3600, 0); err == nil {
		t.Fatal("zero step count accepted")
	}
}

// circularState puts the planet on a circular orbit of radius a AU in the
// ecliptic plane.
func circularState(p *Planet, a float64) {
	v := math.Sqrt(gmAUDay(SunMass) / a)
	p.setState([]float64{a, 0, 0}, []float64{0, v, 0})
}

func TestTwoBodyEnergyDrift(t *testing.T) {
	sun := NewSun()
	earth, _ := BodyFromString("earth")
	circularState(earth, 1)
	μ := gmAUDay(SunMass)
	energy0 := dot(earth.Velocity(), earth.Velocity())/2 - μ/norm(earth.Position())
	// One full orbit in one hour steps.
	period := 2 * math.Pi / meanMotion(1, SunMass)
	steps := int(period * 24)
	if err := IntegrateSteps([]CelestialBody{sun, earth}, 3600, steps); err != nil {
		t.Fatal(err)
	}
	energy1 := dot(earth.Velocity(), earth.Velocity())/2 - μ/norm(earth.Position())
	if !floats.EqualWithinRel(energy1, energy0, 1e-8) {
		t.Fatalf("relative energy drift %e over one orbit", (energy1-energy0)/energy0)
	}
	// The radius must stay circular to high accuracy.
	if !floats.EqualWithinRel(norm(earth.Position()), 1, 1e-6) {
		t.Fatalf("radius drifted to %f AU", norm(earth.Position()))
	}
	// The star never moves: it anchors the frame.
	if norm(sun.Position()) != 0 || norm(sun.Velocity()) != 0 {
		t.Fatal("the central star moved")
	}
}

func TestIntegrateBackward(t *testing.T) {
	sun := NewSun()
	earth, _ := BodyFromString("earth")
	circularState(earth, 1)
	r0 := earth.Position()
	if err := IntegrateSteps([]CelestialBody{sun, earth}, 3600, 24); err != nil {
		t.Fatal(err)
	}
	if err := IntegrateSteps([]CelestialBody{sun, earth}, -3600, 24); err != nil {
		t.Fatal(err)
	}
	// A day forward then a day backward returns to the start.
	r1 := earth.Position()
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinAbs(r1[i], r0[i], 1e-9) {
			t.Fatalf("component %d: %e vs %e", i, r1[i], r0[i])
		}
	}
}

func TestMeanMotionConsistency(t *testing.T) {
	// meanMotion and the orbital elements must agree.
	el, _ := NewElements(1.523679, 0, 0, 0, 0, 0, J2000)
	n1, err := el.MeanMotion(SunMass)
	if err != nil {
		t.Fatal(err)
	}
	if n2 := meanMotion(1.523679, SunMass); n1 != n2 {
		t.Fatalf("mean motions differ: %e vs %e", n1, n2)
	}
}
