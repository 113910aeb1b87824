package astrosim

import (
	"fmt"
	"math"

	"github.com/ChristopherRabotin/ode"
	"github.com/gonum/matrix/mat64"
)

// G is the universal gravitational constant in m³/(kg·s²).
const G = 6.67430e-11

// gmAUDay returns the gravitational parameter GM of a body in AU³/day².
func gmAUDay(mass float64) float64 {
	return G * mass / (auMeters * auMeters * auMeters) * secondsPerDay * secondsPerDay
}

// meanMotion returns n = √(GM/a³) in rad/day for a in AU and mass in kg.
func meanMotion(a, mass float64) float64 {
	return math.Sqrt(gmAUDay(mass) / (a * a * a))
}

// PairwiseForce returns the Newtonian gravitational force exerted on a by b,
// in newtons. The AU positions are converted to meters before the force
// calculation. Coincident bodies are rejected.
func PairwiseForce(a, b CelestialBody) ([]float64, error) {
	if a.Mass() <= 0 {
		return nil, InvalidMassError{a.Mass()}
	}
	if b.Mass() <= 0 {
		return nil, InvalidMassError{b.Mass()}
	}
	aPos, bPos := a.Position(), b.Position()
	rVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		rVec[i] = (bPos[i] - aPos[i]) * auMeters
	}
	r := norm(rVec)
	if r == 0 {
		return nil, fmt.Errorf("cannot compute the force between coincident bodies %s and %s", a.Name(), b.Name())
	}
	mag := G * a.Mass() * b.Mass() / (r * r)
	rHat := unit(rVec)
	return []float64{mag * rHat[0], mag * rHat[1], mag * rHat[2]}, nil
}

// EscapeVelocity returns √(2GM/r) in m/s for a mass in kg and a radius in
// meters.
func EscapeVelocity(mass, radius float64) (float64, error) {
	if mass <= 0 {
		return 0, InvalidMassError{mass}
	}
	if radius <= 0 {
		return 0, InvalidRadiusError{radius}
	}
	return math.Sqrt(2 * G * mass / radius), nil
}

// OrbitalEnergy returns the two-body mechanical energy of a body in joules:
// its kinetic energy plus the potential energy in the field of a central
// body of centralMass kg. Negative for a bound orbit.
func OrbitalEnergy(body CelestialBody, centralMass float64) (float64, error) {
	if centralMass <= 0 {
		return 0, InvalidMassError{centralMass}
	}
	r := norm(body.Position()) * auMeters
	if r == 0 {
		return 0, fmt.Errorf("body '%s' has a degenerate position", body.Name())
	}
	v := norm(body.Velocity()) * auMeters / secondsPerDay // m/s
	kinetic := 0.5 * body.Mass() * v * v
	potential := -G * centralMass * body.Mass() / r
	return kinetic + potential, nil
}

// HillSphereRadius returns r_H = a·(m/(3M))^(1/3) in meters, the distance
// within which the body dominates the gravity of its central body, for a in
// AU and masses in kg.
func HillSphereRadius(bodyMass, centralMass, a float64) (float64, error) {
	if bodyMass <= 0 {
		return 0, InvalidMassError{bodyMass}
	}
	if centralMass <= 0 {
		return 0, InvalidMassError{centralMass}
	}
	if a <= 0 {
		return 0, fmt.Errorf("semi-major axis must be strictly positive, got %f AU", a)
	}
	return a * auMeters * math.Cbrt(bodyMass/(3*centralMass)), nil
}

// TidalForceGradient returns the tidal tensor -GM/r³·(3·r̂r̂ᵀ - I) exerted on
// a by b, in s⁻². The tensor is symmetric and traceless.
func TidalForceGradient(a, b CelestialBody) (*mat64.Dense, error) {
	if b.Mass() <= 0 {
		return nil, InvalidMassError{b.Mass()}
	}
	aPos, bPos := a.Position(), b.Position()
	rVec := make([]float64, 3)
	for i := 0; i < 3; i++ {
		rVec[i] = (bPos[i] - aPos[i]) * auMeters
	}
	r := norm(rVec)
	if r == 0 {
		return nil, fmt.Errorf("cannot compute the tidal gradient between coincident bodies %s and %s", a.Name(), b.Name())
	}
	rHat := unit(rVec)
	fac := -G * b.Mass() / (r * r * r)
	gradient := mat64.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			el := fac * 3 * rHat[i] * rHat[j]
			if i == j {
				el -= fac
			}
			gradient.Set(i, j, el)
		}
	}
	return gradient, nil
}

// nbody adapts a body set to the ode integrator. The flattened state is
// [r₁ v₁ r₂ v₂ ...] in AU and AU/day, time in days. The star, whose setState
// is a no-op, stays pinned at the frame origin.
type nbody struct {
	bodies   []CelestialBody
	steps    int
	maxSteps int
	// direction is +1 or -1: the integrator only accepts a positive step
	// size, so backward integration negates the derivatives instead.
	direction float64
}

// GetState flattens the body states for the integrator.
func (n *nbody) GetState() []float64 {
	s := make([]float64, 6*len(n.bodies))
	for bi, body := range n.bodies {
		r, v := body.Position(), body.Velocity()
		for i := 0; i < 3; i++ {
			s[6*bi+i] = r[i]
			s[6*bi+3+i] = v[i]
		}
	}
	return s
}

// SetState writes the integrated state back onto the bodies.
func (n *nbody) SetState(t float64, s []float64) {
	for bi, body := range n.bodies {
		body.setState(s[6*bi:6*bi+3], s[6*bi+3:6*bi+6])
	}
}

// Stop ends the integration once the requested number of steps ran. The
// integrator checks it before every step.
func (n *nbody) Stop(t float64) bool {
	if n.steps >= n.maxSteps {
		return true
	}
	n.steps++
	return false
}

// Func is the coupled ODE ṙ = v, v̇ = Σ Gm(rⱼ-rᵢ)/|rⱼ-rᵢ|³. Accelerations
// are computed in SI and converted back to AU/day².
func (n *nbody) Func(t float64, f []float64) []float64 {
	fDot := make([]float64, len(f))
	const accFac = secondsPerDay * secondsPerDay / auMeters // m/s² -> AU/day²
	for bi := range n.bodies {
		// d(r)/dt
		fDot[6*bi] = n.direction * f[6*bi+3]
		fDot[6*bi+1] = n.direction * f[6*bi+4]
		fDot[6*bi+2] = n.direction * f[6*bi+5]
		// d(v)/dt
		for bj, other := range n.bodies {
			if bi == bj {
				continue
			}
			var rVec [3]float64
			for i := 0; i < 3; i++ {
				rVec[i] = (f[6*bj+i] - f[6*bi+i]) * auMeters
			}
			r := math.Sqrt(rVec[0]*rVec[0] + rVec[1]*rVec[1] + rVec[2]*rVec[2])
			if r == 0 {
				panic(fmt.Errorf("bodies %s and %s are coincident during integration", n.bodies[bi].Name(), n.bodies[bj].Name()))
			}
			acc := n.direction * G * other.Mass() / (r * r * r) * accFac
			for i := 0; i < 3; i++ {
				fDot[6*bi+3+i] += acc * rVec[i]
			}
		}
	}
	return fDot
}

// IntegrateStep advances every body by exactly one step of classical
// fixed-step RK4 over dt seconds. The full pairwise force set is evaluated
// four times per step. This path is entirely independent of the Kepler
// solver and the orbit cache.
func IntegrateStep(bodies []CelestialBody, dt float64) error {
	return IntegrateSteps(bodies, dt, 1)
}

// IntegrateSteps advances every body by n consecutive RK4 steps of dt
// seconds each. A negative dt integrates backwards.
func IntegrateSteps(bodies []CelestialBody, dt float64, n int) error {
	if len(bodies) < 2 {
		return fmt.Errorf("n-body integration requires at least 2 bodies, got %d", len(bodies))
	}
	if dt == 0 {
		return fmt.Errorf("n-body integration requires a non zero time step")
	}
	if n < 1 {
		return fmt.Errorf("n-body integration requires at least 1 step, got %d", n)
	}
	for _, body := range bodies {
		if body.Mass() <= 0 {
			return InvalidMassError{body.Mass()}
		}
	}
	sys := &nbody{bodies: bodies, maxSteps: n, direction: sign(dt)}
	ode.NewRK4(0, math.Abs(dt)/secondsPerDay, sys).Solve()
	return nil
}
