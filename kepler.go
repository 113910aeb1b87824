package astrosim

import "math"

const (
	// keplerTolerance is the convergence criterion on |E(n+1) - E(n)|.
	keplerTolerance = 1e-9
	// maxKeplerIterations bounds the Newton-Raphson iteration count.
	maxKeplerIterations = 50
	// highEccSeed is the eccentricity above which E₀ = M + e seeds better.
	highEccSeed = 0.8
)

// SolveEccentricAnomaly solves Kepler's equation E - e·sin(E) = M for the
// eccentric anomaly E by Newton-Raphson. M is normalized to [0, 2π) first.
// A circular orbit short-circuits to E = M without iterating. On iteration
// budget exhaustion the returned NonConvergenceError carries the last
// iterate so the caller may keep it as a best effort approximation.
func SolveEccentricAnomaly(M, e float64) (float64, error) {
	if e < 0 || e >= 1 {
		return 0, InvalidEccentricityError{e}
	}
	M = normAngle(M)
	if e == 0 {
		return M, nil
	}
	E := M
	if e > highEccSeed {
		E = M + e
	}
	for iter := 0; iter < maxKeplerIterations; iter++ {
		sinE, cosE := math.Sincos(E)
		ΔE := (E - e*sinE - M) / (1 - e*cosE)
		E -= ΔE
		if math.Abs(ΔE) < keplerTolerance {
			return E, nil
		}
	}
	return E, NonConvergenceError{MeanAnomaly: M, Eccentricity: e, LastE: E, Iterations: maxKeplerIterations}
}

// trueAnomalyFromE converts an eccentric anomaly into the true anomaly ν.
func trueAnomalyFromE(E, e float64) float64 {
	sinE, cosE := math.Sincos(E)
	denom := 1 - e*cosE
	sinν := math.Sqrt(1-e*e) * sinE / denom
	cosν := (cosE - e) / denom
	return normAngle(math.Atan2(sinν, cosν))
}

// StateAt computes the reference frame position (AU) and velocity (AU/day)
// of an orbit described by el at the provided Julian date, for a central
// body of centralMass kg. The perifocal state is rotated into the reference
// frame by the standard 3-1-3 sequence.
func StateAt(el Elements, jd, centralMass float64) (R, V []float64, err error) {
	M, err := el.MeanAnomalyAt(jd, centralMass)
	if err != nil {
		return nil, nil, err
	}
	E, err := SolveEccentricAnomaly(M, el.e)
	if err != nil {
		return nil, nil, err
	}
	ν := trueAnomalyFromE(E, el.e)
	μ := gmAUDay(centralMass)
	p := el.SemiParameter()
	sinν, cosν := math.Sincos(ν)
	r := p / (1 + el.e*cosν) // a(1 - e·cosE)

	R = PQW2ECI(el.i, el.ω, el.Ω, []float64{r * cosν, r * sinν, 0})
	vFac := math.Sqrt(μ / p)
	V = PQW2ECI(el.i, el.ω, el.Ω, []float64{-vFac * sinν, vFac * (el.e + cosν), 0})
	return R, V, nil
}
