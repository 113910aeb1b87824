package astrosim

import "fmt"

// InvalidEccentricityError is returned when constructing or using orbital
// elements with an eccentricity outside [0, 1). Parabolic and hyperbolic
// orbits are not supported.
type InvalidEccentricityError struct {
	Eccentricity float64
}

func (e InvalidEccentricityError) Error() string {
	return fmt.Sprintf("eccentricity %f outside [0, 1): only bound ellipses are supported", e.Eccentricity)
}

// NonConvergenceError is returned when the Kepler solver exhausts its
// iteration budget. LastE holds the last iterate so the caller may use it as
// a best effort approximation instead of failing the query.
type NonConvergenceError struct {
	MeanAnomaly  float64
	Eccentricity float64
	LastE        float64
	Iterations   int
}

func (e NonConvergenceError) Error() string {
	return fmt.Sprintf("Kepler equation did not converge after %d iterations (M=%f e=%f lastE=%f)", e.Iterations, e.MeanAnomaly, e.Eccentricity, e.LastE)
}

// InvalidMassError is returned when a mass which isn't strictly positive is
// passed to any physics function.
type InvalidMassError struct {
	Mass float64
}

func (e InvalidMassError) Error() string {
	return fmt.Sprintf("mass must be strictly positive, got %e kg", e.Mass)
}

// InvalidRadiusError is returned when a radius which isn't strictly positive
// is passed to any physics function.
type InvalidRadiusError struct {
	Radius float64
}

func (e InvalidRadiusError) Error() string {
	return fmt.Sprintf("radius must be strictly positive, got %e m", e.Radius)
}
