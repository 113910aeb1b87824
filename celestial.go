package astrosim

import (
	"fmt"
	"strings"
)

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
	// auMeters is one astronomical unit in meters.
	auMeters = AU * 1e3
)

// Color is an RGB triplet in [0, 1]. Visual attribute, not physics.
type Color [3]float64

// CelestialBody is the capability shared by the Star and Planet variants:
// identity, physical properties and the current state vector. Positions are
// in AU and velocities in AU/day, always expressed in the single inertial
// frame centered on the system's central body. The variant set is closed.
type CelestialBody interface {
	Name() string
	Mass() float64   // kg
	Radius() float64 // m
	Position() []float64
	Velocity() []float64

	setState(r, v []float64)
}

// Star is the gravitational center of a system, pinned at the frame origin
// with zero velocity.
type Star struct {
	name   string
	mass   float64
	radius float64
}

// NewStar creates a star after validating its physical properties.
func NewStar(name string, mass, radius float64) (*Star, error) {
	if mass <= 0 {
		return nil, InvalidMassError{mass}
	}
	if radius <= 0 {
		return nil, InvalidRadiusError{radius}
	}
	return &Star{name: name, mass: mass, radius: radius}, nil
}

// Name returns the star name.
func (s *Star) Name() string { return s.name }

// Mass returns the mass in kg.
func (s *Star) Mass() float64 { return s.mass }

// Radius returns the radius in meters.
func (s *Star) Radius() float64 { return s.radius }

// Position returns the origin: the frame is centered on the star.
func (s *Star) Position() []float64 { return []float64{0, 0, 0} }

// Velocity returns the zero vector.
func (s *Star) Velocity() []float64 { return []float64{0, 0, 0} }

// setState is a no-op: the star anchors the inertial frame.
func (s *Star) setState(r, v []float64) {}

// String implements the Stringer interface.
func (s *Star) String() string { return s.name + " star" }

// Planet is a celestial body bound to the central star by its orbital
// elements. It carries visual attributes (color, rotation, tilt) which take
// no part in the physics.
type Planet struct {
	name           string
	mass           float64
	radius         float64
	elements       Elements
	color          Color
	rotationPeriod float64 // hours, negative for retrograde rotation
	axialTilt      float64 // degrees

	r, v      []float64
	currentJD float64
}

// NewPlanet creates a planet after validating its physical properties. The
// orbital elements are expected unit-normalized (AU, radians) already.
func NewPlanet(name string, mass, radius float64, el Elements, color Color) (*Planet, error) {
	if mass <= 0 {
		return nil, InvalidMassError{mass}
	}
	if radius <= 0 {
		return nil, InvalidRadiusError{radius}
	}
	return &Planet{
		name:      name,
		mass:      mass,
		radius:    radius,
		elements:  el,
		color:     color,
		r:         []float64{0, 0, 0},
		v:         []float64{0, 0, 0},
		currentJD: el.Epoch(),
	}, nil
}

// Name returns the planet name.
func (p *Planet) Name() string { return p.name }

// Mass returns the mass in kg.
func (p *Planet) Mass() float64 { return p.mass }

// Radius returns the radius in meters.
func (p *Planet) Radius() float64 { return p.radius }

// Position returns the current position in AU.
func (p *Planet) Position() []float64 { return append([]float64(nil), p.r...) }

// Velocity returns the current velocity in AU/day.
func (p *Planet) Velocity() []float64 { return append([]float64(nil), p.v...) }

// Elements returns the orbital elements the planet was built from.
func (p *Planet) Elements() Elements { return p.elements }

// Color returns the display color.
func (p *Planet) Color() Color { return p.color }

// CurrentJD returns the Julian date of the last state update.
func (p *Planet) CurrentJD() float64 { return p.currentJD }

// SetRotation sets the sidereal rotation period (hours) and axial tilt
// (degrees). A negative period means retrograde rotation.
func (p *Planet) SetRotation(periodHours, tiltDeg float64) {
	p.rotationPeriod = periodHours
	p.axialTilt = tiltDeg
}

// RotationPeriod returns the sidereal rotation period in hours.
func (p *Planet) RotationPeriod() float64 { return p.rotationPeriod }

// AxialTilt returns the axial tilt in degrees.
func (p *Planet) AxialTilt() float64 { return p.axialTilt }

// RotationAngle returns the rotation angle in degrees at the current Julian
// date, in [0, 360). Zero if no rotation period is set.
func (p *Planet) RotationAngle() float64 {
	if p.rotationPeriod == 0 {
		return 0
	}
	hours := (p.currentJD - p.elements.Epoch()) * 24
	angle := hours / p.rotationPeriod * 360
	angle -= 360 * float64(int64(angle/360))
	if angle < 0 {
		angle += 360
	}
	return angle
}

// UpdatePosition recomputes the planet state at the provided Julian date by
// two-body Kepler propagation around a central body of centralMass kg. When
// a cache is provided the query goes through it; a nil cache computes
// directly. Numeric errors bubble up unmodified and leave the previous
// state untouched.
func (p *Planet) UpdatePosition(jd, centralMass float64, cache *OrbitCache) error {
	var r, v []float64
	var err error
	if cache != nil {
		r, v, err = cache.GetOrCompute(p.elements, jd, centralMass)
	} else {
		r, v, err = StateAt(p.elements, jd, centralMass)
	}
	if err != nil {
		return err
	}
	p.r, p.v = r, v
	p.currentJD = jd
	return nil
}

func (p *Planet) setState(r, v []float64) {
	p.r = append([]float64(nil), r...)
	p.v = append([]float64(nil), v...)
}

// String implements the Stringer interface.
func (p *Planet) String() string {
	return fmt.Sprintf("%s [%s]", p.name, p.elements)
}

/* Catalog: J2000.0 osculating elements of the eight planets. */

type catalogRecord struct {
	mass, radius   float64 // kg, m
	color          Color
	rotationPeriod float64 // hours
	axialTilt      float64 // degrees
	a, e           float64 // AU
	i, Ω, ω, M0    float64 // degrees
}

var planetCatalog = map[string]catalogRecord{
	"mercury": {3.301e23, 2.4397e6, Color{0.7, 0.7, 0.7}, 1407.6, 0.034, 0.387098, 0.205630, 7.005, 48.331, 29.124, 174.796},
	"venus":   {4.867e24, 6.0518e6, Color{1.0, 0.8, 0.4}, -5832.5, 177.4, 0.723332, 0.006772, 3.39458, 76.680, 54.884, 50.115},
	"earth":   {5.972e24, 6.371e6, Color{0.3, 0.7, 1.0}, 23.9345, 23.44, 1.00000261, 0.01671123, 0.00001531, -11.26064, 102.93768, 100.46457},
	"mars":    {6.417e23, 3.3895e6, Color{0.8, 0.3, 0.1}, 24.6229, 25.19, 1.52371034, 0.09339410, 1.84969142, 49.55953891, 286.50210865, 19.3870},
	"jupiter": {1.898e27, 6.9911e7, Color{0.9, 0.7, 0.4}, 9.9259, 3.13, 5.20288700, 0.04838624, 1.30439695, 100.47390909, 273.86740840, 20.020},
	"saturn":  {5.683e26, 5.8232e7, Color{0.9, 0.9, 0.6}, 10.656, 26.73, 9.53667594, 0.05386179, 2.48599187, 113.66242448, 339.39164700, 317.020},
	"uranus":  {8.681e25, 2.5362e7, Color{0.4, 0.8, 0.9}, -17.2417, 97.77, 19.18916464, 0.04725744, 0.77263783, 74.01692503, 96.99856000, 142.238},
	"neptune": {1.024e26, 2.4622e7, Color{0.2, 0.3, 0.8}, 16.1187, 28.32, 30.06992276, 0.00859048, 1.77004347, 131.78422574, 276.33640000, 260.813},
}

// catalogOrder fixes the inner-to-outer iteration order of the catalog.
var catalogOrder = []string{"mercury", "venus", "earth", "mars", "jupiter", "saturn", "uranus", "neptune"}

// SunMass is the mass of the Sun in kg, chosen so that G·SunMass matches the
// IAU heliocentric gravitational constant.
const SunMass = 1.98847e30

// NewSun returns the Sun pinned at the frame origin.
func NewSun() *Star {
	sun, err := NewStar("Sun", SunMass, 6.957e8)
	if err != nil {
		panic(err)
	}
	return sun
}

// capitalize upper-cases the first letter of an ASCII name.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// CatalogNames returns the planet names known to the built-in catalog,
// ordered inner to outer.
func CatalogNames() []string {
	names := make([]string, len(catalogOrder))
	for i, key := range catalogOrder {
		names[i] = capitalize(key)
	}
	return names
}

// BodyFromString returns a freshly constructed catalog planet from its name.
// The lookup is case-insensitive.
func BodyFromString(name string) (*Planet, error) {
	rec, found := planetCatalog[strings.ToLower(name)]
	if !found {
		return nil, fmt.Errorf("undefined planet '%s'", name)
	}
	el, err := NewElementsDeg(rec.a, rec.e, rec.i, rec.Ω, rec.ω, rec.M0, J2000)
	if err != nil {
		return nil, err
	}
	planet, err := NewPlanet(capitalize(name), rec.mass, rec.radius, el, rec.color)
	if err != nil {
		return nil, err
	}
	planet.SetRotation(rec.rotationPeriod, rec.axialTilt)
	return planet, nil
}
